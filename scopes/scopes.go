package scopes

// Scope is a named permission that can be assigned to clients and
// attached to tokens. Tokens and clients carry scope names rather than
// references, so renaming a scope does not rewrite issued tokens.
type Scope struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsDefault   bool   `json:"isDefault"` // granted when a request carries no scope parameter
}

func (s *Scope) String() string {
	return s.Name
}

// Names returns the names of the given scopes, in order.
func Names(list []*Scope) []string {
	names := make([]string, 0, len(list))
	for _, scope := range list {
		names = append(names, scope.Name)
	}
	return names
}
