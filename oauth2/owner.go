package oauth2

// TokenOwner identifies the resource owner a token was issued for. The
// host application supplies its own implementation; the engine only
// ever reads the identifier back.
type TokenOwner interface {
	OwnerID() string
}

// Owner is a minimal TokenOwner backed by a bare identifier. Storage
// adapters use it to rehydrate tokens when the host application's owner
// type is not available.
type Owner string

func (o Owner) OwnerID() string { return string(o) }

// UserAuthenticator verifies resource owner password credentials for
// the password grant. A nil TokenOwner with a nil error means the
// credentials were wrong.
type UserAuthenticator interface {
	Validate(username, password string) (TokenOwner, error)
}
