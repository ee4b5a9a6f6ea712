package clients

// Repo persists client registrations. FindByID returns (nil, nil) when
// no client has the given id.
type Repo interface {
	Save(client *Client) error
	FindByID(id string) (*Client, error)
	ExistsByID(id string) (bool, error)
}
