package bank

import "context"

// ClientStore is the only mutation path for clients.
type ClientStore struct {
	storage ClientStorage
}

// NewClientStore returns a ClientStore over storage.
func NewClientStore(storage ClientStorage) *ClientStore {
	return &ClientStore{storage: storage}
}

// Validate checks in against the client rules.
func (s *ClientStore) Validate(_ context.Context, in NewClient) error {
	return validateClient(in)
}

// List returns every client in creation order.
func (s *ClientStore) List(ctx context.Context) ([]Client, error) {
	return s.storage.ListClients(ctx)
}

// Get returns the client with the given id or ErrClientNotFound.
func (s *ClientStore) Get(ctx context.Context, id ID) (Client, error) {
	return s.storage.GetClient(ctx, id)
}

// Create validates in and stores a new client.
func (s *ClientStore) Create(ctx context.Context, in NewClient) (Client, error) {
	if err := s.Validate(ctx, in); err != nil {
		return Client{}, err
	}
	return s.storage.InsertClient(ctx, Client{
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
	})
}

// Update merges the non-nil fields of patch into the stored client.
// The result is not re-validated.
func (s *ClientStore) Update(ctx context.Context, id ID, patch ClientPatch) (Client, error) {
	return s.storage.UpdateClient(ctx, id, patch.apply)
}

// Delete removes the client. Its accounts are left in place.
func (s *ClientStore) Delete(ctx context.Context, id ID) error {
	return s.storage.DeleteClient(ctx, id)
}
