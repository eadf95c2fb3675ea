package social

import "context"

// Store is the persistence seam for user records. Any backend with
// single-record CRUD plus a listing operation can implement it; the engine
// never pushes query logic down into the store.
//
// Get returns (nil, nil) when the id has no record; errors are reserved for
// store failures. Uniqueness and relationship rules are enforced above the
// store, under the service's write lock, so implementations stay dumb.
type Store interface {
	Insert(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	Save(ctx context.Context, user *User) error
	Remove(ctx context.Context, id string) error
	List(ctx context.Context) ([]*User, error)
}
