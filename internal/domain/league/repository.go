package league

import "context"

// Repository describes catalog lookups from use cases.
type Repository interface {
	List(ctx context.Context) ([]League, error)
	GetByName(ctx context.Context, name string) (League, bool, error)
}
