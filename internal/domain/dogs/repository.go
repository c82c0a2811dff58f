package dogs

import "context"

type ListFilter struct {
	Status Status // vacío = todos
}

type Repository interface {
	Create(ctx context.Context, d Dog) error
	GetByID(ctx context.Context, id string) (Dog, error)
	List(ctx context.Context, f ListFilter) ([]Dog, error)
	Update(ctx context.Context, d Dog) error
}
