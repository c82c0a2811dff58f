package applications

import "context"

type Repository interface {
	Create(ctx context.Context, a Application) error
	GetByID(ctx context.Context, id string) (Application, error)

	// FindByUserAndDog devuelve todas las solicitudes del par (user, dog),
	// en cualquier estado. El chequeo de duplicados decide encima.
	FindByUserAndDog(ctx context.Context, userID, dogID string) ([]Application, error)

	ListByUser(ctx context.Context, userID, dogID string) ([]Application, error)
	ListAll(ctx context.Context) ([]Application, error)

	// UpdateStatus persiste `a` solo si el status almacenado sigue siendo
	// `from` (guard optimista). Si otro actor ganó la carrera devuelve
	// ErrConflict; si el id no existe, el not-found del storage.
	UpdateStatus(ctx context.Context, a Application, from Status) error
}
