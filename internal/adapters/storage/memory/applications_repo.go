package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"adoptapaw-service/internal/domain/applications"
)

type applicationRepo struct {
	mu   sync.RWMutex
	byID map[string]applications.Application
}

func NewApplicationsRepo() applications.Repository {
	return &applicationRepo{
		byID: make(map[string]applications.Application),
	}
}

func (r *applicationRepo) Create(ctx context.Context, a applications.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("application id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("application already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *applicationRepo) GetByID(ctx context.Context, id string) (applications.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.Application{}, ErrNotFound
	}
	return a, nil
}

func (r *applicationRepo) FindByUserAndDog(ctx context.Context, userID, dogID string) ([]applications.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]applications.Application, 0)
	for _, a := range r.byID {
		if a.UserID == userID && a.DogID == dogID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *applicationRepo) ListByUser(ctx context.Context, userID, dogID string) ([]applications.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]applications.Application, 0)
	for _, a := range r.byID {
		if a.UserID != userID {
			continue
		}
		if dogID != "" && a.DogID != dogID {
			continue
		}
		out = append(out, a)
	}

	sortNewestFirst(out)
	return out, nil
}

func (r *applicationRepo) ListAll(ctx context.Context) ([]applications.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]applications.Application, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}

	sortNewestFirst(out)
	return out, nil
}

// UpdateStatus es el guard optimista del workflow: aplica solo si el
// status almacenado sigue siendo `from`. Re-chequeo bajo lock.
func (r *applicationRepo) UpdateStatus(ctx context.Context, a applications.Application, from applications.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, exists := r.byID[a.ID]
	if !exists {
		return ErrNotFound
	}
	if cur.Status != from {
		return applications.ErrConflict
	}

	r.byID[a.ID] = a
	return nil
}

func sortNewestFirst(items []applications.Application) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
