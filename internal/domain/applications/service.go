package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"adoptapaw-service/internal/domain/dogs"
	"adoptapaw-service/internal/domain/users"
	"adoptapaw-service/internal/platform/logger"
	"adoptapaw-service/internal/ports/notify"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("application not found")
	ErrForbidden    = errors.New("forbidden")

	// Precondiciones de Submit.
	ErrNotVerified          = errors.New("account is not verified")
	ErrDogNotFound          = errors.New("dog not found")
	ErrDogUnavailable       = errors.New("this dog is not available for adoption")
	ErrDuplicateApplication = errors.New("you have already applied to adopt this dog")

	// Reglas de transición.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingDate       = errors.New("visit date is required for this status")

	// Dos admins compitiendo sobre la misma solicitud: gana uno solo.
	ErrConflict = errors.New("application was modified concurrently")
)

// Actor es quien invoca una operación del workflow. Viene explícito desde
// los claims del request; el service nunca lee estado ambiente de sesión.
type Actor struct {
	UserID string
	Role   users.Role
}

func (a Actor) isAdmin() bool { return a.Role == users.RoleAdmin }

// Policy son las decisiones de negocio configurables del workflow.
type Policy struct {
	// ReapplyAfterRejection permite volver a postular por el mismo perro
	// cuando la solicitud anterior terminó en REJECTED. Con false (default,
	// comportamiento histórico) cualquier solicitud previa bloquea.
	ReapplyAfterRejection bool
}

// UserDirectory es la vista de usuarios que necesita el workflow.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (users.User, error)
}

// DogCatalog es la vista de perros que necesita el workflow.
type DogCatalog interface {
	GetByID(ctx context.Context, id string) (dogs.Dog, error)
	SetStatus(ctx context.Context, id string, status dogs.Status) (dogs.Dog, error)
}

// Service orquesta el ciclo de adopción: valida autorización y
// precondiciones, consulta la tabla de transiciones, persiste y dispara la
// notificación. Es el único escritor de Application.Status y el único
// disparador del flip de Dog.Status.
type Service struct {
	repo     Repository
	users    UserDirectory
	dogs     DogCatalog
	notifier notify.Notifier
	log      logger.Logger
	policy   Policy

	now func() time.Time

	// dispatch corre la notificación fuera del request (fire and forget).
	// Inyectable en tests para hacerla síncrona.
	dispatch func(fn func())
}

func NewService(repo Repository, userDir UserDirectory, dogCat DogCatalog, notifier notify.Notifier, log logger.Logger, policy Policy) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		users:    userDir,
		dogs:     dogCat,
		notifier: notifier,
		log:      log,
		policy:   policy,
		now:      time.Now,
		dispatch: func(fn func()) { go fn() },
	}
}

// Submit crea una solicitud en SUBMITTED para (userID, dogID).
func (s *Service) Submit(ctx context.Context, userID, dogID string) (Application, error) {
	userID = strings.TrimSpace(userID)
	dogID = strings.TrimSpace(dogID)
	if userID == "" || dogID == "" {
		return Application{}, ErrInvalidInput
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Application{}, ErrForbidden
	}
	if !u.Verified {
		return Application{}, ErrNotVerified
	}

	d, err := s.dogs.GetByID(ctx, dogID)
	if err != nil {
		return Application{}, ErrDogNotFound
	}
	if d.Status != dogs.StatusAvailable {
		return Application{}, ErrDogUnavailable
	}

	existing, err := s.repo.FindByUserAndDog(ctx, userID, dogID)
	if err != nil {
		return Application{}, err
	}
	for _, prev := range existing {
		if prev.Status == StatusRejected && s.policy.ReapplyAfterRejection {
			continue
		}
		return Application{}, ErrDuplicateApplication
	}

	now := s.now()
	a := Application{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		DogID:     d.ID,
		Status:    StatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Application{}, err
	}

	s.notifyStatus(u, StatusSubmitted, d.Name)
	return a, nil
}

// Transition mueve la solicitud al status destino. Solo ADMIN; el propio
// adoptante puede crear su solicitud pero nunca avanzarla.
func (s *Service) Transition(ctx context.Context, actor Actor, id string, target Status, visitDate *time.Time) (Application, error) {
	if !actor.isAdmin() {
		return Application{}, ErrForbidden
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return Application{}, ErrInvalidInput
	}
	if !IsValid(target) {
		return Application{}, ErrInvalidTransition
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, ErrNotFound
	}

	if !CanTransition(a.Status, target) {
		return Application{}, ErrInvalidTransition
	}
	if NeedsDate(target) && visitDate == nil {
		return Application{}, ErrMissingDate
	}

	from := a.Status
	a.Status = target
	a.UpdatedAt = s.now()

	switch target {
	case StatusHomeVisitScheduled:
		a.HomeVisitDate = visitDate
	case StatusFinalVisitScheduled:
		a.FinalVisitDate = visitDate
	}

	var dogName string
	if d, err := s.dogs.GetByID(ctx, a.DogID); err == nil {
		dogName = d.Name
	}

	// El perro queda ADOPTED antes de persistir COMPLETED: un lector que
	// observe la solicitud COMPLETED no debe ver al perro AVAILABLE.
	// Si después pierde el guard optimista, el flip es idempotente.
	if target == StatusCompleted {
		if _, err := s.dogs.SetStatus(ctx, a.DogID, dogs.StatusAdopted); err != nil {
			return Application{}, err
		}
	}

	if err := s.repo.UpdateStatus(ctx, a, from); err != nil {
		if errors.Is(err, ErrConflict) {
			return Application{}, ErrConflict
		}
		return Application{}, err
	}

	if u, err := s.users.GetByID(ctx, a.UserID); err == nil {
		s.notifyStatus(u, target, dogName)
	}

	return a, nil
}

// GetByID devuelve la solicitud; el dueño ve la suya, admin ve cualquiera.
func (s *Service) GetByID(ctx context.Context, actor Actor, id string) (Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Application{}, ErrInvalidInput
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, ErrNotFound
	}
	if !actor.isAdmin() && a.UserID != actor.UserID {
		return Application{}, ErrForbidden
	}
	return a, nil
}

// ListByOwner lista las solicitudes del propio usuario, opcionalmente
// filtradas por perro.
func (s *Service) ListByOwner(ctx context.Context, userID, dogID string) ([]Application, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID, strings.TrimSpace(dogID))
}

// AdminView es una solicitud con usuario y perro embebidos, para la
// consola de administración.
type AdminView struct {
	Application Application
	User        users.User
	Dog         dogs.Dog
}

// AdminFilter filtra el listado admin: texto libre contra nombre del
// adoptante / nombre del perro / teléfono / dirección, y status exacto.
type AdminFilter struct {
	Query  string
	Status Status
}

// ListAll devuelve todas las solicitudes con user+dog embebidos. Solo ADMIN.
func (s *Service) ListAll(ctx context.Context, actor Actor, f AdminFilter) ([]AdminView, error) {
	if !actor.isAdmin() {
		return nil, ErrForbidden
	}
	if f.Status != "" && !IsValid(f.Status) {
		return nil, ErrInvalidInput
	}

	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]AdminView, 0, len(items))

	for _, a := range items {
		if f.Status != "" && a.Status != f.Status {
			continue
		}

		v := AdminView{Application: a}
		if u, err := s.users.GetByID(ctx, a.UserID); err == nil {
			v.User = u
		}
		if d, err := s.dogs.GetByID(ctx, a.DogID); err == nil {
			v.Dog = d
		}

		if q != "" && !matchesQuery(v, q) {
			continue
		}
		out = append(out, v)
	}

	return out, nil
}

func matchesQuery(v AdminView, q string) bool {
	for _, field := range []string{v.User.Name, v.Dog.Name, v.User.Phone, v.User.Address} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// notifyStatus dispara el SMS de cambio de status. Fire and forget: se
// loguea el resultado y jamás bloquea ni hace fallar la transición.
func (s *Service) notifyStatus(u users.User, status Status, dogName string) {
	if s.notifier == nil || strings.TrimSpace(u.Phone) == "" {
		return
	}

	msg := statusMessage(status, dogName)
	phone := u.Phone
	log := s.log.With(map[string]any{"user_id": u.ID, "status": string(status)})

	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.notifier.Send(ctx, phone, msg); err != nil {
			log.Warn("status notification failed", map[string]any{"error": err.Error()})
			return
		}
		log.Debug("status notification sent", nil)
	})
}
