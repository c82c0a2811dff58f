package applications

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"adoptapaw-service/internal/domain/dogs"
	"adoptapaw-service/internal/domain/users"
)

// -------------------------
// Test fakes (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Application

	// getStale, si está seteado, se devuelve una única vez desde GetByID.
	// Sirve para simular dos admins que leyeron el mismo snapshot.
	getStale *Application
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Application{}}
}

func (r *testRepo) Create(ctx context.Context, a Application) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Application, error) {
	if r.getStale != nil {
		stale := *r.getStale
		r.getStale = nil
		return stale, nil
	}
	a, ok := r.byID[id]
	if !ok {
		return Application{}, errRepoNotFound
	}
	return a, nil
}

func (r *testRepo) FindByUserAndDog(ctx context.Context, userID, dogID string) ([]Application, error) {
	out := make([]Application, 0)
	for _, a := range r.byID {
		if a.UserID == userID && a.DogID == dogID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID, dogID string) ([]Application, error) {
	out := make([]Application, 0)
	for _, a := range r.byID {
		if a.UserID != userID {
			continue
		}
		if dogID != "" && a.DogID != dogID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) ListAll(ctx context.Context) ([]Application, error) {
	out := make([]Application, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) UpdateStatus(ctx context.Context, a Application, from Status) error {
	cur, ok := r.byID[a.ID]
	if !ok {
		return errRepoNotFound
	}
	if cur.Status != from {
		return ErrConflict
	}
	r.byID[a.ID] = a
	return nil
}

type testUsers struct {
	byID map[string]users.User
}

func (d *testUsers) GetByID(ctx context.Context, id string) (users.User, error) {
	u, ok := d.byID[id]
	if !ok {
		return users.User{}, errRepoNotFound
	}
	return u, nil
}

type testDogs struct {
	byID map[string]dogs.Dog
}

func (c *testDogs) GetByID(ctx context.Context, id string) (dogs.Dog, error) {
	d, ok := c.byID[id]
	if !ok {
		return dogs.Dog{}, errRepoNotFound
	}
	return d, nil
}

func (c *testDogs) SetStatus(ctx context.Context, id string, status dogs.Status) (dogs.Dog, error) {
	d, ok := c.byID[id]
	if !ok {
		return dogs.Dog{}, errRepoNotFound
	}
	d.Status = status
	c.byID[id] = d
	return d, nil
}

type sentSMS struct {
	phone, message string
}

type testNotifier struct {
	mu   sync.Mutex
	sent []sentSMS
	fail bool
}

func (n *testNotifier) Send(ctx context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("sms gateway down")
	}
	n.sent = append(n.sent, sentSMS{phone: phone, message: message})
	return nil
}

func (n *testNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

func (n *testNotifier) last() sentSMS {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.sent[len(n.sent)-1]
}

type fixture struct {
	repo     *testRepo
	users    *testUsers
	dogs     *testDogs
	notifier *testNotifier
	svc      *Service
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()

	f := &fixture{
		repo: newTestRepo(),
		users: &testUsers{byID: map[string]users.User{
			"user-1": {ID: "user-1", Name: "Asha", Email: "asha@example.com", Phone: "+919876543210", Address: "Bangalore", Verified: true, Role: users.RoleUser},
			"user-2": {ID: "user-2", Name: "Ravi", Email: "ravi@example.com", Phone: "+919876543211", Verified: false, Role: users.RoleUser},
		}},
		dogs: &testDogs{byID: map[string]dogs.Dog{
			"dog-1": {ID: "dog-1", Name: "Rocky", Breed: "German Shepherd", Status: dogs.StatusAvailable},
			"dog-2": {ID: "dog-2", Name: "Bella", Breed: "Pomeranian", Status: dogs.StatusAdopted},
		}},
		notifier: &testNotifier{},
	}

	f.svc = NewService(f.repo, f.users, f.dogs, f.notifier, nil, policy)
	f.svc.now = func() time.Time { return time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC) }
	// síncrono en tests
	f.svc.dispatch = func(fn func()) { fn() }

	return f
}

var admin = Actor{UserID: "admin-1", Role: users.RoleAdmin}

// -------------------------
// Submit
// -------------------------

func TestService_Submit_CreatesSubmitted_AndNotifies(t *testing.T) {
	f := newFixture(t, Policy{})

	a, err := f.svc.Submit(context.Background(), "user-1", "dog-1")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if a.Status != StatusSubmitted {
		t.Fatalf("expected status SUBMITTED, got %s", a.Status)
	}
	if a.HomeVisitDate != nil || a.FinalVisitDate != nil {
		t.Fatalf("expected no visit dates at creation")
	}
	if f.notifier.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", f.notifier.count())
	}
	sms := f.notifier.last()
	if sms.phone != "+919876543210" {
		t.Fatalf("notification went to wrong phone: %s", sms.phone)
	}
	if !strings.Contains(sms.message, "Rocky") {
		t.Fatalf("notification must carry the dog name, got %q", sms.message)
	}
}

func TestService_Submit_UnverifiedUser(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svc.Submit(context.Background(), "user-2", "dog-1")
	if !errors.Is(err, ErrNotVerified) {
		t.Fatalf("expected ErrNotVerified, got %v", err)
	}
	if f.notifier.count() != 0 {
		t.Fatalf("no notification expected on failed submit")
	}
}

func TestService_Submit_UnknownUser(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svc.Submit(context.Background(), "ghost", "dog-1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Submit_DogUnavailable(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svc.Submit(context.Background(), "user-1", "dog-2")
	if !errors.Is(err, ErrDogUnavailable) {
		t.Fatalf("expected ErrDogUnavailable, got %v", err)
	}
}

func TestService_Submit_UnknownDog(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svc.Submit(context.Background(), "user-1", "ghost")
	if !errors.Is(err, ErrDogNotFound) {
		t.Fatalf("expected ErrDogNotFound, got %v", err)
	}
}

func TestService_Submit_DuplicateBlocked(t *testing.T) {
	f := newFixture(t, Policy{})

	if _, err := f.svc.Submit(context.Background(), "user-1", "dog-1"); err != nil {
		t.Fatalf("Submit #1 error: %v", err)
	}
	_, err := f.svc.Submit(context.Background(), "user-1", "dog-1")
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication, got %v", err)
	}
}

func TestService_Submit_RejectedBlocksByDefault(t *testing.T) {
	f := newFixture(t, Policy{})

	a, err := f.svc.Submit(context.Background(), "user-1", "dog-1")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if _, err := f.svc.Transition(context.Background(), admin, a.ID, StatusRejected, nil); err != nil {
		t.Fatalf("Transition to REJECTED error: %v", err)
	}

	// Política histórica: el rechazado no puede volver a postular.
	_, err = f.svc.Submit(context.Background(), "user-1", "dog-1")
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication after rejection, got %v", err)
	}
}

func TestService_Submit_ReapplyAfterRejectionPolicy(t *testing.T) {
	f := newFixture(t, Policy{ReapplyAfterRejection: true})

	a, err := f.svc.Submit(context.Background(), "user-1", "dog-1")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if _, err := f.svc.Transition(context.Background(), admin, a.ID, StatusRejected, nil); err != nil {
		t.Fatalf("Transition to REJECTED error: %v", err)
	}

	a2, err := f.svc.Submit(context.Background(), "user-1", "dog-1")
	if err != nil {
		t.Fatalf("expected reapply to succeed, got %v", err)
	}
	if a2.ID == a.ID {
		t.Fatalf("reapply must create a new application")
	}

	// Una solicitud viva sigue bloqueando aunque la política permita reapply.
	_, err = f.svc.Submit(context.Background(), "user-1", "dog-1")
	if !errors.Is(err, ErrDuplicateApplication) {
		t.Fatalf("expected ErrDuplicateApplication with live application, got %v", err)
	}
}

// -------------------------
// Transition
// -------------------------

func TestService_Transition_FullHappyPath(t *testing.T) {
	f := newFixture(t, Policy{})

	a, err := f.svc.Submit(context.Background(), "user-1", "dog-1")
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	t1 := time.Date(2026, 1, 10, 11, 0, 0, 0, time.UTC)
	a, err = f.svc.Transition(context.Background(), admin, a.ID, StatusHomeVisitScheduled, &t1)
	if err != nil {
		t.Fatalf("-> HOME_VISIT_SCHEDULED error: %v", err)
	}
	if a.HomeVisitDate == nil || !a.HomeVisitDate.Equal(t1) {
		t.Fatalf("expected homeVisitDate %v, got %v", t1, a.HomeVisitDate)
	}

	a, err = f.svc.Transition(context.Background(), admin, a.ID, StatusHomeVisitCompleted, nil)
	if err != nil {
		t.Fatalf("-> HOME_VISIT_COMPLETED error: %v", err)
	}
	if a.HomeVisitDate == nil {
		t.Fatalf("homeVisitDate must survive later transitions")
	}

	t2 := time.Date(2026, 1, 20, 11, 0, 0, 0, time.UTC)
	a, err = f.svc.Transition(context.Background(), admin, a.ID, StatusFinalVisitScheduled, &t2)
	if err != nil {
		t.Fatalf("-> FINAL_VISIT_SCHEDULED error: %v", err)
	}
	if a.FinalVisitDate == nil || !a.FinalVisitDate.Equal(t2) {
		t.Fatalf("expected finalVisitDate %v, got %v", t2, a.FinalVisitDate)
	}

	a, err = f.svc.Transition(context.Background(), admin, a.ID, StatusCompleted, nil)
	if err != nil {
		t.Fatalf("-> COMPLETED error: %v", err)
	}
	if a.Status != StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", a.Status)
	}

	d, _ := f.dogs.GetByID(context.Background(), "dog-1")
	if d.Status != dogs.StatusAdopted {
		t.Fatalf("dog must be ADOPTED after completion, got %s", d.Status)
	}

	// submit + 4 transiciones
	if f.notifier.count() != 5 {
		t.Fatalf("expected 5 notifications, got %d", f.notifier.count())
	}
	if !strings.Contains(f.notifier.last().message, "Congratulations") {
		t.Fatalf("completion SMS must congratulate, got %q", f.notifier.last().message)
	}
}

func TestService_Transition_RequiresAdmin(t *testing.T) {
	f := newFixture(t, Policy{})

	a, _ := f.svc.Submit(context.Background(), "user-1", "dog-1")

	// Ni siquiera el dueño de la solicitud puede avanzarla.
	owner := Actor{UserID: "user-1", Role: users.RoleUser}
	d := time.Now()
	_, err := f.svc.Transition(context.Background(), owner, a.ID, StatusHomeVisitScheduled, &d)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Transition_NotFound(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svc.Transition(context.Background(), admin, "ghost", StatusRejected, nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_Transition_SkipAheadRejected_DogStaysAvailable(t *testing.T) {
	f := newFixture(t, Policy{})

	a, _ := f.svc.Submit(context.Background(), "user-1", "dog-1")

	_, err := f.svc.Transition(context.Background(), admin, a.ID, StatusCompleted, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	d, _ := f.dogs.GetByID(context.Background(), "dog-1")
	if d.Status != dogs.StatusAvailable {
		t.Fatalf("dog must stay AVAILABLE after rejected skip, got %s", d.Status)
	}
}

func TestService_Transition_SameTargetTwiceFails(t *testing.T) {
	f := newFixture(t, Policy{})

	a, _ := f.svc.Submit(context.Background(), "user-1", "dog-1")
	d := time.Now()
	if _, err := f.svc.Transition(context.Background(), admin, a.ID, StatusHomeVisitScheduled, &d); err != nil {
		t.Fatalf("first transition error: %v", err)
	}
	_, err := f.svc.Transition(context.Background(), admin, a.ID, StatusHomeVisitScheduled, &d)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on repeat, got %v", err)
	}
}

func TestService_Transition_MissingDate(t *testing.T) {
	f := newFixture(t, Policy{})

	a, _ := f.svc.Submit(context.Background(), "user-1", "dog-1")

	_, err := f.svc.Transition(context.Background(), admin, a.ID, StatusHomeVisitScheduled, nil)
	if !errors.Is(err, ErrMissingDate) {
		t.Fatalf("expected ErrMissingDate, got %v", err)
	}
}

func TestService_Transition_RejectionFromTerminalFails(t *testing.T) {
	f := newFixture(t, Policy{})

	a, _ := f.svc.Submit(context.Background(), "user-1", "dog-1")
	if _, err := f.svc.Transition(context.Background(), admin, a.ID, StatusRejected, nil); err != nil {
		t.Fatalf("rejection error: %v", err)
	}

	_, err := f.svc.Transition(context.Background(), admin, a.ID, StatusRejected, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition from REJECTED, got %v", err)
	}
}

func TestService_Transition_ConcurrentAdminsOneWins(t *testing.T) {
	f := newFixture(t, Policy{})

	a, _ := f.svc.Submit(context.Background(), "user-1", "dog-1")
	d := time.Now()
	a, err := f.svc.Transition(context.Background(), admin, a.ID, StatusHomeVisitScheduled, &d)
	if err != nil {
		t.Fatalf("setup transition error: %v", err)
	}

	// Admin A gana la carrera.
	if _, err := f.svc.Transition(context.Background(), admin, a.ID, StatusHomeVisitCompleted, nil); err != nil {
		t.Fatalf("first concurrent transition error: %v", err)
	}

	// Admin B leyó el mismo snapshot (HOME_VISIT_SCHEDULED) antes del write
	// de A; su update condicionado debe fallar.
	stale := a
	f.repo.getStale = &stale
	_, err = f.svc.Transition(context.Background(), admin, a.ID, StatusHomeVisitCompleted, nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for losing admin, got %v", err)
	}
}

func TestService_Transition_NotifierFailureDoesNotFail(t *testing.T) {
	f := newFixture(t, Policy{})

	a, _ := f.svc.Submit(context.Background(), "user-1", "dog-1")
	f.notifier.fail = true

	a, err := f.svc.Transition(context.Background(), admin, a.ID, StatusRejected, nil)
	if err != nil {
		t.Fatalf("transition must succeed despite notifier failure, got %v", err)
	}
	if a.Status != StatusRejected {
		t.Fatalf("expected REJECTED, got %s", a.Status)
	}
}

// -------------------------
// Listados y detalle
// -------------------------

func TestService_GetByID_OwnerAndAdminOnly(t *testing.T) {
	f := newFixture(t, Policy{})

	a, _ := f.svc.Submit(context.Background(), "user-1", "dog-1")

	if _, err := f.svc.GetByID(context.Background(), Actor{UserID: "user-1", Role: users.RoleUser}, a.ID); err != nil {
		t.Fatalf("owner must read own application: %v", err)
	}
	if _, err := f.svc.GetByID(context.Background(), admin, a.ID); err != nil {
		t.Fatalf("admin must read any application: %v", err)
	}
	_, err := f.svc.GetByID(context.Background(), Actor{UserID: "user-2", Role: users.RoleUser}, a.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for stranger, got %v", err)
	}
}

func TestService_ListAll_RequiresAdmin(t *testing.T) {
	f := newFixture(t, Policy{})

	_, err := f.svc.ListAll(context.Background(), Actor{UserID: "user-1", Role: users.RoleUser}, AdminFilter{})
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_ListAll_EmbedsAndFilters(t *testing.T) {
	f := newFixture(t, Policy{})

	if _, err := f.svc.Submit(context.Background(), "user-1", "dog-1"); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	views, err := f.svc.ListAll(context.Background(), admin, AdminFilter{})
	if err != nil {
		t.Fatalf("ListAll error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("expected 1 view, got %d", len(views))
	}
	if views[0].User.Name != "Asha" || views[0].Dog.Name != "Rocky" {
		t.Fatalf("expected embedded user+dog, got %#v", views[0])
	}

	// Texto libre contra nombre del perro.
	views, _ = f.svc.ListAll(context.Background(), admin, AdminFilter{Query: "rocky"})
	if len(views) != 1 {
		t.Fatalf("expected query 'rocky' to match, got %d", len(views))
	}
	views, _ = f.svc.ListAll(context.Background(), admin, AdminFilter{Query: "zeppelin"})
	if len(views) != 0 {
		t.Fatalf("expected no match for 'zeppelin', got %d", len(views))
	}

	// Status exacto.
	views, _ = f.svc.ListAll(context.Background(), admin, AdminFilter{Status: StatusRejected})
	if len(views) != 0 {
		t.Fatalf("expected no REJECTED views, got %d", len(views))
	}

	if _, err := f.svc.ListAll(context.Background(), admin, AdminFilter{Status: Status("PENDING")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status filter, got %v", err)
	}
}

func TestService_ListByOwner_FiltersByDog(t *testing.T) {
	f := newFixture(t, Policy{})

	f.dogs.byID["dog-3"] = dogs.Dog{ID: "dog-3", Name: "Charlie", Status: dogs.StatusAvailable}

	if _, err := f.svc.Submit(context.Background(), "user-1", "dog-1"); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if _, err := f.svc.Submit(context.Background(), "user-1", "dog-3"); err != nil {
		t.Fatalf("Submit error: %v", err)
	}

	all, err := f.svc.ListByOwner(context.Background(), "user-1", "")
	if err != nil {
		t.Fatalf("ListByOwner error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(all))
	}

	only, _ := f.svc.ListByOwner(context.Background(), "user-1", "dog-3")
	if len(only) != 1 || only[0].DogID != "dog-3" {
		t.Fatalf("expected dog filter to apply, got %#v", only)
	}
}
