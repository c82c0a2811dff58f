package dogs

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Dog
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Dog{}}
}

func (r *testRepo) Create(ctx context.Context, d Dog) error {
	if d.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[d.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[d.ID] = d
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Dog, error) {
	d, ok := r.byID[id]
	if !ok {
		return Dog{}, errRepoNotFound
	}
	return d, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Dog, error) {
	out := make([]Dog, 0)
	for _, d := range r.byID {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, d Dog) error {
	if _, ok := r.byID[d.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[d.ID] = d
	return nil
}

// -------------------------
// Tests
// -------------------------

func validInput() CreateInput {
	return CreateInput{
		Name:          "Rocky",
		Breed:         "German Shepherd",
		Age:           "2 years",
		Gender:        "MALE",
		Location:      "Hyderabad",
		ContactNumber: "+919876543214",
		OwnerName:     "Happy Tails",
	}
}

func TestService_Create_DefaultsAndStatus(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	d, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if d.Status != StatusAvailable {
		t.Fatalf("expected AVAILABLE at creation, got %s", d.Status)
	}
	if d.ImageURL != defaultImageURL {
		t.Fatalf("expected placeholder image, got %s", d.ImageURL)
	}
	if d.CreatedAt != now || d.UpdatedAt != now {
		t.Fatalf("expected CreatedAt/UpdatedAt to be now")
	}
}

func TestService_Create_RequiredFields(t *testing.T) {
	svc := NewService(newTestRepo())

	in := validInput()
	in.Breed = "  "
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank breed, got %v", err)
	}

	in = validInput()
	in.Gender = "OTHER"
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown gender, got %v", err)
	}
}

func TestService_SetStatus_ValidatesValue(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	d, err := svc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.SetStatus(context.Background(), d.ID, Status("LOST")); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}

	updated, err := svc.SetStatus(context.Background(), d.ID, StatusAdopted)
	if err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}
	if updated.Status != StatusAdopted {
		t.Fatalf("expected ADOPTED, got %s", updated.Status)
	}

	// Idempotente: repetir el mismo status no es error.
	again, err := svc.SetStatus(context.Background(), d.ID, StatusAdopted)
	if err != nil {
		t.Fatalf("idempotent SetStatus error: %v", err)
	}
	if again.Status != StatusAdopted {
		t.Fatalf("expected ADOPTED, got %s", again.Status)
	}
}

func TestService_SetStatus_UnknownDog(t *testing.T) {
	svc := NewService(newTestRepo())

	_, err := svc.SetStatus(context.Background(), "ghost", StatusAdopted)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_List_StatusFilter(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	d1, _ := svc.Create(context.Background(), validInput())
	in := validInput()
	in.Name = "Bella"
	d2, _ := svc.Create(context.Background(), in)
	if _, err := svc.SetStatus(context.Background(), d2.ID, StatusAdopted); err != nil {
		t.Fatalf("SetStatus error: %v", err)
	}

	available, err := svc.List(context.Background(), ListFilter{Status: StatusAvailable})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(available) != 1 || available[0].ID != d1.ID {
		t.Fatalf("expected only %s AVAILABLE, got %#v", d1.ID, available)
	}

	if _, err := svc.List(context.Background(), ListFilter{Status: Status("LOST")}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus for unknown filter, got %v", err)
	}
}
