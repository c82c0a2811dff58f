package users

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// -------------------------
// Fakes
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID    map[string]User
	byEmail map[string]string
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]User{}, byEmail: map[string]string{}}
}

func (r *testRepo) Create(ctx context.Context, u User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return errors.New("repo: email taken")
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (User, error) {
	u, ok := r.byID[id]
	if !ok {
		return User{}, errRepoNotFound
	}
	return u, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	id, ok := r.byEmail[email]
	if !ok {
		return User{}, errRepoNotFound
	}
	return r.byID[id], nil
}

func (r *testRepo) Update(ctx context.Context, u User) error {
	if _, ok := r.byID[u.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[u.ID] = u
	return nil
}

type testNotifier struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (n *testNotifier) Send(ctx context.Context, phone, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("sms down")
	}
	n.sent = append(n.sent, message)
	return nil
}

func newTestService() (*Service, *testRepo, *testNotifier) {
	repo := newTestRepo()
	notifier := &testNotifier{}
	svc := NewService(repo, notifier, nil)
	svc.now = func() time.Time {
		return time.Date(2025, 12, 22, 10, 0, 0, 0, time.UTC)
	}
	svc.dispatch = func(fn func()) { fn() } // síncrono en tests
	return svc, repo, notifier
}

func validRegister() RegisterInput {
	return RegisterInput{
		Name:          "Ravi Kumar",
		Email:         "Ravi@Example.com",
		Phone:         "9876543210",
		Address:       "Hyderabad",
		Password:      "s3cret!",
		IDDocumentRef: "uploads/ravi-aadhaar.pdf",
	}
}

// -------------------------
// Tests
// -------------------------

func TestService_Register_Defaults(t *testing.T) {
	svc, _, notifier := newTestService()

	u, err := svc.Register(context.Background(), validRegister())
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if u.Verified {
		t.Fatalf("new accounts must start unverified")
	}
	if u.Role != RoleUser {
		t.Fatalf("expected role USER, got %s", u.Role)
	}
	if u.Email != "ravi@example.com" {
		t.Fatalf("expected lowercased email, got %s", u.Email)
	}
	if u.PasswordHash == "" || u.PasswordHash == "s3cret!" {
		t.Fatalf("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("s3cret!")); err != nil {
		t.Fatalf("hash does not match original password: %v", err)
	}

	if len(notifier.sent) != 1 {
		t.Fatalf("expected one verification sms, got %d", len(notifier.sent))
	}
	if !strings.HasPrefix(notifier.sent[0], "Your AdoptAPaw verification code is: ") {
		t.Fatalf("unexpected sms body: %q", notifier.sent[0])
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Register(context.Background(), validRegister()); err != nil {
		t.Fatalf("first Register error: %v", err)
	}

	in := validRegister()
	in.Email = "RAVI@example.com" // mismo email con otro casing
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestService_Register_RequiredFields(t *testing.T) {
	svc, _, _ := newTestService()

	in := validRegister()
	in.Phone = "  "
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestService_Register_SMSFailureDoesNotAbort(t *testing.T) {
	svc, _, notifier := newTestService()
	notifier.fail = true

	u, err := svc.Register(context.Background(), validRegister())
	if err != nil {
		t.Fatalf("Register must succeed even if sms fails, got %v", err)
	}
	if u.ID == "" {
		t.Fatalf("expected persisted user")
	}
}

func TestService_Verify_FlipsOnce(t *testing.T) {
	svc, repo, _ := newTestService()

	u, err := svc.Register(context.Background(), validRegister())
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	verified, err := svc.Verify(context.Background(), "ravi@example.com")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !verified.Verified {
		t.Fatalf("expected Verified=true")
	}

	// Idempotente: verificar de nuevo no es error y no cambia nada.
	again, err := svc.Verify(context.Background(), "RAVI@example.com")
	if err != nil {
		t.Fatalf("second Verify error: %v", err)
	}
	if !again.Verified {
		t.Fatalf("expected Verified=true on repeat")
	}

	stored, _ := repo.GetByID(context.Background(), u.ID)
	if !stored.Verified {
		t.Fatalf("flip not persisted")
	}
}

func TestService_Verify_UnknownEmail(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Verify(context.Background(), "ghost@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_EnsureAdmin(t *testing.T) {
	svc, _, _ := newTestService()

	u, err := svc.EnsureAdmin(context.Background(), "Admin", "admin@adoptapaw.local", "+919999999999", "changeme")
	if err != nil {
		t.Fatalf("EnsureAdmin error: %v", err)
	}
	if u.Role != RoleAdmin || !u.Verified {
		t.Fatalf("bootstrap admin must be verified ADMIN, got role=%s verified=%v", u.Role, u.Verified)
	}

	// Segunda llamada devuelve la cuenta existente sin pisarla.
	again, err := svc.EnsureAdmin(context.Background(), "Other Name", "admin@adoptapaw.local", "", "otherpass")
	if err != nil {
		t.Fatalf("second EnsureAdmin error: %v", err)
	}
	if again.ID != u.ID || again.Name != "Admin" {
		t.Fatalf("EnsureAdmin must not overwrite existing account")
	}
}
