package users

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"adoptapaw-service/internal/platform/logger"
	"adoptapaw-service/internal/ports/notify"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrEmailTaken   = errors.New("user with this email already exists")
	ErrNotFound     = errors.New("user not found")
)

type Service struct {
	repo     Repository
	notifier notify.Notifier // opcional; el código de verificación es best-effort
	log      logger.Logger
	now      func() time.Time

	// dispatch corre el envío del SMS fuera del request.
	// Inyectable en tests para hacerlo síncrono.
	dispatch func(fn func())
}

func NewService(repo Repository, notifier notify.Notifier, log logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		dispatch: func(fn func()) { go fn() },
	}
}

type RegisterInput struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	Password      string
	IDDocumentRef string
}

// Register crea la cuenta sin verificar y dispara el SMS con el código.
// El fallo del SMS no aborta el registro.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	phone := strings.TrimSpace(in.Phone)
	address := strings.TrimSpace(in.Address)

	if name == "" || email == "" || phone == "" || address == "" || in.Password == "" {
		return User{}, ErrInvalidInput
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:            uuid.NewString(),
		Name:          name,
		Email:         email,
		Phone:         phone,
		Address:       address,
		PasswordHash:  string(hash),
		IDDocumentRef: strings.TrimSpace(in.IDDocumentRef),
		Verified:      false,
		Role:          RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}

	s.sendVerificationCode(u)
	return u, nil
}

// Verify marca la cuenta como verificada. La decisión de aprobar el
// documento de identidad ocurre fuera de este servicio; acá solo se
// materializa el flip.
func (s *Service) Verify(ctx context.Context, email string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return User{}, ErrInvalidInput
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return User{}, ErrNotFound
	}

	if u.Verified {
		return u, nil // idempotente
	}

	u.Verified = true
	u.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return User{}, ErrInvalidInput
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return u, nil
}

// EnsureAdmin garantiza que exista la cuenta admin de bootstrap.
// Si el email ya existe no toca nada (no pisa password ni rol).
func (s *Service) EnsureAdmin(ctx context.Context, name, email, phone, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, ErrInvalidInput
	}

	if existing, err := s.repo.GetByEmail(ctx, email); err == nil {
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Phone:        phone,
		PasswordHash: string(hash),
		Verified:     true,
		Role:         RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) sendVerificationCode(u User) {
	if s.notifier == nil || u.Phone == "" {
		return
	}

	code := 100000 + rand.Intn(900000)
	msg := fmt.Sprintf("Your AdoptAPaw verification code is: %d", code)
	phone := u.Phone
	log := s.log.With(map[string]any{"user_id": u.ID})

	s.dispatch(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := s.notifier.Send(ctx, phone, msg); err != nil {
			log.Warn("verification sms failed", map[string]any{"error": err.Error()})
		}
	})
}
