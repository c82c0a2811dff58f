package dogs

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrInvalidStatus = errors.New("invalid status value")
	ErrNotFound      = errors.New("dog not found")
)

const defaultImageURL = "/images/dog-placeholder.jpg"

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type CreateInput struct {
	Name          string
	Breed         string
	Age           string
	Gender        string
	Location      string
	ContactNumber string
	OwnerName     string
	ImageURL      string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Dog, error) {
	required := []string{in.Name, in.Breed, in.Age, in.Gender, in.Location, in.ContactNumber, in.OwnerName}
	for _, v := range required {
		if strings.TrimSpace(v) == "" {
			return Dog{}, ErrInvalidInput
		}
	}

	gender := Gender(strings.TrimSpace(in.Gender))
	if gender != GenderMale && gender != GenderFemale {
		return Dog{}, ErrInvalidInput
	}

	img := strings.TrimSpace(in.ImageURL)
	if img == "" {
		img = defaultImageURL
	}

	now := s.now()
	d := Dog{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(in.Name),
		Breed:         strings.TrimSpace(in.Breed),
		Age:           strings.TrimSpace(in.Age),
		Gender:        gender,
		Location:      strings.TrimSpace(in.Location),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		OwnerName:     strings.TrimSpace(in.OwnerName),
		ImageURL:      img,
		Status:        StatusAvailable,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return Dog{}, err
	}
	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Dog, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Dog{}, ErrInvalidInput
	}
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Dog{}, ErrNotFound
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Dog, error) {
	if f.Status != "" && f.Status != StatusAvailable && f.Status != StatusAdopted {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, f)
}

// SetStatus setea el status del perro en forma directa (endpoint admin y
// el flip AVAILABLE->ADOPTED que dispara el workflow de adopción).
// Idempotente: setear el status que ya tiene no es error.
func (s *Service) SetStatus(ctx context.Context, id string, status Status) (Dog, error) {
	if status != StatusAvailable && status != StatusAdopted {
		return Dog{}, ErrInvalidStatus
	}

	d, err := s.GetByID(ctx, id)
	if err != nil {
		return Dog{}, err
	}
	if d.Status == status {
		return d, nil
	}

	d.Status = status
	d.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, d); err != nil {
		return Dog{}, err
	}
	return d, nil
}
