package dogs

import "time"

// Gender del perro.
// @Enum MALE, FEMALE
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Status de adopción del perro.
// AVAILABLE -> ADOPTED la dispara el workflow cuando una solicitud llega a
// COMPLETED. No existe camino de "deshacer adopción" en el core; el volver
// a AVAILABLE solo puede hacerlo un admin por el endpoint directo.
// @Enum AVAILABLE, ADOPTED
type Status string

const (
	StatusAvailable Status = "AVAILABLE"
	StatusAdopted   Status = "ADOPTED"
)

// Dog es un perro publicado para adopción.
type Dog struct {
	ID string

	Name          string
	Breed         string
	Age           string // texto libre: "2 years", "6 months"
	Gender        Gender
	Location      string
	ContactNumber string
	OwnerName     string // refugio o dueño actual
	ImageURL      string

	Status Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
