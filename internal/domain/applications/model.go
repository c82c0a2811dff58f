package applications

import "time"

// Status del ciclo de vida de una solicitud de adopción.
// @Enum SUBMITTED, HOME_VISIT_SCHEDULED, HOME_VISIT_COMPLETED, FINAL_VISIT_SCHEDULED, COMPLETED, REJECTED
type Status string

const (
	StatusSubmitted           Status = "SUBMITTED"
	StatusHomeVisitScheduled  Status = "HOME_VISIT_SCHEDULED"
	StatusHomeVisitCompleted  Status = "HOME_VISIT_COMPLETED"
	StatusFinalVisitScheduled Status = "FINAL_VISIT_SCHEDULED"
	StatusCompleted           Status = "COMPLETED"
	StatusRejected            Status = "REJECTED"
)

// Application es la solicitud de un usuario para adoptar un perro.
// Se crea en SUBMITTED y solo el workflow service muta su status.
// Nunca se borra: REJECTED es terminal pero queda como registro.
type Application struct {
	ID     string
	UserID string
	DogID  string

	Status Status

	// Las fechas, una vez fijadas, no se limpian en transiciones
	// posteriores (quedan como histórico).
	HomeVisitDate  *time.Time
	FinalVisitDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
