package users

import "time"

// Role del usuario. Toda la autorización del sistema se decide sobre este
// atributo; no hay whitelisting por email ni casos especiales.
// @Enum USER, ADMIN
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User es una cuenta registrada (adoptante o admin).
type User struct {
	ID    string
	Name  string
	Email string // único

	Phone   string
	Address string

	PasswordHash string

	// Referencia opaca al documento de identidad subido en el registro.
	// El almacenamiento del archivo vive fuera de este servicio.
	IDDocumentRef string

	// Verified lo flipea el paso de verificación de identidad.
	// Solo usuarios verificados pueden crear solicitudes de adopción.
	Verified bool
	Role     Role

	CreatedAt time.Time
	UpdatedAt time.Time
}
