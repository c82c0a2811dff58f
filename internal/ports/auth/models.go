package auth

// Roles que viajan en los claims. Espejo de users.Role; los handlers
// comparan contra estas constantes sin mirar el registro de usuario.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Claims representa la información extraída del token.
// Role viene siempre explícito: no hay fallback por email de admin.
type Claims struct {
	UserID string
	Email  string
	Role   string
}
