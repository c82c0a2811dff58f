package applications

// Tabla de transiciones: única fuente de verdad sobre qué cambio de status
// es legal. Handlers, UI y el workflow service preguntan acá; nadie más
// compara strings de status por su cuenta.

// forward define el único sucesor hacia adelante de cada estado.
// Progresión lineal estricta, sin saltos.
var forward = map[Status]Status{
	StatusSubmitted:           StatusHomeVisitScheduled,
	StatusHomeVisitScheduled:  StatusHomeVisitCompleted,
	StatusHomeVisitCompleted:  StatusFinalVisitScheduled,
	StatusFinalVisitScheduled: StatusCompleted,
}

// IsValid dice si s es uno de los seis estados definidos.
func IsValid(s Status) bool {
	switch s {
	case StatusSubmitted, StatusHomeVisitScheduled, StatusHomeVisitCompleted,
		StatusFinalVisitScheduled, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

// IsTerminal dice si s no tiene transiciones salientes.
func IsTerminal(s Status) bool {
	return s == StatusCompleted || s == StatusRejected
}

// CanTransition valida la arista (from -> to).
// Desde cualquier estado no terminal se puede ir a REJECTED;
// lo demás es solo el sucesor lineal. No hay self-transitions.
func CanTransition(from, to Status) bool {
	if !IsValid(from) || !IsValid(to) {
		return false
	}
	if IsTerminal(from) {
		return false
	}
	if to == StatusRejected {
		return true
	}
	return forward[from] == to
}

// NeedsDate indica si entrar a `to` exige una fecha de visita.
func NeedsDate(to Status) bool {
	return to == StatusHomeVisitScheduled || to == StatusFinalVisitScheduled
}

// NextStatuses lista los destinos legales desde `from`.
// Lo usa la capa de render/admin para ofrecer solo acciones válidas.
func NextStatuses(from Status) []Status {
	if !IsValid(from) || IsTerminal(from) {
		return nil
	}
	return []Status{forward[from], StatusRejected}
}
