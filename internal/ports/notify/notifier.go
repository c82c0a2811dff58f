package notify

import "context"

// Notifier entrega un SMS al número indicado. La entrega es best-effort:
// quien llama loguea el error y nunca lo propaga como fallo de la
// operación que lo disparó.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}
