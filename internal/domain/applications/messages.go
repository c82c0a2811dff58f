package applications

import "fmt"

// statusMessage arma el texto del SMS que recibe el adoptante en cada
// cambio de status.
func statusMessage(status Status, dogName string) string {
	switch status {
	case StatusSubmitted:
		return fmt.Sprintf("Your adoption application for %s has been received. We'll contact you soon to schedule a home visit.", dogName)
	case StatusHomeVisitScheduled:
		return fmt.Sprintf("Your home visit for the adoption of %s has been scheduled. Please prepare for the visit.", dogName)
	case StatusHomeVisitCompleted:
		return fmt.Sprintf("Great news! Your home visit for %s's adoption has been completed. We'll schedule your final visit soon.", dogName)
	case StatusFinalVisitScheduled:
		return fmt.Sprintf("Your final visit to complete %s's adoption has been scheduled. Please bring all required documents.", dogName)
	case StatusCompleted:
		return fmt.Sprintf("Congratulations! Your adoption of %s is now complete. Welcome to the AdoptAPaw family!", dogName)
	case StatusRejected:
		return fmt.Sprintf("We regret to inform you that your application for %s has been declined. Please contact us for more information.", dogName)
	default:
		return fmt.Sprintf("There's an update on your adoption application for %s. Please check your account for details.", dogName)
	}
}
