package notifier

import (
	"fmt"
	"log"
	"strings"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
)

// Notifier is the outbound channel for admin handoff notices (Email/Slack/
// WhatsApp relay). Failures here never touch booking state.
type Notifier interface {
	Notify(subject, message string) error
}

// ConsoleNotifier logs notices; the default sink.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Notify(subject, message string) error {
	log.Printf("[notify] %s :: %s", subject, message)
	return nil
}

// FormatAmount renders minor units as a human-readable money string.
func FormatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s %s%d.%02d", strings.ToUpper(currency), sign, minor/100, minor%100)
}

// HandoffMessage builds the human-readable follow-up for a finalized booking:
// which property, what was paid, and how to reach the guest. Pure formatting,
// no I/O.
func HandoffMessage(b *domain.Booking, resourceName string) string {
	name := resourceName
	if name == "" {
		name = b.ResourceID
	}
	return fmt.Sprintf("%s %q — fee %s — contact %s — ref %s — status %s",
		b.ResourceKind, name, FormatAmount(b.Amount, b.Currency), b.ContactChannel, b.PaymentReference, b.Status)
}
