package notifier

import (
	"context"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/domain"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/events"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/pkg/mq"
)

type BookingReader interface {
	ByID(ctx context.Context, id string) (*domain.Booking, error)
}

type ResourceReader interface {
	ByID(ctx context.Context, id string) (*domain.Resource, error)
}

// Worker turns booking lifecycle events into admin notices. Lookups are
// read-only; a failed notice is retried via Nack and eventually parks on the
// dead-letter queue.
type Worker struct {
	cons      *mq.Consumer
	notifier  Notifier
	bookings  BookingReader
	resources ResourceReader
}

func NewWorker(cons *mq.Consumer, n Notifier, bookings BookingReader, resources ResourceReader) *Worker {
	return &Worker{cons: cons, notifier: n, bookings: bookings, resources: resources}
}

func (w *Worker) Run(ctx context.Context) error {
	msgs, err := w.cons.Deliveries(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			if err := w.handleDelivery(ctx, d); err != nil {
				log.Printf("[notify] handle error key=%s err=%v -> Nack", d.RoutingKey, err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (w *Worker) handoff(ctx context.Context, bookingID, resourceID string) (string, error) {
	b, err := w.bookings.ByID(ctx, bookingID)
	if err != nil {
		return "", err
	}
	name := ""
	if res, err := w.resources.ByID(ctx, resourceID); err == nil {
		name = res.Name
	}
	return HandoffMessage(b, name), nil
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) error {
	switch d.RoutingKey {
	case events.RKBookingConfirmed:
		ev, err := events.MustUnmarshal[events.BookingConfirmed](d.Body)
		if err != nil {
			return err
		}
		msg, err := w.handoff(ctx, ev.BookingID, ev.ResourceID)
		if err != nil {
			return err
		}
		return w.notifier.Notify("Booking confirmed", msg)

	case events.RKBookingRefundRequested:
		ev, err := events.MustUnmarshal[events.RefundRequested](d.Body)
		if err != nil {
			return err
		}
		msg, err := w.handoff(ctx, ev.BookingID, ev.ResourceID)
		if err != nil {
			return err
		}
		return w.notifier.Notify("Refund required", msg)

	case events.RKBookingDisputed:
		ev, err := events.MustUnmarshal[events.BookingDisputed](d.Body)
		if err != nil {
			return err
		}
		return w.notifier.Notify("Amount mismatch",
			fmt.Sprintf("Booking %s paid %s but the fee is %s (ref %s). Manual resolution required.",
				ev.BookingID,
				FormatAmount(ev.PaidAmount, ev.Currency),
				FormatAmount(ev.ExpectedAmount, ev.Currency),
				ev.Reference))

	case events.RKBookingCancelled:
		ev, err := events.MustUnmarshal[events.BookingsCancelled](d.Body)
		if err != nil {
			return err
		}
		return w.notifier.Notify("Stale bookings cancelled",
			fmt.Sprintf("Sweeper cancelled %d pending bookings older than %s.", ev.Count, ev.Cutoff))

	default:
		log.Printf("[notify] skip unknown key=%s", d.RoutingKey)
	}
	return nil
}
