package consumer

import (
	"context"
	"errors"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/events"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/service"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/pkg/mq"
)

// CallbackConsumer drains the durable gateway-callback queue and feeds each
// delivery into the reconciler. Delivery is at-least-once; the pipeline's
// reference-based idempotency makes redelivery harmless.
type CallbackConsumer struct {
	rec  *service.Reconciler
	cons *mq.Consumer
}

func NewCallbackConsumer(rec *service.Reconciler, cons *mq.Consumer) *CallbackConsumer {
	return &CallbackConsumer{rec: rec, cons: cons}
}

func (c *CallbackConsumer) Run(ctx context.Context) error {
	msgs, err := c.cons.Deliveries(ctx)
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
			c.handle(ctx, d)
		}
	}
}

func (c *CallbackConsumer) handle(ctx context.Context, d amqp.Delivery) {
	if d.RoutingKey != events.RKPaymentCallback {
		_ = d.Ack(false)
		return
	}
	evt, err := events.MustUnmarshal[events.PaymentCallback](d.Body)
	if err != nil {
		log.Printf("[consumer] unmarshal error: %v", err)
		_ = d.Nack(false, false)
		return
	}

	_, err = c.rec.Process(ctx, service.ProcessInput{
		Reference:      evt.Reference,
		ResourceID:     evt.ResourceID,
		Amount:         evt.Amount,
		ContactChannel: evt.ContactChannel,
	})
	switch {
	case err == nil,
		errors.Is(err, service.ErrAlreadyProcessed),
		errors.Is(err, service.ErrAmountMismatch),
		errors.Is(err, service.ErrPaymentFailed):
		// Settled one way or another; redelivery would be a no-op.
		_ = d.Ack(false)
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrNoTransaction):
		// Redelivery cannot fix these; park on the DLX.
		log.Printf("[consumer] dropping callback ref=%s: %v", evt.Reference, err)
		_ = d.Nack(false, false)
	case errors.Is(err, service.ErrVerification):
		log.Printf("[consumer] verification pending ref=%s: %v -> requeue", evt.Reference, err)
		_ = d.Nack(false, true)
	default:
		log.Printf("[consumer] process error ref=%s: %v -> requeue", evt.Reference, err)
		_ = d.Nack(false, true)
	}
}
