package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type App struct {
	// DB
	PGDSN string `envconfig:"PG_DSN" required:"true"`
	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`
	// RabbitMQ
	RabbitURL       string `envconfig:"RABBIT_URL" required:"true"`
	BookingExchange string `envconfig:"BOOKING_EXCHANGE" default:"booking.exchange"`
	CallbackQueue   string `envconfig:"CALLBACK_QUEUE" default:"booking.callback.q"`
	CallbackDLX     string `envconfig:"CALLBACK_DLX" default:"booking.callback.dlx"`
	CallbackDLQ     string `envconfig:"CALLBACK_DLQ" default:"booking.callback.q.dlq"`
	NotifyQueue     string `envconfig:"NOTIFY_QUEUE" default:"notification.q"`
	NotifyDLX       string `envconfig:"NOTIFY_DLX" default:"notification.dlx"`
	NotifyDLQ       string `envconfig:"NOTIFY_DLQ" default:"notification.q.dlq"`
	// Payment gateway
	GatewayBaseURL   string `envconfig:"GATEWAY_BASE_URL" default:"https://api.paystack.co"`
	GatewaySecretKey string `envconfig:"GATEWAY_SECRET_KEY" required:"true"`
	// Reconciliation
	VerifyAttempts int           `envconfig:"VERIFY_ATTEMPTS" default:"3"`
	VerifyBackoff  time.Duration `envconfig:"VERIFY_BACKOFF" default:"200ms"`
	PendingTimeout time.Duration `envconfig:"PENDING_TIMEOUT" default:"30m"`
	SweepInterval  time.Duration `envconfig:"SWEEP_INTERVAL" default:"5m"`
}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}
