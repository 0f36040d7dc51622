package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/consumer"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/events"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/gateway"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/notifier"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/repository"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/service"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/pkg/config"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/pkg/db"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/pkg/mq"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/pkg/obs"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func main() {
	cfg := must(config.Load())

	shutdown := obs.InitTracer("roomquest-worker")
	defer func() { _ = shutdown(context.Background()) }()

	gdb := db.Open(cfg.PGDSN)
	resourceRepo := repository.NewResourceRepo(gdb)
	must(0, resourceRepo.Migrate())
	bookingRepo := repository.NewBookingRepo(gdb)
	must(0, bookingRepo.Migrate())

	pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.BookingExchange))
	defer pub.Close()

	gw := gateway.NewPaystackClient(cfg.GatewayBaseURL, cfg.GatewaySecretKey)

	verifier := service.NewVerifier(bookingRepo, resourceRepo, gw, pub, cfg.VerifyAttempts, cfg.VerifyBackoff)
	coordinator := service.NewCoordinator(resourceRepo, bookingRepo, pub)
	reconciler := service.NewReconciler(resourceRepo, bookingRepo, verifier, coordinator)
	sweeper := service.NewSweeper(bookingRepo, pub, cfg.PendingTimeout, cfg.SweepInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	callbackCons := must(mq.NewConsumer(mq.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.BookingExchange,
		Queue:    cfg.CallbackQueue,
		Bindings: []string{events.RKPaymentCallback},
		Prefetch: 8,
		UseDLX:   true,
		DLXName:  cfg.CallbackDLX,
		DLXQueue: cfg.CallbackDLQ,
	}))
	defer callbackCons.Close()

	notifyCons := must(mq.NewConsumer(mq.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.BookingExchange,
		Queue:    cfg.NotifyQueue,
		Bindings: []string{"booking.*"},
		Prefetch: 16,
		UseDLX:   true,
		DLXName:  cfg.NotifyDLX,
		DLXQueue: cfg.NotifyDLQ,
	}))
	defer notifyCons.Close()

	cc := consumer.NewCallbackConsumer(reconciler, callbackCons)
	go func() {
		if err := cc.Run(ctx); err != nil {
			log.Printf("[worker] callback consumer error: %v", err)
		}
	}()
	log.Println("[worker] callback consumer started", "queue="+cfg.CallbackQueue)

	nw := notifier.NewWorker(notifyCons, notifier.NewConsole(), bookingRepo, resourceRepo)
	go func() {
		if err := nw.Run(ctx); err != nil {
			log.Printf("[worker] notifier error: %v", err)
		}
	}()
	log.Println("[worker] notifier started", "queue="+cfg.NotifyQueue)

	go sweeper.Run(ctx)
	log.Printf("[worker] sweeper started interval=%s timeout=%s", cfg.SweepInterval, cfg.PendingTimeout)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
	time.Sleep(200 * time.Millisecond)
	log.Println("[worker] stopped")
}
