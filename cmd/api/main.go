package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/gateway"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/handlers"
	"github.com/Emmanuel-Simpe-Osei/RoomQuest-sub000/internal/middlewares"
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

	shutdown := obs.InitTracer("roomquest-api")
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
	sessions := service.NewSessionSvc(resourceRepo, bookingRepo)
	sweeper := service.NewSweeper(bookingRepo, pub, cfg.PendingTimeout, cfg.SweepInterval)

	r := gin.Default()
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	sh := handlers.NewSessionHandler(sessions, gw)
	bh := handlers.NewBookingHandler(reconciler, bookingRepo)
	wh := handlers.NewWebhookHandler(pub)
	ah := handlers.NewAdminHandler(resourceRepo, bookingRepo, sweeper)

	api := r.Group("/api")
	{
		api.POST("/sessions", sh.Create)
		api.POST("/bookings", bh.Record)
		api.GET("/bookings/:reference", bh.Get)
		api.POST("/webhooks/gateway", wh.Receive)

		admin := api.Group("/admin", middlewares.JWTAuth(), middlewares.RequireRole("ADMIN"))
		{
			admin.POST("/resources", ah.CreateResource)
			admin.GET("/resources", ah.ListResources)
			admin.GET("/resources/:id", ah.GetResource)
			admin.PATCH("/resources/:id/state", ah.UpdateResourceState)
			admin.POST("/bookings/expire-pending", ah.ExpirePending)
			admin.POST("/bookings/:reference/refunded", ah.MarkRefunded)
		}
	}

	log.Println("[api] listening on", cfg.HTTPAddr)
	log.Fatal(r.Run(cfg.HTTPAddr))
}
