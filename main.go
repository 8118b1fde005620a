// File: slotwise/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotwise/config"
	"slotwise/cron"
	"slotwise/database"
	bookingRepo "slotwise/database/repository/booking"
	slotRepo "slotwise/database/repository/slot"
	"slotwise/handlers"
	"slotwise/middleware"
	"slotwise/routes"
	"slotwise/services/availability"
	"slotwise/services/booking"
	"slotwise/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	slots := slotRepo.NewMongoSlotRepo()
	bookings := bookingRepo.NewMongoBookingRepo()
	if err := slots.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create slot indexes: %v", err)
	}
	if err := bookings.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to create booking indexes: %v", err)
	}

	// services.
	clock := utils.NewSystemClock()
	engine := availability.NewEngine(
		slots,
		clock,
		logger,
		time.Duration(config.AppConfig.HoldTTLSeconds)*time.Second,
		config.AppConfig.SlotGranularityMin,
	)

	bookingService := &booking.Service{
		Bookings: bookings,
		Engine:   engine,
		Gateway:  booking.NewStripeGateway(logger),
		Clock:    clock,
		Logger:   logger,
	}

	availabilityHandler := handlers.NewAvailabilityHandler(engine, utils.GetCacheClient(), logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)

	// Register routes.
	routes.RegisterRoutes(router, availabilityHandler, bookingHandler)

	// Periodic hold reconciliation.
	cron.InitReconcileWorker(engine, clock)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
