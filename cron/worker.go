package cron

import (
	"context"
	"fmt"
	"log"
	"time"

	"slotwise/config"
	"slotwise/services/availability"
	"slotwise/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

const TypeReconcileHolds = "holds:reconcile"

// InitReconcileWorker schedules the periodic hold-reconciliation sweep and
// runs the worker that executes it, both in the background. Expiry is
// enforced here rather than at read time, so abandoned reservation attempts
// never permanently lock a slot.
func InitReconcileWorker(engine *availability.Engine, clock utils.Clock) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	interval := config.AppConfig.ReconcileIntervalSec
	if interval <= 0 {
		interval = 30
	}

	scheduler := asynq.NewScheduler(redisOpts, nil)
	if _, err := scheduler.Register(
		fmt.Sprintf("@every %ds", interval),
		asynq.NewTask(TypeReconcileHolds, nil),
	); err != nil {
		log.Fatalf("[ReconcileWorker] failed to register periodic task: %v", err)
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReconcileHolds, handleReconcileTask(engine, clock))

	// Start Redis health monitor
	go monitorRedisConnection()

	go func() {
		log.Printf("[ReconcileWorker] scheduling hold reconciliation every %ds", interval)
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[ReconcileWorker] scheduler stopped: %v", err)
		}
	}()

	// Start async worker with retry logic
	go func() {
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[ReconcileWorker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[ReconcileWorker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleReconcileTask(engine *availability.Engine, clock utils.Clock) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		released, err := engine.ReconcileExpiredHolds(ctx, clock.Now())
		if err != nil {
			log.Printf("[ReconcileWorker] sweep failed: %v", err)
			return err
		}
		if released > 0 {
			log.Printf("[ReconcileWorker] released %d expired holds", released)
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[ReconcileWorker] redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
