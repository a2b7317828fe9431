package main

import (
	"context"
	"log"

	"go-quota-availability/config"
	"go-quota-availability/internal/cache"
	"go-quota-availability/internal/database"
	"go-quota-availability/internal/handler"
	"go-quota-availability/internal/queue"
	"go-quota-availability/internal/repository"
	"go-quota-availability/internal/service"
	"go-quota-availability/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()

	pool, err := database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer pool.Close()

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	defer rdb.Close()

	// 依後端引擎選定「兩值取大」聚合函數，不支援的引擎在這裡直接失敗
	greatest, err := database.SelectGreatestFunc(cfg.Database.Engine)
	if err != nil {
		log.Fatalf("Failed to select aggregate function: %v", err)
	}

	quotaRepo := repository.NewQuotaRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	consumptionRepo := repository.NewConsumptionRepository(pool, greatest)

	snapshot := cache.NewAvailabilityCacheManager(rdb)
	guard := cache.NewRedisRefreshGuard(rdb, 0)

	refreshQueue, err := queue.NewRedisStreamRefreshQueue(rdb, "", nil)
	if err != nil {
		log.Fatalf("Failed to initialize refresh queue: %v", err)
	}

	availabilityService := service.NewAvailabilityService(quotaRepo, consumptionRepo)
	quotaService := service.NewQuotaService(quotaRepo, eventRepo)
	refreshService := service.NewRefreshService(
		eventRepo, quotaRepo, availabilityService, snapshot, guard, refreshQueue, cfg.Scheduler,
	)

	ctx := context.Background()
	refreshWorker := worker.NewRefreshWorker(refreshService, refreshQueue)
	if err := refreshWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start refresh worker: %v", err)
	}
	refreshWorker.StartPeriodicTrigger(ctx, cfg.Scheduler.Period)

	router := gin.Default()
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	handler.NewAvailabilityHandler(quotaService, availabilityService, refreshService, snapshot).RegisterRoutes(router)
	handler.NewQuotaHandler(quotaService).RegisterRoutes(router)

	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
