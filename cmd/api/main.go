package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-scheduler/internal/db"
	"github.com/BruksfildServices01/salon-scheduler/internal/locks"
	"github.com/BruksfildServices01/salon-scheduler/internal/routes"
)

func main() {

	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	db := dbpkg.NewDB(cfg)

	// Redis é opcional: sem ele o lock consultivo vira no-op e a recheca
	// transacional segue garantindo a correção.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL", zap.Error(err))
		}
		rdb = redis.NewClient(opt)
	}
	staffDayLock := locks.NewStaffDayLock(rdb, 10*time.Second)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.RegisterRoutes(r, db, cfg, log, staffDayLock)

	log.Info("server running", zap.String("addr", cfg.Addr()))
	if err := r.Run(cfg.Addr()); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
