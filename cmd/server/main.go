package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Sriraj1234/Aim-Academy-sub003/internal/cache"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/config"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/notify"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/service"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/store"
	"github.com/Sriraj1234/Aim-Academy-sub003/internal/transport/rest"
)

func main() {
	if err := godotenv.Load(); err == nil {
		logrus.Info("loaded environment from .env")
	}

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Room store: Mongo when configured, in-memory otherwise.
	var roomStore store.RoomStore
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			logrus.Fatalf("failed to connect to MongoDB: %v", err)
		}
		defer mongoClient.Disconnect(ctx)

		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := mongoClient.Ping(pingCtx, nil); err != nil {
			pingCancel()
			logrus.Fatalf("failed to ping MongoDB: %v", err)
		}
		pingCancel()
		logrus.Info("connected to MongoDB")

		roomStore = store.NewMongoStore(mongoClient.Database(cfg.MongoDatabase))
	} else {
		logrus.Info("MONGO_URI not set, using in-memory room store")
		roomStore = store.NewMemoryStore()
	}

	// Leaderboard: optional, Redis-backed.
	var leaderboard cache.Leaderboard
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			logrus.Fatalf("failed to ping Redis: %v", err)
		}
		logrus.Info("connected to Redis")

		leaderboard = cache.NewLeaderboard(rdb)
	} else {
		logrus.Info("REDIS_ADDR not set, live leaderboard disabled")
	}

	notifier := notify.NewNotifier()
	authSvc := service.NewAuthService(cfg.JWTSecret)
	roomSvc := service.NewRoomService(roomStore, notifier, leaderboard, authSvc)
	gameSvc := service.NewGameService(roomStore, notifier, leaderboard)

	go roomSvc.RunReaper(ctx, cfg.ReaperInterval)

	router := rest.NewRouter(&rest.Container{
		AuthService: authSvc,
		RoomService: roomSvc,
		GameService: gameSvc,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		logrus.Infof("server starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("ListenAndServe: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Fatalf("server forced to shutdown: %v", err)
	}

	logrus.Info("server exited")
}
