package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"coffeehouse/internal/catalog"
	"coffeehouse/internal/config"
	"coffeehouse/internal/events"
	httpapi "coffeehouse/internal/http"
	"coffeehouse/internal/logger"
	"coffeehouse/internal/repository"
	"coffeehouse/internal/schedule"
	"coffeehouse/internal/service"

	_ "coffeehouse/docs"
)

func main() {
	configPath := flag.String("c", "coffeehouse.yml", "config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log, err := logger.Init(cfg.Logger)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	store, err := openStore(cfg.Storage)
	if err != nil {
		log.Fatal("open store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer func() { _ = store.Close() }()
	log.Info("store ready", zap.String("driver", cfg.Storage.Driver))

	tx := repository.NewStoreTx(store)
	carts := repository.NewCartRepository(store, log)
	orders := repository.NewOrderRepository(store, log)
	loyaltyRepo := repository.NewLoyaltyRepository(store, log)
	profiles := repository.NewProfileRepository(store, log)
	chatRepo := repository.NewChatRepository(store, log)

	sched := schedule.NewCronScheduler(log)
	bus := events.New()
	menu := catalog.Default()

	loyalty := service.NewLoyaltyService(loyaltyRepo, tx, log)
	ordersSvc, err := service.NewOrderService(orders, carts, profiles, loyalty, tx, bus,
		service.OrderServiceConfig{NodeID: cfg.Shop.NodeID, QRBaseURL: cfg.Shop.QRBaseURL}, log)
	if err != nil {
		log.Fatal("order service", zap.Error(err))
	}
	tracker := service.NewOrderTracker(ordersSvc, sched, cfg.Shop.StatusInterval, log)

	if !cfg.System.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := httpapi.NewServer(httpapi.Services{
		Catalog: service.NewCatalogService(menu),
		Cart:    service.NewCartService(menu, carts, loyaltyRepo, profiles, tx, log),
		Loyalty: loyalty,
		Orders:  ordersSvc,
		Tracker: tracker,
		Chat:    service.NewChatService(chatRepo, tx, sched, cfg.Shop.ChatReplyDelay, bus, log),
		Profile: service.NewProfileService(profiles),
		Events:  bus,
	}, log)

	handler := cors.New(cors.Options{
		AllowedOrigins: cfg.Web.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", httpapi.SessionHeader},
	}).Handler(srv.Engine())

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sched.Start()
	go func() {
		log.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
	tracker.StopAll()
	sched.Stop()
}

func openStore(cfg config.StorageConfig) (repository.Store, error) {
	switch cfg.Driver {
	case "memory":
		return repository.NewMemoryStore(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, err
		}
		return repository.NewRedisStore(client, cfg.Redis.Prefix), nil
	default:
		return repository.OpenBolt(cfg.BoltPath)
	}
}
