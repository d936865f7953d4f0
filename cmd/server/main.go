package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"restaurant-pos/internal/auth"
	"restaurant-pos/internal/config"
	"restaurant-pos/internal/database"
	"restaurant-pos/internal/handler"
	"restaurant-pos/internal/queue"
	"restaurant-pos/internal/realtime"
	"restaurant-pos/internal/repository"
	"restaurant-pos/internal/router"
	"restaurant-pos/internal/store"
)

func main() {
	// Missing .env is fine in containers where the environment is injected.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	var feed realtime.Feed
	if rdb != nil {
		feed = realtime.NewRedisFeed(rdb)
	} else {
		// Single-instance fallback: change events still reach the local
		// stores and websocket streams, just not other terminals.
		log.Println("redis unavailable, using in-process change feed")
		feed = realtime.NewMemoryFeed()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	categories := repository.NewCategoryRepo(db)
	menu := repository.NewMenuRepo(db, feed)
	tables := repository.NewTableRepo(db, feed)
	orders := repository.NewOrderRepo(db, feed)
	reservations := repository.NewReservationRepo(db)
	shifts := repository.NewShiftRepo(db)
	analytics := repository.NewAnalyticsRepo(db)

	authSvc := auth.New(cfg, users, tokens)

	// Live mirrors behind the websocket dashboards. They hydrate once at
	// startup and stay in sync through the change feed; the kitchen mirror
	// re-fetches periodically to restore joins on rows first seen as bare
	// feed payloads.
	tableStore := store.NewTableStore(repository.TableClient{Tables: tables}, feed)
	orderStore := store.NewOrderStore(repository.OrderClient{Orders: orders}, feed)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := tableStore.Fetch(ctx); err != nil {
		log.Printf("tables: initial fetch failed: %v", err)
	}
	if err := orderStore.FetchItems(ctx); err != nil {
		log.Printf("orders: initial fetch failed: %v", err)
	}
	cancel()
	if _, err := tableStore.Subscribe(); err != nil {
		log.Fatalf("tables: subscribe failed: %v", err)
	}
	if _, err := orderStore.Subscribe(context.Background(), time.Minute); err != nil {
		log.Fatalf("orders: subscribe failed: %v", err)
	}

	go func() {
		if err := queue.StartOrderConsumer(); err != nil {
			log.Printf("order consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Handlers{
		Auth:         handler.NewAuthHandler(authSvc, users),
		Menu:         handler.NewMenuHandler(categories, menu),
		Tables:       handler.NewTableHandler(tables),
		Orders:       handler.NewOrderHandler(orders),
		Reservations: handler.NewReservationHandler(reservations, tables),
		Shifts:       handler.NewShiftHandler(shifts),
		Admin:        handler.NewAdminHandler(&cfg, users, analytics),
		Stream:       handler.NewStreamHandler(tableStore, orderStore, feed),
	}, cfg.JWTSecret, config.LoadRateLimitConfig(), rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
