package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/relaycall/signaling/config"
	"github.com/relaycall/signaling/internal/auth"
	"github.com/relaycall/signaling/internal/handlers"
	"github.com/relaycall/signaling/internal/presence"
	"github.com/relaycall/signaling/internal/room"
	"github.com/relaycall/signaling/internal/turncred"
)

func main() {
	// Missing shared secrets refuse startup; everything past this point is
	// per-connection and non-fatal.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	gateway, err := auth.New(cfg.RoomPassword)
	if err != nil {
		log.Fatalf("Auth gateway: %v", err)
	}

	minter, err := turncred.New(turncred.Config{
		SharedSecret: cfg.TURN.Secret,
		TTLSeconds:   cfg.TURN.TTLSeconds,
		Label:        "relay",
	})
	if err != nil {
		log.Fatalf("TURN credential minter: %v", err)
	}

	var store presence.Store = presence.Noop{}
	if cfg.Redis.Addr != "" {
		redisStore, err := presence.NewRedis(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisStore.Close()
		store = redisStore
		log.Println("Redis presence mirror enabled")
	}

	registry := room.NewRegistry()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(handlers.OriginFilter(cfg.AllowedOrigins))

	handlers.Register(router, handlers.Deps{
		Gateway:  gateway,
		Minter:   minter,
		Registry: registry,
		Router:   room.NewRouter(registry),
		Presence: store,
		TURN:     cfg.TURN,
	})

	log.Printf("Relay signaling server on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
