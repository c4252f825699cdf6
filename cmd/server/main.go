package main

import (
	"database/sql"
	"log"

	_ "github.com/lib/pq"

	"github.com/todmy/topic-groups/internal/api"
	"github.com/todmy/topic-groups/internal/auth"
	"github.com/todmy/topic-groups/internal/config"
	"github.com/todmy/topic-groups/internal/groups"
	"github.com/todmy/topic-groups/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	if err := storage.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	if cfg.JWTSecret == "" {
		log.Printf("JWT_SECRET is not set, using the development secret")
	}
	authService := auth.NewJWTService(auth.Config{
		SecretKey:     cfg.JWTSecret,
		TokenDuration: cfg.TokenDuration,
	}, auth.NewPostgresRepository(db))

	server := api.NewServer(api.ServerConfig{
		Store:          storage.NewStore(db),
		Auth:           authService,
		AllowedOrigins: cfg.CORSOrigins,
		Dashboard: groups.Options{
			WordcloudTerms: cfg.WordcloudTerms,
			BarplotTopics:  cfg.BarplotTopics,
			AssetsHost:     cfg.AssetsHost,
		},
	})

	log.Printf("Starting topic-groups server on %s", cfg.Addr())
	if err := server.Run(cfg.Addr()); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
