package main

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/justp2p/justp2p-backend/internal/config"
	"github.com/justp2p/justp2p-backend/internal/database"
	"github.com/justp2p/justp2p-backend/internal/handlers"
	"github.com/justp2p/justp2p-backend/internal/middleware"
	"github.com/justp2p/justp2p-backend/internal/routes"
	"github.com/justp2p/justp2p-backend/internal/services"
	"github.com/justp2p/justp2p-backend/pkg/utils"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// The backup vault cannot run without its key: everything encrypted in an
	// earlier process lifetime would become unreadable under a fresh one.
	if cfg.EncryptionKey == "" {
		log.Fatal("ENCRYPTION_KEY not set. Generate one with: openssl rand -base64 32")
	}
	encryptionKey, err := utils.ParseEncryptionKey(cfg.EncryptionKey)
	if err != nil {
		log.Fatal("Invalid ENCRYPTION_KEY: ", err)
	}
	log.Println("✅ Encryption key configured")

	// Connect to MongoDB
	log.Printf("Connecting to MongoDB...")
	mongo, err := database.Connect(cfg.MongoURI, cfg.DBName)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	defer mongo.Disconnect()

	if err := mongo.EnsureUserIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}

	// Build services and handlers
	users := services.NewUserStore(mongo.DB)
	backupStore := services.NewBackupStore(mongo.DB)
	tokens := services.NewTokenService(cfg.JWTSecret)
	twofa := services.NewTwoFactorService(cfg.TOTPIssuer)

	authHandler := handlers.NewAuthHandler(users, tokens)
	twofaHandler := handlers.NewTwoFactorHandler(users, twofa)
	peerHandler := handlers.NewPeerHandler(users)
	backupHandler := handlers.NewBackupHandler(backupStore, encryptionKey)

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Production: security headers, host check and in-memory per-IP limits.
	// Otherwise: Redis-backed rate limiting when Redis is configured.
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, per-IP + login rate limiting)")
	} else if cfg.RedisURI != "" {
		log.Printf("Connecting to Redis...")
		rdb, err := database.ConnectRedis(cfg.RedisURI)
		if err != nil {
			log.Fatal("Failed to connect to Redis: ", err)
		}
		defer rdb.Close()
		r.Use(middleware.RedisRateLimit(rdb))
	}

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, authHandler, twofaHandler, peerHandler, backupHandler,
		middleware.Authenticator(tokens, users))

	log.Printf("🚀 JustP2P backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
