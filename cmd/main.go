package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "piximint/docs"
	"piximint/pkg/chat"
	"piximint/pkg/db"
	"piximint/pkg/marketplace"
	"piximint/pkg/nfts"
	"piximint/pkg/notify"
	"piximint/pkg/payments"
	"piximint/pkg/pixelate"
	"piximint/pkg/slots"
	"piximint/pkg/social"
	"piximint/pkg/storage"
	"piximint/pkg/users"
)

// @title           PixiMint API
// @version         1.0
// @description     REST API for the PixiMint pixel-art NFT minting and marketplace backend

// @host      piximint-backend.onrender.com
// @BasePath  /

// @schemes   http https

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	pool := db.Connect()
	defer pool.Close()

	platformWallet := os.Getenv("PLATFORM_WALLET_ADDRESS")
	if platformWallet == "" {
		log.Fatal("PLATFORM_WALLET_ADDRESS environment variable not set")
	}

	rpcURL := os.Getenv("SOLANA_RPC_URL")
	if rpcURL == "" {
		rpcURL = "https://api.mainnet-beta.solana.com"
	}
	verifier := payments.NewSolanaVerifier(rpcURL)

	uploader, err := storage.NewSpacesStorage(
		os.Getenv("SPACES_ACCESS_KEY"),
		os.Getenv("SPACES_SECRET_KEY"),
		os.Getenv("SPACES_REGION"),
		os.Getenv("SPACES_BUCKET"),
	)
	if err != nil {
		log.Fatal("Failed to configure image storage:", err)
	}

	notifier := notify.NewEmailNotifier()

	profileRepo := users.NewPostgresProfileRepository(pool)
	profileService := users.NewProfileService(profileRepo, verifier, platformWallet)
	profileHandler := users.NewProfileHandler(profileService)

	allocator := slots.NewAllocator(slots.NewPostgresSlotRepository(pool), slots.MaxSlots)
	transformer := pixelate.NewImagingTransformer(0)

	nftRepo := nfts.NewPostgresNFTRepository(pool)
	nftService := nfts.NewNFTService(nftRepo, profileRepo, allocator, transformer, uploader, notifier)
	nftHandler := nfts.NewNFTHandler(nftService)

	listingRepo := marketplace.NewPostgresListingRepository(pool)
	listingService := marketplace.NewMarketplaceService(listingRepo, nftRepo, profileRepo, verifier, notifier, platformWallet)
	listingHandler := marketplace.NewMarketplaceHandler(listingService)

	socialRepo := social.NewPostgresSocialRepository(pool)
	socialService := social.NewSocialService(socialRepo)
	socialHandler := social.NewSocialHandler(socialService)

	chatManager := chat.NewConnectionManager()
	chatHandler := chat.NewHandler(chatManager, chat.NewPostgresMessageStore(pool))

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(cors.New(corsConfigFromEnv()))

	profileHandler.RegisterRoutes(router)
	nftHandler.RegisterRoutes(router)
	listingHandler.RegisterRoutes(router)
	socialHandler.RegisterRoutes(router)
	chatHandler.RegisterRoutes(router)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	settings := loadTLSSettingsFromEnv()
	if err := settings.Validate(); err != nil {
		log.Fatalf("TLS settings invalid: %v", err)
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		if settings.EnableTLS {
			port = "8443"
		} else {
			port = "8080"
		}
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if !settings.EnableTLS {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("listen (HTTP): %v", err)
			}
			return
		}

		srv.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		if err := srv.ListenAndServeTLS(settings.CertPath, settings.KeyPath); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen (TLS): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

func corsConfigFromEnv() cors.Config {
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins == "" {
		origins = []string{"*"}
	} else {
		for _, p := range strings.Split(allowedOrigins, ",") {
			if o := strings.TrimSpace(p); o != "" {
				origins = append(origins, o)
			}
		}
		if len(origins) == 0 {
			origins = []string{"*"}
		}
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: strings.EqualFold(os.Getenv("CORS_ALLOW_CREDENTIALS"), "true"),
		MaxAge:           12 * time.Hour,
	}
}

// TLSSettings holds environment-driven TLS configuration.
type TLSSettings struct {
	EnableTLS bool
	CertPath  string
	KeyPath   string
	Env       string
}

// loadTLSSettingsFromEnv reads TLS settings from environment variables.
// Vars:
// - ENABLE_TLS: true/false
// - TLS_CERT_PATH / TLS_KEY_PATH: file paths to PEM cert/key
// - APP_ENV or ENV: "production" or "development"
func loadTLSSettingsFromEnv() TLSSettings {
	env := strings.ToLower(strings.TrimSpace(os.Getenv("APP_ENV")))
	if env == "" {
		env = strings.ToLower(strings.TrimSpace(os.Getenv("ENV")))
	}
	if env == "" {
		env = "development"
	}

	enableTLS := strings.EqualFold(os.Getenv("ENABLE_TLS"), "true")
	if env == "production" {
		enableTLS = true
	}

	return TLSSettings{
		EnableTLS: enableTLS,
		CertPath:  os.Getenv("TLS_CERT_PATH"),
		KeyPath:   os.Getenv("TLS_KEY_PATH"),
		Env:       env,
	}
}

// Validate ensures TLS settings are safe for the selected environment.
func (s TLSSettings) Validate() error {
	if s.EnableTLS && (s.CertPath == "" || s.KeyPath == "") {
		return fmt.Errorf("TLS_CERT_PATH and TLS_KEY_PATH are required when TLS is enabled")
	}
	return nil
}
