package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/osama-shakil/ppcode/internal/application"
	appreports "github.com/osama-shakil/ppcode/internal/application/reports"
	"github.com/osama-shakil/ppcode/internal/config"
	"github.com/osama-shakil/ppcode/internal/domain/history"
	domain "github.com/osama-shakil/ppcode/internal/domain/reports"
	openaic "github.com/osama-shakil/ppcode/internal/infra/ai/openai"
	"github.com/osama-shakil/ppcode/internal/infra/db/memory"
	mysqlp "github.com/osama-shakil/ppcode/internal/infra/db/mysql"
	postgresp "github.com/osama-shakil/ppcode/internal/infra/db/postgres"
	"github.com/osama-shakil/ppcode/internal/infra/docgen"
	"github.com/osama-shakil/ppcode/internal/infra/extract"
	"github.com/osama-shakil/ppcode/internal/infra/geocode"
	"github.com/osama-shakil/ppcode/internal/infra/httpserver"
	"github.com/osama-shakil/ppcode/internal/infra/storage"
	"github.com/osama-shakil/ppcode/internal/middleware"
)

func main() {
	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("config load error: %v", err)
		}
		log.Printf("no config file at %s, using defaults", path)
		cfg = config.Default()
	}

	ctx := context.Background()

	store, err := storage.NewLocal(cfg.Reports.Dir)
	if err != nil {
		log.Fatalf("report store init error: %v", err)
	}

	histRepo, closeDB, err := openHistory(ctx, cfg)
	if err != nil {
		log.Fatalf("history store error: %v", err)
	}
	defer closeDB()

	var archive domain.Archiver
	if cfg.Minio.Endpoint != "" {
		a, err := storage.NewArchive(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archive = a
	}

	svc := &appreports.Service{
		Store:               store,
		History:             histRepo,
		Archive:             archive,
		Clock:               application.SystemClock{},
		DefaultCompTemplate: cfg.Reports.CompTemplatePath,
		NewProperty: func() (domain.PropertyGenerator, error) {
			var geocoder docgen.Geocoder
			if key := cfg.GoogleKey(); key != "" {
				geocoder = geocode.NewClient(key)
			} else {
				log.Printf("GOOGLE_API_KEY not set, geocoding and map images disabled")
			}
			var narrator docgen.Narrator
			if key := cfg.OpenAIKey(); key != "" {
				narrator = openaic.NewClient(key, os.Getenv("OPENAI_MODEL"))
			} else {
				log.Printf("OPENAI_API_KEY not set, generated narratives disabled")
			}
			gen, err := docgen.NewPropertyGenerator(cfg.Reports.PropertyTemplatePath, store, geocoder, narrator, application.SystemClock{})
			if err != nil {
				return nil, err
			}
			return gen, nil
		},
		NewComp: func() (domain.CompExtractor, error) {
			return extract.NewCompExtractor(store, application.SystemClock{}), nil
		},
	}

	status := svc.Initialize()
	log.Printf("adapters ready: property=%t comp=%t", status.PropertyGenerator, status.CompExtractor)

	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(cfg.Auth.Keys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Auth.Keys))
	}
	mux.Use(middleware.RateLimitMiddleware(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate))
	mux.Mount("/", httpserver.NewRouter(svc))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // report generation calls external APIs
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openHistory picks the history backend by configured driver.
func openHistory(ctx context.Context, cfg *config.Config) (history.Repository, func(), error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		return mysqlp.NewHistoryRepository(db), func() { db.Close() }, nil
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		return postgresp.NewHistoryRepository(db), func() { db.Close() }, nil
	case "none", "":
		return memory.NewHistoryRepository(0), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}
}
