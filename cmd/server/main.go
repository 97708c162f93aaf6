package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"paws/internal/domain/appraisal"
	"paws/internal/domain/audit"
	"paws/internal/domain/identity"
	"paws/internal/domain/kpi"
	"paws/internal/domain/notifications"
	"paws/internal/domain/reports"
	"paws/internal/domain/template"
	"paws/internal/platform/config"
	"paws/internal/platform/crypto"
	"paws/internal/platform/db"
	"paws/internal/platform/email"
	"paws/internal/platform/metrics"
	"paws/internal/transport/http/api"
	appraisalshandler "paws/internal/transport/http/handlers/appraisals"
	audithandler "paws/internal/transport/http/handlers/audit"
	authhandler "paws/internal/transport/http/handlers/auth"
	kpishandler "paws/internal/transport/http/handlers/kpis"
	notificationshandler "paws/internal/transport/http/handlers/notifications"
	reportshandler "paws/internal/transport/http/handlers/reports"
	templateshandler "paws/internal/transport/http/handlers/templates"
	usershandler "paws/internal/transport/http/handlers/users"
	"paws/internal/transport/http/middleware"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			log.Fatalf("migrations failed: %v", err)
		}
	}

	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	}

	cryptoSvc, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		log.Fatalf("data encryption key invalid: %v", err)
	}

	collector := metrics.New()
	mailer := email.New(cfg)

	identityStore := identity.NewStore(pool)
	identityService := identity.NewService(identityStore)
	kpiStore := kpi.NewStore(pool)
	kpiService := kpi.NewService(kpiStore)
	templateStore := template.NewStore(pool)
	templateService := template.NewService(templateStore)
	notifier := notifications.New(notifications.NewStore(pool), mailer, cfg.EmailFrom)
	appraisalStore := appraisal.NewStore(pool)
	appraisalService := appraisal.NewService(appraisalStore, templateStore, identityStore, notifier, collector)
	reportsService := reports.NewService(reports.NewStore(pool))
	auditService := audit.New(pool)

	isProd := cfg.Environment == "production"

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(collector))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret, identityStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.With(middleware.RequirePermission(identity.PermReportHR)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(identityStore, identityService, cfg.JWTSecret, cryptoSvc, auditService, cfg.AllowSelfSignup, isProd).RegisterRoutes(r)
		usershandler.NewHandler(identityStore, identityService, auditService).RegisterRoutes(r)
		kpishandler.NewHandler(kpiService, auditService).RegisterRoutes(r)
		templateshandler.NewHandler(templateService, auditService).RegisterRoutes(r)
		appraisalshandler.NewHandler(appraisalService, auditService).RegisterRoutes(r)
		reportshandler.NewHandler(reportsService, identityStore).RegisterRoutes(r)
		notificationshandler.NewHandler(notifier).RegisterRoutes(r)
		audithandler.NewHandler(auditService).RegisterRoutes(r)
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	log.Printf("PAWS server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
