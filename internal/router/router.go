package router

import (
	"context"
	"database/sql"
	"net/http"
	"os"

	mem "adoptapaw-service/internal/adapters/storage/memory"
	pg "adoptapaw-service/internal/adapters/storage/postgres"
	"adoptapaw-service/internal/domain/applications"
	"adoptapaw-service/internal/domain/dogs"
	"adoptapaw-service/internal/domain/users"
	"adoptapaw-service/internal/middleware"
	"adoptapaw-service/internal/platform/logger"
	"adoptapaw-service/internal/ports/auth"
	"adoptapaw-service/internal/ports/notify"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcional: notifier SMS. Si es nil no se envía nada; los services
	// lo tratan como best-effort igual.
	Notifier notify.Notifier

	Log logger.Logger

	Policy applications.Policy
}

func NewRouter(opts Options) http.Handler {
	log := opts.Log
	if log == nil {
		log = logger.NewFromEnv()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var (
		userRepo users.Repository
		dogRepo  dogs.Repository
		appRepo  applications.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warn("postgres unavailable, falling back to in-memory", map[string]any{"error": err.Error()})
			}
		}
	}

	if db != nil {
		userRepo = pg.NewUsersRepo(db)
		dogRepo = pg.NewDogsRepo(db)
		appRepo = pg.NewApplicationsRepo(db)
	} else {
		userRepo = mem.NewUsersRepo()
		dogRepo = mem.NewDogsRepo()
		appRepo = mem.NewApplicationsRepo()
	}

	policy := opts.Policy
	if os.Getenv("ALLOW_REAPPLY_AFTER_REJECTION") == "true" {
		policy.ReapplyAfterRejection = true
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, opts.Notifier, log)
	dogsSvc := dogs.NewService(dogRepo)
	appsSvc := applications.NewService(appRepo, usersSvc, dogsSvc, opts.Notifier, log, policy)

	// Admin de bootstrap (cubre el arranque en memoria y deployments nuevos)
	if email := os.Getenv("ADMIN_BOOTSTRAP_EMAIL"); email != "" {
		_, err := usersSvc.EnsureAdmin(
			context.Background(),
			os.Getenv("ADMIN_BOOTSTRAP_NAME"),
			email,
			os.Getenv("ADMIN_BOOTSTRAP_PHONE"),
			os.Getenv("ADMIN_BOOTSTRAP_PASSWORD"),
		)
		if err != nil {
			log.Warn("admin bootstrap failed", map[string]any{"error": err.Error()})
		}
	}

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	dogs.RegisterRoutes(r, dogsSvc)
	applications.RegisterRoutes(r, appsSvc)

	return r
}
