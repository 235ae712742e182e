package router

import (
	"net/http"

	_ "pet-adoption/docs"
	"pet-adoption/internal/adapters/capabilities/roles"
	"pet-adoption/internal/domain/adoptions"
	"pet-adoption/internal/domain/pets"
	"pet-adoption/internal/domain/reports"
	"pet-adoption/internal/domain/users"
	"pet-adoption/internal/middleware"
	"pet-adoption/internal/platform/logger"
	"pet-adoption/internal/platform/metrics"
	"pet-adoption/internal/platform/respond"
	"pet-adoption/internal/ports/auth"
	"pet-adoption/internal/ports/capabilities"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Logger logger.Logger

	// Verifier puede ser nil (modo dev: solo headers de debug).
	Verifier auth.AuthVerifier
	// Tokens emite los JWT de register/login.
	Tokens auth.TokenIssuer
	// DebugHeaders habilita X-Debug-User-ID / X-Debug-User-Role.
	DebugHeaders bool

	// Opcional: si no viene, stores en memoria.
	Stores *Stores

	// Opcional: default roles.NewAuthorizer(false).
	Authorizer capabilities.Authorizer

	// Opcional: si no viene, se crea un registry propio.
	Metrics *metrics.Metrics

	RateLimitRPS   float64
	RateLimitBurst int

	// Solo tests.
	BcryptCost int
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	authz := opts.Authorizer
	if authz == nil {
		authz = roles.NewAuthorizer(false)
	}

	var st Stores
	if opts.Stores != nil {
		st = *opts.Stores
	} else {
		st = MemoryStores()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Observe(log, m))

	r.Use(middleware.AuthContext(opts.Verifier, opts.DebugHeaders))
	r.Use(middleware.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst, log).Handler)

	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Services por módulo
	petsSvc := pets.NewService(st.Pets, st.Users, authz)
	usersSvc := users.NewService(st.Users, st.Pets, opts.Tokens)
	if opts.BcryptCost > 0 {
		usersSvc = usersSvc.WithBcryptCost(opts.BcryptCost)
	}
	adoptionsSvc := adoptions.NewService(st.Adoptions, st.Pets, authz, log).WithObserver(m)
	reportsSvc := reports.NewService(st.Reports, petsSvc, authz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			respond.OK(w, http.StatusOK, map[string]string{"status": "ok", "backend": st.Backend})
		})

		// Rutas por módulo
		pets.RegisterRoutes(r, petsSvc, log)
		users.RegisterRoutes(r, usersSvc, log)
		adoptions.RegisterRoutes(r, adoptionsSvc, log)
		reports.RegisterRoutes(r, reportsSvc, log)
	})

	return r
}
