package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"bikeshop/internal/account"
	"bikeshop/internal/api"
	"bikeshop/internal/booking"
	"bikeshop/internal/catalog"
	"bikeshop/internal/metrics"
	"bikeshop/internal/notify"
	"bikeshop/pkg/config"
)

type Dependencies struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Log      zerolog.Logger
	Notifier *notify.Dispatcher
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(api.RequestLogger(deps.Log))
	r.Use(api.CORSMiddleware(api.CORSOptions{
		AllowedOrigins: deps.Cfg.AllowedOrigins,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	accountsRepo := account.NewRepository(deps.DB)
	accountHandlers := account.Handlers{
		Cfg:      deps.Cfg,
		Accounts: accountsRepo,
		Log:      deps.Log,
	}

	offeringsRepo := catalog.NewRepository(deps.DB)
	catalogHandlers := catalog.Handlers{
		Offerings: offeringsRepo,
		Log:       deps.Log,
	}

	bookingsRepo := booking.NewRepository(deps.DB)
	bookingSvc := booking.NewService(bookingsRepo, offeringsRepo, deps.Notifier, deps.Log)
	bookingHandlers := booking.Handlers{
		Svc: bookingSvc,
		Log: deps.Log,
	}

	r.Post("/auth/register", accountHandlers.Register)
	r.Post("/auth/login", accountHandlers.Login)

	// Catalog reads are public.
	r.Get("/services", catalogHandlers.List)

	// Catalog mutation and booking queue management: owner only, checked
	// server-side against the signed session token.
	r.Group(func(r chi.Router) {
		r.Use(api.SessionAuth(deps.Cfg.SessionSecret))
		r.Use(api.RequireRole(account.RoleOwner))

		r.Post("/services", catalogHandlers.Create)
		r.Put("/services/{id}", catalogHandlers.Update)
		r.Delete("/services/{id}", catalogHandlers.Delete)

		r.Patch("/bookings/{id}/status", bookingHandlers.PatchStatus)
		r.Delete("/bookings/{id}", bookingHandlers.Delete)
	})

	// Booking reads are scoped inside the handler; creation is customer only.
	r.Group(func(r chi.Router) {
		r.Use(api.SessionAuth(deps.Cfg.SessionSecret))

		r.Get("/bookings", bookingHandlers.List)
		r.Get("/bookings/{id}", bookingHandlers.Get)
		r.With(api.RequireRole(account.RoleCustomer)).Post("/bookings", bookingHandlers.Create)
	})

	return r
}
