package services

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/neuralblades/platinum-V1-sub000/internal/cache"
	"github.com/neuralblades/platinum-V1-sub000/internal/config"
	"github.com/neuralblades/platinum-V1-sub000/internal/metrics"
	"github.com/neuralblades/platinum-V1-sub000/internal/ratelimit"
	"github.com/neuralblades/platinum-V1-sub000/internal/storage"
)

// RouterDeps bundles the shared infrastructure the handlers need.
type RouterDeps struct {
	DB      *gorm.DB
	Cache   cache.Store
	Limiter ratelimit.Limiter
	Uploads storage.Storage
}

// NewRouter assembles the full HTTP surface: public marketing reads,
// form submissions, auth, and the admin endpoints behind role guards.
func NewRouter(cfg *config.Config, deps RouterDeps) http.Handler {
	db := deps.DB

	emailSvc := NewEmailService(&cfg.Email)
	propertySvc := NewPropertyService(db, deps.Cache, deps.Uploads, cfg.Uploads.PlaceholderImage)
	inquirySvc := NewInquiryService(db, emailSvc)
	developerSvc := NewDeveloperService(db)
	blogSvc := NewBlogService(db)
	testimonialSvc := NewTestimonialService(db)
	teamSvc := NewTeamService(db, deps.Cache)
	contactSvc := NewContactService(db, emailSvc)
	userSvc := NewUserService(db, emailSvc)

	limitLogin := ratelimit.Middleware(deps.Limiter, "login", ratelimit.LoginPolicy)
	limitSubmit := ratelimit.Middleware(deps.Limiter, "submit", ratelimit.SubmitPolicy)
	limitListing := ratelimit.Middleware(deps.Limiter, "listing", ratelimit.ListingPolicy)
	limitRead := ratelimit.Middleware(deps.Limiter, "read", ratelimit.ReadPolicy)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.PrometheusMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: true,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.Get("/health", Health(db))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.Uploads.Dir))))

	r.Route("/api", func(r chi.Router) {
		r.Route("/properties", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limitListing)
				r.Get("/", propertySvc.List)
				r.Get("/featured", propertySvc.Featured)
				r.Get("/offplan", propertySvc.Offplan)
				r.Get("/{id}", propertySvc.Get)
			})
			r.With(limitSubmit).Post("/{id}/inquiries", inquirySvc.Create)
			r.Group(func(r chi.Router) {
				r.Use(RequireAgent(db))
				r.Post("/", propertySvc.Create)
				r.Put("/{id}", propertySvc.Update)
			})
			r.With(RequireAdmin(db)).Delete("/{id}", propertySvc.Delete)
		})

		r.Route("/inquiries", func(r chi.Router) {
			r.With(limitSubmit).Post("/offplan", inquirySvc.CreateOffplan)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(db))
				r.Get("/", inquirySvc.List)
				r.Get("/offplan", inquirySvc.ListOffplan)
				r.Put("/{id}/status", inquirySvc.UpdateStatus)
			})
		})

		r.Route("/developers", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limitRead)
				r.Get("/", developerSvc.List)
				r.Get("/{slug}", developerSvc.GetBySlug)
			})
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(db))
				r.Post("/", developerSvc.Create)
				r.Put("/{id}", developerSvc.Update)
			})
		})

		r.Route("/blog", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limitRead, OptionalAuth(db))
				r.Get("/", blogSvc.List)
				r.Get("/recent", blogSvc.Recent)
				r.Get("/tags", blogSvc.Tags)
				r.Get("/{slug}", blogSvc.Get)
			})
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(db))
				r.Post("/", blogSvc.Create)
				r.Put("/{id}", blogSvc.Update)
				r.Delete("/{id}", blogSvc.Delete)
			})
		})

		r.Route("/testimonials", func(r chi.Router) {
			r.With(limitRead).Get("/", testimonialSvc.List)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(db))
				r.Get("/all", testimonialSvc.ListAll)
				r.Get("/{id}", testimonialSvc.Get)
				r.Post("/", testimonialSvc.Create)
				r.Put("/{id}", testimonialSvc.Update)
				r.Put("/{id}/approve", testimonialSvc.Approve)
				r.Delete("/{id}", testimonialSvc.Delete)
			})
		})

		r.Route("/team", func(r chi.Router) {
			r.With(limitRead).Get("/", teamSvc.List)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(db))
				r.Get("/all", teamSvc.ListAll)
				r.Post("/", teamSvc.Create)
				r.Put("/{id}", teamSvc.Update)
				r.Delete("/{id}", teamSvc.Delete)
			})
		})

		r.Route("/contact", func(r chi.Router) {
			r.With(limitSubmit).Post("/", contactSvc.Create)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin(db))
				r.Get("/", contactSvc.List)
				r.Put("/{id}/read", contactSvc.MarkRead)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.With(limitSubmit).Post("/", userSvc.Register)
			r.With(limitLogin).Post("/login", userSvc.Login)
			r.With(limitLogin).Post("/forgot-password", userSvc.ForgotPassword)
			r.With(limitLogin).Post("/reset-password/{token}", userSvc.ResetPassword)
			r.With(RequireAuth(db)).Get("/me", userSvc.Me)
			r.With(RequireAdmin(db)).Get("/", userSvc.List)
		})
	})

	return r
}
