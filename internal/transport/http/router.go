package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/marketplace-verify/internal/application/blacklist"
	"github.com/marketplace-verify/internal/application/identity"
	"github.com/marketplace-verify/internal/application/profile"
	"github.com/marketplace-verify/internal/application/resolver"
	"github.com/marketplace-verify/internal/application/verification"
	"github.com/marketplace-verify/internal/config"
	"github.com/marketplace-verify/internal/pkg/sessiontoken"
	"github.com/marketplace-verify/internal/transport/http/handler"
	appmiddleware "github.com/marketplace-verify/internal/transport/http/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	signer := sessiontoken.NewSigner(cfg.SessionSecret, cfg.SessionLifetime)
	sessions := appmiddleware.NewSessionManager(deps.SessionRepo, signer, cfg.SessionLifetime, cfg.AppEnv == "production")
	r.Use(sessions.Middleware)

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	identitySvc := identity.NewService(deps.Reddit)
	resolvers := resolver.NewSet(
		resolver.NewXboxResolver(deps.Xbox),
		resolver.NewPSNResolver(deps.PSN, deps.OperatorAlerts),
	)
	blacklistSvc := blacklist.NewService(deps.RecordRepo, deps.Trello, deps.Notifier, cfg.TrelloBoardIDs, cfg.BaseURL)
	verificationSvc := verification.NewService(deps.RecordRepo, identitySvc, resolvers, blacklistSvc)
	profileSvc := profile.NewService(deps.RecordRepo, deps.Reddit, deps.Xbox, deps.PSN)

	healthH := handler.NewHealthHandler()
	oauthH := handler.NewOAuthHandler(verificationSvc, sessions, deps.Reddit, deps.RecordRepo)
	verificationH := handler.NewVerificationHandler(verificationSvc, sessions)
	profileH := handler.NewProfileHandler(profileSvc, sessions)

	r.Get("/health-check/{action}", healthH.Ping)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Get("/", oauthH.Index)
	r.Post("/reddit_oauth", oauthH.RedditOAuth)
	r.With(sensitiveRL.Limit).Get("/login/callback", oauthH.Callback)

	r.Route("/user", func(r chi.Router) {
		r.Get("/search_username", profileH.Search)
		r.Get("/update_info", profileH.UpdateInfo)
		r.Get("/logout", profileH.Logout)
		r.Get("/{username}", profileH.Get)
	})

	r.Route("/user_verification", func(r chi.Router) {
		r.Get("/", verificationH.NextStep)
		r.Post("/redirect", verificationH.SelectPlatforms)
		r.Post("/gamertag", verificationH.SubmitGamerTag)
		r.With(sensitiveRL.Limit).Post("/verify_code", verificationH.SubmitCode)
		r.Post("/user_profile", verificationH.AcceptAgreement)
	})

	return r
}
