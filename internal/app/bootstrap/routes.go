// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	auditlogfeature "github.com/dalemusser/donorhub/internal/app/features/auditlog"
	compatibilityfeature "github.com/dalemusser/donorhub/internal/app/features/compatibility"
	donorsfeature "github.com/dalemusser/donorhub/internal/app/features/donors"
	errorsfeature "github.com/dalemusser/donorhub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/donorhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/donorhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/donorhub/internal/app/features/logout"
	universitiesfeature "github.com/dalemusser/donorhub/internal/app/features/universities"
	userinfofeature "github.com/dalemusser/donorhub/internal/app/features/userinfo"
	usersfeature "github.com/dalemusser/donorhub/internal/app/features/users"
	auditstore "github.com/dalemusser/donorhub/internal/app/store/audit"
	donorstore "github.com/dalemusser/donorhub/internal/app/store/donors"
	userstore "github.com/dalemusser/donorhub/internal/app/store/users"
	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/auth"
	"github.com/dalemusser/donorhub/internal/app/system/metrics"
	"github.com/dalemusser/donorhub/internal/app/system/ratelimit"
	"github.com/dalemusser/donorhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Background workers started by BuildHandler; Shutdown stops them.
var (
	loginLimiter   *ratelimit.LoginLimiter
	registryGauges *workers.RegistryGauges
)

// BuildHandler constructs the root router. WAFFLE calls it once config, the
// Mongo connection, schema setup and Startup have all completed.
//
// Every route under /api speaks JSON. The session middleware runs globally so
// handlers and RequireSignedIn/RequireRole can read the current user.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Re-read the account on each request so deleted users and role changes
	// take effect without waiting for the cookie to expire.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(userstore.New(deps.MongoDatabase)))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLogger := auditlog.New(auditstore.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	csrfProtect, err := auth.NewCSRF(appCfg.SessionKey, secure, appCfg.CSRFTrustedOrigins, logger)
	if err != nil {
		logger.Error("csrf init failed", zap.Error(err))
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(sessionMgr.LoadSessionUser)
	// Every unsafe method must echo the X-CSRF-Token header issued on a
	// previous response; login included.
	r.Use(csrfProtect)

	healthHandler := healthfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	if appCfg.MetricsEnabled {
		r.Handle("/metrics", m.Handler())
		if appCfg.RegistryRefresh > 0 {
			registryGauges = workers.NewRegistryGauges(donorstore.New(deps.MongoDatabase), m, logger, appCfg.RegistryRefresh)
			registryGauges.Start()
		}
	}

	// Authentication
	loginLimiter = ratelimit.NewLoginLimiter()
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, loginLimiter, m, auditLogger, logger)
	r.Mount("/api/auth/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	r.Mount("/api/auth/logout", logoutfeature.Routes(logoutHandler))

	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Donor registry
	donorsHandler := donorsfeature.NewHandler(deps.MongoDatabase, errLog, m, auditLogger, appCfg.ExportFilenamePrefix, appCfg.MaxImportRows, logger)
	r.Mount("/api/donors", donorsfeature.Routes(donorsHandler, sessionMgr))

	r.Mount("/api/compatibility", compatibilityfeature.Routes(compatibilityfeature.NewHandler()))

	universitiesHandler := universitiesfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, logger)
	r.Mount("/api/universities", universitiesfeature.Routes(universitiesHandler, sessionMgr))

	// Account administration
	usersHandler := usersfeature.NewHandler(deps.MongoDatabase, errLog, auditLogger, logger)
	r.Mount("/api/users", usersfeature.Routes(usersHandler, sessionMgr))

	auditHandler := auditlogfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/api/audit", auditlogfeature.Routes(auditHandler, sessionMgr))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.WriteError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorsfeature.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r, nil
}
