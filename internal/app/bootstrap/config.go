// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/auditlog"
	"github.com/dalemusser/donorhub/internal/app/system/csvutil"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys are read through WAFFLE's config layer, so each key can come
// from a config file (mongo_uri), the environment (DONORHUB_MONGO_URI) or a
// flag (--mongo_uri).
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "donorhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 5, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "donorhub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime (Go duration, e.g. 12h)"},
	{Name: "csrf_trusted_origins", Default: "", Desc: "Comma-separated hosts (host[:port]) trusted for CSRF origin checks"},

	{Name: "bootstrap_admin_username", Default: "", Desc: "Username of the admin created when none exists"},
	{Name: "bootstrap_admin_password", Default: "", Desc: "Password for the bootstrap admin"},

	{Name: "export_filename_prefix", Default: "blood_donors", Desc: "Prefix of the donor CSV download filename"},
	{Name: "max_import_rows", Default: csvutil.MaxRows, Desc: "Maximum data rows accepted by one CSV import"},

	{Name: "metrics_enabled", Default: true, Desc: "Serve Prometheus metrics at /metrics"},
	{Name: "registry_refresh_interval", Default: "1m", Desc: "How often the donor registry gauges are recomputed (0 disables)"},

	{Name: "audit_log_auth", Default: auditlog.All, Desc: "Where login/logout events go: all, db, log, off"},
	{Name: "audit_log_admin", Default: auditlog.All, Desc: "Where donor and account changes go: all, db, log, off"},
}

// LoadConfig loads WAFFLE core config and donorhub's AppConfig. Precedence is
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "DONORHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),

		CSRFTrustedOrigins: splitList(appValues.String("csrf_trusted_origins")),

		BootstrapAdminUsername: strings.TrimSpace(appValues.String("bootstrap_admin_username")),
		BootstrapAdminPassword: appValues.String("bootstrap_admin_password"),

		ExportFilenamePrefix: appValues.String("export_filename_prefix"),
		MaxImportRows:        appValues.Int("max_import_rows"),

		MetricsEnabled:  appValues.Bool("metrics_enabled"),
		RegistryRefresh: appValues.Duration("registry_refresh_interval", time.Minute),

		AuditLogAuth:  strings.ToLower(strings.TrimSpace(appValues.String("audit_log_auth"))),
		AuditLogAdmin: strings.ToLower(strings.TrimSpace(appValues.String("audit_log_admin"))),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations that would fail later or run
// insecurely: a malformed Mongo URI, the development session key in
// production, and a half-specified bootstrap admin.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if strings.TrimSpace(appCfg.MongoDatabase) == "" {
		return errors.New("mongo_database must not be empty")
	}

	if appCfg.SessionKey == "" {
		return errors.New("session_key must not be empty")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return errors.New("session_key must be changed from the development default in prod")
	}

	if (appCfg.BootstrapAdminUsername == "") != (appCfg.BootstrapAdminPassword == "") {
		return errors.New("bootstrap_admin_username and bootstrap_admin_password must be set together")
	}

	if appCfg.MaxImportRows < 1 {
		return fmt.Errorf("max_import_rows must be positive, got %d", appCfg.MaxImportRows)
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	for _, o := range appCfg.CSRFTrustedOrigins {
		if strings.Contains(o, "://") || strings.Contains(o, "/") {
			return fmt.Errorf("csrf_trusted_origins entries are host[:port], got %q", o)
		}
	}

	if appCfg.RegistryRefresh < 0 {
		return fmt.Errorf("registry_refresh_interval must not be negative, got %s", appCfg.RegistryRefresh)
	}

	if !auditlog.ValidSetting(appCfg.AuditLogAuth) {
		return fmt.Errorf("audit_log_auth must be all, db, log or off, got %q", appCfg.AuditLogAuth)
	}
	if !auditlog.ValidSetting(appCfg.AuditLogAdmin) {
		return fmt.Errorf("audit_log_admin must be all, db, log or off, got %q", appCfg.AuditLogAdmin)
	}
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
