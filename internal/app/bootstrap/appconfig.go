// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds donorhub's own configuration. WAFFLE's CoreConfig covers
// ports, TLS, logging and CORS; everything specific to the donor registry
// lives here and is passed to each lifecycle hook.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // e.g. mongodb://localhost:27017
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session cookie configuration
	SessionKey    string        // signing key, 32+ chars in production
	SessionName   string        // cookie name (default: donorhub-session)
	SessionDomain string        // blank means current host
	SessionMaxAge time.Duration // cookie lifetime

	// Extra hosts allowed to send state-changing requests (CSRF Origin/Referer check).
	CSRFTrustedOrigins []string

	// First admin account, created on startup when no admin exists.
	BootstrapAdminUsername string
	BootstrapAdminPassword string

	// Donor import/export
	ExportFilenamePrefix string // CSV download name is <prefix>_YYYY-MM-DD.csv
	MaxImportRows        int

	MetricsEnabled  bool          // serve Prometheus metrics at /metrics
	RegistryRefresh time.Duration // registry gauge refresh period; 0 disables

	// Audit log destinations per category: all, db, log or off.
	AuditLogAuth  string
	AuditLogAdmin string
}
