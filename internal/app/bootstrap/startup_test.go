package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/donorhub/internal/app/system/auth"
	userstore "github.com/dalemusser/donorhub/internal/app/store/users"
	"github.com/dalemusser/donorhub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		MongoURI:         "mongodb://localhost:27017",
		MongoDatabase:    "donorhub_test",
		MongoMaxPoolSize: 10,
		MongoMinPoolSize: 1,
		SessionKey:       "0123456789abcdef0123456789abcdef",
		SessionName:      "donorhub-session",
		SessionMaxAge:    time.Hour,
		MaxImportRows:    100,
		MetricsEnabled:   true,
		AuditLogAuth:     "all",
		AuditLogAdmin:    "db",
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"valid", "dev", func(*AppConfig) {}, false},
		{"bad mongo uri", "dev", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, true},
		{"blank database", "dev", func(c *AppConfig) { c.MongoDatabase = " " }, true},
		{"empty session key", "dev", func(c *AppConfig) { c.SessionKey = "" }, true},
		{"dev key allowed in dev", "dev", func(c *AppConfig) { c.SessionKey = devSessionKey }, false},
		{"dev key refused in prod", "prod", func(c *AppConfig) { c.SessionKey = devSessionKey }, true},
		{"admin username without password", "dev", func(c *AppConfig) { c.BootstrapAdminUsername = "root" }, true},
		{"admin username with password", "dev", func(c *AppConfig) {
			c.BootstrapAdminUsername = "root"
			c.BootstrapAdminPassword = "long-enough"
		}, false},
		{"zero import rows", "dev", func(c *AppConfig) { c.MaxImportRows = 0 }, true},
		{"pool sizes inverted", "dev", func(c *AppConfig) { c.MongoMinPoolSize = 50 }, true},
		{"negative registry refresh", "dev", func(c *AppConfig) { c.RegistryRefresh = -time.Second }, true},
		{"audit auth off", "dev", func(c *AppConfig) { c.AuditLogAuth = "off" }, false},
		{"unknown audit destination", "dev", func(c *AppConfig) { c.AuditLogAdmin = "syslog" }, true},
		{"csrf trusted host", "dev", func(c *AppConfig) { c.CSRFTrustedOrigins = []string{"admin.example.org:8443"} }, false},
		{"csrf trusted origin with scheme", "dev", func(c *AppConfig) { c.CSRFTrustedOrigins = []string{"https://admin.example.org"} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAppConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateConfig() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnsureBootstrapAdmin_CreatesWhenNoAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	if err := ensureBootstrapAdmin(ctx, deps, "Root", "long-enough", testLogger()); err != nil {
		t.Fatalf("ensureBootstrapAdmin: %v", err)
	}

	u, err := userstore.New(db).Authenticate(ctx, "root", "long-enough")
	if err != nil {
		t.Fatalf("bootstrap admin cannot sign in: %v", err)
	}
	if u.Role != "admin" {
		t.Errorf("role = %q, want admin", u.Role)
	}

	// Second run is a no-op.
	if err := ensureBootstrapAdmin(ctx, deps, "Root", "long-enough", testLogger()); err != nil {
		t.Fatalf("second ensureBootstrapAdmin: %v", err)
	}
	n, err := userstore.New(db).CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins: %v", err)
	}
	if n != 1 {
		t.Errorf("admins = %d, want 1", n)
	}
}

func TestEnsureBootstrapAdmin_SkipsWhenAdminExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.NewFixtures(t, db).CreateAdmin(ctx, "existing", "password-1")

	if err := ensureBootstrapAdmin(ctx, DBDeps{MongoDatabase: db}, "root", "long-enough", testLogger()); err != nil {
		t.Fatalf("ensureBootstrapAdmin: %v", err)
	}
	if _, err := userstore.New(db).GetByUsername(ctx, "root"); err != userstore.ErrNotFound {
		t.Errorf("GetByUsername(root) err = %v, want ErrNotFound", err)
	}
}

func TestEnsureBootstrapAdmin_DoesNotPromoteExistingUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	testutil.NewFixtures(t, db).CreateUser(ctx, "root", "password-1", "user")

	if err := ensureBootstrapAdmin(ctx, DBDeps{MongoDatabase: db}, "root", "long-enough", testLogger()); err != nil {
		t.Fatalf("ensureBootstrapAdmin: %v", err)
	}
	u, err := userstore.New(db).GetByUsername(ctx, "root")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u.Role != "user" {
		t.Errorf("role = %q, want user", u.Role)
	}
}

func TestBuildHandler_MountsAPI(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := validAppConfig()
	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, coreCfg, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	h, err := BuildHandler(coreCfg, appCfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	t.Cleanup(func() { _ = Shutdown(context.Background(), coreCfg, appCfg, DBDeps{}, testLogger()) })

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/auth/me", http.StatusOK},
		{"/api/compatibility/AB%2B", http.StatusOK},
		{"/api/donors", http.StatusUnauthorized},
		{"/api/universities", http.StatusUnauthorized},
		{"/api/users", http.StatusUnauthorized},
		{"/api/audit", http.StatusUnauthorized},
		{"/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("GET %s = %d, want %d (body %s)", tt.path, rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestBuildHandler_LoginSessionRoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := validAppConfig()
	appCfg.BootstrapAdminUsername = "root"
	appCfg.BootstrapAdminPassword = "long-enough"
	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, coreCfg, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	h, err := BuildHandler(coreCfg, appCfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	t.Cleanup(func() { _ = Shutdown(context.Background(), coreCfg, appCfg, DBDeps{}, testLogger()) })

	jar := signIn(t, h, "root", "long-enough")

	rec := jar.do(h, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))

	var body struct {
		IsAuthenticated bool `json:"isAuthenticated"`
		CanAdminister   bool `json:"can_administer"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode /me: %v", err)
	}
	if !body.IsAuthenticated || !body.CanAdminister {
		t.Errorf("/me = %+v, want signed-in admin", body)
	}
}

// cookieJar carries cookies and the CSRF token between requests the way a
// browser client would.
type cookieJar struct {
	cookies map[string]*http.Cookie
	token   string
}

func (j *cookieJar) do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	for _, c := range j.cookies {
		req.AddCookie(c)
	}
	if j.token != "" && req.Header.Get(auth.CSRFHeader) == "" {
		req.Header.Set(auth.CSRFHeader, j.token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	for _, c := range rec.Result().Cookies() {
		j.cookies[c.Name] = c
	}
	if tok := rec.Header().Get(auth.CSRFHeader); tok != "" {
		j.token = tok
	}
	return rec
}

func signIn(t *testing.T, h http.Handler, username, password string) *cookieJar {
	t.Helper()
	jar := &cookieJar{cookies: make(map[string]*http.Cookie)}

	jar.do(h, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
	if jar.token == "" {
		t.Fatal("no CSRF token issued")
	}

	login := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"`+username+`","password":"`+password+`"}`))
	login.Header.Set("Content-Type", "application/json")
	if rec := jar.do(h, login); rec.Code != http.StatusOK {
		t.Fatalf("login = %d: %s", rec.Code, rec.Body.String())
	}
	return jar
}

func TestBuildHandler_LoginRequiresCSRFToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := validAppConfig()
	h, err := BuildHandler(coreCfg, appCfg, DBDeps{MongoDatabase: db}, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	t.Cleanup(func() { _ = Shutdown(context.Background(), coreCfg, appCfg, DBDeps{}, testLogger()) })

	login := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		strings.NewReader(`{"username":"root","password":"long-enough"}`))
	login.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, login)
	if rec.Code != http.StatusForbidden {
		t.Errorf("login without token = %d, want 403", rec.Code)
	}
}

func TestBuildHandler_CrossSiteWritesRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	coreCfg := &config.CoreConfig{Env: "dev"}
	appCfg := validAppConfig()
	appCfg.BootstrapAdminUsername = "root"
	appCfg.BootstrapAdminPassword = "long-enough"
	deps := DBDeps{MongoDatabase: db}
	if err := EnsureSchema(ctx, coreCfg, appCfg, deps, testLogger()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	h, err := BuildHandler(coreCfg, appCfg, deps, testLogger())
	if err != nil {
		t.Fatalf("BuildHandler: %v", err)
	}
	t.Cleanup(func() { _ = Shutdown(context.Background(), coreCfg, appCfg, DBDeps{}, testLogger()) })

	jar := signIn(t, h, "root", "long-enough")
	body := `{"username":"mallory","password":"long-enough","role":"admin","x":"=1"}`

	tests := []struct {
		name        string
		contentType string
		token       string
		origin      string
		want        int
	}{
		// The signed-in admin's cookies ride along, but a forged form cannot
		// read the token.
		{"text/plain form from another site", "text/plain", "-", "https://evil.test", http.StatusForbidden},
		{"json without token", "application/json", "-", "", http.StatusForbidden},
		{"text/plain with token", "text/plain", "", "", http.StatusUnsupportedMediaType},
		{"json with token", "application/json", "", "", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
			req.Header.Set("Content-Type", tt.contentType)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.token == "-" {
				// A non-empty bogus value stops the jar adding the real token.
				req.Header.Set(auth.CSRFHeader, "bogus")
			}
			rec := jar.do(h, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}
