// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	userstore "github.com/dalemusser/donorhub/internal/app/store/users"
	"github.com/dalemusser/donorhub/internal/app/system/authz"
	"github.com/dalemusser/donorhub/internal/app/system/indexes"
	"github.com/dalemusser/donorhub/internal/app/system/timeouts"
	"github.com/dalemusser/donorhub/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// ConnectDB opens the MongoDB client and verifies the primary answers.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetAppName("donorhub").
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Ping)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}

	logger.Info("connected to MongoDB",
		zap.String("database", appCfg.MongoDatabase),
		zap.Uint64("max_pool", appCfg.MongoMaxPoolSize))

	return DBDeps{
		MongoClient:   client,
		MongoDatabase: client.Database(appCfg.MongoDatabase),
	}, nil
}

// EnsureSchema creates the collection indexes and, when configured, the
// first admin account.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	idxCtx, cancel := timeouts.WithTimeout(ctx, timeouts.Long)
	defer cancel()
	if err := indexes.EnsureAll(idxCtx, deps.MongoDatabase); err != nil {
		logger.Error("ensure indexes failed", zap.Error(err))
		return err
	}

	if appCfg.BootstrapAdminUsername == "" {
		return nil
	}
	return ensureBootstrapAdmin(ctx, deps, appCfg.BootstrapAdminUsername, appCfg.BootstrapAdminPassword, logger)
}

// ensureBootstrapAdmin creates an admin account when the users collection has
// none. An existing admin of any name leaves the collection untouched.
func ensureBootstrapAdmin(ctx context.Context, deps DBDeps, username, password string, logger *zap.Logger) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short)
	defer cancel()

	users := userstore.New(deps.MongoDatabase)
	n, err := users.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if n > 0 {
		return nil
	}

	existing, err := users.GetByUsername(ctx, username)
	switch {
	case err == nil:
		// Refuse to silently promote someone else's account.
		logger.Warn("bootstrap admin username is taken by a non-admin account; skipping",
			zap.String("username", existing.Username))
		return nil
	case !errors.Is(err, userstore.ErrNotFound):
		return fmt.Errorf("look up bootstrap admin: %w", err)
	}

	u, err := users.Create(ctx, models.User{Username: username, Role: authz.RoleAdmin}, password)
	if err != nil {
		return fmt.Errorf("create bootstrap admin: %w", err)
	}
	logger.Info("created bootstrap admin", zap.String("username", u.Username))
	return nil
}
