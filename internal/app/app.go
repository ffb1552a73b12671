package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/qwlai/reit-tracker/config"
	"github.com/qwlai/reit-tracker/internal/api"
	"github.com/qwlai/reit-tracker/internal/service"
	"github.com/qwlai/reit-tracker/internal/storage"
)

// readinessTimeout bounds a single /readyz store ping.
const readinessTimeout = 2 * time.Second

// InitializeApp sets up all application dependencies and returns
// a fully configured Gin router, a cleanup function for graceful shutdown,
// and any error encountered during initialization.
//
// Responsibilities:
//   - Opens the document store selected by STORE_DRIVER using OpenStore().
//   - Initializes the service and HTTP handler layers.
//   - Configures the Gin router with all API routes.
//   - Registers health and readiness probes backed by the store's Ping.
//   - Provides a cleanup function that closes the store connection.
func InitializeApp() (*gin.Engine, func(), error) {
	cfg := config.AppConfig

	store, closeStore, err := storeOpener(context.Background(), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize %s store: %w", cfg.Store.Driver, err)
	}

	svc := service.NewReitService(store)
	handler := api.NewHandler(svc)
	router := api.NewRouter(handler)

	healthHandler := api.NewHealthHandler(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), readinessTimeout)
		defer cancel()
		return store.Ping(ctx)
	})
	healthHandler.Register(router)

	return router, closeStore, nil
}

// OpenStore connects to the configured document store and returns it with a
// cleanup function releasing the underlying connection.
func OpenStore(ctx context.Context, cfg config.Config) (storage.DocumentStore, func(), error) {
	switch cfg.Store.Driver {
	case "postgres":
		db, err := postgresOpener(cfg)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewPostgresStore(db), func() { _ = db.Close() }, nil
	case "mongo":
		client, err := mongoOpener(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(ctx)
		}
		return storage.NewMongoStore(coll), cleanup, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// storeOpener is an indirection used by InitializeApp; overridden in tests.
var storeOpener = OpenStore
