//go:build integration

package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"net/url"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/fightcard/platform/internal/app"
	"github.com/fightcard/platform/internal/auth"
	"github.com/fightcard/platform/internal/infra"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	TestJWTSecret = "integration-test-secret-at-least-32-chars"
	postgresImage = "postgres:16-alpine"
)

// TestEnv holds all resources for an integration test.
type TestEnv struct {
	Server  *httptest.Server
	Pool    *pgxpool.Pool
	JWTMgr  *auth.JWTManager
	Metrics *infra.Metrics
	Data    *DataGenerator
	t       *testing.T
}

var (
	sharedPool *pgxpool.Pool
	poolOnce   sync.Once
	poolErr    error
)

// startPostgres runs a disposable Postgres container and returns its DSN. The container
// is reaped by testcontainers when the test binary exits.
func startPostgres(ctx context.Context) (string, error) {
	container, err := postgres.Run(ctx,
		postgresImage,
		postgres.WithDatabase("fightcard_test"),
		postgres.WithUsername("fightcard"),
		postgres.WithPassword("fightcard"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return "", fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx)
	if err != nil {
		return "", fmt.Errorf("postgres connection string: %w", err)
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse connection string: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "disable")
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func getSharedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	poolOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		dsn, err := startPostgres(ctx)
		if err != nil {
			poolErr = err
			return
		}

		if err := infra.RunMigrations(dsn, slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))); err != nil {
			poolErr = fmt.Errorf("run migrations: %w", err)
			return
		}

		poolCfg, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			poolErr = fmt.Errorf("parse pool config: %w", err)
			return
		}
		poolCfg.MaxConns = 10
		poolCfg.MinConns = 1

		sharedPool, err = pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			poolErr = fmt.Errorf("create pool: %w", err)
		}
	})

	if poolErr != nil {
		t.Fatalf("failed to initialize test pool: %v", poolErr)
	}
	return sharedPool
}

// NewTestEnv creates a test environment with an httptest.Server backed by the real router and test DB.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	pool := getSharedPool(t)

	jwtMgr := auth.NewJWTManager(TestJWTSecret, time.Hour)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	metrics := infra.NewMetrics()

	router := app.NewRouter(app.RouterDeps{
		Pool:               pool,
		JWTMgr:             jwtMgr,
		Logger:             logger,
		Metrics:            metrics,
		CORSAllowedOrigins: "*",
		LoginRatePerMinute: 1000,
	})

	server := httptest.NewServer(router)

	env := &TestEnv{
		Server:  server,
		Pool:    pool,
		JWTMgr:  jwtMgr,
		Metrics: metrics,
		Data:    NewDataGenerator(),
		t:       t,
	}

	t.Cleanup(func() {
		server.Close()
		env.CleanAll()
	})

	// Clean before test to ensure isolation
	env.CleanAll()

	return env
}
