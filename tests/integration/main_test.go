//go:build integration

package integration

import (
	"context"
	"log"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/openduty/console/internal/app"
	"github.com/openduty/console/internal/config"
	"github.com/openduty/console/internal/testutil"
)

var (
	testServer *httptest.Server
	testClient *testutil.Client
	testDB     *pgxpool.Pool

	// Mailpit receives real SMTP traffic from email channel tests.
	mailpitContainer *testutil.MailpitContainer
	mailpitClient    *MailpitClient
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := testutil.NewPostgresContainer(ctx)
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			log.Printf("terminate postgres: %v", err)
		}
	}()

	mailpitContainer, err = testutil.NewMailpitContainer(ctx)
	if err != nil {
		log.Fatalf("start mailpit: %v", err)
	}
	defer func() {
		if err := mailpitContainer.Terminate(ctx); err != nil {
			log.Printf("terminate mailpit: %v", err)
		}
	}()

	mailpitClient = NewMailpitClient(
		mailpitContainer.APIHost,
		mailpitContainer.APIPort,
	)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:         "127.0.0.1",
			Port:         "0",
			MetricsPort:  "0",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Database: config.DatabaseConfig{
			URL:             pgContainer.ConnectionString,
			MaxOpenConns:    5,
			MaxIdleConns:    2,
			ConnMaxLifetime: 5 * time.Minute,
			ConnectTimeout:  30 * time.Second,
			ConnectAttempts: 3,
			MigrateOnStart:  true,
		},
		// Short intervals keep the job tests fast; the lease is long enough
		// that the reaper never steals an in-flight test job.
		Worker: config.WorkerConfig{
			Enabled:       true,
			PollInterval:  100 * time.Millisecond,
			ErrorBackoff:  200 * time.Millisecond,
			LeaseDuration: 1 * time.Minute,
			HTTPTimeout:   5 * time.Second,
		},
		Log: config.LogConfig{
			Level:  "error",
			Format: "text",
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("create app: %v", err)
	}

	// Direct DB connection for tests that need it
	testDB, err = pgxpool.New(ctx, pgContainer.ConnectionString)
	if err != nil {
		log.Fatalf("create test db pool: %v", err)
	}

	testServer = httptest.NewServer(application.Router())
	testClient = testutil.NewClient(testServer.URL)

	code := m.Run()

	testServer.Close()
	testDB.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown app: %v", err)
	}

	os.Exit(code)
}
