// Package testdb starts a disposable postgres for DB-backed tests. The
// container is shared for the whole test run; each test gets its own
// connections and uses unique row data instead of truncating.
package testdb

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"herald/pkg/db"
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// Setup returns a GORM handle and a pgx pool against the shared migrated
// database. Both are closed via t.Cleanup. Skipped under -short since the
// container needs a docker daemon.
func Setup(t *testing.T) (*gorm.DB, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping DB-backed test in short mode")
	}

	once.Do(func() {
		sharedDSN, initErr = startContainerAndMigrate()
	})
	if initErr != nil {
		t.Fatalf("testdb: setup failed: %v", initErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, sharedDSN)
	if err != nil {
		t.Fatalf("testdb: open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	orm, err := db.OpenORM(sharedDSN)
	if err != nil {
		t.Fatalf("testdb: open orm: %v", err)
	}
	t.Cleanup(func() {
		if err := db.CloseORM(orm); err != nil {
			t.Logf("testdb: close orm: %v", err)
		}
	})

	return orm, pool
}

func startContainerAndMigrate() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "herald",
			"POSTGRES_PASSWORD": "herald",
			"POSTGRES_DB":       "herald_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("mapped port: %w", err)
	}

	dsn := fmt.Sprintf("postgres://herald:herald@%s:%s/herald_test?sslmode=disable", host, port.Port())

	pool, err := db.Open(ctx, dsn)
	if err != nil {
		return "", fmt.Errorf("open pool: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}
	return dsn, nil
}
