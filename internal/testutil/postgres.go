// Package testutil provides a PostgreSQL instance for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

// ResetSQL drops the findings store tables so every test starts empty.
const ResetSQL = `
DROP TABLE IF EXISTS scan_findings;
DROP TABLE IF EXISTS scan_runs;
`

const testDBEnv = "TABLESPECTRE_TEST_DB_URL"

// runPostgresContainer starts a PG container, recovering from panics if Docker is unavailable.
func runPostgresContainer(ctx context.Context) (container *postgres.PostgresContainer, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		postgres.BasicWaitStrategies(),
	)
}

func resetDatabase(ctx context.Context, connStr string) error {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return fmt.Errorf("reset connect: %w", err)
	}
	if _, err := conn.Exec(ctx, ResetSQL); err != nil {
		_ = conn.Close(ctx)
		return fmt.Errorf("reset: %w", err)
	}
	return conn.Close(ctx)
}

// Setup starts a PostgreSQL container and returns the connection string and
// a cleanup function. If TABLESPECTRE_TEST_DB_URL is set, that database is
// reset and used instead of Docker.
// Returns an error if Docker is not available.
func Setup() (string, func(), error) {
	ctx := context.Background()

	if connStr := os.Getenv(testDBEnv); connStr != "" {
		if err := resetDatabase(ctx, connStr); err != nil {
			return "", nil, fmt.Errorf("reset %s: %w", testDBEnv, err)
		}
		return connStr, func() {}, nil
	}

	container, err := runPostgresContainer(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("docker not available: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return "", nil, fmt.Errorf("connection string: %w", err)
	}

	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return connStr, cleanup, nil
}

// SetupPostgres is a test helper that provides an empty PostgreSQL database.
// Skips the test if Docker is not available.
func SetupPostgres(t *testing.T) string {
	t.Helper()
	connStr, cleanup, err := Setup()
	if err != nil {
		t.Skipf("skipping: %v", err)
	}
	t.Cleanup(cleanup)
	return connStr
}
