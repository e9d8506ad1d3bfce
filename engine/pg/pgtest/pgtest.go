// Package pgtest provides PostgreSQL databases for tests of the pg engine.
//
// The database URL is taken from environment variable GO_BPMN_ASSERT_TEST_DATABASE_URL.
// If not set, a PostgreSQL container is started once per test binary.
package pgtest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const EnvDatabaseUrl = "GO_BPMN_ASSERT_TEST_DATABASE_URL"

var (
	containerOnce sync.Once
	containerUrl  string
	containerErr  error
)

// DatabaseUrl returns the URL of a test database or skips the test, if no database is available.
func DatabaseUrl(t *testing.T) string {
	t.Helper()

	databaseUrl, ok := LookUp(t)
	if !ok {
		t.Skip("no test database available")
	}
	return databaseUrl
}

// LookUp returns the URL of a test database. In short mode or without a container runtime, no database is available.
func LookUp(t *testing.T) (string, bool) {
	t.Helper()

	if testing.Short() {
		return "", false
	}
	if databaseUrl := os.Getenv(EnvDatabaseUrl); databaseUrl != "" {
		return databaseUrl, true
	}

	containerOnce.Do(func() {
		containerUrl, containerErr = runContainer()
	})
	if containerErr != nil {
		t.Logf("failed to start PostgreSQL container: %v", containerErr)
		return "", false
	}
	return containerUrl, true
}

// CreateSchema creates a database schema with a unique name and returns a URL, which uses the schema as search path.
func CreateSchema(t *testing.T, databaseUrl string, prefix string) (string, string) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, databaseUrl)
	if err != nil {
		t.Fatalf("failed to establish database connection: %v", err)
	}

	defer conn.Close(ctx)

	schema := fmt.Sprintf("%s_%s", prefix, strings.Replace(time.Now().Format("20060102150405.000"), ".", "", 1))
	if _, err := conn.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		t.Fatalf("failed to create database schema: %v", err)
	}

	return WithSearchPath(t, databaseUrl, schema), schema
}

// WithSearchPath sets the search_path runtime parameter of a database URL.
func WithSearchPath(t *testing.T, databaseUrl string, schema string) string {
	t.Helper()

	u, err := url.Parse(databaseUrl)
	if err != nil {
		t.Fatalf("failed to parse database URL: %v", err)
	}

	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()

	return u.String()
}

func runContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		return "", err
	}

	return container.ConnectionString(ctx, "sslmode=disable")
}
