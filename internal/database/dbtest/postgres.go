// Package dbtest starts a throwaway Postgres for integration tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Tomlord1122/todo-api/internal/config"
)

const (
	image    = "docker.io/postgres:16-alpine"
	dbName   = "todo_test"
	dbUser   = "todo"
	dbPasswd = "todo"
)

// ProviderHealthy reports whether a container runtime is reachable.
func ProviderHealthy() bool {
	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()
	return provider.Health(context.Background()) == nil
}

// StartPostgres runs a Postgres container for the lifetime of t and returns
// a database config pointing at it. The test is skipped when no container
// runtime is reachable.
func StartPostgres(t *testing.T) config.DatabaseConfig {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx, image,
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPasswd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	testcontainers.CleanupContainer(t, container)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	cfg := config.Default().Database
	cfg.Host = host
	cfg.Port = port.Int()
	cfg.Username = dbUser
	cfg.Password = dbPasswd
	cfg.Database = dbName
	return cfg
}
