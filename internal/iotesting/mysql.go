package iotesting

import (
	"context"
	"testing"
	"time"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	mysqlImage    = "mysql:8.0"
	mysqlPassword = "test"
)

// StartMySQL starts a disposable MySQL server in a container and returns
// a test configuration pointing at it. The source database is created
// empty. The test is skipped when no container provider is available.
// The container is terminated when the test finishes.
func StartMySQL(t *testing.T) *config.Config {
	t.Helper()
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        mysqlImage,
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": mysqlPassword,
			"MYSQL_DATABASE":      TestDatabaseName,
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").
			WithStartupTimeout(3 * time.Minute),
	}

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	if err != nil {
		t.Fatalf("Failed to start MySQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate MySQL container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "3306")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := GetTestConfig()
	cfg.Database.Host = host
	cfg.Database.Port = port.Int()
	cfg.Database.User = "root"
	cfg.Database.Password = mysqlPassword
	cfg.Database.MaxConnections = 20
	cfg.Extract.DumpDir = t.TempDir()
	cfg.HomeDir = t.TempDir()
	return cfg
}
