// Package iotesting provides shared test utilities for integration tests.
// This is an internal package for test infrastructure only.
package iotesting

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/config"
)

const (
	// TestDatabaseName is the source database used by integration tests.
	TestDatabaseName = "fghextractor_test"

	// TestTargetName is the target database used by integration tests.
	// It is dropped and recreated freely, so it must never be a real one.
	TestTargetName = "fghextractor_test_subset"
)

// GetTestConfig returns a configuration suitable for integration tests.
// Connection settings come from FGHEXTRACTOR_DATABASE_* environment
// variables when set, otherwise from defaults. Database names are always
// forced to the test names for safety.
//
// Usage in integration tests:
//
//	func TestSomething(t *testing.T) {
//	    if testing.Short() {
//	        t.Skip("Skipping integration test")
//	    }
//	    cfg := iotesting.GetTestConfig()
//	    // ... use cfg for database operations
//	}
func GetTestConfig() *config.Config {
	cfg := config.New()
	var opts []config.Option

	if v := os.Getenv("FGHEXTRACTOR_DATABASE_HOST"); v != "" {
		opts = append(opts, config.OptDatabaseHost(v))
	}
	if v := os.Getenv("FGHEXTRACTOR_DATABASE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			opts = append(opts, config.OptDatabasePort(port))
		}
	}
	if v := os.Getenv("FGHEXTRACTOR_DATABASE_USER"); v != "" {
		opts = append(opts, config.OptDatabaseUser(v))
	}
	if v := os.Getenv("FGHEXTRACTOR_DATABASE_PASSWORD"); v != "" {
		opts = append(opts, config.OptDatabasePassword(v))
	}
	cfg.Update(opts)

	// Always use test databases for safety
	cfg.Database.Database = TestDatabaseName
	cfg.Extract.NewDatabase = TestTargetName

	return cfg
}

// GetTestDatabaseConfig returns only the database configuration for tests.
func GetTestDatabaseConfig() *config.DatabaseConfig {
	cfg := GetTestConfig()
	return &cfg.Database
}

// WriteTempFile writes content into a file inside dir and returns the
// path of the file.
func WriteTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0644)
	if err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}
