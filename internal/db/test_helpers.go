// internal/db/test_helpers.go
package db

import (
	"fmt"
	"os"
	"testing"

	"restaurant-admin/internal/config"
)

// OpenTestDB подключается к TEST_DATABASE_DSN и мигрирует её, либо пропускает тест, если переменная не задана.
func OpenTestDB(t *testing.T) {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping MySQL test")
	}
	if DB != nil {
		return
	}
	if err := InitDB(&config.Config{Database: config.DatabaseConfig{Path: dsn}}, true); err != nil {
		t.Fatalf("InitDB: %v", err)
	}
}

func ClearTestDBTables(t *testing.T, tableNames ...string) {
	if DB == nil {
		t.Skip("DB not initialized, skipping table clear")
		return
	}
	for _, table := range tableNames {
		// DELETE сохраняет AUTO_INCREMENT; для тестов это неважно
		_, err := DB.Exec(fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Fatalf("Failed to clear table %s: %v", table, err)
		}
	}
}
