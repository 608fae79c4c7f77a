// internal/db/db.go
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"restaurant-admin/internal/config"
	"restaurant-admin/migrations"
)

var DB *sql.DB

// BuildDSN возвращает DSN драйвера и имя базы. DSN из Path важнее отдельных полей.
// multiStatements и parseTime включены всегда.
func BuildDSN(dbCfg config.DatabaseConfig) (string, string, error) {
	var mc *mysql.Config
	if dbCfg.Path != "" {
		parsed, err := mysql.ParseDSN(dbCfg.Path)
		if err != nil {
			return "", "", fmt.Errorf("invalid DATABASE_DSN: %w", err)
		}
		mc = parsed
	} else if dbCfg.Host != "" && dbCfg.User != "" && dbCfg.DBName != "" {
		mc = mysql.NewConfig()
		mc.User = dbCfg.User
		mc.Passwd = dbCfg.Password
		mc.Net = "tcp"
		mc.Addr = fmt.Sprintf("%s:%d", dbCfg.Host, dbCfg.Port)
		mc.DBName = dbCfg.DBName
	} else {
		return "", "", errors.New("not enough parameters for MySQL: set DATABASE_DSN or DB_HOST+DB_USER+DB_NAME")
	}

	if mc.DBName == "" {
		return "", "", errors.New("database name missing from DSN")
	}
	mc.ParseTime = true
	mc.MultiStatements = true
	if mc.Params == nil {
		mc.Params = map[string]string{}
	}
	if _, ok := mc.Params["charset"]; !ok {
		mc.Params["charset"] = "utf8mb4"
	}
	return mc.FormatDSN(), mc.DBName, nil
}

func RunMigrations(dbConn *sql.DB, dbName string) error {
	driverInstance, err := migratemysql.WithInstance(dbConn, &migratemysql.Config{
		DatabaseName: dbName,
	})
	if err != nil {
		return fmt.Errorf("failed to create mysql migrate driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "mysql", driverInstance)
	if err != nil {
		slog.Error("Не удалось создать экземпляр migrate", "dbName", dbName, "error", err)
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	slog.Info("Применение миграций MySQL...")
	err = m.Up()

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		version, dirty, verr := m.Version()
		if verr != nil {
			slog.Error("Не удалось прочитать статус миграций после неудачного Up", "migration_error", err, "status_error", verr)
		} else {
			slog.Error("Ошибка миграций. Проверьте логи и файлы миграций.", "current_version", version, "dirty_state", dirty, "error_up", err)
		}
		return fmt.Errorf("failed to apply MySQL migrations: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		slog.Info("Миграции MySQL: изменений нет.")
	} else {
		slog.Info("Миграции MySQL применены.")
	}
	return nil
}

// InitDB открывает пул соединений и при runMigrations приводит схему к актуальной.
func InitDB(appConfig *config.Config, runMigrations bool) error {
	dsn, dbName, err := BuildDSN(appConfig.Database)
	if err != nil {
		slog.Error("InitDB: не удалось собрать DSN", "host", appConfig.Database.Host, "user", appConfig.Database.User, "dbName", appConfig.Database.DBName, "error", err)
		return err
	}

	slog.Info("Подключение к MySQL", "dbName", dbName, "host", appConfig.Database.Host)

	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open MySQL connection: %w", err)
	}

	conn.SetConnMaxLifetime(time.Minute * 3)
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(10)

	if err = conn.Ping(); err != nil {
		_ = conn.Close()
		return fmt.Errorf("MySQL ping failed: %w", err)
	}
	slog.Info("Подключено к MySQL.")

	if runMigrations {
		if err = RunMigrations(conn, dbName); err != nil {
			_ = conn.Close()
			return fmt.Errorf("MySQL migrations failed: %w", err)
		}
	}

	DB = conn
	return nil
}

func Close() {
	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}
