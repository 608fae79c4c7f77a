// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	KitchenTransportHTTP = "http"
	KitchenTransportAMQP = "amqp"
)

type SessionConfig struct {
	CookieName string        `yaml:"cookie_name"`
	Lifetime   time.Duration `yaml:"lifetime"`
}

type AdminConfig struct {
	// PasswordHash — bcrypt-хеш (см. команду hash-password). Password — пароль открытым текстом,
	// только для разработки.
	PasswordHash string  `yaml:"password_hash"`
	Password     string  `yaml:"password"`
	LoginRPS     float64 `yaml:"login_rps"`
	LoginBurst   int     `yaml:"login_burst"`
}

type APIConfig struct {
	BaseURL        string            `yaml:"base_url"`
	RequestTimeout time.Duration     `yaml:"request_timeout"`
	Headers        map[string]string `yaml:"headers"`
}

type DashboardConfig struct {
	PollInterval     time.Duration  `yaml:"poll_interval"`
	PageSize         int            `yaml:"page_size"`
	Timezone         string         `yaml:"timezone"`
	IdleTimeout      time.Duration  `yaml:"idle_timeout"`
	OperationHistory int            `yaml:"operation_history"`
	Location         *time.Location `yaml:"-"`
}

type RabbitMQConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	VHost      string `yaml:"vhost"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

type KitchenConfig struct {
	Transport string         `yaml:"transport"`
	RabbitMQ  RabbitMQConfig `yaml:"rabbitmq"`
}

type DatabaseConfig struct {
	Path     string `yaml:"path"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// Enabled сообщает, настроена ли MySQL. Консоль работает и без базы.
func (d DatabaseConfig) Enabled() bool {
	return d.Path != "" || d.Host != ""
}

type Config struct {
	SiteName  string          `yaml:"site_name"`
	BaseURL   string          `yaml:"base_url"`
	Port      int             `yaml:"port"`
	AppEnv    string          `yaml:"app_env"`
	Session   SessionConfig   `yaml:"session"`
	Admin     AdminConfig     `yaml:"admin"`
	API       APIConfig       `yaml:"api"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Kitchen   KitchenConfig   `yaml:"kitchen"`
	Database  DatabaseConfig  `yaml:"database"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getStringEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
		slog.Warn("config: значение переменной окружения не целое число, используется значение по умолчанию", "key", key, "value", valueStr)
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := time.ParseDuration(valueStr); err == nil {
			return value
		}
		slog.Warn("config: значение переменной окружения не длительность, используется значение по умолчанию", "key", key, "value", valueStr)
	}
	return defaultValue
}

func LoadConfig(filename string) (*Config, error) {
	appEnvFromSystem := os.Getenv("APP_ENV")
	if appEnvFromSystem != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			slog.Info("configs/.env не загружен, используются переменные окружения процесса", "error", err)
		} else {
			slog.Info("окружение загружено из configs/.env")
		}
	}

	file, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("open config file '%s': %w", filename, err)
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode YAML from '%s': %w", filename, err)
	}

	applyEnv(&cfg)
	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	slog.Info("конфигурация загружена",
		"app_env", cfg.AppEnv,
		"port", cfg.Port,
		"api_base_url", cfg.API.BaseURL,
		"poll_interval", cfg.Dashboard.PollInterval,
		"kitchen_transport", cfg.Kitchen.Transport,
		"database", cfg.Database.Enabled())
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.AppEnv = getStringEnvOrDefault("APP_ENV", cfg.AppEnv)
	cfg.BaseURL = getStringEnvOrDefault("BASE_URL", cfg.BaseURL)
	cfg.Port = getIntEnvOrDefault("PORT", cfg.Port)

	cfg.Admin.PasswordHash = getStringEnvOrDefault("ADMIN_PASSWORD_HASH", cfg.Admin.PasswordHash)
	cfg.Admin.Password = getStringEnvOrDefault("ADMIN_PASSWORD", cfg.Admin.Password)

	cfg.API.BaseURL = getStringEnvOrDefault("ORDERING_API_URL", cfg.API.BaseURL)
	cfg.API.RequestTimeout = getDurationEnvOrDefault("ORDERING_API_TIMEOUT", cfg.API.RequestTimeout)

	cfg.Dashboard.PollInterval = getDurationEnvOrDefault("DASHBOARD_POLL_INTERVAL", cfg.Dashboard.PollInterval)
	cfg.Dashboard.Timezone = getStringEnvOrDefault("DASHBOARD_TIMEZONE", cfg.Dashboard.Timezone)

	cfg.Kitchen.Transport = getStringEnvOrDefault("KITCHEN_TRANSPORT", cfg.Kitchen.Transport)
	cfg.Kitchen.RabbitMQ.Host = getStringEnvOrDefault("RABBITMQ_HOST", cfg.Kitchen.RabbitMQ.Host)
	cfg.Kitchen.RabbitMQ.Port = getIntEnvOrDefault("RABBITMQ_PORT", cfg.Kitchen.RabbitMQ.Port)
	cfg.Kitchen.RabbitMQ.User = getStringEnvOrDefault("RABBITMQ_USER", cfg.Kitchen.RabbitMQ.User)
	cfg.Kitchen.RabbitMQ.Password = getStringEnvOrDefault("RABBITMQ_PASSWORD", cfg.Kitchen.RabbitMQ.Password)

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.Path = dsn
		cfg.Database.Host = ""
		cfg.Database.Port = 0
		cfg.Database.User = ""
		cfg.Database.DBName = ""
	} else {
		cfg.Database.Host = getStringEnvOrDefault("DB_HOST", cfg.Database.Host)
		cfg.Database.Port = getIntEnvOrDefault("DB_PORT", cfg.Database.Port)
		cfg.Database.User = getStringEnvOrDefault("DB_USER", cfg.Database.User)
		cfg.Database.DBName = getStringEnvOrDefault("DB_NAME", cfg.Database.DBName)
		cfg.Database.Password = getStringEnvOrDefault("DB_PASSWORD", cfg.Database.Password)
	}
}

// Finalize заполняет значения по умолчанию и проверяет конфигурацию.
func (cfg *Config) Finalize() error {
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "Restaurant Admin"
	}
	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}

	if cfg.Session.CookieName == "" {
		cfg.Session.CookieName = "restaurant_admin_session"
	}
	if cfg.Session.Lifetime <= 0 {
		cfg.Session.Lifetime = 12 * time.Hour
	}

	if cfg.Admin.PasswordHash == "" && cfg.Admin.Password == "" {
		return fmt.Errorf("admin.password_hash (ADMIN_PASSWORD_HASH) is not set")
	}
	if cfg.IsProduction() && cfg.Admin.PasswordHash == "" {
		return fmt.Errorf("admin.password_hash (ADMIN_PASSWORD_HASH) must be set in production, plain passwords are for development")
	}
	if cfg.Admin.LoginRPS <= 0 {
		cfg.Admin.LoginRPS = 0.2
	}
	if cfg.Admin.LoginBurst <= 0 {
		cfg.Admin.LoginBurst = 5
	}

	cfg.API.BaseURL = strings.TrimSuffix(cfg.API.BaseURL, "/")
	if cfg.API.BaseURL == "" {
		return fmt.Errorf("api.base_url (ORDERING_API_URL) is not set")
	}
	if cfg.API.RequestTimeout <= 0 {
		cfg.API.RequestTimeout = 15 * time.Second
	}

	if cfg.Dashboard.PollInterval <= 0 {
		cfg.Dashboard.PollInterval = 10 * time.Second
	}
	if cfg.Dashboard.PageSize <= 0 {
		cfg.Dashboard.PageSize = 5
	}
	if cfg.Dashboard.IdleTimeout <= 0 {
		cfg.Dashboard.IdleTimeout = cfg.Session.Lifetime
	}
	if cfg.Dashboard.OperationHistory <= 0 {
		cfg.Dashboard.OperationHistory = 50
	}
	cfg.Dashboard.Location = time.Local
	if cfg.Dashboard.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Dashboard.Timezone)
		if err != nil {
			return fmt.Errorf("dashboard.timezone %q: %w", cfg.Dashboard.Timezone, err)
		}
		cfg.Dashboard.Location = loc
	}

	switch cfg.Kitchen.Transport {
	case "":
		cfg.Kitchen.Transport = KitchenTransportHTTP
	case KitchenTransportHTTP:
	case KitchenTransportAMQP:
		mq := &cfg.Kitchen.RabbitMQ
		if mq.Host == "" {
			return fmt.Errorf("kitchen.rabbitmq.host (RABBITMQ_HOST) is required for the amqp kitchen transport")
		}
		if mq.Port == 0 {
			mq.Port = 5672
		}
		if mq.VHost == "" {
			mq.VHost = "/"
		}
		if mq.Exchange == "" {
			mq.Exchange = "orders_topic"
		}
		if mq.RoutingKey == "" {
			mq.RoutingKey = "kitchen.order"
		}
	default:
		return fmt.Errorf("kitchen.transport must be %q or %q, got %q", KitchenTransportHTTP, KitchenTransportAMQP, cfg.Kitchen.Transport)
	}

	if cfg.Database.Host != "" {
		if cfg.Database.User == "" {
			return fmt.Errorf("DB_USER is not set for the database connection")
		}
		if cfg.Database.DBName == "" {
			return fmt.Errorf("DB_NAME is not set for the database connection")
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 3306
		}
	}
	return nil
}

func InitLogger(appEnv string) {
	var logger *slog.Logger
	logLevel := slog.LevelInfo

	if appEnv == "development" {
		logLevel = slog.LevelDebug
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: false,
		}))
	}
	slog.SetDefault(logger)
}
