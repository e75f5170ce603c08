package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	HTTP         HTTPConfig
	DB           DBConfig
	Session      SessionConfig
	Bootstrap    BootstrapConfig
	AuditLogFile string
}

type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Driver   string
	Host     string
	User     string
	Password string
	Name     string
	Port     int
	// DSN is only consulted by the sqlite3 driver; the postgres data
	// source name is assembled from the discrete fields above.
	DSN string
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
}

// BootstrapConfig describes the user created on startup when the users
// table does not yet contain it, so a fresh database is usable.
type BootstrapConfig struct {
	Username string
	Password string
	Level    int
}

// fileConfig mirrors the optional YAML config file named by CONFIG_FILE.
// File values fill in only where the environment is silent.
type fileConfig struct {
	Port          string `yaml:"port"`
	DBDriver      string `yaml:"db_driver"`
	DBHost        string `yaml:"db_host"`
	DBUser        string `yaml:"db_user"`
	DBPassword    string `yaml:"db_password"`
	DBName        string `yaml:"db_name"`
	DBPort        string `yaml:"db_port"`
	DBDSN         string `yaml:"db_dsn"`
	SessionSecret string `yaml:"session_secret"`
}

func Load() (Config, error) {
	file, err := loadFile(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            ":" + pick("PORT", file.Port, "3000"),
			ReadTimeout:     time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 10)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 15)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SEC", 20)) * time.Second,
		},
		DB: DBConfig{
			Driver:   pick("DB_DRIVER", file.DBDriver, "postgres"),
			Host:     pick("DB_HOST", file.DBHost, "localhost"),
			User:     pick("DB_USER", file.DBUser, "postgres"),
			Password: pick("DB_PASSWORD", file.DBPassword, "admin"),
			Name:     pick("DB_NAME", file.DBName, "assignment3"),
			Port:     pickInt("DB_PORT", file.DBPort, 5432),
			DSN:      pick("DB_DSN", file.DBDSN, "pokedex.db"),
		},
		Session: SessionConfig{
			Secret: pick("SESSION_SECRET", file.SessionSecret, "fallback-secret-key"),
			TTL:    time.Duration(getEnvInt("SESSION_TTL_SEC", 86400)) * time.Second,
		},
		Bootstrap: BootstrapConfig{
			Username: getEnv("BOOTSTRAP_USERNAME", "admin"),
			Password: getEnv("BOOTSTRAP_PASSWORD", "admin123"),
			Level:    getEnvInt("BOOTSTRAP_LEVEL", 3),
		},
		AuditLogFile: getEnv("AUDIT_LOG_FILE", "./data/audit.log"),
	}

	if cfg.HTTP.Addr == ":" {
		return Config{}, fmt.Errorf("PORT must not be empty")
	}
	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "sqlite3" {
		return Config{}, fmt.Errorf("DB_DRIVER must be postgres or sqlite3, got %q", cfg.DB.Driver)
	}
	if cfg.DB.Driver == "postgres" {
		if cfg.DB.Host == "" {
			return Config{}, fmt.Errorf("DB_HOST must not be empty")
		}
		if cfg.DB.User == "" {
			return Config{}, fmt.Errorf("DB_USER must not be empty")
		}
		if cfg.DB.Name == "" {
			return Config{}, fmt.Errorf("DB_NAME must not be empty")
		}
		if cfg.DB.Port <= 0 {
			return Config{}, fmt.Errorf("DB_PORT must be > 0")
		}
	}
	if cfg.DB.Driver == "sqlite3" && cfg.DB.DSN == "" {
		return Config{}, fmt.Errorf("DB_DSN must not be empty")
	}
	if cfg.Session.Secret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET must not be empty")
	}
	if cfg.Session.TTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL_SEC must be > 0")
	}
	if cfg.Bootstrap.Username == "" {
		return Config{}, fmt.Errorf("BOOTSTRAP_USERNAME must not be empty")
	}
	if cfg.Bootstrap.Password == "" {
		return Config{}, fmt.Errorf("BOOTSTRAP_PASSWORD must not be empty")
	}

	return cfg, nil
}

// DataSourceName returns the driver-specific data source string.
func (c DBConfig) DataSourceName() string {
	if c.Driver == "sqlite3" {
		return c.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.Name)
}

func loadFile(path string) (fileConfig, error) {
	if path == "" {
		return fileConfig{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("decode config file: %w", err)
	}
	return fc, nil
}

func pick(key, fileVal, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	if fileVal != "" {
		return fileVal
	}
	return fallback
}

func pickInt(key, fileVal string, fallback int) int {
	raw := pick(key, fileVal, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
