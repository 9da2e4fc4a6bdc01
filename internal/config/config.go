package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Chatbot   ChatbotConfig   `mapstructure:"chatbot"`
	Store     StoreConfig     `mapstructure:"store"`
	Teable    TeableConfig    `mapstructure:"teable"`
	Sheets    SheetsConfig    `mapstructure:"sheets"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Selection SelectionConfig `mapstructure:"selection"`
	Admin     AdminConfig     `mapstructure:"admin"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type ChatbotConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Token      string `mapstructure:"token"`
	Timeout    int    `mapstructure:"timeout"`
}

// StoreConfig selects the record backend and bounds every call to it
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	Timeout    int    `mapstructure:"timeout"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type TeableConfig struct {
	BaseURL string `mapstructure:"base_url"`
	TableID string `mapstructure:"table_id"`
	Token   string `mapstructure:"token"`
}

type SheetsConfig struct {
	SpreadsheetID   string `mapstructure:"spreadsheet_id"`
	// SheetName is the worksheet title, "Users" by default
	SheetName       string `mapstructure:"sheet_name"`
	CredentialsJSON string `mapstructure:"credentials_json"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type CacheConfig struct {
	Enabled  bool `mapstructure:"enabled"`
	Capacity int  `mapstructure:"capacity"`
	TTL      int  `mapstructure:"ttl"`
}

type SelectionConfig struct {
	FreeTierPolicy string `mapstructure:"free_tier_policy"`
}

type AdminConfig struct {
	Token string `mapstructure:"token"`
}

// Store drivers
const (
	DriverTeable   = "teable"
	DriverSheets   = "sheets"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks enumerated values and the settings each store driver needs
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory, DriverPostgres:
	case DriverTeable:
		if c.Teable.TableID == "" || c.Teable.Token == "" {
			return fmt.Errorf("store driver %q requires teable.table_id and teable.token", c.Store.Driver)
		}
	case DriverSheets:
		if c.Sheets.SpreadsheetID == "" || c.Sheets.CredentialsJSON == "" {
			return fmt.Errorf("store driver %q requires sheets.spreadsheet_id and sheets.credentials_json", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	switch c.Selection.FreeTierPolicy {
	case "replace", "reject":
	default:
		return fmt.Errorf("unknown selection.free_tier_policy %q", c.Selection.FreeTierPolicy)
	}

	if c.Store.Timeout <= 0 {
		return fmt.Errorf("store.timeout must be positive")
	}
	if c.Store.MaxRetries < 0 {
		return fmt.Errorf("store.max_retries must not be negative")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)

	v.SetDefault("chatbot.webhook_url", "")
	v.SetDefault("chatbot.token", "")
	v.SetDefault("chatbot.timeout", 30)

	v.SetDefault("store.driver", DriverMemory)
	v.SetDefault("store.timeout", 5)
	v.SetDefault("store.max_retries", 1)

	v.SetDefault("teable.base_url", "https://app.teable.io")
	v.SetDefault("teable.table_id", "")
	v.SetDefault("teable.token", "")

	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.sheet_name", "Users")
	v.SetDefault("sheets.credentials_json", "")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "footbrief")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.conn_max_lifetime", 300)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.capacity", 10000)
	v.SetDefault("cache.ttl", 600) // 10 minutes in seconds

	v.SetDefault("selection.free_tier_policy", "replace")

	v.SetDefault("admin.token", "")
}
