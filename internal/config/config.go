package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"ridebooking/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	HTTP       HTTPConfig       `yaml:"http"`
	GRPC       GRPCConfig       `yaml:"grpc"`
	CORS       CORSConfig       `yaml:"cors"`
	Auth       AuthConfig       `yaml:"auth"`
	Store      StoreConfig      `yaml:"store"`
	Redis      RedisConfig      `yaml:"redis"`
	Notify     NotifyConfig     `yaml:"notify"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type HTTPConfig struct {
	Port                int    `yaml:"port"`
	BookingPath         string `yaml:"booking_path"`
	TrackingPath        string `yaml:"tracking_path"`
	ReadHeaderTimeoutMS int    `yaml:"read_header_timeout_ms"`
	WriteTimeoutMS      int    `yaml:"write_timeout_ms"`
}

type GRPCConfig struct {
	Enabled    bool `yaml:"enabled"`
	Port       int  `yaml:"port"`
	Reflection bool `yaml:"reflection"`
}

type CORSConfig struct {
	// Empty list reflects any request origin.
	AllowedOrigins []string `yaml:"allowed_origins"`
	MaxAge         int      `yaml:"max_age"`
}

type AuthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Secret  string `yaml:"secret"`
	Issuer  string `yaml:"issuer"`
}

const (
	DriverMemory    = "memory"
	DriverSQLite    = "sqlite"
	DriverPostgres  = "postgres"
	DriverMongo     = "mongo"
	DriverFirestore = "firestore"
	DriverDynamoDB  = "dynamodb"
)

type StoreConfig struct {
	Driver    string          `yaml:"driver"`
	SQLite    SQLiteConfig    `yaml:"sqlite"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Mongo     MongoConfig     `yaml:"mongo"`
	Firestore FirestoreConfig `yaml:"firestore"`
	DynamoDB  DynamoDBConfig  `yaml:"dynamodb"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	MaxConnections int    `yaml:"max_connections"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

type FirestoreConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
}

type DynamoDBConfig struct {
	Region      string `yaml:"region"`
	TablePrefix string `yaml:"table_prefix"`
	Endpoint    string `yaml:"endpoint"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Sheets   SheetsConfig   `yaml:"sheets"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	AMQP     AMQPConfig     `yaml:"amqp"`
	Retry    RetryConfig    `yaml:"retry"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
	Debug    bool   `yaml:"debug"`
}

type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	BookingsRange   string `yaml:"bookings_range"`
	TrackingRange   string `yaml:"tracking_range"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type RetryConfig struct {
	MaxRetries     int     `yaml:"max_retries"`
	InitialDelayMS int     `yaml:"initial_delay_ms"`
	MaxDelayMS     int     `yaml:"max_delay_ms"`
	BackoffFactor  float64 `yaml:"backoff_factor"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional; a missing file is not an error
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse expands environment variables in raw YAML and builds a validated Config.
func Parse(data []byte) (*Config, error) {
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required")
		}
	case DriverPostgres:
		if c.Store.Postgres.DSN == "" {
			return errors.New("store.postgres.dsn is required")
		}
	case DriverMongo:
		if c.Store.Mongo.URI == "" {
			return errors.New("store.mongo.uri is required")
		}
	case DriverFirestore:
		if c.Store.Firestore.ProjectID == "" {
			return errors.New("store.firestore.project_id is required")
		}
	case DriverDynamoDB:
		if c.Store.DynamoDB.Region == "" {
			return errors.New("store.dynamodb.region is required")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if c.Auth.Enabled && c.Auth.Secret == "" {
		return errors.New("auth.secret is required when auth is enabled")
	}

	if c.Notify.Telegram.BotToken != "" && c.Notify.Telegram.ChatID == 0 {
		return errors.New("notify.telegram.chat_id is required with a bot token")
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "ridebooking"
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.BookingPath == "" {
		c.HTTP.BookingPath = models.DefaultHTTPPath
	}
	if c.HTTP.TrackingPath == "" {
		c.HTTP.TrackingPath = models.DefaultTrackingPath
	}
	if c.HTTP.ReadHeaderTimeoutMS == 0 {
		c.HTTP.ReadHeaderTimeoutMS = 5000
	}
	if c.HTTP.WriteTimeoutMS == 0 {
		c.HTTP.WriteTimeoutMS = 60000
	}
	if c.GRPC.Port == 0 {
		c.GRPC.Port = 8081
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Store.Mongo.Database == "" {
		c.Store.Mongo.Database = "ridebooking"
	}
	if c.Store.Postgres.MaxConnections == 0 {
		c.Store.Postgres.MaxConnections = 10
	}

	if c.Notify.Kafka.Topic == "" {
		c.Notify.Kafka.Topic = "booking.created"
	}
	if c.Notify.AMQP.Exchange == "" {
		c.Notify.AMQP.Exchange = "ride_topic"
	}
	if c.Notify.Sheets.BookingsRange == "" {
		c.Notify.Sheets.BookingsRange = "Bookings!A:A"
	}
	if c.Notify.Sheets.TrackingRange == "" {
		c.Notify.Sheets.TrackingRange = "Tracking!A:A"
	}
}
