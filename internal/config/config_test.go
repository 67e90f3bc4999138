package config

import (
	"os"
	"path/filepath"
	"testing"

	"ridebooking/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("RIDE_DB_PATH", "/tmp/ride.db")

	yamlContent := `
app:
  name: "ride"
store:
  driver: "SQLite"
  sqlite:
    path: "${RIDE_DB_PATH}"
notify:
  kafka:
    brokers: ["localhost:9092"]
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Store.Driver != DriverSQLite {
		t.Errorf("expected driver sqlite, got %s", cfg.Store.Driver)
	}
	if cfg.Store.SQLite.Path != "/tmp/ride.db" {
		t.Errorf("expected env-expanded path, got %s", cfg.Store.SQLite.Path)
	}
	if len(cfg.Notify.Kafka.Brokers) != 1 || cfg.Notify.Kafka.Topic != "booking.created" {
		t.Errorf("unexpected kafka config: %+v", cfg.Notify.Kafka)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("store: [")); err == nil {
		t.Fatal("expected yaml error")
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "memory store",
			cfg:     Config{Store: StoreConfig{Driver: DriverMemory}},
			wantErr: false,
		},
		{
			name:    "unknown driver",
			cfg:     Config{Store: StoreConfig{Driver: "cassandra"}},
			wantErr: true,
		},
		{
			name:    "sqlite without path",
			cfg:     Config{Store: StoreConfig{Driver: DriverSQLite}},
			wantErr: true,
		},
		{
			name:    "postgres without dsn",
			cfg:     Config{Store: StoreConfig{Driver: DriverPostgres}},
			wantErr: true,
		},
		{
			name:    "mongo without uri",
			cfg:     Config{Store: StoreConfig{Driver: DriverMongo}},
			wantErr: true,
		},
		{
			name:    "firestore without project",
			cfg:     Config{Store: StoreConfig{Driver: DriverFirestore}},
			wantErr: true,
		},
		{
			name:    "firestore with project",
			cfg:     Config{Store: StoreConfig{Driver: DriverFirestore, Firestore: FirestoreConfig{ProjectID: "p"}}},
			wantErr: false,
		},
		{
			name:    "dynamodb without region",
			cfg:     Config{Store: StoreConfig{Driver: DriverDynamoDB}},
			wantErr: true,
		},
		{
			name: "auth without secret",
			cfg: Config{
				Store: StoreConfig{Driver: DriverMemory},
				Auth:  AuthConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "telegram without chat",
			cfg: Config{
				Store:  StoreConfig{Driver: DriverMemory},
				Notify: NotifyConfig{Telegram: TelegramConfig{BotToken: "token"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	if cfg.Store.Driver != DriverMemory {
		t.Errorf("expected default driver memory, got %s", cfg.Store.Driver)
	}
	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.BookingPath != models.DefaultHTTPPath {
		t.Errorf("expected default booking path %s, got %s", models.DefaultHTTPPath, cfg.HTTP.BookingPath)
	}
	if cfg.HTTP.TrackingPath != models.DefaultTrackingPath {
		t.Errorf("expected default tracking path %s, got %s", models.DefaultTrackingPath, cfg.HTTP.TrackingPath)
	}
	if cfg.GRPC.Port != 8081 {
		t.Errorf("expected default gRPC port 8081, got %d", cfg.GRPC.Port)
	}
	if cfg.Monitoring.PrometheusPort != 0 {
		t.Errorf("prometheus port must stay unset while disabled, got %d", cfg.Monitoring.PrometheusPort)
	}
	if cfg.Auth.Enabled {
		t.Error("auth must be off by default")
	}
}
