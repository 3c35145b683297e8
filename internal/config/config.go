package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shenikar/fleet_location_core/internal/models"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	HTTPPort       string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	PostGISEnabled bool   `env:"POSTGIS_ENABLED" envDefault:"true"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	// Пул общий для кеша, состояний геозон, WATCH-транзакций и pub/sub ретранслятора
	RedisPoolSize int `env:"REDIS_POOL_SIZE" envDefault:"20"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// Stream Config
	KafkaBrokers       []string `env:"KAFKA_BROKERS"`
	KafkaPositionTopic string   `env:"KAFKA_POSITION_TOPIC" envDefault:"position-updates"`
	KafkaGroupID       string   `env:"KAFKA_GROUP_ID" envDefault:"fleet-location-core"`
	MQTTBroker         string   `env:"MQTT_BROKER"`
	MQTTClientID       string   `env:"MQTT_CLIENT_ID" envDefault:"fleet-location-core"`
	MQTTTopic          string   `env:"MQTT_TOPIC" envDefault:"fleet/+/+/position"`

	// Fan-out Config
	RabbitMQURL string `env:"RABBITMQ_URL"`
	LiveRelay   string `env:"LIVE_RELAY" envDefault:"local"`

	// Traffic Config
	TrafficAPIURL     string        `env:"TRAFFIC_API_URL"`
	TrafficAPITimeout time.Duration `env:"TRAFFIC_API_TIMEOUT" envDefault:"2s"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`

	Tuning Tuning
}

// Tuning - параметры алгоритмов. Можно задать файлом CONFIG_FILE, переменные окружения имеют приоритет.
type Tuning struct {
	PositionCacheTTL           time.Duration `yaml:"position_cache_ttl" validate:"gt=0"`
	SignificantDistanceKm      float64       `yaml:"significant_distance_km" validate:"gt=0"`
	SignificantInterval        time.Duration `yaml:"significant_interval" validate:"gt=0"`
	SignificantHeadingDeg      float64       `yaml:"significant_heading_deg" validate:"gt=0,lte=180"`
	GeofenceSearchRadiusMeters float64       `yaml:"geofence_search_radius_meters" validate:"gt=0"`
	DwellThreshold             time.Duration `yaml:"dwell_threshold" validate:"gt=0"`
	GeofenceStateTTL           time.Duration `yaml:"geofence_state_ttl" validate:"gt=0"`
	BatchSize                  int           `yaml:"batch_size" validate:"gt=0"`
	BatchInterval              time.Duration `yaml:"batch_interval" validate:"gt=0"`
	StoreTimeout               time.Duration `yaml:"store_timeout" validate:"gt=0"`
	SideEffectTimeout          time.Duration `yaml:"side_effect_timeout" validate:"gt=0"`
	HeartbeatInterval          time.Duration `yaml:"heartbeat_interval" validate:"gt=0"`
	HeartbeatTimeout           time.Duration `yaml:"heartbeat_timeout" validate:"gtfield=HeartbeatInterval"`
	SnapshotLimit              int           `yaml:"snapshot_limit" validate:"gt=0"`
	ETACacheTTL                time.Duration `yaml:"eta_cache_ttl" validate:"gt=0"`
	DefaultSpeedKmh            float64       `yaml:"default_speed_kmh" validate:"gt=0"`
	HistoricalSpeedWindow      time.Duration `yaml:"historical_speed_window" validate:"gt=0"`
}

// DefaultTuning - значения по умолчанию
func DefaultTuning() Tuning {
	return Tuning{
		PositionCacheTTL:           300 * time.Second,
		SignificantDistanceKm:      0.1,
		SignificantInterval:        5 * time.Minute,
		SignificantHeadingDeg:      30,
		GeofenceSearchRadiusMeters: 1000,
		DwellThreshold:             5 * time.Minute,
		GeofenceStateTTL:           time.Hour,
		BatchSize:                  10,
		BatchInterval:              time.Second,
		StoreTimeout:               800 * time.Millisecond,
		SideEffectTimeout:          2 * time.Second,
		HeartbeatInterval:          30 * time.Second,
		HeartbeatTimeout:           60 * time.Second,
		SnapshotLimit:              100,
		ETACacheTTL:                300 * time.Second,
		DefaultSpeedKmh:            80,
		HistoricalSpeedWindow:      30 * 24 * time.Hour,
	}
}

// Significance - пороги архивирования истории
func (t Tuning) Significance() models.SignificanceThresholds {
	return models.SignificanceThresholds{
		DistanceKm:     t.SignificantDistanceKm,
		Interval:       t.SignificantInterval,
		HeadingDegrees: t.SignificantHeadingDeg,
	}
}

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	tuning := DefaultTuning()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadTuningFile(path, &tuning); err != nil {
			return nil, err
		}
	}
	applyTuningEnv(&tuning)
	if err := validator.New().Struct(tuning); err != nil {
		return nil, fmt.Errorf("invalid tuning: %w", err)
	}

	cfg := &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		PostGISEnabled:     getEnvAsBool("POSTGIS_ENABLED", true),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvAsInt("REDIS_DB", 0),
		RedisPoolSize:      getEnvAsInt("REDIS_POOL_SIZE", 20),
		WebhookURL:         os.Getenv("WEBHOOK_URL"),
		WebhookSecret:      os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:     getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:  getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:   getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		KafkaBrokers:       getEnvAsSlice("KAFKA_BROKERS"),
		KafkaPositionTopic: getEnv("KAFKA_POSITION_TOPIC", "position-updates"),
		KafkaGroupID:       getEnv("KAFKA_GROUP_ID", "fleet-location-core"),
		MQTTBroker:         os.Getenv("MQTT_BROKER"),
		MQTTClientID:       getEnv("MQTT_CLIENT_ID", "fleet-location-core"),
		MQTTTopic:          getEnv("MQTT_TOPIC", "fleet/+/+/position"),
		RabbitMQURL:        os.Getenv("RABBITMQ_URL"),
		LiveRelay:          getEnv("LIVE_RELAY", "local"),
		TrafficAPIURL:      os.Getenv("TRAFFIC_API_URL"),
		TrafficAPITimeout:  getEnvAsDuration("TRAFFIC_API_TIMEOUT", 2*time.Second),
		APIKeys:            getEnvAsSlice("API_KEYS"),
		Tuning:             tuning,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.RedisPoolSize < 1 {
		return nil, fmt.Errorf("REDIS_POOL_SIZE must be positive, got %d", cfg.RedisPoolSize)
	}
	if cfg.LiveRelay != "local" && cfg.LiveRelay != "redis" {
		return nil, fmt.Errorf("LIVE_RELAY must be local or redis, got %q", cfg.LiveRelay)
	}

	return cfg, nil
}

// loadTuningFile накладывает значения из YAML поверх текущих
func loadTuningFile(path string, t *Tuning) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyTuningEnv(t *Tuning) {
	t.PositionCacheTTL = getEnvAsDuration("POSITION_CACHE_TTL", t.PositionCacheTTL)
	t.SignificantDistanceKm = getEnvAsFloat("SIGNIFICANT_DISTANCE_KM", t.SignificantDistanceKm)
	t.SignificantInterval = getEnvAsDuration("SIGNIFICANT_INTERVAL", t.SignificantInterval)
	t.SignificantHeadingDeg = getEnvAsFloat("SIGNIFICANT_HEADING_DEG", t.SignificantHeadingDeg)
	t.GeofenceSearchRadiusMeters = getEnvAsFloat("GEOFENCE_SEARCH_RADIUS_METERS", t.GeofenceSearchRadiusMeters)
	t.DwellThreshold = getEnvAsDuration("DWELL_THRESHOLD", t.DwellThreshold)
	t.GeofenceStateTTL = getEnvAsDuration("GEOFENCE_STATE_TTL", t.GeofenceStateTTL)
	t.BatchSize = getEnvAsInt("BATCH_SIZE", t.BatchSize)
	t.BatchInterval = getEnvAsDuration("BATCH_INTERVAL", t.BatchInterval)
	t.StoreTimeout = getEnvAsDuration("STORE_TIMEOUT", t.StoreTimeout)
	t.SideEffectTimeout = getEnvAsDuration("SIDE_EFFECT_TIMEOUT", t.SideEffectTimeout)
	t.HeartbeatInterval = getEnvAsDuration("HEARTBEAT_INTERVAL", t.HeartbeatInterval)
	t.HeartbeatTimeout = getEnvAsDuration("HEARTBEAT_TIMEOUT", t.HeartbeatTimeout)
	t.SnapshotLimit = getEnvAsInt("SNAPSHOT_LIMIT", t.SnapshotLimit)
	t.ETACacheTTL = getEnvAsDuration("ETA_CACHE_TTL", t.ETACacheTTL)
	t.DefaultSpeedKmh = getEnvAsFloat("DEFAULT_SPEED_KMH", t.DefaultSpeedKmh)
	t.HistoricalSpeedWindow = getEnvAsDuration("HISTORICAL_SPEED_WINDOW", t.HistoricalSpeedWindow)
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsSlice разбирает список через запятую, пустые элементы отбрасываются
func getEnvAsSlice(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
