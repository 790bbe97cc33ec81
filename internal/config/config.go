package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Cache backends.
const (
	CacheMemory   = "memory"
	CacheRedis    = "redis"
	CachePostgres = "postgres"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	DatabaseURL          string
	DatabasePingTimeout  time.Duration
	DatabaseMaxOpenConns int

	// Cache configuration.
	CacheBackend    string
	CacheDefaultTTL time.Duration
	CacheUpdatesTTL time.Duration
	CacheFailOpen   bool
	RedisAddr       string
	RedisPassword   string
	RedisDB         int

	// Text understanding.
	GeminiAPIKey        string
	GeminiModel         string
	GeminiVisionModel   string
	GeminiTimeout       time.Duration
	LocationPlaceholder string

	// Geocoding provider chain, in priority order.
	GeocodeProviders    []string
	GoogleMapsAPIKey    string
	MapboxToken         string
	NominatimBaseURL    string
	NominatimUserAgent  string
	GeocodeTimeout      time.Duration
	GeocodeCacheEnabled bool

	KafkaBrokers        []string
	KafkaSocialTopic    string
	KafkaGroupID        string
	KafkaEventsTopic    string
	SocialIngestEnabled bool
	BatchSize           int

	EventBuffer      int
	ResourceRadiusKm float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	pingTimeout, err := parseDuration("DATABASE_PING_TIMEOUT", "2s")
	if err != nil {
		return nil, err
	}
	defaultTTL, err := parseDuration("CACHE_DEFAULT_TTL", "1h")
	if err != nil {
		return nil, err
	}
	updatesTTL, err := parseDuration("CACHE_UPDATES_TTL", "30m")
	if err != nil {
		return nil, err
	}
	geocodeTimeout, err := parseDuration("GEOCODE_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	geminiTimeout, err := parseDuration("GEMINI_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	maxOpen, err := parsePositiveInt("DATABASE_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	batchSize, err := parsePositiveInt("BATCH_SIZE", 50)
	if err != nil {
		return nil, err
	}
	eventBuffer, err := parsePositiveInt("EVENT_BUFFER", 64)
	if err != nil {
		return nil, err
	}
	redisDB, err := strconv.Atoi(sharedcfg.EnvOrDefault("REDIS_DB", "0"))
	if err != nil || redisDB < 0 {
		return nil, errors.New("invalid REDIS_DB")
	}
	radius, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("RESOURCE_RADIUS_KM", "10"), 64)
	if err != nil || radius <= 0 {
		return nil, errors.New("invalid RESOURCE_RADIUS_KM")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DatabasePingTimeout:  pingTimeout,
		DatabaseMaxOpenConns: maxOpen,

		CacheBackend:    strings.ToLower(sharedcfg.EnvOrDefault("CACHE_BACKEND", CacheMemory)),
		CacheDefaultTTL: defaultTTL,
		CacheUpdatesTTL: updatesTTL,
		CacheFailOpen:   parseBool("CACHE_FAIL_OPEN", true),
		RedisAddr:       sharedcfg.EnvOrDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         redisDB,

		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         sharedcfg.EnvOrDefault("GEMINI_MODEL", "gemini-pro"),
		GeminiVisionModel:   sharedcfg.EnvOrDefault("GEMINI_VISION_MODEL", "gemini-pro-vision"),
		GeminiTimeout:       geminiTimeout,
		LocationPlaceholder: sharedcfg.EnvOrDefault("LOCATION_PLACEHOLDER", "Manhattan, NYC"),

		GeocodeProviders:    parseList(sharedcfg.EnvOrDefault("GEOCODE_PROVIDERS", "google,mapbox,nominatim")),
		GoogleMapsAPIKey:    os.Getenv("GOOGLE_MAPS_API_KEY"),
		MapboxToken:         os.Getenv("MAPBOX_TOKEN"),
		NominatimBaseURL:    sharedcfg.EnvOrDefault("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimUserAgent:  sharedcfg.EnvOrDefault("NOMINATIM_USER_AGENT", "disaster-response-service"),
		GeocodeTimeout:      geocodeTimeout,
		GeocodeCacheEnabled: parseBool("GEOCODE_CACHE_ENABLED", false),

		KafkaBrokers:        sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSocialTopic:    sharedcfg.EnvOrDefault("KAFKA_SOCIAL_TOPIC", "social-reports"),
		KafkaGroupID:        sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "disaster-response"),
		KafkaEventsTopic:    os.Getenv("KAFKA_EVENTS_TOPIC"),
		SocialIngestEnabled: parseBool("SOCIAL_INGEST_ENABLED", false),
		BatchSize:           batchSize,

		EventBuffer:      eventBuffer,
		ResourceRadiusKm: radius,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CacheBackend {
	case CacheMemory, CacheRedis:
	case CachePostgres:
		if c.DatabaseURL == "" {
			return errors.New("CACHE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if len(c.GeocodeProviders) == 0 {
		return errors.New("GEOCODE_PROVIDERS is required")
	}
	for _, p := range c.GeocodeProviders {
		switch p {
		case "google", "mapbox", "nominatim":
		default:
			return fmt.Errorf("unknown provider %q in GEOCODE_PROVIDERS", p)
		}
	}
	if c.UpdatesTTLExceedsDefault() {
		return errors.New("CACHE_UPDATES_TTL must not exceed CACHE_DEFAULT_TTL")
	}
	if (c.SocialIngestEnabled || c.KafkaEventsTopic != "") && len(c.KafkaBrokers) == 0 {
		return errors.New("KAFKA_BROKERS is required")
	}
	if c.SocialIngestEnabled && c.KafkaSocialTopic == "" {
		return errors.New("KAFKA_SOCIAL_TOPIC is required")
	}
	return nil
}

// UpdatesTTLExceedsDefault reports a misconfiguration where fast-changing data
// would outlive the default lifetime.
func (c *Config) UpdatesTTLExceedsDefault() bool {
	return c.CacheUpdatesTTL > c.CacheDefaultTTL
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return n, nil
}

func parseBool(key string, def bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

func parseList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
