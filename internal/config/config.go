package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/riskibarqy/live-tracker/internal/domain/league"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                        string
	ServiceName                   string
	ServiceVersion                string
	HTTPAddr                      string
	CacheEnabled                  bool
	CacheTTL                      time.Duration
	CORSAllowedOrigins            []string
	ReadTimeout                   time.Duration
	WriteTimeout                  time.Duration
	PprofEnabled                  bool
	PprofAddr                     string
	SwaggerEnabled                bool
	UptraceEnabled                bool
	UptraceDSN                    string
	UptraceLogsEnabled            bool
	BetterStackEnabled            bool
	BetterStackEndpoint           string
	BetterStackToken              string
	BetterStackTimeout            time.Duration
	BetterStackMinLevel           logging.Level
	BetterStackBatchSize          int
	BetterStackFlushInterval      time.Duration
	PyroscopeEnabled              bool
	PyroscopeServerAddress        string
	PyroscopeAppName              string
	PyroscopeAuthToken            string
	PyroscopeBasicAuthUser        string
	PyroscopeBasicAuthPassword    string
	PyroscopeUploadRate           time.Duration
	SportsDBBaseURL               string
	SportsDBAPIKey                string
	SportsDBTimeout               time.Duration
	SportsDBMaxAttempts           int
	SportsDBRetryDelay            time.Duration
	SportsDBTransport             string
	SportsDBCircuitEnabled        bool
	SportsDBCircuitFailureCount   int
	SportsDBCircuitOpenTimeout    time.Duration
	SportsDBCircuitHalfOpenMaxReq int
	TrackerSplitSeason            string
	TrackerCalendarSeason         string
	TrackerTopN                   int
	TrackerMaxWorkers             int
	TrackerDefaultLeagues         []string
	RefreshEnabled                bool
	RefreshSchedule               string
	LogLevel                      logging.Level
}

// LoadDotEnv fills unset variables from the given files. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	existing := make([]string, 0, len(files))
	for _, file := range files {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load dotenv: %w", err)
	}
	return nil
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	swaggerDefault := "true"
	if appEnv == EnvProd {
		swaggerDefault = "false"
	}
	swaggerEnabled, err := strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	betterStackEnabled, err := strconv.ParseBool(getEnv("BETTERSTACK_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_ENABLED: %w", err)
	}
	betterStackEndpoint := strings.TrimSpace(getEnv("BETTERSTACK_ENDPOINT", ""))
	if betterStackEnabled && betterStackEndpoint == "" {
		return Config{}, fmt.Errorf("BETTERSTACK_ENDPOINT is required when BETTERSTACK_ENABLED=true")
	}
	betterStackTimeout, err := time.ParseDuration(getEnv("BETTERSTACK_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_TIMEOUT: %w", err)
	}
	if betterStackTimeout <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_TIMEOUT must be > 0")
	}
	betterStackBatchSize, err := getEnvAsInt("BETTERSTACK_BATCH_SIZE", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_BATCH_SIZE: %w", err)
	}
	if betterStackBatchSize < 1 {
		return Config{}, fmt.Errorf("BETTERSTACK_BATCH_SIZE must be >= 1")
	}
	betterStackFlushInterval, err := time.ParseDuration(getEnv("BETTERSTACK_FLUSH_INTERVAL", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse BETTERSTACK_FLUSH_INTERVAL: %w", err)
	}
	if betterStackFlushInterval <= 0 {
		return Config{}, fmt.Errorf("BETTERSTACK_FLUSH_INTERVAL must be > 0")
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	sportsDBTimeout, err := time.ParseDuration(getEnv("SPORTSDB_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDB_TIMEOUT: %w", err)
	}
	if sportsDBTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTSDB_TIMEOUT must be > 0")
	}
	sportsDBMaxAttempts, err := getEnvAsInt("SPORTSDB_MAX_ATTEMPTS", 3)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDB_MAX_ATTEMPTS: %w", err)
	}
	if sportsDBMaxAttempts < 1 {
		return Config{}, fmt.Errorf("SPORTSDB_MAX_ATTEMPTS must be >= 1")
	}
	sportsDBRetryDelay, err := time.ParseDuration(getEnv("SPORTSDB_RETRY_DELAY", "1s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDB_RETRY_DELAY: %w", err)
	}
	if sportsDBRetryDelay < 0 {
		return Config{}, fmt.Errorf("SPORTSDB_RETRY_DELAY must be >= 0")
	}
	sportsDBTransport := strings.ToLower(strings.TrimSpace(getEnv("SPORTSDB_TRANSPORT", TransportNetHTTP)))
	if sportsDBTransport != TransportNetHTTP && sportsDBTransport != TransportFastHTTP {
		return Config{}, fmt.Errorf("invalid SPORTSDB_TRANSPORT %q: valid values are %s, %s", sportsDBTransport, TransportNetHTTP, TransportFastHTTP)
	}
	sportsDBCircuitEnabled, err := strconv.ParseBool(getEnv("SPORTSDB_CIRCUIT_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDB_CIRCUIT_ENABLED: %w", err)
	}
	sportsDBCircuitFailureCount, err := getEnvAsInt("SPORTSDB_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDB_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sportsDBCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("SPORTSDB_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	sportsDBCircuitOpenTimeout, err := time.ParseDuration(getEnv("SPORTSDB_CIRCUIT_OPEN_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDB_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if sportsDBCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SPORTSDB_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	sportsDBCircuitHalfOpenMaxReq, err := getEnvAsInt("SPORTSDB_CIRCUIT_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SPORTSDB_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sportsDBCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("SPORTSDB_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	sportsDBAPIKey := strings.TrimSpace(getEnv("SPORTSDB_API_KEY", ""))
	if sportsDBAPIKey == "" {
		if appEnv != EnvDev {
			return Config{}, fmt.Errorf("SPORTSDB_API_KEY is required when APP_ENV=%s", appEnv)
		}
		sportsDBAPIKey = devSportsDBAPIKey
	}

	seasonDefaults := league.DefaultSeasons()
	trackerTopN, err := getEnvAsInt("TRACKER_TOP_N", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKER_TOP_N: %w", err)
	}
	if trackerTopN < 1 {
		return Config{}, fmt.Errorf("TRACKER_TOP_N must be >= 1")
	}
	trackerMaxWorkers, err := getEnvAsInt("TRACKER_MAX_WORKERS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKER_MAX_WORKERS: %w", err)
	}
	if trackerMaxWorkers < 1 {
		return Config{}, fmt.Errorf("TRACKER_MAX_WORKERS must be >= 1")
	}
	trackerDefaultLeagues, err := parseLeagueNames(getEnv("TRACKER_DEFAULT_LEAGUES", ""))
	if err != nil {
		return Config{}, fmt.Errorf("parse TRACKER_DEFAULT_LEAGUES: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	refreshEnabled, err := strconv.ParseBool(getEnv("REFRESH_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_ENABLED: %w", err)
	}
	refreshSchedule := strings.TrimSpace(getEnv("REFRESH_SCHEDULE", "@every 5m"))
	if refreshEnabled {
		if _, err := cron.ParseStandard(refreshSchedule); err != nil {
			return Config{}, fmt.Errorf("parse REFRESH_SCHEDULE: %w", err)
		}
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "120s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "live-tracker"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		CacheEnabled:                  cacheEnabled,
		CacheTTL:                      cacheTTL,
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		PprofEnabled:                  pprofEnabled,
		PprofAddr:                     pprofAddr,
		SwaggerEnabled:                swaggerEnabled,
		UptraceEnabled:                uptraceEnabled,
		UptraceDSN:                    uptraceDSN,
		UptraceLogsEnabled:            uptraceLogsEnabled,
		BetterStackEnabled:            betterStackEnabled,
		BetterStackEndpoint:           betterStackEndpoint,
		BetterStackToken:              strings.TrimSpace(getEnv("BETTERSTACK_TOKEN", "")),
		BetterStackTimeout:            betterStackTimeout,
		BetterStackMinLevel:           parseLogLevel(getEnv("BETTERSTACK_MIN_LEVEL", "warn")),
		BetterStackBatchSize:          betterStackBatchSize,
		BetterStackFlushInterval:      betterStackFlushInterval,
		PyroscopeEnabled:              pyroscopeEnabled,
		PyroscopeServerAddress:        pyroscopeServerAddress,
		PyroscopeAuthToken:            strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:        strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:    strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:           pyroscopeUploadRate,
		SportsDBBaseURL:               strings.TrimSpace(getEnv("SPORTSDB_BASE_URL", "https://www.thesportsdb.com/api/v1/json")),
		SportsDBAPIKey:                sportsDBAPIKey,
		SportsDBTimeout:               sportsDBTimeout,
		SportsDBMaxAttempts:           sportsDBMaxAttempts,
		SportsDBRetryDelay:            sportsDBRetryDelay,
		SportsDBTransport:             sportsDBTransport,
		SportsDBCircuitEnabled:        sportsDBCircuitEnabled,
		SportsDBCircuitFailureCount:   sportsDBCircuitFailureCount,
		SportsDBCircuitOpenTimeout:    sportsDBCircuitOpenTimeout,
		SportsDBCircuitHalfOpenMaxReq: sportsDBCircuitHalfOpenMaxReq,
		TrackerSplitSeason:            strings.TrimSpace(getEnv("TRACKER_SPLIT_SEASON", seasonDefaults.Split)),
		TrackerCalendarSeason:         strings.TrimSpace(getEnv("TRACKER_CALENDAR_SEASON", seasonDefaults.Calendar)),
		TrackerTopN:                   trackerTopN,
		TrackerMaxWorkers:             trackerMaxWorkers,
		TrackerDefaultLeagues:         trackerDefaultLeagues,
		RefreshEnabled:                refreshEnabled,
		RefreshSchedule:               refreshSchedule,
		LogLevel:                      parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

// Seasons returns the season strings passed to the standings lookup.
func (c Config) Seasons() league.Seasons {
	return league.Seasons{Split: c.TrackerSplitSeason, Calendar: c.TrackerCalendarSeason}
}

const (
	TransportNetHTTP  = "nethttp"
	TransportFastHTTP = "fasthttp"

	// devSportsDBAPIKey is the provider's public test key.
	devSportsDBAPIKey = "3"
)

// parseLeagueNames validates a CSV of catalog names. Empty selects the whole catalog.
func parseLeagueNames(raw string) ([]string, error) {
	catalog := league.Catalog()
	if strings.TrimSpace(raw) == "" {
		return league.Names(catalog), nil
	}

	known := make(map[string]struct{}, len(catalog))
	for _, l := range catalog {
		known[l.Name] = struct{}{}
	}

	out := make([]string, 0)
	for _, name := range splitCSV(raw) {
		if _, ok := known[name]; !ok {
			return nil, fmt.Errorf("unknown league %q", name)
		}
		out = append(out, name)
	}
	return out, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
