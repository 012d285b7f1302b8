package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	LogLevel       logging.Level

	// DBURL empty means the in-memory repositories are wired instead of
	// postgres. Useful for local runs and tests.
	DBURL                   string
	DBDisablePreparedBinary bool

	CacheEnabled bool
	CacheTTL     time.Duration

	InternalJobToken string

	WindowLookAheadHorizon time.Duration
	WindowCloseLead        time.Duration
	WindowScoreDelay       time.Duration
	ScoringRetryDelay      time.Duration
	ScheduleInterval       time.Duration

	WorkerEnabled      bool
	WorkerPollInterval time.Duration
	WorkerBatchSize    int
	WorkerPoolSize     int
	WorkerMaxAttempts  int
	WorkerRetryBackoff time.Duration

	PushEnabled               bool
	PushBaseURL               string
	PushPath                  string
	PushToken                 string
	PushTimeout               time.Duration
	PushRetries               int
	PushCircuitEnabled        bool
	PushCircuitFailureCount   int
	PushCircuitOpenTimeout    time.Duration
	PushCircuitHalfOpenMaxReq int

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := getEnvAsDuration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	writeTimeout, err := getEnvAsDuration("APP_WRITE_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}

	dbDisablePreparedBinary, err := getEnvAsBool("DB_DISABLE_PREPARED_BINARY_RESULT", "true")
	if err != nil {
		return Config{}, err
	}

	cacheEnabled, err := getEnvAsBool("CACHE_ENABLED", "true")
	if err != nil {
		return Config{}, err
	}
	cacheTTL, err := getEnvAsDuration("CACHE_TTL", "60s")
	if err != nil {
		return Config{}, err
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	windowHorizon, err := getEnvAsDuration("WINDOW_LOOKAHEAD_HORIZON", "168h")
	if err != nil {
		return Config{}, err
	}
	if windowHorizon <= 0 {
		return Config{}, fmt.Errorf("WINDOW_LOOKAHEAD_HORIZON must be > 0")
	}
	windowCloseLead, err := getEnvAsDuration("WINDOW_CLOSE_LEAD", "15m")
	if err != nil {
		return Config{}, err
	}
	if windowCloseLead <= 0 {
		return Config{}, fmt.Errorf("WINDOW_CLOSE_LEAD must be > 0")
	}
	windowScoreDelay, err := getEnvAsDuration("WINDOW_SCORE_DELAY", "120m")
	if err != nil {
		return Config{}, err
	}
	if windowScoreDelay <= 0 {
		return Config{}, fmt.Errorf("WINDOW_SCORE_DELAY must be > 0")
	}
	scoringRetryDelay, err := getEnvAsDuration("SCORING_RETRY_DELAY", "30m")
	if err != nil {
		return Config{}, err
	}
	if scoringRetryDelay <= 0 {
		return Config{}, fmt.Errorf("SCORING_RETRY_DELAY must be > 0")
	}
	scheduleInterval, err := getEnvAsDuration("SCHEDULE_INTERVAL", "15m")
	if err != nil {
		return Config{}, err
	}
	if scheduleInterval <= 0 {
		return Config{}, fmt.Errorf("SCHEDULE_INTERVAL must be > 0")
	}

	workerEnabled, err := getEnvAsBool("WORKER_ENABLED", "true")
	if err != nil {
		return Config{}, err
	}
	workerPollInterval, err := getEnvAsDuration("WORKER_POLL_INTERVAL", "5s")
	if err != nil {
		return Config{}, err
	}
	if workerPollInterval <= 0 {
		return Config{}, fmt.Errorf("WORKER_POLL_INTERVAL must be > 0")
	}
	workerBatchSize, err := getEnvAsInt("WORKER_BATCH_SIZE", 20)
	if err != nil {
		return Config{}, fmt.Errorf("parse WORKER_BATCH_SIZE: %w", err)
	}
	if workerBatchSize < 1 {
		return Config{}, fmt.Errorf("WORKER_BATCH_SIZE must be >= 1")
	}
	workerPoolSize, err := getEnvAsInt("WORKER_POOL_SIZE", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse WORKER_POOL_SIZE: %w", err)
	}
	if workerPoolSize < 1 {
		return Config{}, fmt.Errorf("WORKER_POOL_SIZE must be >= 1")
	}
	workerMaxAttempts, err := getEnvAsInt("WORKER_MAX_ATTEMPTS", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse WORKER_MAX_ATTEMPTS: %w", err)
	}
	if workerMaxAttempts < 1 {
		return Config{}, fmt.Errorf("WORKER_MAX_ATTEMPTS must be >= 1")
	}
	workerRetryBackoff, err := getEnvAsDuration("WORKER_RETRY_BACKOFF", "1m")
	if err != nil {
		return Config{}, err
	}
	if workerRetryBackoff <= 0 {
		return Config{}, fmt.Errorf("WORKER_RETRY_BACKOFF must be > 0")
	}

	pushEnabled, err := getEnvAsBool("PUSH_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	pushBaseURL := strings.TrimSpace(getEnv("PUSH_BASE_URL", ""))
	if pushEnabled && pushBaseURL == "" {
		return Config{}, fmt.Errorf("PUSH_BASE_URL is required when PUSH_ENABLED=true")
	}
	pushTimeout, err := getEnvAsDuration("PUSH_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	if pushTimeout <= 0 {
		return Config{}, fmt.Errorf("PUSH_TIMEOUT must be > 0")
	}
	pushRetries, err := getEnvAsInt("PUSH_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PUSH_RETRIES: %w", err)
	}
	if pushRetries < 0 {
		return Config{}, fmt.Errorf("PUSH_RETRIES must be >= 0")
	}
	pushCircuitEnabled, err := getEnvAsBool("PUSH_CIRCUIT_ENABLED", "true")
	if err != nil {
		return Config{}, err
	}
	pushCircuitFailureCount, err := getEnvAsInt("PUSH_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse PUSH_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if pushCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("PUSH_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	pushCircuitOpenTimeout, err := getEnvAsDuration("PUSH_CIRCUIT_OPEN_TIMEOUT", "15s")
	if err != nil {
		return Config{}, err
	}
	if pushCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("PUSH_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	pushCircuitHalfOpenMaxReq, err := getEnvAsInt("PUSH_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse PUSH_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if pushCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("PUSH_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	pprofEnabled, err := getEnvAsBool("PPROF_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := getEnvAsBool("UPTRACE_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := getEnvAsBool("PYROSCOPE_ENABLED", "false")
	if err != nil {
		return Config{}, err
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s")
	if err != nil {
		return Config{}, err
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "prediction-league-api"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		LogLevel:       parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		DBURL:                   getEnv("DB_URL", ""),
		DBDisablePreparedBinary: dbDisablePreparedBinary,

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		InternalJobToken: strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),

		WindowLookAheadHorizon: windowHorizon,
		WindowCloseLead:        windowCloseLead,
		WindowScoreDelay:       windowScoreDelay,
		ScoringRetryDelay:      scoringRetryDelay,
		ScheduleInterval:       scheduleInterval,

		WorkerEnabled:      workerEnabled,
		WorkerPollInterval: workerPollInterval,
		WorkerBatchSize:    workerBatchSize,
		WorkerPoolSize:     workerPoolSize,
		WorkerMaxAttempts:  workerMaxAttempts,
		WorkerRetryBackoff: workerRetryBackoff,

		PushEnabled:               pushEnabled,
		PushBaseURL:               pushBaseURL,
		PushPath:                  strings.TrimSpace(getEnv("PUSH_PATH", "/v1/notifications")),
		PushToken:                 strings.TrimSpace(getEnv("PUSH_TOKEN", "")),
		PushTimeout:               pushTimeout,
		PushRetries:               pushRetries,
		PushCircuitEnabled:        pushCircuitEnabled,
		PushCircuitFailureCount:   pushCircuitFailureCount,
		PushCircuitOpenTimeout:    pushCircuitOpenTimeout,
		PushCircuitHalfOpenMaxReq: pushCircuitHalfOpenMaxReq,

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
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
	return strconv.Atoi(value)
}

func getEnvAsBool(key, fallback string) (bool, error) {
	out, err := strconv.ParseBool(getEnv(key, fallback))
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}

func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return out, nil
}
