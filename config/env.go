package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	defaultAppEnv            = "local"
	defaultStoreDriver       = "file"
	defaultStorePath         = ".storefront"
	defaultDatabaseDriver    = "sqlite"
	defaultSQLiteDSN         = "storefront.db"
	defaultRedisAddr         = "localhost:6379"
	defaultOrderPollInterval = 5 * time.Second
	defaultToastTTL          = 3 * time.Second
	defaultHTTPTimeout       = 30 * time.Second
	defaultHTTPRetries       = 1
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, then .env, then the process environment over
// the built-in defaults. It runs once; later calls return the first result.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":             defaultAppEnv,
		"BACKEND_URL":         "",
		"STORE_DRIVER":        defaultStoreDriver,
		"STORE_PATH":          defaultStorePath,
		"DB_DRIVER":           defaultDatabaseDriver,
		"DATABASE_DSN":        "",
		"REDIS_ADDR":          defaultRedisAddr,
		"REDIS_PASSWORD":      "",
		"APP_KEY":             "",
		"ORDER_POLL_INTERVAL": defaultOrderPollInterval.String(),
		"TOAST_TTL":           defaultToastTTL.String(),
		"HTTP_TIMEOUT":        defaultHTTPTimeout.String(),
		"HTTP_RETRIES":        strconv.Itoa(defaultHTTPRetries),
		"LOG_MONGO_URI":       "",
	}
}

// AppEnv is "local", "testing" or "production".
func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

// BackendURL is the origin of the storefront REST API. Empty means
// same-origin relative paths.
func BackendURL() string {
	_ = Load()
	return strings.TrimRight(get("BACKEND_URL", ""), "/")
}

// AppKey seals the persisted bearer token when set.
func AppKey() string {
	_ = Load()
	return get("APP_KEY", "")
}

// ── Persistent store ─────────────────────────────────────────────────────────

func StoreDriver() string {
	_ = Load()

	driver := strings.ToLower(get("STORE_DRIVER", defaultStoreDriver))
	switch driver {
	case "memory", "file", "redis", "sql", "s3":
		return driver
	default:
		return defaultStoreDriver
	}
}

func StorePath() string {
	_ = Load()
	return get("STORE_PATH", defaultStorePath)
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

func DatabaseDriver() string {
	_ = Load()

	driver := strings.ToLower(get("DB_DRIVER", defaultDatabaseDriver))
	switch driver {
	case "sqlite", "postgres", "mysql", "sqlserver":
		return driver
	default:
		return defaultDatabaseDriver
	}
}

func DatabaseDSN() string {
	_ = Load()
	if dsn := get("DATABASE_DSN", ""); dsn != "" {
		return dsn
	}
	return defaultSQLiteDSN
}

func S3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func S3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func S3Key() string      { _ = Load(); return get("S3_KEY", "") }
func S3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func S3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func S3Prefix() string   { _ = Load(); return get("S3_PREFIX", "storefront/") }

// ── Timing ───────────────────────────────────────────────────────────────────

// OrderPollInterval is how often the order watcher re-fetches the order list.
func OrderPollInterval() time.Duration {
	_ = Load()
	return duration("ORDER_POLL_INTERVAL", defaultOrderPollInterval)
}

// ToastTTL is how long a notification stays visible.
func ToastTTL() time.Duration {
	_ = Load()
	return duration("TOAST_TTL", defaultToastTTL)
}

// HTTPTimeout is the per-attempt timeout of outgoing requests.
func HTTPTimeout() time.Duration {
	_ = Load()
	return duration("HTTP_TIMEOUT", defaultHTTPTimeout)
}

// HTTPRetries is the total number of attempts per request (1 = no retry).
func HTTPRetries() int {
	_ = Load()
	n, err := strconv.Atoi(get("HTTP_RETRIES", ""))
	if err != nil || n < 1 {
		return defaultHTTPRetries
	}
	return n
}

func LogMongoURI() string {
	_ = Load()
	return get("LOG_MONGO_URI", "")
}

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(configPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(configPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if err := mergeDotEnv(envPath, loaded); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	for key := range loaded {
		if v, ok := os.LookupEnv(key); ok {
			loaded[key] = strings.TrimSpace(v)
		}
	}
	for _, key := range []string{"S3_BUCKET", "S3_REGION", "S3_KEY", "S3_SECRET", "S3_ENDPOINT", "S3_PREFIX"} {
		if v, ok := os.LookupEnv(key); ok {
			loaded[key] = strings.TrimSpace(v)
		}
	}

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		var s string
		switch v := val.(type) {
		case string:
			s = v
		case float64:
			s = strconv.FormatFloat(v, 'f', -1, 64)
		default:
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.Trim(strings.TrimSpace(line[idx+1:]), `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(get(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Set overrides a single key for the lifetime of the process. CLI flags and
// tests use it; it wins over files and environment.
func Set(key, value string) {
	_ = Load()
	mu.Lock()
	values[strings.ToUpper(key)] = value
	mu.Unlock()
}
