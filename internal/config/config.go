package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort    string
	AppEnv     string
	AppBaseURL string
	LogLevel   string

	DBDriver      string
	DBAutoMigrate bool

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresHost    string
	PostgresPort    string
	PostgresDB      string
	PostgresUser    string
	PostgresPass    string
	PostgresSSLMode string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs         int
	CalendarCacheTTLSecs int

	ApprovalTokenTTLHours   int
	ApproverMinGrade        int
	ApprovalMatrix          string
	AdminEmail              string
	PreventiveLoanThreshold int
	MaintenanceIntervalDays int

	NATSURL           string
	NATSSubjectPrefix string

	OutboxBatchSize   int
	OutboxMaxAttempts int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// Load reads the environment, after an optional .env file in the working
// directory. Real environment variables win over the file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:    getenv("APP_PORT", "8080"),
		AppEnv:     getenv("APP_ENV", "production"),
		AppBaseURL: getenv("APP_BASE_URL", "http://localhost:8080"),
		LogLevel:   getenv("LOG_LEVEL", "info"),

		DBDriver:      getenv("DB_DRIVER", "mysql"),
		DBAutoMigrate: getbool("DB_AUTO_MIGRATE", false),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "ictloan"),
		MySQLUser: getenv("MYSQL_USER", "ictloan"),
		MySQLPass: getenv("MYSQL_PASS", "ictloan"),

		PostgresHost:    getenv("POSTGRES_HOST", "postgres"),
		PostgresPort:    getenv("POSTGRES_PORT", "5432"),
		PostgresDB:      getenv("POSTGRES_DB", "ictloan"),
		PostgresUser:    getenv("POSTGRES_USER", "ictloan"),
		PostgresPass:    getenv("POSTGRES_PASS", "ictloan"),
		PostgresSSLMode: getenv("POSTGRES_SSLMODE", "disable"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisPass: os.Getenv("REDIS_PASSWORD"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs:         getint("IDEMPOTENCY_TTL_SECONDS", 300),
		CalendarCacheTTLSecs: getint("CALENDAR_CACHE_TTL_SECONDS", 600),

		ApprovalTokenTTLHours:   getint("APPROVAL_TOKEN_TTL_HOURS", 168),
		ApproverMinGrade:        getint("APPROVER_MIN_GRADE", 41),
		ApprovalMatrix:          os.Getenv("APPROVAL_MATRIX"),
		AdminEmail:              getenv("ADMIN_EMAIL", "ict-admin@localhost"),
		PreventiveLoanThreshold: getint("PREVENTIVE_LOAN_THRESHOLD", 10),
		MaintenanceIntervalDays: getint("MAINTENANCE_INTERVAL_DAYS", 90),

		NATSURL:           os.Getenv("NATS_URL"),
		NATSSubjectPrefix: getenv("NATS_SUBJECT_PREFIX", "ictloan.notifications"),

		OutboxBatchSize:   getint("OUTBOX_BATCH_SIZE", 50),
		OutboxMaxAttempts: getint("OUTBOX_MAX_ATTEMPTS", 5),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if u, err := url.Parse(c.AppBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid APP_BASE_URL %q", c.AppBaseURL)
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.PostgresHost == "" || c.PostgresPort == "" || c.PostgresDB == "" || c.PostgresUser == "" {
			return errors.New("missing Postgres config (POSTGRES_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.PostgresPort); err != nil {
			return fmt.Errorf("invalid POSTGRES_PORT %q: %w", c.PostgresPort, err)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql|postgres)", c.DBDriver)
	}
	if c.ApprovalMatrix == "" {
		return errors.New("missing APPROVAL_MATRIX")
	}
	if c.ApprovalTokenTTLHours <= 0 {
		return errors.New("APPROVAL_TOKEN_TTL_HOURS must be positive")
	}
	if c.OutboxBatchSize <= 0 || c.OutboxMaxAttempts <= 0 {
		return errors.New("OUTBOX_BATCH_SIZE and OUTBOX_MAX_ATTEMPTS must be positive")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME/DATE columns
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPass, c.PostgresDB, c.PostgresSSLMode)
}

// DSN returns the connection string for the selected driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.PostgresDSN()
	}
	return c.MySQLDSN()
}

func (c *Config) Development() bool { return c.AppEnv == "development" }

func (c *Config) ApprovalTokenTTL() time.Duration {
	return time.Duration(c.ApprovalTokenTTLHours) * time.Hour
}

func (c *Config) MaintenanceInterval() time.Duration {
	return time.Duration(c.MaintenanceIntervalDays) * 24 * time.Hour
}
