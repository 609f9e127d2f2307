package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppPort string

	DBDriver string // mysql | postgres | sqlite

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdempTTLSecs int

	LogLevel  string
	LogFormat string

	VoucherIssueWindow time.Duration
	OCCMaxAttempts     int

	Notifier     string // log | kafka | sns
	KafkaBrokers []string
	KafkaTopic   string
	AWSRegion    string
	SNSTopicARN  string

	ExpireSpec        string
	OverdueSpec       string
	WorkerConcurrency int
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("MYSQL_HOST", "mysql")
	v.SetDefault("MYSQL_PORT", "3306")
	v.SetDefault("MYSQL_DB", "credit")
	v.SetDefault("MYSQL_USER", "credit")
	v.SetDefault("MYSQL_PASS", "credit")
	v.SetDefault("SQLITE_PATH", "credit.db")
	v.SetDefault("REDIS_ADDR", "redis:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("IDEMPOTENCY_TTL_SECONDS", 300)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("VOUCHER_ISSUE_WINDOW", "48h")
	v.SetDefault("OCC_MAX_ATTEMPTS", 3)
	v.SetDefault("NOTIFIER", "log")
	v.SetDefault("KAFKA_TOPIC", "credit.lifecycle")
	v.SetDefault("AWS_REGION", "ap-southeast-1")
	v.SetDefault("SCHEDULER_EXPIRE_SPEC", "@every 1m")
	v.SetDefault("SCHEDULER_OVERDUE_SPEC", "@every 5m")
	v.SetDefault("WORKER_CONCURRENCY", 2)
}

// Load reads an optional .env, then the process environment, over defaults.
func Load() *Config {
	_ = godotenv.Load() // .env is optional

	v := viper.New()
	defaults(v)
	v.AutomaticEnv()
	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	c := &Config{
		AppPort:   v.GetString("APP_PORT"),
		DBDriver:  strings.ToLower(v.GetString("DB_DRIVER")),
		MySQLHost: v.GetString("MYSQL_HOST"),
		MySQLPort: v.GetString("MYSQL_PORT"),
		MySQLDB:   v.GetString("MYSQL_DB"),
		MySQLUser: v.GetString("MYSQL_USER"),
		MySQLPass: v.GetString("MYSQL_PASS"),

		PostgresDSN: v.GetString("POSTGRES_DSN"),
		SQLitePath:  v.GetString("SQLITE_PATH"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		IdempTTLSecs:  v.GetInt("IDEMPOTENCY_TTL_SECONDS"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		VoucherIssueWindow: v.GetDuration("VOUCHER_ISSUE_WINDOW"),
		OCCMaxAttempts:     v.GetInt("OCC_MAX_ATTEMPTS"),

		Notifier:    strings.ToLower(v.GetString("NOTIFIER")),
		KafkaTopic:  v.GetString("KAFKA_TOPIC"),
		AWSRegion:   v.GetString("AWS_REGION"),
		SNSTopicARN: v.GetString("SNS_TOPIC_ARN"),

		ExpireSpec:        v.GetString("SCHEDULER_EXPIRE_SPEC"),
		OverdueSpec:       v.GetString("SCHEDULER_OVERDUE_SPEC"),
		WorkerConcurrency: v.GetInt("WORKER_CONCURRENCY"),
	}
	if raw := v.GetString("KAFKA_BROKERS"); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.KafkaBrokers = append(c.KafkaBrokers, b)
			}
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
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
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.VoucherIssueWindow <= 0 {
		return errors.New("VOUCHER_ISSUE_WINDOW must be positive")
	}
	if c.OCCMaxAttempts < 1 {
		return errors.New("OCC_MAX_ATTEMPTS must be at least 1")
	}
	switch c.Notifier {
	case "log":
	case "kafka":
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return errors.New("kafka notifier needs KAFKA_BROKERS and KAFKA_TOPIC")
		}
	case "sns":
		if c.SNSTopicARN == "" {
			return errors.New("sns notifier needs SNS_TOPIC_ARN")
		}
	default:
		return fmt.Errorf("unsupported NOTIFIER %q", c.Notifier)
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps expiry math in UTC
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
