package config

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"

	"creditnexus/internal/domain/credit"
	"creditnexus/internal/domain/loan"
)

const (
	StoreSQLite = "sqlite"
	StoreMySQL  = "mysql"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	GormLog   string `env:"GORM_LOG_LEVEL" envDefault:"warn"`

	// sqlite keeps the session in memory; mysql shares it between replicas
	// and is wiped at boot.
	StoreDriver string `env:"STORE_DRIVER" envDefault:"sqlite"`
	SQLiteDSN   string `env:"SQLITE_DSN" envDefault:"file:ledger?mode=memory&cache=shared"`

	MySQLHost string `env:"MYSQL_HOST" envDefault:"mysql"`
	MySQLPort string `env:"MYSQL_PORT" envDefault:"3306"`
	MySQLDB   string `env:"MYSQL_DB" envDefault:"creditnexus"`
	MySQLUser string `env:"MYSQL_USER" envDefault:"creditnexus"`
	MySQLPass string `env:"MYSQL_PASS" envDefault:"creditnexus"`

	// Empty disables idempotency enforcement.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	IdempTTLSecs  int    `env:"IDEMPOTENCY_TTL_SECONDS" envDefault:"300"`

	// Empty disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"KAFKA_TOPIC" envDefault:"creditnexus.ledger"`

	SweepInterval      time.Duration `env:"SWEEP_INTERVAL" envDefault:"30s"`
	MinBorrowerScore   int           `env:"MIN_BORROWER_SCORE" envDefault:"300"`
	OverpaymentPolicy  string        `env:"OVERPAYMENT_POLICY" envDefault:"accept"`
	BankFunding        string        `env:"BANK_FUNDING" envDefault:"1000000"`
	ParticipantFunding string        `env:"PARTICIPANT_FUNDING" envDefault:"10000"`

	NetworkLatency    time.Duration `env:"NETWORK_LATENCY" envDefault:"0s"`
	NetworkTrustLimit string        `env:"NETWORK_TRUST_LIMIT" envDefault:"0"`
}

func Load() (*Config, error) {
	c := &Config{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.StoreDriver {
	case StoreSQLite:
		if c.SQLiteDSN == "" {
			return errors.New("missing SQLITE_DSN")
		}
	case StoreMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want sqlite or mysql)", c.StoreDriver)
	}
	if !loan.OverpaymentPolicy(c.OverpaymentPolicy).Valid() {
		return fmt.Errorf("invalid OVERPAYMENT_POLICY %q (want accept, clamp or reject)", c.OverpaymentPolicy)
	}
	if c.MinBorrowerScore < credit.MinScore || c.MinBorrowerScore > credit.MaxScore {
		return fmt.Errorf("MIN_BORROWER_SCORE %d outside [%d, %d]", c.MinBorrowerScore, credit.MinScore, credit.MaxScore)
	}
	if c.SweepInterval <= 0 {
		return errors.New("SWEEP_INTERVAL must be positive")
	}
	for name, v := range map[string]string{
		"BANK_FUNDING":        c.BankFunding,
		"PARTICIPANT_FUNDING": c.ParticipantFunding,
		"NETWORK_TRUST_LIMIT": c.NetworkTrustLimit,
	} {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, v, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		return errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}
	return nil
}

func (c *Config) Overpayment() loan.OverpaymentPolicy {
	return loan.OverpaymentPolicy(c.OverpaymentPolicy)
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

// Amounts below were checked by Validate.

func (c *Config) BankFundingAmount() decimal.Decimal { return decimal.RequireFromString(c.BankFunding) }

func (c *Config) ParticipantFundingAmount() decimal.Decimal {
	return decimal.RequireFromString(c.ParticipantFunding)
}

func (c *Config) TrustLimit() decimal.Decimal { return decimal.RequireFromString(c.NetworkTrustLimit) }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
