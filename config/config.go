package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
	Database Database `yaml:"database"`
	JWT      JWT      `yaml:"jwt"`
	Redis    Redis    `yaml:"redis"`
	Events   Events   `yaml:"events"`
	Limits   Limits   `yaml:"limits"`
	Admin    Admin    `yaml:"admin"`
}

type Server struct {
	Port        string   `yaml:"port"`
	Mode        string   `yaml:"mode"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Database struct {
	Driver          string        `yaml:"driver"`
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

type JWT struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type Events struct {
	Broker       string   `yaml:"broker"` // none, kafka or amqp
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`
	AMQPURL      string   `yaml:"amqp_url"`
	AMQPExchange string   `yaml:"amqp_exchange"`
}

type Limits struct {
	RPS           float64 `yaml:"rps"`
	Burst         int     `yaml:"burst"`
	AuthPerMinute int     `yaml:"auth_per_minute"`
}

type Admin struct {
	Email    string `yaml:"email"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

func defaults() Config {
	return Config{
		Server: Server{Port: "8080", Mode: "debug", CORSOrigins: []string{"*"}},
		Log:    Log{Level: "info", Format: "text"},
		Database: Database{
			Driver:          "mysql",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		JWT:    JWT{TTL: 24 * time.Hour},
		Events: Events{Broker: "none", KafkaTopic: "canteen-events", AMQPExchange: "canteen.events"},
		Limits: Limits{RPS: 20, Burst: 40, AuthPerMinute: 5},
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_PATH (if any), then .env and the process environment.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config %s: %w", path, err)
		}
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Mode, "GIN_MODE")
	setList(&c.Server.CORSOrigins, "CORS_ORIGINS")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.DSN, "DB_DSN")
	setString(&c.JWT.Secret, "JWT_SECRET")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Events.Broker, "EVENT_BROKER")
	setList(&c.Events.KafkaBrokers, "KAFKA_BROKERS")
	setString(&c.Events.KafkaTopic, "KAFKA_TOPIC")
	setString(&c.Events.AMQPURL, "AMQP_URL")
	setString(&c.Events.AMQPExchange, "AMQP_EXCHANGE")
	setString(&c.Admin.Email, "ADMIN_EMAIL")
	setString(&c.Admin.Username, "ADMIN_USERNAME")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")

	var errs []error
	errs = append(errs,
		setInt(&c.Database.MaxOpenConns, "DB_MAX_OPEN_CONNS"),
		setInt(&c.Database.MaxIdleConns, "DB_MAX_IDLE_CONNS"),
		setDuration(&c.Database.ConnMaxLifetime, "DB_CONN_MAX_LIFETIME"),
		setDuration(&c.JWT.TTL, "JWT_TTL"),
		setInt(&c.Redis.DB, "REDIS_DB"),
		setFloat(&c.Limits.RPS, "RATE_LIMIT_RPS"),
		setInt(&c.Limits.Burst, "RATE_LIMIT_BURST"),
		setInt(&c.Limits.AuthPerMinute, "AUTH_RATE_LIMIT_PER_MIN"),
	)
	return errors.Join(errs...)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DB_DSN is required")
	}
	switch c.Events.Broker {
	case "none", "":
		c.Events.Broker = "none"
	case "kafka":
		if len(c.Events.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when EVENT_BROKER=kafka")
		}
	case "amqp":
		if c.Events.AMQPURL == "" {
			return errors.New("AMQP_URL is required when EVENT_BROKER=amqp")
		}
	default:
		return fmt.Errorf("unsupported EVENT_BROKER %q", c.Events.Broker)
	}
	if c.JWT.Secret == "" {
		if c.Server.Mode == "release" {
			return errors.New("JWT_SECRET is required in release mode")
		}
		c.JWT.Secret = "dev-only-secret-change-me"
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setList(dst *[]string, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
