package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "STOREAPI"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "STOREAPI_DB_DSN"
	EnvDBHost = "STOREAPI_DB_HOST"
	EnvDBUser = "STOREAPI_DB_USER"
	EnvDBName = "STOREAPI_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	FeatureFlags FeatureFlagsConfig
	OpenAI       OpenAIConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOREAPI_APP_ENV" required:"true"`
	Port         string `envconfig:"STOREAPI_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"STOREAPI_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOREAPI_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOREAPI_DB_DSN"`
	Driver string `envconfig:"STOREAPI_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOREAPI_DB_HOST"`
	LegacyPort     int    `envconfig:"STOREAPI_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOREAPI_DB_USER"`
	LegacyPassword string `envconfig:"STOREAPI_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOREAPI_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOREAPI_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOREAPI_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOREAPI_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOREAPI_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOREAPI_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOREAPI_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOREAPI_AUTO_MIGRATE" default:"false"`
}

type OpenAIConfig struct {
	APIKey  string `envconfig:"STOREAPI_OPENAI_API_KEY"`
	Model   string `envconfig:"STOREAPI_OPENAI_MODEL" default:"gpt-5-mini"`
	BaseURL string `envconfig:"STOREAPI_OPENAI_BASE_URL"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		return fmt.Errorf("%s is required when the sqlite driver is selected", EnvDBDSN)
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
