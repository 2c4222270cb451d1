package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/hashicorp/vault-client-go"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Config struct {
	AppEnv     string `mapstructure:"APP_ENV"`
	AppName    string `mapstructure:"APP_NAME"`
	AppVersion string `mapstructure:"APP_VERSION"`
	NodeID     int64  `mapstructure:"NODE_ID"`
	TLS        struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Otel struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	Metrics struct {
		Enable bool   `mapstructure:"ENABLE"`
		Port   uint32 `mapstructure:"PORT"`
	} `mapstructure:"METRICS"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
		AllowOrigins []string      `mapstructure:"ALLOW_ORIGINS"`
	} `mapstructure:"HTTP_SERVER"`
	Log struct {
		Level      string `mapstructure:"LEVEL"`
		File       string `mapstructure:"FILE"`
		MaxSizeMB  int    `mapstructure:"MAX_SIZE_MB"`
		MaxBackups int    `mapstructure:"MAX_BACKUPS"`
		MaxAgeDays int    `mapstructure:"MAX_AGE_DAYS"`
	} `mapstructure:"LOG"`
	Database struct {
		Type           string `mapstructure:"TYPE"`
		Host           string `mapstructure:"HOST"`
		Port           string `mapstructure:"PORT"`
		DBNAME         string `mapstructure:"DBNAME"`
		User           string `mapstructure:"USER"`
		Password       string `mapstructure:"PASSWORD"`
		SSLMode        string `mapstructure:"SSLMODE"`
		Timezone       string `mapstructure:"TIMEZONE"`
		Path           string `mapstructure:"PATH"`
		AutoMigrate    bool   `mapstructure:"AUTO_MIGRATE"`
		ConnectionPool struct {
			MaxIdleConn     int           `mapstructure:"MAX_IDLE_CONN"`
			MaxOpenConns    int           `mapstructure:"MAX_OPEN_CONNS"`
			ConnMaxLifetime time.Duration `mapstructure:"CONN_MAX_LIFETIME"`
			ConnMaxIdleTime time.Duration `mapstructure:"CONN_MAX_IDLE_TIME"`
		} `mapstructure:"CONNECTION_POOL"`
	} `mapstructure:"DATABASE"`
	Minio struct {
		Endpoint     string        `mapstructure:"ENDPOINT"`
		AccessKey    string        `mapstructure:"ACCESS_KEY"`
		SecretKey    string        `mapstructure:"SECRET_KEY"`
		Secure       bool          `mapstructure:"SECURE"`
		BucketName   string        `mapstructure:"BUCKET_NAME"`
		SignedURLTTL time.Duration `mapstructure:"SIGNED_URL_TTL"`
	} `mapstructure:"MINIO"`
	LLM struct {
		APIURL      string        `mapstructure:"API_URL"`
		APIKey      string        `mapstructure:"API_KEY"`
		Model       string        `mapstructure:"MODEL"`
		Temperature float64       `mapstructure:"TEMPERATURE"`
		Timeout     time.Duration `mapstructure:"TIMEOUT"`
	} `mapstructure:"LLM"`
	Auth struct {
		AdminUser     string        `mapstructure:"ADMIN_USER"`
		AdminPassword string        `mapstructure:"ADMIN_PASSWORD"`
		SessionSecret string        `mapstructure:"SESSION_SECRET"`
		CookieName    string        `mapstructure:"COOKIE_NAME"`
		CookieTTL     time.Duration `mapstructure:"COOKIE_TTL"`
		CookieSecure  bool          `mapstructure:"COOKIE_SECURE"`
	} `mapstructure:"AUTH"`
	AccessControl struct {
		Model  string `mapstructure:"MODEL"`
		Policy string `mapstructure:"POLICY"`
	} `mapstructure:"ACCESS_CONTROL"`
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

type Params struct {
	fx.In
	Vault *vault.Client `optional:"true"`
}

var defaults = map[string]any{
	"APP_ENV":                                     "development",
	"APP_NAME":                                    "autotasking",
	"APP_VERSION":                                 "dev",
	"NODE_ID":                                     1,
	"TLS.ENABLE":                                  false,
	"TLS.CERT_PATH":                               "",
	"TLS.KEY_PATH":                                "",
	"OTEL.ADDR":                                   "",
	"PYROSCOPE.ADDR":                              "",
	"METRICS.ENABLE":                              false,
	"METRICS.PORT":                                9464,
	"HTTP_SERVER.ADDR":                            ":8080",
	"HTTP_SERVER.READ_TIMEOUT":                    "15s",
	"HTTP_SERVER.WRITE_TIMEOUT":                   "120s",
	"HTTP_SERVER.IDLE_TIMEOUT":                    "60s",
	"HTTP_SERVER.ALLOW_ORIGINS":                   []string{},
	"LOG.LEVEL":                                   "info",
	"LOG.FILE":                                    "",
	"LOG.MAX_SIZE_MB":                             100,
	"LOG.MAX_BACKUPS":                             3,
	"LOG.MAX_AGE_DAYS":                            30,
	"DATABASE.TYPE":                               "postgres",
	"DATABASE.HOST":                               "127.0.0.1",
	"DATABASE.PORT":                               "5432",
	"DATABASE.DBNAME":                             "autotasking",
	"DATABASE.USER":                               "postgres",
	"DATABASE.PASSWORD":                           "",
	"DATABASE.SSLMODE":                            "disable",
	"DATABASE.TIMEZONE":                           "UTC",
	"DATABASE.PATH":                               "autotasking.db",
	"DATABASE.AUTO_MIGRATE":                       true,
	"DATABASE.CONNECTION_POOL.MAX_IDLE_CONN":      5,
	"DATABASE.CONNECTION_POOL.MAX_OPEN_CONNS":     20,
	"DATABASE.CONNECTION_POOL.CONN_MAX_LIFETIME":  "30m",
	"DATABASE.CONNECTION_POOL.CONN_MAX_IDLE_TIME": "5m",
	"MINIO.ENDPOINT":                              "",
	"MINIO.ACCESS_KEY":                            "",
	"MINIO.SECRET_KEY":                            "",
	"MINIO.SECURE":                                true,
	"MINIO.BUCKET_NAME":                           "youtube-video-storage-bucket",
	"MINIO.SIGNED_URL_TTL":                        "1h",
	"LLM.API_URL":                                 "https://api.openai.com/v1/chat/completions",
	"LLM.API_KEY":                                 "",
	"LLM.MODEL":                                   "gpt-4.1",
	"LLM.TEMPERATURE":                             0.2,
	"LLM.TIMEOUT":                                 "60s",
	"AUTH.ADMIN_USER":                             "",
	"AUTH.ADMIN_PASSWORD":                         "",
	"AUTH.SESSION_SECRET":                         "",
	"AUTH.COOKIE_NAME":                            "autotasking_auth",
	"AUTH.COOKIE_TTL":                             "720h",
	"AUTH.COOKIE_SECURE":                          false,
	"ACCESS_CONTROL.MODEL":                        "",
	"ACCESS_CONTROL.POLICY":                       "",
}

// legacyEnv lists the environment names the first deployment used.
var legacyEnv = map[string][]string{
	"LLM.API_KEY": {"LLM_API_KEY", "OPENAI_API_KEY"},
	"LLM.API_URL": {"LLM_API_URL", "OPENAI_BASE_URL"},
	"LLM.MODEL":   {"LLM_MODEL", "OPENAI_MODEL"},
}

// New builds a viper instance with defaults and env bindings. Tests use it
// directly; LoadConfig adds the config file and vault overlay.
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, envs := range legacyEnv {
		_ = v.BindEnv(append([]string{key}, envs...)...)
	}
	return v
}

func LoadConfig(p Params) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		zap.L().Warn("failed to load .env", zap.Error(err))
	}

	v := New()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := Unmarshal(v)
	if err != nil {
		return nil, err
	}

	if p.Vault != nil {
		if err := cfg.overlaySecrets(context.Background(), p.Vault); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) overlaySecrets(ctx context.Context, client *vault.Client) error {
	zap.L().Info("Starting Get Secrets", zap.String("path", c.AppEnv))
	secret, err := client.Secrets.KvV2Read(ctx, c.AppEnv, vault.WithMountPath("secret"))
	if err != nil {
		return fmt.Errorf("read vault secret %q: %w", c.AppEnv, err)
	}
	zap.L().Info("Success Get Secret")

	set := func(dst *string, key string) {
		if val, ok := secret.Data.Data[key].(string); ok && val != "" {
			*dst = val
		}
	}

	set(&c.Database.Password, "postgres_password")
	set(&c.LLM.APIKey, "llm_api_key")
	set(&c.Minio.SecretKey, "minio_secret_key")
	set(&c.Auth.SessionSecret, "session_secret")
	set(&c.Auth.AdminPassword, "admin_password")
	return nil
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.AdminUser == "" || c.Auth.AdminPassword == "" {
		errs = append(errs, errors.New("AUTH.ADMIN_USER and AUTH.ADMIN_PASSWORD are required"))
	}
	if len(c.Auth.SessionSecret) < 32 {
		errs = append(errs, errors.New("AUTH.SESSION_SECRET must be at least 32 bytes"))
	}
	if c.Auth.CookieName == "" {
		errs = append(errs, errors.New("AUTH.COOKIE_NAME is required"))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("missing LLM_API_KEY or OPENAI_API_KEY"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("LLM.TIMEOUT must be positive"))
	}
	if c.Minio.Endpoint == "" || c.Minio.BucketName == "" {
		errs = append(errs, errors.New("MINIO.ENDPOINT and MINIO.BUCKET_NAME are required"))
	}
	switch c.Database.Type {
	case "postgres", "mysql", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("unsupported DATABASE.TYPE %q", c.Database.Type))
	}
	if c.TLS.Enable && (c.TLS.CertPath == "" || c.TLS.KeyPath == "") {
		errs = append(errs, errors.New("tls enabled but TLS.CERT_PATH or TLS.KEY_PATH not provided"))
	}
	return errors.Join(errs...)
}
