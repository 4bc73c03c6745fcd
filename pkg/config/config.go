package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/iancoleman/strcase"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	IdentityDriverBackend = "backend"
	IdentityDriverLocal   = "local"

	StorageDriverBackend = "backend"
	StorageDriverLocal   = "local"

	RevalidateDriverLog     = "log"
	RevalidateDriverWebhook = "webhook"
	RevalidateDriverRedis   = "redis"
)

type Config struct {
	// BackendURL is the base URL of the hosted backend that provides identity and object storage.
	BackendURL string `koanf:"backend_url" required:"true" validate:"url"`
	// BackendAnonKey is the public (anonymous) API key of the hosted backend.
	BackendAnonKey string `koanf:"backend_anon_key" required:"true"`

	CORSAllowOrigins          []string      `koanf:"cors_allow_origins" default:"[\"*\"]"`
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseURL               string        `koanf:"database_url" default:"./tmp/data.sqlite"`
	Environment               string        `koanf:"environment" default:"development"`
	ExposeInternalErrors      bool          `koanf:"expose_internal_errors"`
	HTTPClientTimeout         time.Duration `koanf:"http_client_timeout" default:"10s"`
	IdentityDriver            string        `koanf:"identity_driver" default:"backend" validate:"oneof=backend local"`
	JWTSecret                 string        `koanf:"jwt_secret" validate:"required_if=IdentityDriver local"`
	RedisAddr                 string        `koanf:"redis_addr" default:"localhost:6379"`
	RedisChannel              string        `koanf:"redis_channel" default:"rakbuku:revalidate"`
	RedisDB                   int           `koanf:"redis_db"`
	RedisPassword             string        `koanf:"redis_password"`
	RevalidateDriver          string        `koanf:"revalidate_driver" default:"log" validate:"oneof=log webhook redis"`
	RevalidateSecret          string        `koanf:"revalidate_secret"`
	RevalidateWebhookURL      string        `koanf:"revalidate_webhook_url" validate:"required_if=RevalidateDriver webhook"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"3689"`
	StorageBucket             string        `koanf:"storage_bucket" default:"book-covers"`
	StorageDir                string        `koanf:"storage_dir" default:"./tmp/storage"`
	StorageDriver             string        `koanf:"storage_driver" default:"backend" validate:"oneof=backend local"`
	StorageServiceKey         string        `koanf:"storage_service_key"`
	TokenExpiry               time.Duration `koanf:"token_expiry" default:"168h"`
	UploadMaxBytes            int64         `koanf:"upload_max_bytes" default:"5242880"`
}

const (
	environmentENV = "ENVIRONMENT"
	configFileENV  = "CONFIG_FILE"

	defaultConfigFile = "/config/rakbuku.yaml"
)

// New builds the configuration from defaults, the optional YAML config file and the environment, in that order of
// precedence (environment wins).
func New() (*Config, error) {
	// A missing .env file is the normal case outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", configFile)
		}
	}

	err := k.Load(env.Provider("", ".", strings.ToLower), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	err = k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			Result:           cfg,
			TagName:          "koanf",
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cfg.BackendURL = strings.TrimRight(cfg.BackendURL, "/")

	return cfg, nil
}

// NewForTest returns a configuration that needs no external services: in-memory sqlite, local identity and local
// storage.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	loadTestConfig(cfg)
	return cfg
}

func (cfg *Config) validate() error {
	missing := []string{}
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Tag.Get("required") != "true" {
			continue
		}
		if v.Field(i).IsZero() {
			key := toSnakeCase(field.Name)
			missing = append(missing, fmt.Sprintf("%s (%s)", strings.ToUpper(key), key))
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.Errorf("invalid config: %s failed %q", toSnakeCase(verrs[0].StructField()), verrs[0].Tag())
		}
		return errors.WithStack(err)
	}

	return nil
}

// StorageKey returns the key used to authenticate against the hosted object storage.
func (cfg *Config) StorageKey() string {
	if cfg.StorageServiceKey != "" {
		return cfg.StorageServiceKey
	}
	return cfg.BackendAnonKey
}

func (cfg *Config) IsTest() bool {
	return cfg.Environment == "test"
}

func toSnakeCase(s string) string {
	return strcase.ToSnake(s)
}
