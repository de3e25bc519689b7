package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env           string             `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer    HTTPServerConfig   `yaml:"http_server"`
	MongoDB       MongoDBConfig      `yaml:"mongo"`
	Redis         RedisConfig        `yaml:"redis"`
	Minio         MinioConfig        `yaml:"minio"`
	SMTP          SMTPConfig         `yaml:"smtp"`
	NATS          NATSConfig         `yaml:"nats"`
	JWT           JWTConfig          `yaml:"jwt"`
	SessionCache  SessionCacheConfig `yaml:"session_cache"`
	Logger        LoggerConfig       `yaml:"logger"`
	Metrics       MetricsConfig      `yaml:"metrics"`
	Tracer        TracerConfig       `yaml:"tracer"`
}

type HTTPServerConfig struct {
	Port            string        `yaml:"port" env:"HTTP_PORT" env-default:"8000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	TimeoutGraceful time.Duration `yaml:"timeout_graceful_shutdown" env:"HTTP_TIMEOUT_GRACEFUL" env-default:"15s"`
	SecureCookies   bool          `yaml:"secure_cookies" env:"SECURE_COOKIES" env-default:"false"`
}

type MongoDBConfig struct {
	URI      string `yaml:"uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	User     string `yaml:"user" env:"MONGO_USER"`
	Password string `yaml:"password" env:"MONGO_PASSWORD"`
	Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"ignite_lms"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type MinioConfig struct {
	Endpoint  string        `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string        `yaml:"access_key" env:"MINIO_ROOT_USER" env-default:"minioadmin"`
	SecretKey string        `yaml:"secret_key" env:"MINIO_ROOT_PASSWORD" env-default:"miniosecret"`
	Bucket    string        `yaml:"bucket" env:"MINIO_BUCKET" env-default:"ignite-uploads"`
	UseSSL    bool          `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
	URLExpiry time.Duration `yaml:"url_expiry" env:"MINIO_URL_EXPIRY" env-default:"168h"`
}

type SMTPConfig struct {
	Host        string `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
	Port        int    `yaml:"port" env:"SMTP_PORT" env-default:"587"`
	Username    string `yaml:"username" env:"SMTP_USERNAME"`
	Password    string `yaml:"password" env:"SMTP_PASSWORD"`
	SenderEmail string `yaml:"sender_email" env:"SMTP_SENDER_EMAIL" env-default:"no-reply@ignite-lms.dev"`
	SenderName  string `yaml:"sender_name" env:"SMTP_SENDER_NAME" env-default:"Ignite LMS"`
}

type NATSConfig struct {
	URL string `yaml:"url" env:"NATS_URL" env-default:"nats://localhost:4222"`
}

type JWTConfig struct {
	Secret        string        `yaml:"secret" env:"JWT_SECRET" env-required:"true"`
	RefreshSecret string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET" env-required:"true"`
	AccessTTL     time.Duration `yaml:"access_ttl" env:"JWT_ACCESS_TTL" env-default:"1h"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env:"JWT_REFRESH_TTL" env-default:"168h"`
	ActivationTTL time.Duration `yaml:"activation_ttl" env:"JWT_ACTIVATION_TTL" env-default:"1h"`
}

type SessionCacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"SESSION_CACHE_TTL" env-default:"3600s"`
}

type LoggerConfig struct {
	Level      string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Encoding   string `yaml:"encoding" env:"LOG_ENCODING" env-default:"json"`
	TimeFormat string `yaml:"time_format" env:"LOG_TIME_FORMAT" env-default:"2006-01-02T15:04:05.000Z07:00"`
}

type MetricsConfig struct {
	Port string `yaml:"port" env:"METRICS_PORT" env-default:""`
}

type TracerConfig struct {
	Enabled     bool   `yaml:"enabled" env:"TRACER_ENABLED" env-default:"false"`
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:"localhost:4317"`
	ServiceName string `yaml:"service_name" env:"OTEL_SERVICE_NAME" env-default:"ignite-lms"`
}

func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}

	err := cleanenv.ReadConfig(path, &cfg)
	if err != nil {
		if _, ok := err.(*os.PathError); ok {
			log.Printf("Warning: config file not found at %s, loading from environment variables only", path)
			if errEnv := cleanenv.ReadEnv(&cfg); errEnv != nil {
				return nil, errEnv
			}
			return &cfg, nil
		}
		return nil, err
	}
	return &cfg, nil
}

func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}
	return cfg
}
