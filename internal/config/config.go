// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек всех сервисов воронки.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	RabbitMQ                `yaml:"rabbitmq"`
	JWTToken                `yaml:"jwttoken"`
	Admin                   `yaml:"admin"`
	Delivery                `yaml:"delivery"`
	Lava                    `yaml:"lava"`
	Telegram                `yaml:"telegram"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"5s"`
}

// RabbitMQ структура для настройки подключения к брокеру сообщений
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"rabbitmq_url"`
	RabbitMQMaxRetries int           `yaml:"rabbitmq_max_retries" env-default:"10"`
	RabbitMQRetryDelay time.Duration `yaml:"rabbitmq_retry_delay" env-default:"3s"`
}

// JWTToken структура для работы с jwt-токеном админского API
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Admin учётные данные администратора и цена подписки по умолчанию.
type Admin struct {
	AdminUser         string `yaml:"admin_user" env-default:"admin"`
	AdminPasswordHash string `yaml:"admin_password_hash"`
	DefaultPriceRUB   int    `yaml:"default_price_rub" env-default:"1000"`
}

// Delivery настройки ежедневной рассылки рилсов.
type Delivery struct {
	CronSpec       string        `yaml:"cron_spec" env-default:"0 12 * * *"`
	Timezone       string        `yaml:"timezone" env-default:"Europe/Moscow"`
	InterUserPause time.Duration `yaml:"inter_user_pause" env-default:"50ms"`
	TrialDays      int           `yaml:"trial_days" env-default:"60"`
}

// Lava настройки клиента платёжного шлюза.
type Lava struct {
	LavaAPIKey  string `yaml:"lava_api_key"`
	LavaOfferID string `yaml:"lava_offer_id"`
}

// Telegram настройки клиента Bot API для отправки сообщений.
type Telegram struct {
	BotToken string `yaml:"bot_token"`
}

// MustLoad функция для загрузки конфига, путь берётся из переменной CONFIG_PATH
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
