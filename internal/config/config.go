package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config содержит настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Outbox    OutboxConfig
	Matricule MatriculeConfig
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Port string
}

// DatabaseConfig - настройки подключения к БД
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN возвращает строку подключения к PostgreSQL
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisConfig - канал трансляции изменений; пустой URL отключает Redis
type RedisConfig struct {
	URL     string
	Channel string
}

// OutboxConfig - пул фоновых обработчиков уведомлений и трансляций
type OutboxConfig struct {
	Workers int
	Buffer  int
}

// MatriculeConfig - число попыток выдачи матрикула при конфликте
type MatriculeConfig struct {
	MaxAttempts int
}

// Load загружает конфигурацию из переменных окружения и необязательного файла .env
func Load() (*Config, error) {
	// Отсутствие .env не ошибка: в контейнере переменные задаются окружением
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server_port", "8080")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_user", "postgres")
	v.SetDefault("db_password", "postgres")
	v.SetDefault("db_name", "resources")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("redis_url", "")
	v.SetDefault("broadcast_channel", "resource-request-events")
	v.SetDefault("outbox_workers", 4)
	v.SetDefault("outbox_buffer", 1024)
	v.SetDefault("matricule_max_attempts", 5)

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("server_port"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("db_host"),
			Port:     v.GetString("db_port"),
			User:     v.GetString("db_user"),
			Password: v.GetString("db_password"),
			DBName:   v.GetString("db_name"),
			SSLMode:  v.GetString("db_sslmode"),
		},
		Redis: RedisConfig{
			URL:     v.GetString("redis_url"),
			Channel: v.GetString("broadcast_channel"),
		},
		Outbox: OutboxConfig{
			Workers: v.GetInt("outbox_workers"),
			Buffer:  v.GetInt("outbox_buffer"),
		},
		Matricule: MatriculeConfig{
			MaxAttempts: v.GetInt("matricule_max_attempts"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Outbox.Workers < 1 {
		return fmt.Errorf("OUTBOX_WORKERS must be positive, got %d", c.Outbox.Workers)
	}
	if c.Outbox.Buffer < 1 {
		return fmt.Errorf("OUTBOX_BUFFER must be positive, got %d", c.Outbox.Buffer)
	}
	if c.Matricule.MaxAttempts < 1 {
		return fmt.Errorf("MATRICULE_MAX_ATTEMPTS must be positive, got %d", c.Matricule.MaxAttempts)
	}
	return nil
}
