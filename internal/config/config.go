package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // view.timezone работает и в контейнере без zoneinfo

	"taskList/internal/models/task"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const EnvPrefix = "TASKLIST"

const (
	RepositoryInMemory = "inmemory"
	RepositoryJSONFile = "jsonfile"
	RepositorySQLite   = "sqlite"
	RepositoryPostgres = "postgres"
	RepositoryRedis    = "redis"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	View       ViewConfig       `yaml:"view"`
	Worker     WorkerConfig     `yaml:"worker"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	RateLimit       int           `yaml:"rate_limit"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type     string         `yaml:"type"` // inmemory, jsonfile, sqlite, postgres или redis
	JSONFile JSONFileConfig `yaml:"jsonfile"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
	Redis    RedisConfig    `yaml:"redis"`
}

type JSONFileConfig struct {
	Dir string `yaml:"dir"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type PostgresConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// ViewConfig - язык страницы и начальные фильтр и сортировка
type ViewConfig struct {
	Locale   string `yaml:"locale"`
	Timezone string `yaml:"timezone"`
	Filter   string `yaml:"filter"`
	Sort     string `yaml:"sort"`
}

type WorkerConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Host:            "localhost",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			RateLimit:       100,
		},
		Repository: RepositoryConfig{
			Type:     RepositoryJSONFile,
			JSONFile: JSONFileConfig{Dir: "data"},
			SQLite:   SQLiteConfig{Path: "tasklist.db"},
			Postgres: PostgresConfig{
				MaxConnections: 10,
				MinConnections: 2,
				IdleTimeout:    5 * time.Minute,
			},
			Redis: RedisConfig{
				Addr:   "localhost:6379",
				Prefix: "tasklist:",
			},
		},
		View: ViewConfig{
			Locale: "en",
			Filter: "all",
			Sort:   "deadlineAsc",
		},
		Worker: WorkerConfig{
			Enabled:  true,
			Interval: time.Minute,
		},
	}
}

// Load читает yaml поверх значений по умолчанию, затем применяет переменные
// окружения TASKLIST_*. Отсутствующий файл не ошибка.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
		default:
			defer file.Close()
			decoder := yaml.NewDecoder(file)
			decoder.KnownFields(true)
			if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type envBinding struct {
	key   string
	apply func(v *viper.Viper, key string, cfg *Config)
}

var envBindings = []envBinding{
	{"server.port", func(v *viper.Viper, k string, c *Config) { c.Server.Port = v.GetString(k) }},
	{"server.host", func(v *viper.Viper, k string, c *Config) { c.Server.Host = v.GetString(k) }},
	{"server.read_timeout", func(v *viper.Viper, k string, c *Config) { c.Server.ReadTimeout = v.GetDuration(k) }},
	{"server.write_timeout", func(v *viper.Viper, k string, c *Config) { c.Server.WriteTimeout = v.GetDuration(k) }},
	{"server.shutdown_timeout", func(v *viper.Viper, k string, c *Config) { c.Server.ShutdownTimeout = v.GetDuration(k) }},
	{"server.rate_limit", func(v *viper.Viper, k string, c *Config) { c.Server.RateLimit = v.GetInt(k) }},
	{"server.cors_origins", func(v *viper.Viper, k string, c *Config) { c.Server.CORSOrigins = strings.Fields(v.GetString(k)) }},
	{"logging.development", func(v *viper.Viper, k string, c *Config) { c.Logging.Development = v.GetBool(k) }},
	{"repository.type", func(v *viper.Viper, k string, c *Config) { c.Repository.Type = v.GetString(k) }},
	{"repository.jsonfile.dir", func(v *viper.Viper, k string, c *Config) { c.Repository.JSONFile.Dir = v.GetString(k) }},
	{"repository.sqlite.path", func(v *viper.Viper, k string, c *Config) { c.Repository.SQLite.Path = v.GetString(k) }},
	{"repository.postgres.url", func(v *viper.Viper, k string, c *Config) { c.Repository.Postgres.URL = v.GetString(k) }},
	{"repository.postgres.max_connections", func(v *viper.Viper, k string, c *Config) { c.Repository.Postgres.MaxConnections = v.GetInt32(k) }},
	{"repository.postgres.min_connections", func(v *viper.Viper, k string, c *Config) { c.Repository.Postgres.MinConnections = v.GetInt32(k) }},
	{"repository.postgres.idle_timeout", func(v *viper.Viper, k string, c *Config) { c.Repository.Postgres.IdleTimeout = v.GetDuration(k) }},
	{"repository.redis.addr", func(v *viper.Viper, k string, c *Config) { c.Repository.Redis.Addr = v.GetString(k) }},
	{"repository.redis.password", func(v *viper.Viper, k string, c *Config) { c.Repository.Redis.Password = v.GetString(k) }},
	{"repository.redis.db", func(v *viper.Viper, k string, c *Config) { c.Repository.Redis.DB = v.GetInt(k) }},
	{"repository.redis.prefix", func(v *viper.Viper, k string, c *Config) { c.Repository.Redis.Prefix = v.GetString(k) }},
	{"view.locale", func(v *viper.Viper, k string, c *Config) { c.View.Locale = v.GetString(k) }},
	{"view.timezone", func(v *viper.Viper, k string, c *Config) { c.View.Timezone = v.GetString(k) }},
	{"view.filter", func(v *viper.Viper, k string, c *Config) { c.View.Filter = v.GetString(k) }},
	{"view.sort", func(v *viper.Viper, k string, c *Config) { c.View.Sort = v.GetString(k) }},
	{"worker.enabled", func(v *viper.Viper, k string, c *Config) { c.Worker.Enabled = v.GetBool(k) }},
	{"worker.interval", func(v *viper.Viper, k string, c *Config) { c.Worker.Interval = v.GetDuration(k) }},
}

// applyEnv: server.port -> TASKLIST_SERVER_PORT
func applyEnv(cfg *Config) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for _, b := range envBindings {
		if err := v.BindEnv(b.key); err != nil {
			return fmt.Errorf("переменная окружения для %s: %w", b.key, err)
		}
		if v.IsSet(b.key) {
			b.apply(v, b.key, cfg)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryInMemory, RepositoryJSONFile, RepositorySQLite, RepositoryRedis:
	case RepositoryPostgres:
		if c.Repository.Postgres.URL == "" {
			return errors.New("repository.postgres.url обязателен для postgres")
		}
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.Repository.Type)
	}

	if c.Server.Port == "" {
		return errors.New("server.port не задан")
	}

	if _, err := task.ParseFilter(c.View.Filter); err != nil {
		return fmt.Errorf("view.filter: %w", err)
	}
	if _, err := task.ParseSortMode(c.View.Sort); err != nil {
		return fmt.Errorf("view.sort: %w", err)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location - часовой пояс для отображения дат; пустое значение - локальный
func (c *Config) Location() (*time.Location, error) {
	if c.View.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.View.Timezone)
	if err != nil {
		return nil, fmt.Errorf("неверный view.timezone %q: %w", c.View.Timezone, err)
	}
	return loc, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
