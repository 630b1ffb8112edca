// Package config настройки сервиса: yaml-файл и переопределения из окружения.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const envPrefix = "COFFEEHOUSE_"

// SysConfig Workdir база для относительных путей хранилища и логов;
// Debug включает debug-режим gin
type SysConfig struct {
	Workdir string `yaml:"workdir"`
	Debug   bool   `yaml:"debug"`
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// StorageConfig Driver: memory, bolt или redis
type StorageConfig struct {
	Driver   string      `yaml:"driver"`
	BoltPath string      `yaml:"bolt_path"`
	Redis    RedisConfig `yaml:"redis"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// ShopConfig параметры симуляции
type ShopConfig struct {
	StatusInterval time.Duration `yaml:"status_interval"`
	ChatReplyDelay time.Duration `yaml:"chat_reply_delay"`
	NodeID         int64         `yaml:"node_id"`
	QRBaseURL      string        `yaml:"qr_base_url"`
}

type AppConfig struct {
	System  SysConfig     `yaml:"system"`
	Web     WebConfig     `yaml:"web"`
	Storage StorageConfig `yaml:"storage"`
	Logger  LogConfig     `yaml:"logger"`
	Shop    ShopConfig    `yaml:"shop"`
}

// Addr адрес для http.Server
func (c *AppConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Web.Host, c.Web.Port)
}

func Default() *AppConfig {
	return &AppConfig{
		System: SysConfig{Workdir: "var"},
		Web:    WebConfig{Host: "0.0.0.0", Port: 9091, AllowedOrigins: []string{"*"}},
		Storage: StorageConfig{
			Driver:   "bolt",
			BoltPath: "data/coffeehouse.db",
			Redis:    RedisConfig{Addr: "127.0.0.1:6379", Prefix: "coffeehouse:"},
		},
		Logger: LogConfig{Mode: "development", Filename: "logs/coffeehouse.log"},
		Shop: ShopConfig{
			StatusInterval: 5 * time.Second,
			ChatReplyDelay: time.Second,
			NodeID:         1,
			QRBaseURL:      "https://t.me/coffeehouse_bot/app?startapp=order-",
		},
	}
}

// Load читает файл (пустой путь допустим) и применяет переменные окружения
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.resolvePaths()
	return cfg, nil
}

// resolvePaths относительные пути файлов считаются от system.workdir
func (c *AppConfig) resolvePaths() {
	c.Storage.BoltPath = c.inWorkdir(c.Storage.BoltPath)
	c.Logger.Filename = c.inWorkdir(c.Logger.Filename)
}

func (c *AppConfig) inWorkdir(path string) string {
	if path == "" || filepath.IsAbs(path) || c.System.Workdir == "" {
		return path
	}
	return filepath.Join(c.System.Workdir, path)
}

func (c *AppConfig) Validate() error {
	switch c.Storage.Driver {
	case "memory", "bolt", "redis":
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port %d", c.Web.Port)
	}
	if c.Shop.StatusInterval <= 0 || c.Shop.ChatReplyDelay < 0 {
		return errors.New("shop intervals must be positive")
	}
	if c.Shop.NodeID < 0 || c.Shop.NodeID > 1023 {
		return fmt.Errorf("node_id %d out of range 0..1023", c.Shop.NodeID)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func (c *AppConfig) applyEnv(lookup lookupFunc) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := cast.ToIntE(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := cast.ToDurationE(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("SYSTEM_WORKDIR", &c.System.Workdir)
	if v, ok := lookup(envPrefix + "SYSTEM_DEBUG"); ok {
		c.System.Debug = cast.ToBool(strings.TrimSpace(v))
	}
	str("WEB_HOST", &c.Web.Host)
	num("WEB_PORT", &c.Web.Port)
	if v, ok := lookup(envPrefix + "WEB_ALLOWED_ORIGINS"); ok {
		c.Web.AllowedOrigins = splitList(v)
	}
	str("STORAGE_DRIVER", &c.Storage.Driver)
	str("STORAGE_BOLT_PATH", &c.Storage.BoltPath)
	str("REDIS_ADDR", &c.Storage.Redis.Addr)
	str("REDIS_PASSWORD", &c.Storage.Redis.Password)
	num("REDIS_DB", &c.Storage.Redis.DB)
	str("REDIS_PREFIX", &c.Storage.Redis.Prefix)
	str("LOGGER_MODE", &c.Logger.Mode)
	if v, ok := lookup(envPrefix + "LOGGER_FILE_ENABLE"); ok {
		c.Logger.FileEnable = cast.ToBool(strings.TrimSpace(v))
	}
	str("LOGGER_FILENAME", &c.Logger.Filename)
	dur("SHOP_STATUS_INTERVAL", &c.Shop.StatusInterval)
	dur("SHOP_CHAT_REPLY_DELAY", &c.Shop.ChatReplyDelay)
	if v, ok := lookup(envPrefix + "SHOP_NODE_ID"); ok {
		n, err := cast.ToInt64E(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sSHOP_NODE_ID: %w", envPrefix, err))
		} else {
			c.Shop.NodeID = n
		}
	}
	str("SHOP_QR_BASE_URL", &c.Shop.QRBaseURL)
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
