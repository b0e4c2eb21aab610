package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Valores por defecto del servicio de claves públicas.
const (
	DefaultKeysEndpoint        = "/api/security/v1/keys"
	DefaultKeysFetchParameters = "state=active&state=revoked&offset=0&limit=25"
	DefaultKeysCacheDuration   = "300s"
	DefaultKeysHTTPTimeout     = "10s"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env     string `yaml:"env"`
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`

	// Servicio de distribución de claves públicas.
	Keys struct {
		Host            string `yaml:"host"`
		Endpoint        string `yaml:"endpoint"`
		FetchParameters string `yaml:"fetch_parameters"`
		CacheDuration   string `yaml:"cache_duration"`
		HTTPTimeout     string `yaml:"http_timeout"`
	} `yaml:"keys"`

	// Snapshot de las claves conocidas (segundo nivel de la cache).
	Snapshot struct {
		// none | memory | redis
		Driver   string `yaml:"driver"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
		TTL      string `yaml:"ttl"`
	} `yaml:"snapshot"`

	Auth struct {
		// Si es false, los requests sin Authorization pasan sin claims.
		Mandatory bool `yaml:"mandatory"`
	} `yaml:"auth"`

	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load lee el YAML, aplica defaults y overrides de entorno.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// los bool que por defecto son true se setean antes del Unmarshal
	var c Config
	c.Auth.Mandatory = true
	c.Metrics.Enabled = true
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	c.applyEnvOverrides()
	return &c, nil
}

// Default devuelve una configuración sin archivo: defaults + entorno.
// La usa el CLI cuando no hay config.yaml.
func Default() *Config {
	c := &Config{}
	c.Auth.Mandatory = true
	c.Metrics.Enabled = true
	c.applyDefaults()
	c.applyEnvOverrides()
	return c
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.Name == "" {
		c.App.Name = "jwtvalidator"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Keys.Endpoint == "" {
		c.Keys.Endpoint = DefaultKeysEndpoint
	}
	if c.Keys.FetchParameters == "" {
		c.Keys.FetchParameters = DefaultKeysFetchParameters
	}
	if c.Keys.CacheDuration == "" {
		c.Keys.CacheDuration = DefaultKeysCacheDuration
	}
	if c.Keys.HTTPTimeout == "" {
		c.Keys.HTTPTimeout = DefaultKeysHTTPTimeout
	}
	if c.Snapshot.Driver == "" {
		c.Snapshot.Driver = "none"
	}
	if c.Snapshot.Port == 0 {
		c.Snapshot.Port = 6379
	}
	if c.Snapshot.Prefix == "" {
		c.Snapshot.Prefix = "jwtvalidator"
	}
	if c.Snapshot.TTL == "" {
		c.Snapshot.TTL = "24h"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.Log.Level = v
	}

	// KEYS
	if v, ok := getEnvStr("KEYS_HOST"); ok {
		c.Keys.Host = v
	}
	if v, ok := getEnvStr("KEYS_ENDPOINT"); ok {
		c.Keys.Endpoint = v
	}
	if v, ok := getEnvStr("KEYS_FETCH_PARAMETERS"); ok {
		c.Keys.FetchParameters = v
	}
	if v, ok := getEnvStr("KEYS_CACHE_DURATION"); ok {
		c.Keys.CacheDuration = v
	}
	if v, ok := getEnvStr("KEYS_HTTP_TIMEOUT"); ok {
		c.Keys.HTTPTimeout = v
	}

	// SNAPSHOT
	if v, ok := getEnvStr("SNAPSHOT_DRIVER"); ok {
		c.Snapshot.Driver = strings.ToLower(v)
	}
	if v, ok := getEnvStr("REDIS_HOST"); ok {
		c.Snapshot.Host = v
	}
	if v, ok := getEnvInt("REDIS_PORT"); ok {
		c.Snapshot.Port = v
	}
	if v, ok := getEnvStr("REDIS_PASSWORD"); ok {
		c.Snapshot.Password = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Snapshot.DB = v
	}
	if v, ok := getEnvStr("SNAPSHOT_PREFIX"); ok {
		c.Snapshot.Prefix = v
	}
	if v, ok := getEnvStr("SNAPSHOT_TTL"); ok {
		c.Snapshot.TTL = v
	}

	// AUTH / METRICS
	if v, ok := getEnvBool("AUTH_MANDATORY"); ok {
		c.Auth.Mandatory = v
	}
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
}

// Validate revisa los valores críticos. El host de claves solo es obligatorio
// para los comandos que verifican tokens, así que lo chequea RequireKeysHost.
func (c *Config) Validate() error {
	var errs []error
	if _, err := parseDuration("keys.cache_duration", c.Keys.CacheDuration); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDuration("keys.http_timeout", c.Keys.HTTPTimeout); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseDuration("snapshot.ttl", c.Snapshot.TTL); err != nil {
		errs = append(errs, err)
	}
	switch c.Snapshot.Driver {
	case "none", "memory":
	case "redis":
		if c.Snapshot.Host == "" {
			errs = append(errs, errors.New("snapshot.host is required when snapshot.driver is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("snapshot.driver: unknown driver %q", c.Snapshot.Driver))
	}
	if c.Keys.Host != "" {
		if u, err := url.Parse(c.Keys.Host); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("keys.host: invalid URL %q", c.Keys.Host))
		}
	}
	return errors.Join(errs...)
}

// RequireKeysHost falla si no se configuró el servicio de claves.
func (c *Config) RequireKeysHost() error {
	if strings.TrimSpace(c.Keys.Host) == "" {
		return errors.New("keys.host (KEYS_HOST) is required")
	}
	return nil
}

// CacheDuration devuelve keys.cache_duration; un número sin unidad son segundos.
func (c *Config) CacheDuration() time.Duration {
	d, _ := parseDuration("keys.cache_duration", c.Keys.CacheDuration)
	return d
}

func (c *Config) HTTPTimeout() time.Duration {
	d, _ := parseDuration("keys.http_timeout", c.Keys.HTTPTimeout)
	return d
}

func (c *Config) SnapshotTTL() time.Duration {
	d, _ := parseDuration("snapshot.ttl", c.Snapshot.TTL)
	return d
}

func parseDuration(field, s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%s: must not be negative", field)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}
