// Package config loads the runtime configuration of a handheld station.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/handheld/pkg/dispatch"
	"github.com/aretw0/handheld/pkg/domain"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Journal drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverRedis  = "redis"
)

// Template sources.
const (
	TemplateSourceFile    = "file"
	TemplateSourceBackend = "backend"
)

// Duration is a time.Duration written as a string ("30s") in config files.
type Duration time.Duration

// D returns the duration value.
func (d Duration) D() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) { return time.Duration(d).String(), nil }

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.parse(node.Value)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	if s == "" {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config is the full station configuration.
type Config struct {
	Station  string             `yaml:"station" json:"station"`
	Backend  Backend            `yaml:"backend" json:"backend"`
	Server   Server             `yaml:"server" json:"server"`
	Log      Log                `yaml:"log" json:"log"`
	Sync     Sync               `yaml:"sync" json:"sync"`
	UI       UI                 `yaml:"ui" json:"ui"`
	Screen   Screen             `yaml:"screen" json:"screen"`
	Report   Report             `yaml:"report" json:"report"`
	Journal  Journal            `yaml:"journal" json:"journal"`
	Controls []dispatch.Control `yaml:"controls,omitempty" json:"controls,omitempty"`
}

type Backend struct {
	URL     string   `yaml:"url" json:"url"`
	Timeout Duration `yaml:"timeout" json:"timeout"`
}

type Server struct {
	Addr string `yaml:"addr" json:"addr"`
}

type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type Sync struct {
	InitialState string `yaml:"initial_state" json:"initial_state"`
}

type UI struct {
	Document     string            `yaml:"document" json:"document"`
	InitialState string            `yaml:"initial_state" json:"initial_state"`
	ResetTexts   map[string]string `yaml:"reset_texts,omitempty" json:"reset_texts,omitempty"`
}

type Screen struct {
	Source string `yaml:"source" json:"source"`
}

type Report struct {
	Template       string `yaml:"template" json:"template"`
	TemplateSource string `yaml:"template_source" json:"template_source"`
	InitialPage    bool   `yaml:"initial_page" json:"initial_page"`
	DeleteEndpoint string `yaml:"delete_endpoint" json:"delete_endpoint"`
}

type Journal struct {
	Driver  string `yaml:"driver" json:"driver"`
	Path    string `yaml:"path" json:"path"`
	Restore bool   `yaml:"restore" json:"restore"`

	// EncryptionKey is a base64 AES-256 key; empty disables encryption.
	EncryptionKey string   `yaml:"encryption_key,omitempty" json:"encryption_key,omitempty"`
	FallbackKeys  []string `yaml:"fallback_keys,omitempty" json:"fallback_keys,omitempty"`
	// Mask lists regular expressions of keys masked before journaling.
	Mask []string `yaml:"mask,omitempty" json:"mask,omitempty"`

	Redis Redis `yaml:"redis" json:"redis"`
}

type Redis struct {
	Addr     string   `yaml:"addr" json:"addr"`
	Password string   `yaml:"password,omitempty" json:"password,omitempty"`
	DB       int      `yaml:"db" json:"db"`
	Prefix   string   `yaml:"prefix" json:"prefix"`
	TTL      Duration `yaml:"ttl" json:"ttl"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Station: "station-1",
		Backend: Backend{URL: "http://localhost:5000", Timeout: Duration(30 * time.Second)},
		Server:  Server{Addr: ":8080"},
		Log:     Log{Level: "info", Format: "text"},
		Sync:    Sync{InitialState: domain.DefaultInitialState},
		UI:      UI{Document: "static/index.html", InitialState: "standby_state"},
		Screen:  Screen{Source: "/video_feed"},
		Report: Report{
			Template:       "static/report.html",
			TemplateSource: TemplateSourceFile,
			DeleteEndpoint: domain.DefaultDeleteEndpoint,
		},
		Journal: Journal{
			Driver: DriverNone,
			Path:   filepath.Join(".handheld", "journal"),
			Redis:  Redis{Addr: "localhost:6379", Prefix: "handheld:journal:"},
		},
	}
}

// Load reads path from fs over the defaults. The format follows the
// extension: .json is JSON, anything else YAML.
func Load(fs afero.Fs, path string) (*Config, error) {
	cfg := Default()
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, cfg)
	default:
		err = yaml.Unmarshal(raw, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Station == "" {
		errs = append(errs, errors.New("station is required"))
	}
	if u, err := url.Parse(c.Backend.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.url %q is not an absolute URL", c.Backend.URL))
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, errors.New("backend.timeout must not be negative"))
	}
	switch c.Report.TemplateSource {
	case TemplateSourceFile, TemplateSourceBackend:
	default:
		errs = append(errs, fmt.Errorf("report.template_source %q must be %q or %q",
			c.Report.TemplateSource, TemplateSourceFile, TemplateSourceBackend))
	}
	switch c.Journal.Driver {
	case DriverNone, DriverMemory:
	case DriverFile:
		if c.Journal.Path == "" {
			errs = append(errs, errors.New("journal.path is required for the file driver"))
		}
	case DriverRedis:
		if c.Journal.Redis.Addr == "" {
			errs = append(errs, errors.New("journal.redis.addr is required for the redis driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown journal.driver %q", c.Journal.Driver))
	}
	seen := make(map[string]bool)
	for i, ctl := range c.Controls {
		if ctl.ID == "" || ctl.Action == "" {
			errs = append(errs, fmt.Errorf("controls[%d] needs an id and an action", i))
		}
		if seen[ctl.ID] {
			errs = append(errs, fmt.Errorf("controls[%d] duplicates id %q", i, ctl.ID))
		}
		seen[ctl.ID] = true
	}
	return errors.Join(errs...)
}
