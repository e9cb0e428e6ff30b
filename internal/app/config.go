package app

import (
	"net"
	"os"
	"strings"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/product-composite/internal/integration"
)

const defaultAddr = "0.0.0.0:7000"

// Backend modes.
const (
	ModeHTTP      = "http"
	ModeInProcess = "inprocess"
)

// Config holds the complete application configuration, loadable from
// environment variables (COMPOSITE_ prefix), flags, or YAML config files.
type Config struct {
	Addr           string `default:"0.0.0.0:7000" usage:"Listen address"`
	ServiceAddress string `usage:"host:port reported as the composite service address (default: hostname and listen port)" flag:"service-address"`
	Backends       BackendsConfig
	Health         HealthConfig
	RateLimit      RateLimitConfig
	Graceful       GracefulConfig
}

// BackendsConfig selects and configures the product, recommendation and
// review backends.
type BackendsConfig struct {
	Mode           string `default:"http" usage:"Backend implementation: http or inprocess"`
	Product        BackendConfig
	Recommendation BackendConfig
	Review         BackendConfig
}

// BackendConfig configures one HTTP backend.
type BackendConfig struct {
	URL        string        `usage:"Base URL, e.g. http://product:80"`
	Timeout    time.Duration `default:"3s" usage:"Per-call timeout"`
	HealthPath string        `default:"/actuator/health" usage:"Path probed by the readiness check"`
}

// HealthConfig controls background health checks.
type HealthConfig struct {
	Interval time.Duration `default:"10s" usage:"Interval between health checks"`
	Timeout  time.Duration `default:"2s" usage:"Timeout of a single health check"`
}

// RateLimitConfig controls the per-client fixed-window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"300" usage:"Max requests per window, 0 disables limiting"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and flags, then applies platform defaults and validates it.
func LoadConfig() (*Config, error) {
	return loadConfig(aconfig.Config{
		EnvPrefix: "COMPOSITE",
		Files:     []string{"config.yaml", "/etc/composite/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
}

func loadConfig(acfg aconfig.Config) (*Config, error) {
	var cfg Config
	if err := aconfig.LoaderFor(&cfg, acfg).Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "validate config")
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the platform PORT variable onto Addr and derives
// ServiceAddress when it is not configured.
func (c *Config) applyPlatformDefaults() {
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
	if c.ServiceAddress == "" {
		c.ServiceAddress = serviceAddress(c.Addr)
	}
}

func serviceAddress(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	if name, err := os.Hostname(); err == nil && name != "" {
		host = name
	}
	return net.JoinHostPort(host, port)
}

func (c *Config) validate() error {
	c.Backends.Mode = strings.ToLower(strings.TrimSpace(c.Backends.Mode))
	switch c.Backends.Mode {
	case ModeInProcess:
		return nil
	case ModeHTTP:
	default:
		return errors.Errorf("unknown backends mode %q", c.Backends.Mode)
	}

	for _, b := range []struct {
		name string
		cfg  *BackendConfig
	}{
		{"product", &c.Backends.Product},
		{"recommendation", &c.Backends.Recommendation},
		{"review", &c.Backends.Review},
	} {
		if b.cfg.URL == "" {
			b.cfg.URL = "http://" + b.name + ":80"
		}
		u, err := integration.ParseBaseURL(b.cfg.URL)
		if err != nil {
			return errors.Wrapf(err, "%s backend", b.name)
		}
		b.cfg.URL = u

		if b.cfg.Timeout <= 0 {
			return errors.Errorf("%s backend: timeout must be positive", b.name)
		}
	}
	return nil
}
