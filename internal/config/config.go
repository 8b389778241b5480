package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/LefterisXris/brew-bean-app/internal/coffee"
)

// EnvConfigFile names an optional YAML file applied before the environment.
const EnvConfigFile = "BREWBEAN_CONFIG"

type Config struct {
	Port            string        `yaml:"port" validate:"required,numeric"`
	CoffeeAPIURL    string        `yaml:"coffeeApiUrl" validate:"required,url"`
	UpstreamTimeout time.Duration `yaml:"upstreamTimeout" validate:"gt=0"`

	CORSAllowOrigins []string `yaml:"corsAllowOrigins" validate:"min=1"`

	// Empty disables order-placed events.
	RabbitMQURL string `yaml:"rabbitmqUrl" validate:"omitempty,url"`

	Payment            PaymentConfig `yaml:"payment"`
	CheckoutResetDelay time.Duration `yaml:"checkoutResetDelay" validate:"gt=0"`

	DevAPIPort string `yaml:"devApiPort" validate:"required,numeric"`

	LogLevel  string `yaml:"logLevel" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"logFormat" validate:"oneof=text json"`
}

type PaymentConfig struct {
	FailureRate float64                  `yaml:"failureRate" validate:"gte=0,lte=1"`
	Latency     map[string]time.Duration `yaml:"latency" validate:"dive,keys,oneof=cash credit-card google-pay apple-pay,endkeys,gte=0"`
}

var validate = validator.New()

func Default() Config {
	return Config{
		Port:             "8080",
		CoffeeAPIURL:     "http://localhost:3000",
		UpstreamTimeout:  10 * time.Second,
		CORSAllowOrigins: []string{"*"},
		Payment: PaymentConfig{
			FailureRate: 0.05,
			Latency: map[string]time.Duration{
				string(coffee.PaymentCash):       500 * time.Millisecond,
				string(coffee.PaymentCreditCard): 2 * time.Second,
				string(coffee.PaymentGooglePay):  time.Second,
				string(coffee.PaymentApplePay):   time.Second,
			},
		},
		CheckoutResetDelay: 3 * time.Second,
		DevAPIPort:         "3000",
		LogLevel:           "info",
		LogFormat:          "text",
	}
}

// Load layers the optional config file and then the environment over the
// defaults. Unparsable environment values keep the previous value.
func Load() (Config, error) {
	cfg := Default()

	if path := strings.TrimSpace(os.Getenv(EnvConfigFile)); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Latencies returns the payment latency table keyed by method.
func (c Config) Latencies() map[coffee.PaymentMethod]time.Duration {
	out := make(map[coffee.PaymentMethod]time.Duration, len(c.Payment.Latency))
	for k, v := range c.Payment.Latency {
		out[coffee.PaymentMethod(k)] = v
	}
	return out
}

func (c *Config) mergeFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	// Latency entries merge per method rather than replacing the table.
	latency := c.Payment.Latency
	c.Payment.Latency = nil
	if err := yaml.Unmarshal(raw, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	for k, v := range c.Payment.Latency {
		latency[k] = v
	}
	c.Payment.Latency = latency
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getenv("PORT", c.Port)
	c.CoffeeAPIURL = getenv("COFFEE_API_URL", c.CoffeeAPIURL)
	c.UpstreamTimeout = parseDuration(getenv("UPSTREAM_TIMEOUT", ""), c.UpstreamTimeout)
	if v := getenv("CORS_ALLOW_ORIGINS", ""); v != "" {
		c.CORSAllowOrigins = splitCSV(v)
	}
	c.RabbitMQURL = getenv("RABBITMQ_URL", c.RabbitMQURL)

	c.Payment.FailureRate = parseFloat(getenv("PAYMENT_FAILURE_RATE", ""), c.Payment.FailureRate)
	for _, m := range coffee.PaymentMethods() {
		key := "PAYMENT_LATENCY_" + strings.ToUpper(strings.ReplaceAll(string(m), "-", "_"))
		c.Payment.Latency[string(m)] = parseDuration(getenv(key, ""), c.Payment.Latency[string(m)])
	}
	c.CheckoutResetDelay = parseDuration(getenv("CHECKOUT_RESET_DELAY", ""), c.CheckoutResetDelay)

	c.DevAPIPort = getenv("DEV_API_PORT", c.DevAPIPort)
	c.LogLevel = strings.ToLower(getenv("LOG_LEVEL", c.LogLevel))
	c.LogFormat = strings.ToLower(getenv("LOG_FORMAT", c.LogFormat))
}

func getenv(k, def string) string {
	if v := os.Getenv(k); strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func parseDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func parseFloat(v string, def float64) float64 {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}
