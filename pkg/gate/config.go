package gate

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nostalgicskinco/plan-budget-gate/pkg/cost"
	"github.com/nostalgicskinco/plan-budget-gate/pkg/vault"
)

const (
	DefaultBudgetDay   = 50
	DefaultBudgetWeek  = 200
	DefaultVaultBucket = "budget-reports"
)

var ErrInvalidBudget = errors.New("gate: invalid budget")

// Config holds budgets, the cost model and the optional report sinks.
type Config struct {
	Budgets BudgetConfig     `yaml:"budgets"`
	Costs   cost.ModelConfig `yaml:"costs"`
	Alerts  AlertConfig      `yaml:"alerts"`
	Reports ReportConfig     `yaml:"reports"`
	Vault   vault.Config     `yaml:"vault"`
}

// BudgetConfig sets the point allowance per period.
type BudgetConfig struct {
	Day  int `yaml:"day"`
	Week int `yaml:"week"`
}

// AlertConfig controls where over-budget alerts are sent.
type AlertConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// ReportConfig controls where reports are written and how they are signed.
type ReportConfig struct {
	Dir    string `yaml:"dir"`
	Secret string `yaml:"secret"`
}

// DefaultConfig returns the built-in budgets and cost model.
func DefaultConfig() *Config {
	return &Config{
		Budgets: BudgetConfig{Day: DefaultBudgetDay, Week: DefaultBudgetWeek},
		Costs:   cost.DefaultModelConfig(),
	}
}

// LoadConfig reads a YAML config file over the defaults. An empty path
// returns the defaults. Keys absent from the file keep their default, and
// weight entries are merged into the built-in table.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gate: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("gate: parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides the config from environment variables. getenv is
// usually os.Getenv; empty values are treated as unset.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	var err error
	if c.Budgets.Day, err = envInt(getenv, "BUDGET_DAY", c.Budgets.Day); err != nil {
		return err
	}
	if c.Budgets.Week, err = envInt(getenv, "BUDGET_WEEK", c.Budgets.Week); err != nil {
		return err
	}

	c.Alerts.WebhookURL = envOr(getenv, "ALERT_WEBHOOK_URL", c.Alerts.WebhookURL)
	c.Reports.Dir = envOr(getenv, "REPORTS_DIR", c.Reports.Dir)
	c.Reports.Secret = envOr(getenv, "REPORT_SECRET", c.Reports.Secret)

	c.Vault.Endpoint = envOr(getenv, "VAULT_ENDPOINT", c.Vault.Endpoint)
	c.Vault.AccessKey = envOr(getenv, "VAULT_ACCESS_KEY", c.Vault.AccessKey)
	c.Vault.SecretKey = envOr(getenv, "VAULT_SECRET_KEY", c.Vault.SecretKey)
	c.Vault.Bucket = envOr(getenv, "VAULT_BUCKET", c.Vault.Bucket)
	if v := getenv("VAULT_USE_SSL"); v != "" {
		c.Vault.UseSSL = v == "true"
	}
	if c.Vault.Endpoint != "" {
		if c.Vault.AccessKey == "" {
			c.Vault.AccessKey = "minioadmin"
		}
		if c.Vault.SecretKey == "" {
			c.Vault.SecretKey = "minioadmin"
		}
		if c.Vault.Bucket == "" {
			c.Vault.Bucket = DefaultVaultBucket
		}
	}

	return c.validate()
}

func (c *Config) validate() error {
	if c.Budgets.Day < 0 {
		return fmt.Errorf("%w: day budget %d is negative", ErrInvalidBudget, c.Budgets.Day)
	}
	if c.Budgets.Week < 0 {
		return fmt.Errorf("%w: week budget %d is negative", ErrInvalidBudget, c.Budgets.Week)
	}
	return nil
}

func envInt(getenv func(string) string, key string, fallback int) (int, error) {
	v := getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidBudget, key, v)
	}
	return n, nil
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
