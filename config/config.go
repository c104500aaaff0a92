package config

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyDefaultsOwner      = "defaults.owner"
	KeyDefaultsCurrency   = "defaults.currency"
	KeyDefaultsHourlyRate = "defaults.hourly_rate"
	KeyReportWindowDays   = "report.window_days"
	KeyRates              = "rates"
)

type Config struct {
	Defaults DefaultsConfig `mapstructure:"defaults" validate:"required"`
	Report   ReportConfig   `mapstructure:"report"`
	Rates    []RateRule     `mapstructure:"rates"`
}

type DefaultsConfig struct {
	Owner      string  `mapstructure:"owner" validate:"required"`
	Currency   string  `mapstructure:"currency" validate:"required,len=3,alpha"`
	HourlyRate float64 `mapstructure:"hourly_rate" validate:"gte=0"`
}

type ReportConfig struct {
	WindowDays int `mapstructure:"window_days" validate:"gte=1,lte=31"`
}

// RateRule maps a project name to the hourly rate applied when a timer is
// started or an entry is logged without an explicit rate.
type RateRule struct {
	Project    string  `mapstructure:"project"`
	HourlyRate float64 `mapstructure:"hourly_rate"`
}

// SetDefaults sets default values if not provided
func SetDefaults() {
	setDefaults(viper.GetViper())
}

// LoadAndValidate loads config from Viper and validates it
func LoadAndValidate() (*Config, error) {
	return loadAndValidateFromViper(viper.GetViper())
}

// ValidateYAMLContent validates configuration from raw YAML content.
func ValidateYAMLContent(content []byte) (*Config, error) {
	local := viper.New()
	setDefaults(local)
	local.SetConfigType("yaml")
	if err := local.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(local)
}

// ExampleYAML returns the default configuration template.
func ExampleYAML() string {
	return `# hourbook configuration
defaults:
  owner: "me"
  currency: "USD"
  hourly_rate: 0

report:
  window_days: 7

rates: []
# rates:
#   - project: "Acme Website"
#     hourly_rate: 120
`
}

// RateForProject resolves the hourly rate for a project: the first
// matching rate rule wins (case-insensitive), otherwise the configured
// default applies.
func (c *Config) RateForProject(project string) float64 {
	for _, rule := range c.Rates {
		if strings.EqualFold(strings.TrimSpace(rule.Project), strings.TrimSpace(project)) {
			return rule.HourlyRate
		}
	}
	return c.Defaults.HourlyRate
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateRates(cfg.Rates); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDefaultsOwner, "me")
	v.SetDefault(KeyDefaultsCurrency, "USD")
	v.SetDefault(KeyDefaultsHourlyRate, 0.0)
	v.SetDefault(KeyReportWindowDays, 7)
	v.SetDefault(KeyRates, []map[string]any{})
}

func validateRates(rates []RateRule) error {
	seen := make(map[string]struct{}, len(rates))
	for i, rule := range rates {
		project := strings.TrimSpace(rule.Project)
		if project == "" {
			return fmt.Errorf("validation failed: rates[%d].project is required", i)
		}
		key := strings.ToLower(project)
		if _, exists := seen[key]; exists {
			return fmt.Errorf("validation failed: duplicate rate rule for project %q", project)
		}
		seen[key] = struct{}{}
		if rule.HourlyRate < 0 {
			return fmt.Errorf("validation failed: rates[%d].hourly_rate must be >= 0", i)
		}
	}
	return nil
}
