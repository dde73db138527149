// Package config loads service settings from the environment, with an optional .env
// file for local runs.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/aitechneut/autovandezaakofprive/internal/bijtelling"
	"github.com/aitechneut/autovandezaakofprive/internal/rules"
)

type Config struct {
	Port            string        `mapstructure:"PORT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	RDWBaseURL      string        `mapstructure:"RDW_BASE_URL"`
	RDWTimeout      time.Duration `mapstructure:"RDW_TIMEOUT"`
	RDWCacheTTL     time.Duration `mapstructure:"RDW_CACHE_TTL"`
	RulesFile       string        `mapstructure:"RULES_FILE"`
	EVCapStrategy   string        `mapstructure:"EV_CAP_STRATEGY"`
	ResidualRatio   float64       `mapstructure:"RESIDUAL_RATIO"`
	InflationRate   float64       `mapstructure:"INFLATION_RATE"`
	ProjectionYears int           `mapstructure:"PROJECTION_YEARS"`
	Bracket1Max     float64       `mapstructure:"TAX_BRACKET_1_MAX"`
	Bracket1Rate    float64       `mapstructure:"TAX_BRACKET_1_RATE"`
	Bracket2Max     float64       `mapstructure:"TAX_BRACKET_2_MAX"`
	Bracket2Rate    float64       `mapstructure:"TAX_BRACKET_2_RATE"`
	Bracket3Rate    float64       `mapstructure:"TAX_BRACKET_3_RATE"`
}

var keys = []string{
	"PORT", "LOG_LEVEL",
	"RDW_BASE_URL", "RDW_TIMEOUT", "RDW_CACHE_TTL",
	"RULES_FILE", "EV_CAP_STRATEGY",
	"RESIDUAL_RATIO", "INFLATION_RATE", "PROJECTION_YEARS",
	"TAX_BRACKET_1_MAX", "TAX_BRACKET_1_RATE",
	"TAX_BRACKET_2_MAX", "TAX_BRACKET_2_RATE",
	"TAX_BRACKET_3_RATE",
}

// LoadConfig reads configuration from environment variables. Values in a .env file
// in the working directory never override the real environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RDW_BASE_URL", "https://opendata.rdw.nl")
	viper.SetDefault("RDW_TIMEOUT", "10s")
	viper.SetDefault("RDW_CACHE_TTL", "1h")
	viper.SetDefault("EV_CAP_STRATEGY", string(bijtelling.CapBlend))
	viper.SetDefault("RESIDUAL_RATIO", 0.30)
	viper.SetDefault("INFLATION_RATE", 0.02)
	viper.SetDefault("PROJECTION_YEARS", 5)
	viper.SetDefault("TAX_BRACKET_1_MAX", 38441)
	viper.SetDefault("TAX_BRACKET_1_RATE", 36.97)
	viper.SetDefault("TAX_BRACKET_2_MAX", 76817)
	viper.SetDefault("TAX_BRACKET_2_RATE", 37.48)
	viper.SetDefault("TAX_BRACKET_3_RATE", 49.50)
	viper.AutomaticEnv()

	for _, k := range keys {
		_ = viper.BindEnv(k)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) validate() error {
	if _, err := bijtelling.ParseCapStrategy(c.EVCapStrategy); err != nil {
		return fmt.Errorf("EV_CAP_STRATEGY: %w", err)
	}
	if c.ResidualRatio < 0 || c.ResidualRatio >= 1 {
		return fmt.Errorf("RESIDUAL_RATIO must be in [0,1), got %g", c.ResidualRatio)
	}
	if c.ProjectionYears < 0 {
		return fmt.Errorf("PROJECTION_YEARS must not be negative, got %d", c.ProjectionYears)
	}
	if err := rules.ValidateBrackets(c.TaxBrackets()); err != nil {
		return fmt.Errorf("TAX_BRACKET_*: %w", err)
	}
	return nil
}

func (c *Config) CapStrategy() bijtelling.CapStrategy {
	s, _ := bijtelling.ParseCapStrategy(c.EVCapStrategy)
	return s
}

// TaxBrackets returns the three configured income tax brackets, lowest first.
func (c *Config) TaxBrackets() []rules.Bracket {
	b1, b2 := c.Bracket1Max, c.Bracket2Max
	return []rules.Bracket{
		{Max: &b1, Rate: c.Bracket1Rate},
		{Max: &b2, Rate: c.Bracket2Rate},
		{Rate: c.Bracket3Rate},
	}
}
