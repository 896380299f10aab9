// Package config loads arxiv2md settings from flags, ARXIV2MD_* environment
// variables and an optional .arxiv2md.yaml file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable.
const EnvPrefix = "ARXIV2MD"

// Config holds the settings of one run.
type Config struct {
	OutputDir     string        `mapstructure:"output_dir"`
	Format        string        `mapstructure:"format" validate:"oneof=markdown json pdf"`
	Frontmatter   bool          `mapstructure:"frontmatter"`
	ChunkSize     int           `mapstructure:"chunk_size" validate:"min=0"`
	MaxNameLength int           `mapstructure:"max_name_length" validate:"min=8,max=255"`
	Workers       int           `mapstructure:"workers" validate:"min=1,max=32"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
	UserAgent     string        `mapstructure:"user_agent" validate:"required"`
	BaseURL       string        `mapstructure:"base_url" validate:"required,url"`
	Debug         bool          `mapstructure:"debug"`
	Quiet         bool          `mapstructure:"quiet"`
	LogJSON       bool          `mapstructure:"log_json"`
}

// Defaults are the values used when nothing else sets a key.
var Defaults = map[string]any{
	"output_dir":      "",
	"format":          "markdown",
	"frontmatter":     false,
	"chunk_size":      0,
	"max_name_length": 80,
	"workers":         4,
	"timeout":         "30s",
	"user_agent":      "Mozilla/5.0 (compatible; arxiv2md/1.0; +https://github.com/gaurav-prasanna/arxiv2md)",
	"base_url":        "https://arxiv.org/html/",
	"debug":           false,
	"quiet":           false,
	"log_json":        false,
}

// Setup registers defaults and environment lookup on v.
func Setup(v *viper.Viper) {
	for k, val := range Defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate names fields by their config keys.
var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
	})
	return v
}()

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, e.Field()+" "+formatValidationError(e))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
