package cmd

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/spigell/edumatch/internal/portal"
)

type Config struct {
	Store     *StoreConfig         `mapstructure:"store"`
	Candidate *CandidateConfig     `mapstructure:"candidate"`
	Search    *portal.SearchParams `mapstructure:"search"`
	Filter    *FilterConfig        `mapstructure:"filter"`
	Apply     *ApplyConfig         `mapstructure:"apply"`
	AI        *AIConfig            `mapstructure:"ai"`
	Server    *ServerConfig        `mapstructure:"server"`
}

type StoreConfig struct {
	URL       string        `mapstructure:"url" validate:"required,url"`
	TokenFile string        `mapstructure:"token-file"`
	UserAgent string        `mapstructure:"user-agent"`
	Timeout   time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

type CandidateConfig struct {
	ID   string `mapstructure:"id" validate:"required"`
	Role string `mapstructure:"role" validate:"required,oneof=course job"`
}

type FilterConfig struct {
	Strict              bool     `mapstructure:"strict"`
	Search              string   `mapstructure:"search"`
	Sort                string   `mapstructure:"sort" validate:"omitempty,oneof=title provider newest eligibility"`
	Limit               int      `mapstructure:"limit" validate:"gte=0"`
	Workers             int      `mapstructure:"workers" validate:"gte=0"`
	ExcludeFile         string   `mapstructure:"exclude-file"`
	DoNotExcludeApplied bool     `mapstructure:"do-not-exclude-applied"`
	ExcludeProviders    []string `mapstructure:"exclude-providers"`
	KeepClosed          bool     `mapstructure:"keep-closed"`
}

type ApplyConfig struct {
	Message string `mapstructure:"message"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini" validate:"required_if=Enabled true"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen" validate:"omitempty,hostname_port"`
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	if config.Filter == nil {
		config.Filter = &FilterConfig{}
	}

	if config.Apply == nil {
		config.Apply = &ApplyConfig{}
	}

	return config, validateConfig(config)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their config keys.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// validateConfig reports every invalid field, one line each.
func validateConfig(config *Config) error {
	err := newValidator().Struct(config)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed on '%s=%s'", key, fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s: failed on '%s'", key, fe.Tag()))
	}

	return fmt.Errorf("invalid config:\n%s", strings.Join(msgs, "\n"))
}
