package main

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/crime-extract/internal/logging"
	"github.com/pdiddy/crime-extract/internal/secrets"
	"github.com/pdiddy/crime-extract/pkg/types"
)

const (
	secretsDir = ".secrets"
	dotEnvFile = ".env"
)

// setDefaults registers every config key so AutomaticEnv can override it
// and Unmarshal sees it.
func setDefaults(v *viper.Viper) {
	d := types.Defaults()

	v.SetDefault("ai.timeout", d.AI.Timeout)
	v.SetDefault("ai.user_agent", d.AI.UserAgent)
	v.SetDefault("ai.base_url", d.AI.BaseURL)
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.temperature", d.AI.Temperature)
	v.SetDefault("ai.max_retries", d.AI.MaxRetries)
	v.SetDefault("ai.retry_delay", d.AI.RetryDelay)
	v.SetDefault("ai.requests_per_minute", d.AI.RequestsPerMinute)

	v.SetDefault("input.file", d.Input.File)
	v.SetDefault("input.crime_codes_file", d.Input.CrimeCodesFile)
	v.SetDefault("input.crime_code_column", d.Input.CrimeCodeColumn)
	v.SetDefault("input.narrative_column", d.Input.NarrativeColumn)

	v.SetDefault("output.file", d.Output.File)
	v.SetDefault("output.csv_copy", d.Output.CSVCopy)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("regex_only", d.RegexOnly)
	v.SetDefault("sticky_auth_failure", d.StickyAuthFailure)
}

// loadConfig decodes the merged flag, env, file and default values.
func loadConfig() (types.ExtractionConfig, error) {
	var c types.ExtractionConfig
	if err := viper.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decoding configuration: %w", err)
	}
	return c, nil
}

// resolveAPIKey fills c.AI.APIKey from the first source that has one. A
// missing key is not an error; the run falls back to pattern matching.
func resolveAPIKey(c *types.ExtractionConfig) error {
	key, origin, err := secrets.Resolve(secrets.Sources{
		Getenv:      os.Getenv,
		ConfigValue: c.AI.APIKey,
		Dir:         secretsDir,
		DotEnv:      dotEnvFile,
	})
	if err != nil {
		return err
	}
	c.AI.APIKey = key
	if key != "" {
		logger.Debug("loaded API key", zap.String("origin", origin), logging.RedactedString("api_key", key))
	}
	return nil
}
