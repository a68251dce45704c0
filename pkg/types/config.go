package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds a single request attempt (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "crime-extract/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// AIConfig holds settings for calling the hosted language model.
type AIConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the OpenAI-compatible API root (default DeepSeek).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Model is the model identifier (e.g. "deepseek-chat").
	Model string `json:"model" yaml:"model"`

	// APIKey is the bearer credential. Empty means regex-only mode.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// Temperature is the sampling temperature (default 0.1).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxRetries is the number of LLM attempts per record before falling
	// back to pattern matching (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RetryDelay is the base delay between attempts; it doubles after each
	// failed attempt (default 1s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`

	// RequestsPerMinute paces remote calls. Zero disables pacing.
	RequestsPerMinute float64 `json:"requests_per_minute" yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// InputConfig names the tabular input and its required columns.
type InputConfig struct {
	// File is the .csv or .xlsx narrative file (default input/crime_data.xlsx).
	File string `json:"file" yaml:"file"`

	// CrimeCodesFile is the two-column code→description CSV (default input/crime_codes.csv).
	CrimeCodesFile string `json:"crime_codes_file" yaml:"crime_codes_file" mapstructure:"crime_codes_file"`

	// CrimeCodeColumn is the header of the crime code column (default "crime_code").
	CrimeCodeColumn string `json:"crime_code_column" yaml:"crime_code_column" mapstructure:"crime_code_column"`

	// NarrativeColumn is the header of the narrative column (default "narrative").
	NarrativeColumn string `json:"narrative_column" yaml:"narrative_column" mapstructure:"narrative_column"`
}

// OutputConfig controls the written artifact.
type OutputConfig struct {
	// File is the output path; its extension selects the format
	// (.xlsx, .csv, .json, .yaml, .yml, .db, .sqlite).
	File string `json:"file" yaml:"file"`

	// CSVCopy also writes a sibling .csv when File is .xlsx (default true).
	CSVCopy bool `json:"csv_copy" yaml:"csv_copy" mapstructure:"csv_copy"`
}

// LogConfig selects the zap logger level and encoder.
type LogConfig struct {
	// Level is debug, info, warn, or error (default info).
	Level string `json:"level" yaml:"level"`

	// Format is console or json (default console).
	Format string `json:"format" yaml:"format"`
}

// EntryRule pairs an entry-method label with the regular expression that
// selects it. A configured list replaces the built-in catalog.
type EntryRule struct {
	Label string `json:"label" yaml:"label"`
	Regex string `json:"regex" yaml:"regex"`
}

// ExtractionConfig groups all settings for an extraction run.
type ExtractionConfig struct {
	AI     AIConfig     `json:"ai" yaml:"ai"`
	Input  InputConfig  `json:"input" yaml:"input"`
	Output OutputConfig `json:"output" yaml:"output"`
	Log    LogConfig    `json:"log" yaml:"log"`

	// RegexOnly disables the remote path even when a credential is present.
	RegexOnly bool `json:"regex_only" yaml:"regex_only" mapstructure:"regex_only"`

	// StickyAuthFailure skips the remote path for the rest of the run after
	// the first authentication failure (default true).
	StickyAuthFailure bool `json:"sticky_auth_failure" yaml:"sticky_auth_failure" mapstructure:"sticky_auth_failure"`

	// EntryRules overrides the entry-method catalog, in priority order.
	EntryRules []EntryRule `json:"entry_rules,omitempty" yaml:"entry_rules,omitempty" mapstructure:"entry_rules"`
}

// Default values applied by Defaults.
const (
	DefaultBaseURL         = "https://api.deepseek.com/v1/"
	DefaultModel           = "deepseek-chat"
	DefaultTemperature     = 0.1
	DefaultMaxRetries      = 3
	DefaultRetryDelay      = time.Second
	DefaultTimeout         = 30 * time.Second
	DefaultUserAgent       = "crime-extract/0.1"
	DefaultInputFile       = "input/crime_data.xlsx"
	DefaultOutputFile      = "output/crime_data_extracted.xlsx"
	DefaultCrimeCodesFile  = "input/crime_codes.csv"
	DefaultCrimeCodeColumn = "crime_code"
	DefaultNarrativeColumn = "narrative"
)

// Defaults returns a configuration with every default filled in.
func Defaults() ExtractionConfig {
	return ExtractionConfig{
		AI: AIConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   DefaultTimeout,
				UserAgent: DefaultUserAgent,
			},
			BaseURL:     DefaultBaseURL,
			Model:       DefaultModel,
			Temperature: DefaultTemperature,
			MaxRetries:  DefaultMaxRetries,
			RetryDelay:  DefaultRetryDelay,
		},
		Input: InputConfig{
			File:            DefaultInputFile,
			CrimeCodesFile:  DefaultCrimeCodesFile,
			CrimeCodeColumn: DefaultCrimeCodeColumn,
			NarrativeColumn: DefaultNarrativeColumn,
		},
		Output: OutputConfig{
			File:    DefaultOutputFile,
			CSVCopy: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		StickyAuthFailure: true,
	}
}
