// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the model API key. A key may come from the
// environment, the config file, a directory of plain-text key files, or a
// dotenv file. In the directory form each file is one secret: the filename is
// the key name and the trimmed file contents are the value.
//
// Supported key files: deepseek-api-key.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/subosito/gotenv"
)

const (
	// EnvAPIKey is the environment variable and dotenv key holding the credential.
	EnvAPIKey = "DEEPSEEK_API_KEY"

	// APIKeyFile is the file name looked up in the secrets directory.
	APIKeyFile = "deepseek-api-key"

	// Placeholder is the sample value shipped in example configs. It counts
	// as no key at all.
	Placeholder = "your-api-key-here"
)

// Origins reported by Resolve.
const (
	OriginEnv    = "env"
	OriginConfig = "config"
	OriginDir    = "secrets-dir"
	OriginDotEnv = "dotenv"
)

// IsPlaceholder reports whether v is the sample placeholder value.
func IsPlaceholder(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), Placeholder)
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotEnv parses a dotenv file without touching the process environment.
// A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	env, err := gotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading dotenv file %s: %w", path, err)
	}
	out := make(map[string]string, len(env))
	for k, v := range env {
		if v = strings.TrimSpace(v); v != "" {
			out[k] = v
		}
	}
	return out, nil
}

// Sources lists where Resolve looks for the API key, in priority order:
// Getenv(EnvAPIKey), ConfigValue, Dir/APIKeyFile, DotEnv.
type Sources struct {
	Getenv      func(string) string
	ConfigValue string
	Dir         string
	DotEnv      string
}

// Resolve returns the first usable key and where it came from. Empty and
// placeholder values are skipped. An empty key with a nil error means no
// credential is configured.
func Resolve(src Sources) (key, origin string, err error) {
	usable := func(v string) bool {
		v = strings.TrimSpace(v)
		return v != "" && !IsPlaceholder(v)
	}

	if src.Getenv != nil {
		if v := src.Getenv(EnvAPIKey); usable(v) {
			return strings.TrimSpace(v), OriginEnv, nil
		}
	}
	if usable(src.ConfigValue) {
		return strings.TrimSpace(src.ConfigValue), OriginConfig, nil
	}
	if src.Dir != "" {
		m, err := Load(src.Dir)
		if err != nil {
			return "", "", err
		}
		if v := m[APIKeyFile]; usable(v) {
			return v, OriginDir, nil
		}
	}
	if src.DotEnv != "" {
		m, err := LoadDotEnv(src.DotEnv)
		if err != nil {
			return "", "", err
		}
		if v := m[EnvAPIKey]; usable(v) {
			return v, OriginDotEnv, nil
		}
	}
	return "", "", nil
}
