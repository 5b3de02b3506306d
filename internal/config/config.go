package config

import (
	"bufio"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config keys.
const (
	KeyProfile   = "profile"
	KeyOutputDir = "output-dir"
	KeyProvider  = "provider"
	KeyModel     = "model"
	KeyLogLevel  = "log-level"
)

// Keys lists every recognized config key in display order.
var Keys = []string{KeyProfile, KeyOutputDir, KeyProvider, KeyModel, KeyLogLevel}

// IsKnownKey reports whether key is a recognized config key.
func IsKnownKey(key string) bool {
	return slices.Contains(Keys, key)
}

// EnvVars maps each config key to its environment variable fallback.
var EnvVars = map[string]string{
	KeyProfile:   "SKITFIT_PROFILE",
	KeyOutputDir: "SKITFIT_OUTPUT_DIR",
	KeyProvider:  "SKITFIT_PROVIDER",
	KeyModel:     "SKITFIT_MODEL",
	KeyLogLevel:  "SKITFIT_LOG_LEVEL",
}

// Config holds user configuration loaded from ~/.config/skitfit/config.
type Config struct {
	Profile   string `env:"SKITFIT_PROFILE"`
	OutputDir string `env:"SKITFIT_OUTPUT_DIR"`
	Provider  string `env:"SKITFIT_PROVIDER"`
	Model     string `env:"SKITFIT_MODEL"`
	LogLevel  string `env:"SKITFIT_LOG_LEVEL"`
}

// dir returns the configuration directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/skitfit.
func dir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "skitfit"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "skitfit"), nil
}

// path returns the full path to the config file.
func path() (string, error) {
	d, err := dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "config"), nil
}

// Load reads the configuration file and environment variables.
// Precedence: config file values, then environment variable fallbacks.
// Returns a Config holding only env values if the file doesn't exist.
func Load() (Config, error) {
	fromEnv, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	_, data, err := read()
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	return Config{
		Profile:   firstNonEmpty(data[KeyProfile], fromEnv.Profile),
		OutputDir: firstNonEmpty(data[KeyOutputDir], fromEnv.OutputDir),
		Provider:  firstNonEmpty(data[KeyProvider], fromEnv.Provider),
		Model:     firstNonEmpty(data[KeyModel], fromEnv.Model),
		LogLevel:  firstNonEmpty(data[KeyLogLevel], fromEnv.LogLevel),
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// parseFile reads a key=value config file.
// Format: one key=value per line, # comments, empty lines ignored.
func parseFile(p string) (map[string]string, error) {
	f, err := os.Open(p) // #nosec G304 -- config path is constructed from home dir
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse key=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid syntax at line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		data[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return data, nil
}

// read returns the config file path and its parsed content.
// A missing file yields an empty map.
func read() (string, map[string]string, error) {
	p, err := path()
	if err != nil {
		return "", nil, err
	}
	data, err := parseFile(p)
	if os.IsNotExist(err) {
		return p, make(map[string]string), nil
	}
	if err != nil {
		return "", nil, err
	}
	return p, data, nil
}

// Save sets key to value, keeping the other keys. Comments are not kept.
func Save(key, value string) error {
	p, data, err := read()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0750); err != nil { // #nosec G301 -- user config dir
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data[key] = value
	return writeFile(p, data)
}

// writeFile replaces the config file with data, one sorted key per line.
// The content goes to a temp file renamed over p, so a failed write never
// leaves a truncated config.
func writeFile(p string, data map[string]string) error {
	var b strings.Builder
	for _, key := range slices.Sorted(maps.Keys(data)) {
		fmt.Fprintf(&b, "%s=%s\n", key, data[key])
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".config-*")
	if err != nil {
		return fmt.Errorf("cannot write config file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(b.String()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("cannot replace config file: %w", err)
	}
	return nil
}

// Get returns the value of key, or "" when unset.
func Get(key string) (string, error) {
	_, data, err := read()
	if err != nil {
		return "", err
	}
	return data[key], nil
}

// List returns every key set in the config file.
func List() (map[string]string, error) {
	_, data, err := read()
	return data, err
}

// ResolveOutputPath resolves the final output path using the following precedence:
//  1. If output is absolute, use it as-is
//  2. If output is relative and outputDir is set, join them
//  3. If output is empty, use defaultName in outputDir (or cwd if no outputDir)
//
// outputDir can come from config or flag.
// All paths are cleaned using filepath.Clean to normalize separators and remove redundant elements.
func ResolveOutputPath(output, outputDir, defaultName string) string {
	// Case 1: Explicit absolute path - use as-is.
	if output != "" && filepath.IsAbs(output) {
		return filepath.Clean(output)
	}

	// Case 2: Explicit relative path - combine with outputDir if set.
	if output != "" {
		if outputDir != "" {
			return filepath.Clean(filepath.Join(outputDir, output))
		}
		return filepath.Clean(output)
	}

	// Case 3: No output specified - use default name.
	if outputDir != "" {
		return filepath.Clean(filepath.Join(outputDir, defaultName))
	}
	return filepath.Clean(defaultName)
}

// EnsureOutputDir makes sure d exists, is a directory and is writable,
// creating it when missing. A leading ~/ is expanded.
func EnsureOutputDir(d string) error {
	if d == "" {
		return fmt.Errorf("output-dir cannot be empty")
	}
	d = ExpandPath(d)

	info, err := os.Stat(d)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access directory: %w", err)
		}
		if err := os.MkdirAll(d, 0750); err != nil { // #nosec G301 -- user output dir
			return fmt.Errorf("cannot create directory: %w", err)
		}
		return nil
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", d, ErrNotDirectory)
	}

	// Probe writability with a temp file.
	f, err := os.CreateTemp(d, ".skitfit-write-test-*")
	if err != nil {
		return fmt.Errorf("%s: %w", d, ErrNotWritable)
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)

	return nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(p string) string {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return p
		}
		return filepath.Join(home, p[2:])
	}
	return p
}
