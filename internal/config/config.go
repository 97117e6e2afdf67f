package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/smazurov/camoufox-launcher/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every env tag.
const EnvPrefix = "CAMOUFOX_LAUNCHER_"

// SettingsField names the options field holding the TOML settings path.
const SettingsField = "Settings"

var durationType = reflect.TypeOf(time.Duration(0))

// LoadConfig loads configuration with proper precedence: CLI args > env vars > settings file.
// If cmd is provided, flags explicitly set via CLI will not be overwritten.
// A missing settings file is not an error; a malformed one, or an env value
// that does not parse, is.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	// Build set of flags explicitly changed via CLI
	changedFlags := make(map[string]bool)
	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				changedFlags[f.Name] = true
			}
		})
	}

	var settingsPath string
	if field := v.FieldByName(SettingsField); field.IsValid() && field.Kind() == reflect.String {
		settingsPath = field.String()
	}

	if settingsPath != "" {
		config, err := readSettings(settingsPath)
		if err != nil {
			return err
		}

		for i := 0; i < v.NumField(); i++ {
			field := v.Field(i)
			fieldType := t.Field(i)

			if changedFlags[fieldNameToFlag(fieldType.Name)] {
				continue
			}

			if tomlPath := fieldType.Tag.Get("toml"); tomlPath != "" {
				if value := getNestedValue(config, tomlPath); value != nil {
					if err := setFieldValue(field, value); err != nil {
						return fmt.Errorf("settings %s: %w", tomlPath, err)
					}
				}
			}
		}
	}

	// Apply environment variable overrides (skip CLI-set flags)
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if changedFlags[fieldNameToFlag(fieldType.Name)] {
			continue
		}

		if envKey := fieldType.Tag.Get("env"); envKey != "" {
			if envValue := os.Getenv(EnvPrefix + envKey); envValue != "" {
				if err := setFieldValueFromString(field, envValue); err != nil {
					return fmt.Errorf("%s%s: %w", EnvPrefix, envKey, err)
				}
			}
		}
	}

	return nil
}

// readSettings parses the TOML settings file. A missing file yields nil.
func readSettings(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	var config map[string]any
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse TOML settings: %w", err)
	}
	return config, nil
}

// fieldNameToFlag converts a struct field name to a CLI flag name.
// Example: "LoggingLevel" -> "logging-level", "GracePeriod" -> "grace-period".
func fieldNameToFlag(fieldName string) string {
	var result []rune
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '-')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}

// getNestedValue retrieves a value from nested map using dot notation.
func getNestedValue(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := data

	for i, part := range parts {
		if i == len(parts)-1 {
			return current[part]
		}
		if next, ok := current[part].(map[string]any); ok {
			current = next
		} else {
			return nil
		}
	}
	return nil
}

// setFieldValue sets a field from a decoded TOML value. Durations accept a
// string ("8s") or an integer number of seconds.
func setFieldValue(field reflect.Value, value any) error {
	if !field.CanSet() {
		return nil
	}

	if field.Type() == durationType {
		switch d := value.(type) {
		case string:
			parsed, err := time.ParseDuration(d)
			if err != nil {
				return err
			}
			field.SetInt(int64(parsed))
		case int64:
			field.SetInt(int64(time.Duration(d) * time.Second))
		case float64:
			field.SetInt(int64(d * float64(time.Second)))
		default:
			return fmt.Errorf("unsupported duration value %v", value)
		}
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int:
		if i, ok := value.(int64); ok {
			field.SetInt(i)
		} else if i, intOk := value.(int); intOk {
			field.SetInt(int64(i))
		}
	case reflect.Float64:
		switch f := value.(type) {
		case float64:
			field.SetFloat(f)
		case int64:
			field.SetFloat(float64(f))
		}
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			if arr, ok := value.([]any); ok {
				slice := make([]string, len(arr))
				for i, v := range arr {
					if s, strOk := v.(string); strOk {
						slice[i] = s
					}
				}
				field.Set(reflect.ValueOf(slice))
			}
		}
	}
	return nil
}

// setFieldValueFromString sets a field value from string (for env vars).
func setFieldValueFromString(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	if field.Type() == durationType {
		d, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Parse comma-separated values for env vars
			parts := strings.Split(value, ",")
			slice := make([]string, len(parts))
			for i, part := range parts {
				slice[i] = strings.TrimSpace(part)
			}
			field.Set(reflect.ValueOf(slice))
		}
	}
	return nil
}

// LoadLoggingModules reads per-module log levels from the [logging.modules]
// table of the settings file. Returns an empty map if the file doesn't exist
// or can't be parsed.
func LoadLoggingModules(settingsPath string) map[string]string {
	modules := make(map[string]string)
	if settingsPath == "" {
		return modules
	}

	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return modules
	}

	var raw struct {
		Logging struct {
			Modules map[string]string `toml:"modules"`
		} `toml:"logging"`
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return modules
	}

	for module, level := range raw.Logging.Modules {
		modules[module] = level
	}
	return modules
}

// LoggingConfig assembles the logging setup from resolved level and format
// plus the module overrides in the settings file.
func LoggingConfig(settingsPath, level, format string) logging.Config {
	cfg := logging.Config{
		Level:   "info",
		Format:  "text",
		Modules: LoadLoggingModules(settingsPath),
	}
	if level != "" {
		cfg.Level = level
	}
	if format != "" {
		cfg.Format = format
	}
	return cfg
}
