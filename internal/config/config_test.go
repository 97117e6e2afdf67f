package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

// TestConfig represents a test configuration structure.
type TestConfig struct {
	Settings string `help:"Settings file path"`

	// Basic types
	StringField   string        `toml:"test.string_field" env:"STRING_FIELD"`
	BoolField     bool          `toml:"test.bool_field" env:"BOOL_FIELD"`
	IntField      int           `toml:"test.int_field" env:"INT_FIELD"`
	FloatField    float64       `toml:"test.float_field" env:"FLOAT_FIELD"`
	DurationField time.Duration `toml:"test.duration_field" env:"DURATION_FIELD"`
	SliceField    []string      `toml:"test.slice_field" env:"SLICE_FIELD"`

	// Nested config
	NestedString string `toml:"nested.value" env:"NESTED_VALUE"`
}

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "settings.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}
	return path
}

func TestLoadConfigFromTOML(t *testing.T) {
	path := writeSettings(t, `
[test]
string_field = "hello world"
bool_field = true
int_field = 42
float_field = 1.5
duration_field = "750ms"
slice_field = ["item1", "item2", "item3"]

[nested]
value = "nested value"
`)

	config := &TestConfig{Settings: path}
	if err := LoadConfig(config, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.StringField != "hello world" {
		t.Errorf("Expected StringField to be 'hello world', got '%s'", config.StringField)
	}
	if !config.BoolField {
		t.Errorf("Expected BoolField to be true, got %v", config.BoolField)
	}
	if config.IntField != 42 {
		t.Errorf("Expected IntField to be 42, got %d", config.IntField)
	}
	if config.FloatField != 1.5 {
		t.Errorf("Expected FloatField to be 1.5, got %v", config.FloatField)
	}
	if config.DurationField != 750*time.Millisecond {
		t.Errorf("Expected DurationField to be 750ms, got %v", config.DurationField)
	}
	expectedSlice := []string{"item1", "item2", "item3"}
	if !reflect.DeepEqual(config.SliceField, expectedSlice) {
		t.Errorf("Expected SliceField to be %v, got %v", expectedSlice, config.SliceField)
	}
	if config.NestedString != "nested value" {
		t.Errorf("Expected NestedString to be 'nested value', got '%s'", config.NestedString)
	}
}

func TestLoadConfigDurationSeconds(t *testing.T) {
	path := writeSettings(t, "[test]\nduration_field = 8\n")

	config := &TestConfig{Settings: path}
	if err := LoadConfig(config, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.DurationField != 8*time.Second {
		t.Errorf("Expected DurationField to be 8s, got %v", config.DurationField)
	}
}

func TestLoadConfigFromEnvVars(t *testing.T) {
	t.Setenv(EnvPrefix+"STRING_FIELD", "env string")
	t.Setenv(EnvPrefix+"BOOL_FIELD", "false")
	t.Setenv(EnvPrefix+"INT_FIELD", "123")
	t.Setenv(EnvPrefix+"FLOAT_FIELD", "0.25")
	t.Setenv(EnvPrefix+"DURATION_FIELD", "3s")
	t.Setenv(EnvPrefix+"SLICE_FIELD", "a,b,c")
	t.Setenv(EnvPrefix+"NESTED_VALUE", "env nested")

	config := &TestConfig{BoolField: true}
	if err := LoadConfig(config, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.StringField != "env string" {
		t.Errorf("Expected StringField to be 'env string', got '%s'", config.StringField)
	}
	if config.BoolField {
		t.Errorf("Expected BoolField to be false, got %v", config.BoolField)
	}
	if config.IntField != 123 {
		t.Errorf("Expected IntField to be 123, got %d", config.IntField)
	}
	if config.FloatField != 0.25 {
		t.Errorf("Expected FloatField to be 0.25, got %v", config.FloatField)
	}
	if config.DurationField != 3*time.Second {
		t.Errorf("Expected DurationField to be 3s, got %v", config.DurationField)
	}
	expectedSlice := []string{"a", "b", "c"}
	if !reflect.DeepEqual(config.SliceField, expectedSlice) {
		t.Errorf("Expected SliceField to be %v, got %v", expectedSlice, config.SliceField)
	}
	if config.NestedString != "env nested" {
		t.Errorf("Expected NestedString to be 'env nested', got '%s'", config.NestedString)
	}
}

func TestLoadConfigEnvOverridesToml(t *testing.T) {
	path := writeSettings(t, `
[test]
string_field = "toml value"
bool_field = true
int_field = 100
slice_field = ["toml1", "toml2"]
`)
	t.Setenv(EnvPrefix+"STRING_FIELD", "env override")
	t.Setenv(EnvPrefix+"BOOL_FIELD", "false")

	config := &TestConfig{Settings: path}
	if err := LoadConfig(config, nil); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.StringField != "env override" {
		t.Errorf("Expected StringField to be 'env override', got '%s'", config.StringField)
	}
	if config.BoolField {
		t.Errorf("Expected BoolField to be false (env override), got %v", config.BoolField)
	}
	if config.IntField != 100 {
		t.Errorf("Expected IntField to be 100 (from TOML), got %d", config.IntField)
	}
	expectedSlice := []string{"toml1", "toml2"}
	if !reflect.DeepEqual(config.SliceField, expectedSlice) {
		t.Errorf("Expected SliceField to be %v (from TOML), got %v", expectedSlice, config.SliceField)
	}
}

func TestLoadConfigCLIWins(t *testing.T) {
	path := writeSettings(t, "[test]\nint_field = 100\nduration_field = \"1s\"\n")
	t.Setenv(EnvPrefix+"INT_FIELD", "200")
	t.Setenv(EnvPrefix+"DURATION_FIELD", "2s")

	config := &TestConfig{Settings: path}
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().IntVar(&config.IntField, "int-field", 0, "")
	cmd.Flags().DurationVar(&config.DurationField, "duration-field", 0, "")
	if err := cmd.Flags().Parse([]string{"--int-field=300"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if err := LoadConfig(config, cmd); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.IntField != 300 {
		t.Errorf("Expected IntField to be 300 (from CLI), got %d", config.IntField)
	}
	if config.DurationField != 2*time.Second {
		t.Errorf("Expected DurationField to be 2s (from env), got %v", config.DurationField)
	}
}

func TestLoadConfigInvalidEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"DURATION_FIELD", "soon")

	if err := LoadConfig(&TestConfig{}, nil); err == nil {
		t.Fatal("LoadConfig should fail for an unparsable duration")
	}
}

func TestGetNestedValue(t *testing.T) {
	data := map[string]any{
		"level1": map[string]any{
			"level2": map[string]any{
				"value": "nested_value",
			},
			"simple": "simple_value",
		},
		"root": "root_value",
	}

	tests := []struct {
		path     string
		expected any
	}{
		{"root", "root_value"},
		{"level1.simple", "simple_value"},
		{"level1.level2.value", "nested_value"},
		{"nonexistent", nil},
		{"level1.nonexistent", nil},
		{"root.child", nil},
	}

	for _, test := range tests {
		result := getNestedValue(data, test.path)
		if result != test.expected {
			t.Errorf("getNestedValue(%q) = %v, expected %v", test.path, result, test.expected)
		}
	}
}

func TestFieldNameToFlag(t *testing.T) {
	tests := map[string]string{
		"GracePeriod":     "grace-period",
		"Node":            "node",
		"LoggingLevel":    "logging-level",
		"MetricsTextfile": "metrics-textfile",
	}
	for in, want := range tests {
		if got := fieldNameToFlag(in); got != want {
			t.Errorf("fieldNameToFlag(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSetFieldValueFromString(t *testing.T) {
	type TestStruct struct {
		StringField string
		BoolField   bool
		IntField    int
		SliceField  []string
	}

	s := &TestStruct{}
	v := reflect.ValueOf(s).Elem()

	if err := setFieldValueFromString(v.FieldByName("StringField"), "test string"); err != nil || s.StringField != "test string" {
		t.Errorf("Expected StringField to be 'test string', got '%s' (%v)", s.StringField, err)
	}
	if err := setFieldValueFromString(v.FieldByName("BoolField"), "true"); err != nil || !s.BoolField {
		t.Errorf("Expected BoolField to be true, got %v (%v)", s.BoolField, err)
	}
	if err := setFieldValueFromString(v.FieldByName("IntField"), "123"); err != nil || s.IntField != 123 {
		t.Errorf("Expected IntField to be 123, got %d (%v)", s.IntField, err)
	}
	if err := setFieldValueFromString(v.FieldByName("IntField"), "many"); err == nil {
		t.Error("Expected error for non-numeric int")
	}

	// Test slice field with spaces
	if err := setFieldValueFromString(v.FieldByName("SliceField"), " a , b , c "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []string{"a", "b", "c"}
	if !reflect.DeepEqual(s.SliceField, expected) {
		t.Errorf("Expected SliceField to be %v, got %v", expected, s.SliceField)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	config := &TestConfig{
		Settings: filepath.Join(t.TempDir(), "nonexistent.toml"),
	}

	// Should not fail when file doesn't exist
	if err := LoadConfig(config, nil); err != nil {
		t.Fatalf("LoadConfig should not fail for missing file: %v", err)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeSettings(t, `
[test
invalid toml syntax
`)

	if err := LoadConfig(&TestConfig{Settings: path}, nil); err == nil {
		t.Fatalf("LoadConfig should fail for invalid TOML")
	}
}

func TestLoggingConfig(t *testing.T) {
	path := writeSettings(t, `
[logging]
level = "warn"

[logging.modules]
process = "debug"
options = "error"
`)

	cfg := LoggingConfig(path, "info", "json")
	if cfg.Level != "info" || cfg.Format != "json" {
		t.Errorf("level/format = %q/%q, want info/json", cfg.Level, cfg.Format)
	}
	want := map[string]string{"process": "debug", "options": "error"}
	if !reflect.DeepEqual(cfg.Modules, want) {
		t.Errorf("Modules = %v, want %v", cfg.Modules, want)
	}

	defaults := LoggingConfig("", "", "")
	if defaults.Level != "info" || defaults.Format != "text" || len(defaults.Modules) != 0 {
		t.Errorf("unexpected defaults: %+v", defaults)
	}
}
