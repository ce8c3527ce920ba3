package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/simpleioc/errors"
)

func validConfig() ServiceConfig {
	cfg := ServiceConfig{Name: "svc"}
	cfg.ApplyDefaults()
	return cfg
}

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
			t.Errorf("expected logging defaults, got %+v", cfg.Logging)
		}
		if cfg.Observability.Endpoint != "" {
			t.Error("expected observability untouched while the container is not instrumented")
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})

	t.Run("instrumented container gets observability defaults", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Container: ContainerConfig{Metrics: true}}
		cfg.ApplyDefaults()
		if cfg.Observability.Endpoint != "localhost:4318" {
			t.Errorf("expected default endpoint, got %q", cfg.Observability.Endpoint)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *ServiceConfig)
		wantErr bool
		errMsg  string
	}{
		{"valid development", func(*ServiceConfig) {}, false, ""},
		{"valid staging", func(c *ServiceConfig) { c.Environment = "staging" }, false, ""},
		{"missing name", func(c *ServiceConfig) { c.Name = "" }, true, "name: is required"},
		{"invalid environment", func(c *ServiceConfig) { c.Environment = "qa" }, true, "environment: must be one of"},
		{"invalid log level", func(c *ServiceConfig) { c.Logging.Level = "loud" }, true, "logging.level must be one of"},
		{"tracing without endpoint", func(c *ServiceConfig) { c.Container.Tracing = true }, true, "observability.endpoint"},
		{"bad endpoint", func(c *ServiceConfig) { c.Observability.Endpoint = "nope" }, true, "observability.endpoint: must be host:port"},
		{"bad sample rate", func(c *ServiceConfig) { c.Observability.SampleRate = 2 }, true, "observability.sample_rate"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if !tc.wantErr {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !stderrors.Is(err, errors.ErrInvalidInput) {
				t.Fatalf("expected INVALID_INPUT, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %q", tc.errMsg, err.Error())
			}
		})
	}
}

func TestGetServiceConfigPromoted(t *testing.T) {
	type wrapped struct {
		ServiceConfig `yaml:",inline" mapstructure:",squash"`
		Extra         string `mapstructure:"extra"`
	}
	cfg := &wrapped{ServiceConfig: ServiceConfig{Name: "svc"}}
	if cfg.GetServiceConfig().Name != "svc" {
		t.Error("expected promoted GetServiceConfig")
	}
}

type appConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Clock         struct {
		Seed int `mapstructure:"seed"`
	} `mapstructure:"clock"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", `
name: orders
environment: staging
container:
  tracing: true
observability:
  endpoint: collector:4318
  interval: 30s
clock:
  seed: 42
`)

	var cfg appConfig
	if err := LoadConfig("orders", &cfg, WithConfigFile(configPath), WithEnvPrefix("SIMPLEIOC_TEST_NONE")); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "orders" || cfg.Environment != "staging" {
		t.Errorf("unexpected service fields: %+v", cfg.ServiceConfig)
	}
	if !cfg.Container.Tracing || cfg.Container.Metrics {
		t.Errorf("unexpected container config: %+v", cfg.Container)
	}
	if cfg.Observability.Endpoint != "collector:4318" || cfg.Observability.Interval != 30*time.Second {
		t.Errorf("unexpected observability config: %+v", cfg.Observability)
	}
	if cfg.Clock.Seed != 42 {
		t.Errorf("expected clock.seed 42, got %d", cfg.Clock.Seed)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", "name: orders\ncontainer:\n  metrics: false\n")
	envPath := writeFile(t, dir, ".env", "ORDERSTEST_CLOCK_SEED=9\n")

	t.Setenv("ORDERSTEST_CONTAINER_METRICS", "true")
	t.Setenv("ORDERSTEST_NAME", "from-env")
	t.Cleanup(func() { os.Unsetenv("ORDERSTEST_CLOCK_SEED") })

	var cfg appConfig
	err := LoadConfig("orders", &cfg,
		WithConfigFile(configPath),
		WithEnvFile(envPath),
		WithEnvPrefix("orderstest"),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "from-env" {
		t.Errorf("expected env to override name, got %q", cfg.Name)
	}
	if !cfg.Container.Metrics {
		t.Error("expected env to override container.metrics")
	}
	if cfg.Clock.Seed != 9 {
		t.Errorf("expected .env to set clock.seed, got %d", cfg.Clock.Seed)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg appConfig
	// With no config file found, LoadConfig should still succeed (just empty config)
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"), WithEnvPrefix("SIMPLEIOC_TEST_NONE"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
	if cfg.Name != "" {
		t.Errorf("expected empty config, got %q", cfg.Name)
	}
}

func TestLoadConfigUnmarshalError(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.yml", "clock:\n  seed: not-a-number\n")

	var cfg appConfig
	err := LoadConfig("orders", &cfg, WithConfigFile(configPath), WithEnvPrefix("SIMPLEIOC_TEST_NONE"))
	if !stderrors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }

func (m *mockFS) LoadEnv(path string) error { return nil }

func (m *mockFS) Getwd() (string, error) { return "/mock", nil }

func TestFileResolverWithMockFS(t *testing.T) {
	tests := []struct {
		name       string
		files      []string
		wantConfig string
		wantEnv    string
	}{
		{"cmd dir", []string{"./cmd/my-svc/config.yml"}, "./cmd/my-svc/config.yml", ""},
		{"short name", []string{"./cmd/svc/config.yml"}, "./cmd/svc/config.yml", ""},
		{"named config", []string{"./config/my-svc.yml", "./config.yml"}, "./config/my-svc.yml", ""},
		{"root files", []string{"./config.yml", "./.env"}, "./config.yml", "./.env"},
		{"service env first", []string{"./.env", "./.env.my-svc"}, "", "./.env.my-svc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fs := &mockFS{files: map[string]bool{}}
			for _, f := range tc.files {
				fs.files[f] = true
			}
			resolver := &FileResolver{FileSystem: fs}
			files := resolver.ResolveFiles("my-svc", LoaderConfig{})
			if files.ConfigFile != tc.wantConfig {
				t.Errorf("expected config file %q, got %q", tc.wantConfig, files.ConfigFile)
			}
			if files.EnvFile != tc.wantEnv {
				t.Errorf("expected env file %q, got %q", tc.wantEnv, files.EnvFile)
			}
		})
	}
}

func TestFileResolverExplicitPaths(t *testing.T) {
	resolver := &FileResolver{FileSystem: &mockFS{}}
	files := resolver.ResolveFiles("svc", LoaderConfig{ConfigFile: "a.yml", EnvFile: "b.env"})
	if files.ConfigFile != "a.yml" || files.EnvFile != "b.env" {
		t.Errorf("expected explicit paths, got %+v", files)
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	fs := &mockFS{}
	WithFileSystem(fs)(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	WithEnvPrefix("orders")(&lc)

	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
	if lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("unexpected paths: %+v", lc)
	}
	if lc.EnvPrefix != "ORDERS" {
		t.Errorf("expected upper-cased prefix, got %q", lc.EnvPrefix)
	}
}

func TestGenerateEnvKeyVariants(t *testing.T) {
	got := generateEnvKeyVariants("CONTAINER_TRACING")
	want := map[string]bool{"container_tracing": true, "container.tracing": true}
	for _, v := range got {
		delete(want, v)
	}
	if len(want) != 0 {
		t.Errorf("missing variants %v in %v", want, got)
	}

	if single := generateEnvKeyVariants("NAME"); len(single) != 1 || single[0] != "name" {
		t.Errorf("unexpected variants for single word: %v", single)
	}
}
