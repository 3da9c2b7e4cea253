package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/erazemk/zaloga/internal/stock"
)

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// inTempDir runs the test from an empty directory so a stray .env is not read.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load(nil, envFrom(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBPath != "zaloga.sqlite3" || cfg.Addr != ":8080" || cfg.AdminUser != "Admin" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.TransferMode != stock.ModeAtomic || cfg.MaxRetries != stock.DefaultMaxRetries {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("expected Redis disabled by default, got %q", cfg.RedisAddr)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := inTempDir(t)
	envFile := filepath.Join(dir, "zaloga.env")
	content := "ZALOGA_DB=file.sqlite3\nZALOGA_ADDR=:7000\nZALOGA_MODE=saga\nZALOGA_RETRIES=5\n"
	if err := os.WriteFile(envFile, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	env := envFrom(map[string]string{
		"ZALOGA_ENV":  envFile,
		"ZALOGA_ADDR": ":9000",
		"ZALOGA_USER": "root",
	})

	cfg, err := Load([]string{"-u", "boss", "-retries", "1"}, env)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"file only", cfg.DBPath, "file.sqlite3"},
		{"env beats file", cfg.Addr, ":9000"},
		{"flag beats env", cfg.AdminUser, "boss"},
		{"flag beats file", cfg.MaxRetries, 1},
		{"file mode", cfg.TransferMode, stock.ModeSaga},
		{"env file recorded", cfg.EnvFile, envFile},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadDefaultEnvFile(t *testing.T) {
	dir := inTempDir(t)
	if err := os.WriteFile(filepath.Join(dir, DefaultEnvFile), []byte("ZALOGA_REDIS=localhost:6379\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil, envFrom(nil))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RedisAddr != "localhost:6379" {
		t.Errorf("expected Redis address from .env, got %q", cfg.RedisAddr)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := inTempDir(t)

	tests := []struct {
		name string
		args []string
	}{
		{"unknown mode", []string{"-mode", "2pc"}},
		{"negative retries", []string{"-retries", "-1"}},
		{"non-numeric retries", []string{"-retries", "many"}},
		{"empty db", []string{"-db", " "}},
		{"missing env file", []string{"-env", filepath.Join(dir, "missing.env")}},
		{"unexpected argument", []string{"serve"}},
		{"unknown flag", []string{"-x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.args, envFrom(nil)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestLoadHelp(t *testing.T) {
	inTempDir(t)

	_, err := Load([]string{"-h"}, envFrom(nil))
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("expected flag.ErrHelp, got %v", err)
	}
}
