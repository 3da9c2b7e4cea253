// Package config reads the server configuration from command-line flags,
// ZALOGA_* environment variables and an optional .env file, in that order of
// precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/erazemk/zaloga/internal/stock"
)

// DefaultEnvFile is read when present and no other file is named.
const DefaultEnvFile = ".env"

// Config holds the server settings.
type Config struct {
	DBPath       string
	Addr         string
	AdminUser    string
	LogPath      string
	EnvFile      string
	RedisAddr    string
	RedisChannel string
	TransferMode stock.TransferMode
	MaxRetries   int
}

// option is one setting with its flag names and environment variable.
type option struct {
	long, short string
	env         string
	def         string
	value       *string
}

// Usage writes the flag help to w.
func Usage(w io.Writer) {
	fmt.Fprint(w, `Usage: zaloga [flags]

Flags:
  -d, -db <path>          SQLite database path (default: zaloga.sqlite3)
  -a, -addr <host:port>   listen address (default: :8080)
  -u, -user <name>        admin username on first run (default: Admin)
  -l, -log <path>         log file path (default: no file, stdout/stderr only)
  -e, -env <path>         environment file (default: .env if present)
  -r, -redis <host:port>  Redis address for event publishing (default: disabled)
      -channel <name>     Redis channel for events (default: zaloga.inventory)
  -m, -mode <mode>        transfer mode: atomic or saga (default: atomic)
      -retries <n>        retries after a concurrent update (default: 3)
  -h, -help               show this help and exit

Every flag can also be set with ZALOGA_<NAME>, e.g. ZALOGA_DB or ZALOGA_MODE.
`)
}

// Load parses args and fills unset flags from the environment, as returned
// by getenv, and then from the environment file. It returns flag.ErrHelp when
// help was requested.
func Load(args []string, getenv func(string) string) (*Config, error) {
	var (
		dbPath, addr, adminUser, logPath, envFile string
		redisAddr, redisChannel, mode, retries    string
	)
	opts := []option{
		{"db", "d", "ZALOGA_DB", "zaloga.sqlite3", &dbPath},
		{"addr", "a", "ZALOGA_ADDR", ":8080", &addr},
		{"user", "u", "ZALOGA_USER", "Admin", &adminUser},
		{"log", "l", "ZALOGA_LOG", "", &logPath},
		{"env", "e", "ZALOGA_ENV", "", &envFile},
		{"redis", "r", "ZALOGA_REDIS", "", &redisAddr},
		{"channel", "", "ZALOGA_CHANNEL", "", &redisChannel},
		{"mode", "m", "ZALOGA_MODE", string(stock.ModeAtomic), &mode},
		{"retries", "", "ZALOGA_RETRIES", strconv.Itoa(stock.DefaultMaxRetries), &retries},
	}

	fset := flag.NewFlagSet("zaloga", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	for _, o := range opts {
		fset.StringVar(o.value, o.long, o.def, "")
		if o.short != "" {
			fset.StringVar(o.value, o.short, o.def, "")
		}
	}

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}

	set := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })
	isSet := func(o option) bool { return set[o.long] || (o.short != "" && set[o.short]) }

	// The environment file is located first: it supplies the other defaults.
	envOpt := opts[4]
	if !isSet(envOpt) {
		envFile = getenv(envOpt.env)
	}
	fileVars, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}

	for _, o := range opts {
		if isSet(o) || o.long == "env" {
			continue
		}
		if v := getenv(o.env); v != "" {
			*o.value = v
		} else if v := fileVars[o.env]; v != "" {
			*o.value = v
		}
	}

	cfg := &Config{
		DBPath:       strings.TrimSpace(dbPath),
		Addr:         strings.TrimSpace(addr),
		AdminUser:    strings.TrimSpace(adminUser),
		LogPath:      logPath,
		EnvFile:      envFile,
		RedisAddr:    strings.TrimSpace(redisAddr),
		RedisChannel: strings.TrimSpace(redisChannel),
	}

	if cfg.TransferMode, err = stock.ParseTransferMode(mode); err != nil {
		return nil, err
	}
	if cfg.MaxRetries, err = strconv.Atoi(strings.TrimSpace(retries)); err != nil {
		return nil, fmt.Errorf("invalid retries %q: %w", retries, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return errors.New("database path is required")
	}
	if c.Addr == "" {
		return errors.New("listen address is required")
	}
	if c.AdminUser == "" {
		return errors.New("admin username is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("retries must not be negative, got %d", c.MaxRetries)
	}
	if _, err := stock.ParseTransferMode(string(c.TransferMode)); err != nil {
		return err
	}
	return nil
}

// readEnvFile returns the variables of path. Without a path the default
// file is read if it exists.
func readEnvFile(path string) (map[string]string, error) {
	optional := path == ""
	if optional {
		path = DefaultEnvFile
	}

	vars, err := godotenv.Read(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading environment file: %w", err)
	}
	return vars, nil
}
