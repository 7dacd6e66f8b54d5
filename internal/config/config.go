// Package config resolves CLI settings from flags, environment, .env files,
// a config file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/dict2sql/internal/fixture"
	"github.com/roach88/dict2sql/internal/format"
)

// Configuration keys. Flags with the same name bind to them.
const (
	KeyDialect = "dialect"
	KeyDebug   = "debug"
	KeyFormat  = "format"
	KeyDriver  = "driver"
	KeyDB      = "db"
	KeyVerbose = "verbose"
)

// EnvPrefix prefixes environment variables, e.g. DICT2SQL_DIALECT.
const EnvPrefix = "DICT2SQL"

// FileName is the config file name searched for, without extension.
const FileName = ".dict2sql"

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Config holds the resolved settings.
type Config struct {
	Dialect string
	Debug   bool
	Format  string
	Driver  string
	DB      string
	Verbose bool

	// Source is the config file that was read, if any.
	Source string
}

// Loader resolves a Config. Each Loader owns a private viper instance.
type Loader struct {
	fs          afero.Fs
	v           *viper.Viper
	workDir     string
	searchPaths []string
	configFile  string
}

// NewLoader creates a Loader reading files through fs.
//
// With no search paths the current directory and the home directory are
// searched. The first search path is also where .env files are read from.
func NewLoader(fs afero.Fs, searchPaths ...string) *Loader {
	if len(searchPaths) == 0 {
		searchPaths = []string{"."}
		if home, err := homedir.Dir(); err == nil {
			searchPaths = append(searchPaths, home)
		}
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetDefault(KeyDialect, format.ANSI.Name())
	v.SetDefault(KeyDebug, false)
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyDriver, fixture.DefaultDriver)
	v.SetDefault(KeyDB, "")
	v.SetDefault(KeyVerbose, false)

	return &Loader{
		fs:          fs,
		v:           v,
		workDir:     searchPaths[0],
		searchPaths: searchPaths,
	}
}

// SetConfigFile reads exactly this file instead of searching.
// A missing explicit file is an error.
func (l *Loader) SetConfigFile(path string) {
	l.configFile = path
}

// BindFlags binds every flag in fs whose name is a configuration key.
func (l *Loader) BindFlags(flags *pflag.FlagSet) error {
	for _, key := range []string{KeyDialect, KeyDebug, KeyFormat, KeyDriver, KeyDB, KeyVerbose} {
		f := flags.Lookup(key)
		if f == nil {
			continue
		}
		if err := l.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", key, err)
		}
	}
	return nil
}

// Load resolves and validates the configuration.
func (l *Loader) Load() (*Config, error) {
	if err := l.readConfigFile(); err != nil {
		return nil, err
	}

	if err := l.mergeDotEnv(); err != nil {
		return nil, err
	}

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()

	cfg := &Config{
		Dialect: l.v.GetString(KeyDialect),
		Debug:   l.v.GetBool(KeyDebug),
		Format:  l.v.GetString(KeyFormat),
		Driver:  l.v.GetString(KeyDriver),
		DB:      l.v.GetString(KeyDB),
		Verbose: l.v.GetBool(KeyVerbose),
		Source:  l.v.ConfigFileUsed(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) readConfigFile() error {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", l.configFile, err)
		}
		return nil
	}

	l.v.SetConfigName(FileName)
	l.v.SetConfigType("yaml")
	for _, p := range l.searchPaths {
		l.v.AddConfigPath(p)
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// mergeDotEnv layers DICT2SQL_* entries from .env and then .env.local over
// the config file. Other entries are ignored and the process environment
// is not modified.
func (l *Loader) mergeDotEnv() error {
	merged := map[string]any{}

	for _, name := range []string{".env", ".env.local"} {
		path := filepath.Join(l.workDir, name)
		data, err := afero.ReadFile(l.fs, path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("read %s: %w", path, err)
		}

		env, err := godotenv.Unmarshal(string(data))
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		for k, v := range env {
			key, ok := strings.CutPrefix(k, EnvPrefix+"_")
			if !ok {
				continue
			}
			merged[strings.ToLower(key)] = v
		}
	}

	if len(merged) == 0 {
		return nil
	}
	return l.v.MergeConfigMap(merged)
}

// Validate checks that every setting has an allowed value.
func (c *Config) Validate() error {
	if _, err := format.DialectByName(c.Dialect); err != nil {
		return err
	}
	if !slices.Contains(ValidFormats, c.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats)
	}
	if c.Driver == "" {
		return fmt.Errorf("driver must not be empty")
	}
	return nil
}

// DialectValue returns the configured dialect.
func (c *Config) DialectValue() format.Dialect {
	d, err := format.DialectByName(c.Dialect)
	if err != nil {
		return format.ANSI
	}
	return d
}
