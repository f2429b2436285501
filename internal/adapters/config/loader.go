// Package config provides the configuration loader for crate.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.trai.ch/crate/internal/core/domain"
	"go.trai.ch/crate/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using viper.
type Loader struct {
	Logger   ports.Logger
	validate *validator.Validate
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{
		Logger:   logger,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load reads the configuration at path, or discovers it upwards from cwd when path is empty.
func (l *Loader) Load(cwd, path string) (*domain.Config, error) {
	configPath, err := l.resolvePath(cwd, path)
	if err != nil {
		return nil, err
	}

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigFile(configPath)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	var cfg domain.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}
	cfg.Path = configPath
	cfg.Root = filepath.Dir(configPath)
	if cfg.Dependencies == nil {
		cfg.Dependencies = map[string]string{}
	}

	if err := l.validateConfig(&cfg); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	if _, ok := cfg.Channel("global"); !ok && len(cfg.Release.Channels) > 0 {
		l.Logger.Warn("no 'global' release channel configured; release needs --channel")
	}

	return &cfg, nil
}

// DiscoverRoot walks up from cwd to find the directory holding the configuration file.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	path, err := findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(path), nil
}

func (l *Loader) resolvePath(cwd, path string) (string, error) {
	if path == "" {
		return findConfiguration(cwd)
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", domain.Annotate(domain.ErrConfigNotFound, "path", path)
	}
	return filepath.Clean(path), nil
}

func findConfiguration(cwd string) (string, error) {
	current := cwd
	for {
		for _, name := range domain.ConfigFileNames {
			candidate := filepath.Join(current, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", domain.Annotate(domain.ErrConfigNotFound, "cwd", cwd)
		}
		current = parent
	}
}

// validateConfig checks the struct tags of domain.Config and reports the first violation.
func (l *Loader) validateConfig(cfg *domain.Config) error {
	err := l.validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return zerr.Wrap(err, domain.ErrConfigInvalid.Error())
	}

	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	invalid := zerr.With(domain.Annotate(domain.ErrConfigInvalid, "field", field), "rule", fe.Tag())
	if fe.Param() != "" {
		invalid = zerr.With(invalid, "param", fe.Param())
	}
	if len(verrs) > 1 {
		invalid = zerr.With(invalid, "more", len(verrs)-1)
	}
	return invalid
}
