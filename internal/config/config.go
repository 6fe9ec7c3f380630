// Package config resolves pasteclean settings from flags, environment
// variables and an optional .pasteclean.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/jmylchreest/pasteclean/internal/logger"
	"github.com/jmylchreest/pasteclean/internal/source"
	"github.com/jmylchreest/pasteclean/pkg/paste"
)

const (
	// EnvPrefix prefixes every environment variable read by pasteclean.
	EnvPrefix = "PASTECLEAN"
	// FileName is the config file searched for in $HOME and the working directory.
	FileName = ".pasteclean"
)

// Keys understood in the config file and environment.
const (
	KeyScreen       = "screen"
	KeyVerify       = "verify"
	KeyTabWidth     = "tab_width"
	KeyMinImageSize = "min_image_size"
	KeyImageClass   = "image_class"
	KeyMaxInputSize = "max_input_size"
	KeyMaxFetchSize = "max_fetch_size"
	KeyTimeout      = "timeout"
	KeyUserAgent    = "user_agent"
	KeyDebug        = "debug"
	KeyQuiet        = "quiet"
	KeyLogLevel     = "log_level"
	KeyLogJSON      = "log_json"
)

// Config is the resolved configuration.
type Config struct {
	Paste  *paste.Config
	Log    logger.Options
	Source source.Config
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	d := paste.DefaultConfig()
	v.SetDefault(KeyScreen, d.Screen)
	v.SetDefault(KeyVerify, d.Verify)
	v.SetDefault(KeyTabWidth, d.TabWidth)
	v.SetDefault(KeyMinImageSize, d.MinImageSize)
	v.SetDefault(KeyImageClass, d.ImageClass)
	v.SetDefault(KeyMaxInputSize, "0")
	v.SetDefault(KeyMaxFetchSize, "10MB")
	v.SetDefault(KeyTimeout, 30*time.Second)
	v.SetDefault(KeyUserAgent, "")
}

// New builds a viper instance. If cfgFile is empty, $HOME and the working
// directory are searched for .pasteclean.yaml and a missing file is not an
// error.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// Load resolves v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	maxInput, err := parseSize(v.GetString(KeyMaxInputSize))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyMaxInputSize, err)
	}
	maxFetch, err := parseSize(v.GetString(KeyMaxFetchSize))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", KeyMaxFetchSize, err)
	}

	pc := &paste.Config{
		Screen:        v.GetBool(KeyScreen),
		Verify:        v.GetBool(KeyVerify),
		TabWidth:      v.GetInt(KeyTabWidth),
		MinImageSize:  v.GetInt(KeyMinImageSize),
		ImageClass:    v.GetString(KeyImageClass),
		MaxInputBytes: maxInput,
		Debug:         v.GetBool(KeyDebug),
	}
	if err := pc.Validate(); err != nil {
		return nil, err
	}

	if lvl := v.GetString(KeyLogLevel); lvl != "" {
		if _, err := logger.ParseLevel(lvl); err != nil {
			return nil, err
		}
	}

	return &Config{
		Paste: pc,
		Log: logger.Options{
			Debug: v.GetBool(KeyDebug),
			Quiet: v.GetBool(KeyQuiet),
			JSON:  v.GetBool(KeyLogJSON),
			Level: v.GetString(KeyLogLevel),
		},
		Source: source.Config{
			UserAgent: v.GetString(KeyUserAgent),
			Timeout:   v.GetDuration(KeyTimeout),
			MaxBytes:  maxFetch,
		},
	}, nil
}

// parseSize parses a human-readable size such as "100KB" or "2MiB".
// "0" and "" mean unlimited.
func parseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
