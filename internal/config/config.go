// Package config loads server settings from defaults, an optional YAML file,
// TINYHTTPD_* environment variables and command-line flags, in increasing
// order of precedence.
package config

import (
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix       = "TINYHTTPD"
	DefaultFileName = "tinyhttpd"
)

type Config struct {
	Listen          string        `mapstructure:"listen"`
	Root            string        `mapstructure:"root"`
	ServerName      string        `mapstructure:"server-name"`
	LogLevel        string        `mapstructure:"log-level"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	CGITimeout      time.Duration `mapstructure:"cgi-timeout"`
	AcceptRate      float64       `mapstructure:"accept-rate"`
	AcceptBurst     int           `mapstructure:"accept-burst"`
	ReplyBadRequest bool          `mapstructure:"reply-bad-request"`
	Welcome         bool          `mapstructure:"welcome"`
}

var keys = []string{
	"listen", "root", "server-name", "log-level", "read-timeout",
	"cgi-timeout", "accept-rate", "accept-burst", "reply-bad-request", "welcome",
}

var defaults = Config{
	Listen:      "127.0.0.1:30528",
	Root:        "root",
	ServerName:  "tinyhttpd/0.1.0",
	LogLevel:    "info",
	ReadTimeout: 10 * time.Second,
	CGITimeout:  30 * time.Second,
	AcceptBurst: 1,
	Welcome:     true,
}

// BindFlags registers one flag per setting on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("listen", defaults.Listen, "address to listen on")
	fs.String("root", defaults.Root, "document root")
	fs.String("server-name", defaults.ServerName, "value of the Server response header")
	fs.String("log-level", defaults.LogLevel, "log level: debug, info, warn or error")
	fs.Duration("read-timeout", defaults.ReadTimeout, "deadline for reading the request and for each response write, 0 for none")
	fs.Duration("cgi-timeout", defaults.CGITimeout, "CGI program time limit, 0 for none")
	fs.Float64("accept-rate", defaults.AcceptRate, "max accepted connections per second, 0 for unlimited")
	fs.Int("accept-burst", defaults.AcceptBurst, "accept rate limiter burst")
	fs.Bool("reply-bad-request", defaults.ReplyBadRequest, "answer malformed requests with 400 instead of dropping them")
	fs.Bool("welcome", defaults.Welcome, "serve the built-in /welcome page")
}

// Load builds a Config. cfgFile may be empty, in which case ./tinyhttpd.yaml
// is read if it exists. fs may be nil.
func Load(cfgFile string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault("listen", defaults.Listen)
	v.SetDefault("root", defaults.Root)
	v.SetDefault("server-name", defaults.ServerName)
	v.SetDefault("log-level", defaults.LogLevel)
	v.SetDefault("read-timeout", defaults.ReadTimeout)
	v.SetDefault("cgi-timeout", defaults.CGITimeout)
	v.SetDefault("accept-rate", defaults.AcceptRate)
	v.SetDefault("accept-burst", defaults.AcceptBurst)
	v.SetDefault("reply-bad-request", defaults.ReplyBadRequest)
	v.SetDefault("welcome", defaults.Welcome)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// Bind only our own keys so unrelated flags on fs, such as --config or
	// --help, do not trip UnmarshalExact.
	if fs != nil {
		for _, key := range keys {
			f := fs.Lookup(key)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "bind flag %s", key)
			}
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfgFile)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(DefaultFileName)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var c Config
	if err := v.UnmarshalExact(&c); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Listen == "":
		return errors.New("listen address must not be empty")
	case c.Root == "":
		return errors.New("document root must not be empty")
	case c.ServerName == "":
		return errors.New("server name must not be empty")
	case c.ReadTimeout < 0:
		return errors.Errorf("read-timeout must not be negative: %v", c.ReadTimeout)
	case c.CGITimeout < 0:
		return errors.Errorf("cgi-timeout must not be negative: %v", c.CGITimeout)
	case c.AcceptRate < 0:
		return errors.Errorf("accept-rate must not be negative: %v", c.AcceptRate)
	case c.AcceptBurst < 1:
		return errors.Errorf("accept-burst must be at least 1: %d", c.AcceptBurst)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level maps LogLevel onto slog.
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, errors.Wrapf(err, "log-level %q", c.LogLevel)
	}
	return l, nil
}
