package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. MODELPIPE_LOG_LEVEL.
const EnvPrefix = "MODELPIPE"

// Keys understood by Resolve. Each has a flag of the same name with
// dashes instead of underscores.
const (
	KeyConfig          = "config"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyAdminAddr       = "admin_addr"
	KeyMaxArgBytes     = "max_arg_bytes"
	KeyMaxHistory      = "max_history"
	KeyImageExtensions = "image_extensions"
	KeyCORSEnabled     = "cors_enabled"
	KeyCORSOrigins     = "cors_origins"
)

var keys = []string{
	KeyConfig, KeyLogLevel, KeyLogFormat, KeyAdminAddr, KeyMaxArgBytes,
	KeyMaxHistory, KeyImageExtensions, KeyCORSEnabled, KeyCORSOrigins,
}

func flagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

// RegisterFlags adds the service flags to fs. Flag defaults are zero values
// so that an unset flag never masks the config file or the environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(flagName(KeyConfig), "", "config file (.yaml, .yml, .json or .toml)")
	fs.String(flagName(KeyLogLevel), "", "log level: debug, info, warn, error (default info)")
	fs.String(flagName(KeyLogFormat), "", "log format: auto, console, json (default auto)")
	fs.String(flagName(KeyAdminAddr), "", "admin HTTP listen address, e.g. 127.0.0.1:9090 (disabled when empty)")
	fs.Int64(flagName(KeyMaxArgBytes), 0, "largest accepted argument in bytes (default 1 GiB)")
	fs.Int(flagName(KeyMaxHistory), 0, "observations kept per session, 0 keeps all")
	fs.StringSlice(flagName(KeyImageExtensions), nil, "image file extensions used by READ_IMAGE")
	fs.Bool(flagName(KeyCORSEnabled), false, "enable CORS on the admin listener")
	fs.StringSlice(flagName(KeyCORSOrigins), nil, "allowed CORS origins")
}

// NewViper returns a viper instance that reads MODELPIPE_* variables and
// the flags registered on fs.
func NewViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	if fs == nil {
		return v, nil
	}
	for _, k := range keys {
		f := fs.Lookup(flagName(k))
		if f == nil {
			continue
		}
		if err := v.BindPFlag(k, f); err != nil {
			return nil, fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	}
	return v, nil
}

// Resolve layers the configuration: Defaults, then the config file named by
// the "config" key, then environment variables, then changed flags.
func Resolve(v *viper.Viper) (Config, error) {
	cfg := Defaults()
	if path := v.GetString(KeyConfig); path != "" {
		fileCfg, err := Load(path)
		if err != nil {
			return Config{}, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg.merge(fileCfg)
	}
	// IsSet is true only for environment values and changed flags, since
	// no viper defaults are registered.
	if v.IsSet(KeyLogLevel) {
		cfg.LogLevel = v.GetString(KeyLogLevel)
	}
	if v.IsSet(KeyLogFormat) {
		cfg.LogFormat = v.GetString(KeyLogFormat)
	}
	if v.IsSet(KeyAdminAddr) {
		cfg.AdminAddr = v.GetString(KeyAdminAddr)
	}
	if v.IsSet(KeyMaxArgBytes) {
		cfg.MaxArgBytes = v.GetInt64(KeyMaxArgBytes)
	}
	if v.IsSet(KeyMaxHistory) {
		cfg.MaxHistory = v.GetInt(KeyMaxHistory)
	}
	if v.IsSet(KeyImageExtensions) {
		cfg.ImageExtensions = stringList(v.Get(KeyImageExtensions))
	}
	if v.IsSet(KeyCORSEnabled) {
		cfg.CORSEnabled = v.GetBool(KeyCORSEnabled)
	}
	if v.IsSet(KeyCORSOrigins) {
		cfg.CORSOrigins = stringList(v.Get(KeyCORSOrigins))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// stringList accepts a parsed slice flag or a comma separated env value.
func stringList(val any) []string {
	var raw []string
	switch t := val.(type) {
	case []string:
		raw = t
	case string:
		raw = strings.Split(t, ",")
	case []any:
		for _, e := range t {
			raw = append(raw, fmt.Sprint(e))
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
