package broker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// EnvConfig is the merged key-value configuration built once at broker
// construction. It is read-only after creation and scoped to one broker.
type EnvConfig map[string]string

// Get looks up key, falling back to its lowercase form. This covers both the
// HTTP_PROXY/http_proxy convention and settings files whose keys are stored
// lowercased.
func (e EnvConfig) Get(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return e[strings.ToLower(key)]
}

// settingsName is the basename of the optional local settings file,
// pyapiary.{yaml,yml,json,toml}, searched in the working directory and in
// $HOME/.config/pyapiary.
const settingsName = "pyapiary"

// LoadEnvConfig resolves the broker's environment configuration.
//
// When fromFile is false it returns an empty config; proxy settings are then
// read from the raw process environment only if the broker trusts it. When
// true, the process environment is merged with the optional settings file,
// file values overriding same-named environment variables. A missing file is
// not an error.
func LoadEnvConfig(fromFile bool) (EnvConfig, error) {
	if !fromFile {
		return EnvConfig{}, nil
	}

	cfg := EnvConfig{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			cfg[k] = v
		}
	}

	v := viper.New()
	v.SetConfigName(settingsName)
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", settingsName))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return nil, NewConfigError("read settings file: %v", err)
	}

	// Viper stores keys lowercased; EnvConfig.Get absorbs that.
	for key, val := range v.AllSettings() {
		switch t := val.(type) {
		case string:
			cfg[key] = t
		case fmt.Stringer:
			cfg[key] = t.String()
		default:
			cfg[key] = fmt.Sprintf("%v", t)
		}
	}
	return cfg, nil
}
