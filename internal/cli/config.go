package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configKeys are the settings that may come from a config file or the
// environment. Each key matches the flag of the same name.
//
//nolint:gochecknoglobals // Config constant
var configKeys = []string{
	"output",
	"depth",
	"top",
	"exclude",
	"ext",
	"min-size",
	"dirs",
	"parallel",
	"no-color",
	"debug",
}

// loadConfig reads the config file and DIRSCAN_* environment variables into v.
// A missing default config file is not an error; a missing explicit one is.
func loadConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(".dirscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("DIRSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("reading config file: %w", err)
	}

	return nil
}
