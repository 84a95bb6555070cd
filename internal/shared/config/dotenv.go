package config

import (
	"errors"
	"os"

	"github.com/spf13/viper"
)

// mergeEnvFiles merges KEY=VALUE files into v when they exist. Missing or
// unreadable files are skipped.
func mergeEnvFiles(v *viper.Viper, paths ...string) {
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		v.SetConfigFile(path)
		v.SetConfigType("env")
		_ = v.MergeInConfig()
	}
}
