package config

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// loadWithViper reads the config file and environment into a Config value.
// It panics upon error because the application cannot run without configs.
func loadWithViper() Config {
	vip := viper.New()

	// Config file details.
	vip.SetConfigName("config")
	vip.SetConfigType("yaml")
	vip.AddConfigPath(".")
	vip.AddConfigPath("./configs")
	vip.AddConfigPath("/etc/authbroker")

	// Environment variables override the file. Example: AUTHBROKER_AUTH_SIGNING_SECRET.
	vip.SetEnvPrefix("authbroker")
	vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vip.AutomaticEnv()

	// A missing file is fine as long as the environment provides everything.
	if err := vip.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			panic("error in ReadInConfig call: " + err.Error())
		}
	}

	// Decode hooks for durations and comma-separated lists.
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))

	var cfg Config
	if err := vip.Unmarshal(&cfg, hook); err != nil {
		panic("error in viper Unmarshal call: " + err.Error())
	}

	return cfg
}

// placeholderMarkers are substrings that indicate an unfilled sample value.
var placeholderMarkers = []string{"<", ">", "changeme", "your-", "xxxx"}

// isUsable returns true only if all the given values are non-empty and none of them
// looks like an unfilled placeholder from a sample config file.
func isUsable(values ...string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return false
		}
		lower := strings.ToLower(value)
		for _, marker := range placeholderMarkers {
			if strings.Contains(lower, marker) {
				return false
			}
		}
	}
	return true
}
