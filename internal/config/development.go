package config

import (
	"os"
	"strconv"
)

// Development is true when DEVELOPMENT is set to anything but a false value
// ("0", "false", ...).
func Development() bool {
	development, ok := os.LookupEnv("DEVELOPMENT")
	if !ok {
		return false
	}
	if on, err := strconv.ParseBool(development); err == nil {
		return on
	}
	return development != ""
}
