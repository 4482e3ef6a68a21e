// Package env reads the handful of process-level knobs that live outside the
// envconfig-managed Config, such as the logger's output format.
package env

import "os"

// Get returns the environment value for key, or fallback when the variable is
// unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
