// Package envutil provides helper functions for environment variable handling.
package envutil

import (
	"os"
	"strings"

	"github.com/poruru-code/tutor-newrelic/internal/meta"
)

// HostEnvKey constructs a host-level environment variable name
// by combining the host prefix with the given suffix.
// Example: HostEnvKey("ROOT") returns "TUTOR_ROOT"
func HostEnvKey(suffix string) string {
	return meta.EnvPrefix + "_" + suffix
}

// GetHostEnv retrieves a host-level environment variable.
// Example: GetHostEnv("ROOT") returns the value of TUTOR_ROOT
func GetHostEnv(suffix string) string {
	return strings.TrimSpace(os.Getenv(HostEnvKey(suffix)))
}

// Lookup finds key in a KEY=VALUE list such as os.Environ().
// The last assignment wins, matching how the process environment resolves duplicates.
func Lookup(environ []string, key string) (string, bool) {
	value, found := "", false
	for _, entry := range environ {
		name, v, ok := strings.Cut(entry, "=")
		if !ok || name != key {
			continue
		}
		value, found = v, true
	}
	return value, found
}
