package helper

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ResolveEnv returns the value of the environment variable NAME for inputs of
// the form "ENV:NAME" and the input itself otherwise.
func ResolveEnv(in string) string {
	if strings.HasPrefix(in, "ENV:") {
		return os.Getenv(in[4:])
	}
	return in
}

func ResolveEnvSlice(in []string) []string {
	if in == nil {
		return nil
	}

	out := make([]string, len(in))
	for i := range in {
		out[i] = ResolveEnv(in[i])
	}
	return out
}

func SetDefaultStringIfEmpty(value, defaultValue, field, kind string) string {
	if len(value) == 0 {
		log.WithFields(log.Fields{"kind": kind, "field": field}).Debugf("no value specified or env variable not found, assuming default %q", defaultValue)
		return defaultValue
	}
	return value
}
