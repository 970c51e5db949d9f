package meta

import (
	"os"
	"strings"
)

const envPrefix = "${env."

// ExpandEnv replaces ${env.KEY} with the KEY environment variable, unset variables expand
// to an empty string. Expressions with a malformed key or no closing brace are kept as is.
func ExpandEnv(value string) string {
	if !strings.Contains(value, envPrefix) {
		return value
	}
	var b strings.Builder
	for {
		start := strings.Index(value, envPrefix)
		if start < 0 {
			b.WriteString(value)
			return b.String()
		}
		b.WriteString(value[:start])
		rest := value[start+len(envPrefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(value[start:])
			return b.String()
		}
		if key := rest[:end]; isEnvKey(key) {
			b.WriteString(os.Getenv(key))
			value = rest[end+1:]
			continue
		}
		b.WriteString(envPrefix)
		value = rest
	}
}

func isEnvKey(key string) bool {
	for _, r := range key {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
