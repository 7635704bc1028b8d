package meta

import (
	"os"
	"strings"
	"unicode"
)

const envPrefix = "${env."

// expandEnv replaces ${env.KEY} with the value of KEY and ${env.KEY:-fallback}
// with fallback when KEY is unset or empty. Expressions with an invalid key
// or no closing brace are kept literally.
func expandEnv(value string) string {
	if !strings.Contains(value, envPrefix) {
		return value
	}
	var b strings.Builder
	for {
		idx := strings.Index(value, envPrefix)
		if idx < 0 {
			b.WriteString(value)
			return b.String()
		}
		b.WriteString(value[:idx])
		rest := value[idx+len(envPrefix):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			b.WriteString(value[idx:])
			return b.String()
		}
		key, fallback, hasFallback := strings.Cut(rest[:end], ":-")
		if !validKey(key) {
			// keep the prefix and rescan right after it so nested expressions still expand
			b.WriteString(envPrefix)
			value = rest
			continue
		}
		v, _ := os.LookupEnv(key)
		if v == "" && hasFallback {
			v = fallback
		}
		b.WriteString(v)
		value = rest[end+1:]
	}
}

func validKey(key string) bool {
	for _, r := range key {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}
