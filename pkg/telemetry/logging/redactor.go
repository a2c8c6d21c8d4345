package logging

import (
	"log/slog"
	"strings"
)

// sensitiveKeys are attribute key substrings whose values are always masked.
var sensitiveKeys = []string{
	"api_key",
	"apikey",
	"token",
	"secret",
	"credential",
	"password",
}

// redactedValue replaces sensitive attribute values in log output.
const redactedValue = "[REDACTED]"

// redactAttr is a slog ReplaceAttr hook that masks values for keys that
// look like credentials. Group paths are ignored; the key itself decides.
func redactAttr(_ []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(key, sensitive) {
			a.Value = slog.StringValue(redactedValue)
			return a
		}
	}
	return a
}

// MaskSecret returns a safe representation of a credential for logging:
// the first four characters followed by an ellipsis. Values shorter than
// eight characters are masked entirely.
func MaskSecret(value string) string {
	if len(value) < 8 {
		return redactedValue
	}
	return value[:4] + "..."
}
