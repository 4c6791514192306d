package logging

import (
	"regexp"
	"sort"
	"strings"
)

const redactionPlaceholder = "***"

// Keys passed through untouched even when a pattern would match.
var allowlistedEnvKeys = map[string]struct{}{
	"PATH":                     {},
	"HOME":                     {},
	"PWD":                      {},
	"LANG":                     {},
	"LC_ALL":                   {},
	"TMPDIR":                   {},
	"CMAKE_GENERATOR":          {},
	"MACOSX_DEPLOYMENT_TARGET": {},
	"QT_SRC_DIR":               {},
}

var sensitiveWords = []string{"password", "passphrase", "secret", "token", "apikey", "api_key", "privatekey", "credential"}

// SanitizeCommand renders a driver command line for logs. Values of secret-looking flags,
// cache definitions (-DNAME=VALUE) and assignments are replaced with a placeholder.
func SanitizeCommand(args []string) string {
	if len(args) == 0 {
		return ""
	}

	out := make([]string, 0, len(args))
	redactNext := false
	for _, arg := range args {
		if redactNext {
			out = append(out, redactionPlaceholder)
			redactNext = false
			continue
		}
		cleaned, next := sanitizeArg(arg)
		out = append(out, cleaned)
		redactNext = next
	}
	return strings.Join(out, " ")
}

// sanitizeArg returns the cleaned token and whether the following token is a secret value.
func sanitizeArg(arg string) (string, bool) {
	if strings.HasPrefix(arg, "-D") && len(arg) > 2 {
		name, _, hasValue := strings.Cut(arg[2:], "=")
		if hasValue && isSensitive(name) {
			return "-D" + name + "=" + redactionPlaceholder, false
		}
		return arg, false
	}

	if strings.HasPrefix(arg, "-") {
		flag, _, hasValue := strings.Cut(arg, "=")
		if !isSensitive(flag) {
			return arg, false
		}
		if hasValue {
			return flag + "=" + redactionPlaceholder, false
		}
		return arg, true
	}

	if key, _, ok := strings.Cut(arg, "="); ok && key != "" && isSensitive(key) {
		return key + "=" + redactionPlaceholder, false
	}
	return arg, false
}

// SanitizeEnv renders environment overrides as sorted KEY=VALUE pairs with secrets redacted.
func SanitizeEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, key := range keys {
		value := env[key]
		if _, ok := allowlistedEnvKeys[key]; !ok && isSensitive(key) {
			value = redactionPlaceholder
		}
		out = append(out, key+"="+value)
	}
	return out
}

var sensitivePattern = regexp.MustCompile(`(?i)\b([\w.-]*(?:password|passphrase|secret|token|apikey|api_key|privatekey)[\w.-]*)=(\S{1,256})`)

// SanitizeText redacts sensitive key=value pairs inside captured process output.
func SanitizeText(text string) string {
	if text == "" {
		return ""
	}
	return sensitivePattern.ReplaceAllString(text, "${1}="+redactionPlaceholder)
}

func isSensitive(text string) bool {
	lower := strings.ToLower(text)
	for _, word := range sensitiveWords {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}
