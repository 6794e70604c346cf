package logging

import (
	"regexp"
	"sort"
	"strings"

	"simulateur-hq/relay/pkg/config"
)

// Redactor masks credentials in log output.
type Redactor struct {
	patterns []*redactPattern
	secrets  *strings.Replacer
}

// redactPattern contains a compiled regex and replacement string.
type redactPattern struct {
	name        string
	regex       *regexp.Regexp
	replacement string
}

// Built-in pattern names.
const (
	PatternAPIKey      = "api_key"
	PatternBearerToken = "bearer_token"
	PatternPassword    = "password"
)

// minSecretLen keeps short values (empty strings, test placeholders) from
// turning every occurrence of a common substring into ***.
const minSecretLen = 6

// NewRedactor creates a new Redactor with the built-in patterns, the custom
// patterns and the literal secret values. Invalid custom patterns are skipped.
func NewRedactor(customPatterns []config.RedactPattern, secrets []string) *Redactor {
	r := &Redactor{}

	r.addPattern(PatternBearerToken, `Bearer\s+[a-zA-Z0-9\-._~+/]+=*`, "Bearer ***")
	r.addPattern(PatternAPIKey, `sk-[a-zA-Z0-9_\-]+`, "sk-***")
	r.addPattern(PatternPassword, `(password|passwd|pwd)[:=]\s*[^\s]+`, "$1: ***")

	for _, p := range customPatterns {
		regex, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		r.patterns = append(r.patterns, &redactPattern{
			name:        p.Name,
			regex:       regex,
			replacement: p.Replacement,
		})
	}

	// Longest first so a secret containing another is replaced whole.
	var values []string
	for _, s := range secrets {
		if len(s) >= minSecretLen {
			values = append(values, s)
		}
	}
	sort.Slice(values, func(i, j int) bool { return len(values[i]) > len(values[j]) })
	if len(values) > 0 {
		pairs := make([]string, 0, 2*len(values))
		for _, s := range values {
			pairs = append(pairs, s, "***")
		}
		r.secrets = strings.NewReplacer(pairs...)
	}

	return r
}

func (r *Redactor) addPattern(name, expr, replacement string) {
	r.patterns = append(r.patterns, &redactPattern{
		name:        name,
		regex:       regexp.MustCompile(expr),
		replacement: replacement,
	})
}

// PatternCount returns the number of active regular expression patterns.
func (r *Redactor) PatternCount() int {
	return len(r.patterns)
}

// RedactString redacts credentials from a string value.
func (r *Redactor) RedactString(value string) string {
	if value == "" {
		return value
	}

	redacted := value
	if r.secrets != nil {
		redacted = r.secrets.Replace(redacted)
	}
	for _, pattern := range r.patterns {
		redacted = pattern.regex.ReplaceAllString(redacted, pattern.replacement)
	}
	return redacted
}

// isSensitiveKey checks if a key name indicates sensitive data.
func isSensitiveKey(key string) bool {
	lowerKey := strings.ToLower(key)

	for _, sensitive := range []string{
		"password", "passwd", "secret", "token",
		"api_key", "apikey", "authorization", "private_key",
	} {
		if strings.Contains(lowerKey, sensitive) {
			return true
		}
	}
	return false
}

// RedactAPIKey redacts an API key, keeping only a prefix.
func RedactAPIKey(apiKey string) string {
	if len(apiKey) <= 4 {
		return "***"
	}
	return apiKey[:4] + "***"
}
