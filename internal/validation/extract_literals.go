package validation

import (
	"regexp"
	"strings"
	"unicode"

	"archguard/internal/policy"
)

// =============================================================================
// LITERAL EXTRACTORS
// =============================================================================

var (
	intLiteralRe   = regexp.MustCompile(`\b(\d+)[lLuU]*\b`)
	constantDeclRe = regexp.MustCompile(`\b(?:static\s+final|final\s+static|const|constexpr|static\s+readonly|readonly\s+static)\b|^\s*#\s*define\b`)
	skipLineRe     = regexp.MustCompile(`^\s*(?:package|import|#\s*include|using)\b`)

	assignmentRe = regexp.MustCompile(`([A-Za-z_$][\w$]*)["']?\s*(?::\s*[\w.<>?\[\]]+\s*)?(?::=|=|:)\s*(?:"((?:[^"\\]|\\.)*)"|'((?:[^'\\]|\\.)*)')`)

	secretWords = map[string]bool{
		"password": true, "passwd": true, "pwd": true, "secret": true, "token": true,
		"key": true, "apikey": true, "credential": true, "credentials": true,
	}
)

// extractMagicNumbers reports bare integer literals outside constant
// declarations. The candidate value is the literal as written, including
// a leading minus sign and without a type suffix.
func extractMagicNumbers(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.mask {
		if skipLineRe.MatchString(line) || constantDeclRe.MatchString(line) {
			continue
		}
		for _, m := range intLiteralRe.FindAllStringSubmatchIndex(line, -1) {
			start, end := m[2], m[3]
			if start > 0 && line[start-1] == '.' {
				continue
			}
			if end+1 < len(line) && line[end] == '.' && isDigit(line[end+1]) {
				continue
			}
			value := line[start:end]
			if isNegated(line, start) {
				value = "-" + value
			}
			out = append(out, candidate{
				line:    i + 1,
				args:    []interface{}{value},
				snippet: src.snippet(i + 1),
				value:   value,
			})
		}
	}
	return out
}

// isNegated reports whether the literal at pos is preceded by a unary minus.
func isNegated(line string, pos int) bool {
	j := pos - 1
	if j < 0 || line[j] != '-' {
		return false
	}
	k := j - 1
	for k >= 0 && (line[k] == ' ' || line[k] == '\t') {
		k--
	}
	if k < 0 {
		return true
	}
	c := rune(line[k])
	return !(unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' || c == ')' || c == ']' || c == '-')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// extractHardcodedSecrets reports string literals assigned to a name whose
// last word is a credential term (password, secret, token, key, ...).
func extractHardcodedSecrets(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.code {
		for _, m := range assignmentRe.FindAllStringSubmatch(line, -1) {
			name := m[1]
			literal := m[2]
			if literal == "" {
				literal = m[3]
			}
			if literal == "" || isPlaceholder(literal) || !isSecretName(name) {
				continue
			}
			out = append(out, candidate{
				line:    i + 1,
				args:    []interface{}{name},
				snippet: src.snippet(i + 1),
				value:   literal,
			})
		}
	}
	return out
}

func isPlaceholder(literal string) bool {
	return strings.HasPrefix(literal, "${") || strings.HasPrefix(literal, "{{")
}

func isSecretName(name string) bool {
	words := splitWords(name)
	if len(words) == 0 {
		return false
	}
	return secretWords[words[len(words)-1]]
}

// splitWords breaks camelCase, PascalCase and snake_case identifiers into
// lower-case words. Acronym runs stay together ("APIKey" -> api, key).
func splitWords(name string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	runes := []rune(name)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == '$':
			flush()
			continue
		case unicode.IsUpper(r) && len(cur) > 0:
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	return words
}
