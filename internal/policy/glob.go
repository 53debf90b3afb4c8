package policy

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// GLOB MATCHING
// =============================================================================

var classEscaper = strings.NewReplacer(`\`, `\\`, `]`, `\]`, `[`, `\[`)

// Glob is a compiled shell-style wildcard pattern matched against a whole
// file name. '*' (and '**') match any run of characters including '/', '?'
// matches one character and '[...]' is a character class ('[!...]' negates).
type Glob struct {
	pattern string
	re      *regexp.Regexp
}

// CompileGlob translates a shell-style pattern into an anchored regexp.
func CompileGlob(pattern string) (*Glob, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, fmt.Errorf("empty pattern")
	}

	var sb strings.Builder
	sb.WriteString("^")
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '*':
			for i+1 < len(pattern) && pattern[i+1] == '*' {
				i++
			}
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		case '[':
			end := strings.IndexByte(pattern[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated character class in %q", pattern)
			}
			class := pattern[i+1 : i+1+end]
			if end == 0 && i+2 < len(pattern) {
				// "[]...]" includes a literal ']'
				next := strings.IndexByte(pattern[i+2:], ']')
				if next < 0 {
					return nil, fmt.Errorf("unterminated character class in %q", pattern)
				}
				class = pattern[i+1 : i+2+next]
				end = next + 1
			}
			if class == "" || class == "!" || class == "^" {
				return nil, fmt.Errorf("empty character class in %q", pattern)
			}
			sb.WriteString("[")
			if class[0] == '!' || class[0] == '^' {
				sb.WriteString("^")
				class = class[1:]
			}
			sb.WriteString(classEscaper.Replace(class))
			sb.WriteString("]")
			i += end + 1
		case '\\':
			if i+1 < len(pattern) {
				i++
				sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
			} else {
				sb.WriteString(`\\`)
			}
		default:
			sb.WriteString(regexp.QuoteMeta(pattern[i : i+1]))
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, fmt.Errorf("malformed pattern %q: %w", pattern, err)
	}
	return &Glob{pattern: pattern, re: re}, nil
}

// Match reports whether name matches the pattern in full.
func (g *Glob) Match(name string) bool {
	return g != nil && g.re.MatchString(name)
}

func (g *Glob) String() string {
	return g.pattern
}

// GlobSet is an ordered list of globs; a name matches if any glob matches.
type GlobSet []*Glob

// Match reports whether any glob in the set matches name.
func (s GlobSet) Match(name string) bool {
	for _, g := range s {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// expandPatterns resolves "@group" references against the named custom
// pattern groups. Unknown groups are an error; nested references are not
// followed.
func expandPatterns(field string, patterns []string, groups map[string][]string) ([]string, error) {
	out := make([]string, 0, len(patterns))
	for i, p := range patterns {
		name, isRef := strings.CutPrefix(strings.TrimSpace(p), "@")
		if !isRef {
			out = append(out, p)
			continue
		}
		globs, ok := groups[name]
		if !ok {
			return nil, configErr(fmt.Sprintf("%s[%d]", field, i), p, "unknown custom pattern group")
		}
		out = append(out, globs...)
	}
	return out, nil
}

func compileSet(field string, patterns []string, groups map[string][]string) (GlobSet, error) {
	expanded, err := expandPatterns(field, patterns, groups)
	if err != nil {
		return nil, err
	}
	set := make(GlobSet, 0, len(expanded))
	for i, p := range expanded {
		g, err := CompileGlob(p)
		if err != nil {
			return nil, configErr(fmt.Sprintf("%s[%d]", field, i), p, "%v", err)
		}
		set = append(set, g)
	}
	return set, nil
}

// compileSetLenient drops unknown references and malformed globs instead of
// failing; used on the total Validate path.
func compileSetLenient(patterns []string, groups map[string][]string) GlobSet {
	set := make(GlobSet, 0, len(patterns))
	for _, p := range patterns {
		if name, isRef := strings.CutPrefix(strings.TrimSpace(p), "@"); isRef {
			for _, member := range groups[name] {
				if g, err := CompileGlob(member); err == nil {
					set = append(set, g)
				}
			}
			continue
		}
		if g, err := CompileGlob(p); err == nil {
			set = append(set, g)
		}
	}
	return set
}
