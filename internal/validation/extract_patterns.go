package validation

import (
	"regexp"
	"strings"

	"archguard/internal/policy"
)

// =============================================================================
// PATTERN EXTRACTORS
// =============================================================================

// Patterns run on the mask view (no comments, no literal contents) unless
// the signal lives inside a string literal, in which case the code view is
// used.
var (
	vagueMethodRe    = regexp.MustCompile(`(?i)^(?:get|set|do|handle|process|manage|data|info|obj|temp|var)\d*$`)
	vagueVerbNounRe  = regexp.MustCompile(`^(?:get|set|do|handle|process|manage|fetch|load|update)(?:Data|Info|Obj|Object|Item|Stuff|Thing|Value|Temp|Var)\d*$`)
	singleLetterRe   = regexp.MustCompile(`\b(?:int|long|short|byte|char|float|double|boolean|bool|String|var|let|val|auto)\s+([A-Za-z])\s*[=;,)]`)
	allowedShortName = map[string]bool{"i": true, "j": true, "k": true, "x": true, "y": true, "n": true, "e": true}

	injectionAnnotationRe = regexp.MustCompile(`@(?:Autowired|Inject|Resource)\b`)
	declNameRe            = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*(?:=[^;]*)?;\s*$`)

	entityRe   = regexp.MustCompile(`@Entity\b`)
	identityRe = regexp.MustCompile(`@(?:Id|EmbeddedId)\b`)

	stringLiteralRe = regexp.MustCompile(`"([^"]*)"`)
	sqlFragmentRe   = regexp.MustCompile(`(?i)\bselect\b.*\bfrom\b|\binsert\s+into\b|\bupdate\s+\w+\s+set\b|\bdelete\s+from\b|\bwhere\s+\w+\s*(?:=|<|>|like\b|in\b)`)
	concatRe        = regexp.MustCompile(`"\s*\+|\+\s*"`)
	formatCallRe    = regexp.MustCompile(`\b(?:String\.format|fmt\.Sprintf|sprintf|\.format)\s*\(`)

	insecureRandomRe   = regexp.MustCompile(`\bnew\s+Random\s*\(|\bMath\.random\s*\(|\brandom\.(?:random|randint)\s*\(`)
	insecureRandomGoRe = regexp.MustCompile(`"math/rand(?:/v2)?"`)

	weakCryptoRe = regexp.MustCompile(`(?i)getInstance\s*\(\s*"(DES|DESede|MD5|MD2|SHA-?1|RC4|RC2)["/]|\b(md5|sha1|des|rc4)\.(?:New|Sum)\w*\s*\(|\bhashlib\.(md5|sha1)\s*\(`)

	requestBodyRe = regexp.MustCompile(`@RequestBody\b`)
	validRe       = regexp.MustCompile(`@Valid(?:ated)?\b`)
	lastIdentRe   = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*$`)

	printStackTraceRe   = regexp.MustCompile(`\.printStackTrace\s*\(\s*\)`)
	getMessageRe        = regexp.MustCompile(`\.getMessage\s*\(\s*\)`)
	responseContextRe   = regexp.MustCompile(`\breturn\b|ResponseEntity|\.body\s*\(|\.write\s*\(|\.send\s*\(`)
	selectAllRe         = regexp.MustCompile(`(?i)\bselect\s+\*\s+from\b`)
	appendAssignRe      = regexp.MustCompile(`([A-Za-z_$][\w$.]*)\s*\+=[^;]*"`)
	selfConcatRe        = regexp.MustCompile(`([A-Za-z_$][\w$]*)\s*=\s*([A-Za-z_$][\w$]*)\s*\+[^;]*"`)
	collectionMappingRe = regexp.MustCompile(`@(?:OneToMany|ManyToMany)\b`)
	consoleRe           = regexp.MustCompile(`\bSystem\.(?:out|err)\.print(?:ln|f)?\s*\(|\bconsole\.(?:log|debug|info|warn|error)\s*\(|\bfmt\.Print(?:ln|f)?\s*\(|^\s*print\s*\(`)
	docCommentEndRe     = regexp.MustCompile(`^\s*(?://|\*|/\*\*|#|""")|\*/\s*$`)
	exportedGoTypeRe    = regexp.MustCompile(`^\s*type\s+[A-Z]`)
)

func extractPoorNaming(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for _, b := range src.blocks {
		if b.kind != blockMethod {
			continue
		}
		if vagueMethodRe.MatchString(b.name) || vagueVerbNounRe.MatchString(b.name) {
			out = append(out, candidate{
				line:    b.headerLine,
				args:    []interface{}{b.name},
				snippet: src.snippet(b.headerLine),
			})
		}
	}
	for i, line := range src.mask {
		for _, m := range singleLetterRe.FindAllStringSubmatch(line, -1) {
			if allowedShortName[m[1]] {
				continue
			}
			out = append(out, candidate{
				line:    i + 1,
				args:    []interface{}{m[1]},
				snippet: src.snippet(i + 1),
			})
		}
	}
	return out
}

func extractEmptyCatches(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for _, b := range src.blocks {
		if b.kind != blockGuard || (b.keyword != "catch" && b.keyword != "except") {
			continue
		}
		if strings.TrimSpace(src.maskText[b.openPos+1:b.closePos]) == "" {
			out = append(out, candidate{line: b.headerLine, snippet: src.snippet(b.headerLine)})
		}
	}
	return out
}

// extractFieldInjection reports DI annotations on fields. Constructor and
// setter injection (the annotated declaration has a parameter list) pass.
func extractFieldInjection(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.mask {
		loc := injectionAnnotationRe.FindStringIndex(line)
		if loc == nil {
			continue
		}
		declLine := i
		decl := stripAnnotations(line[loc[1]:])
		for strings.TrimSpace(decl) == "" && declLine+1 < len(src.mask) {
			declLine++
			decl = stripAnnotations(src.mask[declLine])
		}
		if strings.Contains(decl, "(") {
			continue
		}
		m := declNameRe.FindStringSubmatch(decl)
		if m == nil {
			continue
		}
		out = append(out, candidate{
			line:    declLine + 1,
			args:    []interface{}{m[1]},
			snippet: src.snippet(declLine + 1),
		})
	}
	return out
}

var annotationRe = regexp.MustCompile(`@[\w.]+(?:\s*\([^)]*\))?`)

func stripAnnotations(s string) string {
	return annotationRe.ReplaceAllString(s, "")
}

func extractEntityIdentity(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.mask {
		if !entityRe.MatchString(line) {
			continue
		}
		var entity *block
		for _, b := range src.blocks {
			if b.kind == blockType && b.headerLine >= i+1 {
				entity = b
				break
			}
		}
		if entity == nil {
			continue
		}
		if identityRe.MatchString(src.maskText[entity.openPos:entity.closePos]) {
			continue
		}
		out = append(out, candidate{
			line:    i + 1,
			args:    []interface{}{entity.name},
			snippet: src.snippet(entity.headerLine),
		})
	}
	return out
}

// extractSQLInjection looks for SQL fragments in string literals that are
// concatenated with other values or passed through a format call.
func extractSQLInjection(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.code {
		if !hasSQLLiteral(line) {
			continue
		}
		if concatRe.MatchString(src.mask[i]) || (formatCallRe.MatchString(src.mask[i]) && strings.Contains(line, "%")) {
			out = append(out, candidate{line: i + 1, snippet: src.snippet(i + 1)})
		}
	}
	return out
}

func hasSQLLiteral(line string) bool {
	for _, m := range stringLiteralRe.FindAllStringSubmatch(line, -1) {
		if sqlFragmentRe.MatchString(m[1]) {
			return true
		}
	}
	return false
}

func extractInsecureRandom(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i := range src.mask {
		var hit string
		if m := insecureRandomRe.FindString(src.mask[i]); m != "" {
			hit = strings.TrimSpace(strings.TrimSuffix(m, "("))
		} else if m := insecureRandomGoRe.FindString(src.code[i]); m != "" {
			hit = strings.Trim(m, `"`)
		}
		if hit == "" {
			continue
		}
		out = append(out, candidate{line: i + 1, args: []interface{}{hit}, snippet: src.snippet(i + 1)})
	}
	return out
}

func extractWeakCrypto(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.code {
		m := weakCryptoRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		algo := firstNonEmpty(m[1:]...)
		out = append(out, candidate{
			line:    i + 1,
			args:    []interface{}{strings.ToUpper(algo)},
			snippet: src.snippet(i + 1),
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func extractMissingValidation(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.mask {
		for _, loc := range requestBodyRe.FindAllStringIndex(line, -1) {
			start := strings.LastIndexAny(line[:loc[0]], "(,") + 1
			end := len(line)
			if j := strings.IndexAny(line[loc[1]:], ",)"); j >= 0 {
				end = loc[1] + j
			}
			param := line[start:end]
			if validRe.MatchString(param) {
				continue
			}
			name := lastIdentRe.FindStringSubmatch(stripAnnotations(param))
			if name == nil {
				continue
			}
			out = append(out, candidate{line: i + 1, args: []interface{}{name[1]}, snippet: src.snippet(i + 1)})
		}
	}
	return out
}

func extractExceptionExposure(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.mask {
		var via string
		switch {
		case printStackTraceRe.MatchString(line):
			via = "printStackTrace()"
		case getMessageRe.MatchString(line) && responseContextRe.MatchString(line):
			via = "getMessage()"
		default:
			continue
		}
		out = append(out, candidate{line: i + 1, args: []interface{}{via}, snippet: src.snippet(i + 1)})
	}
	return out
}

func extractSelectAll(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.code {
		if selectAllRe.MatchString(line) {
			out = append(out, candidate{line: i + 1, snippet: src.snippet(i + 1)})
		}
	}
	return out
}

// extractStringConcatInLoops reports "s += ...\"" and "s = s + ...\"" inside
// loop bodies, once per line.
func extractStringConcatInLoops(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	seen := map[int]bool{}
	for _, b := range src.blocks {
		if b.kind != blockLoop {
			continue
		}
		for ln := b.openLine; ln <= b.closeLine && ln <= len(src.mask); ln++ {
			if seen[ln] {
				continue
			}
			line := src.mask[ln-1]
			var target string
			if m := appendAssignRe.FindStringSubmatch(line); m != nil {
				target = m[1]
			} else if m := selfConcatRe.FindStringSubmatch(line); m != nil && m[1] == m[2] {
				target = m[1]
			}
			if target == "" {
				continue
			}
			seen[ln] = true
			out = append(out, candidate{line: ln, args: []interface{}{target}, snippet: src.snippet(ln)})
		}
	}
	return out
}

func extractNPlusOne(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.code {
		if !collectionMappingRe.MatchString(src.mask[i]) {
			continue
		}
		if strings.Contains(line, "FetchType.LAZY") {
			continue
		}
		out = append(out, candidate{line: i + 1, snippet: src.snippet(i + 1)})
	}
	return out
}

func extractConsoleLogging(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for i, line := range src.mask {
		m := consoleRe.FindString(line)
		if m == "" {
			continue
		}
		call := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(m), "("))
		out = append(out, candidate{line: i + 1, args: []interface{}{call}, snippet: src.snippet(i + 1)})
	}
	return out
}

// extractMissingDocumentation reports public (or exported Go) types whose
// declaration, after any annotations, is not preceded by a comment.
func extractMissingDocumentation(src *source, _ policy.Thresholds) []candidate {
	var out []candidate
	for _, b := range src.blocks {
		if b.kind != blockType || b.parent != nil {
			continue
		}
		header := src.mask[b.headerLine-1]
		if !strings.Contains(header, "public ") && !exportedGoTypeRe.MatchString(header) {
			continue
		}
		if hasDocComment(src, b.headerLine) {
			continue
		}
		out = append(out, candidate{line: b.headerLine, args: []interface{}{b.name}, snippet: src.snippet(b.headerLine)})
	}
	return out
}

func hasDocComment(src *source, headerLine int) bool {
	for ln := headerLine - 1; ln >= 1; ln-- {
		raw := strings.TrimSpace(src.raw[ln-1])
		switch {
		case raw == "":
			return false
		case strings.HasPrefix(raw, "@"):
			continue
		default:
			return docCommentEndRe.MatchString(raw)
		}
	}
	return false
}
