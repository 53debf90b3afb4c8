package validation

import (
	"regexp"
	"strings"
)

// =============================================================================
// BLOCK STRUCTURE
// =============================================================================

// The engine does not parse languages. It pairs braces in the masked text and
// classifies each block by the statement that precedes its opening brace.
// Files without brace structure simply produce no blocks.

type blockKind int

const (
	blockOther blockKind = iota
	blockType
	blockMethod
	blockConditional
	blockLoop
	blockGuard // try/catch/finally/synchronized: neither conditional nor loop
)

type block struct {
	kind       blockKind
	name       string   // type or method name
	keyword    string   // control keyword for conditional/loop/guard blocks
	params     []string // formal parameters of a method
	headerLine int      // 1-based line where the declaring statement starts
	openLine   int      // 1-based line of '{'
	closeLine  int      // 1-based line of '}'; last line when unterminated
	openPos    int      // byte offset of '{' in the mask
	closePos   int      // byte offset of '}'; len(mask) when unterminated
	parent     *block
	depth      int // conditional/loop depth inside the nearest method or type
}

// bodyLines counts the lines strictly between the braces.
func (b *block) bodyLines() int {
	if b.closeLine <= b.openLine {
		return 0
	}
	return b.closeLine - b.openLine - 1
}

// enclosing returns the nearest ancestor (or b itself) of one of the kinds.
func (b *block) enclosing(kinds ...blockKind) *block {
	for cur := b; cur != nil; cur = cur.parent {
		for _, k := range kinds {
			if cur.kind == k {
				return cur
			}
		}
	}
	return nil
}

func parseBlocks(mask string) []*block {
	var (
		blocks    []*block
		stack     []*block
		line      = 1
		stmtStart = 0
	)
	lastLine := strings.Count(mask, "\n") + 1

	for i := 0; i < len(mask); i++ {
		switch mask[i] {
		case '\n':
			line++
		case '{':
			var parent *block
			if len(stack) > 0 {
				parent = stack[len(stack)-1]
			}
			b := classify(mask[stmtStart:i], line, parent)
			b.openLine = line
			b.openPos = i
			blocks = append(blocks, b)
			stack = append(stack, b)
			stmtStart = i + 1
		case '}':
			if len(stack) > 0 {
				stack[len(stack)-1].closeLine = line
				stack[len(stack)-1].closePos = i
				stack = stack[:len(stack)-1]
			}
			stmtStart = i + 1
		}
	}
	for _, b := range stack {
		b.closeLine = lastLine
		b.closePos = len(mask)
	}
	return blocks
}

var (
	controlRe = regexp.MustCompile(`^(?:\}\s*)?(else\s+if|if|else|elif|unless|switch|select|when|match|for|foreach|while|do|loop|until|try|catch|except|finally|synchronized|using|lock|defer|go)\b`)
	typeRe    = regexp.MustCompile(`(?:^|[^\w.])(?:class|interface|enum|record|struct|trait|object|impl)\s+([A-Za-z_$][\w$]*)`)
	goTypeRe  = regexp.MustCompile(`^type\s+([A-Za-z_]\w*)(?:\[[^\]]*\])?\s+(?:struct|interface)\b`)
	identRe   = regexp.MustCompile(`[A-Za-z_$][\w$]*$`)

	conditionalKeywords = map[string]bool{
		"if": true, "else": true, "else if": true, "elif": true, "unless": true,
		"switch": true, "select": true, "when": true, "match": true,
	}
	loopKeywords = map[string]bool{
		"for": true, "foreach": true, "while": true, "do": true, "loop": true, "until": true,
	}
	nonMethodNames = map[string]bool{
		"if": true, "for": true, "while": true, "switch": true, "catch": true, "synchronized": true,
		"return": true, "new": true, "throw": true, "else": true, "do": true, "try": true,
		"func": true, "function": true, "def": true, "fn": true, "fun": true, "super": true,
		"this": true, "using": true, "lock": true, "foreach": true, "when": true, "match": true,
	}
)

// classify builds a block from the statement text preceding '{'. openLine is
// the line of the brace; the header line is found by stepping back over the
// newlines inside the statement tail.
func classify(stmt string, openLine int, parent *block) *block {
	b := &block{parent: parent}

	tailStart := statementTail(stmt)
	tail := strings.TrimSpace(stmt[tailStart:])
	lead := len(stmt[tailStart:]) - len(strings.TrimLeft(stmt[tailStart:], " \t\r\n"))
	b.headerLine = openLine - strings.Count(stmt[tailStart+lead:], "\n")
	flat := strings.Join(strings.Fields(tail), " ")

	switch {
	case flat == "":
		b.kind = blockOther
	case controlRe.MatchString(flat):
		kw := controlRe.FindStringSubmatch(flat)[1]
		kw = strings.Join(strings.Fields(kw), " ")
		b.keyword = kw
		switch {
		case conditionalKeywords[kw]:
			b.kind = blockConditional
		case loopKeywords[kw]:
			b.kind = blockLoop
		default:
			b.kind = blockGuard
		}
	case goTypeRe.MatchString(flat):
		b.kind = blockType
		b.name = goTypeRe.FindStringSubmatch(flat)[1]
	case typeRe.MatchString(flat) && !strings.Contains(flat, "new ") && !strings.HasPrefix(flat, "return"):
		b.kind = blockType
		b.name = typeRe.FindStringSubmatch(flat)[1]
	default:
		if name, params, ok := methodSignature(flat); ok {
			b.kind = blockMethod
			b.name = name
			b.params = params
		}
	}

	switch {
	case b.kind == blockMethod || b.kind == blockType:
		b.depth = 0
	case parent != nil && (b.kind == blockConditional || b.kind == blockLoop):
		b.depth = parent.depth + 1
	case b.kind == blockConditional || b.kind == blockLoop:
		b.depth = 1
	case parent != nil:
		b.depth = parent.depth
	}
	return b
}

// statementTail returns the offset where the last statement of stmt begins.
// Statements end at ';' or at a newline outside any brackets that does not
// leave the statement open. A control header sharing its line with ';'
// ("for i := 0; i < n; i++") is kept whole.
func statementTail(stmt string) int {
	trimmed := strings.TrimRight(stmt, " \t\r\n")
	depth := 0
	for i := len(trimmed) - 1; i >= 0; i-- {
		switch trimmed[i] {
		case ')', ']':
			depth++
		case '(', '[':
			if depth > 0 {
				depth--
			}
		case ';':
			if depth == 0 {
				lineStart := strings.LastIndexByte(trimmed[:i], '\n') + 1
				if controlRe.MatchString(strings.TrimSpace(trimmed[lineStart:])) {
					return lineStart
				}
				return i + 1
			}
		case '\n':
			if depth == 0 && !continuesStatement(trimmed[:i], trimmed[i+1:]) {
				return i + 1
			}
		}
	}
	return 0
}

// continuesStatement reports whether a newline between before and after
// sits inside one statement: a trailing operator, comma or opening bracket,
// or a continuation clause on the next line.
func continuesStatement(before, after string) bool {
	t := strings.TrimRight(before, " \t\r")
	if t == "" {
		return false
	}
	switch t[len(t)-1] {
	case ',', '(', '[', '&', '|', '+', '=', '.', ':', '?', '<':
		return true
	}
	for _, kw := range []string{" extends", " implements", " throws"} {
		if strings.HasSuffix(t, kw) {
			return true
		}
	}
	next := strings.TrimLeft(after, " \t\r")
	for _, kw := range []string{"extends ", "implements ", "throws ", ".", "&&", "||", ": ", "where "} {
		if strings.HasPrefix(next, kw) {
			return true
		}
	}
	return false
}

// methodSignature recognizes "name(params) [tail]" where tail is a return
// type, a throws clause or nothing. A Go receiver "func (r *T) Name(...)" is
// skipped, as are annotation argument lists.
func methodSignature(stmt string) (string, []string, bool) {
	if strings.HasSuffix(stmt, "->") || strings.HasSuffix(stmt, "=>") {
		return "", nil, false
	}
	groups := parenGroups(stmt)
	for _, g := range groups {
		before := strings.TrimRight(stmt[:g.open], " ")
		name := identRe.FindString(before)
		if name == "" || nonMethodNames[name] {
			continue
		}
		prefix := strings.TrimRight(before[:len(before)-len(name)], " ")
		if strings.HasSuffix(prefix, "@") || strings.HasSuffix(prefix, ".") {
			continue
		}
		bare := stripParenGroups(prefix)
		if strings.HasSuffix(bare, "new") || strings.Contains(bare, "=") || strings.HasPrefix(bare, "return") {
			return "", nil, false
		}
		tail := stmt[g.close+1:]
		if strings.ContainsAny(tail, "=;{}") {
			return "", nil, false
		}
		return name, splitParams(stmt[g.open+1 : g.close]), true
	}
	return "", nil, false
}

type parenGroup struct{ open, close int }

// parenGroups lists the top-level (...) groups of s in order.
func parenGroups(s string) []parenGroup {
	var out []parenGroup
	depth, start := 0, -1
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			if depth == 0 {
				start = i
			}
			depth++
		case ')':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					out = append(out, parenGroup{open: start, close: i})
				}
			}
		}
	}
	return out
}

// stripParenGroups removes every top-level (...) group from s.
func stripParenGroups(s string) string {
	var b strings.Builder
	last := 0
	for _, g := range parenGroups(s) {
		b.WriteString(s[last:g.open])
		last = g.close + 1
	}
	b.WriteString(s[last:])
	return b.String()
}

// splitParams splits a parameter list at top-level commas.
func splitParams(list string) []string {
	var (
		params []string
		depth  int
		start  int
	)
	flush := func(end int) {
		p := strings.TrimSpace(list[start:end])
		if p != "" {
			params = append(params, p)
		}
	}
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '(', '<', '[', '{':
			depth++
		case ')', '>', ']', '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(list))
	return params
}
