package policy

// =============================================================================
// FILE FILTER
// =============================================================================

// Filter answers the three per-file questions of a policy: is the file
// ignored, is it critical, and are its security checks skipped.
type Filter struct {
	ignore       GlobSet
	critical     GlobSet
	skipSecurity GlobSet
}

// NewFilter compiles the glob lists of p. Malformed globs and unknown
// "@group" references are reported as configuration errors.
func NewFilter(p Policy) (*Filter, error) {
	groups := p.Patterns.CustomPatterns
	ignore, err := compileSet("patterns.ignoreFiles", p.Patterns.IgnoreFiles, groups)
	if err != nil {
		return nil, err
	}
	critical, err := compileSet("patterns.criticalFiles", p.Patterns.CriticalFiles, groups)
	if err != nil {
		return nil, err
	}
	skip, err := compileSet("patterns.whitelist.skipSecurityChecks", p.Patterns.Whitelist.SkipSecurityChecks, groups)
	if err != nil {
		return nil, err
	}
	return &Filter{ignore: ignore, critical: critical, skipSecurity: skip}, nil
}

// LenientFilter compiles p's globs, silently dropping any that are invalid.
func LenientFilter(p Policy) *Filter {
	groups := p.Patterns.CustomPatterns
	return &Filter{
		ignore:       compileSetLenient(p.Patterns.IgnoreFiles, groups),
		critical:     compileSetLenient(p.Patterns.CriticalFiles, groups),
		skipSecurity: compileSetLenient(p.Patterns.Whitelist.SkipSecurityChecks, groups),
	}
}

// ShouldIgnore reports whether fileName matches an ignoreFiles glob.
func (f *Filter) ShouldIgnore(fileName string) bool {
	return f.ignore.Match(fileName)
}

// IsCritical reports whether fileName matches a criticalFiles glob.
func (f *Filter) IsCritical(fileName string) bool {
	return f.critical.Match(fileName)
}

// IsSecuritySkipped reports whether fileName matches a skipSecurityChecks glob.
func (f *Filter) IsSecuritySkipped(fileName string) bool {
	return f.skipSecurity.Match(fileName)
}

// ShouldIgnore is the single-call form of Filter.ShouldIgnore.
func ShouldIgnore(fileName string, p Policy) bool {
	return LenientFilter(p).ShouldIgnore(fileName)
}

// IsCritical is the single-call form of Filter.IsCritical.
func IsCritical(fileName string, p Policy) bool {
	return LenientFilter(p).IsCritical(fileName)
}

// IsSecuritySkipped is the single-call form of Filter.IsSecuritySkipped.
func IsSecuritySkipped(fileName string, p Policy) bool {
	return LenientFilter(p).IsSecuritySkipped(fileName)
}
