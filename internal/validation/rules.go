package validation

import (
	"fmt"

	"archguard/internal/finding"
	"archguard/internal/policy"
)

// =============================================================================
// RULE TABLE
// =============================================================================

// Rule IDs are stable and appear in policies, reports and stored history.
const (
	RuleLargeClass           = "ARCH_LARGE_CLASS"
	RuleLongMethod           = "ARCH_LONG_METHOD"
	RuleTooManyParameters    = "ARCH_TOO_MANY_PARAMETERS"
	RuleDeepNesting          = "ARCH_KISS_VIOLATION"
	RuleMagicNumber          = "ARCH_MAGIC_NUMBER"
	RulePoorNaming           = "ARCH_BEST_PRACTICE"
	RuleEmptyCatch           = "ARCH_EMPTY_CATCH"
	RuleFieldInjection       = "ARCH_DEPENDENCY_INJECTION"
	RuleEntityIdentity       = "ARCH_DDD_ENTITY_IDENTITY"
	RuleHardcodedSecret      = "ARCH_HARDCODED_SECRET"
	RuleSQLInjection         = "ARCH_SQL_INJECTION"
	RuleInsecureRandom       = "ARCH_INSECURE_RANDOM"
	RuleWeakCrypto           = "ARCH_WEAK_CRYPTO"
	RuleMissingValidation    = "ARCH_MISSING_VALIDATION"
	RuleExceptionExposure    = "ARCH_EXCEPTION_EXPOSURE"
	RuleSelectAll            = "ARCH_SELECT_ALL"
	RuleStringConcatLoop     = "ARCH_STRING_CONCAT_LOOP"
	RuleNPlusOne             = "ARCH_N_PLUS_ONE"
	RuleConsoleLogging       = "ARCH_CONSOLE_LOGGING"
	RuleMissingDocumentation = "ARCH_MISSING_DOCUMENTATION"
)

type whitelistKind int

const (
	noWhitelist whitelistKind = iota
	magicNumberWhitelist
	secretWhitelist
)

// Rule describes one entry of the static rule table.
type Rule struct {
	ID       string
	Type     finding.Type
	Severity finding.Severity
	// CriticalSeverity replaces Severity on critical files; zero means none.
	CriticalSeverity finding.Severity
	// Structural rules are forced to CRITICAL on critical files after any
	// severity override.
	Structural bool
	// OptIn rules only run when listed in rules.enabled.
	OptIn      bool
	Message    string
	Suggestion string

	whitelist whitelistKind
	extract   extractor
}

// DefaultOn reports whether the rule runs without being enabled explicitly.
func (r Rule) DefaultOn() bool { return !r.OptIn }

// candidate is a raw signal produced by an extractor. It knows nothing about
// gates, overrides or whitelists.
type candidate struct {
	rule    int // index into ruleTable
	line    int // 0 for file-level
	args    []interface{}
	snippet string
	value   string // the offending literal, matched against whitelists
}

// extractor scans one source. Extractors must not mutate the source.
type extractor func(src *source, t policy.Thresholds) []candidate

var ruleTable = []Rule{
	{
		ID: RuleLargeClass, Type: finding.TypeSolidPrinciples, Severity: finding.SeverityHigh,
		Structural: true,
		Message:    "Class '%s' is too large (%d lines, max: %d)",
		Suggestion: "Split the class by responsibility (Single Responsibility Principle)",
		extract:    extractLargeClasses,
	},
	{
		ID: RuleLongMethod, Type: finding.TypeKISSViolation, Severity: finding.SeverityMedium,
		CriticalSeverity: finding.SeverityHigh,
		Message:          "Method '%s' exceeds %d lines (%d lines)",
		Suggestion:       "Extract smaller, well-named methods",
		extract:          extractLongMethods,
	},
	{
		ID: RuleTooManyParameters, Type: finding.TypeBestPractice, Severity: finding.SeverityMedium,
		Message:    "Method '%s' has more than %d parameters (%d parameters)",
		Suggestion: "Group related parameters into a parameter object",
		extract:    extractParameterCounts,
	},
	{
		ID: RuleDeepNesting, Type: finding.TypeKISSViolation, Severity: finding.SeverityHigh,
		Structural: true,
		Message:    "Deep nesting detected (%d levels)",
		Suggestion: "Use guard clauses or extract the inner blocks into methods",
		extract:    extractDeepNesting,
	},
	{
		ID: RuleMagicNumber, Type: finding.TypeBestPractice, Severity: finding.SeverityMedium,
		Message:    "Magic number detected: %s",
		Suggestion: "Replace the literal with a named constant",
		whitelist:  magicNumberWhitelist,
		extract:    extractMagicNumbers,
	},
	{
		ID: RulePoorNaming, Type: finding.TypeBestPractice, Severity: finding.SeverityMedium,
		Message:    "Non-descriptive name '%s'",
		Suggestion: "Use names that describe intent, for example findActiveUsers instead of getData",
		extract:    extractPoorNaming,
	},
	{
		ID: RuleEmptyCatch, Type: finding.TypeErrorHandling, Severity: finding.SeverityMedium,
		CriticalSeverity: finding.SeverityHigh,
		Message:          "Empty catch block swallows the exception",
		Suggestion:       "Log, rethrow or handle the exception explicitly",
		extract:          extractEmptyCatches,
	},
	{
		ID: RuleFieldInjection, Type: finding.TypeDependencyInjection, Severity: finding.SeverityMedium,
		Message:    "Field injection detected on '%s'",
		Suggestion: "Use constructor injection with final fields",
		extract:    extractFieldInjection,
	},
	{
		ID: RuleEntityIdentity, Type: finding.TypeDDDAggregate, Severity: finding.SeverityHigh,
		Message:    "Entity '%s' has no identity field",
		Suggestion: "Annotate the identity field with @Id or @EmbeddedId",
		extract:    extractEntityIdentity,
	},
	{
		ID: RuleHardcodedSecret, Type: finding.TypeSecurity, Severity: finding.SeverityHigh,
		CriticalSeverity: finding.SeverityCritical,
		Message:          "Hardcoded secret detected in '%s'",
		Suggestion:       "Load secrets from the environment or a secret manager",
		whitelist:        secretWhitelist,
		extract:          extractHardcodedSecrets,
	},
	{
		ID: RuleSQLInjection, Type: finding.TypeSecurity, Severity: finding.SeverityCritical,
		Message:    "Possible SQL injection: query built by string concatenation",
		Suggestion: "Use parameterized queries or prepared statements",
		extract:    extractSQLInjection,
	},
	{
		ID: RuleInsecureRandom, Type: finding.TypeSecurity, Severity: finding.SeverityHigh,
		CriticalSeverity: finding.SeverityCritical,
		Message:          "Insecure random number generator: %s",
		Suggestion:       "Use SecureRandom or crypto/rand for security-sensitive values",
		extract:          extractInsecureRandom,
	},
	{
		ID: RuleWeakCrypto, Type: finding.TypeSecurity, Severity: finding.SeverityHigh,
		Message:    "Weak cryptographic algorithm detected: %s",
		Suggestion: "Use SHA-256 or AES-GCM",
		extract:    extractWeakCrypto,
	},
	{
		ID: RuleMissingValidation, Type: finding.TypeSecurity, Severity: finding.SeverityMedium,
		Message:    "Request body '%s' is not validated",
		Suggestion: "Annotate the request body with @Valid",
		extract:    extractMissingValidation,
	},
	{
		ID: RuleExceptionExposure, Type: finding.TypeSecurity, Severity: finding.SeverityMedium,
		Message:    "Exception details exposed via %s",
		Suggestion: "Log the exception and return a generic error message",
		extract:    extractExceptionExposure,
	},
	{
		ID: RuleSelectAll, Type: finding.TypePerformance, Severity: finding.SeverityMedium,
		Message:    "Unbounded SELECT * query",
		Suggestion: "Select only the required columns",
		extract:    extractSelectAll,
	},
	{
		ID: RuleStringConcatLoop, Type: finding.TypePerformance, Severity: finding.SeverityMedium,
		Message:    "String concatenation in loop on '%s'",
		Suggestion: "Use a StringBuilder or strings.Builder",
		extract:    extractStringConcatInLoops,
	},
	{
		ID: RuleNPlusOne, Type: finding.TypePerformance, Severity: finding.SeverityMedium,
		Message:    "Collection association without lazy fetching may cause N+1 queries",
		Suggestion: "Declare fetch = FetchType.LAZY and fetch joins where needed",
		extract:    extractNPlusOne,
	},
	{
		ID: RuleConsoleLogging, Type: finding.TypeLogging, Severity: finding.SeverityLow,
		OptIn:      true,
		Message:    "Console output via %s",
		Suggestion: "Use the application logger",
		extract:    extractConsoleLogging,
	},
	{
		ID: RuleMissingDocumentation, Type: finding.TypeDocumentation, Severity: finding.SeverityInfo,
		OptIn:      true,
		Message:    "Public type '%s' has no documentation comment",
		Suggestion: "Add a doc comment describing the type's responsibility",
		extract:    extractMissingDocumentation,
	},
}

var ruleIndex = func() map[string]int {
	m := make(map[string]int, len(ruleTable))
	for i, r := range ruleTable {
		if _, dup := m[r.ID]; dup {
			panic(fmt.Sprintf("validation: duplicate rule %s", r.ID))
		}
		m[r.ID] = i
	}
	return m
}()

// Rules returns the rule table in declaration order.
func Rules() []Rule {
	out := make([]Rule, len(ruleTable))
	copy(out, ruleTable)
	return out
}

// LookupRule finds a rule by ID, case-insensitively.
func LookupRule(id string) (Rule, bool) {
	i, ok := ruleIndex[policy.NormalizeRuleID(id)]
	if !ok {
		return Rule{}, false
	}
	return ruleTable[i], true
}

type catalog struct{}

func (catalog) Has(ruleID string) bool {
	_, ok := ruleIndex[policy.NormalizeRuleID(ruleID)]
	return ok
}

// Catalog is the rule catalog used to validate policy documents.
func Catalog() policy.RuleCatalog { return catalog{} }
