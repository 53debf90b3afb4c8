package finding

import "strings"

// Type is the category of a finding.
type Type string

const (
	TypeCodeStyle            Type = "CODE_STYLE"
	TypeDocumentation        Type = "DOCUMENTATION"
	TypeBestPractice         Type = "BEST_PRACTICE"
	TypeSecurity             Type = "SECURITY"
	TypePerformance          Type = "PERFORMANCE"
	TypeBug                  Type = "BUG"
	TypeMaintainability      Type = "MAINTAINABILITY"
	TypeArchitecture         Type = "ARCHITECTURE"
	TypeDesignPattern        Type = "DESIGN_PATTERN"
	TypeSolidPrinciples      Type = "SOLID_PRINCIPLES"
	TypeDependencyInjection  Type = "DEPENDENCY_INJECTION"
	TypeSeparationOfConcerns Type = "SEPARATION_OF_CONCERNS"
	TypeDRYViolation         Type = "DRY_VIOLATION"
	TypeKISSViolation        Type = "KISS_VIOLATION"
	TypeYAGNIViolation       Type = "YAGNI_VIOLATION"
	TypeDDDBoundedContext    Type = "DDD_BOUNDED_CONTEXT"
	TypeDDDAggregate         Type = "DDD_AGGREGATE"
	TypeDDDValueObject       Type = "DDD_VALUE_OBJECT"
	TypeDDDDomainService     Type = "DDD_DOMAIN_SERVICE"
	TypeImmutability         Type = "IMMUTABILITY"
	TypePureFunction         Type = "PURE_FUNCTION"
	TypeSideEffects          Type = "SIDE_EFFECTS"
	TypeTestCoverage         Type = "TEST_COVERAGE"
	TypeTestQuality          Type = "TEST_QUALITY"
	TypeTDDViolation         Type = "TDD_VIOLATION"
	TypeAPIDesign            Type = "API_DESIGN"
	TypeRESTCompliance       Type = "REST_COMPLIANCE"
	TypeErrorHandling        Type = "ERROR_HANDLING"
	TypeScalability          Type = "SCALABILITY"
	TypeAsyncProcessing      Type = "ASYNC_PROCESSING"
	TypeCaching              Type = "CACHING"
	TypeLogging              Type = "LOGGING"
	TypeMonitoring           Type = "MONITORING"
	TypeTracing              Type = "TRACING"
)

// Group is one of the five category gates a policy can switch off.
type Group string

const (
	GroupCleanCode   Group = "cleanCode"
	GroupSolid       Group = "solid"
	GroupDDD         Group = "ddd"
	GroupSecurity    Group = "security"
	GroupPerformance Group = "performance"
)

var typeGroups = map[Type]Group{
	TypeCodeStyle:       GroupCleanCode,
	TypeDocumentation:   GroupCleanCode,
	TypeBestPractice:    GroupCleanCode,
	TypeBug:             GroupCleanCode,
	TypeMaintainability: GroupCleanCode,
	TypeDRYViolation:    GroupCleanCode,
	TypeKISSViolation:   GroupCleanCode,
	TypeYAGNIViolation:  GroupCleanCode,
	TypeImmutability:    GroupCleanCode,
	TypePureFunction:    GroupCleanCode,
	TypeSideEffects:     GroupCleanCode,
	TypeTestCoverage:    GroupCleanCode,
	TypeTestQuality:     GroupCleanCode,
	TypeTDDViolation:    GroupCleanCode,
	TypeErrorHandling:   GroupCleanCode,
	TypeLogging:         GroupCleanCode,
	TypeMonitoring:      GroupCleanCode,
	TypeTracing:         GroupCleanCode,

	TypeArchitecture:         GroupSolid,
	TypeDesignPattern:        GroupSolid,
	TypeSolidPrinciples:      GroupSolid,
	TypeDependencyInjection:  GroupSolid,
	TypeSeparationOfConcerns: GroupSolid,
	TypeAPIDesign:            GroupSolid,
	TypeRESTCompliance:       GroupSolid,

	TypeDDDBoundedContext: GroupDDD,
	TypeDDDAggregate:      GroupDDD,
	TypeDDDValueObject:    GroupDDD,
	TypeDDDDomainService:  GroupDDD,

	TypeSecurity: GroupSecurity,

	TypePerformance:     GroupPerformance,
	TypeScalability:     GroupPerformance,
	TypeAsyncProcessing: GroupPerformance,
	TypeCaching:         GroupPerformance,
}

// Group returns the category gate that governs findings of this type.
func (t Type) Group() Group {
	return typeGroups[t]
}

// Valid reports whether t belongs to the closed set of finding types.
func (t Type) Valid() bool {
	_, ok := typeGroups[t]
	return ok
}

// ParseType resolves a type name case-insensitively.
func ParseType(name string) (Type, bool) {
	t := Type(strings.ToUpper(strings.TrimSpace(name)))
	return t, t.Valid()
}
