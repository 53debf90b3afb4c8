package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileGlob_Match(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"*Test.java", "UserServiceTest.java", true},
		{"*Test.java", "src/test/UserServiceTest.java", true},
		{"*Test.java", "UserService.java", false},
		{"*.spec.ts", "app.spec.ts", true},
		{"*.spec.ts", "app.specxts", false},
		{"*Security*.java", "SecurityConfig.java", true},
		{"**/test/**", "src/test/Foo.java", true},
		{"**/test/**", "SecurityTest.java", false},
		{"Service?.java", "Service1.java", true},
		{"Service?.java", "Service12.java", false},
		{"[AB]*.go", "Alpha.go", true},
		{"[AB]*.go", "Gamma.go", false},
		{"[!AB]*.go", "Gamma.go", true},
		{"file[]].txt", "file].txt", true},
		{`lit\*.txt`, "lit*.txt", true},
		{`lit\*.txt`, "litx.txt", false},
		{"a+b(c).java", "a+b(c).java", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.name, func(t *testing.T) {
			g, err := CompileGlob(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, g.Match(tt.name))
		})
	}
}

func TestCompileGlob_Errors(t *testing.T) {
	for _, pattern := range []string{"", "   ", "[abc", "x[]", "[!]"} {
		t.Run(pattern, func(t *testing.T) {
			_, err := CompileGlob(pattern)
			assert.Error(t, err)
		})
	}
}

func TestExpandPatterns(t *testing.T) {
	groups := map[string][]string{"fixtures": {"*Fixture.java", "*Stub.java"}}

	got, err := expandPatterns("patterns.ignoreFiles", []string{"*.spec.ts", "@fixtures"}, groups)
	require.NoError(t, err)
	assert.Equal(t, []string{"*.spec.ts", "*Fixture.java", "*Stub.java"}, got)

	_, err = expandPatterns("patterns.ignoreFiles", []string{"@missing"}, groups)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "patterns.ignoreFiles[0]", cfgErr.Field)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
