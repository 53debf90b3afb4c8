package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archguard/internal/finding"
	"archguard/internal/policy"
)

func values(cands []candidate) []string {
	out := make([]string, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.value)
	}
	return out
}

func lines(cands []candidate) []int {
	out := make([]int, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.line)
	}
	return out
}

func TestExtractMagicNumbers(t *testing.T) {
	src := newSource("Calc.java", `import java.util.List;
class Calc {
    private static final int LIMIT = 512;
    int a = 7;
    int b = -1;
    int c = x - 2;
    double d = 3.14;
    long e = 250L;
    int f = 0x1F;
    String s = "404";
    int g = items[3]; // 77 in a comment
}
`)
	got := extractMagicNumbers(src, policy.DefaultThresholds())
	assert.Equal(t, []string{"7", "-1", "2", "250", "3"}, values(got))
	assert.Equal(t, []int{4, 5, 6, 8, 11}, lines(got))
}

func TestExtractHardcodedSecrets(t *testing.T) {
	src := newSource("Creds.kt", `val dbPassword: String = "hunter2"
val API_KEY = "abc"
val monkey = "banana"
val passwordHash = "x"
if (token == "abc") {}
val clientSecret = "${CLIENT_SECRET}"
config["auth_token"] = 'zzz'
`)
	got := extractHardcodedSecrets(src, policy.DefaultThresholds())
	require.Len(t, got, 2)
	assert.Equal(t, `val dbPassword: String = "hunter2"`, got[0].snippet)
	assert.Equal(t, []interface{}{"API_KEY"}, got[1].args)
	assert.Equal(t, []int{1, 2}, lines(got))
}

func TestExtractHardcodedSecrets_EscapedLiteral(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		literal string
	}{
		{"backslashes", `    private String password = "ab\\cd\tX9";`, `ab\\cd\tX9`},
		{"escaped quote", `    private String apiToken = "ab\"cdef";`, `ab\"cdef`},
		{"single quoted", `    secret = 'it\'s-live'`, `it\'s-live`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := newSource("Creds.java", "class Creds {\n"+tt.line+"\n}\n")
			got := extractHardcodedSecrets(src, policy.DefaultThresholds())
			require.Len(t, got, 1)
			assert.Equal(t, tt.literal, got[0].value)
			assert.Contains(t, got[0].snippet, tt.literal)
		})
	}
}

func TestValidate_SecretSnippetKeepsLiteral(t *testing.T) {
	literal := `ab\\cd\tX9`
	code := "class Creds {\n    private String password = \"" + literal + "\";\n}\n"
	findings := Validate("Creds.java", code, policy.Default())

	var secrets []finding.Finding
	for _, f := range findings {
		if f.RuleID == RuleHardcodedSecret {
			secrets = append(secrets, f)
		}
	}
	require.Len(t, secrets, 1, "findings: %v", findings)
	assert.True(t, strings.Contains(secrets[0].CodeSnippet, literal), "snippet: %s", secrets[0].CodeSnippet)
}

func TestSplitWords(t *testing.T) {
	tests := map[string][]string{
		"prodPassword":   {"prod", "password"},
		"API_KEY":        {"api", "key"},
		"APIKey":         {"api", "key"},
		"secret":         {"secret"},
		"user2FactorPwd": {"user2", "factor", "pwd"},
		"_":              nil,
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, splitWords(in))
		})
	}
}

func TestExtractSQLInjection(t *testing.T) {
	src := newSource("Repo.java", `class Repo {
    String a = "SELECT name FROM users WHERE id = " + id;
    String b = "SELECT name FROM users WHERE id = ?";
    String c = String.format("DELETE FROM users WHERE id = %s", id);
    String d = "Failed to update user " + id;
}
`)
	got := extractSQLInjection(src, policy.DefaultThresholds())
	assert.Equal(t, []int{2, 4}, lines(got))
}

func TestExtractFieldInjection(t *testing.T) {
	src := newSource("Svc.java", `class Svc {
    @Autowired
    private Repo repo;

    @Inject @Named("x") private Clock clock;

    @Autowired
    public Svc(Repo repo) {}

    @Autowired
    public void setRepo(Repo repo) {}
}
`)
	got := extractFieldInjection(src, policy.DefaultThresholds())
	require.Len(t, got, 2)
	assert.Equal(t, []interface{}{"repo"}, got[0].args)
	assert.Equal(t, 3, got[0].line)
	assert.Equal(t, []interface{}{"clock"}, got[1].args)
}

func TestExtractEmptyCatches(t *testing.T) {
	src := newSource("Io.java", `class Io {
    void f() {
        try { read(); } catch (IOException e) { }
        try { read(); } catch (IOException e) {
            // ignored
        }
        try { read(); } catch (IOException e) { log(e); }
    }
}
`)
	got := extractEmptyCatches(src, policy.DefaultThresholds())
	assert.Equal(t, []int{3, 4}, lines(got))
}

func TestExtractEntityIdentity(t *testing.T) {
	with := newSource("Order.java", "@Entity\npublic class Order {\n  @Id\n  private Long id;\n}\n")
	assert.Empty(t, extractEntityIdentity(with, policy.DefaultThresholds()))

	without := newSource("Line.java", "@Entity\npublic class Line {\n  private Long id;\n}\n")
	got := extractEntityIdentity(without, policy.DefaultThresholds())
	require.Len(t, got, 1)
	assert.Equal(t, []interface{}{"Line"}, got[0].args)
	assert.Equal(t, 1, got[0].line)
}

func TestExtractMissingValidation(t *testing.T) {
	src := newSource("Api.java", `class Api {
    public void create(@RequestBody User user) {}
    public void update(@Valid @RequestBody User user, @PathVariable Long id) {}
}
`)
	got := extractMissingValidation(src, policy.DefaultThresholds())
	require.Len(t, got, 1)
	assert.Equal(t, []interface{}{"user"}, got[0].args)
	assert.Equal(t, 2, got[0].line)
}

func TestExtractWeakCryptoAndRandom(t *testing.T) {
	src := newSource("Hash.java", `class Hash {
    MessageDigest md = MessageDigest.getInstance("MD5");
    Cipher c = Cipher.getInstance("DES/ECB/PKCS5Padding");
    MessageDigest ok = MessageDigest.getInstance("SHA-256");
    Random r = new Random();
}
`)
	crypto := extractWeakCrypto(src, policy.DefaultThresholds())
	require.Len(t, crypto, 2)
	assert.Equal(t, []interface{}{"MD5"}, crypto[0].args)
	assert.Equal(t, []interface{}{"DES"}, crypto[1].args)

	random := extractInsecureRandom(src, policy.DefaultThresholds())
	require.Len(t, random, 1)
	assert.Equal(t, 5, random[0].line)
}

func TestExtractStringConcatInLoops(t *testing.T) {
	src := newSource("Join.java", `class Join {
    String join(List<String> parts) {
        String out = "";
        out += "[";
        for (String p : parts) {
            out += p + ",";
            for (int i = 0; i < 2; i++) {
                out = out + " ";
            }
            total += count;
        }
        return out;
    }
}
`)
	got := extractStringConcatInLoops(src, policy.DefaultThresholds())
	assert.ElementsMatch(t, []int{6, 8}, lines(got))
}

func TestExtractNPlusOne(t *testing.T) {
	src := newSource("Customer.java", `class Customer {
    @OneToMany(mappedBy = "customer")
    private List<Order> orders;
    @OneToMany(mappedBy = "customer", fetch = FetchType.LAZY)
    private List<Address> addresses;
}
`)
	assert.Equal(t, []int{2}, lines(extractNPlusOne(src, policy.DefaultThresholds())))
}
