package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// MASKING TESTS
// =============================================================================

func TestBlankCommentsAndStrings(t *testing.T) {
	text := "int a = 1; // trailing\n/* block\n comment */ String s = \"x{y}\";\nchar c = '{';"
	code, mask := blankCommentsAndStrings(text, commentStyle{slashes: true})

	require.Len(t, code, len(text))
	require.Len(t, mask, len(text))
	assert.Equal(t, "int a = 1;            \n        \n            String s = \"x{y}\";\nchar c = '{';", code)
	assert.Equal(t, "int a = 1;            \n        \n            String s = \"    \";\nchar c = ' ';", mask)
}

func TestBlankCommentsAndStrings_HashComments(t *testing.T) {
	code, mask := blankCommentsAndStrings("x = 5 # note\ny = \"#not\"", commentStyle{hash: true})
	assert.Equal(t, "x = 5       \ny = \"#not\"", code)
	assert.Equal(t, "x = 5       \ny = \"    \"", mask)
}

// =============================================================================
// BLOCK STRUCTURE TESTS
// =============================================================================

type blockSummary struct {
	Kind   blockKind
	Name   string
	Params int
	Header int
	Open   int
	Close  int
	Depth  int
}

func summarize(blocks []*block) []blockSummary {
	out := make([]blockSummary, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockSummary{
			Kind: b.kind, Name: b.name, Params: len(b.params),
			Header: b.headerLine, Open: b.openLine, Close: b.closeLine, Depth: b.depth,
		})
	}
	return out
}

func TestParseBlocks_Java(t *testing.T) {
	src := newSource("Orders.java", `@Entity
@Table(name = "orders")
public class Orders
        extends Base {
    public Orders(Long id,
                  String name) {
        super(id);
    }

    public void ship() throws IOException {
        for (Item item : items) {
            try {
                if (item.ready()) {
                    send(item);
                } else if (item.late()) {
                    warn();
                }
            } catch (IOException e) {
            }
        }
        Runnable r = new Runnable() {
            public void run() {}
        };
        items.forEach(i -> {
            log(i);
        });
    }
}
`)
	want := []blockSummary{
		{Kind: blockType, Name: "Orders", Header: 3, Open: 4, Close: 28},
		{Kind: blockMethod, Name: "Orders", Params: 2, Header: 5, Open: 6, Close: 8},
		{Kind: blockMethod, Name: "ship", Header: 10, Open: 10, Close: 27},
		{Kind: blockLoop, Header: 11, Open: 11, Close: 20, Depth: 1},
		{Kind: blockGuard, Header: 12, Open: 12, Close: 18, Depth: 1},
		{Kind: blockConditional, Header: 13, Open: 13, Close: 15, Depth: 2},
		{Kind: blockConditional, Header: 15, Open: 15, Close: 17, Depth: 2},
		{Kind: blockGuard, Header: 18, Open: 18, Close: 19, Depth: 1},
		{Kind: blockOther, Header: 21, Open: 21, Close: 23},
		{Kind: blockMethod, Name: "run", Header: 22, Open: 22, Close: 22},
		{Kind: blockOther, Header: 24, Open: 24, Close: 26},
	}
	if diff := cmp.Diff(want, summarize(src.blocks)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_Go(t *testing.T) {
	src := newSource("server.go", `package server

type Server struct {
	addr string
}

func (s *Server) Handle(ctx context.Context, req *Request) (*Response, error) {
	for i := 0; i < 3; i++ {
		if err := s.try(ctx); err != nil {
			return nil, err
		}
	}
	return &Response{}, nil
}
`)
	want := []blockSummary{
		{Kind: blockType, Name: "Server", Header: 3, Open: 3, Close: 5},
		{Kind: blockMethod, Name: "Handle", Params: 2, Header: 7, Open: 7, Close: 14},
		{Kind: blockLoop, Header: 8, Open: 8, Close: 12, Depth: 1},
		{Kind: blockConditional, Header: 9, Open: 9, Close: 11, Depth: 2},
		{Kind: blockOther, Header: 13, Open: 13, Close: 13},
	}
	if diff := cmp.Diff(want, summarize(src.blocks)); diff != "" {
		t.Errorf("blocks mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlocks_Unterminated(t *testing.T) {
	src := newSource("Broken.java", "class Broken {\n  void f() {\n    int x;\n")
	require.Len(t, src.blocks, 2)
	assert.Equal(t, 4, src.blocks[0].closeLine)
	assert.Equal(t, 4, src.blocks[1].closeLine)
}

// manyMethods builds a class with n methods whose signatures wrap onto a
// second line. Method k starts on line 2+4k.
func manyMethods(n int) string {
	var sb strings.Builder
	sb.WriteString("public class Big {\n")
	for k := 0; k < n; k++ {
		fmt.Fprintf(&sb, "    public void m%d(\n            int a) {\n        run();\n    }\n", k)
	}
	sb.WriteString("}\n")
	return sb.String()
}

func TestParseBlocks_HeaderLinesAcrossManyMethods(t *testing.T) {
	const n = 500
	src := newSource("Big.java", manyMethods(n))
	require.Len(t, src.blocks, n+1)
	assert.Equal(t, 1, src.blocks[0].headerLine)

	for k := 0; k < n; k++ {
		b := src.blocks[k+1]
		require.Equal(t, blockMethod, b.kind, "block %d", k)
		assert.Equal(t, fmt.Sprintf("m%d", k), b.name)
		assert.Equal(t, 2+4*k, b.headerLine, "header of m%d", k)
		assert.Equal(t, 3+4*k, b.openLine, "open of m%d", k)
	}
}

func BenchmarkParseBlocks(b *testing.B) {
	for _, n := range []int{2000, 8000} {
		_, mask := blankCommentsAndStrings(manyMethods(n), commentStyle{slashes: true})
		b.Run(fmt.Sprintf("methods=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(mask)))
			for i := 0; i < b.N; i++ {
				parseBlocks(mask)
			}
		})
	}
}

func TestSplitParams(t *testing.T) {
	tests := []struct {
		list string
		want []string
	}{
		{"", nil},
		{"String a", []string{"String a"}},
		{"Map<String, Integer> m, int n", []string{"Map<String, Integer> m", "int n"}},
		{"@RequestParam(name = \"a\", required = false) String a, int b", []string{"@RequestParam(name = \"a\", required = false) String a", "int b"}},
	}
	for _, tt := range tests {
		t.Run(tt.list, func(t *testing.T) {
			assert.Equal(t, tt.want, splitParams(tt.list))
		})
	}
}
