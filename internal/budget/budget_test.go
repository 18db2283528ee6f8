package budget

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestEstimateTokensFromChars(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 0},
		{1, 1}, // ceil(1/4)=1
		{4, 1},
		{5, 2},
		{400, 100},
	}
	for _, c := range cases {
		if got := EstimateTokensFromChars(c.in); got != c.want {
			t.Fatalf("EstimateTokensFromChars(%d) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestModelContextTokens(t *testing.T) {
	cases := map[string]int{
		"":                           DefaultContextTokens,
		"claude-3-5-sonnet":          200_000,
		"claude-3-5-sonnet-latest":   200_000,
		"CLAUDE-3-5-SONNET-20241022": 200_000,
		"claude-2.0":                 100_000,
		"claude-sonnet-4-0":          200_000,
		"mystery-128k":               128_000,
		"mystery":                    DefaultContextTokens,
	}
	for name, want := range cases {
		if got := ModelContextTokens(name); got != want {
			t.Errorf("ModelContextTokens(%q) = %d, want %d", name, got, want)
		}
	}
}

func TestHeadroomTokens(t *testing.T) {
	if HeadroomTokens("claude-3-5-sonnet") != 10_000 {
		t.Fatalf("5%% of 200k should be 10000, got %d", HeadroomTokens("claude-3-5-sonnet"))
	}
	if HeadroomTokens("") != 512 { // 5% of 8192 is 410, floor is 512
		t.Fatal("default model headroom should floor to 512")
	}
}

func TestRemainingContext(t *testing.T) {
	model := "claude-3-5-sonnet"
	// 200000 - 1000 - 10000 - 9000 = 180000
	if got := RemainingContext(model, 1000, 9000); got != 180_000 {
		t.Fatalf("RemainingContext = %d", got)
	}
	if got := RemainingContext(model, 1000, 500_000); got != 0 {
		t.Fatalf("overflow should clamp to 0, got %d", got)
	}
	if got := UserMessageTokens("", 1000, strings.Repeat("s", 400)); got != 8192-1000-512-100 {
		t.Fatalf("UserMessageTokens = %d", got)
	}
}

func TestTruncateToTokens(t *testing.T) {
	short := "fits easily"
	if got, cut := TruncateToTokens(short, 100); got != short || cut {
		t.Fatalf("short text changed: %q %v", got, cut)
	}

	words := strings.Repeat("word ", 100) // 500 bytes
	got, cut := TruncateToTokens(words, 10)
	if !cut {
		t.Fatal("expected truncation")
	}
	if len(got) > 40 {
		t.Fatalf("truncated length %d exceeds 40", len(got))
	}
	if strings.HasSuffix(got, " ") || !strings.HasSuffix(got, "word") {
		t.Fatalf("expected cut at word boundary, got %q", got)
	}

	multi := strings.Repeat("é", 50) // 100 bytes, no spaces
	got, _ = TruncateToTokens(multi, 5)
	if !utf8.ValidString(got) || len(got) > 20 {
		t.Fatalf("invalid cut: %q", got)
	}

	if got, cut := TruncateToTokens("x", 0); got != "" || !cut {
		t.Fatalf("zero budget should drop text, got %q %v", got, cut)
	}
}
