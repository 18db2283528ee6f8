// Package budget estimates token usage so page text sent for analysis fits
// the model's context window.
package budget

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"
)

// charsPerToken is a conservative estimate for English prose.
const charsPerToken = 4

// DefaultContextTokens is assumed for models not listed in knownModelMax.
const DefaultContextTokens = 8192

// EstimateTokensFromChars converts a byte count into an estimated token
// count. The result is at least 1 when chars > 0.
func EstimateTokensFromChars(charCount int) int {
	if charCount <= 0 {
		return 0
	}
	return int(math.Ceil(float64(charCount) / charsPerToken))
}

// EstimateTokens returns the estimated token count of a string.
func EstimateTokens(s string) int {
	return EstimateTokensFromChars(len(s))
}

// ModelContextTokens returns the context window for a model name. Dated or
// "-latest" aliases resolve through their family prefix.
func ModelContextTokens(modelName string) int {
	name := strings.ToLower(strings.TrimSpace(modelName))
	if name == "" {
		return DefaultContextTokens
	}
	if v, ok := knownModelMax[name]; ok {
		return v
	}
	best, bestLen := 0, 0
	for prefix, v := range knownModelMax {
		if strings.HasPrefix(name, prefix+"-") && len(prefix) > bestLen {
			best, bestLen = v, len(prefix)
		}
	}
	if bestLen > 0 {
		return best
	}
	if strings.HasPrefix(name, "claude-") {
		return 200_000
	}
	switch {
	case strings.HasSuffix(name, "1m"):
		return 1_000_000
	case strings.HasSuffix(name, "200k"):
		return 200_000
	case strings.HasSuffix(name, "128k"):
		return 128_000
	}
	return DefaultContextTokens
}

// HeadroomTokens is the larger of 5% of the model context or 512 tokens,
// reserved for tokenizer error and message framing.
func HeadroomTokens(modelName string) int {
	ctx := ModelContextTokens(modelName)
	dyn := (ctx + 19) / 20
	if dyn < 512 {
		return 512
	}
	return dyn
}

// RemainingContext returns the input tokens left after reserving output and
// headroom and subtracting promptTokens. Never negative.
func RemainingContext(modelName string, reservedForOutput, promptTokens int) int {
	if reservedForOutput < 0 {
		reservedForOutput = 0
	}
	remaining := ModelContextTokens(modelName) - reservedForOutput - HeadroomTokens(modelName) - promptTokens
	if remaining < 0 {
		return 0
	}
	return remaining
}

// UserMessageTokens is the budget available to the user message once the
// system prompt and the reply reservation are accounted for.
func UserMessageTokens(modelName string, maxOutputTokens int, system string) int {
	return RemainingContext(modelName, maxOutputTokens, EstimateTokens(system))
}

// TruncateToTokens shortens s so its estimate does not exceed maxTokens,
// cutting at a rune boundary and preferring the last whitespace in the final
// tenth of the allowance. It reports whether s was shortened.
func TruncateToTokens(s string, maxTokens int) (string, bool) {
	if maxTokens <= 0 {
		return "", s != ""
	}
	limit := maxTokens * charsPerToken
	if len(s) <= limit {
		return s, false
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	floor := cut - cut/10
	if i := strings.LastIndexFunc(s[:cut], unicode.IsSpace); i >= floor && i > 0 {
		cut = i
	}
	return strings.TrimRightFunc(s[:cut], unicode.IsSpace), true
}

// knownModelMax holds approximate context sizes by model family.
var knownModelMax = map[string]int{
	"claude-3-5-sonnet":  200_000,
	"claude-3-5-haiku":   200_000,
	"claude-3-7-sonnet":  200_000,
	"claude-3-opus":      200_000,
	"claude-3-sonnet":    200_000,
	"claude-3-haiku":     200_000,
	"claude-2.1":         200_000,
	"claude-2.0":         100_000,
	"claude-instant-1.2": 100_000,
}
