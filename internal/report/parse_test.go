package report

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestParse_SampleReply(t *testing.T) {
	raw := "Polarization score: 150\nMain viewpoint summary: Biased piece.\nDetected biases:\n- One\n- Two\nMissing perspectives:\nAlternative viewpoints:\n- [Title](http://x.com) - desc"
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := Report{
		PolarizationScore:     100,
		Summary:               "Biased piece.",
		Biases:                []string{"One", "Two"},
		MissingPerspectives:   []string{},
		AlternativeViewpoints: []Viewpoint{{Title: "Title", URL: "http://x.com", Description: "desc"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse() = %+v\nwant %+v", got, want)
	}
}

func TestParse_NoLabelsYieldsDefaults(t *testing.T) {
	got, err := Parse("I'm sorry, I can't evaluate this page.")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.PolarizationScore != DefaultScore || got.Summary != "" {
		t.Fatalf("unexpected defaults: %+v", got)
	}
	if got.Biases == nil || got.MissingPerspectives == nil || got.AlternativeViewpoints == nil {
		t.Fatalf("list fields must be non-nil: %+v", got)
	}
	if len(got.Biases)+len(got.MissingPerspectives)+len(got.AlternativeViewpoints) != 0 {
		t.Fatalf("expected empty lists: %+v", got)
	}
}

func TestParse_FullReplyAnyOrder(t *testing.T) {
	raw := `Alternative viewpoints:
• [Transit Riders Speak](https://example.com/riders) - Commuters on service cuts
• [Budget Office Review](https://example.com/budget): Independent cost analysis
• Local business owners' perspective
• [Fourth](https://example.com/4) - dropped

Missing perspectives:
* Riders with disabilities
* Rural commuters
* Transit workers
* Fourth one

**Detected biases:**
1. Loaded language about "wasteful" spending
2) Selective quoting of opponents
3. Omitted cost data
4. Extra

Main viewpoint summary: The author argues the expansion is a costly mistake! Later sentences are ignored.
Polarization score: 72`

	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.PolarizationScore != 72 {
		t.Fatalf("score = %d", got.PolarizationScore)
	}
	if got.Summary != "The author argues the expansion is a costly mistake!" {
		t.Fatalf("summary = %q", got.Summary)
	}
	wantBiases := []string{`Loaded language about "wasteful" spending`, "Selective quoting of opponents", "Omitted cost data"}
	if !reflect.DeepEqual(got.Biases, wantBiases) {
		t.Fatalf("biases = %q", got.Biases)
	}
	wantMissing := []string{"Riders with disabilities", "Rural commuters", "Transit workers"}
	if !reflect.DeepEqual(got.MissingPerspectives, wantMissing) {
		t.Fatalf("missing = %q", got.MissingPerspectives)
	}
	wantAlt := []Viewpoint{
		{Title: "Transit Riders Speak", URL: "https://example.com/riders", Description: "Commuters on service cuts"},
		{Title: "Budget Office Review", URL: "https://example.com/budget", Description: "Independent cost analysis"},
		{Title: "Local business owners' perspective", URL: PlaceholderURL},
	}
	if !reflect.DeepEqual(got.AlternativeViewpoints, wantAlt) {
		t.Fatalf("alternatives = %+v", got.AlternativeViewpoints)
	}
}

func TestScore(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"Polarization score: 42", 42},
		{"polarization SCORE: 7/100", 7},
		{"**Polarization score:** 88", 88},
		{"Polarization score: -20", 0},
		{"Polarization score: 1000", 100},
		{"Polarization score: high", DefaultScore},
		{"Polarization score:\n55", 55},
		{"**Polarization score:**\n\n  **63**", 63},
		{"Polarization score:\nMain viewpoint summary: 3 sides", DefaultScore},
		{"Polarization score: 99999999999999999999999", MaxScore},
		{"Polarization score: -99999999999999999999999", MinScore},
		{"", DefaultScore},
	}
	for _, tc := range cases {
		if got := Score(tc.in); got != tc.want {
			t.Errorf("Score(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestSummary(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"same line", "Main viewpoint summary: First. Second.", "First."},
		{"next line", "Main viewpoint summary:\nIt is one-sided.\nDetected biases:\n- x", "It is one-sided."},
		{"no terminator", "Main viewpoint summary: No period here", "No period here"},
		{"question", "main viewpoint summary: Is it fair? Maybe.", "Is it fair?"},
		{"quoted", `Main viewpoint summary: He called it "a failure." Then more.`, `He called it "a failure."`},
		{"absent", "Nothing relevant", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Summary(tc.in); got != tc.want {
				t.Fatalf("Summary() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSection_PrefersLabelAtLineStart(t *testing.T) {
	raw := "Main viewpoint summary: The piece has no detected biases worth noting.\nDetected biases:\n- Framing\n"
	if got := List(raw, LabelBiases); !reflect.DeepEqual(got, []string{"Framing"}) {
		t.Fatalf("List() = %q", got)
	}
}

func TestSection_InlineItemsAndURLLines(t *testing.T) {
	raw := "Detected biases: Appeal to fear\n- Cherry picking\nhttp://not-a-header.example\nSources:\n- ignored"
	want := []string{"Appeal to fear", "Cherry picking", "http://not-a-header.example"}
	if got := List(raw, LabelBiases); !reflect.DeepEqual(got, want) {
		t.Fatalf("List() = %q, want %q", got, want)
	}
}

func TestSection_PhraseColonItemsStayInSection(t *testing.T) {
	raw := `Polarization score: 70
Detected biases:
Confirmation bias: cites one side
Framing bias: loaded adjectives throughout
Missing perspectives:
- Labor
Alternative viewpoints:
The Other Side: a rebuttal
[Union Voice](https://example.org/union): workers' account
Sources:
- ignored`
	got, err := Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	wantBiases := []string{"Confirmation bias: cites one side", "Framing bias: loaded adjectives throughout"}
	if !reflect.DeepEqual(got.Biases, wantBiases) {
		t.Fatalf("biases = %q", got.Biases)
	}
	if !reflect.DeepEqual(got.MissingPerspectives, []string{"Labor"}) {
		t.Fatalf("missing = %q", got.MissingPerspectives)
	}
	wantAlt := []Viewpoint{
		{Title: "The Other Side: a rebuttal", URL: PlaceholderURL},
		{Title: "Union Voice", URL: "https://example.org/union", Description: "workers' account"},
	}
	if !reflect.DeepEqual(got.AlternativeViewpoints, wantAlt) {
		t.Fatalf("alternatives = %+v", got.AlternativeViewpoints)
	}
}

func TestSection_HeaderLines(t *testing.T) {
	cases := map[string]bool{
		"## Notes":                          true,
		"Sources:":                          true,
		"**Detected biases:**":              true,
		"Missing perspectives: none given":  true,
		"> Alternative viewpoints":          true,
		"Confirmation bias: cites one side": false,
		"http://example.org/a":              false,
		"- Framing: loaded words":           false,
	}
	for line, want := range cases {
		if got := isHeader(line); got != want {
			t.Errorf("isHeader(%q) = %v, want %v", line, got, want)
		}
	}
}

func TestViewpoints_DropsEmptyTitles(t *testing.T) {
	raw := "Alternative viewpoints:\n- [](https://example.com/empty) - no title\n- [Kept]() - no url\n-\n"
	want := []Viewpoint{{Title: "Kept", URL: PlaceholderURL, Description: "no url"}}
	if got := Viewpoints(raw); !reflect.DeepEqual(got, want) {
		t.Fatalf("Viewpoints() = %+v", got)
	}
}

func TestParse_InvariantsHoldForArbitraryReplies(t *testing.T) {
	replies := []string{
		"Polarization score: 9999\nDetected biases:\n" + strings.Repeat("- b\n", 10),
		"Missing perspectives:\n" + strings.Repeat("* m\n", 7) + "Alternative viewpoints:\n" + strings.Repeat("- [t](u) d\n", 9),
		"Polarization score: -3",
		"random text: with colon\n\n\n",
		strings.Repeat("Alternative viewpoints:\n- x\n", 5),
	}
	for _, raw := range replies {
		got, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if got.PolarizationScore < MinScore || got.PolarizationScore > MaxScore {
			t.Fatalf("score out of range: %d", got.PolarizationScore)
		}
		if len(got.Biases) > MaxItems || len(got.MissingPerspectives) > MaxItems || len(got.AlternativeViewpoints) > MaxItems {
			t.Fatalf("list over limit: %+v", got)
		}
	}
}

func TestParse_RejectsInvalidUTF8(t *testing.T) {
	_, err := Parse(string([]byte{0xff, 0xfe, 'a'}))
	if !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestLevelFor(t *testing.T) {
	cases := map[int]string{-5: "balanced", 0: "balanced", 30: "balanced", 31: "slight", 60: "slight", 61: "moderate", 80: "moderate", 81: "extreme", 150: "extreme"}
	for score, want := range cases {
		if got := LevelFor(score).Name; got != want {
			t.Errorf("LevelFor(%d) = %s, want %s", score, got, want)
		}
	}
}

func TestClone_Independent(t *testing.T) {
	r := Report{Biases: []string{"a"}, MissingPerspectives: []string{}, AlternativeViewpoints: []Viewpoint{{Title: "t"}}}
	c := r.Clone()
	c.Biases[0] = "changed"
	c.AlternativeViewpoints[0].Title = "changed"
	if r.Biases[0] != "a" || r.AlternativeViewpoints[0].Title != "t" {
		t.Fatalf("clone shares backing arrays")
	}
}
