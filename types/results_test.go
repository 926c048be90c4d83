package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestInsightsMarshalStructuredAndRaw(t *testing.T) {
	structured := Insights{Analysis: EmptyAnalysis()}
	b, err := json.Marshal(structured)
	if err != nil {
		t.Fatalf("marshal structured: %v", err)
	}
	want := `{"themes":[],"insights":[],"implications":[],"related_areas":[]}`
	if string(b) != want {
		t.Fatalf("structured insights = %s; want %s", b, want)
	}

	raw := Insights{Raw: "plain reply"}
	b, err = json.Marshal(raw)
	if err != nil {
		t.Fatalf("marshal raw: %v", err)
	}
	if string(b) != `"plain reply"` {
		t.Fatalf("raw insights = %s", b)
	}

	var decoded Insights
	if err := json.Unmarshal([]byte(want), &decoded); err != nil {
		t.Fatalf("unmarshal structured: %v", err)
	}
	if !decoded.IsStructured() {
		t.Fatal("expected structured insights after decode")
	}
}

func TestStringListAcceptsLooseShapes(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"array", `["a","b"]`, []string{"a", "b"}},
		{"single string", `"only"`, []string{"only"}},
		{"empty string", `""`, []string{}},
		{"null", `null`, []string{}},
		{"objects", `[{"k":1},"x"]`, []string{`{"k":1}`, "x"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var l StringList
			if err := json.Unmarshal([]byte(c.in), &l); err != nil {
				t.Fatalf("unmarshal %s: %v", c.in, err)
			}
			if strings.Join(l, "|") != strings.Join(c.want, "|") || len(l) != len(c.want) {
				t.Fatalf("got %q; want %q", l, c.want)
			}
		})
	}

	var l StringList
	if err := json.Unmarshal([]byte(`42`), &l); err == nil {
		t.Fatal("expected error for a bare number")
	}
}

func TestProcessedArticleDropsRawContent(t *testing.T) {
	a := &Article{ID: "1", Title: "T", RawContent: "<p>x</p>", Content: "x", Categories: []string{}}
	b, err := json.Marshal(ProcessedArticles([]*Article{a, nil}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "raw_content") {
		t.Fatalf("processed view leaked raw_content: %s", b)
	}
	if strings.Contains(string(b), "embedding") {
		t.Fatalf("unembedded article should omit embedding: %s", b)
	}
}
