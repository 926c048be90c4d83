package insights

import (
	"encoding/json"
	"regexp"
	"strings"

	"newsradar/types"
)

var (
	labeledFence   = regexp.MustCompile("(?is)```json\\s*(.*?)```")
	unlabeledFence = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)```")
)

// parseStrategy extracts a candidate JSON document from a model reply
type parseStrategy func(reply string) (string, bool)

// strategies are tried in order; the first candidate that decodes wins
var strategies = []parseStrategy{
	fromLabeledFence,
	fromUnlabeledFence,
	fromBareJSON,
}

// ParseAnalysis decodes a model reply into structured insights. Keys the object
// lacks decode as empty lists; when no strategy yields a JSON object, the raw reply is kept.
func ParseAnalysis(reply string) types.Insights {
	for _, strategy := range strategies {
		candidate, ok := strategy(reply)
		if !ok {
			continue
		}
		if analysis, ok := decodeAnalysis(candidate); ok {
			return types.Insights{Analysis: analysis}
		}
	}
	return types.Insights{Raw: strings.TrimSpace(reply)}
}

func fromLabeledFence(reply string) (string, bool) {
	m := labeledFence.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func fromUnlabeledFence(reply string) (string, bool) {
	m := unlabeledFence.FindStringSubmatch(reply)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func fromBareJSON(reply string) (string, bool) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return reply[start : end+1], true
}

func decodeAnalysis(candidate string) (*types.AnalysisResult, bool) {
	candidate = strings.TrimSpace(candidate)
	if !strings.HasPrefix(candidate, "{") {
		return nil, false
	}

	analysis := types.EmptyAnalysis()
	if err := json.Unmarshal([]byte(candidate), analysis); err != nil {
		return nil, false
	}
	// keys present as null decode to nil
	for _, l := range []*types.StringList{&analysis.Themes, &analysis.Insights, &analysis.Implications, &analysis.RelatedAreas} {
		if *l == nil {
			*l = types.StringList{}
		}
	}
	return analysis, true
}
