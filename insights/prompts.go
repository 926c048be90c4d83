package insights

import (
	"fmt"
	"strings"

	"newsradar/types"
)

const (
	analystSystemPrompt    = "You are a news analyst providing insights about technology and AI news."
	summarizerSystemPrompt = "You are a news summarizer providing concise summaries of technology and AI news."

	analysisTemperature = 0.7
	analysisMaxTokens   = 1000
	summaryTemperature  = 0.5
	summaryMaxTokens    = 500

	// maxSummaryInput bounds the article text sent for summarization
	maxSummaryInput = 12000
)

func buildAnalysisPrompt(matches []types.Match, includeContent bool) string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		if includeContent {
			blocks = append(blocks, fmt.Sprintf("Title: %s\nContent: %s", m.Title, m.Content))
		} else {
			blocks = append(blocks, fmt.Sprintf("Title: %s", m.Title))
		}
	}

	return fmt.Sprintf(`Analyze these news articles and provide insights:

%s

Please provide:
1. Main themes and topics
2. Key insights and trends
3. Potential implications
4. Related areas of interest

Format the response as a JSON object with these keys: themes, insights, implications, related_areas.
Each value must be a list of strings.`, strings.Join(blocks, "\n\n"))
}

func buildSummaryPrompt(title, content string) string {
	if len(content) > maxSummaryInput {
		content = truncateUTF8(content, maxSummaryInput)
	}
	return fmt.Sprintf(`Summarize this news article:

Title: %s
Content: %s

Please provide a concise summary focusing on the key points and implications.`, title, content)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && (s[n]&0xC0) == 0x80 {
		n--
	}
	return s[:n]
}
