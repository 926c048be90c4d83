package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// FeedSource is a single RSS endpoint
type FeedSource struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// DefaultFeeds lists the preset names used when RSS_FEEDS is not set
var DefaultFeeds = []string{"wired", "techreview"}

// FeedPresets maps friendly keys to RSS feed sources
var FeedPresets = map[string]FeedSource{
	"wired": {
		Name: "Wired",
		URL:  "https://www.wired.com/feed/rss",
	},
	"techreview": {
		Name: "MIT Technology Review",
		URL:  "https://www.technologyreview.com/feed/",
	},
	"tc": {
		Name: "TechCrunch",
		URL:  "https://feeds.feedburner.com/TechCrunch/",
	},
	"verge": {
		Name: "The Verge",
		URL:  "https://www.theverge.com/rss/index.xml",
	},
	"hn": {
		Name: "Hacker News",
		URL:  "https://hnrss.org/newest",
	},
}

// ResolveFeed resolves a feed identifier to a source.
// If the input is a preset name, returns the corresponding source.
// Otherwise, the input is treated as a direct URL.
func ResolveFeed(feedInput string) FeedSource {
	key := strings.ToLower(strings.TrimSpace(feedInput))
	if src, exists := FeedPresets[key]; exists {
		return src
	}
	return FeedSource{Name: strings.TrimSpace(feedInput), URL: strings.TrimSpace(feedInput)}
}

// ResolveFeeds resolves a list of preset names or URLs, dropping blanks and
// duplicate URLs while preserving order.
func ResolveFeeds(inputs []string) []FeedSource {
	seen := make(map[string]struct{}, len(inputs))
	out := make([]FeedSource, 0, len(inputs))
	for _, in := range inputs {
		if strings.TrimSpace(in) == "" {
			continue
		}
		src := ResolveFeed(in)
		if _, dup := seen[src.URL]; dup {
			continue
		}
		seen[src.URL] = struct{}{}
		out = append(out, src)
	}
	return out
}

type feedsFile struct {
	Feeds []FeedSource `yaml:"feeds"`
}

// LoadFeedsFile reads a YAML document of the form:
//
//	feeds:
//	  - name: Wired
//	    url: https://www.wired.com/feed/rss
//	  - name: hn        # preset names are accepted without a url
func LoadFeedsFile(path string) ([]FeedSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	var parsed feedsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse feeds file %s: %w", path, err)
	}

	out := make([]FeedSource, 0, len(parsed.Feeds))
	for i, f := range parsed.Feeds {
		switch {
		case strings.TrimSpace(f.URL) != "":
			if f.Name == "" {
				f.Name = f.URL
			}
			out = append(out, FeedSource{Name: strings.TrimSpace(f.Name), URL: strings.TrimSpace(f.URL)})
		case strings.TrimSpace(f.Name) != "":
			src, ok := FeedPresets[strings.ToLower(strings.TrimSpace(f.Name))]
			if !ok {
				return nil, fmt.Errorf("feeds file entry %d: unknown preset %q and no url", i, f.Name)
			}
			out = append(out, src)
		default:
			return nil, fmt.Errorf("feeds file entry %d: name or url required", i)
		}
	}
	return out, nil
}

// mergeFeeds appends extra sources that are not already present by URL
func mergeFeeds(base, extra []FeedSource) []FeedSource {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]FeedSource, 0, len(base)+len(extra))
	for _, list := range [][]FeedSource{base, extra} {
		for _, f := range list {
			if _, dup := seen[f.URL]; dup {
				continue
			}
			seen[f.URL] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}
