package tagging

import "strings"

// DefaultTopic is assigned when no keyword matches.
const DefaultTopic = "other"

type topicEntry struct {
	name     string
	keywords []string
}

// topicTable is the fixed keyword-to-topic table. Declaration order is the
// tie-break order when several topics score the same number of hits.
var topicTable = []topicEntry{
	{"education", []string{"education", "learn", "study", "school", "university", "college", "class", "course", "teacher", "students", "exam", "teach"}},
	{"technology", []string{"tech", "technology", "ai", "artificial intelligence", "machine learning", "software", "app", "computer", "robot", "electronics", "gadget"}},
	{"entertainment", []string{"music", "movie", "film", "song", "concert", "tv", "series", "game", "gaming", "show", "celebrity"}},
	{"news", []string{"news", "breaking", "headline", "journalist", "report", "article", "press", "media", "update"}},
	{"sports", []string{"sport", "football", "soccer", "basketball", "tennis", "match", "team", "goal", "score", "tournament"}},
	{"science", []string{"science", "research", "experiment", "laboratory", "scientist", "physics", "chemistry", "biology", "space", "nasa"}},
	{"health", []string{"health", "medicine", "medical", "doctor", "patient", "hospital", "wellness", "fitness", "diet"}},
	{"politics", []string{"politics", "election", "government", "policy", "senate", "president", "parliament", "vote", "law", "minister"}},
	{"business", []string{"business", "startup", "entrepreneur", "economy", "finance", "market", "investment", "stock", "company"}},
}

// Topics returns the closed topic set in declaration order, without the
// fallback topic.
func Topics() []string {
	names := make([]string, len(topicTable))
	for i, entry := range topicTable {
		names[i] = entry.name
	}
	return names
}

// ClassifyTopic scores every topic by the number of keyword hits in the
// text and returns the best one. Ties resolve to the earliest declared
// topic; zero hits everywhere falls back to DefaultTopic.
func ClassifyTopic(text string) string {
	norm := strings.ToLower(strings.TrimSpace(text))
	if norm == "" {
		return DefaultTopic
	}

	best := DefaultTopic
	bestScore := 0

	for _, entry := range topicTable {
		score := 0
		for _, keyword := range entry.keywords {
			if strings.Contains(norm, keyword) {
				score++
			}
		}
		if score > bestScore {
			best = entry.name
			bestScore = score
		}
	}

	return best
}
