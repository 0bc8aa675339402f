package models

import "time"

// Post represents a single observed social post, normalized from whatever
// source produced it. Once appended to the raw log a post is immutable.
type Post struct {
	ID         string                 `json:"id"`
	Platform   string                 `json:"platform"` // "reddit", "x", "youtube", "demo", "local"
	AuthorID   string                 `json:"author_id,omitempty"`
	IsFriend   bool                   `json:"is_friend"`
	Text       string                 `json:"text"`
	ObservedAt time.Time              `json:"observed_at"`
	TopicHint  string                 `json:"topic_hint,omitempty"`
	MediaMeta  map[string]interface{} `json:"media_meta,omitempty"`
}

// FeatureRecord holds the derived features for one post in the current
// rolling window. The sentiment scores are advisory only and never feed
// the topic aggregate.
type FeatureRecord struct {
	PostID        string  `json:"post_id"`
	Platform      string  `json:"platform"`
	Topic         string  `json:"topic"`
	Novelty       float64 `json:"novelty"`   // 1/(1+hours_since_post), in (0,1]
	IsFriend      int     `json:"is_friend"` // 0 or 1
	PositiveScore float64 `json:"positive_score"`
	NegativeScore float64 `json:"negative_score"`
	CompoundScore float64 `json:"compound_score"`
}

// TopicStat is one entry of the aggregate topic summary.
type TopicStat struct {
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// TagRun describes one completed tagging run over the window.
type TagRun struct {
	GeneratedAt time.Time            `json:"generated_at"`
	TotalPosts  int                  `json:"total_posts"`
	Topics      map[string]TopicStat `json:"topics"`
}
