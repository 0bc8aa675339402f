package sources

import "github.com/bublenz/feedpulse/internal/models"

// userAgent identifies the tracker to upstream APIs.
const userAgent = "feedpulse-tracker/0.1"

// deduplicatePosts drops repeated IDs, keeping first occurrence order.
func deduplicatePosts(posts []models.Post) []models.Post {
	seen := make(map[string]bool)
	var unique []models.Post

	for _, post := range posts {
		if !seen[post.ID] {
			seen[post.ID] = true
			unique = append(unique, post)
		}
	}

	return unique
}
