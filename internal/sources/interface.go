package sources

import (
	"context"
	"time"

	"github.com/bublenz/feedpulse/internal/models"
)

// Source interface defines the contract for all post providers
type Source interface {
	GetName() string
	FetchRecent(ctx context.Context, since time.Time) ([]models.Post, error)
	IsEnabled() bool
}
