package favorites

import (
	"context"

	"favdupes/pkg/twitter"
)

// TwitterClient defines the API operations the service needs
type TwitterClient interface {
	VerifyCredentials(ctx context.Context) (*twitter.User, error)
	GetFavorites(ctx context.Context, screenName string, count int) ([]twitter.Tweet, error)
	GetUserTimeline(ctx context.Context, screenName string, count int) ([]twitter.Tweet, error)
	Unfavorite(ctx context.Context, id string) (*twitter.Tweet, error)
}
