package favorites

import (
	"context"
	"fmt"
	"time"

	"favdupes/pkg/auth"
	"favdupes/pkg/config"
	"favdupes/pkg/dupes"
	"favdupes/pkg/logger"
	"favdupes/pkg/twitter"
	"favdupes/pkg/urls"
)

// Options select whose likes are read and how they are compared
type Options struct {
	// ScreenName is empty for the authenticated user
	ScreenName string
	Count      int
	Strategy   string
}

// Report is the outcome of a duplicate scan
type Report struct {
	ScreenName string          `json:"screen_name" yaml:"screen_name"`
	Strategy   string          `json:"strategy" yaml:"strategy"`
	Fetched    int             `json:"fetched" yaml:"fetched"`
	Unique     int             `json:"unique" yaml:"unique"`
	Duplicates int             `json:"duplicates" yaml:"duplicates"`
	Groups     []dupes.Group   `json:"groups" yaml:"groups"`
	Tweets     []twitter.Tweet `json:"-" yaml:"-"`
}

// Failure is one unfavorite that did not go through
type Failure struct {
	ID    string `json:"id" yaml:"id"`
	Error string `json:"error" yaml:"error"`
}

// RemoveResult lists what RemoveDupes did, or would do on a dry run
type RemoveResult struct {
	DryRun  bool      `json:"dry_run" yaml:"dry_run"`
	Planned []string  `json:"planned" yaml:"planned"`
	Removed []string  `json:"removed" yaml:"removed"`
	// Skipped extras are the kept post itself or a retweet of the same
	// post; unfavoriting them would drop the kept like too.
	Skipped []string  `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Failed  []Failure `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Service orchestrates login, fetching and duplicate handling
type Service struct {
	client TwitterClient
	opts   Options
	logger logger.Logger
	user   *twitter.User
}

// New creates a Service over any TwitterClient
func New(client TwitterClient, opts Options, log logger.Logger) *Service {
	if opts.Strategy == "" {
		opts.Strategy = dupes.StrategyText
	}
	return &Service{
		client: client,
		opts:   opts,
		logger: logger.OrDefault(log).WithField("component", "favorites"),
	}
}

// NewFromConfig builds the signed API client from creds and cfg
func NewFromConfig(cfg *config.Config, creds *auth.Credentials, log logger.Logger) *Service {
	client := twitter.NewClient(twitter.Credentials{
		ConsumerKey:       creds.ConsumerKey,
		ConsumerSecret:    creds.ConsumerSecret,
		AccessToken:       creds.AccessToken,
		AccessTokenSecret: creds.AccessTokenSecret,
	}, time.Duration(cfg.Twitter.TimeoutSeconds)*time.Second, log)
	client.SetBaseURL(cfg.Twitter.APIBaseURL)

	return New(client, Options{
		ScreenName: twitter.SanitizeScreenName(cfg.Favorites.ScreenName),
		Count:      cfg.Favorites.Count,
		Strategy:   cfg.Dupes.Strategy,
	}, log)
}

// Login verifies the credentials and remembers the authenticated user
func (s *Service) Login(ctx context.Context) (*twitter.User, error) {
	user, err := s.client.VerifyCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	s.user = user

	s.logger.InfoWithFields("login succeeded", map[string]interface{}{
		"screen_name": user.ScreenName,
	})
	return user, nil
}

// User returns the user from the last Login, or nil
func (s *Service) User() *twitter.User {
	return s.user
}

// target is the screen name reads apply to, for display and logs
func (s *Service) target() string {
	if s.opts.ScreenName != "" {
		return s.opts.ScreenName
	}
	if s.user != nil {
		return s.user.ScreenName
	}
	return ""
}

// Favorites fetches one page of likes, up to Options.Count
func (s *Service) Favorites(ctx context.Context) ([]twitter.Tweet, error) {
	tweets, err := s.client.GetFavorites(ctx, s.opts.ScreenName, s.opts.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch favorites: %w", err)
	}

	s.logger.InfoWithFields("fetched favorites", map[string]interface{}{
		"screen_name": s.target(),
		"count":       len(tweets),
	})
	return tweets, nil
}

// Tweets fetches one page of a user's own posts
func (s *Service) Tweets(ctx context.Context, screenName string) ([]twitter.Tweet, error) {
	screenName = twitter.SanitizeScreenName(screenName)
	if !twitter.IsValidScreenName(screenName) {
		return nil, fmt.Errorf("invalid screen name %q", screenName)
	}

	tweets, err := s.client.GetUserTimeline(ctx, screenName, s.opts.Count)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tweets for %s: %w", screenName, err)
	}

	s.logger.InfoWithFields("fetched tweets", map[string]interface{}{
		"screen_name": screenName,
		"count":       len(tweets),
	})
	return tweets, nil
}

// IdentifyDupes fetches favorites and groups them by the configured strategy
func (s *Service) IdentifyDupes(ctx context.Context) (*Report, error) {
	key, err := dupes.KeyFuncFor(s.opts.Strategy)
	if err != nil {
		return nil, err
	}

	tweets, err := s.Favorites(ctx)
	if err != nil {
		return nil, err
	}

	groups := dupes.Identify(tweets, key)
	extras := len(dupes.Extras(groups))

	report := &Report{
		ScreenName: s.target(),
		Strategy:   s.opts.Strategy,
		Fetched:    len(tweets),
		Unique:     len(tweets) - extras,
		Duplicates: extras,
		Groups:     groups,
		Tweets:     tweets,
	}

	s.logger.InfoWithFields("identified duplicates", map[string]interface{}{
		"strategy":   report.Strategy,
		"fetched":    report.Fetched,
		"groups":     len(groups),
		"duplicates": extras,
	})
	return report, nil
}

// RemoveDupes unfavorites every post after the first in each group. With
// dryRun nothing is sent. Failures are recorded and skipped; the returned
// error wraps the first one.
func (s *Service) RemoveDupes(ctx context.Context, groups []dupes.Group, dryRun bool) (*RemoveResult, error) {
	result := planRemoval(groups)
	result.DryRun = dryRun

	if len(result.Skipped) > 0 {
		s.logger.InfoWithFields("keeping duplicates that resolve to the kept post", map[string]interface{}{
			"skipped": result.Skipped,
		})
	}

	if dryRun {
		s.logger.InfoWithFields("dry run, nothing removed", map[string]interface{}{
			"planned": len(result.Planned),
		})
		return result, nil
	}

	var firstErr error
	for _, id := range result.Planned {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if _, err := s.client.Unfavorite(ctx, id); err != nil {
			s.logger.WithError(err).WarnWithFields("unfavorite failed", map[string]interface{}{"id": id})
			result.Failed = append(result.Failed, Failure{ID: id, Error: err.Error()})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		result.Removed = append(result.Removed, id)
	}

	s.logger.InfoWithFields("removed duplicates", map[string]interface{}{
		"removed": len(result.Removed),
		"failed":  len(result.Failed),
	})

	if firstErr != nil {
		return result, fmt.Errorf("%d of %d removals failed: %w", len(result.Failed), len(result.Planned), firstErr)
	}
	return result, nil
}

// planRemoval lists the extras that can be unfavorited without touching a
// post some group keeps. Each underlying post is planned once.
func planRemoval(groups []dupes.Group) *RemoveResult {
	result := &RemoveResult{}

	kept := make(map[string]bool)
	for _, g := range groups {
		kept[g.Original().Key()] = true
		kept[g.Original().Original().Key()] = true
	}

	planned := make(map[string]bool)
	for _, g := range groups {
		for _, extra := range g.Duplicates() {
			id, target := extra.Key(), extra.Original().Key()
			if kept[id] || kept[target] || planned[target] {
				result.Skipped = append(result.Skipped, id)
				continue
			}
			planned[target] = true
			result.Planned = append(result.Planned, id)
		}
	}
	return result
}

// URLs fetches favorites and collects the links they contain
func (s *Service) URLs(ctx context.Context) ([]urls.Link, error) {
	tweets, err := s.Favorites(ctx)
	if err != nil {
		return nil, err
	}

	links := urls.Collect(tweets)
	s.logger.InfoWithFields("extracted urls", map[string]interface{}{
		"tweets": len(tweets),
		"urls":   len(links),
	})
	return links, nil
}
