package favorites

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"favdupes/pkg/auth"
	"favdupes/pkg/config"
	"favdupes/pkg/dupes"
	"favdupes/pkg/errors"
	"favdupes/pkg/logger"
	"favdupes/pkg/twitter"
)

// fakeClient is an in-memory TwitterClient
type fakeClient struct {
	user       *twitter.User
	favorites  []twitter.Tweet
	timeline   []twitter.Tweet
	verifyErr  error
	fetchErr   error
	failIDs    map[string]error
	lastName   string
	lastCount  int
	unfavorite []string
}

func (f *fakeClient) VerifyCredentials(context.Context) (*twitter.User, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.user, nil
}

func (f *fakeClient) GetFavorites(_ context.Context, screenName string, count int) ([]twitter.Tweet, error) {
	f.lastName, f.lastCount = screenName, count
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.favorites, nil
}

func (f *fakeClient) GetUserTimeline(_ context.Context, screenName string, count int) ([]twitter.Tweet, error) {
	f.lastName, f.lastCount = screenName, count
	return f.timeline, f.fetchErr
}

func (f *fakeClient) Unfavorite(_ context.Context, id string) (*twitter.Tweet, error) {
	f.unfavorite = append(f.unfavorite, id)
	if err := f.failIDs[id]; err != nil {
		return nil, err
	}
	return &twitter.Tweet{IDStr: id}, nil
}

func tw(id, text string) twitter.Tweet {
	return twitter.Tweet{IDStr: id, FullText: text}
}

func sampleFavorites() []twitter.Tweet {
	return []twitter.Tweet{
		tw("1", "Go 1.24 released https://go.dev/blog"),
		tw("2", "something else"),
		tw("3", "go 1.24 RELEASED"),
		tw("4", "RT @golang: Go 1.24 released"),
		tw("5", "something   else"),
	}
}

func TestLogin(t *testing.T) {
	client := &fakeClient{user: &twitter.User{ScreenName: "me"}}
	log := logger.NewTestLogger()
	svc := New(client, Options{}, log)

	user, err := svc.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "me", user.ScreenName)
	assert.Equal(t, user, svc.User())
	assert.True(t, log.HasMessage("login succeeded"))
}

func TestLoginRejected(t *testing.T) {
	client := &fakeClient{verifyErr: &errors.Error{Type: errors.ErrorTypeAuth, Code: 401}}
	svc := New(client, Options{}, logger.NewTestLogger())

	_, err := svc.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ExitCredentials, errors.ExitCode(err))
	assert.Nil(t, svc.User())
}

func TestFavorites(t *testing.T) {
	client := &fakeClient{favorites: sampleFavorites()}
	svc := New(client, Options{ScreenName: "bob", Count: 50}, logger.NewTestLogger())

	tweets, err := svc.Favorites(context.Background())
	require.NoError(t, err)
	assert.Len(t, tweets, 5)
	assert.Equal(t, "bob", client.lastName)
	assert.Equal(t, 50, client.lastCount)

	client.fetchErr = fmt.Errorf("boom")
	_, err = svc.Favorites(context.Background())
	assert.ErrorContains(t, err, "boom")
}

func TestTweets(t *testing.T) {
	client := &fakeClient{timeline: []twitter.Tweet{tw("7", "mine")}}
	svc := New(client, Options{Count: 10}, logger.NewTestLogger())

	tweets, err := svc.Tweets(context.Background(), "@carol/")
	require.NoError(t, err)
	assert.Len(t, tweets, 1)
	assert.Equal(t, "carol", client.lastName)

	_, err = svc.Tweets(context.Background(), "no way!")
	assert.ErrorContains(t, err, "invalid screen name")
}

func TestIdentifyDupes(t *testing.T) {
	client := &fakeClient{
		user:      &twitter.User{ScreenName: "me"},
		favorites: sampleFavorites(),
	}
	svc := New(client, Options{Strategy: "text"}, logger.NewTestLogger())
	_, err := svc.Login(context.Background())
	require.NoError(t, err)

	report, err := svc.IdentifyDupes(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "me", report.ScreenName)
	assert.Equal(t, 5, report.Fetched)
	assert.Equal(t, 3, report.Duplicates)
	assert.Equal(t, 2, report.Unique)
	require.Len(t, report.Groups, 2)
	assert.Equal(t, "go 1.24 released", report.Groups[0].Key)
	assert.Len(t, report.Groups[0].Tweets, 3)
	assert.Len(t, report.Tweets, 5)
}

func TestIdentifyDupesUnknownStrategy(t *testing.T) {
	client := &fakeClient{}
	svc := New(client, Options{Strategy: "vibes"}, logger.NewTestLogger())

	_, err := svc.IdentifyDupes(context.Background())
	assert.Error(t, err)
	assert.Zero(t, client.lastCount)
}

func TestRemoveDupesDryRun(t *testing.T) {
	client := &fakeClient{}
	svc := New(client, Options{}, logger.NewTestLogger())
	groups := dupes.Identify(sampleFavorites(), dupes.KeyByText)

	result, err := svc.RemoveDupes(context.Background(), groups, true)
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, []string{"3", "4", "5"}, result.Planned)
	assert.Empty(t, result.Removed)
	assert.Empty(t, client.unfavorite)
}

func TestRemoveDupes(t *testing.T) {
	client := &fakeClient{}
	svc := New(client, Options{}, logger.NewTestLogger())
	groups := dupes.Identify(sampleFavorites(), dupes.KeyByText)

	result, err := svc.RemoveDupes(context.Background(), groups, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "4", "5"}, result.Removed)
	assert.Equal(t, []string{"3", "4", "5"}, client.unfavorite)
	assert.Empty(t, result.Failed)
}

func retweet(id, of, text string) twitter.Tweet {
	original := tw(of, text)
	return twitter.Tweet{IDStr: id, FullText: "RT @someone: " + text, RetweetedStatus: &original}
}

func TestRemoveDupesNeverUnfavoritesKeptPost(t *testing.T) {
	favs := []twitter.Tweet{
		tw("1", "hello"),
		tw("1", "hello"),
		retweet("2", "1", "hello"),
	}

	for _, strategy := range []string{dupes.StrategyID, dupes.StrategyText} {
		t.Run(strategy, func(t *testing.T) {
			client := &fakeClient{}
			svc := New(client, Options{}, logger.NewTestLogger())
			key, err := dupes.KeyFuncFor(strategy)
			require.NoError(t, err)
			groups := dupes.Identify(favs, key)
			require.Len(t, groups, 1)

			result, err := svc.RemoveDupes(context.Background(), groups, false)
			require.NoError(t, err)
			assert.Empty(t, client.unfavorite)
			assert.Empty(t, result.Planned)
			assert.Empty(t, result.Removed)
			assert.Equal(t, []string{"1", "2"}, result.Skipped)
		})
	}
}

func TestRemoveDupesProtectsPostsKeptByOtherGroups(t *testing.T) {
	// 9 is kept in the "news" group; a retweet of it lands in another text group
	favs := []twitter.Tweet{
		tw("5", "hello there"),
		tw("9", "news"),
		tw("6", "Hello there"),
		tw("9", "NEWS"),
		{IDStr: "7", FullText: "hello   there", RetweetedStatus: &twitter.Tweet{IDStr: "9", FullText: "hello there"}},
	}
	client := &fakeClient{}
	svc := New(client, Options{}, logger.NewTestLogger())
	groups := dupes.Identify(favs, dupes.KeyByText)

	result, err := svc.RemoveDupes(context.Background(), groups, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"6"}, client.unfavorite)
	assert.ElementsMatch(t, []string{"7", "9"}, result.Skipped)
}

func TestRemoveDupesPlansEachPostOnce(t *testing.T) {
	favs := []twitter.Tweet{
		tw("1", "hello"),
		retweet("2", "8", "hello"),
		retweet("3", "8", "hello"),
	}
	client := &fakeClient{}
	svc := New(client, Options{}, logger.NewTestLogger())
	groups := dupes.Identify(favs, dupes.KeyByText)

	result, err := svc.RemoveDupes(context.Background(), groups, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, result.Planned)
	assert.Equal(t, []string{"3"}, result.Skipped)
}

func TestRemoveDupesContinuesPastFailures(t *testing.T) {
	client := &fakeClient{failIDs: map[string]error{
		"3": &errors.Error{Type: errors.ErrorTypeNotFound, Code: 404, Message: "gone"},
	}}
	log := logger.NewTestLogger()
	svc := New(client, Options{}, log)
	groups := dupes.Identify(sampleFavorites(), dupes.KeyByText)

	result, err := svc.RemoveDupes(context.Background(), groups, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 3 removals failed")
	assert.True(t, errors.IsType(err, errors.ErrorTypeNotFound))

	assert.Equal(t, []string{"3", "4", "5"}, client.unfavorite)
	assert.Equal(t, []string{"4", "5"}, result.Removed)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, "3", result.Failed[0].ID)
	assert.Len(t, log.GetMessagesByLevel("WARN"), 1)
}

func TestRemoveDupesStopsOnCancel(t *testing.T) {
	client := &fakeClient{}
	svc := New(client, Options{}, logger.NewTestLogger())
	groups := dupes.Identify(sampleFavorites(), dupes.KeyByText)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.RemoveDupes(ctx, groups, false)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, client.unfavorite)
}

func TestURLs(t *testing.T) {
	client := &fakeClient{favorites: []twitter.Tweet{
		tw("1", "a https://a.io"),
		tw("2", "b https://a.io https://b.io"),
	}}
	svc := New(client, Options{}, logger.NewTestLogger())

	links, err := svc.URLs(context.Background())
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, []string{"1", "2"}, links[0].TweetIDs)
}

func TestNewFromConfig(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case twitter.VerifyCredentialsEndpoint:
			w.Write([]byte(`{"id_str":"1","screen_name":"me"}`))
		case twitter.FavoritesListEndpoint:
			assert.Equal(t, "25", r.URL.Query().Get("count"))
			w.Write([]byte(`[{"id_str":"1","full_text":"same"},{"id_str":"2","full_text":"SAME"}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.Twitter.APIBaseURL = server.URL
	cfg.Favorites.Count = 25
	creds := &auth.Credentials{ConsumerKey: "a", ConsumerSecret: "b", AccessToken: "c", AccessTokenSecret: "d"}

	svc := NewFromConfig(cfg, creds, logger.NewTestLogger())
	_, err := svc.Login(context.Background())
	require.NoError(t, err)

	report, err := svc.IdentifyDupes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
}
