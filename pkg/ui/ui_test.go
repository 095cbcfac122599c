package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"favdupes/pkg/dupes"
	"favdupes/pkg/favorites"
	"favdupes/pkg/storage"
	"favdupes/pkg/twitter"
	"favdupes/pkg/urls"
)

func newTestTerminal() (*Terminal, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	term := NewTerminal(&out, &errOut)
	term.SetNoColor(true)
	return term, &out, &errOut
}

func sampleTweets() []twitter.Tweet {
	return []twitter.Tweet{
		{IDStr: "1", FullText: "hello world", User: twitter.User{ScreenName: "alice"}, CreatedAt: "Wed Oct 10 20:19:24 +0000 2018"},
		{IDStr: "2", FullText: "Hello   World"},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML, "yaml": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPrintFunctions(t *testing.T) {
	term, out, errOut := newTestTerminal()

	term.PrintInfo("User", "@alice")
	term.PrintSuccess("done")
	term.PrintError("failed", "boom")
	term.PrintWarning("careful")

	assert.Equal(t, "User: @alice\ndone\n", out.String())
	assert.Equal(t, "failed: boom\ncareful\n", errOut.String())
}

func TestQuiet(t *testing.T) {
	term, out, errOut := newTestTerminal()
	term.SetQuiet(true)

	term.PrintInfo("a", "b")
	term.PrintSuccess("ok")
	term.PrintHighlight("hi")
	term.PrintWarning("warn")
	term.PrintBanner()
	term.PrintError("still shown")

	assert.Empty(t, out.String())
	assert.Equal(t, "still shown\n", errOut.String())
}

func TestRenderTweets(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		term, out, _ := newTestTerminal()
		require.NoError(t, term.RenderTweets(FormatText, sampleTweets()))
		s := out.String()
		assert.Contains(t, s, "1 @alice 2018-10-10T20:19:24Z")
		assert.Contains(t, s, "  Hello World")
		assert.Contains(t, s, "2 posts")
	})

	t.Run("json", func(t *testing.T) {
		term, out, _ := newTestTerminal()
		require.NoError(t, term.RenderTweets(FormatJSON, sampleTweets()))

		var got []map[string]interface{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, "https://twitter.com/alice/status/1", got[0]["url"])
		assert.Equal(t, "https://twitter.com/i/web/status/2", got[1]["url"])
	})

	t.Run("yaml", func(t *testing.T) {
		term, out, _ := newTestTerminal()
		require.NoError(t, term.RenderTweets(FormatYAML, sampleTweets()))

		var got []map[string]interface{}
		require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, "hello world", got[0]["text"])
	})
}

func TestRenderReport(t *testing.T) {
	tweets := sampleTweets()
	groups := dupes.Identify(tweets, dupes.KeyByText)
	report := &favorites.Report{
		ScreenName: "alice", Strategy: "text", Fetched: 2, Unique: 1, Duplicates: 1, Groups: groups,
	}

	t.Run("text", func(t *testing.T) {
		term, out, _ := newTestTerminal()
		require.NoError(t, term.RenderReport(FormatText, report))
		s := out.String()
		assert.Contains(t, s, "Group 1: hello world")
		assert.Contains(t, s, "  keep\n    1 @alice")
		assert.Contains(t, s, "Summary: 2 fetched, 1 unique, 1 duplicates in 1 groups (strategy text)")
	})

	t.Run("json", func(t *testing.T) {
		term, out, _ := newTestTerminal()
		require.NoError(t, term.RenderReport(FormatJSON, report))

		var got reportView
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		require.Len(t, got.Groups, 1)
		assert.Equal(t, "1", got.Groups[0].Original.ID)
		assert.Equal(t, "2", got.Groups[0].Duplicates[0].ID)
	})

	t.Run("no groups", func(t *testing.T) {
		term, out, _ := newTestTerminal()
		require.NoError(t, term.RenderReport(FormatText, &favorites.Report{Fetched: 4, Strategy: "id"}))
		assert.Equal(t, "No duplicates in 4 favorites (strategy id)\n", out.String())
	})
}

func TestRenderRemoval(t *testing.T) {
	term, out, _ := newTestTerminal()
	require.NoError(t, term.RenderRemoval(FormatText, &favorites.RemoveResult{DryRun: true, Planned: []string{"2", "3"}}))
	assert.Equal(t, "Dry run: would unfavorite 2 posts\n  2\n  3\n", out.String())

	out.Reset()
	require.NoError(t, term.RenderRemoval(FormatText, &favorites.RemoveResult{
		Planned: []string{"2", "3"},
		Removed: []string{"2"},
		Failed:  []favorites.Failure{{ID: "3", Error: "gone"}},
	}))
	assert.Contains(t, out.String(), "Removed: 1 unfavorited")
	assert.Contains(t, out.String(), "  3: gone")

	out.Reset()
	require.NoError(t, term.RenderRemoval(FormatText, &favorites.RemoveResult{DryRun: true, Skipped: []string{"1", "2"}}))
	assert.Equal(t, "Skipped: 2 duplicates are the kept post or a retweet of it: 1, 2\nDry run: would unfavorite 0 posts\n", out.String())
}

func TestRenderLinks(t *testing.T) {
	links := []urls.Link{{URL: "https://a.io", TweetIDs: []string{"1", "2"}}}

	term, out, _ := newTestTerminal()
	require.NoError(t, term.RenderLinks(FormatText, links))
	assert.Equal(t, "https://a.io (1, 2)\n1 urls\n", out.String())

	out.Reset()
	require.NoError(t, term.RenderLinks(FormatJSON, nil))
	assert.Equal(t, "[]", strings.TrimSpace(out.String()))
}

func TestRenderRuns(t *testing.T) {
	term, out, _ := newTestTerminal()
	require.NoError(t, term.RenderRuns(FormatText, nil))
	assert.Equal(t, "No runs exported yet\n", out.String())

	out.Reset()
	runs := []storage.RunSummary{{ID: "abc", CreatedAt: time.Now(), ScreenName: "me", Strategy: "url", Tweets: 5, Duplicates: 1, Links: 2}}
	require.NoError(t, term.RenderRuns(FormatYAML, runs))

	var got []map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "abc", got[0]["id"])
	assert.Equal(t, 5, got[0]["tweets"])
}

func TestOneLine(t *testing.T) {
	assert.Equal(t, "a b", oneLine(" a\n b ", 10))
	assert.Equal(t, "abcd…", oneLine("abcdefgh", 5))
}
