// Package urls pulls links out of post text and entities.
package urls

import (
	"net/url"
	"slices"
	"strings"

	"mvdan.cc/xurls/v2"

	"favdupes/pkg/twitter"
)

// shortenerHost is the host of Twitter's wrapped links
const shortenerHost = "t.co"

var strict = xurls.Strict()

// Link is a URL and the posts it appeared in
type Link struct {
	URL      string   `json:"url" yaml:"url"`
	TweetIDs []string `json:"tweet_ids" yaml:"tweet_ids"`
}

// Extract returns every absolute URL in text, de-duplicated in order
func Extract(text string) []string {
	var out []string
	seen := make(map[string]bool)

	for _, match := range strict.FindAllString(text, -1) {
		u := trimTrailing(match)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// trimTrailing drops sentence punctuation xurls may keep
func trimTrailing(u string) string {
	return strings.TrimRight(u, ".,;:!?'\"…")
}

// FromTweet returns the links of a post. Expanded entity URLs come first,
// then text matches that are not t.co wrappers of those entities.
// Retweets are read from the retweeted post.
func FromTweet(t twitter.Tweet) []string {
	t = t.Original()

	var out []string
	seen := make(map[string]bool)
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}

	wrapped := make(map[string]bool)
	for _, e := range t.Entities.URLs {
		wrapped[e.URL] = true
		if e.ExpandedURL != "" {
			add(e.ExpandedURL)
		} else {
			add(e.URL)
		}
	}

	for _, u := range Extract(t.Content()) {
		if wrapped[u] || (len(t.Entities.URLs) > 0 && IsShortened(u)) {
			continue
		}
		add(u)
	}

	return out
}

// IsShortened reports whether u is a t.co link
func IsShortened(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, shortenerHost)
}

// Collect groups the links of posts, first-seen order
func Collect(tweets []twitter.Tweet) []Link {
	var links []Link
	index := make(map[string]int)

	for _, t := range tweets {
		id := t.Key()
		for _, u := range FromTweet(t) {
			i, ok := index[u]
			if !ok {
				index[u] = len(links)
				links = append(links, Link{URL: u, TweetIDs: []string{id}})
				continue
			}
			if !slices.Contains(links[i].TweetIDs, id) {
				links[i].TweetIDs = append(links[i].TweetIDs, id)
			}
		}
	}
	return links
}
