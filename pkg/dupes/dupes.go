// Package dupes groups posts that share a normalised key.
//
// A strategy turns a post into a key. Posts with equal non-empty keys are
// duplicates of each other; the first in input order is the one kept.
package dupes

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
	"mvdan.cc/xurls/v2"

	"favdupes/pkg/twitter"
	"favdupes/pkg/urls"
)

// Strategy names accepted by KeyFuncFor
const (
	StrategyID   = "id"
	StrategyText = "text"
	StrategyURL  = "url"
)

// KeyFunc maps a post to its comparison key. An empty key opts the post out.
type KeyFunc func(twitter.Tweet) string

// Group is a set of posts sharing one key, in input order
type Group struct {
	Key    string          `json:"key" yaml:"key"`
	Tweets []twitter.Tweet `json:"tweets" yaml:"tweets"`
}

// Original is the post that is kept
func (g Group) Original() twitter.Tweet {
	return g.Tweets[0]
}

// Duplicates are the posts after the original
func (g Group) Duplicates() []twitter.Tweet {
	return g.Tweets[1:]
}

var (
	retweetPrefix = regexp.MustCompile(`(?i)^rt\s+@\w{1,15}:\s*`)
	linkPattern   = xurls.Strict()
	folder        = cases.Fold()
)

// Strategies lists the valid strategy names
func Strategies() []string {
	return []string{StrategyID, StrategyText, StrategyURL}
}

// KeyFuncFor resolves a strategy name
func KeyFuncFor(strategy string) (KeyFunc, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case StrategyID:
		return KeyByID, nil
	case StrategyText, "":
		return KeyByText, nil
	case StrategyURL:
		return KeyByURL, nil
	default:
		return nil, fmt.Errorf("unknown dupe strategy %q (want one of %s)", strategy, strings.Join(Strategies(), ", "))
	}
}

// KeyByID keys on the post ID, the retweeted post's ID for retweets
func KeyByID(t twitter.Tweet) string {
	return t.Original().Key()
}

// KeyByText keys on the normalised text of the post, or of the retweeted post
func KeyByText(t twitter.Tweet) string {
	return NormalizeText(t.Original().Content())
}

// KeyByURL keys on the sorted set of links in the post
func KeyByURL(t twitter.Tweet) string {
	links := urls.FromTweet(t)
	if len(links) == 0 {
		return ""
	}
	sort.Strings(links)
	return strings.Join(links, " ")
}

// NormalizeText reduces text to a comparison form: NFKC, no leading
// "RT @user:", no URLs, case folded, single spaced
func NormalizeText(text string) string {
	s := norm.NFKC.String(text)
	s = strings.TrimSpace(s)
	s = retweetPrefix.ReplaceAllString(s, "")
	s = linkPattern.ReplaceAllString(s, " ")
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// Identify returns every group of two or more posts sharing a key.
// Groups are ordered by their first member.
func Identify(tweets []twitter.Tweet, key KeyFunc) []Group {
	index := make(map[string]int)
	var all []Group

	for _, t := range tweets {
		k := key(t)
		if k == "" {
			continue
		}
		if i, ok := index[k]; ok {
			all[i].Tweets = append(all[i].Tweets, t)
			continue
		}
		index[k] = len(all)
		all = append(all, Group{Key: k, Tweets: []twitter.Tweet{t}})
	}

	groups := make([]Group, 0, len(all))
	for _, g := range all {
		if len(g.Tweets) > 1 {
			groups = append(groups, g)
		}
	}
	return groups
}

// Remove keeps the first post of every key and every post without a key
func Remove(tweets []twitter.Tweet, key KeyFunc) []twitter.Tweet {
	seen := make(map[string]bool)
	kept := make([]twitter.Tweet, 0, len(tweets))

	for _, t := range tweets {
		k := key(t)
		if k != "" {
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		kept = append(kept, t)
	}
	return kept
}

// Extras flattens the duplicates of every group, group order then member order
func Extras(groups []Group) []twitter.Tweet {
	var out []twitter.Tweet
	for _, g := range groups {
		out = append(out, g.Duplicates()...)
	}
	return out
}
