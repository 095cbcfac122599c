package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"favdupes/pkg/favorites"
	"favdupes/pkg/storage"
	"favdupes/pkg/twitter"
	"favdupes/pkg/urls"
)

// Format selects how results are written
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts text, json, yaml or yml
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (text, json or yaml)", s)
	}
}

type tweetView struct {
	ID         string `json:"id" yaml:"id"`
	ScreenName string `json:"screen_name,omitempty" yaml:"screen_name,omitempty"`
	CreatedAt  string `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	Text       string `json:"text" yaml:"text"`
	URL        string `json:"url" yaml:"url"`
}

func viewOf(t twitter.Tweet) tweetView {
	v := tweetView{
		ID:         t.Key(),
		ScreenName: t.User.ScreenName,
		Text:       t.Content(),
		URL:        twitter.GetTweetURL(t.User.ScreenName, t.Key()),
	}
	if ts := t.CreatedTime(); !ts.IsZero() {
		v.CreatedAt = ts.UTC().Format(time.RFC3339)
	}
	return v
}

func viewsOf(tweets []twitter.Tweet) []tweetView {
	views := make([]tweetView, 0, len(tweets))
	for _, t := range tweets {
		views = append(views, viewOf(t))
	}
	return views
}

type groupView struct {
	Key        string      `json:"key" yaml:"key"`
	Original   tweetView   `json:"original" yaml:"original"`
	Duplicates []tweetView `json:"duplicates" yaml:"duplicates"`
}

type reportView struct {
	ScreenName string      `json:"screen_name" yaml:"screen_name"`
	Strategy   string      `json:"strategy" yaml:"strategy"`
	Fetched    int         `json:"fetched" yaml:"fetched"`
	Unique     int         `json:"unique" yaml:"unique"`
	Duplicates int         `json:"duplicates" yaml:"duplicates"`
	Groups     []groupView `json:"groups" yaml:"groups"`
}

func encode(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported structured format %q", format)
	}
}

// oneLine flattens text and cuts it to max runes
func oneLine(text string, max int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max-1]) + "…"
}

func (t *Terminal) writeTweet(indent string, v tweetView) {
	head := t.paint(t.styles.label, v.ID)
	if v.ScreenName != "" {
		head += " " + t.paint(t.styles.value, "@"+v.ScreenName)
	}
	if v.CreatedAt != "" {
		head += " " + t.paint(t.styles.dim, v.CreatedAt)
	}
	fmt.Fprintf(t.out, "%s%s\n%s  %s\n", indent, head, indent, oneLine(v.Text, 100))
}

// RenderTweets writes a list of posts
func (t *Terminal) RenderTweets(format Format, tweets []twitter.Tweet) error {
	views := viewsOf(tweets)
	if format != FormatText {
		return encode(t.out, format, views)
	}

	for _, v := range views {
		t.writeTweet("", v)
	}
	fmt.Fprintln(t.out, t.paint(t.styles.dim, fmt.Sprintf("%d posts", len(views))))
	return nil
}

// RenderReport writes duplicate groups with the scan totals
func (t *Terminal) RenderReport(format Format, report *favorites.Report) error {
	view := reportView{
		ScreenName: report.ScreenName,
		Strategy:   report.Strategy,
		Fetched:    report.Fetched,
		Unique:     report.Unique,
		Duplicates: report.Duplicates,
		Groups:     make([]groupView, 0, len(report.Groups)),
	}
	for _, g := range report.Groups {
		view.Groups = append(view.Groups, groupView{
			Key:        g.Key,
			Original:   viewOf(g.Original()),
			Duplicates: viewsOf(g.Duplicates()),
		})
	}

	if format != FormatText {
		return encode(t.out, format, view)
	}

	if len(view.Groups) == 0 {
		fmt.Fprintf(t.out, "No duplicates in %d favorites (strategy %s)\n", view.Fetched, view.Strategy)
		return nil
	}

	for i, g := range view.Groups {
		fmt.Fprintln(t.out, t.paint(t.styles.highlight, fmt.Sprintf("Group %d: %s", i+1, oneLine(g.Key, 60))))
		fmt.Fprintln(t.out, t.paint(t.styles.success, "  keep"))
		t.writeTweet("    ", g.Original)
		fmt.Fprintln(t.out, t.paint(t.styles.warning, "  duplicates"))
		for _, d := range g.Duplicates {
			t.writeTweet("    ", d)
		}
	}
	fmt.Fprintf(t.out, "%s %d fetched, %d unique, %d duplicates in %d groups (strategy %s)\n",
		t.paint(t.styles.bold, "Summary:"), view.Fetched, view.Unique, view.Duplicates, len(view.Groups), view.Strategy)
	return nil
}

// RenderRemoval writes what RemoveDupes did
func (t *Terminal) RenderRemoval(format Format, result *favorites.RemoveResult) error {
	if format != FormatText {
		return encode(t.out, format, result)
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintf(t.out, "%s %d duplicates are the kept post or a retweet of it: %s\n",
			t.paint(t.styles.dim, "Skipped:"), len(result.Skipped), strings.Join(result.Skipped, ", "))
	}

	if result.DryRun {
		fmt.Fprintf(t.out, "Dry run: would unfavorite %d posts\n", len(result.Planned))
		for _, id := range result.Planned {
			fmt.Fprintf(t.out, "  %s\n", id)
		}
		return nil
	}

	fmt.Fprintf(t.out, "%s %d unfavorited\n", t.paint(t.styles.success, "Removed:"), len(result.Removed))
	if len(result.Failed) > 0 {
		fmt.Fprintf(t.out, "%s %d failed\n", t.paint(t.styles.err, "Failed:"), len(result.Failed))
		for _, f := range result.Failed {
			fmt.Fprintf(t.out, "  %s: %s\n", f.ID, f.Error)
		}
	}
	return nil
}

// RenderLinks writes extracted URLs with the posts they came from
func (t *Terminal) RenderLinks(format Format, links []urls.Link) error {
	if links == nil {
		links = []urls.Link{}
	}
	if format != FormatText {
		return encode(t.out, format, links)
	}

	for _, l := range links {
		fmt.Fprintf(t.out, "%s %s\n", l.URL, t.paint(t.styles.dim, "("+strings.Join(l.TweetIDs, ", ")+")"))
	}
	fmt.Fprintln(t.out, t.paint(t.styles.dim, fmt.Sprintf("%d urls", len(links))))
	return nil
}

// RenderRuns writes stored export runs
func (t *Terminal) RenderRuns(format Format, runs []storage.RunSummary) error {
	if runs == nil {
		runs = []storage.RunSummary{}
	}
	if format != FormatText {
		return encode(t.out, format, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(t.out, "No runs exported yet")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(t.out, "%s  %s  @%s  %s  %d posts, %d duplicates, %d urls\n",
			t.paint(t.styles.label, r.ID),
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.ScreenName, r.Strategy, r.Tweets, r.Duplicates, r.Links)
	}
	return nil
}

// RenderValue writes any value as JSON or YAML; text means YAML
func (t *Terminal) RenderValue(format Format, v interface{}) error {
	if format == FormatText {
		format = FormatYAML
	}
	return encode(t.out, format, v)
}
