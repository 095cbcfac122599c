package twitter

import (
	"time"
)

// CreatedAtLayout is the timestamp format of v1.1 payloads
const CreatedAtLayout = time.RubyDate

// Credentials are the four OAuth 1.0a secrets the client signs with
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// User is the subset of a v1.1 user object favdupes reads
type User struct {
	ID         int64  `json:"id"`
	IDStr      string `json:"id_str"`
	ScreenName string `json:"screen_name"`
	Name       string `json:"name"`
}

// URLEntity is a link Twitter already parsed out of the text
type URLEntity struct {
	URL         string `json:"url"`
	ExpandedURL string `json:"expanded_url"`
	DisplayURL  string `json:"display_url"`
	Indices     []int  `json:"indices"`
}

// Entities holds the parsed parts of a post
type Entities struct {
	URLs []URLEntity `json:"urls"`
}

// Tweet is a post as returned by favorites/list and statuses/user_timeline
type Tweet struct {
	ID              int64    `json:"id"`
	IDStr           string   `json:"id_str"`
	Text            string   `json:"text,omitempty"`
	FullText        string   `json:"full_text,omitempty"`
	CreatedAt       string   `json:"created_at"`
	User            User     `json:"user"`
	Entities        Entities `json:"entities"`
	FavoriteCount   int      `json:"favorite_count"`
	RetweetCount    int      `json:"retweet_count"`
	Favorited       bool     `json:"favorited"`
	RetweetedStatus *Tweet   `json:"retweeted_status,omitempty"`
}

// Content returns full_text in extended mode, else text
func (t Tweet) Content() string {
	if t.FullText != "" {
		return t.FullText
	}
	return t.Text
}

// Original returns the retweeted post for retweets, else the post itself
func (t Tweet) Original() Tweet {
	if t.RetweetedStatus != nil {
		return *t.RetweetedStatus
	}
	return t
}

// Key returns the string ID, formatted from the numeric one if absent
func (t Tweet) Key() string {
	if t.IDStr != "" {
		return t.IDStr
	}
	if t.ID == 0 {
		return ""
	}
	return formatID(t.ID)
}

// CreatedTime parses CreatedAt. The zero time is returned on failure.
func (t Tweet) CreatedTime() time.Time {
	ts, err := time.Parse(CreatedAtLayout, t.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return ts
}
