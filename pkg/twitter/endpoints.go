package twitter

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the root of the v1.1 REST API
	BaseURL = "https://api.twitter.com/1.1"

	// WebURL is used to build links to posts
	WebURL = "https://twitter.com"

	VerifyCredentialsEndpoint = "/account/verify_credentials.json"
	FavoritesListEndpoint     = "/favorites/list.json"
	UserTimelineEndpoint      = "/statuses/user_timeline.json"
	FavoritesDestroyEndpoint  = "/favorites/destroy.json"

	// MaxCount is the largest count favorites/list and user_timeline accept
	MaxCount = 200

	maxScreenNameLength = 15
)

// ClampCount bounds count to 1..MaxCount. Zero means unset and asks for
// the full page.
func ClampCount(count int) int {
	switch {
	case count == 0, count > MaxCount:
		return MaxCount
	case count < 0:
		return 1
	default:
		return count
	}
}

// GetVerifyCredentialsURL builds the account/verify_credentials URL
func GetVerifyCredentialsURL(base string) string {
	params := url.Values{}
	params.Set("skip_status", "true")
	params.Set("include_entities", "false")
	return fmt.Sprintf("%s%s?%s", base, VerifyCredentialsEndpoint, params.Encode())
}

// GetFavoritesURL builds the favorites/list URL. An empty screen name
// lists the authenticated user's likes.
func GetFavoritesURL(base, screenName string, count int) string {
	params := listParams(count)
	if screenName != "" {
		params.Set("screen_name", screenName)
	}
	return fmt.Sprintf("%s%s?%s", base, FavoritesListEndpoint, params.Encode())
}

// GetUserTimelineURL builds the statuses/user_timeline URL
func GetUserTimelineURL(base, screenName string, count int) string {
	params := listParams(count)
	params.Set("screen_name", screenName)
	params.Set("include_rts", "true")
	return fmt.Sprintf("%s%s?%s", base, UserTimelineEndpoint, params.Encode())
}

// GetUnfavoriteURL builds the favorites/destroy URL. The id goes in the form body.
func GetUnfavoriteURL(base string) string {
	return base + FavoritesDestroyEndpoint
}

func listParams(count int) url.Values {
	params := url.Values{}
	params.Set("count", strconv.Itoa(ClampCount(count)))
	params.Set("include_entities", "true")
	params.Set("tweet_mode", "extended")
	return params
}

// GetTweetURL builds the public web link for a post
func GetTweetURL(screenName, id string) string {
	if id == "" {
		return ""
	}
	if screenName == "" {
		screenName = "i/web"
	}
	return fmt.Sprintf("%s/%s/status/%s", WebURL, screenName, id)
}

// IsValidScreenName checks the 1 to 15 character [A-Za-z0-9_] rule
func IsValidScreenName(name string) bool {
	if name == "" || len(name) > maxScreenNameLength {
		return false
	}

	for _, char := range name {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_') {
			return false
		}
	}

	return true
}

// SanitizeScreenName strips a leading @, surrounding spaces and trailing slashes
func SanitizeScreenName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.TrimPrefix(name, "@")
	return strings.TrimRight(name, "/ ")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
