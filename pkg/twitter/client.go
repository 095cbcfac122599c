package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"favdupes/pkg/errors"
	"favdupes/pkg/logger"
)

const userAgent = "favdupes/1.0"

// Client represents a Twitter API client
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a client that signs every request with creds
func NewClient(creds Credentials, timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	cfg := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)

	httpClient := cfg.Client(context.Background(), token)
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    BaseURL,
		logger:     log,
	}
}

// SetBaseURL points the client at another API root, used by tests
func (c *Client) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(base, "/")
}

// BaseURL returns the API root in use
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest sends a signed request and logs its outcome
func (c *Client) doRequest(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// getJSON performs a GET and decodes the response into target
func (c *Client) getJSON(ctx context.Context, rawURL string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	return c.decode(req, target)
}

// postForm performs a form-encoded POST. oauth1 signs the body parameters.
func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
		}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.decode(req, target)
}

func (c *Client) decode(req *http.Request, target interface{}) error {
	resp, err := c.doRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errors.Error{
			Type:    errors.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if err := c.checkResponseStatus(resp, body); err != nil {
		return err
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(body, target); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}

		c.logger.ErrorWithFields("failed to parse JSON response", map[string]interface{}{
			"url":          req.URL.String(),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return &errors.Error{
			Type:    errors.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	return nil
}

// checkResponseStatus maps non-2xx responses to typed errors
func (c *Client) checkResponseStatus(resp *http.Response, body []byte) error {
	if resp.StatusCode < 400 {
		return nil
	}

	apiErr := errors.FromResponse(resp.StatusCode, body)
	fields := map[string]interface{}{
		"status":   resp.StatusCode,
		"url":      resp.Request.URL.String(),
		"api_code": apiErr.APICode,
		"message":  apiErr.Message,
	}

	switch apiErr.Type {
	case errors.ErrorTypeAuth:
		c.logger.WarnWithFields("authentication error", fields)
	case errors.ErrorTypeNotFound:
		c.logger.WarnWithFields("resource not found", fields)
	case errors.ErrorTypeRateLimit:
		c.logger.WarnWithFields("rate limit exceeded", fields)
	case errors.ErrorTypeServerError:
		c.logger.ErrorWithFields("server error", fields)
	default:
		c.logger.ErrorWithFields("unexpected API error", fields)
	}

	return apiErr
}

// VerifyCredentials confirms the secrets and returns the authenticated user
func (c *Client) VerifyCredentials(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, GetVerifyCredentialsURL(c.baseURL), &user); err != nil {
		c.logger.WithError(err).Error("failed to verify credentials")
		return nil, err
	}

	c.logger.InfoWithFields("logged in", map[string]interface{}{
		"screen_name": user.ScreenName,
		"user_id":     user.IDStr,
	})
	return &user, nil
}

// GetFavorites fetches one page of liked posts. An empty screen name
// means the authenticated user.
func (c *Client) GetFavorites(ctx context.Context, screenName string, count int) ([]Tweet, error) {
	rawURL := GetFavoritesURL(c.baseURL, screenName, count)

	c.logger.DebugWithFields("fetching favorites", map[string]interface{}{
		"screen_name": screenName,
		"count":       ClampCount(count),
	})

	var tweets []Tweet
	if err := c.getJSON(ctx, rawURL, &tweets); err != nil {
		c.logger.ErrorWithFields("failed to fetch favorites", map[string]interface{}{
			"screen_name": screenName,
			"error":       err.Error(),
		})
		return nil, err
	}

	c.logger.DebugWithFields("fetched favorites", map[string]interface{}{
		"screen_name": screenName,
		"fetched":     len(tweets),
	})
	return tweets, nil
}

// GetUserTimeline fetches one page of a user's own posts, retweets included
func (c *Client) GetUserTimeline(ctx context.Context, screenName string, count int) ([]Tweet, error) {
	if !IsValidScreenName(screenName) {
		return nil, &errors.Error{
			Type:    errors.ErrorTypeUnknown,
			Message: fmt.Sprintf("invalid screen name %q", screenName),
		}
	}

	c.logger.DebugWithFields("fetching user timeline", map[string]interface{}{
		"screen_name": screenName,
		"count":       ClampCount(count),
	})

	var tweets []Tweet
	if err := c.getJSON(ctx, GetUserTimelineURL(c.baseURL, screenName, count), &tweets); err != nil {
		c.logger.ErrorWithFields("failed to fetch user timeline", map[string]interface{}{
			"screen_name": screenName,
			"error":       err.Error(),
		})
		return nil, err
	}

	return tweets, nil
}

// Unfavorite removes a like and returns the post as Twitter reports it
func (c *Client) Unfavorite(ctx context.Context, id string) (*Tweet, error) {
	form := url.Values{}
	form.Set("id", id)
	form.Set("include_entities", "false")

	var tweet Tweet
	if err := c.postForm(ctx, GetUnfavoriteURL(c.baseURL), form, &tweet); err != nil {
		c.logger.ErrorWithFields("failed to unfavorite", map[string]interface{}{
			"id":    id,
			"error": err.Error(),
		})
		return nil, err
	}

	c.logger.DebugWithFields("unfavorited", map[string]interface{}{"id": id})
	return &tweet, nil
}
