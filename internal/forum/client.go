// Package forum implements the HTTP client the reconciliation and migration
// engine uses to talk to the documentation forum server. The engine itself
// only depends on the Client interface (see Client below); this package
// supplies the one concrete implementation: a rate-limited, retrying REST
// client shaped for a Discourse-style API.
package forum

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/canonical/upload-charm-docs/internal/errs"
)

const pathPrefix = "/t/"

// Client is the only surface the reconciliation/migration engine consumes.
// Each method is named after, and behaves like, the forum-server operation
// it wraps.
type Client interface {
	CreateTopic(ctx context.Context, title, content string) (string, error)
	RetrieveTopic(ctx context.Context, topicURL string) (string, error)
	UpdateTopic(ctx context.Context, topicURL, content, editReason string) (string, error)
	DeleteTopic(ctx context.Context, topicURL string) (string, error)
	CheckTopicReadPermission(ctx context.Context, topicURL string) (bool, error)
	CheckTopicWritePermission(ctx context.Context, topicURL string) (bool, error)
	AbsoluteURL(topicURL string) (string, error)
}

// HTTPClient is the concrete Client backed by a documentation forum's REST
// API (e.g. Discourse).
type HTTPClient struct {
	basePath    string
	apiUsername string
	apiKey      string
	categoryID  int

	httpClient *http.Client
	limiter    *rate.Limiter

	// Retry tuning is unexported but left mutable within the package so
	// tests can shrink the backoff; production callers get the defaults
	// below via NewHTTPClient.
	retryTotal         int
	retryBackoffFactor time.Duration
	retryStatuses      map[int]bool
}

// NewHTTPClient constructs a client for the forum at hostname (no protocol),
// authenticating with apiUsername/apiKey and posting new topics into
// categoryID. It retries up to 5 times on transient statuses, with a
// 1-second exponential backoff factor.
func NewHTTPClient(hostname, apiUsername, apiKey string, categoryID int) (*HTTPClient, error) {
	if hostname == "" {
		return nil, errs.NewInputError("invalid 'discourse_host' input, it must be non-empty")
	}
	if strings.HasPrefix(hostname, "http://") || strings.HasPrefix(hostname, "https://") {
		return nil, errs.NewInputError("invalid 'discourse_host' input, it should not include the protocol")
	}
	if apiUsername == "" {
		return nil, errs.NewInputError("invalid 'discourse_api_username' input, it must be non-empty")
	}
	if apiKey == "" {
		return nil, errs.NewInputError("invalid 'discourse_api_key' input, it must be non-empty")
	}

	return &HTTPClient{
		basePath:    "https://" + strings.ToLower(hostname),
		apiUsername: apiUsername,
		apiKey:      apiKey,
		categoryID:  categoryID,
		httpClient:  &http.Client{Timeout: 10 * time.Minute},
		// Documentation topic counts are small relative to Linear's issue
		// volume; a generous but still real budget avoids hammering the
		// forum during a large rollout.
		limiter:            rate.NewLimiter(rate.Limit(5), 20),
		retryTotal:         5,
		retryBackoffFactor: time.Second,
		retryStatuses:      map[int]bool{429: true, 500: true, 502: true, 503: true, 504: true},
	}, nil
}

type topicInfo struct {
	slug string
	id   int
}

func (c *HTTPClient) urlToTopicInfo(topicURL string) (topicInfo, error) {
	if !strings.HasPrefix(topicURL, c.basePath) && !strings.HasPrefix(topicURL, pathPrefix) {
		return topicInfo{}, errs.NewClientError(fmt.Sprintf(
			"the base path is different to the expected base path, expected: %s, url: %s", c.basePath, topicURL,
		))
	}

	parsed, err := url.Parse(topicURL)
	if err != nil {
		return topicInfo{}, errs.WrapClientError(fmt.Sprintf("malformed topic url: %s", topicURL), err)
	}

	components := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(components) != 3 {
		return topicInfo{}, errs.NewClientError(fmt.Sprintf(
			"unexpected number of path components, expected: 3, got: %d, url: %s", len(components), topicURL,
		))
	}
	if components[0] != "t" {
		return topicInfo{}, errs.NewClientError(fmt.Sprintf(
			"unexpected first path component, expected: \"t\", got: %q, url: %s", components[0], topicURL,
		))
	}
	if components[1] == "" {
		return topicInfo{}, errs.NewClientError(fmt.Sprintf("empty second path component topic slug, url: %s", topicURL))
	}
	id, err := strconv.Atoi(components[2])
	if err != nil {
		return topicInfo{}, errs.NewClientError(fmt.Sprintf(
			"unexpected third path component topic id, expected a numeric id, got: %q, url: %s", components[2], topicURL,
		))
	}

	return topicInfo{slug: components[1], id: id}, nil
}

func (c *HTTPClient) topicInfoToURL(info topicInfo) string {
	return fmt.Sprintf("%s%s%s/%d", c.basePath, pathPrefix, info.slug, info.id)
}

// AbsoluteURL returns url with the base path applied.
func (c *HTTPClient) AbsoluteURL(topicURL string) (string, error) {
	info, err := c.urlToTopicInfo(topicURL)
	if err != nil {
		return "", err
	}
	return c.topicInfoToURL(info), nil
}

// do issues req, retrying on transient status codes with bounded exponential
// backoff, and respecting the outbound rate limiter.
func (c *HTTPClient) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errs.WrapClientError("rate limit wait cancelled", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retryTotal; attempt++ {
		if attempt > 0 {
			delay := c.retryBackoffFactor * time.Duration(math.Pow(2, float64(attempt-1)))
			log.Printf("[retry] %s %s attempt %d/%d after %s", req.Method, req.URL.Path, attempt, c.retryTotal, delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, errs.WrapClientError("request cancelled while retrying", ctx.Err())
			}
		}

		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err != nil {
			lastErr = err
			continue
		}
		if c.retryStatuses[resp.StatusCode] {
			resp.Body.Close()
			lastErr = fmt.Errorf("transient status %d", resp.StatusCode)
			continue
		}
		return resp, nil
	}

	return nil, errs.WrapClientError(fmt.Sprintf("request failed after %d retries", c.retryTotal), lastErr)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.basePath+path, body)
	if err != nil {
		return nil, errs.WrapClientError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Api-Username", c.apiUsername)
	return req, nil
}

type postRecord struct {
	ID          int  `json:"id"`
	PostNumber  int  `json:"post_number"`
	CanEdit     bool `json:"can_edit"`
	UserDeleted bool `json:"user_deleted"`
}

type topicRecord struct {
	PostStream struct {
		Posts []postRecord `json:"posts"`
	} `json:"post_stream"`
}

func (c *HTTPClient) fetchTopic(ctx context.Context, info topicInfo) (topicRecord, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/t/%s/%d.json", info.slug, info.id), nil)
	if err != nil {
		return topicRecord{}, err
	}

	resp, err := c.do(ctx, req)
	if err != nil {
		return topicRecord{}, errs.WrapClientError(fmt.Sprintf("error retrieving topic, url: %s", c.topicInfoToURL(info)), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return topicRecord{}, errs.WrapClientError("failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return topicRecord{}, errs.NewClientError(fmt.Sprintf("error retrieving topic, status %d: %s", resp.StatusCode, string(body)))
	}

	var topic topicRecord
	if err := json.Unmarshal(body, &topic); err != nil {
		return topicRecord{}, errs.WrapClientError("the documentation server returned unexpected data", err)
	}
	return topic, nil
}

func firstPost(topic topicRecord, topicURL string) (postRecord, error) {
	for _, p := range topic.PostStream.Posts {
		if p.PostNumber == 1 {
			if p.UserDeleted {
				return postRecord{}, errs.NewClientError(fmt.Sprintf("topic has been deleted, url: %s", topicURL))
			}
			return p, nil
		}
	}
	return postRecord{}, errs.NewClientError(fmt.Sprintf("the documentation server returned unexpected data, url: %s", topicURL))
}

// CheckTopicReadPermission reports whether the credentials can read url.
func (c *HTTPClient) CheckTopicReadPermission(ctx context.Context, topicURL string) (bool, error) {
	info, err := c.urlToTopicInfo(topicURL)
	if err != nil {
		return false, err
	}
	topic, err := c.fetchTopic(ctx, info)
	if err != nil {
		return false, err
	}
	if _, err := firstPost(topic, topicURL); err != nil {
		return false, err
	}
	return true, nil
}

// CheckTopicWritePermission reports whether the credentials can edit url.
func (c *HTTPClient) CheckTopicWritePermission(ctx context.Context, topicURL string) (bool, error) {
	info, err := c.urlToTopicInfo(topicURL)
	if err != nil {
		return false, err
	}
	topic, err := c.fetchTopic(ctx, info)
	if err != nil {
		return false, err
	}
	post, err := firstPost(topic, topicURL)
	if err != nil {
		return false, err
	}
	return post.CanEdit, nil
}

// RetrieveTopic returns the raw content of the first post in the topic at url.
func (c *HTTPClient) RetrieveTopic(ctx context.Context, topicURL string) (string, error) {
	ok, err := c.CheckTopicReadPermission(ctx, topicURL)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errs.NewClientError(fmt.Sprintf("error retrieving the topic, could not read the topic, url: %s", topicURL))
	}

	info, err := c.urlToTopicInfo(topicURL)
	if err != nil {
		return "", err
	}

	// Raw-content fetches are bounded at one minute, tighter than the
	// client-wide timeout used for topic operations.
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/raw/%d", info.id), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return "", errs.WrapClientError(fmt.Sprintf("error retrieving the topic, url: %s", topicURL), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.WrapClientError("failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", errs.NewClientError(fmt.Sprintf("error retrieving the topic, url: %s, status: %d", topicURL, resp.StatusCode))
	}
	return string(body), nil
}

// CreateTopic creates a new topic with title and content as its first post,
// returning the absolute URL to the new topic.
func (c *HTTPClient) CreateTopic(ctx context.Context, title, content string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"title":        title,
		"raw":          content,
		"category":     c.categoryID,
		"tags":         []string{"docs"},
		"unlist_topic": true,
	})
	if err != nil {
		return "", errs.WrapClientError("failed to marshal request", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/posts.json", strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return "", errs.WrapClientError(fmt.Sprintf("error creating the topic, title: %q", title), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.WrapClientError("failed to read response", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", errs.NewClientError(fmt.Sprintf("error creating the topic, status %d: %s", resp.StatusCode, string(body)))
	}

	var created struct {
		TopicSlug string `json:"topic_slug"`
		TopicID   int    `json:"topic_id"`
	}
	if err := json.Unmarshal(body, &created); err != nil {
		return "", errs.WrapClientError("the documentation server returned unexpected data creating the topic", err)
	}

	return c.topicInfoToURL(topicInfo{slug: created.TopicSlug, id: created.TopicID}), nil
}

// UpdateTopic replaces the content of the first post of the topic at url.
func (c *HTTPClient) UpdateTopic(ctx context.Context, topicURL, content, editReason string) (string, error) {
	if editReason == "" {
		editReason = "Documentation updated"
	}

	info, err := c.urlToTopicInfo(topicURL)
	if err != nil {
		return "", err
	}
	topic, err := c.fetchTopic(ctx, info)
	if err != nil {
		return "", err
	}
	post, err := firstPost(topic, topicURL)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{"raw": content, "edit_reason": editReason})
	if err != nil {
		return "", errs.WrapClientError("failed to marshal request", err)
	}

	req, err := c.newRequest(ctx, http.MethodPut, fmt.Sprintf("/posts/%d.json", post.ID), strings.NewReader(string(payload)))
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return "", errs.WrapClientError(fmt.Sprintf("error updating the topic, url: %s", topicURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", errs.NewClientError(fmt.Sprintf("error updating the topic, url: %s, status %d: %s", topicURL, resp.StatusCode, string(body)))
	}

	return c.topicInfoToURL(info), nil
}

// DeleteTopic deletes the topic at url.
func (c *HTTPClient) DeleteTopic(ctx context.Context, topicURL string) (string, error) {
	info, err := c.urlToTopicInfo(topicURL)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, http.MethodDelete, fmt.Sprintf("/t/%d.json", info.id), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return "", errs.WrapClientError(fmt.Sprintf("error deleting the topic, url: %s", topicURL), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return "", errs.NewClientError(fmt.Sprintf("error deleting the topic, url: %s, status %d: %s", topicURL, resp.StatusCode, string(body)))
	}

	return c.topicInfoToURL(info), nil
}
