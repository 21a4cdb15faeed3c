package jira

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrAPI is returned when Jira responds with a non-2xx status.
	ErrAPI = errors.New("jira API error")

	// ErrMissingProject is returned when no project key is configured.
	ErrMissingProject = errors.New("jira project key is not set")
)

// CreatedIssue is the part of the create response the exporter needs.
type CreatedIssue struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Self string `json:"self"`
}

// Result lists the keys created by CreateAll.
type Result struct {
	EpicKey string `json:"epic_key,omitempty"`
	// TaskKeys maps team to the created task key.
	TaskKeys map[string]string `json:"task_keys"`
	// Failed maps team (or "epic") to the creation error.
	Failed map[string]string `json:"failed,omitempty"`
}

// Created returns the number of issues created.
func (r *Result) Created() int {
	n := len(r.TaskKeys)
	if r.EpicKey != "" {
		n++
	}
	return n
}

// Client creates issues through the Jira Cloud REST API v3.
type Client struct {
	httpClient    *http.Client
	rest          *resty.Client
	baseURL       string
	username      string
	token         string
	projectKey    string
	epicNameField string
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithEpicNameField sets the custom field holding the epic name, such as
// "customfield_10011". Company-managed projects require it.
func WithEpicNameField(field string) Option {
	return func(cl *Client) {
		cl.epicNameField = field
	}
}

// WithRateLimit sets how many requests per second are sent.
func WithRateLimit(perSecond float64) Option {
	return func(cl *Client) {
		if perSecond > 0 {
			cl.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

// New creates a Client for the given site, e.g. https://example.atlassian.net.
func New(baseURL, username, token, projectKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		token:      token,
		projectKey: projectKey,
		limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.rest = resty.NewWithClient(c.httpClient).
		SetBaseURL(c.baseURL).
		SetBasicAuth(c.username, c.token).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{logger: c.logger})
	return c
}

// Ping checks the credentials and returns the display name of the account.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var me struct {
		DisplayName string `json:"displayName"`
	}
	if err := c.do(ctx, http.MethodGet, "/rest/api/3/myself", nil, &me); err != nil {
		return "", err
	}
	return me.DisplayName, nil
}

// CreateIssue creates one ticket. A non-empty parentKey links it to an epic.
func (c *Client) CreateIssue(ctx context.Context, t Ticket, parentKey string) (*CreatedIssue, error) {
	if c.projectKey == "" {
		return nil, ErrMissingProject
	}
	payload := NewPayload(c.projectKey, t, parentKey, c.epicNameField)

	var created CreatedIssue
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/issue", payload, &created); err != nil {
		return nil, err
	}
	c.logger.Info("created jira issue", "issue", created.Key, "type", t.IssueType, "team", t.Team)
	return &created, nil
}

// CreateAll creates the epic, then one task per team under it. A failed
// task does not stop the others. If the epic fails, tasks are created
// without a parent.
func (c *Client) CreateAll(ctx context.Context, set *TicketSet) (*Result, error) {
	result := &Result{TaskKeys: make(map[string]string)}

	epic, err := c.CreateIssue(ctx, set.Epic, "")
	switch {
	case err == nil:
		result.EpicKey = epic.Key
	case ctx.Err() != nil:
		return result, ctx.Err()
	default:
		c.logger.Error("failed to create epic", "error", err)
		result.Failed = map[string]string{"epic": err.Error()}
	}

	for _, task := range set.Tasks {
		created, err := c.CreateIssue(ctx, task, result.EpicKey)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			c.logger.Error("failed to create task", "team", task.Team, "error", err)
			if result.Failed == nil {
				result.Failed = make(map[string]string)
			}
			result.Failed[string(task.Team)] = err.Error()
			continue
		}
		result.TaskKeys[string(task.Team)] = created.Key
	}
	return result, nil
}

// BrowseURL returns the web URL of an issue.
func (c *Client) BrowseURL(key string) string {
	return c.baseURL + "/browse/" + key
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req := c.rest.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("jira request %s %s failed: %w", method, path, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %s", ErrAPI, apiErrorMessage(resp))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode jira response: %w", err)
	}
	return nil
}

// apiErrorMessage extracts errorMessages and field errors from a Jira error body.
func apiErrorMessage(resp *resty.Response) string {
	var body struct {
		ErrorMessages []string          `json:"errorMessages"`
		Errors        map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return resp.Status()
	}
	msgs := append([]string(nil), body.ErrorMessages...)
	for _, field := range sortedKeys(body.Errors) {
		msgs = append(msgs, field+": "+body.Errors[field])
	}
	if len(msgs) == 0 {
		return resp.Status()
	}
	return fmt.Sprintf("%d %s", resp.StatusCode(), strings.Join(msgs, "; "))
}

// restyLogger routes resty's own messages to slog.
type restyLogger struct {
	logger *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.logger.Error("jira transport", "msg", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.logger.Debug("jira transport", "msg", strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.logger.Debug("jira transport", "msg", strings.TrimSpace(fmt.Sprintf(format, v...)))
}
