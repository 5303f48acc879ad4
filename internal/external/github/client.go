package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/wonny/propopol/internal/contracts"
	"github.com/wonny/propopol/pkg/httputil"
	"github.com/wonny/propopol/pkg/logger"
)

// Client creates issues on the result repository
// ⭐ SSOT: GitHub API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	token      string
	repository string // "owner/repo" or bare "repo"
}

// NewClient creates a new GitHub client.
// httpClient should have retry disabled: issue creation is not idempotent.
func NewClient(httpClient *httputil.Client, baseURL, token, repository string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		repository: repository,
	}
}

// Issue is the created issue as returned by the API
type Issue struct {
	Number  int    `json:"number"`
	HTMLURL string `json:"html_url"`
	Title   string `json:"title"`
}

type createIssueRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Name implements contracts.Channel
func (c *Client) Name() string {
	return "github"
}

// Publish opens an issue titled after the report with the markdown as body
func (c *Client) Publish(ctx context.Context, report *contracts.Report, markdown string) error {
	issue, err := c.CreateIssue(ctx, report.Title(), markdown)
	if err != nil {
		return err
	}

	c.logger.WithFields(map[string]interface{}{
		"number": issue.Number,
		"url":    issue.HTMLURL,
	}).Info("GitHub issue created")
	return nil
}

// CreateIssue creates one issue on the configured repository
func (c *Client) CreateIssue(ctx context.Context, title, body string) (*Issue, error) {
	repo, err := c.resolveRepository(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.PostJSON(ctx,
		fmt.Sprintf("%s/repos/%s/issues", c.baseURL, repo),
		createIssueRequest{Title: title, Body: body},
		c.headers(),
	)
	if err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}

	data, err := httputil.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("create issue on %s: %w", repo, err)
	}

	var issue Issue
	if err := json.Unmarshal(data, &issue); err != nil {
		return nil, fmt.Errorf("decode issue: %w", err)
	}
	return &issue, nil
}

// resolveRepository returns "owner/repo", asking GET /user for the owner when only a repo name is configured
func (c *Client) resolveRepository(ctx context.Context) (string, error) {
	if strings.Contains(c.repository, "/") {
		return c.repository, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return "", fmt.Errorf("create user request: %w", err)
	}
	for k, v := range c.headers() {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	data, err := httputil.ReadBody(resp)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.Unmarshal(data, &user); err != nil {
		return "", fmt.Errorf("decode user: %w", err)
	}
	if user.Login == "" {
		return "", fmt.Errorf("token owner has no login")
	}

	return user.Login + "/" + c.repository, nil
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+c.token)
	h.Set("Accept", "application/vnd.github+json")
	h.Set("X-GitHub-Api-Version", "2022-11-28")
	return h
}
