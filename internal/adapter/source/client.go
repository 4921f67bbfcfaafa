// internal/adapter/source/client.go

package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"villrein/internal/domain/fetch"
	"villrein/internal/domain/track"
)

const (
	loginPath       = "/Account/Login?returnurl=%2F"
	individualsPath = "/Home/Individuals"
	positionsPath   = "/Home/Positions"

	tokenField = "__RequestVerificationToken"
	dateLayout = "2006-01-02T15:04:05-07:00"
)

// ErrUnexpectedStatus is returned when the source answers with a non-2xx status
var ErrUnexpectedStatus = errors.New("unexpected status")

// Config contains configuration for the source client
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	Timeout    time.Duration
	Location   *time.Location
	ProjectIDs string
	SpeciesID  string
	UserAgent  string
}

// Client talks to the tracking portal. It implements fetch.Source and
// fetch.Session.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     *zap.Logger

	mu            sync.Mutex
	authenticated bool
}

// NewClient creates a new portal client with its own cookie jar
func NewClient(config Config, logger *zap.Logger) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("error creating cookie jar: %w", err)
	}

	if config.Location == nil {
		config.Location = time.FixedZone("CET", 3600)
	}
	if config.ProjectIDs == "" {
		config.ProjectIDs = "[124730]"
	}
	if config.SpeciesID == "" {
		config.SpeciesID = "3"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: config.Timeout,
		},
		config: config,
		logger: logger,
	}, nil
}

// EnsureSession logs in once; later calls return immediately
func (c *Client) EnsureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.authenticated {
		return nil
	}

	token, err := c.loginToken(ctx)
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("Email", c.config.Username)
	form.Set("Password", c.config.Password)
	form.Set(tokenField, token)
	form.Set("RememberMe", "false")

	req, err := c.newFormRequest(ctx, loginPath, form)
	if err != nil {
		return err
	}

	// A successful login answers with a redirect that must not be followed
	noRedirect := *c.httpClient
	noRedirect.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	resp, err := noRedirect.Do(req)
	if err != nil {
		return fmt.Errorf("error posting login form: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusFound {
		return fmt.Errorf("login answered %d: %w", resp.StatusCode, fetch.ErrNotAuthenticated)
	}

	c.authenticated = true
	c.logger.Info("session established", zap.String("user", c.config.Username))
	return nil
}

func (c *Client) loginToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+loginPath, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching login page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login page answered %d: %w", resp.StatusCode, ErrUnexpectedStatus)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing login page: %w", err)
	}

	token, ok := doc.Find(fmt.Sprintf(`input[name=%q]`, tokenField)).First().Attr("value")
	if !ok || token == "" {
		return "", fmt.Errorf("login page has no %s: %w", tokenField, fetch.ErrNotAuthenticated)
	}
	return token, nil
}

// Individuals lists the individuals with positions inside r
func (c *Client) Individuals(ctx context.Context, r fetch.DateRange) ([]fetch.Individual, error) {
	var body struct {
		VM []fetch.Individual `json:"vm"`
	}
	if err := c.postJSON(ctx, individualsPath, c.rangeParams(r), &body); err != nil {
		return nil, fmt.Errorf("error listing individuals: %w", err)
	}
	return body.VM, nil
}

// Positions returns the positions of one individual inside r
func (c *Client) Positions(ctx context.Context, individualID string, r fetch.DateRange) (track.RawDocument, error) {
	params := c.rangeParams(r)
	params.Set("individualIds", individualID)
	params.Set("showAllPositions", "true")
	params.Set("showWithLocations", "false")
	params.Set("speciesId", c.config.SpeciesID)

	var doc track.RawDocument
	if err := c.postJSON(ctx, positionsPath, params, &doc); err != nil {
		return track.RawDocument{}, fmt.Errorf("error fetching positions: %w", err)
	}
	return doc, nil
}

func (c *Client) rangeParams(r fetch.DateRange) url.Values {
	params := url.Values{}
	params.Set("timeInterval", "custom")
	params.Set("startDate", r.Start.In(c.config.Location).Format(dateLayout))
	params.Set("endDate", r.End.In(c.config.Location).Format(dateLayout))
	params.Set("years", "[]")
	params.Set("countyId", "0")
	params.Set("municipalityId", "0")
	params.Set("projectIds", c.config.ProjectIDs)
	return params
}

func (c *Client) postJSON(ctx context.Context, path string, form url.Values, v interface{}) error {
	req, err := c.newFormRequest(ctx, path, form)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s answered %d: %w", path, resp.StatusCode, ErrUnexpectedStatus)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

func (c *Client) newFormRequest(ctx context.Context, path string, form url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setHeaders(req)
	return req, nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
}
