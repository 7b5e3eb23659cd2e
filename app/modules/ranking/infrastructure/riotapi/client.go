package riotapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	trackingdomain "github.com/Black-And-White-Club/elo-tracker/app/modules/tracking/domain"
	"golang.org/x/time/rate"
)

const (
	summonerByNamePath    = "/lol/summoner/v4/summoners/by-name/"
	entriesBySummonerPath = "/lol/league/v4/entries/by-summoner/"

	tokenHeader    = "X-Riot-Token"
	maxBodySize    = 1 << 20
	defaultTimeout = 10 * time.Second
)

// Summoner is the subset of the summoner-v4 DTO the bot needs.
type Summoner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LeagueEntry is one ranked queue standing from league-v4.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
}

// Config holds what the client needs from process configuration.
type Config struct {
	BaseURL       string
	APIKey        string
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// Client calls the ranking platform. It is safe for concurrent use; all
// callers share one rate limiter.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("riot api key is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid riot base url %q", cfg.BaseURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}, nil
}

// GetSummonerByName looks a player up by display handle.
func (c *Client) GetSummonerByName(ctx context.Context, handle string) (*Summoner, error) {
	var s Summoner
	if err := c.get(ctx, summonerByNamePath+url.PathEscape(handle), &s); err != nil {
		if errors.Is(err, trackingdomain.ErrNotFound) {
			return nil, fmt.Errorf("summoner %q: %w", handle, trackingdomain.ErrPlayerNotFound)
		}
		return nil, err
	}
	if s.ID == "" {
		return nil, fmt.Errorf("%w: summoner response missing id", trackingdomain.ErrUpstream)
	}
	return &s, nil
}

// GetLeagueEntries returns every ranked queue standing for a summoner id.
func (c *Client) GetLeagueEntries(ctx context.Context, summonerID string) ([]LeagueEntry, error) {
	var entries []LeagueEntry
	if err := c.get(ctx, entriesBySummonerPath+url.PathEscape(summonerID), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %v", trackingdomain.ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set(tokenHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", trackingdomain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Riot API call",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if err := classifyStatus(resp.StatusCode); err != nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return err
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", trackingdomain.ErrUpstream, err)
	}
	return nil
}

// classifyStatus maps an HTTP status onto the error taxonomy.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return trackingdomain.ErrNotFound
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: riot api returned %d", trackingdomain.ErrAuth, code)
	default:
		return fmt.Errorf("%w: riot api returned %d", trackingdomain.ErrUpstream, code)
	}
}
