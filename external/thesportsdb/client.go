package thesportsdb

import (
	"context"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/live-tracker/internal/domain/leaguestanding"
	"github.com/riskibarqy/live-tracker/internal/domain/rawdata"
	"github.com/riskibarqy/live-tracker/internal/platform/logging"
	"github.com/riskibarqy/live-tracker/internal/platform/resilience"
	"github.com/riskibarqy/live-tracker/internal/usecase"
)

const (
	defaultBaseURL     = "https://www.thesportsdb.com/api/v1/json"
	defaultTimeout     = 10 * time.Second
	defaultMaxAttempts = 3
	defaultRetryDelay  = time.Second
	payloadSource      = "thesportsdb"
)

type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
	UserAgent   string
	// Transport builds one pool per session. Defaults to NewHTTPTransport.
	Transport      TransportFactory
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	baseURL     string
	apiKey      string
	timeout     time.Duration
	maxAttempts int
	retryDelay  time.Duration
	userAgent   string
	transport   TransportFactory
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
	now         func() time.Time
}

var _ usecase.SportsDataProvider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = defaultMaxAttempts
	}
	retryDelay := cfg.RetryDelay
	if retryDelay < 0 {
		retryDelay = defaultRetryDelay
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = BrowserUserAgent
	}
	transport := cfg.Transport
	if transport == nil {
		transport = NewHTTPTransport
	}

	breaker := resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker)
	breaker.OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("thesportsdb circuit breaker state changed", "from", from, "to", to)
	})

	return &Client{
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		timeout:     timeout,
		maxAttempts: maxAttempts,
		retryDelay:  retryDelay,
		userAgent:   userAgent,
		transport:   transport,
		logger:      logger.Named("thesportsdb"),
		breaker:     breaker,
		now:         time.Now,
	}
}

// OpenSession starts a run with its own connection pool. Close releases it.
func (c *Client) OpenSession() usecase.SportsDataSession {
	return &Session{
		client: c,
		fetcher: &fetcher{
			transport:   c.transport(),
			timeout:     c.timeout,
			maxAttempts: c.maxAttempts,
			retryDelay:  c.retryDelay,
			userAgent:   c.userAgent,
			apiKey:      c.apiKey,
			breaker:     c.breaker,
			logger:      c.logger,
			now:         c.now,
		},
	}
}

// Session is safe for concurrent use until Close.
type Session struct {
	client  *Client
	fetcher *fetcher
}

func (s *Session) Fetch(ctx context.Context, rawURL string) Result {
	return s.fetcher.Fetch(ctx, rawURL)
}

func (s *Session) Close() {
	s.fetcher.transport.CloseIdleConnections()
}

func (s *Session) LookupTable(ctx context.Context, leagueID, season string) usecase.StandingsFetch {
	query := url.Values{}
	query.Set("l", leagueID)
	query.Set("s", season)
	endpoint := "lookuptable.php?" + query.Encode()

	var env tableEnvelope
	res := s.fetcher.fetch(ctx, s.client.endpointURL(endpoint), func(body []byte) error {
		var decoded tableEnvelope
		if err := sonic.Unmarshal(body, &decoded); err != nil {
			return err
		}
		env = decoded
		return nil
	})

	out := usecase.StandingsFetch{FetchStatus: s.status(endpoint, res)}
	if res.Exhausted() || env.Table == nil {
		return out
	}
	out.HasTable = true
	out.Rows = make([]leaguestanding.Standing, 0, len(*env.Table))
	for _, row := range *env.Table {
		out.Rows = append(out.Rows, row.toStanding())
	}
	return out
}

func (s *Session) LastEvents(ctx context.Context, teamID string) usecase.MatchesFetch {
	endpoint := "eventslast.php?id=" + url.QueryEscape(teamID)

	var env lastEventsEnvelope
	res := s.fetcher.fetch(ctx, s.client.endpointURL(endpoint), func(body []byte) error {
		var decoded lastEventsEnvelope
		if err := sonic.Unmarshal(body, &decoded); err != nil {
			return err
		}
		env = decoded
		return nil
	})

	out := usecase.MatchesFetch{FetchStatus: s.status(endpoint, res)}
	if res.OK() {
		out.Matches = toMatches(env.Results)
	}
	return out
}

func (s *Session) NextEvents(ctx context.Context, teamID string) usecase.MatchesFetch {
	endpoint := "eventsnext.php?id=" + url.QueryEscape(teamID)

	var env nextEventsEnvelope
	res := s.fetcher.fetch(ctx, s.client.endpointURL(endpoint), func(body []byte) error {
		var decoded nextEventsEnvelope
		if err := sonic.Unmarshal(body, &decoded); err != nil {
			return err
		}
		env = decoded
		return nil
	})

	out := usecase.MatchesFetch{FetchStatus: s.status(endpoint, res)}
	if res.OK() {
		out.Matches = toMatches(env.Events)
	}
	return out
}

func (s *Session) status(endpoint string, res Result) usecase.FetchStatus {
	payload := rawdata.Payload{
		Source:    payloadSource,
		Endpoint:  endpoint,
		Body:      string(res.Body),
		Attempts:  res.Attempts,
		FetchedAt: s.client.now().UTC(),
	}
	if res.Err != nil {
		payload.Error = s.fetcher.sanitize(res.Err.Error())
	}
	return usecase.FetchStatus{
		Endpoint: endpoint,
		Attempts: res.Attempts,
		Err:      res.Err,
		Payload:  payload,
	}
}

func (c *Client) endpointURL(endpoint string) string {
	return c.baseURL + "/" + url.PathEscape(c.apiKey) + "/" + endpoint
}
