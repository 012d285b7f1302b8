package notification

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
	"github.com/riskibarqy/prediction-league/internal/platform/resilience"
	"github.com/riskibarqy/prediction-league/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

type PushClientConfig struct {
	BaseURL string
	Path    string
	Token   string
	Timeout time.Duration
	Retries int
	Breaker resilience.CircuitBreakerConfig
}

// PushClient delivers notification payloads to the external push
// dispatcher over HTTP. Send failures surface as errors; the callers
// treat delivery as best effort.
type PushClient struct {
	client   *http.Client
	endpoint string
	token    string
	retries  int
	breaker  *resilience.CircuitBreaker
	logger   *logging.Logger
}

func NewPushClient(cfg PushClientConfig, logger *logging.Logger) (*PushClient, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	endpoint, err := buildEndpoint(cfg.BaseURL, cfg.Path)
	if err != nil {
		return nil, errors.Wrap(err, "invalid push dispatcher endpoint")
	}

	return &PushClient{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		token:    strings.TrimSpace(cfg.Token),
		retries:  retries,
		breaker:  resilience.NewCircuitBreaker(cfg.Breaker),
		logger:   logger,
	}, nil
}

func (c *PushClient) Notify(ctx context.Context, n usecase.Notification) error {
	if len(n.UserIDs) == 0 {
		return nil
	}

	if err := c.breaker.Allow(); err != nil {
		return errors.Wrap(err, "push dispatcher")
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(n); err != nil {
		return errors.Wrap(err, "marshal notification payload")
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		lastErr = c.send(ctx, buf.Bytes())
		if lastErr == nil {
			c.breaker.RecordSuccess()
			return nil
		}
		if !isTransient(lastErr) {
			break
		}
	}

	c.breaker.RecordFailure()
	return errors.Wrapf(lastErr, "notify push dispatcher type=%s match=%d users=%d",
		n.Metadata.Type, n.Metadata.MatchID, len(n.UserIDs))
}

func (c *PushClient) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(string(body)))
	if err != nil {
		return errors.Wrap(err, "create push request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "send push request"), errTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err = errors.Newf("push dispatcher status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(raw)))
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return errors.Mark(err, errTransient)
	}
	return err
}

var errTransient = errors.New("transient push failure")

func isTransient(err error) bool {
	return errors.Is(err, errTransient)
}

func buildEndpoint(baseURL, path string) (string, error) {
	candidate := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if candidate == "" {
		return "", errors.New("base url is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", errors.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.Newf("%q uses unsupported scheme %q", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", errors.Newf("%q has empty host", candidate)
	}

	path = strings.TrimSpace(path)
	if path == "" {
		path = "/v1/notifications"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return candidate + path, nil
}
