package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes when a Breaker opens and how long it stays open.
type BreakerConfig struct {
	Name string
	// Window resets the failure counts while closed. Zero never resets.
	Window time.Duration
	// Cooldown is the time spent open before a half-open trial request.
	Cooldown time.Duration
	// TripAfter is the request count below which the breaker never opens.
	TripAfter uint32
	TripRatio float64
}

// DefaultBreakerConfig opens after half of at least five requests fail
// and retries after thirty seconds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:      name,
		Window:    time.Minute,
		Cooldown:  30 * time.Second,
		TripAfter: 5,
		TripRatio: 0.5,
	}
}

var breakerState = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "search_client_breaker_state",
		Help: "Search client breaker state (0=closed, 1=half-open, 2=open)",
	},
	[]string{"name"},
)

// ErrBreakerOpen is returned without contacting the server while the breaker is open.
var ErrBreakerOpen = gobreaker.ErrOpenState

// Breaker sends GET and DELETE requests through a gobreaker circuit.
// Transport errors and 5xx responses count as failures.
type Breaker struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[*http.Response]
	name   string
}

// NewBreaker wraps client.
func NewBreaker(client *Client, cfg BreakerConfig, logger *slog.Logger) *Breaker {
	gauge := breakerState.WithLabelValues(cfg.Name)
	gauge.Set(0)

	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    cfg.Window,
		Timeout:     cfg.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.Requests >= cfg.TripAfter &&
				float64(c.TotalFailures) >= cfg.TripRatio*float64(c.Requests)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("search client breaker changed state",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			gauge.Set(float64(to))
		},
	})
	return &Breaker{client: client, cb: cb, name: cfg.Name}
}

// Get issues a GET for url.
func (b *Breaker) Get(ctx context.Context, url string) (*http.Response, error) {
	return b.send(ctx, http.MethodGet, url)
}

// Delete issues a DELETE for url.
func (b *Breaker) Delete(ctx context.Context, url string) (*http.Response, error) {
	return b.send(ctx, http.MethodDelete, url)
}

// State reports the current circuit state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}

func (b *Breaker) send(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	return b.cb.Execute(func() (*http.Response, error) {
		resp, err := b.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, ParseResponseError(resp, b.name)
		}
		return resp, nil
	})
}
