package bankledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

//go:generate mockgen -destination=mocks/mock_ratesource.go -package=mocks . RateSource

// Rates maps a currency code to the number of units bought by one EUR.
type Rates map[string]decimal.Decimal

// Rate reports false for a missing or non-positive rate.
func (r Rates) Rate(currency string) (decimal.Decimal, bool) {
	rate, ok := r[strings.ToUpper(currency)]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, false
	}
	return rate, true
}

type RateSource interface {
	Rates(ctx context.Context) (Rates, error)
}

// StaticRates is a fixed RateSource.
type StaticRates Rates

func (s StaticRates) Rates(context.Context) (Rates, error) {
	return Rates(s), nil
}

// HTTPRateSource reads EUR reference rates from a Frankfurter compatible
// endpoint. Responses are cached for TTL. Fetches go through a circuit breaker
// and the last good snapshot is served while it is open.
type HTTPRateSource struct {
	endpoint   string
	currencies []string
	ttl        time.Duration
	client     *http.Client
	breaker    *gobreaker.CircuitBreaker[Rates]
	log        *zerolog.Logger

	mu      sync.Mutex
	last    Rates
	fetched time.Time
}

var (
	_ RateSource = (*HTTPRateSource)(nil)
)

func NewHTTPRateSource(cfg RatesConfig, client *http.Client, log *zerolog.Logger) *HTTPRateSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	breaker := gobreaker.NewCircuitBreaker[Rates](gobreaker.Settings{
		Name:        "rates",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("breaker", name).
				Stringer("from", from).
				Stringer("to", to).
				Msg("rate source breaker changed state")
		},
	})
	return &HTTPRateSource{
		endpoint:   cfg.URL,
		currencies: cfg.Currencies,
		ttl:        cfg.TTL,
		client:     client,
		breaker:    breaker,
		log:        log,
	}
}

func (h *HTTPRateSource) Rates(ctx context.Context) (Rates, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last != nil && time.Since(h.fetched) < h.ttl {
		return h.last, nil
	}

	rates, err := h.breaker.Execute(func() (Rates, error) {
		return h.fetch(ctx)
	})
	if err != nil {
		if h.last != nil {
			h.log.Warn().Err(err).Time("fetched", h.fetched).Msg("serving stale rates")
			return h.last, nil
		}
		return Rates{}, err
	}
	h.last = rates
	h.fetched = time.Now()
	return rates, nil
}

type frankfurterResp struct {
	Base  string                     `json:"base"`
	Date  string                     `json:"date"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

func (h *HTTPRateSource) fetch(ctx context.Context) (Rates, error) {
	q := url.Values{}
	q.Set("from", BaseCurrency)
	if len(h.currencies) > 0 {
		q.Set("to", strings.Join(h.currencies, ","))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate source returned %s", resp.Status)
	}

	var body frankfurterResp
	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding rates: %w", err)
	}
	rates := make(Rates, len(body.Rates))
	for cur, rate := range body.Rates {
		rates[strings.ToUpper(cur)] = rate
	}
	return rates, nil
}
