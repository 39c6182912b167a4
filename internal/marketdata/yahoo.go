package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wiccy46/stockmanager/types"
)

const defaultBaseURL = "https://query1.finance.yahoo.com"

type cachedInfo struct {
	info    types.TickerInfo
	fetched time.Time
}

// YahooClient resolves symbols against the Yahoo Finance v8 chart endpoint.
// Responses are cached per symbol with a TTL so repeated trades on the same
// ticker do not hammer the API.
type YahooClient struct {
	cli     *http.Client
	baseURL string
	ttl     time.Duration

	mu    sync.RWMutex
	cache map[string]cachedInfo
}

type YahooOption func(*YahooClient)

// WithBaseURL points the client at a different endpoint, used in tests.
func WithBaseURL(u string) YahooOption {
	return func(c *YahooClient) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) YahooOption {
	return func(c *YahooClient) { c.cli.Timeout = d }
}

// WithCacheTTL overrides how long a resolved quote is served from cache.
func WithCacheTTL(d time.Duration) YahooOption {
	return func(c *YahooClient) { c.ttl = d }
}

func NewYahooClient(opts ...YahooOption) *YahooClient {
	c := &YahooClient{
		cli:     &http.Client{Timeout: 8 * time.Second},
		baseURL: defaultBaseURL,
		ttl:     60 * time.Second,
		cache:   make(map[string]cachedInfo),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Currency           string  `json:"currency"`
				Symbol             string  `json:"symbol"`
				FullExchangeName   string  `json:"fullExchangeName"`
				ExchangeName       string  `json:"exchangeName"`
				ShortName          string  `json:"shortName"`
				LongName           string  `json:"longName"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

func (c *YahooClient) Resolve(ctx context.Context, symbol string) (types.TickerInfo, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return types.TickerInfo{}, UnknownSymbolErr
	}

	c.mu.RLock()
	if cached, ok := c.cache[symbol]; ok && time.Since(cached.fetched) < c.ttl {
		c.mu.RUnlock()
		return cached.info, nil
	}
	c.mu.RUnlock()

	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1d", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return types.TickerInfo{}, err
	}
	req.Header.Set("User-Agent", "stockmanager/1.0")

	resp, err := c.cli.Do(req)
	if err != nil {
		return types.TickerInfo{}, fmt.Errorf("%w: %v", UnavailableErr, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return types.TickerInfo{}, fmt.Errorf("%w: %s", UnknownSymbolErr, symbol)
	case resp.StatusCode != http.StatusOK:
		// Rate limits and server errors alike are transient to the caller.
		return types.TickerInfo{}, fmt.Errorf("%w: yahoo http %d", UnavailableErr, resp.StatusCode)
	}

	var raw chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return types.TickerInfo{}, fmt.Errorf("%w: decode: %v", UnavailableErr, err)
	}
	if len(raw.Chart.Result) == 0 {
		return types.TickerInfo{}, fmt.Errorf("%w: %s", UnknownSymbolErr, symbol)
	}

	meta := raw.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return types.TickerInfo{}, fmt.Errorf("%w: %s", UnknownSymbolErr, symbol)
	}

	name := meta.LongName
	if name == "" {
		name = meta.ShortName
	}
	exchange := meta.FullExchangeName
	if exchange == "" {
		exchange = meta.ExchangeName
	}

	info := types.TickerInfo{
		Symbol:   symbol,
		Name:     name,
		Exchange: exchange,
		Currency: meta.Currency,
		Price:    decimal.NewFromFloat(meta.RegularMarketPrice),
	}

	c.mu.Lock()
	c.cache[symbol] = cachedInfo{info: info, fetched: time.Now()}
	c.mu.Unlock()

	return info, nil
}
