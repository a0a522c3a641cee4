package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"StockRadar/internal/model"
)

// RESTProvider implements Provider against a batch bar endpoint:
//
//	POST {BaseURL}/api/v1/bars/daily
//	{"symbols":["A","B"],"start":"2024-01-01","end":"2025-02-05"}
//
// answered with {"A":[{"timestamp":..., "close":...}], ...}.
type RESTProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

// NewRESTProvider creates a provider with optional proxy support.
func NewRESTProvider(baseURL, apiKey, proxyURL string, timeout time.Duration) *RESTProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RESTProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (f *RESTProvider) Name() string { return "rest" }

type restRequest struct {
	Symbols []string `json:"symbols"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
}

// restBar is the expected JSON shape of one bar.
type restBar struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

func (f *RESTProvider) FetchBars(ctx context.Context, symbols []string, start, end time.Time) (map[string][]model.OHLCV, error) {
	payload, err := json.Marshal(restRequest{
		Symbols: symbols,
		Start:   start.Format("2006-01-02"),
		End:     end.Format("2006-01-02"),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := f.BaseURL + "/api/v1/bars/daily"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if f.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+f.APIKey)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch bars: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch bars: status %d, body: %s", resp.StatusCode, string(body))
	}

	var raw map[string][]restBar
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode bars: %w", err)
	}

	out := make(map[string][]model.OHLCV, len(raw))
	for sym, rbs := range raw {
		bars := make([]model.OHLCV, len(rbs))
		for i, rb := range rbs {
			bars[i] = model.OHLCV{
				Time:   time.Unix(rb.Timestamp, 0).UTC(),
				Open:   rb.Open,
				High:   rb.High,
				Low:    rb.Low,
				Close:  rb.Close,
				Volume: rb.Volume,
			}
		}
		out[sym] = bars
	}
	return out, nil
}
