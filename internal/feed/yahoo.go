package feed

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
	"github.com/valyala/fasthttp"

	"github.com/Modertool999/arb-detection/internal/series"
)

const yahooUserAgent = "Mozilla/5.0 (compatible; arb-detection/1.0)"

type yahooClient struct {
	baseURL string
	timeout time.Duration
	client  *fasthttp.Client
}

func newYahooClient(baseURL string, timeout time.Duration) *yahooClient {
	return &yahooClient{
		baseURL: baseURL,
		timeout: timeout,
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
	}
}

func (y *yahooClient) fetch(ctx context.Context, symbol, period, interval string) ([]series.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf("%s/v8/finance/chart/%s", y.baseURL, url.PathEscape(symbol)))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", yahooUserAgent)
	req.Header.Set("Accept", "application/json")
	args := req.URI().QueryArgs()
	args.Set("range", period)
	args.Set("interval", interval)
	args.Set("includePrePost", "false")
	args.Set("events", "div,splits")

	deadline := time.Now().Add(y.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := y.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}

	body := resp.Body()
	status := resp.StatusCode()
	if status == fasthttp.StatusNotFound {
		return nil, fmt.Errorf("%w: %s: %s", ErrNoData, symbol, gjson.GetBytes(body, "chart.error.description").String())
	}
	if status != fasthttp.StatusOK {
		return nil, fmt.Errorf("yahoo chart %s: unexpected status %d", symbol, status)
	}
	return parseChart(symbol, interval, body)
}

// parseChart decodes a v8 chart payload. Adjusted closes replace the raw close and scale the
// other prices by the same factor. Daily-or-longer bars are keyed by the exchange-local date.
func parseChart(symbol, interval string, body []byte) ([]series.Bar, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("yahoo chart %s: invalid json", symbol)
	}
	chart := gjson.GetBytes(body, "chart")
	if e := chart.Get("error"); e.Exists() && e.Type != gjson.Null {
		return nil, fmt.Errorf("%w: %s: %s", ErrNoData, symbol, e.Get("description").String())
	}
	result := chart.Get("result.0")
	if !result.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	adj := result.Get("indicators.adjclose.0.adjclose").Array()

	offset := time.Duration(result.Get("meta.gmtoffset").Int()) * time.Second
	daily := Daily(interval)

	bars := make([]series.Bar, 0, len(timestamps))
	for i, ts := range timestamps {
		t := time.Unix(ts.Int(), 0).UTC()
		if daily {
			local := t.Add(offset)
			t = time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
		}

		bar := series.Bar{
			Time:   t,
			Open:   value(opens, i),
			High:   value(highs, i),
			Low:    value(lows, i),
			Close:  value(closes, i),
			Volume: value(volumes, i),
		}
		if a := value(adj, i); !math.IsNaN(a) && !math.IsNaN(bar.Close) && bar.Close != 0 {
			ratio := a / bar.Close
			bar.Open *= ratio
			bar.High *= ratio
			bar.Low *= ratio
			bar.Close = a
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func value(arr []gjson.Result, i int) float64 {
	if i >= len(arr) || arr[i].Type == gjson.Null {
		return math.NaN()
	}
	return arr[i].Float()
}
