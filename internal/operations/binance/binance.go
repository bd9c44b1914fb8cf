package binance

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Binance returns at most this many candles per klines request.
const maxKlinesPerRequest = 1000

type BinanceClient struct {
	client      *gobinance.Client
	rateLimiter *rate.Limiter
	logger      zerolog.Logger

	maxRetries int
	backoff    time.Duration
	pageLimit  int
	now        func() time.Time
}

// NewBinanceClient builds a spot client. An empty baseURL keeps the SDK
// default endpoint.
func NewBinanceClient(apiKey, secretKey, baseURL string, logger zerolog.Logger) *BinanceClient {
	httpClient := &http.Client{
		Timeout: time.Second * 30,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	spotClient := gobinance.NewClient(apiKey, secretKey)
	spotClient.HTTPClient = httpClient
	if baseURL != "" {
		spotClient.BaseURL = baseURL
	}

	// 10 requests per second with burst of 20
	limiter := rate.NewLimiter(rate.Limit(10), 20)

	return &BinanceClient{
		client:      spotClient,
		rateLimiter: limiter,
		logger:      logger.With().Str("component", "binance").Logger(),
		maxRetries:  3,
		backoff:     100 * time.Millisecond,
		pageLimit:   maxKlinesPerRequest,
		now:         time.Now,
	}
}

// HasCredentials reports whether signed endpoints can be called.
func (c *BinanceClient) HasCredentials() bool {
	return c.client.APIKey != "" && c.client.SecretKey != ""
}

func (c *BinanceClient) GetKlines(ctx context.Context, symbol, interval string, startTime, endTime int64, limit int) ([]*gobinance.Kline, error) {
	var klines []*gobinance.Kline

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		// Wait for rate limiter
		err := c.rateLimiter.Wait(ctx)
		if err != nil {
			return nil, err
		}

		klines, err = c.client.NewKlinesService().
			Symbol(symbol).
			Interval(interval).
			StartTime(startTime).
			EndTime(endTime).
			Limit(limit).
			Do(ctx)

		if err == nil {
			return klines, nil
		}

		if attempt == c.maxRetries {
			return nil, fmt.Errorf("fetch klines %s %s: %w", symbol, interval, err)
		}

		waitTime := time.Duration(math.Pow(2, float64(attempt))) * c.backoff
		c.logger.Warn().Err(err).Int("attempt", attempt+1).Dur("wait", waitTime).Msg("Klines request failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return klines, nil
}

// GetDailyCloses returns the close prices of every candle in the last
// lookbackYears*365 days, oldest first.
func (c *BinanceClient) GetDailyCloses(ctx context.Context, symbol, interval string, lookbackYears int) ([]float64, error) {
	endTime := c.now().UTC()
	startTime := endTime.AddDate(0, 0, -lookbackYears*365)

	startMs := startTime.UnixMilli()
	endMs := endTime.UnixMilli()

	c.logger.Info().
		Str("symbol", symbol).
		Str("interval", interval).
		Time("start", startTime).
		Time("end", endTime).
		Msg("Requesting historical data")

	var closes []float64
	for currentStart := startMs; currentStart < endMs; {
		klines, err := c.GetKlines(ctx, symbol, interval, currentStart, endMs, c.pageLimit)
		if err != nil {
			return nil, err
		}

		for _, k := range klines {
			price, err := strconv.ParseFloat(k.Close, 64)
			if err != nil {
				return nil, fmt.Errorf("parse close %q at %d: %w", k.Close, k.OpenTime, err)
			}
			closes = append(closes, price)
		}

		if len(klines) < c.pageLimit {
			break
		}
		next := klines[len(klines)-1].CloseTime + 1
		if next <= currentStart {
			break
		}
		currentStart = next
	}

	c.logger.Info().Int("candles", len(closes)).Msg("Fetched daily candles")
	return closes, nil
}

// SubmitMarketOrder places a signed MARKET order. quantity is sent verbatim.
func (c *BinanceClient) SubmitMarketOrder(ctx context.Context, symbol, side, quantity, clientOrderID string) (*gobinance.CreateOrderResponse, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	service := c.client.NewCreateOrderService().
		Symbol(symbol).
		Side(gobinance.SideType(side)).
		Type(gobinance.OrderTypeMarket).
		Quantity(quantity)
	if clientOrderID != "" {
		service = service.NewClientOrderID(clientOrderID)
	}

	resp, err := service.Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("submit %s %s order: %w", side, symbol, err)
	}
	return resp, nil
}
