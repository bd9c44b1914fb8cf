package trading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CryptoModelBot/internal/metrics"
	"CryptoModelBot/internal/models"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Decision is a market order the pipeline wants placed.
type Decision struct {
	Symbol   string  `json:"symbol"`
	Side     string  `json:"side"`
	Quantity float64 `json:"quantity"`

	ModelFullName string `json:"model,omitempty"`
}

// Exchange quantities are sent with this many decimal places.
const QuantityPrecision = 6

// OrderSubmitter is the slice of the exchange client the trader needs.
type OrderSubmitter interface {
	HasCredentials() bool
	SubmitMarketOrder(ctx context.Context, symbol, side, quantity, clientOrderID string) (*gobinance.CreateOrderResponse, error)
}

// OrderRecorder persists every order the trader handles. Orders sent to the
// exchange are created as pending and updated with the exchange's answer.
type OrderRecorder interface {
	Create(order *models.Order) error
	Update(order *models.Order) error
}

type Trader struct {
	exchange OrderSubmitter
	recorder OrderRecorder
	logger   zerolog.Logger

	newID func() string
	now   func() time.Time
}

// NewTrader creates a trader. recorder may be nil.
func NewTrader(exchange OrderSubmitter, recorder OrderRecorder, logger zerolog.Logger) *Trader {
	return &Trader{
		exchange: exchange,
		recorder: recorder,
		logger:   logger.With().Str("component", "trader").Logger(),
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// FormatQuantity renders q with QuantityPrecision decimals.
func FormatQuantity(q float64) string {
	return decimal.NewFromFloat(q).StringFixed(QuantityPrecision)
}

// Execute places d as a market order. Without exchange credentials the
// decision is recorded as skipped and no error is returned.
func (t *Trader) Execute(ctx context.Context, d Decision) (*models.Order, error) {
	if d.Symbol == "" {
		return nil, errors.New("decision has no symbol")
	}
	if d.Side != models.OrderSideBuy && d.Side != models.OrderSideSell {
		return nil, fmt.Errorf("unsupported side %q", d.Side)
	}
	if d.Quantity <= 0 {
		return nil, fmt.Errorf("invalid quantity %v", d.Quantity)
	}

	order := &models.Order{
		ClientOrderID: t.newID(),
		Symbol:        d.Symbol,
		Side:          d.Side,
		Quantity:      d.Quantity,
		ModelFullName: d.ModelFullName,
		CreatedAt:     t.now(),
	}

	if !t.exchange.HasCredentials() {
		order.Status = models.OrderStatusSkipped
		order.Reason = "exchange credentials not configured"
		order.UpdatedAt = order.CreatedAt
		t.logger.Warn().
			Str("symbol", d.Symbol).
			Str("side", d.Side).
			Msg("Binance credentials missing, skipping order")

		metrics.OrdersTotal.WithLabelValues(order.Symbol, order.Side, order.Status).Inc()
		if t.recorder != nil {
			if err := t.recorder.Create(order); err != nil {
				t.logger.Error().Err(err).Str("client_order_id", order.ClientOrderID).Msg("Failed to record order")
				return order, fmt.Errorf("record order: %w", err)
			}
		}
		return order, nil
	}

	// An order is never sent before it has been recorded.
	order.Status = models.OrderStatusPending
	order.UpdatedAt = order.CreatedAt
	if t.recorder != nil {
		if err := t.recorder.Create(order); err != nil {
			t.logger.Error().Err(err).Str("client_order_id", order.ClientOrderID).Msg("Failed to record order, not submitting")
			return nil, fmt.Errorf("record order: %w", err)
		}
	}

	var execErr error
	quantity := FormatQuantity(d.Quantity)
	resp, err := t.exchange.SubmitMarketOrder(ctx, d.Symbol, d.Side, quantity, order.ClientOrderID)
	if err != nil {
		order.Status = models.OrderStatusFailed
		order.Reason = err.Error()
		execErr = fmt.Errorf("execute %s %s: %w", d.Side, d.Symbol, err)
		t.logger.Error().Err(err).Str("symbol", d.Symbol).Msg("Order submission failed")
	} else {
		order.Status = models.OrderStatusSubmitted
		order.ExchangeOrderID = resp.OrderID
		order.Reason = string(resp.Status)
		t.logger.Info().
			Str("symbol", d.Symbol).
			Str("side", d.Side).
			Str("quantity", quantity).
			Int64("order_id", resp.OrderID).
			Str("status", string(resp.Status)).
			Msg("Order placed")
	}
	order.UpdatedAt = t.now()

	metrics.OrdersTotal.WithLabelValues(order.Symbol, order.Side, order.Status).Inc()

	if t.recorder != nil {
		if err := t.recorder.Update(order); err != nil {
			t.logger.Error().Err(err).Str("client_order_id", order.ClientOrderID).Msg("Failed to update order")
			if execErr == nil {
				execErr = fmt.Errorf("update order: %w", err)
			}
		}
	}

	return order, execErr
}
