package trading

import (
	"context"
	"errors"
	"testing"

	"CryptoModelBot/internal/models"

	gobinance "github.com/adshao/go-binance/v2"
	"github.com/rs/zerolog"
)

type fakeExchange struct {
	creds bool
	err   error

	calls    int
	quantity string
	clientID string
}

func (f *fakeExchange) HasCredentials() bool { return f.creds }

func (f *fakeExchange) SubmitMarketOrder(_ context.Context, symbol, side, quantity, clientOrderID string) (*gobinance.CreateOrderResponse, error) {
	f.calls++
	f.quantity = quantity
	f.clientID = clientOrderID
	if f.err != nil {
		return nil, f.err
	}
	return &gobinance.CreateOrderResponse{Symbol: symbol, OrderID: 42, Status: gobinance.OrderStatusTypeFilled}, nil
}

// memRecorder keeps the latest state of each order and the status it had at
// every write.
type memRecorder struct {
	orders    []models.Order
	writes    []string
	createErr error
}

func (m *memRecorder) Create(order *models.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.orders = append(m.orders, *order)
	m.writes = append(m.writes, "create:"+order.Status)
	return nil
}

func (m *memRecorder) Update(order *models.Order) error {
	for i := range m.orders {
		if m.orders[i].ClientOrderID == order.ClientOrderID {
			m.orders[i] = *order
			m.writes = append(m.writes, "update:"+order.Status)
			return nil
		}
	}
	return errors.New("order not found")
}

func newTestTrader(ex OrderSubmitter, rec OrderRecorder) *Trader {
	t := NewTrader(ex, rec, zerolog.Nop())
	t.newID = func() string { return "fixed-id" }
	return t
}

func TestFormatQuantity(t *testing.T) {
	cases := map[float64]string{
		0.001:      "0.001000",
		1:          "1.000000",
		0.1234567:  "0.123457",
		12.5000001: "12.500000",
	}
	for in, want := range cases {
		if got := FormatQuantity(in); got != want {
			t.Errorf("FormatQuantity(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestExecuteSkipsWithoutCredentials(t *testing.T) {
	ex := &fakeExchange{}
	rec := &memRecorder{}

	order, err := newTestTrader(ex, rec).Execute(context.Background(), Decision{Symbol: "BTCUSDT", Side: models.OrderSideBuy, Quantity: 0.001})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if order.Status != models.OrderStatusSkipped {
		t.Fatalf("status = %q, want skipped", order.Status)
	}
	if ex.calls != 0 {
		t.Fatalf("exchange called %d times without credentials", ex.calls)
	}
	if len(rec.orders) != 1 || len(rec.writes) != 1 || rec.writes[0] != "create:skipped" {
		t.Fatalf("recorder writes = %v", rec.writes)
	}
}

func TestExecuteSubmitsOrder(t *testing.T) {
	ex := &fakeExchange{creds: true}
	rec := &memRecorder{}

	order, err := newTestTrader(ex, rec).Execute(context.Background(), Decision{
		Symbol: "BTCUSDT", Side: models.OrderSideBuy, Quantity: 0.001, ModelFullName: "alice/bot",
	})
	if err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if ex.quantity != "0.001000" || ex.clientID != "fixed-id" {
		t.Fatalf("submitted quantity=%q client id=%q", ex.quantity, ex.clientID)
	}
	if order.Status != models.OrderStatusSubmitted || order.ExchangeOrderID != 42 {
		t.Fatalf("order = %+v", order)
	}
	if rec.orders[0].ModelFullName != "alice/bot" || rec.orders[0].ExchangeOrderID != 42 {
		t.Fatalf("recorded order = %+v", rec.orders[0])
	}
	if len(rec.writes) != 2 || rec.writes[0] != "create:pending" || rec.writes[1] != "update:submitted" {
		t.Fatalf("recorder writes = %v, want pending then submitted", rec.writes)
	}
}

func TestExecuteDoesNotSubmitUnrecordedOrder(t *testing.T) {
	ex := &fakeExchange{creds: true}
	rec := &memRecorder{createErr: errors.New("db down")}

	order, err := newTestTrader(ex, rec).Execute(context.Background(), Decision{Symbol: "BTCUSDT", Side: models.OrderSideBuy, Quantity: 1})
	if err == nil || order != nil {
		t.Fatalf("Execute = %+v, %v; want error", order, err)
	}
	if ex.calls != 0 {
		t.Fatalf("exchange called %d times for an unrecorded order", ex.calls)
	}
}

func TestExecuteReportsSubmissionFailure(t *testing.T) {
	boom := errors.New("insufficient balance")
	ex := &fakeExchange{creds: true, err: boom}
	rec := &memRecorder{}

	order, err := newTestTrader(ex, rec).Execute(context.Background(), Decision{Symbol: "BTCUSDT", Side: models.OrderSideBuy, Quantity: 1})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if order.Status != models.OrderStatusFailed || len(rec.orders) != 1 || rec.orders[0].Status != models.OrderStatusFailed {
		t.Fatalf("order = %+v, recorded %+v", order, rec.orders)
	}
}

func TestExecuteRejectsInvalidDecision(t *testing.T) {
	trader := newTestTrader(&fakeExchange{creds: true}, nil)
	bad := []Decision{
		{Side: models.OrderSideBuy, Quantity: 1},
		{Symbol: "BTCUSDT", Side: "HOLD", Quantity: 1},
		{Symbol: "BTCUSDT", Side: models.OrderSideBuy, Quantity: 0},
	}
	for _, d := range bad {
		if _, err := trader.Execute(context.Background(), d); err == nil {
			t.Errorf("Execute(%+v) succeeded", d)
		}
	}
}
