package trading

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assist-by/cryptobot/internal/domain"
	"github.com/assist-by/cryptobot/internal/exchange"
	"github.com/assist-by/cryptobot/internal/notification"
)

// fakeExchange는 테스트용 거래소입니다
type fakeExchange struct {
	mu sync.Mutex

	price    decimal.Decimal
	priceErr error
	recent   []decimal.Decimal

	coin     decimal.Decimal
	currency decimal.Decimal

	placeErr   error
	fillPrice  decimal.Decimal
	fillErr    error
	statuses   []domain.OrderStatus // GetOrder가 순서대로 반환
	placed     []domain.OrderRequest
	orderCalls int
}

var _ exchange.Exchange = (*fakeExchange)(nil)

func (f *fakeExchange) GetCurrentPrice(ctx context.Context) (decimal.Decimal, error) {
	return f.price, f.priceErr
}

func (f *fakeExchange) GetRecentPrices(ctx context.Context, lookback time.Duration) ([]decimal.Decimal, error) {
	return f.recent, nil
}

func (f *fakeExchange) GetCoinBalance(ctx context.Context) (decimal.Decimal, error) {
	return f.coin, nil
}

func (f *fakeExchange) GetCurrencyBalance(ctx context.Context) (decimal.Decimal, error) {
	return f.currency, nil
}

func (f *fakeExchange) GetOrder(ctx context.Context, orderID string) (*domain.OrderStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := f.orderCalls
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	f.orderCalls++
	s := f.statuses[i]
	return &s, nil
}

func (f *fakeExchange) GetOrderFillPrice(ctx context.Context, orderID string) (decimal.Decimal, error) {
	return f.fillPrice, f.fillErr
}

func (f *fakeExchange) PlaceOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.placeErr != nil {
		return "", f.placeErr
	}
	f.placed = append(f.placed, req)
	return "OTEST-1", nil
}

// recordingNotifier는 전송된 알림을 기록합니다
type recordingNotifier struct {
	trades []string
	errors []error
}

func (n *recordingNotifier) SendTrade(info notification.TradeInfo) error {
	n.trades = append(n.trades, string(info.Side)+":"+info.Trigger)
	return nil
}

func (n *recordingNotifier) SendError(err error) error {
	n.errors = append(n.errors, err)
	return nil
}

func (n *recordingNotifier) SendInfo(string) error { return nil }

// noSleep은 대기 시간을 기록만 하고 즉시 반환합니다
type noSleep struct {
	waits []time.Duration
}

func (s *noSleep) sleep(ctx context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return ctx.Err()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
