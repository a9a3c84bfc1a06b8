package trading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/cryptobot/internal/domain"
	"github.com/assist-by/cryptobot/internal/exchange"
)

func TestExecutor_PlaceOrder_Validation(t *testing.T) {
	ex := &fakeExchange{}
	e := NewExecutor(ex, ex, ExecutorConfig{})

	tests := []struct {
		name    string
		req     domain.OrderRequest
		wantErr bool
	}{
		{"시장가 주문", domain.NewMarketOrder(domain.Buy, dec("10")), false},
		{"지정가 주문", domain.NewLimitOrder(domain.Sell, dec("10"), dec("0.52")), false},
		{"가격 없는 지정가 주문", domain.OrderRequest{Side: domain.Buy, Type: domain.Limit, Volume: dec("10")}, true},
		{"가격 있는 시장가 주문", func() domain.OrderRequest {
			r := domain.NewMarketOrder(domain.Buy, dec("10"))
			p := dec("1")
			r.Price = &p
			return r
		}(), true},
		{"수량 0", domain.NewMarketOrder(domain.Sell, dec("0")), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(ex.placed)
			id, err := e.PlaceOrder(context.Background(), tt.req)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidOrder)
				assert.Len(t, ex.placed, before, "유효하지 않은 주문은 제출되지 않아야 함")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "OTEST-1", id)
			assert.Len(t, ex.placed, before+1)
		})
	}
}

func TestExecutor_ResolveFillPrice_SettleDelay(t *testing.T) {
	ex := &fakeExchange{fillPrice: dec("0.5214")}
	s := &noSleep{}
	e := NewExecutor(ex, ex, ExecutorConfig{SettleDelay: 10 * time.Second}, WithSleep(s.sleep))

	price, err := e.ResolveFillPrice(context.Background(), "O1")
	require.NoError(t, err)
	assert.True(t, dec("0.5214").Equal(price))
	assert.Equal(t, []time.Duration{10 * time.Second}, s.waits)
}

func TestExecutor_ResolveFillPrice_NotFilled(t *testing.T) {
	ex := &fakeExchange{fillErr: exchange.ErrOrderNotFilled}
	e := NewExecutor(ex, ex, ExecutorConfig{}, WithSleep((&noSleep{}).sleep))

	_, err := e.ResolveFillPrice(context.Background(), "O1")
	assert.ErrorIs(t, err, exchange.ErrOrderNotFilled)
}

func TestExecutor_ResolveFillPrice_Polling(t *testing.T) {
	ex := &fakeExchange{statuses: []domain.OrderStatus{
		{OrderID: "O1", Status: "pending"},
		{OrderID: "O1", Status: "open"},
		{OrderID: "O1", Status: "closed", Price: dec("0.53")},
	}}
	s := &noSleep{}
	e := NewExecutor(ex, ex, ExecutorConfig{
		SettleDelay:  time.Second,
		FillTimeout:  time.Minute,
		PollInterval: 2 * time.Second,
	}, WithSleep(s.sleep))

	price, err := e.ResolveFillPrice(context.Background(), "O1")
	require.NoError(t, err)
	assert.True(t, dec("0.53").Equal(price))
	assert.Equal(t, 3, ex.orderCalls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 2 * time.Second}, s.waits)
}

func TestExecutor_ResolveFillPrice_Canceled(t *testing.T) {
	ex := &fakeExchange{statuses: []domain.OrderStatus{{OrderID: "O1", Status: "canceled"}}}
	e := NewExecutor(ex, ex, ExecutorConfig{FillTimeout: time.Minute}, WithSleep((&noSleep{}).sleep))

	_, err := e.ResolveFillPrice(context.Background(), "O1")
	assert.ErrorIs(t, err, exchange.ErrOrderNotFilled)
}

func TestExecutor_ResolveFillPrice_Timeout(t *testing.T) {
	ex := &fakeExchange{statuses: []domain.OrderStatus{{OrderID: "O1", Status: "open"}}}
	e := NewExecutor(ex, ex, ExecutorConfig{
		FillTimeout:  30 * time.Millisecond,
		PollInterval: 5 * time.Millisecond,
	})

	_, err := e.ResolveFillPrice(context.Background(), "O1")
	assert.ErrorIs(t, err, exchange.ErrOrderNotFilled)
	assert.Greater(t, ex.orderCalls, 1)
}

func TestExecutor_Execute(t *testing.T) {
	t.Run("성공", func(t *testing.T) {
		ex := &fakeExchange{fillPrice: dec("0.52")}
		e := NewExecutor(ex, ex, ExecutorConfig{}, WithSleep((&noSleep{}).sleep))

		res, err := e.Execute(context.Background(), domain.NewMarketOrder(domain.Buy, dec("10")))
		require.NoError(t, err)
		assert.Equal(t, "OTEST-1", res.OrderID)
		assert.True(t, dec("0.52").Equal(res.FilledPrice))
	})

	t.Run("주문 실패는 order 단계", func(t *testing.T) {
		ex := &fakeExchange{placeErr: &exchange.RejectionError{Op: "AddOrder", Messages: []string{"EOrder:Insufficient funds"}}}
		e := NewExecutor(ex, ex, ExecutorConfig{})

		_, err := e.Execute(context.Background(), domain.NewMarketOrder(domain.Buy, dec("10")))
		var te *TickError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, StageOrder, te.Stage)
		assert.Equal(t, "rejection", exchange.Kind(err))
	})

	t.Run("체결 확인 실패는 fill 단계", func(t *testing.T) {
		ex := &fakeExchange{fillErr: &exchange.DataShapeError{Op: "QueryOrders", Field: "price", Err: errors.New("없음")}}
		e := NewExecutor(ex, ex, ExecutorConfig{}, WithSleep((&noSleep{}).sleep))

		_, err := e.Execute(context.Background(), domain.NewMarketOrder(domain.Buy, dec("10")))
		var te *TickError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, StageFill, te.Stage)
		assert.Equal(t, "data_shape", exchange.Kind(err))
	})
}
