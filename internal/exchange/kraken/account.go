package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/assist-by/cryptobot/internal/domain"
	"github.com/assist-by/cryptobot/internal/exchange"
)

// GetBalance는 계정의 전체 자산 잔고를 조회합니다
func (c *Client) GetBalance(ctx context.Context) (map[string]decimal.Decimal, error) {
	const op = "Balance"

	raw, err := c.Send(ctx, pathBalance, nil)
	if err != nil {
		return nil, fmt.Errorf("잔고 조회 실패: %w", err)
	}

	var result map[string]string
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &exchange.DataShapeError{Op: op, Field: "result", Err: err}
	}

	balances := make(map[string]decimal.Decimal, len(result))
	for asset, v := range result {
		d, err := parseDecimal(op, asset, v)
		if err != nil {
			return nil, err
		}
		balances[asset] = d
	}

	return balances, nil
}

// GetCoinBalance는 보유 코인 수량을 조회합니다
func (c *Client) GetCoinBalance(ctx context.Context) (decimal.Decimal, error) {
	return c.balanceOf(ctx, c.pair.Coin)
}

// GetCurrencyBalance는 보유 통화 잔고를 조회합니다
func (c *Client) GetCurrencyBalance(ctx context.Context) (decimal.Decimal, error) {
	return c.balanceOf(ctx, c.pair.Currency)
}

// balanceOf는 특정 자산의 잔고를 반환합니다. 응답에 자산이 없으면 0입니다.
func (c *Client) balanceOf(ctx context.Context, asset string) (decimal.Decimal, error) {
	balances, err := c.GetBalance(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	b, ok := balances[asset]
	if !ok {
		c.log.WithField("asset", asset).Warn("잔고 응답에 자산이 없어 0으로 처리합니다")
		return decimal.Zero, nil
	}
	return b, nil
}

// GetOrder는 주문 ID로 주문 상태를 조회합니다
func (c *Client) GetOrder(ctx context.Context, orderID string) (*domain.OrderStatus, error) {
	const op = "QueryOrders"

	raw, err := c.Send(ctx, pathQueryOrders, url.Values{
		"txid":   {orderID},
		"trades": {"true"},
	})
	if err != nil {
		return nil, fmt.Errorf("주문 조회 실패 [%s]: %w", orderID, err)
	}

	var result map[string]struct {
		Status  string `json:"status"`
		Price   string `json:"price"`
		VolExec string `json:"vol_exec"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &exchange.DataShapeError{Op: op, Field: "result", Err: err}
	}

	o, ok := result[orderID]
	if !ok {
		return nil, &exchange.DataShapeError{Op: op, Field: "result." + orderID}
	}

	status := &domain.OrderStatus{OrderID: orderID, Status: o.Status}
	if o.Price != "" {
		if status.Price, err = parseDecimal(op, "price", o.Price); err != nil {
			return nil, err
		}
	}
	if o.VolExec != "" {
		if status.VolumeExecuted, err = parseDecimal(op, "vol_exec", o.VolExec); err != nil {
			return nil, err
		}
	}

	return status, nil
}

// GetOrderFillPrice는 주문의 평균 체결 가격을 반환합니다
func (c *Client) GetOrderFillPrice(ctx context.Context, orderID string) (decimal.Decimal, error) {
	status, err := c.GetOrder(ctx, orderID)
	if err != nil {
		return decimal.Zero, err
	}

	if !status.Price.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w [%s, 상태: %s]", exchange.ErrOrderNotFilled, orderID, status.Status)
	}
	return status.Price, nil
}
