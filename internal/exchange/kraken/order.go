package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/cryptobot/internal/domain"
	"github.com/assist-by/cryptobot/internal/exchange"
)

// PlaceOrder는 새로운 주문을 생성하고 첫 번째 txid를 반환합니다
func (c *Client) PlaceOrder(ctx context.Context, order domain.OrderRequest) (string, error) {
	const op = "AddOrder"

	if err := order.Validate(); err != nil {
		return "", err
	}

	volume := order.Volume.Truncate(c.pair.VolumeDecimals)
	if !volume.IsPositive() {
		return "", fmt.Errorf("%w: 수량 %s이 최소 단위보다 작습니다", domain.ErrInvalidOrder, order.Volume)
	}

	params := url.Values{}
	params.Set("ordertype", string(order.Type))
	params.Set("type", string(order.Side))
	params.Set("volume", volume.String())
	params.Set("pair", c.pair.Symbol)
	params.Set("cl_ord_id", uuid.NewString())

	if order.Type == domain.Limit {
		params.Set("price", order.Price.Round(c.pair.PriceDecimals).String())
	}

	raw, err := c.Send(ctx, pathAddOrder, params)
	if err != nil {
		return "", fmt.Errorf("주문 실행 실패 [페어: %s, 방향: %s, 타입: %s, 수량: %s]: %w",
			c.pair.Symbol, order.Side, order.Type, volume, err)
	}

	var result struct {
		Descr struct {
			Order string `json:"order"`
		} `json:"descr"`
		TxID []string `json:"txid"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", &exchange.DataShapeError{Op: op, Field: "result", Err: err}
	}
	if len(result.TxID) == 0 || result.TxID[0] == "" {
		return "", &exchange.DataShapeError{Op: op, Field: "txid"}
	}

	c.log.WithFields(logrus.Fields{
		"txid":  result.TxID[0],
		"descr": result.Descr.Order,
	}).Info("주문 접수 완료")

	return result.TxID[0], nil
}
