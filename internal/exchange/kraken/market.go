package kraken

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assist-by/cryptobot/internal/domain"
	"github.com/assist-by/cryptobot/internal/exchange"
)

// GetCurrentPrice는 Ticker의 최우선 매도호가를 조회합니다
func (c *Client) GetCurrentPrice(ctx context.Context) (decimal.Decimal, error) {
	const op = "Ticker"

	raw, err := c.get(ctx, pathTicker, url.Values{"pair": {c.pair.Symbol}})
	if err != nil {
		return decimal.Zero, err
	}

	var result map[string]json.RawMessage
	if err := json.Unmarshal(raw, &result); err != nil {
		return decimal.Zero, &exchange.DataShapeError{Op: op, Field: "result", Err: err}
	}

	entry, ok := pairEntry(result, c.pair.Symbol)
	if !ok {
		return decimal.Zero, &exchange.DataShapeError{Op: op, Field: "result." + c.pair.Symbol}
	}

	var ticker struct {
		Ask []string `json:"a"` // [가격, 전체 수량, 로트 수량]
	}
	if err := json.Unmarshal(entry, &ticker); err != nil {
		return decimal.Zero, &exchange.DataShapeError{Op: op, Field: "a", Err: err}
	}
	if len(ticker.Ask) == 0 {
		return decimal.Zero, &exchange.DataShapeError{Op: op, Field: "a"}
	}

	return parseDecimal(op, "a[0]", ticker.Ask[0])
}

// GetCandles는 1분봉 OHLC 데이터를 오래된 순서로 조회합니다
func (c *Client) GetCandles(ctx context.Context) (domain.CandleList, error) {
	const op = "OHLC"

	raw, err := c.get(ctx, pathOHLC, url.Values{"pair": {c.pair.Symbol}, "interval": {"1"}})
	if err != nil {
		return nil, err
	}

	var result map[string]json.RawMessage
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &exchange.DataShapeError{Op: op, Field: "result", Err: err}
	}

	entry, ok := pairEntry(result, c.pair.Symbol)
	if !ok {
		return nil, &exchange.DataShapeError{Op: op, Field: "result." + c.pair.Symbol}
	}

	// [time, open, high, low, close, vwap, volume, count]
	var rows [][]json.RawMessage
	if err := json.Unmarshal(entry, &rows); err != nil {
		return nil, &exchange.DataShapeError{Op: op, Field: c.pair.Symbol, Err: err}
	}

	candles := make(domain.CandleList, 0, len(rows))
	for i, row := range rows {
		candle, err := parseCandle(row)
		if err != nil {
			return nil, &exchange.DataShapeError{Op: op, Field: fmt.Sprintf("%s[%d]", c.pair.Symbol, i), Err: err}
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

// GetRecentPrices는 lookback 기간 안의 1분봉 종가를 오래된 순서로 반환합니다.
// lookback이 0 이하이면 응답에 포함된 모든 캔들을 사용합니다.
func (c *Client) GetRecentPrices(ctx context.Context, lookback time.Duration) ([]decimal.Decimal, error) {
	candles, err := c.GetCandles(ctx)
	if err != nil {
		return nil, err
	}

	if lookback > 0 {
		candles = candles.Since(c.now().Add(-lookback))
	}

	return candles.Closes(), nil
}

func parseCandle(row []json.RawMessage) (domain.Candle, error) {
	if len(row) < 5 {
		return domain.Candle{}, fmt.Errorf("필드 수 부족: %d", len(row))
	}

	var ts int64
	if err := json.Unmarshal(row[0], &ts); err != nil {
		return domain.Candle{}, fmt.Errorf("시간 파싱 실패: %w", err)
	}

	values := make([]decimal.Decimal, 4)
	for i := range values {
		var s string
		if err := json.Unmarshal(row[i+1], &s); err != nil {
			return domain.Candle{}, fmt.Errorf("가격 파싱 실패: %w", err)
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return domain.Candle{}, fmt.Errorf("가격 변환 실패: %w", err)
		}
		values[i] = d
	}

	return domain.Candle{
		Time:  time.Unix(ts, 0).UTC(),
		Open:  values[0],
		High:  values[1],
		Low:   values[2],
		Close: values[3],
	}, nil
}
