package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Candle은 1분봉 OHLC 데이터를 표현합니다
type Candle struct {
	Time  time.Time // 캔들 시작 시간
	Open  decimal.Decimal
	High  decimal.Decimal
	Low   decimal.Decimal
	Close decimal.Decimal
}

// CandleList는 시간순(오래된 것 먼저) 캔들 목록입니다
type CandleList []Candle

// GetLastCandle은 가장 최근 캔들을 반환합니다
func (cl CandleList) GetLastCandle() (Candle, bool) {
	if len(cl) == 0 {
		return Candle{}, false
	}
	return cl[len(cl)-1], true
}

// Since는 from 이후에 시작한 캔들만 반환합니다
func (cl CandleList) Since(from time.Time) CandleList {
	var out CandleList
	for _, c := range cl {
		if !c.Time.Before(from) {
			out = append(out, c)
		}
	}
	return out
}

// Closes는 각 캔들의 종가를 순서대로 반환합니다
func (cl CandleList) Closes() []decimal.Decimal {
	prices := make([]decimal.Decimal, len(cl))
	for i, c := range cl {
		prices[i] = c.Close
	}
	return prices
}

// Median은 가격 목록의 중앙값을 계산합니다. 목록이 비어 있으면 false를 반환합니다.
func Median(prices []decimal.Decimal) (decimal.Decimal, bool) {
	if len(prices) == 0 {
		return decimal.Zero, false
	}

	sorted := make([]decimal.Decimal, len(prices))
	copy(sorted, prices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LessThan(sorted[j])
	})

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2)), true
}
