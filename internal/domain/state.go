package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeState는 폴링 사이클 사이에 유지되는 유일한 상태입니다.
// 체결이 확인된 뒤에만 변경됩니다.
type TradeState struct {
	LastAction     OrderSide       // 마지막 거래 방향
	LastTradePrice decimal.Decimal // 마지막 체결 가격
	LastTradeTime  time.Time       // 마지막 거래 시각
}

// Holding은 마지막 거래 방향에 따른 보유 상태를 반환합니다
func (s TradeState) Holding() HoldingState {
	if s.LastAction == Buy {
		return HoldingCoin
	}
	return HoldingCurrency
}

// NextSide는 다음 주문의 방향을 반환합니다
func (s TradeState) NextSide() OrderSide {
	return s.LastAction.Opposite()
}

// Elapsed는 마지막 거래 이후 경과 시간을 반환합니다
func (s TradeState) Elapsed(now time.Time) time.Duration {
	return now.Sub(s.LastTradeTime)
}

// Apply는 체결 결과를 반영한 새 상태를 반환합니다
func (s TradeState) Apply(side OrderSide, result OrderResult, at time.Time) TradeState {
	return TradeState{
		LastAction:     side,
		LastTradePrice: result.FilledPrice,
		LastTradeTime:  at,
	}
}

// Equal은 두 상태가 같은지 비교합니다
func (s TradeState) Equal(o TradeState) bool {
	return s.LastAction == o.LastAction &&
		s.LastTradePrice.Equal(o.LastTradePrice) &&
		s.LastTradeTime.Equal(o.LastTradeTime)
}
