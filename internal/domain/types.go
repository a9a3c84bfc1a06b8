package domain

import "strings"

// OrderSide는 주문 방향을 정의합니다
type OrderSide string

const (
	Buy  OrderSide = "buy"
	Sell OrderSide = "sell"
)

// Opposite는 반대 방향을 반환합니다 (매수 다음은 매도, 매도 다음은 매수)
func (s OrderSide) Opposite() OrderSide {
	if s == Buy {
		return Sell
	}
	return Buy
}

// IsValid는 알려진 주문 방향인지 확인합니다
func (s OrderSide) IsValid() bool {
	return s == Buy || s == Sell
}

// ParseOrderSide는 문자열을 주문 방향으로 변환합니다 (대소문자 무시)
func ParseOrderSide(s string) (OrderSide, bool) {
	side := OrderSide(strings.ToLower(strings.TrimSpace(s)))
	return side, side.IsValid()
}

// OrderType은 주문 유형을 정의합니다
type OrderType string

const (
	Market OrderType = "market"
	Limit  OrderType = "limit"
)

// HoldingState는 마지막 거래 방향에서 유도되는 보유 상태입니다
type HoldingState int

const (
	HoldingCoin     HoldingState = iota // 마지막 거래가 매수
	HoldingCurrency                     // 마지막 거래가 매도
)

// String은 HoldingState의 문자열 표현을 반환합니다
func (h HoldingState) String() string {
	switch h {
	case HoldingCoin:
		return "HoldingCoin"
	case HoldingCurrency:
		return "HoldingCurrency"
	default:
		return "Unknown"
	}
}
