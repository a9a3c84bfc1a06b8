package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidOrder는 주문 요청이 유효하지 않을 때 반환됩니다
var ErrInvalidOrder = errors.New("유효하지 않은 주문 요청")

// OrderRequest는 주문 요청 정보를 표현합니다
type OrderRequest struct {
	Side   OrderSide        // 매수/매도
	Type   OrderType        // 시장가/지정가
	Volume decimal.Decimal  // 코인 수량
	Price  *decimal.Decimal // 지정가 (Limit 주문일 때만)
}

// NewMarketOrder는 시장가 주문 요청을 생성합니다
func NewMarketOrder(side OrderSide, volume decimal.Decimal) OrderRequest {
	return OrderRequest{Side: side, Type: Market, Volume: volume}
}

// NewLimitOrder는 지정가 주문 요청을 생성합니다
func NewLimitOrder(side OrderSide, volume, price decimal.Decimal) OrderRequest {
	return OrderRequest{Side: side, Type: Limit, Volume: volume, Price: &price}
}

// Validate는 주문 요청의 유효성을 확인합니다.
// 지정가 주문은 가격이 필수이고 시장가 주문은 가격을 가질 수 없습니다.
func (r OrderRequest) Validate() error {
	if !r.Side.IsValid() {
		return fmt.Errorf("%w: 알 수 없는 주문 방향 %q", ErrInvalidOrder, r.Side)
	}
	if !r.Volume.IsPositive() {
		return fmt.Errorf("%w: 수량은 0보다 커야 합니다 (%s)", ErrInvalidOrder, r.Volume)
	}

	switch r.Type {
	case Market:
		if r.Price != nil {
			return fmt.Errorf("%w: 시장가 주문에는 가격을 지정할 수 없습니다", ErrInvalidOrder)
		}
	case Limit:
		if r.Price == nil || !r.Price.IsPositive() {
			return fmt.Errorf("%w: 지정가 주문에는 양수 가격이 필요합니다", ErrInvalidOrder)
		}
	default:
		return fmt.Errorf("%w: 알 수 없는 주문 유형 %q", ErrInvalidOrder, r.Type)
	}

	return nil
}

// OrderResult는 체결이 확인된 주문 결과를 표현합니다
type OrderResult struct {
	OrderID     string          // 거래소 주문 ID (txid)
	FilledPrice decimal.Decimal // 체결 가격
}

// OrderStatus는 거래소에서 조회한 주문 상태입니다
type OrderStatus struct {
	OrderID        string
	Status         string // pending, open, closed, canceled, expired
	Price          decimal.Decimal
	VolumeExecuted decimal.Decimal
}

// IsClosed는 주문이 완전히 체결되었는지 확인합니다
func (s OrderStatus) IsClosed() bool {
	return s.Status == "closed"
}

// IsTerminal은 주문이 더 이상 체결될 수 없는 상태인지 확인합니다
func (s OrderStatus) IsTerminal() bool {
	switch s.Status {
	case "closed", "canceled", "expired":
		return true
	}
	return false
}
