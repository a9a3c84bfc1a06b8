// internal/exchange/exchange.go
package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assist-by/cryptobot/internal/domain"
)

// MarketData는 인증이 필요 없는 공개 시세 조회 인터페이스입니다
type MarketData interface {
	// GetCurrentPrice는 현재 최우선 매도호가(ask)를 반환합니다
	GetCurrentPrice(ctx context.Context) (decimal.Decimal, error)
	// GetRecentPrices는 lookback 기간 내 1분봉 종가를 오래된 순서로 반환합니다
	GetRecentPrices(ctx context.Context, lookback time.Duration) ([]decimal.Decimal, error)
}

// Account는 인증된 계정 조회 인터페이스입니다
type Account interface {
	GetCoinBalance(ctx context.Context) (decimal.Decimal, error)
	GetCurrencyBalance(ctx context.Context) (decimal.Decimal, error)
	GetOrder(ctx context.Context, orderID string) (*domain.OrderStatus, error)
	// GetOrderFillPrice는 주문의 체결 가격을 반환합니다. 거래소 정산 이후에만 호출해야 합니다.
	GetOrderFillPrice(ctx context.Context, orderID string) (decimal.Decimal, error)
}

// Trading은 주문 제출 인터페이스입니다
type Trading interface {
	// PlaceOrder는 주문을 제출하고 거래소가 부여한 주문 ID를 반환합니다
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (string, error)
}

// Exchange는 거래소와의 상호작용을 위한 인터페이스입니다.
type Exchange interface {
	MarketData
	Account
	Trading
}
