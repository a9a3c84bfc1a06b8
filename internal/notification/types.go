package notification

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/assist-by/cryptobot/internal/domain"
)

const (
	ColorSuccess = 0x00FF00 // 녹색
	ColorError   = 0xFF0000 // 빨간색
	ColorInfo    = 0x0000FF // 파란색
	ColorWarning = 0xFFA500 // 주황색
)

// Notifier는 알림 전송 인터페이스를 정의합니다
type Notifier interface {
	// SendTrade는 체결된 거래 정보를 전송합니다
	SendTrade(info TradeInfo) error

	// SendError는 에러 알림을 전송합니다
	SendError(err error) error

	// SendInfo는 일반 정보 알림을 전송합니다
	SendInfo(message string) error
}

// TradeInfo는 거래 실행 정보를 정의합니다
type TradeInfo struct {
	Pair          string           // 페어 심볼 (예: XXRPZEUR)
	Side          domain.OrderSide // 매수/매도
	Trigger       string           // rise, dip, timeout
	OrderID       string           // 거래소 주문 ID
	Volume        decimal.Decimal  // 거래 수량 (코인)
	FilledPrice   decimal.Decimal  // 체결 가격
	PreviousPrice decimal.Decimal  // 직전 거래 가격
	Time          time.Time
}

// GetColorForSide는 주문 방향에 따른 색상을 반환합니다
func GetColorForSide(side domain.OrderSide) int {
	switch side {
	case domain.Buy:
		return ColorSuccess
	case domain.Sell:
		return ColorError
	default:
		return ColorInfo
	}
}

// Nop은 아무것도 전송하지 않는 Notifier입니다
type Nop struct{}

func (Nop) SendTrade(TradeInfo) error { return nil }
func (Nop) SendError(error) error     { return nil }
func (Nop) SendInfo(string) error     { return nil }
