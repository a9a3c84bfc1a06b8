package trading

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/assist-by/cryptobot/internal/domain"
)

// Params는 매매 판단 규칙의 파라미터입니다
type Params struct {
	Pct            decimal.Decimal // 임계 비율 (0.02 = 2%)
	Patience       time.Duration   // 매도 후 재진입까지 최대 대기 시간
	SpendCap       decimal.Decimal // 1회 매수 최대 지출 (통화)
	VolumeDecimals int32           // 주문 수량 소수점 자릿수
}

// Trigger는 주문을 발생시킨 규칙입니다
type Trigger string

const (
	TriggerNone    Trigger = ""
	TriggerRise    Trigger = "rise"    // 매수가 대비 상승, 매도
	TriggerTimeout Trigger = "timeout" // patience 경과, 재진입 매수
	TriggerDip     Trigger = "dip"     // 매도가 대비 하락, 매수
)

// Decision은 한 틱의 판단 결과입니다
type Decision struct {
	Act     bool
	Side    domain.OrderSide
	Trigger Trigger
	Target  decimal.Decimal // 보유 상태에 따른 가격 기준선
	Elapsed time.Duration
}

// Decide는 현재 가격과 시각으로 다음 행동을 결정합니다.
// 네트워크나 상태 변경 없이 입력만으로 결과가 정해집니다.
//
// 코인 보유: price >= (1+pct)*last 이면 매도.
// 통화 보유: elapsed >= patience 이면 매수, 아니면 price <= (1-pct)*last 이면 매수.
func Decide(state domain.TradeState, price decimal.Decimal, now time.Time, p Params) Decision {
	one := decimal.NewFromInt(1)
	elapsed := state.Elapsed(now)

	switch state.Holding() {
	case domain.HoldingCoin:
		target := one.Add(p.Pct).Mul(state.LastTradePrice)
		d := Decision{Side: domain.Sell, Target: target, Elapsed: elapsed}
		if price.GreaterThanOrEqual(target) {
			d.Act = true
			d.Trigger = TriggerRise
		}
		return d

	default:
		target := one.Sub(p.Pct).Mul(state.LastTradePrice)
		d := Decision{Side: domain.Buy, Target: target, Elapsed: elapsed}
		if elapsed >= p.Patience {
			d.Act = true
			d.Trigger = TriggerTimeout
		} else if price.LessThanOrEqual(target) {
			d.Act = true
			d.Trigger = TriggerDip
		}
		return d
	}
}

// BuyVolume은 min(balance, cap)을 price로 나눈 수량을 decimals 자리에서 내림합니다.
// 내림이므로 volume*price는 min(balance, cap)을 넘지 않습니다.
func BuyVolume(balance, spendCap, price decimal.Decimal, decimals int32) decimal.Decimal {
	if !price.IsPositive() {
		return decimal.Zero
	}
	spend := decimal.Min(balance, spendCap)
	if !spend.IsPositive() {
		return decimal.Zero
	}
	volume := spend.Div(price).Truncate(decimals)
	// 나눗셈 정밀도에서 올림이 생긴 경우 한 단위 내림
	if volume.Mul(price).GreaterThan(spend) {
		volume = volume.Sub(decimal.New(1, -decimals))
	}
	return volume
}
