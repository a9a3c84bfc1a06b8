package trading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/cryptobot/internal/domain"
	"github.com/assist-by/cryptobot/internal/exchange"
	"github.com/assist-by/cryptobot/internal/metrics"
	"github.com/assist-by/cryptobot/internal/notification"
)

// TickResult는 한 틱의 처리 결과입니다
type TickResult struct {
	Time     time.Time
	Price    decimal.Decimal
	Decision Decision
	Volume   decimal.Decimal     // 주문 수량 (주문하지 않았으면 0)
	Order    *domain.OrderResult // 체결된 주문 (주문하지 않았으면 nil)
	State    domain.TradeState   // 틱 이후 상태
}

// Traded는 이번 틱에 체결이 있었는지 확인합니다
func (r *TickResult) Traded() bool {
	return r.Order != nil
}

// Trader는 단일 페어의 매매 상태 머신입니다.
// 스케줄러의 Task로 등록되어 한 번에 하나의 틱만 처리합니다.
type Trader struct {
	market   exchange.MarketData
	account  exchange.Account
	executor *Executor
	pair     domain.PairConfig
	params   Params

	notifier       notification.Notifier
	metrics        *metrics.Metrics
	medianLookback time.Duration
	now            func() time.Time
	log            *logrus.Entry

	mu    sync.Mutex
	state domain.TradeState
}

// TraderOption은 Trader 생성 옵션을 정의합니다
type TraderOption func(*Trader)

// WithNotifier는 체결/에러 알림 대상을 설정합니다
func WithNotifier(n notification.Notifier) TraderOption {
	return func(t *Trader) {
		t.notifier = n
	}
}

// WithMetrics는 Prometheus 지표를 설정합니다
func WithMetrics(m *metrics.Metrics) TraderOption {
	return func(t *Trader) {
		t.metrics = m
	}
}

// WithMedianLookback은 재진입 시 기록할 중앙값 조회 기간을 설정합니다
func WithMedianLookback(d time.Duration) TraderOption {
	return func(t *Trader) {
		t.medianLookback = d
	}
}

// WithClock은 현재 시각 함수를 교체합니다
func WithClock(now func() time.Time) TraderOption {
	return func(t *Trader) {
		t.now = now
	}
}

// WithLogger는 Trader 로거를 설정합니다
func WithLogger(log *logrus.Entry) TraderOption {
	return func(t *Trader) {
		t.log = log
	}
}

// NewTrader는 초기 상태로 새로운 Trader를 생성합니다
func NewTrader(
	market exchange.MarketData,
	account exchange.Account,
	executor *Executor,
	pair domain.PairConfig,
	params Params,
	initial domain.TradeState,
	opts ...TraderOption,
) *Trader {
	t := &Trader{
		market:         market,
		account:        account,
		executor:       executor,
		pair:           pair,
		params:         params,
		state:          initial,
		notifier:       notification.Nop{},
		medianLookback: 120 * time.Minute,
		now:            time.Now,
		log:            logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.recordState(initial)
	return t
}

// State는 현재 거래 상태의 복사본을 반환합니다
func (t *Trader) State() domain.TradeState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Execute는 scheduler.Task를 구현합니다.
// 틱 에러는 기록만 하고 버리므로 루프는 멈추지 않습니다.
func (t *Trader) Execute(ctx context.Context) error {
	if _, err := t.Tick(ctx); err != nil {
		t.log.WithFields(logrus.Fields{
			"kind":  exchange.Kind(err),
			"stage": stageOf(err),
		}).WithError(err).Error("틱 처리 실패, 상태 유지")

		// 주문 단계 이후의 실패만 알림
		if s := stageOf(err); s == StageOrder || s == StageFill {
			if nerr := t.notifier.SendError(err); nerr != nil {
				t.log.WithError(nerr).Warn("에러 알림 전송 실패")
			}
		}
	}
	return nil
}

// Tick은 가격을 조회해 판단하고 필요하면 주문을 실행합니다.
// 에러가 반환되면 상태는 변경되지 않습니다.
func (t *Trader) Tick(ctx context.Context) (*TickResult, error) {
	state := t.State()
	now := t.now()

	if t.metrics != nil {
		t.metrics.Ticks.Inc()
	}

	price, err := t.market.GetCurrentPrice(ctx)
	if err != nil {
		return nil, t.fail(newTickError(StagePrice, fmt.Errorf("현재가 조회 실패: %w", err)))
	}
	if t.metrics != nil {
		metrics.SetPrice(t.metrics.CurrentPrice, price)
	}

	decision := Decide(state, price, now, t.params)
	t.log.WithFields(logrus.Fields{
		"holding": state.Holding().String(),
		"elapsed": decision.Elapsed.Round(time.Second).String(),
		"price":   price.String(),
		"last":    state.LastTradePrice.String(),
		"target":  decision.Target.String(),
	}).Info("틱 평가")

	result := &TickResult{Time: now, Price: price, Decision: decision, State: state}
	if !decision.Act {
		return result, nil
	}

	if decision.Trigger == TriggerTimeout {
		t.logMedian(ctx, state)
	}

	volume, err := t.orderVolume(ctx, decision.Side, price)
	if err != nil {
		return nil, t.fail(newTickError(StageBalance, err))
	}

	t.log.WithFields(logrus.Fields{
		"side":    decision.Side,
		"trigger": decision.Trigger,
		"volume":  volume.String(),
	}).Info("주문 실행")

	order, err := t.executor.Execute(ctx, domain.NewMarketOrder(decision.Side, volume))
	if err != nil {
		return nil, t.fail(err)
	}

	next := state.Apply(decision.Side, order, now)
	t.mu.Lock()
	t.state = next
	t.mu.Unlock()

	result.Volume = volume
	result.Order = &order
	result.State = next

	t.onFill(decision, volume, order, state, now)
	return result, nil
}

// orderVolume은 주문 방향에 따른 주문 수량을 계산합니다
func (t *Trader) orderVolume(ctx context.Context, side domain.OrderSide, price decimal.Decimal) (decimal.Decimal, error) {
	if side == domain.Sell {
		coin, err := t.account.GetCoinBalance(ctx)
		if err != nil {
			return decimal.Zero, fmt.Errorf("코인 잔고 조회 실패: %w", err)
		}
		volume := coin.Truncate(t.params.VolumeDecimals)
		if !volume.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: %s %s", ErrNoHoldings, coin, t.pair.Coin)
		}
		return volume, nil
	}

	balance, err := t.account.GetCurrencyBalance(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("통화 잔고 조회 실패: %w", err)
	}
	volume := BuyVolume(balance, t.params.SpendCap, price, t.params.VolumeDecimals)
	if !volume.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s %s", ErrInsufficientBalance, balance, t.pair.Currency)
	}
	return volume, nil
}

// logMedian은 재진입 매수 전 최근 가격의 중앙값을 기록합니다. 실패는 무시합니다.
func (t *Trader) logMedian(ctx context.Context, state domain.TradeState) {
	prices, err := t.market.GetRecentPrices(ctx, t.medianLookback)
	if err != nil {
		t.log.WithError(err).Warn("최근 가격 조회 실패")
		return
	}

	median, ok := domain.Median(prices)
	if !ok {
		t.log.Warn("최근 가격이 없어 중앙값을 계산할 수 없습니다")
		return
	}

	t.log.WithFields(logrus.Fields{
		"lookback": t.medianLookback.String(),
		"samples":  len(prices),
		"median":   median.String(),
		"last":     state.LastTradePrice.String(),
	}).Info("patience 경과, 재진입 매수")
}

func (t *Trader) onFill(d Decision, volume decimal.Decimal, order domain.OrderResult, prev domain.TradeState, at time.Time) {
	t.log.WithFields(logrus.Fields{
		"side":         d.Side,
		"trigger":      d.Trigger,
		"order_id":     order.OrderID,
		"filled_price": order.FilledPrice.String(),
	}).Info("체결 완료")

	if t.metrics != nil {
		t.metrics.Trades.WithLabelValues(string(d.Side), string(d.Trigger)).Inc()
	}
	t.recordState(prev.Apply(d.Side, order, at))

	err := t.notifier.SendTrade(notification.TradeInfo{
		Pair:          t.pair.Key,
		Side:          d.Side,
		Trigger:       string(d.Trigger),
		OrderID:       order.OrderID,
		Volume:        volume,
		FilledPrice:   order.FilledPrice,
		PreviousPrice: prev.LastTradePrice,
		Time:          at,
	})
	if err != nil {
		t.log.WithError(err).Warn("체결 알림 전송 실패")
	}
}

func (t *Trader) recordState(s domain.TradeState) {
	if t.metrics == nil {
		return
	}
	metrics.SetPrice(t.metrics.LastPrice, s.LastTradePrice)
	if s.Holding() == domain.HoldingCoin {
		t.metrics.Holding.Set(0)
	} else {
		t.metrics.Holding.Set(1)
	}
}

func (t *Trader) fail(err error) error {
	if t.metrics != nil {
		t.metrics.TickErrors.WithLabelValues(exchange.Kind(err), stageOf(err)).Inc()
	}
	return err
}

func stageOf(err error) string {
	var te *TickError
	if errors.As(err, &te) {
		return te.Stage
	}
	return ""
}
