package trading

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/cryptobot/internal/domain"
	"github.com/assist-by/cryptobot/internal/exchange"
)

// ExecutorConfig는 주문 체결 확인 방식을 설정합니다
type ExecutorConfig struct {
	SettleDelay  time.Duration // 주문 후 체결가 조회까지 대기 시간
	FillTimeout  time.Duration // 0보다 크면 체결될 때까지 폴링
	PollInterval time.Duration // 폴링 간격
}

// Executor는 주문을 제출하고 체결 가격을 확인합니다
type Executor struct {
	trading exchange.Trading
	account exchange.Account
	config  ExecutorConfig
	sleep   func(ctx context.Context, d time.Duration) error
	log     *logrus.Entry
}

// ExecutorOption은 Executor 생성 옵션을 정의합니다
type ExecutorOption func(*Executor)

// WithSleep은 대기 함수를 교체합니다
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) ExecutorOption {
	return func(e *Executor) {
		e.sleep = sleep
	}
}

// WithExecutorLogger는 Executor 로거를 설정합니다
func WithExecutorLogger(log *logrus.Entry) ExecutorOption {
	return func(e *Executor) {
		e.log = log
	}
}

// NewExecutor는 새로운 Executor를 생성합니다
func NewExecutor(t exchange.Trading, a exchange.Account, cfg ExecutorConfig, opts ...ExecutorOption) *Executor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	e := &Executor{
		trading: t,
		account: a,
		config:  cfg,
		sleep:   sleepContext,
		log:     logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PlaceOrder는 주문을 검증한 뒤 제출하고 주문 ID를 반환합니다
func (e *Executor) PlaceOrder(ctx context.Context, req domain.OrderRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	orderID, err := e.trading.PlaceOrder(ctx, req)
	if err != nil {
		return "", fmt.Errorf("주문 제출 실패: %w", err)
	}
	return orderID, nil
}

// ResolveFillPrice는 정산 대기 후 체결 가격을 조회합니다.
// FillTimeout이 설정되어 있으면 체결될 때까지 주문 상태를 폴링합니다.
func (e *Executor) ResolveFillPrice(ctx context.Context, orderID string) (decimal.Decimal, error) {
	if e.config.SettleDelay > 0 {
		if err := e.sleep(ctx, e.config.SettleDelay); err != nil {
			return decimal.Zero, err
		}
	}

	if e.config.FillTimeout <= 0 {
		price, err := e.account.GetOrderFillPrice(ctx, orderID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("체결가 조회 실패: %w", err)
		}
		return price, nil
	}

	return e.pollFill(ctx, orderID)
}

// pollFill은 주문이 closed 상태가 되거나 FillTimeout이 지날 때까지 폴링합니다
func (e *Executor) pollFill(ctx context.Context, orderID string) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, e.config.FillTimeout)
	defer cancel()

	for {
		status, err := e.account.GetOrder(ctx, orderID)
		if err != nil {
			return decimal.Zero, fmt.Errorf("주문 상태 조회 실패: %w", err)
		}

		if status.IsClosed() && status.Price.IsPositive() {
			return status.Price, nil
		}
		if status.IsTerminal() {
			return decimal.Zero, fmt.Errorf("%w: 주문 %s 상태 %s", exchange.ErrOrderNotFilled, orderID, status.Status)
		}

		e.log.WithFields(logrus.Fields{
			"order_id": orderID,
			"status":   status.Status,
		}).Debug("체결 대기 중")

		if err := e.sleep(ctx, e.config.PollInterval); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return decimal.Zero, fmt.Errorf("%w: %v 내 체결 확인 실패", exchange.ErrOrderNotFilled, e.config.FillTimeout)
			}
			return decimal.Zero, err
		}
	}
}

// Execute는 주문 제출과 체결 확인을 연속으로 수행합니다
// 실패 시 단계 정보를 담은 *TickError를 반환합니다.
func (e *Executor) Execute(ctx context.Context, req domain.OrderRequest) (domain.OrderResult, error) {
	orderID, err := e.PlaceOrder(ctx, req)
	if err != nil {
		return domain.OrderResult{}, newTickError(StageOrder, err)
	}

	price, err := e.ResolveFillPrice(ctx, orderID)
	if err != nil {
		return domain.OrderResult{}, newTickError(StageFill, fmt.Errorf("주문 %s: %w", orderID, err))
	}

	return domain.OrderResult{OrderID: orderID, FilledPrice: price}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
