package trading

import (
	"errors"
	"fmt"
)

// 틱 처리 중 발생할 수 있는 에러들입니다
var (
	ErrInsufficientBalance = errors.New("통화 잔고가 부족합니다")
	ErrNoHoldings          = errors.New("매도할 코인 보유량이 없습니다")
)

// 틱 단계 이름
const (
	StagePrice   = "price"
	StageBalance = "balance"
	StageOrder   = "order"
	StageFill    = "fill"
)

// TickError는 틱이 중단된 단계와 원인을 표현합니다.
// TickError가 반환되면 거래 상태는 변경되지 않습니다.
type TickError struct {
	Stage string
	Err   error
}

// Error는 error 인터페이스를 구현합니다
func (e *TickError) Error() string {
	return fmt.Sprintf("틱 중단 [단계: %s]: %v", e.Stage, e.Err)
}

// Unwrap은 내부 에러를 반환합니다 (errors.Is/As 지원을 위함)
func (e *TickError) Unwrap() error {
	return e.Err
}

func newTickError(stage string, err error) *TickError {
	return &TickError{Stage: stage, Err: err}
}
