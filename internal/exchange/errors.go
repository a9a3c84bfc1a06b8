package exchange

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOrderNotFilled는 주문이 아직 체결되지 않았을 때 반환됩니다
var ErrOrderNotFilled = errors.New("주문이 아직 체결되지 않았습니다")

// TransportError는 네트워크 오류, 타임아웃 또는 2xx가 아닌 응답을 표현합니다
type TransportError struct {
	Op         string
	StatusCode int // 응답을 받지 못한 경우 0
	Err        error
}

// Error는 error 인터페이스를 구현합니다
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("전송 에러 [작업: %s, HTTP %d]: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("전송 에러 [작업: %s]: %v", e.Op, e.Err)
}

// Unwrap은 내부 에러를 반환합니다 (errors.Is/As 지원을 위함)
func (e *TransportError) Unwrap() error {
	return e.Err
}

// RejectionError는 거래소가 정상 응답 안에 돌려준 에러 목록을 표현합니다
type RejectionError struct {
	Op       string
	Messages []string // 예: ["EOrder:Insufficient funds"]
}

// Error는 error 인터페이스를 구현합니다
func (e *RejectionError) Error() string {
	return fmt.Sprintf("거래소 거부 [작업: %s]: %s", e.Op, strings.Join(e.Messages, "; "))
}

// Has는 특정 에러 코드 접두사가 포함되어 있는지 확인합니다
func (e *RejectionError) Has(prefix string) bool {
	for _, m := range e.Messages {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// DataShapeError는 응답 JSON이 예상한 형태가 아닐 때 반환됩니다
type DataShapeError struct {
	Op    string
	Field string
	Err   error
}

// Error는 error 인터페이스를 구현합니다
func (e *DataShapeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("응답 형식 에러 [작업: %s, 필드: %s]", e.Op, e.Field)
	}
	return fmt.Sprintf("응답 형식 에러 [작업: %s, 필드: %s]: %v", e.Op, e.Field, e.Err)
}

// Unwrap은 내부 에러를 반환합니다
func (e *DataShapeError) Unwrap() error {
	return e.Err
}

// Kind는 에러 분류 이름을 반환합니다. 로그와 메트릭 라벨에 사용됩니다.
func Kind(err error) string {
	var (
		transport *TransportError
		rejection *RejectionError
		shape     *DataShapeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &transport):
		return "transport"
	case errors.As(err, &rejection):
		return "rejection"
	case errors.As(err, &shape):
		return "data_shape"
	default:
		return "other"
	}
}
