package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"

	"github.com/assist-by/cryptobot/internal/domain"
)

type Config struct {
	// Kraken API 설정
	Kraken struct {
		APIURL    string        `envconfig:"KRAKEN_API_URL" default:"https://api.kraken.com"`
		APIKey    string        `envconfig:"KRAKEN_API_KEY"`
		APISecret string        `envconfig:"KRAKEN_API_SECRET"`
		KeyDir    string        `envconfig:"KRAKEN_KEY_DIR"` // api_url.txt, api_key.txt, api_sec.txt 위치
		Timeout   time.Duration `envconfig:"KRAKEN_TIMEOUT" default:"15s"`
	}

	// 페어 설정
	Pair struct {
		Key        string `envconfig:"PAIR" default:"XXRPZEUR"`
		Dictionary string `envconfig:"PAIR_DICTIONARY"` // 비어 있으면 내장 목록 사용
	}

	// 거래 설정
	Trading struct {
		Interval         time.Duration   `envconfig:"TICK_INTERVAL" default:"60s"`
		StrategyPct      decimal.Decimal `envconfig:"STRATEGY_PCT" default:"0.02"`
		Patience         time.Duration   `envconfig:"PATIENCE" default:"6h"`
		SpendCap         decimal.Decimal `envconfig:"SPEND_CAP" default:"50"`
		SettleDelay      time.Duration   `envconfig:"SETTLE_DELAY" default:"10s"`
		FillTimeout      time.Duration   `envconfig:"FILL_TIMEOUT" default:"0s"` // 0이면 고정 대기 후 1회 조회
		FillPollInterval time.Duration   `envconfig:"FILL_POLL_INTERVAL" default:"2s"`
		MedianLookback   time.Duration   `envconfig:"MEDIAN_LOOKBACK" default:"120m"`
		LastAction       string          `envconfig:"LAST_ACTION" default:"buy"`
		LastPrice        string          `envconfig:"LAST_PRICE"`
	}

	// 로그 설정
	Log struct {
		Level      string `envconfig:"LOG_LEVEL" default:"info"`
		File       string `envconfig:"LOG_FILE" default:"logfile.log"`
		MaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
		MaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
		MaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"30"`
	}

	// 디스코드 웹훅 설정 (비어 있으면 알림 비활성화)
	Discord struct {
		Webhook string `envconfig:"DISCORD_WEBHOOK"`
	}

	// 메트릭 설정 (비어 있으면 /metrics 비활성화)
	Metrics struct {
		Addr string `envconfig:"METRICS_ADDR"`
	}
}

// ConfigError는 시작 시점에 발생하는 치명적인 설정 에러입니다
type ConfigError struct {
	Field string
	Err   error
}

// Error는 error 인터페이스를 구현합니다
func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("설정 에러: %v", e.Err)
	}
	return fmt.Sprintf("설정 에러 [%s]: %v", e.Field, e.Err)
}

// Unwrap은 내부 에러를 반환합니다
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError는 새로운 ConfigError를 생성합니다
func NewConfigError(field string, err error) *ConfigError {
	return &ConfigError{Field: field, Err: err}
}

// ValidateConfig는 설정이 유효한지 확인합니다.
func ValidateConfig(cfg *Config) error {
	if cfg.Trading.Interval < time.Second {
		return NewConfigError("TICK_INTERVAL", fmt.Errorf("1초 이상이어야 합니다"))
	}

	if !cfg.Trading.StrategyPct.IsPositive() || cfg.Trading.StrategyPct.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return NewConfigError("STRATEGY_PCT", fmt.Errorf("0과 1 사이의 비율이어야 합니다 (현재 %s)", cfg.Trading.StrategyPct))
	}

	if cfg.Trading.Patience <= 0 {
		return NewConfigError("PATIENCE", fmt.Errorf("0보다 커야 합니다"))
	}

	if !cfg.Trading.SpendCap.IsPositive() {
		return NewConfigError("SPEND_CAP", fmt.Errorf("0보다 커야 합니다"))
	}

	if cfg.Trading.SettleDelay < 0 || cfg.Trading.FillTimeout < 0 {
		return NewConfigError("SETTLE_DELAY", fmt.Errorf("대기 시간은 음수일 수 없습니다"))
	}

	if cfg.Trading.FillTimeout > 0 && cfg.Trading.FillPollInterval <= 0 {
		return NewConfigError("FILL_POLL_INTERVAL", fmt.Errorf("FILL_TIMEOUT 사용 시 0보다 커야 합니다"))
	}

	if cfg.Pair.Key == "" {
		return NewConfigError("PAIR", fmt.Errorf("페어 키가 필요합니다"))
	}

	return nil
}

// LoadConfig는 환경변수에서 설정을 로드합니다.
// .env 파일이 없으면 환경변수만 사용합니다.
func LoadConfig() (*Config, error) {
	// .env 파일 로드
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, NewConfigError(".env", fmt.Errorf(".env 파일 로드 실패: %w", err))
	}

	var cfg Config
	// 환경변수를 구조체로 파싱
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, NewConfigError("", fmt.Errorf("환경변수 처리 실패: %w", err))
	}

	// 설정값 검증
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ParseSeed는 시작 시 주어진 마지막 거래 정보로 초기 상태를 만듭니다.
// 마지막 거래 시각은 시작 시각 now로 둡니다.
func ParseSeed(action, price string, now time.Time) (domain.TradeState, error) {
	side, ok := domain.ParseOrderSide(action)
	if !ok {
		return domain.TradeState{}, NewConfigError("LAST_ACTION", fmt.Errorf("buy 또는 sell이어야 합니다 (현재 %q)", action))
	}

	if price == "" {
		return domain.TradeState{}, NewConfigError("LAST_PRICE", fmt.Errorf("마지막 거래 가격이 필요합니다"))
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return domain.TradeState{}, NewConfigError("LAST_PRICE", err)
	}
	if !p.IsPositive() {
		return domain.TradeState{}, NewConfigError("LAST_PRICE", fmt.Errorf("0보다 커야 합니다 (현재 %s)", p))
	}

	return domain.TradeState{LastAction: side, LastTradePrice: p, LastTradeTime: now}, nil
}
