package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics는 트레이딩 루프의 Prometheus 지표 모음입니다
type Metrics struct {
	registry *prometheus.Registry

	Ticks        prometheus.Counter
	TickErrors   *prometheus.CounterVec // kind, stage
	Trades       *prometheus.CounterVec // side, trigger
	CurrentPrice prometheus.Gauge
	LastPrice    prometheus.Gauge
	Holding      prometheus.Gauge // 0: 코인 보유, 1: 통화 보유
}

// New는 전용 레지스트리에 지표를 등록해 생성합니다
func New(pair string) *Metrics {
	labels := prometheus.Labels{"pair": pair}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cryptobot", Name: "ticks_total",
			Help: "평가한 틱 수", ConstLabels: labels,
		}),
		TickErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cryptobot", Name: "tick_errors_total",
			Help: "실패한 틱 수", ConstLabels: labels,
		}, []string{"kind", "stage"}),
		Trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cryptobot", Name: "trades_total",
			Help: "체결된 거래 수", ConstLabels: labels,
		}, []string{"side", "trigger"}),
		CurrentPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cryptobot", Name: "current_price",
			Help: "마지막으로 조회한 가격", ConstLabels: labels,
		}),
		LastPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cryptobot", Name: "last_trade_price",
			Help: "마지막 체결 가격", ConstLabels: labels,
		}),
		Holding: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "cryptobot", Name: "holding_state",
			Help: "보유 상태 (0: 코인, 1: 통화)", ConstLabels: labels,
		}),
	}

	m.registry.MustRegister(m.Ticks, m.TickErrors, m.Trades, m.CurrentPrice, m.LastPrice, m.Holding)
	return m
}

// SetPrice는 decimal 값을 게이지에 기록합니다
func SetPrice(g prometheus.Gauge, d decimal.Decimal) {
	f, _ := d.Float64()
	g.Set(f)
}

// Handler는 /metrics 핸들러를 반환합니다
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve는 addr에서 /metrics를 노출하고 ctx가 끝나면 종료합니다
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
