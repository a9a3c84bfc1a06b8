package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	osSignal "os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/cryptobot/internal/config"
	"github.com/assist-by/cryptobot/internal/credentials"
	"github.com/assist-by/cryptobot/internal/exchange/kraken"
	"github.com/assist-by/cryptobot/internal/logger"
	"github.com/assist-by/cryptobot/internal/metrics"
	"github.com/assist-by/cryptobot/internal/notification"
	"github.com/assist-by/cryptobot/internal/notification/discord"
	"github.com/assist-by/cryptobot/internal/pair"
	"github.com/assist-by/cryptobot/internal/scheduler"
	"github.com/assist-by/cryptobot/internal/trading"
)

// flags는 환경변수 설정을 덮어쓰는 명령줄 인자입니다
type flags struct {
	pair       string
	lastAction string
	lastPrice  string
	pct        string
	patience   time.Duration
	spendCap   string
	once       bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.pair, "pair", "", "거래 페어 키 (예: XXRPZEUR)")
	flag.StringVar(&f.lastAction, "last-action", "", "마지막 거래 방향 (buy|sell)")
	flag.StringVar(&f.lastPrice, "last-price", "", "마지막 거래 가격")
	flag.StringVar(&f.pct, "pct", "", "임계 비율 (0.02 = 2%)")
	flag.DurationVar(&f.patience, "patience", 0, "매도 후 재진입까지 최대 대기 시간 (예: 6h)")
	flag.StringVar(&f.spendCap, "spend-cap", "", "1회 매수 최대 지출 (통화)")
	flag.BoolVar(&f.once, "once", false, "틱을 한 번만 실행하고 종료")
	flag.Parse()
	return f
}

// apply는 지정된 플래그 값으로 설정을 덮어씁니다
func (f flags) apply(cfg *config.Config) error {
	if f.pair != "" {
		cfg.Pair.Key = f.pair
	}
	if f.lastAction != "" {
		cfg.Trading.LastAction = f.lastAction
	}
	if f.lastPrice != "" {
		cfg.Trading.LastPrice = f.lastPrice
	}
	if f.pct != "" {
		pct, err := decimal.NewFromString(f.pct)
		if err != nil {
			return config.NewConfigError("pct", err)
		}
		cfg.Trading.StrategyPct = pct
	}
	if f.patience != 0 {
		cfg.Trading.Patience = f.patience
	}
	if f.spendCap != "" {
		spendCap, err := decimal.NewFromString(f.spendCap)
		if err != nil {
			return config.NewConfigError("spend-cap", err)
		}
		cfg.Trading.SpendCap = spendCap
	}
	return config.ValidateConfig(cfg)
}

func main() {
	f := parseFlags()

	// 컨텍스트 생성
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 설정 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("설정 로드 실패: %v", err)
	}
	if err := f.apply(cfg); err != nil {
		logrus.Fatalf("설정 로드 실패: %v", err)
	}

	// 로그 설정
	log, closer, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	if err != nil {
		logrus.Fatalf("로거 생성 실패: %v", err)
	}
	defer closer.Close()

	if err := run(ctx, cfg, f.once, log); err != nil {
		log.WithError(err).Error("트레이딩 봇 종료")
		closer.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, once bool, log *logrus.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Info("트레이딩 봇 시작...")

	// 페어 정보 조회
	registry := pair.Default()
	if cfg.Pair.Dictionary != "" {
		r, err := pair.LoadFile(cfg.Pair.Dictionary)
		if err != nil {
			return config.NewConfigError("PAIR_DICTIONARY", err)
		}
		registry = r
	}
	pairCfg, err := registry.Get(cfg.Pair.Key)
	if err != nil {
		return config.NewConfigError("PAIR", err)
	}

	// 인증 정보: 환경변수 우선, 키 디렉터리가 있으면 파일
	providers := credentials.Chain{credentials.Static{
		APIURL:    cfg.Kraken.APIURL,
		APIKey:    cfg.Kraken.APIKey,
		APISecret: cfg.Kraken.APISecret,
	}}
	if cfg.Kraken.KeyDir != "" {
		providers = append(providers, credentials.FileProvider{Dir: cfg.Kraken.KeyDir})
	}
	creds, err := providers.Credentials()
	if err != nil {
		return config.NewConfigError("KRAKEN_API_KEY", err)
	}

	// 초기 거래 상태
	seed, err := config.ParseSeed(cfg.Trading.LastAction, cfg.Trading.LastPrice, time.Now())
	if err != nil {
		return err
	}

	// 알림 클라이언트 생성
	var notifier notification.Notifier = notification.Nop{}
	if cfg.Discord.Webhook != "" {
		notifier = discord.NewClient(cfg.Discord.Webhook, discord.WithTimeout(10*time.Second))
	}

	// Kraken 클라이언트 생성
	client := kraken.NewClient(creds, pairCfg,
		kraken.WithTimeout(cfg.Kraken.Timeout),
		kraken.WithLogger(logrus.NewEntry(log)),
	)

	m := metrics.New(pairCfg.Key)
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.WithError(err).Error("메트릭 서버 실행 실패")
			}
		}()
	}

	executor := trading.NewExecutor(client, client, trading.ExecutorConfig{
		SettleDelay:  cfg.Trading.SettleDelay,
		FillTimeout:  cfg.Trading.FillTimeout,
		PollInterval: cfg.Trading.FillPollInterval,
	}, trading.WithExecutorLogger(log.WithField("component", "executor")))

	trader := trading.NewTrader(client, client, executor, pairCfg,
		trading.Params{
			Pct:            cfg.Trading.StrategyPct,
			Patience:       cfg.Trading.Patience,
			SpendCap:       cfg.Trading.SpendCap,
			VolumeDecimals: pairCfg.VolumeDecimals,
		},
		seed,
		trading.WithNotifier(notifier),
		trading.WithMetrics(m),
		trading.WithMedianLookback(cfg.Trading.MedianLookback),
		trading.WithLogger(log.WithFields(logrus.Fields{"component": "trader", "pair": pairCfg.Key})),
	)

	log.WithFields(logrus.Fields{
		"pair":        pairCfg.Key,
		"last_action": seed.LastAction,
		"last_price":  seed.LastTradePrice.String(),
		"pct":         cfg.Trading.StrategyPct.String(),
		"patience":    cfg.Trading.Patience.String(),
		"spend_cap":   cfg.Trading.SpendCap.String(),
	}).Info("초기 상태")

	// 단일 틱 실행
	if once {
		res, err := trader.Tick(ctx)
		if err != nil {
			return fmt.Errorf("틱 실행 실패: %w", err)
		}
		log.WithField("traded", res.Traded()).Info("틱 실행 완료")
		return nil
	}

	// 시작 알림 전송
	if err := notifier.SendInfo(fmt.Sprintf("🚀 트레이딩 봇이 시작되었습니다. (%s)", pairCfg.Key)); err != nil {
		log.WithError(err).Warn("시작 알림 전송 실패")
	}

	// 스케줄러 생성
	sched := scheduler.NewScheduler(cfg.Trading.Interval, trader,
		scheduler.WithLogger(log.WithField("component", "scheduler")),
	)

	// 시그널 처리
	sigChan := make(chan os.Signal, 1)
	osSignal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- sched.Start(ctx)
	}()

	// 시그널 대기
	select {
	case sig := <-sigChan:
		log.Infof("시스템 종료 신호 수신: %v", sig)
		// 스케줄러 중지, 진행 중인 대기도 중단
		sched.Stop()
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("스케줄러 실행 중 에러 발생: %w", err)
		}
	}

	// 종료 알림 전송
	if err := notifier.SendInfo("👋 트레이딩 봇이 정상적으로 종료되었습니다."); err != nil {
		log.WithError(err).Warn("종료 알림 전송 실패")
	}

	log.Info("프로그램을 종료합니다.")
	return nil
}
