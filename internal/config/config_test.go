package config

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/cryptobot/internal/domain"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "https://api.kraken.com", cfg.Kraken.APIURL)
	assert.Equal(t, 15*time.Second, cfg.Kraken.Timeout)
	assert.Equal(t, "XXRPZEUR", cfg.Pair.Key)
	assert.Equal(t, 60*time.Second, cfg.Trading.Interval)
	assert.True(t, cfg.Trading.StrategyPct.Equal(decimal.RequireFromString("0.02")))
	assert.Equal(t, 6*time.Hour, cfg.Trading.Patience)
	assert.True(t, cfg.Trading.SpendCap.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 10*time.Second, cfg.Trading.SettleDelay)
	assert.Equal(t, time.Duration(0), cfg.Trading.FillTimeout)
	assert.Equal(t, "buy", cfg.Trading.LastAction)
	assert.Equal(t, "logfile.log", cfg.Log.File)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("KRAKEN_API_KEY", "key")
	t.Setenv("KRAKEN_API_SECRET", "c2VjcmV0")
	t.Setenv("PAIR", "XXBTZEUR")
	t.Setenv("STRATEGY_PCT", "0.015")
	t.Setenv("PATIENCE", "3h")
	t.Setenv("SPEND_CAP", "25.5")
	t.Setenv("LAST_ACTION", "sell")
	t.Setenv("LAST_PRICE", "0.9542")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "key", cfg.Kraken.APIKey)
	assert.Equal(t, "c2VjcmV0", cfg.Kraken.APISecret)
	assert.Equal(t, "XXBTZEUR", cfg.Pair.Key)
	assert.True(t, cfg.Trading.StrategyPct.Equal(decimal.RequireFromString("0.015")))
	assert.Equal(t, 3*time.Hour, cfg.Trading.Patience)
	assert.True(t, cfg.Trading.SpendCap.Equal(decimal.RequireFromString("25.5")))
	assert.Equal(t, "sell", cfg.Trading.LastAction)
	assert.Equal(t, "0.9542", cfg.Trading.LastPrice)
}

func TestLoadConfig_InvalidPct(t *testing.T) {
	t.Setenv("STRATEGY_PCT", "1.5")

	_, err := LoadConfig()
	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "STRATEGY_PCT", cfgErr.Field)
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		var cfg Config
		cfg.Trading.Interval = time.Minute
		cfg.Trading.StrategyPct = decimal.RequireFromString("0.02")
		cfg.Trading.Patience = 6 * time.Hour
		cfg.Trading.SpendCap = decimal.NewFromInt(50)
		cfg.Trading.SettleDelay = 10 * time.Second
		cfg.Pair.Key = "XXRPZEUR"
		return &cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{name: "정상", mutate: func(*Config) {}},
		{name: "짧은 주기", mutate: func(c *Config) { c.Trading.Interval = time.Millisecond }, wantField: "TICK_INTERVAL"},
		{name: "0 비율", mutate: func(c *Config) { c.Trading.StrategyPct = decimal.Zero }, wantField: "STRATEGY_PCT"},
		{name: "0 인내 시간", mutate: func(c *Config) { c.Trading.Patience = 0 }, wantField: "PATIENCE"},
		{name: "0 지출 한도", mutate: func(c *Config) { c.Trading.SpendCap = decimal.Zero }, wantField: "SPEND_CAP"},
		{name: "폴링 간격 없음", mutate: func(c *Config) { c.Trading.FillTimeout = time.Minute }, wantField: "FILL_POLL_INTERVAL"},
		{name: "페어 없음", mutate: func(c *Config) { c.Pair.Key = "" }, wantField: "PAIR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := ValidateConfig(cfg)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestParseSeed(t *testing.T) {
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	t.Run("정상", func(t *testing.T) {
		state, err := ParseSeed("SELL", "0.5214", now)
		require.NoError(t, err)
		assert.Equal(t, domain.Sell, state.LastAction)
		assert.True(t, decimal.RequireFromString("0.5214").Equal(state.LastTradePrice))
		assert.True(t, now.Equal(state.LastTradeTime))
	})

	tests := []struct {
		name   string
		action string
		price  string
		field  string
	}{
		{"알 수 없는 방향", "hold", "1", "LAST_ACTION"},
		{"가격 없음", "buy", "", "LAST_PRICE"},
		{"숫자가 아닌 가격", "buy", "abc", "LAST_PRICE"},
		{"0 가격", "sell", "0", "LAST_PRICE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed(tt.action, tt.price, now)
			var cfgErr *ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}
