package pair

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/assist-by/cryptobot/internal/domain"
)

// ErrUnknownPair는 페어 메타데이터가 없을 때 반환됩니다
var ErrUnknownPair = errors.New("알 수 없는 거래 페어")

// entry는 페어 사전 파일의 한 항목입니다.
// JSON은 YAML의 부분집합이므로 pair_dictionary.json도 그대로 읽힙니다.
type entry struct {
	PairName     string `yaml:"pair_name"`
	Coin         string `yaml:"coin"`
	Currency     string `yaml:"currency"`
	LotDecimals  *int32 `yaml:"lot_decimals"`
	PairDecimals *int32 `yaml:"pair_decimals"`
}

// Registry는 페어 키에서 거래소 식별자로의 정적 매핑입니다
type Registry struct {
	pairs map[string]domain.PairConfig
}

// 기본 자릿수 (Kraken 대부분의 현물 페어 기준)
const (
	defaultVolumeDecimals = 8
	defaultPriceDecimals  = 5
)

// Default는 내장 페어 목록을 가진 Registry를 반환합니다
func Default() *Registry {
	return &Registry{pairs: map[string]domain.PairConfig{
		"XXRPZEUR": {Key: "XXRPZEUR", Symbol: "XXRPZEUR", Coin: "XXRP", Currency: "ZEUR", VolumeDecimals: 8, PriceDecimals: 5},
		"XXBTZEUR": {Key: "XXBTZEUR", Symbol: "XXBTZEUR", Coin: "XXBT", Currency: "ZEUR", VolumeDecimals: 8, PriceDecimals: 1},
		"XETHZEUR": {Key: "XETHZEUR", Symbol: "XETHZEUR", Coin: "XETH", Currency: "ZEUR", VolumeDecimals: 8, PriceDecimals: 2},
		"ADAEUR":   {Key: "ADAEUR", Symbol: "ADAEUR", Coin: "ADA", Currency: "ZEUR", VolumeDecimals: 8, PriceDecimals: 6},
		"DOTEUR":   {Key: "DOTEUR", Symbol: "DOTEUR", Coin: "DOT", Currency: "ZEUR", VolumeDecimals: 8, PriceDecimals: 4},
	}}
}

// LoadFile은 페어 사전 파일을 읽어 Registry를 생성합니다
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("페어 사전 파일 읽기 실패: %w", err)
	}
	return Parse(data)
}

// Parse는 페어 사전 데이터를 파싱합니다
func Parse(data []byte) (*Registry, error) {
	var raw map[string]entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("페어 사전 파싱 실패: %w", err)
	}

	r := &Registry{pairs: make(map[string]domain.PairConfig, len(raw))}
	for key, e := range raw {
		if e.PairName == "" || e.Coin == "" || e.Currency == "" {
			return nil, fmt.Errorf("페어 %s: pair_name, coin, currency는 필수입니다", key)
		}
		cfg := domain.PairConfig{
			Key:            key,
			Symbol:         e.PairName,
			Coin:           e.Coin,
			Currency:       e.Currency,
			VolumeDecimals: defaultVolumeDecimals,
			PriceDecimals:  defaultPriceDecimals,
		}
		if e.LotDecimals != nil {
			cfg.VolumeDecimals = *e.LotDecimals
		}
		if e.PairDecimals != nil {
			cfg.PriceDecimals = *e.PairDecimals
		}
		r.pairs[key] = cfg
	}

	return r, nil
}

// Get은 페어 키에 해당하는 설정을 반환합니다
func (r *Registry) Get(key string) (domain.PairConfig, error) {
	cfg, ok := r.pairs[key]
	if !ok {
		return domain.PairConfig{}, fmt.Errorf("%w: %s", ErrUnknownPair, key)
	}
	return cfg, nil
}
