package domain

// PairConfig는 거래 페어의 거래소 식별자를 정의합니다
type PairConfig struct {
	Key            string // 페어 키 (예: XXRPZEUR)
	Symbol         string // 거래소 페어 심볼 (Ticker/OHLC/AddOrder의 pair)
	Coin           string // 코인 자산 ID (예: XXRP)
	Currency       string // 통화 자산 ID (예: ZEUR)
	VolumeDecimals int32  // 주문 수량 소수점 자릿수
	PriceDecimals  int32  // 주문 가격 소수점 자릿수
}
