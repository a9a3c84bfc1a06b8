// internal/exchange/kraken/client.go
package kraken

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/cryptobot/internal/credentials"
	"github.com/assist-by/cryptobot/internal/domain"
	"github.com/assist-by/cryptobot/internal/exchange"
)

// DefaultBaseURL은 Kraken REST API 기본 주소입니다
const DefaultBaseURL = "https://api.kraken.com"

const (
	pathTicker      = "/0/public/Ticker"
	pathOHLC        = "/0/public/OHLC"
	pathBalance     = "/0/private/Balance"
	pathAddOrder    = "/0/private/AddOrder"
	pathQueryOrders = "/0/private/QueryOrders"
)

// Client는 Kraken REST API 클라이언트를 구현합니다
type Client struct {
	creds      credentials.Credentials
	pair       domain.PairConfig
	httpClient *resty.Client
	now        func() time.Time
	log        *logrus.Entry

	mu        sync.Mutex
	lastNonce int64 // 마지막으로 사용한 nonce
}

var _ exchange.Exchange = (*Client)(nil)

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 요청 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.SetTimeout(timeout)
	}
}

// WithBaseURL은 기본 URL을 설정합니다
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.httpClient.SetBaseURL(strings.TrimRight(baseURL, "/"))
	}
}

// WithClock은 nonce 생성과 캔들 필터링에 사용할 시계를 설정합니다
func WithClock(now func() time.Time) ClientOption {
	return func(c *Client) {
		c.now = now
	}
}

// WithLogger는 요청 로그를 남길 로거를 설정합니다
func WithLogger(log *logrus.Entry) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient는 새로운 Kraken API 클라이언트를 생성합니다
func NewClient(creds credentials.Credentials, pair domain.PairConfig, opts ...ClientOption) *Client {
	baseURL := creds.APIURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		creds: creds,
		pair:  pair,
		httpClient: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(15 * time.Second).
			SetHeader("User-Agent", "assist-cryptobot"),
		now: time.Now,
		log: logrus.NewEntry(logrus.StandardLogger()),
	}

	// 옵션 적용
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(logrus.Fields{"component": "kraken", "pair": pair.Symbol})

	return c
}

// Pair는 클라이언트가 다루는 페어 설정을 반환합니다
func (c *Client) Pair() domain.PairConfig {
	return c.pair
}

// Sign은 Kraken 인증 서명을 생성합니다.
// HMAC-SHA512(key=base64decode(secret), path || SHA256(nonce || urlencode(body)))를
// base64로 인코딩해 반환합니다. body에는 nonce가 포함되어 있어야 합니다.
func Sign(path string, body url.Values, secret string) (string, error) {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("API 시크릿 디코딩 실패: %w", err)
	}

	digest := sha256.Sum256([]byte(body.Get("nonce") + body.Encode()))

	mac := hmac.New(sha512.New, key)
	mac.Write([]byte(path))
	mac.Write(digest[:])

	return base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

// nextNonce는 엄격하게 증가하는 nonce(epoch 밀리초)를 반환합니다
func (c *Client) nextNonce() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	nonce := c.now().UnixMilli()
	if nonce <= c.lastNonce {
		nonce = c.lastNonce + 1
	}
	c.lastNonce = nonce
	return nonce
}

// Send는 서명된 POST 요청을 보내고 응답의 result 필드를 반환합니다
func (c *Client) Send(ctx context.Context, path string, body url.Values) (json.RawMessage, error) {
	op := opName(path)
	if body == nil {
		body = url.Values{}
	}
	body.Set("nonce", strconv.FormatInt(c.nextNonce(), 10))

	signature, err := Sign(path, body, c.creds.APISecret)
	if err != nil {
		return nil, err
	}

	c.log.WithField("op", op).Debug("비공개 API 요청")

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("API-Key", c.creds.APIKey).
		SetHeader("API-Sign", signature).
		SetHeader("Content-Type", "application/x-www-form-urlencoded; charset=utf-8").
		SetBody(body.Encode()).
		Post(path)

	return handleResponse(op, resp, err)
}

// get은 인증이 필요 없는 공개 API를 호출합니다
func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	op := opName(path)
	c.log.WithField("op", op).Debug("공개 API 요청")

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(path)

	return handleResponse(op, resp, err)
}

// envelope는 모든 Kraken 응답의 공통 구조입니다
type envelope struct {
	Error  []string        `json:"error"`
	Result json.RawMessage `json:"result"`
}

func handleResponse(op string, resp *resty.Response, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, &exchange.TransportError{Op: op, Err: err}
	}

	// 상태 코드 확인
	if !resp.IsSuccess() {
		return nil, &exchange.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Err:        errors.New(truncate(resp.String(), 200)),
		}
	}

	return decodeEnvelope(op, resp.Body())
}

func decodeEnvelope(op string, body []byte) (json.RawMessage, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &exchange.DataShapeError{Op: op, Field: "envelope", Err: err}
	}

	// 'W'로 시작하는 항목은 경고이므로 무시합니다
	var messages []string
	for _, m := range env.Error {
		if !strings.HasPrefix(m, "W") {
			messages = append(messages, m)
		}
	}
	if len(messages) > 0 {
		return nil, &exchange.RejectionError{Op: op, Messages: messages}
	}

	if len(env.Result) == 0 || string(env.Result) == "null" {
		return nil, &exchange.DataShapeError{Op: op, Field: "result"}
	}

	return env.Result, nil
}

// pairEntry는 페어 심볼을 키로 하는 결과 맵에서 해당 페어 항목을 찾습니다.
// 요청한 심볼과 응답 키가 다르면(altname 요청 등) 유일한 항목을 사용합니다.
func pairEntry(result map[string]json.RawMessage, symbol string) (json.RawMessage, bool) {
	if v, ok := result[symbol]; ok {
		return v, true
	}

	var (
		found json.RawMessage
		count int
	)
	for k, v := range result {
		if k == "last" {
			continue
		}
		found = v
		count++
	}
	return found, count == 1
}

func parseDecimal(op, field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &exchange.DataShapeError{Op: op, Field: field, Err: err}
	}
	return d, nil
}

func opName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
