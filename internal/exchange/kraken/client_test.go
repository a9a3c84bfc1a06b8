package kraken

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/cryptobot/internal/credentials"
	"github.com/assist-by/cryptobot/internal/domain"
	"github.com/assist-by/cryptobot/internal/exchange"
)

var (
	testSecret = base64.StdEncoding.EncodeToString([]byte("test-secret-key"))
	testPair   = domain.PairConfig{
		Key:            "XXRPZEUR",
		Symbol:         "XXRPZEUR",
		Coin:           "XXRP",
		Currency:       "ZEUR",
		VolumeDecimals: 8,
		PriceDecimals:  5,
	}
)

// newTestClient는 httptest 서버를 바라보는 클라이언트를 생성합니다.
// 비공개 요청은 서버 쪽에서 서명을 다시 계산해 검증합니다.
func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "test-key", r.Header.Get("API-Key"))

			want, err := Sign(r.URL.Path, r.PostForm, testSecret)
			require.NoError(t, err)
			assert.Equal(t, want, r.Header.Get("API-Sign"), "서명 불일치")
			assert.NotEmpty(t, r.PostForm.Get("nonce"))
		}
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	creds := credentials.Credentials{APIURL: srv.URL, APIKey: "test-key", APISecret: testSecret}
	return NewClient(creds, testPair, append([]ClientOption{WithTimeout(2 * time.Second)}, opts...)...)
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestSign_KnownVector(t *testing.T) {
	secret := "kQH5HW/8p1uGOVjbgWA7FunAmGO8lsSUXNsu3eow76sz84Q18fWxnyRzBHCd3pd5nE9qa99HAZtuZuj6F1huXg=="
	body := url.Values{
		"nonce":     {"1616492376594"},
		"ordertype": {"limit"},
		"pair":      {"XBTUSD"},
		"price":     {"37500"},
		"type":      {"buy"},
		"volume":    {"1.25"},
	}

	sig, err := Sign("/0/private/AddOrder", body, secret)
	require.NoError(t, err)
	assert.Equal(t, "4/dpxb3iT4tp/ZCVEwSnEsLxx0bqyhLpdfOpc6fn7OR8+UClSV5n9E6aSS8MPtnRfp32bAb0nmbRn6H8ndwLUQ==", sig)
}

func TestSign_InvalidSecret(t *testing.T) {
	_, err := Sign("/0/private/Balance", url.Values{"nonce": {"1"}}, "not base64!!")
	assert.Error(t, err)
}

func TestNextNonce_StrictlyIncreasing(t *testing.T) {
	fixed := time.UnixMilli(1_700_000_000_000)
	c := NewClient(credentials.Credentials{}, testPair, WithClock(func() time.Time { return fixed }))

	first := c.nextNonce()
	second := c.nextNonce()
	third := c.nextNonce()

	assert.Equal(t, fixed.UnixMilli(), first)
	assert.Greater(t, second, first)
	assert.Greater(t, third, second)
}

func TestSend_IncreasingNonceAcrossRequests(t *testing.T) {
	var nonces []int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		n, err := strconv.ParseInt(r.PostForm.Get("nonce"), 10, 64)
		require.NoError(t, err)
		nonces = append(nonces, n)
		writeJSON(w, `{"error":[],"result":{"ZEUR":"10.0"}}`)
	})

	for i := 0; i < 3; i++ {
		_, err := c.Send(context.Background(), pathBalance, nil)
		require.NoError(t, err)
	}

	require.Len(t, nonces, 3)
	assert.Less(t, nonces[0], nonces[1])
	assert.Less(t, nonces[1], nonces[2])
}

func TestSend_ErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind string
	}{
		{
			name:     "거래소 거부",
			status:   http.StatusOK,
			body:     `{"error":["EAPI:Invalid nonce"]}`,
			wantKind: "rejection",
		},
		{
			name:     "HTTP 에러",
			status:   http.StatusBadGateway,
			body:     `bad gateway`,
			wantKind: "transport",
		},
		{
			name:     "깨진 JSON",
			status:   http.StatusOK,
			body:     `{"error":[`,
			wantKind: "data_shape",
		},
		{
			name:     "result 없음",
			status:   http.StatusOK,
			body:     `{"error":[]}`,
			wantKind: "data_shape",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Send(context.Background(), pathBalance, nil)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, exchange.Kind(err), "err: %v", err)
		})
	}
}

func TestSend_WarningsAreIgnored(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"error":["WGeneral:Deprecated"],"result":{"ZEUR":"1"}}`)
	})

	_, err := c.Send(context.Background(), pathBalance, nil)
	assert.NoError(t, err)
}

func TestSend_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(credentials.Credentials{APIURL: srv.URL, APIKey: "k", APISecret: testSecret}, testPair)
	_, err := c.Send(context.Background(), pathBalance, nil)

	var transport *exchange.TransportError
	require.True(t, errors.As(err, &transport), "err: %v", err)
	assert.Equal(t, 0, transport.StatusCode)
}
