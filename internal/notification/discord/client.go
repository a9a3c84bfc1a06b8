package discord

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/assist-by/cryptobot/internal/notification"
)

const footer = "Assist by Trading Bot 🤖"

// WebhookMessage는 Discord 웹훅 메시지를 정의합니다
type WebhookMessage struct {
	Content string  `json:"content,omitempty"`
	Embeds  []Embed `json:"embeds,omitempty"`
}

// Embed는 Discord 메시지 임베드를 정의합니다
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// EmbedField는 임베드 필드를 정의합니다
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter는 임베드 푸터를 정의합니다
type EmbedFooter struct {
	Text string `json:"text"`
}

// Client는 Discord 웹훅 알림 클라이언트입니다
type Client struct {
	webhook    string
	httpClient *resty.Client
}

var _ notification.Notifier = (*Client)(nil)

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 클라이언트의 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.SetTimeout(timeout)
	}
}

// NewClient는 새로운 Discord 클라이언트를 생성합니다
func NewClient(webhook string, opts ...ClientOption) *Client {
	c := &Client{
		webhook:    webhook,
		httpClient: resty.New().SetTimeout(10 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SendTrade는 체결된 거래 정보를 전송합니다
func (c *Client) SendTrade(info notification.TradeInfo) error {
	embed := Embed{
		Title:       fmt.Sprintf("거래 체결: %s %s", info.Pair, info.Side),
		Description: fmt.Sprintf("**트리거**: %s\n**주문 ID**: %s", info.Trigger, info.OrderID),
		Color:       notification.GetColorForSide(info.Side),
		Fields: []EmbedField{
			{Name: "수량", Value: info.Volume.String(), Inline: true},
			{Name: "체결가", Value: info.FilledPrice.String(), Inline: true},
			{Name: "직전 거래가", Value: info.PreviousPrice.String(), Inline: true},
		},
		Footer:    &EmbedFooter{Text: footer},
		Timestamp: info.Time.Format(time.RFC3339),
	}

	return c.send(WebhookMessage{Embeds: []Embed{embed}})
}

// SendError는 에러 알림을 전송합니다
func (c *Client) SendError(err error) error {
	embed := Embed{
		Title:       "에러 발생",
		Description: fmt.Sprintf("```%v```", err),
		Color:       notification.ColorError,
		Footer:      &EmbedFooter{Text: footer},
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	return c.send(WebhookMessage{Embeds: []Embed{embed}})
}

// SendInfo는 일반 정보 알림을 전송합니다
func (c *Client) SendInfo(message string) error {
	embed := Embed{
		Description: message,
		Color:       notification.ColorInfo,
		Footer:      &EmbedFooter{Text: footer},
		Timestamp:   time.Now().Format(time.RFC3339),
	}

	return c.send(WebhookMessage{Embeds: []Embed{embed}})
}

func (c *Client) send(msg WebhookMessage) error {
	resp, err := c.httpClient.R().
		SetHeader("Content-Type", "application/json").
		SetBody(msg).
		Post(c.webhook)
	if err != nil {
		return fmt.Errorf("웹훅 전송 실패: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("웹훅 응답 에러(%d): %s", resp.StatusCode(), resp.String())
	}
	return nil
}
