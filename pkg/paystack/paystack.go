package paystack

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL     = "https://api.paystack.co"
	SignatureHeader    = "x-paystack-signature"
	EventChargeSuccess = "charge.success"
	StatusSuccess      = "success"
)

var (
	ErrNotConfigured = errors.New("paystack secret key not configured")
	ErrUpstream      = errors.New("paystack request failed")
)

type InitializeRequest struct {
	Email       string                 `json:"email"`
	Amount      int64                  `json:"amount"`
	Reference   string                 `json:"reference"`
	CallbackURL string                 `json:"callback_url,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type InitializeData struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

type Transaction struct {
	ID        int64                  `json:"id"`
	Status    string                 `json:"status"`
	Reference string                 `json:"reference"`
	Amount    int64                  `json:"amount"`
	Currency  string                 `json:"currency"`
	PaidAt    string                 `json:"paid_at"`
	Metadata  map[string]interface{} `json:"metadata"`
	Customer  struct {
		Email string `json:"email"`
	} `json:"customer"`
}

// Event is a webhook delivery.
type Event struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type Client struct {
	http      *resty.Client
	secretKey string
}

func NewClient(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(secretKey).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)
	return &Client{http: rc, secretKey: secretKey}
}

func (c *Client) Initialize(ctx context.Context, req InitializeRequest) (*InitializeData, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	var out envelope[InitializeData]
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post("/transaction/initialize")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.IsError() || !out.Status {
		return nil, fmt.Errorf("%w: initialize %s: status %d: %s", ErrUpstream, req.Reference, resp.StatusCode(), out.Message)
	}
	return &out.Data, nil
}

func (c *Client) Verify(ctx context.Context, reference string) (*Transaction, error) {
	if c.secretKey == "" {
		return nil, ErrNotConfigured
	}

	var out envelope[Transaction]
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&out).
		Get("/transaction/verify/" + url.PathEscape(reference))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if resp.IsError() || !out.Status {
		return nil, fmt.Errorf("%w: verify %s: status %d: %s", ErrUpstream, reference, resp.StatusCode(), out.Message)
	}
	return &out.Data, nil
}

// VerifySignature checks a webhook body against its x-paystack-signature header.
func (c *Client) VerifySignature(body []byte, signature string) bool {
	return VerifySignature(c.secretKey, body, signature)
}

func VerifySignature(secretKey string, body []byte, signature string) bool {
	if secretKey == "" || signature == "" {
		return false
	}
	expected, err := hex.DecodeString(strings.TrimSpace(signature))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, Sign(secretKey, body))
}

func Sign(secretKey string, body []byte) []byte {
	mac := hmac.New(sha512.New, []byte(secretKey))
	mac.Write(body)
	return mac.Sum(nil)
}

// ToKobo converts a naira amount into the minor unit Paystack expects.
func ToKobo(naira float64) int64 {
	if naira <= 0 {
		return 0
	}
	return int64(naira*100 + 0.5)
}
