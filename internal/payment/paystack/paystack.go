package paystack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.paystack.co"
	defaultTimeout = 15 * time.Second

	transactionStatusSuccess = "success"
)

var (
	ErrConfigInvalid   = errors.New("paystack config invalid")
	ErrRequestFailed   = errors.New("paystack request failed")
	ErrGatewayRejected = errors.New("paystack request rejected")
	ErrResponseInvalid = errors.New("paystack response invalid")
)

// Config Paystack 网关配置
type Config struct {
	SecretKey   string        `json:"secret_key"`   // 商户密钥
	BaseURL     string        `json:"base_url"`     // 网关地址
	CallbackURL string        `json:"callback_url"` // 回调地址
	Timeout     time.Duration `json:"-"`            // 单次请求超时
}

// ValidateConfig 校验网关配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return fmt.Errorf("%w: secret_key is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.CallbackURL) == "" {
		return fmt.Errorf("%w: callback_url is required", ErrConfigInvalid)
	}
	return nil
}

// CartLine 结算快照行（随 initialize 一起送到网关 metadata）
type CartLine struct {
	ProductID uint   `json:"product_id"`
	Title     string `json:"title"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

// Metadata 发起交易时附带的业务元数据，回调侧缺少待支付记录时用于兜底重建。
type Metadata struct {
	Name     string     `json:"name,omitempty"`
	Phone    string     `json:"phone,omitempty"`
	City     string     `json:"city,omitempty"`
	CouponID *uint      `json:"coupon_id,omitempty"`
	Discount string     `json:"discount,omitempty"`
	Cart     []CartLine `json:"cart,omitempty"`
}

// InitializeInput 发起交易输入
type InitializeInput struct {
	Reference   string
	AmountMinor int64
	Email       string
	CallbackURL string
	Metadata    Metadata
}

// InitializeResult 发起交易结果
type InitializeResult struct {
	AuthorizationURL string
	AccessCode       string
	Reference        string
}

// VerifyResult 查验交易结果
type VerifyResult struct {
	Success       bool
	AmountMinor   int64
	Currency      string
	CustomerEmail string
	Metadata      Metadata
}

// Client Paystack REST 客户端，无本地状态，单次请求不做重试。
type Client struct {
	cfg        *Config
	httpClient *http.Client
}

// NewClient 创建网关客户端
func NewClient(cfg *Config) (*Client, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

type initializeRequest struct {
	Email       string   `json:"email"`
	Amount      int64    `json:"amount"`
	Reference   string   `json:"reference"`
	CallbackURL string   `json:"callback_url,omitempty"`
	Metadata    Metadata `json:"metadata"`
}

type initializeResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AuthorizationURL string `json:"authorization_url"`
		AccessCode       string `json:"access_code"`
		Reference        string `json:"reference"`
	} `json:"data"`
}

// Initialize 发起交易，返回跳转授权地址。Reference 必须由调用方生成且全局唯一。
func (c *Client) Initialize(ctx context.Context, input InitializeInput) (*InitializeResult, error) {
	if strings.TrimSpace(input.Reference) == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrRequestFailed)
	}
	if input.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrRequestFailed)
	}
	callbackURL := input.CallbackURL
	if callbackURL == "" {
		callbackURL = c.cfg.CallbackURL
	}

	payload := initializeRequest{
		Email:       input.Email,
		Amount:      input.AmountMinor,
		Reference:   input.Reference,
		CallbackURL: callbackURL,
		Metadata:    input.Metadata,
	}
	body, err := c.postJSON(ctx, "/transaction/initialize", payload)
	if err != nil {
		return nil, err
	}

	var parsed initializeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if !parsed.Status {
		return nil, fmt.Errorf("%w: %s", ErrResponseInvalid, parsed.Message)
	}
	if parsed.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: authorization_url missing", ErrResponseInvalid)
	}
	return &InitializeResult{
		AuthorizationURL: parsed.Data.AuthorizationURL,
		AccessCode:       parsed.Data.AccessCode,
		Reference:        parsed.Data.Reference,
	}, nil
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status   string          `json:"status"`
		Amount   int64           `json:"amount"`
		Currency string          `json:"currency"`
		Metadata json.RawMessage `json:"metadata"`
		Customer struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// Verify 查验交易。网关超时按"尚未确认"处理，由调用方决定是否重查。
func (c *Client) Verify(ctx context.Context, reference string) (*VerifyResult, error) {
	if strings.TrimSpace(reference) == "" {
		return nil, fmt.Errorf("%w: reference is required", ErrRequestFailed)
	}
	body, err := c.getJSON(ctx, "/transaction/verify/"+reference)
	if err != nil {
		return nil, err
	}

	var parsed verifyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if !parsed.Status {
		return nil, fmt.Errorf("%w: %s", ErrResponseInvalid, parsed.Message)
	}

	result := &VerifyResult{
		Success:       parsed.Data.Status == transactionStatusSuccess,
		AmountMinor:   parsed.Data.Amount,
		Currency:      parsed.Data.Currency,
		CustomerEmail: parsed.Data.Customer.Email,
	}
	// metadata 可能是对象或空字符串，解析失败不视为致命错误
	if len(parsed.Data.Metadata) > 0 {
		_ = json.Unmarshal(parsed.Data.Metadata, &result.Metadata)
	}
	return result, nil
}

func (c *Client) postJSON(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildEndpoint(path), strings.NewReader(string(raw)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) getJSON(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildEndpoint(path), nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	// 传输失败（超时、不可达）与网关明确拒绝（4xx/5xx）分属两类错误：
	// 前者结果未知可稍后重查，后者是确定性的失败
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d", ErrGatewayRejected, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	return body, nil
}

func (c *Client) buildEndpoint(path string) string {
	base := strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
