package razorpay

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/config"
	"github.com/Ponna-create/ai-agent-vs-script-validator/internal/domain/provider"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

// RazorpayProvider talks to the Razorpay REST API with key-id/key-secret basic auth.
type RazorpayProvider struct {
	keyID        string
	keySecret    string
	baseURL      string
	fetchRetries int
	retryBackoff time.Duration
	client       *http.Client
	logger       *zap.Logger
}

// NewRazorpayProvider creates a new Razorpay provider instance
func NewRazorpayProvider(cfg config.RazorpayConfig, logger *zap.Logger) *RazorpayProvider {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &RazorpayProvider{
		keyID:        cfg.KeyID,
		keySecret:    cfg.KeySecret,
		baseURL:      baseURL,
		fetchRetries: cfg.FetchRetries,
		retryBackoff: cfg.RetryBackoff,
		client:       &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

func (r *RazorpayProvider) Name() string {
	return config.GatewayRazorpay
}

func (r *RazorpayProvider) PublicKey() string {
	return r.keyID
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
		Reason      string `json:"reason"`
	} `json:"error"`
}

// do sends one request and decodes a 2xx JSON body into out.
func (r *RazorpayProvider) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return &provider.ProviderError{
				Code:    provider.ErrCodeMarshal,
				Message: "Failed to prepare request",
				Details: map[string]interface{}{"error": err.Error()},
			}
		}
		reader = bytes.NewReader(jsonBody)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return &provider.ProviderError{
			Code:    provider.ErrCodeRequest,
			Message: "Failed to create request",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}
	httpReq.SetBasicAuth(r.keyID, r.keySecret)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		r.logger.Error("RazorpayProvider: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return &provider.ProviderError{
			Code:    provider.ErrCodeAPI,
			Message: "Razorpay API request failed",
			Details: map[string]interface{}{"error": err.Error()},
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &provider.ProviderError{
			Code:       provider.ErrCodeResponse,
			Message:    "Failed to read response",
			StatusCode: resp.StatusCode,
			Details:    map[string]interface{}{"error": err.Error()},
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp apiError
		_ = json.Unmarshal(respBody, &errResp)

		r.logger.Warn("RazorpayProvider: API returned an error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode),
			zap.String("code", errResp.Error.Code),
			zap.String("description", errResp.Error.Description))

		code := provider.ErrCodeAPI
		if resp.StatusCode == http.StatusNotFound {
			code = provider.ErrCodeNotFound
		}
		return &provider.ProviderError{
			Code:       code,
			Message:    errResp.Error.Description,
			StatusCode: resp.StatusCode,
			Details: map[string]interface{}{
				"gateway_code": errResp.Error.Code,
				"reason":       errResp.Error.Reason,
			},
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &provider.ProviderError{
			Code:       provider.ErrCodeParse,
			Message:    "Failed to parse response",
			StatusCode: resp.StatusCode,
			Details:    map[string]interface{}{"error": err.Error()},
		}
	}
	return nil
}

// retryable reports whether a failed read may be repeated.
func retryable(err error) bool {
	pe, ok := err.(*provider.ProviderError)
	if !ok {
		return false
	}
	switch {
	case pe.StatusCode == 0:
		return pe.Code == provider.ErrCodeAPI || pe.Code == provider.ErrCodeResponse
	case pe.StatusCode == http.StatusTooManyRequests, pe.StatusCode >= 500:
		return true
	}
	return false
}
