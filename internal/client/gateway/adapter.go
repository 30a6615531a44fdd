// Package gateway содержит адаптеры внешних платёжных шлюзов.
// Любая ошибка провайдера или сети возвращается как результат с Reason, а не как error
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout таймаут HTTP клиента шлюза по умолчанию
const DefaultTimeout = 10 * time.Second

// PaymentRequest данные для списания
type PaymentRequest struct {
	Amount     int64
	Name       string
	Email      string
	CardNumber string
	CVV        string
}

// PaymentResult результат списания. ExternalID заполнен только при OK
type PaymentResult struct {
	OK         bool
	ExternalID string
	Reason     string
}

// RefundResult результат возврата
type RefundResult struct {
	OK     bool
	Reason string
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Adapter --dir=. --output=./mocks --outpkg=mocks

// Adapter единый контракт шлюза. Name совпадает с gateways.name в БД
type Adapter interface {
	Name() string
	SubmitPayment(ctx context.Context, req PaymentRequest) PaymentResult
	SubmitRefund(ctx context.Context, externalID string) RefundResult
}

// NewHTTPClient http.Client с таймаутом на весь запрос
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// providerError тело ошибки провайдера; шлюзы кладут текст в message или error
type providerError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// callError ответ провайдера, который нельзя считать успешным
type callError struct {
	reason string
}

func (e *callError) Error() string { return e.reason }

// postJSON отправляет JSON и декодирует ответ в out (если out != nil).
// Не-2xx ответ превращается в callError с текстом провайдера
func postJSON(ctx context.Context, client *http.Client, gatewayName, url string, headers map[string]string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var pe providerError
		if json.Unmarshal(raw, &pe) == nil {
			if pe.Message != "" {
				return &callError{reason: pe.Message}
			}
			if pe.Error != "" {
				return &callError{reason: pe.Error}
			}
		}
		return &callError{reason: fmt.Sprintf("%s status %d", gatewayName, resp.StatusCode)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// externalID провайдеры отдают id то строкой, то числом
type externalID string

func (id *externalID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = externalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = externalID(n.String())
	return nil
}
