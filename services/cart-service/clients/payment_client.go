package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/yashrajoria/storefront/services/common/errors"
	"github.com/yashrajoria/storefront/services/common/logger"
	paymentmodels "github.com/yashrajoria/storefront/services/payment-service/models"
)

// PaymentClient calls payment-service over HTTP.
type PaymentClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPaymentClient(baseURL string) *PaymentClient {
	return &PaymentClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type errorBody struct {
	Error string         `json:"error"`
	Kind  apperrors.Kind `json:"kind"`
}

// CreateCheckoutSession posts to /checkout-session. Error responses are turned
// back into application errors of the same kind so callers see the original status.
func (c *PaymentClient) CreateCheckoutSession(ctx context.Context, req paymentmodels.CheckoutRequest) (*paymentmodels.CheckoutResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkout-session", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if id := logger.RequestID(ctx); id != "" {
		httpReq.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apperrors.Processor("payment service unavailable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil || eb.Kind == "" {
			return nil, apperrors.Processor(fmt.Sprintf("payment service returned %d", resp.StatusCode), nil)
		}
		return nil, apperrors.New(eb.Kind, eb.Error, nil)
	}

	var out paymentmodels.CheckoutResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apperrors.Processor("invalid payment service response", err)
	}
	return &out, nil
}
