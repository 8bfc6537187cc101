package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/example/aurelia/internal/config"
)

// RazorpayService creates gateway-side orders ahead of client checkout.
type RazorpayService struct {
	keyID     string
	keySecret string
	baseURL   string
	client    *http.Client
}

// NewRazorpayService constructs a RazorpayService from gateway credentials.
func NewRazorpayService(cfg *config.Config) *RazorpayService {
	return &RazorpayService{
		keyID:     cfg.RazorpayKeyID,
		keySecret: cfg.RazorpayKeySecret,
		baseURL:   cfg.RazorpayBaseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GatewayOrder is the subset of the gateway's order resource the app uses.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type gatewayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

// KeyID exposes the public gateway key for client-side checkout widgets.
func (s *RazorpayService) KeyID() string {
	return s.keyID
}

// CreateOrder registers an order with the gateway. Amount is in currency
// units and converted to the gateway's smallest denomination.
func (s *RazorpayService) CreateOrder(ctx context.Context, receipt string, amount float64, notes map[string]string) (*GatewayOrder, error) {
	payload := gatewayOrderRequest{
		Amount:   int64(math.Round(amount * 100)),
		Currency: "INR",
		Receipt:  receipt,
		Notes:    notes,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.keyID, s.keySecret)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("gateway order creation failed: status %d: %s", resp.StatusCode, detail)
	}

	var order GatewayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, err
	}

	return &order, nil
}
