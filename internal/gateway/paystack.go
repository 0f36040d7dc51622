package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// PaystackClient implements Client against the Paystack REST API. Amounts go
// over the wire in minor units, references are merchant-supplied, and
// /transaction/verify/{reference} is the authoritative lookup.
type PaystackClient struct {
	baseURL   string
	secretKey string
	hc        *http.Client
}

func NewPaystackClient(baseURL, secretKey string) *PaystackClient {
	return &PaystackClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		hc:        &http.Client{Timeout: 15 * time.Second},
	}
}

type initializeBody struct {
	Reference string            `json:"reference"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type initializeResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Reference        string `json:"reference"`
		AccessCode       string `json:"access_code"`
		AuthorizationURL string `json:"authorization_url"`
	} `json:"data"`
}

func (c *PaystackClient) Initialize(ctx context.Context, in InitializeRequest) (*Session, error) {
	body, err := json.Marshal(initializeBody{
		Reference: in.Reference,
		Amount:    in.Amount,
		Currency:  in.Currency,
		Metadata:  in.Metadata,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/transaction/initialize", strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway initialize failed: %s (%d)", string(raw), res.StatusCode)
	}
	var out initializeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse initialize response: %w", err)
	}
	if !out.Status {
		return nil, fmt.Errorf("gateway initialize rejected: %s", string(raw))
	}
	return &Session{
		Reference:        out.Data.Reference,
		AccessCode:       out.Data.AccessCode,
		AuthorizationURL: out.Data.AuthorizationURL,
	}, nil
}

type verifyResponse struct {
	Status bool `json:"status"`
	Data   struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
		Amount    int64  `json:"amount"`
		Currency  string `json:"currency"`
	} `json:"data"`
}

func (c *PaystackClient) Verify(ctx context.Context, reference string) (*Transaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/transaction/verify/"+reference, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway verify failed: %s (%d)", string(raw), res.StatusCode)
	}
	var out verifyResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse verify response: %w", err)
	}
	if !out.Status {
		return nil, ErrNotFound
	}

	tx := &Transaction{
		Reference: out.Data.Reference,
		Amount:    out.Data.Amount,
		Currency:  strings.ToUpper(out.Data.Currency),
	}
	switch out.Data.Status {
	case "success":
		tx.Status = StatusSuccess
	case "failed", "abandoned", "reversed":
		tx.Status = StatusFailed
	default:
		tx.Status = StatusPending
	}
	return tx, nil
}
