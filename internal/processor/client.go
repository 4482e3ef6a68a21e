package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/crossbeg/crossbeg-backend/pkg/config"
	"github.com/crossbeg/crossbeg-backend/pkg/logger"
)

// StatusResult is the processor's answer to a status query.
type StatusResult struct {
	Status          Status
	TransactionHash string
}

// Client talks to the external payment processor REST API. Calls run through
// a circuit breaker so a dead processor fails fast instead of tying up
// request handlers.
type Client struct {
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
	testnet bool
	logg    *logger.Logger
}

func NewClient(cfg config.ProcessorConfig, logg *logger.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.RequestTimeout).
		SetHeader("Content-Type", "application/json")

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "payment-processor",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logg != nil {
				ctx := logg.WithFields(context.Background(), map[string]any{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				})
				logg.Warn(ctx, "processor.breaker.state_change")
			}
		},
	})

	return &Client{
		http:    httpClient,
		breaker: breaker,
		testnet: cfg.Testnet,
		logg:    logg,
	}
}

type payRequest struct {
	Amount  string `json:"amount"`
	To      string `json:"to"`
	Testnet bool   `json:"testnet"`
}

type payResponse struct {
	ID    string `json:"id"`
	Error string `json:"error,omitempty"`
}

type statusResponse struct {
	Status          string `json:"status"`
	TransactionHash string `json:"transaction_hash,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Pay submits a payment intent and returns the processor's payment id.
func (c *Client) Pay(ctx context.Context, amount, recipient string) (string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		var parsed payResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(payRequest{Amount: amount, To: recipient, Testnet: c.testnet}).
			SetResult(&parsed).
			SetError(&parsed).
			Post("/payments")
		if err != nil {
			return "", err
		}
		if resp.IsError() {
			if parsed.Error != "" {
				return "", errors.New(parsed.Error)
			}
			return "", fmt.Errorf("processor returned status %d", resp.StatusCode())
		}
		return parsed.ID, nil
	})
	if err != nil {
		return "", breakerError(err)
	}
	id, _ := result.(string)
	return id, nil
}

// GetStatus queries the processor for an attempt's current status.
func (c *Client) GetStatus(ctx context.Context, paymentID string) (StatusResult, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		var parsed statusResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetQueryParam("testnet", fmt.Sprintf("%t", c.testnet)).
			SetResult(&parsed).
			SetError(&parsed).
			Get("/payments/" + paymentID)
		if err != nil {
			return StatusResult{}, err
		}
		if resp.IsError() {
			if parsed.Error != "" {
				return StatusResult{}, errors.New(parsed.Error)
			}
			return StatusResult{}, fmt.Errorf("processor returned status %d", resp.StatusCode())
		}
		status, err := ParseStatus(parsed.Status)
		if err != nil {
			return StatusResult{}, err
		}
		return StatusResult{Status: status, TransactionHash: parsed.TransactionHash}, nil
	})
	if err != nil {
		return StatusResult{}, breakerError(err)
	}
	parsed, _ := result.(StatusResult)
	return parsed, nil
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("payment processor unavailable: %w", err)
	}
	return err
}
