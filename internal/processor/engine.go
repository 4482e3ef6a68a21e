package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/crossbeg/crossbeg-backend/pkg/config"
	"github.com/crossbeg/crossbeg-backend/pkg/logger"
	"github.com/crossbeg/crossbeg-backend/pkg/metrics"
	"github.com/crossbeg/crossbeg-backend/pkg/money"
)

// paymentClient is the processor surface the engine drives.
type paymentClient interface {
	Pay(ctx context.Context, amount, recipient string) (string, error)
	GetStatus(ctx context.Context, paymentID string) (StatusResult, error)
}

// Engine drives a payment attempt from submission to a terminal status.
//
// Per-attempt state machine:
//
//	initial -> processing            on Submit
//	processing -> completed/failed   on terminal processor status
//	processing -> failed             on poll timeout or status-check error
type Engine struct {
	client         paymentClient
	goodsRecipient string
	interval       time.Duration
	timeout        time.Duration
	logg           *logger.Logger
	metrics        *metrics.PaymentMetrics
}

func NewEngine(client paymentClient, cfg config.ProcessorConfig, logg *logger.Logger, m *metrics.PaymentMetrics) (*Engine, error) {
	if client == nil {
		return nil, errors.New("processor client is required")
	}
	if cfg.GoodsRecipient != "" && len(cfg.GoodsRecipient) != 42 {
		return nil, fmt.Errorf("goods recipient %q is not an address", cfg.GoodsRecipient)
	}
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Engine{
		client:         client,
		goodsRecipient: cfg.GoodsRecipient,
		interval:       interval,
		timeout:        timeout,
		logg:           logg,
		metrics:        m,
	}, nil
}

// SubmitParams describes one payment intent.
type SubmitParams struct {
	RequestID   uint64
	Amount      string // decimal USD
	Recipient   string
	Description string
	IsGoods     bool
}

// ResolveRecipient applies the goods-routing rule: goods payments always go
// to the processor address, never to the nominal recipient.
func (e *Engine) ResolveRecipient(params SubmitParams) string {
	if params.IsGoods {
		return e.goodsRecipient
	}
	return params.Recipient
}

// Submit initiates a payment and returns the pending attempt. Failures are
// classified into user-facing reasons; a success response without a payment
// id is a hard failure.
func (e *Engine) Submit(ctx context.Context, params SubmitParams) (Attempt, error) {
	units, err := money.Encode(params.Amount)
	if err != nil {
		return Attempt{}, err
	}
	amount := money.Decode(units) // processor wants normalized decimal USD
	recipient := e.ResolveRecipient(params)

	kind := "request"
	if params.IsGoods {
		kind = "goods"
	}

	if e.logg != nil {
		ctx = e.logg.WithFields(ctx, map[string]any{
			"request_id": params.RequestID,
			"recipient":  recipient,
			"kind":       kind,
		})
		e.logg.Info(ctx, "processor.submit")
	}

	paymentID, err := e.client.Pay(ctx, amount, recipient)
	if err != nil {
		classified := Classify(err)
		e.metrics.IncFailed(string(classified.Reason))
		if e.logg != nil {
			e.logg.Error(ctx, "processor.submit.failed", classified)
		}
		return Attempt{Status: StatusFailed}, classified
	}
	if paymentID == "" {
		e.metrics.IncFailed("no_payment_id")
		return Attempt{Status: StatusFailed}, ErrNoPaymentID
	}

	e.metrics.IncInitiated(kind)
	return Attempt{PaymentID: paymentID, Status: StatusPending}, nil
}

// Poll queries the processor at the configured interval until a terminal
// status or the timeout. Timing out yields a terminal failed attempt, not an
// error: "gave up waiting" and "definitely failed" are deliberately not
// distinguished here. Abandoning the context stops the loop with no residue.
func (e *Engine) Poll(ctx context.Context, paymentID string) Attempt {
	started := time.Now()
	defer func() {
		e.metrics.ObservePoll(time.Since(started))
	}()

	if e.logg != nil {
		ctx = e.logg.WithPaymentID(ctx, paymentID)
	}

	deadline := started.Add(e.timeout)
	for time.Now().Before(deadline) {
		result, err := e.client.GetStatus(ctx, paymentID)
		if err != nil {
			// A status-check error counts as failure; it is not retried.
			e.metrics.IncFailed("status_check")
			if e.logg != nil {
				e.logg.Warn(ctx, "processor.poll.status_error")
			}
			return Attempt{PaymentID: paymentID, Status: StatusFailed}
		}
		if result.Status.IsTerminal() {
			attempt := Attempt{
				PaymentID:       paymentID,
				Status:          result.Status,
				TransactionHash: result.TransactionHash,
			}
			if result.Status == StatusCompleted {
				e.metrics.IncCompleted()
			} else {
				e.metrics.IncFailed("processor")
			}
			return attempt
		}

		select {
		case <-ctx.Done():
			return Attempt{PaymentID: paymentID, Status: StatusFailed}
		case <-time.After(e.interval):
		}
	}

	e.metrics.IncFailed("timeout")
	if e.logg != nil {
		e.logg.Warn(ctx, "processor.poll.timeout")
	}
	return Attempt{PaymentID: paymentID, Status: StatusFailed}
}
