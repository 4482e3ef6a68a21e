package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/crossbeg/crossbeg-backend/internal/ledger"
	"github.com/crossbeg/crossbeg-backend/internal/processor"
	"github.com/crossbeg/crossbeg-backend/pkg/logger"
	"github.com/crossbeg/crossbeg-backend/pkg/money"
)

type repository interface {
	GetRequest(ctx context.Context, id uint64) (ledger.PaymentRequest, error)
	ListRequestsCreatedBy(ctx context.Context, address string) ([]uint64, error)
	ListRequestsPayableBy(ctx context.Context, address string) ([]uint64, error)
}

type paymentEngine interface {
	Submit(ctx context.Context, params processor.SubmitParams) (processor.Attempt, error)
	Poll(ctx context.Context, paymentID string) processor.Attempt
}

type payGuard interface {
	Acquire(ctx context.Context, requestID uint64) error
	Release(ctx context.Context, requestID uint64)
}

// Service composes the ledger repository and the payment engine into the
// request lifecycle a caller observes: pending, paid, cancelled, expired.
// Status is never mutated locally; after a payment settles the ledger record
// is re-read.
type Service struct {
	repo   repository
	engine paymentEngine
	guard  payGuard
	logg   *logger.Logger
}

// NewService wires the presenter. The guard is optional; without one,
// concurrent pay attempts against the same request are not serialized.
func NewService(repo repository, engine paymentEngine, guard payGuard, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("ledger repository is required")
	}
	if engine == nil {
		return nil, errors.New("payment engine is required")
	}
	return &Service{repo: repo, engine: engine, guard: guard, logg: logg}, nil
}

// Snapshot is one user's view of the ledger: requests they created and
// requests addressed to them, each in ledger insertion order.
type Snapshot struct {
	Sent     []ledger.PaymentRequest
	Received []ledger.PaymentRequest
}

// Refresh re-reads every request the address is involved in. Individual
// record failures do not abort the load; the resolved subset is returned
// alongside a PartialLoadError naming what is missing.
func (s *Service) Refresh(ctx context.Context, address string) (Snapshot, error) {
	if s.logg != nil {
		ctx = s.logg.WithAddress(ctx, address)
	}

	sentIDs, err := s.repo.ListRequestsCreatedBy(ctx, address)
	if err != nil {
		return Snapshot{}, err
	}
	receivedIDs, err := s.repo.ListRequestsPayableBy(ctx, address)
	if err != nil {
		return Snapshot{}, err
	}

	var failedIDs []uint64
	var failures error

	resolve := func(ids []uint64) []ledger.PaymentRequest {
		records := make([]ledger.PaymentRequest, 0, len(ids))
		for _, id := range ids {
			record, err := s.repo.GetRequest(ctx, id)
			if err != nil {
				failedIDs = append(failedIDs, id)
				failures = multierr.Append(failures, err)
				continue
			}
			records = append(records, record)
		}
		return records
	}

	snapshot := Snapshot{
		Sent:     resolve(sentIDs),
		Received: resolve(receivedIDs),
	}

	if failures != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, fmt.Sprintf("lifecycle.refresh.partial: %d record(s) failed", len(failedIDs)))
		}
		return snapshot, &PartialLoadError{FailedIDs: failedIDs, cause: failures}
	}
	return snapshot, nil
}

// PayResult is the outcome of a pay cycle: the terminal attempt, and the
// ledger record as re-observed afterwards.
type PayResult struct {
	Attempt processor.Attempt
	Request ledger.PaymentRequest
}

// PayPending drives a full payment cycle for one pending request: claim the
// in-flight guard, submit to the processor, poll to a terminal status, then
// re-read the ledger record. Only Pending requests are payable.
func (s *Service) PayPending(ctx context.Context, requestID uint64) (PayResult, error) {
	request, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		return PayResult{}, err
	}
	if request.Status != ledger.StatusPending {
		return PayResult{Request: request}, fmt.Errorf("request %d is %s: %w", requestID, request.Status, ErrNotPending)
	}

	if s.guard != nil {
		if err := s.guard.Acquire(ctx, requestID); err != nil {
			return PayResult{Request: request}, err
		}
		defer s.guard.Release(ctx, requestID)
	}

	if s.logg != nil {
		ctx = s.logg.WithFields(ctx, map[string]any{
			"ledger_request_id": requestID,
			"requester":         request.Requester,
		})
		s.logg.Info(ctx, "lifecycle.pay.start")
	}

	attempt, err := s.engine.Submit(ctx, processor.SubmitParams{
		RequestID:   requestID,
		Amount:      money.Decode(request.Amount),
		Recipient:   request.Requester,
		Description: request.Description,
	})
	if err != nil {
		return PayResult{Request: request, Attempt: attempt}, err
	}

	attempt = s.engine.Poll(ctx, attempt.PaymentID)
	result := PayResult{Attempt: attempt, Request: request}
	if attempt.Status != processor.StatusCompleted {
		if s.logg != nil {
			s.logg.Warn(ctx, "lifecycle.pay.not_completed")
		}
		return result, nil
	}

	// The ledger is the source of truth for the new status; the settled
	// record may lag the processor by a block or two.
	updated, err := s.repo.GetRequest(ctx, requestID)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "lifecycle.pay.reread_failed")
		}
		return result, nil
	}
	result.Request = updated

	if s.logg != nil {
		s.logg.Info(ctx, "lifecycle.pay.completed")
	}
	return result, nil
}
