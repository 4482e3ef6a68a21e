package controllers

import (
	"errors"
	"fmt"

	"github.com/crossbeg/crossbeg-backend/internal/ledger"
	"github.com/crossbeg/crossbeg-backend/internal/lifecycle"
	"github.com/crossbeg/crossbeg-backend/internal/processor"
	pkgerrors "github.com/crossbeg/crossbeg-backend/pkg/errors"
	"github.com/crossbeg/crossbeg-backend/pkg/money"
)

// mapDomainError translates domain sentinels into typed API errors. Already
// typed errors pass through untouched.
func mapDomainError(err error) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}

	var initiation *processor.InitiationError
	if errors.As(err, &initiation) {
		return pkgerrors.Wrap(pkgerrors.CodePaymentFailed, err, initiation.Message).
			WithDetails(map[string]any{"reason": string(initiation.Reason)})
	}
	var submission *ledger.SubmissionError
	if errors.As(err, &submission) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transaction submission failed")
	}
	var partial *lifecycle.PartialLoadError
	if errors.As(err, &partial) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "some requests could not be loaded").
			WithDetails(map[string]any{"failed_ids": partial.FailedIDs})
	}

	switch {
	case errors.Is(err, money.ErrInvalidAmount):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	case errors.Is(err, ledger.ErrInvalidAddress):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid address")
	case errors.Is(err, ledger.ErrEmptyDescription):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "description must not be empty")
	case errors.Is(err, ledger.ErrWalletUnavailable):
		return pkgerrors.Wrap(pkgerrors.CodeWalletUnavailable, err, "wallet is not connected")
	case errors.Is(err, ledger.ErrNotFound):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "payment request not found")
	case errors.Is(err, lifecycle.ErrNotPending):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, "request is not pending")
	case errors.Is(err, lifecycle.ErrAlreadyInFlight):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a payment for this request is already in flight")
	case errors.Is(err, processor.ErrNoPaymentID):
		return pkgerrors.Wrap(pkgerrors.CodePaymentFailed, err, "payment initiation returned no payment id")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("unexpected error: %v", err))
}
