package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/crossbeg/crossbeg-backend/pkg/logger"
	"github.com/crossbeg/crossbeg-backend/pkg/money"
)

var (
	// ErrWalletUnavailable flags a write attempted without a signing context.
	ErrWalletUnavailable = errors.New("wallet is not connected")
	// ErrInvalidAddress flags a malformed payer or user address.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrNotFound flags a request id the contract has never assigned.
	ErrNotFound = errors.New("payment request not found")
	// ErrEmptyDescription flags a request with no description after trimming.
	ErrEmptyDescription = errors.New("description must not be empty")
)

// SubmissionError wraps a rejected transaction submission, including user
// cancellation in the wallet.
type SubmissionError struct {
	cause error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("transaction submission failed: %v", e.cause)
}

func (e *SubmissionError) Unwrap() error {
	return e.cause
}

// Caller is the read surface of the chain RPC client.
type Caller interface {
	Call(ctx context.Context, to string, data []byte) ([]byte, error)
}

// Signer is the narrow signing capability threaded through write calls. It
// replaces the ambient wallet context of the browser client: no global state,
// and tests can pass a fake.
type Signer interface {
	Address() string
	SendTransaction(ctx context.Context, to string, data []byte) (txHash string, err error)
}

// Repository reads and writes payment requests against the ledger contract.
// The contract is the single source of truth; nothing is cached.
type Repository struct {
	caller   Caller
	contract string
	logg     *logger.Logger
}

func NewRepository(caller Caller, contractAddress string, logg *logger.Logger) (*Repository, error) {
	if caller == nil {
		return nil, errors.New("rpc caller is required")
	}
	if !ValidAddress(contractAddress) {
		return nil, fmt.Errorf("contract address %q: %w", contractAddress, ErrInvalidAddress)
	}
	return &Repository{caller: caller, contract: contractAddress, logg: logg}, nil
}

// CreateRequestParams carries the caller-supplied fields of a new request.
type CreateRequestParams struct {
	Payer       string
	Amount      string // decimal USD
	Description string
	DueDate     time.Time // zero value means no due date
}

// CreateRequest validates inputs, then submits the createRequest transaction.
// It returns the submission hash as soon as the transaction is accepted; it
// does not wait for confirmation. Validation failures never reach the RPC.
func (r *Repository) CreateRequest(ctx context.Context, signer Signer, params CreateRequestParams) (string, error) {
	if !ValidAddress(params.Payer) {
		return "", fmt.Errorf("payer %q: %w", params.Payer, ErrInvalidAddress)
	}
	amount, err := money.Encode(params.Amount)
	if err != nil {
		return "", err
	}
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return "", ErrEmptyDescription
	}
	if signer == nil {
		return "", ErrWalletUnavailable
	}

	var dueDate int64
	if !params.DueDate.IsZero() {
		dueDate = params.DueDate.Unix()
	}

	data, err := encodeCreateRequest(params.Payer, amount, description, dueDate)
	if err != nil {
		return "", fmt.Errorf("payer %q: %w", params.Payer, ErrInvalidAddress)
	}

	if r.logg != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{
			"payer":  params.Payer,
			"amount": amount,
		})
		r.logg.Info(ctx, "ledger.create_request.submit")
	}

	hash, err := signer.SendTransaction(ctx, r.contract, data)
	if err != nil {
		return "", &SubmissionError{cause: err}
	}
	return hash, nil
}

// GetRequest fetches one record by id. A record whose exists flag is unset is
// reported as ErrNotFound, never as a zero-valued request.
func (r *Repository) GetRequest(ctx context.Context, id uint64) (PaymentRequest, error) {
	raw, err := r.caller.Call(ctx, r.contract, encodeGetRequest(id))
	if err != nil {
		return PaymentRequest{}, fmt.Errorf("reading request %d: %w", id, err)
	}
	request, err := decodeRequestTuple(raw)
	if err != nil {
		return PaymentRequest{}, fmt.Errorf("decoding request %d: %w", id, err)
	}
	if !request.Exists {
		return PaymentRequest{}, fmt.Errorf("request %d: %w", id, ErrNotFound)
	}
	return request, nil
}

// ListRequestsCreatedBy returns ids of requests the address created, in
// ledger insertion order.
func (r *Repository) ListRequestsCreatedBy(ctx context.Context, address string) ([]uint64, error) {
	return r.listIDs(ctx, address, encodeGetUserRequests)
}

// ListRequestsPayableBy returns ids of requests addressed to the address as
// payer, in ledger insertion order.
func (r *Repository) ListRequestsPayableBy(ctx context.Context, address string) ([]uint64, error) {
	return r.listIDs(ctx, address, encodeGetUserPayments)
}

func (r *Repository) listIDs(ctx context.Context, address string, encode func(string) ([]byte, error)) ([]uint64, error) {
	if !ValidAddress(address) {
		return nil, fmt.Errorf("user %q: %w", address, ErrInvalidAddress)
	}
	data, err := encode(address)
	if err != nil {
		return nil, fmt.Errorf("user %q: %w", address, ErrInvalidAddress)
	}
	raw, err := r.caller.Call(ctx, r.contract, data)
	if err != nil {
		return nil, fmt.Errorf("listing requests for %s: %w", address, err)
	}
	return decodeUintSlice(raw)
}
