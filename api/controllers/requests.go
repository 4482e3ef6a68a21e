package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/crossbeg/crossbeg-backend/api/responses"
	"github.com/crossbeg/crossbeg-backend/api/validators"
	"github.com/crossbeg/crossbeg-backend/internal/ledger"
	"github.com/crossbeg/crossbeg-backend/internal/lifecycle"
	pkgerrors "github.com/crossbeg/crossbeg-backend/pkg/errors"
	"github.com/crossbeg/crossbeg-backend/pkg/logger"
	"github.com/crossbeg/crossbeg-backend/pkg/money"
)

type requestRepository interface {
	CreateRequest(ctx context.Context, signer ledger.Signer, params ledger.CreateRequestParams) (string, error)
	GetRequest(ctx context.Context, id uint64) (ledger.PaymentRequest, error)
}

type refresher interface {
	Refresh(ctx context.Context, address string) (lifecycle.Snapshot, error)
}

// SignerFactory builds a signing context for the given wallet address.
type SignerFactory func(address string) (ledger.Signer, error)

type requestView struct {
	ID               uint64 `json:"id"`
	Requester        string `json:"requester"`
	Payer            string `json:"payer"`
	Amount           int64  `json:"amount"`
	AmountDecimal    string `json:"amount_decimal"`
	Description      string `json:"description"`
	CreatedAt        int64  `json:"created_at"`
	DueDate          int64  `json:"due_date,omitempty"`
	Status           string `json:"status"`
	PaymentReference string `json:"payment_reference,omitempty"`
}

func newRequestView(r ledger.PaymentRequest) requestView {
	return requestView{
		ID:               r.ID,
		Requester:        r.Requester,
		Payer:            r.Payer,
		Amount:           r.Amount,
		AmountDecimal:    money.Decode(r.Amount),
		Description:      r.Description,
		CreatedAt:        r.CreatedAt,
		DueDate:          r.DueDate,
		Status:           r.Status.String(),
		PaymentReference: r.PaymentReference,
	}
}

func newRequestViews(records []ledger.PaymentRequest) []requestView {
	views := make([]requestView, 0, len(records))
	for _, record := range records {
		views = append(views, newRequestView(record))
	}
	return views
}

type createRequestBody struct {
	From        string     `json:"from" validate:"required,eth_addr_hex"`
	Payer       string     `json:"payer" validate:"required"`
	Amount      string     `json:"amount" validate:"required"`
	Description string     `json:"description" validate:"required,max=500"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// CreateRequest submits a createRequest transaction on behalf of the caller's
// wallet address and returns the submission hash without waiting for
// confirmation.
func CreateRequest(repo requestRepository, signerFor SignerFactory, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		signer, err := signerFor(body.From)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapDomainError(err))
			return
		}

		params := ledger.CreateRequestParams{
			Payer:       body.Payer,
			Amount:      body.Amount,
			Description: body.Description,
		}
		if body.DueDate != nil {
			params.DueDate = *body.DueDate
		}

		hash, err := repo.CreateRequest(r.Context(), signer, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapDomainError(err))
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"transaction_hash": hash,
		})
	}
}

// GetRequest fetches one ledger record by id.
func GetRequest(repo requestRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := requestIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		record, err := repo.GetRequest(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapDomainError(err))
			return
		}
		responses.WriteSuccess(w, newRequestView(record))
	}
}

// ListUserRequests returns the refreshed ledger view for one address. Records
// that failed to resolve are reported alongside the ones that did.
func ListUserRequests(svc refresher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		address := chi.URLParam(r, "address")
		if !ledger.ValidAddress(address) {
			err := pkgerrors.New(pkgerrors.CodeValidation, "invalid address")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := r.URL.Query().Get("role")
		switch role {
		case "", "all", "sent", "received":
		default:
			err := pkgerrors.New(pkgerrors.CodeValidation, "role must be one of sent, received, all")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Refresh(r.Context(), address)
		var failedIDs []uint64
		if err != nil {
			var partial *lifecycle.PartialLoadError
			if !errors.As(err, &partial) {
				responses.WriteError(r.Context(), logg, w, mapDomainError(err))
				return
			}
			failedIDs = partial.FailedIDs
		}

		payload := map[string]any{}
		if role == "" || role == "all" || role == "sent" {
			payload["sent"] = newRequestViews(snapshot.Sent)
		}
		if role == "" || role == "all" || role == "received" {
			payload["received"] = newRequestViews(snapshot.Received)
		}
		if len(failedIDs) > 0 {
			payload["failed_ids"] = failedIDs
		}
		responses.WriteSuccess(w, payload)
	}
}

func requestIDParam(r *http.Request) (uint64, error) {
	raw := chi.URLParam(r, "requestId")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "request id must be a positive integer")
	}
	return id, nil
}
