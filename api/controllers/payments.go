package controllers

import (
	"context"
	"net/http"

	"github.com/crossbeg/crossbeg-backend/api/responses"
	"github.com/crossbeg/crossbeg-backend/api/validators"
	"github.com/crossbeg/crossbeg-backend/internal/lifecycle"
	"github.com/crossbeg/crossbeg-backend/internal/processor"
	"github.com/crossbeg/crossbeg-backend/pkg/logger"
	"github.com/crossbeg/crossbeg-backend/pkg/money"
)

type payer interface {
	PayPending(ctx context.Context, requestID uint64) (lifecycle.PayResult, error)
}

type recipientResolver interface {
	ResolveRecipient(params processor.SubmitParams) string
}

type attemptView struct {
	PaymentID       string `json:"payment_id"`
	Status          string `json:"status"`
	TransactionHash string `json:"transaction_hash,omitempty"`
}

func newAttemptView(a processor.Attempt) attemptView {
	return attemptView{
		PaymentID:       a.PaymentID,
		Status:          a.Status.String(),
		TransactionHash: a.TransactionHash,
	}
}

// PayRequest drives a full pay cycle for one pending request and returns the
// terminal attempt together with the re-observed ledger record.
func PayRequest(svc payer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := requestIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PayPending(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapDomainError(err))
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"attempt": newAttemptView(result.Attempt),
			"request": newRequestView(result.Request),
		})
	}
}

type goodsQuoteBody struct {
	Amount    string `json:"amount" validate:"required"`
	Recipient string `json:"recipient" validate:"required,eth_addr_hex"`
	IsGoods   bool   `json:"is_goods"`
}

// GoodsQuote previews how a payment would be routed: goods payments always
// resolve to the processor address, everything else to the nominal recipient.
func GoodsQuote(engine recipientResolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body goodsQuoteBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		units, err := money.Encode(body.Amount)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapDomainError(err))
			return
		}

		recipient := engine.ResolveRecipient(processor.SubmitParams{
			Recipient: body.Recipient,
			IsGoods:   body.IsGoods,
		})
		responses.WriteSuccess(w, map[string]any{
			"recipient": recipient,
			"amount":    money.Decode(units),
			"is_goods":  body.IsGoods,
		})
	}
}
