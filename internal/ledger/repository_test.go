package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crossbeg/crossbeg-backend/pkg/money"
)

const (
	testContract  = "0xE455605768F153839Cd269f3cd17E90B56b7B21A"
	testRequester = "0x1111111111111111111111111111111111111111"
	testPayer     = "0x2222222222222222222222222222222222222222"
)

type fakeCaller struct {
	response []byte
	err      error
	calls    int
}

func (f *fakeCaller) Call(ctx context.Context, to string, data []byte) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

type fakeSigner struct {
	address string
	hash    string
	err     error
	calls   int
	lastTo  string
}

func (f *fakeSigner) Address() string { return f.address }

func (f *fakeSigner) SendTransaction(ctx context.Context, to string, data []byte) (string, error) {
	f.calls++
	f.lastTo = to
	if f.err != nil {
		return "", f.err
	}
	return f.hash, nil
}

func newTestRepository(t *testing.T, caller Caller) *Repository {
	t.Helper()
	repo, err := NewRepository(caller, testContract, nil)
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	return repo
}

func TestCreateRequestSubmitsAndReturnsHash(t *testing.T) {
	signer := &fakeSigner{address: testRequester, hash: "0xhash"}
	repo := newTestRepository(t, &fakeCaller{})

	hash, err := repo.CreateRequest(context.Background(), signer, CreateRequestParams{
		Payer:       testPayer,
		Amount:      "10.00",
		Description: "test",
		DueDate:     time.Unix(1700600000, 0),
	})
	if err != nil {
		t.Fatalf("CreateRequest returned error: %v", err)
	}
	if hash != "0xhash" {
		t.Fatalf("unexpected hash %q", hash)
	}
	if signer.calls != 1 {
		t.Fatalf("expected one submission, got %d", signer.calls)
	}
	if signer.lastTo != testContract {
		t.Fatalf("transaction sent to %s, want contract", signer.lastTo)
	}
}

func TestCreateRequestMalformedPayerNeverTouchesSigner(t *testing.T) {
	signer := &fakeSigner{address: testRequester}
	repo := newTestRepository(t, &fakeCaller{})

	_, err := repo.CreateRequest(context.Background(), signer, CreateRequestParams{
		Payer:       "0xZZZ",
		Amount:      "10.00",
		Description: "test",
	})
	if !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if signer.calls != 0 {
		t.Fatalf("signer must not be invoked for invalid input")
	}
}

func TestCreateRequestValidation(t *testing.T) {
	repo := newTestRepository(t, &fakeCaller{})
	signer := &fakeSigner{address: testRequester}

	tests := []struct {
		name   string
		params CreateRequestParams
		signer Signer
		want   error
	}{
		{
			name:   "invalid amount",
			params: CreateRequestParams{Payer: testPayer, Amount: "-1.00", Description: "x"},
			signer: signer,
			want:   money.ErrInvalidAmount,
		},
		{
			name:   "blank description",
			params: CreateRequestParams{Payer: testPayer, Amount: "1.00", Description: "   "},
			signer: signer,
			want:   ErrEmptyDescription,
		},
		{
			name:   "missing signer",
			params: CreateRequestParams{Payer: testPayer, Amount: "1.00", Description: "x"},
			signer: nil,
			want:   ErrWalletUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.CreateRequest(context.Background(), tt.signer, tt.params)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateRequestWrapsSubmissionFailure(t *testing.T) {
	cause := errors.New("user rejected the request")
	signer := &fakeSigner{address: testRequester, err: cause}
	repo := newTestRepository(t, &fakeCaller{})

	_, err := repo.CreateRequest(context.Background(), signer, CreateRequestParams{
		Payer:       testPayer,
		Amount:      "1.00",
		Description: "x",
	})
	var submission *SubmissionError
	if !errors.As(err, &submission) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("SubmissionError must preserve the cause")
	}
}

func TestGetRequestReturnsRecord(t *testing.T) {
	record := PaymentRequest{
		ID:          3,
		Requester:   testRequester,
		Payer:       testPayer,
		Amount:      10_000_000,
		Description: "test",
		CreatedAt:   1700000000,
		Status:      StatusPending,
		Exists:      true,
	}
	caller := &fakeCaller{response: encodeRequestTuple(t, record)}
	repo := newTestRepository(t, caller)

	got, err := repo.GetRequest(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetRequest returned error: %v", err)
	}
	if got != record {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.PaymentReference != "" {
		t.Fatalf("pending request must have empty payment reference")
	}
}

func TestGetRequestNotFoundOnMissingRecord(t *testing.T) {
	// exists == false: the contract returns a zero-valued record.
	record := PaymentRequest{
		Requester: "0x0000000000000000000000000000000000000000",
		Payer:     "0x0000000000000000000000000000000000000000",
		Exists:    false,
	}
	caller := &fakeCaller{response: encodeRequestTuple(t, record)}
	repo := newTestRepository(t, caller)

	if _, err := repo.GetRequest(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRequestsValidatesAddress(t *testing.T) {
	caller := &fakeCaller{}
	repo := newTestRepository(t, caller)

	if _, err := repo.ListRequestsCreatedBy(context.Background(), "nope"); !errors.Is(err, ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
	if caller.calls != 0 {
		t.Fatalf("rpc must not be touched for invalid input")
	}
}

func TestListRequestsReturnsIDsInOrder(t *testing.T) {
	var payload []byte
	payload = append(payload, uintWord(uint64(wordSize))...)
	payload = append(payload, uintWord(2)...)
	payload = append(payload, uintWord(4)...)
	payload = append(payload, uintWord(11)...)
	repo := newTestRepository(t, &fakeCaller{response: payload})

	ids, err := repo.ListRequestsPayableBy(context.Background(), testPayer)
	if err != nil {
		t.Fatalf("ListRequestsPayableBy returned error: %v", err)
	}
	if len(ids) != 2 || ids[0] != 4 || ids[1] != 11 {
		t.Fatalf("unexpected ids %v", ids)
	}
}

func TestNewRepositoryRejectsBadContract(t *testing.T) {
	if _, err := NewRepository(&fakeCaller{}, "0x123", nil); err == nil {
		t.Fatalf("expected error for malformed contract address")
	}
	if _, err := NewRepository(nil, testContract, nil); err == nil {
		t.Fatalf("expected error for nil caller")
	}
}
