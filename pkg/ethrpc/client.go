package ethrpc

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"

	"github.com/crossbeg/crossbeg-backend/pkg/config"
	"github.com/crossbeg/crossbeg-backend/pkg/logger"
	"github.com/crossbeg/crossbeg-backend/pkg/metrics"
)

const jsonrpcVersion = "2.0"

// Client is a minimal JSON-RPC 2.0 client for the ledger chain endpoint.
// Reads go through eth_call with bounded retries; writes are submitted via
// eth_sendTransaction and signed by the wallet RPC that owns the account.
type Client struct {
	http        *resty.Client
	chainID     uint64
	readRetries uint64
	logg        *logger.Logger
	metrics     *metrics.PaymentMetrics
	nextID      atomic.Uint64
}

func New(cfg config.LedgerConfig, logg *logger.Logger, m *metrics.PaymentMetrics) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.RPCURL).
		SetTimeout(cfg.ReadTimeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:        httpClient,
		chainID:     cfg.ChainID,
		readRetries: cfg.ReadRetries,
		logg:        logg,
		metrics:     m,
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// RPCError is a JSON-RPC execution error returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type callParams struct {
	From string `json:"from,omitempty"`
	To   string `json:"to"`
	Data string `json:"data"`
}

// Call performs a read-only eth_call against the given contract.
// Transport failures are retried with exponential backoff; node execution
// errors are returned as-is.
func (c *Client) Call(ctx context.Context, to string, data []byte) ([]byte, error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveRPC("eth_call", time.Since(started))
	}()

	var result string
	backoff := retry.WithMaxRetries(c.readRetries, retry.NewExponential(250*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.invoke(ctx, "eth_call", []any{callParams{To: to, Data: EncodeBytes(data)}, "latest"}, &result)
		if err == nil {
			return nil
		}
		if _, isExec := err.(*RPCError); isExec {
			return err
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		return nil, err
	}
	return DecodeHex(result)
}

// SendTransaction submits a state-changing call. The node holding the key for
// `from` signs it; the returned hash is an acceptance handle, not a
// confirmation.
func (c *Client) SendTransaction(ctx context.Context, from, to string, data []byte) (string, error) {
	started := time.Now()
	defer func() {
		c.metrics.ObserveRPC("eth_sendTransaction", time.Since(started))
	}()

	var hash string
	err := c.invoke(ctx, "eth_sendTransaction", []any{callParams{From: from, To: to, Data: EncodeBytes(data)}}, &hash)
	if err != nil {
		return "", err
	}
	return hash, nil
}

// ChainID fetches the chain id reported by the endpoint.
func (c *Client) ChainID(ctx context.Context) (uint64, error) {
	var result string
	if err := c.invoke(ctx, "eth_chainId", []any{}, &result); err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimPrefix(result, "0x"), 16, 64)
}

// Ping verifies connectivity and that the endpoint serves the configured chain.
func (c *Client) Ping(ctx context.Context) error {
	id, err := c.ChainID(ctx)
	if err != nil {
		return err
	}
	if id != c.chainID {
		return fmt.Errorf("rpc endpoint serves chain %d, expected %d", id, c.chainID)
	}
	return nil
}

func (c *Client) invoke(ctx context.Context, method string, params []any, result any) error {
	req := rpcRequest{
		JSONRPC: jsonrpcVersion,
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	}

	var parsed rpcResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&parsed).
		Post("")
	if err != nil {
		return fmt.Errorf("rpc %s: %w", method, err)
	}
	if resp.IsError() {
		return fmt.Errorf("rpc %s: unexpected status %d", method, resp.StatusCode())
	}
	if parsed.Error != nil {
		return parsed.Error
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(parsed.Result, result); err != nil {
		return fmt.Errorf("rpc %s: decoding result: %w", method, err)
	}
	return nil
}

// EncodeBytes hex-encodes calldata with the 0x prefix.
func EncodeBytes(data []byte) string {
	return "0x" + hex.EncodeToString(data)
}

// DecodeHex parses a 0x-prefixed hex string.
func DecodeHex(value string) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(value), "0x")
	if len(trimmed)%2 == 1 {
		trimmed = "0" + trimmed
	}
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	return decoded, nil
}
