package ledger

import (
	"context"
	"fmt"
)

// transactionSender is satisfied by the ethrpc client.
type transactionSender interface {
	SendTransaction(ctx context.Context, from, to string, data []byte) (string, error)
}

// RPCSigner signs through the wallet RPC that holds the key for the account.
type RPCSigner struct {
	sender  transactionSender
	address string
}

func NewRPCSigner(sender transactionSender, address string) (*RPCSigner, error) {
	if sender == nil {
		return nil, ErrWalletUnavailable
	}
	if !ValidAddress(address) {
		return nil, fmt.Errorf("signer %q: %w", address, ErrInvalidAddress)
	}
	return &RPCSigner{sender: sender, address: address}, nil
}

func (s *RPCSigner) Address() string {
	return s.address
}

func (s *RPCSigner) SendTransaction(ctx context.Context, to string, data []byte) (string, error) {
	return s.sender.SendTransaction(ctx, s.address, to, data)
}
