package tns

import (
	"errors"
)

var (
	ErrNoReceipt     = errors.New("receipt_not_found")
	ErrInvalidLimit  = errors.New("invalid_limit")
	ErrInvalidTxKind = errors.New("invalid_tx_kind")
)

// alert messages shown to the user
const (
	AlertNoWalletConnect = "Get metamask"
	AlertNoWalletSwitch  = "Get Metamask"
	AlertDomainTooShort  = "Domain name must be at least 3 letters long"
	AlertTxFailed        = "Transaction failed! Please try again"
)
