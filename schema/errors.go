package schema

import (
	"errors"
)

var (
	ErrNotExist        = errors.New("not_exist_record")
	ErrNoWallet        = errors.New("no_wallet_provider")
	ErrNoAccount       = errors.New("no_authorized_account")
	ErrEmptyDomain     = errors.New("empty_domain")
	ErrEmptyRecord     = errors.New("empty_record")
	ErrDomainTooShort  = errors.New("domain_too_short")
	ErrInvalidChainId  = errors.New("invalid_chain_id")
	ErrInvalidArtifact = errors.New("invalid_abi_artifact")
	ErrTxFailed        = errors.New("tx_status_failed")
)
