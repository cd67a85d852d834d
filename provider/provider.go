package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/everFinance/tns/common"
	"github.com/everFinance/tns/contract"
)

var log = common.NewLog("provider")

const (
	EventChainChanged    = "chainChanged"
	EventAccountsChanged = "accountsChanged"

	MethodAccounts        = "eth_accounts"
	MethodRequestAccounts = "eth_requestAccounts"
	MethodChainId         = "eth_chainId"
	MethodSwitchChain     = "wallet_switchEthereumChain"
	MethodAddChain        = "wallet_addEthereumChain"
	MethodPersonalSign    = "personal_sign"
	MethodSendTransaction = "eth_sendTransaction"
)

// EIP-1193 provider error codes
const (
	CodeUserRejected      = 4001
	CodeUnauthorized      = 4100
	CodeUnsupported       = 4200
	CodeUnrecognizedChain = 4902
	CodeInvalidParams     = -32602
)

// Provider is the request surface of an injected wallet.
type Provider interface {
	Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error)
	On(event string, handler func(data interface{}))
}

type ProviderError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewProviderError(code int, msg string) *ProviderError {
	return &ProviderError{Code: code, Message: msg}
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}

func (e *ProviderError) ErrorCode() int {
	return e.Code
}

// Backend is a chain client for the wallet's active chain.
type Backend interface {
	contract.Backend
	BalanceAt(ctx context.Context, account ethcommon.Address, blockNumber *big.Int) (*big.Int, error)
}

// Signer is what a contract handle needs from the wallet: the account, the
// active chain and a way to sign transactions for it.
type Signer interface {
	Address() ethcommon.Address
	Backend(ctx context.Context) (Backend, error)
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
	// Explorer is the block explorer of the active chain, "" when it has none.
	Explorer() string
}

// Approval is shown to the wallet owner before an account, chain or
// transaction request is granted.
type Approval struct {
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

type Approver func(ctx context.Context, req Approval) bool

func AutoApprove(ctx context.Context, req Approval) bool {
	return true
}

func Reject(ctx context.Context, req Approval) bool {
	return false
}
