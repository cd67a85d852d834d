package provider

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/everFinance/goether"
	"github.com/everFinance/tns/schema"
)

type Dialer func(ctx context.Context, rawurl string) (Backend, error)

func DialEthClient(ctx context.Context, rawurl string) (Backend, error) {
	return ethclient.DialContext(ctx, rawurl)
}

// Wallet is a local key exposed through the injected-wallet request methods.
type Wallet struct {
	signer   *goether.Signer
	key      *ecdsa.PrivateKey
	store    *Store
	approver Approver
	dial     Dialer

	lock       sync.RWMutex
	active     string // chain id
	authorized bool
	clients    map[string]Backend

	handlerLock sync.RWMutex
	handlers    map[string][]func(data interface{})
}

func NewWallet(prvHex string, store *Store, home schema.ChainMeta, approver Approver) (*Wallet, error) {
	prvHex = strings.TrimPrefix(prvHex, "0x")
	signer, err := goether.NewSigner(prvHex)
	if err != nil {
		return nil, err
	}
	key, err := crypto.HexToECDSA(prvHex)
	if err != nil {
		return nil, err
	}
	if approver == nil {
		approver = Reject
	}
	if err := validateChain(home); err != nil {
		return nil, fmt.Errorf("home chain: %w", err)
	}
	if !store.IsExistChain(home.ChainId) {
		if err := store.SaveChain(home); err != nil {
			return nil, err
		}
	}

	active, err := store.LoadActiveChain()
	if err != nil || !store.IsExistChain(active) {
		active = schema.NormalizeChainId(home.ChainId)
		if err := store.SaveActiveChain(active); err != nil {
			return nil, err
		}
	}
	permission, err := store.LoadPermission()
	if err != nil {
		return nil, err
	}

	w := &Wallet{
		signer:     signer,
		key:        key,
		store:      store,
		approver:   approver,
		dial:       DialEthClient,
		active:     active,
		authorized: strings.EqualFold(permission, signer.Address.String()),
		clients:    make(map[string]Backend),
		handlers:   make(map[string][]func(data interface{})),
	}
	log.Info("wallet loaded", "address", signer.Address.String(), "chainId", active, "authorized", w.authorized)
	return w, nil
}

// SetDialer replaces the rpc dialer, mostly for tests.
func (w *Wallet) SetDialer(dial Dialer) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.dial = dial
	w.clients = make(map[string]Backend)
}

func (w *Wallet) Address() ethcommon.Address {
	return w.signer.Address
}

func (w *Wallet) ChainId() string {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.active
}

func (w *Wallet) Explorer() string {
	meta, err := w.store.LoadChain(w.ChainId())
	if err != nil || len(meta.BlockExplorerUrls) == 0 {
		return ""
	}
	return meta.BlockExplorerUrls[0]
}

func (w *Wallet) Chains() ([]schema.ChainMeta, error) {
	return w.store.LoadChains()
}

func (w *Wallet) On(event string, handler func(data interface{})) {
	w.handlerLock.Lock()
	defer w.handlerLock.Unlock()
	w.handlers[event] = append(w.handlers[event], handler)
}

func (w *Wallet) emit(event string, data interface{}) {
	w.handlerLock.RLock()
	handlers := append([]func(data interface{}){}, w.handlers[event]...)
	w.handlerLock.RUnlock()
	for _, h := range handlers {
		h(data)
	}
}

func (w *Wallet) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	log.Debug("wallet request", "method", method)
	switch method {
	case MethodAccounts:
		return json.Marshal(w.accounts())
	case MethodRequestAccounts:
		return w.requestAccounts(ctx)
	case MethodChainId:
		return json.Marshal(w.ChainId())
	case MethodSwitchChain:
		return w.switchChain(ctx, params)
	case MethodAddChain:
		return w.addChain(ctx, params)
	case MethodPersonalSign:
		return w.personalSign(ctx, params)
	default:
		return nil, NewProviderError(CodeUnsupported, fmt.Sprintf("method %s is not supported", method))
	}
}

func (w *Wallet) accounts() []string {
	w.lock.RLock()
	defer w.lock.RUnlock()
	if !w.authorized {
		return []string{}
	}
	return []string{w.signer.Address.String()}
}

func (w *Wallet) requestAccounts(ctx context.Context) (json.RawMessage, error) {
	if accs := w.accounts(); len(accs) > 0 {
		return json.Marshal(accs)
	}
	if !w.approver(ctx, Approval{Method: MethodRequestAccounts}) {
		return nil, NewProviderError(CodeUserRejected, "User rejected the request.")
	}
	addr := w.signer.Address.String()
	if err := w.store.SavePermission(addr); err != nil {
		return nil, err
	}
	w.lock.Lock()
	w.authorized = true
	w.lock.Unlock()

	accs := []string{addr}
	w.emit(EventAccountsChanged, accs)
	return json.Marshal(accs)
}

func (w *Wallet) switchChain(ctx context.Context, params []interface{}) (json.RawMessage, error) {
	p := schema.SwitchChainParam{}
	if err := decodeParam(params, &p); err != nil {
		return nil, err
	}
	if _, err := schema.ChainIdToBig(p.ChainId); err != nil {
		return nil, NewProviderError(CodeInvalidParams, err.Error())
	}
	chainId := schema.NormalizeChainId(p.ChainId)
	if !w.store.IsExistChain(chainId) {
		return nil, NewProviderError(CodeUnrecognizedChain, fmt.Sprintf("Unrecognized chain ID %q. Try adding the chain using wallet_addEthereumChain first.", p.ChainId))
	}
	if chainId == w.ChainId() {
		return json.RawMessage("null"), nil
	}
	if !w.approver(ctx, Approval{Method: MethodSwitchChain, Params: p}) {
		return nil, NewProviderError(CodeUserRejected, "User rejected the request.")
	}
	if err := w.setActive(chainId); err != nil {
		return nil, err
	}
	return json.RawMessage("null"), nil
}

func (w *Wallet) addChain(ctx context.Context, params []interface{}) (json.RawMessage, error) {
	meta := schema.ChainMeta{}
	if err := decodeParam(params, &meta); err != nil {
		return nil, err
	}
	if err := validateChain(meta); err != nil {
		return nil, NewProviderError(CodeInvalidParams, err.Error())
	}
	if !w.approver(ctx, Approval{Method: MethodAddChain, Params: meta}) {
		return nil, NewProviderError(CodeUserRejected, "User rejected the request.")
	}
	meta.ChainId = schema.NormalizeChainId(meta.ChainId)
	if err := w.store.SaveChain(meta); err != nil {
		return nil, err
	}
	// rpc url may have changed
	w.lock.Lock()
	delete(w.clients, meta.ChainId)
	w.lock.Unlock()

	if meta.ChainId != w.ChainId() {
		if err := w.setActive(meta.ChainId); err != nil {
			return nil, err
		}
	}
	return json.RawMessage("null"), nil
}

func (w *Wallet) personalSign(ctx context.Context, params []interface{}) (json.RawMessage, error) {
	if len(w.accounts()) == 0 {
		return nil, NewProviderError(CodeUnauthorized, "The requested account has not been authorized by the user.")
	}
	if len(params) == 0 {
		return nil, NewProviderError(CodeInvalidParams, "missing message")
	}
	msg, ok := params[0].(string)
	if !ok {
		return nil, NewProviderError(CodeInvalidParams, "message must be a string")
	}
	data := []byte(msg)
	if decoded, err := hexutil.Decode(msg); err == nil {
		data = decoded
	}
	if !w.approver(ctx, Approval{Method: MethodPersonalSign, Params: msg}) {
		return nil, NewProviderError(CodeUserRejected, "User rejected the request.")
	}
	sig, err := w.signer.SignMsg(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(hexutil.Encode(sig))
}

func (w *Wallet) setActive(chainId string) error {
	if err := w.store.SaveActiveChain(chainId); err != nil {
		return err
	}
	w.lock.Lock()
	w.active = chainId
	w.lock.Unlock()
	log.Info("active chain changed", "chainId", chainId)
	w.emit(EventChainChanged, chainId)
	return nil
}

// Backend returns the rpc client of the active chain, dialling it on first use.
func (w *Wallet) Backend(ctx context.Context) (Backend, error) {
	chainId := w.ChainId()
	w.lock.RLock()
	client, ok := w.clients[chainId]
	dial := w.dial
	w.lock.RUnlock()
	if ok {
		return client, nil
	}

	meta, err := w.store.LoadChain(chainId)
	if err != nil {
		return nil, fmt.Errorf("load chain %s: %w", chainId, err)
	}
	client, err = dial(ctx, meta.RpcUrls[0])
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", meta.RpcUrls[0], err)
	}
	w.lock.Lock()
	w.clients[chainId] = client
	w.lock.Unlock()
	return client, nil
}

// TransactOpts signs for the active chain. Every transaction goes through the approver.
func (w *Wallet) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if len(w.accounts()) == 0 {
		return nil, NewProviderError(CodeUnauthorized, "The requested account has not been authorized by the user.")
	}
	chainId, err := schema.ChainIdToBig(w.ChainId())
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyedTransactorWithChainID(w.key, chainId)
	if err != nil {
		return nil, err
	}
	keyedSigner := opts.Signer
	opts.Context = ctx
	opts.Signer = func(addr ethcommon.Address, tx *types.Transaction) (*types.Transaction, error) {
		if !w.approver(ctx, Approval{Method: MethodSendTransaction, Params: txApproval(tx)}) {
			return nil, NewProviderError(CodeUserRejected, "User denied transaction signature.")
		}
		return keyedSigner(addr, tx)
	}
	return opts, nil
}

func (w *Wallet) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	for id, c := range w.clients {
		if closer, ok := c.(interface{ Close() }); ok {
			closer.Close()
		}
		delete(w.clients, id)
	}
	return w.store.Close()
}

func txApproval(tx *types.Transaction) map[string]string {
	p := map[string]string{
		"value": tx.Value().String(),
		"data":  hexutil.Encode(tx.Data()),
	}
	if tx.To() != nil {
		p["to"] = tx.To().String()
	}
	return p
}

// decodeParam re-marshals the first request param into v.
func decodeParam(params []interface{}, v interface{}) error {
	if len(params) == 0 {
		return NewProviderError(CodeInvalidParams, "missing params")
	}
	raw, err := json.Marshal(params[0])
	if err != nil {
		return NewProviderError(CodeInvalidParams, err.Error())
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return NewProviderError(CodeInvalidParams, err.Error())
	}
	return nil
}

func validateChain(meta schema.ChainMeta) error {
	if _, err := schema.ChainIdToBig(meta.ChainId); err != nil {
		return err
	}
	if len(meta.RpcUrls) == 0 {
		return errors.New("rpcUrls is empty")
	}
	for _, u := range meta.RpcUrls {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("invalid rpc url %q", u)
		}
	}
	if meta.NativeCurrency.Decimals != 18 {
		return fmt.Errorf("invalid nativeCurrency decimals %d", meta.NativeCurrency.Decimals)
	}
	return nil
}
