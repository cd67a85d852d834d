package tns

import (
	"context"
	"encoding/json"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/everFinance/tns/contract"
	"github.com/everFinance/tns/provider"
	"github.com/everFinance/tns/schema"
)

const (
	testAccount = "0x4002ED1a1410aF1b4930cF6c479ae373dEbD6223"
	testOwner   = "0xa06b79E655Db7D7C3B3E7B2ccEEb068c3396d5b0"
)

// fakeProvider is an in-memory injected wallet.
type fakeProvider struct {
	lock       sync.Mutex
	accounts   []string // returned once connected
	connected  bool
	chainId    string
	known      map[string]bool
	rejectConn bool
	calls      []string
	handlers   map[string][]func(interface{})
}

func newFakeProvider(chainId string) *fakeProvider {
	return &fakeProvider{
		accounts: []string{testAccount},
		chainId:  chainId,
		known:    map[string]bool{"0x1": true, chainId: true},
		handlers: map[string][]func(interface{}){},
	}
}

func (p *fakeProvider) Request(ctx context.Context, method string, params ...interface{}) (json.RawMessage, error) {
	p.lock.Lock()
	p.calls = append(p.calls, method)
	switch method {
	case provider.MethodAccounts:
		defer p.lock.Unlock()
		if !p.connected {
			return json.RawMessage(`[]`), nil
		}
		return json.Marshal(p.accounts)
	case provider.MethodRequestAccounts:
		defer p.lock.Unlock()
		if p.rejectConn {
			return nil, provider.NewProviderError(provider.CodeUserRejected, "User rejected the request.")
		}
		p.connected = true
		return json.Marshal(p.accounts)
	case provider.MethodChainId:
		defer p.lock.Unlock()
		return json.Marshal(p.chainId)
	case provider.MethodSwitchChain:
		id := params[0].(schema.SwitchChainParam).ChainId
		if !p.known[id] {
			p.lock.Unlock()
			return nil, provider.NewProviderError(provider.CodeUnrecognizedChain, "Unrecognized chain ID")
		}
		p.chainId = id
		p.lock.Unlock()
		p.emit(provider.EventChainChanged, id)
		return json.RawMessage(`null`), nil
	case provider.MethodAddChain:
		meta := params[0].(schema.ChainMeta)
		p.known[meta.ChainId] = true
		p.chainId = meta.ChainId
		p.lock.Unlock()
		p.emit(provider.EventChainChanged, meta.ChainId)
		return json.RawMessage(`null`), nil
	}
	p.lock.Unlock()
	return nil, provider.NewProviderError(provider.CodeUnsupported, method)
}

func (p *fakeProvider) On(event string, handler func(interface{})) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.handlers[event] = append(p.handlers[event], handler)
}

func (p *fakeProvider) emit(event string, data interface{}) {
	p.lock.Lock()
	hs := append([]func(interface{}){}, p.handlers[event]...)
	p.lock.Unlock()
	for _, h := range hs {
		h(data)
	}
}

func (p *fakeProvider) Calls() []string {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]string{}, p.calls...)
}

// fakeSigner hands out options that are never used to sign.
type fakeSigner struct {
	from     ethcommon.Address
	err      error
	explorer string
}

func (s *fakeSigner) Explorer() string { return s.explorer }

func (s *fakeSigner) Address() ethcommon.Address { return s.from }

func (s *fakeSigner) Backend(ctx context.Context) (provider.Backend, error) { return nil, nil }

func (s *fakeSigner) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &bind.TransactOpts{From: s.from, Context: ctx}, nil
}

type sentTx struct {
	Method string
	Args   []string
	Value  *big.Int
}

// fakeRegistry is a contract that mines every tx in block 100 with the
// configured status.
type fakeRegistry struct {
	lock    sync.Mutex
	names   []string
	records map[string]string
	owners  map[string]ethcommon.Address
	status  map[string]uint64 // method -> receipt status, default success
	sendErr error
	callErr error
	head    uint64
	sent    []sentTx
	nonce   uint64
	last    string
	mined   chan struct{} // when set, WaitMined blocks until it is closed
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		records: map[string]string{},
		owners:  map[string]ethcommon.Address{},
		status:  map[string]uint64{},
		head:    100,
	}
}

func (r *fakeRegistry) send(method string, value *big.Int, args ...string) (*types.Transaction, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.sendErr != nil {
		return nil, r.sendErr
	}
	if value == nil {
		value = big.NewInt(0)
	}
	r.sent = append(r.sent, sentTx{Method: method, Args: args, Value: value})
	r.nonce++
	to := ethcommon.HexToAddress(testOwner)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID: big.NewInt(0x13881),
		Nonce:   r.nonce,
		To:      &to,
		Value:   value,
		Data:    []byte(method),
	})
	r.last = tx.Hash().Hex()
	return tx, nil
}

func (r *fakeRegistry) LastHash() string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.last
}

func (r *fakeRegistry) CreateDomain(opts *bind.TransactOpts, name string) (*types.Transaction, error) {
	tx, err := r.send("createDomain", opts.Value, name)
	if err == nil && r.statusOf("createDomain") == types.ReceiptStatusSuccessful {
		r.lock.Lock()
		r.names = append(r.names, name)
		r.owners[name] = opts.From
		r.lock.Unlock()
	}
	return tx, err
}

func (r *fakeRegistry) SetRecord(opts *bind.TransactOpts, name, record string) (*types.Transaction, error) {
	tx, err := r.send("setRecord", opts.Value, name, record)
	if err == nil && r.statusOf("setRecord") == types.ReceiptStatusSuccessful {
		r.lock.Lock()
		r.records[name] = record
		r.lock.Unlock()
	}
	return tx, err
}

func (r *fakeRegistry) Withdraw(opts *bind.TransactOpts) (*types.Transaction, error) {
	return r.send("withdraw", opts.Value)
}

func (r *fakeRegistry) GetAllNames(opts *bind.CallOpts) ([]string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.callErr != nil {
		return nil, r.callErr
	}
	return append([]string{}, r.names...), nil
}

func (r *fakeRegistry) Records(opts *bind.CallOpts, name string) (string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.records[name], nil
}

func (r *fakeRegistry) Domains(opts *bind.CallOpts, name string) (ethcommon.Address, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.callErr != nil {
		return ethcommon.Address{}, r.callErr
	}
	return r.owners[name], nil
}

func (r *fakeRegistry) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if r.mined != nil {
		select {
		case <-r.mined:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return &types.Receipt{
		Status:      r.statusOf(string(tx.Data())),
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(100),
	}, nil
}

func (r *fakeRegistry) BlockNumber(ctx context.Context) (uint64, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.head, nil
}

func (r *fakeRegistry) statusOf(method string) uint64 {
	r.lock.Lock()
	defer r.lock.Unlock()
	if s, ok := r.status[method]; ok {
		return s
	}
	return types.ReceiptStatusSuccessful
}

func (r *fakeRegistry) Sent() []sentTx {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]sentTx{}, r.sent...)
}

type recorded struct {
	Kind   string
	Status string
}

type fakeRecorder struct {
	lock sync.Mutex
	recs []recorded
	ids  []string
}

func (f *fakeRecorder) Submitted(ctx context.Context, rec schema.TxRecord) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.recs = append(f.recs, recorded{Kind: rec.Kind, Status: rec.Status})
	f.ids = append(f.ids, rec.ActionId)
}

func (f *fakeRecorder) Mined(ctx context.Context, rec schema.TxRecord, receipt *types.Receipt) {
	f.lock.Lock()
	defer f.lock.Unlock()
	status := schema.TxFailed
	if receipt.Status == types.ReceiptStatusSuccessful {
		status = schema.TxSuccess
	}
	f.recs = append(f.recs, recorded{Kind: rec.Kind, Status: status})
}

func newTestClient(reg *fakeRegistry, rec TxRecorder) *ContractClient {
	c := &ContractClient{
		signer:   &fakeSigner{from: ethcommon.HexToAddress(testAccount)},
		recorder: rec,
	}
	c.open = func(ctx context.Context) (contract.Registry, error) { return reg, nil }
	return c
}
