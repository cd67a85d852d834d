package tns

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/everFinance/tns/contract"
	"github.com/everFinance/tns/provider"
	"github.com/everFinance/tns/schema"
	"github.com/panjf2000/ants/v2"
	"github.com/shopspring/decimal"
)

const fetchPoolSize = 20

var (
	priceTier3 = decimal.New(5, -1)
	priceTier4 = decimal.New(3, -1)
	priceTier5 = decimal.New(1, -1)
)

// DomainPrice is the mint price in native units, by length in characters.
func DomainPrice(name string) (decimal.Decimal, error) {
	switch n := domainLength(name); {
	case n < schema.MinDomainLength:
		return decimal.Zero, schema.ErrDomainTooShort
	case n == 3:
		return priceTier3, nil
	case n == 4:
		return priceTier4, nil
	default:
		return priceTier5, nil
	}
}

// PriceWei converts native units to wei.
func PriceWei(price decimal.Decimal) *big.Int {
	return price.Shift(18).BigInt()
}

type MintResult struct {
	Confirmed   bool   `json:"confirmed"`
	CreateHash  string `json:"createHash"`
	RecordHash  string `json:"recordHash,omitempty"`
	BlockNumber uint64 `json:"blockNumber"` // block of the last mined tx
}

// NameService is the contract client the controller drives.
type NameService interface {
	Mint(ctx context.Context, domain, record string) (MintResult, error)
	SetRecord(ctx context.Context, domain, record string) (string, error)
	FetchAll(ctx context.Context) ([]schema.MintRecord, error)
	Withdraw(ctx context.Context) (string, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

// TxRecorder is told about every transaction the client sends.
type TxRecorder interface {
	Submitted(ctx context.Context, rec schema.TxRecord)
	Mined(ctx context.Context, rec schema.TxRecord, receipt *types.Receipt)
}

type ContractClient struct {
	address  ethcommon.Address
	abi      abi.ABI
	signer   provider.Signer
	recorder TxRecorder

	// binds the contract to the signer's active chain
	open func(ctx context.Context) (contract.Registry, error)

	trackLock sync.Mutex
	tracking  map[string]struct{} // hashes waiting in WaitMined
}

func NewContractClient(address string, parsed abi.ABI, signer provider.Signer, recorder TxRecorder) *ContractClient {
	c := &ContractClient{
		address:  ethcommon.HexToAddress(address),
		abi:      parsed,
		signer:   signer,
		recorder: recorder,
	}
	c.open = c.bind
	return c
}

func (c *ContractClient) bind(ctx context.Context) (contract.Registry, error) {
	backend, err := c.signer.Backend(ctx)
	if err != nil {
		return nil, err
	}
	return contract.NewDomains(c.address, c.abi, backend), nil
}

func (c *ContractClient) Mint(ctx context.Context, domain, record string) (res MintResult, err error) {
	if domain == "" {
		return res, schema.ErrEmptyDomain
	}
	price, err := DomainPrice(domain)
	if err != nil {
		return
	}
	reg, err := c.open(ctx)
	if err != nil {
		return
	}
	opts, err := c.signer.TransactOpts(ctx)
	if err != nil {
		return
	}

	log.Info("Minting domain", "domain", domain, "price", price.String())
	opts.Value = PriceWei(price)
	tx, err := reg.CreateDomain(opts, domain)
	if err != nil {
		return res, fmt.Errorf("createDomain: %w", err)
	}
	res.CreateHash = tx.Hash().Hex()
	receipt, err := c.track(ctx, reg, tx, newTxRecord(ctx, schema.TxKindCreateDomain, tx, opts.From, domain, map[string]string{"name": domain}))
	if err != nil {
		return
	}
	res.BlockNumber = receipt.BlockNumber.Uint64()
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Warn("createDomain failed", "hash", res.CreateHash)
		return res, nil
	}
	log.Info("Domain minted!", "url", c.txUrl(res.CreateHash))

	opts.Value = nil
	tx, err = reg.SetRecord(opts, domain, record)
	if err != nil {
		return res, fmt.Errorf("setRecord: %w", err)
	}
	res.RecordHash = tx.Hash().Hex()
	receipt, err = c.track(ctx, reg, tx, newTxRecord(ctx, schema.TxKindSetRecord, tx, opts.From, domain, map[string]string{"name": domain, "record": record}))
	if err != nil {
		return
	}
	res.BlockNumber = receipt.BlockNumber.Uint64()
	if receipt.Status != types.ReceiptStatusSuccessful {
		return res, fmt.Errorf("setRecord %s: %w", res.RecordHash, schema.ErrTxFailed)
	}
	log.Info("Record set!", "url", c.txUrl(res.RecordHash))
	res.Confirmed = true
	return
}

func (c *ContractClient) SetRecord(ctx context.Context, domain, record string) (string, error) {
	if domain == "" {
		return "", schema.ErrEmptyDomain
	}
	if record == "" {
		return "", schema.ErrEmptyRecord
	}
	reg, err := c.open(ctx)
	if err != nil {
		return "", err
	}
	opts, err := c.signer.TransactOpts(ctx)
	if err != nil {
		return "", err
	}
	tx, err := reg.SetRecord(opts, domain, record)
	if err != nil {
		return "", fmt.Errorf("setRecord: %w", err)
	}
	receipt, err := c.track(ctx, reg, tx, newTxRecord(ctx, schema.TxKindSetRecord, tx, opts.From, domain, map[string]string{"name": domain, "record": record}))
	if err != nil {
		return "", err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash().Hex(), fmt.Errorf("setRecord %s: %w", tx.Hash().Hex(), schema.ErrTxFailed)
	}
	log.Info("Record set", "url", c.txUrl(tx.Hash().Hex()))
	return tx.Hash().Hex(), nil
}

func (c *ContractClient) Withdraw(ctx context.Context) (string, error) {
	reg, err := c.open(ctx)
	if err != nil {
		return "", err
	}
	opts, err := c.signer.TransactOpts(ctx)
	if err != nil {
		return "", err
	}
	tx, err := reg.Withdraw(opts)
	if err != nil {
		return "", fmt.Errorf("withdraw: %w", err)
	}
	receipt, err := c.track(ctx, reg, tx, newTxRecord(ctx, schema.TxKindWithdraw, tx, opts.From, "", nil))
	if err != nil {
		return "", err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return tx.Hash().Hex(), fmt.Errorf("withdraw %s: %w", tx.Hash().Hex(), schema.ErrTxFailed)
	}
	log.Info("Withdrawn", "url", c.txUrl(tx.Hash().Hex()))
	return tx.Hash().Hex(), nil
}

// FetchAll reads every minted name with its record and owner. The per-name
// lookups run concurrently; any failed lookup fails the whole fetch.
func (c *ContractClient) FetchAll(ctx context.Context) ([]schema.MintRecord, error) {
	reg, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	names, err := reg.GetAllNames(&bind.CallOpts{Context: ctx})
	if err != nil {
		return nil, fmt.Errorf("getAllNames: %w", err)
	}

	mints := make([]schema.MintRecord, len(names))
	var (
		wg       sync.WaitGroup
		errLock  sync.Mutex
		fetchErr error
	)
	setErr := func(err error) {
		errLock.Lock()
		if fetchErr == nil {
			fetchErr = err
		}
		errLock.Unlock()
	}
	p, err := ants.NewPoolWithFunc(fetchPoolSize, func(i interface{}) {
		defer wg.Done()
		idx := i.(int)
		name := names[idx]
		callOpts := &bind.CallOpts{Context: ctx}
		record, err := reg.Records(callOpts, name)
		if err != nil {
			setErr(fmt.Errorf("records(%s): %w", name, err))
			return
		}
		owner, err := reg.Domains(callOpts, name)
		if err != nil {
			setErr(fmt.Errorf("domains(%s): %w", name, err))
			return
		}
		mints[idx] = schema.MintRecord{Id: idx, Name: name, Record: record, Owner: owner.Hex()}
	})
	if err != nil {
		return nil, err
	}
	defer p.Release()
	for i := range names {
		wg.Add(1)
		if err := p.Invoke(i); err != nil {
			wg.Done()
			setErr(err)
		}
	}
	wg.Wait()
	if fetchErr != nil {
		return nil, fetchErr
	}
	metricMints(len(mints))
	return mints, nil
}

func (c *ContractClient) BlockNumber(ctx context.Context) (uint64, error) {
	reg, err := c.open(ctx)
	if err != nil {
		return 0, err
	}
	return reg.BlockNumber(ctx)
}

// track records the submitted tx and blocks until it is mined.
func (c *ContractClient) track(ctx context.Context, reg contract.Registry, tx *types.Transaction, rec schema.TxRecord) (*types.Receipt, error) {
	c.setTracking(rec.Hash, true)
	defer c.setTracking(rec.Hash, false)
	if c.recorder != nil {
		c.recorder.Submitted(ctx, rec)
	}
	receipt, err := reg.WaitMined(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("wait %s mined: %w", rec.Kind, err)
	}
	if c.recorder != nil {
		c.recorder.Mined(ctx, rec, receipt)
	}
	return receipt, nil
}

func (c *ContractClient) setTracking(hash string, on bool) {
	c.trackLock.Lock()
	defer c.trackLock.Unlock()
	if c.tracking == nil {
		c.tracking = make(map[string]struct{})
	}
	if on {
		c.tracking[strings.ToLower(hash)] = struct{}{}
	} else {
		delete(c.tracking, strings.ToLower(hash))
	}
}

// Tracking reports whether a call is still waiting for the tx to be mined.
func (c *ContractClient) Tracking(hash string) bool {
	c.trackLock.Lock()
	defer c.trackLock.Unlock()
	_, ok := c.tracking[strings.ToLower(hash)]
	return ok
}

// txUrl links the tx on the explorer of the active chain, or returns the bare
// hash when the chain has none.
func (c *ContractClient) txUrl(hash string) string {
	base := c.signer.Explorer()
	if base == "" {
		return hash
	}
	return strings.TrimSuffix(base, "/") + "/tx/" + hash
}

func newTxRecord(ctx context.Context, kind string, tx *types.Transaction, from ethcommon.Address, domain string, params map[string]string) schema.TxRecord {
	rec := schema.TxRecord{
		ActionId: actionIdFrom(ctx),
		Kind:     kind,
		Hash:     tx.Hash().Hex(),
		From:     from.Hex(),
		Domain:   domain,
		Value:    tx.Value().String(),
		Status:   schema.TxPending,
	}
	if id := tx.ChainId(); id != nil && id.Sign() > 0 {
		rec.ChainId = hexutil.EncodeBig(id)
	}
	if len(params) > 0 {
		rec.Params = mustJSON(params)
	}
	return rec
}
