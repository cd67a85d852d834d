package contract

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Backend is the chain access a bound Domains contract needs.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BlockNumber(ctx context.Context) (uint64, error)
}

// Registry is the set of contract calls the name service client uses.
type Registry interface {
	CreateDomain(opts *bind.TransactOpts, name string) (*types.Transaction, error)
	SetRecord(opts *bind.TransactOpts, name, record string) (*types.Transaction, error)
	Withdraw(opts *bind.TransactOpts) (*types.Transaction, error)

	GetAllNames(opts *bind.CallOpts) ([]string, error)
	Records(opts *bind.CallOpts, name string) (string, error)
	Domains(opts *bind.CallOpts, name string) (ethcommon.Address, error)

	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
	BlockNumber(ctx context.Context) (uint64, error)
}

type Domains struct {
	address  ethcommon.Address
	backend  Backend
	contract *bind.BoundContract
}

func NewDomains(address ethcommon.Address, parsed abi.ABI, backend Backend) *Domains {
	return &Domains{
		address:  address,
		backend:  backend,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}
}

func (d *Domains) Address() ethcommon.Address {
	return d.address
}

func (d *Domains) CreateDomain(opts *bind.TransactOpts, name string) (*types.Transaction, error) {
	return d.contract.Transact(opts, "createDomain", name)
}

func (d *Domains) SetRecord(opts *bind.TransactOpts, name, record string) (*types.Transaction, error) {
	return d.contract.Transact(opts, "setRecord", name, record)
}

func (d *Domains) Withdraw(opts *bind.TransactOpts) (*types.Transaction, error) {
	return d.contract.Transact(opts, "withdraw")
}

func (d *Domains) GetAllNames(opts *bind.CallOpts) ([]string, error) {
	var out []interface{}
	if err := d.contract.Call(opts, &out, "getAllNames"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]string)).(*[]string), nil
}

func (d *Domains) Records(opts *bind.CallOpts, name string) (string, error) {
	var out []interface{}
	if err := d.contract.Call(opts, &out, "records", name); err != nil {
		return "", err
	}
	return *abi.ConvertType(out[0], new(string)).(*string), nil
}

func (d *Domains) Domains(opts *bind.CallOpts, name string) (ethcommon.Address, error) {
	var out []interface{}
	if err := d.contract.Call(opts, &out, "domains", name); err != nil {
		return ethcommon.Address{}, err
	}
	return *abi.ConvertType(out[0], new(ethcommon.Address)).(*ethcommon.Address), nil
}

func (d *Domains) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, d.backend, tx)
}

func (d *Domains) BlockNumber(ctx context.Context) (uint64, error) {
	return d.backend.BlockNumber(ctx)
}
