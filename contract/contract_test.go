package contract

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/everFinance/tns/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtifact(t *testing.T) {
	parsed, err := ParseArtifact(DomainsArtifact)
	require.NoError(t, err)

	createDomain := parsed.Methods["createDomain"]
	assert.True(t, createDomain.IsPayable())
	assert.True(t, parsed.Methods["getAllNames"].IsConstant())
	assert.Equal(t, "string[]", parsed.Methods["getAllNames"].Outputs[0].Type.String())
	assert.Equal(t, "address", parsed.Methods["domains"].Outputs[0].Type.String())
}

func TestParseArtifact_BareAbi(t *testing.T) {
	bare := `[
	{"inputs":[{"name":"name","type":"string"}],"name":"createDomain","outputs":[],"stateMutability":"payable","type":"function"},
	{"inputs":[{"name":"name","type":"string"},{"name":"record","type":"string"}],"name":"setRecord","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"getAllNames","outputs":[{"name":"","type":"string[]"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"","type":"string"}],"name":"records","outputs":[{"name":"","type":"string"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"name":"","type":"string"}],"name":"domains","outputs":[{"name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"}
	]`
	parsed, err := ParseArtifact([]byte(bare))
	require.NoError(t, err)
	assert.Len(t, parsed.Methods, 6)
}

func TestParseArtifact_Invalid(t *testing.T) {
	for _, data := range []string{
		"",
		"not json",
		`{"contractName":"Domains"}`,
		`"abi"`,
		`[{"inputs":[],"name":"withdraw","outputs":[],"stateMutability":"nonpayable","type":"function"}]`,
	} {
		_, err := ParseArtifact([]byte(data))
		assert.ErrorIs(t, err, schema.ErrInvalidArtifact, data)
	}
}

func TestLoadABI(t *testing.T) {
	embedded, err := LoadABI("")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "Domains.json")
	require.NoError(t, os.WriteFile(path, DomainsArtifact, 0644))
	fromFile, err := LoadABI(path)
	require.NoError(t, err)
	assert.Equal(t, len(embedded.Methods), len(fromFile.Methods))

	_, err = LoadABI(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

// callBackend answers eth_call with canned return data keyed by method name.
type callBackend struct {
	Backend
	abi     abi.ABI
	outputs map[string][]byte
	calls   []string
}

func (b *callBackend) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	m, err := b.abi.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	args, err := m.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}
	call := m.Name
	if len(args) > 0 {
		call += ":" + args[0].(string)
	}
	b.calls = append(b.calls, call)
	return b.outputs[call], nil
}

func TestDomains_Calls(t *testing.T) {
	parsed, err := ParseArtifact(DomainsArtifact)
	require.NoError(t, err)

	owner := ethcommon.HexToAddress("0x4002ED1a1410aF1b4930cF6c479ae373dEbD6223")
	names, err := parsed.Methods["getAllNames"].Outputs.Pack([]string{"abc", "hello"})
	require.NoError(t, err)
	record, err := parsed.Methods["records"].Outputs.Pack("my record")
	require.NoError(t, err)
	addr, err := parsed.Methods["domains"].Outputs.Pack(owner)
	require.NoError(t, err)

	backend := &callBackend{abi: parsed, outputs: map[string][]byte{
		"getAllNames":   names,
		"records:hello": record,
		"domains:hello": addr,
	}}
	d := NewDomains(ethcommon.HexToAddress(DomainsAddress), parsed, backend)

	gotNames, err := d.GetAllNames(nil)
	assert.NoError(t, err)
	assert.Equal(t, []string{"abc", "hello"}, gotNames)

	gotRecord, err := d.Records(nil, "hello")
	assert.NoError(t, err)
	assert.Equal(t, "my record", gotRecord)

	gotOwner, err := d.Domains(nil, "hello")
	assert.NoError(t, err)
	assert.Equal(t, owner, gotOwner)

	assert.Equal(t, []string{"getAllNames", "records:hello", "domains:hello"}, backend.calls)
}

func TestDomains_CreateDomain(t *testing.T) {
	parsed, err := ParseArtifact(DomainsArtifact)
	require.NoError(t, err)
	d := NewDomains(ethcommon.HexToAddress(DomainsAddress), parsed, &callBackend{abi: parsed})

	from := ethcommon.HexToAddress("0x4002ED1a1410aF1b4930cF6c479ae373dEbD6223")
	value := big.NewInt(500000000000000000)
	opts := &bind.TransactOpts{
		From:     from,
		Value:    value,
		GasPrice: big.NewInt(1),
		GasLimit: 100000,
		Nonce:    big.NewInt(7),
		NoSend:   true,
		Signer: func(address ethcommon.Address, tx *types.Transaction) (*types.Transaction, error) {
			return tx, nil
		},
	}
	tx, err := d.CreateDomain(opts, "abc")
	require.NoError(t, err)
	assert.Equal(t, value, tx.Value())
	assert.Equal(t, uint64(7), tx.Nonce())
	assert.Equal(t, ethcommon.HexToAddress(DomainsAddress), *tx.To())

	m, err := parsed.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "createDomain", m.Name)
	args, err := m.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, "abc", args[0])
}
