package provider

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everFinance/tns/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "4c3f9a1e5b234ce8f1ab58d82f849c0f70a4d5ceaf2b6e2d9a6c58b1f897ef0a"

var homeChain = schema.ChainMeta{
	ChainId:        "0x5",
	ChainName:      "Goerli",
	RpcUrls:        []string{"http://127.0.0.1:8545"},
	NativeCurrency: schema.NativeCurrency{Name: "Goerli Ether", Symbol: "ETH", Decimals: 18},
}

func testAddress(t *testing.T) string {
	key, err := crypto.HexToECDSA(testKey)
	require.NoError(t, err)
	return crypto.PubkeyToAddress(key.PublicKey).String()
}

func newTestWallet(t *testing.T, dir string, approver Approver) *Wallet {
	store, err := NewBoltStore(dir)
	require.NoError(t, err)
	w, err := NewWallet(testKey, store, homeChain, approver)
	require.NoError(t, err)
	return w
}

func request(t *testing.T, w *Wallet, method string, params ...interface{}) (json.RawMessage, error) {
	return w.Request(context.Background(), method, params...)
}

func providerCode(err error) int {
	pErr := &ProviderError{}
	if errors.As(err, &pErr) {
		return pErr.Code
	}
	return 0
}

func TestWallet_Accounts(t *testing.T) {
	dir := t.TempDir()
	approve := false
	w := newTestWallet(t, dir, func(ctx context.Context, req Approval) bool { return approve })

	res, err := request(t, w, MethodAccounts)
	assert.NoError(t, err)
	assert.JSONEq(t, `[]`, string(res))

	_, err = request(t, w, MethodRequestAccounts)
	assert.Equal(t, CodeUserRejected, providerCode(err))

	changed := make([]interface{}, 0)
	w.On(EventAccountsChanged, func(data interface{}) { changed = append(changed, data) })

	approve = true
	res, err = request(t, w, MethodRequestAccounts)
	assert.NoError(t, err)
	assert.JSONEq(t, `["`+testAddress(t)+`"]`, string(res))
	assert.Len(t, changed, 1)

	res, err = request(t, w, MethodAccounts)
	assert.NoError(t, err)
	assert.JSONEq(t, `["`+testAddress(t)+`"]`, string(res))

	// permission survives a restart
	require.NoError(t, w.Close())
	w = newTestWallet(t, dir, Reject)
	defer w.Close()
	res, err = request(t, w, MethodAccounts)
	assert.NoError(t, err)
	assert.JSONEq(t, `["`+testAddress(t)+`"]`, string(res))
}

func TestWallet_SwitchAndAddChain(t *testing.T) {
	w := newTestWallet(t, t.TempDir(), AutoApprove)
	defer w.Close()

	res, err := request(t, w, MethodChainId)
	assert.NoError(t, err)
	assert.JSONEq(t, `"0x5"`, string(res))
	assert.Equal(t, "", w.Explorer())

	events := make([]interface{}, 0)
	w.On(EventChainChanged, func(data interface{}) { events = append(events, data) })

	_, err = request(t, w, MethodSwitchChain, schema.SwitchChainParam{ChainId: schema.TargetChainId})
	assert.Equal(t, CodeUnrecognizedChain, providerCode(err))
	assert.Empty(t, events)

	_, err = request(t, w, MethodAddChain, schema.TargetChain())
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{schema.TargetChainId}, events)
	assert.Equal(t, schema.TargetChainId, w.ChainId())
	assert.Equal(t, schema.PolygonScan, w.Explorer())

	// already active, nothing happens
	_, err = request(t, w, MethodSwitchChain, map[string]string{"chainId": "0x13881"})
	assert.NoError(t, err)
	assert.Len(t, events, 1)

	_, err = request(t, w, MethodSwitchChain, map[string]string{"chainId": "0x05"})
	assert.NoError(t, err)
	assert.Equal(t, []interface{}{schema.TargetChainId, "0x5"}, events)

	chains, err := w.Chains()
	assert.NoError(t, err)
	require.Len(t, chains, 2)
	assert.Equal(t, "0x5", chains[0].ChainId)
	assert.Equal(t, schema.TargetChainId, chains[1].ChainId)
}

func TestWallet_SwitchRejected(t *testing.T) {
	approve := true
	w := newTestWallet(t, t.TempDir(), func(ctx context.Context, req Approval) bool { return approve })
	defer w.Close()

	_, err := request(t, w, MethodAddChain, schema.TargetChain())
	require.NoError(t, err)

	approve = false
	_, err = request(t, w, MethodSwitchChain, schema.SwitchChainParam{ChainId: "0x5"})
	assert.Equal(t, CodeUserRejected, providerCode(err))
	assert.Equal(t, schema.TargetChainId, w.ChainId())
}

func TestWallet_InvalidParams(t *testing.T) {
	w := newTestWallet(t, t.TempDir(), AutoApprove)
	defer w.Close()

	_, err := request(t, w, MethodSwitchChain)
	assert.Equal(t, CodeInvalidParams, providerCode(err))

	_, err = request(t, w, MethodSwitchChain, schema.SwitchChainParam{ChainId: "13881"})
	assert.Equal(t, CodeInvalidParams, providerCode(err))

	bad := schema.TargetChain()
	bad.NativeCurrency.Decimals = 6
	_, err = request(t, w, MethodAddChain, bad)
	assert.Equal(t, CodeInvalidParams, providerCode(err))

	bad = schema.TargetChain()
	bad.RpcUrls = []string{"wss://rpc-mumbai.maticvigil.com/"}
	_, err = request(t, w, MethodAddChain, bad)
	assert.Equal(t, CodeInvalidParams, providerCode(err))

	_, err = request(t, w, "eth_sign")
	assert.Equal(t, CodeUnsupported, providerCode(err))
	assert.Equal(t, "0x5", w.ChainId())
}

func TestWallet_PersonalSign(t *testing.T) {
	w := newTestWallet(t, t.TempDir(), AutoApprove)
	defer w.Close()

	_, err := request(t, w, MethodPersonalSign, "hello")
	assert.Equal(t, CodeUnauthorized, providerCode(err))

	_, err = request(t, w, MethodRequestAccounts)
	require.NoError(t, err)
	res, err := request(t, w, MethodPersonalSign, "hello", testAddress(t))
	assert.NoError(t, err)
	sig := ""
	require.NoError(t, json.Unmarshal(res, &sig))
	assert.Len(t, sig, 2+65*2)
}

func TestWallet_TransactOpts(t *testing.T) {
	approve := true
	w := newTestWallet(t, t.TempDir(), func(ctx context.Context, req Approval) bool { return approve })
	defer w.Close()

	_, err := w.TransactOpts(context.Background())
	assert.Equal(t, CodeUnauthorized, providerCode(err))

	_, err = request(t, w, MethodRequestAccounts)
	require.NoError(t, err)
	opts, err := w.TransactOpts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testAddress(t), opts.From.String())

	to := w.Address()
	tx := types.NewTransaction(0, to, big.NewInt(1), 21000, big.NewInt(1), nil)
	signed, err := opts.Signer(opts.From, tx)
	require.NoError(t, err)
	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(5)), signed)
	assert.NoError(t, err)
	assert.Equal(t, opts.From, sender)

	approve = false
	_, err = opts.Signer(opts.From, tx)
	assert.Equal(t, CodeUserRejected, providerCode(err))
}

func TestWallet_Backend(t *testing.T) {
	w := newTestWallet(t, t.TempDir(), AutoApprove)
	defer w.Close()

	dialed := make([]string, 0)
	w.SetDialer(func(ctx context.Context, rawurl string) (Backend, error) {
		dialed = append(dialed, rawurl)
		return nil, nil
	})

	_, err := w.Backend(context.Background())
	assert.NoError(t, err)
	_, err = w.Backend(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"http://127.0.0.1:8545"}, dialed)

	_, err = request(t, w, MethodAddChain, schema.TargetChain())
	require.NoError(t, err)
	_, err = w.Backend(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"http://127.0.0.1:8545", "https://rpc-mumbai.maticvigil.com/"}, dialed)
}
