package tns

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/everFinance/tns/provider"
	"github.com/everFinance/tns/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// receiptBackend answers receipts for every hash and remembers the lookups.
type receiptBackend struct {
	provider.Backend
	lock  sync.Mutex
	calls []string
}

func (b *receiptBackend) TransactionReceipt(ctx context.Context, hash ethcommon.Hash) (*types.Receipt, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.calls = append(b.calls, hash.Hex())
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash, BlockNumber: big.NewInt(120)}, nil
}

func (b *receiptBackend) Calls() []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	return append([]string{}, b.calls...)
}

func newJobsTns(t *testing.T, reg *fakeRegistry) (*Tns, *receiptBackend) {
	store, err := provider.NewBoltStore(t.TempDir())
	require.NoError(t, err)
	w, err := provider.NewWallet("4c3f9a1e5b234ce8f1ab58d82f849c0f70a4d5ceaf2b6e2d9a6c58b1f897ef0a", store, schema.TargetChain(), provider.AutoApprove)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	be := &receiptBackend{}
	w.SetDialer(func(ctx context.Context, rawurl string) (provider.Backend, error) { return be, nil })

	db := newTestWdb(t)
	rc, err := NewReceiptCache()
	require.NoError(t, err)
	t.Cleanup(func() { rc.Close() })

	tn := &Tns{wallet: w, wdb: db, receipts: rc}
	tn.recorder = NewRecorder(db, nil, rc)
	tn.client = newTestClient(reg, tn.recorder)
	return tn, be
}

func TestWatchPendingTxs(t *testing.T) {
	reg := newFakeRegistry()
	reg.mined = make(chan struct{})
	tn, be := newJobsTns(t, reg)

	done := make(chan error, 1)
	go func() {
		_, err := tn.client.SetRecord(context.Background(), "tetas", "r")
		done <- err
	}()
	var inFlight string
	require.Eventually(t, func() bool {
		inFlight = reg.LastHash()
		return inFlight != "" && tn.client.Tracking(inFlight)
	}, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, err := tn.wdb.GetTx(inFlight)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	stale := ethcommon.HexToHash("0x0a").Hex()
	fresh := ethcommon.HexToHash("0x0b").Hex()
	require.NoError(t, tn.wdb.InsertTx(schema.TxRecord{Kind: schema.TxKindWithdraw, Hash: stale, ChainId: schema.TargetChainId, Status: schema.TxPending}))
	// stale and in-flight rows are past the grace period
	require.NoError(t, tn.wdb.Db.Model(&schema.TxRecord{}).Where("hash in ?", []string{stale, inFlight}).
		Update("created_at", time.Now().Add(-time.Hour)).Error)
	require.NoError(t, tn.wdb.InsertTx(schema.TxRecord{Kind: schema.TxKindWithdraw, Hash: fresh, ChainId: schema.TargetChainId, Status: schema.TxPending}))

	tn.watchPendingTxs()

	assert.Equal(t, []string{stale}, be.Calls())
	rec, err := tn.wdb.GetTx(stale)
	require.NoError(t, err)
	assert.Equal(t, schema.TxSuccess, rec.Status)
	assert.Equal(t, uint64(120), rec.BlockNumber)
	for _, hash := range []string{inFlight, fresh} {
		rec, err = tn.wdb.GetTx(hash)
		require.NoError(t, err)
		assert.Equal(t, schema.TxPending, rec.Status, hash)
	}

	// the sending call settles its own row
	close(reg.mined)
	require.NoError(t, <-done)
	rec, err = tn.wdb.GetTx(inFlight)
	require.NoError(t, err)
	assert.Equal(t, schema.TxSuccess, rec.Status)
	assert.Equal(t, uint64(100), rec.BlockNumber)
	assert.Equal(t, []string{stale}, be.Calls())
}
