package tns

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/everFinance/tns/schema"
)

const (
	pendingTxsBatch = 50
	pendingTxsGrace = 2 * time.Minute // rows younger than this are left to the sending call
	jobTimeout      = 30 * time.Second
)

func (t *Tns) runJobs() {
	if t.wallet == nil {
		return
	}
	if t.wdb != nil {
		t.scheduler.Every(10).Seconds().SingletonMode().Do(t.watchPendingTxs)
	}
	t.scheduler.Every(1).Minute().SingletonMode().Do(t.updateSignerBalance)

	t.scheduler.StartAsync()
}

// watchPendingTxs settles journal rows whose receipt was never observed,
// e.g. when the process stopped while waiting for it.
func (t *Tns) watchPendingTxs() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	chainId := t.wallet.ChainId()
	recs, err := t.wdb.GetPendingTxs(chainId, time.Now().Add(-pendingTxsGrace), pendingTxsBatch)
	if err != nil {
		log.Error("t.wdb.GetPendingTxs", "err", err)
		return
	}
	if len(recs) == 0 {
		return
	}
	backend, err := t.wallet.Backend(ctx)
	if err != nil {
		log.Error("t.wallet.Backend(ctx)", "err", err)
		return
	}
	for _, rec := range recs {
		if t.client != nil && t.client.Tracking(rec.Hash) {
			continue
		}
		receipt, err := backend.TransactionReceipt(ctx, ethcommon.HexToHash(rec.Hash))
		if errors.Is(err, ethereum.NotFound) {
			continue
		}
		if err != nil {
			log.Error("backend.TransactionReceipt", "err", err, "hash", rec.Hash)
			return
		}
		t.recorder.Mined(ctx, rec, receipt)
	}
}

func (t *Tns) updateSignerBalance() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	backend, err := t.wallet.Backend(ctx)
	if err != nil {
		log.Error("t.wallet.Backend(ctx)", "err", err)
		return
	}
	addr := t.wallet.Address()
	bal, err := backend.BalanceAt(ctx, addr, nil)
	if err != nil {
		log.Error("backend.BalanceAt(ctx, addr, nil)", "err", err)
		return
	}
	metricSignerBalance(bal, addr.Hex(), t.wallet.ChainId())
}

// receipt serves from the cache first and falls back to the active chain.
func (t *Tns) receipt(ctx context.Context, hash string) (schema.Receipt, error) {
	if t.receipts != nil {
		if r, err := t.receipts.Get(hash); err == nil {
			return r, nil
		}
	}
	if t.wallet == nil {
		return schema.Receipt{}, ErrNoReceipt
	}
	backend, err := t.wallet.Backend(ctx)
	if err != nil {
		return schema.Receipt{}, err
	}
	receipt, err := backend.TransactionReceipt(ctx, ethcommon.HexToHash(hash))
	if errors.Is(err, ethereum.NotFound) {
		return schema.Receipt{}, ErrNoReceipt
	}
	if err != nil {
		return schema.Receipt{}, err
	}
	r := toReceipt(receipt)
	if t.receipts != nil {
		if err := t.receipts.Put(r); err != nil {
			log.Warn("t.receipts.Put(r)", "err", err)
		}
	}
	return r, nil
}
