package tns

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/everFinance/tns/schema"
	"gorm.io/datatypes"
)

// Recorder journals transactions to the db, caches their receipts and
// publishes them to kafka. Every sink is optional.
type Recorder struct {
	wdb      *Wdb
	kWriter  *KWriter
	receipts *ReceiptCache
}

func NewRecorder(wdb *Wdb, kWriter *KWriter, receipts *ReceiptCache) *Recorder {
	return &Recorder{wdb: wdb, kWriter: kWriter, receipts: receipts}
}

func (r *Recorder) Submitted(ctx context.Context, rec schema.TxRecord) {
	log.Info("tx submitted", "kind", rec.Kind, "hash", rec.Hash, "domain", rec.Domain)
	metricTx(rec.Kind, schema.TxPending)
	if r.wdb != nil {
		if err := r.wdb.InsertTx(rec); err != nil {
			log.Error("r.wdb.InsertTx(rec)", "err", err, "hash", rec.Hash)
		}
	}
	r.publish(ctx, rec)
}

func (r *Recorder) Mined(ctx context.Context, rec schema.TxRecord, receipt *types.Receipt) {
	rec.Status = schema.TxFailed
	if receipt.Status == types.ReceiptStatusSuccessful {
		rec.Status = schema.TxSuccess
	}
	if receipt.BlockNumber != nil {
		rec.BlockNumber = receipt.BlockNumber.Uint64()
	}
	log.Info("tx mined", "kind", rec.Kind, "hash", rec.Hash, "status", rec.Status, "block", rec.BlockNumber)
	metricTx(rec.Kind, rec.Status)

	if r.wdb != nil {
		if err := r.wdb.UpdateTxStatus(rec.Hash, rec.Status, rec.BlockNumber); err != nil {
			log.Error("r.wdb.UpdateTxStatus", "err", err, "hash", rec.Hash)
		}
	}
	if r.receipts != nil {
		if err := r.receipts.Put(toReceipt(receipt)); err != nil {
			log.Error("r.receipts.Put", "err", err, "hash", rec.Hash)
		}
	}
	r.publish(ctx, rec)
}

func (r *Recorder) publish(ctx context.Context, rec schema.TxRecord) {
	if r.kWriter == nil {
		return
	}
	body, err := json.Marshal(schema.TxEvent{
		ActionId:    rec.ActionId,
		Kind:        rec.Kind,
		Hash:        rec.Hash,
		ChainId:     rec.ChainId,
		From:        rec.From,
		Domain:      rec.Domain,
		Value:       rec.Value,
		Status:      rec.Status,
		BlockNumber: rec.BlockNumber,
		Timestamp:   time.Now().Unix(),
	})
	if err != nil {
		log.Error("json.Marshal(TxEvent)", "err", err)
		return
	}
	if err := r.kWriter.Write(ctx, rec.Hash, body); err != nil {
		log.Error("r.kWriter.Write", "err", err, "hash", rec.Hash)
	}
}

func mustJSON(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return datatypes.JSON(data)
}
