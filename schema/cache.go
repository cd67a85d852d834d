package schema

import "time"

const (
	// mined receipts never change, the expiry only bounds memory
	ReceiptCacheExpire = 30 * time.Minute
)

type Receipt struct {
	Hash        string `json:"hash"`
	Status      uint64 `json:"status"`
	BlockNumber uint64 `json:"blockNumber"`
	BlockHash   string `json:"blockHash"`
	GasUsed     uint64 `json:"gasUsed"`
	Contract    string `json:"contract,omitempty"`
}
