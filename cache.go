package tns

import (
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/everFinance/tns/cache"
	"github.com/everFinance/tns/schema"
)

// ReceiptCache keeps mined receipts by lower-cased tx hash.
type ReceiptCache struct {
	c *cache.Cache
}

func NewReceiptCache() (*ReceiptCache, error) {
	c, err := cache.NewLocalCache(schema.ReceiptCacheExpire)
	if err != nil {
		return nil, err
	}
	return &ReceiptCache{c: c}, nil
}

func (rc *ReceiptCache) Put(r schema.Receipt) error {
	return rc.c.PutJSON(r.Hash, r)
}

func (rc *ReceiptCache) Get(hash string) (r schema.Receipt, err error) {
	err = rc.c.GetJSON(hash, &r)
	return
}

func (rc *ReceiptCache) Close() error {
	return rc.c.Close()
}

func toReceipt(receipt *types.Receipt) schema.Receipt {
	r := schema.Receipt{
		Hash:      receipt.TxHash.Hex(),
		Status:    receipt.Status,
		BlockHash: receipt.BlockHash.Hex(),
		GasUsed:   receipt.GasUsed,
	}
	if receipt.BlockNumber != nil {
		r.BlockNumber = receipt.BlockNumber.Uint64()
	}
	if receipt.ContractAddress != (ethcommon.Address{}) {
		r.Contract = receipt.ContractAddress.Hex()
	}
	return r
}
