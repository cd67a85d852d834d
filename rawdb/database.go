package rawdb

import (
	"github.com/everFinance/tns/common"
)

var log = common.NewLog("rawdb")

// KeyValueDB is the storage behind the wallet's chain registry and permissions.
type KeyValueDB interface {
	Put(bucket, key string, value []byte) (err error)

	Get(bucket, key string) (data []byte, err error)

	GetAllKey(bucket string) (keys []string, err error)

	Delete(bucket, key string) (err error)

	Close() (err error)

	Type() string

	Exist(bucket, key string) bool
}
