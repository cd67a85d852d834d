package schema

import (
	"gorm.io/datatypes"
	"time"
)

const (
	// tx kind, named after the contract method
	TxKindCreateDomain = "createDomain"
	TxKindSetRecord    = "setRecord"
	TxKindWithdraw     = "withdraw"

	// tx status
	TxPending = "pending"
	TxSuccess = "success"
	TxFailed  = "failed"

	DefaultJournalLimit = 50
	MaxJournalLimit     = 500
)

type TxRecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ActionId string         `gorm:"index:idx1" json:"actionId"` // uuid of the user action that sent the tx
	Kind     string         `gorm:"index:idx2" json:"kind"`     // "createDomain", "setRecord", "withdraw"
	Hash     string         `gorm:"unique" json:"hash"`
	ChainId  string         `json:"chainId"`
	From     string         `json:"from"`
	Domain   string         `json:"domain"`
	Value    string         `json:"value"` // wei
	Params   datatypes.JSON `json:"params"`

	Status      string `gorm:"index:idx3" json:"status"` // "pending","success","failed"
	BlockNumber uint64 `json:"blockNumber"`
}
