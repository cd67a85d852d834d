package schema

const (
	TxTopic = "tns_transaction"
)

type TxEvent struct {
	ActionId    string `json:"actionId"`
	Kind        string `json:"kind"`
	Hash        string `json:"hash"`
	ChainId     string `json:"chainId"`
	From        string `json:"from"`
	Domain      string `json:"domain"`
	Value       string `json:"value"`
	Status      string `json:"status"`
	BlockNumber uint64 `json:"blockNumber"`
	Timestamp   int64  `json:"timestamp"`
}
