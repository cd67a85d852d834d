package schema

type ReqForm struct {
	Domain *string `json:"domain"`
	Record *string `json:"record"`
}

type RespAccepted struct {
	Status   string `json:"status"`
	ActionId string `json:"actionId"`
}

type RespInfo struct {
	Contract      string `json:"contract"`
	TargetChainId string `json:"targetChainId"`
	TargetNetwork string `json:"targetNetwork"`
	Tld           string `json:"tld"`
	OwnerGated    bool   `json:"ownerGated"`
	HasWallet     bool   `json:"hasWallet"`
}

type RespNetwork struct {
	ChainId string `json:"chainId"`
	Name    string `json:"name"`
}

type RespErr struct {
	Err string `json:"error"`
}
