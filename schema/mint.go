package schema

// MintRecord is one minted name as read back from the contract. Id is the
// position of the name in getAllNames and is only stable while that list is.
type MintRecord struct {
	Id     int    `json:"id"`
	Name   string `json:"name"`
	Record string `json:"record"`
	Owner  string `json:"owner"`
}
