package schema

var (
	// bucket
	ChainBucket     = "chain-bucket"     // key: chainId(0x-hex), val: json.marshal(ChainMeta)
	ConstantsBucket = "constants-bucket" // key: see below

	// constants bucket keys
	ActiveChainKey = "active-chain" // val: chainId(0x-hex)
	PermissionKey  = "permission"   // val: authorized address
)

var AllBuckets = []string{ChainBucket, ConstantsBucket}
