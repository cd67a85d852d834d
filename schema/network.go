package schema

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	TLD             = ".tetas"
	MinDomainLength = 3
	MaxDomainLength = 10

	TargetChainId     = "0x13881"
	TargetNetworkName = "Polygon Mumbai Testnet"

	PolygonScan = "https://mumbai.polygonscan.com/"
	EtherScan   = "https://etherscan.io/"
	OpenSeaTest = "https://testnets.opensea.io/assets/mumbai/"
)

// Networks maps a wallet chain id to the name shown in the nav bar.
var Networks = map[string]string{
	"0x1":     "Mainnet",
	"0x3":     "Ropsten",
	"0x2a":    "Kovan",
	"0x4":     "Rinkeby",
	"0x5":     "Goerli",
	"0x61":    "BSC Testnet",
	"0x38":    "BSC Mainnet",
	"0x89":    "Polygon Mainnet",
	"0x13881": "Polygon Mumbai Testnet",
	"0xa86a":  "AVAX Mainnet",
}

type NativeCurrency struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// ChainMeta is the wallet_addEthereumChain parameter object (EIP-3085).
type ChainMeta struct {
	ChainId           string         `json:"chainId"`
	ChainName         string         `json:"chainName"`
	RpcUrls           []string       `json:"rpcUrls"`
	NativeCurrency    NativeCurrency `json:"nativeCurrency"`
	BlockExplorerUrls []string       `json:"blockExplorerUrls,omitempty"`
}

type SwitchChainParam struct {
	ChainId string `json:"chainId"`
}

func TargetChain() ChainMeta {
	return ChainMeta{
		ChainId:   TargetChainId,
		ChainName: TargetNetworkName,
		RpcUrls:   []string{"https://rpc-mumbai.maticvigil.com/"},
		NativeCurrency: NativeCurrency{
			Name:     "Mumbai Matic",
			Symbol:   "MATIC",
			Decimals: 18,
		},
		BlockExplorerUrls: []string{PolygonScan},
	}
}

// NetworkName returns "" when the chain id is unknown.
func NetworkName(chainId string) string {
	return Networks[NormalizeChainId(chainId)]
}

// NormalizeChainId lower-cases the hex id and strips leading zeros, so "0x013881"
// and "0x13881" name the same chain. Invalid input is returned lower-cased.
func NormalizeChainId(chainId string) string {
	id, err := ChainIdToBig(chainId)
	if err != nil {
		return strings.ToLower(chainId)
	}
	return hexutil.EncodeBig(id)
}

func ChainIdToBig(chainId string) (*big.Int, error) {
	s := strings.ToLower(strings.TrimSpace(chainId))
	if !strings.HasPrefix(s, "0x") || len(s) == 2 {
		return nil, ErrInvalidChainId
	}
	id, ok := new(big.Int).SetString(s[2:], 16)
	if !ok || id.Sign() <= 0 {
		return nil, ErrInvalidChainId
	}
	return id, nil
}
