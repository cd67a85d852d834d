package contract

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/everFinance/tns/common"
	"github.com/everFinance/tns/schema"
	"github.com/tidwall/gjson"
)

var log = common.NewLog("contract")

const DomainsAddress = "0x9b971c13E8e4e80AdC6c103668E037788E8692F0"

// DomainsArtifact is the hardhat artifact of the deployed Domains contract.
//
//go:embed Domains.json
var DomainsArtifact []byte

// ParseArtifact accepts a compiler artifact with an "abi" field or a bare ABI array.
func ParseArtifact(data []byte) (abi.ABI, error) {
	if !gjson.ValidBytes(data) {
		return abi.ABI{}, schema.ErrInvalidArtifact
	}
	res := gjson.ParseBytes(data)
	raw := res.Raw
	if res.IsObject() {
		abiField := res.Get("abi")
		if !abiField.IsArray() {
			return abi.ABI{}, schema.ErrInvalidArtifact
		}
		raw = abiField.Raw
	} else if !res.IsArray() {
		return abi.ABI{}, schema.ErrInvalidArtifact
	}

	parsed, err := abi.JSON(bytes.NewReader([]byte(raw)))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("%w: %v", schema.ErrInvalidArtifact, err)
	}
	for _, m := range requiredMethods {
		if _, ok := parsed.Methods[m]; !ok {
			return abi.ABI{}, fmt.Errorf("%w: missing method %s", schema.ErrInvalidArtifact, m)
		}
	}
	return parsed, nil
}

var requiredMethods = []string{"createDomain", "setRecord", "getAllNames", "records", "domains", "withdraw"}

// LoadABI reads the artifact at path, or the embedded one when path is empty.
func LoadABI(path string) (abi.ABI, error) {
	if path == "" {
		return ParseArtifact(DomainsArtifact)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, err
	}
	log.Info("load abi from file", "path", path)
	return ParseArtifact(data)
}
