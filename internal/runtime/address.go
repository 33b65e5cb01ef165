package runtime

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/zeebo/blake3"
)

// Domain separation keys for BLAKE3 keyed hashing. Fixed constants:
// changing them moves every deployed address. The bytes are the ASCII
// domain name, zero-padded to 32 bytes, so they stay readable in hex
// dumps.
var (
	deployDomainKey = [32]byte{
		's', 't', 'i', 'c', 'k', 'e', 't', '.', 'd', 'e', 'p', 'l', 'o', 'y',
	}

	factoryDomainKey = [32]byte{
		's', 't', 'i', 'c', 'k', 'e', 't', '.', 'f', 'a', 'c', 't', 'o', 'r', 'y',
	}
)

func keyedSum(key [32]byte, parts ...[]byte) []byte {
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("runtime: blake3 keyed hasher: " + err.Error())
	}
	for _, part := range parts {
		hasher.Write(part)
	}
	return hasher.Sum(nil)
}

// ContractAddress derives the address of a contract deployed by
// deployer with the given salt. Same deployer and salt always yield
// the same address.
func ContractAddress(deployer common.Address, salt common.Hash) common.Address {
	sum := keyedSum(deployDomainKey, deployer.Bytes(), salt.Bytes())
	return common.BytesToAddress(sum[:common.AddressLength])
}

// FactoryAddress is the well-known address the factory contract is
// hosted at.
func FactoryAddress() common.Address {
	sum := keyedSum(factoryDomainKey)
	return common.BytesToAddress(sum[:common.AddressLength])
}
