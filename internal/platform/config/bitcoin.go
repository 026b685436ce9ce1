package config

import (
	"github.com/btcsuite/btcd/chaincfg"
)

// NewChainParams returns address encoding parameters for the network name.
//
// - mainnet = Bitcoin SV main network
// - testnet, stn = Bitcoin SV test networks
//
func NewChainParams(network string) *chaincfg.Params {
	switch network {
	case "testnet", "stn":
		return &chaincfg.TestNet3Params
	default:
		return &chaincfg.MainNetParams
	}
}
