package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcutil"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/vesting-charm/internal/bootstrap"
	"github.com/tokenized/vesting-charm/internal/platform/config"
)

var cmdGen = &cobra.Command{
	Use:   "gen",
	Short: "Generates a claimant key",
	Long:  "Generates a claimant key and prints the values usable as a schedule beneficiary.",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) != 0 {
			return errors.New("Incorrect argument count")
		}

		ctx := bootstrap.NewContextWithDevelopmentLogger()
		cfg := bootstrap.NewConfigFromEnv(ctx)
		network := bootstrap.NewNetwork(ctx, cfg)

		key, err := bitcoin.GenerateKey(network)
		if err != nil {
			fmt.Printf("Failed to generate key : %s\n", err)
			return nil
		}

		publicKey := key.PublicKey().Bytes()
		pkh := bitcoin.Hash160(publicKey)

		address, err := btcutil.NewAddressPubKeyHash(pkh, config.NewChainParams(cfg.Bitcoin.Network))
		if err != nil {
			fmt.Printf("Failed to generate address : %s\n", err)
			return nil
		}

		fmt.Printf("WIF : %s\n", key.String())
		fmt.Printf("PubKey : %s\n", hex.EncodeToString(publicKey))
		fmt.Printf("PKH : %s\n", hex.EncodeToString(pkh))
		fmt.Printf("Addr : %s\n", address.EncodeAddress())
		return nil
	},
}
