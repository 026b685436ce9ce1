package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tokenized/pkg/logger"
	"github.com/tokenized/vesting-charm/internal/bootstrap"
	"github.com/tokenized/vesting-charm/pkg/vesting"
)

var cmdCheck = &cobra.Command{
	Use:   "check <json file>",
	Short: "Validates a claim transaction",
	Long: "Validates the claim in a json file holding the transaction, the spent input index " +
		"and the hex encoded claim data and witness.",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("Incorrect argument count")
		}

		ctx := bootstrap.NewContextWithDevelopmentLogger()

		data, err := ioutil.ReadFile(filepath.FromSlash(args[0]))
		if err != nil {
			fmt.Printf("Failed to read json file : %s\n", err)
			return nil
		}

		check, err := parseCheckFile(data)
		if err != nil {
			fmt.Printf("Failed to parse json file : %s\n", err)
			return nil
		}

		codec := vesting.NewBinaryCodec()
		prior, err := codec.DecodeState(check.Transaction.Inputs[check.Input].Data)
		if err == nil {
			digest, err := vesting.InputDigest(codec, prior, &check.Transaction, check.claimData,
				check.witnessData)
			if err != nil {
				fmt.Printf("Failed to digest : %s\n", err)
				return nil
			}
			fmt.Printf("Digest : %s\n", digest)
			ctx = logger.ContextWithLogTrace(ctx, digest.String())
		}

		validator := bootstrap.NewValidator()
		err = validator.ValidateSpend(ctx, &check.Transaction, check.Input, check.claimData,
			check.witnessData)
		if err != nil {
			fmt.Printf("Rejected : %s\n", err)
			return nil
		}

		fmt.Printf("Accepted\n")
		return nil
	},
}

type checkFile struct {
	Transaction vesting.Transaction `json:"transaction"`
	Input       int                 `json:"input"`
	Claim       string              `json:"claim"`
	Witness     string              `json:"witness"`

	claimData   []byte
	witnessData []byte
}

func parseCheckFile(data []byte) (*checkFile, error) {
	result := &checkFile{}
	if err := json.Unmarshal(data, result); err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}

	if result.Input < 0 || result.Input >= len(result.Transaction.Inputs) {
		return nil, errors.Errorf("Input %d not in transaction", result.Input)
	}

	var err error
	result.claimData, err = hex.DecodeString(result.Claim)
	if err != nil {
		return nil, errors.Wrap(err, "claim")
	}
	result.witnessData, err = hex.DecodeString(result.Witness)
	if err != nil {
		return nil, errors.Wrap(err, "witness")
	}

	return result, nil
}
