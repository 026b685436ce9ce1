package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tokenized/vesting-charm/pkg/vesting"
)

var cmdDecode = &cobra.Command{
	Use:   "decode <state|witness> <hex>",
	Short: "Decodes a charm state or claim witness",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) != 2 {
			return errors.New("Incorrect argument count")
		}

		b, err := hex.DecodeString(args[1])
		if err != nil {
			return errors.Wrap(err, "hex")
		}

		codec := vesting.NewBinaryCodec()

		switch args[0] {
		case "state":
			state, err := codec.DecodeState(b)
			if err != nil {
				fmt.Printf("Failed to decode state : %s\n", err)
				return nil
			}
			spew.Dump(state)

			fmt.Printf("Status : %s\n", state.Status())
			fmt.Printf("Remaining : %d\n", state.Remaining())
			if c.Flags().Changed(FlagTime) {
				at, _ := c.Flags().GetUint64(FlagTime)
				fmt.Printf("Withdrawable at %d : %d\n", at, state.Withdrawable(at))
			}

		case "witness":
			witness, err := codec.DecodeWitness(b)
			if err != nil {
				fmt.Printf("Failed to decode witness : %s\n", err)
				return nil
			}
			spew.Dump(witness)

		default:
			return errors.Errorf("Unknown payload type %q", args[0])
		}

		return nil
	},
}

func init() {
	cmdDecode.Flags().Uint64(FlagTime, 0, "reference time for the withdrawable amount")
}
