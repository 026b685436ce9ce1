package cmd

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/bits"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/vesting-charm/internal/bootstrap"
	"github.com/tokenized/vesting-charm/pkg/vesting"
)

var cmdSign = &cobra.Command{
	Use:   "sign <state hex> <amount> <reference time>",
	Short: "Signs a claim against a charm state",
	Long: "Signs a claim of amount against the hex encoded charm state at the reference time. " +
		"The signature covers the claim transaction, which is printed with the claim data and " +
		"witness as a json file for the check command. The key comes from the wif flag or the " +
		"configured claimant key.",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) != 3 {
			return errors.New("Incorrect argument count")
		}

		ctx := bootstrap.NewContextWithDevelopmentLogger()
		cfg := bootstrap.NewConfigFromEnv(ctx)

		codec := vesting.NewBinaryCodec()

		b, err := hex.DecodeString(args[0])
		if err != nil {
			return errors.Wrap(err, "state hex")
		}
		state, err := codec.DecodeState(b)
		if err != nil {
			fmt.Printf("Failed to decode state : %s\n", err)
			return nil
		}

		amount, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return errors.Wrap(err, "amount")
		}
		referenceTime, err := strconv.ParseUint(args[2], 10, 64)
		if err != nil {
			return errors.Wrap(err, "reference time")
		}

		var key bitcoin.Key
		wif, _ := c.Flags().GetString(FlagWIF)
		if len(wif) > 0 {
			key, err = bitcoin.KeyFromStr(wif)
			if err != nil {
				return errors.Wrap(err, "wif")
			}
		} else if configKey := bootstrap.NewClaimantKey(ctx, cfg); configKey != nil {
			key = *configKey
		} else {
			return errors.New("Missing claimant key")
		}

		claim, err := buildClaim(state, amount)
		if err != nil {
			fmt.Printf("Failed to build claim : %s\n", err)
			return nil
		}

		claimData, err := codec.EncodeState(claim)
		if err != nil {
			fmt.Printf("Failed to encode claim : %s\n", err)
			return nil
		}

		tx := buildClaimTransaction(state, b, claim, claimData, amount, referenceTime)

		witness := &vesting.ClaimWitness{
			ClaimedAmount: amount,
			ReferenceTime: referenceTime,
		}
		if err := vesting.SignClaim(key, state, witness, tx); err != nil {
			fmt.Printf("Failed to sign claim : %s\n", err)
			return nil
		}

		if !vesting.ClaimantMatches(state.Schedule.Beneficiary, witness.Claimant) {
			fmt.Printf("Warning : key is not the beneficiary\n")
		}

		witnessData, err := codec.EncodeWitness(witness)
		if err != nil {
			fmt.Printf("Failed to encode witness : %s\n", err)
			return nil
		}

		js, err := json.MarshalIndent(checkFile{
			Transaction: *tx,
			Input:       0,
			Claim:       hex.EncodeToString(claimData),
			Witness:     hex.EncodeToString(witnessData),
		}, "", "  ")
		if err != nil {
			fmt.Printf("Failed to marshal claim : %s\n", err)
			return nil
		}

		fmt.Printf("Withdrawable : %d\n", state.Withdrawable(referenceTime))
		fmt.Printf("Claim : %x\n", claimData)
		fmt.Printf("Witness : %x\n", witnessData)
		fmt.Printf("%s\n", js)
		return nil
	},
}

// buildClaimTransaction returns the transaction the claim is signed for. It spends the whole
// stream input, carries the rest forward unless the claim completes the stream, and pays the
// claimed amount in one output.
func buildClaimTransaction(state *vesting.State, stateData []byte, claim *vesting.State,
	claimData []byte, amount, referenceTime uint64) *vesting.Transaction {

	stream := state.StreamID()
	result := &vesting.Transaction{
		ReferenceTime: referenceTime,
		Inputs: []vesting.Output{
			{Stream: stream, Amount: state.Remaining(), Data: stateData},
		},
		Continuation: vesting.NoContinuation,
	}

	if claim.Status() != vesting.StatusCompleted {
		result.Continuation = len(result.Outputs)
		result.Outputs = append(result.Outputs, vesting.Output{
			Stream: stream,
			Amount: claim.Remaining(),
			Data:   claimData,
		})
	}

	result.Outputs = append(result.Outputs, vesting.Output{Stream: stream, Amount: amount})
	return result
}

// buildClaim returns the state carried forward after claiming amount.
func buildClaim(state *vesting.State, amount uint64) (*vesting.State, error) {
	claimedTotal, carry := bits.Add64(state.ClaimedTotal, amount, 0)
	if carry != 0 || claimedTotal > state.Schedule.TotalAmount {
		return nil, errors.Errorf("Claim of %d exceeds remaining %d", amount, state.Remaining())
	}

	result := *state
	result.ClaimedTotal = claimedTotal
	return &result, nil
}

func init() {
	cmdSign.Flags().String(FlagWIF, "", "claimant key in WIF")
}
