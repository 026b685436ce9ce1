package cmd

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcutil"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tokenized/vesting-charm/internal/bootstrap"
	"github.com/tokenized/vesting-charm/pkg/vesting"
)

var cmdSchedule = &cobra.Command{
	Use:   "schedule <total>",
	Short: "Builds a vesting schedule and its initial charm state",
	Long: "Builds a vesting schedule and prints the unlock table and the hex encoded initial " +
		"state. A non-zero rate builds a stream schedule, otherwise the mode flag selects a " +
		"linear schedule from start to end or a step schedule from the steps flag.",
	RunE: func(c *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("Incorrect argument count")
		}

		total, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return errors.Wrap(err, "total")
		}

		ctx := bootstrap.NewContextWithDevelopmentLogger()
		cfg := bootstrap.NewConfigFromEnv(ctx)

		beneficiaryHex, _ := c.Flags().GetString(FlagBeneficiary)
		beneficiary, err := hex.DecodeString(beneficiaryHex)
		if err != nil {
			return errors.Wrap(err, "beneficiary")
		}

		schedule, err := buildSchedule(c, bootstrap.NewUnlockMode(ctx, cfg), total, beneficiary)
		if err != nil {
			fmt.Printf("Failed to build schedule : %s\n", err)
			return nil
		}

		printSchedule(schedule)

		b, err := vesting.NewBinaryCodec().EncodeState(vesting.NewState(schedule))
		if err != nil {
			fmt.Printf("Failed to encode state : %s\n", err)
			return nil
		}

		fmt.Printf("State : %x\n", b)
		return nil
	},
}

func buildSchedule(c *cobra.Command, defaultMode vesting.UnlockMode, total uint64,
	beneficiary []byte) (*vesting.Schedule, error) {

	start, _ := c.Flags().GetUint64(FlagStart)
	end, _ := c.Flags().GetUint64(FlagEnd)
	cliff, _ := c.Flags().GetUint64(FlagCliff)
	rate, _ := c.Flags().GetUint64(FlagRate)
	steps, _ := c.Flags().GetString(FlagSteps)
	modeName, _ := c.Flags().GetString(FlagMode)

	id := uuid.New()

	if rate != 0 {
		return vesting.NewStreamSchedule(id, start, cliff, rate, total, beneficiary)
	}

	mode := defaultMode
	if len(modeName) > 0 {
		var err error
		mode, err = vesting.UnlockModeFromString(modeName)
		if err != nil {
			return nil, err
		}
	}

	if mode == vesting.UnlockStep {
		checkpoints, err := parseCheckpoints(steps)
		if err != nil {
			return nil, errors.Wrap(err, "steps")
		}
		return vesting.NewStepSchedule(id, total, checkpoints, beneficiary)
	}

	return vesting.NewLinearSchedule(id, start, end, total, beneficiary)
}

// parseCheckpoints parses "time:amount" pairs separated by commas.
func parseCheckpoints(s string) ([]vesting.Checkpoint, error) {
	var result []vesting.Checkpoint
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if len(pair) == 0 {
			continue
		}

		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, errors.Errorf("Invalid checkpoint %q", pair)
		}

		time, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "time %q", parts[0])
		}
		amount, err := strconv.ParseUint(parts[1], 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "amount %q", parts[1])
		}

		result = append(result, vesting.Checkpoint{Time: time, Amount: amount})
	}

	return result, nil
}

func printSchedule(schedule *vesting.Schedule) {
	fmt.Printf("Stream : %s\n", schedule.ID)
	fmt.Printf("Mode : %s\n", schedule.Mode)
	fmt.Printf("Total : %s\n", btcutil.Amount(schedule.TotalAmount).Format(btcutil.AmountSatoshi))
	fmt.Printf("Beneficiary : %x\n\n", schedule.Beneficiary)

	fmt.Printf("%20s %24s\n", "Time", "Unlocked")
	for _, checkpoint := range schedule.Checkpoints {
		fmt.Printf("%20d %24s\n", checkpoint.Time,
			btcutil.Amount(checkpoint.Amount).Format(btcutil.AmountSatoshi))
	}
	fmt.Printf("\n")
}

func init() {
	cmdSchedule.Flags().Uint64(FlagStart, 0, "time unlocking starts")
	cmdSchedule.Flags().Uint64(FlagEnd, 0, "time everything is unlocked (linear)")
	cmdSchedule.Flags().Uint64(FlagCliff, 0, "time before which nothing unlocks (stream)")
	cmdSchedule.Flags().Uint64(FlagRate, 0, "amount unlocked per time unit (stream)")
	cmdSchedule.Flags().String(FlagSteps, "", "time:amount checkpoints (step)")
	cmdSchedule.Flags().String(FlagMode, "", "linear or step, defaults to the configured mode")
	cmdSchedule.Flags().String(FlagBeneficiary, "", "hex public key or public key hash")
}
