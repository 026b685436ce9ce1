package cmd

import (
	"github.com/spf13/cobra"
)

const (
	FlagStart       = "start"
	FlagEnd         = "end"
	FlagCliff       = "cliff"
	FlagRate        = "rate"
	FlagSteps       = "steps"
	FlagMode        = "mode"
	FlagBeneficiary = "beneficiary"
	FlagWIF         = "wif"
	FlagTime        = "time"
)

var vcCmd = &cobra.Command{
	Use:   "vestingcharm",
	Short: "Vesting charm CLI",
}

func Execute() {
	vcCmd.AddCommand(cmdGen)
	vcCmd.AddCommand(cmdSchedule)
	vcCmd.AddCommand(cmdSign)
	vcCmd.AddCommand(cmdDecode)
	vcCmd.AddCommand(cmdCheck)
	vcCmd.Execute()
}
