package main

import (
	"github.com/tokenized/vesting-charm/cmd/vestingcharm/cmd"
)

func main() {
	cmd.Execute()
}
