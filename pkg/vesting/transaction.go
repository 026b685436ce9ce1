package vesting

import (
	"github.com/google/uuid"
)

const (
	// NoContinuation marks a transaction that spends the whole stream.
	NoContinuation = -1
)

// Output is a transaction input or output as seen by the validator. Stream is zero for outputs
// that carry no vesting tokens. Data holds the charm payload and is empty for plain payouts.
type Output struct {
	Stream uuid.UUID `json:"stream"`
	Amount uint64    `json:"amount"`
	Data   []byte    `json:"data,omitempty"`
}

// Transaction is the host's view of the spending transaction. ReferenceTime must come from a
// trusted source such as the transaction's time lock.
type Transaction struct {
	ReferenceTime uint64   `json:"reference_time"`
	Inputs        []Output `json:"inputs"`
	Outputs       []Output `json:"outputs"`
	Continuation  int      `json:"continuation"`
}

// ContinuationOutput returns the output carrying the charm forward, or nil.
func (tx *Transaction) ContinuationOutput() *Output {
	if tx.Continuation < 0 || tx.Continuation >= len(tx.Outputs) {
		return nil
	}
	return &tx.Outputs[tx.Continuation]
}

// StreamInputAmount sums the amounts of inputs carrying the stream's tokens.
func (tx *Transaction) StreamInputAmount(stream uuid.UUID) (uint64, bool) {
	var result uint64
	for _, input := range tx.Inputs {
		if input.Stream != stream {
			continue
		}
		sum := result + input.Amount
		if sum < result {
			return 0, false
		}
		result = sum
	}
	return result, true
}
