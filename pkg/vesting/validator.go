package vesting

import (
	"context"
	"math/bits"

	"github.com/pkg/errors"
	"github.com/tokenized/pkg/logger"
	"go.opencensus.io/trace"
)

const (
	SubSystem = "Vesting" // For logger
)

// Validator decides whether a claim against a vesting charm is valid for a transaction. It holds
// no mutable state and is safe for concurrent use.
type Validator struct {
	codec      Codec
	authorizer Authorizer
}

func NewValidator(codec Codec, authorizer Authorizer) *Validator {
	return &Validator{
		codec:      codec,
		authorizer: authorizer,
	}
}

// ValidateSpend decodes the prior state from the spent input and validates the claim.
func (v *Validator) ValidateSpend(ctx context.Context, tx *Transaction, input int,
	claimData, witnessData []byte) error {

	ctx = logger.ContextWithLogSubSystem(ctx, SubSystem)

	if tx == nil || input < 0 || input >= len(tx.Inputs) {
		return v.reject(ctx, NewRejectError(RejectDecodeError, "input %d not in transaction",
			input))
	}

	prior, err := v.codec.DecodeState(tx.Inputs[input].Data)
	if err != nil {
		return v.reject(ctx, NewRejectError(RejectDecodeError, "prior state : %s", err))
	}

	if tx.Inputs[input].Stream != prior.StreamID() {
		return v.reject(ctx, NewRejectError(RejectDecodeError, "input stream %s not state stream %s",
			tx.Inputs[input].Stream, prior.StreamID()))
	}

	return v.Validate(ctx, prior, tx, claimData, witnessData)
}

// Validate returns nil when the claim is accepted, or a *RejectError. Checks run in a fixed
// order and the first failure is returned.
func (v *Validator) Validate(ctx context.Context, prior *State, tx *Transaction,
	claimData, witnessData []byte) error {

	ctx, span := trace.StartSpan(ctx, "vesting.Validator.Validate")
	defer span.End()

	ctx = logger.ContextWithLogSubSystem(ctx, SubSystem)

	if prior == nil || tx == nil {
		return v.reject(ctx, NewRejectError(RejectDecodeError, "missing prior state or transaction"))
	}
	if err := prior.Verify(); err != nil {
		return v.reject(ctx, NewRejectError(RejectDecodeError, "prior state : %s", err))
	}

	claim, err := v.codec.DecodeState(claimData)
	if err != nil {
		return v.reject(ctx, NewRejectError(RejectDecodeError, "claim data : %s", err))
	}

	witness, err := v.codec.DecodeWitness(witnessData)
	if err != nil {
		return v.reject(ctx, NewRejectError(RejectDecodeError, "witness : %s", err))
	}

	if witness.ReferenceTime != 0 && witness.ReferenceTime != tx.ReferenceTime {
		return v.reject(ctx, NewRejectError(RejectReferenceTimeMismatch,
			"witness %d, transaction %d", witness.ReferenceTime, tx.ReferenceTime))
	}

	claimed := witness.ClaimedAmount
	newClaimedTotal, carry := bits.Add64(prior.ClaimedTotal, claimed, 0)

	if claimed > 0 {
		if carry != 0 || newClaimedTotal > prior.Schedule.TotalAmount {
			return v.reject(ctx, NewRejectError(RejectClaimExceedsTotal,
				"claimed %d + %d, total %d", prior.ClaimedTotal, claimed,
				prior.Schedule.TotalAmount))
		}

		unlocked := prior.Schedule.UnlockedAt(tx.ReferenceTime)
		if newClaimedTotal > unlocked {
			return v.reject(ctx, NewRejectError(RejectClaimExceedsVested,
				"claimed %d + %d, unlocked %d at %d", prior.ClaimedTotal, claimed, unlocked,
				tx.ReferenceTime))
		}
	}

	if err := v.checkContinuation(prior, claim, newClaimedTotal, tx); err != nil {
		return v.reject(ctx, NewRejectError(RejectMalformedContinuation, "%s", err))
	}

	if err := checkBalance(prior, claimed, tx); err != nil {
		return v.reject(ctx, NewRejectError(RejectBalanceNotConserved, "%s", err))
	}

	if err := checkProofReference(prior.Schedule.Beneficiary, witness); err != nil {
		return v.reject(ctx, NewRejectError(RejectUnauthorizedClaimant, "%s", err))
	}

	sigHash := ClaimSigHash(&prior.Schedule, claimed, newClaimedTotal, tx.ReferenceTime,
		StreamOutputsHash(tx, prior.StreamID()))
	if err := v.authorizer.Authorize(ctx, prior.Schedule.Beneficiary, witness,
		sigHash); err != nil {
		return v.reject(ctx, NewRejectError(RejectUnauthorizedClaimant, "%s", err))
	}

	logger.Verbose(ctx, "Accepted claim of %d on stream %s (claimed %d/%d)", claimed,
		prior.StreamID(), newClaimedTotal, prior.Schedule.TotalAmount)
	return nil
}

// checkContinuation verifies the proposed state and the output carrying it forward. Only the
// claimed total may change.
func (v *Validator) checkContinuation(prior, claim *State, newClaimedTotal uint64,
	tx *Transaction) error {

	if !claim.Schedule.Equal(&prior.Schedule) {
		return errors.New("schedule modified")
	}
	if claim.ClaimedTotal != newClaimedTotal {
		return errors.Errorf("claimed total %d, expected %d", claim.ClaimedTotal,
			newClaimedTotal)
	}

	stream := prior.StreamID()
	for i, output := range tx.Outputs {
		if i == tx.Continuation || output.Stream != stream || len(output.Data) == 0 {
			continue
		}
		return errors.Errorf("output %d carries charm data but is not the continuation", i)
	}

	if tx.Continuation == NoContinuation {
		if claim.Status() != StatusCompleted {
			return errors.Errorf("no continuation with %d remaining", claim.Remaining())
		}
		return nil
	}

	continuation := tx.ContinuationOutput()
	if continuation == nil {
		return errors.Errorf("continuation output %d not in transaction", tx.Continuation)
	}
	if continuation.Stream != stream {
		return errors.Errorf("continuation stream %s, expected %s", continuation.Stream, stream)
	}

	carried, err := v.codec.DecodeState(continuation.Data)
	if err != nil {
		return errors.Wrap(err, "decode continuation")
	}
	if !carried.Equal(claim) {
		return errors.New("continuation state does not match claim data")
	}

	return nil
}

// checkBalance verifies that the stream's tokens are only moved by the claim.
func checkBalance(prior *State, claimed uint64, tx *Transaction) error {
	stream := prior.StreamID()

	inputAmount, ok := tx.StreamInputAmount(stream)
	if !ok {
		return errors.New("input amount overflow")
	}
	if inputAmount != prior.Remaining() {
		return errors.Errorf("input amount %d, locked %d", inputAmount, prior.Remaining())
	}

	var carried, paid uint64
	for i, output := range tx.Outputs {
		if output.Stream != stream {
			continue
		}

		var carry uint64
		if i == tx.Continuation {
			carried, carry = bits.Add64(carried, output.Amount, 0)
		} else {
			paid, carry = bits.Add64(paid, output.Amount, 0)
		}
		if carry != 0 {
			return errors.New("output amount overflow")
		}
	}

	if paid != claimed {
		return errors.Errorf("paid out %d, claimed %d", paid, claimed)
	}

	total, carry := bits.Add64(carried, claimed, 0)
	if carry != 0 || total != inputAmount {
		return errors.Errorf("carried %d + claimed %d, input %d", carried, claimed, inputAmount)
	}

	return nil
}

func (v *Validator) reject(ctx context.Context, err *RejectError) error {
	logger.Verbose(ctx, "Rejecting claim : %s", err)
	return err
}
