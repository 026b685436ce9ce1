package vesting

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/tokenized/pkg/bitcoin"
	"github.com/tokenized/pkg/logger"
)

var testStreamID = uuid.MustParse("6f1c4a0e-8d2b-4e65-9a51-3c7b2f0d9e14")

func newTestContext() context.Context {
	return logger.ContextWithNoLogger(context.Background())
}

// claimFixture is a valid claim against the linear schedule [(0, 0), (100, 1000)]. Tests mutate
// it to trigger specific rejections.
type claimFixture struct {
	key     bitcoin.Key
	codec   *BinaryCodec
	prior   *State
	claim   *State
	witness *ClaimWitness
	tx      *Transaction

	rawClaim []byte // sent instead of the encoded claim when set
}

func newClaimFixture(t *testing.T, claimedTotal, claimed, referenceTime uint64) *claimFixture {
	key, err := bitcoin.GenerateKey(bitcoin.MainNet)
	if err != nil {
		t.Fatalf("Failed to generate key : %s", err)
	}

	f, err := buildClaimFixture(key, claimedTotal, claimed, referenceTime)
	if err != nil {
		t.Fatalf("Failed to build fixture : %s", err)
	}
	return f
}

func buildClaimFixture(key bitcoin.Key, claimedTotal, claimed,
	referenceTime uint64) (*claimFixture, error) {

	schedule, err := NewLinearSchedule(testStreamID, 0, 100, 1000, key.PublicKey().Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "schedule")
	}

	f := &claimFixture{
		key:   key,
		codec: NewBinaryCodec(),
		prior: &State{Schedule: *schedule, ClaimedTotal: claimedTotal},
		claim: &State{Schedule: *schedule, ClaimedTotal: claimedTotal + claimed},
		witness: &ClaimWitness{
			ClaimedAmount: claimed,
			ReferenceTime: referenceTime,
		},
	}

	priorData, err := f.codec.EncodeState(f.prior)
	if err != nil {
		return nil, errors.Wrap(err, "encode prior")
	}
	claimData, err := f.codec.EncodeState(f.claim)
	if err != nil {
		return nil, errors.Wrap(err, "encode claim")
	}

	locked := f.prior.Remaining()
	carried := locked - claimed
	if claimed > locked {
		carried = 0
	}

	f.tx = &Transaction{
		ReferenceTime: referenceTime,
		Inputs: []Output{
			{Stream: testStreamID, Amount: locked, Data: priorData},
		},
		Outputs: []Output{
			{Stream: testStreamID, Amount: carried, Data: claimData},
			{Stream: testStreamID, Amount: claimed},
		},
		Continuation: 0,
	}

	if f.claim.Status() == StatusCompleted && claimed <= locked {
		f.tx.Outputs = f.tx.Outputs[1:]
		f.tx.Continuation = NoContinuation
	}

	if err := SignClaim(key, f.prior, f.witness, f.tx); err != nil {
		return nil, errors.Wrap(err, "sign")
	}

	return f, nil
}

func (f *claimFixture) claimData(t *testing.T) []byte {
	if f.rawClaim != nil {
		return f.rawClaim
	}

	b, err := f.codec.EncodeState(f.claim)
	if err != nil {
		t.Fatalf("Failed to encode claim : %s", err)
	}
	return b
}

func (f *claimFixture) witnessData(t *testing.T) []byte {
	b, err := f.codec.EncodeWitness(f.witness)
	if err != nil {
		t.Fatalf("Failed to encode witness : %s", err)
	}
	return b
}

// setContinuationState replaces the continuation payload.
func (f *claimFixture) setContinuationState(t *testing.T, s *State) {
	b, err := f.codec.EncodeState(s)
	if err != nil {
		t.Fatalf("Failed to encode continuation : %s", err)
	}
	f.tx.Outputs[f.tx.Continuation].Data = b
}

func (f *claimFixture) validate(t *testing.T, authorizer Authorizer) error {
	validator := NewValidator(f.codec, authorizer)
	return validator.Validate(newTestContext(), f.prior, f.tx, f.claimData(t), f.witnessData(t))
}

// fakeAuthorizer returns err and counts calls.
type fakeAuthorizer struct {
	err   error
	calls int
}

func (a *fakeAuthorizer) Authorize(ctx context.Context, beneficiary []byte,
	witness *ClaimWitness, sigHash []byte) error {
	a.calls++
	return a.err
}

func rejectCode(err error) RejectCode {
	code, _ := RejectCodeFromError(err)
	return code
}
