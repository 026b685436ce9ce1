package vesting

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	"github.com/tokenized/pkg/bitcoin"
)

const (
	// beneficiaryHashSize is the size of a beneficiary given as a public key hash.
	beneficiaryHashSize = 20
)

var (
	ErrMissingProof     = errors.New("Missing proof")
	ErrMissingClaimant  = errors.New("Missing claimant")
	ErrWrongClaimant    = errors.New("Claimant is not beneficiary")
	ErrInvalidSignature = errors.New("Invalid signature")
)

// Authorizer establishes that a witness was produced by the schedule's beneficiary.
type Authorizer interface {
	Authorize(ctx context.Context, beneficiary []byte, witness *ClaimWitness, sigHash []byte) error
}

// ClaimantMatches returns true when claimant is the beneficiary key, or hashes to a 20 byte
// beneficiary.
func ClaimantMatches(beneficiary, claimant []byte) bool {
	if len(beneficiary) == 0 || len(claimant) == 0 {
		return false
	}
	if bytes.Equal(beneficiary, claimant) {
		return true
	}
	if len(beneficiary) == beneficiaryHashSize {
		return bytes.Equal(beneficiary, bitcoin.Hash160(claimant))
	}
	return false
}

// checkProofReference verifies what can be checked without the authorizer.
func checkProofReference(beneficiary []byte, witness *ClaimWitness) error {
	if len(witness.Proof) == 0 {
		return ErrMissingProof
	}
	if len(witness.Claimant) == 0 {
		return ErrMissingClaimant
	}
	if !ClaimantMatches(beneficiary, witness.Claimant) {
		return ErrWrongClaimant
	}
	return nil
}

// SignatureAuthorizer verifies a secp256k1 signature by the claimant over the claim sig hash.
type SignatureAuthorizer struct{}

func NewSignatureAuthorizer() *SignatureAuthorizer {
	return &SignatureAuthorizer{}
}

func (a *SignatureAuthorizer) Authorize(ctx context.Context, beneficiary []byte,
	witness *ClaimWitness, sigHash []byte) error {

	if err := checkProofReference(beneficiary, witness); err != nil {
		return err
	}

	publicKey, err := bitcoin.PublicKeyFromBytes(witness.Claimant)
	if err != nil {
		return errors.Wrap(err, "parse claimant")
	}

	signature, err := bitcoin.SignatureFromBytes(witness.Proof)
	if err != nil {
		return errors.Wrap(err, "parse signature")
	}

	if !signature.Verify(sigHash, publicKey) {
		return ErrInvalidSignature
	}

	return nil
}

// SignClaim fills in the claimant and proof of a witness for the claim against state in tx.
func SignClaim(key bitcoin.Key, state *State, witness *ClaimWitness, tx *Transaction) error {
	sigHash := ClaimSigHash(&state.Schedule, witness.ClaimedAmount,
		state.ClaimedTotal+witness.ClaimedAmount, tx.ReferenceTime,
		StreamOutputsHash(tx, state.StreamID()))

	signature, err := key.Sign(sigHash)
	if err != nil {
		return errors.Wrap(err, "sign")
	}

	witness.Claimant = key.PublicKey().Bytes()
	witness.Proof = signature.Bytes()
	return nil
}
