package vesting

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/tokenized/pkg/bitcoin"
)

// ClaimWitness is supplied by the spender and is untrusted.
type ClaimWitness struct {
	ClaimedAmount uint64 `json:"claimed_amount"`

	// ReferenceTime is the time the claimant evaluated the claim at. Zero defers to the
	// transaction. It is only ever compared against the transaction's trusted time.
	ReferenceTime uint64 `json:"reference_time"`

	Claimant []byte `json:"claimant"` // public key
	Proof    []byte `json:"proof"`    // signature over ClaimSigHash
}

// ClaimSigHash returns the hash a beneficiary signs to authorize a claim. outputsHash binds the
// signature to the transaction's outputs of the stream.
func ClaimSigHash(schedule *Schedule, claimedAmount, newClaimedTotal, referenceTime uint64,
	outputsHash []byte) []byte {

	var buf bytes.Buffer

	buf.Write([]byte("vesting-claim"))
	buf.Write(schedule.ID[:])
	binary.Write(&buf, binary.LittleEndian, claimedAmount)
	binary.Write(&buf, binary.LittleEndian, newClaimedTotal)
	binary.Write(&buf, binary.LittleEndian, referenceTime)
	buf.Write(outputsHash)

	return bitcoin.DoubleSha256(buf.Bytes())
}

// StreamOutputsHash commits to the continuation index and to the position, amount and data of
// every output carrying the stream.
func StreamOutputsHash(tx *Transaction, stream uuid.UUID) []byte {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, int64(tx.Continuation))
	for i, output := range tx.Outputs {
		if output.Stream != stream {
			continue
		}

		binary.Write(&buf, binary.LittleEndian, uint32(i))
		binary.Write(&buf, binary.LittleEndian, output.Amount)
		binary.Write(&buf, binary.LittleEndian, uint32(len(output.Data)))
		buf.Write(output.Data)
	}

	return bitcoin.DoubleSha256(buf.Bytes())
}
