package vesting

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

var (
	ErrMissingDigestInput = errors.New("Missing prior state or transaction")
)

// InputDigest hashes everything Validate depends on. Hosts that memoize decisions should key
// them by this digest.
func InputDigest(codec Codec, prior *State, tx *Transaction, claimData,
	witnessData []byte) (*chainhash.Hash, error) {

	if prior == nil || tx == nil {
		return nil, ErrMissingDigestInput
	}

	var buf bytes.Buffer

	priorData, err := codec.EncodeState(prior)
	if err != nil {
		return nil, errors.Wrap(err, "encode prior")
	}
	if err := writeChunk(&buf, priorData); err != nil {
		return nil, err
	}

	if err := binary.Write(&buf, binary.LittleEndian, tx.ReferenceTime); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, int64(tx.Continuation)); err != nil {
		return nil, err
	}
	for _, outputs := range [][]Output{tx.Inputs, tx.Outputs} {
		if err := binary.Write(&buf, binary.LittleEndian, uint32(len(outputs))); err != nil {
			return nil, err
		}
		for _, output := range outputs {
			buf.Write(output.Stream[:])
			if err := binary.Write(&buf, binary.LittleEndian, output.Amount); err != nil {
				return nil, err
			}
			if err := writeChunk(&buf, output.Data); err != nil {
				return nil, err
			}
		}
	}

	if err := writeChunk(&buf, claimData); err != nil {
		return nil, err
	}
	if err := writeChunk(&buf, witnessData); err != nil {
		return nil, err
	}

	hash := chainhash.DoubleHashH(buf.Bytes())
	return &hash, nil
}

func writeChunk(buf *bytes.Buffer, b []byte) error {
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(b))); err != nil {
		return err
	}
	_, err := buf.Write(b)
	return err
}
