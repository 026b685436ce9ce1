package vesting

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	codecVersion = uint8(0)

	// maxFieldSize bounds keys, hashes and signatures embedded in payloads.
	maxFieldSize = 128
)

var (
	ErrUnknownVersion = errors.New("Unknown version")
	ErrTrailingData   = errors.New("Trailing data")
	ErrFieldTooLarge  = errors.New("Field too large")
	ErrNilPayload     = errors.New("Nil payload")
)

// Codec converts charm payloads to and from their entities. Decoding must be deterministic and
// must return an error for any structurally invalid payload.
type Codec interface {
	EncodeState(*State) ([]byte, error)
	DecodeState([]byte) (*State, error)
	EncodeWitness(*ClaimWitness) ([]byte, error)
	DecodeWitness([]byte) (*ClaimWitness, error)
}

// BinaryCodec is a versioned little endian encoding.
type BinaryCodec struct{}

func NewBinaryCodec() *BinaryCodec {
	return &BinaryCodec{}
}

func (c *BinaryCodec) EncodeState(s *State) ([]byte, error) {
	if s == nil {
		return nil, ErrNilPayload
	}

	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, codecVersion); err != nil {
		return nil, err
	}

	if err := serializeSchedule(&buf, &s.Schedule); err != nil {
		return nil, errors.Wrap(err, "schedule")
	}

	if err := binary.Write(&buf, binary.LittleEndian, s.ClaimedTotal); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (c *BinaryCodec) DecodeState(b []byte) (*State, error) {
	buf := bytes.NewReader(b)

	if err := readVersion(buf); err != nil {
		return nil, err
	}

	var result State
	if err := deserializeSchedule(buf, &result.Schedule); err != nil {
		return nil, errors.Wrap(err, "schedule")
	}

	if err := binary.Read(buf, binary.LittleEndian, &result.ClaimedTotal); err != nil {
		return nil, errors.Wrap(err, "claimed total")
	}

	if buf.Len() != 0 {
		return nil, errors.Wrapf(ErrTrailingData, "%d bytes", buf.Len())
	}

	return &result, nil
}

func (c *BinaryCodec) EncodeWitness(w *ClaimWitness) ([]byte, error) {
	if w == nil {
		return nil, ErrNilPayload
	}

	var buf bytes.Buffer

	if err := binary.Write(&buf, binary.LittleEndian, codecVersion); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, w.ClaimedAmount); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, w.ReferenceTime); err != nil {
		return nil, err
	}
	if err := serializeBytes(&buf, w.Claimant); err != nil {
		return nil, errors.Wrap(err, "claimant")
	}
	if err := serializeBytes(&buf, w.Proof); err != nil {
		return nil, errors.Wrap(err, "proof")
	}

	return buf.Bytes(), nil
}

func (c *BinaryCodec) DecodeWitness(b []byte) (*ClaimWitness, error) {
	buf := bytes.NewReader(b)

	if err := readVersion(buf); err != nil {
		return nil, err
	}

	var result ClaimWitness
	if err := binary.Read(buf, binary.LittleEndian, &result.ClaimedAmount); err != nil {
		return nil, errors.Wrap(err, "claimed amount")
	}
	if err := binary.Read(buf, binary.LittleEndian, &result.ReferenceTime); err != nil {
		return nil, errors.Wrap(err, "reference time")
	}

	var err error
	if result.Claimant, err = deserializeBytes(buf); err != nil {
		return nil, errors.Wrap(err, "claimant")
	}
	if result.Proof, err = deserializeBytes(buf); err != nil {
		return nil, errors.Wrap(err, "proof")
	}

	if buf.Len() != 0 {
		return nil, errors.Wrapf(ErrTrailingData, "%d bytes", buf.Len())
	}

	return &result, nil
}

func readVersion(buf *bytes.Reader) error {
	var version uint8
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return errors.Wrap(err, "version")
	}
	if version != codecVersion {
		return errors.Wrapf(ErrUnknownVersion, "%d", version)
	}
	return nil
}

func serializeSchedule(buf *bytes.Buffer, s *Schedule) error {
	if _, err := buf.Write(s.ID[:]); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, uint8(s.Mode)); err != nil {
		return err
	}
	if err := binary.Write(buf, binary.LittleEndian, s.TotalAmount); err != nil {
		return err
	}

	if len(s.Checkpoints) > MaxCheckpoints {
		return errors.Wrapf(ErrTooManyCheckpoints, "%d", len(s.Checkpoints))
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(s.Checkpoints))); err != nil {
		return err
	}
	for _, checkpoint := range s.Checkpoints {
		if err := binary.Write(buf, binary.LittleEndian, checkpoint.Time); err != nil {
			return err
		}
		if err := binary.Write(buf, binary.LittleEndian, checkpoint.Amount); err != nil {
			return err
		}
	}

	if err := serializeBytes(buf, s.Beneficiary); err != nil {
		return errors.Wrap(err, "beneficiary")
	}
	if err := serializeBytes(buf, s.RevocationKey); err != nil {
		return errors.Wrap(err, "revocation key")
	}

	return nil
}

func deserializeSchedule(buf *bytes.Reader, s *Schedule) error {
	if _, err := io.ReadFull(buf, s.ID[:]); err != nil {
		return errors.Wrap(err, "id")
	}

	var mode uint8
	if err := binary.Read(buf, binary.LittleEndian, &mode); err != nil {
		return errors.Wrap(err, "mode")
	}
	s.Mode = UnlockMode(mode)

	if err := binary.Read(buf, binary.LittleEndian, &s.TotalAmount); err != nil {
		return errors.Wrap(err, "total")
	}

	var count uint32
	if err := binary.Read(buf, binary.LittleEndian, &count); err != nil {
		return errors.Wrap(err, "checkpoint count")
	}
	if count > MaxCheckpoints {
		return errors.Wrapf(ErrTooManyCheckpoints, "%d", count)
	}

	s.Checkpoints = make([]Checkpoint, count)
	for i := range s.Checkpoints {
		if err := binary.Read(buf, binary.LittleEndian, &s.Checkpoints[i].Time); err != nil {
			return errors.Wrapf(err, "checkpoint %d", i)
		}
		if err := binary.Read(buf, binary.LittleEndian, &s.Checkpoints[i].Amount); err != nil {
			return errors.Wrapf(err, "checkpoint %d", i)
		}
	}

	var err error
	if s.Beneficiary, err = deserializeBytes(buf); err != nil {
		return errors.Wrap(err, "beneficiary")
	}
	if s.RevocationKey, err = deserializeBytes(buf); err != nil {
		return errors.Wrap(err, "revocation key")
	}

	return nil
}

func serializeBytes(buf *bytes.Buffer, v []byte) error {
	if len(v) > maxFieldSize {
		return errors.Wrapf(ErrFieldTooLarge, "%d bytes", len(v))
	}
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(v))); err != nil {
		return err
	}
	if _, err := buf.Write(v); err != nil {
		return err
	}
	return nil
}

func deserializeBytes(buf *bytes.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(buf, binary.LittleEndian, &length); err != nil {
		return nil, err
	}
	if length > maxFieldSize {
		return nil, errors.Wrapf(ErrFieldTooLarge, "%d bytes", length)
	}
	if length == 0 {
		return nil, nil
	}

	result := make([]byte, length)
	if _, err := io.ReadFull(buf, result); err != nil {
		return nil, err
	}
	return result, nil
}
