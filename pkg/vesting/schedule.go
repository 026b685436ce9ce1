package vesting

import (
	"bytes"
	"fmt"
	"math/big"
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const (
	// MaxCheckpoints bounds the size of a schedule.
	MaxCheckpoints = 1024
)

var (
	ErrNoCheckpoints       = errors.New("No checkpoints")
	ErrTooManyCheckpoints  = errors.New("Too many checkpoints")
	ErrCheckpointOrder     = errors.New("Checkpoints out of order")
	ErrCheckpointOverTotal = errors.New("Checkpoint amount over total")
	ErrFinalNotTotal       = errors.New("Final checkpoint amount not total")
	ErrZeroTotal           = errors.New("Zero total amount")
	ErrMissingBeneficiary  = errors.New("Missing beneficiary")
	ErrUnknownUnlockMode   = errors.New("Unknown unlock mode")
	ErrZeroRate            = errors.New("Zero rate")
)

// UnlockMode selects how amounts between checkpoints are unlocked.
type UnlockMode uint8

const (
	// UnlockLinear interpolates between checkpoints, rounding down.
	UnlockLinear UnlockMode = 0

	// UnlockStep unlocks each checkpoint's amount only once its time is reached.
	UnlockStep UnlockMode = 1
)

func (m UnlockMode) String() string {
	switch m {
	case UnlockLinear:
		return "linear"
	case UnlockStep:
		return "step"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

// UnlockModeFromString parses the output of UnlockMode.String.
func UnlockModeFromString(s string) (UnlockMode, error) {
	switch s {
	case "linear":
		return UnlockLinear, nil
	case "step":
		return UnlockStep, nil
	default:
		return 0, errors.Wrap(ErrUnknownUnlockMode, s)
	}
}

// Checkpoint is the cumulative amount unlocked at a logical time.
type Checkpoint struct {
	Time   uint64 `json:"time"`
	Amount uint64 `json:"amount"`
}

// Schedule is the immutable part of a vesting charm. Nothing is unlocked before the first
// checkpoint and everything is unlocked at the last.
type Schedule struct {
	ID            uuid.UUID    `json:"id"`
	Mode          UnlockMode   `json:"mode"`
	TotalAmount   uint64       `json:"total_amount"`
	Checkpoints   []Checkpoint `json:"checkpoints"`
	Beneficiary   []byte       `json:"beneficiary"`
	RevocationKey []byte       `json:"revocation_key,omitempty"`
}

// NewLinearSchedule unlocks total evenly from start to end.
func NewLinearSchedule(id uuid.UUID, start, end, total uint64, beneficiary []byte) (*Schedule, error) {
	if end < start {
		return nil, errors.Wrapf(ErrCheckpointOrder, "end %d before start %d", end, start)
	}

	result := &Schedule{
		ID:          id,
		Mode:        UnlockLinear,
		TotalAmount: total,
		Checkpoints: []Checkpoint{
			{Time: start, Amount: 0},
			{Time: end, Amount: total},
		},
		Beneficiary: beneficiary,
	}
	if start == end {
		result.Checkpoints = result.Checkpoints[1:]
	}

	if err := result.Verify(); err != nil {
		return nil, err
	}
	return result, nil
}

// NewStreamSchedule streams rate units per time unit from start until total is reached. Nothing
// is claimable before the cliff, at which point everything streamed since start unlocks at once.
func NewStreamSchedule(id uuid.UUID, start, cliff, rate, total uint64,
	beneficiary []byte) (*Schedule, error) {

	if rate == 0 {
		return nil, ErrZeroRate
	}
	if cliff < start {
		cliff = start
	}

	// full is when the last whole multiple of rate is streamed. A remainder finishes one time
	// unit later.
	full := start + total/rate
	if full < start {
		return nil, errors.Wrap(ErrCheckpointOrder, "stream end overflows")
	}
	end := full
	if total%rate != 0 {
		end++
		if end < full {
			return nil, errors.Wrap(ErrCheckpointOrder, "stream end overflows")
		}
	}

	result := &Schedule{
		ID:          id,
		Mode:        UnlockLinear,
		TotalAmount: total,
		Beneficiary: beneficiary,
	}

	switch {
	case cliff >= end:
		result.Checkpoints = []Checkpoint{{Time: cliff, Amount: total}}
	case cliff < full && full < end:
		// (cliff - start) * rate < total since cliff < full
		result.Checkpoints = []Checkpoint{
			{Time: cliff, Amount: (cliff - start) * rate},
			{Time: full, Amount: (total / rate) * rate},
			{Time: end, Amount: total},
		}
	default:
		result.Checkpoints = []Checkpoint{
			{Time: cliff, Amount: (cliff - start) * rate},
			{Time: end, Amount: total},
		}
	}

	if err := result.Verify(); err != nil {
		return nil, err
	}
	return result, nil
}

// NewStepSchedule unlocks each checkpoint's amount when its time is reached.
func NewStepSchedule(id uuid.UUID, total uint64, checkpoints []Checkpoint,
	beneficiary []byte) (*Schedule, error) {

	result := &Schedule{
		ID:          id,
		Mode:        UnlockStep,
		TotalAmount: total,
		Checkpoints: append([]Checkpoint(nil), checkpoints...),
		Beneficiary: beneficiary,
	}

	if err := result.Verify(); err != nil {
		return nil, err
	}
	return result, nil
}

// Verify checks the schedule invariants.
func (s *Schedule) Verify() error {
	if s.Mode != UnlockLinear && s.Mode != UnlockStep {
		return errors.Wrap(ErrUnknownUnlockMode, s.Mode.String())
	}
	if s.TotalAmount == 0 {
		return ErrZeroTotal
	}
	if len(s.Beneficiary) == 0 {
		return ErrMissingBeneficiary
	}
	if len(s.Checkpoints) == 0 {
		return ErrNoCheckpoints
	}
	if len(s.Checkpoints) > MaxCheckpoints {
		return errors.Wrapf(ErrTooManyCheckpoints, "%d", len(s.Checkpoints))
	}

	for i, checkpoint := range s.Checkpoints {
		if checkpoint.Amount > s.TotalAmount {
			return errors.Wrapf(ErrCheckpointOverTotal, "checkpoint %d", i)
		}
		if i == 0 {
			continue
		}
		previous := s.Checkpoints[i-1]
		if checkpoint.Time < previous.Time || checkpoint.Amount < previous.Amount {
			return errors.Wrapf(ErrCheckpointOrder, "checkpoint %d", i)
		}
	}

	if s.Checkpoints[len(s.Checkpoints)-1].Amount != s.TotalAmount {
		return ErrFinalNotTotal
	}

	return nil
}

// StartTime is the time of the first checkpoint.
func (s *Schedule) StartTime() uint64 {
	if len(s.Checkpoints) == 0 {
		return 0
	}
	return s.Checkpoints[0].Time
}

// EndTime is the time of the final checkpoint, from which the total is unlocked.
func (s *Schedule) EndTime() uint64 {
	if len(s.Checkpoints) == 0 {
		return 0
	}
	return s.Checkpoints[len(s.Checkpoints)-1].Time
}

// UnlockedAt returns the cumulative amount unlocked at time t. The schedule must be verified.
func (s *Schedule) UnlockedAt(t uint64) uint64 {
	count := len(s.Checkpoints)
	if count == 0 {
		return 0
	}

	// First checkpoint strictly after t.
	next := sort.Search(count, func(i int) bool {
		return s.Checkpoints[i].Time > t
	})

	if next == 0 {
		return 0 // before start
	}
	if next == count {
		return s.TotalAmount
	}

	from := s.Checkpoints[next-1]
	if s.Mode == UnlockStep {
		return from.Amount
	}

	to := s.Checkpoints[next]

	// from.Time <= t < to.Time so the span is never zero.
	span := new(big.Int).SetUint64(to.Time - from.Time)
	elapsed := new(big.Int).SetUint64(t - from.Time)
	delta := new(big.Int).SetUint64(to.Amount - from.Amount)

	delta.Mul(delta, elapsed)
	delta.Div(delta, span)

	return from.Amount + delta.Uint64()
}

// Equal returns true when both schedules have identical parameters.
func (s *Schedule) Equal(other *Schedule) bool {
	if s == nil || other == nil {
		return s == other
	}

	if s.ID != other.ID || s.Mode != other.Mode || s.TotalAmount != other.TotalAmount {
		return false
	}
	if !bytes.Equal(s.Beneficiary, other.Beneficiary) ||
		!bytes.Equal(s.RevocationKey, other.RevocationKey) {
		return false
	}
	if len(s.Checkpoints) != len(other.Checkpoints) {
		return false
	}
	for i, checkpoint := range s.Checkpoints {
		if checkpoint != other.Checkpoints[i] {
			return false
		}
	}

	return true
}
