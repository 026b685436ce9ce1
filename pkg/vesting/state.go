package vesting

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrClaimedOverTotal = errors.New("Claimed total over schedule total")
)

// Status is derived from the state and never stored.
type Status uint8

const (
	StatusActive    Status = 0
	StatusCompleted Status = 1
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// State is the public data carried by a vesting charm.
type State struct {
	Schedule     Schedule `json:"schedule"`
	ClaimedTotal uint64   `json:"claimed_total"`
}

// NewState returns the state of a schedule at inception.
func NewState(schedule *Schedule) *State {
	return &State{Schedule: *schedule}
}

// Verify checks the schedule and the claimed total against it.
func (s *State) Verify() error {
	if err := s.Schedule.Verify(); err != nil {
		return errors.Wrap(err, "schedule")
	}
	if s.ClaimedTotal > s.Schedule.TotalAmount {
		return ErrClaimedOverTotal
	}
	return nil
}

// StreamID is the identifier tagging outputs that carry this charm's tokens.
func (s *State) StreamID() uuid.UUID {
	return s.Schedule.ID
}

// Remaining is the amount still locked in the charm.
func (s *State) Remaining() uint64 {
	if s.ClaimedTotal > s.Schedule.TotalAmount {
		return 0
	}
	return s.Schedule.TotalAmount - s.ClaimedTotal
}

// Withdrawable is the amount that can be claimed at time t.
func (s *State) Withdrawable(t uint64) uint64 {
	unlocked := s.Schedule.UnlockedAt(t)
	if unlocked <= s.ClaimedTotal {
		return 0
	}
	return unlocked - s.ClaimedTotal
}

func (s *State) Status() Status {
	if s.ClaimedTotal >= s.Schedule.TotalAmount {
		return StatusCompleted
	}
	return StatusActive
}

// Equal returns true when both states have the same schedule and claimed total.
func (s *State) Equal(other *State) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.ClaimedTotal == other.ClaimedTotal && s.Schedule.Equal(&other.Schedule)
}
