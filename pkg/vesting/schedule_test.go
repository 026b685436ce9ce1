package vesting

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pkg/errors"
)

var testBeneficiary = []byte{0x02, 0x01, 0x02, 0x03}

func TestUnlockedAt(t *testing.T) {
	linear, err := NewLinearSchedule(testStreamID, 0, 100, 1000, testBeneficiary)
	if err != nil {
		t.Fatalf("Failed to create linear schedule : %s", err)
	}

	step, err := NewStepSchedule(testStreamID, 1000, []Checkpoint{
		{Time: 10, Amount: 250},
		{Time: 20, Amount: 500},
		{Time: 30, Amount: 1000},
	}, testBeneficiary)
	if err != nil {
		t.Fatalf("Failed to create step schedule : %s", err)
	}

	jump, err := NewLinearSchedule(testStreamID, 10, 20, 1000, testBeneficiary)
	if err != nil {
		t.Fatalf("Failed to create schedule : %s", err)
	}
	jump.Checkpoints = []Checkpoint{
		{Time: 10, Amount: 0},
		{Time: 10, Amount: 500},
		{Time: 20, Amount: 1000},
	}
	if err := jump.Verify(); err != nil {
		t.Fatalf("Failed to verify schedule : %s", err)
	}

	tests := []struct {
		name     string
		schedule *Schedule
		time     uint64
		want     uint64
	}{
		{"linear start", linear, 0, 0},
		{"linear one", linear, 1, 10},
		{"linear half", linear, 50, 500},
		{"linear rounds down", linear, 99, 990},
		{"linear end", linear, 100, 1000},
		{"linear after end", linear, 5000, 1000},
		{"step before start", step, 9, 0},
		{"step start", step, 10, 250},
		{"step between", step, 19, 250},
		{"step second", step, 20, 500},
		{"step end", step, 30, 1000},
		{"jump before", jump, 9, 0},
		{"jump at", jump, 10, 500},
		{"jump after", jump, 15, 750},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.schedule.UnlockedAt(tt.time); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUnlockedAt_LargeAmounts(t *testing.T) {
	max := ^uint64(0)
	schedule, err := NewLinearSchedule(testStreamID, 0, max, max, testBeneficiary)
	if err != nil {
		t.Fatalf("Failed to create schedule : %s", err)
	}

	if got := schedule.UnlockedAt(max / 2); got != max/2 {
		t.Fatalf("got %d, want %d", got, max/2)
	}
	if got := schedule.UnlockedAt(max - 1); got != max-1 {
		t.Fatalf("got %d, want %d", got, max-1)
	}
}

func TestScheduleVerify(t *testing.T) {
	tests := []struct {
		name     string
		schedule Schedule
		want     error
	}{
		{
			name: "valid",
			schedule: Schedule{
				TotalAmount: 10,
				Checkpoints: []Checkpoint{{Time: 1, Amount: 0}, {Time: 2, Amount: 10}},
				Beneficiary: testBeneficiary,
			},
		},
		{
			name: "zero total",
			schedule: Schedule{
				Checkpoints: []Checkpoint{{Time: 1, Amount: 0}},
				Beneficiary: testBeneficiary,
			},
			want: ErrZeroTotal,
		},
		{
			name: "no beneficiary",
			schedule: Schedule{
				TotalAmount: 10,
				Checkpoints: []Checkpoint{{Time: 1, Amount: 10}},
			},
			want: ErrMissingBeneficiary,
		},
		{
			name: "no checkpoints",
			schedule: Schedule{
				TotalAmount: 10,
				Beneficiary: testBeneficiary,
			},
			want: ErrNoCheckpoints,
		},
		{
			name: "time decreases",
			schedule: Schedule{
				TotalAmount: 10,
				Checkpoints: []Checkpoint{{Time: 2, Amount: 0}, {Time: 1, Amount: 10}},
				Beneficiary: testBeneficiary,
			},
			want: ErrCheckpointOrder,
		},
		{
			name: "amount decreases",
			schedule: Schedule{
				TotalAmount: 10,
				Checkpoints: []Checkpoint{{Time: 1, Amount: 5}, {Time: 2, Amount: 4},
					{Time: 3, Amount: 10}},
				Beneficiary: testBeneficiary,
			},
			want: ErrCheckpointOrder,
		},
		{
			name: "amount over total",
			schedule: Schedule{
				TotalAmount: 10,
				Checkpoints: []Checkpoint{{Time: 1, Amount: 11}},
				Beneficiary: testBeneficiary,
			},
			want: ErrCheckpointOverTotal,
		},
		{
			name: "final not total",
			schedule: Schedule{
				TotalAmount: 10,
				Checkpoints: []Checkpoint{{Time: 1, Amount: 9}},
				Beneficiary: testBeneficiary,
			},
			want: ErrFinalNotTotal,
		},
		{
			name: "unknown mode",
			schedule: Schedule{
				Mode:        UnlockMode(9),
				TotalAmount: 10,
				Checkpoints: []Checkpoint{{Time: 1, Amount: 10}},
				Beneficiary: testBeneficiary,
			},
			want: ErrUnknownUnlockMode,
		},
		{
			name: "too many checkpoints",
			schedule: Schedule{
				TotalAmount: 10,
				Checkpoints: make([]Checkpoint, MaxCheckpoints+1),
				Beneficiary: testBeneficiary,
			},
			want: ErrTooManyCheckpoints,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schedule.Verify()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Failed to verify : %s", err)
				}
				return
			}
			if errors.Cause(err) != tt.want {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewStreamSchedule(t *testing.T) {
	// 10 per second from 100 with a cliff at 150, so everything is streamed by 200.
	schedule, err := NewStreamSchedule(testStreamID, 100, 150, 10, 1000, testBeneficiary)
	if err != nil {
		t.Fatalf("Failed to create stream schedule : %s", err)
	}

	if schedule.StartTime() != 150 || schedule.EndTime() != 200 {
		t.Fatalf("got start %d end %d, want 150 200", schedule.StartTime(), schedule.EndTime())
	}

	for _, tt := range []struct {
		time, want uint64
	}{
		{100, 0},
		{149, 0},
		{150, 500},
		{175, 750},
		{199, 990},
		{200, 1000},
		{300, 1000},
	} {
		if got := schedule.UnlockedAt(tt.time); got != tt.want {
			t.Errorf("At %d : got %d, want %d", tt.time, got, tt.want)
		}
	}

	// Cliff after everything is streamed.
	schedule, err = NewStreamSchedule(testStreamID, 100, 500, 10, 1000, testBeneficiary)
	if err != nil {
		t.Fatalf("Failed to create stream schedule : %s", err)
	}
	if got := schedule.UnlockedAt(499); got != 0 {
		t.Errorf("Before cliff : got %d, want 0", got)
	}
	if got := schedule.UnlockedAt(500); got != 1000 {
		t.Errorf("At cliff : got %d, want 1000", got)
	}

	// Total not a multiple of the rate still finishes.
	schedule, err = NewStreamSchedule(testStreamID, 0, 0, 10, 1005, testBeneficiary)
	if err != nil {
		t.Fatalf("Failed to create stream schedule : %s", err)
	}
	if schedule.EndTime() != 101 {
		t.Errorf("End : got %d, want 101", schedule.EndTime())
	}
	for _, tt := range []struct {
		time, want uint64
	}{
		{1, 10},
		{50, 500},
		{99, 990},
		{100, 1000},
		{101, 1005},
	} {
		if got := schedule.UnlockedAt(tt.time); got != tt.want {
			t.Errorf("Remainder at %d : got %d, want %d", tt.time, got, tt.want)
		}
	}

	// Every time unit after the cliff unlocks exactly rate until total is reached.
	for _, tt := range []struct {
		start, cliff, rate, total uint64
	}{
		{0, 0, 3, 10},
		{0, 5, 7, 100},
		{20, 21, 4, 9},
		{0, 3, 5, 16},
		{0, 0, 10, 5},
	} {
		schedule, err := NewStreamSchedule(testStreamID, tt.start, tt.cliff, tt.rate, tt.total,
			testBeneficiary)
		if err != nil {
			t.Fatalf("Failed to create stream schedule : %s", err)
		}

		for at := tt.start; at <= schedule.EndTime()+2; at++ {
			want := (at - tt.start) * tt.rate
			if want > tt.total {
				want = tt.total
			}
			if at < tt.cliff {
				want = 0
			}

			if got := schedule.UnlockedAt(at); got != want {
				t.Errorf("Rate %d total %d cliff %d at %d : got %d, want %d", tt.rate, tt.total,
					tt.cliff, at, got, want)
			}
		}
	}

	if _, err := NewStreamSchedule(testStreamID, 0, 0, 0, 1000, testBeneficiary); err != ErrZeroRate {
		t.Errorf("Zero rate : got %v, want %v", err, ErrZeroRate)
	}
}

func TestState(t *testing.T) {
	schedule, err := NewLinearSchedule(testStreamID, 0, 100, 1000, testBeneficiary)
	if err != nil {
		t.Fatalf("Failed to create schedule : %s", err)
	}

	state := NewState(schedule)
	if state.Status() != StatusActive || state.Remaining() != 1000 {
		t.Fatalf("Inception : got %s with %d remaining", state.Status(), state.Remaining())
	}

	state.ClaimedTotal = 400
	if got := state.Withdrawable(50); got != 100 {
		t.Errorf("Withdrawable at 50 : got %d, want 100", got)
	}
	if got := state.Withdrawable(10); got != 0 {
		t.Errorf("Withdrawable at 10 : got %d, want 0", got)
	}

	state.ClaimedTotal = 1000
	if state.Status() != StatusCompleted || state.Remaining() != 0 {
		t.Fatalf("Claimed : got %s with %d remaining", state.Status(), state.Remaining())
	}

	state.ClaimedTotal = 1001
	if errors.Cause(state.Verify()) != ErrClaimedOverTotal {
		t.Fatalf("Over claimed : got %v, want %v", state.Verify(), ErrClaimedOverTotal)
	}
}

func TestUnlockedAt_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("unlocked amount never decreases", prop.ForAll(
		func(timeSteps, amountSteps []uint64, step bool, t1, t2 uint64) bool {
			schedule := buildPropertySchedule(timeSteps, amountSteps, step)
			if t1 > t2 {
				t1, t2 = t2, t1
			}
			return schedule.UnlockedAt(t1) <= schedule.UnlockedAt(t2)
		},
		gen.SliceOfN(5, gen.UInt64Range(0, 100)),
		gen.SliceOfN(5, gen.UInt64Range(0, 100)),
		gen.Bool(),
		gen.UInt64Range(0, 700),
		gen.UInt64Range(0, 700),
	))

	properties.Property("nothing before start and everything at end", prop.ForAll(
		func(timeSteps, amountSteps []uint64, step bool) bool {
			schedule := buildPropertySchedule(timeSteps, amountSteps, step)
			start := schedule.StartTime()
			return schedule.UnlockedAt(start-1) == 0 &&
				schedule.UnlockedAt(schedule.EndTime()) == schedule.TotalAmount
		},
		gen.SliceOfN(5, gen.UInt64Range(0, 100)),
		gen.SliceOfN(5, gen.UInt64Range(0, 100)),
		gen.Bool(),
	))

	properties.Property("unlocked amount bounded by total", prop.ForAll(
		func(timeSteps, amountSteps []uint64, step bool, at uint64) bool {
			schedule := buildPropertySchedule(timeSteps, amountSteps, step)
			return schedule.UnlockedAt(at) <= schedule.TotalAmount
		},
		gen.SliceOfN(5, gen.UInt64Range(0, 100)),
		gen.SliceOfN(5, gen.UInt64Range(0, 100)),
		gen.Bool(),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}

// buildPropertySchedule accumulates steps into checkpoints starting at time 1 so the time before
// start does not wrap.
func buildPropertySchedule(timeSteps, amountSteps []uint64, step bool) *Schedule {
	result := &Schedule{
		ID:          testStreamID,
		Beneficiary: testBeneficiary,
	}
	if step {
		result.Mode = UnlockStep
	}

	time := uint64(1)
	var amount uint64
	for i := range timeSteps {
		time += timeSteps[i]
		if i == 0 {
			amount = 0
		} else {
			amount += amountSteps[i]
		}
		result.Checkpoints = append(result.Checkpoints, Checkpoint{Time: time, Amount: amount})
	}

	// Final checkpoint must hold a non zero total.
	last := &result.Checkpoints[len(result.Checkpoints)-1]
	last.Amount++
	result.TotalAmount = last.Amount

	return result
}
