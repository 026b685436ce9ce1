package vesting

import (
	"fmt"

	"github.com/pkg/errors"
)

// RejectCode identifies why a claim was rejected.
type RejectCode uint8

const (
	RejectDecodeError           RejectCode = 1
	RejectClaimExceedsVested    RejectCode = 2
	RejectClaimExceedsTotal     RejectCode = 3
	RejectMalformedContinuation RejectCode = 4
	RejectBalanceNotConserved   RejectCode = 5
	RejectUnauthorizedClaimant  RejectCode = 6
	RejectReferenceTimeMismatch RejectCode = 7
)

var (
	RejectionCodes = map[RejectCode]string{
		RejectDecodeError:           "Decode Error",
		RejectClaimExceedsVested:    "Claim Exceeds Vested",
		RejectClaimExceedsTotal:     "Claim Exceeds Total",
		RejectMalformedContinuation: "Malformed Continuation",
		RejectBalanceNotConserved:   "Balance Not Conserved",
		RejectUnauthorizedClaimant:  "Unauthorized Claimant",
		RejectReferenceTimeMismatch: "Reference Time Mismatch",
	}
)

func (c RejectCode) String() string {
	name, exists := RejectionCodes[c]
	if !exists {
		return fmt.Sprintf("Unknown(%d)", uint8(c))
	}
	return name
}

// RejectError is returned by the validator for every rejected claim.
type RejectError struct {
	Code    RejectCode
	Message string
}

func NewRejectError(code RejectCode, format string, values ...interface{}) *RejectError {
	return &RejectError{
		Code:    code,
		Message: fmt.Sprintf(format, values...),
	}
}

func (e *RejectError) Error() string {
	if len(e.Message) == 0 {
		return e.Code.String()
	}
	return fmt.Sprintf("%s : %s", e.Code, e.Message)
}

// RejectCodeFromError returns the rejection code carried by err, if any.
func RejectCodeFromError(err error) (RejectCode, bool) {
	if err == nil {
		return 0, false
	}
	reject, ok := errors.Cause(err).(*RejectError)
	if !ok {
		return 0, false
	}
	return reject.Code, true
}
