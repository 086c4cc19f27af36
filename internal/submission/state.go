package submission

import (
	"fmt"

	"github.com/noah-isme/toko-storefront/internal/checkout"
	"github.com/noah-isme/toko-storefront/internal/orderapi"
)

// State is the submission lifecycle position.
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText renders the state name in JSON payloads.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// accepts reports whether Submit may start from s.
func (s State) accepts() bool {
	return s == Idle || s == Failed
}

// Status is a point-in-time view of the controller.
type Status struct {
	State        State                     `json:"state"`
	Reason       string                    `json:"reason,omitempty"`
	Confirmation *orderapi.Confirmation    `json:"confirmation,omitempty"`
	Errors       map[checkout.Field]string `json:"errors,omitempty"`
	Redirect     string                    `json:"redirect,omitempty"`
}

// Busy reports whether a submission is in flight.
func (s Status) Busy() bool {
	return s.State == Validating || s.State == Submitting
}
