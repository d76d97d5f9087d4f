// Package mint drives one mint attempt at a time for a single project view:
// wallet connection, chain switch, on-chain price read, submission and
// confirmation.
package mint

import "fmt"

// State is the mint flow state. Exactly one holds at a time.
type State int

const (
	Idle State = iota
	ConnectingWallet
	SwitchingChain
	Submitting
	AwaitingConfirmation
	Confirmed
	Failed
)

var stateNames = map[State]string{
	Idle:                 "idle",
	ConnectingWallet:     "connecting_wallet",
	SwitchingChain:       "switching_chain",
	Submitting:           "submitting",
	AwaitingConfirmation: "awaiting_confirmation",
	Confirmed:            "confirmed",
	Failed:               "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Busy reports whether an attempt is in progress in s.
func (s State) Busy() bool {
	switch s {
	case ConnectingWallet, SwitchingChain, Submitting, AwaitingConfirmation:
		return true
	}
	return false
}
