package wallet

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies provider failures for message selection.
type Kind int

const (
	KindOther Kind = iota
	KindRejected
	KindInsufficientFunds
	KindWrongChain
	// KindLocked means the signing account could not be unlocked.
	KindLocked
)

func (k Kind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindWrongChain:
		return "wrong_chain"
	case KindLocked:
		return "locked"
	default:
		return "other"
	}
}

// Error is a classified wallet failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("wallet %s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	rejectedMarkers = []string{
		"user rejected",
		"user denied",
		"rejected the request",
		"request rejected",
		"denied transaction signature",
	}
	fundsMarkers = []string{
		"insufficient funds",
		"insufficient balance",
	}
	chainMarkers = []string{
		"chain mismatch",
		"wrong network",
		"unrecognized chain",
		"unsupported chain",
		"invalid chain id",
		"does not match the target chain",
	}
)

// Classify maps err to a Kind. Errors that are already *Error keep their
// kind; everything else is matched on the provider's error text.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}
	var wErr *Error
	if errors.As(err, &wErr) {
		return wErr.Kind
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, rejectedMarkers):
		return KindRejected
	case containsAny(msg, fundsMarkers):
		return KindInsufficientFunds
	case containsAny(msg, chainMarkers):
		return KindWrongChain
	}
	return KindOther
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
