package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrPINMismatch is returned when the supplied transaction PIN does not
// match the configured hash.
var ErrPINMismatch = errors.New("transaction PIN mismatch")

// PINGate re-checks the short numeric code a user must enter before editing
// or deleting a transaction. It exists so the browser cannot skip the
// confirmation prompt; it is a UI affordance, not a security boundary - the
// real access control is the per-user row scoping enforced by the store.
type PINGate struct {
	pinHash string
}

func NewPINGate(pinHash string) *PINGate {
	return &PINGate{pinHash: pinHash}
}

// Verify compares a submitted PIN against the configured bcrypt hash.
func (g *PINGate) Verify(pin string) error {
	if pin == "" {
		return ErrPINMismatch
	}
	if err := bcrypt.CompareHashAndPassword([]byte(g.pinHash), []byte(pin)); err != nil {
		return ErrPINMismatch
	}
	return nil
}
