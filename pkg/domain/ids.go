package domain

import (
	"encoding/hex"
	"strings"

	dErrors "regionx/pkg/domain-errors"
)

// AccountID is a 32-byte chain account identifier.
type AccountID [32]byte

// Timeslice is the coretime scheduling unit (80 relay blocks).
type Timeslice uint32

// CoreIndex identifies a core on the relay chain.
type CoreIndex uint16

// ParaID identifies a parachain (task).
type ParaID uint32

// OrderID is the sequential identifier of a crowdfunded order.
type OrderID uint32

// ParseAccountID parses the "0x"-prefixed hex form of an account.
func ParseAccountID(s string) (AccountID, error) {
	var a AccountID
	raw, ok := strings.CutPrefix(s, "0x")
	if !ok {
		return a, dErrors.New(dErrors.CodeInvalidInput, "account id must be 0x-prefixed hex")
	}
	if len(raw) != 64 {
		return a, dErrors.New(dErrors.CodeInvalidInput, "account id must be 32 bytes")
	}
	if _, err := hex.Decode(a[:], []byte(raw)); err != nil {
		return a, dErrors.New(dErrors.CodeInvalidInput, "account id is not valid hex")
	}
	return a, nil
}

// AccountFromBytes copies a 32-byte slice into an AccountID.
func AccountFromBytes(b []byte) (AccountID, error) {
	var a AccountID
	if len(b) != len(a) {
		return a, dErrors.New(dErrors.CodeInvalidInput, "account id must be 32 bytes")
	}
	copy(a[:], b)
	return a, nil
}

func (a AccountID) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a AccountID) IsZero() bool {
	return a == AccountID{}
}

func (a AccountID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *AccountID) UnmarshalText(b []byte) error {
	parsed, err := ParseAccountID(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
