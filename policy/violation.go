package policy

import (
	"errors"
	"fmt"
)

// Op names the kind of write being evaluated
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Violation is returned when the Enforcer denies a proposed write
type Violation struct {
	Op        Op
	SessionID string
	Reason    string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("%s denied for session %q: %s", v.Op, v.SessionID, v.Reason)
}

// IsDenied reports whether err carries an access policy denial
func IsDenied(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}

func deny(op Op, sessionID, reason string) error {
	return &Violation{Op: op, SessionID: sessionID, Reason: reason}
}
