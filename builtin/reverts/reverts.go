// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert.
type Kind string

const (
	InvalidInput        Kind = "InvalidInput"
	UnknownPool         Kind = "UnknownPool"
	UnknownUser         Kind = "UnknownUser"
	InsufficientBalance Kind = "InsufficientBalance"
	Unauthorized        Kind = "Unauthorized"
	ExternalCallFailed  Kind = "ExternalCallFailed"
)

// ErrRevert aborts the current transaction. Every write made by the
// transaction is discarded.
type ErrRevert struct {
	kind    Kind
	message string
	cause   error
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Errorf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap creates a revert of kind caused by err. The message of err is kept.
func Wrap(kind Kind, err error, context string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: context + ": " + err.Error(),
		cause:   err,
	}
}

func (e *ErrRevert) Error() string {
	return string(e.kind) + ": " + e.message
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Message() string {
	return e.message
}

func IsRevertErr(err any) bool {
	_, ok := As(err)
	return ok
}

// As extracts the revert from err's chain.
func As(err any) (*ErrRevert, bool) {
	if err == nil {
		return nil, false
	}
	e, ok := err.(error)
	if !ok {
		return nil, false
	}
	var ve *ErrRevert
	if errors.As(e, &ve) {
		return ve, true
	}
	return nil, false
}

// IsKind reports whether err, or any revert that caused it, is of the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		ve, ok := As(err)
		if !ok {
			return false
		}
		if ve.kind == kind {
			return true
		}
		err = ve.cause
	}
	return false
}
