// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

var (
	ErrOverflow     = errors.New("arithmetic overflow")
	ErrUnderflow    = errors.New("arithmetic underflow")
	ErrDivideByZero = errors.New("divide by zero")
)

// Uint is an unsigned 256-bit token amount.
// It can be used as a value without state sharing, and is encoded as a
// decimal string in JSON.
type Uint struct {
	v uint256.Int
}

var (
	_ json.Marshaler   = Uint{}
	_ json.Unmarshaler = (*Uint)(nil)
	_ rlp.Encoder      = Uint{}
	_ rlp.Decoder      = (*Uint)(nil)
)

// NewUint creates a Uint from uint64.
func NewUint(n uint64) Uint {
	var u Uint
	u.v.SetUint64(n)
	return u
}

// ZeroUint returns zero.
func ZeroUint() Uint { return Uint{} }

// FromBig creates a Uint from big.Int. It fails on negative or oversized values.
func FromBig(bi *big.Int) (Uint, error) {
	if bi.Sign() < 0 {
		return Uint{}, ErrUnderflow
	}
	var u Uint
	if overflow := u.v.SetFromBig(bi); overflow {
		return Uint{}, ErrOverflow
	}
	return u, nil
}

// ParseUint parses decimal string.
func ParseUint(s string) (Uint, error) {
	var u Uint
	if err := u.v.SetFromDecimal(s); err != nil {
		return Uint{}, fmt.Errorf("invalid uint %q: %w", s, err)
	}
	return u, nil
}

// MustParseUint parses decimal string, panic on error.
func MustParseUint(s string) Uint {
	u, err := ParseUint(s)
	if err != nil {
		panic(err)
	}
	return u
}

// IsZero returns true if u presents a zero value.
func (u Uint) IsZero() bool { return u.v.IsZero() }

// Cmp compares with another Uint.
// Returns:
//
//	-1 if u <  other
//	 0 if u == other
//	+1 if u >  other
func (u Uint) Cmp(other Uint) int { return u.v.Cmp(&other.v) }

// Lt returns u < other.
func (u Uint) Lt(other Uint) bool { return u.v.Lt(&other.v) }

// Gt returns u > other.
func (u Uint) Gt(other Uint) bool { return u.v.Gt(&other.v) }

// Add returns u + other. It panics with ErrOverflow when the sum exceeds 256 bits.
func (u Uint) Add(other Uint) Uint {
	var z Uint
	if _, overflow := z.v.AddOverflow(&u.v, &other.v); overflow {
		panic(ErrOverflow)
	}
	return z
}

// Sub returns u - other, or ErrUnderflow when other > u.
func (u Uint) Sub(other Uint) (Uint, error) {
	var z Uint
	if _, underflow := z.v.SubOverflow(&u.v, &other.v); underflow {
		return Uint{}, ErrUnderflow
	}
	return z, nil
}

// SaturatingSub returns u - other, or zero when other > u.
func (u Uint) SaturatingSub(other Uint) Uint {
	z, err := u.Sub(other)
	if err != nil {
		return Uint{}
	}
	return z
}

// Mul returns u * other. It panics with ErrOverflow when the product exceeds 256 bits.
func (u Uint) Mul(other Uint) Uint {
	var z Uint
	if _, overflow := z.v.MulOverflow(&u.v, &other.v); overflow {
		panic(ErrOverflow)
	}
	return z
}

// MulDiv returns floor(u * num / den), computed with a 512-bit intermediate product.
func (u Uint) MulDiv(num, den Uint) (Uint, error) {
	if den.IsZero() {
		return Uint{}, ErrDivideByZero
	}
	var z Uint
	if _, overflow := z.v.MulDivOverflow(&u.v, &num.v, &den.v); overflow {
		return Uint{}, ErrOverflow
	}
	return z, nil
}

// Min returns the smaller of u and other.
func (u Uint) Min(other Uint) Uint {
	if u.Lt(other) {
		return u
	}
	return other
}

// Uint64 returns the lower 64 bits.
func (u Uint) Uint64() uint64 { return u.v.Uint64() }

// ToBig converts to big.Int.
func (u Uint) ToBig() *big.Int { return u.v.ToBig() }

// String implements Stringer.
func (u Uint) String() string { return u.v.Dec() }

// MarshalJSON implements the json.Marshaler interface.
func (u Uint) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.v.Dec())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
// Both quoted and bare decimal numbers are accepted.
func (u *Uint) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	parsed, err := ParseUint(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder.
func (u Uint) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, u.v.ToBig())
}

// DecodeRLP implements rlp.Decoder.
func (u *Uint) DecodeRLP(s *rlp.Stream) error {
	bi, err := s.BigInt()
	if err != nil {
		return err
	}
	parsed, err := FromBig(bi)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
