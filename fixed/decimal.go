// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Precision is the number of fractional digits a Decimal carries.
const Precision = 18

var decimalFraction = new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(Precision))

// Decimal is a non-negative fixed-point number with 18 fractional digits.
// All operations truncate toward zero.
type Decimal struct {
	atomics uint256.Int
}

var (
	_ json.Marshaler   = Decimal{}
	_ json.Unmarshaler = (*Decimal)(nil)
	_ rlp.Encoder      = Decimal{}
	_ rlp.Decoder      = (*Decimal)(nil)
)

// ZeroDecimal returns 0.
func ZeroDecimal() Decimal { return Decimal{} }

// OneDecimal returns 1.
func OneDecimal() Decimal {
	var d Decimal
	d.atomics.Set(decimalFraction)
	return d
}

// NewDecimalFromAtomics creates a Decimal from its raw scaled representation.
func NewDecimalFromAtomics(atomics Uint) Decimal {
	return Decimal{atomics: atomics.v}
}

// NewDecimalFromRatio returns floor(num / den) as Decimal.
func NewDecimalFromRatio(num, den Uint) (Decimal, error) {
	if den.IsZero() {
		return Decimal{}, ErrDivideByZero
	}
	var d Decimal
	if _, overflow := d.atomics.MulDivOverflow(&num.v, decimalFraction, &den.v); overflow {
		return Decimal{}, ErrOverflow
	}
	return d, nil
}

// ParseDecimal parses a human decimal string such as "0.05" or "1.5".
// More than 18 fractional digits are rejected rather than rounded.
func ParseDecimal(s string) (Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Decimal{}, fmt.Errorf("invalid decimal %q: %w", s, err)
	}
	return FromShopspring(d)
}

// MustParseDecimal parses decimal string, panic on error.
func MustParseDecimal(s string) Decimal {
	d, err := ParseDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

// FromShopspring converts an arbitrary precision decimal into Decimal exactly.
func FromShopspring(d decimal.Decimal) (Decimal, error) {
	if d.IsNegative() {
		return Decimal{}, fmt.Errorf("negative decimal %s", d.String())
	}
	scaled := d.Shift(Precision)
	if !scaled.Equal(scaled.Truncate(0)) {
		return Decimal{}, fmt.Errorf("decimal %s exceeds %d fractional digits", d.String(), Precision)
	}
	var out Decimal
	if overflow := out.atomics.SetFromBig(scaled.BigInt()); overflow {
		return Decimal{}, ErrOverflow
	}
	return out, nil
}

// Atomics returns the raw scaled representation.
func (d Decimal) Atomics() Uint { return Uint{v: d.atomics} }

// IsZero returns true if d is 0.
func (d Decimal) IsZero() bool { return d.atomics.IsZero() }

// Cmp compares with another Decimal.
func (d Decimal) Cmp(other Decimal) int { return d.atomics.Cmp(&other.atomics) }

// Add returns d + other. It panics with ErrOverflow on overflow.
func (d Decimal) Add(other Decimal) Decimal {
	var z Decimal
	if _, overflow := z.atomics.AddOverflow(&d.atomics, &other.atomics); overflow {
		panic(ErrOverflow)
	}
	return z
}

// Sub returns d - other, or ErrUnderflow when other > d.
func (d Decimal) Sub(other Decimal) (Decimal, error) {
	var z Decimal
	if _, underflow := z.atomics.SubOverflow(&d.atomics, &other.atomics); underflow {
		return Decimal{}, ErrUnderflow
	}
	return z, nil
}

// Mul returns floor(d * other).
func (d Decimal) Mul(other Decimal) (Decimal, error) {
	var z Decimal
	if _, overflow := z.atomics.MulDivOverflow(&d.atomics, &other.atomics, decimalFraction); overflow {
		return Decimal{}, ErrOverflow
	}
	return z, nil
}

// MulUint returns floor(u * d).
func (d Decimal) MulUint(u Uint) (Uint, error) {
	var z Uint
	if _, overflow := z.v.MulDivOverflow(&u.v, &d.atomics, decimalFraction); overflow {
		return Uint{}, ErrOverflow
	}
	return z, nil
}

// String renders d without trailing zeros, e.g. "1", "0.05".
func (d Decimal) String() string {
	var whole, frac uint256.Int
	whole.DivMod(&d.atomics, decimalFraction, &frac)
	if frac.IsZero() {
		return whole.Dec()
	}
	fs := frac.Dec()
	fs = strings.Repeat("0", Precision-len(fs)) + fs
	return whole.Dec() + "." + strings.TrimRight(fs, "0")
}

// MarshalJSON implements the json.Marshaler interface.
func (d Decimal) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Decimal) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDecimal(string(bytes.Trim(data, `"`)))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// EncodeRLP implements rlp.Encoder.
func (d Decimal) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, d.atomics.ToBig())
}

// DecodeRLP implements rlp.Decoder.
func (d *Decimal) DecodeRLP(s *rlp.Stream) error {
	var u Uint
	if err := u.DecodeRLP(s); err != nil {
		return err
	}
	d.atomics = u.v
	return nil
}
