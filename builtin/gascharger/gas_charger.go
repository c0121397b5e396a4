// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"errors"
	"fmt"

	"github.com/specfarm/farmd/yield"
)

// ErrOutOfGas is the panic value raised when a charge exceeds the limit.
var ErrOutOfGas = errors.New("out of gas")

// Charger meters the gas of one transaction and keeps a per-operation breakdown.
type Charger struct {
	limit          uint64
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	queryOps       uint64
	messageOps     uint64
	customGas      uint64
	totalGas       uint64
}

// New creates a charger. A zero limit means unlimited.
func New(limit uint64) *Charger {
	return &Charger{limit: limit}
}

// Charge consumes gas. It panics with ErrOutOfGas once the limit is exceeded,
// the executor recovers it into a failed transaction.
func (c *Charger) Charge(gas uint64) {
	c.totalGas += gas

	switch {
	// Handle multiples and single operations
	case gas%yield.SstoreSetGas == 0 && gas > 0:
		c.sstoreSetOps += gas / yield.SstoreSetGas

	case gas%yield.SstoreResetGas == 0 && gas > 0:
		c.sstoreResetOps += gas / yield.SstoreResetGas

	case gas == yield.MessageGas:
		c.messageOps++

	case gas == yield.QueryGas:
		c.queryOps++

	case gas%yield.SloadGas == 0 && gas > 0:
		c.sloadOps += gas / yield.SloadGas

	default:
		// Unknown/custom gas amount
		c.customGas += gas
	}

	if c.limit > 0 && c.totalGas > c.limit {
		panic(ErrOutOfGas)
	}
}

func (c *Charger) Breakdown() string {
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | QUERY: %d ops (%d gas) | MSG: %d ops (%d gas) | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*yield.SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*yield.SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*yield.SstoreResetGas,
		c.queryOps,
		c.queryOps*yield.QueryGas,
		c.messageOps,
		c.messageOps*yield.MessageGas,
		c.customGas,
		c.totalGas,
	)
}

func (c *Charger) TotalGas() uint64 {
	return c.totalGas
}

// Remaining returns the gas left before the limit, or max uint64 when unlimited.
func (c *Charger) Remaining() uint64 {
	if c.limit == 0 {
		return ^uint64(0)
	}
	if c.totalGas >= c.limit {
		return 0
	}
	return c.limit - c.totalGas
}
