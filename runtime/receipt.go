// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// Receipt is the outcome of a transaction.
type Receipt struct {
	TxID     yield.Bytes32 `json:"txID"`
	Height   uint64        `json:"height"`
	Time     uint64        `json:"time"`
	Sender   yield.Address `json:"sender"`
	Contract yield.Address `json:"contract"`
	GasUsed  uint64        `json:"gasUsed"`
	Events   []xenv.Event  `json:"events"`
	Data     []byte        `json:"data,omitempty"`
	Reverted bool          `json:"reverted"`
	Error    string        `json:"error,omitempty"`
}

// EventsOf returns the events emitted by contract, in emission order.
func (r *Receipt) EventsOf(contract yield.Address) []xenv.Event {
	var out []xenv.Event
	for _, ev := range r.Events {
		if ev.Contract == contract {
			out = append(out, ev)
		}
	}
	return out
}

// Attr returns the first attribute named key emitted by contract.
func (r *Receipt) Attr(contract yield.Address, key string) (string, bool) {
	for _, ev := range r.EventsOf(contract) {
		if v, ok := ev.Attr(key); ok {
			return v, true
		}
	}
	return "", false
}
