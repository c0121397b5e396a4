// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

// Event is an indexed contract event.
type Event struct {
	TxID       yield.Bytes32    `json:"txID"`
	Height     uint64           `json:"height"`
	Time       uint64           `json:"time"`
	Index      uint32           `json:"index"`
	Sender     yield.Address    `json:"sender"`
	Contract   yield.Address    `json:"contract"`
	Type       string           `json:"type"`
	Action     string           `json:"action"`
	Attributes []xenv.Attribute `json:"attributes"`
}

// FromReceipt flattens the events of a committed receipt. Reverted receipts
// carry no events and yield nothing.
func FromReceipt(r *runtime.Receipt) []*Event {
	if r.Reverted {
		return nil
	}
	events := make([]*Event, 0, len(r.Events))
	for i, ev := range r.Events {
		action, _ := ev.Attr("action")
		events = append(events, &Event{
			TxID:       r.TxID,
			Height:     r.Height,
			Time:       r.Time,
			Index:      uint32(i),
			Sender:     r.Sender,
			Contract:   ev.Contract,
			Type:       ev.Type,
			Action:     action,
			Attributes: ev.Attributes,
		})
	}
	return events
}
