// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/api/utils"
	"github.com/specfarm/farmd/eventdb"
)

type Events struct {
	db    *eventdb.EventDB
	limit uint64
}

// New creates the events api. limit caps the page size, 0 for no cap.
func New(db *eventdb.EventDB, limit uint64) *Events {
	return &Events{db: db, limit: limit}
}

func (e *Events) filter(f *eventdb.Filter) ([]*eventdb.Event, error) {
	if e.limit > 0 {
		if f.Options == nil {
			f.Options = &eventdb.Options{Limit: e.limit}
		} else if f.Options.Limit > e.limit {
			return nil, errors.Errorf("options.limit exceeds the maximum allowed value of %d", e.limit)
		}
	}
	return e.db.Filter(f)
}

func (e *Events) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter eventdb.Filter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	switch filter.Order {
	case "", eventdb.ASC, eventdb.DESC:
	default:
		return utils.BadRequest(errors.Errorf("order: unknown %q", filter.Order))
	}
	events, err := e.filter(&filter)
	if err != nil {
		return utils.Forbidden(err)
	}
	if events == nil {
		events = []*eventdb.Event{}
	}
	return utils.WriteJSON(w, events)
}

func (e *Events) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /logs/event").
		HandlerFunc(utils.WrapHandlerFunc(e.handleFilter))
}
