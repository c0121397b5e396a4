// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb indexes the events of executed transactions in sqlite.
package eventdb

import (
	"database/sql"
	"encoding/json"

	"github.com/ethereum/go-ethereum/log"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/yield"
)

var logger = log.New("pkg", "eventdb")

const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	txID BLOB NOT NULL,
	eventIndex INTEGER NOT NULL,
	height INTEGER NOT NULL,
	time INTEGER NOT NULL,
	sender BLOB NOT NULL,
	contract BLOB NOT NULL,
	type TEXT NOT NULL,
	action TEXT NOT NULL,
	attributes TEXT NOT NULL,
	PRIMARY KEY (txID, eventIndex)
);
CREATE INDEX IF NOT EXISTS idx_event_height ON event(height, txID, eventIndex);
CREATE INDEX IF NOT EXISTS idx_event_contract ON event(contract, height);`

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type OrderType string

const (
	ASC  OrderType = "asc"
	DESC OrderType = "desc"
)

type Range struct {
	Unit RangeType `json:"unit"`
	From uint64    `json:"from"`
	To   uint64    `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

// Filter selects events. Unset fields match everything.
type Filter struct {
	Contract *yield.Address `json:"contract"`
	Sender   *yield.Address `json:"sender"`
	Action   string         `json:"action"`
	Order    OrderType      `json:"order"` // default asc
	Range    *Range         `json:"range"`
	Options  *Options       `json:"options"`
}

// EventDB manages indexed events.
type EventDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens an event db.
func New(path string) (*EventDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps in-memory databases shared
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	s, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory sqlite db.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Insert stores events, replacing those already indexed under the same key.
func (db *EventDB) Insert(events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, event := range events {
		attrs, err := json.Marshal(event.Attributes)
		if err != nil {
			tx.Rollback()
			return err
		}
		if _, err = tx.Exec("INSERT OR REPLACE INTO event(txID, eventIndex, height, time, sender, contract, type, action, attributes) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);",
			event.TxID.Bytes(),
			event.Index,
			event.Height,
			event.Time,
			event.Sender.Bytes(),
			event.Contract.Bytes(),
			event.Type,
			event.Action,
			string(attrs)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Track indexes every receipt rt produces from now on.
func (db *EventDB) Track(rt *runtime.Runtime) {
	rt.OnReceipt(func(r *runtime.Receipt) {
		if err := db.Insert(FromReceipt(r)); err != nil {
			logger.Warn("failed to index events", "tx", r.TxID.AbbrevString(), "err", err)
		}
	})
}

// Filter returns events matching filter.
func (db *EventDB) Filter(filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.query("SELECT * FROM event ORDER BY height, rowid")
	}
	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	if filter.Range != nil {
		condition := "height"
		if filter.Range.Unit == Time {
			condition = "time"
		}
		args = append(args, filter.Range.From)
		stmt += " AND " + condition + " >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, filter.Range.To)
			stmt += " AND " + condition + " <= ? "
		}
	}
	if filter.Contract != nil {
		args = append(args, filter.Contract.Bytes())
		stmt += " AND contract = ? "
	}
	if filter.Sender != nil {
		args = append(args, filter.Sender.Bytes())
		stmt += " AND sender = ? "
	}
	if filter.Action != "" {
		args = append(args, filter.Action)
		stmt += " AND action = ? "
	}

	if filter.Order == DESC {
		stmt += " ORDER BY height DESC, rowid DESC "
	} else {
		stmt += " ORDER BY height ASC, rowid ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.query(stmt, args...)
}

func (db *EventDB) query(stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			txID     []byte
			index    uint32
			height   uint64
			time     uint64
			sender   []byte
			contract []byte
			typ      string
			action   string
			attrs    string
		)
		if err := rows.Scan(&txID, &index, &height, &time, &sender, &contract, &typ, &action, &attrs); err != nil {
			return nil, err
		}
		event := &Event{
			TxID:     yield.BytesToBytes32(txID),
			Index:    index,
			Height:   height,
			Time:     time,
			Sender:   yield.BytesToAddress(sender),
			Contract: yield.BytesToAddress(contract),
			Type:     typ,
			Action:   action,
		}
		if err := json.Unmarshal([]byte(attrs), &event.Attributes); err != nil {
			return nil, errors.Wrap(err, "decode attributes")
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Path returns the db path.
func (db *EventDB) Path() string {
	return db.path
}

// SQLiteVersion returns the version of the linked sqlite library.
func (db *EventDB) SQLiteVersion() string {
	return db.sqliteVersion
}

// Close closes sqlite.
func (db *EventDB) Close() error {
	return db.db.Close()
}
