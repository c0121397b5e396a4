// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/yield"
)

// ReplyOn tells the executor when to deliver the result of a sub-message back to its sender.
type ReplyOn uint8

const (
	ReplyNever ReplyOn = iota
	ReplyOnSuccess
	ReplyOnError
	ReplyAlways
)

func (r ReplyOn) String() string {
	switch r {
	case ReplyNever:
		return "never"
	case ReplyOnSuccess:
		return "success"
	case ReplyOnError:
		return "error"
	case ReplyAlways:
		return "always"
	}
	return fmt.Sprintf("ReplyOn(%d)", uint8(r))
}

// ExecuteMsg executes another contract.
type ExecuteMsg struct {
	Contract yield.Address   `json:"contract_addr"`
	Msg      json.RawMessage `json:"msg"`
}

// NewExecuteMsg encodes msg for contract.
func NewExecuteMsg(contract yield.Address, msg any) (ExecuteMsg, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return ExecuteMsg{}, errors.Wrap(err, "encode execute msg")
	}
	return ExecuteMsg{Contract: contract, Msg: data}, nil
}

// SubMsg is a message dispatched after the current entry point returns.
type SubMsg struct {
	ID      uint64     `json:"id"`
	Msg     ExecuteMsg `json:"msg"`
	ReplyOn ReplyOn    `json:"reply_on"`
}

// Attribute is a key/value pair of an event.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Event is emitted by successful executions.
type Event struct {
	Type       string        `json:"type"`
	Contract   yield.Address `json:"contract"`
	Attributes []Attribute   `json:"attributes"`
}

// Attr returns the value of the first attribute named key.
func (e Event) Attr(key string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Response is the result of an entry point.
type Response struct {
	Messages   []SubMsg    `json:"messages"`
	Attributes []Attribute `json:"attributes"`
	Data       []byte      `json:"data,omitempty"`
}

func NewResponse() *Response {
	return &Response{}
}

// AddAttribute appends an attribute, formatting v with %v.
func (r *Response) AddAttribute(key string, v any) *Response {
	r.Attributes = append(r.Attributes, Attribute{Key: key, Value: fmt.Sprint(v)})
	return r
}

// AddMessage appends a fire-and-forget message; its failure fails the transaction.
func (r *Response) AddMessage(msg ExecuteMsg) *Response {
	r.Messages = append(r.Messages, SubMsg{Msg: msg, ReplyOn: ReplyNever})
	return r
}

// AddSubMessage appends a message whose result is delivered to Reply.
func (r *Response) AddSubMessage(id uint64, msg ExecuteMsg, on ReplyOn) *Response {
	r.Messages = append(r.Messages, SubMsg{ID: id, Msg: msg, ReplyOn: on})
	return r
}

// SubMsgResult is the outcome of a sub-message.
type SubMsgResult struct {
	Events []Event `json:"events,omitempty"`
	Data   []byte  `json:"data,omitempty"`
	Err    string  `json:"error,omitempty"`
}

// Reply delivers a SubMsgResult to the contract that dispatched the sub-message.
type Reply struct {
	ID     uint64       `json:"id"`
	Result SubMsgResult `json:"result"`
}

// IsOk returns whether the sub-message succeeded.
func (r Reply) IsOk() bool { return r.Result.Err == "" }

// Contract is the entry point set of a deployed contract.
// Implementations keep no state of their own, everything lives in env.Store().
type Contract interface {
	Instantiate(env *Environment, msg []byte) (*Response, error)
	Execute(env *Environment, msg []byte) (*Response, error)
	Query(env *Environment, msg []byte) ([]byte, error)
}

// Replier receives sub-message results.
type Replier interface {
	Reply(env *Environment, reply Reply) (*Response, error)
}

// Migrator upgrades the persisted layout of a contract.
type Migrator interface {
	Migrate(env *Environment, msg []byte) (*Response, error)
}

// SplitTagged splits an externally tagged message `{"tag":{...}}` into its tag and body.
func SplitTagged(msg []byte) (string, json.RawMessage, error) {
	var m map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(msg))
	if err := dec.Decode(&m); err != nil {
		return "", nil, reverts.Errorf(reverts.InvalidInput, "malformed message: %v", err)
	}
	if len(m) != 1 {
		return "", nil, reverts.Errorf(reverts.InvalidInput, "message must have exactly one variant, got %d", len(m))
	}
	for tag, body := range m {
		return tag, body, nil
	}
	return "", nil, nil
}

// DecodeBody strictly decodes a message body into v.
func DecodeBody(body json.RawMessage, v any) error {
	if len(body) == 0 || string(body) == "null" {
		body = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return reverts.Errorf(reverts.InvalidInput, "invalid message body: %v", err)
	}
	return nil
}

// Tagged wraps body under tag, e.g. Tagged("bond", x) encodes as {"bond":x}.
func Tagged(tag string, body any) map[string]any {
	if body == nil {
		body = struct{}{}
	}
	return map[string]any{tag: body}
}
