// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package router is a fixed-price swap router. Offer tokens are delivered
// through a CW20 send carrying a zap hook and the ask token is paid out of
// the router's own inventory.
package router

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/storage"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

const Kind = "router"

// Pair quotes ask tokens per offer token. Spread is the fraction of the
// output withheld by the pool on every swap.
type Pair struct {
	OfferToken yield.Address `json:"offer_token"`
	AskToken   yield.Address `json:"ask_token"`
	Price      fixed.Decimal `json:"price"`
	Spread     fixed.Decimal `json:"spread"`
}

type InstantiateMsg struct {
	Pairs []Pair `json:"pairs"`
}

// ZapHook swaps the received tokens into ToToken and pays Receiver, or the sender when unset.
type ZapHook struct {
	ToToken   yield.Address  `json:"to_token"`
	MaxSpread *fixed.Decimal `json:"max_spread,omitempty"`
	Receiver  *yield.Address `json:"receiver,omitempty"`
}

type SimulateQuery struct {
	OfferToken yield.Address `json:"offer_token"`
	AskToken   yield.Address `json:"ask_token"`
	Amount     fixed.Uint    `json:"amount"`
}

type SimulateResponse struct {
	ReturnAmount fixed.Uint `json:"return_amount"`
	SpreadAmount fixed.Uint `json:"spread_amount"`
}

type pairState struct {
	Price  fixed.Decimal
	Spread fixed.Decimal
}

type state struct {
	owner *storage.Raw[*yield.Address]
	pairs *storage.Mapping[storage.CompositeKey, *pairState]
}

func newState(env *xenv.Environment) *state {
	ctx := storage.NewContext(env.Store(), env.UseGas)
	return &state{
		owner: storage.NewRaw[*yield.Address](ctx, "owner"),
		pairs: storage.NewMapping[storage.CompositeKey, *pairState](ctx, "pair"),
	}
}

func (s *state) setPair(p Pair) error {
	if p.Price.IsZero() {
		return reverts.New(reverts.InvalidInput, "price must be positive")
	}
	if p.Spread.Cmp(fixed.OneDecimal()) >= 0 {
		return reverts.New(reverts.InvalidInput, "spread must be below 1")
	}
	key := storage.Join(p.OfferToken, p.AskToken)
	_, found, err := s.pairs.Get(key)
	if err != nil {
		return err
	}
	return s.pairs.Set(key, &pairState{Price: p.Price, Spread: p.Spread}, !found)
}

// simulate returns the output of swapping amount and the part withheld as spread.
func (s *state) simulate(offer, ask yield.Address, amount fixed.Uint) (fixed.Uint, fixed.Uint, *pairState, error) {
	p, found, err := s.pairs.Get(storage.Join(offer, ask))
	if err != nil {
		return fixed.Uint{}, fixed.Uint{}, nil, errors.Wrap(err, "failed to get pair")
	}
	if !found {
		return fixed.Uint{}, fixed.Uint{}, nil, reverts.Errorf(reverts.InvalidInput, "no pair %v -> %v", offer, ask)
	}
	gross, err := p.Price.MulUint(amount)
	if err != nil {
		return fixed.Uint{}, fixed.Uint{}, nil, err
	}
	spread, err := p.Spread.MulUint(gross)
	if err != nil {
		return fixed.Uint{}, fixed.Uint{}, nil, err
	}
	out, err := gross.Sub(spread)
	if err != nil {
		return fixed.Uint{}, fixed.Uint{}, nil, err
	}
	return out, spread, p, nil
}

type Router struct{}

var _ xenv.Contract = Router{}

func (Router) Instantiate(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	var init InstantiateMsg
	if err := xenv.DecodeBody(msg, &init); err != nil {
		return nil, err
	}
	s := newState(env)
	owner := env.Caller()
	if err := s.owner.Upsert(&owner); err != nil {
		return nil, err
	}
	for _, p := range init.Pairs {
		if err := s.setPair(p); err != nil {
			return nil, err
		}
	}
	return xenv.NewResponse().AddAttribute("action", "instantiate").AddAttribute("pairs", len(init.Pairs)), nil
}

func (Router) Execute(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	s := newState(env)

	switch tag {
	case "receive":
		var m cw20.ReceiveMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		hookTag, hookBody, err := xenv.SplitTagged(m.Msg)
		if err != nil {
			return nil, err
		}
		if hookTag != "zap" {
			return nil, reverts.Errorf(reverts.InvalidInput, "unknown receive hook %q", hookTag)
		}
		var hook ZapHook
		if err := xenv.DecodeBody(hookBody, &hook); err != nil {
			return nil, err
		}
		return zap(env, s, m.Sender, m.Amount, hook)

	case "set_pair":
		var p Pair
		if err := xenv.DecodeBody(body, &p); err != nil {
			return nil, err
		}
		owner, _, err := s.owner.Get()
		if err != nil {
			return nil, err
		}
		if env.Caller() != *owner {
			return nil, reverts.New(reverts.Unauthorized, "only the owner can set pairs")
		}
		if err := s.setPair(p); err != nil {
			return nil, err
		}
		return xenv.NewResponse().
			AddAttribute("action", "set_pair").
			AddAttribute("price", p.Price).
			AddAttribute("spread", p.Spread), nil
	}
	return nil, reverts.Errorf(reverts.InvalidInput, "unknown execute message %q", tag)
}

func zap(env *xenv.Environment, s *state, sender yield.Address, amount fixed.Uint, hook ZapHook) (*xenv.Response, error) {
	offer := env.Caller()
	out, spread, pair, err := s.simulate(offer, hook.ToToken, amount)
	if err != nil {
		return nil, err
	}
	if hook.MaxSpread != nil && pair.Spread.Cmp(*hook.MaxSpread) > 0 {
		return nil, reverts.Errorf(reverts.InvalidInput, "max spread assertion: %v > %v", pair.Spread, *hook.MaxSpread)
	}
	if out.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "swap returns nothing")
	}
	receiver := sender
	if hook.Receiver != nil {
		receiver = *hook.Receiver
	}
	transfer, err := cw20.Transfer(hook.ToToken, receiver, out)
	if err != nil {
		return nil, err
	}
	return xenv.NewResponse().
		AddMessage(transfer).
		AddAttribute("action", "zap").
		AddAttribute("offer_amount", amount).
		AddAttribute("return_amount", out).
		AddAttribute("spread_amount", spread), nil
}

func (Router) Query(env *xenv.Environment, msg []byte) ([]byte, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	if tag != "simulate" {
		return nil, reverts.Errorf(reverts.InvalidInput, "unknown query %q", tag)
	}
	var q SimulateQuery
	if err := xenv.DecodeBody(body, &q); err != nil {
		return nil, err
	}
	out, spread, _, err := newState(env).simulate(q.OfferToken, q.AskToken, q.Amount)
	if err != nil {
		return nil, err
	}
	return json.Marshal(SimulateResponse{ReturnAmount: out, SpreadAmount: spread})
}
