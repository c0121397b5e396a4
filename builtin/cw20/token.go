// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cw20

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/storage"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

const Kind = "cw20"

type tokenInfo struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply fixed.Uint
	Minter      yield.Address // zero when minting is disabled
}

type tokenStorage struct {
	info     *storage.Raw[*tokenInfo]
	balances *storage.Mapping[yield.Address, fixed.Uint]
}

func newTokenStorage(env *xenv.Environment) *tokenStorage {
	ctx := storage.NewContext(env.Store(), env.UseGas)
	return &tokenStorage{
		info:     storage.NewRaw[*tokenInfo](ctx, "token_info"),
		balances: storage.NewMapping[yield.Address, fixed.Uint](ctx, "balance"),
	}
}

func (s *tokenStorage) balance(addr yield.Address) (fixed.Uint, bool, error) {
	bal, found, err := s.balances.Get(addr)
	if err != nil {
		return fixed.Uint{}, false, errors.Wrap(err, "failed to get balance")
	}
	return bal, found, nil
}

func (s *tokenStorage) add(addr yield.Address, amount fixed.Uint) error {
	bal, found, err := s.balance(addr)
	if err != nil {
		return err
	}
	return s.balances.Set(addr, bal.Add(amount), !found)
}

func (s *tokenStorage) sub(addr yield.Address, amount fixed.Uint) error {
	bal, _, err := s.balance(addr)
	if err != nil {
		return err
	}
	left, err := bal.Sub(amount)
	if err != nil {
		return reverts.Errorf(reverts.InsufficientBalance, "balance of %v is %v, need %v", addr, bal, amount)
	}
	if left.IsZero() {
		return s.balances.Delete(addr)
	}
	return s.balances.Set(addr, left, false)
}

// Token is a fungible token contract with the CW20 message set.
type Token struct{}

var _ xenv.Contract = Token{}

func (Token) Instantiate(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	var init InstantiateMsg
	if err := xenv.DecodeBody(msg, &init); err != nil {
		return nil, err
	}
	s := newTokenStorage(env)

	info := &tokenInfo{Name: init.Name, Symbol: init.Symbol, Decimals: init.Decimals}
	if init.Minter != nil {
		info.Minter = *init.Minter
	}
	for _, b := range init.InitialBalances {
		if err := s.add(b.Address, b.Amount); err != nil {
			return nil, err
		}
		info.TotalSupply = info.TotalSupply.Add(b.Amount)
	}
	if err := s.info.Upsert(info); err != nil {
		return nil, err
	}
	return xenv.NewResponse().AddAttribute("action", "instantiate").AddAttribute("symbol", init.Symbol), nil
}

func (Token) Execute(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	s := newTokenStorage(env)

	switch tag {
	case "transfer":
		var m TransferMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		if err := move(s, env.Caller(), m.Recipient, m.Amount); err != nil {
			return nil, err
		}
		return xenv.NewResponse().
			AddAttribute("action", "transfer").
			AddAttribute("from", env.Caller()).
			AddAttribute("to", m.Recipient).
			AddAttribute("amount", m.Amount), nil

	case "send":
		var m SendMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		if err := move(s, env.Caller(), m.Contract, m.Amount); err != nil {
			return nil, err
		}
		hook, err := xenv.NewExecuteMsg(m.Contract, xenv.Tagged("receive", ReceiveMsg{
			Sender: env.Caller(),
			Amount: m.Amount,
			Msg:    m.Msg,
		}))
		if err != nil {
			return nil, err
		}
		return xenv.NewResponse().
			AddMessage(hook).
			AddAttribute("action", "send").
			AddAttribute("from", env.Caller()).
			AddAttribute("to", m.Contract).
			AddAttribute("amount", m.Amount), nil

	case "mint":
		var m MintMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		info, _, err := s.info.Get()
		if err != nil {
			return nil, err
		}
		if info.Minter.IsZero() || info.Minter != env.Caller() {
			return nil, reverts.New(reverts.Unauthorized, "only the minter can mint")
		}
		if err := s.add(m.Recipient, m.Amount); err != nil {
			return nil, err
		}
		info.TotalSupply = info.TotalSupply.Add(m.Amount)
		if err := s.info.Upsert(info); err != nil {
			return nil, err
		}
		return xenv.NewResponse().
			AddAttribute("action", "mint").
			AddAttribute("to", m.Recipient).
			AddAttribute("amount", m.Amount), nil

	case "burn":
		var m BurnMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		if err := s.sub(env.Caller(), m.Amount); err != nil {
			return nil, err
		}
		info, _, err := s.info.Get()
		if err != nil {
			return nil, err
		}
		if info.TotalSupply, err = info.TotalSupply.Sub(m.Amount); err != nil {
			return nil, err
		}
		if err := s.info.Upsert(info); err != nil {
			return nil, err
		}
		return xenv.NewResponse().
			AddAttribute("action", "burn").
			AddAttribute("from", env.Caller()).
			AddAttribute("amount", m.Amount), nil
	}
	return nil, reverts.Errorf(reverts.InvalidInput, "unknown execute message %q", tag)
}

func move(s *tokenStorage, from, to yield.Address, amount fixed.Uint) error {
	if amount.IsZero() {
		return reverts.New(reverts.InvalidInput, "invalid zero amount")
	}
	if err := s.sub(from, amount); err != nil {
		return err
	}
	return s.add(to, amount)
}

func (Token) Query(env *xenv.Environment, msg []byte) ([]byte, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	s := newTokenStorage(env)

	switch tag {
	case "balance":
		var q BalanceQuery
		if err := xenv.DecodeBody(body, &q); err != nil {
			return nil, err
		}
		bal, _, err := s.balance(q.Address)
		if err != nil {
			return nil, err
		}
		return json.Marshal(BalanceResponse{Balance: bal})

	case "token_info":
		info, _, err := s.info.Get()
		if err != nil {
			return nil, err
		}
		return json.Marshal(TokenInfoResponse{
			Name:        info.Name,
			Symbol:      info.Symbol,
			Decimals:    info.Decimals,
			TotalSupply: info.TotalSupply,
		})
	}
	return nil, reverts.Errorf(reverts.InvalidInput, "unknown query %q", tag)
}
