// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package gov is the governance staking contract receiving the community fee
// of farms. Stakers hold shares of its token balance, so fees transferred in
// raise the value of every share.
package gov

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/builtin/cw20"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/builtin/shares"
	"github.com/specfarm/farmd/builtin/storage"
	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

const Kind = "gov"

type InstantiateMsg struct {
	Token yield.Address `json:"token"`
}

type UnstakeMsg struct {
	// Shares to burn, all of them when unset.
	Shares *fixed.Uint `json:"shares,omitempty"`
}

type BalanceQuery struct {
	Address yield.Address `json:"address"`
}

type BalanceResponse struct {
	Share  fixed.Uint `json:"share"`
	Amount fixed.Uint `json:"amount"`
}

type StateResponse struct {
	Token        yield.Address `json:"token"`
	TotalShare   fixed.Uint    `json:"total_share"`
	TotalBalance fixed.Uint    `json:"total_balance"`
	ExchangeRate fixed.Decimal `json:"exchange_rate"`
}

type state struct {
	token      *storage.Raw[*yield.Address]
	totalShare *storage.Raw[fixed.Uint]
	shares     *storage.Mapping[yield.Address, fixed.Uint]
}

func newState(env *xenv.Environment) *state {
	ctx := storage.NewContext(env.Store(), env.UseGas)
	return &state{
		token:      storage.NewRaw[*yield.Address](ctx, "token"),
		totalShare: storage.NewRaw[fixed.Uint](ctx, "total_share"),
		shares:     storage.NewMapping[yield.Address, fixed.Uint](ctx, "share"),
	}
}

func (s *state) getToken() (yield.Address, error) {
	token, found, err := s.token.Get()
	if err != nil {
		return yield.Address{}, errors.Wrap(err, "failed to get token")
	}
	if !found {
		return yield.Address{}, errors.New("gov not instantiated")
	}
	return *token, nil
}

type Contract struct{}

var _ xenv.Contract = Contract{}

func (Contract) Instantiate(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	var init InstantiateMsg
	if err := xenv.DecodeBody(msg, &init); err != nil {
		return nil, err
	}
	if init.Token.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "token required")
	}
	if err := newState(env).token.Upsert(&init.Token); err != nil {
		return nil, err
	}
	return xenv.NewResponse().AddAttribute("action", "instantiate"), nil
}

func (Contract) Execute(env *xenv.Environment, msg []byte) (*xenv.Response, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	s := newState(env)
	token, err := s.getToken()
	if err != nil {
		return nil, err
	}

	switch tag {
	case "receive":
		var m cw20.ReceiveMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		if env.Caller() != token {
			return nil, reverts.Errorf(reverts.Unauthorized, "only %v can be staked", token)
		}
		hook, _, err := xenv.SplitTagged(m.Msg)
		if err != nil {
			return nil, err
		}
		if hook != "stake" {
			return nil, reverts.Errorf(reverts.InvalidInput, "unknown receive hook %q", hook)
		}
		return stake(env, s, token, m.Sender, m.Amount)

	case "unstake":
		var m UnstakeMsg
		if err := xenv.DecodeBody(body, &m); err != nil {
			return nil, err
		}
		return unstake(env, s, token, m)
	}
	return nil, reverts.Errorf(reverts.InvalidInput, "unknown execute message %q", tag)
}

func stake(env *xenv.Environment, s *state, token, staker yield.Address, amount fixed.Uint) (*xenv.Response, error) {
	if amount.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "invalid zero amount")
	}
	balance, err := cw20.QueryBalance(env, token, env.Contract())
	if err != nil {
		return nil, err
	}
	// the staked tokens have already arrived
	before, err := balance.Sub(amount)
	if err != nil {
		return nil, err
	}
	total, _, err := s.totalShare.Get()
	if err != nil {
		return nil, err
	}
	minted, err := shares.ToShares(amount, before, total)
	if err != nil {
		return nil, err
	}
	if minted.IsZero() {
		return nil, reverts.Errorf(reverts.InvalidInput, "stake %v is too small to mint a share", amount)
	}

	held, found, err := s.shares.Get(staker)
	if err != nil {
		return nil, err
	}
	if err := s.shares.Set(staker, held.Add(minted), !found); err != nil {
		return nil, err
	}
	if err := s.totalShare.Upsert(total.Add(minted)); err != nil {
		return nil, err
	}
	return xenv.NewResponse().
		AddAttribute("action", "stake").
		AddAttribute("staker", staker).
		AddAttribute("amount", amount).
		AddAttribute("share", minted), nil
}

func unstake(env *xenv.Environment, s *state, token yield.Address, m UnstakeMsg) (*xenv.Response, error) {
	staker := env.Caller()
	held, found, err := s.shares.Get(staker)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, reverts.Errorf(reverts.UnknownUser, "%v has no stake", staker)
	}
	burn := held
	if m.Shares != nil {
		burn = *m.Shares
	}
	if burn.IsZero() {
		return nil, reverts.New(reverts.InvalidInput, "invalid zero share")
	}
	left, err := held.Sub(burn)
	if err != nil {
		return nil, reverts.Errorf(reverts.InsufficientBalance, "unstake %v shares, hold %v", burn, held)
	}

	balance, err := cw20.QueryBalance(env, token, env.Contract())
	if err != nil {
		return nil, err
	}
	total, _, err := s.totalShare.Get()
	if err != nil {
		return nil, err
	}
	amount, err := shares.ToAmount(burn, balance, total)
	if err != nil {
		return nil, err
	}
	if total, err = total.Sub(burn); err != nil {
		return nil, err
	}

	if left.IsZero() {
		err = s.shares.Delete(staker)
	} else {
		err = s.shares.Set(staker, left, false)
	}
	if err != nil {
		return nil, err
	}
	if err := s.totalShare.Upsert(total); err != nil {
		return nil, err
	}

	res := xenv.NewResponse().
		AddAttribute("action", "unstake").
		AddAttribute("staker", staker).
		AddAttribute("amount", amount).
		AddAttribute("share", burn)
	if !amount.IsZero() {
		payout, err := cw20.Transfer(token, staker, amount)
		if err != nil {
			return nil, err
		}
		res.AddMessage(payout)
	}
	return res, nil
}

func (Contract) Query(env *xenv.Environment, msg []byte) ([]byte, error) {
	tag, body, err := xenv.SplitTagged(msg)
	if err != nil {
		return nil, err
	}
	s := newState(env)
	token, err := s.getToken()
	if err != nil {
		return nil, err
	}
	balance, err := cw20.QueryBalance(env, token, env.Contract())
	if err != nil {
		return nil, err
	}
	total, _, err := s.totalShare.Get()
	if err != nil {
		return nil, err
	}

	switch tag {
	case "balance":
		var q BalanceQuery
		if err := xenv.DecodeBody(body, &q); err != nil {
			return nil, err
		}
		held, _, err := s.shares.Get(q.Address)
		if err != nil {
			return nil, err
		}
		amount, err := shares.ToAmount(held, balance, total)
		if err != nil {
			return nil, err
		}
		return json.Marshal(BalanceResponse{Share: held, Amount: amount})

	case "state":
		rate, err := shares.ExchangeRate(balance, total)
		if err != nil {
			return nil, err
		}
		return json.Marshal(StateResponse{Token: token, TotalShare: total, TotalBalance: balance, ExchangeRate: rate})
	}
	return nil, reverts.Errorf(reverts.InvalidInput, "unknown query %q", tag)
}
