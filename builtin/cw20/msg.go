// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cw20

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/specfarm/farmd/fixed"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

type Balance struct {
	Address yield.Address `json:"address"`
	Amount  fixed.Uint    `json:"amount"`
}

type InstantiateMsg struct {
	Name            string         `json:"name"`
	Symbol          string         `json:"symbol"`
	Decimals        uint8          `json:"decimals"`
	InitialBalances []Balance      `json:"initial_balances"`
	Minter          *yield.Address `json:"minter,omitempty"`
}

type TransferMsg struct {
	Recipient yield.Address `json:"recipient"`
	Amount    fixed.Uint    `json:"amount"`
}

// SendMsg moves tokens to a contract and invokes its receive hook.
type SendMsg struct {
	Contract yield.Address   `json:"contract"`
	Amount   fixed.Uint      `json:"amount"`
	Msg      json.RawMessage `json:"msg"`
}

type MintMsg struct {
	Recipient yield.Address `json:"recipient"`
	Amount    fixed.Uint    `json:"amount"`
}

type BurnMsg struct {
	Amount fixed.Uint `json:"amount"`
}

// ReceiveMsg is the hook body delivered as {"receive":{...}} to the recipient of a send.
type ReceiveMsg struct {
	Sender yield.Address   `json:"sender"`
	Amount fixed.Uint      `json:"amount"`
	Msg    json.RawMessage `json:"msg"`
}

type BalanceQuery struct {
	Address yield.Address `json:"address"`
}

type BalanceResponse struct {
	Balance fixed.Uint `json:"balance"`
}

type TokenInfoResponse struct {
	Name        string     `json:"name"`
	Symbol      string     `json:"symbol"`
	Decimals    uint8      `json:"decimals"`
	TotalSupply fixed.Uint `json:"total_supply"`
}

// Transfer builds a transfer of amount token to recipient.
func Transfer(token, recipient yield.Address, amount fixed.Uint) (xenv.ExecuteMsg, error) {
	return xenv.NewExecuteMsg(token, xenv.Tagged("transfer", TransferMsg{Recipient: recipient, Amount: amount}))
}

// Send builds a send of amount token to contract, with hook as the receive payload.
func Send(token, contract yield.Address, amount fixed.Uint, hook any) (xenv.ExecuteMsg, error) {
	data, err := json.Marshal(hook)
	if err != nil {
		return xenv.ExecuteMsg{}, errors.Wrap(err, "encode send hook")
	}
	return xenv.NewExecuteMsg(token, xenv.Tagged("send", SendMsg{Contract: contract, Amount: amount, Msg: data}))
}

// QueryBalance returns the token balance of addr.
func QueryBalance(env *xenv.Environment, token, addr yield.Address) (fixed.Uint, error) {
	var res BalanceResponse
	if err := env.QueryJSON(token, xenv.Tagged("balance", BalanceQuery{Address: addr}), &res); err != nil {
		return fixed.Uint{}, err
	}
	return res.Balance, nil
}
