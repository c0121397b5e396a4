// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package contracts

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/api/utils"
	"github.com/specfarm/farmd/builtin/reverts"
	"github.com/specfarm/farmd/cache"
	"github.com/specfarm/farmd/runtime"
	"github.com/specfarm/farmd/yield"
)

// ExecuteRequest runs msg against a contract on behalf of sender.
type ExecuteRequest struct {
	Sender string          `json:"sender"`
	Msg    json.RawMessage `json:"msg"`
}

type Contracts struct {
	rt       *runtime.Runtime
	querier  cache.Querier
	resolver utils.Resolver
	execute  bool
}

// New creates the contracts api. Queries go through querier, which may be a cache
// in front of rt. Execution is mounted only when execute is set.
func New(rt *runtime.Runtime, querier cache.Querier, resolver utils.Resolver, execute bool) *Contracts {
	if querier == nil {
		querier = rt
	}
	return &Contracts{rt: rt, querier: querier, resolver: resolver, execute: execute}
}

func (c *Contracts) address(req *http.Request) (yield.Address, error) {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"], c.resolver)
	if err != nil {
		return yield.Address{}, utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

func (c *Contracts) handleList(w http.ResponseWriter, req *http.Request) error {
	infos, err := c.rt.Contracts()
	if err != nil {
		return err
	}
	if infos == nil {
		infos = []*runtime.ContractInfo{}
	}
	return utils.WriteJSON(w, infos)
}

func (c *Contracts) handleGet(w http.ResponseWriter, req *http.Request) error {
	addr, err := c.address(req)
	if err != nil {
		return err
	}
	info, err := c.rt.Contract(addr)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, info)
}

func (c *Contracts) handleQuery(w http.ResponseWriter, req *http.Request) error {
	addr, err := c.address(req)
	if err != nil {
		return err
	}
	var body []byte
	if req.Method == http.MethodGet {
		body = []byte(req.URL.Query().Get("msg"))
	} else if body, err = io.ReadAll(req.Body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if !json.Valid(body) {
		return utils.BadRequest(errors.New("msg: invalid json"))
	}
	out, err := c.querier.QueryRaw(addr, body)
	if err != nil {
		return utils.ContractError(err)
	}
	return utils.WriteRawJSON(w, out)
}

func (c *Contracts) handleExecute(w http.ResponseWriter, req *http.Request) error {
	addr, err := c.address(req)
	if err != nil {
		return err
	}
	var exec ExecuteRequest
	if err := utils.ParseJSON(req.Body, &exec); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	sender, err := utils.ParseAddress(exec.Sender, c.resolver)
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "sender"))
	}
	if len(exec.Msg) == 0 {
		return utils.BadRequest(errors.New("msg: required"))
	}
	// reverted receipts are answers too
	receipt, err := c.rt.ExecuteRaw(sender, addr, exec.Msg)
	if receipt == nil {
		return err
	}
	return utils.WriteJSON(w, receipt)
}

func (c *Contracts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /contracts").
		HandlerFunc(utils.WrapHandlerFunc(c.handleList))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /contracts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(c.handleGet))
	sub.Path("/{address}/query").
		Methods(http.MethodGet).
		Name("GET /contracts/{address}/query").
		HandlerFunc(utils.WrapHandlerFunc(c.handleQuery))
	sub.Path("/{address}/query").
		Methods(http.MethodPost).
		Name("POST /contracts/{address}/query").
		HandlerFunc(utils.WrapHandlerFunc(c.handleQuery))
	if c.execute {
		sub.Path("/{address}/execute").
			Methods(http.MethodPost).
			Name("POST /contracts/{address}/execute").
			HandlerFunc(utils.WrapHandlerFunc(c.handleExecute))
	}
}
