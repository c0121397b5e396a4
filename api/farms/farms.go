// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package farms serves the farm queries as REST resources.
package farms

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/specfarm/farmd/api/utils"
	"github.com/specfarm/farmd/builtin/farm"
	"github.com/specfarm/farmd/cache"
	"github.com/specfarm/farmd/xenv"
	"github.com/specfarm/farmd/yield"
)

type Farms struct {
	querier  cache.Querier
	resolver utils.Resolver
}

func New(querier cache.Querier, resolver utils.Resolver) *Farms {
	return &Farms{querier: querier, resolver: resolver}
}

func (f *Farms) param(req *http.Request, name string) (yield.Address, error) {
	addr, err := utils.ParseAddress(mux.Vars(req)[name], f.resolver)
	if err != nil {
		return yield.Address{}, utils.BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}

// query forwards a tagged farm query and relays the answer as is.
func (f *Farms) query(w http.ResponseWriter, req *http.Request, tag string, body any) error {
	addr, err := f.param(req, "farm")
	if err != nil {
		return err
	}
	msg, err := json.Marshal(xenv.Tagged(tag, body))
	if err != nil {
		return err
	}
	out, err := f.querier.QueryRaw(addr, msg)
	if err != nil {
		return utils.ContractError(err)
	}
	return utils.WriteRawJSON(w, out)
}

func (f *Farms) handleGetConfig(w http.ResponseWriter, req *http.Request) error {
	return f.query(w, req, "config", nil)
}

func (f *Farms) handleGetInfo(w http.ResponseWriter, req *http.Request) error {
	return f.query(w, req, "contract_info", nil)
}

func (f *Farms) handleGetPools(w http.ResponseWriter, req *http.Request) error {
	return f.query(w, req, "pools", nil)
}

func (f *Farms) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	token, err := f.param(req, "token")
	if err != nil {
		return err
	}
	return f.query(w, req, "pool", farm.PoolQuery{StakingToken: token})
}

func (f *Farms) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	staker, err := f.param(req, "staker")
	if err != nil {
		return err
	}
	q := farm.RewardInfoQuery{Staker: staker}
	if s := req.URL.Query().Get("token"); s != "" {
		token, err := utils.ParseAddress(s, f.resolver)
		if err != nil {
			return utils.BadRequest(errors.WithMessage(err, "token"))
		}
		q.StakingToken = &token
	}
	return f.query(w, req, "reward_info", q)
}

func (f *Farms) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{farm}/config").
		Methods(http.MethodGet).
		Name("GET /farms/{farm}/config").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetConfig))
	sub.Path("/{farm}/info").
		Methods(http.MethodGet).
		Name("GET /farms/{farm}/info").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetInfo))
	sub.Path("/{farm}/pools").
		Methods(http.MethodGet).
		Name("GET /farms/{farm}/pools").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetPools))
	sub.Path("/{farm}/pools/{token}").
		Methods(http.MethodGet).
		Name("GET /farms/{farm}/pools/{token}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetPool))
	sub.Path("/{farm}/reward_info/{staker}").
		Methods(http.MethodGet).
		Name("GET /farms/{farm}/reward_info/{staker}").
		HandlerFunc(utils.WrapHandlerFunc(f.handleGetRewards))
}
