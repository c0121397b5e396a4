// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package node

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/specfarm/farmd/api/utils"
	"github.com/specfarm/farmd/runtime"
)

// Info describes the running node.
type Info struct {
	Version string `json:"version"`
	ChainID string `json:"chainID"`
	DataDir string `json:"dataDir"`
}

type Node struct {
	rt   *runtime.Runtime
	info Info
}

func New(rt *runtime.Runtime, info Info) *Node {
	return &Node{
		rt,
		info,
	}
}

func (n *Node) handleBlock(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, n.rt.Block())
}

func (n *Node) handleNodeInfo(w http.ResponseWriter, req *http.Request) error {
	return utils.WriteJSON(w, n.info)
}

func (n *Node) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/block").
		Methods(http.MethodGet).
		Name("GET /node/block").
		HandlerFunc(utils.WrapHandlerFunc(n.handleBlock))
	sub.Path("/info").
		Methods(http.MethodGet).
		Name("GET /node/info").
		HandlerFunc(utils.WrapHandlerFunc(n.handleNodeInfo))
}
