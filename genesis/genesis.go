// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis deploys a set of tokens, staking protocols, routers,
// governance contracts and farms onto a runtime, and replays scenario steps
// against them.
package genesis

import (
	"os"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/specfarm/farmd/fixed"
)

// Amount is a token amount written as a decimal integer.
type Amount fixed.Uint

func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	u, err := fixed.ParseUint(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*a = Amount(u)
	return nil
}

func (a Amount) Uint() fixed.Uint { return fixed.Uint(a) }

// Rate is a human decimal such as 0.05.
type Rate fixed.Decimal

func (r *Rate) UnmarshalYAML(node *yaml.Node) error {
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d: invalid rate %q", node.Line, node.Value)
	}
	fd, err := fixed.FromShopspring(d)
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	*r = Rate(fd)
	return nil
}

func (r Rate) Decimal() fixed.Decimal { return fixed.Decimal(r) }

// Names refer to dev accounts or to contracts declared earlier in the file.

type TokenSpec struct {
	Name     string            `yaml:"name"`
	Symbol   string            `yaml:"symbol"`
	Decimals uint8             `yaml:"decimals"`
	Balances map[string]Amount `yaml:"balances"`
}

type StakingSpec struct {
	Name         string `yaml:"name"`
	RewardToken  string `yaml:"reward_token"`
	StakingToken string `yaml:"staking_token"`
}

type PairSpec struct {
	Offer  string `yaml:"offer"`
	Ask    string `yaml:"ask"`
	Price  Rate   `yaml:"price"`
	Spread Rate   `yaml:"spread"`
}

type RouterSpec struct {
	Name  string     `yaml:"name"`
	Pairs []PairSpec `yaml:"pairs"`
}

type GovSpec struct {
	Name  string `yaml:"name"`
	Token string `yaml:"token"`
}

type PoolSpec struct {
	Token      string `yaml:"token"`
	ExternalID string `yaml:"external_id"`
	StakeRatio Rate   `yaml:"stake_ratio"`
}

type FarmSpec struct {
	Name              string     `yaml:"name"`
	Adapter           string     `yaml:"adapter"`
	Staking           string     `yaml:"staking"`
	RewardToken       string     `yaml:"reward_token"`
	PairedAsset       string     `yaml:"paired_asset"`
	Router            string     `yaml:"router"`
	Governance        string     `yaml:"governance"`
	Platform          string     `yaml:"platform"`
	Controller        string     `yaml:"controller"`
	PlatformFeeRate   Rate       `yaml:"platform_fee_rate"`
	ControllerFeeRate Rate       `yaml:"controller_fee_rate"`
	CommunityFeeRate  Rate       `yaml:"community_fee_rate"`
	MaxSpread         Rate       `yaml:"max_spread"`
	Pools             []PoolSpec `yaml:"pools"`
}

// Genesis is the initial deployment of a scenario.
type Genesis struct {
	ChainID   string        `yaml:"chain_id"`
	Height    uint64        `yaml:"height"`
	Timestamp uint64        `yaml:"timestamp"`
	Owner     string        `yaml:"owner"`
	Tokens    []TokenSpec   `yaml:"tokens"`
	Staking   []StakingSpec `yaml:"staking"`
	Routers   []RouterSpec  `yaml:"routers"`
	Govs      []GovSpec     `yaml:"govs"`
	Farms     []FarmSpec    `yaml:"farms"`
}

// Scenario is a genesis followed by the steps to replay.
type Scenario struct {
	Genesis `yaml:",inline"`
	Steps   []Step `yaml:"steps"`
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if sc.Owner == "" {
		sc.Owner = "owner"
	}
	if sc.ChainID == "" {
		sc.ChainID = "farmd-dev"
	}
	return &sc, nil
}
