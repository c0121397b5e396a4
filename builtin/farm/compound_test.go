// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package farm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/fixed"
)

func TestSplitReward(t *testing.T) {
	cfg := &Config{
		PlatformFeeRate:   fixed.MustParseDecimal("0.1"),
		ControllerFeeRate: fixed.MustParseDecimal("0.05"),
		CommunityFeeRate:  fixed.MustParseDecimal("0.05"),
	}

	tests := []struct {
		name       string
		ratio      string
		totalShare uint64
		claimed    uint64
		want       [5]uint64 // platform, controller, community, stake, compound
	}{
		{"no stake", "0", 1000, 1000, [5]uint64{100, 50, 50, 0, 800}},
		{"half staked", "0.5", 1000, 1000, [5]uint64{100, 50, 50, 400, 400}},
		{"fully staked", "1", 1000, 1000, [5]uint64{100, 50, 50, 800, 0}},
		{"empty pool keeps everything", "0.5", 0, 1000, [5]uint64{100, 50, 50, 0, 800}},
		{"dust goes to compound", "0.5", 10, 7, [5]uint64{0, 0, 0, 3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := &PoolInfo{StakeRatio: fixed.MustParseDecimal(tt.ratio), TotalShareAmount: fixed.NewUint(tt.totalShare)}
			sp, err := splitReward(cfg, pool, fixed.NewUint(tt.claimed))
			require.NoError(t, err)
			got := [5]uint64{sp.platform.Uint64(), sp.controller.Uint64(), sp.community.Uint64(), sp.stake.Uint64(), sp.compound.Uint64()}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StakingContract: addr(1),
			RewardToken:     addr(2),
			Router:          addr(3),
			MaxSpread:       fixed.MustParseDecimal("0.01"),
		}
	}
	require.NoError(t, valid().validate())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no staking contract", func(c *Config) { c.StakingContract = addr(0) }},
		{"no router", func(c *Config) { c.Router = addr(0) }},
		{"platform fee without platform", func(c *Config) { c.PlatformFeeRate = fixed.MustParseDecimal("0.1") }},
		{"community fee without governance", func(c *Config) { c.CommunityFeeRate = fixed.MustParseDecimal("0.1") }},
		{"fees reach one", func(c *Config) {
			c.Platform, c.Governance = addr(4), addr(5)
			c.PlatformFeeRate = fixed.MustParseDecimal("0.5")
			c.CommunityFeeRate = fixed.MustParseDecimal("0.5")
		}},
		{"spread above one", func(c *Config) { c.MaxSpread = fixed.MustParseDecimal("1.01") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			assert.Error(t, cfg.validate())
		})
	}
}
