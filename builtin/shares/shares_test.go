// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package shares

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specfarm/farmd/fixed"
)

// pool is a minimal ledger used to check the share properties.
type pool struct {
	bond, share fixed.Uint
	users       map[int]fixed.Uint
}

func newPool() *pool { return &pool{users: map[int]fixed.Uint{}} }

func (p *pool) deposit(t *testing.T, user int, amount fixed.Uint) fixed.Uint {
	minted, err := ToShares(amount, p.bond, p.share)
	require.NoError(t, err)
	p.users[user] = p.users[user].Add(minted)
	p.bond = p.bond.Add(amount)
	p.share = p.share.Add(minted)
	return minted
}

func (p *pool) withdraw(t *testing.T, user int, share fixed.Uint) fixed.Uint {
	amount, err := ToAmount(share, p.bond, p.share)
	require.NoError(t, err)
	p.users[user], err = p.users[user].Sub(share)
	require.NoError(t, err)
	p.bond, err = p.bond.Sub(amount)
	require.NoError(t, err)
	p.share, err = p.share.Sub(share)
	require.NoError(t, err)
	return amount
}

func (p *pool) compound(amount fixed.Uint) {
	p.bond = p.bond.Add(amount)
}

func TestBootstrapIsOneToOne(t *testing.T) {
	for _, x := range []uint64{1, 7, 1000, 1 << 50} {
		minted, err := ToShares(fixed.NewUint(x), fixed.Uint{}, fixed.Uint{})
		require.NoError(t, err)
		assert.Equal(t, fixed.NewUint(x), minted)
	}

	rate, err := ExchangeRate(fixed.Uint{}, fixed.Uint{})
	require.NoError(t, err)
	assert.Equal(t, fixed.OneDecimal(), rate)

	amount, err := ToAmount(fixed.NewUint(5), fixed.NewUint(10), fixed.Uint{})
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
}

func TestScenario(t *testing.T) {
	// A bonds 1000, the pool compounds 100, B bonds 550.
	p := newPool()
	assert.Equal(t, fixed.NewUint(1000), p.deposit(t, 0, fixed.NewUint(1000)))

	p.compound(fixed.NewUint(100))
	rate, err := ExchangeRate(p.bond, p.share)
	require.NoError(t, err)
	assert.Equal(t, "1.1", rate.String())

	assert.Equal(t, fixed.NewUint(500), p.deposit(t, 1, fixed.NewUint(550)))
	assert.Equal(t, fixed.NewUint(1650), p.bond)
	assert.Equal(t, fixed.NewUint(1500), p.share)

	a, err := ToAmount(p.users[0], p.bond, p.share)
	require.NoError(t, err)
	assert.Equal(t, fixed.NewUint(1100), a)

	b, err := ToAmount(p.users[1], p.bond, p.share)
	require.NoError(t, err)
	assert.Equal(t, fixed.NewUint(550), b)
}

func TestShareSumInvariant(t *testing.T) {
	f := fuzz.New().NilChance(0)
	p := newPool()

	for i := range 300 {
		var op, user uint8
		var amount uint32
		f.Fuzz(&op)
		f.Fuzz(&user)
		f.Fuzz(&amount)
		u := int(user % 5)

		switch op % 3 {
		case 0:
			if amount == 0 {
				continue
			}
			p.deposit(t, u, fixed.NewUint(uint64(amount)))
		case 1:
			held := p.users[u]
			if held.IsZero() {
				continue
			}
			burn := fixed.NewUint(uint64(amount)).Min(held)
			p.withdraw(t, u, burn)
		case 2:
			if !p.share.IsZero() {
				p.compound(fixed.NewUint(uint64(amount % 10000)))
			}
		}

		sum := fixed.Uint{}
		for _, s := range p.users {
			sum = sum.Add(s)
		}
		require.Equal(t, p.share, sum, "step %d", i)
	}
}

func TestProportionalAppreciation(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 200 {
		var a, b, reward uint32
		f.Fuzz(&a)
		f.Fuzz(&b)
		f.Fuzz(&reward)
		if a == 0 || b == 0 {
			continue
		}
		p := newPool()
		p.deposit(t, 0, fixed.NewUint(uint64(a)))
		p.deposit(t, 1, fixed.NewUint(uint64(b)))

		before := make([]fixed.Uint, 2)
		for u := range 2 {
			var err error
			before[u], err = ToAmount(p.users[u], p.bond, p.share)
			require.NoError(t, err)
		}

		p.compound(fixed.NewUint(uint64(reward)))

		for u := range 2 {
			after, err := ToAmount(p.users[u], p.bond, p.share)
			require.NoError(t, err)
			// after == floor((bond+R) * s / share); check against the exact bound
			exact, err := p.users[u].MulDiv(p.bond, p.share)
			require.NoError(t, err)
			assert.Equal(t, exact, after)
			assert.False(t, after.Lt(before[u]), "a holder's claim never shrinks on compound")
		}
	}
}

func TestRoundTripNeverProfits(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 300 {
		var seed, reward, x uint32
		f.Fuzz(&seed)
		f.Fuzz(&reward)
		f.Fuzz(&x)
		if seed == 0 || x == 0 {
			continue
		}
		p := newPool()
		p.deposit(t, 0, fixed.NewUint(uint64(seed)))
		p.compound(fixed.NewUint(uint64(reward)))

		minted, err := ToShares(fixed.NewUint(uint64(x)), p.bond, p.share)
		require.NoError(t, err)
		if minted.IsZero() {
			continue
		}
		p.deposit(t, 1, fixed.NewUint(uint64(x)))
		back := p.withdraw(t, 1, minted)
		assert.False(t, back.Gt(fixed.NewUint(uint64(x))), "deposit %d returned %s", x, back)
	}
}

func TestClaimsStayWithinBond(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 200 {
		var holders, reward uint8
		f.Fuzz(&holders)
		f.Fuzz(&reward)
		n := int(holders%5) + 1

		p := newPool()
		for u := range n {
			var amount uint32
			f.Fuzz(&amount)
			p.deposit(t, u, fixed.NewUint(uint64(amount)+1))
			p.compound(fixed.NewUint(uint64(reward)))
		}

		sum := fixed.Uint{}
		for u := range n {
			claim, err := ToAmount(p.users[u], p.bond, p.share)
			require.NoError(t, err)
			sum = sum.Add(claim)
		}
		require.False(t, sum.Gt(p.bond), "claims %s exceed bond %s", sum, p.bond)
		dust, err := p.bond.Sub(sum)
		require.NoError(t, err)
		assert.False(t, dust.Gt(fixed.NewUint(uint64(n))), "dust %s with %d holders", dust, n)
	}
}

func TestRoundTripAtWholeRate(t *testing.T) {
	f := fuzz.New().NilChance(0)
	for range 200 {
		var seed, x uint32
		var rate uint8
		f.Fuzz(&seed)
		f.Fuzz(&x)
		f.Fuzz(&rate)
		k := uint64(rate%10) + 1
		if seed == 0 || x == 0 {
			continue
		}
		p := newPool()
		p.deposit(t, 0, fixed.NewUint(uint64(seed)))
		p.compound(fixed.NewUint(uint64(seed) * (k - 1)))

		amount := fixed.NewUint(uint64(x) * k)
		minted := p.deposit(t, 1, amount)
		assert.Equal(t, fixed.NewUint(uint64(x)), minted)
		assert.Equal(t, amount, p.withdraw(t, 1, minted))
	}
}
