// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(Unauthorized, "test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, "test", revert.Message())
	assert.Equal(t, Unauthorized, revert.Kind())
	assert.Equal(t, "Unauthorized: test", revert.Error())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_RevertKind(t *testing.T) {
	err := errors.Wrap(Errorf(UnknownPool, "pool %s", "0x01"), "bond")

	assert.True(t, IsRevertErr(err))
	assert.True(t, IsKind(err, UnknownPool))
	assert.False(t, IsKind(err, UnknownUser))
	assert.False(t, IsKind(fmt.Errorf("plain"), UnknownPool))

	ve, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "pool 0x01", ve.Message())
}

func Test_RevertWrap(t *testing.T) {
	inner := New(InsufficientBalance, "balance is 0")
	outer := Wrap(ExternalCallFailed, inner, "0x01")

	assert.Equal(t, "ExternalCallFailed: 0x01: InsufficientBalance: balance is 0", outer.Error())
	assert.True(t, IsKind(outer, ExternalCallFailed))
	assert.True(t, IsKind(outer, InsufficientBalance))
	assert.False(t, IsKind(outer, Unauthorized))

	plain := Wrap(ExternalCallFailed, fmt.Errorf("boom"), "0x02")
	assert.True(t, IsKind(plain, ExternalCallFailed))
	assert.False(t, IsKind(plain, InvalidInput))
}
