// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package yield

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	require.NoError(t, err)
	assert.Equal(t, "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed", addr.String())

	_, err = ParseAddress("1x7567d83b7b8d80addcb281a71d54fc7b3364ffed")
	assert.EqualError(t, err, "invalid prefix")

	_, err = ParseAddress("0x7567")
	assert.EqualError(t, err, "invalid length")

	_, err = ParseAddress("0x7567d83b7b8d80addcb281a71d54fc7b3364ffzz")
	assert.Error(t, err)
}

func TestAddressJSON(t *testing.T) {
	type wrapper struct {
		Addr Address `json:"addr"`
	}
	in := wrapper{Addr: BytesToAddress([]byte{1, 2, 3})}
	data, err := json.Marshal(&in)
	require.NoError(t, err)
	assert.Equal(t, `{"addr":"0x0000000000000000000000000000000000010203"}`, string(data))

	var out wrapper
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)

	assert.Error(t, json.Unmarshal([]byte(`{"addr":"0x01"}`), &out))
}

func TestCreateContractAddress(t *testing.T) {
	creator := BytesToAddress([]byte("creator"))
	a1 := CreateContractAddress(creator, "farm", 1)
	a2 := CreateContractAddress(creator, "farm", 2)
	a3 := CreateContractAddress(creator, "gov", 1)

	assert.NotEqual(t, a1, a2)
	assert.NotEqual(t, a1, a3)
	assert.Equal(t, a1, CreateContractAddress(creator, "farm", 1))
	assert.False(t, a1.IsZero())
}

func TestBlake2b(t *testing.T) {
	joined := Blake2b([]byte("foobar"))
	split := Blake2b([]byte("foo"), []byte("bar"))
	assert.Equal(t, joined, split)
	assert.False(t, joined.IsZero())
}
