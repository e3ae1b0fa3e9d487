package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionx/internal/ismp"
)

func TestGetRequestRoundTripKeepsCommitment(t *testing.T) {
	req := ismp.GetRequest{
		Source:           ismp.StateMachine{Kind: "KUSAMA", ID: 2000},
		Dest:             ismp.StateMachine{Kind: "KUSAMA", ID: 1005},
		Nonce:            7,
		From:             []byte("regionx"),
		Keys:             [][]byte{{0xaa}, {0xbb, 0xcc}},
		Height:           100,
		TimeoutTimestamp: 1_700_000_000,
	}
	body, err := json.Marshal(FromGetRequest(req))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"dest":"KUSAMA-1005"`)
	assert.Contains(t, string(body), `"0xbbcc"`)

	var decoded GetRequest
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, req.Commitment(), decoded.ToISMP().Commitment())
	assert.Equal(t, req.Commitment().String(), decoded.Commitment)
}

func TestGetResponseToISMP(t *testing.T) {
	t.Run("bad key hex", func(t *testing.T) {
		_, err := GetResponse{Values: map[string]*Hex{"0xzz": nil}}.ToISMP()
		assert.Error(t, err)
	})

	t.Run("empty values map to nil", func(t *testing.T) {
		empty := Hex{}
		resp, err := GetResponse{Values: map[string]*Hex{"0x01": &empty, "0x02": nil}}.ToISMP()
		require.NoError(t, err)
		assert.Len(t, resp.Values, 2)
		assert.Nil(t, resp.Values["\x01"])
		assert.Nil(t, resp.Values["\x02"])
	})
}

func TestHeightUpdateID(t *testing.T) {
	id, err := HeightUpdate{StateMachine: ismp.StateMachine{Kind: "KUSAMA", ID: 1005}, Consensus: "PARA"}.ID()
	require.NoError(t, err)
	assert.Equal(t, ismp.ParachainConsensusID, id.ConsensusStateID)

	_, err = HeightUpdate{Consensus: "PA"}.ID()
	assert.Error(t, err)
}
