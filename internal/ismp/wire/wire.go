// Package wire is the JSON form of ISMP messages exchanged with relayers,
// over Kafka or HTTP. Responses and timeouts echo the full request so the
// receiver can recompute its commitment.
package wire

import (
	"encoding/hex"
	"fmt"
	"strings"

	"regionx/internal/ismp"
)

// Hex is a 0x-prefixed byte string.
type Hex []byte

func (h Hex) MarshalText() ([]byte, error) {
	return []byte("0x" + hex.EncodeToString(h)), nil
}

func (h *Hex) UnmarshalText(b []byte) error {
	s := strings.TrimPrefix(string(b), "0x")
	out, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("decode hex: %w", err)
	}
	*h = out
	return nil
}

// GetRequest is the wire form of ismp.GetRequest.
type GetRequest struct {
	Source           ismp.StateMachine `json:"source"`
	Dest             ismp.StateMachine `json:"dest"`
	Nonce            uint64            `json:"nonce"`
	From             Hex               `json:"from"`
	Keys             []Hex             `json:"keys"`
	Height           uint64            `json:"height"`
	TimeoutTimestamp uint64            `json:"timeout_timestamp"`
	Commitment       string            `json:"commitment,omitempty"`
}

func FromGetRequest(r ismp.GetRequest) GetRequest {
	keys := make([]Hex, len(r.Keys))
	for i, k := range r.Keys {
		keys[i] = k
	}
	return GetRequest{
		Source:           r.Source,
		Dest:             r.Dest,
		Nonce:            r.Nonce,
		From:             r.From,
		Keys:             keys,
		Height:           r.Height,
		TimeoutTimestamp: r.TimeoutTimestamp,
		Commitment:       r.Commitment().String(),
	}
}

func (w GetRequest) ToISMP() ismp.GetRequest {
	keys := make([][]byte, len(w.Keys))
	for i, k := range w.Keys {
		keys[i] = k
	}
	return ismp.GetRequest{
		Source:           w.Source,
		Dest:             w.Dest,
		Nonce:            w.Nonce,
		From:             w.From,
		Keys:             keys,
		Height:           w.Height,
		TimeoutTimestamp: w.TimeoutTimestamp,
	}
}

// GetResponse carries the storage values read for a request. A key mapped to
// null exists remotely without a value; a key left out was not returned.
type GetResponse struct {
	Request GetRequest      `json:"request"`
	Values  map[string]*Hex `json:"values"`
}

func (w GetResponse) ToISMP() (ismp.GetResponse, error) {
	values := make(map[string][]byte, len(w.Values))
	for k, v := range w.Values {
		key, err := hex.DecodeString(strings.TrimPrefix(k, "0x"))
		if err != nil {
			return ismp.GetResponse{}, fmt.Errorf("decode response key %q: %w", k, err)
		}
		if v == nil || len(*v) == 0 {
			values[string(key)] = nil
			continue
		}
		values[string(key)] = *v
	}
	return ismp.GetResponse{Get: w.Request.ToISMP(), Values: values}, nil
}

// Timeout reports an unanswered GET request.
type Timeout struct {
	Request GetRequest `json:"request"`
}

// HeightUpdate announces a newly finalized height of a state machine.
type HeightUpdate struct {
	StateMachine ismp.StateMachine `json:"state_machine"`
	Consensus    string            `json:"consensus"`
	Height       uint64            `json:"height"`
}

func (u HeightUpdate) ID() (ismp.StateMachineID, error) {
	var c [4]byte
	if len(u.Consensus) != len(c) {
		return ismp.StateMachineID{}, fmt.Errorf("consensus id %q must be 4 characters", u.Consensus)
	}
	copy(c[:], u.Consensus)
	return ismp.StateMachineID{StateID: u.StateMachine, ConsensusStateID: c}, nil
}
