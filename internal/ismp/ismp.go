// Package ismp models the interoperable state machine messaging surface the
// service depends on: dispatching GET requests for remote storage, and the
// callbacks that deliver their responses and timeouts.
package ismp

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"

	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
)

// StateMachine identifies a chain, e.g. KUSAMA-1005.
type StateMachine struct {
	Kind string
	ID   uint32
}

func (s StateMachine) String() string {
	return fmt.Sprintf("%s-%d", s.Kind, s.ID)
}

// ParseStateMachine parses the KIND-ID form.
func ParseStateMachine(s string) (StateMachine, error) {
	kind, id, ok := strings.Cut(s, "-")
	if !ok || kind == "" {
		return StateMachine{}, fmt.Errorf("state machine %q: expected KIND-ID", s)
	}
	n, err := strconv.ParseUint(id, 10, 32)
	if err != nil {
		return StateMachine{}, fmt.Errorf("state machine %q: %w", s, err)
	}
	return StateMachine{Kind: strings.ToUpper(kind), ID: uint32(n)}, nil
}

func (s StateMachine) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *StateMachine) UnmarshalText(b []byte) error {
	parsed, err := ParseStateMachine(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParachainConsensusID is the consensus client id for parachains.
var ParachainConsensusID = [4]byte{'P', 'A', 'R', 'A'}

// StateMachineID pairs a state machine with its consensus client.
type StateMachineID struct {
	StateID          StateMachine
	ConsensusStateID [4]byte
}

// Commitment is the keccak256 hash that identifies a request.
type Commitment [32]byte

func (c Commitment) String() string {
	return "0x" + hex.EncodeToString(c[:])
}

// Request is a GetRequest or a PostRequest.
type Request interface {
	isRequest()
}

// GetRequest reads Keys from Dest's state at Height.
type GetRequest struct {
	Source           StateMachine
	Dest             StateMachine
	Nonce            uint64
	From             []byte
	Keys             [][]byte
	Height           uint64
	TimeoutTimestamp uint64
}

// PostRequest carries an opaque body between modules.
type PostRequest struct {
	Source           StateMachine
	Dest             StateMachine
	Nonce            uint64
	From             []byte
	To               []byte
	TimeoutTimestamp uint64
	Body             []byte
}

func (GetRequest) isRequest()  {}
func (PostRequest) isRequest() {}

// Commitment hashes the request fields in a fixed order.
func (r GetRequest) Commitment() Commitment {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(r.Source.String()))
	h.Write([]byte(r.Dest.String()))
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], r.Nonce)
	h.Write(n[:])
	binary.BigEndian.PutUint64(n[:], r.Height)
	h.Write(n[:])
	binary.BigEndian.PutUint64(n[:], r.TimeoutTimestamp)
	h.Write(n[:])
	h.Write(r.From)
	for _, k := range r.Keys {
		h.Write(k)
	}
	var c Commitment
	copy(c[:], h.Sum(nil))
	return c
}

// Response is a GetResponse or a PostResponse.
type Response interface {
	isResponse()
}

// GetResponse answers a GetRequest. A key present in Values with a nil value
// exists on the remote chain but holds nothing; a missing key was not returned.
type GetResponse struct {
	Get    GetRequest
	Values map[string][]byte
}

// PostResponse answers a PostRequest.
type PostResponse struct {
	Post     PostRequest
	Response []byte
}

func (GetResponse) isResponse()  {}
func (PostResponse) isResponse() {}

// Timeout is a RequestTimeout or a ResponseTimeout.
type Timeout interface {
	isTimeout()
}

// RequestTimeout reports that a request was not answered in time.
type RequestTimeout struct {
	Request Request
}

// ResponseTimeout reports that a response we sent was not delivered in time.
type ResponseTimeout struct {
	Response PostResponse
}

func (RequestTimeout) isTimeout()  {}
func (ResponseTimeout) isTimeout() {}

// DispatchGet is the caller-supplied part of a GET request.
type DispatchGet struct {
	Dest    StateMachine
	From    []byte
	Keys    [][]byte
	Height  uint64
	Timeout uint64
}

// FeeMetadata names who pays for relaying the request.
type FeeMetadata struct {
	Payer domain.AccountID
	Fee   domain.Balance
}

// Dispatcher sends GET requests to a remote state machine.
type Dispatcher interface {
	DispatchGet(ctx context.Context, get DispatchGet, fee FeeMetadata) (Commitment, error)
}

// HeightProvider reports the latest finalized height known for a state machine.
// Zero means no height is known yet.
type HeightProvider interface {
	LatestStateMachineHeight(ctx context.Context, id StateMachineID) uint64
}

// Module receives the callbacks for requests it dispatched.
type Module interface {
	OnAccept(ctx context.Context, request PostRequest) error
	OnResponse(ctx context.Context, response Response) error
	OnTimeout(ctx context.Context, timeout Timeout) error
}

// ErrUnknownRequest is returned by hosts for commitments they never issued.
var ErrUnknownRequest = dErrors.New(dErrors.CodeNotFound, "unknown_request")

// Relayer delivers responses and timeouts that arrive out of band, e.g.
// posted by a relayer over HTTP.
type Relayer interface {
	DeliverResponse(ctx context.Context, response GetResponse) error
	DeliverTimeout(ctx context.Context, request GetRequest) error
}

// DirectRelay hands deliveries straight to a module. It is used when another
// component, not a Host, tracks outstanding requests.
type DirectRelay struct {
	Module Module
}

func (d DirectRelay) DeliverResponse(ctx context.Context, response GetResponse) error {
	return d.Module.OnResponse(ctx, response)
}

func (d DirectRelay) DeliverTimeout(ctx context.Context, request GetRequest) error {
	return d.Module.OnTimeout(ctx, RequestTimeout{Request: request})
}
