package ismp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"regionx/pkg/platform/tx"
)

type recordingModule struct {
	responses []Response
	timeouts  []Timeout
	fail      error
}

func (m *recordingModule) OnAccept(context.Context, PostRequest) error { return nil }

func (m *recordingModule) OnResponse(_ context.Context, r Response) error {
	if m.fail != nil {
		return m.fail
	}
	m.responses = append(m.responses, r)
	return nil
}

func (m *recordingModule) OnTimeout(_ context.Context, t Timeout) error {
	m.timeouts = append(m.timeouts, t)
	return nil
}

type HostSuite struct {
	suite.Suite
	host   *Host
	module *recordingModule
	ctx    context.Context
	dest   StateMachine
}

func (s *HostSuite) SetupTest() {
	s.host = NewHost(StateMachine{Kind: "KUSAMA", ID: 2000})
	s.module = &recordingModule{}
	s.host.Register(s.module)
	s.ctx = context.Background()
	s.dest = StateMachine{Kind: "KUSAMA", ID: 1005}
}

func TestHostSuite(t *testing.T) {
	suite.Run(t, new(HostSuite))
}

func (s *HostSuite) dispatch() Commitment {
	c, err := s.host.DispatchGet(s.ctx, DispatchGet{Dest: s.dest, Keys: [][]byte{{1, 2}}, Height: 5, Timeout: 60}, FeeMetadata{})
	s.Require().NoError(err)
	return c
}

func (s *HostSuite) TestDispatch() {
	s.Run("each dispatch gets a distinct commitment", func() {
		a := s.dispatch()
		b := s.dispatch()
		s.NotEqual(a, b)

		req, ok := s.host.Pending(a)
		s.Require().True(ok)
		s.Equal(a, req.Commitment())
		s.Equal(uint64(5), req.Height)
	})

	s.Run("dispatch failure is returned", func() {
		boom := errors.New("boom")
		s.host.FailDispatch(boom)
		_, err := s.host.DispatchGet(s.ctx, DispatchGet{Dest: s.dest}, FeeMetadata{})
		s.ErrorIs(err, boom)
		s.host.FailDispatch(nil)
	})

	s.Run("rolled back dispatch is forgotten", func() {
		var c Commitment
		err := tx.NewMemoryRunner().RunInTx(s.ctx, func(ctx context.Context) error {
			var err error
			c, err = s.host.DispatchGet(ctx, DispatchGet{Dest: s.dest}, FeeMetadata{})
			s.Require().NoError(err)
			return errors.New("abort")
		})
		s.Require().Error(err)
		_, ok := s.host.Pending(c)
		s.False(ok)
	})
}

func (s *HostSuite) TestDelivery() {
	s.Run("response reaches the module and clears the request", func() {
		c := s.dispatch()
		s.Require().NoError(s.host.Respond(s.ctx, c, map[string][]byte{"\x01\x02": {9}}))
		s.Require().Len(s.module.responses, 1)
		_, ok := s.host.Pending(c)
		s.False(ok)
		s.ErrorIs(s.host.Respond(s.ctx, c, nil), ErrUnknownRequest)
	})

	s.Run("rejected response keeps the request outstanding", func() {
		c := s.dispatch()
		s.module.fail = errors.New("decode failed")
		s.Require().Error(s.host.Respond(s.ctx, c, nil))
		s.module.fail = nil
		_, ok := s.host.Pending(c)
		s.True(ok)
	})

	s.Run("timeout reaches the module", func() {
		c := s.dispatch()
		s.Require().NoError(s.host.Expire(s.ctx, c))
		s.Require().Len(s.module.timeouts, 1)
		rt, ok := s.module.timeouts[0].(RequestTimeout)
		s.Require().True(ok)
		_, isGet := rt.Request.(GetRequest)
		s.True(isGet)
	})
}

func (s *HostSuite) TestRelayerDelivery() {
	s.Run("host matches relayed messages by commitment", func() {
		c := s.dispatch()
		req, _ := s.host.Pending(c)
		s.Require().NoError(s.host.DeliverResponse(s.ctx, GetResponse{Get: req, Values: map[string][]byte{}}))
		s.Len(s.module.responses, 1)
		s.ErrorIs(s.host.DeliverTimeout(s.ctx, req), ErrUnknownRequest)
	})

	s.Run("direct relay skips request tracking", func() {
		module := &recordingModule{}
		var relay Relayer = DirectRelay{Module: module}
		req := GetRequest{Dest: s.dest, Keys: [][]byte{{1}}}
		s.Require().NoError(relay.DeliverResponse(s.ctx, GetResponse{Get: req}))
		s.Require().NoError(relay.DeliverTimeout(s.ctx, req))
		s.Len(module.responses, 1)
		s.Len(module.timeouts, 1)
	})
}

func (s *HostSuite) TestHeights() {
	id := StateMachineID{StateID: s.dest, ConsensusStateID: ParachainConsensusID}
	s.Equal(uint64(0), s.host.LatestStateMachineHeight(s.ctx, id))
	s.host.SetHeight(id, 77)
	s.Equal(uint64(77), s.host.LatestStateMachineHeight(s.ctx, id))
}

func TestParseStateMachine(t *testing.T) {
	sm, err := ParseStateMachine("kusama-1005")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sm.String() != "KUSAMA-1005" {
		t.Fatalf("unexpected %s", sm)
	}
	if _, err := ParseStateMachine("KUSAMA"); err == nil {
		t.Fatal("expected error for missing id")
	}
}
