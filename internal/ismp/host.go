package ismp

import (
	"context"
	"sync"

	"regionx/pkg/platform/tx"
)

// Host is an in-process messaging host. It issues commitments, remembers
// outstanding GET requests and lets the caller play the relayer by delivering
// responses and timeouts to the registered module.
type Host struct {
	mu       sync.Mutex
	source   StateMachine
	nonce    uint64
	pending  map[Commitment]GetRequest
	heights  map[StateMachineID]uint64
	module   Module
	dispatch error
}

func NewHost(source StateMachine) *Host {
	return &Host{
		source:  source,
		pending: make(map[Commitment]GetRequest),
		heights: make(map[StateMachineID]uint64),
	}
}

// Register sets the module that receives callbacks.
func (h *Host) Register(m Module) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.module = m
}

// FailDispatch makes every following dispatch fail with err. Pass nil to recover.
func (h *Host) FailDispatch(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dispatch = err
}

func (h *Host) SetHeight(id StateMachineID, height uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.heights[id] = height
}

func (h *Host) LatestStateMachineHeight(_ context.Context, id StateMachineID) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.heights[id]
}

func (h *Host) DispatchGet(ctx context.Context, get DispatchGet, _ FeeMetadata) (Commitment, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.dispatch != nil {
		return Commitment{}, h.dispatch
	}

	req := GetRequest{
		Source:           h.source,
		Dest:             get.Dest,
		Nonce:            h.nonce,
		From:             get.From,
		Keys:             get.Keys,
		Height:           get.Height,
		TimeoutTimestamp: get.Timeout,
	}
	h.nonce++
	c := req.Commitment()
	h.pending[c] = req
	tx.OnRollback(ctx, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.pending, c)
	})
	return c, nil
}

// Pending returns the outstanding request for c.
func (h *Host) Pending(c Commitment) (GetRequest, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	req, ok := h.pending[c]
	return req, ok
}

// Respond delivers a GET response for c. The request stays outstanding when
// the module rejects the response.
func (h *Host) Respond(ctx context.Context, c Commitment, values map[string][]byte) error {
	req, module, err := h.take(c)
	if err != nil {
		return err
	}
	if err := module.OnResponse(ctx, GetResponse{Get: req, Values: values}); err != nil {
		return err
	}
	h.forget(c)
	return nil
}

// Expire delivers a request timeout for c.
func (h *Host) Expire(ctx context.Context, c Commitment) error {
	req, module, err := h.take(c)
	if err != nil {
		return err
	}
	if err := module.OnTimeout(ctx, RequestTimeout{Request: req}); err != nil {
		return err
	}
	h.forget(c)
	return nil
}

func (h *Host) take(c Commitment) (GetRequest, Module, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	req, ok := h.pending[c]
	if !ok || h.module == nil {
		return GetRequest{}, nil, ErrUnknownRequest
	}
	return req, h.module, nil
}

func (h *Host) forget(c Commitment) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.pending, c)
}

// DeliverResponse routes a relayed response by its request's commitment.
func (h *Host) DeliverResponse(ctx context.Context, response GetResponse) error {
	return h.Respond(ctx, response.Get.Commitment(), response.Values)
}

func (h *Host) DeliverTimeout(ctx context.Context, request GetRequest) error {
	return h.Expire(ctx, request.Commitment())
}
