// Package assigner sends the coretime chain the call that assigns a region
// to a parachain.
package assigner

import (
	"context"
	"fmt"
	"math"
	"math/bits"
	"sync"

	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
	dErrors "regionx/pkg/domain-errors"
	"regionx/pkg/scale"
)

// ErrSendFailed wraps transport failures of the remote call.
var ErrSendFailed = dErrors.New(dErrors.CodeUnavailable, "remote_call_failed")

const (
	BrokerPalletIndex uint8 = 50
	AssignCallIndex   uint8 = 10
	// FinalityFinal marks the assignment as final on the coretime chain.
	FinalityFinal uint8 = 1
)

// Weight is the execution budget bought for the remote call.
type Weight struct {
	RefTime   uint64
	ProofSize uint64
}

// AssignCallWeight rounds the broker assign call up generously.
var AssignCallWeight = Weight{RefTime: 500_000_000, ProofSize: 10_000}

// WeightToFee is a degree-one fee polynomial on ref time:
// fee = refTime * Numerator / Denominator.
type WeightToFee struct {
	Numerator   uint64
	Denominator uint64
}

// Fee saturates at the maximum balance.
func (w WeightToFee) Fee(weight Weight) domain.Balance {
	if w.Denominator == 0 {
		return 0
	}
	hi, lo := bits.Mul64(weight.RefTime, w.Numerator)
	if hi >= w.Denominator {
		return math.MaxUint64
	}
	q, _ := bits.Div64(hi, lo, w.Denominator)
	return domain.Balance(q)
}

// RemoteSender delivers an encoded call to another chain and pays fee for
// its execution. Delivery is fire and forget.
type RemoteSender interface {
	Send(ctx context.Context, dest domain.ParaID, call []byte, fee domain.Balance) error
}

type Config struct {
	CoretimeParaID domain.ParaID
	WeightToFee    WeightToFee
	FeeBuffer      domain.Balance
}

type Assigner struct {
	sender RemoteSender
	cfg    Config
}

func New(sender RemoteSender, cfg Config) (*Assigner, error) {
	if sender == nil {
		return nil, fmt.Errorf("remote sender is required")
	}
	return &Assigner{sender: sender, cfg: cfg}, nil
}

// EncodeAssignCall encodes Broker::assign(region, task, Final).
func EncodeAssignCall(id regionmodels.RegionID, paraID domain.ParaID) []byte {
	return scale.NewEncoder(2 + regionmodels.RegionIDSize + 4 + 1).
		U8(BrokerPalletIndex).
		U8(AssignCallIndex).
		Raw(id.Encode()).
		U32(uint32(paraID)).
		U8(FinalityFinal).
		Bytes()
}

// Fee is the amount attached to every assignment.
func (a *Assigner) Fee() domain.Balance {
	return a.cfg.WeightToFee.Fee(AssignCallWeight).SaturatingAdd(a.cfg.FeeBuffer)
}

// Assign sends the assignment of id to paraID.
func (a *Assigner) Assign(ctx context.Context, id regionmodels.RegionID, paraID domain.ParaID) error {
	if err := a.sender.Send(ctx, a.cfg.CoretimeParaID, EncodeAssignCall(id, paraID), a.Fee()); err != nil {
		return dErrors.Wrap(err, ErrSendFailed.Code, ErrSendFailed.Message)
	}
	return nil
}

// Sent is a call captured by Recorder.
type Sent struct {
	Dest domain.ParaID
	Call []byte
	Fee  domain.Balance
}

// Recorder is an in-memory RemoteSender for development and tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Sent
	fail error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailWith makes subsequent sends return err; nil restores success.
func (r *Recorder) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fail = err
}

func (r *Recorder) Send(_ context.Context, dest domain.ParaID, call []byte, fee domain.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.sent = append(r.sent, Sent{Dest: dest, Call: append([]byte(nil), call...), Fee: fee})
	return nil
}

func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}
