package keeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	processormodels "regionx/internal/processor/models"
	regionmodels "regionx/internal/regions/models"
	"regionx/pkg/domain"
)

type fakeAssignments struct {
	pending []processormodels.Assignment
	failFor map[regionmodels.RegionID]bool
	sent    []regionmodels.RegionID
	callers []domain.AccountID
	listErr error
}

func (f *fakeAssignments) PendingAssignments(context.Context) ([]processormodels.Assignment, error) {
	return f.pending, f.listErr
}

func (f *fakeAssignments) Assign(_ context.Context, caller domain.AccountID, id regionmodels.RegionID) error {
	if f.failFor[id] {
		return errors.New("transport down")
	}
	f.sent = append(f.sent, id)
	f.callers = append(f.callers, caller)
	return nil
}

type fakeRecords struct {
	unavailable []regionmodels.RegionID
	failFor     map[regionmodels.RegionID]bool
	requested   []regionmodels.RegionID
	status      regionmodels.RecordStatus
}

func (f *fakeRecords) ListByStatus(_ context.Context, status regionmodels.RecordStatus) ([]regionmodels.RegionID, error) {
	f.status = status
	return f.unavailable, nil
}

func (f *fakeRecords) RequestRegionRecord(_ context.Context, _ domain.AccountID, id regionmodels.RegionID) error {
	if f.failFor[id] {
		return errors.New("dispatch failed")
	}
	f.requested = append(f.requested, id)
	return nil
}

type deniedLease struct{}

func (deniedLease) Acquire(context.Context, time.Duration) (bool, error) { return false, nil }
func (deniedLease) Release(context.Context) error                        { return nil }

type KeeperSuite struct {
	suite.Suite
	ctx         context.Context
	assignments *fakeAssignments
	records     *fakeRecords
	payer       domain.AccountID
	r1, r2      regionmodels.RegionID
}

func TestKeeperSuite(t *testing.T) {
	suite.Run(t, new(KeeperSuite))
}

func (s *KeeperSuite) SetupTest() {
	s.ctx = context.Background()
	s.payer = domain.AccountID{9}
	s.r1 = regionmodels.RegionID{Begin: 1, Core: 0, Mask: regionmodels.CompleteMask()}
	s.r2 = regionmodels.RegionID{Begin: 2, Core: 1, Mask: regionmodels.CompleteMask()}
	s.assignments = &fakeAssignments{failFor: map[regionmodels.RegionID]bool{}}
	s.records = &fakeRecords{failFor: map[regionmodels.RegionID]bool{}}
}

func (s *KeeperSuite) keeper(opts ...Option) *Keeper {
	k, err := New(s.assignments, s.records, s.payer, opts...)
	s.Require().NoError(err)
	return k
}

func (s *KeeperSuite) TestRetriesPendingAssignments() {
	s.assignments.pending = []processormodels.Assignment{
		{RegionID: s.r1, ParaID: 2000},
		{RegionID: s.r2, ParaID: 2001},
	}
	s.assignments.failFor[s.r1] = true

	report, err := s.keeper().RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, report.AssignmentsSent)
	s.Equal(1, report.AssignmentErrors)
	s.Equal([]regionmodels.RegionID{s.r2}, s.assignments.sent)
	s.Equal([]domain.AccountID{s.payer}, s.assignments.callers)
}

func (s *KeeperSuite) TestReRequestsUnavailableRecords() {
	s.records.unavailable = []regionmodels.RegionID{s.r1, s.r2}
	s.records.failFor[s.r2] = true

	report, err := s.keeper().RunOnce(s.ctx)
	s.Require().NoError(err)
	s.Equal(regionmodels.RecordUnavailable, s.records.status)
	s.Equal(1, report.RecordsRequested)
	s.Equal(1, report.RecordErrors)
	s.Equal([]regionmodels.RegionID{s.r1}, s.records.requested)
}

func (s *KeeperSuite) TestSkipsWithoutLease() {
	s.assignments.pending = []processormodels.Assignment{{RegionID: s.r1, ParaID: 2000}}

	report, err := s.keeper(WithLease(deniedLease{}, time.Second)).RunOnce(s.ctx)
	s.Require().NoError(err)
	s.True(report.Skipped)
	s.Empty(s.assignments.sent)
}

func (s *KeeperSuite) TestListFailureAborts() {
	s.assignments.listErr = errors.New("db down")
	_, err := s.keeper().RunOnce(s.ctx)
	s.Error(err)
}

func (s *KeeperSuite) TestRunStopsWithContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	done := make(chan error, 1)
	k := s.keeper()
	go func() { done <- k.Run(ctx, "@every 1h") }()
	cancel()
	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.Fail("keeper did not stop")
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, &fakeRecords{}, domain.AccountID{})
	if err == nil {
		t.Fatal("expected error for missing assignment service")
	}
	_, err = New(&fakeAssignments{}, nil, domain.AccountID{})
	if err == nil {
		t.Fatal("expected error for missing registry")
	}
}

func TestBadSchedule(t *testing.T) {
	k, err := New(&fakeAssignments{}, &fakeRecords{}, domain.AccountID{})
	if err != nil {
		t.Fatal(err)
	}
	if err := k.Run(context.Background(), "not a schedule"); err == nil {
		t.Fatal("expected schedule error")
	}
}
