package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"regionx/internal/chain"
	"regionx/internal/currency"
	"regionx/internal/orders/metrics"
	"regionx/internal/orders/models"
	"regionx/internal/orders/store/contribution"
	"regionx/internal/orders/store/order"
	"regionx/pkg/domain"
	"regionx/pkg/platform/events"
	eventstore "regionx/pkg/platform/events/store/memory"
	"regionx/pkg/platform/tx"
	"regionx/pkg/testutil"
)

type OrdersSuite struct {
	suite.Suite
	ctx           context.Context
	blocks        *chain.MemoryCache
	ledger        *currency.Ledger
	orders        *order.InMemory
	contributions *contribution.InMemory
	events        *eventstore.InMemoryStore
	service       *Service

	treasury domain.AccountID
	alice    domain.AccountID
	bob      domain.AccountID
	charlie  domain.AccountID
	reqs     models.Requirements
}

func TestOrdersSuite(t *testing.T) {
	suite.Run(t, new(OrdersSuite))
}

func (s *OrdersSuite) SetupTest() {
	s.ctx = context.Background()
	s.blocks = chain.NewMemoryCache()
	s.blocks.Set(0)
	clock, err := chain.NewClock(chain.NewCachedBlocks(s.blocks), chain.DefaultTimeslicePeriod)
	s.Require().NoError(err)

	s.ledger = currency.NewLedger(1)
	s.treasury = testutil.Account(42)
	fees, err := NewTreasuryFeeHandler(s.ledger, s.treasury)
	s.Require().NoError(err)

	s.orders = order.NewInMemory()
	s.contributions = contribution.NewInMemory()
	s.events = eventstore.NewInMemoryStore()
	s.service, err = New(s.orders, s.contributions, s.ledger, fees, clock, tx.NewMemoryRunner(),
		Config{CreationCost: 100, MinimumContribution: 50},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithPublisher(s.events),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	s.Require().NoError(err)

	s.alice = testutil.Account(1)
	s.bob = testutil.Account(2)
	s.charlie = testutil.Account(3)
	for _, who := range []domain.AccountID{s.alice, s.bob, s.charlie} {
		s.Require().NoError(s.ledger.Deposit(s.ctx, who, 1000))
	}
	s.reqs = models.Requirements{Begin: 0, End: 8, CoreOccupancy: 57600}
}

func (s *OrdersSuite) free(who domain.AccountID) domain.Balance {
	b, err := s.ledger.FreeBalance(s.ctx, who)
	s.Require().NoError(err)
	return b
}

func (s *OrdersSuite) reserved(who domain.AccountID) domain.Balance {
	b, err := s.ledger.ReservedBalance(s.ctx, who)
	s.Require().NoError(err)
	return b
}

func (s *OrdersSuite) setTimeslice(ts uint64) {
	s.blocks.Set(ts * chain.DefaultTimeslicePeriod)
}

func (s *OrdersSuite) create() domain.OrderID {
	id, err := s.service.CreateOrder(s.ctx, s.alice, 2000, s.reqs)
	s.Require().NoError(err)
	return id
}

// assertLedgerConsistent checks that the total equals the sum of shares.
func (s *OrdersSuite) assertLedgerConsistent(id domain.OrderID) {
	list, err := s.service.Contributions(s.ctx, id)
	s.Require().NoError(err)
	var sum domain.Balance
	for _, c := range list {
		sum += c.Amount
	}
	total, err := s.service.TotalContributions(s.ctx, id)
	s.Require().NoError(err)
	s.Equal(sum, total)
}

func (s *OrdersSuite) TestCreateOrder() {
	s.Run("charges the fee and assigns sequential ids", func() {
		first := s.create()
		second := s.create()
		s.Equal(domain.OrderID(0), first)
		s.Equal(domain.OrderID(1), second)
		s.Equal(domain.Balance(800), s.free(s.alice))
		s.Equal(domain.Balance(200), s.free(s.treasury))

		o, err := s.service.Order(s.ctx, first)
		s.Require().NoError(err)
		s.Equal(models.Order{Creator: s.alice, ParaID: 2000, Requirements: s.reqs}, *o)

		ids, err := s.service.Orders(s.ctx)
		s.Require().NoError(err)
		s.Equal([]domain.OrderID{0, 1}, ids)
	})

	s.Run("unpaid fee allocates no id", func() {
		poor := testutil.Account(9)
		_, err := s.service.CreateOrder(s.ctx, poor, 2000, s.reqs)
		s.Require().ErrorIs(err, currency.ErrInsufficientBalance)
		s.Equal(domain.OrderID(2), s.create())
	})

	s.Run("invalid requirements", func() {
		_, err := s.service.CreateOrder(s.ctx, s.alice, 2000, models.Requirements{Begin: 5, End: 5})
		s.Require().ErrorIs(err, models.ErrInvalidRequirements)
		_, err = s.service.CreateOrder(s.ctx, s.alice, 2000, models.Requirements{End: 5, CoreOccupancy: 57601})
		s.Require().ErrorIs(err, models.ErrInvalidRequirements)
	})
}

func (s *OrdersSuite) TestCancelOrder() {
	id := s.create()

	s.Run("unknown order", func() {
		s.Require().ErrorIs(s.service.CancelOrder(s.ctx, s.alice, 99), models.ErrInvalidOrderID)
	})

	s.Run("only the creator may cancel a live order", func() {
		s.Require().ErrorIs(s.service.CancelOrder(s.ctx, s.bob, id), models.ErrNotAllowed)
		s.setTimeslice(8)
		s.Require().ErrorIs(s.service.CancelOrder(s.ctx, s.bob, id), models.ErrNotAllowed)
	})

	s.Run("anyone may cancel after the end", func() {
		s.setTimeslice(9)
		defer s.setTimeslice(0)
		s.Require().NoError(s.service.CancelOrder(s.ctx, s.bob, id))
		_, err := s.service.Order(s.ctx, id)
		s.Require().ErrorIs(err, models.ErrInvalidOrderID)
	})

	s.Run("creator cancels", func() {
		other := s.create()
		s.Require().NoError(s.service.CancelOrder(s.ctx, s.alice, other))
		removed, err := s.events.ListByName(s.ctx, events.OrderRemoved)
		s.Require().NoError(err)
		s.Len(removed, 2)
	})
}

func (s *OrdersSuite) TestContribute() {
	id := s.create()

	s.Run("unknown order", func() {
		s.Require().ErrorIs(s.service.Contribute(s.ctx, s.bob, 99, 100), models.ErrInvalidOrderID)
	})

	s.Run("below minimum", func() {
		s.Require().ErrorIs(s.service.Contribute(s.ctx, s.bob, id, 49), models.ErrInvalidAmount)
	})

	s.Run("insufficient funds reserve nothing", func() {
		err := s.service.Contribute(s.ctx, s.bob, id, 1000)
		s.Require().ErrorIs(err, currency.ErrInsufficientBalance)
		amount, err := s.service.Contribution(s.ctx, id, s.bob)
		s.Require().NoError(err)
		s.Zero(amount)
	})

	s.Run("contributions accumulate", func() {
		s.Require().NoError(s.service.Contribute(s.ctx, s.bob, id, 100))
		s.Require().NoError(s.service.Contribute(s.ctx, s.bob, id, 50))
		s.Require().NoError(s.service.Contribute(s.ctx, s.charlie, id, 300))

		amount, err := s.service.Contribution(s.ctx, id, s.bob)
		s.Require().NoError(err)
		s.Equal(domain.Balance(150), amount)
		s.Equal(domain.Balance(150), s.reserved(s.bob))
		total, err := s.service.TotalContributions(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.Balance(450), total)
		s.assertLedgerConsistent(id)
	})

	s.Run("expired order", func() {
		s.setTimeslice(8)
		defer s.setTimeslice(0)
		s.Require().ErrorIs(s.service.Contribute(s.ctx, s.bob, id, 100), models.ErrOrderExpired)
	})
}

func (s *OrdersSuite) TestRemoveContribution() {
	id := s.create()
	s.Require().NoError(s.service.Contribute(s.ctx, s.bob, id, 100))
	s.Require().NoError(s.service.Contribute(s.ctx, s.charlie, id, 200))

	s.Run("order still live", func() {
		s.Require().ErrorIs(s.service.RemoveContribution(s.ctx, s.bob, id), models.ErrOrderNotCancelled)
	})

	s.Require().NoError(s.service.CancelOrder(s.ctx, s.alice, id))

	s.Run("no contribution", func() {
		s.Require().ErrorIs(s.service.RemoveContribution(s.ctx, s.alice, id), models.ErrNoContribution)
	})

	s.Run("unreserves and zeroes both ledgers", func() {
		s.Require().NoError(s.service.RemoveContribution(s.ctx, s.bob, id))
		s.Zero(s.reserved(s.bob))
		s.Equal(domain.Balance(1000), s.free(s.bob))
		total, err := s.service.TotalContributions(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.Balance(200), total)
		s.assertLedgerConsistent(id)

		s.Require().ErrorIs(s.service.RemoveContribution(s.ctx, s.bob, id), models.ErrNoContribution)
	})
}

func (s *OrdersSuite) TestRemoveContributionNeedsTheEscrow() {
	id := s.create()
	s.Require().NoError(s.service.Contribute(s.ctx, s.bob, id, 100))
	s.Require().NoError(s.service.CancelOrder(s.ctx, s.alice, id))

	emptied := currency.NewLedger(1)
	s.Require().NoError(emptied.Deposit(s.ctx, s.bob, 1000))
	fees, err := NewTreasuryFeeHandler(emptied, s.treasury)
	s.Require().NoError(err)
	svc, err := New(s.orders, s.contributions, emptied, fees, s.service.clock, tx.NewMemoryRunner(),
		Config{CreationCost: 100, MinimumContribution: 50},
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)

	s.Require().ErrorIs(svc.RemoveContribution(s.ctx, s.bob, id), models.ErrReserveMismatch)
	share, err := s.contributions.Contribution(s.ctx, id, s.bob)
	s.Require().NoError(err)
	s.Equal(domain.Balance(100), share)
	free, err := emptied.FreeBalance(s.ctx, s.bob)
	s.Require().NoError(err)
	s.Equal(domain.Balance(1000), free)
}

func (s *OrdersSuite) TestClearContributions() {
	id := s.create()
	s.Require().NoError(s.service.Contribute(s.ctx, s.bob, id, 100))
	s.Require().NoError(s.service.RemoveOrder(s.ctx, id))
	s.Require().ErrorIs(s.service.RemoveOrder(s.ctx, id), models.ErrInvalidOrderID)

	s.Require().NoError(s.service.ClearContributions(s.ctx, id))
	list, err := s.service.Contributions(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(list)
	s.assertLedgerConsistent(id)
}
