package usecase

import (
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/suite"

	"github.com/neonmarket/goapi/base/ctx"
	"github.com/neonmarket/goapi/domain"
	"github.com/neonmarket/goapi/domain/event"
	"github.com/neonmarket/goapi/domain/market"
	event_repository "github.com/neonmarket/goapi/stores/event/repository"
	market_repository "github.com/neonmarket/goapi/stores/market/repository"
)

const (
	owner    = domain.Address("0x00000000000000000000000000000000000000aa")
	stranger = domain.Address("0x00000000000000000000000000000000000000bb")
)

type configSuite struct {
	suite.Suite

	store  market.Store
	events *event_repository.MemoryRecorder
	im     market.ConfigUseCase
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(configSuite))
}

func (s *configSuite) SetupTest() {
	s.store = market_repository.NewStateStore()
	s.events = event_repository.NewMemoryRecorder()
	s.im = New(&ConfigUseCaseCfg{
		Store:  s.store,
		Events: s.events,
		Clock:  clock.NewMock(),
	})
}

func (s *configSuite) TestInitialize() {
	c := ctx.Background()

	s.NoError(s.im.Initialize(c, owner, 500))

	got, err := s.im.GetOwner(c)
	s.NoError(err)
	s.Equal(owner, got)

	feeBps, err := s.im.GetFeeBps(c)
	s.NoError(err)
	s.Equal(uint64(500), feeBps)

	nextId, err := s.im.GetNextAuctionId(c)
	s.NoError(err)
	s.Equal(domain.AuctionId(1), nextId)
}

func (s *configSuite) TestInitializeOnce() {
	c := ctx.Background()

	s.NoError(s.im.Initialize(c, owner, 500))
	s.ErrorIs(s.im.Initialize(c, stranger, 200), domain.ErrAlreadyInitialized)

	// the first caller stays the owner
	got, err := s.im.GetOwner(c)
	s.NoError(err)
	s.Equal(owner, got)
}

func (s *configSuite) TestInitializeFeeBound() {
	c := ctx.Background()

	s.ErrorIs(s.im.Initialize(c, owner, 1001), domain.ErrInvalidFeeBasisPoints)
	s.NoError(s.im.Initialize(c, owner, market.MaxFeeBps))
}

func (s *configSuite) TestUpdateFee() {
	c := ctx.Background()
	s.NoError(s.im.Initialize(c, owner, 500))

	s.NoError(s.im.UpdateFee(c, owner, 250))

	feeBps, err := s.im.GetFeeBps(c)
	s.NoError(err)
	s.Equal(uint64(250), feeBps)

	updated := s.events.EventsOfType(event.TypePlatformFeeUpdated)
	s.Len(updated, 1)
	s.Equal(uint64(250), updated[0].FeeBps)
}

func (s *configSuite) TestUpdateFeeGuards() {
	c := ctx.Background()
	s.NoError(s.im.Initialize(c, owner, 500))

	s.ErrorIs(s.im.UpdateFee(c, stranger, 250), domain.ErrNotPlatformOwner)
	s.ErrorIs(s.im.UpdateFee(c, owner, 1001), domain.ErrInvalidFeeBasisPoints)

	feeBps, err := s.im.GetFeeBps(c)
	s.NoError(err)
	s.Equal(uint64(500), feeBps)
}

func (s *configSuite) TestUpdateFeeBeforeInitialize() {
	c := ctx.Background()

	s.ErrorIs(s.im.UpdateFee(c, owner, 250), domain.ErrNotPlatformOwner)
}
