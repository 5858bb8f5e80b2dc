package block

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"deletionguard/internal/deletion/models"
	blockstore "deletionguard/internal/deletion/store/block"
	dErrors "deletionguard/pkg/domain-errors"
	"deletionguard/pkg/platform/clock"
)

// BlockServiceSuite covers expiry and lazy purging of blocks.
//
// Justification: an expired block must behave exactly like no block, and
// indefinite blocks must survive until a manual unblock.
type BlockServiceSuite struct {
	suite.Suite
	ctx     context.Context
	clock   *clock.Fake
	store   *blockstore.InMemoryBlockStore
	service *Service
}

func TestBlockServiceSuite(t *testing.T) {
	suite.Run(t, new(BlockServiceSuite))
}

func (s *BlockServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = clock.NewFake(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	s.store = blockstore.NewInMemoryBlockStore()
	svc, err := New(s.store, WithClock(s.clock))
	s.Require().NoError(err)
	s.service = svc
}

func (s *BlockServiceSuite) TestTimedBlockExpires() {
	_, err := s.service.Block(s.ctx, "u1", time.Hour, "abuse", models.SourceAbuseDetector)
	s.Require().NoError(err)

	entry, err := s.service.Check(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(entry)
	s.Equal(time.Hour, entry.Remaining(s.clock.Now()))

	s.Run("still blocked at the boundary", func() {
		s.clock.Advance(time.Hour)
		entry, err := s.service.Check(s.ctx, "u1")
		s.Require().NoError(err)
		s.NotNil(entry)
	})

	s.Run("expired entry is absent and purged", func() {
		s.clock.Advance(time.Second)
		entry, err := s.service.Check(s.ctx, "u1")
		s.Require().NoError(err)
		s.Nil(entry)

		raw, err := s.store.Get(s.ctx, "u1")
		s.Require().NoError(err)
		s.Nil(raw)
	})
}

func (s *BlockServiceSuite) TestIndefiniteBlock() {
	_, err := s.service.Block(s.ctx, "u1", 0, "manual review", models.SourceOperator)
	s.Require().NoError(err)

	s.clock.Advance(365 * 24 * time.Hour)
	entry, err := s.service.Check(s.ctx, "u1")
	s.Require().NoError(err)
	s.Require().NotNil(entry)
	s.True(entry.Indefinite())

	lifted, err := s.service.Unblock(s.ctx, "u1")
	s.Require().NoError(err)
	s.True(lifted)

	lifted, err = s.service.Unblock(s.ctx, "u1")
	s.Require().NoError(err)
	s.False(lifted)
}

func (s *BlockServiceSuite) TestBlockValidation() {
	_, err := s.service.Block(s.ctx, "  ", time.Hour, "r", models.SourceOperator)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.Block(s.ctx, "u1", -time.Second, "r", models.SourceOperator)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *BlockServiceSuite) TestListAndPurge() {
	_, err := s.service.Block(s.ctx, "short", time.Minute, "r", models.SourceOperator)
	s.Require().NoError(err)
	_, err = s.service.Block(s.ctx, "long", time.Hour, "r", models.SourceOperator)
	s.Require().NoError(err)
	_, err = s.service.Block(s.ctx, "other", time.Minute, "r", models.SourceOperator)
	s.Require().NoError(err)

	s.clock.Advance(2 * time.Minute)

	purged, err := s.service.PurgeExpired(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, purged)

	active, err := s.service.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("long", active[0].UserID)
}

type failingStore struct {
	*blockstore.InMemoryBlockStore
}

func (failingStore) Get(context.Context, string) (*models.BlockEntry, error) {
	return nil, errors.New("unreachable")
}

func (s *BlockServiceSuite) TestStoreErrorSurfaces() {
	svc, err := New(failingStore{InMemoryBlockStore: blockstore.NewInMemoryBlockStore()})
	s.Require().NoError(err)
	_, err = svc.Check(s.ctx, "u1")
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
