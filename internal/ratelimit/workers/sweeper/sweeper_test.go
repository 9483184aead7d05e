package sweeper

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"
)

type mockSweepableStore struct {
	sweepCalled     int
	removedToReturn int
	errToReturn     error
	liveCount       int
}

func (m *mockSweepableStore) Sweep(_ context.Context) (int, error) {
	m.sweepCalled++
	return m.removedToReturn, m.errToReturn
}

func (m *mockSweepableStore) Len() int {
	return m.liveCount
}

type SweeperSuite struct {
	suite.Suite
	store   *mockSweepableStore
	service *Service
}

func TestSweeperSuite(t *testing.T) {
	suite.Run(t, new(SweeperSuite))
}

func (s *SweeperSuite) SetupTest() {
	s.store = &mockSweepableStore{}
	s.service = New(s.store)
}

func (s *SweeperSuite) TestRunRemovesElapsedBuckets() {
	s.store.removedToReturn = 4

	result, err := s.service.RunOnce(context.Background())
	s.Require().NoError(err)
	s.Equal(1, s.store.sweepCalled, "Sweep should be called once per run")
	s.Equal(4, result.BucketsRemoved)
}

func (s *SweeperSuite) TestRunHandlesEmptyStore() {
	result, err := s.service.RunOnce(context.Background())

	s.Require().NoError(err)
	s.NotNil(result, "Result should never be nil on success")
	s.Equal(0, result.BucketsRemoved)
}

func (s *SweeperSuite) TestRunPropagatesStoreErrors() {
	s.store.errToReturn = context.DeadlineExceeded
	result, err := s.service.RunOnce(context.Background())

	s.Require().Error(err)
	s.ErrorIs(err, context.DeadlineExceeded)
	s.Nil(result, "Result should be nil when an error occurs")
}
