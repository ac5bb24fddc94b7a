package poller

import (
	"sync"
	"testing"
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type randMock struct{ mock.Mock }

func (m *randMock) Intn(n int) int {
	return m.Called(n).Int(0)
}

type PlannerSuite struct {
	suite.Suite
}

func (s *PlannerSuite) TestBackoffDelay() {
	p := NewPlanner(DefaultPlannerConfig(), &randMock{})
	s.Equal(5*time.Second, p.BackoffDelay(1))
	s.Equal(15*time.Second, p.BackoffDelay(2))
	s.Equal(30*time.Second, p.BackoffDelay(3))
	s.Equal(60*time.Second, p.BackoffDelay(4))
	s.Equal(60*time.Second, p.BackoffDelay(100))
}

func (s *PlannerSuite) TestNextCheckDelay_Terminal() {
	m := &randMock{}
	p := NewPlanner(DefaultPlannerConfig(), m)
	s.Equal(time.Duration(0), p.NextCheckDelay(models.CheckoutStatusSuccess))
	s.Equal(time.Duration(0), p.NextCheckDelay(models.CheckoutStatusExpired))
	m.AssertNotCalled(s.T(), "Intn", mock.Anything)
}

func (s *PlannerSuite) TestNextCheckDelay_PendingJitter() {
	m := &randMock{}
	m.On("Intn", 2001).Return(500).Once()
	p := NewPlanner(PlannerConfig{PendingMinDelay: 2 * time.Second, PendingMaxDelay: 4 * time.Second}, m)

	s.Equal(2500*time.Millisecond, p.NextCheckDelay(models.CheckoutStatusPending))
	m.AssertExpectations(s.T())
}

func (s *PlannerSuite) TestNextCheckDelay_PendingFixed() {
	m := &randMock{}
	p := NewPlanner(DefaultPlannerConfig(), m)
	s.Equal(5*time.Second, p.NextCheckDelay(models.CheckoutStatusPending))
	m.AssertNotCalled(s.T(), "Intn", mock.Anything)
}

func (s *PlannerSuite) TestNextCheckDelay_Unknown() {
	p := NewPlanner(PlannerConfig{UnknownDelay: 7 * time.Second}, &randMock{})
	s.Equal(7*time.Second, p.NextCheckDelay("processing"))
}

func (s *PlannerSuite) TestNewPlanner_MaxBelowMinClamped() {
	p := NewPlanner(PlannerConfig{PendingMinDelay: 3 * time.Second, PendingMaxDelay: time.Second}, &randMock{})
	s.Equal(3*time.Second, p.NextCheckDelay(models.CheckoutStatusPending))
}

func (s *PlannerSuite) TestNextCheckDelay_ConcurrentJitterStaysInRange() {
	p := NewPlanner(PlannerConfig{PendingMinDelay: time.Second, PendingMaxDelay: 2 * time.Second}, nil)

	var wg sync.WaitGroup
	delays := make([]time.Duration, 64)
	for i := range delays {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			delays[i] = p.NextCheckDelay(models.CheckoutStatusPending)
		}(i)
	}
	wg.Wait()

	for _, d := range delays {
		s.GreaterOrEqual(d, time.Second)
		s.LessOrEqual(d, 2*time.Second)
	}
}

func TestPlannerSuite(t *testing.T) {
	suite.Run(t, new(PlannerSuite))
}
