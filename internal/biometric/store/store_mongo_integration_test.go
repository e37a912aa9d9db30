//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"votegate/internal/biometric/store"
	id "votegate/pkg/domain"
	"votegate/pkg/platform/sentinel"
	"votegate/pkg/testutil/containers"
)

type MongoStoreSuite struct {
	suite.Suite
	mongo *containers.MongoContainer
	store *store.MongoStore
}

func TestMongoStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MongoStoreSuite))
}

func (s *MongoStoreSuite) SetupSuite() {
	s.mongo = containers.GetManager().GetMongo(s.T())
}

func (s *MongoStoreSuite) SetupTest() {
	ctx := context.Background()
	db := s.mongo.Database("biometric_" + uuid.NewString()[:8])
	st, err := store.NewMongo(ctx, db)
	s.Require().NoError(err)
	s.store = st
}

func (s *MongoStoreSuite) TestActivateAndReplace() {
	ctx := context.Background()
	first := newTemplate("AB12CD34")
	replaced, err := s.store.Activate(ctx, first)
	s.Require().NoError(err)
	s.Nil(replaced)

	second := newTemplate("AB12CD34")
	replaced, err = s.store.Activate(ctx, second)
	s.Require().NoError(err)
	s.Require().NotNil(replaced)
	s.Equal(first.ID, replaced.ID)

	active, err := s.store.FindActive(ctx, "AB12CD34")
	s.Require().NoError(err)
	s.Equal(second.ID, active.ID)
	s.True(active.IsActive)
	s.Equal(second.Vector, active.Vector)

	prev, err := s.store.FindPrevious(ctx, "AB12CD34")
	s.Require().NoError(err)
	s.Equal(first.ID, prev.ID)
	s.False(prev.IsActive)
}

func (s *MongoStoreSuite) TestFindActiveMissing() {
	_, err := s.store.FindActive(context.Background(), "ZZ99ZZ99")
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *MongoStoreSuite) TestConcurrentEnrollmentKeepsOneActive() {
	ctx := context.Background()
	const voter = id.VoterID("QR78ST90")

	var wg sync.WaitGroup
	var ok, conflicts atomic.Int32
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.store.Activate(ctx, newTemplate(voter))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			default:
				s.Failf("unexpected error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.GreaterOrEqual(ok.Load(), int32(1))
	s.Equal(int32(8), ok.Load()+conflicts.Load())

	active, err := s.store.FindActive(ctx, voter)
	s.Require().NoError(err)
	s.True(active.IsActive)
}
