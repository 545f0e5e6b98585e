package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/pkg/logger"
)

type RedisIntegrationTestSuite struct {
	suite.Suite
	rdb            *redis.Client
	redisContainer *tcredis.RedisContainer
	testLogger     logger.Logger
}

func (s *RedisIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()
	s.testLogger = logger.NewNop()

	redisContainer, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		s.T().Fatalf("Failed to start redis container: %s", err)
	}
	s.redisContainer = redisContainer

	uri, err := redisContainer.ConnectionString(ctx)
	if err != nil {
		s.T().Fatalf("Failed to get connection string: %s", err)
	}
	opts, err := redis.ParseURL(uri)
	if err != nil {
		s.T().Fatalf("Failed to parse redis url: %s", err)
	}
	s.rdb = redis.NewClient(opts)
}

func (s *RedisIntegrationTestSuite) TearDownSuite() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
	if s.redisContainer != nil {
		if err := s.redisContainer.Terminate(context.Background()); err != nil {
			s.T().Fatalf("Failed to terminate redis container: %s", err)
		}
	}
}

func (s *RedisIntegrationTestSuite) SetupTest() {
	s.Require().NoError(s.rdb.FlushAll(context.Background()).Err())
}

func TestRedisIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode.")
	}
	suite.Run(t, new(RedisIntegrationTestSuite))
}

func (s *RedisIntegrationTestSuite) nextEvent(sub content.Subscription) content.ChangeEvent {
	select {
	case e, ok := <-sub.Events():
		s.Require().True(ok, "change feed closed")
		return e
	case <-time.After(5 * time.Second):
		s.FailNow("no change event received")
		return content.ChangeEvent{}
	}
}

func (s *RedisIntegrationTestSuite) Test_RateCounter_SetsWindowOnFirstHit() {
	ctx := context.Background()
	counter := NewRedisRateCounter(s.rdb)

	n, err := counter.Hit(ctx, "203.0.113.7", time.Minute)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	ttl, err := s.rdb.TTL(ctx, rateKeyPrefix+"203.0.113.7").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)

	n, err = counter.Hit(ctx, "203.0.113.7", time.Minute)
	s.Require().NoError(err)
	s.Equal(int64(2), n)
}

func (s *RedisIntegrationTestSuite) Test_RateCounter_RepairsKeyWithoutTTL() {
	ctx := context.Background()
	s.Require().NoError(s.rdb.Set(ctx, rateKeyPrefix+"198.51.100.1", 5, 0).Err())

	n, err := NewRedisRateCounter(s.rdb).Hit(ctx, "198.51.100.1", time.Minute)
	s.Require().NoError(err)
	s.Equal(int64(6), n)

	ttl, err := s.rdb.TTL(ctx, rateKeyPrefix+"198.51.100.1").Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
}

func (s *RedisIntegrationTestSuite) Test_RateCounter_ReturnsRedisErrors() {
	closed := redis.NewClient(&redis.Options{Addr: s.rdb.Options().Addr})
	s.Require().NoError(closed.Close())

	_, err := NewRedisRateCounter(closed).Hit(context.Background(), "192.0.2.1", time.Minute)
	s.Error(err)
}

func (s *RedisIntegrationTestSuite) Test_ChangeFeed_DeliversPublishedEvents() {
	ctx := context.Background()
	feed := NewRedisChangeFeed(s.rdb, s.testLogger)

	sub, err := feed.Subscribe(ctx, content.TableProjects)
	s.Require().NoError(err)
	defer sub.Close()

	s.Require().NoError(feed.Publish(ctx, content.ChangeEvent{
		Table:     content.TableProjects,
		Operation: content.OpInsert,
		ID:        42,
		At:        time.Now().UTC(),
	}))

	e := s.nextEvent(sub)
	s.Equal(content.TableProjects, e.Table)
	s.Equal(content.OpInsert, e.Operation)
	s.Equal(int64(42), e.ID)
}

func (s *RedisIntegrationTestSuite) Test_ChangeFeed_DropsMalformedPayload() {
	ctx := context.Background()
	feed := NewRedisChangeFeed(s.rdb, s.testLogger)

	sub, err := feed.Subscribe(ctx, content.TableSkills)
	s.Require().NoError(err)
	defer sub.Close()

	s.Require().NoError(s.rdb.Publish(ctx, ChangeChannel(content.TableSkills), "not json").Err())
	s.Require().NoError(feed.Publish(ctx, content.ChangeEvent{
		Table:     content.TableSkills,
		Operation: content.OpDelete,
		ID:        7,
	}))

	e := s.nextEvent(sub)
	s.Equal(content.OpDelete, e.Operation)
	s.Equal(int64(7), e.ID)
}

func (s *RedisIntegrationTestSuite) Test_ChangeFeed_ReloadsEveryTableAfterReconnect() {
	ctx := context.Background()
	feed := NewRedisChangeFeed(s.rdb, s.testLogger)

	tables := []string{content.TableProjects, content.TableSkills, content.TableCertifications}
	sub, err := feed.Subscribe(ctx, tables...)
	s.Require().NoError(err)
	defer sub.Close()

	// The initial confirmations must not produce reloads.
	s.Require().NoError(feed.Publish(ctx, content.ChangeEvent{Table: content.TableSkills, Operation: content.OpInsert, ID: 1}))
	first := s.nextEvent(sub)
	s.Equal(content.OpInsert, first.Operation)

	admin := redis.NewClient(&redis.Options{Addr: s.rdb.Options().Addr})
	defer admin.Close()
	s.Require().NoError(admin.ClientKillByFilter(ctx, "TYPE", "pubsub").Err())

	reloaded := map[string]int{}
	for range tables {
		e := s.nextEvent(sub)
		s.Equal(content.OpReload, e.Operation)
		reloaded[e.Table]++
	}
	s.Equal(map[string]int{
		content.TableProjects:       1,
		content.TableSkills:         1,
		content.TableCertifications: 1,
	}, reloaded)

	s.Require().NoError(feed.Publish(ctx, content.ChangeEvent{Table: content.TableProjects, Operation: content.OpUpdate, ID: 3}))
	e := s.nextEvent(sub)
	s.Equal(content.OpUpdate, e.Operation)
	s.Equal(int64(3), e.ID)
}

func (s *RedisIntegrationTestSuite) Test_ChangeFeed_CloseEndsEvents() {
	sub, err := NewRedisChangeFeed(s.rdb, s.testLogger).Subscribe(context.Background())
	s.Require().NoError(err)
	s.Require().NoError(sub.Close())

	select {
	case _, ok := <-sub.Events():
		for ok {
			_, ok = <-sub.Events()
		}
	case <-time.After(5 * time.Second):
		s.FailNow("events channel not closed")
	}
}
