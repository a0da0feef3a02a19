package entity_test

import (
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocknews-notifier/internal/domain/entity"
)

func TestNewCrawlState_Defaults(t *testing.T) {
	s := entity.NewCrawlState(7)
	assert.Equal(t, int64(7), s.SourceID)
	assert.Equal(t, 1.0, s.RequestsPerSecond)
	assert.Equal(t, 10, s.RequestsPerMinute)
	assert.Nil(t, s.LastCrawlAt)
}

func TestCrawlState_FailureThenSuccess(t *testing.T) {
	s := entity.NewCrawlState(1)
	now := time.Date(2025, 11, 16, 10, 0, 0, 0, time.UTC)

	s.RecordFailure(now, errors.New("timeout"))
	assert.Equal(t, 1, s.ConsecutiveErrors)
	require.NotNil(t, s.LastError)
	assert.Equal(t, "timeout", *s.LastError)
	require.NotNil(t, s.LastErrorAt)
	assert.True(t, now.Equal(*s.LastErrorAt))

	s.RecordFailure(now.Add(time.Minute), errors.New("503"))
	assert.Equal(t, 2, s.ConsecutiveErrors)

	later := now.Add(2 * time.Minute)
	s.RecordSuccess(later)
	assert.Equal(t, 0, s.ConsecutiveErrors)
	assert.Nil(t, s.LastError)
	assert.Nil(t, s.LastErrorAt)
	require.NotNil(t, s.LastCrawlAt)
	assert.True(t, later.Equal(*s.LastCrawlAt))
}

func TestCrawlState_RobotsStale(t *testing.T) {
	now := time.Date(2025, 11, 16, 10, 0, 0, 0, time.UTC)
	ttl := 24 * time.Hour

	s := entity.NewCrawlState(1)
	assert.True(t, s.RobotsStale(now, ttl), "missing robots is stale")

	s.SetRobotsTxt("User-agent: *", now.Add(-1*time.Hour))
	assert.False(t, s.RobotsStale(now, ttl))

	s.SetRobotsTxt("User-agent: *", now.Add(-25*time.Hour))
	assert.True(t, s.RobotsStale(now, ttl))
}

func TestCrawlState_SetRobotsTxtTruncates(t *testing.T) {
	s := entity.NewCrawlState(1)
	s.SetRobotsTxt(strings.Repeat("a", entity.MaxRobotsTxtLength+500), time.Now())
	require.NotNil(t, s.RobotsTxt)
	assert.Len(t, *s.RobotsTxt, entity.MaxRobotsTxtLength)
}

func TestCrawlState_RecordFailureKeepsUTF8(t *testing.T) {
	s := entity.NewCrawlState(1)
	msg := strings.Repeat("a", 1999) + strings.Repeat("取得失敗", 10)

	s.RecordFailure(time.Now(), errors.New(msg))

	require.NotNil(t, s.LastError)
	assert.True(t, utf8.ValidString(*s.LastError))
	assert.Equal(t, 2000, utf8.RuneCountInString(*s.LastError))
	assert.True(t, strings.HasSuffix(*s.LastError, "a取"))
}
