package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"clubtrips/pkg/logger"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trip struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func TestGetMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.Discard())

	mock.ExpectGet("k").RedisNil()

	var out trip
	err := svc.Get(context.Background(), "k", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetHit(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.Discard())

	mock.ExpectGet("k").SetVal(`{"id":"E1","title":"Glacier Walk"}`)

	var out trip
	require.NoError(t, svc.Get(context.Background(), "k", &out))
	assert.Equal(t, trip{ID: "E1", Title: "Glacier Walk"}, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetStoresOnMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.Discard())

	value := trip{ID: "E1", Title: "Glacier Walk"}
	data, err := json.Marshal(value)
	require.NoError(t, err)

	mock.ExpectGet("k").RedisNil()
	mock.ExpectSet("k", data, time.Minute).SetVal("OK")

	calls := 0
	var out trip
	err = svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		calls++
		return value, nil
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, value, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetPropagatesFetcherError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.Discard())

	mock.ExpectGet("k").RedisNil()

	boom := errors.New("boom")
	var out trip
	err := svc.GetOrSet(context.Background(), "k", time.Minute, func() (interface{}, error) {
		return nil, boom
	}, &out)

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePattern(t *testing.T) {
	db, mock := redismock.NewClientMock()
	svc := NewService(db, logger.Discard())

	mock.ExpectScan(0, "clubtrips:events:*", 100).SetVal([]string{"a", "b"}, 7)
	mock.ExpectDel("a", "b").SetVal(2)
	mock.ExpectScan(7, "clubtrips:events:*", 100).SetVal([]string{}, 0)

	require.NoError(t, svc.DeletePattern(context.Background(), "clubtrips:events:*"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
