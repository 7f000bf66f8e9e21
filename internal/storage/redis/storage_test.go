package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RecordTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) sampleRecord(id model.SessionID, a, b model.Identity) *model.GameRecord {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.GameRecord{
		SessionID:    id,
		Participants: [2]model.Identity{a, b},
		Result:       model.Result{Winner: a},
		Moves: []model.Move{
			{By: a, Data: "e2e4", At: started},
			{By: b, Data: "e7e5", At: started.Add(time.Minute)},
		},
		StartedAt:   started,
		CompletedAt: started.Add(10 * time.Minute),
	}
}

func (s *StorageSuite) TestSaveAndGetGameRecord() {
	record := s.sampleRecord("s1", "alice", "bob")

	err := s.storage.SaveGameRecord(s.ctx, record)
	s.Require().NoError(err)

	got, err := s.storage.GetGameRecord(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal(record.SessionID, got.SessionID)
	s.Equal(record.Participants, got.Participants)
	s.Equal(record.Result, got.Result)
	s.Len(got.Moves, 2)
}

func (s *StorageSuite) TestGetMissingRecord() {
	_, err := s.storage.GetGameRecord(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *StorageSuite) TestListGameRecordsForParticipant() {
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s1", "alice", "bob")))
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s2", "alice", "carol")))
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s3", "bob", "carol")))

	records, err := s.storage.ListGameRecordsFor(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(records, 2)

	records, err = s.storage.ListGameRecordsFor(s.ctx, "dave")
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *StorageSuite) TestListSkipsExpiredRecords() {
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s1", "alice", "bob")))
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s2", "alice", "carol")))

	// Expire one record out from under its index entry
	s.mini.Del(recordKey("s1"))

	records, err := s.storage.ListGameRecordsFor(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(records, 1)
	s.Equal(model.SessionID("s2"), records[0].SessionID)
}

func (s *StorageSuite) TestDeleteGameRecord() {
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s1", "alice", "bob")))

	s.Require().NoError(s.storage.DeleteGameRecord(s.ctx, "s1"))

	_, err := s.storage.GetGameRecord(s.ctx, "s1")
	s.ErrorIs(err, model.ErrRecordNotFound)

	records, err := s.storage.ListGameRecordsFor(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *StorageSuite) TestDeleteMissingRecordIsNoOp() {
	s.NoError(s.storage.DeleteGameRecord(s.ctx, "missing"))
}

func (s *StorageSuite) TestRecordTTLApplied() {
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s1", "alice", "bob")))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetGameRecord(s.ctx, "s1")
	s.ErrorIs(err, model.ErrRecordNotFound)
}
