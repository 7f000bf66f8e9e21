package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/Raunaq22/ChessMate-sub001/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) sampleRecord(id model.SessionID, a, b model.Identity) *model.GameRecord {
	started := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.GameRecord{
		SessionID:    id,
		Participants: [2]model.Identity{a, b},
		Result:       model.Result{Draw: true},
		StartedAt:    started,
		CompletedAt:  started.Add(5 * time.Minute),
	}
}

func (s *StorageSuite) TestSaveAndGetGameRecord() {
	record := s.sampleRecord("s1", "alice", "bob")

	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, record))

	got, err := s.storage.GetGameRecord(s.ctx, "s1")
	s.Require().NoError(err)
	s.Equal(record, got)
}

func (s *StorageSuite) TestGetMissingRecord() {
	_, err := s.storage.GetGameRecord(s.ctx, "missing")
	s.ErrorIs(err, model.ErrRecordNotFound)
}

func (s *StorageSuite) TestListGameRecordsFor() {
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s1", "alice", "bob")))
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s2", "bob", "carol")))

	records, err := s.storage.ListGameRecordsFor(s.ctx, "bob")
	s.Require().NoError(err)
	s.Len(records, 2)

	records, err = s.storage.ListGameRecordsFor(s.ctx, "alice")
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *StorageSuite) TestDeleteGameRecord() {
	s.Require().NoError(s.storage.SaveGameRecord(s.ctx, s.sampleRecord("s1", "alice", "bob")))

	s.Require().NoError(s.storage.DeleteGameRecord(s.ctx, "s1"))

	_, err := s.storage.GetGameRecord(s.ctx, "s1")
	s.ErrorIs(err, model.ErrRecordNotFound)
}
