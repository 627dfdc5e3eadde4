package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jashanpreetsinghdod/bankroom/internal/dependencies/mocks"
	"github.com/jashanpreetsinghdod/bankroom/internal/model"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage/memory"
	"github.com/jashanpreetsinghdod/bankroom/internal/testutil"
)

// recordingNotifier captures lifecycle notifications
type recordingNotifier struct {
	deleted []struct {
		roomID model.RoomID
		reason model.DeleteReason
	}
}

func (n *recordingNotifier) RoomDeleted(roomID model.RoomID, reason model.DeleteReason) {
	n.deleted = append(n.deleted, struct {
		roomID model.RoomID
		reason model.DeleteReason
	}{roomID, reason})
}

type ServiceSuite struct {
	suite.Suite
	storage  *memory.Storage
	locks    *storage.RoomLocks
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	notifier *recordingNotifier
	service  *Service
	ctx      context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.locks = storage.NewRoomLocks()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.notifier = &recordingNotifier{}
	s.service = New(s.storage, s.locks, s.notifier, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) admin() model.User {
	return model.User{ID: "admin-1", Username: "Admin", IsGuest: true, CreatedAt: s.clock.Now()}
}

// CreateRoom tests

func (s *ServiceSuite) TestCreateRoomSucceeds() {
	s.random.QueueString("ABC234")

	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	s.NotEmpty(room.ID)
	s.Equal(model.JoinCode("ABC234"), room.JoinCode)
	s.Equal(model.UserID("admin-1"), room.AdminID)
	s.Equal(int64(5000), room.BankBalance)
	s.Equal(s.clock.Now(), room.CreatedAt)
}

func (s *ServiceSuite) TestCreateRoomSeatsAdmin() {
	s.random.QueueString("ABC234")
	cfg := model.DefaultRoomConfig()
	cfg.InitialStake = 100

	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, cfg)
	s.Require().NoError(err)

	s.Require().Len(room.Players, 1)
	s.Equal(model.UserID("admin-1"), room.Players[0].UserID)
	s.Equal(int64(100), room.Players[0].Balance)
}

func (s *ServiceSuite) TestCreateRoomIsPersisted() {
	s.random.QueueString("ABC234")

	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	stored, err := s.service.GetRoom(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Equal(room.JoinCode, stored.JoinCode)
}

func (s *ServiceSuite) TestCreateRoomRejectsNonPositiveBank() {
	_, err := s.service.CreateRoom(s.ctx, s.admin(), 0, model.DefaultRoomConfig())
	s.ErrorIs(err, model.ErrInvalidParameters)

	_, err = s.service.CreateRoom(s.ctx, s.admin(), -100, model.DefaultRoomConfig())
	s.ErrorIs(err, model.ErrInvalidParameters)
}

func (s *ServiceSuite) TestCreateRoomRejectsInvalidConfig() {
	cfg := model.DefaultRoomConfig()
	cfg.MaxPlayers = 0

	_, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, cfg)
	s.ErrorIs(err, model.ErrInvalidParameters)
}

func (s *ServiceSuite) TestCreateRoomRetriesCollidingJoinCode() {
	s.random.QueueString("ABC234")
	_, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	// Second room collides once, then gets a fresh code
	s.random.QueueString("ABC234", "XYZ789")
	other := model.User{ID: "admin-2", Username: "Other"}
	room, err := s.service.CreateRoom(s.ctx, other, 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	s.Equal(model.JoinCode("XYZ789"), room.JoinCode)
}

// Join code lookup tests

func (s *ServiceSuite) TestGetRoomByJoinCodeIsCaseInsensitive() {
	s.random.QueueString("ABC234")
	created, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	room, err := s.service.GetRoomByJoinCode(s.ctx, "abc234")
	s.Require().NoError(err)
	s.Equal(created.ID, room.ID)

	room, err = s.service.GetRoomByJoinCode(s.ctx, "  ABC234  ")
	s.Require().NoError(err)
	s.Equal(created.ID, room.ID)
}

func (s *ServiceSuite) TestGetRoomByJoinCodeNotFound() {
	_, err := s.service.GetRoomByJoinCode(s.ctx, "ZZZZZZ")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// DeleteRoom tests

func (s *ServiceSuite) TestDeleteRoomNotifiesBeforeRemoval() {
	s.random.QueueString("ABC234")
	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteRoom(s.ctx, room.ID, model.DeleteReasonExpired))

	s.Require().Len(s.notifier.deleted, 1)
	s.Equal(room.ID, s.notifier.deleted[0].roomID)
	s.Equal(model.DeleteReasonExpired, s.notifier.deleted[0].reason)

	_, err = s.service.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestDeleteRoomIsIdempotent() {
	s.random.QueueString("ABC234")
	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteRoom(s.ctx, room.ID, model.DeleteReasonAdmin))
	s.Require().NoError(s.service.DeleteRoom(s.ctx, room.ID, model.DeleteReasonAdmin))

	// Only the first delete notifies
	s.Len(s.notifier.deleted, 1)
}

func (s *ServiceSuite) TestDeleteRoomFreesJoinCode() {
	s.random.QueueString("ABC234")
	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteRoom(s.ctx, room.ID, model.DeleteReasonAdmin))

	// The code is reusable immediately
	s.random.QueueString("ABC234")
	room2, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)
	s.Equal(model.JoinCode("ABC234"), room2.JoinCode)
}

// DeleteRoomIfEmpty tests

func (s *ServiceSuite) TestDeleteRoomIfEmptyRemovesVacantRoom() {
	s.random.QueueString("ABC234")
	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	// Vacate the admin seat directly
	stored, err := s.storage.GetRoom(s.ctx, room.ID)
	s.Require().NoError(err)
	stored.Players = nil
	s.Require().NoError(s.storage.SaveRoom(s.ctx, stored))

	survivor, err := s.service.DeleteRoomIfEmpty(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Nil(survivor)

	s.Require().Len(s.notifier.deleted, 1)
	s.Equal(model.DeleteReasonEmpty, s.notifier.deleted[0].reason)

	_, err = s.service.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestDeleteRoomIfEmptySparesOccupiedRoom() {
	s.random.QueueString("ABC234")
	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	// The admin is still seated, as if a join slipped in just before the
	// delete took the room lock
	survivor, err := s.service.DeleteRoomIfEmpty(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Require().NotNil(survivor)
	s.Len(survivor.Players, 1)

	s.Empty(s.notifier.deleted)
	_, err = s.service.GetRoom(s.ctx, room.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestDeleteRoomIfEmptyMissingRoom() {
	survivor, err := s.service.DeleteRoomIfEmpty(s.ctx, "missing")
	s.NoError(err)
	s.Nil(survivor)
}

// DeleteRoomByAdmin tests

func (s *ServiceSuite) TestDeleteRoomByAdminSucceeds() {
	s.random.QueueString("ABC234")
	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteRoomByAdmin(s.ctx, room.ID, "admin-1"))

	s.Require().Len(s.notifier.deleted, 1)
	s.Equal(model.DeleteReasonAdmin, s.notifier.deleted[0].reason)
}

func (s *ServiceSuite) TestDeleteRoomByNonAdminForbidden() {
	s.random.QueueString("ABC234")
	room, err := s.service.CreateRoom(s.ctx, s.admin(), 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	err = s.service.DeleteRoomByAdmin(s.ctx, room.ID, "user-2")
	s.ErrorIs(err, model.ErrForbidden)

	// Room survives
	_, err = s.service.GetRoom(s.ctx, room.ID)
	s.NoError(err)
}

func (s *ServiceSuite) TestDeleteRoomByAdminRoomNotFound() {
	err := s.service.DeleteRoomByAdmin(s.ctx, "missing", "admin-1")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestNormalizeJoinCode() {
	s.Equal(model.JoinCode("ABC234"), NormalizeJoinCode("abc234"))
	s.Equal(model.JoinCode("ABC234"), NormalizeJoinCode(" Abc234 "))
}
