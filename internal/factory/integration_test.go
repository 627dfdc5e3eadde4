package factory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jashanpreetsinghdod/bankroom/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// guest creates a fresh authenticated user through the auth service
func (s *IntegrationSuite) guest(username string) model.User {
	session, err := s.app.AuthService.CreateGuestUser(s.ctx, username, "")
	s.Require().NoError(err)
	return session.User
}

// Test: full session from room creation to admin teardown
func (s *IntegrationSuite) TestCompleteRoomSession() {
	admin := s.guest("Admin")
	bob := s.guest("Bob")
	carol := s.guest("Carol")

	// Step 1: admin creates a room with a starting stake
	s.app.MockRandom.QueueString("ABC234")
	cfg := model.DefaultRoomConfig()
	cfg.InitialStake = 500
	room, err := s.app.Registry.CreateRoom(s.ctx, admin, 10_000, cfg)
	s.Require().NoError(err)
	s.Equal(model.JoinCode("ABC234"), room.JoinCode)

	// Step 2: the others join by code
	_, err = s.app.Presence.JoinByCode(s.ctx, "abc234", bob)
	s.Require().NoError(err)
	joined, err := s.app.Presence.JoinByCode(s.ctx, "ABC234", carol)
	s.Require().NoError(err)
	s.Len(joined.Players, 3)

	// Step 3: money moves between players; total currency is conserved
	before := joined.TotalCurrency()
	after, err := s.app.Ledger.Transfer(s.ctx, room.ID, admin.ID, bob.ID, 200)
	s.Require().NoError(err)
	s.Equal(int64(300), after.GetPlayer(admin.ID).Balance)
	s.Equal(int64(700), after.GetPlayer(bob.ID).Balance)
	s.Equal(before, after.TotalCurrency())

	// Step 4: the bank pays out and collects
	after, err = s.app.Ledger.BankAdjust(s.ctx, room.ID, admin.ID, carol.ID, 1000, model.DirectionAdd)
	s.Require().NoError(err)
	s.Equal(int64(9000), after.BankBalance)
	s.Equal(int64(1500), after.GetPlayer(carol.ID).Balance)

	after, err = s.app.Ledger.BankAdjust(s.ctx, room.ID, admin.ID, bob.ID, 700, model.DirectionDeduct)
	s.Require().NoError(err)
	s.Equal(int64(9700), after.BankBalance)
	s.Equal(int64(0), after.GetPlayer(bob.ID).Balance)

	// Step 5: a departure discards the player's balance
	after, err = s.app.Presence.Leave(s.ctx, room.ID, carol.ID)
	s.Require().NoError(err)
	s.Require().NotNil(after)
	s.Nil(after.GetPlayer(carol.ID))
	s.Equal(int64(9700), after.BankBalance)

	// Step 6: only the admin can tear the room down
	err = s.app.Registry.DeleteRoomByAdmin(s.ctx, room.ID, bob.ID)
	s.ErrorIs(err, model.ErrForbidden)

	s.Require().NoError(s.app.Registry.DeleteRoomByAdmin(s.ctx, room.ID, admin.ID))
	_, err = s.app.Registry.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// Test: the last player leaving deletes the room and frees its code
func (s *IntegrationSuite) TestLastLeaveDeletesRoom() {
	admin := s.guest("Admin")

	s.app.MockRandom.QueueString("ABC234")
	room, err := s.app.Registry.CreateRoom(s.ctx, admin, 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	after, err := s.app.Presence.Leave(s.ctx, room.ID, admin.ID)
	s.Require().NoError(err)
	s.Nil(after)

	_, err = s.app.Registry.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)

	// The code is immediately reusable
	s.app.MockRandom.QueueString("ABC234")
	room2, err := s.app.Registry.CreateRoom(s.ctx, admin, 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)
	s.Equal(model.JoinCode("ABC234"), room2.JoinCode)
}

// Test: the sweeper expires a room past its TTL
func (s *IntegrationSuite) TestSweepExpiresOldRoom() {
	admin := s.guest("Admin")

	s.app.MockRandom.QueueString("ABC234")
	room, err := s.app.Registry.CreateRoom(s.ctx, admin, 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	// Keep a connection alive so the empty-room path never triggers
	s.app.Presence.Connect(room.ID, admin.ID)

	s.app.MockClock.Advance(25 * time.Hour)
	s.app.Presence.Sweep(s.ctx)

	_, err = s.app.Registry.GetRoom(s.ctx, room.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

// Test: a disconnected player's seat survives the grace window, then is
// vacated by the sweeper
func (s *IntegrationSuite) TestSweepVacatesAbandonedSeat() {
	admin := s.guest("Admin")
	bob := s.guest("Bob")

	s.app.MockRandom.QueueString("ABC234")
	room, err := s.app.Registry.CreateRoom(s.ctx, admin, 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)

	_, err = s.app.Presence.Join(s.ctx, room.ID, bob)
	s.Require().NoError(err)

	s.app.Presence.Connect(room.ID, admin.ID)
	s.app.Presence.Connect(room.ID, bob.ID)
	s.app.Presence.Disconnect(room.ID, bob.ID)

	// Within the grace window the seat stays
	s.app.MockClock.Advance(time.Minute)
	s.app.Presence.Sweep(s.ctx)
	current, err := s.app.Registry.GetRoom(s.ctx, room.ID)
	s.Require().NoError(err)
	s.NotNil(current.GetPlayer(bob.ID))

	// Past it the seat is vacated
	s.app.MockClock.Advance(5 * time.Minute)
	s.app.Presence.Sweep(s.ctx)
	current, err = s.app.Registry.GetRoom(s.ctx, room.ID)
	s.Require().NoError(err)
	s.Nil(current.GetPlayer(bob.ID))
	s.NotNil(current.GetPlayer(admin.ID))
}

// Test: registered accounts work end to end against the same store
func (s *IntegrationSuite) TestRegisteredAccountFlow() {
	reg, err := s.app.AuthService.Register(s.ctx, "alice", "hunter22", "cat")
	s.Require().NoError(err)

	login, err := s.app.AuthService.Login(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)
	s.Equal(reg.UserID, login.UserID)

	s.app.MockRandom.QueueString("ABC234")
	room, err := s.app.Registry.CreateRoom(s.ctx, login.User, 5000, model.DefaultRoomConfig())
	s.Require().NoError(err)
	s.Equal(login.UserID, room.AdminID)
}
