package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jashanpreetsinghdod/bankroom/internal/dependencies/mocks"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage/memory"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.clock, DefaultConfig())
	s.ctx = context.Background()
}

// Guest tests

func (s *ServiceSuite) TestCreateGuestUser() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice", "cat")
	s.Require().NoError(err)

	s.NotEmpty(session.Token)
	s.Equal("Alice", session.User.Username)
	s.Equal("cat", session.User.Avatar)
	s.True(session.User.IsGuest)

	// The user is persisted
	stored, err := s.storage.GetUser(s.ctx, session.UserID)
	s.Require().NoError(err)
	s.Equal("Alice", stored.Username)
}

func (s *ServiceSuite) TestGuestUsersGetDistinctIDs() {
	a, err := s.service.CreateGuestUser(s.ctx, "Alice", "")
	s.Require().NoError(err)
	b, err := s.service.CreateGuestUser(s.ctx, "Alice", "")
	s.Require().NoError(err)

	s.NotEqual(a.UserID, b.UserID)
	s.NotEqual(a.Token, b.Token)
}

// Register / login tests

func (s *ServiceSuite) TestRegisterAndLogin() {
	reg, err := s.service.Register(s.ctx, "alice", "hunter22", "cat")
	s.Require().NoError(err)
	s.False(reg.User.IsGuest)

	login, err := s.service.Login(s.ctx, "alice", "hunter22")
	s.Require().NoError(err)
	s.Equal(reg.UserID, login.UserID)
}

func (s *ServiceSuite) TestRegisterDuplicateUsername() {
	_, err := s.service.Register(s.ctx, "alice", "hunter22", "")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "alice", "other", "")
	s.ErrorIs(err, ErrUsernameExists)
}

func (s *ServiceSuite) TestLoginWrongPassword() {
	_, err := s.service.Register(s.ctx, "alice", "hunter22", "")
	s.Require().NoError(err)

	_, err = s.service.Login(s.ctx, "alice", "wrong")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestLoginUnknownUsername() {
	_, err := s.service.Login(s.ctx, "nobody", "whatever")
	s.ErrorIs(err, ErrInvalidCredentials)
}

// Session tests

func (s *ServiceSuite) TestValidateSession() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice", "")
	s.Require().NoError(err)

	got, err := s.service.ValidateSession(session.Token)
	s.Require().NoError(err)
	s.Equal(session.UserID, got.UserID)
}

func (s *ServiceSuite) TestValidateSessionUnknownToken() {
	_, err := s.service.ValidateSession("sess_bogus")
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestSessionExpires() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice", "")
	s.Require().NoError(err)

	s.clock.Advance(DefaultConfig().SessionDuration + time.Minute)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestInvalidateSession() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice", "")
	s.Require().NoError(err)

	s.service.InvalidateSession(session.Token)

	_, err = s.service.ValidateSession(session.Token)
	s.ErrorIs(err, ErrInvalidSession)
}

func (s *ServiceSuite) TestGetUser() {
	session, err := s.service.CreateGuestUser(s.ctx, "Alice", "")
	s.Require().NoError(err)

	user, err := s.service.GetUser(session.Token)
	s.Require().NoError(err)
	s.Equal(session.UserID, user.ID)
}

func (s *ServiceSuite) TestCleanExpiredSessions() {
	old, err := s.service.CreateGuestUser(s.ctx, "Old", "")
	s.Require().NoError(err)

	s.clock.Advance(DefaultConfig().SessionDuration + time.Minute)

	fresh, err := s.service.CreateGuestUser(s.ctx, "Fresh", "")
	s.Require().NoError(err)

	s.service.CleanExpiredSessions()

	_, err = s.service.ValidateSession(old.Token)
	s.ErrorIs(err, ErrInvalidSession)

	_, err = s.service.ValidateSession(fresh.Token)
	s.NoError(err)
}
