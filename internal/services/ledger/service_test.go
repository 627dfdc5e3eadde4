package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/jashanpreetsinghdod/bankroom/internal/dependencies/mocks"
	"github.com/jashanpreetsinghdod/bankroom/internal/model"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage"
	"github.com/jashanpreetsinghdod/bankroom/internal/storage/memory"
	"github.com/jashanpreetsinghdod/bankroom/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	locks   *storage.RoomLocks
	clock   *mocks.MockClock
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.locks = storage.NewRoomLocks()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.service = New(s.storage, s.locks, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) seedRoom() *model.Room {
	room := &model.Room{
		ID:          "room-1",
		JoinCode:    "ABC234",
		AdminID:     "admin-1",
		BankBalance: 1000,
		Config:      model.DefaultRoomConfig(),
		Players: []model.Player{
			{UserID: "admin-1", Username: "Admin", Balance: 500},
			{UserID: "user-2", Username: "Bob", Balance: 200},
			{UserID: "user-3", Username: "Carol", Balance: 0},
		},
		CreatedAt:      s.clock.Now(),
		LastActivityAt: s.clock.Now(),
	}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))
	return room
}

// Transfer tests

func (s *ServiceSuite) TestTransferSucceeds() {
	s.seedRoom()

	snap, err := s.service.Transfer(s.ctx, "room-1", "admin-1", "user-2", 100)
	s.Require().NoError(err)

	s.Equal(int64(400), snap.GetPlayer("admin-1").Balance)
	s.Equal(int64(300), snap.GetPlayer("user-2").Balance)
}

func (s *ServiceSuite) TestTransferConservesTotalCurrency() {
	room := s.seedRoom()
	before := room.TotalCurrency()

	snap, err := s.service.Transfer(s.ctx, "room-1", "admin-1", "user-2", 123)
	s.Require().NoError(err)

	s.Equal(before, snap.TotalCurrency())
}

func (s *ServiceSuite) TestTransferIsPersisted() {
	s.seedRoom()

	_, err := s.service.Transfer(s.ctx, "room-1", "admin-1", "user-2", 100)
	s.Require().NoError(err)

	stored, err := s.storage.GetRoom(s.ctx, "room-1")
	s.Require().NoError(err)
	s.Equal(int64(400), stored.GetPlayer("admin-1").Balance)
	s.Equal(int64(300), stored.GetPlayer("user-2").Balance)
}

func (s *ServiceSuite) TestTransferBumpsLastActivity() {
	s.seedRoom()
	s.clock.Advance(time.Minute)

	snap, err := s.service.Transfer(s.ctx, "room-1", "admin-1", "user-2", 1)
	s.Require().NoError(err)

	s.Equal(s.clock.Now(), snap.LastActivityAt)
}

func (s *ServiceSuite) TestTransferExactBalanceDrainsSender() {
	s.seedRoom()

	snap, err := s.service.Transfer(s.ctx, "room-1", "user-2", "user-3", 200)
	s.Require().NoError(err)

	s.Equal(int64(0), snap.GetPlayer("user-2").Balance)
	s.Equal(int64(200), snap.GetPlayer("user-3").Balance)
}

func (s *ServiceSuite) TestTransferInsufficientFunds() {
	s.seedRoom()

	_, err := s.service.Transfer(s.ctx, "room-1", "user-2", "user-3", 201)
	s.ErrorIs(err, model.ErrInsufficientFunds)

	// Nothing moved
	stored, _ := s.storage.GetRoom(s.ctx, "room-1")
	s.Equal(int64(200), stored.GetPlayer("user-2").Balance)
	s.Equal(int64(0), stored.GetPlayer("user-3").Balance)
}

func (s *ServiceSuite) TestTransferZeroBalanceSenderCannotSend() {
	s.seedRoom()

	_, err := s.service.Transfer(s.ctx, "room-1", "user-3", "user-2", 1)
	s.ErrorIs(err, model.ErrInsufficientFunds)
}

func (s *ServiceSuite) TestTransferRejectsNonPositiveAmount() {
	s.seedRoom()

	_, err := s.service.Transfer(s.ctx, "room-1", "admin-1", "user-2", 0)
	s.ErrorIs(err, model.ErrInvalidParameters)

	_, err = s.service.Transfer(s.ctx, "room-1", "admin-1", "user-2", -5)
	s.ErrorIs(err, model.ErrInvalidParameters)
}

func (s *ServiceSuite) TestTransferRejectsSelfTransfer() {
	s.seedRoom()

	_, err := s.service.Transfer(s.ctx, "room-1", "admin-1", "admin-1", 10)
	s.ErrorIs(err, model.ErrSelfTransfer)
}

func (s *ServiceSuite) TestTransferSenderNotInRoom() {
	s.seedRoom()

	_, err := s.service.Transfer(s.ctx, "room-1", "stranger", "user-2", 10)
	s.ErrorIs(err, model.ErrNotInRoom)
}

func (s *ServiceSuite) TestTransferRecipientNotInRoom() {
	s.seedRoom()

	_, err := s.service.Transfer(s.ctx, "room-1", "admin-1", "stranger", 10)
	s.ErrorIs(err, model.ErrRecipientNotFound)
}

func (s *ServiceSuite) TestTransferRoomNotFound() {
	_, err := s.service.Transfer(s.ctx, "missing", "admin-1", "user-2", 10)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ServiceSuite) TestTransferSnapshotIsDetached() {
	s.seedRoom()

	snap, err := s.service.Transfer(s.ctx, "room-1", "admin-1", "user-2", 100)
	s.Require().NoError(err)

	// Mutating the snapshot must not touch the stored room
	snap.GetPlayer("user-2").Balance = 9999

	stored, _ := s.storage.GetRoom(s.ctx, "room-1")
	s.Equal(int64(300), stored.GetPlayer("user-2").Balance)
}

func (s *ServiceSuite) TestConcurrentTransfersNeverOverdraw() {
	s.seedRoom()

	// user-2 has 200; fire 50 transfers of 10 at it concurrently. At most
	// 20 can succeed and the balance can never go negative.
	var wg sync.WaitGroup
	results := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Transfer(s.ctx, "room-1", "user-2", "user-3", 10)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			s.ErrorIs(err, model.ErrInsufficientFunds)
		}
	}
	s.Equal(20, succeeded)

	stored, _ := s.storage.GetRoom(s.ctx, "room-1")
	s.Equal(int64(0), stored.GetPlayer("user-2").Balance)
	s.Equal(int64(200), stored.GetPlayer("user-3").Balance)
}

func (s *ServiceSuite) TestReadsDuringTransfersSeeWholeTransactions() {
	room := s.seedRoom()
	total := room.TotalCurrency()

	// Shuttle currency back and forth while reading the room without the
	// room lock. Every read must see a whole transfer or none of it, so
	// the total never wavers.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			if i%2 == 0 {
				_, _ = s.service.Transfer(s.ctx, "room-1", "admin-1", "user-2", 1)
			} else {
				_, _ = s.service.Transfer(s.ctx, "room-1", "user-2", "admin-1", 1)
			}
		}
	}()

	for {
		stored, err := s.storage.GetRoom(s.ctx, "room-1")
		s.Require().NoError(err)
		s.Require().Equal(total, stored.TotalCurrency())

		select {
		case <-done:
			return
		default:
		}
	}
}

// BankAdjust tests

func (s *ServiceSuite) TestBankAddMovesBankToPlayer() {
	s.seedRoom()

	snap, err := s.service.BankAdjust(s.ctx, "room-1", "admin-1", "user-2", 300, model.DirectionAdd)
	s.Require().NoError(err)

	s.Equal(int64(700), snap.BankBalance)
	s.Equal(int64(500), snap.GetPlayer("user-2").Balance)
}

func (s *ServiceSuite) TestBankAddMayDriveBankNegative() {
	s.seedRoom()

	snap, err := s.service.BankAdjust(s.ctx, "room-1", "admin-1", "user-2", 1500, model.DirectionAdd)
	s.Require().NoError(err)

	s.Equal(int64(-500), snap.BankBalance)
	s.Equal(int64(1700), snap.GetPlayer("user-2").Balance)
}

func (s *ServiceSuite) TestBankDeductMovesPlayerToBank() {
	s.seedRoom()

	snap, err := s.service.BankAdjust(s.ctx, "room-1", "admin-1", "user-2", 150, model.DirectionDeduct)
	s.Require().NoError(err)

	s.Equal(int64(1150), snap.BankBalance)
	s.Equal(int64(50), snap.GetPlayer("user-2").Balance)
}

func (s *ServiceSuite) TestBankDeductCannotOverdrawPlayer() {
	s.seedRoom()

	_, err := s.service.BankAdjust(s.ctx, "room-1", "admin-1", "user-2", 201, model.DirectionDeduct)
	s.ErrorIs(err, model.ErrInsufficientFunds)

	stored, _ := s.storage.GetRoom(s.ctx, "room-1")
	s.Equal(int64(200), stored.GetPlayer("user-2").Balance)
	s.Equal(int64(1000), stored.BankBalance)
}

func (s *ServiceSuite) TestBankAdjustRequiresAdmin() {
	s.seedRoom()

	_, err := s.service.BankAdjust(s.ctx, "room-1", "user-2", "user-3", 10, model.DirectionAdd)
	s.ErrorIs(err, model.ErrForbidden)
}

func (s *ServiceSuite) TestBankAdjustRejectsNonPositiveAmount() {
	s.seedRoom()

	_, err := s.service.BankAdjust(s.ctx, "room-1", "admin-1", "user-2", 0, model.DirectionAdd)
	s.ErrorIs(err, model.ErrInvalidParameters)
}

func (s *ServiceSuite) TestBankAdjustUnknownPlayer() {
	s.seedRoom()

	_, err := s.service.BankAdjust(s.ctx, "room-1", "admin-1", "stranger", 10, model.DirectionAdd)
	s.ErrorIs(err, model.ErrRecipientNotFound)
}

func (s *ServiceSuite) TestBankAdjustInvalidDirection() {
	s.seedRoom()

	_, err := s.service.BankAdjust(s.ctx, "room-1", "admin-1", "user-2", 10, model.Direction("LEND"))
	s.ErrorIs(err, model.ErrInvalidDirection)
}

func (s *ServiceSuite) TestBankAdjustAdminCanTargetThemselves() {
	s.seedRoom()

	snap, err := s.service.BankAdjust(s.ctx, "room-1", "admin-1", "admin-1", 100, model.DirectionAdd)
	s.Require().NoError(err)

	s.Equal(int64(600), snap.GetPlayer("admin-1").Balance)
	s.Equal(int64(900), snap.BankBalance)
}
