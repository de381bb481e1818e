package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/example/vajra/internal/models"
)

type MemoryStoreTestSuite struct {
	suite.Suite
	ctx   context.Context
	store *MemoryStore
	user  *models.User
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, new(MemoryStoreTestSuite))
}

func (s *MemoryStoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = NewMemoryStore()
	s.user = &models.User{Name: "Asha", Email: "asha@example.com", PasswordHash: "hash"}
	s.Require().NoError(s.store.CreateUser(s.ctx, s.user))
}

func (s *MemoryStoreTestSuite) TestCreateAssignsIDAndRejectsDuplicateEmail() {
	s.NotEmpty(s.user.ID)

	err := s.store.CreateUser(s.ctx, &models.User{Name: "Other", Email: "asha@example.com"})
	s.ErrorIs(err, ErrDuplicateEmail)
}

func (s *MemoryStoreTestSuite) TestFindReturnsCopies() {
	found, err := s.store.FindByEmail(s.ctx, "asha@example.com")
	s.Require().NoError(err)
	s.Equal(s.user.ID, found.ID)
	s.NotNil(found.Addresses)
	s.NotNil(found.Orders)

	found.Name = "mutated"
	again, err := s.store.FindByID(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Equal("Asha", again.Name)

	_, err = s.store.FindByID(s.ctx, "missing")
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryStoreTestSuite) TestResetCodeLifecycle() {
	expiry := time.Now().Add(10 * time.Minute)
	s.Require().NoError(s.store.SetResetCode(s.ctx, s.user.ID, "1234", expiry))

	found, _ := s.store.FindByID(s.ctx, s.user.ID)
	s.Equal("1234", found.OTP)
	s.Require().NotNil(found.OTPExpiry)

	s.Require().NoError(s.store.UpdatePassword(s.ctx, s.user.ID, "new-hash"))
	found, _ = s.store.FindByID(s.ctx, s.user.ID)
	s.Equal("new-hash", found.PasswordHash)
	s.Empty(found.OTP)
	s.Nil(found.OTPExpiry)

	s.ErrorIs(s.store.SetResetCode(s.ctx, "missing", "1", expiry), ErrNotFound)
}

func (s *MemoryStoreTestSuite) TestAddAddressDeduplicatesOnLine1AndZip() {
	addr := models.Address{Name: "Home", Line1: "12 MG Road", City: "Pune", Zip: "411001"}

	added, err := s.store.AddAddress(s.ctx, s.user.ID, addr)
	s.Require().NoError(err)
	s.True(added)

	addr.Name = "Home again"
	added, err = s.store.AddAddress(s.ctx, s.user.ID, addr)
	s.Require().NoError(err)
	s.False(added)

	found, _ := s.store.FindByID(s.ctx, s.user.ID)
	s.Len(found.Addresses, 1)
	s.Equal("Home", found.Addresses[0].Name)

	_, err = s.store.AddAddress(s.ctx, "missing", addr)
	s.ErrorIs(err, ErrNotFound)
}

func (s *MemoryStoreTestSuite) TestOrderPaidTransitionHappensOnce() {
	order := models.Order{OrderID: "order_1", Amount: 250, Status: models.OrderStatusPending, Date: time.Now()}
	s.Require().NoError(s.store.AddOrder(s.ctx, s.user.ID, order))
	s.Require().NoError(s.store.SetOrderSession(s.ctx, "order_1", "cs_test_1"))

	owner, err := s.store.FindByOrderID(s.ctx, "order_1")
	s.Require().NoError(err)
	s.Equal(s.user.ID, owner.ID)
	s.Equal("cs_test_1", owner.Orders[0].PaymentSessionID)

	changed, err := s.store.MarkOrderPaid(s.ctx, "order_1", time.Now())
	s.Require().NoError(err)
	s.True(changed)

	changed, err = s.store.MarkOrderPaid(s.ctx, "order_1", time.Now())
	s.Require().NoError(err)
	s.False(changed)

	owner, _ = s.store.FindByOrderID(s.ctx, "order_1")
	s.Equal(models.OrderStatusPaid, owner.Orders[0].Status)
	s.NotNil(owner.Orders[0].PaidAt)

	_, err = s.store.MarkOrderPaid(s.ctx, "order_missing", time.Now())
	s.ErrorIs(err, ErrNotFound)
}
