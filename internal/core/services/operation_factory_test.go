package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
	portssvc "github.com/gorushkin/ledgerly/internal/core/ports/services"
	"github.com/gorushkin/ledgerly/internal/core/services"
)

type OperationFactoryTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockTxnRepo     *MockTransactionRepository
	factory         portssvc.OperationFactorySvc
}

func (suite *OperationFactoryTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockTxnRepo = new(MockTransactionRepository)
	suite.factory = services.NewOperationFactory(suite.mockAccountRepo, suite.mockTxnRepo)
}

// newEntryFixture builds a persisted-shape entry for the given accounts.
func newEntryFixture(t *testing.T, userID domain.EntityID, from, to domain.Account) domain.Entry {
	t.Helper()
	out, err := domain.NewAmount("-25.00", from.CurrencyCode.MinorUnitDigits())
	if err != nil {
		t.Fatalf("building amount: %v", err)
	}
	in, err := domain.NewAmount("25.00", to.CurrencyCode.MinorUnitDigits())
	if err != nil {
		t.Fatalf("building amount: %v", err)
	}
	entry, err := domain.CreateEntry(userID, domain.NewEntityID(), "groceries", []domain.OperationDraft{
		{Account: from, Amount: out},
		{Account: to, Amount: in},
	}, time.Now().UTC())
	if err != nil {
		t.Fatalf("building entry fixture: %v", err)
	}
	return entry
}

func (suite *OperationFactoryTestSuite) TestCreateOperationsForEntry_Success() {
	ctx := context.Background()
	userID := domain.NewEntityID()
	from := newUserAccount(suite.T(), userID, domain.USD)
	to := newUserAccount(suite.T(), userID, domain.USD)
	entry := newEntryFixture(suite.T(), userID, from, to)

	rawOps := []portssvc.RawOperation{
		{AccountID: from.AccountID, Amount: "-25.00", Description: "out"},
		{AccountID: to.AccountID, Amount: "25.00", Description: "in"},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, userID, from.AccountID).Return(&from, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, userID, to.AccountID).Return(&to, nil).Once()
	suite.mockTxnRepo.On("SaveOperation", ctx, mock.AnythingOfType("domain.Operation")).Return(nil).Twice()

	ops, err := suite.factory.CreateOperationsForEntry(ctx, userID, entry, rawOps)

	suite.Require().NoError(err)
	suite.Require().Len(ops, 2)
	// Input order is preserved.
	suite.Equal(from.AccountID, ops[0].AccountID)
	suite.Equal("-25.00", ops[0].Amount.String())
	suite.Equal(to.AccountID, ops[1].AccountID)
	suite.Equal("25.00", ops[1].Amount.String())
	suite.Equal(entry.EntryID, ops[0].EntryID)
	suite.NotEmpty(ops[0].Hash)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *OperationFactoryTestSuite) TestCreateOperationsForEntry_BaseValuation() {
	ctx := context.Background()
	userID := domain.NewEntityID()
	from := newUserAccount(suite.T(), userID, domain.EUR)
	to := newUserAccount(suite.T(), userID, domain.EUR)
	entry := newEntryFixture(suite.T(), userID, from, to)

	baseAmount := "-27.50"
	rate := decimal.RequireFromString("1.1")
	rawOps := []portssvc.RawOperation{
		{AccountID: from.AccountID, Amount: "-25.00", BaseAmount: &baseAmount, BaseCurrency: domain.USD, RateBasePerLocal: &rate},
		{AccountID: to.AccountID, Amount: "25.00"},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, userID, from.AccountID).Return(&from, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, userID, to.AccountID).Return(&to, nil).Once()
	suite.mockTxnRepo.On("SaveOperation", ctx, mock.AnythingOfType("domain.Operation")).Return(nil).Twice()

	ops, err := suite.factory.CreateOperationsForEntry(ctx, userID, entry, rawOps)

	suite.Require().NoError(err)
	suite.Require().NotNil(ops[0].BaseAmount)
	suite.Equal("-27.50", ops[0].BaseAmount.String())
	suite.Require().NotNil(ops[0].BaseCurrency)
	suite.Equal(domain.USD, *ops[0].BaseCurrency)
	suite.True(rate.Equal(*ops[0].RateBasePerLocal))
	suite.Nil(ops[1].BaseAmount)

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *OperationFactoryTestSuite) TestCreateOperationsForEntry_MissingAccountWritesNothing() {
	ctx := context.Background()
	userID := domain.NewEntityID()
	from := newUserAccount(suite.T(), userID, domain.USD)
	to := newUserAccount(suite.T(), userID, domain.USD)
	entry := newEntryFixture(suite.T(), userID, from, to)
	missingID := domain.NewEntityID()

	rawOps := []portssvc.RawOperation{
		{AccountID: from.AccountID, Amount: "-25.00"},
		{AccountID: missingID, Amount: "25.00"},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, userID, from.AccountID).Return(&from, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, userID, missingID).Return(nil, apperrors.ErrAccountNotFound).Once()

	ops, err := suite.factory.CreateOperationsForEntry(ctx, userID, entry, rawOps)

	suite.Require().Error(err)
	suite.Nil(ops)
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
	// All drafts validate before the first write, so nothing persists.
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveOperation", mock.Anything, mock.Anything)

	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *OperationFactoryTestSuite) TestCreateOperationsForEntry_RetriesIDCollision() {
	ctx := context.Background()
	userID := domain.NewEntityID()
	from := newUserAccount(suite.T(), userID, domain.USD)
	to := newUserAccount(suite.T(), userID, domain.USD)
	entry := newEntryFixture(suite.T(), userID, from, to)

	rawOps := []portssvc.RawOperation{
		{AccountID: from.AccountID, Amount: "-25.00"},
		{AccountID: to.AccountID, Amount: "25.00"},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, userID, from.AccountID).Return(&from, nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, userID, to.AccountID).Return(&to, nil).Once()

	var seenIDs []domain.EntityID
	record := func(args mock.Arguments) {
		seenIDs = append(seenIDs, args.Get(1).(domain.Operation).OperationID)
	}
	suite.mockTxnRepo.On("SaveOperation", ctx, mock.AnythingOfType("domain.Operation")).
		Run(record).Return(apperrors.ErrDuplicateID).Once()
	suite.mockTxnRepo.On("SaveOperation", ctx, mock.AnythingOfType("domain.Operation")).
		Run(record).Return(nil).Twice()

	ops, err := suite.factory.CreateOperationsForEntry(ctx, userID, entry, rawOps)

	suite.Require().NoError(err)
	suite.Require().Len(ops, 2)
	suite.Require().Len(seenIDs, 3)
	suite.NotEqual(seenIDs[0], seenIDs[1], "a collision must be retried with a fresh identifier")

	suite.mockAccountRepo.AssertExpectations(suite.T())
	suite.mockTxnRepo.AssertExpectations(suite.T())
}

func (suite *OperationFactoryTestSuite) TestCreateOperationsForEntry_AmountCurrencyMismatch() {
	ctx := context.Background()
	userID := domain.NewEntityID()
	from := newUserAccount(suite.T(), userID, domain.JPY)
	to := newUserAccount(suite.T(), userID, domain.JPY)
	entry := domain.Entry{EntryID: domain.NewEntityID(), UserID: userID}

	// Fractional yen cannot be represented.
	rawOps := []portssvc.RawOperation{
		{AccountID: from.AccountID, Amount: "-100.50"},
		{AccountID: to.AccountID, Amount: "100.50"},
	}

	suite.mockAccountRepo.On("FindAccountByID", ctx, userID, from.AccountID).Return(&from, nil).Once()

	ops, err := suite.factory.CreateOperationsForEntry(ctx, userID, entry, rawOps)

	suite.Require().Error(err)
	suite.Nil(ops)
	suite.ErrorIs(err, apperrors.ErrInvalidAmount)
	suite.mockTxnRepo.AssertNotCalled(suite.T(), "SaveOperation", mock.Anything, mock.Anything)
}

func TestOperationFactoryTestSuite(t *testing.T) {
	suite.Run(t, new(OperationFactoryTestSuite))
}
