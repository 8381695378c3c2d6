package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/gorushkin/ledgerly/internal/apperrors"
	"github.com/gorushkin/ledgerly/internal/core/domain"
	portssvc "github.com/gorushkin/ledgerly/internal/core/ports/services"
	"github.com/gorushkin/ledgerly/internal/core/services"
	"github.com/gorushkin/ledgerly/internal/dto"
)

type EntryContextLoaderTestSuite struct {
	suite.Suite
	mockRepo       *MockAccountRepository
	mockAccountSvc *MockAccountService
	loader         portssvc.EntryContextLoaderSvc
}

func (suite *EntryContextLoaderTestSuite) SetupTest() {
	suite.mockRepo = new(MockAccountRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.loader = services.NewEntryContextLoader(suite.mockRepo, suite.mockAccountSvc)
}

// entryReferencing builds a two-posting entry request against the given
// account ids.
func entryReferencing(fromID, toID domain.EntityID) dto.CreateEntryRequest {
	return dto.CreateEntryRequest{
		Operations: []dto.CreateOperationRequest{
			{AccountID: fromID.String(), Amount: "-10.00"},
			{AccountID: toID.String(), Amount: "10.00"},
		},
	}
}

func (suite *EntryContextLoaderTestSuite) TestLoadForEntries_SingleBatchedFetch() {
	ctx := context.Background()
	userID := domain.NewEntityID()
	usdFrom := newUserAccount(suite.T(), userID, domain.USD)
	usdTo := newUserAccount(suite.T(), userID, domain.USD)
	sysUSD := domain.NewSystemAccount(userID, domain.USD, time.Now().UTC())

	entries := []dto.CreateEntryRequest{
		entryReferencing(usdFrom.AccountID, usdTo.AccountID),
		// Second entry reuses the same accounts; the fetch must still be
		// a single call with de-duplicated ids.
		entryReferencing(usdTo.AccountID, usdFrom.AccountID),
	}

	suite.mockRepo.On("FindAccountsByIDs", ctx, userID, []domain.EntityID{usdFrom.AccountID, usdTo.AccountID}).
		Return(map[domain.EntityID]domain.Account{
			usdFrom.AccountID: usdFrom,
			usdTo.AccountID:   usdTo,
		}, nil).Once()
	suite.mockAccountSvc.On("FindOrCreateSystemAccount", ctx, userID, domain.USD).Return(&sysUSD, nil).Once()

	ectx, err := suite.loader.LoadForEntries(ctx, userID, entries)

	suite.Require().NoError(err)
	suite.Len(ectx.Accounts, 2)
	suite.Len(ectx.SystemAccounts, 1)
	suite.Equal(sysUSD.AccountID, ectx.SystemAccounts[domain.USD].AccountID)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *EntryContextLoaderTestSuite) TestLoadForEntries_OneSystemAccountPerCurrency() {
	ctx := context.Background()
	userID := domain.NewEntityID()
	usdAccount := newUserAccount(suite.T(), userID, domain.USD)
	eurAccount := newUserAccount(suite.T(), userID, domain.EUR)
	sysUSD := domain.NewSystemAccount(userID, domain.USD, time.Now().UTC())
	sysEUR := domain.NewSystemAccount(userID, domain.EUR, time.Now().UTC())

	entries := []dto.CreateEntryRequest{entryReferencing(usdAccount.AccountID, eurAccount.AccountID)}

	suite.mockRepo.On("FindAccountsByIDs", ctx, userID, mock.AnythingOfType("[]domain.EntityID")).
		Return(map[domain.EntityID]domain.Account{
			usdAccount.AccountID: usdAccount,
			eurAccount.AccountID: eurAccount,
		}, nil).Once()
	suite.mockAccountSvc.On("FindOrCreateSystemAccount", ctx, userID, domain.USD).Return(&sysUSD, nil).Once()
	suite.mockAccountSvc.On("FindOrCreateSystemAccount", ctx, userID, domain.EUR).Return(&sysEUR, nil).Once()

	ectx, err := suite.loader.LoadForEntries(ctx, userID, entries)

	suite.Require().NoError(err)
	suite.Len(ectx.SystemAccounts, 2)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func (suite *EntryContextLoaderTestSuite) TestLoadForEntries_MissingAccount() {
	ctx := context.Background()
	userID := domain.NewEntityID()
	known := newUserAccount(suite.T(), userID, domain.USD)
	unknownID := domain.NewEntityID()

	entries := []dto.CreateEntryRequest{entryReferencing(known.AccountID, unknownID)}

	// The repository simply omits ids it cannot find.
	suite.mockRepo.On("FindAccountsByIDs", ctx, userID, mock.AnythingOfType("[]domain.EntityID")).
		Return(map[domain.EntityID]domain.Account{known.AccountID: known}, nil).Once()

	ectx, err := suite.loader.LoadForEntries(ctx, userID, entries)

	suite.Require().Error(err)
	suite.Nil(ectx)
	suite.ErrorIs(err, apperrors.ErrAccountNotFound)
	suite.mockAccountSvc.AssertNotCalled(suite.T(), "FindOrCreateSystemAccount", mock.Anything, mock.Anything, mock.Anything)

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *EntryContextLoaderTestSuite) TestLoadForEntries_NoAccountsReferenced() {
	ctx := context.Background()
	userID := domain.NewEntityID()

	ectx, err := suite.loader.LoadForEntries(ctx, userID, []dto.CreateEntryRequest{})

	suite.Require().Error(err)
	suite.Nil(ectx)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountsByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryContextLoaderTestSuite) TestLoadForEntries_MalformedAccountID() {
	ctx := context.Background()
	userID := domain.NewEntityID()

	entries := []dto.CreateEntryRequest{{
		Operations: []dto.CreateOperationRequest{
			{AccountID: "not-a-uuid", Amount: "-1.00"},
			{AccountID: domain.NewEntityID().String(), Amount: "1.00"},
		},
	}}

	ectx, err := suite.loader.LoadForEntries(ctx, userID, entries)

	suite.Require().Error(err)
	suite.Nil(ectx)
	suite.ErrorIs(err, apperrors.ErrInvalidID)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindAccountsByIDs", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *EntryContextLoaderTestSuite) TestLoadForEntries_SystemAccountError() {
	ctx := context.Background()
	userID := domain.NewEntityID()
	account := newUserAccount(suite.T(), userID, domain.USD)
	other := newUserAccount(suite.T(), userID, domain.USD)
	expectedErr := assert.AnError

	entries := []dto.CreateEntryRequest{entryReferencing(account.AccountID, other.AccountID)}

	suite.mockRepo.On("FindAccountsByIDs", ctx, userID, mock.AnythingOfType("[]domain.EntityID")).
		Return(map[domain.EntityID]domain.Account{
			account.AccountID: account,
			other.AccountID:   other,
		}, nil).Once()
	suite.mockAccountSvc.On("FindOrCreateSystemAccount", ctx, userID, domain.USD).Return(nil, expectedErr).Once()

	ectx, err := suite.loader.LoadForEntries(ctx, userID, entries)

	suite.Require().Error(err)
	suite.Nil(ectx)
	suite.ErrorIs(err, expectedErr)

	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
}

func TestEntryContextLoaderTestSuite(t *testing.T) {
	suite.Run(t, new(EntryContextLoaderTestSuite))
}
