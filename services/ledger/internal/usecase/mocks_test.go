package usecase

import (
	"time"

	"eksporyuk-ledger/pkg/queue"
	"eksporyuk-ledger/services/ledger/internal/entity"

	"github.com/stretchr/testify/mock"
)

// MockSaleRepository is a mock implementation of persistent.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) GetByID(id string) (*entity.Sale, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Sale), args.Error(1)
}

func (m *MockSaleRepository) GetOrCreate(sale *entity.Sale) (*entity.Sale, bool, error) {
	args := m.Called(sale)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Sale), args.Bool(1), args.Error(2)
}

func (m *MockSaleRepository) SetAttribution(saleID string, state entity.AttributionState, reason string) error {
	args := m.Called(saleID, state, reason)
	return args.Error(0)
}

func (m *MockSaleRepository) SetVoided(saleID string) error {
	args := m.Called(saleID)
	return args.Error(0)
}

func (m *MockSaleRepository) ListUnattributed(limit, offset int) ([]*entity.Sale, error) {
	args := m.Called(limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Sale), args.Error(1)
}

func (m *MockSaleRepository) ListForAudit(scope entity.AuditScope) ([]*entity.Sale, error) {
	args := m.Called(scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Sale), args.Error(1)
}

// MockAffiliateRepository is a mock implementation of persistent.AffiliateRepository
type MockAffiliateRepository struct {
	mock.Mock
}

func (m *MockAffiliateRepository) GetByID(id string) (*entity.AffiliateAccount, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AffiliateAccount), args.Error(1)
}

func (m *MockAffiliateRepository) GetByCode(code string) (*entity.AffiliateAccount, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AffiliateAccount), args.Error(1)
}

func (m *MockAffiliateRepository) GetByUserID(userID string) (*entity.AffiliateAccount, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AffiliateAccount), args.Error(1)
}

func (m *MockAffiliateRepository) GetLegacyIdentity(externalID string, asOf time.Time) (*entity.LegacyIdentity, error) {
	args := m.Called(externalID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LegacyIdentity), args.Error(1)
}

func (m *MockAffiliateRepository) GetUserByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockAffiliateRepository) Create(account *entity.AffiliateAccount) (*entity.AffiliateAccount, error) {
	args := m.Called(account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AffiliateAccount), args.Error(1)
}

// MockLedgerRepository is a mock implementation of persistent.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Post(sale *entity.Sale, affiliate *entity.AffiliateAccount, commission entity.Commission) (*entity.LedgerEntry, bool, error) {
	args := m.Called(sale, affiliate, commission)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.LedgerEntry), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) Reverse(entryID string) (*entity.LedgerEntry, bool, error) {
	args := m.Called(entryID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.LedgerEntry), args.Bool(1), args.Error(2)
}

func (m *MockLedgerRepository) GetActiveBySaleID(saleID string) (*entity.LedgerEntry, error) {
	args := m.Called(saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListBySaleID(saleID string) ([]*entity.LedgerEntry, error) {
	args := m.Called(saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListByAffiliate(affiliateID string, limit, offset int) ([]*entity.LedgerEntry, error) {
	args := m.Called(affiliateID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.LedgerEntry), args.Error(1)
}

// MockWalletRepository is a mock implementation of persistent.WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetOrCreateByUserID(userID string) (*entity.Wallet, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserID(userID string) (*entity.Wallet, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByID(id string) (*entity.Wallet, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Wallet), args.Error(1)
}

func (m *MockWalletRepository) SetHold(walletID string, held bool) error {
	args := m.Called(walletID, held)
	return args.Error(0)
}

func (m *MockWalletRepository) ListTransactions(walletID string, limit, offset int) ([]*entity.WalletTransaction, error) {
	args := m.Called(walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.WalletTransaction), args.Error(1)
}

// MockPayoutRepository is a mock implementation of persistent.PayoutRepository
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) Request(userID string, amount int64) (*entity.Payout, error) {
	args := m.Called(userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Payout), args.Error(1)
}

func (m *MockPayoutRepository) Settle(payoutID string) (*entity.Payout, bool, error) {
	args := m.Called(payoutID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Payout), args.Bool(1), args.Error(2)
}

func (m *MockPayoutRepository) Fail(payoutID string) (*entity.Payout, bool, error) {
	args := m.Called(payoutID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*entity.Payout), args.Bool(1), args.Error(2)
}

func (m *MockPayoutRepository) GetByID(id string) (*entity.Payout, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Payout), args.Error(1)
}

func (m *MockPayoutRepository) ListByUser(userID string, limit, offset int) ([]*entity.Payout, error) {
	args := m.Called(userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Payout), args.Error(1)
}

// MockAuditRepository is a mock implementation of persistent.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) ListWallets(scope entity.AuditScope) ([]*entity.Wallet, error) {
	args := m.Called(scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Wallet), args.Error(1)
}

func (m *MockAuditRepository) SumTransactions(walletID string) (int64, error) {
	args := m.Called(walletID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuditRepository) ListDuplicateSaleIDs() ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockAuditRepository) ListOrphanedEntries() ([]*entity.LedgerEntry, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.LedgerEntry), args.Error(1)
}

// MockRuleRepository is a mock implementation of persistent.RuleRepository
type MockRuleRepository struct {
	mock.Mock
}

func (m *MockRuleRepository) GetActiveByProduct(productID string) (*entity.CommissionRule, error) {
	args := m.Called(productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CommissionRule), args.Error(1)
}

func (m *MockRuleRepository) Upsert(rule *entity.CommissionRule) (*entity.CommissionRule, error) {
	args := m.Called(rule)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CommissionRule), args.Error(1)
}

// MockRuleResolver is a mock implementation of RuleResolver
type MockRuleResolver struct {
	mock.Mock
}

func (m *MockRuleResolver) Resolve(productID string, saleAmount int64) (entity.Commission, error) {
	args := m.Called(productID, saleAmount)
	return args.Get(0).(entity.Commission), args.Error(1)
}

// MockAttributionResolver is a mock implementation of AttributionResolver
type MockAttributionResolver struct {
	mock.Mock
}

func (m *MockAttributionResolver) Resolve(rawRef string, asOf time.Time) (*entity.AffiliateAccount, *entity.Unattributable, error) {
	args := m.Called(rawRef, asOf)
	var account *entity.AffiliateAccount
	if args.Get(0) != nil {
		account = args.Get(0).(*entity.AffiliateAccount)
	}
	var unattributable *entity.Unattributable
	if args.Get(1) != nil {
		unattributable = args.Get(1).(*entity.Unattributable)
	}
	return account, unattributable, args.Error(2)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishCommissionPosted(event queue.CommissionPostedEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishPayoutSettled(event queue.PayoutSettledEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockSummaryInvalidator is a mock implementation of SummaryInvalidator
type MockSummaryInvalidator struct {
	mock.Mock
}

func (m *MockSummaryInvalidator) InvalidateSummary(userID string) {
	m.Called(userID)
}

// MockReportArchive is a mock implementation of ReportArchive
type MockReportArchive struct {
	mock.Mock
}

func (m *MockReportArchive) UploadAuditReport(runID string, body []byte) (string, error) {
	args := m.Called(runID, body)
	return args.String(0), args.Error(1)
}
