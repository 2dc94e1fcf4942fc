package service

import (
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WalletService 钱包账本服务。余额只通过本服务的借记/贷记变动，
// 且必须在调用方的事务内执行，借记随事务回滚一并补偿。
type WalletService struct {
	walletRepo repository.WalletRepository
}

// NewWalletService 创建钱包服务实例
func NewWalletService(walletRepo repository.WalletRepository) *WalletService {
	return &WalletService{walletRepo: walletRepo}
}

// GetWallet 获取用户钱包
func (s *WalletService) GetWallet(userID uint) (*models.Wallet, error) {
	return s.walletRepo.GetByUserID(userID)
}

// GetOrCreateWallet 获取用户钱包，不存在时创建零余额钱包
func (s *WalletService) GetOrCreateWallet(userID uint) (*models.Wallet, error) {
	wallet, err := s.walletRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}
	wallet = &models.Wallet{
		UserID:  userID,
		Balance: models.NewMoneyFromDecimal(decimal.Zero),
	}
	if err := s.walletRepo.Create(wallet); err != nil {
		return nil, err
	}
	return wallet, nil
}

// ListTransactions 分页查询钱包流水
func (s *WalletService) ListTransactions(filter repository.WalletTransactionListFilter) ([]models.WalletTransaction, int64, error) {
	return s.walletRepo.ListTransactions(filter)
}

// DebitInTx 在事务内借记钱包。行级锁定钱包行，余额不足返回 ErrInsufficientBalance。
// reference 作为幂等键：同一引用重复借记直接返回已有流水。
func (s *WalletService) DebitInTx(tx *gorm.DB, userID uint, amount decimal.Decimal, reference, note string) (*models.WalletTransaction, error) {
	// amount 必须为正数：负数借记等同贷记，流水类型会与余额变动方向矛盾
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrAmountInvalid
	}
	return s.changeBalanceInTx(tx, userID, amount.Neg(), constants.WalletTxnTypeDebit, reference, note)
}

// CreditInTx 在事务内贷记钱包，reference 幂等。
func (s *WalletService) CreditInTx(tx *gorm.DB, userID uint, amount decimal.Decimal, reference, note string) (*models.WalletTransaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrAmountInvalid
	}
	return s.changeBalanceInTx(tx, userID, amount, constants.WalletTxnTypeCredit, reference, note)
}

// AdminCredit 管理端为用户充值（独立事务）
func (s *WalletService) AdminCredit(userID uint, amount decimal.Decimal, reference, note string) (*models.WalletTransaction, error) {
	var txnResult *models.WalletTransaction
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		txn, err := s.CreditInTx(tx, userID, amount, reference, note)
		if err != nil {
			return err
		}
		txnResult = txn
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txnResult, nil
}

func (s *WalletService) changeBalanceInTx(tx *gorm.DB, userID uint, delta decimal.Decimal, txnType string, reference, note string) (*models.WalletTransaction, error) {
	if delta.IsZero() {
		return nil, ErrAmountInvalid
	}
	repo := s.walletRepo.WithTx(tx)

	// 同一引用重复执行视为幂等回放
	if reference != "" {
		existing, err := repo.GetTransactionByReference(reference)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	now := time.Now()
	wallet, err := s.ensureWalletForUpdate(repo, userID, now)
	if err != nil {
		return nil, err
	}

	before := wallet.Balance.Decimal.Round(2)
	after := before.Add(delta).Round(2)
	if after.LessThan(decimal.Zero) {
		return nil, ErrInsufficientBalance
	}

	wallet.Balance = models.NewMoneyFromDecimal(after)
	wallet.UpdatedAt = now
	if err := repo.Update(wallet); err != nil {
		return nil, err
	}

	txn := &models.WalletTransaction{
		WalletID:      wallet.ID,
		Type:          txnType,
		Amount:        models.NewMoneyFromDecimal(delta.Abs()),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Reference:     reference,
		Note:          note,
		CreatedAt:     now,
	}
	if err := repo.CreateTransaction(txn); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *WalletService) ensureWalletForUpdate(repo *repository.GormWalletRepository, userID uint, now time.Time) (*models.Wallet, error) {
	wallet, err := repo.GetByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if wallet != nil {
		return wallet, nil
	}
	wallet = &models.Wallet{
		UserID:    userID,
		Balance:   models.NewMoneyFromDecimal(decimal.Zero),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := repo.Create(wallet); err != nil {
		return nil, err
	}
	// 新建后再次加锁读取，保证后续修改持有行锁
	return repo.GetByUserIDForUpdate(userID)
}
