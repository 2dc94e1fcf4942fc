package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/constants"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupWalletServiceTest(t *testing.T) (*WalletService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:wallet_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Wallet{},
		&models.WalletTransaction{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewWalletService(repository.NewWalletRepository(db)), db
}

func createWalletTestUser(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("wallet_user_%d@example.com", id),
		PasswordHash: "hash",
		Role:         constants.RoleCustomer,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func TestWalletServiceAdminCredit(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)
	createWalletTestUser(t, models.DB, 101)

	txn, err := svc.AdminCredit(101, decimal.NewFromInt(120), "admin-credit:test-1", "充值测试")
	if err != nil {
		t.Fatalf("admin credit failed: %v", err)
	}
	if txn.Type != constants.WalletTxnTypeCredit {
		t.Fatalf("txn type want credit, got %s", txn.Type)
	}
	if !txn.BalanceAfter.Decimal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("balance after want 120, got %s", txn.BalanceAfter.String())
	}

	wallet, err := svc.GetWallet(101)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	if wallet == nil || !wallet.Balance.Decimal.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("unexpected wallet: %+v", wallet)
	}
}

func TestWalletServiceDebitInsufficient(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)
	createWalletTestUser(t, models.DB, 102)

	if _, err := svc.AdminCredit(102, decimal.NewFromInt(100), "admin-credit:test-2", ""); err != nil {
		t.Fatalf("admin credit failed: %v", err)
	}

	// 100 的余额付不起 117 的订单
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		_, err := svc.DebitInTx(tx, 102, decimal.NewFromInt(117), "order:test-ref-1", "order payment")
		return err
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got: %v", err)
	}

	// 失败的借记不得改动余额
	wallet, err := svc.GetWallet(102)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	if !wallet.Balance.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance should stay 100, got %s", wallet.Balance.String())
	}
}

func TestWalletServiceDebitIdempotentByReference(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)
	createWalletTestUser(t, models.DB, 103)

	if _, err := svc.AdminCredit(103, decimal.NewFromInt(200), "admin-credit:test-3", ""); err != nil {
		t.Fatalf("admin credit failed: %v", err)
	}

	var first, second *models.WalletTransaction
	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		txn, err := svc.DebitInTx(tx, 103, decimal.NewFromInt(50), "order:test-ref-2", "order payment")
		first = txn
		return err
	}); err != nil {
		t.Fatalf("first debit failed: %v", err)
	}

	if err := models.DB.Transaction(func(tx *gorm.DB) error {
		txn, err := svc.DebitInTx(tx, 103, decimal.NewFromInt(50), "order:test-ref-2", "order payment")
		second = txn
		return err
	}); err != nil {
		t.Fatalf("replayed debit failed: %v", err)
	}

	if first == nil || second == nil || first.ID != second.ID {
		t.Fatalf("replayed debit should return the original transaction: %+v vs %+v", first, second)
	}

	wallet, err := svc.GetWallet(103)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	if !wallet.Balance.Decimal.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("balance should be debited once, want 150 got %s", wallet.Balance.String())
	}
}

func TestWalletServiceRollbackCompensatesDebit(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)
	createWalletTestUser(t, models.DB, 104)

	if _, err := svc.AdminCredit(104, decimal.NewFromInt(80), "admin-credit:test-4", ""); err != nil {
		t.Fatalf("admin credit failed: %v", err)
	}

	boom := errors.New("downstream failed")
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := svc.DebitInTx(tx, 104, decimal.NewFromInt(30), "order:test-ref-3", "order payment"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("transaction should surface the downstream error, got: %v", err)
	}

	wallet, err := svc.GetWallet(104)
	if err != nil {
		t.Fatalf("get wallet failed: %v", err)
	}
	if !wallet.Balance.Decimal.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("rolled back debit should restore balance, want 80 got %s", wallet.Balance.String())
	}

	var count int64
	models.DB.Model(&models.WalletTransaction{}).Where("reference = ?", "order:test-ref-3").Count(&count)
	if count != 0 {
		t.Fatalf("rolled back transaction should not persist, found %d rows", count)
	}
}

func TestWalletServiceGetOrCreate(t *testing.T) {
	svc, _ := setupWalletServiceTest(t)
	createWalletTestUser(t, models.DB, 105)

	wallet, err := svc.GetOrCreateWallet(105)
	if err != nil {
		t.Fatalf("get or create failed: %v", err)
	}
	if wallet == nil || !wallet.Balance.Decimal.Equal(decimal.Zero) {
		t.Fatalf("new wallet should start at zero: %+v", wallet)
	}

	again, err := svc.GetOrCreateWallet(105)
	if err != nil {
		t.Fatalf("second get or create failed: %v", err)
	}
	if again.ID != wallet.ID {
		t.Fatalf("get or create should reuse wallet, ids %d vs %d", wallet.ID, again.ID)
	}

	zeroDebit := models.DB.Transaction(func(tx *gorm.DB) error {
		_, err := svc.DebitInTx(tx, 105, decimal.Zero, "order:test-ref-4", "")
		return err
	})
	if !errors.Is(zeroDebit, ErrAmountInvalid) {
		t.Fatalf("zero debit want ErrAmountInvalid, got: %v", zeroDebit)
	}
}

func TestWalletServiceRejectsNegativeAmounts(t *testing.T) {
	svc, db := setupWalletServiceTest(t)
	createWalletTestUser(t, db, 106)

	if _, err := svc.AdminCredit(106, decimal.NewFromInt(50), "credit:test-ref-5", "topup"); err != nil {
		t.Fatalf("admin credit failed: %v", err)
	}

	// 负数借记等同贷记，必须在入口拒绝
	negDebit := models.DB.Transaction(func(tx *gorm.DB) error {
		_, err := svc.DebitInTx(tx, 106, decimal.NewFromInt(-30), "order:test-ref-6", "")
		return err
	})
	if !errors.Is(negDebit, ErrAmountInvalid) {
		t.Fatalf("negative debit want ErrAmountInvalid, got: %v", negDebit)
	}

	negCredit := models.DB.Transaction(func(tx *gorm.DB) error {
		_, err := svc.CreditInTx(tx, 106, decimal.NewFromInt(-30), "credit:test-ref-7", "")
		return err
	})
	if !errors.Is(negCredit, ErrAmountInvalid) {
		t.Fatalf("negative credit want ErrAmountInvalid, got: %v", negCredit)
	}

	var wallet models.Wallet
	if err := db.Where("user_id = ?", 106).First(&wallet).Error; err != nil {
		t.Fatalf("load wallet failed: %v", err)
	}
	if !wallet.Balance.Decimal.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("balance must stay 50, got %s", wallet.Balance.String())
	}

	var txnCount int64
	db.Model(&models.WalletTransaction{}).Where("reference IN ?", []string{"order:test-ref-6", "credit:test-ref-7"}).Count(&txnCount)
	if txnCount != 0 {
		t.Fatalf("rejected amounts must not record transactions, got %d", txnCount)
	}
}
