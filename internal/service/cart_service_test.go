package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCartServiceTest(t *testing.T) (*CartService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:cart_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewCartService(repository.NewProductRepository(db), 60), db
}

func TestCartServiceSetAndView(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()

	watch := createCheckoutProduct(t, db, "Smart Watch", 65, true)
	earphones := createCheckoutProduct(t, db, "Earphones", 30, true)

	token := svc.NewToken()
	if token == "" {
		t.Fatalf("token should not be empty")
	}

	if err := svc.SetItem(ctx, token, watch.ID, 2); err != nil {
		t.Fatalf("set watch failed: %v", err)
	}
	if err := svc.SetItem(ctx, token, earphones.ID, 1); err != nil {
		t.Fatalf("set earphones failed: %v", err)
	}

	view, err := svc.View(ctx, token)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("items want 2, got %d", len(view.Items))
	}
	// 输出按商品 ID 稳定排序
	if view.Items[0].ProductID != watch.ID || view.Items[1].ProductID != earphones.ID {
		t.Fatalf("items should be sorted by product id: %+v", view.Items)
	}
	if !view.Subtotal.Decimal.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("subtotal want 160, got %s", view.Subtotal.String())
	}

	// 数量为 0 表示移除
	if err := svc.SetItem(ctx, token, earphones.ID, 0); err != nil {
		t.Fatalf("remove earphones failed: %v", err)
	}
	lines, err := svc.Lines(ctx, token)
	if err != nil {
		t.Fatalf("lines failed: %v", err)
	}
	if len(lines) != 1 || lines[0].ProductID != watch.ID || lines[0].Quantity != 2 {
		t.Fatalf("unexpected lines: %+v", lines)
	}
}

func TestCartServiceValidation(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()

	inactive := createCheckoutProduct(t, db, "Ghost", 10, false)
	token := svc.NewToken()

	if err := svc.SetItem(ctx, token, inactive.ID, 1); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("inactive product want ErrProductUnavailable, got: %v", err)
	}
	if err := svc.SetItem(ctx, token, 9999, 1); !errors.Is(err, ErrProductUnavailable) {
		t.Fatalf("unknown product want ErrProductUnavailable, got: %v", err)
	}
	if err := svc.SetItem(ctx, token, 1, -1); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("negative quantity want ErrQuantityInvalid, got: %v", err)
	}
	if err := svc.SetItem(ctx, "", 1, 1); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("missing token want ErrCartEmpty, got: %v", err)
	}
}

func TestCartServiceDropsDeactivatedProducts(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()

	product := createCheckoutProduct(t, db, "Smart Watch", 65, true)
	token := svc.NewToken()
	if err := svc.SetItem(ctx, token, product.ID, 1); err != nil {
		t.Fatalf("set item failed: %v", err)
	}

	// 商品下架后视图静默剔除并固化
	if err := db.Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	view, err := svc.View(ctx, token)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("deactivated product should be dropped, got %+v", view.Items)
	}

	lines, err := svc.Lines(ctx, token)
	if err != nil {
		t.Fatalf("lines failed: %v", err)
	}
	if len(lines) != 0 {
		t.Fatalf("dropped product should not reappear in lines: %+v", lines)
	}
}

func TestCartServiceClear(t *testing.T) {
	svc, db := setupCartServiceTest(t)
	ctx := context.Background()

	product := createCheckoutProduct(t, db, "Smart Watch", 65, true)
	token := svc.NewToken()
	if err := svc.SetItem(ctx, token, product.ID, 3); err != nil {
		t.Fatalf("set item failed: %v", err)
	}
	if err := svc.Clear(ctx, token); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	view, err := svc.View(ctx, token)
	if err != nil {
		t.Fatalf("view failed: %v", err)
	}
	if len(view.Items) != 0 {
		t.Fatalf("cleared cart should be empty, got %+v", view.Items)
	}
}
