package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cyberworld360/cyberworld-store/internal/cache"
	"github.com/cyberworld360/cyberworld-store/internal/models"
	"github.com/cyberworld360/cyberworld-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice models.Money    `json:"unit_price"`
	Subtotal  models.Money    `json:"subtotal"`
	Product   *models.Product `json:"product"`
}

// CartView 购物车视图
type CartView struct {
	Token    string           `json:"token"`
	Items    []CartItemDetail `json:"items"`
	Subtotal models.Money     `json:"subtotal"`
}

type sessionCart struct {
	Lines     map[uint]int `json:"lines"` // productID → quantity
	UpdatedAt time.Time    `json:"updated_at"`
}

// CartService 会话购物车服务。购物车按会话令牌存于 Redis，
// Redis 未启用时退化为进程内存储。价格永远在读取时按商品目录现价计算。
type CartService struct {
	productRepo repository.ProductRepository
	ttl         time.Duration

	mu    sync.Mutex
	local map[string]*sessionCart
}

// NewCartService 创建购物车服务
func NewCartService(productRepo repository.ProductRepository, ttlMinutes int) *CartService {
	ttl := 60 * time.Minute
	if ttlMinutes > 0 {
		ttl = time.Duration(ttlMinutes) * time.Minute
	}
	return &CartService{
		productRepo: productRepo,
		ttl:         ttl,
		local:       make(map[string]*sessionCart),
	}
}

func cartCacheKey(token string) string {
	return "cart:" + token
}

// NewToken 签发新的购物车会话令牌
func (s *CartService) NewToken() string {
	return uuid.NewString()
}

func (s *CartService) loadCart(ctx context.Context, token string) (*sessionCart, error) {
	if token == "" {
		return &sessionCart{Lines: make(map[uint]int)}, nil
	}
	if cache.Enabled() {
		var cart sessionCart
		found, err := cache.GetJSON(ctx, cartCacheKey(token), &cart)
		if err != nil {
			return nil, err
		}
		if !found || cart.Lines == nil {
			cart.Lines = make(map[uint]int)
		}
		return &cart, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpiredLocked()
	if cart, ok := s.local[token]; ok {
		copied := &sessionCart{Lines: make(map[uint]int, len(cart.Lines)), UpdatedAt: cart.UpdatedAt}
		for id, qty := range cart.Lines {
			copied.Lines[id] = qty
		}
		return copied, nil
	}
	return &sessionCart{Lines: make(map[uint]int)}, nil
}

func (s *CartService) saveCart(ctx context.Context, token string, cart *sessionCart) error {
	cart.UpdatedAt = time.Now()
	if cache.Enabled() {
		return cache.SetJSON(ctx, cartCacheKey(token), cart, s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local[token] = cart
	return nil
}

func (s *CartService) evictExpiredLocked() {
	cutoff := time.Now().Add(-s.ttl)
	for token, cart := range s.local {
		if cart.UpdatedAt.Before(cutoff) {
			delete(s.local, token)
		}
	}
}

// SetItem 设置购物车项数量，数量为 0 表示移除
func (s *CartService) SetItem(ctx context.Context, token string, productID uint, quantity int) error {
	if token == "" || productID == 0 {
		return ErrCartEmpty
	}
	if quantity < 0 {
		return ErrQuantityInvalid
	}

	cart, err := s.loadCart(ctx, token)
	if err != nil {
		return err
	}
	if quantity == 0 {
		delete(cart.Lines, productID)
		return s.saveCart(ctx, token, cart)
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductUnavailable
	}
	cart.Lines[productID] = quantity
	return s.saveCart(ctx, token, cart)
}

// Clear 清空购物车
func (s *CartService) Clear(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if cache.Enabled() {
		return cache.Del(ctx, cartCacheKey(token))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.local, token)
	return nil
}

// View 读取购物车并按商品现价定价。已下架商品静默剔除。
func (s *CartService) View(ctx context.Context, token string) (*CartView, error) {
	cart, err := s.loadCart(ctx, token)
	if err != nil {
		return nil, err
	}

	view := &CartView{Token: token, Items: make([]CartItemDetail, 0, len(cart.Lines))}
	subtotal := models.Money{}
	changed := false
	for productID, quantity := range cart.Lines {
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			delete(cart.Lines, productID)
			changed = true
			continue
		}
		lineSubtotal := models.NewMoneyFromDecimal(product.Price.Decimal.Mul(decimal.NewFromInt(int64(quantity))))
		view.Items = append(view.Items, CartItemDetail{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
			Subtotal:  lineSubtotal,
			Product:   product,
		})
		subtotal = models.NewMoneyFromDecimal(subtotal.Decimal.Add(lineSubtotal.Decimal))
	}
	sort.Slice(view.Items, func(i, j int) bool { return view.Items[i].ProductID < view.Items[j].ProductID })
	view.Subtotal = subtotal

	if changed && token != "" {
		if err := s.saveCart(ctx, token, cart); err != nil {
			return nil, err
		}
	}
	return view, nil
}

// Lines 导出购物车为结算行
func (s *CartService) Lines(ctx context.Context, token string) ([]CheckoutLine, error) {
	cart, err := s.loadCart(ctx, token)
	if err != nil {
		return nil, err
	}
	lines := make([]CheckoutLine, 0, len(cart.Lines))
	for productID, quantity := range cart.Lines {
		lines = append(lines, CheckoutLine{ProductID: productID, Quantity: quantity})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })
	return lines, nil
}
