package application

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"storefront-analytics/internal/domain"
	"storefront-analytics/internal/ports"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

const (
	shopifyDomainSuffix = ".myshopify.com"
	storeDetailRecent   = 5
	customerListLimit   = 100
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]`)

// StoreService manages the stores a user owns
type StoreService struct {
	repo           ports.Repository
	tokens         ports.TokenVault
	validate       *validator.Validate
	logger         zerolog.Logger
	validateTokens bool
	now            func() time.Time
}

// NewStoreService creates a new store service
func NewStoreService(repo ports.Repository, tokens ports.TokenVault, logger zerolog.Logger) *StoreService {
	return NewStoreServiceWithOptions(repo, tokens, logger, false)
}

// NewStoreServiceWithOptions creates a store service that optionally probes
// access tokens against Shopify before storing them
func NewStoreServiceWithOptions(repo ports.Repository, tokens ports.TokenVault, logger zerolog.Logger, validateTokens bool) *StoreService {
	return &StoreService{
		repo:           repo,
		tokens:         tokens,
		validate:       newValidator(),
		logger:         logger,
		validateTokens: validateTokens,
		now:            time.Now,
	}
}

// CreateDemoStoreInput is the payload of a demo store
type CreateDemoStoreInput struct {
	StoreName string `json:"storeName" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email"`
}

// ConnectStoreInput is the payload of a store connected with its own Shopify domain
type ConnectStoreInput struct {
	StoreName   string `json:"storeName" validate:"required,max=255"`
	ShopDomain  string `json:"shopDomain" validate:"required,max=255"`
	Email       string `json:"email" validate:"required,email"`
	AccessToken string `json:"accessToken"`
}

// CreateDemoStore registers a token-less store under a generated shop domain.
// Syncing it always produces demo data.
func (s *StoreService) CreateDemoStore(ctx context.Context, caller domain.Caller, input CreateDemoStoreInput) (*domain.Store, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	slug := nonSlugChars.ReplaceAllString(strings.ToLower(input.StoreName), "-")
	store := &domain.Store{
		UserID:       caller.UserID,
		ShopDomain:   fmt.Sprintf("%s-%d%s", slug, s.now().UnixMilli(), shopifyDomainSuffix),
		StoreName:    input.StoreName,
		ContactEmail: input.Email,
		IsActive:     true,
	}

	if err := s.repo.CreateStore(ctx, store); err != nil {
		if errors.Is(err, domain.ErrStoreExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create demo store: %w", err)
	}

	s.logger.Info().
		Str("userId", caller.UserID).
		Str("storeId", store.ID).
		Str("shop", store.ShopDomain).
		Msg("Created demo store")
	return store, nil
}

// ConnectStore registers a real Shopify store, sealing its access token
func (s *StoreService) ConnectStore(ctx context.Context, caller domain.Caller, input ConnectStoreInput) (*domain.Store, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	shopDomain, err := NormalizeShopDomain(input.ShopDomain)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetStoreByDomain(ctx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing store: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrStoreExists
	}

	store := &domain.Store{
		UserID:       caller.UserID,
		ShopDomain:   shopDomain,
		StoreName:    input.StoreName,
		ContactEmail: input.Email,
		IsActive:     true,
	}

	if token := strings.TrimSpace(input.AccessToken); token != "" {
		if s.validateTokens {
			valid, err := s.tokens.ValidateToken(ctx, shopDomain, token)
			if err != nil {
				return nil, fmt.Errorf("failed to validate access token: %w", err)
			}
			if !valid {
				return nil, &domain.ValidationError{Field: "accessToken", Message: "token is invalid or revoked"}
			}
		}

		sealed, err := s.tokens.EncryptToken(token)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt access token: %w", err)
		}
		store.AccessToken = sealed
	}

	if err := s.repo.CreateStore(ctx, store); err != nil {
		if errors.Is(err, domain.ErrStoreExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	s.logger.Info().
		Str("userId", caller.UserID).
		Str("storeId", store.ID).
		Str("shop", store.ShopDomain).
		Bool("hasToken", store.HasCredential()).
		Msg("Connected store")
	return store, nil
}

// ListStores returns the caller's stores, newest first
func (s *StoreService) ListStores(ctx context.Context, caller domain.Caller) ([]*domain.Store, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	stores, err := s.repo.ListStores(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	if stores == nil {
		stores = []*domain.Store{}
	}
	return stores, nil
}

// GetStoreDetail returns one store of the caller with its counts, revenue and latest rows
func (s *StoreService) GetStoreDetail(ctx context.Context, caller domain.Caller, storeID string) (*domain.StoreDetail, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	store, err := s.repo.GetStore(ctx, caller.UserID, storeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	if store == nil {
		return nil, domain.ErrStoreNotFound
	}

	ids := []string{store.ID}
	detail := &domain.StoreDetail{Store: store}

	if detail.ProductCount, err = s.repo.CountProducts(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if detail.OrderCount, err = s.repo.CountOrders(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if detail.CustomerCount, err = s.repo.CountCustomers(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	paid, err := s.repo.ListPaidOrders(ctx, ids, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to list paid orders: %w", err)
	}
	detail.Revenue = sumTotals(paid).InexactFloat64()

	if detail.RecentProducts, err = s.repo.RecentProducts(ctx, ids, storeDetailRecent); err != nil {
		return nil, fmt.Errorf("failed to list recent products: %w", err)
	}
	if detail.RecentOrders, err = s.repo.RecentOrders(ctx, ids, storeDetailRecent); err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	if detail.RecentCustomers, err = s.repo.RecentCustomers(ctx, ids, storeDetailRecent); err != nil {
		return nil, fmt.Errorf("failed to list recent customers: %w", err)
	}

	return detail, nil
}

// ListCustomers returns the newest customers across the caller's stores
func (s *StoreService) ListCustomers(ctx context.Context, caller domain.Caller) ([]*domain.Customer, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}

	stores, err := s.repo.ListStores(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	if len(stores) == 0 {
		return []*domain.Customer{}, nil
	}

	customers, err := s.repo.RecentCustomers(ctx, storeIDsOf(stores), customerListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// NormalizeShopDomain lowercases a shop domain, strips any scheme or path and
// appends .myshopify.com when only the shop handle is given
func NormalizeShopDomain(raw string) (string, error) {
	shop := strings.ToLower(strings.TrimSpace(raw))
	shop = strings.TrimPrefix(shop, "https://")
	shop = strings.TrimPrefix(shop, "http://")
	if i := strings.IndexByte(shop, '/'); i >= 0 {
		shop = shop[:i]
	}
	if !strings.Contains(shop, ".") {
		shop += shopifyDomainSuffix
	}

	handle := strings.TrimSuffix(shop, shopifyDomainSuffix)
	if handle == "" || handle == shop || nonShopChars.MatchString(handle) {
		return "", &domain.ValidationError{Field: "shopDomain", Message: "must be a *.myshopify.com domain"}
	}
	return shop, nil
}

var nonShopChars = regexp.MustCompile(`[^a-z0-9-]`)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func (s *StoreService) validateInput(input any) error {
	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &domain.ValidationError{Field: fe.Field(), Message: validationMessage(fe)}
	}
	return &domain.ValidationError{Message: err.Error()}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	default:
		return "Invalid value"
	}
}
