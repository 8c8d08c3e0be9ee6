package server

import (
	"time"

	"storefront/internal/config"
	"storefront/internal/handler"
	infraRepo "storefront/internal/infra/repository"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Deps are the process-wide resources the HTTP app is built from.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Logger *logger.Logger
	// nilならレート制限なし
	RateLimiter middleware.RateLimitStore
	Registry    *prometheus.Registry
	// テストではbcrypt.MinCostにする
	BcryptCost int
}

// App bundles the handlers and the pieces middleware needs.
type App struct {
	deps     Deps
	users    repository.UserRepository
	sessions sessions.Store
	http     *metrics.HTTPMetrics

	Products      *handler.ProductHandler
	Carts         *handler.CartHandler
	Orders        *handler.OrderHandler
	Auth          *handler.AuthHandler
	Addresses     *handler.AddressHandler
	AdminProducts *handler.AdminProductHandler
	AdminOrders   *handler.AdminOrderHandler
	AdminUsers    *handler.AdminUserHandler
	AdminCatalog  *handler.AdminCategoryHandler
}

// Repository(GORM) -> Usecase -> Handlerの順に組み立てる
func NewApp(deps Deps) *App {
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}
	if deps.BcryptCost == 0 {
		deps.BcryptCost = bcrypt.DefaultCost
	}
	cfg := deps.Config
	gdb := deps.DB

	//Repository（GORM実装）
	tx := infraRepo.NewTxManagerGorm(gdb)
	userRepo := infraRepo.NewUserGormRepository(gdb)
	rtRepo := infraRepo.NewRefreshTokenRepository(gdb)
	productRepo := infraRepo.NewProductGormRepository(gdb)
	cartRepo := infraRepo.NewCartGormRepository(gdb)
	cartItemRepo := infraRepo.NewCartItemGormRepository(gdb)
	orderRepo := infraRepo.NewOrderGormRepository(gdb)
	addressRepo := infraRepo.NewAddressGormRepository(gdb)
	auditRepo := infraRepo.NewAuditLogGormRepository(gdb)
	categoryRepo := infraRepo.NewCategoryGormRepository(gdb)
	dashboardRepo := infraRepo.NewDashboardGormRepository(gdb)

	shop := metrics.NewShopMetrics(deps.Registry)

	//Usecase
	productUC := usecase.NewProductUsecase(productRepo, tx)
	cartUC := usecase.NewCartUsecase(cartRepo, cartItemRepo, tx, shop)
	orderUC := usecase.NewOrderUsecase(orderRepo, addressRepo, userRepo, tx, shop)
	addressUC := usecase.NewAddressUsecase(addressRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(orderRepo, tx)
	adminUserUC := usecase.NewAdminUserUsecase(userRepo, rtRepo, auditRepo, tx)
	categoryUC := usecase.NewCategoryUsecase(categoryRepo, tx)
	dashboardUC := usecase.NewDashboardUsecase(dashboardRepo)

	//auth
	clock := auth.SystemClock{}
	idGen := auth.UUIDGenerator{}
	issuer := auth.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL)
	hasher := auth.NewBcryptPasswordHasher(deps.BcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()

	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, verifier, issuer, idGen, clock, cartUC, cfg.Auth.RefreshTTL)
	sessionUC := auth.NewSessionUsecase(userRepo, rtRepo, issuer, idGen, clock, cfg.Auth.RefreshTTL)
	profileUC := auth.NewProfileUsecase(userRepo, rtRepo, hasher, verifier)

	return &App{
		deps:     deps,
		users:    userRepo,
		sessions: middleware.NewCartSessionStore(cfg.Auth),
		http:     metrics.NewHTTPMetrics(deps.Registry),

		Products:      handler.NewProductHandler(productUC),
		Carts:         handler.NewCartHandler(cartUC, orderUC),
		Orders:        handler.NewOrderHandler(orderUC),
		Auth:          handler.NewAuthHandler(registerUC, loginUC, sessionUC, profileUC, cfg.Auth, deps.Logger),
		Addresses:     handler.NewAddressHandler(addressUC),
		AdminProducts: handler.NewAdminProductHandler(productUC),
		AdminOrders:   handler.NewAdminOrderHandler(adminOrderUC),
		AdminUsers:    handler.NewAdminUserHandler(adminUserUC),
		AdminCatalog:  handler.NewAdminCategoryHandler(categoryUC, dashboardUC),
	}
}

func rateLimits(cfg config.RateLimitConfig) (login, register, cart middleware.RateLimitPolicy) {
	login = middleware.NewRateLimitPolicy("login", cfg.LoginWindow, cfg.LoginIPLimit, cfg.LoginUserLimit)
	register = middleware.NewRateLimitPolicy("register", cfg.RegisterWindow, cfg.RegisterIPLimit, 0)
	cart = middleware.NewRateLimitPolicy("add_to_cart", cfg.AddToCartWindow, cfg.AddToCartIPLimit, 0)
	return login, register, cart
}

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)
