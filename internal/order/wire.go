package order

import (
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/inventory"
	"storefront/internal/order/cache"
	"storefront/internal/order/controller"
	"storefront/internal/order/repository"
	"storefront/internal/order/service"
	"storefront/internal/order/usecase"
	productrepo "storefront/internal/product/repository"
	quotationrepo "storefront/internal/quotation/repository"
	userrepo "storefront/internal/user/repository"
)

type Dependencies struct {
	DB       *sql.DB
	Tx       *mysql.TxManager
	Redis    redis.Cmdable // nil disables the status cache
	Files    usecase.FileStore
	Notifier service.Notifier
	Metrics  *metrics.Metrics
	Config   *config.Config
	Logger   *zap.Logger
}

type Module struct {
	Controller *controller.OrderController
	Repository *repository.MySQLOrderRepository
}

func NewModule(d Dependencies) *Module {
	orderRepo := repository.NewMySQLOrderRepository(d.DB)
	quotationRepo := quotationrepo.NewMySQLQuotationRepository(d.DB)
	ledger := inventory.NewLedger(productrepo.NewMySQLRepository(d.DB), d.Logger)

	var statusCache service.StatusCache
	if d.Redis != nil {
		statusCache = cache.NewRedisStatusCache(d.Redis, d.Config.Redis.StatusTTL)
	}

	svc := service.NewOrderService(
		d.Tx,
		orderRepo,
		quotationRepo,
		userrepo.NewMySQLUserRepository(d.DB),
		ledger,
		statusCache,
		d.Notifier,
		d.Metrics,
		d.Logger,
	)

	uc := usecase.NewCreateOrderUseCase(quotationRepo, orderRepo, d.Files, svc, d.Logger)

	return &Module{
		Controller: controller.NewOrderController(uc, svc, d.Config.Storage.MaxUploadBytes, d.Logger),
		Repository: orderRepo,
	}
}
