package quotation

import (
	"database/sql"

	"go.uber.org/zap"

	cartrepo "storefront/internal/cart/repository"
	"storefront/internal/infrastructure/metrics"
	"storefront/internal/infrastructure/mysql"
	"storefront/internal/quotation/controller"
	"storefront/internal/quotation/repository"
	"storefront/internal/quotation/service"
	userrepo "storefront/internal/user/repository"
)

func NewModule(
	db *sql.DB,
	txm *mysql.TxManager,
	orders service.OrderLookup,
	notifier service.Notifier,
	m *metrics.Metrics,
	logger *zap.Logger,
) *controller.QuotationController {
	svc := service.NewQuotationService(
		txm,
		repository.NewMySQLQuotationRepository(db),
		cartrepo.NewMySQLCartRepository(db),
		userrepo.NewMySQLUserRepository(db),
		orders,
		notifier,
		m,
		logger,
	)
	return controller.NewQuotationController(svc, logger)
}
