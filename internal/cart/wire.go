package cart

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/cart/controller"
	"storefront/internal/cart/repository"
	"storefront/internal/cart/service"
	"storefront/internal/infrastructure/mysql"
	productrepo "storefront/internal/product/repository"
	userrepo "storefront/internal/user/repository"
)

func NewModule(db *sql.DB, txm *mysql.TxManager, logger *zap.Logger) *controller.CartController {
	svc := service.NewCartService(
		txm,
		repository.NewMySQLCartRepository(db),
		productrepo.NewMySQLRepository(db),
		userrepo.NewMySQLUserRepository(db),
		logger,
	)
	return controller.NewCartController(svc, logger)
}
