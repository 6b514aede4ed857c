package product

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/inventory"
	"storefront/internal/product/controller"
	"storefront/internal/product/repository"
	"storefront/internal/product/service"
	"storefront/internal/product/usecase"
)

func NewModule(db *sql.DB, logger *zap.Logger) *controller.Controller {
	repo := repository.NewMySQLRepository(db)
	svc := service.NewService(repo, logger)
	uc := usecase.NewSearchUseCase(svc)
	ledger := inventory.NewLedger(repo, logger)
	return controller.NewController(uc, svc, ledger, logger)
}
