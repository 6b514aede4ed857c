package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	cartcontroller "storefront/internal/cart/controller"
	"storefront/internal/infrastructure/httpresponse"
	ordercontroller "storefront/internal/order/controller"
	productcontroller "storefront/internal/product/controller"
	quotationcontroller "storefront/internal/quotation/controller"
)

type Handlers struct {
	Products   *productcontroller.Controller
	Carts      *cartcontroller.CartController
	Quotations *quotationcontroller.QuotationController
	Orders     *ordercontroller.OrderController
}

func NewRouter(h Handlers, gatherer prometheus.Gatherer, uploads func(http.Handler) http.Handler, requestTimeout time.Duration, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpresponse.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}, logger)
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))

		r.Route("/products", func(r chi.Router) {
			r.Post("/search", h.Products.HandleSearchProducts)
			r.Get("/{productId}", h.Products.HandleGetProduct)
			r.Put("/{productId}/stock", h.Products.HandleSetStock)
			r.Get("/{productId}/availability", h.Products.HandleAvailability)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/items", h.Carts.AddItem)
			r.Put("/items", h.Carts.SetQuantity)
			r.Get("/users/{userId}", h.Carts.GetCart)
			r.Delete("/users/{userId}", h.Carts.Clear)
			r.Delete("/users/{userId}/items/{productId}", h.Carts.RemoveItem)
			r.Get("/users/{userId}/products/{productId}", h.Carts.IsProductInCart)
		})

		r.Route("/quotations", func(r chi.Router) {
			r.Post("/", h.Quotations.Create)
			r.Get("/", h.Quotations.List)
			r.Get("/users/{userId}/approved", h.Quotations.ListApprovedUnbilled)
			r.Get("/{quotationId}", h.Quotations.Get)
			r.Post("/{quotationId}/approve", h.Quotations.Approve)
			r.Post("/{quotationId}/reject", h.Quotations.Reject)
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(uploads).Post("/", h.Orders.Create)
			r.Get("/", h.Orders.List)
			r.Get("/users/{userId}", h.Orders.ListByUser)
			r.Get("/{orderId}/status", h.Orders.Status)
			r.Post("/{orderId}/payment/approve", h.Orders.ApprovePayment)
			r.Post("/{orderId}/payment/reject", h.Orders.RejectPayment)
			r.Post("/{orderId}/delivery-status", h.Orders.UpdateDeliveryStatus)
			r.Get("/{orderId}/payment-slip", h.Orders.PaymentSlip)
		})
	})

	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("requestId", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
