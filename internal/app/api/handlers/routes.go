package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/clubworks/memberpay/internal/app/api/middleware"
	"github.com/clubworks/memberpay/internal/app/service/identity"
	ordersvc "github.com/clubworks/memberpay/internal/app/service/order"
	"github.com/clubworks/memberpay/internal/app/service/payment"
	"github.com/clubworks/memberpay/internal/app/service/profile"
	"github.com/clubworks/memberpay/internal/app/service/reconcile"
	cfgpkg "github.com/clubworks/memberpay/pkg/config"
	"github.com/clubworks/memberpay/pkg/ratelimit"
)

func RegisterOrderRoutes(r gin.IRouter, ordSvc ordersvc.Creator, rec reconcile.Reconciler, log *zap.SugaredLogger) {
	r.POST("/order/create", ApiCreateOrder(ordSvc, log))
	r.POST("/order/verify", ApiVerifyOrder(rec, log))
}

func RegisterWebhookRoutes(r gin.IRouter, rec reconcile.Reconciler, cfg *cfgpkg.Config, log *zap.SugaredLogger) {
	r.POST("/membership/webhook", ApiMembershipWebhook(rec, cfg, log))
}

func RegisterUserRoutes(r gin.IRouter, cfg *cfgpkg.Config, idSvc *identity.Service, profSvc *profile.Service, paySvc *payment.Service, limiter *ratelimit.Limiter, log *zap.SugaredLogger) {
	r.GET("/user/details",
		mw.RateLimitMiddleware(limiter),
		mw.AuthMiddleware(cfg, idSvc),
		ApiUserDetails(idSvc, profSvc, paySvc, log),
	)
}
