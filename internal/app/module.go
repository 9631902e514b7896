package app

import (
	"time"

	"github.com/clubworks/memberpay/internal/app/api/server"
	"github.com/clubworks/memberpay/internal/app/service/identity"
	notificationlog "github.com/clubworks/memberpay/internal/app/service/notification_log"
	"github.com/clubworks/memberpay/internal/app/service/order"
	"github.com/clubworks/memberpay/internal/app/service/payment"
	"github.com/clubworks/memberpay/internal/app/service/profile"
	"github.com/clubworks/memberpay/internal/app/service/reconcile"
	"github.com/clubworks/memberpay/internal/platform/cashfree"
	"github.com/clubworks/memberpay/internal/platform/db"
	"github.com/clubworks/memberpay/pkg/config"
	"github.com/clubworks/memberpay/pkg/logger"
	"github.com/clubworks/memberpay/pkg/ratelimit"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	cashfree.Module,
	ratelimit.Module,
	server.Module,
	notificationlog.Module,
	identity.Module,
	payment.Module,
	profile.Module,
	reconcile.Module,
	order.Module,
)
