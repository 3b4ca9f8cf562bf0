//go:build wireinject
// +build wireinject

package di

import (
	"tablebook/config"
	"tablebook/infras/jwt"
	"tablebook/infras/kafka"
	"tablebook/infras/otel"
	"tablebook/infras/postgres"
	"tablebook/infras/redis"
	paymentHandler "tablebook/internal/handlers/payment"
	reservationHandler "tablebook/internal/handlers/reservation"
	tableHandler "tablebook/internal/handlers/table"
	"tablebook/permissions"
	"tablebook/shared/cache"
	"tablebook/transport/http"
	"tablebook/transport/http/middleware"
	"tablebook/transport/http/router"

	availabilityService "tablebook/internal/domains/availability/service"
	notificationService "tablebook/internal/domains/notification/service"
	paymentService "tablebook/internal/domains/payment/service"
	reservationRepository "tablebook/internal/domains/reservation/repository"
	reservationService "tablebook/internal/domains/reservation/service"
	tableRepository "tablebook/internal/domains/table/repository"
	tableService "tablebook/internal/domains/table/service"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	permissions.Get,
	provideSlotCatalog,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var tableDomain = wire.NewSet(
	tableRepository.New,
	tableService.New,
)

var reservationDomain = wire.NewSet(
	reservationRepository.New,
	reservationService.New,
)

var notificationDomain = wire.NewSet(
	notificationService.New,
)

var availabilityDomain = wire.NewSet(
	availabilityService.New,
)

var paymentDomain = wire.NewSet(
	paymentService.New,
)

var domains = wire.NewSet(
	tableDomain,
	reservationDomain,
	notificationDomain,
	availabilityDomain,
	paymentDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	reservationHandler.New,
	tableHandler.New,
	paymentHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
