//go:build wireinject
// +build wireinject

package di

import (
	"stagehand/config"
	"stagehand/infras/jwt"
	"stagehand/infras/kafka"
	"stagehand/infras/otel"
	"stagehand/infras/postgres"
	"stagehand/infras/redis"
	"stagehand/infras/s3"
	"stagehand/internal/jobs/reminder"
	"stagehand/permissions"
	"stagehand/shared/cache"
	"stagehand/shared/timezone"
	"stagehand/transport/http"
	"stagehand/transport/http/middleware"
	"stagehand/transport/http/router"

	"github.com/google/wire"

	authService "stagehand/internal/domains/auth/service"
	partRepository "stagehand/internal/domains/part/repository"
	partService "stagehand/internal/domains/part/service"
	performanceRepository "stagehand/internal/domains/performance/repository"
	performanceService "stagehand/internal/domains/performance/service"
	positionRepository "stagehand/internal/domains/position/repository"
	positionService "stagehand/internal/domains/position/service"
	rehearsalRepository "stagehand/internal/domains/rehearsal/repository"
	rehearsalService "stagehand/internal/domains/rehearsal/service"
	signupRepository "stagehand/internal/domains/signup/repository"
	signupService "stagehand/internal/domains/signup/service"
	studentRepository "stagehand/internal/domains/student/repository"
	studentService "stagehand/internal/domains/student/service"
	subpartRepository "stagehand/internal/domains/subpart/repository"
	subpartService "stagehand/internal/domains/subpart/service"
	uniformRepository "stagehand/internal/domains/uniform/repository"
	uniformService "stagehand/internal/domains/uniform/service"
	userRepository "stagehand/internal/domains/user/repository"
	userService "stagehand/internal/domains/user/service"

	authHandler "stagehand/internal/handlers/auth"
	partHandler "stagehand/internal/handlers/part"
	performanceHandler "stagehand/internal/handlers/performance"
	positionHandler "stagehand/internal/handlers/position"
	rehearsalHandler "stagehand/internal/handlers/rehearsal"
	signupHandler "stagehand/internal/handlers/signup"
	studentHandler "stagehand/internal/handlers/student"
	subpartHandler "stagehand/internal/handlers/subpart"
	uniformHandler "stagehand/internal/handlers/uniform"
	userHandler "stagehand/internal/handlers/user"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	kafka.New,
	s3.New,
	jwt.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	timezone.NewClock,
	timezone.New,
)

var repositories = wire.NewSet(
	userRepository.New,
	performanceRepository.New,
	rehearsalRepository.New,
	partRepository.New,
	subpartRepository.New,
	positionRepository.New,
	studentRepository.New,
	uniformRepository.New,
	uniformRepository.NewAssignment,
	signupRepository.New,
)

var domains = wire.NewSet(
	authService.New,
	userService.New,
	performanceService.New,
	rehearsalService.New,
	partService.New,
	subpartService.New,
	positionService.New,
	studentService.New,
	uniformService.New,
	signupService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	performanceHandler.New,
	rehearsalHandler.New,
	partHandler.New,
	subpartHandler.New,
	positionHandler.New,
	studentHandler.New,
	uniformHandler.New,
	signupHandler.New,
	router.New,
)

var jobs = wire.NewSet(
	reminder.New,
)

func InitializeService() (*http.HTTP, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}, nil
}

func InitializeApp() (*App, error) {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		domains,
		routing,
		jobs,
		http.New,
		NewApp,
	)

	return &App{}, nil
}
