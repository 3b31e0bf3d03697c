package router

import (
	"stagehand/internal/handlers/auth"
	"stagehand/internal/handlers/part"
	"stagehand/internal/handlers/performance"
	"stagehand/internal/handlers/position"
	"stagehand/internal/handlers/rehearsal"
	"stagehand/internal/handlers/signup"
	"stagehand/internal/handlers/student"
	"stagehand/internal/handlers/subpart"
	"stagehand/internal/handlers/uniform"
	"stagehand/internal/handlers/user"
	"stagehand/transport/http/middleware"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Auth        auth.Handler
	User        user.Handler
	Performance performance.Handler
	Rehearsal   rehearsal.Handler
	Part        part.Handler
	Subpart     subpart.Handler
	Position    position.Handler
	Student     student.Handler
	Uniform     uniform.Handler
	Signup      signup.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
	Middleware     middleware.AuthRole
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		routerGroup.Use(r.Middleware.APIKey, r.Middleware.Auth, r.Middleware.RBAC)

		r.DomainHandlers.Auth.Router(routerGroup)
		r.DomainHandlers.User.Router(routerGroup)
		r.DomainHandlers.Performance.Router(routerGroup)
		r.DomainHandlers.Rehearsal.Router(routerGroup)
		r.DomainHandlers.Part.Router(routerGroup)
		r.DomainHandlers.Subpart.Router(routerGroup)
		r.DomainHandlers.Position.Router(routerGroup)
		r.DomainHandlers.Student.Router(routerGroup)
		r.DomainHandlers.Uniform.Router(routerGroup)
		r.DomainHandlers.Signup.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers, authRole middleware.AuthRole) Router {
	return Router{
		DomainHandlers: domainHandlers,
		Middleware:     authRole,
	}
}
