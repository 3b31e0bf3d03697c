package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"stagehand/config"
	"stagehand/infras/jwt"
	"stagehand/infras/otel"
	"stagehand/permissions"
	"stagehand/shared/constant"
	"stagehand/shared/failure"
	"stagehand/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type (
	internalCallKey struct{}
	routeKey        struct{}
)

// route is the permission entry resolved once per request and shared by Auth and RBAC.
type route struct {
	pattern    string
	permission permissions.Permission
	known      bool
}

var tokenErrors = []struct {
	err     error
	message string
}{
	{jwt.ErrExpiredToken, "Token has expired"},
	{jwt.ErrInvalidToken, "Invalid token"},
	{jwt.ErrInvalidClaim, "Invalid token claims"},
}

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

// AuthRole guards the /v1 API. Apply in order APIKey, Auth, RBAC.
type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, permissions *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: permissions,
		cfg:        cfg,
	}
}

// APIKey marks requests carrying the internal API key as trusted so Auth and RBAC let them
// through. A wrong key is rejected outright.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		_, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)
		if apiKey == "" {
			scope.SetAttribute("http.source", "client")
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttribute("http.source", "internal")

		expected := m.cfg.App.APIKey
		if expected == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			scope.TraceError(failure.ForbiddenError)
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		ctx := context.WithValue(request.Context(), internalCallKey{}, true)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// Auth validates the bearer access token and stores the caller's identity in the context.
// Routes marked skip in permissions.yaml are public.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		rt := m.resolve(request)
		ctx = context.WithValue(ctx, routeKey{}, rt)

		if internalCall(ctx) || rt.permission.Skip {
			next.ServeHTTP(writer, request.WithContext(ctx))

			return
		}

		scope.SetAttributes(map[string]any{
			"http.route":  rt.pattern,
			"http.method": request.Method,
		})

		reject := func(message string) {
			err := failure.Unauthorized(message)

			scope.TraceError(err)
			response.WithError(writer, err)
		}

		authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
		if authHeader == "" {
			reject("Missing authorization header")

			return
		}

		tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
		if err != nil {
			reject("Invalid authorization header format")

			return
		}

		claims, err := m.jwtService.ValidateToken(ctx, tokenString, jwt.AccessToken)
		if err != nil {
			reject(tokenErrorMessage(err))

			return
		}

		if claims.UserID == "" || claims.Email == "" {
			log.Error().Str("user_id", claims.UserID).Msg("JWT claims missing user id or email")
			reject("Invalid token claims")

			return
		}

		scope.SetAttribute("user.role", claims.Role)

		ctx = context.WithValue(ctx, constant.ContextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, constant.ContextKeyUserEmail, claims.Email)
		ctx = context.WithValue(ctx, constant.ContextKeyUserRole, claims.Role)
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RBAC admits the caller when its role is listed for the route. Routes missing from
// permissions.yaml are denied.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx, scope := m.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		if internalCall(ctx) || (m.permission != nil && m.permission.Skip) {
			next.ServeHTTP(writer, request)

			return
		}

		rt, ok := ctx.Value(routeKey{}).(route)
		if !ok {
			rt = m.resolve(request)
		}

		if rt.permission.Skip {
			next.ServeHTTP(writer, request)

			return
		}

		role, _ := ctx.Value(constant.ContextKeyUserRole).(string)

		if !rt.known || !rt.permission.Allows(role) {
			scope.TraceError(failure.ForbiddenError)
			scope.SetAttributes(map[string]any{
				"user.role":     role,
				"http.route":    rt.pattern,
				"allowed_roles": rt.permission.Permissions,
				"route_known":   rt.known,
			})
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(writer, request)
	})
}

func (m *authRoleImpl) resolve(request *http.Request) route {
	rt := route{pattern: routePattern(request)}

	if m.permission != nil {
		rt.permission, rt.known = m.permission.Lookup(rt.pattern, request.Method)
	}

	return rt
}

func internalCall(ctx context.Context) bool {
	trusted, _ := ctx.Value(internalCallKey{}).(bool)

	return trusted
}

func tokenErrorMessage(err error) string {
	for _, te := range tokenErrors {
		if errors.Is(err, te.err) {
			return te.message
		}
	}

	return "Token validation failed"
}

// routePattern resolves the registered chi pattern for the request, e.g. "/v1/performances/{id}".
func routePattern(request *http.Request) string {
	rctx := chi.RouteContext(request.Context())
	if rctx == nil || rctx.Routes == nil {
		return request.URL.Path
	}

	if pattern := rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path); pattern != "" {
		return pattern
	}

	return request.URL.Path
}
