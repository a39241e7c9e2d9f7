package routes

import (
	"docbook/cmd/internal/utils"
	"docbook/cmd/internal/utils/apierror"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// RequireStaff authenticates the bearer token and stores the caller in the
// request context for the handlers. Refused tokens get a 401; failures to
// reach the identity provider get a 503.
func RequireStaff(auth utils.Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := utils.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			data, err := auth.Authenticate(c.Request().Context(), token)
			if errors.Is(err, utils.ErrInvalidToken) {
				return c.JSON(http.StatusUnauthorized, apierror.InvalidAuthTokenError)
			}

			if err != nil {
				log.Errorf("identity provider failed: %v", err)
				return c.JSON(http.StatusServiceUnavailable, apierror.IdentityUnavailableError)
			}

			utils.SetTokenDataCtx(c, data)
			return next(c)
		}
	}
}

func pathID(c echo.Context, name string) (int, apierror.ErrorResponse) {
	raw := strings.TrimSpace(c.Param(name))
	if raw == "" {
		return 0, apierror.NewMissingParamError(name)
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apierror.NewInvalidParamTypeError(name, "positive integer")
	}
	return id, nil
}

func requiredQuery(c echo.Context, name string) (string, apierror.ErrorResponse) {
	value := strings.TrimSpace(c.QueryParam(name))
	if value == "" {
		return "", apierror.NewMissingParamError(name)
	}
	return value, nil
}

// optionalQueryID parses an optional positive integer query parameter.
func optionalQueryID(c echo.Context, name string) (*int, apierror.ErrorResponse) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return nil, apierror.NewInvalidParamTypeError(name, "positive integer")
	}
	return &id, nil
}

func caller(c echo.Context) *utils.TokenData {
	data, err := utils.ParseTokenDataCtx(c)
	if errors.Is(err, utils.ErrNoTokenData) {
		return nil
	}
	return data
}
