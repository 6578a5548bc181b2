package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/internal/shopper"
)

// Session resolves the shopper of the X-Session-ID header, issuing a new
// session when it is missing, and echoes the id back. A bearer token is
// handed to the session; an expired one is refused before reaching the API.
func Session(registry *shopper.Registry) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, span := otel.Tracer.Start(r.Context(), "middleware Session")
			defer span.End()

			sessionID := r.Header.Get(commonHttp.HeaderSessionID)
			logger := zerolog.Ctx(c).
				With().
				Str(log.KeyTag, "middleware Session").
				Str(log.KeySessionID, sessionID).
				Logger()

			token := ""
			if authorization := r.Header.Get(commonHttp.HeaderAuthorization); authorization != "" {
				if !strings.HasPrefix(authorization, commonHttp.BearerPrefix) {
					err := fmt.Errorf("failed reading authorization with error=%w", commonErrors.ErrTokenInvalid)
					commonErrors.HandleError(err, span)
					logger.Error().Err(err).Msg(err.Error())
					response.WriteFailed(c, w, http.StatusUnauthorized, commonErrors.ErrTokenInvalid.Error())
					return
				}
				token = strings.TrimPrefix(authorization, commonHttp.BearerPrefix)
				if session.TokenExpired(token, time.Now()) {
					err := fmt.Errorf("failed reading authorization with error=%w", commonErrors.ErrUnauthorized)
					commonErrors.HandleError(err, span)
					logger.Error().Err(err).Msg(err.Error())
					response.WriteFailed(c, w, http.StatusUnauthorized, commonErrors.ErrUnauthorized.Error())
					return
				}
			}

			logger = logger.With().Str(log.KeyProcess, "resolving shopper").Logger()
			logger.Trace().Msg("resolving shopper")
			s, err := registry.Resolve(logger.WithContext(c), sessionID, token)
			if err != nil {
				err = fmt.Errorf("failed resolving shopper with error=%w", err)
				commonErrors.HandleError(err, span)
				logger.Error().Err(err).Msg(err.Error())
				response.WriteFailed(c, w, http.StatusInternalServerError, "Could not start your session.")
				return
			}
			sessionID = s.Session.SessionID()
			logger = logger.With().Str(log.KeySessionID, sessionID).Logger()
			logger.Trace().Msg("resolved shopper")

			w.Header().Set(commonHttp.HeaderSessionID, sessionID)
			c = shopper.AttachToContext(logger.WithContext(c), s)
			next.ServeHTTP(w, r.WithContext(c))
		})
	}
}
