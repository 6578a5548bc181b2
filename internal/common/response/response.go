package response

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	"github.com/Alturino/storefront/internal/common/otel"
)

func WriteJsonResponse(
	c context.Context,
	w http.ResponseWriter,
	header map[string]string,
	body map[string]interface{},
) {
	c, span := otel.Tracer.Start(c, "WriteJsonResponse")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str("tag", "WriteJsonResponse").Logger()

	w.Header().Set(commonHttp.HeaderContentType, commonHttp.HeaderValueJson)
	for k, v := range header {
		w.Header().Set(k, v)
	}

	statusCode := http.StatusOK
	if v, ok := body["statusCode"].(int); ok {
		statusCode = v
	}
	w.WriteHeader(statusCode)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msgf("failed encode response body with error=%s", err.Error())
		return
	}
}

func WriteFailed(c context.Context, w http.ResponseWriter, statusCode int, message string) {
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "failed",
		"statusCode": statusCode,
		"message":    message,
	})
}

func WriteSuccess(
	c context.Context,
	w http.ResponseWriter,
	message string,
	data map[string]interface{},
) {
	WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    message,
		"data":       data,
	})
}

type httpStatuser interface {
	HTTPStatus() int
}

// StatusCode maps an error from the services to the status answered to the
// caller. Upstream answers keep their own status.
func StatusCode(err error) int {
	var upstream httpStatuser
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &upstream) && upstream.HTTPStatus() >= http.StatusBadRequest:
		return upstream.HTTPStatus()
	case errors.Is(err, commonErrors.ErrNotFound), errors.Is(err, commonErrors.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, commonErrors.ErrUnauthorized),
		errors.Is(err, commonErrors.ErrEmptyAuth),
		errors.Is(err, commonErrors.ErrGuestCheckout),
		errors.Is(err, commonErrors.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, commonErrors.ErrInvalidQuantity),
		errors.Is(err, commonErrors.ErrMissingAttribute),
		errors.Is(err, commonErrors.ErrOutOfStock),
		errors.Is(err, commonErrors.ErrInsufficientStock),
		errors.Is(err, commonErrors.ErrEmptySlug),
		errors.Is(err, commonErrors.ErrEmptyCart):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusBadGateway
}

func WriteError(c context.Context, w http.ResponseWriter, err error, message string) {
	WriteFailed(c, w, StatusCode(err), message)
}
