package httpapi

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/service"
	"github.com/shestoi/paymanager/platform/observability"
)

const codePersistenceFailure = "persistence_failure"

type fieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type attemptDTO struct {
	GatewayID int64  `json:"gatewayId"`
	Gateway   string `json:"gateway"`
	Reason    string `json:"reason"`
}

type errorResponse struct {
	// Success выставляется только для ответов возврата, чтобы оба исхода несли success
	Success           *bool           `json:"success,omitempty"`
	Message           string          `json:"message"`
	Error             string          `json:"error,omitempty"`
	Code              string          `json:"code,omitempty"`
	Errors            []fieldErrorDTO `json:"errors,omitempty"`
	MissingProductIDs []int64         `json:"missingProductIds,omitempty"`
	Attempts          []attemptDTO    `json:"attempts,omitempty"`
	GatewayID         int64           `json:"gatewayId,omitempty"`
	ExternalID        string          `json:"externalId,omitempty"`
}

func attemptsDTO(in []service.Attempt) []attemptDTO {
	out := make([]attemptDTO, 0, len(in))
	for _, a := range in {
		out = append(out, attemptDTO{GatewayID: a.GatewayID, Gateway: a.Gateway, Reason: a.Reason})
	}
	return out
}

// writeError единственное место, где ошибки сервиса превращаются в HTTP статусы
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr    *service.ValidationError
		missing *service.MissingProductsError
		payErr  *service.PaymentFailedError
		refErr  *service.RefundFailedError
		perr    *service.PersistenceError
	)

	switch {
	case errors.As(err, &verr):
		resp := errorResponse{Message: "validation failed"}
		for _, f := range verr.Fields {
			resp.Errors = append(resp.Errors, fieldErrorDTO{Field: f.Field, Message: f.Message})
		}
		h.writeJSON(w, r, http.StatusUnprocessableEntity, resp)
	case errors.As(err, &missing):
		h.writeJSON(w, r, http.StatusNotFound, errorResponse{Message: missing.Error(), MissingProductIDs: missing.IDs})
	case errors.As(err, &payErr):
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Message:  "payment failed",
			Error:    payErr.Reason,
			Attempts: attemptsDTO(payErr.Attempts),
		})
	case errors.As(err, &refErr):
		success := false
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{
			Success:  &success,
			Message:  "refund failed",
			Error:    refErr.Reason,
			Attempts: attemptsDTO(refErr.Attempts),
		})
	case errors.As(err, &perr):
		h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{
			Message:    "operation accepted by gateway but not recorded",
			Error:      perr.Err.Error(),
			Code:       codePersistenceFailure,
			GatewayID:  perr.GatewayID,
			ExternalID: perr.ExternalID,
		})
	case errors.Is(err, service.ErrTransactionNotFound), errors.Is(err, service.ErrNotFound):
		h.writeJSON(w, r, http.StatusNotFound, errorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrAlreadyRefunded), errors.Is(err, service.ErrEmailTaken):
		h.writeJSON(w, r, http.StatusConflict, errorResponse{Message: err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrSessionNotFoundOrExpired):
		h.writeJSON(w, r, http.StatusUnauthorized, errorResponse{Message: err.Error()})
	default:
		observability.L(r.Context(), h.logger).Error("request failed",
			zap.Error(err),
			zap.String("path", r.URL.Path),
		)
		h.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}
