package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/service"
	"github.com/shestoi/paymanager/platform/observability"
)

// Handler HTTP-обработчики. Вся логика в service, здесь только DTO и коды ответов
type Handler struct {
	logger    *zap.Logger
	purchases *service.PurchaseService
	products  *service.ProductService
	gateways  *service.GatewayService
	clients   *service.ClientService
	users     *service.UserService
	rules     service.PurchaseRules
}

func NewHandler(
	logger *zap.Logger,
	purchases *service.PurchaseService,
	products *service.ProductService,
	gateways *service.GatewayService,
	clients *service.ClientService,
	users *service.UserService,
	rules service.PurchaseRules,
) *Handler {
	return &Handler{
		logger:    logger,
		purchases: purchases,
		products:  products,
		gateways:  gateways,
		clients:   clients,
		users:     users,
		rules:     rules,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		observability.L(r.Context(), h.logger).Warn("failed to encode response", zap.Error(err))
	}
}

// maxRequestBody предел тела запроса, как и для ответов шлюзов
const maxRequestBody = 1 << 20

// decodeJSON при ошибке сам отвечает 400 (413 для слишком большого тела) и возвращает false
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeJSON(w, r, http.StatusRequestEntityTooLarge, errorResponse{
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			})
			return false
		}
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: "invalid JSON", Error: err.Error()})
		return false
	}
	return true
}

// pathID разбирает {id}; при ошибке отвечает 400
func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: fmt.Sprintf("invalid id %q", raw)})
		return 0, false
	}
	return id, true
}

// queryInt пустое или некорректное значение даёт 0, дальше сервис подставит значение по умолчанию
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}

type pageMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type listResponse[T any] struct {
	Data []T      `json:"data"`
	Meta pageMeta `json:"meta"`
}
