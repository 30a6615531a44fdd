package httpapi

import (
	"net/http"
	"time"

	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/service"
)

// PurchaseItemRequest позиция в запросе на покупку
type PurchaseItemRequest struct {
	ProductID *int64 `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

// PaymentRequest данные покупателя и карты
type PaymentRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	CardNumber *string `json:"cardNumber"`
	CVV        *string `json:"cvv"`
}

// PurchaseRequest тело POST /purchases
type PurchaseRequest struct {
	Items   *[]PurchaseItemRequest `json:"items"`
	Payment *PaymentRequest        `json:"payment"`
}

type lineItemResponse struct {
	ID        int64            `json:"id,omitempty"`
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *productResponse `json:"product,omitempty"`
}

type transactionResponse struct {
	TransactionID   int64              `json:"transactionId"`
	ClientID        int64              `json:"clientId"`
	GatewayID       int64              `json:"gatewayId,omitempty"`
	ExternalID      string             `json:"externalId"`
	Status          string             `json:"status"`
	Amount          int64              `json:"amount"`
	CardLastNumbers string             `json:"cardLastNumbers"`
	Items           []lineItemResponse `json:"items"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type purchaseDetailsResponse struct {
	transactionResponse
	Client  *clientResponse  `json:"client,omitempty"`
	Gateway *gatewayResponse `json:"gateway,omitempty"`
}

type refundResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	TransactionID int64  `json:"transactionId"`
	GatewayID     int64  `json:"gatewayId"`
}

func toTransactionResponse(t repository.Transaction) transactionResponse {
	items := make([]lineItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, lineItemResponse{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return transactionResponse{
		TransactionID:   t.ID,
		ClientID:        t.ClientID,
		GatewayID:       t.GatewayID,
		ExternalID:      t.ExternalID,
		Status:          string(t.Status),
		Amount:          t.Amount,
		CardLastNumbers: t.CardLastNumbers,
		Items:           items,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// toPurchaseInput nil поля становятся нулевыми значениями и отсекаются правилами покупки
func toPurchaseInput(req PurchaseRequest) service.PurchaseInput {
	var in service.PurchaseInput
	if req.Items != nil {
		for _, it := range *req.Items {
			var item service.PurchaseItem
			if it.ProductID != nil {
				item.ProductID = *it.ProductID
			}
			if it.Quantity != nil {
				item.Quantity = *it.Quantity
			}
			in.Items = append(in.Items, item)
		}
	}
	if p := req.Payment; p != nil {
		in.Payment = service.PaymentInput{
			Name:       deref(p.Name),
			Email:      deref(p.Email),
			CardNumber: deref(p.CardNumber),
			CVV:        deref(p.CVV),
		}
	}
	return in
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// PostPurchases обрабатывает POST /purchases
func (h *Handler) PostPurchases(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	txn, err := h.purchases.ProcessPurchase(r.Context(), h.rules, toPurchaseInput(req))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, toTransactionResponse(txn))
}

// GetPurchases обрабатывает GET /purchases
func (h *Handler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	txns, err := h.purchases.ListPurchases(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, toTransactionResponse(t))
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"purchases": out})
}

// GetPurchase обрабатывает GET /purchases/{id}
func (h *Handler) GetPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	details, err := h.purchases.GetPurchase(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := purchaseDetailsResponse{transactionResponse: toTransactionResponse(details.Transaction)}
	resp.Items = resp.Items[:0]
	for _, line := range details.Lines {
		item := lineItemResponse{ID: line.Item.ID, ProductID: line.Item.ProductID, Quantity: line.Item.Quantity}
		if line.Product != nil {
			p := toProductResponse(*line.Product)
			item.Product = &p
		}
		resp.Items = append(resp.Items, item)
	}
	if details.Client != nil {
		c := toClientResponse(*details.Client)
		resp.Client = &c
	}
	if details.Gateway != nil {
		g := toGatewayResponse(*details.Gateway)
		resp.Gateway = &g
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"purchase": resp})
}

// PostPurchaseRefund обрабатывает POST /purchases/{id}/refund (FINANCE, ADMIN)
func (h *Handler) PostPurchaseRefund(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	res, err := h.purchases.RefundPurchase(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, refundResponse{
		Success:       true,
		Message:       res.Message,
		TransactionID: res.TransactionID,
		GatewayID:     res.GatewayID,
	})
}
