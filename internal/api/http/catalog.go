package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/shestoi/paymanager/internal/repository"
	"github.com/shestoi/paymanager/internal/service"
)

// ProductRequest тело POST/PUT /products
type ProductRequest struct {
	Name   *string `json:"name"`
	Amount *int64  `json:"amount"`
}

// GatewayRequest тело PUT /gateways/{id}
type GatewayRequest struct {
	IsActive *bool `json:"isActive"`
	Priority *int  `json:"priority"`
}

type productResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type gatewayResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	Priority  int       `json:"priority"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type clientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type clientDetailsResponse struct {
	clientResponse
	Transactions []transactionResponse `json:"transactions"`
}

func toProductResponse(p repository.Product) productResponse {
	return productResponse{ID: p.ID, Name: p.Name, Amount: p.Amount, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

func toGatewayResponse(g repository.Gateway) gatewayResponse {
	return gatewayResponse{ID: g.ID, Name: g.Name, IsActive: g.IsActive, Priority: g.Priority, CreatedAt: g.CreatedAt, UpdatedAt: g.UpdatedAt}
}

func toClientResponse(c repository.Client) clientResponse {
	return clientResponse{ID: c.ID, Name: c.Name, Email: c.Email, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func pageFromQuery(r *http.Request) repository.Page {
	return repository.Page{Number: queryInt(r, "page"), Limit: queryInt(r, "limit")}
}

// GetProducts GET /products?page=&limit=&name=&amount=
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter := repository.ProductFilter{Name: r.URL.Query().Get("name")}
	if raw := r.URL.Query().Get("amount"); raw != "" {
		amount, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			h.writeJSON(w, r, http.StatusBadRequest, errorResponse{Message: "amount must be an integer"})
			return
		}
		filter.Amount = &amount
	}

	res, err := h.products.List(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := listResponse[productResponse]{
		Data: make([]productResponse, 0, len(res.Items)),
		Meta: pageMeta{Total: res.Total, Page: res.Page.Number, Limit: res.Page.Limit},
	}
	for _, p := range res.Items {
		out.Data = append(out.Data, toProductResponse(p))
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.products.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toProductResponse(p))
}

func (h *Handler) PostProducts(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	p, err := h.products.Create(r.Context(), service.ProductInput{Name: req.Name, Amount: req.Amount})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) PutProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req ProductRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	p, err := h.products.Update(r.Context(), id, service.ProductInput{Name: req.Name, Amount: req.Amount})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toProductResponse(p))
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.products.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetGateways(w http.ResponseWriter, r *http.Request) {
	gws, err := h.gateways.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := make([]gatewayResponse, 0, len(gws))
	for _, g := range gws {
		out = append(out, toGatewayResponse(g))
	}
	h.writeJSON(w, r, http.StatusOK, map[string]any{"gateways": out})
}

func (h *Handler) GetGateway(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	g, err := h.gateways.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toGatewayResponse(g))
}

// PutGateway PUT /gateways/{id} (ADMIN)
func (h *Handler) PutGateway(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req GatewayRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	g, err := h.gateways.Update(r.Context(), id, service.GatewayUpdate{IsActive: req.IsActive, Priority: req.Priority})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, toGatewayResponse(g))
}

// GetClients GET /clients?page=&limit=&name=&email=
func (h *Handler) GetClients(w http.ResponseWriter, r *http.Request) {
	filter := repository.ClientFilter{Name: r.URL.Query().Get("name"), Email: r.URL.Query().Get("email")}
	res, err := h.clients.List(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	out := listResponse[clientResponse]{
		Data: make([]clientResponse, 0, len(res.Items)),
		Meta: pageMeta{Total: res.Total, Page: res.Page.Number, Limit: res.Page.Limit},
	}
	for _, c := range res.Items {
		out.Data = append(out.Data, toClientResponse(c))
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

// GetClient клиент вместе с транзакциями и их позициями
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	details, err := h.clients.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resp := clientDetailsResponse{
		clientResponse: toClientResponse(details.Client),
		Transactions:   make([]transactionResponse, 0, len(details.Transactions)),
	}
	for _, t := range details.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}
