package portalapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/go-chi/chi/v5"
)

// RecordsAPI reads the signed-in user's shipments and transactions.
type RecordsAPI interface {
	ListShipments(ctx context.Context, limit, offset int) ([]models.Shipment, error)
	GetShipment(ctx context.Context, id string) (models.Shipment, error)
	ListTransactions(ctx context.Context, limit, offset int) ([]models.Transaction, error)
}

type shipmentsResponse struct {
	Shipments []models.Shipment `json:"shipments"`
	Limit     int               `json:"limit"`
	Offset    int               `json:"offset"`
}

type transactionsResponse struct {
	Transactions []models.Transaction `json:"transactions"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
}

func (a *PortalAPI) listShipments(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parsePage(w, r)
	if !ok {
		return
	}
	items, err := a.records.ListShipments(r.Context(), limit, offset)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	if items == nil {
		items = []models.Shipment{}
	}
	writeJSON(w, http.StatusOK, shipmentsResponse{Shipments: items, Limit: limit, Offset: offset})
}

func (a *PortalAPI) getShipment(w http.ResponseWriter, r *http.Request) {
	sh, err := a.records.GetShipment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sh)
}

func (a *PortalAPI) listTransactions(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := parsePage(w, r)
	if !ok {
		return
	}
	items, err := a.records.ListTransactions(r.Context(), limit, offset)
	if err != nil {
		writeRemoteError(w, err)
		return
	}
	if items == nil {
		items = []models.Transaction{}
	}
	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: items, Limit: limit, Offset: offset})
}

// parsePage reads limit and offset; both default to zero, which the backend treats as "its
// default page".
func parsePage(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	q := r.URL.Query()
	var err error
	if v := q.Get("limit"); v != "" {
		if limit, err = strconv.Atoi(v); err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return 0, 0, false
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err = strconv.Atoi(v); err != nil || offset < 0 {
			writeError(w, http.StatusBadRequest, "offset must be a non-negative integer")
			return 0, 0, false
		}
	}
	return limit, offset, true
}
