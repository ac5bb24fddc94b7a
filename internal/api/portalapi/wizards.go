package portalapi

import (
	"net/http"

	"github.com/Jaysins/ohship-tenant-sub000/internal/services/payment"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/wizard"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type wizardResponse struct {
	ID    string         `json:"id"`
	State wizard.State   `json:"state"`
	Error *errorResponse `json:"error,omitempty"`
}

func (a *PortalAPI) createWizard(w http.ResponseWriter, r *http.Request) {
	var prefill *wizard.Prefill
	var body wizard.Prefill
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		prefill = &body
	}
	c := wizard.NewController(wizard.NewState(prefill), a.quotes, a.shipments)
	id := a.addWizard(c)
	writeJSON(w, http.StatusCreated, wizardResponse{ID: id, State: c.State()})
}

func (a *PortalAPI) getWizard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := a.wizardByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "wizard not found")
		return
	}
	writeJSON(w, http.StatusOK, wizardResponse{ID: id, State: c.State()})
}

func (a *PortalAPI) deleteWizard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a.mu.Lock()
	_, ok := a.wizards[id]
	delete(a.wizards, id)
	a.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "wizard not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// wizardEvent applies one event. A local validation failure answers 422 with the
// unchanged state and the offending fields.
func (a *PortalAPI) wizardEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := a.wizardByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "wizard not found")
		return
	}
	var req wizardEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := req.event()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := c.Dispatch(r.Context(), ev)
	if err != nil {
		var verr *wizard.ValidationError
		resp := wizardResponse{ID: id, State: st, Error: &errorResponse{Error: err.Error()}}
		if errors.As(err, &verr) {
			resp.Error.Fields = verr.Fields
		}
		writeJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	writeJSON(w, http.StatusOK, wizardResponse{ID: id, State: st})
}

// checkoutFromWizard opens a checkout for the shipment the wizard created.
func (a *PortalAPI) checkoutFromWizard(w http.ResponseWriter, r *http.Request) {
	c, ok := a.wizardByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "wizard not found")
		return
	}
	st := c.State()
	if !st.Done() {
		writeError(w, http.StatusConflict, "shipment not created yet")
		return
	}
	sh := st.Created
	if sh.PaymentID == "" {
		writeError(w, http.StatusConflict, "shipment has no payment to check out")
		return
	}
	a.openCheckout(w, r, payment.Checkout{
		PaymentID:  sh.PaymentID,
		ShipmentID: sh.ID,
		Amount:     sh.FinalPrice,
		Currency:   sh.Currency,
	})
}
