package portalapi

import (
	"net/http"
	"strings"

	"github.com/Jaysins/ohship-tenant-sub000/internal/services/payment"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
)

type checkoutResponse struct {
	ID    string         `json:"id"`
	State payment.State  `json:"state"`
	Error *errorResponse `json:"error,omitempty"`
}

func (a *PortalAPI) createCheckout(w http.ResponseWriter, r *http.Request) {
	var co payment.Checkout
	if err := decodeJSON(w, r, &co); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(co.PaymentID) == "" {
		writeError(w, http.StatusBadRequest, "payment_id is required")
		return
	}
	a.openCheckout(w, r, co)
}

// openCheckout registers a controller and loads the payment methods. A load failure is
// reported inside the state, the checkout stays open for a retry by the client. A payment
// that already has an open checkout gets that one back with 200.
func (a *PortalAPI) openCheckout(w http.ResponseWriter, r *http.Request, co payment.Checkout) {
	id, c, created := a.checkoutFor(co)
	if !created {
		writeJSON(w, http.StatusOK, checkoutResponse{ID: id, State: c.State()})
		return
	}
	st, _ := c.Load(r.Context())
	writeJSON(w, http.StatusCreated, checkoutResponse{ID: id, State: st})
}

func (a *PortalAPI) getCheckout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := a.checkoutByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "checkout not found")
		return
	}
	writeJSON(w, http.StatusOK, checkoutResponse{ID: id, State: c.State()})
}

func (a *PortalAPI) deleteCheckout(w http.ResponseWriter, r *http.Request) {
	c, ok := a.removeCheckout(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "checkout not found")
		return
	}
	c.Close()
	w.WriteHeader(http.StatusNoContent)
}

func (a *PortalAPI) checkoutEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := a.checkoutByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "checkout not found")
		return
	}
	var req checkoutEventRequest
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
	a.writeCheckout(w, id, st, err)
}

// uploadProof accepts a multipart form with the file under "file".
func (a *PortalAPI) uploadProof(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := a.checkoutByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "checkout not found")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, payment.MaxProofSize+(1<<20))
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "read file field").Error())
		return
	}
	defer f.Close()

	st, err := c.SubmitProof(r.Context(), hdr.Filename, f)
	a.writeCheckout(w, id, st, err)
}

func (a *PortalAPI) writeCheckout(w http.ResponseWriter, id string, st payment.State, err error) {
	if err == nil {
		writeJSON(w, http.StatusOK, checkoutResponse{ID: id, State: st})
		return
	}
	status := http.StatusUnprocessableEntity
	if errors.Is(err, payment.ErrClosed) {
		status = http.StatusGone
	}
	resp := checkoutResponse{ID: id, State: st, Error: &errorResponse{Error: err.Error()}}
	var verr *payment.ValidationError
	if errors.As(err, &verr) {
		resp.Error.Fields = verr.Fields
	}
	writeJSON(w, status, resp)
}
