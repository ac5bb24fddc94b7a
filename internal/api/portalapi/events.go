package portalapi

import (
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/payment"
	"github.com/Jaysins/ohship-tenant-sub000/internal/services/wizard"
	"github.com/pkg/errors"
)

var ErrUnknownEvent = errors.New("unknown event type")

// wizardEventRequest is the wire form of the user-originated wizard events. Results of
// effects (quotes loaded, shipment created) are produced server-side and cannot be posted.
type wizardEventRequest struct {
	Type    string                  `json:"type"`
	Address *models.Address         `json:"address,omitempty"`
	Item    *models.Item            `json:"item,omitempty"`
	Index   int                     `json:"index,omitempty"`
	Options *models.ShipmentOptions `json:"options,omitempty"`
	Step    *wizard.Step            `json:"step,omitempty"`
	QuoteID string                  `json:"quote_id,omitempty"`
}

func (req wizardEventRequest) event() (wizard.Event, error) {
	switch req.Type {
	case "update_origin":
		if req.Address == nil {
			return nil, errors.New("update_origin needs address")
		}
		return wizard.UpdateOrigin{Address: *req.Address}, nil
	case "update_destination":
		if req.Address == nil {
			return nil, errors.New("update_destination needs address")
		}
		return wizard.UpdateDestination{Address: *req.Address}, nil
	case "add_item":
		var it models.Item
		if req.Item != nil {
			it = *req.Item
		}
		return wizard.AddItem{Item: it}, nil
	case "update_item":
		if req.Item == nil {
			return nil, errors.New("update_item needs item")
		}
		return wizard.UpdateItem{Index: req.Index, Item: *req.Item}, nil
	case "remove_item":
		return wizard.RemoveItem{Index: req.Index}, nil
	case "update_options":
		if req.Options == nil {
			return nil, errors.New("update_options needs options")
		}
		return wizard.UpdateOptions{Options: *req.Options}, nil
	case "next":
		return wizard.Next{}, nil
	case "back":
		return wizard.Back{}, nil
	case "go_to":
		if req.Step == nil {
			return nil, errors.New("go_to needs step")
		}
		return wizard.GoTo{Step: *req.Step}, nil
	case "retry_quotes":
		return wizard.RetryQuotes{}, nil
	case "select_quote":
		return wizard.SelectQuote{QuoteID: req.QuoteID}, nil
	case "submit":
		return wizard.Submit{}, nil
	case "dismiss_error":
		return wizard.DismissError{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownEvent, "%q", req.Type)
}

type checkoutEventRequest struct {
	Type     string            `json:"type"`
	MethodID string            `json:"method_id,omitempty"`
	Payer    *models.PayerInfo `json:"payer,omitempty"`
	QuoteID  string            `json:"quote_id,omitempty"`
}

func (req checkoutEventRequest) event() (payment.Event, error) {
	switch req.Type {
	case "select_method":
		return payment.SelectMethod{MethodID: req.MethodID}, nil
	case "update_payer":
		if req.Payer == nil {
			return nil, errors.New("update_payer needs payer")
		}
		return payment.UpdatePayer{Payer: *req.Payer}, nil
	case "proceed":
		return payment.Proceed{}, nil
	case "edit_details":
		return payment.EditDetails{}, nil
	case "confirm":
		return payment.Confirm{}, nil
	case "pick_quote":
		return payment.PickQuote{QuoteID: req.QuoteID}, nil
	case "cancel_price_change":
		return payment.CancelPriceChange{}, nil
	case "dismiss_error":
		return payment.DismissError{}, nil
	}
	return nil, errors.Wrapf(ErrUnknownEvent, "%q", req.Type)
}
