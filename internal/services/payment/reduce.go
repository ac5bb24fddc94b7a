package payment

import (
	"time"

	"github.com/Jaysins/ohship-tenant-sub000/internal/broker/messages"
	"github.com/Jaysins/ohship-tenant-sub000/internal/integrations/portal"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
)

// Reduce applies ev to st. It never mutates st; effects are returned in execution order.
func Reduce(st State, ev Event) (State, []Effect) {
	next := st.clone()
	next.Invalid = nil
	if st.Phase.Terminal() {
		return next, nil
	}

	switch e := ev.(type) {
	case MethodsLoaded:
		next.Methods = append([]models.PaymentMethod(nil), e.Methods...)
		if e.Wallet != nil {
			w := *e.Wallet
			next.Wallet = &w
		}
		next.Error = ""
		next.refreshBalanceWarning()
	case LoadFailed:
		next.Error = e.Message

	case SelectMethod:
		if next.Phase != PhaseMethodSelection {
			return next.reject(ErrWrongPhase)
		}
		for i := range next.Methods {
			if next.Methods[i].ID == e.MethodID {
				m := next.Methods[i]
				next.Selected = &m
				next.refreshBalanceWarning()
				return next, nil
			}
		}
		return next.reject(ErrMethodUnavailable)
	case UpdatePayer:
		if next.Phase != PhaseMethodSelection {
			return next.reject(ErrWrongPhase)
		}
		next.Payer = e.Payer
	case Proceed:
		if next.Phase != PhaseMethodSelection {
			return next.reject(ErrWrongPhase)
		}
		if next.Selected == nil {
			return next.reject(ErrNoMethod)
		}
		if v := checkPayer(next.Payer); v != nil {
			next.Invalid = v
			return next, nil
		}
		next.Phase = PhaseConfirmation
	case EditDetails:
		if next.Phase != PhaseConfirmation || next.Busy {
			return next.reject(ErrWrongPhase)
		}
		next.Phase = PhaseMethodSelection
	case Confirm:
		if next.Phase != PhaseConfirmation || next.Busy {
			return next, nil
		}
		next.Busy = true
		next.Error = ""
		return next, []Effect{InitiatePayment{PaymentID: next.Checkout.PaymentID, Request: next.payRequest()}}

	case Initiated:
		if !next.Busy {
			return next, nil
		}
		return next.startProcessing(e.Result)
	case InitiateFailed:
		if !next.Busy {
			return next, nil
		}
		next.Busy = false
		if candidates, ok := priceChange(e.Err); ok {
			next.Phase = PhasePriceChanged
			next.CandidateQuotes = candidates
			next.Error = portal.ErrorMessage(e.Err)
			return next, []Effect{Notify{Kind: messages.CheckoutPriceChanged}}
		}
		next.Phase = PhaseConfirmation
		next.Error = portal.ErrorMessage(e.Err)

	case PickQuote:
		if next.Phase != PhasePriceChanged || next.Busy {
			return next.reject(ErrWrongPhase)
		}
		for _, q := range next.CandidateQuotes {
			if q.QuoteID == e.QuoteID {
				next.Busy = true
				next.Error = ""
				next.Checkout.Amount = q.TotalAmount
				if q.Currency != "" {
					next.Checkout.Currency = q.Currency
				}
				next.refreshBalanceWarning()
				return next, []Effect{Reprice{
					PaymentID:  next.Checkout.PaymentID,
					ShipmentID: next.Checkout.ShipmentID,
					Quote:      q,
					Request:    next.payRequest(),
				}}
			}
		}
		return next.reject(ErrQuoteNotOffered)
	case CancelPriceChange:
		if next.Phase != PhasePriceChanged || next.Busy {
			return next.reject(ErrWrongPhase)
		}
		next.Phase = PhaseConfirmation
		next.CandidateQuotes = nil

	case Tick:
		if next.Phase != PhaseProcessing {
			return next, nil
		}
		next.setRemaining(e.Remaining)
	case Expire:
		if next.Phase != PhaseProcessing {
			return next, nil
		}
		next.setRemaining(0)
		return next.finish(PhaseExpired, messages.CheckoutExpired, "")
	case StatusChanged:
		if next.Phase != PhaseProcessing {
			return next, nil
		}
		switch e.Status {
		case models.CheckoutStatusSuccess:
			return next.finish(PhaseSuccess, messages.CheckoutSucceeded, "")
		case models.CheckoutStatusFailed:
			return next.finish(PhaseFailed, messages.CheckoutFailed, "payment was declined")
		case models.CheckoutStatusExpired:
			next.setRemaining(0)
			return next.finish(PhaseExpired, messages.CheckoutExpired, "")
		}

	case SubmitProof:
		if next.Phase != PhaseProcessing || next.Busy {
			return next.reject(ErrWrongPhase)
		}
		if err := ValidateProof(e.Filename, e.Data); err != nil {
			next.Invalid = &ValidationError{Err: err, Message: err.Error()}
			return next, nil
		}
		next.Busy = true
		next.Error = ""
		next.ProofName = e.Filename
		return next, []Effect{UploadProof{
			TransactionID: next.Session.TransactionData.TransactionID,
			Filename:      e.Filename,
			Data:          e.Data,
		}}
	case ProofAccepted:
		if next.Phase != PhaseProcessing || !next.Busy {
			return next, nil
		}
		next.Busy = false
		return next.finish(PhasePendingVerification, messages.CheckoutPendingVerification, "")
	case ProofFailed:
		if !next.Busy {
			return next, nil
		}
		next.Busy = false
		next.ProofName = ""
		next.Error = e.Message

	case DismissError:
		next.Error = ""
	}
	return next, nil
}

func (s State) reject(err error) (State, []Effect) {
	s.Invalid = invalid(err, nil)
	return s, nil
}

func (s State) startProcessing(res models.PayResult) (State, []Effect) {
	s.Busy = false
	s.Phase = PhaseProcessing
	s.CandidateQuotes = nil
	method := models.PaymentMethod{}
	if s.Selected != nil {
		method = *s.Selected
	}
	s.Session = &models.CheckoutSession{
		PaymentID:         s.Checkout.PaymentID,
		TransactionData:   res.TransactionData,
		CheckoutExpiresAt: res.CheckoutExpiresAt,
		SelectedMethod:    method,
	}
	s.Mode = ModeFor(res.TransactionData, method.Type)

	effs := []Effect{
		Notify{Kind: messages.CheckoutInitiated},
		StartCountdown{ExpiresAt: res.CheckoutExpiresAt},
	}
	if s.Mode == ModeRedirect {
		effs = append(effs, StartPolling{PaymentID: s.Checkout.PaymentID})
	}
	return s, effs
}

// finish moves to a terminal phase and releases the timer and the poller on the way out.
func (s State) finish(phase Phase, kind, reason string) (State, []Effect) {
	s.Phase = phase
	s.Busy = false
	return s, []Effect{
		StopCountdown{},
		StopPolling{PaymentID: s.Checkout.PaymentID},
		Notify{Kind: kind, Error: reason},
	}
}

func (s *State) setRemaining(d time.Duration) {
	if d < 0 {
		d = 0
	}
	if s.Remaining > 0 && d > s.Remaining {
		// A tick computed before a later one can land out of order.
		return
	}
	s.Remaining = d
	s.Seconds = int64(d / time.Second)
	warnAt := s.WarnAt
	if warnAt <= 0 {
		warnAt = WarningThreshold
	}
	s.Warning = d <= warnAt
}

// refreshBalanceWarning flags a wallet that cannot cover the amount. The server decides;
// this only informs.
func (s *State) refreshBalanceWarning() {
	s.InsufficientBalance = s.Selected != nil &&
		s.Selected.Type == models.PaymentMethodWallet &&
		s.Wallet != nil &&
		s.Wallet.Balance < s.Checkout.Amount
}

func priceChange(err error) ([]models.Quote, bool) {
	if !portal.IsCode(err, portal.CodeQuotePriceChanged) {
		return nil, false
	}
	apiErr, _ := portal.AsAPIError(err)
	var payload struct {
		Quotes []models.Quote `json:"quotes"`
	}
	if err := apiErr.DecodeData(&payload); err != nil || len(payload.Quotes) == 0 {
		return nil, false
	}
	return payload.Quotes, true
}
