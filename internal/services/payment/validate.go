package payment

import (
	"reflect"
	"strings"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	ErrNoMethod          = errors.New("select a payment method")
	ErrMethodUnavailable = errors.New("payment method is not available")
	ErrPayerIncomplete   = errors.New("name, email and phone are required")
	ErrQuoteNotOffered   = errors.New("quote is not among the offered prices")
	ErrWrongPhase        = errors.New("action not allowed at this point of the checkout")
)

type ValidationError struct {
	Err     error             `json:"-"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (e *ValidationError) Error() string { return e.Message }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, fields map[string]string) *ValidationError {
	return &ValidationError{Err: err, Message: err.Error(), Fields: fields}
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}()

func checkPayer(p models.PayerInfo) *ValidationError {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = "is required"
		}
	}
	return invalid(ErrPayerIncomplete, fields)
}
