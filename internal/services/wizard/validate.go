package wizard

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	ErrStepIncomplete  = errors.New("step is incomplete")
	ErrNoQuoteSelected = errors.New("select a shipping quote to continue")
	ErrNoItems         = errors.New("add at least one item")
	ErrStepNotVisited  = errors.New("step has not been reached yet")
	ErrUnknownStep     = errors.New("unknown step")
	ErrItemIndex       = errors.New("item index out of range")
	ErrQuoteNotFound   = errors.New("quote not found")
	ErrQuotesLoading   = errors.New("quotes are still loading")
)

// ValidationError is a local failure computed before any request is made.
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

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStep evaluates the completeness predicate gating Next out of step.
func checkStep(step Step, f FormData) *ValidationError {
	switch step {
	case StepAddresses:
		fields := map[string]string{}
		collect(fields, "origin", validate.Struct(f.Origin))
		collect(fields, "destination", validate.Struct(f.Destination))
		if len(fields) > 0 {
			return invalid(ErrStepIncomplete, fields)
		}
	case StepItems:
		if len(f.Items) == 0 {
			return invalid(ErrNoItems, nil)
		}
		fields := map[string]string{}
		for i, it := range f.Items {
			collect(fields, fmt.Sprintf("items[%d]", i), validate.Struct(it))
		}
		if len(fields) > 0 {
			return invalid(ErrStepIncomplete, fields)
		}
	case StepOptions:
		fields := map[string]string{}
		collect(fields, "options", validate.Struct(f.Options))
		if len(fields) > 0 {
			return invalid(ErrStepIncomplete, fields)
		}
	case StepServiceQuotes, StepReview:
		if f.SelectedQuote == nil {
			return invalid(ErrNoQuoteSelected, nil)
		}
	}
	return nil
}

// AddressComplete reports whether every required address field is present.
func AddressComplete(a models.Address) bool {
	return validate.Struct(a) == nil
}

func collect(dst map[string]string, prefix string, err error) {
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		dst[prefix] = err.Error()
		return
	}
	for _, fe := range verrs {
		dst[prefix+"."+fe.Field()] = describe(fe)
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "email":
		return "must be a valid email"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must not be negative"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return "is invalid"
	}
}
