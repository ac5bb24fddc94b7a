package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/Jaysins/ohship-tenant-sub000/internal/integrations/portal"
	"github.com/Jaysins/ohship-tenant-sub000/internal/models"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type quoteAPIMock struct{ mock.Mock }

func (m *quoteAPIMock) GetQuotes(ctx context.Context, req models.QuoteRequest) ([]models.Quote, error) {
	args := m.Called(ctx, req)
	q, _ := args.Get(0).([]models.Quote)
	return q, args.Error(1)
}

type shipmentAPIMock struct{ mock.Mock }

func (m *shipmentAPIMock) CreateShipment(ctx context.Context, req models.CreateShipmentRequest) (models.Shipment, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.Shipment), args.Error(1)
}

func TestController_HappyPath(t *testing.T) {
	qa := &quoteAPIMock{}
	sa := &shipmentAPIMock{}
	ctx := context.Background()

	prefill := &Prefill{Origin: addr("Ada"), Destination: addr("Bayo"), Items: []models.Item{item()}}
	c := NewController(NewState(prefill), qa, sa)

	qa.On("GetQuotes", ctx, mock.MatchedBy(func(r models.QuoteRequest) bool {
		return r.Origin.Name == "Ada" && len(r.Items) == 1
	})).Return(quotes(), nil).Twice()

	for i := 0; i < 3; i++ {
		_, err := c.Dispatch(ctx, Next{})
		require.NoError(t, err)
	}
	st := c.State()
	require.Equal(t, StepServiceQuotes, st.Step)
	require.Len(t, st.Form.Quotes, 2)
	require.False(t, st.LoadingQuotes)

	_, err := c.Dispatch(ctx, SelectQuote{QuoteID: "q2"})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, Next{})
	require.NoError(t, err)

	// Re-entering the quote step re-queries.
	_, err = c.Dispatch(ctx, GoTo{Step: StepServiceQuotes})
	require.NoError(t, err)
	_, err = c.Dispatch(ctx, Next{})
	require.NoError(t, err)

	sa.On("CreateShipment", ctx, mock.MatchedBy(func(r models.CreateShipmentRequest) bool {
		return r.QuoteID == "q2" && r.CarrierCode == "UPS"
	})).Return(models.Shipment{ID: "sh_1", PaymentID: "pay_1"}, nil).Once()

	st, err = c.Dispatch(ctx, Submit{})
	require.NoError(t, err)
	require.True(t, st.Done())
	require.Equal(t, "sh_1", st.Created.ID)

	qa.AssertExpectations(t)
	sa.AssertExpectations(t)
}

func TestController_LocalValidationNeverCallsServer(t *testing.T) {
	qa := &quoteAPIMock{}
	sa := &shipmentAPIMock{}
	c := NewController(NewState(nil), qa, sa)

	st, err := c.Dispatch(context.Background(), Next{})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrStepIncomplete))
	require.Equal(t, StepAddresses, st.Step)
	qa.AssertNotCalled(t, "GetQuotes", mock.Anything, mock.Anything)
}

func TestController_Failures(t *testing.T) {
	qa := &quoteAPIMock{}
	sa := &shipmentAPIMock{}
	ctx := context.Background()
	c := NewController(NewState(&Prefill{Origin: addr("Ada"), Destination: addr("Bayo"), Items: []models.Item{item()}}), qa, sa)

	qa.On("GetQuotes", ctx, mock.Anything).Return(nil, &portal.APIError{Status: 0, Message: "dial tcp"}).Once()
	for i := 0; i < 3; i++ {
		_, err := c.Dispatch(ctx, Next{})
		require.NoError(t, err)
	}
	st := c.State()
	require.NotEmpty(t, st.QuoteError)
	require.Equal(t, portal.ErrorMessage(&portal.APIError{}), st.QuoteError)

	qa.On("GetQuotes", ctx, mock.Anything).Return(quotes(), nil).Twice()
	st, err := c.Dispatch(ctx, RetryQuotes{})
	require.NoError(t, err)
	require.Empty(t, st.QuoteError)
	require.Len(t, st.Form.Quotes, 2)

	_, _ = c.Dispatch(ctx, SelectQuote{QuoteID: "q1"})
	_, _ = c.Dispatch(ctx, Next{})

	sa.On("CreateShipment", ctx, mock.Anything).
		Return(models.Shipment{}, &portal.APIError{Status: 400, Message: "Destination not serviced"}).Once()
	st, err = c.Dispatch(ctx, Submit{})
	require.NoError(t, err)
	require.Equal(t, StepReview, st.Step)
	require.Equal(t, "Destination not serviced", st.SubmitError)
	require.False(t, st.Submitting)
	require.Equal(t, addr("Bayo"), st.Form.Destination)
	require.Equal(t, "q1", st.Form.SelectedQuote.QuoteID)
}
