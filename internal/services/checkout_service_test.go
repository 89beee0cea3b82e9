package services_test

import (
	"encoding/json"
	"testing"

	"nictech/internal/models"
	"nictech/internal/services"
	"nictech/pkg/mercadopago"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPaymentGateway is a mock implementation of services.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreatePreference(pref *mercadopago.PreferenceRequest) (*mercadopago.PreferenceResponse, error) {
	args := m.Called(pref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mercadopago.PreferenceResponse), args.Error(1)
}

func (m *MockPaymentGateway) GetPayment(paymentID string) (*mercadopago.Payment, error) {
	args := m.Called(paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*mercadopago.Payment), args.Error(1)
}

func TestCheckoutService_CreateCheckout(t *testing.T) {
	gateway := new(MockPaymentGateway)
	service := services.NewCheckoutService(gateway, "https://shop.example.com", "https://shop.example.com/api/v1/payments/webhook")

	var captured *mercadopago.PreferenceRequest
	gateway.On("CreatePreference", mock.AnythingOfType("*mercadopago.PreferenceRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).(*mercadopago.PreferenceRequest)
		}).
		Return(&mercadopago.PreferenceResponse{
			ID:               "pref-123",
			InitPoint:        "https://mp.example.com/init",
			SandboxInitPoint: "https://mp.example.com/sandbox",
		}, nil).Once()

	req := models.CheckoutRequest{
		Items: []models.CartItem{
			{ID: "P1", Name: "Tempered Glass", Price: 4500, Quantity: 2},
			{ID: "P2", Name: "Silicone Case", Price: 6200, Quantity: 1, VariantLabel: "Black"},
		},
		Payer: &models.CheckoutPayer{Name: "Ana", Email: "ana@example.com"},
	}

	resp, err := service.CreateCheckout(req)

	assert.NoError(t, err)
	assert.Equal(t, "pref-123", resp.PreferenceID)
	assert.Equal(t, "https://mp.example.com/init", resp.InitPoint)
	gateway.AssertExpectations(t)

	// One preference item per cart item, quantities and prices preserved.
	assert.Len(t, captured.Items, 2)
	assert.Equal(t, "P1", captured.Items[0].ID)
	assert.Equal(t, 2, captured.Items[0].Quantity)
	assert.Equal(t, 4500.0, captured.Items[0].UnitPrice)
	assert.Equal(t, "ARS", captured.Items[0].CurrencyID)
	assert.Equal(t, "Silicone Case (Black)", captured.Items[1].Title)

	assert.Equal(t, "approved", captured.AutoReturn)
	assert.Equal(t, "NICTECH", captured.StatementDescriptor)
	assert.Contains(t, captured.ExternalReference, "order-")
	assert.Equal(t, "https://shop.example.com/api/v1/payments/webhook", captured.NotificationURL)
	assert.Equal(t, "https://shop.example.com/checkout?status=success", captured.BackURLs.Success)
	assert.Equal(t, "ana@example.com", captured.Payer.Email)

	// metadata.items carries the {id, quantity} fallback copy.
	var metaItems []models.OrderItem
	assert.NoError(t, json.Unmarshal([]byte(captured.Metadata["items"]), &metaItems))
	assert.Len(t, metaItems, 2)
	assert.Equal(t, "P1", metaItems[0].ProductID)
	assert.Equal(t, 2, metaItems[0].Quantity)
}

func TestCheckoutService_CreateCheckout_EmptyCart(t *testing.T) {
	gateway := new(MockPaymentGateway)
	service := services.NewCheckoutService(gateway, "", "")

	resp, err := service.CreateCheckout(models.CheckoutRequest{})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, services.ErrInvalidRequest)
	gateway.AssertNotCalled(t, "CreatePreference", mock.Anything)
}

func TestCheckoutService_CreateCheckout_MalformedItems(t *testing.T) {
	gateway := new(MockPaymentGateway)
	service := services.NewCheckoutService(gateway, "", "")

	cases := []models.CartItem{
		{ID: "", Name: "No ID", Price: 100, Quantity: 1},
		{ID: "P1", Name: "Zero quantity", Price: 100, Quantity: 0},
		{ID: "P1", Name: "Negative price", Price: -1, Quantity: 1},
	}
	for _, item := range cases {
		_, err := service.CreateCheckout(models.CheckoutRequest{Items: []models.CartItem{item}})
		assert.ErrorIs(t, err, services.ErrInvalidRequest, "item %q should be rejected", item.Name)
	}
	gateway.AssertNotCalled(t, "CreatePreference", mock.Anything)
}

func TestCheckoutService_CreateCheckout_NoPayerWithoutEmail(t *testing.T) {
	gateway := new(MockPaymentGateway)
	service := services.NewCheckoutService(gateway, "", "")

	var captured *mercadopago.PreferenceRequest
	gateway.On("CreatePreference", mock.AnythingOfType("*mercadopago.PreferenceRequest")).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).(*mercadopago.PreferenceRequest)
		}).
		Return(&mercadopago.PreferenceResponse{ID: "pref-1"}, nil).Once()

	_, err := service.CreateCheckout(models.CheckoutRequest{
		Items: []models.CartItem{{ID: "P1", Name: "Case", Price: 1000, Quantity: 1}},
		Payer: &models.CheckoutPayer{Name: "No Email"},
	})

	assert.NoError(t, err)
	assert.Nil(t, captured.Payer, "payer must be omitted entirely when no email is provided")
	// No storefront origin configured: back URLs point at the placeholder.
	assert.Equal(t, captured.BackURLs.Success, captured.BackURLs.Failure)
	assert.NotEmpty(t, captured.BackURLs.Success)
}

func TestCheckoutService_CreateCheckout_ProviderRejection(t *testing.T) {
	gateway := new(MockPaymentGateway)
	service := services.NewCheckoutService(gateway, "", "")

	apiErr := &mercadopago.APIError{StatusCode: 400, Message: "invalid access token"}
	gateway.On("CreatePreference", mock.Anything).Return(nil, apiErr).Once()

	resp, err := service.CreateCheckout(models.CheckoutRequest{
		Items: []models.CartItem{{ID: "P1", Name: "Case", Price: 1000, Quantity: 1}},
	})

	assert.Nil(t, resp)
	var gotErr *mercadopago.APIError
	assert.ErrorAs(t, err, &gotErr)
	assert.Equal(t, "invalid access token", gotErr.Message)
	gateway.AssertExpectations(t)
}

func TestCheckoutService_ExternalReferenceUniquePerAttempt(t *testing.T) {
	gateway := new(MockPaymentGateway)
	service := services.NewCheckoutService(gateway, "", "")

	refs := make(map[string]bool)
	gateway.On("CreatePreference", mock.AnythingOfType("*mercadopago.PreferenceRequest")).
		Run(func(args mock.Arguments) {
			refs[args.Get(0).(*mercadopago.PreferenceRequest).ExternalReference] = true
		}).
		Return(&mercadopago.PreferenceResponse{ID: "pref-1"}, nil).Times(3)

	req := models.CheckoutRequest{
		Items: []models.CartItem{{ID: "P1", Name: "Case", Price: 1000, Quantity: 1}},
	}
	for i := 0; i < 3; i++ {
		_, err := service.CreateCheckout(req)
		assert.NoError(t, err)
	}
	assert.Len(t, refs, 3, "each attempt must carry a fresh external reference")
}
