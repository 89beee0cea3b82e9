package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"nictech/internal/models"
	"nictech/pkg/mercadopago"

	"github.com/google/uuid"
)

// statementDescriptor is what shows up on the buyer's card statement.
const statementDescriptor = "NICTECH"

// fallbackBackURL is used in non-production environments where no real
// storefront origin is configured; the provider rejects empty back_urls
// when auto_return is set.
const fallbackBackURL = "https://www.google.com"

// PaymentGateway is the slice of the payment provider API the checkout and
// webhook services depend on. *mercadopago.Client implements it.
type PaymentGateway interface {
	CreatePreference(pref *mercadopago.PreferenceRequest) (*mercadopago.PreferenceResponse, error)
	GetPayment(paymentID string) (*mercadopago.Payment, error)
}

// CheckoutService turns a client-side cart into a hosted checkout URL by
// creating a payment preference on the provider.
type CheckoutService struct {
	gateway PaymentGateway
	// publicBaseURL is the storefront origin the hosted checkout redirects
	// back to. Empty in non-production setups.
	publicBaseURL string
	// notificationURL is the public address of the payment webhook.
	notificationURL string
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(gateway PaymentGateway, publicBaseURL, notificationURL string) *CheckoutService {
	return &CheckoutService{
		gateway:         gateway,
		publicBaseURL:   strings.TrimSuffix(publicBaseURL, "/"),
		notificationURL: notificationURL,
	}
}

// CreateCheckout validates the cart, creates a provider preference and
// returns the redirect URLs. Provider rejections surface as
// *mercadopago.APIError; nothing is persisted locally — the preference
// lives on the provider's side until paid.
func (s *CheckoutService) CreateCheckout(req models.CheckoutRequest) (*models.CheckoutResponse, error) {
	if err := validateCart(req.Items); err != nil {
		return nil, err
	}

	items := make([]mercadopago.PreferenceItem, 0, len(req.Items))
	metaItems := make([]models.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		title := item.Name
		if item.VariantLabel != "" {
			title = fmt.Sprintf("%s (%s)", item.Name, item.VariantLabel)
		}
		items = append(items, mercadopago.PreferenceItem{
			ID:          item.ID,
			Title:       title,
			CurrencyID:  "ARS",
			PictureURL:  item.ImageURL,
			Description: item.Name,
			CategoryID:  "others",
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
		})
		metaItems = append(metaItems, models.OrderItem{ProductID: item.ID, Quantity: item.Quantity})
	}

	// Redundant {id, quantity} copy: the provider sometimes strips
	// additional_info.items from the payment resource, and the webhook
	// falls back to this metadata.
	metaJSON, err := json.Marshal(metaItems)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata items: %w", err)
	}

	pref := &mercadopago.PreferenceRequest{
		Items:               items,
		BackURLs:            s.backURLs(),
		AutoReturn:          "approved",
		StatementDescriptor: statementDescriptor,
		// The provider does not deduplicate on external_reference, so it
		// must be unique per attempt.
		ExternalReference: "order-" + uuid.New().String(),
		NotificationURL:   s.notificationURL,
		Metadata:          map[string]string{"items": string(metaJSON)},
	}
	if req.Payer != nil && req.Payer.Email != "" {
		pref.Payer = &mercadopago.PreferencePayer{
			Name:  req.Payer.Name,
			Email: req.Payer.Email,
		}
	}

	resp, err := s.gateway.CreatePreference(pref)
	if err != nil {
		log.Printf("Failed to create payment preference (ref %s): %v", pref.ExternalReference, err)
		return nil, err
	}

	return &models.CheckoutResponse{
		PreferenceID:     resp.ID,
		InitPoint:        resp.InitPoint,
		SandboxInitPoint: resp.SandboxInitPoint,
	}, nil
}

// backURLs points the hosted checkout back into the storefront with a
// status flag, or at a placeholder page when no origin is configured.
func (s *CheckoutService) backURLs() mercadopago.BackURLs {
	if s.publicBaseURL == "" {
		return mercadopago.BackURLs{
			Success: fallbackBackURL,
			Failure: fallbackBackURL,
			Pending: fallbackBackURL,
		}
	}
	return mercadopago.BackURLs{
		Success: s.publicBaseURL + "/checkout?status=success",
		Failure: s.publicBaseURL + "/checkout?status=failure",
		Pending: s.publicBaseURL + "/checkout?status=pending",
	}
}

// validateCart rejects empty carts and malformed items before any outbound
// call is made.
func validateCart(items []models.CartItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no items provided", ErrInvalidRequest)
	}
	for i, item := range items {
		if item.ID == "" || item.Name == "" {
			return fmt.Errorf("%w: item %d is missing id or name", ErrInvalidRequest, i)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %s has non-positive quantity", ErrInvalidRequest, item.ID)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %s has negative price", ErrInvalidRequest, item.ID)
		}
	}
	return nil
}
