package services

import (
	"encoding/json"
	"fmt"
	"log"

	"nictech/internal/models"
	"nictech/internal/repositories"
	"nictech/pkg/mercadopago"
)

// EventPublisher publishes fulfillment events. *rabbitmq.Client implements
// it; a nil publisher disables events.
type EventPublisher interface {
	Publish(eventType string, body []byte) error
}

// Notification is a provider webhook delivery reduced to the two fields
// that matter: the declared topic and the payment id, from whichever of the
// query-string or JSON body shapes carried them.
type Notification struct {
	Topic     string
	PaymentID string
}

// ParseNotification merges the query-string form (topic|type + id|data.id)
// with the JSON body form ({type, data:{id}}). Query values win; the body
// fills in whatever the query left blank. A malformed body is ignored, not
// an error — the provider sends many shapes that must simply be acked.
func ParseNotification(topic, id string, body []byte) Notification {
	n := Notification{Topic: topic, PaymentID: id}
	if n.Topic != "" && n.PaymentID != "" {
		return n
	}
	var parsed mercadopago.WebhookNotification
	if err := json.Unmarshal(body, &parsed); err != nil {
		return n
	}
	if n.Topic == "" {
		n.Topic = parsed.Type
	}
	if n.PaymentID == "" {
		n.PaymentID = parsed.Data.ID.String()
	}
	return n
}

// WebhookService processes payment webhook deliveries: it fetches the
// authoritative payment, upserts the order record and, for approved
// payments, reconciles product stock.
//
// Deliveries arrive at-least-once and unordered; the upsert keyed on
// payment id makes repeat deliveries safe. Two deliveries for the same
// payment racing each other can still run the stock decrement twice —
// there is no per-payment dedup of the reconcile step.
type WebhookService struct {
	gateway     PaymentGateway
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	publisher   EventPublisher
}

// NewWebhookService creates a new WebhookService. publisher may be nil.
func NewWebhookService(gateway PaymentGateway, orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, publisher EventPublisher) *WebhookService {
	return &WebhookService{
		gateway:     gateway,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		publisher:   publisher,
	}
}

// ProcessNotification handles one webhook delivery. It returns
// (false, nil) when the notification is not an actionable payment
// notification; the handler must still respond 200 so the provider does
// not mark the endpoint unhealthy.
func (s *WebhookService) ProcessNotification(n Notification) (bool, error) {
	if n.Topic != "payment" || n.PaymentID == "" {
		log.Printf("Ignoring webhook notification (topic=%q, id=%q)", n.Topic, n.PaymentID)
		return false, nil
	}
	if err := s.ProcessPayment(n.PaymentID); err != nil {
		return false, err
	}
	return true, nil
}

// ProcessPayment fetches the payment resource, upserts the order and
// reconciles stock for approved payments. A lookup or upsert failure fails
// the invocation; the provider's redelivery is the retry mechanism.
func (s *WebhookService) ProcessPayment(paymentID string) error {
	payment, err := s.gateway.GetPayment(paymentID)
	if err != nil {
		return fmt.Errorf("failed to fetch payment %s: %w", paymentID, err)
	}

	items := extractItems(payment)
	order := &models.Order{
		PaymentID: paymentID,
		Status:    payment.Status,
		Total:     payment.TransactionAmount,
		Items:     items,
		Payer:     extractPayer(payment),
	}

	if err := s.orderRepo.Upsert(order); err != nil {
		return &PersistenceError{Err: fmt.Errorf("failed to save order for payment %s: %w", paymentID, err)}
	}
	log.Printf("Saved order for payment %s with status %s", paymentID, payment.Status)

	if payment.Status != models.OrderStatusApproved {
		return nil
	}

	s.reconcileStock(paymentID, items)
	s.publishApproved(order)
	return nil
}

// reconcileStock decrements stock one line item at a time. Items without a
// product id cannot be reconciled and are skipped. Failures are logged and
// the loop continues: no transaction spans the loop, so aborting midway
// would keep earlier decrements anyway while losing the rest.
func (s *WebhookService) reconcileStock(paymentID string, items []models.OrderItem) {
	for _, item := range items {
		if item.ProductID == "" {
			continue
		}
		if err := s.productRepo.DecrementStock(item.ProductID, item.Quantity); err != nil {
			log.Printf("Failed to decrement stock for product %s (payment %s): %v", item.ProductID, paymentID, err)
			continue
		}
		log.Printf("Decremented stock for product %s by %d (payment %s)", item.ProductID, item.Quantity, paymentID)
	}
}

// publishApproved emits an order.approved event for downstream fulfillment.
// Publish failures are logged, not fatal: the order record is already
// durable and events are advisory.
func (s *WebhookService) publishApproved(order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := map[string]interface{}{
		"payment_id": order.PaymentID,
		"status":     order.Status,
		"total":      order.Total,
		"item_count": len(order.Items),
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order event for payment %s: %v", order.PaymentID, err)
		return
	}
	if err := s.publisher.Publish("order.approved", body); err != nil {
		log.Printf("Warning: Failed to publish order.approved event for payment %s: %v", order.PaymentID, err)
	}
}

// extractItems prefers the payment's additional_info items and falls back
// to the JSON copy planted in metadata.items at preference time, which
// survives when the provider strips the rich item list.
func extractItems(payment *mercadopago.Payment) []models.OrderItem {
	if len(payment.AdditionalInfo.Items) > 0 {
		items := make([]models.OrderItem, 0, len(payment.AdditionalInfo.Items))
		for _, item := range payment.AdditionalInfo.Items {
			qty, err := item.Quantity.Int64()
			if err != nil {
				log.Printf("Skipping payment item %s with unreadable quantity %q", item.ID, item.Quantity)
				continue
			}
			items = append(items, models.OrderItem{
				ProductID: item.ID,
				Title:     item.Title,
				Quantity:  int(qty),
			})
		}
		return items
	}

	raw, ok := payment.Metadata["items"].(string)
	if !ok || raw == "" {
		return nil
	}
	var items []models.OrderItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("Failed to parse metadata items for payment %s: %v", payment.ID, err)
		return nil
	}
	return items
}

func extractPayer(payment *mercadopago.Payment) models.OrderPayer {
	name := payment.Payer.FirstName
	if payment.Payer.LastName != "" {
		if name != "" {
			name += " "
		}
		name += payment.Payer.LastName
	}
	return models.OrderPayer{
		Name:  name,
		Email: payment.Payer.Email,
	}
}
