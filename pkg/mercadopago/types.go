package mercadopago

import "encoding/json"

// PreferenceItem is one line of a checkout preference.
type PreferenceItem struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	CurrencyID  string  `json:"currency_id"`
	PictureURL  string  `json:"picture_url,omitempty"`
	Description string  `json:"description,omitempty"`
	CategoryID  string  `json:"category_id,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// PreferencePayer is the optional buyer contact attached to a preference.
type PreferencePayer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// BackURLs are the storefront pages the hosted checkout redirects to.
type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

// PreferenceRequest is the payload for POST /checkout/preferences.
type PreferenceRequest struct {
	Items               []PreferenceItem  `json:"items"`
	Payer               *PreferencePayer  `json:"payer,omitempty"`
	BackURLs            BackURLs          `json:"back_urls"`
	AutoReturn          string            `json:"auto_return,omitempty"`
	StatementDescriptor string            `json:"statement_descriptor,omitempty"`
	ExternalReference   string            `json:"external_reference,omitempty"`
	NotificationURL     string            `json:"notification_url,omitempty"`
	Metadata            map[string]string `json:"metadata,omitempty"`
}

// PreferenceResponse is the subset of the preference resource we consume.
type PreferenceResponse struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// PaymentItem is a line item reported on a payment resource. Quantity
// arrives as a string in some payloads, hence json.Number.
type PaymentItem struct {
	ID       string      `json:"id"`
	Title    string      `json:"title,omitempty"`
	Quantity json.Number `json:"quantity"`
}

// PaymentPayer is the payer block of a payment resource.
type PaymentPayer struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Payment is the subset of GET /v1/payments/{id} this service consumes.
// additional_info.items is sometimes stripped by the provider; the preference
// builder plants a redundant copy under metadata.items for that case.
type Payment struct {
	ID                json.Number  `json:"id"`
	Status            string       `json:"status"`
	TransactionAmount float64      `json:"transaction_amount"`
	ExternalReference string       `json:"external_reference,omitempty"`
	AdditionalInfo    struct {
		Items []PaymentItem `json:"items"`
	} `json:"additional_info"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Payer    PaymentPayer           `json:"payer"`
}

// WebhookNotification is the JSON body form of a webhook delivery.
type WebhookNotification struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}
