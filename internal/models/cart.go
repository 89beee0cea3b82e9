package models

// CartItem is one entry of a client-side cart submitted at checkout.
// Quantity is capped client-side at the stock snapshot taken when the item
// was added; the server still validates shape before talking to the payment
// provider.
type CartItem struct {
	ID           string  `json:"id" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Price        float64 `json:"price" validate:"gte=0"`
	Quantity     int     `json:"quantity" validate:"required,gte=1"`
	ImageURL     string  `json:"image_url,omitempty" validate:"omitempty,url"`
	VariantID    string  `json:"variant_id,omitempty"`
	VariantLabel string  `json:"variant_label,omitempty"`
}

// CheckoutPayer is the optional buyer contact sent with a checkout request.
type CheckoutPayer struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
}

// CheckoutRequest is the body accepted by the checkout endpoint.
type CheckoutRequest struct {
	Items []CartItem     `json:"items" validate:"required,min=1,dive"`
	Payer *CheckoutPayer `json:"payer,omitempty"`
}

// CheckoutResponse carries the provider preference id and the hosted
// checkout URLs the browser must be redirected to.
type CheckoutResponse struct {
	PreferenceID     string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point,omitempty"`
}
