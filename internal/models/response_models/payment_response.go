package response_models

type PaymentIntentResponse struct {
	Reference    string `json:"reference"`
	ClientSecret string `json:"client_secret"`
}

type CheckoutSessionResponse struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url"`
}

type ConfirmPaymentResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

type WebhookAck struct {
	Received bool   `json:"received"`
	Outcome  string `json:"outcome"`
}
