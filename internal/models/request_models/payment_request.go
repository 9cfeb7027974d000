package request_models

import "github.com/shopspring/decimal"

// DonorDetails is what the public donation form collects.
type DonorDetails struct {
	Email   string `json:"email" binding:"required,email"`
	Name    string `json:"name" binding:"required,max=120"`
	Surname string `json:"surname" binding:"max=160"`
	Phone   string `json:"phone" binding:"max=40"`
	Address string `json:"address" binding:"max=255"`
	Note    string `json:"note" binding:"max=1000"`
}

type CreatePaymentIntentRequest struct {
	Donor  DonorDetails    `json:"donor"`
	Amount decimal.Decimal `json:"amount"`
}

type CreateCheckoutSessionRequest struct {
	Donor       DonorDetails    `json:"donor"`
	Amount      decimal.Decimal `json:"amount"`
	Periodicity string          `json:"periodicity" binding:"required,oneof=monthly quarterly semiannual annual"`
}

type ConfirmPaymentRequest struct {
	Reference string `json:"reference" binding:"required"`
}
