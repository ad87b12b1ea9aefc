package paymentprovider

// CreateInvoiceRequest запрос на выставление счёта.
type CreateInvoiceRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OfferID     string `json:"offerId" validate:"required"`
	Currency    string `json:"currency"`
	Periodicity string `json:"periodicity"`
}

// CreateInvoiceResponse ответ шлюза на выставление счёта.
type CreateInvoiceResponse struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	PaymentURL string `json:"paymentUrl"`
}
