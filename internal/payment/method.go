package payment

import (
	"errors"

	"github.com/noah-isme/backend-kedai/internal/common"
)

// CashOnDelivery is the method id that needs no payment receipt.
const CashOnDelivery = "cod"

var (
	// ErrNotFound indicates the payment method does not exist.
	ErrNotFound = errors.New("payment method not found")
	// ErrInactive indicates the payment method exists but is hidden.
	ErrInactive = errors.New("payment method inactive")
)

// Method describes one way the customer can pay, shown at checkout.
type Method struct {
	ID            string `json:"id" validate:"required,max=64"`
	Name          string `json:"name" validate:"required"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	QRCodeURL     string `json:"qr_code_url" validate:"omitempty,url"`
	Active        bool   `json:"active"`
	SortOrder     int    `json:"sort_order"`
}

// IsCashOnDelivery reports whether the method settles on handover.
func (m Method) IsCashOnDelivery() bool {
	return m.ID == CashOnDelivery
}

// Validate checks the stored shape of a method.
func Validate(m Method) error {
	if err := common.Validator().Struct(m); err != nil {
		return common.Invalid("invalid payment method", common.ValidationDetails(err), err)
	}
	return nil
}
