package checkout

import (
	"errors"
	"strings"

	"github.com/noah-isme/backend-kedai/internal/common"
)

// ServiceType is how the customer receives the order.
type ServiceType string

const (
	ServicePickup   ServiceType = "pickup"
	ServiceDelivery ServiceType = "delivery"
	ServiceDineIn   ServiceType = "dine-in"
)

// Pickup windows offered to pickup customers.
const (
	PickupSoon    = "5-10"
	PickupShort   = "15-20"
	PickupLong    = "25-30"
	PickupCustom  = "custom"
	DefaultPickup = PickupSoon
)

// ErrInvalidDetails marks customer details that do not satisfy the details step.
var ErrInvalidDetails = errors.New("customer details incomplete")

// CustomerInfo is everything the customer enters across the checkout steps.
type CustomerInfo struct {
	Name          string      `json:"name"`
	Contact       string      `json:"contact"`
	ServiceType   ServiceType `json:"serviceType"`
	Address       string      `json:"address,omitempty"`
	Landmark      string      `json:"landmark,omitempty"`
	PickupTime    string      `json:"pickupTime,omitempty"`
	CustomTime    string      `json:"customTime,omitempty"`
	PaymentMethod string      `json:"paymentMethod"`
	Notes         string      `json:"notes,omitempty"`
}

// details carries the validation rules of the details step.
type details struct {
	Name        string `json:"name" validate:"required"`
	Contact     string `json:"contact" validate:"required"`
	ServiceType string `json:"serviceType" validate:"required,oneof=pickup delivery dine-in"`
	Address     string `json:"address" validate:"required_if=ServiceType delivery"`
	PickupTime  string `json:"pickupTime" validate:"omitempty,oneof=5-10 15-20 25-30 custom"`
	CustomTime  string `json:"customTime" validate:"required_if=PickupTime custom,omitempty,datetime=15:04"`
}

// Normalize trims free text and drops fields that do not apply to the chosen
// service type.
func (c CustomerInfo) Normalize() CustomerInfo {
	c.Name = strings.TrimSpace(c.Name)
	c.Contact = strings.TrimSpace(c.Contact)
	c.ServiceType = ServiceType(strings.ToLower(strings.TrimSpace(string(c.ServiceType))))
	c.Address = strings.TrimSpace(c.Address)
	c.Landmark = strings.TrimSpace(c.Landmark)
	c.PickupTime = strings.TrimSpace(c.PickupTime)
	c.CustomTime = strings.TrimSpace(c.CustomTime)
	c.PaymentMethod = strings.TrimSpace(c.PaymentMethod)
	c.Notes = strings.TrimSpace(c.Notes)
	if c.ServiceType != ServiceDelivery {
		c.Address = ""
		c.Landmark = ""
	}
	if c.ServiceType == ServicePickup {
		if c.PickupTime == "" {
			c.PickupTime = DefaultPickup
		}
		if c.PickupTime != PickupCustom {
			c.CustomTime = ""
		}
	} else {
		c.PickupTime = ""
		c.CustomTime = ""
	}
	return c
}

// ValidateDetails reports whether the details step is complete. The returned
// AppError lists offending fields keyed by their json name.
func ValidateDetails(info CustomerInfo) error {
	info = info.Normalize()
	d := details{
		Name:        info.Name,
		Contact:     info.Contact,
		ServiceType: string(info.ServiceType),
		Address:     info.Address,
		PickupTime:  info.PickupTime,
		CustomTime:  info.CustomTime,
	}
	if err := common.Validator().Struct(d); err != nil {
		return common.Invalid("please complete your details", common.ValidationDetails(err), ErrInvalidDetails)
	}
	return nil
}
