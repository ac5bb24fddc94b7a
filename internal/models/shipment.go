package models

import "time"

type ShipmentStatus string

const (
	ShipmentStatusDraft          ShipmentStatus = "draft"
	ShipmentStatusPendingPayment ShipmentStatus = "pending_payment"
	ShipmentStatusPaid           ShipmentStatus = "paid"
	ShipmentStatusProcessing     ShipmentStatus = "processing"
	ShipmentStatusInTransit      ShipmentStatus = "in_transit"
	ShipmentStatusDelivered      ShipmentStatus = "delivered"
	ShipmentStatusCancelled      ShipmentStatus = "cancelled"
	ShipmentStatusFailed         ShipmentStatus = "failed"
)

type Address struct {
	Name         string `json:"name" validate:"required"`
	Company      string `json:"company,omitempty"`
	AddressLine1 string `json:"address_line_1" validate:"required"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	PostalCode   string `json:"postal_code" validate:"required"`
	Country      string `json:"country" validate:"required"`
	Phone        string `json:"phone" validate:"required"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
}

type Dimensions struct {
	Length float64 `json:"length" validate:"gte=0"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

type Item struct {
	Category      string     `json:"category" validate:"required"`
	Description   string     `json:"description" validate:"required"`
	PackageType   string     `json:"package_type" validate:"required"`
	Quantity      int        `json:"quantity" validate:"gt=0"`
	Weight        float64    `json:"weight" validate:"gt=0"`
	Dimensions    Dimensions `json:"dimensions"`
	DeclaredValue float64    `json:"declared_value" validate:"gte=0"`
}

const (
	PickupTypePickup    = "pickup"
	PickupTypeDropoff   = "dropoff"
	PickupTypeScheduled = "scheduled"
)

type ShipmentOptions struct {
	PickupType    string `json:"pickup_type" validate:"required,oneof=pickup dropoff scheduled"`
	ScheduledDate string `json:"scheduled_date,omitempty" validate:"required_if=PickupType scheduled"`
	Insurance     bool   `json:"insurance"`
	Notes         string `json:"notes,omitempty"`
}

type Adjustment struct {
	Amount      float64  `json:"amount"`
	Description string   `json:"description"`
	Rate        *float64 `json:"rate,omitempty"`
}

type Quote struct {
	QuoteID       string       `json:"quote_id"`
	CarrierCode   string       `json:"carrier_code"`
	CarrierName   string       `json:"carrier_name"`
	ServiceCode   string       `json:"service_code"`
	ServiceName   string       `json:"service_name"`
	BaseRate      float64      `json:"base_rate"`
	Adjustments   []Adjustment `json:"adjustments"`
	Discounts     []Adjustment `json:"discounts"`
	TotalAmount   float64      `json:"total_amount"`
	Currency      string       `json:"currency"`
	EstimatedDays int          `json:"estimated_days"`
}

type QuoteRequest struct {
	Origin      Address `json:"origin"`
	Destination Address `json:"destination"`
	Items       []Item  `json:"items"`
	Insurance   bool    `json:"insurance"`
}

type CreateShipmentRequest struct {
	Origin      Address         `json:"origin"`
	Destination Address         `json:"destination"`
	Items       []Item          `json:"items"`
	Options     ShipmentOptions `json:"options"`
	QuoteID     string          `json:"quote_id"`
	CarrierCode string          `json:"carrier_code"`
	ServiceCode string          `json:"service_code"`
}

type UpdateShipmentRequest struct {
	QuoteID     string `json:"quote_id,omitempty"`
	CarrierCode string `json:"carrier_code,omitempty"`
	ServiceCode string `json:"service_code,omitempty"`
}

type Shipment struct {
	ID              string         `json:"id"`
	Code            string         `json:"code"`
	Origin          Address        `json:"origin"`
	Destination     Address        `json:"destination"`
	Items           []Item         `json:"items"`
	CarrierCode     string         `json:"carrier_code"`
	ServiceCode     string         `json:"service_code"`
	RateBasePrice   float64        `json:"rate_base_price"`
	RateAdjustments []Adjustment   `json:"rate_adjustments"`
	RateDiscounts   []Adjustment   `json:"rate_discounts"`
	FinalPrice      float64        `json:"final_price"`
	Currency        string         `json:"currency"`
	Status          ShipmentStatus `json:"status"`
	PaymentID       string         `json:"payment_id"`
	CreatedAt       time.Time      `json:"created_at"`
}
