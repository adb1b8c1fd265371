package domain

import (
	"strings"
	"time"
)

type (
	PaymentMethod string
	PaymentStatus string
	SaleStatus    string
)

const (
	PaymentCash         PaymentMethod = "cash"
	PaymentBankTransfer PaymentMethod = "bank_transfer"
	PaymentCredit       PaymentMethod = "credit"
	PaymentInstallment  PaymentMethod = "installment"

	PaymentPending       PaymentStatus = "pending"
	PaymentPaid          PaymentStatus = "paid"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentRefunded      PaymentStatus = "refunded"

	SalePending   SaleStatus = "pending"
	SaleCompleted SaleStatus = "completed"
	SaleCancelled SaleStatus = "cancelled"
)

const maxOtherDocuments = 10

// SaleDocuments holds URLs of paperwork attached to a sale.
type SaleDocuments struct {
	Contract         string   `json:"contract,omitempty"`
	Invoice          string   `json:"invoice,omitempty"`
	TransferDocument string   `json:"transferDocument,omitempty"`
	Other            []string `json:"other,omitempty"`
}

// Commission is the marketplace fee on a sale.
type Commission struct {
	Amount     float64    `json:"amount"`
	Percentage float64    `json:"percentage"`
	IsPaid     bool       `json:"isPaid"`
	PaidDate   *time.Time `json:"paidDate,omitempty"`
}

// Sale records the transfer of a car from its seller to a buyer. The seller
// owns the record; the buyer may read it.
type Sale struct {
	ID                 string        `json:"id"`
	CarID              string        `json:"carId"`
	SellerID           string        `json:"sellerId"`
	BuyerID            string        `json:"buyerId"`
	Price              float64       `json:"price"`
	PaymentMethod      PaymentMethod `json:"paymentMethod"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	SaleDate           time.Time     `json:"saleDate"`
	DeliveryDate       *time.Time    `json:"deliveryDate,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	Documents          SaleDocuments `json:"documents"`
	Status             SaleStatus    `json:"status"`
	CancellationReason string        `json:"cancellationReason,omitempty"`
	Commission         Commission    `json:"commission"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}

// Validate checks field bounds and the cross-field rules: delivery cannot
// precede the sale, a cancelled sale needs a reason, and a paid commission
// needs a paid date.
func (s *Sale) Validate() error {
	ve := &ValidationError{}

	s.Notes = strings.TrimSpace(s.Notes)
	s.CancellationReason = strings.TrimSpace(s.CancellationReason)

	if s.CarID == "" {
		ve.Add("car", "car is required")
	}
	if s.BuyerID == "" {
		ve.Add("buyer", "buyer is required")
	}
	checkMin(ve, "price", s.Price, 0)
	checkEnum(ve, "paymentMethod", s.PaymentMethod, PaymentCash, PaymentBankTransfer, PaymentCredit, PaymentInstallment)
	checkEnum(ve, "paymentStatus", s.PaymentStatus, PaymentPending, PaymentPaid, PaymentPartiallyPaid, PaymentRefunded)
	checkEnum(ve, "status", s.Status, SalePending, SaleCompleted, SaleCancelled)
	checkLen(ve, "notes", s.Notes, 0, 1000)
	checkLen(ve, "cancellationReason", s.CancellationReason, 0, 500)
	if len(s.Documents.Other) > maxOtherDocuments {
		ve.Add("documents.other", "cannot have more than 10 other documents")
	}
	checkMin(ve, "commission.amount", s.Commission.Amount, 0)
	checkRange(ve, "commission.percentage", s.Commission.Percentage, 0, 100)

	if s.DeliveryDate != nil && s.DeliveryDate.Before(s.SaleDate) {
		ve.Add("deliveryDate", "delivery date cannot be before sale date")
	}
	if s.Status == SaleCancelled && s.CancellationReason == "" {
		ve.Add("cancellationReason", "cancellation reason is required when status is cancelled")
	}
	if s.Commission.IsPaid && s.Commission.PaidDate == nil {
		ve.Add("commission.paidDate", "paid date is required when commission is paid")
	}

	return ve.OrNil()
}

// SaleDetail is a sale with its references resolved.
type SaleDetail struct {
	*Sale
	Car    *Car         `json:"car,omitempty"`
	Seller *UserSummary `json:"seller,omitempty"`
	Buyer  *UserSummary `json:"buyer,omitempty"`
}

// SaleFilter narrows sale listings. ParticipantID restricts results to sales
// where the user is seller or buyer.
type SaleFilter struct {
	ParticipantID string
	Status        SaleStatus
	PaymentStatus PaymentStatus
}
