package fee

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// GeneralFeeLabel is the fee type printed for payments not linked to an invoice
const GeneralFeeLabel = "General Fee"

// ReceiptNumber derives a stable receipt number from the payment date and ID.
// The same payment always yields the same number.
func ReceiptNumber(p *FeePayment) string {
	hex := strings.ReplaceAll(p.ID.String(), "-", "")
	return fmt.Sprintf("RCPT-%s-%s", p.PaidAt.UTC().Format("20060102"), strings.ToUpper(hex[:8]))
}

// ReceiptPayment is the payment section of a receipt
type ReceiptPayment struct {
	ReceiptNumber string          `json:"receipt_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidDate      time.Time       `json:"paid_date"`
	Method        PaymentMethod   `json:"method"`
	FeeType       string          `json:"fee_type"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Remarks       string          `json:"remarks,omitempty"`
}

// ReceiptStudent is the student section of a receipt
type ReceiptStudent struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	ClassName  string `json:"class_name"`
	Phone      string `json:"phone"`
}

// ReceiptSchool is the issuing school section of a receipt
type ReceiptSchool struct {
	Name          string `json:"name"`
	LogoURL       string `json:"logo_url,omitempty"`
	PrincipalName string `json:"principal_name,omitempty"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Email         string `json:"email,omitempty"`
}

// ReceiptPayload is everything needed to print a payment receipt
type ReceiptPayload struct {
	Payment ReceiptPayment `json:"payment"`
	Student ReceiptStudent `json:"student"`
	School  ReceiptSchool  `json:"school"`
}

// NewReceiptPayment builds the payment section. feeType falls back to GeneralFeeLabel.
func NewReceiptPayment(p *FeePayment, feeType string) ReceiptPayment {
	if feeType == "" {
		feeType = GeneralFeeLabel
	}
	return ReceiptPayment{
		ReceiptNumber: ReceiptNumber(p),
		Amount:        p.AmountPaid,
		PaidDate:      p.PaidAt,
		Method:        p.Method,
		FeeType:       feeType,
		TransactionID: p.TransactionID,
		Remarks:       p.Remarks,
	}
}
