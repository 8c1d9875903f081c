package invoicing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vetro-erp/vetro-erp/internal/geometry"
	"github.com/vetro-erp/vetro-erp/internal/money"
	"github.com/vetro-erp/vetro-erp/internal/pricing"
)

// OperationInput describes one operation on a line as submitted by the client.
// Numeric values travel as strings so they parse into exact decimals.
type OperationInput struct {
	Category    string  `json:"category" validate:"required,max=50"`
	Mode        string  `json:"mode" validate:"required,oneof=formula area manual"`
	Formula     string  `json:"formula,omitempty"`
	Thickness   string  `json:"thickness_mm,omitempty"`
	Diameter    string  `json:"diameter_m,omitempty"`
	ManualPrice *string `json:"manual_price,omitempty"`
}

// LineInput describes one glass piece to price.
type LineInput struct {
	GlassID    int64            `json:"glass_id" validate:"required,gt=0"`
	Width      string           `json:"width" validate:"required"`
	Height     string           `json:"height" validate:"required"`
	Unit       string           `json:"unit" validate:"required,oneof=mm cm m"`
	Quantity   int              `json:"quantity" validate:"omitempty,gt=0"`
	Operations []OperationInput `json:"operations" validate:"omitempty,dive"`
}

type CreateInvoiceRequest struct {
	CustomerID     int64       `json:"customer_id" validate:"required,gt=0"`
	Lines          []LineInput `json:"lines" validate:"required,min=1,dive"`
	InitialPayment *string     `json:"initial_payment,omitempty"`
	Notes          string      `json:"notes,omitempty"`
}

type RecordPaymentRequest struct {
	Amount string `json:"amount" validate:"required"`
	Method string `json:"method" validate:"required,oneof=cash transfer card"`
	Notes  string `json:"notes,omitempty"`
}

type ListInvoicesRequest struct {
	CustomerID *int64  `json:"customer_id,omitempty"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=PENDING PARTIALLY_PAID PAID CANCELLED"`
	Limit      int     `json:"limit" validate:"gte=0,lte=1000"`
	Offset     int     `json:"offset" validate:"gte=0"`
}

// QuoteRequest prices a line without creating anything.
type QuoteRequest struct {
	Line LineInput `json:"line" validate:"required"`
}

// parse converts the wire operation into a pricing request. The glass
// thickness fills in when the operation does not carry its own.
func (in OperationInput) parse(glassThickness decimal.Decimal, currency string) (pricing.OperationRequest, error) {
	req := pricing.OperationRequest{
		Category: pricing.Category(in.Category),
		Mode:     pricing.Mode(in.Mode),
		Formula:  pricing.Formula(in.Formula),
	}

	req.Thickness = glassThickness
	if in.Thickness != "" {
		t, err := decimal.NewFromString(in.Thickness)
		if err != nil {
			return pricing.OperationRequest{}, fmt.Errorf("invoicing: invalid thickness %q: %w", in.Thickness, err)
		}
		req.Thickness = t
	}
	if in.Diameter != "" {
		d, err := decimal.NewFromString(in.Diameter)
		if err != nil {
			return pricing.OperationRequest{}, fmt.Errorf("invoicing: invalid diameter %q: %w", in.Diameter, err)
		}
		req.Diameter = d
	}
	if in.ManualPrice != nil {
		m, err := money.NewFromString(*in.ManualPrice, currency)
		if err != nil {
			return pricing.OperationRequest{}, fmt.Errorf("invoicing: invalid manual price: %w", err)
		}
		req.Manual = &m
	}
	return req, nil
}

// dimensions parses the line's width/height/unit.
func (in LineInput) dimensions() (geometry.Dimensions, error) {
	unit, err := geometry.ParseUnit(in.Unit)
	if err != nil {
		return geometry.Dimensions{}, err
	}
	w, err := decimal.NewFromString(in.Width)
	if err != nil {
		return geometry.Dimensions{}, fmt.Errorf("invoicing: invalid width %q: %w", in.Width, err)
	}
	h, err := decimal.NewFromString(in.Height)
	if err != nil {
		return geometry.Dimensions{}, fmt.Errorf("invoicing: invalid height %q: %w", in.Height, err)
	}
	return geometry.NewDimensions(w, h, unit)
}

// OperationView is the wire representation of one priced operation.
type OperationView struct {
	Category    string `json:"category"`
	Mode        string `json:"mode"`
	Formula     string `json:"formula,omitempty"`
	Price       string `json:"price"`
	Description string `json:"description"`
}

// LineView is the wire representation of one invoice line with its breakdown.
type LineView struct {
	ID         int64           `json:"id"`
	GlassID    int64           `json:"glass_id"`
	GlassCode  string          `json:"glass_code"`
	Width      string          `json:"width"`
	Height     string          `json:"height"`
	Unit       string          `json:"unit"`
	Quantity   int             `json:"quantity"`
	Material   string          `json:"material"`
	Operations []OperationView `json:"operations"`
	UnitTotal  string          `json:"unit_total"`
	Total      string          `json:"total"`
}

// InvoiceView is the wire representation of an invoice.
type InvoiceView struct {
	ID         int64      `json:"id"`
	Number     string     `json:"number"`
	CustomerID int64      `json:"customer_id"`
	Lines      []LineView `json:"lines"`
	Total      string     `json:"total"`
	Paid       string     `json:"paid"`
	Remaining  string     `json:"remaining"`
	Currency   string     `json:"currency"`
	Status     Status     `json:"status"`
	IssuedAt   time.Time  `json:"issued_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// PaymentView is the wire representation of one payment.
type PaymentView struct {
	ID        int64     `json:"id"`
	InvoiceID int64     `json:"invoice_id"`
	Reference string    `json:"reference"`
	Amount    string    `json:"amount"`
	Method    string    `json:"method"`
	Notes     string    `json:"notes,omitempty"`
	PaidAt    time.Time `json:"paid_at"`
}

// QuoteView is the response for an ad hoc pricing quote.
type QuoteView struct {
	GlassCode  string          `json:"glass_code"`
	Material   string          `json:"material"`
	Operations []OperationView `json:"operations"`
	UnitTotal  string          `json:"unit_total"`
	Quantity   int             `json:"quantity"`
	Total      string          `json:"total"`
	Currency   string          `json:"currency"`
}

func toOperationViews(ops []pricing.PricedOperation) []OperationView {
	out := make([]OperationView, 0, len(ops))
	for _, op := range ops {
		out = append(out, OperationView{
			Category:    string(op.Category),
			Mode:        string(op.Mode),
			Formula:     string(op.Formula),
			Price:       op.Price.StringFixed(),
			Description: op.Description,
		})
	}
	return out
}

func toLineView(l Line) LineView {
	return LineView{
		ID:         l.ID,
		GlassID:    l.GlassID,
		GlassCode:  l.GlassCode,
		Width:      l.Dimensions.Width().String(),
		Height:     l.Dimensions.Height().String(),
		Unit:       string(l.Dimensions.Unit()),
		Quantity:   l.Quantity,
		Material:   l.Breakdown.Material.StringFixed(),
		Operations: toOperationViews(l.Breakdown.Operations),
		UnitTotal:  l.Breakdown.UnitTotal.StringFixed(),
		Total:      l.Breakdown.Total.StringFixed(),
	}
}

func toInvoiceView(s Snapshot) InvoiceView {
	lines := make([]LineView, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, toLineView(l))
	}
	return InvoiceView{
		ID:         s.ID,
		Number:     s.Number,
		CustomerID: s.CustomerID,
		Lines:      lines,
		Total:      s.Total.StringFixed(),
		Paid:       s.Paid.StringFixed(),
		Remaining:  s.Remaining.StringFixed(),
		Currency:   s.Total.Currency(),
		Status:     s.Status,
		IssuedAt:   s.IssuedAt,
		PaidAt:     s.PaidAt,
		Notes:      s.Notes,
	}
}

func toPaymentView(p Payment) PaymentView {
	return PaymentView{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Reference: p.Reference,
		Amount:    p.Amount.StringFixed(),
		Method:    p.Method,
		Notes:     p.Notes,
		PaidAt:    p.PaidAt,
	}
}
