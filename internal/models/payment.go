package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Payment methods accepted at checkout.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentDebt     = "debt"
)

// PaymentLeg is one part of a split payment.
type PaymentLeg struct {
	Method  string     `json:"method"`
	Amount  float64    `json:"amount"`
	DueDate *time.Time `json:"dueDate,omitempty"`
}

// PaymentBreakdown is either a single-method payment or a list of split legs.
// It is a sum type in memory; the JSON shape at the storage boundary is a
// plain object for single payments and {"legs":[...]} for splits.
type PaymentBreakdown struct {
	Method string
	Amount float64
	Legs   []PaymentLeg
}

// Single builds a single-method breakdown.
func Single(method string, amount float64) PaymentBreakdown {
	return PaymentBreakdown{Method: method, Amount: amount}
}

// Split builds a split breakdown from its legs.
func Split(legs []PaymentLeg) PaymentBreakdown {
	return PaymentBreakdown{Legs: legs}
}

// IsSplit reports whether the payment was split across methods.
func (p PaymentBreakdown) IsSplit() bool {
	return len(p.Legs) > 0
}

// Total returns the full amount paid across all legs.
func (p PaymentBreakdown) Total() float64 {
	if !p.IsSplit() {
		return p.Amount
	}
	var total float64
	for _, leg := range p.Legs {
		total += leg.Amount
	}
	return total
}

// PerMethod attributes the paid amount to each payment method. Split sales
// contribute each leg to its own method rather than the sale total.
func (p PaymentBreakdown) PerMethod() map[string]float64 {
	totals := make(map[string]float64)
	if !p.IsSplit() {
		totals[p.Method] = p.Amount
		return totals
	}
	for _, leg := range p.Legs {
		totals[leg.Method] += leg.Amount
	}
	return totals
}

// DebtAmount returns the portion of the payment charged as customer debt.
func (p PaymentBreakdown) DebtAmount() float64 {
	return p.PerMethod()[PaymentDebt]
}

// DebtDueDate returns the earliest due date carried by a debt leg, if any.
func (p PaymentBreakdown) DebtDueDate() *time.Time {
	var due *time.Time
	for i := range p.Legs {
		leg := p.Legs[i]
		if leg.Method != PaymentDebt || leg.DueDate == nil {
			continue
		}
		if due == nil || leg.DueDate.Before(*due) {
			due = leg.DueDate
		}
	}
	return due
}

type paymentJSON struct {
	Method string       `json:"method,omitempty"`
	Amount float64      `json:"amount,omitempty"`
	Legs   []PaymentLeg `json:"legs,omitempty"`
}

// MarshalJSON keeps the wire shape identical to the storage shape.
func (p PaymentBreakdown) MarshalJSON() ([]byte, error) {
	return json.Marshal(paymentJSON{Method: p.Method, Amount: p.Amount, Legs: p.Legs})
}

// UnmarshalJSON implements json.Unmarshaler
func (p *PaymentBreakdown) UnmarshalJSON(data []byte) error {
	var decoded paymentJSON
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	*p = PaymentBreakdown{Method: decoded.Method, Amount: decoded.Amount, Legs: decoded.Legs}
	return nil
}

// Value implements driver.Valuer
func (p PaymentBreakdown) Value() (driver.Value, error) {
	return json.Marshal(paymentJSON{Method: p.Method, Amount: p.Amount, Legs: p.Legs})
}

// Scan implements sql.Scanner
func (p *PaymentBreakdown) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentBreakdown{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("failed to scan payment breakdown: %v", value)
	}

	var decoded paymentJSON
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*p = PaymentBreakdown{Method: decoded.Method, Amount: decoded.Amount, Legs: decoded.Legs}
	return nil
}
