package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"hradmin/internal/domain/core"
)

type PaymentDraft struct {
	ID           string
	EmployeeID   string
	Amount       string
	ReceivedDate string
	Notes        string
}

func PaymentDraftFrom(p core.Payment) PaymentDraft {
	d := PaymentDraft{
		ID:         p.ID,
		EmployeeID: p.EmployeeID,
		Amount:     strconv.FormatFloat(p.Amount, 'f', -1, 64),
		Notes:      p.Notes,
	}
	if !p.ReceivedDate.IsZero() {
		d.ReceivedDate = p.ReceivedDate.Format(dateLayout)
	}
	return d
}

func (d PaymentDraft) Payment() (core.Payment, error) {
	amount, err := strconv.ParseFloat(strings.TrimSpace(d.Amount), 64)
	if err != nil {
		return core.Payment{}, fmt.Errorf("amount: %w", err)
	}
	received, err := time.Parse(dateLayout, strings.TrimSpace(d.ReceivedDate))
	if err != nil {
		return core.Payment{}, fmt.Errorf("received date: %w", err)
	}
	return core.Payment{
		ID:           d.ID,
		EmployeeID:   d.EmployeeID,
		Amount:       amount,
		ReceivedDate: received,
		Notes:        strings.TrimSpace(d.Notes),
	}, nil
}

func PaymentSchema(today func() time.Time) Schema[PaymentDraft] {
	return Schema[PaymentDraft]{
		Defaults: func() PaymentDraft {
			return PaymentDraft{ReceivedDate: today().Format(dateLayout)}
		},
		Fields: []Field[PaymentDraft]{
			{
				Name: "employeeId",
				Get:  func(d *PaymentDraft) string { return d.EmployeeID },
				Set:  func(d *PaymentDraft, v string) { d.EmployeeID = strings.TrimSpace(v) },
			},
			{
				Name:    "amount",
				Get:     func(d *PaymentDraft) string { return d.Amount },
				Set:     func(d *PaymentDraft, v string) { d.Amount = strings.TrimSpace(v) },
				Rules:   "required,positive",
				Message: "Amount must be greater than zero",
				Live:    true,
			},
			{
				Name:    "receivedDate",
				Get:     func(d *PaymentDraft) string { return d.ReceivedDate },
				Set:     func(d *PaymentDraft, v string) { d.ReceivedDate = strings.TrimSpace(v) },
				Rules:   "required,datetime=" + dateLayout,
				Message: "Received date must be YYYY-MM-DD",
			},
			{
				Name: "notes",
				Get:  func(d *PaymentDraft) string { return d.Notes },
				Set:  func(d *PaymentDraft, v string) { d.Notes = v },
			},
		},
	}
}

func NewPaymentForm() *Form[PaymentDraft] {
	return New(PaymentSchema(func() time.Time { return time.Now() }))
}
