package core

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"hradmin/internal/platform/money"
)

// PaymentReceipt renders a one-page PDF receipt for a stored payment.
func (s *Service) PaymentReceipt(ctx context.Context, id string) ([]byte, error) {
	payment, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	payee := NotApplicable
	if payment.EmployeeID != "" {
		emp, err := s.store.GetEmployee(ctx, payment.EmployeeID)
		if err != nil {
			s.logger.Sugar().Warnw("receipt payee lookup failed", "payment_id", id, "err", err)
		} else {
			payee = emp.FullName()
		}
	}
	return RenderReceipt(*payment, payee)
}

func RenderReceipt(payment Payment, payee string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payment Receipt")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Receipt: %s", payment.ID))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Payee: %s", payee))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Received: %s", payment.ReceivedDate.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Amount: %s", money.Format(payment.Amount, "")))
	if payment.Notes != "" {
		pdf.Ln(7)
		pdf.MultiCell(0, 6, fmt.Sprintf("Notes: %s", payment.Notes), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}
