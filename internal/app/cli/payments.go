package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hradmin/internal/console/form"
	"hradmin/internal/console/payments"
)

func newPaymentsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payments",
		Short: "List, record and edit payments",
	}
	cmd.AddCommand(
		newPaymentsListCmd(s),
		newPaymentsAddCmd(s),
		newPaymentsEditCmd(s),
		newPaymentsReceiptCmd(s),
	)
	return cmd
}

func (s *session) paymentsController(cmd *cobra.Command) *payments.Controller {
	p := printer{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
	return payments.New(s.api, p, s.logger)
}

func newPaymentsListCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List payments, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := s.paymentsController(cmd)
			if err := c.Load(cmd.Context()); err != nil {
				return err
			}
			return s.printPayments(cmd, c)
		},
	}
}

func newPaymentsAddCmd(s *session) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a payment, e.g. --set amount=2500 --set receivedDate=2024-06-01",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := s.paymentsController(cmd)
			return s.submitPayment(cmd, c, c.OpenCreate(), sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable)")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func newPaymentsEditCmd(s *session) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a payment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := s.paymentsController(cmd)
			f, err := c.OpenEdit(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return s.submitPayment(cmd, c, f, sets)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value (repeatable)")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func newPaymentsReceiptCmd(s *session) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "receipt <id>",
		Short: "Download a payment receipt as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pdf, err := s.api.PaymentReceipt(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if out == "" {
				out = "receipt-" + args[0] + ".pdf"
			}
			if err := os.WriteFile(out, pdf, 0o644); err != nil {
				return fmt.Errorf("write receipt: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Receipt written to", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default receipt-<id>.pdf)")
	return cmd
}

func (s *session) submitPayment(cmd *cobra.Command, c *payments.Controller, f *form.Form[form.PaymentDraft], sets []string) error {
	if err := applySets(f, sets); err != nil {
		f.Close()
		return err
	}
	outcome, err := f.Submit()
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		fmt.Fprintln(cmd.ErrOrStderr(), "error: payment is invalid")
		writeFieldErrors(cmd.ErrOrStderr(), verr.Fields)
		f.Close()
		return err
	}
	if err != nil {
		return err
	}
	if err := c.Finish(cmd.Context(), outcome); err != nil {
		return err
	}
	return s.printPayments(cmd, c)
}

func (s *session) printPayments(cmd *cobra.Command, c *payments.Controller) error {
	list := c.Payments()
	w := cmd.OutOrStdout()
	if s.jsonOut {
		return writeJSON(w, list)
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tRECEIVED\tAMOUNT\tNOTES")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.ReceivedDate.Format("2006-01-02"), s.formatter.Amount(p.Amount), p.Notes)
	}
	return tw.Flush()
}
