package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"hradmin/internal/console/detail"
	"hradmin/internal/console/form"
)

func newEmployeeCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Show, edit or delete an employee",
	}
	cmd.AddCommand(newEmployeeShowCmd(s), newEmployeeEditCmd(s), newEmployeeDeleteCmd(s))
	return cmd
}

func newEmployeeShowCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an employee with resolved references and client assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.mountEmployee(cmd, args[0])
			if err != nil {
				return err
			}
			return s.printEmployee(cmd.OutOrStdout(), c.View())
		},
	}
}

func newEmployeeEditCmd(s *session) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an employee, e.g. --set annualCtc=120000 --set status=Inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.mountEmployee(cmd, args[0])
			if err != nil {
				return err
			}
			f, err := c.OpenEdit()
			if err != nil {
				return err
			}
			if err := applySets(f, sets); err != nil {
				f.Close()
				return err
			}

			outcome, err := f.Submit()
			var verr *form.ValidationError
			if errors.As(err, &verr) {
				fmt.Fprintln(cmd.ErrOrStderr(), "error: employee is invalid")
				writeFieldErrors(cmd.ErrOrStderr(), verr.Fields)
				f.Close()
				return err
			}
			if err != nil {
				return err
			}
			if err := c.FinishEdit(cmd.Context(), outcome); err != nil {
				return err
			}
			return s.printEmployee(cmd.OutOrStdout(), c.View())
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value to change (repeatable)")
	_ = cmd.MarkFlagRequired("set")
	return cmd
}

func newEmployeeDeleteCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an inactive employee without active client assignments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.mountEmployee(cmd, args[0])
			if err != nil {
				return err
			}
			return c.Delete(cmd.Context())
		},
	}
}

func (s *session) mountEmployee(cmd *cobra.Command, id string) (*detail.Controller, error) {
	p := printer{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
	c := detail.New(detail.Options{
		API:       s.api,
		Notifier:  p,
		Navigator: p,
		Formatter: s.formatter,
		Logger:    s.logger,
	})
	c.Mount(cmd.Context(), id)
	if v := c.View(); v.State != detail.StateReady {
		return nil, errors.New(v.Error)
	}
	return c, nil
}

// applySets feeds field=value pairs through the form so the same
// normalisation and live checks apply as in an interactive edit.
func applySets[T any](f *form.Form[T], sets []string) error {
	for _, set := range sets {
		name, value, ok := strings.Cut(set, "=")
		if !ok {
			return fmt.Errorf("invalid --set %q, want field=value", set)
		}
		if err := f.OnFieldChange(strings.TrimSpace(name), value); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) printEmployee(w io.Writer, v detail.View) error {
	if s.jsonOut {
		return writeJSON(w, v)
	}
	emp := v.Employee
	tw := newTable(w)
	fmt.Fprintf(tw, "Employee\t%s\n", emp.FullName())
	fmt.Fprintf(tw, "ID\t%s\n", emp.ID)
	fmt.Fprintf(tw, "Code\t%s\n", emp.EmployeeCode)
	fmt.Fprintf(tw, "Role\t%s\n", v.RoleName)
	fmt.Fprintf(tw, "Level\t%s\n", v.LevelName)
	fmt.Fprintf(tw, "Organisation\t%s\n", v.OrganisationAbbr)
	fmt.Fprintf(tw, "Status\t%s\n", emp.Status)
	fmt.Fprintf(tw, "Annual CTC\t%s\n", v.AnnualCTC)
	fmt.Fprintf(tw, "Monthly CTC\t%s\n", v.MonthlyCTC)
	fmt.Fprintf(tw, "Contact\t%s\n", emp.ContactNumber)
	fmt.Fprintf(tw, "Email\t%s\n", emp.Email)
	fmt.Fprintf(tw, "Joined\t%s\n", v.DateOfJoining)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Client assignments")
	if v.ClientsError != "" {
		fmt.Fprintf(w, "  %s\n", v.ClientsError)
		return nil
	}
	if len(v.Assignments) == 0 {
		fmt.Fprintln(w, "  none")
		return nil
	}
	tw = newTable(w)
	fmt.Fprintln(tw, "  CLIENT\tBILLING\tSTART\tEND\tSTATUS")
	for _, a := range v.Assignments {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\t%s\n", a.ClientName, a.MonthlyBilling, a.StartDate, a.EndDate, a.Status)
	}
	return tw.Flush()
}
