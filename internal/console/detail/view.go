package detail

import (
	"time"

	"hradmin/internal/domain/core"
)

const dateLayout = "2006-01-02"

// View is a render-ready copy of the controller state.
type View struct {
	State State
	Error string

	Employee         core.Employee
	RoleName         string
	LevelName        string
	OrganisationAbbr string
	AnnualCTC        string
	MonthlyCTC       string
	DateOfJoining    string

	Assignments  []AssignmentView
	ClientsError string
}

type AssignmentView struct {
	ID             string
	ClientName     string
	CurrencyCode   string
	MonthlyBilling string
	StartDate      string
	EndDate        string
	Status         core.AssignmentStatus
}

// View copies the current state for rendering. In StateError it carries only
// the error; nothing else from the failed load is shown.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{State: c.state, Error: c.err}
	if c.state == StateError {
		return v
	}
	v.ClientsError = c.clientsErr
	if c.state == StateReady && c.employee != nil {
		emp := *c.employee
		v.Employee = emp
		v.RoleName = c.labels.role
		v.LevelName = c.labels.level
		v.OrganisationAbbr = c.labels.organisation
		v.AnnualCTC = c.formatter.Amount(emp.AnnualCTC)
		v.MonthlyCTC = c.formatter.Amount(emp.MonthlyCTC)
		v.DateOfJoining = formatDate(emp.DateOfJoining)
	}
	for _, a := range c.assignments {
		v.Assignments = append(v.Assignments, c.assignmentView(a))
	}
	return v
}

func (c *Controller) assignmentView(a core.ClientAssignment) AssignmentView {
	av := AssignmentView{
		ID:        a.ID,
		StartDate: formatDate(a.StartDate),
		EndDate:   formatDate(a.EndDate),
		Status:    a.Status,
	}
	if a.Status == core.AssignmentStatusActive {
		av.EndDate = core.NotApplicable
	}
	if a.Client != nil {
		av.ClientName = a.Client.Name
		if a.Client.Currency != nil {
			av.CurrencyCode = a.Client.Currency.Code
		}
	}
	av.MonthlyBilling = c.formatter.Format(a.MonthlyBilling, av.CurrencyCode)
	return av
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return core.NotApplicable
	}
	return t.Format(dateLayout)
}
