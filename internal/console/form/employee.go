package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hradmin/internal/domain/core"
)

const dateLayout = "2006-01-02"

// EmployeeDraft is the editable, string-typed copy of an employee.
type EmployeeDraft struct {
	ID             string
	FirstName      string
	LastName       string
	EmployeeCode   string
	RoleID         string
	LevelID        string
	OrganisationID string
	AnnualCTC      string
	MonthlyCTC     string
	ContactNumber  string
	Email          string
	DateOfJoining  string
	Status         string

	createdAt time.Time
}

func EmployeeDraftFrom(emp core.Employee) EmployeeDraft {
	d := EmployeeDraft{
		ID:             emp.ID,
		FirstName:      emp.FirstName,
		LastName:       emp.LastName,
		EmployeeCode:   emp.EmployeeCode,
		RoleID:         emp.RoleID,
		LevelID:        emp.LevelID,
		OrganisationID: emp.OrganisationID,
		AnnualCTC:      strconv.FormatFloat(emp.AnnualCTC, 'f', -1, 64),
		ContactNumber:  emp.ContactNumber,
		Email:          emp.Email,
		Status:         string(emp.Status),
		createdAt:      emp.CreatedAt,
	}
	if emp.DateOfJoining != nil {
		d.DateOfJoining = emp.DateOfJoining.Format(dateLayout)
	}
	deriveMonthlyCTC(&d)
	return d
}

// Employee converts a validated draft back into the wire record.
func (d EmployeeDraft) Employee() (core.Employee, error) {
	annual, err := strconv.ParseFloat(strings.TrimSpace(d.AnnualCTC), 64)
	if err != nil {
		return core.Employee{}, fmt.Errorf("annual ctc: %w", err)
	}
	emp := core.Employee{
		ID:             d.ID,
		FirstName:      strings.TrimSpace(d.FirstName),
		LastName:       strings.TrimSpace(d.LastName),
		EmployeeCode:   strings.TrimSpace(d.EmployeeCode),
		RoleID:         d.RoleID,
		LevelID:        d.LevelID,
		OrganisationID: d.OrganisationID,
		AnnualCTC:      annual,
		MonthlyCTC:     core.MonthlyCTCFloat(annual),
		ContactNumber:  d.ContactNumber,
		Email:          strings.TrimSpace(d.Email),
		Status:         core.EmployeeStatus(d.Status),
		CreatedAt:      d.createdAt,
	}
	if s := strings.TrimSpace(d.DateOfJoining); s != "" {
		doj, err := time.Parse(dateLayout, s)
		if err != nil {
			return core.Employee{}, fmt.Errorf("date of joining: %w", err)
		}
		emp.DateOfJoining = &doj
	}
	return emp, nil
}

func deriveMonthlyCTC(d *EmployeeDraft) {
	annual, err := decimal.NewFromString(strings.TrimSpace(d.AnnualCTC))
	if err != nil {
		d.MonthlyCTC = ""
		return
	}
	d.MonthlyCTC = core.MonthlyCTC(annual).StringFixed(2)
}

func EmployeeSchema() Schema[EmployeeDraft] {
	return Schema[EmployeeDraft]{
		Defaults: func() EmployeeDraft {
			return EmployeeDraft{Status: string(core.EmployeeStatusActive), AnnualCTC: "0", MonthlyCTC: "0.00"}
		},
		Derive: deriveMonthlyCTC,
		Fields: []Field[EmployeeDraft]{
			{
				Name:    "firstName",
				Get:     func(d *EmployeeDraft) string { return d.FirstName },
				Set:     func(d *EmployeeDraft, v string) { d.FirstName = v },
				Rules:   "required",
				Message: "First name is required",
			},
			{
				Name: "lastName",
				Get:  func(d *EmployeeDraft) string { return d.LastName },
				Set:  func(d *EmployeeDraft, v string) { d.LastName = v },
			},
			{
				Name: "employeeCode",
				Get:  func(d *EmployeeDraft) string { return d.EmployeeCode },
				Set:  func(d *EmployeeDraft, v string) { d.EmployeeCode = v },
			},
			{
				Name: "roleId",
				Get:  func(d *EmployeeDraft) string { return d.RoleID },
				Set:  func(d *EmployeeDraft, v string) { d.RoleID = v },
			},
			{
				Name: "levelId",
				Get:  func(d *EmployeeDraft) string { return d.LevelID },
				Set:  func(d *EmployeeDraft, v string) { d.LevelID = v },
			},
			{
				Name: "organisationId",
				Get:  func(d *EmployeeDraft) string { return d.OrganisationID },
				Set:  func(d *EmployeeDraft, v string) { d.OrganisationID = v },
			},
			{
				Name:    "annualCtc",
				Get:     func(d *EmployeeDraft) string { return d.AnnualCTC },
				Set:     func(d *EmployeeDraft, v string) { d.AnnualCTC = strings.TrimSpace(v) },
				Rules:   "required,nonnegative",
				Message: "Annual CTC must be a non-negative number",
			},
			{
				Name:     "monthlyCtc",
				Get:      func(d *EmployeeDraft) string { return d.MonthlyCTC },
				Set:      func(d *EmployeeDraft, v string) { d.MonthlyCTC = v },
				ReadOnly: true,
			},
			{
				Name:      "contactNumber",
				Get:       func(d *EmployeeDraft) string { return d.ContactNumber },
				Set:       func(d *EmployeeDraft, v string) { d.ContactNumber = v },
				Normalize: core.SanitizeContactNumber,
				Rules:     fmt.Sprintf("required,number,len=%d", core.ContactNumberLength),
				Message:   fmt.Sprintf("Contact number must be exactly %d digits", core.ContactNumberLength),
				Live:      true,
			},
			{
				Name:    "email",
				Get:     func(d *EmployeeDraft) string { return d.Email },
				Set:     func(d *EmployeeDraft, v string) { d.Email = v },
				Rules:   "required,emailshape",
				Message: "Enter a valid email address",
				Live:    true,
			},
			{
				Name:    "dateOfJoining",
				Get:     func(d *EmployeeDraft) string { return d.DateOfJoining },
				Set:     func(d *EmployeeDraft, v string) { d.DateOfJoining = strings.TrimSpace(v) },
				Rules:   "omitempty,datetime=" + dateLayout,
				Message: "Date must be YYYY-MM-DD",
			},
			{
				Name:    "status",
				Get:     func(d *EmployeeDraft) string { return d.Status },
				Set:     func(d *EmployeeDraft, v string) { d.Status = v },
				Rules:   "required,oneof=Active Inactive",
				Message: "Status must be Active or Inactive",
			},
		},
	}
}

func NewEmployeeForm() *Form[EmployeeDraft] {
	return New(EmployeeSchema())
}
