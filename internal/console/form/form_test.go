package form

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hradmin/internal/domain/core"
)

func openEmployee(t *testing.T) *Form[EmployeeDraft] {
	t.Helper()
	doj := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	emp := core.Employee{
		ID:            "e1",
		FirstName:     "Asha",
		LastName:      "Rao",
		AnnualCTC:     60000,
		ContactNumber: "9876543210",
		Email:         "asha@example.com",
		DateOfJoining: &doj,
		Status:        core.EmployeeStatusActive,
	}
	f := NewEmployeeForm()
	draft := EmployeeDraftFrom(emp)
	f.Open(&draft)
	return f
}

func TestAnnualCTCDerivesMonthly(t *testing.T) {
	f := openEmployee(t)
	assert.Equal(t, "5000.00", f.Value("monthlyCtc"))

	require.NoError(t, f.OnFieldChange("annualCtc", "120000"))
	assert.Equal(t, "10000.00", f.Value("monthlyCtc"))

	require.NoError(t, f.OnFieldChange("annualCtc", "100000"))
	assert.Equal(t, "8333.33", f.Value("monthlyCtc"))
}

func TestMonthlyCTCIsReadOnly(t *testing.T) {
	f := openEmployee(t)
	err := f.OnFieldChange("monthlyCtc", "1")
	assert.ErrorIs(t, err, ErrReadOnly)
	assert.Equal(t, "5000.00", f.Value("monthlyCtc"))
}

func TestContactNumberIsSanitised(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "digits only", input: "9876543210", want: "9876543210"},
		{name: "strips separators", input: "98765-43210", want: "9876543210"},
		{name: "truncates", input: "987654321099", want: "9876543210"},
		{name: "short stays invalid", input: "12ab34", want: "1234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := openEmployee(t)
			require.NoError(t, f.OnFieldChange("contactNumber", tt.input))
			assert.Equal(t, tt.want, f.Value("contactNumber"))
			_, hasErr := f.Errors()["contactNumber"]
			assert.Equal(t, tt.wantErr, hasErr)
		})
	}
}

func TestEmailValidatedLive(t *testing.T) {
	f := openEmployee(t)

	require.NoError(t, f.OnFieldChange("email", "not-an-email"))
	assert.Equal(t, "not-an-email", f.Value("email"))
	assert.Equal(t, "Enter a valid email address", f.Errors()["email"])

	require.NoError(t, f.OnFieldChange("email", "a b@c.d"))
	assert.Contains(t, f.Errors(), "email")

	for _, email := range []string{"a\vb@c.d", "a\u00a0b@c.d", "a\u2028b@c.d", "a\ufeffb@c.d"} {
		require.NoError(t, f.OnFieldChange("email", email))
		assert.Contains(t, f.Errors(), "email", "accepted %q", email)
	}

	require.NoError(t, f.OnFieldChange("email", "x@y.io"))
	assert.NotContains(t, f.Errors(), "email")
}

func TestSubmitRejectsInvalidDraft(t *testing.T) {
	f := openEmployee(t)
	require.NoError(t, f.OnFieldChange("firstName", ""))
	require.NoError(t, f.OnFieldChange("email", "bad"))
	require.NoError(t, f.OnFieldChange("status", "Retired"))

	_, err := f.Submit()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Fields, "firstName")
	assert.Contains(t, verr.Fields, "status")
	assert.True(t, f.IsOpen())
	assert.Equal(t, "bad", f.Value("email"))
}

func TestSubmitReturnsDraftAndResets(t *testing.T) {
	f := openEmployee(t)
	require.NoError(t, f.OnFieldChange("annualCtc", "120000"))
	require.NoError(t, f.OnFieldChange("status", "Inactive"))

	out, err := f.Submit()
	require.NoError(t, err)
	assert.True(t, out.Submitted)
	assert.False(t, f.IsOpen())
	assert.Empty(t, f.Errors())

	emp, err := out.Draft.Employee()
	require.NoError(t, err)
	assert.Equal(t, "e1", emp.ID)
	assert.Equal(t, 120000.0, emp.AnnualCTC)
	assert.Equal(t, 10000.0, emp.MonthlyCTC)
	assert.Equal(t, core.EmployeeStatusInactive, emp.Status)
	require.NotNil(t, emp.DateOfJoining)
	assert.Equal(t, "2023-04-01", emp.DateOfJoining.Format("2006-01-02"))
}

func TestCloseDiscardsDraft(t *testing.T) {
	f := openEmployee(t)
	require.NoError(t, f.OnFieldChange("firstName", "Changed"))

	out := f.Close()
	assert.False(t, out.Submitted)
	assert.False(t, f.IsOpen())
	assert.Equal(t, "", f.Value("firstName"))
	assert.Equal(t, "Active", f.Value("status"))

	assert.ErrorIs(t, f.OnFieldChange("firstName", "x"), ErrClosed)
	_, err := f.Submit()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestUnknownField(t *testing.T) {
	f := openEmployee(t)
	assert.ErrorIs(t, f.OnFieldChange("salary", "1"), ErrUnknownField)
}

func TestPaymentForm(t *testing.T) {
	today := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	f := New(PaymentSchema(func() time.Time { return today }))
	f.Open(nil)
	assert.Equal(t, "2024-06-15", f.Value("receivedDate"))

	require.NoError(t, f.OnFieldChange("amount", "0"))
	assert.Equal(t, "Amount must be greater than zero", f.Errors()["amount"])
	require.NoError(t, f.OnFieldChange("amount", "-5"))
	assert.Contains(t, f.Errors(), "amount")
	require.NoError(t, f.OnFieldChange("amount", "abc"))
	assert.Contains(t, f.Errors(), "amount")

	require.NoError(t, f.OnFieldChange("receivedDate", "15/06/2024"))
	_, err := f.Submit()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "amount")
	assert.Contains(t, verr.Fields, "receivedDate")

	require.NoError(t, f.OnFieldChange("amount", "2500.50"))
	require.NoError(t, f.OnFieldChange("receivedDate", "2024-06-01"))
	require.NoError(t, f.OnFieldChange("notes", "June retainer"))
	out, err := f.Submit()
	require.NoError(t, err)

	p, err := out.Draft.Payment()
	require.NoError(t, err)
	assert.Equal(t, 2500.50, p.Amount)
	assert.Equal(t, "2024-06-01", p.ReceivedDate.Format("2006-01-02"))
	assert.Equal(t, "June retainer", p.Notes)
}

func TestPaymentDraftFromExisting(t *testing.T) {
	p := core.Payment{
		ID:           "p1",
		Amount:       1200,
		ReceivedDate: time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
	d := PaymentDraftFrom(p)
	assert.Equal(t, "1200", d.Amount)
	assert.Equal(t, "2024-01-31", d.ReceivedDate)
}
