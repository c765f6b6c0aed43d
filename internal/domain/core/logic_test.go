package core

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMonthlyCTC(t *testing.T) {
	cases := map[string]string{
		"120000":  "10000.00",
		"100000":  "8333.33",
		"1000":    "83.33",
		"0":       "0.00",
		"12.5":    "1.04",
		"9999999": "833333.25",
	}
	for annual, want := range cases {
		got := MonthlyCTC(decimal.RequireFromString(annual)).StringFixed(2)
		assert.Equal(t, want, got, "annual %s", annual)
	}
	assert.Equal(t, 10000.0, MonthlyCTCFloat(120000))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("jane@example.com"))
	assert.True(t, ValidEmail("a.b@c.d"))
	assert.False(t, ValidEmail("jane@example"))
	assert.False(t, ValidEmail("jane example@x.com"))
	assert.False(t, ValidEmail("@example.com"))
	assert.False(t, ValidEmail("jane@@example.com"))
	assert.False(t, ValidEmail(""))

	for _, space := range []string{"\v", "\u00a0", "\u2028", "\u2029", "\u3000", "\ufeff"} {
		assert.False(t, ValidEmail("a"+space+"b@c.d"), "local part with %q", space)
		assert.False(t, ValidEmail("a@c"+space+"x.d"), "domain with %q", space)
		assert.False(t, ValidEmail("a@c.d"+space), "tld with %q", space)
	}
}

func TestContactNumber(t *testing.T) {
	assert.True(t, ValidContactNumber("9876543210"))
	assert.False(t, ValidContactNumber("987654321"))
	assert.False(t, ValidContactNumber("98765432101"))
	assert.False(t, ValidContactNumber("98765x3210"))

	assert.Equal(t, "9876543210", SanitizeContactNumber("(987) 654-3210"))
	assert.Equal(t, "1234567890", SanitizeContactNumber("123456789012345"))
	assert.Equal(t, "", SanitizeContactNumber("abc"))
	assert.Equal(t, "23", SanitizeContactNumber("１2x3"))
}

func TestCheckDeletable(t *testing.T) {
	inactive := Employee{ID: "e1", Status: EmployeeStatusInactive}
	active := Employee{ID: "e2", Status: EmployeeStatusActive}

	assert.ErrorIs(t, CheckDeletable(active, nil), ErrEmployeeActive)
	assert.NoError(t, CheckDeletable(inactive, nil))
	assert.NoError(t, CheckDeletable(inactive, []ClientAssignment{{Status: AssignmentStatusInactive}}))
	assert.ErrorIs(t, CheckDeletable(inactive, []ClientAssignment{
		{Status: AssignmentStatusInactive},
		{Status: AssignmentStatusActive},
	}), ErrActiveAssignments)
}

func TestEmployeeForeignKey(t *testing.T) {
	emp := Employee{RoleID: "r", LevelID: "l", OrganisationID: "o"}
	assert.Equal(t, "r", emp.ForeignKey(ReferenceRole))
	assert.Equal(t, "l", emp.ForeignKey(ReferenceLevel))
	assert.Equal(t, "o", emp.ForeignKey(ReferenceOrganisation))
	assert.Equal(t, "", emp.ForeignKey(ReferenceKind("clients")))
}
