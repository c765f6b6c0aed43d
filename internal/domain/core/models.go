package core

import "time"

type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "Active"
	EmployeeStatusInactive EmployeeStatus = "Inactive"
)

type AssignmentStatus string

const (
	AssignmentStatusActive   AssignmentStatus = "Active"
	AssignmentStatusInactive AssignmentStatus = "Inactive"
)

// NotApplicable is rendered wherever a value is absent or meaningless.
const NotApplicable = "N/A"

type Employee struct {
	ID             string         `json:"id" bson:"_id" gorm:"primaryKey" validate:"required"`
	FirstName      string         `json:"firstName" bson:"firstName" validate:"required"`
	LastName       string         `json:"lastName" bson:"lastName"`
	EmployeeCode   string         `json:"employeeCode" bson:"employeeCode" gorm:"index"`
	RoleID         string         `json:"roleId,omitempty" bson:"roleId,omitempty"`
	LevelID        string         `json:"levelId,omitempty" bson:"levelId,omitempty"`
	OrganisationID string         `json:"organisationId,omitempty" bson:"organisationId,omitempty"`
	AnnualCTC      float64        `json:"annualCtc" bson:"annualCtc"`
	MonthlyCTC     float64        `json:"monthlyCtc" bson:"monthlyCtc"`
	ContactNumber  string         `json:"contactNumber" bson:"contactNumber"`
	Email          string         `json:"email" bson:"email" gorm:"index"`
	DateOfJoining  *time.Time     `json:"dateOfJoining,omitempty" bson:"dateOfJoining,omitempty"`
	Status         EmployeeStatus `json:"status" bson:"status" validate:"required,oneof=Active Inactive"`
	CreatedAt      time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt" bson:"updatedAt"`
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type Role struct {
	ID       string `json:"id" bson:"_id" gorm:"primaryKey" validate:"required"`
	RoleName string `json:"roleName" bson:"roleName" validate:"required"`
}

type Level struct {
	ID        string `json:"id" bson:"_id" gorm:"primaryKey" validate:"required"`
	LevelName string `json:"levelName" bson:"levelName" validate:"required"`
}

type Organisation struct {
	ID           string `json:"id" bson:"_id" gorm:"primaryKey" validate:"required"`
	Name         string `json:"name" bson:"name"`
	Abbreviation string `json:"abbreviation" bson:"abbreviation" validate:"required"`
}

type Currency struct {
	ID     string `json:"id" bson:"_id" gorm:"primaryKey"`
	Code   string `json:"code" bson:"code" validate:"required,len=3"`
	Name   string `json:"name" bson:"name"`
	Symbol string `json:"symbol" bson:"symbol"`
}

type Client struct {
	ID         string    `json:"id" bson:"_id" gorm:"primaryKey" validate:"required"`
	Name       string    `json:"name" bson:"name" validate:"required"`
	CurrencyID string    `json:"currencyId" bson:"currencyId"`
	Currency   *Currency `json:"currency,omitempty" bson:"-" gorm:"-" validate:"required"`
}

type ClientAssignment struct {
	ID             string           `json:"id" bson:"_id" gorm:"primaryKey" validate:"required"`
	EmployeeID     string           `json:"employeeId" bson:"employeeId" gorm:"index"`
	ClientID       string           `json:"clientId" bson:"clientId"`
	Client         *Client          `json:"client,omitempty" bson:"-" gorm:"-" validate:"required"`
	StartDate      *time.Time       `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate        *time.Time       `json:"endDate,omitempty" bson:"endDate,omitempty"`
	MonthlyBilling float64          `json:"monthlyBilling" bson:"monthlyBilling"`
	Status         AssignmentStatus `json:"status" bson:"status" validate:"required,oneof=Active Inactive"`
}

type Payment struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey" validate:"required"`
	EmployeeID   string    `json:"employeeId,omitempty" bson:"employeeId,omitempty"`
	Amount       float64   `json:"amount" bson:"amount" validate:"gt=0"`
	ReceivedDate time.Time `json:"receivedDate" bson:"receivedDate"`
	Notes        string    `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// ReferenceKind names a lookup collection and doubles as its URL segment.
type ReferenceKind string

const (
	ReferenceRole         ReferenceKind = "roles"
	ReferenceLevel        ReferenceKind = "levels"
	ReferenceOrganisation ReferenceKind = "organisations"
)

var ReferenceKinds = []ReferenceKind{ReferenceRole, ReferenceLevel, ReferenceOrganisation}

func (k ReferenceKind) Valid() bool {
	switch k {
	case ReferenceRole, ReferenceLevel, ReferenceOrganisation:
		return true
	}
	return false
}

// Reference is the display projection of a role, level or organisation.
type Reference struct {
	Kind  ReferenceKind
	ID    string
	Label string
}

func (r Role) Reference() Reference {
	return Reference{Kind: ReferenceRole, ID: r.ID, Label: r.RoleName}
}

func (l Level) Reference() Reference {
	return Reference{Kind: ReferenceLevel, ID: l.ID, Label: l.LevelName}
}

func (o Organisation) Reference() Reference {
	return Reference{Kind: ReferenceOrganisation, ID: o.ID, Label: o.Abbreviation}
}

// ForeignKey returns the employee's reference id for kind, or "" when unset.
func (e Employee) ForeignKey(kind ReferenceKind) string {
	switch kind {
	case ReferenceRole:
		return e.RoleID
	case ReferenceLevel:
		return e.LevelID
	case ReferenceOrganisation:
		return e.OrganisationID
	}
	return ""
}
