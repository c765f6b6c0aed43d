package core

import "context"

// Store is the persistence contract for the core HR collections. MongoStore
// is the production document store; SQLStore backs local development and tests.
type Store interface {
	Ping(ctx context.Context) error

	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	CreateEmployee(ctx context.Context, emp *Employee) error
	UpdateEmployee(ctx context.Context, emp *Employee) error
	DeleteEmployee(ctx context.Context, id string) error

	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, id string) (*Role, error)
	CreateRole(ctx context.Context, role *Role) error
	ListLevels(ctx context.Context) ([]Level, error)
	GetLevel(ctx context.Context, id string) (*Level, error)
	CreateLevel(ctx context.Context, level *Level) error
	ListOrganisations(ctx context.Context) ([]Organisation, error)
	GetOrganisation(ctx context.Context, id string) (*Organisation, error)
	CreateOrganisation(ctx context.Context, org *Organisation) error

	ListCurrencies(ctx context.Context) ([]Currency, error)
	CreateCurrency(ctx context.Context, cur *Currency) error
	ListClients(ctx context.Context) ([]Client, error)
	GetClient(ctx context.Context, id string) (*Client, error)
	CreateClient(ctx context.Context, client *Client) error

	GetAssignment(ctx context.Context, id string) (*ClientAssignment, error)
	ListAssignmentsByEmployee(ctx context.Context, employeeID string) ([]ClientAssignment, error)
	CreateAssignment(ctx context.Context, assignment *ClientAssignment) error
	UpdateAssignment(ctx context.Context, assignment *ClientAssignment) error

	ListPayments(ctx context.Context) ([]Payment, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
	CreatePayment(ctx context.Context, payment *Payment) error
	UpdatePayment(ctx context.Context, payment *Payment) error
}
