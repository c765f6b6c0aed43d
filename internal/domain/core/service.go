package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	EventEmployeeCreated = "employee.created"
	EventEmployeeUpdated = "employee.updated"
	EventEmployeeDeleted = "employee.deleted"
	EventPaymentCreated  = "payment.created"
	EventPaymentUpdated  = "payment.updated"
)

// Auditor records who changed what. Implemented by audit.Service.
type Auditor interface {
	Record(ctx context.Context, action, entityType, entityID string, before, after any) error
}

// Publisher fans out change events. Implemented by events.Producer.
type Publisher interface {
	Publish(ctx context.Context, eventType, entityID string, payload any)
}

type Service struct {
	store     Store
	auditor   Auditor
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(store Store, auditor Auditor, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		auditor:   auditor,
		publisher: publisher,
		logger:    logger.Named("core_service"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context) ([]Employee, error) {
	return s.store.ListEmployees(ctx)
}

// CreateEmployee assigns an id, derives MonthlyCTC and persists emp.
func (s *Service) CreateEmployee(ctx context.Context, emp Employee) (*Employee, error) {
	if emp.Status == "" {
		emp.Status = EmployeeStatusActive
	}
	if !ValidEmployeeStatus(emp.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, emp.Status)
	}
	now := s.now()
	emp.ID = uuid.NewString()
	emp.MonthlyCTC = MonthlyCTCFloat(emp.AnnualCTC)
	emp.CreatedAt = now
	emp.UpdatedAt = now
	if err := s.store.CreateEmployee(ctx, &emp); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}
	s.record(ctx, "core.employee.create", "employee", emp.ID, nil, emp)
	s.publish(ctx, EventEmployeeCreated, emp.ID, emp)
	return &emp, nil
}

// UpdateEmployee replaces the stored record with emp and returns the stored
// result. MonthlyCTC is always recomputed from AnnualCTC.
func (s *Service) UpdateEmployee(ctx context.Context, id string, emp Employee) (*Employee, error) {
	if !ValidEmployeeStatus(emp.Status) {
		return nil, fmt.Errorf("%w: invalid status %q", ErrInvalidInput, emp.Status)
	}
	existing, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}

	emp.ID = id
	emp.MonthlyCTC = MonthlyCTCFloat(emp.AnnualCTC)
	emp.CreatedAt = existing.CreatedAt
	emp.UpdatedAt = s.now()
	if err := s.store.UpdateEmployee(ctx, &emp); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}

	updated, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		s.logger.Error("failed to reload employee after update",
			zap.Error(err),
			zap.String("employee_id", id),
		)
		return nil, err
	}
	s.record(ctx, "core.employee.update", "employee", id, existing, updated)
	s.publish(ctx, EventEmployeeUpdated, id, updated)
	return updated, nil
}

// DeleteEmployee refuses Active employees and employees with an Active client
// assignment, mirroring the console-side checks.
func (s *Service) DeleteEmployee(ctx context.Context, id string) error {
	emp, err := s.store.GetEmployee(ctx, id)
	if err != nil {
		return err
	}
	assignments, err := s.store.ListAssignmentsByEmployee(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load client assignments: %w", err)
	}
	if err := CheckDeletable(*emp, assignments); err != nil {
		return err
	}
	if err := s.store.DeleteEmployee(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	s.record(ctx, "core.employee.delete", "employee", id, emp, nil)
	s.publish(ctx, EventEmployeeDeleted, id, emp)
	return nil
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.store.ListRoles(ctx)
}

func (s *Service) GetRole(ctx context.Context, id string) (*Role, error) {
	return s.store.GetRole(ctx, id)
}

func (s *Service) CreateRole(ctx context.Context, role Role) (*Role, error) {
	role.ID = uuid.NewString()
	if err := s.store.CreateRole(ctx, &role); err != nil {
		return nil, err
	}
	s.record(ctx, "core.role.create", "role", role.ID, nil, role)
	return &role, nil
}

func (s *Service) ListLevels(ctx context.Context) ([]Level, error) {
	return s.store.ListLevels(ctx)
}

func (s *Service) GetLevel(ctx context.Context, id string) (*Level, error) {
	return s.store.GetLevel(ctx, id)
}

func (s *Service) CreateLevel(ctx context.Context, level Level) (*Level, error) {
	level.ID = uuid.NewString()
	if err := s.store.CreateLevel(ctx, &level); err != nil {
		return nil, err
	}
	s.record(ctx, "core.level.create", "level", level.ID, nil, level)
	return &level, nil
}

func (s *Service) ListOrganisations(ctx context.Context) ([]Organisation, error) {
	return s.store.ListOrganisations(ctx)
}

func (s *Service) GetOrganisation(ctx context.Context, id string) (*Organisation, error) {
	return s.store.GetOrganisation(ctx, id)
}

func (s *Service) CreateOrganisation(ctx context.Context, org Organisation) (*Organisation, error) {
	org.ID = uuid.NewString()
	if err := s.store.CreateOrganisation(ctx, &org); err != nil {
		return nil, err
	}
	s.record(ctx, "core.organisation.create", "organisation", org.ID, nil, org)
	return &org, nil
}

func (s *Service) ListCurrencies(ctx context.Context) ([]Currency, error) {
	return s.store.ListCurrencies(ctx)
}

func (s *Service) CreateCurrency(ctx context.Context, cur Currency) (*Currency, error) {
	cur.ID = uuid.NewString()
	if err := s.store.CreateCurrency(ctx, &cur); err != nil {
		return nil, err
	}
	return &cur, nil
}

func (s *Service) ListClients(ctx context.Context) ([]Client, error) {
	return s.store.ListClients(ctx)
}

func (s *Service) CreateClient(ctx context.Context, client Client) (*Client, error) {
	client.ID = uuid.NewString()
	client.Currency = nil
	if err := s.store.CreateClient(ctx, &client); err != nil {
		return nil, err
	}
	s.record(ctx, "core.client.create", "client", client.ID, nil, client)
	return s.store.GetClient(ctx, client.ID)
}

func (s *Service) ListAssignmentsByEmployee(ctx context.Context, employeeID string) ([]ClientAssignment, error) {
	return s.store.ListAssignmentsByEmployee(ctx, employeeID)
}

func (s *Service) CreateAssignment(ctx context.Context, assignment ClientAssignment) (*ClientAssignment, error) {
	if err := s.checkAssignment(ctx, &assignment); err != nil {
		return nil, err
	}
	assignment.ID = uuid.NewString()
	assignment.Client = nil
	if err := s.store.CreateAssignment(ctx, &assignment); err != nil {
		return nil, fmt.Errorf("failed to create client assignment: %w", err)
	}
	s.record(ctx, "core.assignment.create", "client_assignment", assignment.ID, nil, assignment)
	return &assignment, nil
}

func (s *Service) UpdateAssignment(ctx context.Context, id string, assignment ClientAssignment) (*ClientAssignment, error) {
	existing, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkAssignment(ctx, &assignment); err != nil {
		return nil, err
	}
	assignment.ID = id
	assignment.Client = nil
	if err := s.store.UpdateAssignment(ctx, &assignment); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update client assignment: %w", err)
	}
	s.record(ctx, "core.assignment.update", "client_assignment", id, existing, assignment)
	return &assignment, nil
}

func (s *Service) checkAssignment(ctx context.Context, assignment *ClientAssignment) error {
	if !ValidAssignmentStatus(assignment.Status) {
		return fmt.Errorf("%w: invalid status %q", ErrInvalidInput, assignment.Status)
	}
	if _, err := s.store.GetEmployee(ctx, assignment.EmployeeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown employee", ErrInvalidInput)
		}
		return err
	}
	if _, err := s.store.GetClient(ctx, assignment.ClientID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%w: unknown client", ErrInvalidInput)
		}
		return err
	}
	return nil
}

func (s *Service) ListPayments(ctx context.Context) ([]Payment, error) {
	return s.store.ListPayments(ctx)
}

func (s *Service) GetPayment(ctx context.Context, id string) (*Payment, error) {
	return s.store.GetPayment(ctx, id)
}

func (s *Service) CreatePayment(ctx context.Context, payment Payment) (*Payment, error) {
	if payment.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	payment.ID = uuid.NewString()
	payment.CreatedAt = s.now()
	if err := s.store.CreatePayment(ctx, &payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	s.record(ctx, "core.payment.create", "payment", payment.ID, nil, payment)
	s.publish(ctx, EventPaymentCreated, payment.ID, payment)
	return &payment, nil
}

func (s *Service) UpdatePayment(ctx context.Context, id string, payment Payment) (*Payment, error) {
	if payment.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	existing, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	payment.ID = id
	payment.CreatedAt = existing.CreatedAt
	if err := s.store.UpdatePayment(ctx, &payment); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}
	s.record(ctx, "core.payment.update", "payment", id, existing, payment)
	s.publish(ctx, EventPaymentUpdated, id, payment)
	return &payment, nil
}

func (s *Service) record(ctx context.Context, action, entityType, entityID string, before, after any) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, action, entityType, entityID, before, after); err != nil {
		s.logger.Warn("audit record failed",
			zap.Error(err),
			zap.String("action", action),
			zap.String("entity_id", entityID),
		)
	}
}

func (s *Service) publish(ctx context.Context, eventType, entityID string, payload any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ctx, eventType, entityID, payload)
}
