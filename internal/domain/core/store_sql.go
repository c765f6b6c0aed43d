package core

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Migrate() error {
	return s.db.AutoMigrate(
		&Employee{},
		&Role{},
		&Level{},
		&Organisation{},
		&Currency{},
		&Client{},
		&ClientAssignment{},
		&Payment{},
	)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLStore) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	var emp Employee
	if err := s.first(ctx, &emp, id); err != nil {
		return nil, err
	}
	return &emp, nil
}

func (s *SQLStore) ListEmployees(ctx context.Context) ([]Employee, error) {
	out := []Employee{}
	err := s.db.WithContext(ctx).Order("last_name, first_name").Find(&out).Error
	return out, err
}

func (s *SQLStore) CreateEmployee(ctx context.Context, emp *Employee) error {
	return s.create(ctx, emp)
}

func (s *SQLStore) UpdateEmployee(ctx context.Context, emp *Employee) error {
	return s.update(ctx, &Employee{}, emp.ID, emp)
}

func (s *SQLStore) DeleteEmployee(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Delete(&Employee{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ListRoles(ctx context.Context) ([]Role, error) {
	out := []Role{}
	err := s.db.WithContext(ctx).Order("role_name").Find(&out).Error
	return out, err
}

func (s *SQLStore) GetRole(ctx context.Context, id string) (*Role, error) {
	var role Role
	if err := s.first(ctx, &role, id); err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *SQLStore) CreateRole(ctx context.Context, role *Role) error {
	return s.create(ctx, role)
}

func (s *SQLStore) ListLevels(ctx context.Context) ([]Level, error) {
	out := []Level{}
	err := s.db.WithContext(ctx).Order("level_name").Find(&out).Error
	return out, err
}

func (s *SQLStore) GetLevel(ctx context.Context, id string) (*Level, error) {
	var level Level
	if err := s.first(ctx, &level, id); err != nil {
		return nil, err
	}
	return &level, nil
}

func (s *SQLStore) CreateLevel(ctx context.Context, level *Level) error {
	return s.create(ctx, level)
}

func (s *SQLStore) ListOrganisations(ctx context.Context) ([]Organisation, error) {
	out := []Organisation{}
	err := s.db.WithContext(ctx).Order("name").Find(&out).Error
	return out, err
}

func (s *SQLStore) GetOrganisation(ctx context.Context, id string) (*Organisation, error) {
	var org Organisation
	if err := s.first(ctx, &org, id); err != nil {
		return nil, err
	}
	return &org, nil
}

func (s *SQLStore) CreateOrganisation(ctx context.Context, org *Organisation) error {
	return s.create(ctx, org)
}

func (s *SQLStore) ListCurrencies(ctx context.Context) ([]Currency, error) {
	out := []Currency{}
	err := s.db.WithContext(ctx).Order("code").Find(&out).Error
	return out, err
}

func (s *SQLStore) CreateCurrency(ctx context.Context, cur *Currency) error {
	return s.create(ctx, cur)
}

func (s *SQLStore) ListClients(ctx context.Context) ([]Client, error) {
	clients := []Client{}
	if err := s.db.WithContext(ctx).Order("name").Find(&clients).Error; err != nil {
		return nil, err
	}
	currencies, err := s.currenciesByID(ctx, clientCurrencyIDs(clients))
	if err != nil {
		return nil, err
	}
	for i := range clients {
		attachCurrency(&clients[i], currencies)
	}
	return clients, nil
}

func (s *SQLStore) GetClient(ctx context.Context, id string) (*Client, error) {
	var client Client
	if err := s.first(ctx, &client, id); err != nil {
		return nil, err
	}
	currencies, err := s.currenciesByID(ctx, []string{client.CurrencyID})
	if err != nil {
		return nil, err
	}
	attachCurrency(&client, currencies)
	return &client, nil
}

func (s *SQLStore) CreateClient(ctx context.Context, client *Client) error {
	return s.create(ctx, client)
}

func (s *SQLStore) GetAssignment(ctx context.Context, id string) (*ClientAssignment, error) {
	var assignment ClientAssignment
	if err := s.first(ctx, &assignment, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *SQLStore) ListAssignmentsByEmployee(ctx context.Context, employeeID string) ([]ClientAssignment, error) {
	assignments := []ClientAssignment{}
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("start_date").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return assignments, nil
	}

	clients := []Client{}
	if err := s.db.WithContext(ctx).Where("id IN ?", assignmentClientIDs(assignments)).Find(&clients).Error; err != nil {
		return nil, err
	}
	currencies, err := s.currenciesByID(ctx, clientCurrencyIDs(clients))
	if err != nil {
		return nil, err
	}
	attachClients(assignments, clients, currencies)
	return assignments, nil
}

func (s *SQLStore) CreateAssignment(ctx context.Context, assignment *ClientAssignment) error {
	return s.create(ctx, assignment)
}

func (s *SQLStore) UpdateAssignment(ctx context.Context, assignment *ClientAssignment) error {
	return s.update(ctx, &ClientAssignment{}, assignment.ID, assignment)
}

func (s *SQLStore) ListPayments(ctx context.Context) ([]Payment, error) {
	out := []Payment{}
	err := s.db.WithContext(ctx).Order("received_date DESC").Find(&out).Error
	return out, err
}

func (s *SQLStore) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var payment Payment
	if err := s.first(ctx, &payment, id); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *SQLStore) CreatePayment(ctx context.Context, payment *Payment) error {
	return s.create(ctx, payment)
}

func (s *SQLStore) UpdatePayment(ctx context.Context, payment *Payment) error {
	return s.update(ctx, &Payment{}, payment.ID, payment)
}

func (s *SQLStore) currenciesByID(ctx context.Context, ids []string) ([]Currency, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := []Currency{}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (s *SQLStore) first(ctx context.Context, dest any, id string) error {
	err := s.db.WithContext(ctx).First(dest, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *SQLStore) create(ctx context.Context, value any) error {
	err := s.db.WithContext(ctx).Create(value).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

// update overwrites every column except created_at.
func (s *SQLStore) update(ctx context.Context, model any, id string, value any) error {
	result := s.db.WithContext(ctx).Model(model).
		Where("id = ?", id).
		Select("*").
		Omit("id", "created_at").
		Updates(value)
	if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
