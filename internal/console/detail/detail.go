// Package detail drives the employee detail screen: it loads the employee,
// its reference labels and client assignments in parallel, and runs the
// edit and delete flows against the API.
package detail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"hradmin/internal/client"
	"hradmin/internal/console/form"
	"hradmin/internal/console/refcache"
	"hradmin/internal/console/resolver"
	"hradmin/internal/domain/core"
	"hradmin/internal/platform/money"
)

const (
	MsgLoadEmployeeFailed   = "Failed to load employee"
	MsgClientsNotFound      = "Client assignments endpoint not found"
	MsgClientsFailed        = "Failed to load client assignments"
	MsgClientsUnverified    = "Client assignments could not be verified, try again later"
	MsgDeleteActive         = "Active employees cannot be deleted. Set the status to Inactive first."
	MsgDeleteHasAssignments = "Employees with active client assignments cannot be deleted."
	MsgDeleteSucceeded      = "Employee deleted successfully"
	MsgDeleteFailed         = "Failed to delete employee"
	MsgUpdateSucceeded      = "Employee updated successfully"
	MsgUpdateFailed         = "Failed to update employee"
	MsgUpdateInvalidDraft   = "Employee details are invalid"
)

var (
	// ErrPrecondition is returned by Delete when the employee may not be
	// removed. No request is sent in that case.
	ErrPrecondition = errors.New("delete precondition failed")
	ErrNotReady     = errors.New("employee is not loaded")
)

// API is the subset of the REST client the controller needs.
type API interface {
	resolver.Fetcher
	GetEmployee(ctx context.Context, id string) (*core.Employee, error)
	ListReferences(ctx context.Context, kind core.ReferenceKind) ([]core.Reference, error)
	ListClientAssignments(ctx context.Context, employeeID string) ([]core.ClientAssignment, error)
	UpdateEmployee(ctx context.Context, emp core.Employee) (*core.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// Notifier shows transient messages to the user.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

type Navigator interface {
	ToEmployeeList()
}

// State is the lifecycle of the employee panel.
type State int

const (
	StateLoading State = iota
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Options struct {
	API       API
	Notifier  Notifier
	Navigator Navigator
	// Cache defaults to a fresh cache owned by this controller.
	Cache     *refcache.Cache
	Formatter *money.Formatter
	Logger    *zap.Logger
}

// Controller owns one employee detail session: its reference cache, its
// snapshot and the edit form.
type Controller struct {
	api       API
	cache     *refcache.Cache
	resolver  *resolver.Resolver
	notifier  Notifier
	navigator Navigator
	formatter *money.Formatter
	logger    *zap.Logger
	form      *form.Form[form.EmployeeDraft]

	mu          sync.Mutex
	generation  uint64
	employeeID  string
	state       State
	err         string
	employee    *core.Employee
	labels      labels
	assignments []core.ClientAssignment
	clientsErr  string
}

type labels struct {
	role         string
	level        string
	organisation string
}

// New builds a controller. Nil Cache, Formatter or Logger get defaults.
func New(opts Options) *Controller {
	cache := opts.Cache
	if cache == nil {
		cache = refcache.New()
	}
	formatter := opts.Formatter
	if formatter == nil {
		formatter = money.NewFormatter("en")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("detail")
	return &Controller{
		api:       opts.API,
		cache:     cache,
		resolver:  resolver.New(cache, opts.API, logger),
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		formatter: formatter,
		logger:    logger,
		form:      form.NewEmployeeForm(),
	}
}

// Mount loads employeeID and blocks until all three fetches have settled.
// A later Mount supersedes any earlier one still in flight.
func (c *Controller) Mount(ctx context.Context, employeeID string) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.employeeID = employeeID
	c.state = StateLoading
	c.err = ""
	c.employee = nil
	c.labels = labels{}
	c.assignments = nil
	c.clientsErr = ""
	c.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		c.loadEmployee(ctx, gen, employeeID)
	}()
	go func() {
		defer wg.Done()
		c.loadReferences(ctx, gen)
	}()
	go func() {
		defer wg.Done()
		c.loadAssignments(ctx, gen, employeeID)
	}()
	wg.Wait()
}

// refetch reloads the employee and its assignments after a mutation. The
// current snapshot stays visible until the new one lands.
func (c *Controller) refetch(ctx context.Context) {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	id := c.employeeID
	c.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.loadEmployee(ctx, gen, id)
	}()
	go func() {
		defer wg.Done()
		c.loadAssignments(ctx, gen, id)
	}()
	wg.Wait()
}

func (c *Controller) loadEmployee(ctx context.Context, gen uint64, id string) {
	emp, err := c.api.GetEmployee(ctx, id)
	if err != nil {
		c.logger.Error("failed to load employee", zap.Error(err), zap.String("employee_id", id))
		c.apply(gen, func() {
			c.state = StateError
			c.err = MsgLoadEmployeeFailed
			c.employee = nil
			c.labels = labels{}
		})
		return
	}

	resolved := labels{
		role:         c.resolver.RoleName(ctx, *emp),
		level:        c.resolver.LevelName(ctx, *emp),
		organisation: c.resolver.OrganisationAbbreviation(ctx, *emp),
	}
	c.apply(gen, func() {
		c.employee = emp
		c.labels = resolved
		c.state = StateReady
		c.err = ""
	})
}

func (c *Controller) loadReferences(ctx context.Context, gen uint64) {
	for _, kind := range core.ReferenceKinds {
		refs, err := c.api.ListReferences(ctx, kind)
		if err != nil {
			// Lazy lookups in the resolver cover whatever this misses.
			c.logger.Warn("bulk reference load failed", zap.Error(err), zap.String("kind", string(kind)))
			continue
		}
		if !c.current(gen) {
			return
		}
		c.cache.BulkPut(kind, refs)
	}
}

func (c *Controller) loadAssignments(ctx context.Context, gen uint64, id string) {
	assignments, err := c.api.ListClientAssignments(ctx, id)
	if err != nil {
		msg := MsgClientsFailed
		if client.IsNotFound(err) {
			msg = MsgClientsNotFound
		}
		c.logger.Warn("failed to load client assignments", zap.Error(err), zap.String("employee_id", id))
		c.apply(gen, func() {
			c.assignments = nil
			c.clientsErr = msg
		})
		return
	}
	c.apply(gen, func() {
		c.assignments = assignments
		c.clientsErr = ""
	})
}

// apply runs fn under the lock unless gen has been superseded.
func (c *Controller) apply(gen uint64, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		c.logger.Debug("discarding stale result", zap.Uint64("generation", gen))
		return
	}
	fn()
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.generation
}

// Delete removes the loaded employee. Active employees, employees with an
// Active assignment, and employees whose assignments failed to load are
// rejected locally with ErrPrecondition.
func (c *Controller) Delete(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateReady || c.employee == nil {
		c.mu.Unlock()
		return ErrNotReady
	}
	emp := *c.employee
	assignments := append([]core.ClientAssignment(nil), c.assignments...)
	clientsErr := c.clientsErr
	c.mu.Unlock()

	if clientsErr != "" {
		c.notifier.Error(MsgClientsUnverified)
		return fmt.Errorf("%w: client assignments unavailable", ErrPrecondition)
	}
	if err := core.CheckDeletable(emp, assignments); err != nil {
		msg := MsgDeleteHasAssignments
		if errors.Is(err, core.ErrEmployeeActive) {
			msg = MsgDeleteActive
		}
		c.notifier.Error(msg)
		return fmt.Errorf("%w: %w", ErrPrecondition, err)
	}

	if err := c.api.DeleteEmployee(ctx, emp.ID); err != nil {
		c.logger.Error("failed to delete employee", zap.Error(err), zap.String("employee_id", emp.ID))
		c.notifier.Error(MsgDeleteFailed)
		return err
	}
	c.logger.Info("employee deleted", zap.String("employee_id", emp.ID))
	c.notifier.Success(MsgDeleteSucceeded)
	c.navigator.ToEmployeeList()
	return nil
}

// OpenEdit seeds the employee form with the current snapshot.
func (c *Controller) OpenEdit() (*form.Form[form.EmployeeDraft], error) {
	c.mu.Lock()
	emp := c.employee
	c.mu.Unlock()
	if emp == nil {
		return nil, ErrNotReady
	}
	draft := form.EmployeeDraftFrom(*emp)
	c.form.Open(&draft)
	return c.form, nil
}

// FinishEdit sends a submitted draft and then reloads from the server. The
// server response is not used as the new snapshot.
func (c *Controller) FinishEdit(ctx context.Context, outcome form.Outcome[form.EmployeeDraft]) error {
	if !outcome.Submitted {
		return nil
	}
	emp, err := outcome.Draft.Employee()
	if err != nil {
		c.notifier.Error(MsgUpdateInvalidDraft)
		return err
	}
	if _, err := c.api.UpdateEmployee(ctx, emp); err != nil {
		c.logger.Error("failed to update employee", zap.Error(err), zap.String("employee_id", emp.ID))
		c.notifier.Error(MsgUpdateFailed)
		return err
	}
	c.refetch(ctx)
	c.notifier.Success(MsgUpdateSucceeded)
	return nil
}

func (c *Controller) Back() {
	c.navigator.ToEmployeeList()
}
