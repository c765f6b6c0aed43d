package corehandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"hradmin/internal/domain/core"
	"hradmin/internal/transport/http/api"
	"hradmin/internal/transport/http/middleware"
	"hradmin/internal/transport/http/shared"
)

type Handler struct {
	Service *core.Service
	logger  *zap.Logger
}

func NewHandler(service *core.Service, logger *zap.Logger) *Handler {
	return &Handler{Service: service, logger: logger.Named("core_handler")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.handleListEmployees)
		r.Post("/", h.handleCreateEmployee)
		r.Route("/{employeeID}", func(r chi.Router) {
			r.Get("/", h.handleGetEmployee)
			r.Put("/", h.handleUpdateEmployee)
			r.Delete("/", h.handleDeleteEmployee)
		})
	})
	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.handleListRoles)
		r.Post("/", h.handleCreateRole)
		r.Get("/{id}", h.handleGetRole)
	})
	r.Route("/levels", func(r chi.Router) {
		r.Get("/", h.handleListLevels)
		r.Post("/", h.handleCreateLevel)
		r.Get("/{id}", h.handleGetLevel)
	})
	r.Route("/organisations", func(r chi.Router) {
		r.Get("/", h.handleListOrganisations)
		r.Post("/", h.handleCreateOrganisation)
		r.Get("/{id}", h.handleGetOrganisation)
	})
	r.Route("/currencies", func(r chi.Router) {
		r.Get("/", h.handleListCurrencies)
		r.Post("/", h.handleCreateCurrency)
	})
	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.handleListClients)
		r.Post("/", h.handleCreateClient)
	})
	r.Route("/client-employees", func(r chi.Router) {
		r.Post("/", h.handleCreateAssignment)
		r.Put("/{id}", h.handleUpdateAssignment)
		r.Get("/employee/{employeeID}", h.handleListAssignments)
	})
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.handleListPayments)
		r.Post("/", h.handleCreatePayment)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetPayment)
			r.Put("/", h.handleUpdatePayment)
			r.Get("/receipt", h.handleGetReceipt)
		})
	})
}

// writeError maps domain errors onto envelope codes. Anything unrecognised is
// logged and reported with the fallback code as a 500.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error, fallbackCode, fallbackMessage string) {
	requestID := middleware.GetRequestID(r.Context())
	switch {
	case errors.Is(err, core.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "resource not found", requestID)
	case errors.Is(err, core.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), requestID)
	case errors.Is(err, core.ErrDuplicate):
		api.Fail(w, http.StatusConflict, "duplicate", "resource already exists", requestID)
	case errors.Is(err, core.ErrEmployeeActive):
		api.Fail(w, http.StatusConflict, "employee_active", "active employees cannot be deleted", requestID)
	case errors.Is(err, core.ErrActiveAssignments):
		api.Fail(w, http.StatusConflict, "employee_has_active_assignments", "employee has active client assignments", requestID)
	default:
		h.logger.Error(fallbackMessage,
			zap.Error(err),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestID),
		)
		api.Fail(w, http.StatusInternalServerError, fallbackCode, fallbackMessage, requestID)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		requestID := middleware.GetRequestID(r.Context())
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
			return false
		}
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return false
	}
	return true
}

type employeePayload struct {
	FirstName      string  `json:"firstName" validate:"required"`
	LastName       string  `json:"lastName"`
	EmployeeCode   string  `json:"employeeCode"`
	RoleID         string  `json:"roleId"`
	LevelID        string  `json:"levelId"`
	OrganisationID string  `json:"organisationId"`
	AnnualCTC      float64 `json:"annualCtc" validate:"gte=0"`
	ContactNumber  string  `json:"contactNumber" validate:"required"`
	Email          string  `json:"email" validate:"required"`
	DateOfJoining  string  `json:"dateOfJoining"`
	Status         string  `json:"status" validate:"omitempty,oneof=Active Inactive"`
}

// toEmployee applies the same format rules as the console's employee form.
func (p employeePayload) toEmployee(v *shared.Validator) core.Employee {
	v.Struct(p)
	if p.ContactNumber != "" && !core.ValidContactNumber(p.ContactNumber) {
		v.Add("contactNumber", "must be exactly 10 digits")
	}
	if p.Email != "" && !core.ValidEmail(p.Email) {
		v.Add("email", "must be a valid email address")
	}
	return core.Employee{
		FirstName:      strings.TrimSpace(p.FirstName),
		LastName:       strings.TrimSpace(p.LastName),
		EmployeeCode:   strings.TrimSpace(p.EmployeeCode),
		RoleID:         p.RoleID,
		LevelID:        p.LevelID,
		OrganisationID: p.OrganisationID,
		AnnualCTC:      p.AnnualCTC,
		ContactNumber:  p.ContactNumber,
		Email:          strings.TrimSpace(p.Email),
		DateOfJoining:  v.OptionalDate("dateOfJoining", p.DateOfJoining),
		Status:         core.EmployeeStatus(p.Status),
	}
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.ListEmployees(r.Context())
	if err != nil {
		h.writeError(w, r, err, "employee_list_failed", "failed to list employees")
		return
	}
	api.Success(w, employees, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.GetEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		h.writeError(w, r, err, "employee_get_failed", "failed to load employee")
		return
	}
	api.Success(w, emp, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	emp := payload.toEmployee(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Service.CreateEmployee(r.Context(), emp)
	if err != nil {
		h.writeError(w, r, err, "employee_create_failed", "failed to create employee")
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateEmployee(w http.ResponseWriter, r *http.Request) {
	var payload employeePayload
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Required("status", payload.Status, "is required")
	emp := payload.toEmployee(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	updated, err := h.Service.UpdateEmployee(r.Context(), chi.URLParam(r, "employeeID"), emp)
	if err != nil {
		h.writeError(w, r, err, "employee_update_failed", "failed to update employee")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteEmployee(r.Context(), chi.URLParam(r, "employeeID")); err != nil {
		h.writeError(w, r, err, "employee_delete_failed", "failed to delete employee")
		return
	}
	api.NoContent(w)
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.writeError(w, r, err, "role_list_failed", "failed to list roles")
		return
	}
	api.Success(w, roles, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.Service.GetRole(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err, "role_get_failed", "failed to load role")
		return
	}
	api.Success(w, role, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateRole(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RoleName string `json:"roleName" validate:"required"`
	}
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	role, err := h.Service.CreateRole(r.Context(), core.Role{RoleName: strings.TrimSpace(payload.RoleName)})
	if err != nil {
		h.writeError(w, r, err, "role_create_failed", "failed to create role")
		return
	}
	api.Created(w, role, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListLevels(w http.ResponseWriter, r *http.Request) {
	levels, err := h.Service.ListLevels(r.Context())
	if err != nil {
		h.writeError(w, r, err, "level_list_failed", "failed to list levels")
		return
	}
	api.Success(w, levels, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	level, err := h.Service.GetLevel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err, "level_get_failed", "failed to load level")
		return
	}
	api.Success(w, level, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateLevel(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		LevelName string `json:"levelName" validate:"required"`
	}
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	level, err := h.Service.CreateLevel(r.Context(), core.Level{LevelName: strings.TrimSpace(payload.LevelName)})
	if err != nil {
		h.writeError(w, r, err, "level_create_failed", "failed to create level")
		return
	}
	api.Created(w, level, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListOrganisations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.Service.ListOrganisations(r.Context())
	if err != nil {
		h.writeError(w, r, err, "organisation_list_failed", "failed to list organisations")
		return
	}
	api.Success(w, orgs, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetOrganisation(w http.ResponseWriter, r *http.Request) {
	org, err := h.Service.GetOrganisation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err, "organisation_get_failed", "failed to load organisation")
		return
	}
	api.Success(w, org, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateOrganisation(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name         string `json:"name" validate:"required"`
		Abbreviation string `json:"abbreviation" validate:"required"`
	}
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	org, err := h.Service.CreateOrganisation(r.Context(), core.Organisation{
		Name:         strings.TrimSpace(payload.Name),
		Abbreviation: strings.TrimSpace(payload.Abbreviation),
	})
	if err != nil {
		h.writeError(w, r, err, "organisation_create_failed", "failed to create organisation")
		return
	}
	api.Created(w, org, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCurrencies(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.Service.ListCurrencies(r.Context())
	if err != nil {
		h.writeError(w, r, err, "currency_list_failed", "failed to list currencies")
		return
	}
	api.Success(w, currencies, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCurrency(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Code   string `json:"code" validate:"required,len=3"`
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	}
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	cur, err := h.Service.CreateCurrency(r.Context(), core.Currency{
		Code:   strings.ToUpper(payload.Code),
		Name:   payload.Name,
		Symbol: payload.Symbol,
	})
	if err != nil {
		h.writeError(w, r, err, "currency_create_failed", "failed to create currency")
		return
	}
	api.Created(w, cur, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Service.ListClients(r.Context())
	if err != nil {
		h.writeError(w, r, err, "client_list_failed", "failed to list clients")
		return
	}
	api.Success(w, clients, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name       string `json:"name" validate:"required"`
		CurrencyID string `json:"currencyId" validate:"required"`
	}
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	v.Struct(payload)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	client, err := h.Service.CreateClient(r.Context(), core.Client{Name: strings.TrimSpace(payload.Name), CurrencyID: payload.CurrencyID})
	if err != nil {
		h.writeError(w, r, err, "client_create_failed", "failed to create client")
		return
	}
	api.Created(w, client, middleware.GetRequestID(r.Context()))
}

type assignmentPayload struct {
	EmployeeID     string  `json:"employeeId" validate:"required"`
	ClientID       string  `json:"clientId" validate:"required"`
	StartDate      string  `json:"startDate"`
	EndDate        string  `json:"endDate"`
	MonthlyBilling float64 `json:"monthlyBilling" validate:"gte=0"`
	Status         string  `json:"status" validate:"required,oneof=Active Inactive"`
}

func (p assignmentPayload) toAssignment(v *shared.Validator) core.ClientAssignment {
	v.Struct(p)
	start := v.OptionalDate("startDate", p.StartDate)
	end := v.OptionalDate("endDate", p.EndDate)
	if start != nil && end != nil {
		v.DateOrder("startDate", *start, "endDate", *end)
	}
	return core.ClientAssignment{
		EmployeeID:     p.EmployeeID,
		ClientID:       p.ClientID,
		StartDate:      start,
		EndDate:        end,
		MonthlyBilling: p.MonthlyBilling,
		Status:         core.AssignmentStatus(p.Status),
	}
}

func (h *Handler) handleListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.Service.ListAssignmentsByEmployee(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		h.writeError(w, r, err, "assignment_list_failed", "failed to list client assignments")
		return
	}
	api.Success(w, assignments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateAssignment(w http.ResponseWriter, r *http.Request) {
	var payload assignmentPayload
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	assignment := payload.toAssignment(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	created, err := h.Service.CreateAssignment(r.Context(), assignment)
	if err != nil {
		h.writeError(w, r, err, "assignment_create_failed", "failed to create client assignment")
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateAssignment(w http.ResponseWriter, r *http.Request) {
	var payload assignmentPayload
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	assignment := payload.toAssignment(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	updated, err := h.Service.UpdateAssignment(r.Context(), chi.URLParam(r, "id"), assignment)
	if err != nil {
		h.writeError(w, r, err, "assignment_update_failed", "failed to update client assignment")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

type paymentPayload struct {
	EmployeeID   string  `json:"employeeId"`
	Amount       float64 `json:"amount" validate:"gt=0"`
	ReceivedDate string  `json:"receivedDate" validate:"required"`
	Notes        string  `json:"notes"`
}

func (p paymentPayload) toPayment(v *shared.Validator) core.Payment {
	v.Struct(p)
	payment := core.Payment{EmployeeID: p.EmployeeID, Amount: p.Amount, Notes: strings.TrimSpace(p.Notes)}
	if p.ReceivedDate != "" {
		if received, ok := v.Date("receivedDate", p.ReceivedDate); ok {
			payment.ReceivedDate = received
		}
	}
	return payment
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Service.ListPayments(r.Context())
	if err != nil {
		h.writeError(w, r, err, "payment_list_failed", "failed to list payments")
		return
	}
	api.Success(w, payments, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.Service.GetPayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err, "payment_get_failed", "failed to load payment")
		return
	}
	api.Success(w, payment, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var payload paymentPayload
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	payment := payload.toPayment(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	created, err := h.Service.CreatePayment(r.Context(), payment)
	if err != nil {
		h.writeError(w, r, err, "payment_create_failed", "failed to create payment")
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	var payload paymentPayload
	if !decode(w, r, &payload) {
		return
	}
	v := shared.NewValidator()
	payment := payload.toPayment(v)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	updated, err := h.Service.UpdatePayment(r.Context(), chi.URLParam(r, "id"), payment)
	if err != nil {
		h.writeError(w, r, err, "payment_update_failed", "failed to update payment")
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetReceipt(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pdf, err := h.Service.PaymentReceipt(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err, "receipt_failed", "failed to render receipt")
		return
	}
	if err := api.Attachment(w, "application/pdf", "receipt-"+id+".pdf", pdf); err != nil {
		h.logger.Warn("receipt write failed", zap.Error(err), zap.String("payment_id", id))
	}
}
