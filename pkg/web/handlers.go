package web

import (
	"net/http"
	"time"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService  *services.Workflow
	executionService *services.Execution
	aiService        *services.AI
	validator        *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	executionService *services.Execution,
	aiService *services.AI,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService:  workflowService,
		executionService: executionService,
		aiService:        aiService,
		validator:        validator,
	}
}

// Register mounts every API route on router.
func (h *APIHandlers) Register(router fiber.Router) {
	w := router.Group("/workflows")
	w.Get("/", h.GetWorkflows)
	w.Post("/", h.CreateWorkflow)
	w.Get("/:id", h.GetWorkflow)
	w.Put("/:id", h.UpdateWorkflow)
	w.Delete("/:id", h.DeleteWorkflow)
	w.Post("/:id/execute", h.ExecuteWorkflow)
	w.Get("/:id/executions", h.GetExecutions)

	ai := router.Group("/ai")
	ai.Post("/process", h.Process)
	ai.Post("/analyze", h.Analyze)
	ai.Post("/decision", h.Decide)

	router.Get("/health", h.HealthCheck)
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context())
	if err != nil {
		return handleServiceError(c, err)
	}

	if workflows == nil {
		workflows = []*models.Workflow{}
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id := models.ID(c.Params("id"))

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	req, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Create(c.Context(), req.Payload())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id := models.ID(c.Params("id"))

	req, err := h.bindWorkflow(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), id, req.Payload())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id := models.ID(c.Params("id"))

	err := h.workflowService.Delete(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ExecuteWorkflow accepts any JSON value as input. An empty body means {}.
func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id := models.ID(c.Params("id"))

	input, err := models.ParseJSON(string(c.Body()))
	if err != nil {
		return badRequest(c, "Execution input must be valid JSON")
	}

	execution, err := h.executionService.Execute(c.Context(), id, input)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetExecutions(c fiber.Ctx) error {
	id := models.ID(c.Params("id"))

	executions, err := h.executionService.ListByWorkflow(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	if executions == nil {
		executions = []*models.Execution{}
	}

	return c.JSON(executions)
}

func (h *APIHandlers) Process(c fiber.Ctx) error {
	var req models.ProcessRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if !req.Context.IsZero() && !req.Context.IsObject() {
		return badRequest(c, "context must be a JSON object")
	}

	resp, err := h.aiService.Process(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(resp)
}

func (h *APIHandlers) Analyze(c fiber.Ctx) error {
	var req AnalyzeRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	analysis, err := h.aiService.Analyze(c.Context(), models.AnalyzeRequest{
		Data:         req.Data,
		AnalysisType: req.AnalysisType,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(analysis)
}

func (h *APIHandlers) Decide(c fiber.Ctx) error {
	var req models.DecisionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	if !req.Parameters.IsZero() && !req.Parameters.IsObject() {
		return badRequest(c, "parameters must be a JSON object")
	}

	resp, err := h.aiService.Decide(c.Context(), req)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(resp)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "flowsuite sandbox is unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		message = "flowsuite sandbox is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// bindWorkflow validates the raw body against the workflow schema, then decodes and validates the struct.
func (h *APIHandlers) bindWorkflow(c fiber.Ctx) (*WorkflowRequest, error) {
	if err := validateWorkflowBody(c.Body()); err != nil {
		return nil, err
	}

	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return nil, err
	}

	if err := h.validator.Struct(req); err != nil {
		return nil, err
	}

	return &req, nil
}
