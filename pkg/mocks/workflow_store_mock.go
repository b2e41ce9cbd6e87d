// Package mocks provides testify mocks for the collaborator interfaces.
package mocks

import (
	"context"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockWorkflowStore is a mock implementation of editor.Store.
type MockWorkflowStore struct {
	mock.Mock
}

func (m *MockWorkflowStore) GetWorkflow(ctx context.Context, id models.ID) (*models.Workflow, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowStore) CreateWorkflow(ctx context.Context, payload models.WorkflowPayload) (*models.Workflow, error) {
	args := m.Called(ctx, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

func (m *MockWorkflowStore) UpdateWorkflow(ctx context.Context, id models.ID, payload models.WorkflowPayload) (*models.Workflow, error) {
	args := m.Called(ctx, id, payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Workflow), args.Error(1)
}

// MockExecutionClient is a mock implementation of execution.Client.
type MockExecutionClient struct {
	mock.Mock
}

func (m *MockExecutionClient) ListWorkflows(ctx context.Context) ([]*models.Workflow, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Workflow), args.Error(1)
}

func (m *MockExecutionClient) ExecuteWorkflow(ctx context.Context, id models.ID, input models.JSON) (*models.ExecutionAck, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ExecutionAck), args.Error(1)
}

func (m *MockExecutionClient) ListExecutions(ctx context.Context, id models.ID) ([]*models.Execution, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]*models.Execution), args.Error(1)
}

// MockAIClient is a mock implementation of assistant.Client.
type MockAIClient struct {
	mock.Mock
}

func (m *MockAIClient) Process(ctx context.Context, req models.ProcessRequest) (*models.ProcessResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.ProcessResponse), args.Error(1)
}

func (m *MockAIClient) Analyze(ctx context.Context, req models.AnalyzeRequest) (*models.Analysis, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.Analysis), args.Error(1)
}

func (m *MockAIClient) Decide(ctx context.Context, req models.DecisionRequest) (*models.DecisionResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.DecisionResponse), args.Error(1)
}
