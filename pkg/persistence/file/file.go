// Package file provides file-based persistence implementation for workflows and executions.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dukex/flowsuite/pkg/models"
	"github.com/dukex/flowsuite/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
// Every record is one JSON document named after its id.
type Persistence struct {
	root          string
	mu            sync.RWMutex
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	fp := &Persistence{root: cleanRoot}
	fp.workflowRepo = &WorkflowRepository{store: fp}
	fp.executionRepo = &ExecutionRepository{store: fp}

	return fp
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck creates the root directory if needed and verifies it is a directory.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if err := os.MkdirAll(fp.root, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	info, err := os.Stat(fp.root)
	if err != nil {
		return fmt.Errorf("failed to stat data directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("data path %s is not a directory", fp.root)
	}

	return nil
}

// WorkflowRepository returns the workflow repository implementation for file persistence.
func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

// ExecutionRepository returns the execution repository implementation for file persistence.
func (fp *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return fp.executionRepo
}

func (fp *Persistence) documentPath(collection string, id models.ID) (string, error) {
	name := string(id)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", persistence.ErrInvalidID
	}

	return filepath.Join(fp.root, collection, name+".json"), nil
}

// read decodes the document into v and reports whether it exists.
func (fp *Persistence) read(collection string, id models.ID, v any) (bool, error) {
	filePath, err := fp.documentPath(collection, id)
	if err != nil {
		return false, err
	}

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", filePath, err)
	}

	return true, nil
}

func (fp *Persistence) write(collection string, id models.ID, v any) error {
	filePath, err := fp.documentPath(collection, id)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", collection, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}

	return os.Rename(tmp, filePath)
}

func (fp *Persistence) remove(collection string, id models.ID) error {
	filePath, err := fp.documentPath(collection, id)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", filePath, err)
	}

	return nil
}

// ids lists the document ids stored in a collection.
func (fp *Persistence) ids(collection string) ([]models.ID, error) {
	matches, err := filepath.Glob(filepath.Join(fp.root, collection, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s files: %w", collection, err)
	}

	ids := make([]models.ID, 0, len(matches))
	for _, match := range matches {
		ids = append(ids, models.ID(strings.TrimSuffix(filepath.Base(match), ".json")))
	}

	return ids, nil
}
