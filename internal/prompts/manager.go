// Package prompts manages saved DAG generation prompts: listing, saving,
// selecting, generating DAGs from them and deleting them.
package prompts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	apierrors "github.com/diogo/dagchat/internal/errors"
	"github.com/diogo/dagchat/internal/models"
)

// User-visible notices
const (
	MsgRequiredFields  = "Please fill in all required fields."
	MsgSaved           = "Prompt saved successfully!"
	MsgSaveFailed      = "Error saving prompt. Please try again."
	MsgListFailed      = "Error loading prompts. Please try again."
	MsgGenerateFailed  = "Error generating DAG. Please try again."
	MsgDeleted         = "Prompt deleted successfully!"
	MsgDeleteFailed    = "Error deleting prompt. Please try again."
	MsgUnknownError    = "Unknown error"
	MsgConfirmGenerate = "Are you sure you want to generate a DAG from this prompt?"
	MsgConfirmDelete   = "Are you sure you want to delete this prompt?"
)

// ErrCanceled is returned when the user declines a confirmation.
var ErrCanceled = errors.New("canceled")

// Backend is the prompt slice of the plugin API. api.Client satisfies it.
type Backend interface {
	ListPrompts(ctx context.Context) (*models.PromptsResult, error)
	CreatePrompt(ctx context.Context, in models.PromptInput) (*models.CreatePromptResult, error)
	GenerateDAG(ctx context.Context, id int64) (*models.GenerateResult, error)
	DeletePrompt(ctx context.Context, id int64) (*models.StatusResult, error)
}

// Form is the prompt editor state after a selection.
type Form struct {
	Prompt models.Prompt
	// CanGenerate is false once a DAG exists for the prompt.
	CanGenerate bool
}

// Presenter renders manager state.
type Presenter interface {
	ShowPrompts(prompts []models.Prompt)
	ShowEmpty()
	ShowListError(msg string)
	Alert(msg string)
	Confirm(question string) bool
	ShowForm(f Form)
	ResetForm()
	ShowGenerated(dagID string)
	SetBusy(busy bool)
}

// Manager coordinates prompt operations with a Presenter.
type Manager struct {
	backend   Backend
	presenter Presenter
	logger    *zap.Logger

	mu      sync.Mutex
	current int64
	prompts []models.Prompt
}

// NewManager creates a Manager. logger may be nil.
func NewManager(backend Backend, presenter Presenter, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{backend: backend, presenter: presenter, logger: logger}
}

// Current returns the id of the prompt in the form, 0 when none.
func (m *Manager) Current() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func orUnknown(s string) string {
	if s == "" {
		return MsgUnknownError
	}
	return s
}

// Load fetches and shows the saved prompts.
func (m *Manager) Load(ctx context.Context) ([]models.Prompt, error) {
	res, err := m.backend.ListPrompts(ctx)
	if err != nil {
		m.logger.Error("failed to load prompts", zap.Error(err))
		m.presenter.ShowListError(MsgListFailed)
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	if !res.Success {
		msg := "Error loading prompts: " + orUnknown(res.Error)
		m.presenter.ShowListError(msg)
		return nil, errors.New(msg)
	}

	m.mu.Lock()
	m.prompts = append([]models.Prompt(nil), res.Prompts...)
	m.mu.Unlock()

	if len(res.Prompts) == 0 {
		m.presenter.ShowEmpty()
	} else {
		m.presenter.ShowPrompts(res.Prompts)
	}
	return res.Prompts, nil
}

// Save validates and stores a new prompt, makes it current and reloads
// the list.
func (m *Manager) Save(ctx context.Context, name, description, text string) (int64, error) {
	in := models.PromptInput{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Prompt:      strings.TrimSpace(text),
	}
	if in.Name == "" || in.Prompt == "" {
		m.presenter.Alert(MsgRequiredFields)
		return 0, apierrors.NewValidationError("", MsgRequiredFields)
	}

	res, err := m.backend.CreatePrompt(ctx, in)
	if err != nil {
		m.logger.Error("failed to save prompt", zap.Error(err))
		m.presenter.Alert(MsgSaveFailed)
		return 0, fmt.Errorf("save prompt: %w", err)
	}
	if !res.Success {
		msg := "Error saving prompt: " + orUnknown(res.Error)
		m.presenter.Alert(msg)
		return 0, errors.New(msg)
	}

	m.mu.Lock()
	m.current = res.PromptID
	m.mu.Unlock()

	m.presenter.ShowForm(Form{
		Prompt:      models.Prompt{ID: res.PromptID, Name: in.Name, Description: in.Description, Prompt: in.Prompt},
		CanGenerate: true,
	})
	_, _ = m.Load(ctx)
	m.presenter.Alert(MsgSaved)
	return res.PromptID, nil
}

// Select loads a prompt into the form. Prompts are looked up in the last
// listing, fetched first when missing.
func (m *Manager) Select(ctx context.Context, id int64) (models.Prompt, error) {
	p, ok := m.find(id)
	if !ok {
		if _, err := m.Load(ctx); err != nil {
			return models.Prompt{}, err
		}
		p, ok = m.find(id)
	}
	if !ok {
		return models.Prompt{}, fmt.Errorf("prompt %d: %w", id, apierrors.ErrNotFound)
	}

	m.mu.Lock()
	m.current = p.ID
	m.mu.Unlock()

	m.presenter.ShowForm(Form{Prompt: p, CanGenerate: !p.Generated()})
	if p.Generated() {
		m.presenter.ShowGenerated(p.DagID)
	}
	return p, nil
}

func (m *Manager) find(id int64) (models.Prompt, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.prompts {
		if p.ID == id {
			return p, true
		}
	}
	return models.Prompt{}, false
}

// Generate asks for confirmation, then produces a DAG from the prompt.
func (m *Manager) Generate(ctx context.Context, id int64) (string, error) {
	if !m.presenter.Confirm(MsgConfirmGenerate) {
		return "", ErrCanceled
	}

	m.presenter.SetBusy(true)
	res, err := m.backend.GenerateDAG(ctx, id)
	m.presenter.SetBusy(false)

	if err != nil {
		m.logger.Error("failed to generate DAG", zap.Int64("prompt_id", id), zap.Error(err))
		m.presenter.Alert(MsgGenerateFailed)
		return "", fmt.Errorf("generate DAG: %w", err)
	}
	if !res.Success {
		msg := "Error generating DAG: " + orUnknown(res.Error)
		m.presenter.Alert(msg)
		return "", errors.New(msg)
	}

	m.logger.Info("DAG generated", zap.Int64("prompt_id", id), zap.String("dag_id", res.DagID))
	m.presenter.ShowGenerated(res.DagID)
	_, _ = m.Load(ctx)
	m.presenter.Alert("DAG generated successfully! DAG ID: " + res.DagID)
	return res.DagID, nil
}

// Delete asks for confirmation, then removes the prompt. The form is
// reset when it showed the deleted prompt.
func (m *Manager) Delete(ctx context.Context, id int64) error {
	if !m.presenter.Confirm(MsgConfirmDelete) {
		return ErrCanceled
	}

	res, err := m.backend.DeletePrompt(ctx, id)
	if err != nil {
		m.logger.Error("failed to delete prompt", zap.Int64("prompt_id", id), zap.Error(err))
		m.presenter.Alert(MsgDeleteFailed)
		return fmt.Errorf("delete prompt: %w", err)
	}
	if !res.Success {
		msg := "Error deleting prompt: " + orUnknown(res.Error)
		m.presenter.Alert(msg)
		return errors.New(msg)
	}

	m.mu.Lock()
	wasCurrent := m.current == id
	if wasCurrent {
		m.current = 0
	}
	m.mu.Unlock()

	if wasCurrent {
		m.presenter.ResetForm()
	}
	_, _ = m.Load(ctx)
	m.presenter.Alert(MsgDeleted)
	return nil
}
