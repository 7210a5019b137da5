package reconcile

import (
	"context"

	"github.com/alexanderramin/docket/internal/domain"
	"github.com/alexanderramin/docket/internal/matter"
)

// Board is the task board holding Task Records.
type Board interface {
	CreateTask(ctx context.Context, t domain.Task) (string, error)
	GetTask(ctx context.Context, pageID string) (*domain.Task, error)
	FindByExternalID(ctx context.Context, externalID string) (*domain.Task, error)
	UpdateTask(ctx context.Context, pageID string, patch domain.TaskPatch) error
}

// TaskManager is the personal task manager tasks are promoted into.
type TaskManager interface {
	DefaultProject() string
	CreateProject(ctx context.Context, name string) (string, error)
	CreateTask(ctx context.Context, t domain.ExternalTask) (string, error)
}

// Directory is the matter directory. Notes are optional activity entries
// appended to a matter.
type Directory interface {
	matter.Directory
	GetMatter(ctx context.Context, id string) (*domain.Matter, error)
	AddNote(ctx context.Context, matterID, note string) error
}

// Extractor turns an email into task candidates. It never fails; failures
// come back as a degraded extraction.
type Extractor interface {
	Extract(ctx context.Context, email *domain.InboundEmail) *domain.Extraction
}
