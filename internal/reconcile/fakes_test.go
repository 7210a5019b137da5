package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alexanderramin/docket/internal/domain"
)

var errDown = errors.New("service unavailable")

type fakeBoard struct {
	mu      sync.Mutex
	pages   map[string]*domain.Task
	order   []string
	creates int
	updates int

	failCreate bool
	failGet    bool
	failFind   bool
	failUpdate bool
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{pages: map[string]*domain.Task{}}
}

func (b *fakeBoard) CreateTask(_ context.Context, t domain.Task) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failCreate {
		return "", errDown
	}
	b.creates++
	t.PageID = fmt.Sprintf("page-%d", b.creates)
	b.pages[t.PageID] = &t
	b.order = append(b.order, t.PageID)
	return t.PageID, nil
}

func (b *fakeBoard) GetTask(_ context.Context, pageID string) (*domain.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failGet {
		return nil, errDown
	}
	t, ok := b.pages[pageID]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (b *fakeBoard) FindByExternalID(_ context.Context, externalID string) (*domain.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failFind {
		return nil, errDown
	}
	for _, id := range b.order {
		if t := b.pages[id]; t.ExternalID == externalID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (b *fakeBoard) UpdateTask(_ context.Context, pageID string, patch domain.TaskPatch) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failUpdate {
		return errDown
	}
	t, ok := b.pages[pageID]
	if !ok {
		return errors.New("no such page")
	}
	b.updates++
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.ExternalID != nil {
		t.ExternalID = *patch.ExternalID
	}
	return nil
}

// put seeds a task directly, bypassing the create counter.
func (b *fakeBoard) put(t domain.Task) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pages[t.PageID] = &t
	b.order = append(b.order, t.PageID)
}

func (b *fakeBoard) tasks() []domain.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Task, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.pages[id])
	}
	return out
}

type fakeTaskManager struct {
	mu       sync.Mutex
	created  []domain.ExternalTask
	projects map[string]string

	failCreate bool
}

func newFakeTaskManager() *fakeTaskManager {
	return &fakeTaskManager{projects: map[string]string{}}
}

func (m *fakeTaskManager) DefaultProject() string { return "@default" }

func (m *fakeTaskManager) CreateProject(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.projects[name]; ok {
		return id, nil
	}
	id := fmt.Sprintf("list-%d", len(m.projects)+1)
	m.projects[name] = id
	return id, nil
}

func (m *fakeTaskManager) CreateTask(_ context.Context, t domain.ExternalTask) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate {
		return "", errDown
	}
	t.ID = fmt.Sprintf("ext-%d", len(m.created)+1)
	m.created = append(m.created, t)
	return t.ID, nil
}

func (m *fakeTaskManager) parents() []domain.ExternalTask {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ExternalTask
	for _, t := range m.created {
		if t.ParentID == "" {
			out = append(out, t)
		}
	}
	return out
}

type fakeDirectory struct {
	mu      sync.Mutex
	matters []domain.Matter
	notes   map[string][]string
}

func newFakeDirectory(matters ...domain.Matter) *fakeDirectory {
	return &fakeDirectory{matters: matters, notes: map[string][]string{}}
}

func (d *fakeDirectory) find(match func(domain.Matter) bool) (*domain.Matter, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, m := range d.matters {
		if match(m) {
			cp := m
			return &cp, nil
		}
	}
	return nil, nil
}

func (d *fakeDirectory) FindMatterByName(_ context.Context, name string) (*domain.Matter, error) {
	return d.find(func(m domain.Matter) bool { return m.CaseName == name })
}

func (d *fakeDirectory) FindMatterByNameContains(_ context.Context, fragment string) (*domain.Matter, error) {
	return d.find(func(m domain.Matter) bool { return strings.Contains(m.CaseName, fragment) })
}

func (d *fakeDirectory) FindMatterByIndex(_ context.Context, index string) (*domain.Matter, error) {
	return d.find(func(m domain.Matter) bool { return m.IndexNumber != "" && strings.Contains(m.IndexNumber, index) })
}

func (d *fakeDirectory) GetMatter(_ context.Context, id string) (*domain.Matter, error) {
	return d.find(func(m domain.Matter) bool { return m.ID == id })
}

func (d *fakeDirectory) CreateMatter(_ context.Context, m domain.Matter) (*domain.Matter, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	m.ID = fmt.Sprintf("matter-%d", len(d.matters)+1)
	d.matters = append(d.matters, m)
	return &m, nil
}

func (d *fakeDirectory) AddNote(_ context.Context, matterID, note string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notes[matterID] = append(d.notes[matterID], note)
	return nil
}

type fakeExtractor struct {
	mu     sync.Mutex
	result domain.Extraction
	calls  int
}

func (e *fakeExtractor) Extract(context.Context, *domain.InboundEmail) *domain.Extraction {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	cp := e.result
	return &cp
}
