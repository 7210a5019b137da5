// Package gtasks is the personal task manager client, backed by Google
// Tasks. Task lists play the role of projects; subtasks are tasks with a
// parent.
package gtasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/tasks/v1"

	"github.com/alexanderramin/docket/internal/domain"
)

// DefaultList is the user's primary task list.
const DefaultList = "@default"

const statusCompleted = "completed"

// Client creates and reads tasks and task lists.
type Client struct {
	srv         *tasks.Service
	defaultList string
	logger      *log.Logger
}

// NewClient wraps srv.
func NewClient(srv *tasks.Service, defaultList string, logger *log.Logger) *Client {
	if defaultList == "" {
		defaultList = DefaultList
	}
	return &Client{srv: srv, defaultList: defaultList, logger: logger}
}

// DefaultProject returns the list used when a task has no matter project.
func (c *Client) DefaultProject() string {
	return c.defaultList
}

// CreateProject returns the id of the task list titled name, creating it
// when no list carries that title.
func (c *Client) CreateProject(ctx context.Context, name string) (string, error) {
	existing, err := c.findListByTitle(ctx, name)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}
	list, err := c.srv.Tasklists.Insert(&tasks.TaskList{Title: name}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create task list %q: %w", name, err)
	}
	c.logger.WithFields(log.Fields{"project_id": list.Id, "name": name}).Info("created task list")
	return list.Id, nil
}

// ListProjects returns every task list as id -> title.
func (c *Client) ListProjects(ctx context.Context) (map[string]string, error) {
	out := map[string]string{}
	err := c.srv.Tasklists.List().MaxResults(100).Pages(ctx, func(page *tasks.TaskLists) error {
		for _, l := range page.Items {
			out[l.Id] = l.Title
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list task lists: %w", err)
	}
	return out, nil
}

func (c *Client) findListByTitle(ctx context.Context, title string) (string, error) {
	lists, err := c.ListProjects(ctx)
	if err != nil {
		return "", err
	}
	for id, t := range lists {
		if strings.EqualFold(t, title) {
			return id, nil
		}
	}
	return "", nil
}

// CreateTask inserts t and returns its id. A non-empty ParentID makes it a
// subtask.
func (c *Client) CreateTask(ctx context.Context, t domain.ExternalTask) (string, error) {
	list := domain.CoalesceStr(t.ProjectID, c.defaultList)
	call := c.srv.Tasks.Insert(list, toAPITask(t)).Context(ctx)
	if t.ParentID != "" {
		call = call.Parent(t.ParentID)
	}
	created, err := call.Do()
	if err != nil {
		return "", fmt.Errorf("create task %q: %w", t.Title, err)
	}
	return created.Id, nil
}

// GetTask fetches a task. It returns nil, nil when the task does not exist.
func (c *Client) GetTask(ctx context.Context, projectID, taskID string) (*domain.ExternalTask, error) {
	list := domain.CoalesceStr(projectID, c.defaultList)
	t, err := c.srv.Tasks.Get(list, taskID).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get task %s: %w", taskID, err)
	}
	ext := fromAPITask(t)
	ext.ProjectID = list
	return ext, nil
}

// priorityPrefix tags the notes with the priority, which Google Tasks has
// no field for.
const priorityPrefix = "Priority: "

func toAPITask(t domain.ExternalTask) *tasks.Task {
	notes := t.Notes
	if t.Priority != "" {
		notes = strings.TrimSpace(priorityPrefix + string(t.Priority) + "\n" + notes)
	}
	out := &tasks.Task{Title: t.Title, Notes: notes}
	if t.Due != nil {
		// Google Tasks stores the date only; the time part is discarded.
		out.Due = t.Due.UTC().Format(time.RFC3339)
	}
	return out
}

func fromAPITask(t *tasks.Task) *domain.ExternalTask {
	ext := &domain.ExternalTask{
		ID:        t.Id,
		ParentID:  t.Parent,
		Title:     t.Title,
		Notes:     t.Notes,
		Completed: t.Status == statusCompleted,
	}
	if t.Due != "" {
		if due, err := time.Parse(time.RFC3339, t.Due); err == nil {
			d := due.UTC()
			ext.Due = &d
		}
	}
	if first, _, _ := strings.Cut(t.Notes, "\n"); strings.HasPrefix(first, priorityPrefix) {
		ext.Priority = domain.ParsePriority(strings.TrimPrefix(first, priorityPrefix))
	}
	return ext
}
