package gtasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/tasks/v1"

	"github.com/alexanderramin/docket/internal/domain"
)

// fakeTasksAPI is an in-memory stand-in for the Google Tasks REST API.
type fakeTasksAPI struct {
	mu       sync.Mutex
	lists    map[string]string
	tasks    map[string]map[string]any
	inserted []map[string]any
	nextID   int
	authz    []string
}

func newFakeTasksAPI() *fakeTasksAPI {
	return &fakeTasksAPI{lists: map[string]string{}, tasks: map[string]map[string]any{}}
}

func (f *fakeTasksAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authz = append(f.authz, r.Header.Get("Authorization"))
	w.Header().Set("Content-Type", "application/json")

	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, "/users/@me/lists") && r.Method == http.MethodGet:
		items := []map[string]any{}
		for id, title := range f.lists {
			items = append(items, map[string]any{"id": id, "title": title})
		}
		json.NewEncoder(w).Encode(map[string]any{"items": items})

	case strings.HasSuffix(path, "/users/@me/lists") && r.Method == http.MethodPost:
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.nextID++
		id := fmt.Sprintf("list-%d", f.nextID)
		f.lists[id] = body["title"].(string)
		json.NewEncoder(w).Encode(map[string]any{"id": id, "title": body["title"]})

	case strings.Contains(path, "/lists/") && strings.HasSuffix(path, "/tasks") && r.Method == http.MethodPost:
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.nextID++
		id := fmt.Sprintf("task-%d", f.nextID)
		body["id"] = id
		body["list"] = strings.Split(strings.TrimPrefix(path, "/tasks/v1/lists/"), "/")[0]
		if p := r.URL.Query().Get("parent"); p != "" {
			body["parent"] = p
		}
		f.tasks[id] = body
		f.inserted = append(f.inserted, body)
		json.NewEncoder(w).Encode(body)

	case strings.Contains(path, "/tasks/") && r.Method == http.MethodGet:
		id := path[strings.LastIndex(path, "/")+1:]
		t, ok := f.tasks[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":404,"message":"Task not found"}}`))
			return
		}
		json.NewEncoder(w).Encode(t)

	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newTestClient(t *testing.T) (*Client, *fakeTasksAPI) {
	t.Helper()
	api := newFakeTasksAPI()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := tasks.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	return NewClient(svc, "", logger), api
}

func TestCreateProject_CreatesThenReuses(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()

	id, err := c.CreateProject(ctx, "Walker v. Metro Ten")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	again, err := c.CreateProject(ctx, "walker v. metro ten")
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Len(t, api.lists, 1)
}

func TestCreateTask_WithPriorityDueAndParent(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()
	due := time.Date(2025, 12, 30, 0, 0, 0, 0, time.UTC)

	parentID, err := c.CreateTask(ctx, domain.ExternalTask{
		ProjectID: "list-9", Title: "Respond to discovery", Priority: domain.PriorityP1,
		Notes: "Board: page-1", Due: &due,
	})
	require.NoError(t, err)

	subID, err := c.CreateTask(ctx, domain.ExternalTask{
		ProjectID: "list-9", ParentID: parentID, Title: "Collect documents",
	})
	require.NoError(t, err)
	assert.NotEqual(t, parentID, subID)

	require.Len(t, api.inserted, 2)
	parent := api.inserted[0]
	assert.Equal(t, "list-9", parent["list"])
	assert.Equal(t, "Respond to discovery", parent["title"])
	assert.Equal(t, "Priority: P1\nBoard: page-1", parent["notes"])
	assert.Equal(t, "2025-12-30T00:00:00Z", parent["due"])
	assert.Equal(t, parentID, api.inserted[1]["parent"])
}

func TestCreateTask_DefaultList(t *testing.T) {
	c, api := newTestClient(t)
	_, err := c.CreateTask(context.Background(), domain.ExternalTask{Title: "Personal errand"})
	require.NoError(t, err)
	assert.Equal(t, DefaultList, api.inserted[0]["list"])
	assert.Equal(t, DefaultList, c.DefaultProject())
}

func TestGetTask_RoundTripAndNotFound(t *testing.T) {
	c, api := newTestClient(t)
	ctx := context.Background()
	due := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	id, err := c.CreateTask(ctx, domain.ExternalTask{ProjectID: "list-1", Title: "Conference", Priority: domain.PriorityP0, Due: &due})
	require.NoError(t, err)
	api.tasks[id]["status"] = "completed"

	got, err := c.GetTask(ctx, "list-1", id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Conference", got.Title)
	assert.Equal(t, domain.PriorityP0, got.Priority)
	assert.True(t, got.Completed)
	assert.Equal(t, "list-1", got.ProjectID)
	require.NotNil(t, got.Due)
	assert.True(t, due.Equal(*got.Due))

	missing, err := c.GetTask(ctx, "list-1", "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestNewService_RefreshesAccessToken(t *testing.T) {
	api := newFakeTasksAPI()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "rt-1", r.Form.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","token_type":"Bearer","expires_in":3600}`))
	})
	mux.Handle("/", api)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	creds := fmt.Sprintf(`{"installed":{"client_id":"cid","client_secret":"cs","redirect_uris":["http://localhost"],"auth_uri":"%s/auth","token_uri":"%s/token"}}`, srv.URL, srv.URL)
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(creds), 0o600))

	svc, err := NewService(context.Background(), Config{
		CredentialsFile: path,
		RefreshToken:    "rt-1",
		Endpoint:        srv.URL + "/",
		Timeout:         5 * time.Second,
	})
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	_, err = NewClient(svc, "", logger).CreateTask(context.Background(), domain.ExternalTask{Title: "x"})
	require.NoError(t, err)
	require.NotEmpty(t, api.authz)
	assert.Equal(t, "Bearer at-1", api.authz[len(api.authz)-1])
}

func TestNewService_ConfigErrors(t *testing.T) {
	_, err := NewService(context.Background(), Config{CredentialsFile: filepath.Join(t.TempDir(), "missing.json")})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"installed":{"client_id":"cid","client_secret":"cs","redirect_uris":["http://localhost"],"auth_uri":"a","token_uri":"t"}}`), 0o600))
	_, err = NewService(context.Background(), Config{CredentialsFile: path})
	assert.ErrorContains(t, err, "refresh token")
}
