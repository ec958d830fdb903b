package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/maze-solver/internal/config"
	"github.com/vancomm/maze-solver/internal/maze"
	"github.com/vancomm/maze-solver/internal/repository"
)

type memRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]repository.MazeSession
}

func newMemRepo() *memRepo {
	return &memRepo{sessions: make(map[uuid.UUID]repository.MazeSession)}
}

func (m *memRepo) CreateMazeSession(
	ctx context.Context, params repository.CreateMazeSessionParams,
) (*repository.MazeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := pgtype.Timestamptz{Time: time.Now(), Valid: true}
	session := repository.MazeSession{
		MazeSessionID: uuid.New(),
		Rows:          params.Rows,
		Cols:          params.Cols,
		Seed:          params.Seed,
		Solved:        params.Solved,
		State:         params.State,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.sessions[session.MazeSessionID] = session
	return &session, nil
}

func (m *memRepo) FetchMazeSession(ctx context.Context, id uuid.UUID) (*repository.MazeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (m *memRepo) FetchMazeSessionByName(ctx context.Context, name string) (*repository.MazeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, session := range m.sessions {
		if session.Name != nil && *session.Name == name {
			return &session, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) UpdateMazeSession(
	ctx context.Context, id uuid.UUID, params repository.UpdateMazeSessionParams,
) (*repository.MazeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if params.Version != session.Version {
		return nil, repository.ErrConflict
	}
	if params.Name != nil {
		for otherID, other := range m.sessions {
			if otherID != id && other.Name != nil && *other.Name == *params.Name {
				return nil, repository.ErrNameTaken
			}
		}
		name := *params.Name
		session.Name = &name
	}
	if params.Solved != nil {
		session.Solved = *params.Solved
	}
	if params.Steps != nil {
		session.Steps = *params.Steps
	}
	if params.State != nil {
		session.State = *params.State
	}
	session.Version++
	session.UpdatedAt = pgtype.Timestamptz{Time: time.Now(), Valid: true}
	m.sessions[id] = session
	return &session, nil
}

func newTestHandler() (*MazeHandler, *memRepo) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	repo := newMemRepo()
	ws := &config.WebSocket{WriteTimeout: time.Second}
	h := NewMazeHandler(log, repo, ws)
	h.seed = func() uint64 { return 1 }
	return h, repo
}

func newRouter(h *MazeHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /maze", h.NewMaze)
	mux.HandleFunc("GET /maze/{id}", h.Fetch)
	mux.HandleFunc("POST /maze/{id}/step", h.Step)
	mux.HandleFunc("POST /maze/{id}/run", h.Run)
	mux.HandleFunc("POST /maze/{id}/save", h.Save)
	mux.HandleFunc("GET /saved/{name}", h.Load)
	mux.HandleFunc("/maze/{id}/connect", h.ConnectWS)
	return mux
}

func do(t *testing.T, mux http.Handler, method, target string) (*httptest.ResponseRecorder, *MazeSessionDTO) {
	t.Helper()
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	if rec.Code >= 300 {
		return rec, nil
	}
	var dto MazeSessionDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto), rec.Body.String())
	return rec, &dto
}

func create(t *testing.T, mux http.Handler, rows, cols int) *MazeSessionDTO {
	t.Helper()
	rec, dto := do(t, mux, http.MethodPost, fmt.Sprintf("/maze?rows=%d&cols=%d", rows, cols))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return dto
}

func TestNewMaze(t *testing.T) {
	h, repo := newTestHandler()
	mux := newRouter(h)

	rec, dto := do(t, mux, http.MethodPost, "/maze?rows=4&cols=5&seed=7")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	assert.Equal(t, 4, dto.Rows)
	assert.Equal(t, 5, dto.Cols)
	assert.Equal(t, uint64(7), dto.Seed)
	assert.Equal(t, "exploring", dto.Phase)
	assert.False(t, dto.Solved)
	assert.Equal(t, maze.Cell{}, dto.Current)
	assert.Equal(t, maze.Cell{Row: 3, Col: 4}, dto.Goal)
	assert.Empty(t, dto.Path)
	assert.Contains(t, dto.Maze, "@")
	assert.Contains(t, dto.Maze, "G")
	assert.Len(t, repo.sessions, 1)

	want, err := maze.NewSolver(4, 5, maze.NewRand(7))
	require.NoError(t, err)
	assert.Equal(t, maze.Render(want.View()), dto.Maze)
}

func TestNewMazeDefaultsSeed(t *testing.T) {
	h, _ := newTestHandler()
	dto := create(t, newRouter(h), 3, 3)
	assert.Equal(t, uint64(1), dto.Seed)
}

func TestNewMazeBadParams(t *testing.T) {
	h, repo := newTestHandler()
	mux := newRouter(h)

	for _, target := range []string{
		"/maze?rows=1&cols=5",
		"/maze?rows=5&cols=0",
		"/maze?rows=5",
		"/maze?rows=five&cols=5",
		"/maze?rows=200000&cols=200000",
		"/maze?rows=4294967296&cols=4294967296",
		"/maze?rows=2&cols=1048577",
	} {
		rec, _ := do(t, mux, http.MethodPost, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Contains(t, rec.Body.String(), `"error"`, target)
	}
	assert.Empty(t, repo.sessions)
}

func TestFetch(t *testing.T) {
	h, _ := newTestHandler()
	mux := newRouter(h)
	created := create(t, mux, 3, 4)

	rec, dto := do(t, mux, http.MethodGet, "/maze/"+created.MazeSessionID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.Maze, dto.Maze)

	rec, _ = do(t, mux, http.MethodGet, "/maze/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, mux, http.MethodGet, "/maze/42")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStep(t *testing.T) {
	h, _ := newTestHandler()
	mux := newRouter(h)
	created := create(t, mux, 4, 5)

	// the goal is at least seven moves away
	rec, dto := do(t, mux, http.MethodPost, "/maze/"+created.MazeSessionID+"/step?count=3")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, dto.Steps)
	assert.False(t, dto.Solved)
	assert.NotEqual(t, maze.Cell{}, dto.Current)
	assert.LessOrEqual(t, len(dto.Path), 3)

	rec, dto = do(t, mux, http.MethodPost, "/maze/"+created.MazeSessionID+"/step")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, dto.Steps)

	rec, _ = do(t, mux, http.MethodPost, "/maze/"+created.MazeSessionID+"/step?count=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStepMatchesLocalSolver(t *testing.T) {
	h, _ := newTestHandler()
	mux := newRouter(h)
	rec, created := do(t, mux, http.MethodPost, "/maze?rows=6&cols=6&seed=99")
	require.Equal(t, http.StatusCreated, rec.Code)

	local, err := maze.NewSolver(6, 6, maze.NewRand(99))
	require.NoError(t, err)

	for range 10 {
		_, dto := do(t, mux, http.MethodPost, "/maze/"+created.MazeSessionID+"/step")
		_, err := local.Step()
		require.NoError(t, err)
		assert.Equal(t, local.Current(), dto.Current)
		assert.Equal(t, append([]maze.Direction{}, local.Path()...), dto.Path)
	}
}

// heldRepo makes the first two loads wait for each other, so both requests
// start from the same stored version.
type heldRepo struct {
	*memRepo
	loads   atomic.Int32
	arrived sync.WaitGroup
}

func (r *heldRepo) FetchMazeSession(ctx context.Context, id uuid.UUID) (*repository.MazeSession, error) {
	session, err := r.memRepo.FetchMazeSession(ctx, id)
	if r.loads.Add(1) <= 2 {
		r.arrived.Done()
		r.arrived.Wait()
	}
	return session, err
}

func TestConcurrentStepsAreAllApplied(t *testing.T) {
	h, mem := newTestHandler()
	created := create(t, newRouter(h), 6, 6)

	repo := &heldRepo{memRepo: mem}
	repo.arrived.Add(2)
	h.repo = repo
	mux := newRouter(h)

	var wg sync.WaitGroup
	codes := make([]int, 2)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/maze/"+created.MazeSessionID+"/step", nil))
			codes[i] = rec.Code
		}()
	}
	wg.Wait()
	assert.Equal(t, []int{http.StatusOK, http.StatusOK}, codes)

	rec, dto := do(t, mux, http.MethodGet, "/maze/"+created.MazeSessionID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, dto.Steps)

	local, err := maze.NewSolver(6, 6, maze.NewRand(1))
	require.NoError(t, err)
	for range 2 {
		_, err := local.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, local.Current(), dto.Current)
	assert.Equal(t, append([]maze.Direction{}, local.Path()...), dto.Path)
	assert.Equal(t, 2, mem.sessions[uuid.MustParse(created.MazeSessionID)].Version)
}

func TestUpdateGivesUpOnPersistentConflict(t *testing.T) {
	h, repo := newTestHandler()
	mux := newRouter(h)
	created := create(t, mux, 3, 3)
	id := uuid.MustParse(created.MazeSessionID)

	calls := 0
	_, _, err := h.update(context.Background(), id, func(s *maze.Solver) (int, *string, error) {
		calls++
		// another writer gets in before every store
		repo.mu.Lock()
		session := repo.sessions[id]
		session.Version++
		repo.sessions[id] = session
		repo.mu.Unlock()
		return take(s, 1), nil, nil
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, updateAttempts, calls)
	assert.Equal(t, 0, repo.sessions[id].Steps)

	rec := httptest.NewRecorder()
	h.sendFailure(rec, err, "unable to advance maze session")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRun(t *testing.T) {
	h, repo := newTestHandler()
	mux := newRouter(h)
	created := create(t, mux, 7, 9)

	rec, dto := do(t, mux, http.MethodPost, "/maze/"+created.MazeSessionID+"/run")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, dto.Solved)
	assert.Equal(t, "solved", dto.Phase)
	assert.Equal(t, dto.Goal, dto.Current)
	assert.LessOrEqual(t, dto.Steps, 2*7*9)

	id := uuid.MustParse(created.MazeSessionID)
	assert.True(t, repo.sessions[id].Solved)

	rec, again := do(t, mux, http.MethodPost, "/maze/"+created.MazeSessionID+"/run")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.Steps, again.Steps)
}

func TestSaveAndLoad(t *testing.T) {
	h, _ := newTestHandler()
	mux := newRouter(h)
	first := create(t, mux, 3, 3)
	second := create(t, mux, 3, 3)

	rec, dto := do(t, mux, http.MethodPost, "/maze/"+first.MazeSessionID+"/save?name=first")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, dto.Name)
	assert.Equal(t, "first", *dto.Name)

	rec, _ = do(t, mux, http.MethodPost, "/maze/"+second.MazeSessionID+"/save?name=first")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, _ = do(t, mux, http.MethodPost, "/maze/"+second.MazeSessionID+"/save?name=no/slashes")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, mux, http.MethodPost, "/maze/"+second.MazeSessionID+"/save")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, loaded := do(t, mux, http.MethodGet, "/saved/first")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, first.MazeSessionID, loaded.MazeSessionID)
	assert.Equal(t, first.Maze, loaded.Maze)

	rec, _ = do(t, mux, http.MethodGet, "/saved/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCorruptState(t *testing.T) {
	h, repo := newTestHandler()
	mux := newRouter(h)
	created := create(t, mux, 3, 3)

	id := uuid.MustParse(created.MazeSessionID)
	session := repo.sessions[id]
	session.State = []byte("not a maze")
	repo.sessions[id] = session

	rec, _ := do(t, mux, http.MethodGet, "/maze/"+created.MazeSessionID)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestConnectWS(t *testing.T) {
	h, repo := newTestHandler()
	mux := newRouter(h)
	created := create(t, mux, 5, 5)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/maze/" + created.MazeSessionID + "/connect"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	var dto MazeSessionDTO
	require.NoError(t, c.ReadJSON(&dto))
	assert.Equal(t, created.MazeSessionID, dto.MazeSessionID)
	assert.Equal(t, 0, dto.Steps)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("\n\n")))
	require.NoError(t, c.ReadJSON(&dto))
	assert.Equal(t, 1, dto.Steps)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("s walker\nr")))
	require.NoError(t, c.ReadJSON(&dto))
	assert.True(t, dto.Solved)
	require.NotNil(t, dto.Name)
	assert.Equal(t, "walker", *dto.Name)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("q")))
	require.NoError(t, c.ReadJSON(&dto))
	_, _, err = c.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "%v", err)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.True(t, repo.sessions[uuid.MustParse(created.MazeSessionID)].Solved)
}

func TestConnectWSKeepsOtherProgress(t *testing.T) {
	h, _ := newTestHandler()
	mux := newRouter(h)
	created := create(t, mux, 6, 6)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/maze/" + created.MazeSessionID + "/connect"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	var dto MazeSessionDTO
	require.NoError(t, c.ReadJSON(&dto))

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("")))
	require.NoError(t, c.ReadJSON(&dto))
	assert.Equal(t, 1, dto.Steps)

	rec, stepped := do(t, mux, http.MethodPost, "/maze/"+created.MazeSessionID+"/step?count=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, stepped.Steps)

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("")))
	require.NoError(t, c.ReadJSON(&dto))
	assert.Equal(t, 4, dto.Steps)

	local, err := maze.NewSolver(6, 6, maze.NewRand(1))
	require.NoError(t, err)
	for range 4 {
		_, err := local.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, local.Current(), dto.Current)
}

func TestConnectWSNameTaken(t *testing.T) {
	h, _ := newTestHandler()
	mux := newRouter(h)
	first := create(t, mux, 4, 4)
	second := create(t, mux, 4, 4)

	rec, _ := do(t, mux, http.MethodPost, "/maze/"+first.MazeSessionID+"/save?name=taken")
	require.Equal(t, http.StatusOK, rec.Code)

	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/maze/" + second.MazeSessionID + "/connect"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer c.Close()

	var dto MazeSessionDTO
	require.NoError(t, c.ReadJSON(&dto))

	require.NoError(t, c.WriteMessage(websocket.TextMessage, []byte("s taken\n")))
	var failure map[string]string
	require.NoError(t, c.ReadJSON(&failure))
	assert.Contains(t, failure["error"], "taken")

	require.NoError(t, c.ReadJSON(&dto))
	assert.Nil(t, dto.Name)
	assert.Equal(t, 1, dto.Steps)
}
