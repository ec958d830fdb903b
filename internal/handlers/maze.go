package handlers

import (
	"context"
	"errors"
	"fmt"
	"hash/maphash"
	"net/http"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/maze-solver/internal/config"
	"github.com/vancomm/maze-solver/internal/maze"
	"github.com/vancomm/maze-solver/internal/repository"
	"github.com/vancomm/maze-solver/internal/store"
)

// Repository stores maze sessions. [repository.Queries] is the Postgres
// implementation.
type Repository interface {
	CreateMazeSession(ctx context.Context, params repository.CreateMazeSessionParams) (*repository.MazeSession, error)
	FetchMazeSession(ctx context.Context, id uuid.UUID) (*repository.MazeSession, error)
	FetchMazeSessionByName(ctx context.Context, name string) (*repository.MazeSession, error)
	UpdateMazeSession(ctx context.Context, id uuid.UUID, params repository.UpdateMazeSessionParams) (*repository.MazeSession, error)
}

type MazeHandler struct {
	log  logrus.FieldLogger
	repo Repository
	ws   *config.WebSocket
	seed func() uint64
}

func NewMazeHandler(log logrus.FieldLogger, repo Repository, ws *config.WebSocket) *MazeHandler {
	return &MazeHandler{
		log:  log,
		repo: repo,
		ws:   ws,
		seed: func() uint64 { return new(maphash.Hash).Sum64() },
	}
}

func encodeSolver(s *maze.Solver) ([]byte, error) {
	return s.State().Bytes()
}

func decodeSolver(session *repository.MazeSession) (*maze.Solver, error) {
	st, err := maze.DecodeState(session.State)
	if err != nil {
		return nil, err
	}
	return maze.Resume(st)
}

func (h MazeHandler) NewMaze(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseNewMazeDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.log, http.StatusBadRequest, err)
		return
	}

	seed := h.seed()
	if dto.Seed != nil {
		seed = *dto.Seed
	}

	solver, err := maze.NewSolver(dto.Rows, dto.Cols, maze.NewRand(seed))
	if errors.Is(err, maze.ErrInvalidDimension) {
		sendError(w, h.log, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.WithError(err).Error("unable to generate a new maze")
		return
	}

	state, err := encodeSolver(solver)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.WithError(err).Error("unable to encode solver state")
		return
	}

	session, err := h.repo.CreateMazeSession(r.Context(), repository.CreateMazeSessionParams{
		Rows:   dto.Rows,
		Cols:   dto.Cols,
		Seed:   int64(seed),
		Solved: solver.Solved(),
		State:  state,
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		h.log.WithError(err).Error("unable to create maze session")
		return
	}

	h.log.WithFields(logrus.Fields{
		"session": session.MazeSessionID,
		"rows":    dto.Rows,
		"cols":    dto.Cols,
	}).Debug("created maze session")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	sendJSONOrLog(w, h.log, NewMazeSessionDTO(session, solver))
}

// updateAttempts bounds how often a change is replayed on a session that
// other requests keep updating.
const updateAttempts = 5

var errCorruptState = errors.New("db returned invalid maze_session.state")

func parseID(w http.ResponseWriter, log logrus.FieldLogger, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		sendError(w, log, http.StatusBadRequest, fmt.Errorf("invalid maze session id"))
		return uuid.UUID{}, false
	}
	return id, true
}

// sendFailure maps storage and solver errors onto a response.
func (h MazeHandler) sendFailure(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, repository.ErrNameTaken), errors.Is(err, repository.ErrConflict):
		sendError(w, h.log, http.StatusConflict, err)
	default:
		w.WriteHeader(http.StatusInternalServerError)
		h.log.WithError(err).Error(msg)
	}
}

// restore decodes the solver of a fetched session.
func restore(session *repository.MazeSession, err error) (*repository.MazeSession, *maze.Solver, error) {
	if err != nil {
		return nil, nil, err
	}
	solver, err := decodeSolver(session)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errCorruptState, err)
	}
	return session, solver, nil
}

func (h MazeHandler) fetch(ctx context.Context, id uuid.UUID) (*repository.MazeSession, *maze.Solver, error) {
	return restore(h.repo.FetchMazeSession(ctx, id))
}

// take steps at most n times and returns how many steps succeeded. A
// failed step leaves its error in [maze.Solver.Err].
func take(s *maze.Solver, n int) int {
	taken := 0
	for taken < n && !s.Solved() {
		if _, err := s.Step(); err != nil {
			break
		}
		taken++
	}
	return taken
}

// change is applied to a freshly loaded solver. It reports how many steps
// it took and the name to store, if any.
type change func(s *maze.Solver) (steps int, name *string, err error)

// update loads the session, applies ch and stores the result. When another
// request stored the session in between, ch is replayed on the newer
// version, so no acknowledged change is lost.
func (h MazeHandler) update(
	ctx context.Context, id uuid.UUID, ch change,
) (*repository.MazeSession, *maze.Solver, error) {
	for attempt := 1; ; attempt++ {
		session, solver, err := h.fetch(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		steps, name, err := ch(solver)
		if err != nil {
			return nil, nil, err
		}
		updated, err := h.persist(ctx, session, solver, session.Steps+steps, name)
		if errors.Is(err, repository.ErrConflict) && attempt < updateAttempts {
			h.log.WithFields(logrus.Fields{
				"session": id,
				"attempt": attempt,
			}).Debug("maze session changed concurrently, retrying")
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return updated, solver, nil
	}
}

func (h MazeHandler) persist(
	ctx context.Context, session *repository.MazeSession, solver *maze.Solver, steps int, name *string,
) (*repository.MazeSession, error) {
	state, err := encodeSolver(solver)
	if err != nil {
		return nil, fmt.Errorf("unable to encode solver state: %w", err)
	}
	solved := solver.Solved()
	return h.repo.UpdateMazeSession(ctx, session.MazeSessionID, repository.UpdateMazeSessionParams{
		Version: session.Version,
		Name:    name,
		Solved:  &solved,
		Steps:   &steps,
		State:   &state,
	})
}

func (h MazeHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, h.log, r)
	if !ok {
		return
	}
	session, solver, err := h.fetch(r.Context(), id)
	if err != nil {
		h.sendFailure(w, err, "unable to fetch maze session")
		return
	}
	sendJSONOrLog(w, h.log, NewMazeSessionDTO(session, solver))
}

func (h MazeHandler) Load(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if !store.ValidName(name) {
		sendError(w, h.log, http.StatusBadRequest, store.ErrBadName)
		return
	}
	session, solver, err := restore(h.repo.FetchMazeSessionByName(r.Context(), name))
	if err != nil {
		h.sendFailure(w, err, "unable to load maze session")
		return
	}
	sendJSONOrLog(w, h.log, NewMazeSessionDTO(session, solver))
}

func (h MazeHandler) Step(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseStepDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.log, http.StatusBadRequest, err)
		return
	}
	h.stepAndSend(w, r, dto.Count)
}

func (h MazeHandler) Run(w http.ResponseWriter, r *http.Request) {
	h.stepAndSend(w, r, -1)
}

// stepAndSend steps count times, or until solved when count is negative.
// At most 2*rows*cols steps are taken per request.
func (h MazeHandler) stepAndSend(w http.ResponseWriter, r *http.Request, count int) {
	id, ok := parseID(w, h.log, r)
	if !ok {
		return
	}
	session, solver, err := h.update(r.Context(), id, func(s *maze.Solver) (int, *string, error) {
		n := s.MaxSteps()
		if count >= 0 {
			n = min(count, n)
		}
		taken := take(s, n)
		return taken, nil, s.Err()
	})
	if err != nil {
		h.sendFailure(w, err, "unable to advance maze session")
		return
	}
	sendJSONOrLog(w, h.log, NewMazeSessionDTO(session, solver))
}

func (h MazeHandler) Save(w http.ResponseWriter, r *http.Request) {
	dto, err := ParseSaveDTO(r.URL.Query())
	if err != nil {
		sendError(w, h.log, http.StatusBadRequest, err)
		return
	}
	if !store.ValidName(dto.Name) {
		sendError(w, h.log, http.StatusBadRequest, store.ErrBadName)
		return
	}
	id, ok := parseID(w, h.log, r)
	if !ok {
		return
	}
	session, solver, err := h.update(r.Context(), id, func(s *maze.Solver) (int, *string, error) {
		return 0, &dto.Name, nil
	})
	if err != nil {
		h.sendFailure(w, err, "unable to save maze session")
		return
	}
	sendJSONOrLog(w, h.log, NewMazeSessionDTO(session, solver))
}
