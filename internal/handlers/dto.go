package handlers

import (
	"fmt"
	"net/url"

	"github.com/gorilla/schema"

	"github.com/vancomm/maze-solver/internal/maze"
	"github.com/vancomm/maze-solver/internal/repository"
)

var decoder = func() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}()

type NewMazeDTO struct {
	Rows int     `schema:"rows,required"`
	Cols int     `schema:"cols,required"`
	Seed *uint64 `schema:"seed"`
}

func ParseNewMazeDTO(src url.Values) (NewMazeDTO, error) {
	var dto NewMazeDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type StepDTO struct {
	Count int `schema:"count"`
}

func ParseStepDTO(src url.Values) (StepDTO, error) {
	dto := StepDTO{Count: 1}
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if dto.Count < 1 {
		return dto, fmt.Errorf("count must be positive, got %d", dto.Count)
	}
	return dto, nil
}

type SaveDTO struct {
	Name string `schema:"name,required"`
}

func ParseSaveDTO(src url.Values) (SaveDTO, error) {
	var dto SaveDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type MazeSessionDTO struct {
	MazeSessionID string           `json:"maze_session_id"`
	Name          *string          `json:"name,omitempty"`
	Rows          int              `json:"rows"`
	Cols          int              `json:"cols"`
	Seed          uint64           `json:"seed,string"`
	Phase         string           `json:"phase"`
	Solved        bool             `json:"solved"`
	Steps         int              `json:"steps"`
	Current       maze.Cell        `json:"current"`
	Goal          maze.Cell        `json:"goal"`
	Path          []maze.Direction `json:"path"`
	Maze          string           `json:"maze"`
	CreatedAt     int64            `json:"created_at"`
	UpdatedAt     int64            `json:"updated_at"`
}

func NewMazeSessionDTO(session *repository.MazeSession, s *maze.Solver) *MazeSessionDTO {
	v := s.View()
	return &MazeSessionDTO{
		MazeSessionID: session.MazeSessionID.String(),
		Name:          session.Name,
		Rows:          s.Rows(),
		Cols:          s.Cols(),
		Seed:          uint64(session.Seed),
		Phase:         s.Phase().String(),
		Solved:        s.Solved(),
		Steps:         session.Steps,
		Current:       s.Current(),
		Goal:          v.Goal(),
		Path:          append([]maze.Direction{}, s.Path()...),
		Maze:          maze.Render(v),
		CreatedAt:     session.CreatedAt.Time.UnixMilli(),
		UpdatedAt:     session.UpdatedAt.Time.UnixMilli(),
	}
}
