package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type MazeSession struct {
	MazeSessionID uuid.UUID          `db:"maze_session_id"`
	Name          *string            `db:"name"`
	Rows          int                `db:"row_count"`
	Cols          int                `db:"col_count"`
	Seed          int64              `db:"seed"`
	Solved        bool               `db:"solved"`
	Steps         int                `db:"steps"`
	State         []byte             `db:"state"`
	Version       int                `db:"version"`
	CreatedAt     pgtype.Timestamptz `db:"created_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at"`
}

type CreateMazeSessionParams struct {
	Rows   int
	Cols   int
	Seed   int64
	Solved bool
	State  []byte
}

func (q *Queries) CreateMazeSession(
	ctx context.Context, params CreateMazeSessionParams,
) (*MazeSession, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO maze_session (
			maze_session_id, row_count, col_count, seed, solved, state
		)
		VALUES (
			@maze_session_id, @row_count, @col_count, @seed, @solved, @state
		)
		RETURNING *;`,
		pgx.NamedArgs{
			"maze_session_id": uuid.New(),
			"row_count":       params.Rows,
			"col_count":       params.Cols,
			"seed":            params.Seed,
			"solved":          params.Solved,
			"state":           params.State,
		},
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[MazeSession])
	return session, translate(err)
}

func (q *Queries) FetchMazeSession(ctx context.Context, id uuid.UUID) (*MazeSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM maze_session WHERE maze_session_id = $1",
		id,
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[MazeSession])
	return session, translate(err)
}

func (q *Queries) FetchMazeSessionByName(ctx context.Context, name string) (*MazeSession, error) {
	rows, _ := q.db.Query(
		ctx,
		"SELECT * FROM maze_session WHERE name = $1",
		name,
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[MazeSession])
	return session, translate(err)
}

// UpdateMazeSessionParams changes a session only if it is still at Version,
// the version it had when it was fetched.
type UpdateMazeSessionParams struct {
	Version int
	Name    *string
	Solved  *bool
	Steps   *int
	State   *[]byte
}

func (p UpdateMazeSessionParams) SetClause() (string, pgx.NamedArgs) {
	parts := make([]string, 0)
	args := make(pgx.NamedArgs)

	if p.Name != nil {
		parts = append(parts, "name = @name")
		args["name"] = *p.Name
	}
	if p.Solved != nil {
		parts = append(parts, "solved = @solved")
		args["solved"] = *p.Solved
	}
	if p.Steps != nil {
		parts = append(parts, "steps = @steps")
		args["steps"] = *p.Steps
	}
	if p.State != nil {
		parts = append(parts, "state = @state")
		args["state"] = *p.State
	}

	if len(parts) > 0 {
		parts = append(parts, "version = version + 1")
	}
	args["version"] = p.Version

	return strings.Join(parts, ", "), args
}

// UpdateMazeSession changes the set fields of a session and bumps its
// version. Setting a name already used by another session fails with
// [ErrNameTaken]; a session updated since params.Version was read fails
// with [ErrConflict].
func (q *Queries) UpdateMazeSession(
	ctx context.Context, id uuid.UUID, params UpdateMazeSessionParams,
) (*MazeSession, error) {
	setClause, args := params.SetClause()
	if setClause == "" {
		return q.FetchMazeSession(ctx, id)
	}
	args["maze_session_id"] = id
	rows, _ := q.db.Query(
		ctx,
		`UPDATE maze_session SET `+setClause+`
		WHERE maze_session_id = @maze_session_id AND version = @version
		RETURNING *`,
		args,
	)
	session, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[MazeSession])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, q.missingOrConflict(ctx, id)
	}
	return session, translate(err)
}

// missingOrConflict tells apart an update that matched no session from one
// that lost a race.
func (q *Queries) missingOrConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := q.db.QueryRow(
		ctx,
		"SELECT EXISTS (SELECT 1 FROM maze_session WHERE maze_session_id = $1)",
		id,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return ErrConflict
	}
	return ErrNotFound
}
