package app

import (
	"github.com/vancomm/maze-solver/internal/handlers"
)

func (a *App) loadRoutes(repo handlers.Repository) {
	maze := handlers.NewMazeHandler(a.log, repo, a.ws)

	a.router.HandleFunc("POST /maze", maze.NewMaze)
	a.router.HandleFunc("GET /maze/{id}", maze.Fetch)
	a.router.HandleFunc("POST /maze/{id}/step", maze.Step)
	a.router.HandleFunc("POST /maze/{id}/run", maze.Run)
	a.router.HandleFunc("POST /maze/{id}/save", maze.Save)
	a.router.HandleFunc("GET /saved/{name}", maze.Load)
	a.router.HandleFunc("/maze/{id}/connect", maze.ConnectWS)
}
