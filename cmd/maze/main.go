package main

import (
	"context"
	"flag"
	"fmt"
	"hash/maphash"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/maze-solver/internal/config"
	"github.com/vancomm/maze-solver/internal/console"
	"github.com/vancomm/maze-solver/internal/maze"
	"github.com/vancomm/maze-solver/internal/store"
	"github.com/vancomm/maze-solver/internal/tui"
)

var (
	log = logrus.New()

	rows   int
	cols   int
	seed   uint64
	resume string
	dir    string
	delay  time.Duration
	useTUI bool
	list   bool
	remove string
)

func init() {
	flag.IntVar(&rows, "rows", 10, "number of rows")
	flag.IntVar(&cols, "cols", 10, "number of columns")
	flag.Uint64Var(&seed, "seed", 0, "maze seed (random if 0)")
	flag.StringVar(&resume, "resume", "", "name of a save to continue")
	flag.StringVar(&dir, "dir", "", "save directory (default $MAZE_SAVE_DIR or ./saves)")
	flag.DurationVar(&delay, "delay", 0, "pause after every build and solve step")
	flag.BoolVar(&useTUI, "tui", false, "draw the maze with a full screen terminal UI")
	flag.BoolVar(&list, "list", false, "print the names of all saves and exit")
	flag.StringVar(&remove, "delete", "", "delete the named save and exit")
}

// newSolver restores the save named by -resume or builds a fresh maze,
// showing every carve through hook.
func newSolver(files *store.Files, hook maze.Hook) (*maze.Solver, error) {
	if resume != "" {
		st, err := files.Load(resume)
		if err != nil {
			return nil, err
		}
		log.WithField("name", resume).Info("resuming")
		return maze.Resume(st)
	}

	if seed == 0 {
		seed = new(maphash.Hash).Sum64()
	}
	log.WithFields(logrus.Fields{
		"rows": rows,
		"cols": cols,
		"seed": seed,
	}).Info("building maze")

	g, err := maze.NewGrid(rows, cols)
	if err != nil {
		return nil, err
	}
	if err := maze.Generate(g, maze.NewRand(seed), hook); err != nil {
		return nil, err
	}
	return maze.Resume(&maze.State{Grid: g, Visited: make([]bool, rows*cols)})
}

func pause(d time.Duration) maze.Hook {
	if d <= 0 {
		return nil
	}
	return func(maze.View) { time.Sleep(d) }
}

func run(ctx context.Context) error {
	if dir == "" {
		dir = config.SaveDir()
	}
	files, err := store.NewFiles(dir)
	if err != nil {
		return err
	}

	switch {
	case list:
		names, err := files.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	case remove != "":
		return files.Delete(remove)
	}

	if !useTUI {
		solver, err := newSolver(files, pause(delay))
		if err != nil {
			return err
		}
		solver.SetHook(pause(delay))
		session := &console.Session{
			Solver:  solver,
			Input:   console.NewLines(os.Stdin, os.Stdout),
			Display: console.Text{W: os.Stdout},
			Saver:   files,
			Out:     os.Stdout,
			Log:     log,
		}
		return session.Run(ctx)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	saveName := resume
	if saveName == "" {
		saveName = time.Now().Format("20060102-150405")
	}
	display := tui.New(screen, saveName)

	solver, err := newSolver(files, display.Hook(delay))
	if err != nil {
		return err
	}
	solver.SetHook(display.Hook(delay))

	session := &console.Session{
		Solver:  solver,
		Input:   display,
		Display: display,
		Saver:   files,
		Log:     log,
	}
	if err := session.Run(ctx); err != nil {
		return err
	}
	if solver.Solved() {
		display.SetStatus("goal reached, press q to exit")
		display.Next()
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	flag.Parse()

	if err := config.LoadEnv(); err != nil {
		log.Fatal("unable to load .env: ", err)
	}
	logger, err := config.NewLogger()
	if err != nil {
		log.Fatal("unable to set up logging: ", err)
	}
	log = logger
	maze.Log = logger
	if useTUI {
		log.SetOutput(io.Discard)
	}

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}
