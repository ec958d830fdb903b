package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vancomm/maze-solver/internal/console"
	"github.com/vancomm/maze-solver/internal/maze"
	"github.com/vancomm/maze-solver/internal/repository"
	"github.com/vancomm/maze-solver/internal/store"
)

type wsCommand struct {
	cmd console.Command
	arg string
}

// apply runs cmds on s up to the first Quit. The last Save names the
// session unless named is false. A solver failure aborts the change.
func apply(cmds []wsCommand, named bool) change {
	return func(s *maze.Solver) (int, *string, error) {
		steps := 0
		var name *string
		for _, c := range cmds {
			switch c.cmd {
			case console.StepOnce:
				steps += take(s, 1)
			case console.Run:
				steps += take(s, s.MaxSteps())
			case console.Save:
				if named {
					name = &c.arg
				}
			case console.Quit:
				return steps, name, nil
			}
			if err := s.Err(); err != nil {
				return 0, nil, err
			}
		}
		return steps, name, nil
	}
}

// ConnectWS streams a session over a websocket. Every text message holds
// newline separated console commands (empty steps once, "r" runs to the
// goal, "s name" saves, "q" closes); after each message the updated
// session is written back as JSON. Each message is applied to the latest
// stored session, so progress made through other requests is kept.
func (h MazeHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, h.log, r)
	if !ok {
		return
	}
	session, solver, err := h.fetch(r.Context(), id)
	if err != nil {
		h.sendFailure(w, err, "unable to fetch maze session")
		return
	}

	c, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Error("upgrade")
		return
	}
	defer c.Close()

	log := h.log.WithField("session", id)
	send := func(v any) bool {
		c.SetWriteDeadline(time.Now().Add(h.ws.WriteTimeout))
		if err := c.WriteJSON(v); err != nil {
			log.WithError(err).Warn("write")
			return false
		}
		return true
	}

	if !send(NewMazeSessionDTO(session, solver)) {
		return
	}

	for {
		mt, message, err := c.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("read")
			}
			return
		}
		if mt != websocket.TextMessage {
			c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "text messages only"))
			return
		}

		text := strings.TrimSpace(string(message))
		log.Debug("\t> ", text)

		quit := false
		var cmds []wsCommand
		for _, line := range byPiece(text, "\n") {
			cmd, arg, err := console.ParseCommand(line)
			if err != nil {
				if !send(wrapError(err)) {
					return
				}
				continue
			}
			if cmd == console.Save && !store.ValidName(arg) {
				if !send(wrapError(store.ErrBadName)) {
					return
				}
				continue
			}
			cmds = append(cmds, wsCommand{cmd, arg})
			if cmd == console.Quit {
				quit = true
				break
			}
		}

		session, solver, err = h.update(r.Context(), id, apply(cmds, true))
		if errors.Is(err, repository.ErrNameTaken) {
			if !send(wrapError(err)) {
				return
			}
			session, solver, err = h.update(r.Context(), id, apply(cmds, false))
		}
		if err != nil {
			log.WithError(err).Error("unable to update maze session")
			c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, ""))
			return
		}
		if !send(NewMazeSessionDTO(session, solver)) {
			return
		}
		log.Debug("\t< <session data>")

		if quit {
			c.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
