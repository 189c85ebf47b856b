package gamemoments

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/KTGlem/GameMoments/internal/match/domain"
	"github.com/KTGlem/GameMoments/internal/match/export"
	"github.com/KTGlem/GameMoments/internal/match/review"
	"github.com/KTGlem/GameMoments/internal/match/session"
)

// repl is the line-oriented terminal front end over a session.
type repl struct {
	session    *session.Session
	log        zerolog.Logger
	in         io.Reader
	out        io.Writer
	exportDir  string
	loggerName string

	// pendingNew holds the opponent of a 'new' command awaiting
	// confirmation while another session is still open.
	pendingNew string
}

// run reads commands until EOF, "quit", or context cancellation. Command
// errors are printed and the loop continues; only I/O failures stop it.
func (r *repl) run(ctx context.Context) error {
	r.printf("GameMoments — type 'help' for commands")
	r.prompt()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			quit, err := r.dispatch(ctx, line)
			if err != nil {
				r.printf("error: %v", err)
			}
			if quit {
				return nil
			}
			r.prompt()
		}
	}
}

func (r *repl) dispatch(ctx context.Context, line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	command, args := strings.ToLower(fields[0]), fields[1:]

	// A bare event code is the fast path during a live game.
	if code := domain.Code(strings.ToUpper(fields[0])); code.IsValid() {
		return false, r.logEvent(ctx, code)
	}

	switch command {
	case "help":
		r.printHelp()
	case "new":
		return false, r.newGame(ctx, strings.Join(args, " "))
	case "start":
		r.session.Clock().Start()
		r.printf("clock running at %s", r.session.Clock().Format())
	case "stop":
		r.session.Clock().Stop()
		r.printf("clock stopped at %s", r.session.Clock().Format())
	case "half2":
		if err := r.session.StartSecondHalf(); err != nil {
			return false, err
		}
		r.printf("second half; clock reset, start it at kickoff")
	case "end":
		if err := r.session.EndGame(); err != nil {
			return false, err
		}
		r.printStatus()
	case "resume":
		if err := r.session.Resume(); err != nil {
			return false, err
		}
		r.printf("game resumed at H%d %s; clock is stopped", r.session.Half(), r.session.Clock().Format())
	case "log":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: log <code>")
		}
		return false, r.logEvent(ctx, domain.Code(strings.ToUpper(args[0])))
	case "undo":
		event, err := r.session.Undo(ctx)
		if err != nil {
			return false, err
		}
		r.printf("undone: H%d %s %s", event.Half, domain.FormatSeconds(event.HalfSeconds), event.Code.Label())
		r.printScore()
	case "score":
		r.printScore()
	case "status":
		r.printStatus()
	case "recent":
		return false, r.printRecent(args)
	case "events":
		return false, r.printEvents(args)
	case "adjust":
		return false, r.adjust(ctx, args)
	case "games":
		return false, r.listGames(ctx)
	case "load":
		if len(args) != 1 {
			return false, fmt.Errorf("usage: load <game-id>")
		}
		return false, r.loadGame(ctx, args[0])
	case "export":
		if len(args) < 1 {
			return false, fmt.Errorf("usage: export csv|text [half=] [side=] [family=]")
		}
		return false, r.export(args[0], args[1:])
	case "codes":
		for _, code := range domain.Codes() {
			r.printf("  %-9s %s", code, code.Label())
		}
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q; try 'help'", fields[0])
	}
	return false, nil
}

func (r *repl) newGame(ctx context.Context, opponent string) error {
	// An open session is discarded by a new game; ask once before doing so.
	open := r.session.State() == session.StateActive || r.session.State() == session.StateEnded
	if open && r.pendingNew != opponent {
		r.pendingNew = opponent
		r.printf("a game is still open; repeat 'new %s' to discard it and start over", opponent)
		return nil
	}
	r.pendingNew = ""

	game, err := r.session.StartGame(ctx, domain.CreateGameInput{
		Opponent:   opponent,
		LoggerName: r.loggerName,
	})
	if err != nil {
		return err
	}
	r.printf("new game vs %s (logger %s), id %s", game.Opponent, game.LoggerName, game.ID)
	r.printf("half 1; clock at 00:00, 'start' at kickoff")
	return nil
}

func (r *repl) logEvent(ctx context.Context, code domain.Code) error {
	event, err := r.session.LogEvent(ctx, code)
	if err != nil {
		return err
	}
	r.printf("H%d %s %s", event.Half, domain.FormatSeconds(event.HalfSeconds), event.Code.Label())
	if event.Code.IsGoal() {
		r.printScore()
	}
	return nil
}

func (r *repl) printRecent(args []string) error {
	limit := 5
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("usage: recent [count]")
		}
		limit = n
	}
	events := r.session.Recent(limit)
	if len(events) == 0 {
		r.printf("no events")
		return nil
	}
	for _, event := range events {
		r.printf("H%d %s %s", event.Half, domain.FormatSeconds(event.HalfSeconds), event.Code.Label())
	}
	return nil
}

// printEvents shows the chronologically ordered list, optionally filtered
// by half=, side=, and family= arguments.
func (r *repl) printEvents(args []string) error {
	filter, err := parseFilter(args)
	if err != nil {
		return err
	}
	events := r.session.FilteredEvents(filter)
	if len(events) == 0 {
		r.printf("no matching events")
		return nil
	}
	for _, event := range events {
		r.printf("H%d %s %s", event.Half, domain.FormatSeconds(event.HalfSeconds), event.Code.Label())
	}
	return nil
}

func parseFilter(args []string) (review.Filter, error) {
	var filter review.Filter
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return review.Filter{}, fmt.Errorf("bad filter %q; use half=, side=, family=", arg)
		}
		switch strings.ToLower(key) {
		case "half":
			half, err := strconv.Atoi(value)
			if err != nil || (half != review.FirstHalf && half != review.SecondHalf) {
				return review.Filter{}, fmt.Errorf("half must be 1 or 2")
			}
			filter.Half = half
		case "side":
			side := domain.Side(strings.ToUpper(value))
			if side != domain.SidePFC && side != domain.SideOpp {
				return review.Filter{}, fmt.Errorf("side must be PFC or OPP")
			}
			filter.Side = side
		case "family":
			family := domain.Family(strings.ToUpper(value))
			if _, ok := domain.FamilyLabel(family); !ok {
				return review.Filter{}, fmt.Errorf("family must be one of GK, CK, FK, KO, SO, GOAL")
			}
			filter.Family = family
		default:
			return review.Filter{}, fmt.Errorf("unknown filter key %q", key)
		}
	}
	return filter, nil
}

func (r *repl) adjust(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: adjust <h1-offset> <h2-offset> (seconds, signed)")
	}
	firstOffset, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad first-half offset %q", args[0])
	}
	secondOffset, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad second-half offset %q", args[1])
	}
	if err := r.session.AdjustTimes(ctx, firstOffset, secondOffset); err != nil {
		return err
	}
	r.printf("times adjusted (H1 %+d, H2 %+d)", firstOffset, secondOffset)
	return nil
}

func (r *repl) listGames(ctx context.Context) error {
	games, err := r.session.SavedGames(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		r.printf("no saved games")
		return nil
	}
	for _, game := range games {
		r.printf("%s  %s  vs %s (%s)", game.ID, game.Date.Format("2006-01-02"), game.Opponent, game.LoggerName)
	}
	return nil
}

func (r *repl) loadGame(ctx context.Context, gameID string) error {
	if err := r.session.LoadGame(ctx, gameID); err != nil {
		return err
	}
	game, _ := r.session.Game()
	r.printf("reviewing %s vs %s (%d events, read-only)", game.Date.Format("2006-01-02"), game.Opponent, len(r.session.Events()))
	r.printScore()
	return nil
}

// export serializes the chronological view, optionally narrowed by the same
// filter arguments as 'events', and writes it next to the store.
func (r *repl) export(format string, filterArgs []string) error {
	game, ok := r.session.Game()
	if !ok {
		return session.ErrNoGame
	}
	filter, err := parseFilter(filterArgs)
	if err != nil {
		return err
	}
	events := r.session.FilteredEvents(filter)

	var content, extension string
	switch strings.ToLower(format) {
	case "csv":
		extension = "csv"
		content, err = export.RenderCSV(game, events)
	case "text", "txt":
		extension = "txt"
		content, err = export.RenderText(game, events)
	default:
		return fmt.Errorf("unknown export format %q; use csv or text", format)
	}
	if err != nil {
		return err
	}

	path := filepath.Join(r.exportDir, export.Filename(game, extension))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	r.printf("exported %d events to %s", len(events), path)
	return nil
}

func (r *repl) printScore() {
	board := r.session.Scoreboard()
	r.printf("score PFC %d — OPP %d", board.PFC, board.Opp)
}

func (r *repl) printStatus() {
	switch r.session.State() {
	case session.StateIdle:
		r.printf("no game; 'new <opponent>' to start one")
	case session.StateActive:
		running := "stopped"
		if r.session.Clock().Running() {
			running = "running"
		}
		r.printf("live, H%d, clock %s (%s)", r.session.Half(), r.session.Clock().Format(), running)
		r.printScore()
	case session.StateEnded:
		r.printf("game over; 'resume' to reopen, 'export' to save")
		r.printScore()
	case session.StateReviewing:
		game, _ := r.session.Game()
		r.printf("reviewing saved game vs %s (read-only)", game.Opponent)
		r.printScore()
	}
}

func (r *repl) printHelp() {
	r.printf("game:    new <opponent> | half2 | end | resume | status")
	r.printf("clock:   start | stop")
	r.printf("events:  <code> (see 'codes') | log <code> | undo | score | recent [n]")
	r.printf("review:  events [half=1|2] [side=PFC|OPP] [family=GK|CK|FK|KO|SO|GOAL]")
	r.printf("fix-ups: adjust <h1-seconds> <h2-seconds>")
	r.printf("saved:   games | load <game-id>")
	r.printf("export:  export csv|text [half=] [side=] [family=]")
	r.printf("other:   help | codes | quit")
}

func (r *repl) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *repl) prompt() {
	fmt.Fprint(r.out, "> ")
}
