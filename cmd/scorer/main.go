// cmd/scorer/main.go
//
// Line-oriented terminal scorekeeper. Every action applies to local
// state immediately and is queued for the server; the syncer flushes
// in the background and quit performs a save-and-exit flush.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crtorres/canasta/internal/config"
	"github.com/crtorres/canasta/internal/models"
	"github.com/crtorres/canasta/internal/scoring"
	"github.com/crtorres/canasta/internal/stats"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	serverURL := flag.String("server", "", "server base URL (overrides config)")
	gameID := flag.String("game", "", "game id to score")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	baseURL := cfg.App.BaseURL
	if *serverURL != "" {
		baseURL = *serverURL
	}

	store, err := scoring.NewFileStore(cfg.Sync.StateDir)
	if err != nil {
		fatalf("open state dir: %v", err)
	}
	session := scoring.NewSession(store)
	remote := scoring.NewHTTPRemote(baseURL, cfg.Sync.RequestTimeout)

	resumed, err := session.Resume()
	if err != nil {
		fatalf("resume state: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := loadGame(ctx, session, remote, *gameID, resumed); err != nil {
		fatalf("load game: %v", err)
	}

	syncer := scoring.NewSyncer(session, remote, cfg.Sync.FlushInterval, func(msg string) {
		fmt.Println(">> " + msg)
	})
	go syncer.Run(ctx)

	fmt.Println("Scoring " + describeGame(session.Game()))
	fmt.Println(`Commands: shot <player> <points> <made|missed> | event <player> <rebound|assist|foul> | period <1-4> | status <scheduled|live|finished> | board | plays | sync | online | quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("[%s, %d pending] > ", session.SyncStatus(), session.PendingCount())
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			exitCtx, exitCancel := context.WithTimeout(context.Background(), cfg.Sync.RequestTimeout)
			err := syncer.SaveAndExit(exitCtx)
			exitCancel()
			if err != nil {
				fmt.Printf("save failed, state kept on disk: %v\n", err)
				os.Exit(1)
			}
			return
		}
		if err := runCommand(ctx, session, syncer, line); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func loadGame(ctx context.Context, session *scoring.Session, remote scoring.Remote, gameID string, resumed bool) error {
	if resumed && gameID == "" {
		game := session.Game()
		if game != nil {
			gameID = game.ID
			fmt.Printf("Resumed saved session for game %s\n", gameID)
		}
	}
	if gameID == "" {
		return errors.New("no saved session; -game is required")
	}

	fetched, err := remote.FetchGame(ctx, gameID)
	if err != nil {
		if resumed {
			// Offline start: keep scoring against the saved state.
			fmt.Printf("Server unreachable (%v), continuing offline\n", err)
			return nil
		}
		return err
	}
	return session.Initialize(fetched)
}

func runCommand(ctx context.Context, session *scoring.Session, syncer *scoring.Syncer, line string) error {
	fields := strings.Fields(line)
	game := session.Game()
	if game == nil {
		return errors.New("no game loaded")
	}

	switch fields[0] {
	case "shot":
		if len(fields) != 4 {
			return errors.New("usage: shot <player> <points> <made|missed>")
		}
		points, err := strconv.Atoi(fields[2])
		if err != nil {
			return fmt.Errorf("points: %w", err)
		}
		made := fields[3] == "made"
		return session.ApplyDelta(models.NewShotDelta(fields[1], game.CurrentPeriod, points, made))

	case "event":
		if len(fields) != 3 {
			return errors.New("usage: event <player> <rebound|assist|foul>")
		}
		return session.ApplyDelta(models.NewEventDelta(fields[1], game.CurrentPeriod, models.EventType(fields[2])))

	case "period":
		if len(fields) != 2 {
			return errors.New("usage: period <1-4>")
		}
		period, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("period: %w", err)
		}
		return session.SetPeriod(period)

	case "status":
		if len(fields) != 2 {
			return errors.New("usage: status <scheduled|live|finished>")
		}
		return session.SetStatus(models.GameStatus(fields[1]))

	case "board":
		printBoard(game)
		return nil

	case "plays":
		for _, play := range session.Plays() {
			fmt.Printf("  %s  [%s] %s\n", play.Time, play.TeamName, play.Summary)
		}
		return nil

	case "sync":
		return syncer.Flush(ctx)

	case "online":
		syncer.NotifyOnline()
		return nil
	}
	return fmt.Errorf("unknown command %q", fields[0])
}

func printBoard(game *models.Game) {
	fmt.Printf("%s  [P%d, %s]\n", describeGame(game), game.CurrentPeriod, game.Status)
	for _, team := range []models.TeamInGame{game.HomeTeam, game.AwayTeam} {
		fmt.Printf("  %s: %d\n", team.Name, stats.TeamScore(team.Players))
		for _, p := range team.Players {
			totals := stats.PlayerTotalsFor(p.StatsByPeriod)
			fmt.Printf("    #%-2d %-20s pts %2d  reb %2d  ast %2d  pf %d  (%s)\n",
				p.Player.Number, p.Player.Name,
				totals.Points, totals.Rebounds, totals.Assists, totals.Fouls, p.Player.ID)
		}
	}
}

func describeGame(game *models.Game) string {
	if game == nil {
		return "no game"
	}
	return fmt.Sprintf("%s vs %s (%s)", game.HomeTeam.Name, game.AwayTeam.Name, game.ID)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
