package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/yspahan/internal/config"
	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/events"
	"github.com/mitchelldurbincs/yspahan/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/yspahan/internal/match"
	"github.com/mitchelldurbincs/yspahan/internal/render"
	"github.com/mitchelldurbincs/yspahan/internal/store"
	"github.com/mitchelldurbincs/yspahan/internal/web"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	matchPath := flag.String("match", "", "Match file (TOML); overrides the game and robot settings")
	games := flag.Int("games", 1, "Number of games to play")
	seed := flag.Int64("seed", -1, "Seed of the first game (-1 to use config default)")
	players := flag.Int("players", 0, "Number of robot players (0 to use config default)")
	variant := flag.String("variant", "", "Robot variant for every seat (empty to use config default)")
	dbPath := flag.String("db", "", "Record games to this sqlite file (empty to use config)")
	webAddr := flag.String("web", "", "Serve the spectator feed on this address (empty to use config)")
	logLevel := flag.String("log-level", "warn", "Log level (debug, info, warn, error)")
	showMoves := flag.Bool("moves", false, "Print every move")
	every := flag.Int("summary-every", 0, "Print the board every n moves (0 prints only the final board)")
	noColor := flag.Bool("no-color", false, "Disable colour output")
	list := flag.Bool("list", false, "List recorded games and exit")
	verify := flag.String("verify", "", "Replay a recorded game, check its digests and exit")
	flag.Parse()

	if *noColor {
		color.NoColor = true
	}
	setupLogging(*logLevel)

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	if *players > 0 {
		config.Set("game.players", *players)
	}
	if *seed >= 0 {
		config.Set("game.seed", *seed)
	}
	if *variant != "" {
		config.Set("robot.variant", *variant)
		config.Set("game.seats", []string{})
	}
	cfg := config.Get()
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("Invalid settings")
	}
	if *dbPath == "" && cfg.Store.Enabled {
		*dbPath = cfg.Store.Path
	}
	if *webAddr == "" && cfg.Server.Web.Enabled {
		*webAddr = cfg.Server.Web.Addr
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var archive *store.Store
	if *dbPath != "" {
		var err error
		archive, err = store.Open(*dbPath, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open game store")
		}
		defer archive.Close()
	}

	switch {
	case *list:
		exitOn(listGames(ctx, archive))
		return
	case *verify != "":
		exitOn(verifyGame(ctx, archive, *verify))
		return
	}

	var m *match.Match
	var err error
	if *matchPath != "" {
		m, err = match.LoadFile(*matchPath)
	} else {
		m, err = match.FromConfig(cfg, *games)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid match")
	}

	bus := events.NewEventBus()
	eventLogger := subscribers.NewLoggerSubscriber("event-logger", log.Logger, zerolog.InfoLevel)
	eventLogger.SetEventFilter([]string{events.TypeGameEnded, events.TypeWeekScored})
	bus.Subscribe(eventLogger)

	var live sync.Map
	webDone := make(chan struct{})
	if *webAddr != "" {
		boards := func(id string) (*game.Board, bool) {
			s, ok := live.Load(id)
			if !ok {
				return nil, false
			}
			return s.(*game.Session).Snapshot(), true
		}
		hub := web.NewHub(boards, time.Duration(cfg.Server.Web.WriteTimeout)*time.Second, log.Logger)
		bus.Subscribe(hub)
		go func() {
			defer close(webDone)
			if err := hub.Serve(ctx, *webAddr); err != nil {
				log.Error().Err(err).Msg("Spectator feed stopped")
			}
		}()
	} else {
		close(webDone)
	}

	rc := match.RunnerConfig{
		Bus:    bus,
		Delay:  time.Duration(cfg.Robot.MoveDelay) * time.Millisecond,
		Logger: log.Logger,
	}
	if archive != nil {
		rc.Saver = archive
	}
	runner := match.NewRunner(m, rc)
	runner.OnStart = func(s *game.Session) {
		live.Store(s.ID(), s)
		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint(s.Token()), s.ID())
		if *webAddr != "" {
			fmt.Printf("watch at ws://%s/ws/%s\n", *webAddr, s.ID())
		}
	}
	runner.OnMove = func(s *game.Session, e game.Entry) {
		n := s.Len()
		if *showMoves {
			fmt.Println(render.Move(n, e.Player, e.Move.String()))
		}
		if *every > 0 && n%*every == 0 {
			fmt.Print(render.Summary(s.Snapshot()))
		}
	}

	results, err := runner.Run(ctx)
	for _, res := range results {
		if s, ok := live.Load(res.GameID); ok {
			fmt.Print(render.Summary(s.(*game.Session).Snapshot()))
		}
	}
	printStandings(m, results)
	cancel()
	<-webDone
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("Match failed")
	}
}

// printStandings counts wins per seat. A shared win counts for every
// winner.
func printStandings(m *match.Match, results []match.Result) {
	if len(results) == 0 {
		return
	}
	wins := make([]int, m.Players())
	for _, res := range results {
		for _, w := range res.Winners {
			wins[w]++
		}
	}
	fmt.Printf("\n%d games\n", len(results))
	for p, seat := range m.Seats {
		fmt.Printf("  %s %-20s %-10s %d wins\n", render.PlayerName(p), seat.Name, seat.Variant, wins[p])
	}
}

func listGames(ctx context.Context, archive *store.Store) error {
	if archive == nil {
		return errors.New("-list needs -db")
	}
	recs, err := archive.Games(ctx, 100, 0)
	if err != nil {
		return err
	}
	for _, r := range recs {
		fmt.Printf("%s  %-20s %-8s %5d moves  winners %v  %s\n",
			r.ID, r.Token, r.Status, r.Moves, r.Winners, r.Updated.Format(time.RFC3339))
	}
	return nil
}

func verifyGame(ctx context.Context, archive *store.Store, id string) error {
	if archive == nil {
		return errors.New("-verify needs -db")
	}
	sess, err := archive.Load(ctx, id, game.SessionConfig{Logger: log.Logger})
	if err != nil {
		return err
	}
	if err := sess.Verify(ctx); err != nil {
		return err
	}
	fmt.Print(render.Summary(sess.Snapshot()))
	fmt.Printf("%s: %d moves replayed, digest %d\n", id, sess.Len(), sess.Digest())
	return nil
}

func exitOn(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func setupLogging(level string) {
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    color.NoColor,
	})
}
