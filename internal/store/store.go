// Package store keeps game records in sqlite. Every statement lives in an
// embedded sql/ file: create-* files run once when the store opens,
// select-* files are prepared on the read connection and everything else on
// the single write connection.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/yspahan/internal/game"
	"github.com/mitchelldurbincs/yspahan/internal/game/core"
)

//go:embed sql/*.sql
var sqlDir embed.FS

// ErrNotFound is returned for an unknown game id.
var ErrNotFound = errors.New("game not found")

// Game status values.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
)

// GameRecord is one row of the game table.
type GameRecord struct {
	ID      string
	Token   string
	Players int
	Status  string
	Moves   int
	Digest  int64
	Winners []int
	Scores  []int
	Created time.Time
	Updated time.Time
}

// MoveRecord is one recorded move.
type MoveRecord struct {
	Index  int
	Player int
	Text   string
	State  string
	Digest int64
}

// Store is a sqlite game archive.
type Store struct {
	read  *sql.DB
	write *sql.DB

	queries  map[string]*sql.Stmt
	commands map[string]*sql.Stmt
	logger   zerolog.Logger
}

// Open opens or creates the archive at file.
func Open(file string, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "store").Str("file", file).Logger()
	read, err := sql.Open("sqlite3", file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	read.SetConnMaxLifetime(0)
	read.SetMaxIdleConns(1)

	write, err := sql.Open("sqlite3", file)
	if err != nil {
		read.Close()
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	write.SetConnMaxLifetime(0)
	write.SetMaxIdleConns(1)
	write.SetMaxOpenConns(1)

	s := &Store{
		read:     read,
		write:    write,
		queries:  make(map[string]*sql.Stmt),
		commands: make(map[string]*sql.Stmt),
		logger:   logger,
	}
	if err := s.prepare(); err != nil {
		s.Close()
		return nil, err
	}
	logger.Info().Int("queries", len(s.queries)).Int("commands", len(s.commands)).Msg("Game store ready")
	return s, nil
}

func (s *Store) prepare() error {
	for _, pragma := range []string{
		"journal_mode = WAL",
		"synchronous = normal",
		"foreign_keys = on",
	} {
		if _, err := s.write.Exec("PRAGMA " + pragma + ";"); err != nil {
			return fmt.Errorf("pragma %s: %w", pragma, err)
		}
	}

	entries, err := sqlDir.ReadDir("sql")
	if err != nil {
		return err
	}
	// tables first, so the statements can be prepared against them
	var later []fs.DirEntry
	for _, entry := range entries {
		base := path.Base(entry.Name())
		if !strings.HasPrefix(base, "create-") {
			later = append(later, entry)
			continue
		}
		data, err := fs.ReadFile(sqlDir, path.Join("sql", base))
		if err != nil {
			return err
		}
		if _, err := s.write.Exec(string(data)); err != nil {
			return fmt.Errorf("%s: %w", base, err)
		}
		s.logger.Debug().Str("file", base).Msg("Executed schema")
	}
	for _, entry := range later {
		base := path.Base(entry.Name())
		data, err := fs.ReadFile(sqlDir, path.Join("sql", base))
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(base, ".sql")
		if strings.HasPrefix(name, "select-") {
			s.queries[name], err = s.read.Prepare(string(data))
		} else {
			s.commands[name], err = s.write.Prepare(string(data))
		}
		if err != nil {
			return fmt.Errorf("%s: %w", base, err)
		}
	}
	if len(s.queries) == 0 {
		return errors.New("no queries loaded")
	}
	return nil
}

// Close releases both connections.
func (s *Store) Close() error {
	for _, stmt := range s.queries {
		stmt.Close()
	}
	for _, stmt := range s.commands {
		stmt.Close()
	}
	werr := s.write.Close()
	if err := s.read.Close(); err != nil {
		return err
	}
	return werr
}

// SaveSession writes the game and the moves recorded since the last save.
// Moves undone since then are dropped first.
func (s *Store) SaveSession(ctx context.Context, sess *game.Session) error {
	hist, snap := sess.Record()
	rec := GameRecord{
		ID:      sess.ID(),
		Token:   snap.Token(),
		Players: snap.Players(),
		Status:  StatusRunning,
		Moves:   len(hist),
		Digest:  snap.Digest(),
	}
	if snap.GameOver() {
		rec.Status = StatusFinished
		rec.Winners = snap.Winners()
		rec.Scores = snap.Scores()
	}

	tx, err := s.write.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stored, err := s.storedMoves(ctx, tx, rec.ID)
	if err != nil {
		tx.Rollback()
		return err
	}
	keep := 0
	for keep < len(stored) && keep < len(hist) && stored[keep] == hist[keep].Digest {
		keep++
	}
	if err := s.saveGame(ctx, tx, rec); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Stmt(s.commands["delete-moves"]).ExecContext(ctx, rec.ID, keep); err != nil {
		tx.Rollback()
		return err
	}
	insert := tx.Stmt(s.commands["insert-move"])
	for i := keep; i < len(hist); i++ {
		e := hist[i]
		if _, err := insert.ExecContext(ctx, rec.ID, i, e.Player, e.Move.String(), e.State.String(), e.Digest); err != nil {
			tx.Rollback()
			return fmt.Errorf("move %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.logger.Debug().Str("game_id", rec.ID).Int("kept", keep).Int("written", len(hist)-keep).Msg("Saved game")
	return nil
}

// storedMoves lists the digests already stored for id. It reads through the
// write connection so it sees the transaction.
func (s *Store) storedMoves(ctx context.Context, tx *sql.Tx, id string) ([]int64, error) {
	rows, err := tx.Stmt(s.commands["digest-moves"]).QueryContext(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var d int64
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) saveGame(ctx context.Context, tx *sql.Tx, rec GameRecord) error {
	_, err := tx.Stmt(s.commands["insert-game"]).ExecContext(ctx,
		rec.ID, rec.Token, rec.Players, rec.Status, rec.Moves, rec.Digest,
		joinInts(rec.Winners), joinInts(rec.Scores))
	return err
}

// Delete removes a game and its moves.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.commands["delete-game"].ExecContext(ctx, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Game reads one game row.
func (s *Store) Game(ctx context.Context, id string) (GameRecord, error) {
	rec, err := scanGame(s.queries["select-game"].QueryRowContext(ctx, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec, err
}

// Games lists games, most recently updated first.
func (s *Store) Games(ctx context.Context, limit, offset int) ([]GameRecord, error) {
	rows, err := s.queries["select-games"].QueryContext(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GameRecord
	for rows.Next() {
		rec, err := scanGame(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Moves lists the recorded moves of a game in order.
func (s *Store) Moves(ctx context.Context, id string) ([]MoveRecord, error) {
	rows, err := s.queries["select-moves"].QueryContext(ctx, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MoveRecord
	for rows.Next() {
		var m MoveRecord
		if err := rows.Scan(&m.Index, &m.Player, &m.Text, &m.State, &m.Digest); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Load replays a stored game into a new session and checks every digest
// against the record.
func (s *Store) Load(ctx context.Context, id string, cfg game.SessionConfig) (*game.Session, error) {
	rec, err := s.Game(ctx, id)
	if err != nil {
		return nil, err
	}
	moves, err := s.Moves(ctx, id)
	if err != nil {
		return nil, err
	}
	texts := make([]string, len(moves))
	for i, m := range moves {
		texts[i] = m.Text
	}
	cfg.Token = rec.Token
	cfg.GameID = rec.ID
	sess, err := game.Load(ctx, cfg, texts)
	if err != nil {
		return nil, err
	}
	hist := sess.History()
	for i, m := range moves {
		if i >= len(hist) || hist[i].Digest != m.Digest {
			got := int64(0)
			if i < len(hist) {
				got = hist[i].Digest
			}
			err := &core.ReplayDivergenceError{Index: i, Want: m.Digest, Got: got}
			s.logger.Error().Err(err).Str("game_id", id).Msg("Stored game does not replay")
			return nil, err
		}
	}
	if sess.Digest() != rec.Digest {
		return nil, &core.ReplayDivergenceError{Index: len(moves), Want: rec.Digest, Got: sess.Digest()}
	}
	return sess, nil
}

func scanGame(scan func(dest ...any) error) (GameRecord, error) {
	var rec GameRecord
	var winners, scores string
	err := scan(&rec.ID, &rec.Token, &rec.Players, &rec.Status, &rec.Moves, &rec.Digest,
		&winners, &scores, &rec.Created, &rec.Updated)
	if err != nil {
		return rec, err
	}
	if rec.Winners, err = splitInts(winners); err != nil {
		return rec, err
	}
	rec.Scores, err = splitInts(scores)
	return rec, err
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("bad number list %q: %w", s, err)
		}
		out[i] = n
	}
	return out, nil
}
