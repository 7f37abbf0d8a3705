// Package leaderboard implements the score acceptance rules: a single world
// record per game and a capped, ranked top-N list per tournament.
package leaderboard

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omgplay/arcade/internal/adapters/repository"
	"github.com/omgplay/arcade/internal/domain/model"
	"github.com/omgplay/arcade/pkg/logger"
	"github.com/omgplay/arcade/pkg/metrics"
)

// defaultCapacity caps a tournament leaderboard.
const defaultCapacity = 50

// RecordStore is the slice of the repository the world-record path needs.
type RecordStore interface {
	WorldRecord(ctx context.Context, gameID int) (model.WorldRecord, error)
	PutWorldRecordIfHigher(ctx context.Context, rec model.WorldRecord) (bool, error)
	WorldRecords(ctx context.Context) ([]model.WorldRecord, error)
}

// ScoreStore is the slice of the repository the tournament path needs.
type ScoreStore interface {
	Tournament(ctx context.Context, id primitive.ObjectID) (model.Tournament, error)
	Tournaments(ctx context.Context) ([]model.Tournament, error)
	TournamentScores(ctx context.Context, tournamentID primitive.ObjectID, limit int64) ([]model.TournamentScore, error)
	InsertTournamentScore(ctx context.Context, s model.TournamentScore) error
	UpdateTournamentScore(ctx context.Context, tournamentID, userID primitive.ObjectID, score int64) error
	TrimTournamentScores(ctx context.Context, tournamentID primitive.ObjectID, keep int64) (int64, error)
}

// SubmitResult reports the outcome of a tournament submission. Qualified is
// nil for existing participants, where qualification is not meaningful.
type SubmitResult struct {
	Accepted  bool
	Qualified *bool
}

// RecordView is the public projection of a world record.
type RecordView struct {
	GameID int   `json:"gameId"`
	Score  int64 `json:"score"`
}

// Row is one ranked leaderboard entry.
type Row struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
}

// TournamentView projects a tournament with its ranked leaderboard.
type TournamentView struct {
	TournamentID   string   `json:"tournamentId"`
	TournamentName string   `json:"tournamentName"`
	GameName       string   `json:"gameName"`
	Prizes         []string `json:"prizes"`
	Leaderboard    []Row    `json:"leaderboard"`
}

// Snapshot buckets tournaments by week type.
type Snapshot struct {
	Current *TournamentView `json:"current"`
	Last    *TournamentView `json:"last"`
}

// Engine applies the leaderboard rules on top of the document store.
// Tournament submissions are serialized per tournament with an advisory
// lock, so the non-atomic load/insert/trim sequence cannot interleave with
// itself in-process. Overflow produced by other writers is still tolerated:
// every admission trims, and reads cap at capacity.
type Engine struct {
	records  RecordStore
	scores   ScoreStore
	capacity int64
	locks    keyedMutex
	log      logger.Logger
	now      func() time.Time
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithCapacity sets the per-tournament leaderboard capacity.
func WithCapacity(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.capacity = int64(n)
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine backed by the given stores.
func New(records RecordStore, scores ScoreStore, opts ...Option) *Engine {
	e := &Engine{
		records:  records,
		scores:   scores,
		capacity: defaultCapacity,
		log:      logger.Named("leaderboard"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SubmitWorldRecord records score for gameID when it strictly beats the
// current record. A tie keeps the incumbent's user and timestamp. Returns
// whether the store now holds a new record.
func (e *Engine) SubmitWorldRecord(ctx context.Context, gameID int, userID primitive.ObjectID, score int64) (bool, error) {
	if score < 0 {
		return false, ErrNegativeScore
	}

	cur, err := e.records.WorldRecord(ctx, gameID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return false, err
	}
	if err == nil && score <= cur.Score {
		metrics.RecordWorldRecordSubmission("kept")
		return false, nil
	}

	ok, err := e.records.PutWorldRecordIfHigher(ctx, model.WorldRecord{
		GameID:    gameID,
		UserID:    userID,
		Score:     score,
		UpdatedAt: e.now(),
	})
	if err != nil {
		return false, err
	}
	if !ok {
		// A concurrent submission got there first with an equal or better
		// score; the read above was stale.
		metrics.RecordWorldRecordSubmission("kept")
		return false, nil
	}
	metrics.RecordWorldRecordSubmission("new_record")
	return true, nil
}

// SubmitTournamentScore applies the admission rules for one tournament
// submission: existing participants improve in place (strictly greater
// only), new participants enter when the board has room or their score
// beats the lowest ranked entry, and every admission trims the board back
// to capacity.
func (e *Engine) SubmitTournamentScore(ctx context.Context, tournamentID, userID primitive.ObjectID, username string, score int64) (SubmitResult, error) {
	if score < 0 {
		return SubmitResult{}, ErrNegativeScore
	}
	if _, err := e.scores.Tournament(ctx, tournamentID); err != nil {
		return SubmitResult{}, err
	}

	unlock := e.locks.lock(tournamentID.Hex())
	defer unlock()

	board, err := e.scores.TournamentScores(ctx, tournamentID, 0)
	if err != nil {
		return SubmitResult{}, err
	}
	metrics.UpdateLeaderboardSize(tournamentID.Hex(), len(board))

	for _, row := range board {
		if row.UserID != userID {
			continue
		}
		if score > row.Score {
			if err := e.scores.UpdateTournamentScore(ctx, tournamentID, userID, score); err != nil {
				return SubmitResult{}, err
			}
			metrics.RecordTournamentSubmission("improved")
		} else {
			metrics.RecordTournamentSubmission("kept")
		}
		return SubmitResult{Accepted: true}, nil
	}

	// New participant: admit on free capacity or a score strictly above the
	// lowest ranked entry. Under transient overflow the board may hold more
	// than capacity rows, so compare against the capacity-th, not the tail.
	if int64(len(board)) >= e.capacity && score <= board[e.capacity-1].Score {
		metrics.RecordTournamentSubmission("rejected")
		q := false
		return SubmitResult{Accepted: true, Qualified: &q}, nil
	}

	err = e.scores.InsertTournamentScore(ctx, model.TournamentScore{
		TournamentID: tournamentID,
		UserID:       userID,
		Username:     username,
		Score:        score,
	})
	if errors.Is(err, repository.ErrConflict) {
		// Another writer inserted this participant between our read and the
		// insert. Fall back to the improve-in-place path.
		if err := e.scores.UpdateTournamentScore(ctx, tournamentID, userID, score); err != nil {
			return SubmitResult{}, err
		}
		metrics.RecordTournamentSubmission("improved")
		return SubmitResult{Accepted: true}, nil
	}
	if err != nil {
		return SubmitResult{}, err
	}

	removed, err := e.scores.TrimTournamentScores(ctx, tournamentID, e.capacity)
	if err != nil {
		// The insert landed; readers still see at most capacity rows and the
		// next admission will trim again.
		e.log.Warn(ctx, "leaderboard trim failed",
			logger.String("tournament_id", tournamentID.Hex()), logger.Error(err))
	} else if removed > 0 {
		metrics.RecordTournamentTrim(removed)
	}

	metrics.RecordTournamentSubmission("qualified")
	q := true
	return SubmitResult{Accepted: true, Qualified: &q}, nil
}

// Snapshot projects every tournament into its week-type bucket with dense
// ranks assigned in descending score order. Unknown week types are skipped;
// when several tournaments share a week type the last one processed wins.
func (e *Engine) Snapshot(ctx context.Context) (Snapshot, error) {
	tournaments, err := e.scores.Tournaments(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	for _, t := range tournaments {
		rows, err := e.scores.TournamentScores(ctx, t.ID, e.capacity)
		if err != nil {
			return Snapshot{}, err
		}
		view := &TournamentView{
			TournamentID:   t.ID.Hex(),
			TournamentName: t.Name,
			GameName:       t.GameName,
			Prizes:         t.Prizes,
			Leaderboard:    make([]Row, len(rows)),
		}
		for i, r := range rows {
			view.Leaderboard[i] = Row{Rank: i + 1, Username: r.Username, Score: r.Score}
		}
		switch t.WeekType {
		case model.WeekCurrent:
			snap.Current = view
		case model.WeekLast:
			snap.Last = view
		}
	}
	return snap, nil
}

// Records returns the unordered projection of all world records.
func (e *Engine) Records(ctx context.Context) ([]RecordView, error) {
	recs, err := e.records.WorldRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RecordView, len(recs))
	for i, r := range recs {
		out[i] = RecordView{GameID: r.GameID, Score: r.Score}
	}
	return out, nil
}
