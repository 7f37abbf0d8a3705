package leaderboard_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/omgplay/arcade/internal/adapters/repository"
	"github.com/omgplay/arcade/internal/domain/leaderboard"
	"github.com/omgplay/arcade/internal/domain/model"
	"github.com/omgplay/arcade/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// fakeStore is an in-memory store honoring the repository contract,
// including the conditional world-record write and the duplicate-key
// behavior on tournament inserts.
type fakeStore struct {
	mu          sync.Mutex
	records     map[int]model.WorldRecord
	tournaments []model.Tournament
	scores      []model.TournamentScore
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int]model.WorldRecord)}
}

func (f *fakeStore) addTournament(weekType string) primitive.ObjectID {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := model.Tournament{
		ID:       primitive.NewObjectID(),
		Name:     "tournament " + weekType,
		GameName: "some game",
		Prizes:   []string{"gold", "silver"},
		WeekType: weekType,
	}
	f.tournaments = append(f.tournaments, t)
	return t.ID
}

func (f *fakeStore) WorldRecord(_ context.Context, gameID int) (model.WorldRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[gameID]
	if !ok {
		return model.WorldRecord{}, repository.ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) PutWorldRecordIfHigher(_ context.Context, rec model.WorldRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.records[rec.GameID]
	if ok && cur.Score >= rec.Score {
		return false, nil
	}
	f.records[rec.GameID] = rec
	return true, nil
}

func (f *fakeStore) WorldRecords(_ context.Context) ([]model.WorldRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.WorldRecord, 0, len(f.records))
	for _, rec := range f.records {
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeStore) Tournament(_ context.Context, id primitive.ObjectID) (model.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tournaments {
		if t.ID == id {
			return t, nil
		}
	}
	return model.Tournament{}, repository.ErrNotFound
}

func (f *fakeStore) Tournaments(_ context.Context) ([]model.Tournament, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Tournament(nil), f.tournaments...), nil
}

func (f *fakeStore) sortedScores(tournamentID primitive.ObjectID) []model.TournamentScore {
	var rows []model.TournamentScore
	for _, s := range f.scores {
		if s.TournamentID == tournamentID {
			rows = append(rows, s)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	return rows
}

func (f *fakeStore) TournamentScores(_ context.Context, tournamentID primitive.ObjectID, limit int64) ([]model.TournamentScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.sortedScores(tournamentID)
	if limit > 0 && int64(len(rows)) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (f *fakeStore) InsertTournamentScore(_ context.Context, s model.TournamentScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.scores {
		if existing.TournamentID == s.TournamentID && existing.UserID == s.UserID {
			return repository.ErrConflict
		}
	}
	s.ID = primitive.NewObjectID()
	f.scores = append(f.scores, s)
	return nil
}

func (f *fakeStore) UpdateTournamentScore(_ context.Context, tournamentID, userID primitive.ObjectID, score int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.scores {
		if s.TournamentID == tournamentID && s.UserID == userID && s.Score < score {
			f.scores[i].Score = score
		}
	}
	return nil
}

func (f *fakeStore) TrimTournamentScores(_ context.Context, tournamentID primitive.ObjectID, keep int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := f.sortedScores(tournamentID)
	if int64(len(rows)) <= keep {
		return 0, nil
	}
	drop := make(map[primitive.ObjectID]bool)
	for _, s := range rows[keep:] {
		drop[s.ID] = true
	}
	var kept []model.TournamentScore
	for _, s := range f.scores {
		if !drop[s.ID] {
			kept = append(kept, s)
		}
	}
	removed := int64(len(f.scores) - len(kept))
	f.scores = kept
	return removed, nil
}

func TestEngine_SubmitWorldRecord(t *testing.T) {
	Convey("Given an engine over an empty store", t, func() {
		store := newFakeStore()
		engine := leaderboard.New(store, store)
		ctx := context.Background()
		u1 := primitive.NewObjectID()
		u2 := primitive.NewObjectID()

		Convey("When the first score for a game arrives", func() {
			isNew, err := engine.SubmitWorldRecord(ctx, 1, u1, 100)

			Convey("Then it becomes the record", func() {
				So(err, ShouldBeNil)
				So(isNew, ShouldBeTrue)
			})
		})

		Convey("When a higher score follows a lower one", func() {
			_, _ = engine.SubmitWorldRecord(ctx, 1, u1, 100)
			isNew, err := engine.SubmitWorldRecord(ctx, 1, u2, 150)

			Convey("Then it replaces the record", func() {
				So(err, ShouldBeNil)
				So(isNew, ShouldBeTrue)
				rec, _ := store.WorldRecord(ctx, 1)
				So(rec.Score, ShouldEqual, 150)
				So(rec.UserID, ShouldEqual, u2)
			})
		})

		Convey("When an equal score arrives", func() {
			_, _ = engine.SubmitWorldRecord(ctx, 1, u1, 100)
			isNew, err := engine.SubmitWorldRecord(ctx, 1, u2, 100)

			Convey("Then the incumbent keeps the record", func() {
				So(err, ShouldBeNil)
				So(isNew, ShouldBeFalse)
				rec, _ := store.WorldRecord(ctx, 1)
				So(rec.UserID, ShouldEqual, u1)
			})
		})

		Convey("When a lower score arrives", func() {
			_, _ = engine.SubmitWorldRecord(ctx, 1, u1, 100)
			isNew, err := engine.SubmitWorldRecord(ctx, 1, u2, 50)

			Convey("Then nothing changes", func() {
				So(err, ShouldBeNil)
				So(isNew, ShouldBeFalse)
				rec, _ := store.WorldRecord(ctx, 1)
				So(rec.Score, ShouldEqual, 100)
			})
		})

		Convey("When a negative score arrives", func() {
			_, err := engine.SubmitWorldRecord(ctx, 1, u1, -1)

			Convey("Then it is rejected before any store access", func() {
				So(errors.Is(err, leaderboard.ErrNegativeScore), ShouldBeTrue)
				_, err := store.WorldRecord(ctx, 1)
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When an arbitrary sequence of scores is submitted for one game", func() {
			scores := []int64{10, 5, 30, 30, 20, 45, 45, 1}
			var max int64
			for _, s := range scores {
				_, err := engine.SubmitWorldRecord(ctx, 7, primitive.NewObjectID(), s)
				So(err, ShouldBeNil)
				if s > max {
					max = s
				}
			}

			Convey("Then the stored score equals the maximum submitted", func() {
				rec, err := store.WorldRecord(ctx, 7)
				So(err, ShouldBeNil)
				So(rec.Score, ShouldEqual, max)
			})
		})

		Convey("When records are submitted across distinct games", func() {
			for game := 1; game <= 5; game++ {
				_, _ = engine.SubmitWorldRecord(ctx, game, u1, int64(game*10))
			}

			Convey("Then Records returns one entry per game with its maximum", func() {
				views, err := engine.Records(ctx)
				So(err, ShouldBeNil)
				So(len(views), ShouldEqual, 5)
				byGame := make(map[int]int64)
				for _, v := range views {
					byGame[v.GameID] = v.Score
				}
				for game := 1; game <= 5; game++ {
					So(byGame[game], ShouldEqual, int64(game*10))
				}
			})
		})
	})
}

func TestEngine_SubmitTournamentScore(t *testing.T) {
	Convey("Given an engine and a tournament", t, func() {
		store := newFakeStore()
		engine := leaderboard.New(store, store)
		ctx := context.Background()
		tid := store.addTournament(model.WeekCurrent)

		Convey("When a score for an unknown tournament is submitted", func() {
			_, err := engine.SubmitTournamentScore(ctx, primitive.NewObjectID(), primitive.NewObjectID(), "a", 10)

			Convey("Then it fails with not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When a new participant submits", func() {
			res, err := engine.SubmitTournamentScore(ctx, tid, primitive.NewObjectID(), "a", 10)

			Convey("Then they qualify", func() {
				So(err, ShouldBeNil)
				So(res.Accepted, ShouldBeTrue)
				So(res.Qualified, ShouldNotBeNil)
				So(*res.Qualified, ShouldBeTrue)
			})
		})

		Convey("When an existing participant resubmits a lower score", func() {
			u1 := primitive.NewObjectID()
			_, _ = engine.SubmitTournamentScore(ctx, tid, u1, "a", 10)
			res, err := engine.SubmitTournamentScore(ctx, tid, u1, "a", 5)

			Convey("Then the stored score and rank do not change", func() {
				So(err, ShouldBeNil)
				So(res.Accepted, ShouldBeTrue)
				So(res.Qualified, ShouldBeNil)
				rows, _ := store.TournamentScores(ctx, tid, 0)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].Score, ShouldEqual, 10)
			})
		})

		Convey("When an existing participant improves with a new username", func() {
			u1 := primitive.NewObjectID()
			_, _ = engine.SubmitTournamentScore(ctx, tid, u1, "original", 10)
			res, err := engine.SubmitTournamentScore(ctx, tid, u1, "renamed", 20)

			Convey("Then the score rises but the username stays", func() {
				So(err, ShouldBeNil)
				So(res.Accepted, ShouldBeTrue)
				rows, _ := store.TournamentScores(ctx, tid, 0)
				So(len(rows), ShouldEqual, 1)
				So(rows[0].Score, ShouldEqual, 20)
				So(rows[0].Username, ShouldEqual, "original")
			})
		})

		Convey("When 51 users submit strictly increasing scores 1..51", func() {
			for i := 1; i <= 51; i++ {
				res, err := engine.SubmitTournamentScore(ctx, tid, primitive.NewObjectID(), fmt.Sprintf("user-%d", i), int64(i))
				So(err, ShouldBeNil)
				So(res.Accepted, ShouldBeTrue)

				rows, _ := store.TournamentScores(ctx, tid, 0)
				So(len(rows), ShouldBeLessThanOrEqualTo, 50)
			}

			Convey("Then the board holds 50 entries and score 1 is gone", func() {
				rows, _ := store.TournamentScores(ctx, tid, 0)
				So(len(rows), ShouldEqual, 50)
				So(rows[len(rows)-1].Score, ShouldEqual, 2)
				for _, r := range rows {
					So(r.Score, ShouldBeGreaterThan, 1)
				}
			})
		})

		Convey("When a full board rejects a too-low score", func() {
			for i := 1; i <= 50; i++ {
				_, _ = engine.SubmitTournamentScore(ctx, tid, primitive.NewObjectID(), fmt.Sprintf("user-%d", i), int64(i+10))
			}
			res, err := engine.SubmitTournamentScore(ctx, tid, primitive.NewObjectID(), "late", 11)

			Convey("Then nothing is mutated and every stored score beats it", func() {
				So(err, ShouldBeNil)
				So(res.Qualified, ShouldNotBeNil)
				So(*res.Qualified, ShouldBeFalse)
				rows, _ := store.TournamentScores(ctx, tid, 0)
				So(len(rows), ShouldEqual, 50)
				for _, r := range rows {
					So(r.Score, ShouldBeGreaterThanOrEqualTo, 11)
				}
			})
		})

		Convey("When a score equal to the lowest on a full board arrives", func() {
			for i := 1; i <= 50; i++ {
				_, _ = engine.SubmitTournamentScore(ctx, tid, primitive.NewObjectID(), fmt.Sprintf("user-%d", i), int64(i+10))
			}
			res, err := engine.SubmitTournamentScore(ctx, tid, primitive.NewObjectID(), "tied", 11)

			Convey("Then it does not qualify", func() {
				So(err, ShouldBeNil)
				So(*res.Qualified, ShouldBeFalse)
			})
		})

		Convey("When many users submit concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 120; i++ {
				wg.Add(1)
				go func(score int64) {
					defer wg.Done()
					_, _ = engine.SubmitTournamentScore(ctx, tid, primitive.NewObjectID(), "u", score)
				}(int64(i))
			}
			wg.Wait()

			Convey("Then the board holds at most 50 rows with one per user", func() {
				rows, _ := store.TournamentScores(ctx, tid, 0)
				So(len(rows), ShouldBeLessThanOrEqualTo, 50)
				seen := make(map[primitive.ObjectID]bool)
				for _, r := range rows {
					So(seen[r.UserID], ShouldBeFalse)
					seen[r.UserID] = true
				}
			})
		})
	})
}

func TestEngine_Snapshot(t *testing.T) {
	Convey("Given tournaments for both weeks", t, func() {
		store := newFakeStore()
		engine := leaderboard.New(store, store)
		ctx := context.Background()
		current := store.addTournament(model.WeekCurrent)
		last := store.addTournament(model.WeekLast)

		for i := 1; i <= 3; i++ {
			_, _ = engine.SubmitTournamentScore(ctx, current, primitive.NewObjectID(), fmt.Sprintf("c-%d", i), int64(i*10))
		}
		_, _ = engine.SubmitTournamentScore(ctx, last, primitive.NewObjectID(), "l-1", 5)

		Convey("When a snapshot is taken", func() {
			snap, err := engine.Snapshot(ctx)

			Convey("Then both buckets are filled with dense ranks", func() {
				So(err, ShouldBeNil)
				So(snap.Current, ShouldNotBeNil)
				So(snap.Last, ShouldNotBeNil)
				So(snap.Current.TournamentID, ShouldEqual, current.Hex())
				So(len(snap.Current.Leaderboard), ShouldEqual, 3)
				So(snap.Current.Leaderboard[0].Rank, ShouldEqual, 1)
				So(snap.Current.Leaderboard[0].Score, ShouldEqual, 30)
				So(snap.Current.Leaderboard[2].Rank, ShouldEqual, 3)
				So(snap.Current.Leaderboard[2].Score, ShouldEqual, 10)
				So(len(snap.Last.Leaderboard), ShouldEqual, 1)
			})
		})

		Convey("When a tournament has an unknown week type", func() {
			store.addTournament("next")
			snap, err := engine.Snapshot(ctx)

			Convey("Then it is silently skipped", func() {
				So(err, ShouldBeNil)
				So(snap.Current.TournamentID, ShouldEqual, current.Hex())
				So(snap.Last.TournamentID, ShouldEqual, last.Hex())
			})
		})

		Convey("When two tournaments share a week type", func() {
			second := store.addTournament(model.WeekCurrent)
			snap, err := engine.Snapshot(ctx)

			Convey("Then the last one processed wins", func() {
				So(err, ShouldBeNil)
				So(snap.Current.TournamentID, ShouldEqual, second.Hex())
			})
		})
	})
}
