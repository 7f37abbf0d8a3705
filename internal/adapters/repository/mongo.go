package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/omgplay/arcade/internal/domain/model"
	"github.com/omgplay/arcade/pkg/logger"
	"github.com/omgplay/arcade/pkg/metrics"
)

// Collection names follow the original database layout.
const (
	colUsers            = "users"
	colGames            = "games"
	colCategories       = "category"
	colBundles          = "bundles"
	colWorldRecords     = "world_records"
	colTournaments      = "tournaments"
	colTournamentScores = "tournament_scores"
)

// MongoStore implements Store against a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	log    logger.Logger

	connectTimeout time.Duration
}

var _ Store = (*MongoStore)(nil)

// NewMongo connects to MongoDB, verifies the connection, and ensures the
// indexes backing the leaderboard invariants: a unique index on
// world_records.game_id (one record per game) and a unique compound index
// on tournament_scores (tournament_id, user_id) (one row per participant).
func NewMongo(ctx context.Context, uri, database string, opts ...Option) (*MongoStore, error) {
	s := &MongoStore{
		log:            logger.Named("repository"),
		connectTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}

	connectCtx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s.client = client
	s.db = client.Database(database)

	if err := s.ensureIndexes(connectCtx); err != nil {
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	s.log.Info(ctx, "connected to document store", logger.String("database", database))
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(colWorldRecords).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "game_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = s.db.Collection(colTournamentScores).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "tournament_id", Value: 1}, {Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "tournament_id", Value: 1}, {Key: "score", Value: -1}},
		},
	})
	return err
}

// CreateUser inserts a new user document and returns its generated key.
func (s *MongoStore) CreateUser(ctx context.Context, u model.User) (primitive.ObjectID, error) {
	defer observeWrite(time.Now())
	res, err := s.db.Collection(colUsers).InsertOne(ctx, u)
	if err != nil {
		metrics.RecordStoreError()
		return primitive.NilObjectID, fmt.Errorf("insert user: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert user: unexpected id type %T", res.InsertedID)
	}
	return id, nil
}

// User fetches a user by its key. Returns ErrNotFound when absent.
func (s *MongoStore) User(ctx context.Context, id primitive.ObjectID) (model.User, error) {
	defer observeQuery(time.Now())
	var u model.User
	err := s.db.Collection(colUsers).FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError()
		return model.User{}, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// Games returns all game documents.
func (s *MongoStore) Games(ctx context.Context) ([]model.Game, error) {
	return findAll[model.Game](ctx, s.db.Collection(colGames), nil)
}

// Categories returns all category documents.
func (s *MongoStore) Categories(ctx context.Context) ([]model.Category, error) {
	return findAll[model.Category](ctx, s.db.Collection(colCategories), nil)
}

// Bundles returns all bundle documents.
func (s *MongoStore) Bundles(ctx context.Context) ([]model.Bundle, error) {
	return findAll[model.Bundle](ctx, s.db.Collection(colBundles), nil)
}

// WorldRecord fetches the record for a game. Returns ErrNotFound when the
// game has no record yet.
func (s *MongoStore) WorldRecord(ctx context.Context, gameID int) (model.WorldRecord, error) {
	defer observeQuery(time.Now())
	var rec model.WorldRecord
	err := s.db.Collection(colWorldRecords).FindOne(ctx, bson.M{"game_id": gameID}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return model.WorldRecord{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError()
		return model.WorldRecord{}, fmt.Errorf("find world record: %w", err)
	}
	return rec, nil
}

// PutWorldRecordIfHigher writes rec only while rec.Score is strictly above
// the stored score, or when no record exists. The guard lives in the update
// filter so concurrent submissions cannot overwrite a better score; the
// unique game_id index closes the insert race. Returns whether the store
// now holds rec.
func (s *MongoStore) PutWorldRecordIfHigher(ctx context.Context, rec model.WorldRecord) (bool, error) {
	defer observeWrite(time.Now())
	col := s.db.Collection(colWorldRecords)
	set := bson.M{"$set": bson.M{
		"user_id":    rec.UserID,
		"score":      rec.Score,
		"updated_at": rec.UpdatedAt,
	}}

	// Conditional update: matches only when the stored score is lower.
	res, err := col.UpdateOne(ctx, bson.M{"game_id": rec.GameID, "score": bson.M{"$lt": rec.Score}}, set)
	if err != nil {
		metrics.RecordStoreError()
		return false, fmt.Errorf("update world record: %w", err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	// Nothing matched: either no record exists or the incumbent is >= rec.
	err = col.FindOne(ctx, bson.M{"game_id": rec.GameID}).Err()
	if err == nil {
		return false, nil
	}
	if err != mongo.ErrNoDocuments {
		metrics.RecordStoreError()
		return false, fmt.Errorf("find world record: %w", err)
	}

	if _, err := col.InsertOne(ctx, rec); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Lost the first-insert race; retry the guarded update once.
			res, err := col.UpdateOne(ctx, bson.M{"game_id": rec.GameID, "score": bson.M{"$lt": rec.Score}}, set)
			if err != nil {
				metrics.RecordStoreError()
				return false, fmt.Errorf("update world record: %w", err)
			}
			return res.MatchedCount > 0, nil
		}
		metrics.RecordStoreError()
		return false, fmt.Errorf("insert world record: %w", err)
	}
	return true, nil
}

// WorldRecords returns every world record document, unordered.
func (s *MongoStore) WorldRecords(ctx context.Context) ([]model.WorldRecord, error) {
	return findAll[model.WorldRecord](ctx, s.db.Collection(colWorldRecords), nil)
}

// Tournament fetches a tournament by its key. Returns ErrNotFound when absent.
func (s *MongoStore) Tournament(ctx context.Context, id primitive.ObjectID) (model.Tournament, error) {
	defer observeQuery(time.Now())
	var t model.Tournament
	err := s.db.Collection(colTournaments).FindOne(ctx, bson.M{"_id": id}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return model.Tournament{}, ErrNotFound
	}
	if err != nil {
		metrics.RecordStoreError()
		return model.Tournament{}, fmt.Errorf("find tournament: %w", err)
	}
	return t, nil
}

// Tournaments returns all tournament documents.
func (s *MongoStore) Tournaments(ctx context.Context) ([]model.Tournament, error) {
	return findAll[model.Tournament](ctx, s.db.Collection(colTournaments), nil)
}

// TournamentScores returns scores for a tournament ordered by score
// descending. limit <= 0 returns all rows.
func (s *MongoStore) TournamentScores(ctx context.Context, tournamentID primitive.ObjectID, limit int64) ([]model.TournamentScore, error) {
	defer observeQuery(time.Now())
	opts := options.Find().SetSort(bson.D{{Key: "score", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.db.Collection(colTournamentScores).Find(ctx, bson.M{"tournament_id": tournamentID}, opts)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("find tournament scores: %w", err)
	}
	var scores []model.TournamentScore
	if err := cur.All(ctx, &scores); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("decode tournament scores: %w", err)
	}
	return scores, nil
}

// InsertTournamentScore adds a new participant row. A concurrent insert for
// the same (tournament, user) pair surfaces as ErrConflict via the unique
// compound index.
func (s *MongoStore) InsertTournamentScore(ctx context.Context, sc model.TournamentScore) error {
	defer observeWrite(time.Now())
	if _, err := s.db.Collection(colTournamentScores).InsertOne(ctx, sc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrConflict
		}
		metrics.RecordStoreError()
		return fmt.Errorf("insert tournament score: %w", err)
	}
	return nil
}

// UpdateTournamentScore raises a participant's stored score. The filter
// guards against lowering it under a concurrent better submission; username
// is deliberately left untouched.
func (s *MongoStore) UpdateTournamentScore(ctx context.Context, tournamentID, userID primitive.ObjectID, score int64) error {
	defer observeWrite(time.Now())
	_, err := s.db.Collection(colTournamentScores).UpdateOne(ctx,
		bson.M{"tournament_id": tournamentID, "user_id": userID, "score": bson.M{"$lt": score}},
		bson.M{"$set": bson.M{"score": score}},
	)
	if err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("update tournament score: %w", err)
	}
	return nil
}

// TrimTournamentScores deletes every row ranked beyond keep, ordering by
// score descending. Ties at the boundary fall to store iteration order.
// Returns the number of rows removed.
func (s *MongoStore) TrimTournamentScores(ctx context.Context, tournamentID primitive.ObjectID, keep int64) (int64, error) {
	defer observeWrite(time.Now())
	col := s.db.Collection(colTournamentScores)

	opts := options.Find().
		SetSort(bson.D{{Key: "score", Value: -1}}).
		SetSkip(keep).
		SetProjection(bson.M{"_id": 1})
	cur, err := col.Find(ctx, bson.M{"tournament_id": tournamentID}, opts)
	if err != nil {
		metrics.RecordStoreError()
		return 0, fmt.Errorf("find overflow rows: %w", err)
	}
	var overflow []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &overflow); err != nil {
		metrics.RecordStoreError()
		return 0, fmt.Errorf("decode overflow rows: %w", err)
	}
	if len(overflow) == 0 {
		return 0, nil
	}

	ids := make([]primitive.ObjectID, len(overflow))
	for i, o := range overflow {
		ids[i] = o.ID
	}
	res, err := col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		metrics.RecordStoreError()
		return 0, fmt.Errorf("delete overflow rows: %w", err)
	}
	return res.DeletedCount, nil
}

// Counts reports collection sizes for the stats endpoint.
func (s *MongoStore) Counts(ctx context.Context) (Stats, error) {
	defer observeQuery(time.Now())
	var st Stats
	var err error
	if st.Users, err = s.db.Collection(colUsers).CountDocuments(ctx, bson.M{}); err != nil {
		return Stats{}, fmt.Errorf("count users: %w", err)
	}
	if st.Games, err = s.db.Collection(colGames).CountDocuments(ctx, bson.M{}); err != nil {
		return Stats{}, fmt.Errorf("count games: %w", err)
	}
	if st.WorldRecords, err = s.db.Collection(colWorldRecords).CountDocuments(ctx, bson.M{}); err != nil {
		return Stats{}, fmt.Errorf("count world records: %w", err)
	}
	if st.Tournaments, err = s.db.Collection(colTournaments).CountDocuments(ctx, bson.M{}); err != nil {
		return Stats{}, fmt.Errorf("count tournaments: %w", err)
	}
	if st.TournamentScores, err = s.db.Collection(colTournamentScores).CountDocuments(ctx, bson.M{}); err != nil {
		return Stats{}, fmt.Errorf("count tournament scores: %w", err)
	}
	return st, nil
}

// Ping verifies the connection is still alive.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	return nil
}

// Close disconnects from the store.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("mongo disconnect: %w", err)
	}
	return nil
}

// findAll runs an unfiltered Find on col and decodes every document.
func findAll[T any](ctx context.Context, col *mongo.Collection, opts *options.FindOptions) ([]T, error) {
	defer observeQuery(time.Now())
	var cur *mongo.Cursor
	var err error
	if opts != nil {
		cur, err = col.Find(ctx, bson.M{}, opts)
	} else {
		cur, err = col.Find(ctx, bson.M{})
	}
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("find %s: %w", col.Name(), err)
	}
	var out []T
	if err := cur.All(ctx, &out); err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("decode %s: %w", col.Name(), err)
	}
	return out, nil
}

func observeQuery(start time.Time) {
	metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
}

func observeWrite(start time.Time) {
	metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
}
