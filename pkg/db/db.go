package db

import (
	"context"
	"errors"
	"fmt"

	"podcast-catalog/pkg/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	episodesCollection = "episodes"
	notesCollection    = "notes"
	countersCollection = "counters"
)

// Client wraps the MongoDB client and database connection
type Client struct {
	mongoClient *mongo.Client
	database    *mongo.Database
}

// NewClient creates a new database client
func NewClient(connectionString, databaseName string) *Client {
	clientOptions := options.Client().ApplyURI(connectionString)
	mongoClient, err := mongo.Connect(context.Background(), clientOptions)
	if err != nil {
		// Return client with nil - error will be caught during Connect()
		return &Client{}
	}

	return &Client{
		mongoClient: mongoClient,
		database:    mongoClient.Database(databaseName),
	}
}

// Connect establishes connection to MongoDB
func (c *Client) Connect(ctx context.Context) error {
	if c.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *Client) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

func (c *Client) Episodes() EpisodeRepository { return mongoEpisodes{c} }
func (c *Client) Notes() NoteRepository       { return mongoNotes{c} }

func (c *Client) collection(name string) (*mongo.Collection, error) {
	if c.database == nil {
		return nil, fmt.Errorf("collection %s not initialized", name)
	}
	return c.database.Collection(name), nil
}

// nextID atomically increments the named counter document and returns the new value.
func (c *Client) nextID(ctx context.Context, name string) (int64, error) {
	counters, err := c.collection(countersCollection)
	if err != nil {
		return 0, err
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err = counters.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

// findAll decodes every document of a collection matching filter, sorted by _id.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []T{}
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			continue // Skip invalid documents
		}
		out = append(out, item)
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return out, nil
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, id int64, kind string) (T, error) {
	var item T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return item, fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	if err != nil {
		return item, fmt.Errorf("get %s %d: %w", kind, id, err)
	}
	return item, nil
}

func replaceOne(ctx context.Context, coll *mongo.Collection, id int64, doc any, kind string) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id int64, kind string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s %d: %w", kind, id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, domain.ErrNotFound)
	}
	return nil
}

type mongoEpisodes struct{ c *Client }

func (r mongoEpisodes) GetAll(ctx context.Context) ([]domain.Episode, error) {
	coll, err := r.c.collection(episodesCollection)
	if err != nil {
		return nil, err
	}
	return findAll[domain.Episode](ctx, coll, bson.M{})
}

func (r mongoEpisodes) GetByID(ctx context.Context, id int64) (domain.Episode, error) {
	coll, err := r.c.collection(episodesCollection)
	if err != nil {
		return domain.Episode{}, err
	}
	return findOne[domain.Episode](ctx, coll, id, "episode")
}

func (r mongoEpisodes) Create(ctx context.Context, ep domain.Episode) (domain.Episode, error) {
	coll, err := r.c.collection(episodesCollection)
	if err != nil {
		return domain.Episode{}, err
	}
	id, err := r.c.nextID(ctx, episodesCollection)
	if err != nil {
		return domain.Episode{}, err
	}
	ep.ID = id
	if _, err := coll.InsertOne(ctx, ep); err != nil {
		return domain.Episode{}, fmt.Errorf("insert episode: %w", err)
	}
	return ep, nil
}

func (r mongoEpisodes) Update(ctx context.Context, ep domain.Episode) (domain.Episode, error) {
	coll, err := r.c.collection(episodesCollection)
	if err != nil {
		return domain.Episode{}, err
	}
	if err := replaceOne(ctx, coll, ep.ID, ep, "episode"); err != nil {
		return domain.Episode{}, err
	}
	return ep, nil
}

func (r mongoEpisodes) Delete(ctx context.Context, id int64) error {
	coll, err := r.c.collection(episodesCollection)
	if err != nil {
		return err
	}
	return deleteOne(ctx, coll, id, "episode")
}

type mongoNotes struct{ c *Client }

func (r mongoNotes) GetAll(ctx context.Context) ([]domain.Note, error) {
	coll, err := r.c.collection(notesCollection)
	if err != nil {
		return nil, err
	}
	return findAll[domain.Note](ctx, coll, bson.M{})
}

func (r mongoNotes) GetByID(ctx context.Context, id int64) (domain.Note, error) {
	coll, err := r.c.collection(notesCollection)
	if err != nil {
		return domain.Note{}, err
	}
	return findOne[domain.Note](ctx, coll, id, "note")
}

func (r mongoNotes) GetByEpisode(ctx context.Context, episodeID int64) ([]domain.Note, error) {
	coll, err := r.c.collection(notesCollection)
	if err != nil {
		return nil, err
	}
	return findAll[domain.Note](ctx, coll, bson.M{"episode_id": episodeID})
}

func (r mongoNotes) Create(ctx context.Context, n domain.Note) (domain.Note, error) {
	coll, err := r.c.collection(notesCollection)
	if err != nil {
		return domain.Note{}, err
	}
	id, err := r.c.nextID(ctx, notesCollection)
	if err != nil {
		return domain.Note{}, err
	}
	n.ID = id
	if _, err := coll.InsertOne(ctx, n); err != nil {
		return domain.Note{}, fmt.Errorf("insert note: %w", err)
	}
	return n, nil
}

func (r mongoNotes) Update(ctx context.Context, n domain.Note) (domain.Note, error) {
	coll, err := r.c.collection(notesCollection)
	if err != nil {
		return domain.Note{}, err
	}
	if err := replaceOne(ctx, coll, n.ID, n, "note"); err != nil {
		return domain.Note{}, err
	}
	return n, nil
}

func (r mongoNotes) Delete(ctx context.Context, id int64) error {
	coll, err := r.c.collection(notesCollection)
	if err != nil {
		return err
	}
	return deleteOne(ctx, coll, id, "note")
}
