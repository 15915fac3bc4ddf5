package annotation

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/platekit/pkg/plate"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "platekit"
	DefaultMongoCollection = "annotations"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string // default DefaultMongoDatabase
	Collection string // default DefaultMongoCollection
}

// MongoStore keeps one document per annotated well.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// annotationDoc is the stored document shape.
type annotationDoc struct {
	PlateID   string    `bson:"plate_id"`
	Key       string    `bson:"key"`
	Row       int       `bson:"row"`
	Column    int       `bson:"column"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to MongoDB and ensures the unique well index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultMongoDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, unavailable(BackendMongo, "connect", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, unavailable(BackendMongo, "ping", err)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "plate_id", Value: 1},
			{Key: "key", Value: 1},
			{Key: "row", Value: 1},
			{Key: "column", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, unavailable(BackendMongo, "create index", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Name() string { return BackendMongo }

func wellFilter(plateID string, c plate.Coordinate, key string) bson.D {
	return bson.D{
		{Key: "plate_id", Value: plateID},
		{Key: "key", Value: key},
		{Key: "row", Value: c.Row},
		{Key: "column", Value: c.Column},
	}
}

func wellUpdate(value string) bson.D {
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "value", Value: value},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}
}

func (s *MongoStore) Get(ctx context.Context, plateID string, c plate.Coordinate, key string) (string, bool, error) {
	if err := validateScope(plateID, key); err != nil {
		return "", false, err
	}
	var doc annotationDoc
	err := s.coll.FindOne(ctx, wellFilter(plateID, c, key)).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, unavailable(BackendMongo, "get", err)
	}
	return doc.Value, true, nil
}

func (s *MongoStore) Set(ctx context.Context, plateID string, c plate.Coordinate, key, value string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	_, err := s.coll.UpdateOne(ctx, wellFilter(plateID, c, key), wellUpdate(value), options.Update().SetUpsert(true))
	if err != nil {
		return unavailable(BackendMongo, "set", err)
	}
	return nil
}

// SetMany upserts all cells in one ordered bulk write.
func (s *MongoStore) SetMany(ctx context.Context, plateID string, cells []plate.Coordinate, key, value string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	if len(cells) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(cells))
	for _, c := range cells {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(wellFilter(plateID, c, key)).
			SetUpdate(wellUpdate(value)).
			SetUpsert(true))
	}
	if _, err := s.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return unavailable(BackendMongo, "set", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, plateID, key string) (map[plate.Coordinate]string, error) {
	if err := validateScope(plateID, key); err != nil {
		return nil, err
	}
	cur, err := s.coll.Find(ctx, bson.D{{Key: "plate_id", Value: plateID}, {Key: "key", Value: key}})
	if err != nil {
		return nil, unavailable(BackendMongo, "list", err)
	}
	var docs []annotationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, unavailable(BackendMongo, "list", err)
	}
	out := make(map[plate.Coordinate]string, len(docs))
	for _, d := range docs {
		out[plate.At(d.Row, d.Column)] = d.Value
	}
	return out, nil
}

func (s *MongoStore) Delete(ctx context.Context, plateID, key string) error {
	if err := validateScope(plateID, key); err != nil {
		return err
	}
	_, err := s.coll.DeleteMany(ctx, bson.D{{Key: "plate_id", Value: plateID}, {Key: "key", Value: key}})
	if err != nil {
		return unavailable(BackendMongo, "delete", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
