package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/qwlai/reit-tracker/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// mongoCollection is the subset of *mongo.Collection used by the store.
type mongoCollection interface {
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
}

type mongoStore struct {
	coll mongoCollection
	ping func(ctx context.Context) error
}

// NewMongoStore writes documents into coll. Symbols such as "A17U.SI" are used
// verbatim as top-level field names.
func NewMongoStore(coll *mongo.Collection) DocumentStore {
	client := coll.Database().Client()
	return &mongoStore{
		coll: coll,
		ping: func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
	}
}

// toBSON lays out the document with symbols in lexical order followed by the timestamp.
func toBSON(doc models.ReitDocument) bson.D {
	out := make(bson.D, 0, len(doc.Records)+1)
	for _, sym := range doc.Symbols() {
		out = append(out, bson.E{Key: sym, Value: doc.Records[sym]})
	}
	return append(out, bson.E{Key: models.TimestampKey, Value: doc.Timestamp})
}

func (s *mongoStore) Insert(ctx context.Context, doc models.ReitDocument) (string, error) {
	res, err := s.coll.InsertOne(ctx, toBSON(doc))
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	default:
		return fmt.Sprint(id), nil
	}
}

func (s *mongoStore) Latest(ctx context.Context) (*StoredDocument, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: models.TimestampKey, Value: -1}})

	var m bson.M
	err := s.coll.FindOne(ctx, bson.D{}, opts).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find latest document: %w", err)
	}

	out := &StoredDocument{}
	if oid, ok := m["_id"].(primitive.ObjectID); ok {
		out.ID = oid.Hex()
	} else if raw, ok := m["_id"]; ok {
		out.ID = fmt.Sprint(raw)
	}
	delete(m, "_id")
	if dt, ok := m[models.TimestampKey].(primitive.DateTime); ok {
		m[models.TimestampKey] = dt.Time().UTC()
	}
	out.Body = m
	return out, nil
}

func (s *mongoStore) Ping(ctx context.Context) error {
	return s.ping(ctx)
}
