package store

import (
	"context"
	"errors"

	"github.com/prontuario/prontuario/backend/go-services/internal/patient"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultMongoDocumentID is the _id of the record holding the document.
const DefaultMongoDocumentID = "prontuario"

type mongoRecord struct {
	ID  string           `bson:"_id"`
	Doc patient.Document `bson:",inline"`
}

// MongoStore keeps the whole document as one record of a collection; Save
// replaces that record (upsert).
type MongoStore struct {
	col   *mongo.Collection
	docID string
}

func NewMongoStore(col *mongo.Collection, docID string) *MongoStore {
	if docID == "" {
		docID = DefaultMongoDocumentID
	}
	return &MongoStore{col: col, docID: docID}
}

func (m *MongoStore) Name() string { return "mongo" }

func (m *MongoStore) Load(ctx context.Context) (*patient.Document, error) {
	var rec mongoRecord
	err := m.col.FindOne(ctx, bson.M{"_id": m.docID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return emptyDocument(), nil
		}
		return nil, unavailable("mongo find", err)
	}
	rec.Doc.Normalize()
	return &rec.Doc, nil
}

func (m *MongoStore) Save(ctx context.Context, doc *patient.Document) error {
	rec := mongoRecord{ID: m.docID, Doc: *doc}
	rec.Doc.Normalize()
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"_id": m.docID}, rec, opts); err != nil {
		return unavailable("mongo replace", err)
	}
	return nil
}
