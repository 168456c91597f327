package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/climb-tracker/internal/repository"
)

// mongoDocumentStore implements repository.DocumentStore with one mongo
// collection per document collection and the document id as _id.
type mongoDocumentStore struct {
	db *mongo.Database
}

// NewMongoDocumentStore creates a DocumentStore backed by db.
func NewMongoDocumentStore(db *mongo.Database) repository.DocumentStore {
	return &mongoDocumentStore{db: db}
}

func (s *mongoDocumentStore) Get(ctx context.Context, collection, id string) (repository.Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return repository.Document{}, repository.ErrNotFound
		}
		return repository.Document{}, err
	}
	return toDocument(raw), nil
}

// Set upserts the document. Merge uses $set so fields not named are kept.
func (s *mongoDocumentStore) Set(ctx context.Context, collection, id string, fields map[string]interface{}, merge bool) error {
	if id == "" {
		return repository.ErrInvalidDocument
	}
	body := bson.M{}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		body[k] = v
	}

	coll := s.db.Collection(collection)
	filter := bson.M{"_id": id}
	if merge {
		if len(body) == 0 {
			// $set with no fields is rejected by the server
			_, err := coll.UpdateOne(ctx, filter, bson.M{"$setOnInsert": bson.M{"_id": id}}, options.Update().SetUpsert(true))
			return err
		}
		_, err := coll.UpdateOne(ctx, filter, bson.M{"$set": body}, options.Update().SetUpsert(true))
		return err
	}
	_, err := coll.ReplaceOne(ctx, filter, body, options.Replace().SetUpsert(true))
	return err
}

func (s *mongoDocumentStore) List(ctx context.Context, collection string) ([]repository.Document, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err = cursor.All(ctx, &raws); err != nil {
		return nil, err
	}
	out := make([]repository.Document, 0, len(raws))
	for _, raw := range raws {
		out = append(out, toDocument(raw))
	}
	return out, nil
}

func toDocument(raw bson.M) repository.Document {
	doc := repository.Document{Fields: make(map[string]interface{}, len(raw))}
	for k, v := range raw {
		if k == "_id" {
			if id, ok := v.(string); ok {
				doc.ID = id
			}
			continue
		}
		doc.Fields[k] = v
	}
	return doc
}
