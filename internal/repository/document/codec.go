// Package document implements the typed repositories on top of a
// repository.DocumentStore, one document per user.
package document

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"alcyxob/climb-tracker/internal/repository"
)

// encode turns a bson-tagged struct into document fields.
func encode(v interface{}) (map[string]interface{}, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return fields, nil
}

// decode fills out from document fields. Values written by either store
// implementation survive the round trip.
func decode(doc repository.Document, out interface{}) error {
	raw, err := bson.Marshal(bson.M(doc.Fields))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", repository.ErrInvalidDocument, doc.ID, err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %s: %v", repository.ErrInvalidDocument, doc.ID, err)
	}
	return nil
}
