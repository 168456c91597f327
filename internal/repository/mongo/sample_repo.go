package mongo

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"alcyxob/climb-tracker/internal/domain"
	"alcyxob/climb-tracker/internal/healthstore"
	"alcyxob/climb-tracker/internal/repository"
)

const sampleCollectionName = "health_samples"

// mongoSampleRepository implements repository.SampleRepository
type mongoSampleRepository struct {
	collection *mongo.Collection
}

// NewMongoSampleRepository creates a new sample repository.
func NewMongoSampleRepository(db *mongo.Database) repository.SampleRepository {
	return &mongoSampleRepository{
		collection: db.Collection(sampleCollectionName),
	}
}

// QuerySamples returns samples of one type for one user with start in [q.Start, q.End).
func (r *mongoSampleRepository) QuerySamples(ctx context.Context, q healthstore.Query) ([]domain.Sample, error) {
	filter := bson.M{
		"userId": q.UserID,
		"type":   q.Type,
		"start":  bson.M{"$gte": q.Start, "$lt": q.End},
	}
	direction := 1
	if q.SortDescending {
		direction = -1
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "start", Value: direction}})
	if q.Limit > 0 {
		findOptions.SetLimit(int64(q.Limit))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	samples := []domain.Sample{}
	if err = cursor.All(ctx, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

// InsertMany stores samples that are not stored yet. The filter is scoped to
// the owner and existing samples are never rewritten, so re-sent device
// batches neither duplicate nor move a recorded start time.
func (r *mongoSampleRepository) InsertMany(ctx context.Context, samples []domain.Sample) (int, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	models := make([]mongo.WriteModel, 0, len(samples))
	for _, s := range samples {
		fields, err := insertFields(s)
		if err != nil {
			return 0, err
		}
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": s.ID, "userId": s.UserID}).
			SetUpdate(bson.M{"$setOnInsert": fields}).
			SetUpsert(true))
	}
	_, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return len(samples), nil
}

// insertFields returns the sample document without the keys the upsert
// filter already sets.
func insertFields(s domain.Sample) (bson.M, error) {
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, err
	}
	fields := bson.M{}
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	delete(fields, "_id")
	delete(fields, "userId")
	return fields, nil
}

// EnsureSampleIndexes creates the index used by time-range queries. Call during startup.
func EnsureSampleIndexes(ctx context.Context, db *mongo.Database) {
	collection := db.Collection(sampleCollectionName)
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "type", Value: 1}, {Key: "start", Value: -1}},
			Options: options.Index(),
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
