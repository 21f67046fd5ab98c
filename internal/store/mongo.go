package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sensorbridge/sensorbridge/internal/config"
	"github.com/sensorbridge/sensorbridge/internal/logging"
	"github.com/sensorbridge/sensorbridge/internal/models"
)

const (
	collDevices = "devices"
	collSamples = "sensordata"
	collHistory = "controlhistory"
)

// MongoStore implements Store on MongoDB
type MongoStore struct {
	client  *mongo.Client
	db      *mongo.Database
	logger  *logging.Logger
	devices *mongo.Collection
	samples *mongo.Collection
	history *mongo.Collection
}

// NewMongoStore connects to MongoDB and prepares the bridge collections
func NewMongoStore(ctx context.Context, cfg config.StoreConfig, logger *logging.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(cfg.Database)
	s := &MongoStore{
		client:  client,
		db:      db,
		logger:  logger.With("component", "store.mongo"),
		devices: db.Collection(collDevices),
		samples: db.Collection(collSamples),
		history: db.Collection(collHistory),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("Connected to mongodb", "database", cfg.Database)
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := s.samples.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "deviceId", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", collSamples, err)
	}

	_, err = s.devices.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "deviceId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", collDevices, err)
	}

	_, err = s.history.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to index %s: %w", collHistory, err)
	}
	return nil
}

// AppendSample persists one sensor reading
func (s *MongoStore) AppendSample(ctx context.Context, sample *models.Sample) error {
	_, err := s.samples.InsertOne(ctx, sample)
	return err
}

// Samples returns all samples matching the filter
func (s *MongoStore) Samples(ctx context.Context, filter SampleFilter) ([]*models.Sample, error) {
	query := bson.M{}
	if filter.DeviceID != "" {
		query["deviceId"] = filter.DeviceID
	}
	if ts := timeBounds(filter.Start, filter.End); ts != nil {
		query["timestamp"] = ts
	}

	cursor, err := s.samples.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	var out []*models.Sample
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SampleCount returns the total number of stored samples
func (s *MongoStore) SampleCount(ctx context.Context) (int64, error) {
	return s.samples.CountDocuments(ctx, bson.M{})
}

// LatestPerDevice returns the most recent sample of every device
func (s *MongoStore) LatestPerDevice(ctx context.Context) ([]*models.Sample, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: -1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$deviceId"},
			{Key: "doc", Value: bson.D{{Key: "$first", Value: "$$ROOT"}}},
		}}},
		{{Key: "$replaceRoot", Value: bson.D{{Key: "newRoot", Value: "$doc"}}}},
	}

	cursor, err := s.samples.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var out []*models.Sample
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSamplesBefore removes samples older than the cutoff
func (s *MongoStore) DeleteSamplesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := bson.M{}
	if !cutoff.IsZero() {
		query["timestamp"] = bson.M{"$lt": cutoff}
	}
	res, err := s.samples.DeleteMany(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// UpsertDevicePresence marks a device online and advances lastSeen. The
// $max on lastSeen keeps the timestamp monotonic under concurrent writers.
func (s *MongoStore) UpsertDevicePresence(ctx context.Context, deviceID string, seenAt time.Time) error {
	defaults := models.DeviceDefaults(deviceID)
	update := bson.M{
		"$set": bson.M{
			"online":    true,
			"updatedAt": seenAt,
		},
		"$max": bson.M{"lastSeen": seenAt},
		"$setOnInsert": bson.M{
			"deviceId":  deviceID,
			"name":      defaults.Name,
			"location":  defaults.Location,
			"type":      defaults.Type,
			"createdAt": seenAt,
		},
	}

	_, err := s.devices.UpdateOne(ctx, bson.M{"deviceId": deviceID}, update,
		options.Update().SetUpsert(true))
	return err
}

// Devices lists all known devices
func (s *MongoStore) Devices(ctx context.Context) ([]*models.Device, error) {
	cursor, err := s.devices.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var out []*models.Device
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Device returns one device or ErrDeviceNotFound
func (s *MongoStore) Device(ctx context.Context, deviceID string) (*models.Device, error) {
	var d models.Device
	err := s.devices.FindOne(ctx, bson.M{"deviceId": deviceID}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDevice applies the non-nil display fields
func (s *MongoStore) UpdateDevice(ctx context.Context, deviceID string, update *models.DeviceUpdate) (*models.Device, error) {
	set := bson.M{"updatedAt": time.Now()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Location != nil {
		set["location"] = *update.Location
	}
	if update.Type != nil {
		set["type"] = *update.Type
	}
	if update.Metadata != nil {
		set["metadata"] = update.Metadata
	}

	var d models.Device
	err := s.devices.FindOneAndUpdate(ctx,
		bson.M{"deviceId": deviceID},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDeviceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// AppendHistory persists one control history record
func (s *MongoStore) AppendHistory(ctx context.Context, record *models.ControlHistory) error {
	_, err := s.history.InsertOne(ctx, record)
	return err
}

// History returns all history records matching the filter
func (s *MongoStore) History(ctx context.Context, filter HistoryFilter) ([]*models.ControlHistory, error) {
	cursor, err := s.history.Find(ctx, historyQuery(filter))
	if err != nil {
		return nil, err
	}
	var out []*models.ControlHistory
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// HistoryStats summarizes outcomes of records matching the filter
func (s *MongoStore) HistoryStats(ctx context.Context, filter HistoryFilter) (*models.HistoryStats, error) {
	base := historyQuery(filter)

	total, err := s.history.CountDocuments(ctx, base)
	if err != nil {
		return nil, err
	}

	okQuery := historyQuery(filter)
	okQuery["success"] = true
	success, err := s.history.CountDocuments(ctx, okQuery)
	if err != nil {
		return nil, err
	}

	return &models.HistoryStats{
		TotalRecords: total,
		SuccessCount: success,
		FailureCount: total - success,
	}, nil
}

// DeleteHistoryBefore removes history older than the cutoff
func (s *MongoStore) DeleteHistoryBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := bson.M{}
	if !cutoff.IsZero() {
		query["timestamp"] = bson.M{"$lt": cutoff}
	}
	res, err := s.history.DeleteMany(ctx, query)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Close disconnects from MongoDB
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func historyQuery(filter HistoryFilter) bson.M {
	query := bson.M{}
	if filter.DeviceID != "" {
		query["deviceId"] = filter.DeviceID
	}
	if filter.Action != "" {
		query["action"] = filter.Action
	}
	if len(filter.ExcludeSources) > 0 {
		query["source"] = bson.M{"$nin": filter.ExcludeSources}
	}
	return query
}

func timeBounds(start, end time.Time) bson.M {
	bounds := bson.M{}
	if !start.IsZero() {
		bounds["$gte"] = start
	}
	if !end.IsZero() {
		bounds["$lte"] = end
	}
	if len(bounds) == 0 {
		return nil
	}
	return bounds
}
