// Package mongosource loads a transit network from MongoDB.
//
// Stations live in the "stations" collection with the same field names as
// the JSON files. Segments live in "segments" with an extra "seq" field that
// preserves file order.
package mongosource

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/routetrace/pkg/dataset"
	errs "github.com/matzehuels/routetrace/pkg/errors"
)

const (
	stationsCollection = "stations"
	segmentsCollection = "segments"
)

// Source reads stations and segments from a MongoDB database.
type Source struct {
	client *mongo.Client
	db     *mongo.Database
}

type segmentDoc struct {
	Seq             int `bson:"seq"`
	dataset.Segment `bson:",inline"`
}

// Open connects to uri and pings the primary.
func Open(ctx context.Context, uri, database string) (*Source, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetAppName("routetrace").
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "connect mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "ping mongo")
	}
	return &Source{client: client, db: client.Database(database)}, nil
}

// Name returns "mongo".
func (s *Source) Name() string { return "mongo" }

// Close disconnects the client.
func (s *Source) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// Load reads the whole network.
func (s *Source) Load(ctx context.Context) (*dataset.Dataset, error) {
	var stations []dataset.Station
	cur, err := s.db.Collection(stationsCollection).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "find stations")
	}
	if err := cur.All(ctx, &stations); err != nil {
		return nil, fmt.Errorf("decode stations: %w", err)
	}

	var docs []segmentDoc
	cur, err = s.db.Collection(segmentsCollection).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "seq", Value: 1}}))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeSourceUnavailable, err, "find segments")
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode segments: %w", err)
	}

	segments := make([]dataset.Segment, len(docs))
	for i, d := range docs {
		segments[i] = d.Segment
	}
	return &dataset.Dataset{Stations: stations, Segments: segments}, nil
}

// Save replaces both collections with ds.
func (s *Source) Save(ctx context.Context, ds *dataset.Dataset) error {
	stations := s.db.Collection(stationsCollection)
	segments := s.db.Collection(segmentsCollection)

	if _, err := stations.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear stations: %w", err)
	}
	if _, err := segments.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}

	if len(ds.Stations) > 0 {
		docs := make([]any, len(ds.Stations))
		for i, st := range ds.Stations {
			docs[i] = st
		}
		if _, err := stations.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert stations: %w", err)
		}
	}
	if len(ds.Segments) > 0 {
		docs := make([]any, len(ds.Segments))
		for i, sg := range ds.Segments {
			docs[i] = segmentDoc{Seq: i, Segment: sg}
		}
		if _, err := segments.InsertMany(ctx, docs); err != nil {
			return fmt.Errorf("insert segments: %w", err)
		}
	}
	return nil
}
