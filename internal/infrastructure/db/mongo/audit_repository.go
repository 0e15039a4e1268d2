package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/klubfitness/fitness-club/internal/core/domain"
	"github.com/klubfitness/fitness-club/internal/core/ports"
)

const collectionReservationEvents = "reservation_events"

// AuditRepository keeps the reservation event log. It also acts as a sink on
// the event pipeline.
type AuditRepository struct {
	col *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(collectionReservationEvents)}
}

// Insert stores event. Redelivered events (same event_id) are ignored.
func (r *AuditRepository) Insert(ctx context.Context, event *domain.ReservationEvent) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, event)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert reservation event: %w", err)
	}
	return nil
}

// List returns events newest first.
func (r *AuditRepository) List(ctx context.Context, filter ports.AuditFilter) ([]*domain.ReservationEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	q := bson.M{}
	if filter.ReservationID > 0 {
		q["reservation_id"] = filter.ReservationID
	}
	if filter.UserID > 0 {
		q["user_id"] = filter.UserID
	}
	if !filter.Since.IsZero() {
		q["occurred_at"] = bson.M{"$gte": filter.Since.UTC()}
	}

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.col.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("find reservation events: %w", err)
	}
	defer cur.Close(ctx)

	events := make([]*domain.ReservationEvent, 0)
	if err := cur.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode reservation events: %w", err)
	}
	for _, e := range events {
		e.OccurredAt = e.OccurredAt.UTC()
	}
	return events, nil
}

func (r *AuditRepository) Name() string { return "mongo-audit" }

func (r *AuditRepository) Handle(ctx context.Context, event domain.ReservationEvent) error {
	return r.Insert(ctx, &event)
}

// EnsureIndexes creates the indexes the audit queries rely on.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "reservation_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
