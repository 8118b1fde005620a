package slotRepo

import (
	"context"
	"fmt"
	"time"

	"slotwise/database"
	"slotwise/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const queryTimeout = 5 * time.Second

// MongoSlotRepo is the Mongo-backed slot store.
type MongoSlotRepo struct {
	coll *mongo.Collection
}

func NewMongoSlotRepo() *MongoSlotRepo {
	return &MongoSlotRepo{coll: database.Collection("slots")}
}

// withTimeout only adds a deadline for callers that did not bring one
// (transactional session contexts carry their own).
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, queryTimeout)
}

func (repo *MongoSlotRepo) Insert(ctx context.Context, slot models.Slot) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if _, err := repo.coll.InsertOne(ctx, slot); err != nil {
		return fmt.Errorf("failed to insert slot %s: %w", slot.ID, err)
	}
	return nil
}

func (repo *MongoSlotRepo) InsertMany(ctx context.Context, slots []models.Slot) error {
	if len(slots) == 0 {
		return nil
	}
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	docs := make([]interface{}, 0, len(slots))
	for _, s := range slots {
		docs = append(docs, s)
	}
	if _, err := repo.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert %d slots: %w", len(slots), err)
	}
	return nil
}

func (repo *MongoSlotRepo) GetByID(ctx context.Context, id string) (*models.Slot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var slot models.Slot
	err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&slot)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch slot %s: %w", id, err)
	}
	return &slot, nil
}

func (repo *MongoSlotRepo) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := repo.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func staffFilter(staffID string) interface{} {
	if staffID == "" {
		// Provider-level slots have no staff field at all.
		return bson.M{"$exists": false}
	}
	return staffID
}

func (repo *MongoSlotRepo) FindOverlapping(ctx context.Context, providerID, staffID, date string, start, end int, excludeID string) ([]models.Slot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	// Half-open interval intersection: slotStart < queryEnd AND slotEnd > queryStart.
	filter := bson.M{
		"providerId": providerID,
		"staffId":    staffFilter(staffID),
		"date":       date,
		"start":      bson.M{"$lt": end},
		"end":        bson.M{"$gt": start},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode overlapping slots: %w", err)
	}
	return slots, nil
}

func (repo *MongoSlotRepo) ListByDate(ctx context.Context, providerID, date string) ([]models.Slot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	cursor, err := repo.coll.Find(ctx, bson.M{"providerId": providerID, "date": date})
	if err != nil {
		return nil, fmt.Errorf("failed to query slots for %s on %s: %w", providerID, date, err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

func (repo *MongoSlotRepo) FindExpiredHolds(ctx context.Context, now time.Time) ([]models.Slot, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"status":        models.SlotTentativeHold,
		"holdExpiresAt": bson.M{"$lte": now},
	}
	cursor, err := repo.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query expired holds: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []models.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode expired holds: %w", err)
	}
	return slots, nil
}

func (repo *MongoSlotRepo) Transition(ctx context.Context, slotID string, expectVersion int, from []models.SlotStatus, change StatusChange) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{
		"id":      slotID,
		"version": expectVersion,
		"status":  bson.M{"$in": from},
	}

	set := bson.M{
		"status":    change.Status,
		"updatedAt": time.Now().UTC(),
	}
	unset := bson.M{}

	if change.BookingID != "" {
		set["bookingId"] = change.BookingID
	} else {
		unset["bookingId"] = ""
	}
	if change.HoldExpiresAt != nil {
		set["holdExpiresAt"] = *change.HoldExpiresAt
	} else {
		unset["holdExpiresAt"] = ""
	}
	if change.BlockReason != "" {
		set["blockReason"] = change.BlockReason
	} else {
		unset["blockReason"] = ""
	}

	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := repo.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to transition slot %s: %w", slotID, err)
	}
	if res.MatchedCount == 0 {
		return ErrTransitionConflict
	}
	return nil
}
