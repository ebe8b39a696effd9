package db

import (
	"context"
	"time"

	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepairRequestCollection implements RepairRequestCollection for MongoDB.
type MongoRepairRequestCollection struct {
	Collection *mongo.Collection
}

// InsertRepairRequest inserts a repair request into the collection.
func (c *MongoRepairRequestCollection) InsertRepairRequest(ctx context.Context, req models.RepairRequest) error {
	now := time.Now()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = now
	}
	_, err := c.Collection.InsertOne(ctx, req)
	return mapWriteError(err)
}

// FindRepairRequestByID finds a repair request by its ID.
func (c *MongoRepairRequestCollection) FindRepairRequestByID(ctx context.Context, id primitive.ObjectID) (*models.RepairRequest, error) {
	var req models.RepairRequest
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, mapFindError(err)
	}
	return &req, nil
}

// FindRepairRequests returns repair requests in status, oldest first.
func (c *MongoRepairRequestCollection) FindRepairRequests(ctx context.Context, status models.RepairRequestStatus) ([]models.RepairRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reqs := []models.RepairRequest{}
	if err := cursor.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// ReplaceRepairRequest replaces the stored request while its status is still from.
func (c *MongoRepairRequestCollection) ReplaceRepairRequest(ctx context.Context, req models.RepairRequest, from models.RepairRequestStatus) error {
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = time.Now()
	}
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": req.ID, "status": from}, req)
	if err != nil {
		return mapWriteError(err)
	}
	if result.MatchedCount == 0 {
		return resolveMiss(ctx, c.Collection, req.ID)
	}
	return nil
}
