package db

import (
	"context"
	"fmt"
	"time"

	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBusCollection implements BusCollection for MongoDB.
type MongoBusCollection struct {
	Collection *mongo.Collection
}

// InsertBus inserts a bus record into the collection.
func (c *MongoBusCollection) InsertBus(ctx context.Context, bus models.Bus) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}
	now := time.Now()
	if bus.CreatedAt.IsZero() {
		bus.CreatedAt = now
	}
	if bus.UpdatedAt.IsZero() {
		bus.UpdatedAt = now
	}
	_, err := c.Collection.InsertOne(ctx, bus)
	return mapWriteError(err)
}

// FindBusByID finds a bus by its ID.
func (c *MongoBusCollection) FindBusByID(ctx context.Context, id primitive.ObjectID) (*models.Bus, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	var bus models.Bus
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&bus); err != nil {
		return nil, mapFindError(err)
	}
	return &bus, nil
}

// FindBuses returns every bus ordered by fleet number.
func (c *MongoBusCollection) FindBuses(ctx context.Context) ([]models.Bus, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "fleetNumber", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	buses := []models.Bus{}
	if err := cursor.All(ctx, &buses); err != nil {
		return nil, err
	}
	return buses, nil
}
