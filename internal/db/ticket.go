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

// MongoTicketCollection implements TicketCollection for MongoDB.
type MongoTicketCollection struct {
	Collection *mongo.Collection
}

// InsertTicket inserts a ticket record into the collection.
func (c *MongoTicketCollection) InsertTicket(ctx context.Context, ticket models.Ticket) error {
	now := time.Now()
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = now
	}
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = now
	}
	_, err := c.Collection.InsertOne(ctx, ticket)
	return mapWriteError(err)
}

// FindTicketByID finds a ticket by its ID.
func (c *MongoTicketCollection) FindTicketByID(ctx context.Context, id primitive.ObjectID) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ticket); err != nil {
		return nil, mapFindError(err)
	}
	return &ticket, nil
}

// FindTickets returns the tickets matching filter, newest first.
func (c *MongoTicketCollection) FindTickets(ctx context.Context, filter models.TicketFilter) ([]models.Ticket, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := c.Collection.Find(ctx, ticketFilterDoc(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := []models.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// ReplaceTicket replaces the stored ticket in one conditional write:
// it applies only while the stored status and version still equal cond.
func (c *MongoTicketCollection) ReplaceTicket(ctx context.Context, ticket models.Ticket, cond TicketCondition) error {
	if ticket.UpdatedAt.IsZero() {
		ticket.UpdatedAt = time.Now()
	}
	filter := bson.M{"_id": ticket.ID, "status": cond.Status, "version": cond.Version}
	result, err := c.Collection.ReplaceOne(ctx, filter, ticket)
	if err != nil {
		return mapWriteError(err)
	}
	if result.MatchedCount == 0 {
		return resolveMiss(ctx, c.Collection, ticket.ID)
	}
	return nil
}

func ticketFilterDoc(f models.TicketFilter) bson.M {
	doc := bson.M{}
	if len(f.Statuses) > 0 {
		doc["status"] = bson.M{"$in": f.Statuses}
	}
	if f.BusID != nil {
		doc["busId"] = *f.BusID
	}
	if f.VendorID != nil {
		doc["vendorId"] = *f.VendorID
	}
	if f.CreatedBy != nil {
		doc["createdBy"] = *f.CreatedBy
	}
	return doc
}
