package db

import (
	"context"
	"time"

	"github.com/ukydev/bus-maintenance/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoInvoiceCollection implements InvoiceCollection for MongoDB.
type MongoInvoiceCollection struct {
	Collection *mongo.Collection
}

// InsertInvoice inserts an invoice record into the collection.
func (c *MongoInvoiceCollection) InsertInvoice(ctx context.Context, invoice models.Invoice) error {
	now := time.Now()
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = now
	}
	if invoice.UpdatedAt.IsZero() {
		invoice.UpdatedAt = now
	}
	_, err := c.Collection.InsertOne(ctx, invoice)
	return mapWriteError(err)
}

// FindInvoiceByID finds an invoice by its ID.
func (c *MongoInvoiceCollection) FindInvoiceByID(ctx context.Context, id primitive.ObjectID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := c.Collection.FindOne(ctx, bson.M{"_id": id}).Decode(&invoice); err != nil {
		return nil, mapFindError(err)
	}
	return &invoice, nil
}

// FindInvoicesByIDs returns the invoices with the given IDs. Missing IDs are
// skipped.
func (c *MongoInvoiceCollection) FindInvoicesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Invoice, error) {
	invoices := []models.Invoice{}
	if len(ids) == 0 {
		return invoices, nil
	}
	cursor, err := c.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, err
	}
	return invoices, nil
}

// ReplaceInvoice replaces the stored invoice while its status is still from.
func (c *MongoInvoiceCollection) ReplaceInvoice(ctx context.Context, invoice models.Invoice, from models.InvoiceStatus) error {
	if invoice.UpdatedAt.IsZero() {
		invoice.UpdatedAt = time.Now()
	}
	result, err := c.Collection.ReplaceOne(ctx, bson.M{"_id": invoice.ID, "status": from}, invoice)
	if err != nil {
		return mapWriteError(err)
	}
	if result.MatchedCount == 0 {
		return resolveMiss(ctx, c.Collection, invoice.ID)
	}
	return nil
}
