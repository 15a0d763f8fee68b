package repository

import (
	"context"
	"errors"
	"time"

	"github.com/agusmuss/Ecom-Next/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	productsCollection   = "products"
	ordersCollection     = "orders"
	userOrdersCollection = "user_orders"
)

// userOrderDoc wraps an order copy stored under a user's history. Mongo has
// no subcollections, so the key is a composite of user and session ID.
type userOrderDoc struct {
	ID     string       `bson:"_id"`
	UserID string       `bson:"user_id"`
	Order  models.Order `bson:"order"`
}

func userOrderKey(userID, sessionID string) string {
	return userID + "/" + sessionID
}

// MongoStore implements Store, ProductRepo and OrderRepo on a MongoDB
// replica set. Transactions use driver sessions; the driver retries
// TransientTransactionError commits itself, which is exactly the
// caller-retries contract the reconciler expects.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoStore(client *mongo.Client, db *mongo.Database) *MongoStore {
	return &MongoStore{client: client, db: db}
}

func (s *MongoStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoTx{db: s.db})
	})
	return err
}

type mongoTx struct {
	db *mongo.Database
}

func (t *mongoTx) GetOrder(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := t.db.Collection(ordersCollection).FindOne(ctx, bson.M{"_id": sessionID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (t *mongoTx) FindProductByPriceID(ctx context.Context, priceID string) (*models.Product, error) {
	var product models.Product
	err := t.db.Collection(productsCollection).FindOne(ctx, bson.M{"stripe_price_id": priceID}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (t *mongoTx) SetProductStock(ctx context.Context, productID uuid.UUID, stock int) error {
	_, err := t.db.Collection(productsCollection).UpdateOne(ctx,
		bson.M{"_id": productID},
		bson.M{"$set": bson.M{"stock": stock, "updated_at": time.Now().UTC()}},
	)
	return err
}

func (t *mongoTx) PutOrder(ctx context.Context, order *models.Order) error {
	_, err := t.db.Collection(ordersCollection).InsertOne(ctx, order)
	return err
}

func (t *mongoTx) PutUserOrder(ctx context.Context, userID string, order *models.Order) error {
	doc := userOrderDoc{
		ID:     userOrderKey(userID, order.SessionID),
		UserID: userID,
		Order:  *order,
	}
	_, err := t.db.Collection(userOrdersCollection).InsertOne(ctx, doc)
	return err
}

// --- catalog read/write side ---

func (s *MongoStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection(productsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *MongoStore) FindAll(ctx context.Context, limit, skip int64) ([]models.Product, error) {
	opts := options.Find().SetLimit(limit).SetSkip(skip).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.db.Collection(productsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *MongoStore) Create(ctx context.Context, product *models.Product) error {
	_, err := s.db.Collection(productsCollection).InsertOne(ctx, product)
	return err
}

func (s *MongoStore) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	set := bson.M{"updated_at": time.Now().UTC()}
	for k, v := range updates {
		set[k] = v
	}
	res, err := s.db.Collection(productsCollection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.Collection(productsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// --- order read side ---

func (s *MongoStore) FindBySessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := s.db.Collection(ordersCollection).FindOne(ctx, bson.M{"_id": sessionID}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *MongoStore) FindByUser(ctx context.Context, userID string) ([]models.Order, error) {
	cursor, err := s.db.Collection(userOrdersCollection).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []userOrderDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	orders := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		orders = append(orders, d.Order)
	}
	return orders, nil
}

// EnsureIndexes creates the price-ID lookup index the reconciler depends on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(productsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "stripe_price_id", Value: 1}},
	})
	return err
}
