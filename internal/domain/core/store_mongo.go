package core

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	CollectionEmployees     = "employees"
	CollectionRoles         = "roles"
	CollectionLevels        = "levels"
	CollectionOrganisations = "organisations"
	CollectionCurrencies    = "currencies"
	CollectionClients       = "clients"
	CollectionAssignments   = "client_employees"
	CollectionPayments      = "payments"
)

// MongoIndexes lists the secondary indexes each collection needs.
var MongoIndexes = map[string][]mongo.IndexModel{
	CollectionEmployees: {
		{
			Keys:    bson.D{{Key: "employeeCode", Value: 1}},
			// Blank codes are allowed on many employees.
			Options: options.Index().SetName("uniq_employeeCode").SetUnique(true).
				SetPartialFilterExpression(bson.M{"employeeCode": bson.M{"$gt": ""}}),
		},
		{
			Keys:    bson.D{{Key: "lastName", Value: 1}, {Key: "firstName", Value: 1}},
			Options: options.Index().SetName("idx_name"),
		},
	},
	CollectionAssignments: {
		{
			Keys:    bson.D{{Key: "employeeId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_employeeId_status"),
		},
	},
	CollectionCurrencies: {
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("uniq_code").SetUnique(true),
		},
	},
}

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func (s *MongoStore) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	return mongoFindOne[Employee](ctx, s.db.Collection(CollectionEmployees), id)
}

func (s *MongoStore) ListEmployees(ctx context.Context) ([]Employee, error) {
	return mongoFindAll[Employee](ctx, s.db.Collection(CollectionEmployees), bson.M{}, sortBy("lastName", "firstName"))
}

func (s *MongoStore) CreateEmployee(ctx context.Context, emp *Employee) error {
	return mongoInsert(ctx, s.db.Collection(CollectionEmployees), emp)
}

func (s *MongoStore) UpdateEmployee(ctx context.Context, emp *Employee) error {
	return mongoReplace(ctx, s.db.Collection(CollectionEmployees), emp.ID, emp)
}

func (s *MongoStore) DeleteEmployee(ctx context.Context, id string) error {
	res, err := s.db.Collection(CollectionEmployees).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) ListRoles(ctx context.Context) ([]Role, error) {
	return mongoFindAll[Role](ctx, s.db.Collection(CollectionRoles), bson.M{}, sortBy("roleName"))
}

func (s *MongoStore) GetRole(ctx context.Context, id string) (*Role, error) {
	return mongoFindOne[Role](ctx, s.db.Collection(CollectionRoles), id)
}

func (s *MongoStore) CreateRole(ctx context.Context, role *Role) error {
	return mongoInsert(ctx, s.db.Collection(CollectionRoles), role)
}

func (s *MongoStore) ListLevels(ctx context.Context) ([]Level, error) {
	return mongoFindAll[Level](ctx, s.db.Collection(CollectionLevels), bson.M{}, sortBy("levelName"))
}

func (s *MongoStore) GetLevel(ctx context.Context, id string) (*Level, error) {
	return mongoFindOne[Level](ctx, s.db.Collection(CollectionLevels), id)
}

func (s *MongoStore) CreateLevel(ctx context.Context, level *Level) error {
	return mongoInsert(ctx, s.db.Collection(CollectionLevels), level)
}

func (s *MongoStore) ListOrganisations(ctx context.Context) ([]Organisation, error) {
	return mongoFindAll[Organisation](ctx, s.db.Collection(CollectionOrganisations), bson.M{}, sortBy("name"))
}

func (s *MongoStore) GetOrganisation(ctx context.Context, id string) (*Organisation, error) {
	return mongoFindOne[Organisation](ctx, s.db.Collection(CollectionOrganisations), id)
}

func (s *MongoStore) CreateOrganisation(ctx context.Context, org *Organisation) error {
	return mongoInsert(ctx, s.db.Collection(CollectionOrganisations), org)
}

func (s *MongoStore) ListCurrencies(ctx context.Context) ([]Currency, error) {
	return mongoFindAll[Currency](ctx, s.db.Collection(CollectionCurrencies), bson.M{}, sortBy("code"))
}

func (s *MongoStore) CreateCurrency(ctx context.Context, cur *Currency) error {
	return mongoInsert(ctx, s.db.Collection(CollectionCurrencies), cur)
}

func (s *MongoStore) ListClients(ctx context.Context) ([]Client, error) {
	clients, err := mongoFindAll[Client](ctx, s.db.Collection(CollectionClients), bson.M{}, sortBy("name"))
	if err != nil {
		return nil, err
	}
	currencies, err := s.currenciesByID(ctx, clientCurrencyIDs(clients))
	if err != nil {
		return nil, err
	}
	for i := range clients {
		attachCurrency(&clients[i], currencies)
	}
	return clients, nil
}

func (s *MongoStore) GetClient(ctx context.Context, id string) (*Client, error) {
	client, err := mongoFindOne[Client](ctx, s.db.Collection(CollectionClients), id)
	if err != nil {
		return nil, err
	}
	currencies, err := s.currenciesByID(ctx, []string{client.CurrencyID})
	if err != nil {
		return nil, err
	}
	attachCurrency(client, currencies)
	return client, nil
}

func (s *MongoStore) CreateClient(ctx context.Context, client *Client) error {
	return mongoInsert(ctx, s.db.Collection(CollectionClients), client)
}

func (s *MongoStore) GetAssignment(ctx context.Context, id string) (*ClientAssignment, error) {
	return mongoFindOne[ClientAssignment](ctx, s.db.Collection(CollectionAssignments), id)
}

func (s *MongoStore) ListAssignmentsByEmployee(ctx context.Context, employeeID string) ([]ClientAssignment, error) {
	assignments, err := mongoFindAll[ClientAssignment](ctx, s.db.Collection(CollectionAssignments),
		bson.M{"employeeId": employeeID}, sortBy("startDate"))
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return assignments, nil
	}
	clients, err := mongoFindAll[Client](ctx, s.db.Collection(CollectionClients),
		bson.M{"_id": bson.M{"$in": assignmentClientIDs(assignments)}})
	if err != nil {
		return nil, err
	}
	currencies, err := s.currenciesByID(ctx, clientCurrencyIDs(clients))
	if err != nil {
		return nil, err
	}
	attachClients(assignments, clients, currencies)
	return assignments, nil
}

func (s *MongoStore) CreateAssignment(ctx context.Context, assignment *ClientAssignment) error {
	return mongoInsert(ctx, s.db.Collection(CollectionAssignments), assignment)
}

func (s *MongoStore) UpdateAssignment(ctx context.Context, assignment *ClientAssignment) error {
	return mongoReplace(ctx, s.db.Collection(CollectionAssignments), assignment.ID, assignment)
}

func (s *MongoStore) ListPayments(ctx context.Context) ([]Payment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "receivedDate", Value: -1}})
	return mongoFindAll[Payment](ctx, s.db.Collection(CollectionPayments), bson.M{}, opts)
}

func (s *MongoStore) GetPayment(ctx context.Context, id string) (*Payment, error) {
	return mongoFindOne[Payment](ctx, s.db.Collection(CollectionPayments), id)
}

func (s *MongoStore) CreatePayment(ctx context.Context, payment *Payment) error {
	return mongoInsert(ctx, s.db.Collection(CollectionPayments), payment)
}

func (s *MongoStore) UpdatePayment(ctx context.Context, payment *Payment) error {
	return mongoReplace(ctx, s.db.Collection(CollectionPayments), payment.ID, payment)
}

func (s *MongoStore) currenciesByID(ctx context.Context, ids []string) ([]Currency, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return mongoFindAll[Currency](ctx, s.db.Collection(CollectionCurrencies), bson.M{"_id": bson.M{"$in": ids}})
}

func sortBy(fields ...string) *options.FindOptions {
	keys := make(bson.D, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, bson.E{Key: f, Value: 1})
	}
	return options.Find().SetSort(keys)
}

func mongoFindOne[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	var out T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func mongoFindAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func mongoInsert(ctx context.Context, coll *mongo.Collection, doc any) error {
	_, err := coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func mongoReplace(ctx context.Context, coll *mongo.Collection, id string, doc any) error {
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
