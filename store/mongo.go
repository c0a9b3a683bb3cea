package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"rishta/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoUserStore backs UserStore with the users collection.
type MongoUserStore struct {
	coll *mongo.Collection
}

func NewMongoUserStore(coll *mongo.Collection) *MongoUserStore {
	return &MongoUserStore{coll: coll}
}

func (s *MongoUserStore) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *MongoUserStore) Replace(ctx context.Context, u *models.User) error {
	u.UpdatedAt = time.Now()
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoUserStore) IncrementPending(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"pendingMatchRequests": 1}})
	return err
}

// DecrementPending only matches documents with a positive counter so the
// value never drops below zero under racing accept/decline calls.
func (s *MongoUserStore) DecrementPending(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "pendingMatchRequests": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"pendingMatchRequests": -1}})
	return err
}

func (s *MongoUserStore) IncrementMatchCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$inc": bson.M{"matchCount": 1}})
	return err
}

func (s *MongoUserStore) DecrementMatchCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "matchCount": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"matchCount": -1}})
	return err
}

func dateOfBirthRange(query bson.M, minAge, maxAge int) {
	now := time.Now()
	dob := bson.M{}
	if maxAge > 0 {
		dob["$gte"] = time.Date(now.Year()-maxAge-1, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if minAge > 0 {
		dob["$lte"] = time.Date(now.Year()-minAge, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if len(dob) > 0 {
		query["dateOfBirth"] = dob
	}
}

func (s *MongoUserStore) Browse(ctx context.Context, f BrowseFilter) ([]models.User, error) {
	query := bson.M{
		"_id":              bson.M{"$ne": f.ExcludeID},
		"profileCompleted": true,
	}
	if f.Gender != "" {
		query["gender"] = bson.M{"$regex": "^" + regexp.QuoteMeta(f.Gender) + "$", "$options": "i"}
	}
	dateOfBirthRange(query, f.MinAge, f.MaxAge)
	if f.Ethnicity != "" && f.Ethnicity != "Any" {
		query["ethnicity"] = f.Ethnicity
	}
	if f.Location != "" {
		query["currentLocation"] = bson.M{"$regex": regexp.QuoteMeta(f.Location), "$options": "i"}
	}
	if f.Profession != "" {
		query["profession"] = bson.M{"$regex": regexp.QuoteMeta(f.Profession), "$options": "i"}
	}
	if f.Education != "" {
		query["education"] = f.Education
	}
	if f.MaritalStatus != "" {
		query["maritalStatus"] = f.MaritalStatus
	}

	cursor, err := s.coll.Find(ctx, query,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *MongoUserStore) List(ctx context.Context, f AdminFilter) ([]models.User, int64, error) {
	query := bson.M{"isAdmin": bson.M{"$ne": true}}
	if f.Gender != "" && f.Gender != "all" {
		query["gender"] = f.Gender
	}
	dateOfBirthRange(query, f.MinAge, f.MaxAge)
	if f.ProfileCompleted != nil {
		query["profileCompleted"] = *f.ProfileCompleted
	}
	if f.Search != "" {
		rx := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		query["$or"] = []bson.M{
			{"firstName": rx},
			{"lastName": rx},
			{"email": rx},
		}
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 50
	}

	total, err := s.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.coll.Find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page-1)*limit)).
		SetLimit(int64(limit)))
	if err != nil {
		return nil, 0, err
	}
	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *MongoUserStore) Statistics(ctx context.Context) (Statistics, error) {
	var stats Statistics
	nonAdmin := bson.M{"isAdmin": bson.M{"$ne": true}}

	count := func(extra bson.M) (int64, error) {
		query := bson.M{"isAdmin": bson.M{"$ne": true}}
		for k, v := range extra {
			query[k] = v
		}
		return s.coll.CountDocuments(ctx, query)
	}

	var err error
	if stats.TotalUsers, err = s.coll.CountDocuments(ctx, nonAdmin); err != nil {
		return stats, err
	}
	if stats.MaleUsers, err = count(bson.M{"gender": "male"}); err != nil {
		return stats, err
	}
	if stats.FemaleUsers, err = count(bson.M{"gender": "female"}); err != nil {
		return stats, err
	}
	if stats.CompletedProfiles, err = count(bson.M{"profileCompleted": true}); err != nil {
		return stats, err
	}
	if stats.IncompleteProfiles, err = count(bson.M{"profileCompleted": false}); err != nil {
		return stats, err
	}
	return stats, nil
}

// MongoConnectionStore backs ConnectionStore with the connections
// collection. Pair uniqueness rides on the unique pairKey index.
type MongoConnectionStore struct {
	coll *mongo.Collection
}

func NewMongoConnectionStore(coll *mongo.Collection) *MongoConnectionStore {
	return &MongoConnectionStore{coll: coll}
}

func (s *MongoConnectionStore) Insert(ctx context.Context, c *models.Connection) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.PairKey = models.PairKey(c.Sender, c.Receiver)
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (s *MongoConnectionStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error) {
	var c models.Connection
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoConnectionStore) FindByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	var c models.Connection
	err := s.coll.FindOne(ctx, bson.M{"pairKey": models.PairKey(a, b)}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoConnectionStore) TransitionFromPending(ctx context.Context, id primitive.ObjectID, newStatus string) (*models.Connection, error) {
	var c models.Connection
	err := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.ConnectionPending},
		bson.M{"$set": bson.M{"status": newStatus, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *MongoConnectionStore) find(ctx context.Context, query bson.M, sort bson.D) ([]models.Connection, error) {
	cursor, err := s.coll.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var conns []models.Connection
	if err := cursor.All(ctx, &conns); err != nil {
		return nil, err
	}
	return conns, nil
}

func (s *MongoConnectionStore) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return s.find(ctx, bson.M{
		"$or": []bson.M{{"sender": userID}, {"receiver": userID}},
	}, bson.D{{Key: "createdAt", Value: -1}})
}

func (s *MongoConnectionStore) ListPendingForReceiver(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return s.find(ctx, bson.M{
		"receiver": userID,
		"status":   models.ConnectionPending,
	}, bson.D{{Key: "createdAt", Value: -1}})
}

func (s *MongoConnectionStore) ListSentBySender(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return s.find(ctx, bson.M{"sender": userID}, bson.D{{Key: "createdAt", Value: -1}})
}

func (s *MongoConnectionStore) ListAcceptedForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Connection, error) {
	return s.find(ctx, bson.M{
		"$or":    []bson.M{{"sender": userID}, {"receiver": userID}},
		"status": models.ConnectionAccepted,
	}, bson.D{{Key: "updatedAt", Value: -1}})
}

func (s *MongoConnectionStore) HasAccepted(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{
		"pairKey": models.PairKey(a, b),
		"status":  models.ConnectionAccepted,
	})
	return count > 0, err
}

func (s *MongoConnectionStore) DeleteForUser(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{
		"$or": []bson.M{{"sender": userID}, {"receiver": userID}},
	})
	return err
}

// MongoPendingStore backs PendingStore with the pending_registrations
// collection. Entries are keyed by email; re-registering overwrites the
// previous attempt with a fresh code.
type MongoPendingStore struct {
	coll *mongo.Collection
}

func NewMongoPendingStore(coll *mongo.Collection) *MongoPendingStore {
	return &MongoPendingStore{coll: coll}
}

func (s *MongoPendingStore) Upsert(ctx context.Context, p *models.PendingRegistration) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"email": p.Email},
		bson.M{"$set": bson.M{
			"firstName":        p.FirstName,
			"lastName":         p.LastName,
			"email":            p.Email,
			"password":         p.Password,
			"dateOfBirth":      p.DateOfBirth,
			"gender":           p.Gender,
			"profilePicture":   p.ProfilePicture,
			"verificationCode": p.VerificationCode,
			"expiresAt":        p.ExpiresAt,
			"createdAt":        p.CreatedAt,
		}},
		options.Update().SetUpsert(true))
	return err
}

func (s *MongoPendingStore) FindByEmail(ctx context.Context, email string) (*models.PendingRegistration, error) {
	var p models.PendingRegistration
	err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *MongoPendingStore) DeleteByEmail(ctx context.Context, email string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"email": email})
	return err
}

// MongoCityStore backs CityStore with the cities collection.
type MongoCityStore struct {
	coll *mongo.Collection
}

func NewMongoCityStore(coll *mongo.Collection) *MongoCityStore {
	return &MongoCityStore{coll: coll}
}

func (s *MongoCityStore) SearchPrefix(ctx context.Context, q string, limit int64) ([]models.City, error) {
	rx := bson.M{"$regex": "^" + regexp.QuoteMeta(q), "$options": "i"}
	cursor, err := s.coll.Find(ctx,
		bson.M{"$or": []bson.M{{"name": rx}, {"displayName": rx}}},
		options.Find().
			SetSort(bson.D{{Key: "population", Value: -1}}).
			SetLimit(limit))
	if err != nil {
		return nil, err
	}
	var cities []models.City
	if err := cursor.All(ctx, &cities); err != nil {
		return nil, err
	}
	return cities, nil
}

func (s *MongoCityStore) InsertMany(ctx context.Context, cities []models.City) error {
	if len(cities) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(cities))
	for i := range cities {
		if cities[i].ID.IsZero() {
			cities[i].ID = primitive.NewObjectID()
		}
		if cities[i].CreatedAt.IsZero() {
			cities[i].CreatedAt = time.Now()
		}
		docs = append(docs, cities[i])
	}
	_, err := s.coll.InsertMany(ctx, docs)
	return err
}

func (s *MongoCityStore) DeleteAll(ctx context.Context) error {
	_, err := s.coll.DeleteMany(ctx, bson.M{})
	return err
}
