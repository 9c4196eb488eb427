package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/accounts-service/internal/core/domain"
	"github.com/99minutos/accounts-service/internal/core/ports"
)

const usersCollection = "users"

var _ ports.UserRepository = (*UserRepository)(nil)

type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), now: time.Now}
}

// userDocument is the stored shape. The id is a UUID string so records stay
// portable between the relational and document backends.
type userDocument struct {
	ID           string    `bson:"_id"`
	FullName     string    `bson:"full_name"`
	BirthDate    time.Time `bson:"birth_date"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	IsActive     bool      `bson:"is_active"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toDocument(u *domain.User) userDocument {
	return userDocument{
		ID:           u.ID,
		FullName:     u.FullName,
		BirthDate:    u.BirthDate.UTC(),
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt.UTC(),
		UpdatedAt:    u.UpdatedAt.UTC(),
	}
}

func (d userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID,
		FullName:     d.FullName,
		BirthDate:    d.BirthDate.UTC(),
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		IsActive:     d.IsActive,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}
}

// EnsureIndexes creates the unique email index and the listing index.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("ensure user indexes: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	stored := *user
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if !stored.Role.Valid() {
		stored.Role = domain.RoleUser
	}
	now := r.now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = stored.CreatedAt

	doc := toDocument(&stored)
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return nil, mapError("insert user", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "find user by id", bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "find user by email", bson.M{"email": email})
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, mapError("list users", err)
	}
	defer cur.Close(ctx)

	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, mapError("list users", err)
	}

	users := make([]*domain.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.toDomain())
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, upd domain.UserUpdate) (*domain.User, error) {
	if upd.Empty() {
		return r.FindByID(ctx, id)
	}
	if upd.Role != nil && !upd.Role.Valid() {
		return nil, &domain.ValidationError{Field: "role", Message: "Invalid role"}
	}
	return r.findOneAndSet(ctx, "update user", id, updateDocument(upd, r.now().UTC()))
}

func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) (*domain.User, error) {
	return r.findOneAndSet(ctx, "set user active", id, bson.M{
		"is_active":  active,
		"updated_at": r.now().UTC(),
	})
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, mapError("check email", err)
	}
	return n > 0, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError("delete user", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, mapError(op, err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) findOneAndSet(ctx context.Context, op, id string, set bson.M) (*domain.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc userDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&doc)
	if err != nil {
		return nil, mapError(op, err)
	}
	return doc.toDomain(), nil
}

// updateDocument builds the $set body for upd, always refreshing updated_at.
func updateDocument(upd domain.UserUpdate, now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if upd.FullName != nil {
		set["full_name"] = *upd.FullName
	}
	if upd.BirthDate != nil {
		set["birth_date"] = upd.BirthDate.UTC()
	}
	if upd.Email != nil {
		set["email"] = *upd.Email
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.Role != nil {
		set["role"] = string(*upd.Role)
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}
	return set
}

func mapError(op string, err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return domain.ErrUserNotFound
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrDuplicateEmail
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
	}
}
