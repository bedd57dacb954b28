package mongodb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rejaka/portfolio/internal/apperror"
	"github.com/rejaka/portfolio/internal/model"
)

// CreateRegistration tells the two unique indexes apart by name, which the
// server includes in the E11000 message.
func (s *Store) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	reg.ID = xid.New().String()
	reg.CreatedAt = time.Now().UTC()

	_, err := s.db.Collection(registrationsCollection).InsertOne(ctx, reg)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), registrationEmailIndex) {
			return &apperror.AppError{
				Err:     apperror.ErrConflict,
				Message: "this email is already registered",
				Field:   "email",
			}
		}
		return &apperror.AppError{
			Err:     apperror.ErrConflict,
			Message: "registration code already in use",
			Field:   "code",
		}
	}
	return fmt.Errorf("mongodb: creating registration: %w", err)
}

func (s *Store) GetRegistrationByCode(ctx context.Context, code string) (*model.Registration, error) {
	var r model.Registration
	if err := s.findOne(ctx, registrationsCollection, bson.M{"code": code}, &r, "registration", code); err != nil {
		return nil, err
	}
	return &r, nil
}
