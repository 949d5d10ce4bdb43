package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type countCollection interface {
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
}

// StatsProvider exposes helper methods to retrieve collection counts for basic
// diagnostics without leaking MongoDB internals to callers.
type StatsProvider struct {
	users  countCollection
	dishes countCollection
}

// NewStatsProvider constructs a StatsProvider backed by the provided user and
// dish collections.
func NewStatsProvider(users, dishes countCollection) *StatsProvider {
	return &StatsProvider{
		users:  users,
		dishes: dishes,
	}
}

// CountUsers returns the number of documents in the users collection.
func (p *StatsProvider) CountUsers(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if p == nil || p.users == nil {
		return 0, errors.New("stats provider is not initialized")
	}

	count, err := p.users.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}

	return count, nil
}

// CountDishes returns the number of documents in the dishes collection.
func (p *StatsProvider) CountDishes(ctx context.Context) (int64, error) {
	if ctx == nil {
		return 0, errors.New("context is required")
	}
	if p == nil || p.dishes == nil {
		return 0, errors.New("stats provider is not initialized")
	}

	count, err := p.dishes.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count dishes: %w", err)
	}

	return count, nil
}
