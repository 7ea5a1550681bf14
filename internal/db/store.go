package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Store is the handle every request goes through. All state lives in the
// database; the Store itself holds nothing mutable.
//
// A Store created with rollback enabled wraps the whole of its lifetime in
// one outer transaction. Units of work then run as savepoints inside it and
// Close discards everything, which keeps test databases hermetic.
type Store struct {
	db    *gorm.DB
	outer *gorm.DB
}

func NewStore(conn *gorm.DB, rollback bool) (*Store, error) {
	if conn == nil {
		return nil, errors.New("db connection is nil")
	}
	if !rollback {
		return &Store{db: conn}, nil
	}
	tx := conn.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &Store{db: tx, outer: tx}, nil
}

// Close rolls back the outer transaction of a rollback Store. It does not
// close the underlying connection pool.
func (s *Store) Close() error {
	if s.outer == nil {
		return nil
	}
	err := s.outer.Rollback().Error
	s.outer = nil
	return err
}

// DB exposes the handle queries should run against, for callers such as tests
// that need to seed rows directly.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Store) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
