package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/damon-houk/money-calculator/internal/domain/entity"
	"github.com/damon-houk/money-calculator/internal/domain/repository"
	"github.com/dgraph-io/badger/v3"
)

const conversionKeyPrefix = "conversion:"

var _ repository.ConversionRepository = (*BadgerConversionRepository)(nil)

// BadgerConversionRepository implements the conversion repository interface using BadgerDB
type BadgerConversionRepository struct {
	db *badger.DB
}

// NewBadgerConversionRepository creates a new BadgerDB conversion repository
func NewBadgerConversionRepository(db *badger.DB) *BadgerConversionRepository {
	return &BadgerConversionRepository{db: db}
}

// Open opens a BadgerDB at path. An empty path opens an in-memory store.
func Open(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Store saves a conversion and returns its ID
func (r *BadgerConversionRepository) Store(ctx context.Context, conversion *entity.Conversion) (string, error) {
	if err := conversion.Validate(); err != nil {
		return "", fmt.Errorf("invalid conversion: %w", err)
	}

	data, err := json.Marshal(conversion)
	if err != nil {
		return "", fmt.Errorf("failed to marshal conversion: %w", err)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(conversionKey(conversion.ID), data)
	})
	if err != nil {
		return "", fmt.Errorf("failed to store conversion: %w", err)
	}

	return conversion.ID, nil
}

// FindByID retrieves a conversion by its unique identifier
func (r *BadgerConversionRepository) FindByID(ctx context.Context, id string) (*entity.Conversion, error) {
	var conversion entity.Conversion

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(conversionKey(id))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &conversion)
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", entity.ErrConversionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve conversion: %w", err)
	}

	return &conversion, nil
}

// FindRecent returns up to limit conversions ordered by creation time, newest first
func (r *BadgerConversionRepository) FindRecent(ctx context.Context, limit int) ([]entity.Conversion, error) {
	if limit <= 0 {
		return []entity.Conversion{}, nil
	}

	conversions := make([]entity.Conversion, 0)

	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(conversionKeyPrefix)
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var conversion entity.Conversion
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &conversion)
			})
			if err != nil {
				return err
			}
			conversions = append(conversions, conversion)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}

	sort.SliceStable(conversions, func(i, j int) bool {
		return conversions[i].CreatedAt.After(conversions[j].CreatedAt)
	})

	if len(conversions) > limit {
		conversions = conversions[:limit]
	}

	return conversions, nil
}

func conversionKey(id string) []byte {
	return []byte(conversionKeyPrefix + id)
}
