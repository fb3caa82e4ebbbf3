package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type counter struct {
	ID    uint `gorm:"primaryKey"`
	Value int
}

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := Open(context.Background(), dsn)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&counter{}))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestOpen_EmptyDSN(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{name: "serialization", err: &pq.Error{Code: "40001"}, want: ErrorClassSerialization},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: ErrorClassDeadlock},
		{name: "lock not available", err: fmt.Errorf("wrapped: %w", &pq.Error{Code: "55P03"}), want: ErrorClassTransient},
		{name: "unique", err: &pq.Error{Code: "23505"}, want: ErrorClassPermanent},
		{name: "plain", err: errors.New("boom"), want: ErrorClassPermanent},
		{name: "nil", err: nil, want: ErrorClassPermanent},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("create: %w", gorm.ErrDuplicatedKey)))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}

func TestWithRetry_CommitsAndRollsBack(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	ctx := context.Background()

	err := WithRetry(ctx, db, DefaultTxOptions(), func(tx *gorm.DB) error {
		return tx.Create(&counter{Value: 1}).Error
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = WithRetry(ctx, db, DefaultTxOptions(), func(tx *gorm.DB) error {
		if err := tx.Create(&counter{Value: 2}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, db.Model(&counter{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestWithRetry_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	attempts := 0

	err := WithRetry(context.Background(), db, TxOptions{MaxRetries: 2}, func(tx *gorm.DB) error {
		attempts++
		if attempts < 3 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_GivesUp(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	attempts := 0

	err := WithRetry(context.Background(), db, TxOptions{MaxRetries: 1}, func(tx *gorm.DB) error {
		attempts++
		return &pq.Error{Code: "40P01"}
	})
	require.Error(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, ErrorClassDeadlock, ClassifyError(err))
}
