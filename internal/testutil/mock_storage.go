//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/piramiden/internal/server/storage"
)

// MockStore implements room.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) SaveRoom(ctx context.Context, code string, data *storage.RoomData) error {
	args := m.Called(ctx, code, data)
	return args.Error(0)
}

func (m *MockStore) DeleteRoom(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockStore) RecordDrink(ctx context.Context, code, player string, d storage.DrinkRecord) error {
	args := m.Called(ctx, code, player, d)
	return args.Error(0)
}

func (m *MockStore) RecordMemory(ctx context.Context, code, player string, ok bool) error {
	args := m.Called(ctx, code, player, ok)
	return args.Error(0)
}

// MockStatsReader implements the drink stats lookup used by the HTTP API
type MockStatsReader struct {
	mock.Mock
}

func (m *MockStatsReader) GetDrinkStats(ctx context.Context, code string) ([]storage.PlayerDrinks, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.PlayerDrinks), args.Error(1)
}
