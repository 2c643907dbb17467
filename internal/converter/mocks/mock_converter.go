package mocks

import (
	"context"

	"docconvert/internal/converter"
	"github.com/stretchr/testify/mock"
)

type MockConverter struct {
	mock.Mock
}

func (m *MockConverter) ConvertToStorage(ctx context.Context, src, hashName string, store converter.ObjectPutter, hint converter.Category) (string, converter.Category, error) {
	args := m.Called(ctx, src, hashName, store, hint)
	return args.String(0), args.Get(1).(converter.Category), args.Error(2)
}
