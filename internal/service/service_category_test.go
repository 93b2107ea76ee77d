package service

import (
	"context"
	"errors"
	"testing"

	"github.com/MKhiriev/go-blog/internal/logger"
	"github.com/MKhiriev/go-blog/internal/mock"
	"github.com/MKhiriev/go-blog/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCategoryService_Seed(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockCategoryRepository(ctrl)
	svc := NewCategoryService(repo, logger.Nop())

	repo.EXPECT().SeedCategories(gomock.Any(), models.DefaultCategories).Return(nil).Times(2)

	require.NoError(t, svc.Seed(context.Background()))
	require.NoError(t, svc.Seed(context.Background()))
}

func TestCategoryService_SeedError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockCategoryRepository(ctrl)
	svc := NewCategoryService(repo, logger.Nop())

	dbErr := errors.New("db down")
	repo.EXPECT().SeedCategories(gomock.Any(), gomock.Any()).Return(dbErr)

	assert.ErrorIs(t, svc.Seed(context.Background()), dbErr)
}

func TestCategoryService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mock.NewMockCategoryRepository(ctrl)
	svc := NewCategoryService(repo, logger.Nop())

	want := []models.Category{{ID: 4, Name: "business"}, {ID: 1, Name: "IT"}}
	repo.EXPECT().ListCategories(gomock.Any()).Return(want, nil)

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
