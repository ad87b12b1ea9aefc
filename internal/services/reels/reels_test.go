package reels

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) InsertReel(ctx context.Context, title string, createdBy int64) (int64, error) {
	args := m.Called(ctx, title, createdBy)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) UpsertAsset(ctx context.Context, asset models.ReelAsset) error {
	return m.Called(ctx, asset).Error(0)
}
func (m *RepoMock) SetReelActive(ctx context.Context, reelID int64, isActive bool) (bool, error) {
	args := m.Called(ctx, reelID, isActive)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) DeleteReel(ctx context.Context, reelID int64) (bool, error) {
	args := m.Called(ctx, reelID)
	return args.Bool(0), args.Error(1)
}
func (m *RepoMock) ListReels(ctx context.Context) ([]models.Reel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Reel), args.Error(1)
}
func (m *RepoMock) GetReelBundle(ctx context.Context, reelID int64) (*models.ReelBundle, error) {
	args := m.Called(ctx, reelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReelBundle), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("InsertReel", ctx, "idea of the day", int64(99)).Return(int64(10), nil)

	svc := New(repo, newNoopLogger())
	id, err := svc.Create(ctx, "idea of the day", 99)
	require.NoError(t, err)
	assert.Equal(t, int64(10), id)
	repo.AssertExpectations(t)
}

func TestUpsertAsset_Validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		req     models.AssetRequest
		wantErr error
	}{
		{
			name: "video with file ref is accepted",
			req:  models.AssetRequest{Kind: models.AssetVideo, FileRef: "file-1"},
		},
		{
			name: "caption with text is accepted",
			req:  models.AssetRequest{Kind: models.AssetCaption, Text: "hello"},
		},
		{
			name:    "video without file ref is rejected",
			req:     models.AssetRequest{Kind: models.AssetVideo},
			wantErr: ErrInvalidAsset,
		},
		{
			name:    "caption without text is rejected",
			req:     models.AssetRequest{Kind: models.AssetCaption},
			wantErr: ErrInvalidAsset,
		},
		{
			name:    "unknown kind is rejected",
			req:     models.AssetRequest{Kind: "gif", FileRef: "file-1"},
			wantErr: ErrInvalidAsset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			if tt.wantErr == nil {
				repo.On("GetReelBundle", ctx, int64(10)).
					Return(&models.ReelBundle{Reel: models.Reel{ID: 10}}, nil)
				repo.On("UpsertAsset", ctx, models.ReelAsset{
					ReelID:  10,
					Kind:    tt.req.Kind,
					FileRef: tt.req.FileRef,
					Text:    tt.req.Text,
				}).Return(nil)
			}

			svc := New(repo, newNoopLogger())
			err := svc.UpsertAsset(ctx, 10, tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			repo.AssertExpectations(t)
		})
	}
}

func TestSetActive_UnknownReel(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("SetReelActive", ctx, int64(10), false).Return(false, nil)

	svc := New(repo, newNoopLogger())
	err := svc.SetActive(ctx, 10, false)
	assert.ErrorIs(t, err, ErrReelNotFound)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("DeleteReel", ctx, int64(10)).Return(true, nil)

	svc := New(repo, newNoopLogger())
	err := svc.Remove(ctx, 10)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
