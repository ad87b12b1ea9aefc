package directory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/magabrotheeeer/reels-funnel/internal/models"
	"github.com/magabrotheeeer/reels-funnel/internal/storage/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) UpsertUser(ctx context.Context, userID int64, referrerID *int64) error {
	return m.Called(ctx, userID, referrerID).Error(0)
}
func (m *RepoMock) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *RepoMock) UpdateRole(ctx context.Context, userID int64, role models.Role) error {
	return m.Called(ctx, userID, role).Error(0)
}
func (m *RepoMock) UpdateHandle(ctx context.Context, userID int64, handle string) error {
	return m.Called(ctx, userID, handle).Error(0)
}
func (m *RepoMock) UpdatePriceOffer(ctx context.Context, userID int64, price int) error {
	return m.Called(ctx, userID, price).Error(0)
}
func (m *RepoMock) ListUsers(ctx context.Context) ([]models.UserOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserOverview), args.Error(1)
}
func (m *RepoMock) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) CountPaidUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *RepoMock) SumPayments(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
func (m *RepoMock) TopReferrers(ctx context.Context, limit int) ([]models.ReferralCount, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReferralCount), args.Error(1)
}
func (m *RepoMock) DeleteUser(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestTouch_DropsSelfReferral(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("UpsertUser", ctx, int64(1), (*int64)(nil)).Return(nil)

	svc := New(repo, newNoopLogger())
	self := int64(1)
	err := svc.Touch(ctx, 1, &self)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTouch_KeepsForeignReferral(t *testing.T) {
	ctx := context.Background()
	referrer := int64(2)
	repo := new(RepoMock)
	repo.On("GetUser", ctx, referrer).Return(&models.User{ID: referrer}, nil)
	repo.On("UpsertUser", ctx, int64(1), &referrer).Return(nil)

	svc := New(repo, newNoopLogger())
	err := svc.Touch(ctx, 1, &referrer)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestTouch_DropsUnknownReferral(t *testing.T) {
	ctx := context.Background()
	referrer := int64(999)
	repo := new(RepoMock)
	repo.On("GetUser", ctx, referrer).Return(nil, repository.ErrNotFound)
	repo.On("UpsertUser", ctx, int64(1), (*int64)(nil)).Return(nil)

	svc := New(repo, newNoopLogger())
	err := svc.Touch(ctx, 1, &referrer)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestChooseRole(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		choice  string
		want    models.Role
		wantErr error
	}{
		{name: "new branch", choice: "new", want: models.RoleNewPending},
		{name: "old branch", choice: "old", want: models.RoleOldPending},
		{name: "unknown branch", choice: "vip", wantErr: ErrInvalidChoice},
		{name: "unknown user", choice: "new", wantErr: ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			switch {
			case tt.wantErr == nil:
				repo.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1}, nil)
				repo.On("UpdateRole", ctx, int64(1), tt.want).Return(nil)
			case errors.Is(tt.wantErr, ErrUserNotFound):
				repo.On("GetUser", ctx, int64(1)).Return(nil, repository.ErrNotFound)
			}

			svc := New(repo, newNoopLogger())
			got, err := svc.ChooseRole(ctx, 1, tt.choice)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestSubmitHandle(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		role       models.Role
		raw        string
		wantSaved  bool
		wantHandle string
		wantErr    error
	}{
		{
			name:       "strips at sign and saves",
			role:       models.RoleOldPending,
			raw:        "@insta_user",
			wantSaved:  true,
			wantHandle: "insta_user",
		},
		{
			name:      "silently ignored outside old_pending",
			role:      models.RoleNew,
			raw:       "@insta_user",
			wantSaved: false,
		},
		{
			name:    "too short handle is rejected",
			role:    models.RoleOldPending,
			raw:     "@a",
			wantErr: ErrInvalidHandle,
		},
		{
			name:    "handle with spaces is rejected",
			role:    models.RoleOldPending,
			raw:     "two words",
			wantErr: ErrInvalidHandle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1, Role: tt.role}, nil)
			if tt.wantSaved {
				repo.On("UpdateHandle", ctx, int64(1), tt.wantHandle).Return(nil)
			}

			svc := New(repo, newNoopLogger())
			saved, err := svc.SubmitHandle(ctx, 1, tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSaved, saved)
			repo.AssertExpectations(t)
		})
	}
}

func TestAssignPrice_FinalizesPendingRole(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1, Role: models.RoleOldPending}, nil)
	repo.On("UpdatePriceOffer", ctx, int64(1), 1500).Return(nil)
	repo.On("UpdateRole", ctx, int64(1), models.RoleOld).Return(nil)

	svc := New(repo, newNoopLogger())
	role, err := svc.AssignPrice(ctx, 1, 1500)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOld, role)
	repo.AssertExpectations(t)
}

func TestOnPaymentConfirmed(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		role      models.Role
		wantFinal *models.Role
	}{
		{name: "new_pending becomes new", role: models.RoleNewPending, wantFinal: rolePtr(models.RoleNew)},
		{name: "old_pending becomes old", role: models.RoleOldPending, wantFinal: rolePtr(models.RoleOld)},
		{name: "terminal role is untouched", role: models.RoleNew, wantFinal: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			repo.On("GetUser", ctx, int64(1)).Return(&models.User{ID: 1, Role: tt.role}, nil)
			if tt.wantFinal != nil {
				repo.On("UpdateRole", ctx, int64(1), *tt.wantFinal).Return(nil)
			}

			svc := New(repo, newNoopLogger())
			err := svc.OnPaymentConfirmed(ctx, 1)
			require.NoError(t, err)
			repo.AssertExpectations(t)
			if tt.wantFinal == nil {
				repo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	repo := new(RepoMock)
	repo.On("CountUsers", ctx).Return(10, nil)
	repo.On("CountPaidUsers", ctx).Return(3, nil)
	repo.On("SumPayments", ctx).Return(int64(4500), nil)
	repo.On("TopReferrers", ctx, topReferrersLimit).
		Return([]models.ReferralCount{{UserID: 7, Count: 4}}, nil)

	svc := New(repo, newNoopLogger())
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, stats.TotalUsers)
	assert.Equal(t, 3, stats.PaidUsers)
	assert.Equal(t, int64(4500), stats.PaymentsSum)
	require.Len(t, stats.TopReferrers, 1)
	assert.Equal(t, int64(7), stats.TopReferrers[0].UserID)
}

func rolePtr(r models.Role) *models.Role { return &r }
