package rest

import (
	"context"

	"github.com/krancour/accounts/apiserver/internal/accounts"
)

type mockUsersService struct {
	RegisterFn      func(context.Context, accounts.UserRegistration) (accounts.User, error)
	RegisterAdminFn func(context.Context, accounts.UserRegistration) (accounts.User, error)
	ExistsFn        func(context.Context, string, string) bool
	GetFn           func(context.Context, string) (accounts.User, error)
	ListFn          func(context.Context) ([]accounts.User, error)
	UpdateFn        func(context.Context, string, accounts.UserPatch) (accounts.User, error)
	UpdateAvatarFn  func(context.Context, string, string) (accounts.User, error)
	UploadAvatarFn  func(context.Context, string, accounts.AvatarUpload) (accounts.User, error)
	DeleteFn        func(context.Context, string) bool
	CheckHealthFn   func(context.Context) error
}

func (m *mockUsersService) Register(
	ctx context.Context,
	registration accounts.UserRegistration,
) (accounts.User, error) {
	return m.RegisterFn(ctx, registration)
}

func (m *mockUsersService) RegisterAdmin(
	ctx context.Context,
	registration accounts.UserRegistration,
) (accounts.User, error) {
	return m.RegisterAdminFn(ctx, registration)
}

func (m *mockUsersService) Exists(
	ctx context.Context,
	userID string,
	email string,
) bool {
	return m.ExistsFn(ctx, userID, email)
}

func (m *mockUsersService) Get(
	ctx context.Context,
	userID string,
) (accounts.User, error) {
	return m.GetFn(ctx, userID)
}

func (m *mockUsersService) List(ctx context.Context) ([]accounts.User, error) {
	return m.ListFn(ctx)
}

func (m *mockUsersService) Update(
	ctx context.Context,
	userID string,
	patch accounts.UserPatch,
) (accounts.User, error) {
	return m.UpdateFn(ctx, userID, patch)
}

func (m *mockUsersService) UpdateAvatar(
	ctx context.Context,
	userID string,
	avatarPath string,
) (accounts.User, error) {
	return m.UpdateAvatarFn(ctx, userID, avatarPath)
}

func (m *mockUsersService) UploadAvatar(
	ctx context.Context,
	userID string,
	avatar accounts.AvatarUpload,
) (accounts.User, error) {
	return m.UploadAvatarFn(ctx, userID, avatar)
}

func (m *mockUsersService) Delete(ctx context.Context, id string) bool {
	return m.DeleteFn(ctx, id)
}

func (m *mockUsersService) CheckHealth(ctx context.Context) error {
	return m.CheckHealthFn(ctx)
}

type mockDeletionRequestsService struct {
	SubmitFn      func(context.Context, string, string) error
	CheckExistsFn func(context.Context, string) bool
	MarkTreatedFn func(context.Context, string) error
	CancelFn      func(context.Context, string) error
	ListFn        func(context.Context) ([]accounts.DeletionRequest, error)
}

func (m *mockDeletionRequestsService) Submit(
	ctx context.Context,
	userID string,
	reason string,
) error {
	return m.SubmitFn(ctx, userID, reason)
}

func (m *mockDeletionRequestsService) CheckExists(
	ctx context.Context,
	userID string,
) bool {
	return m.CheckExistsFn(ctx, userID)
}

func (m *mockDeletionRequestsService) MarkTreated(
	ctx context.Context,
	requestID string,
) error {
	return m.MarkTreatedFn(ctx, requestID)
}

func (m *mockDeletionRequestsService) Cancel(
	ctx context.Context,
	userID string,
) error {
	return m.CancelFn(ctx, userID)
}

func (m *mockDeletionRequestsService) List(
	ctx context.Context,
) ([]accounts.DeletionRequest, error) {
	return m.ListFn(ctx)
}
