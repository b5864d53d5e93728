package accounts

import (
	"context"
)

type mockUsersStore struct {
	CreateFn      func(context.Context, User) error
	ExistsFn      func(context.Context, string, string) (bool, error)
	GetByUserIDFn func(context.Context, string) (User, error)
	ListFn        func(context.Context) ([]User, error)
	UpdateFn      func(context.Context, User) error
	DeleteFn      func(context.Context, string) error
	CheckHealthFn func(context.Context) error
}

func (m *mockUsersStore) Create(ctx context.Context, user User) error {
	return m.CreateFn(ctx, user)
}

func (m *mockUsersStore) Exists(
	ctx context.Context,
	userID string,
	email string,
) (bool, error) {
	return m.ExistsFn(ctx, userID, email)
}

func (m *mockUsersStore) GetByUserID(
	ctx context.Context,
	userID string,
) (User, error) {
	return m.GetByUserIDFn(ctx, userID)
}

func (m *mockUsersStore) List(ctx context.Context) ([]User, error) {
	return m.ListFn(ctx)
}

func (m *mockUsersStore) Update(ctx context.Context, user User) error {
	return m.UpdateFn(ctx, user)
}

func (m *mockUsersStore) Delete(ctx context.Context, id string) error {
	return m.DeleteFn(ctx, id)
}

func (m *mockUsersStore) CheckHealth(ctx context.Context) error {
	return m.CheckHealthFn(ctx)
}

type mockAvatarStore struct {
	PutFn func(context.Context, string, AvatarUpload) (string, error)
}

func (m *mockAvatarStore) Put(
	ctx context.Context,
	userID string,
	avatar AvatarUpload,
) (string, error) {
	return m.PutFn(ctx, userID, avatar)
}

type mockDeletionRequestsStore struct {
	CreateFn         func(context.Context, DeletionRequest) error
	ExistsFn         func(context.Context, string) (bool, error)
	GetFn            func(context.Context, string) (DeletionRequest, error)
	UpdateFn         func(context.Context, DeletionRequest) error
	DeleteByUserIDFn func(context.Context, string) error
	ListFn           func(context.Context) ([]DeletionRequest, error)
}

func (m *mockDeletionRequestsStore) Create(
	ctx context.Context,
	request DeletionRequest,
) error {
	return m.CreateFn(ctx, request)
}

func (m *mockDeletionRequestsStore) Exists(
	ctx context.Context,
	userID string,
) (bool, error) {
	return m.ExistsFn(ctx, userID)
}

func (m *mockDeletionRequestsStore) Get(
	ctx context.Context,
	id string,
) (DeletionRequest, error) {
	return m.GetFn(ctx, id)
}

func (m *mockDeletionRequestsStore) Update(
	ctx context.Context,
	request DeletionRequest,
) error {
	return m.UpdateFn(ctx, request)
}

func (m *mockDeletionRequestsStore) DeleteByUserID(
	ctx context.Context,
	userID string,
) error {
	return m.DeleteByUserIDFn(ctx, userID)
}

func (m *mockDeletionRequestsStore) List(
	ctx context.Context,
) ([]DeletionRequest, error) {
	return m.ListFn(ctx)
}

type mockRolesProvider struct {
	AccessTokenFn func(context.Context) (string, error)
	RolesFn       func(context.Context, string, string) ([]string, error)
}

func (m *mockRolesProvider) AccessToken(ctx context.Context) (string, error) {
	return m.AccessTokenFn(ctx)
}

func (m *mockRolesProvider) Roles(
	ctx context.Context,
	accessToken string,
	subject string,
) ([]string, error) {
	return m.RolesFn(ctx, accessToken, subject)
}
