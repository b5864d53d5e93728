package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func strPtr(s string) *string {
	return &s
}

func TestUserMarshalJSON(t *testing.T) {
	user := User{
		ID:       primitive.NewObjectID(),
		UserID:   "auth0|tony",
		Fullname: "Tony Stark",
		Profile: Profile{
			City: strPtr("Malibu"),
		},
	}
	jsonBytes, err := json.Marshal(user)
	require.NoError(t, err)
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(jsonBytes, &body))
	require.Equal(t, user.ID.Hex(), body["id"])
	require.Equal(t, user.ID.Hex(), body["_id"])
	require.Equal(t, "Malibu", body["ville"])
	require.Equal(t, "auth0|tony", body["userId"])
	_, ok := body["numeroTel"]
	require.False(t, ok)
}

func TestUsersServiceRegister(t *testing.T) {
	testCases := []struct {
		name         string
		admin        bool
		registration UserRegistration
		store        UsersStore
		assertions   func(t *testing.T, user User, err error)
	}{
		{
			name:         "missing fullname",
			registration: UserRegistration{UserID: "auth0|tony", Email: "tony@starkindustries.com"},
			assertions: func(t *testing.T, _ User, err error) {
				require.IsType(t, &meta.ErrBadRequest{}, err)
				require.Equal(
					t,
					"Name and email are required",
					err.(*meta.ErrBadRequest).Reason,
				)
			},
		},
		{
			name:         "admin missing email",
			admin:        true,
			registration: UserRegistration{UserID: "auth0|tony", Fullname: "Tony Stark"},
			assertions: func(t *testing.T, _ User, err error) {
				require.IsType(t, &meta.ErrBadRequest{}, err)
				require.Equal(
					t,
					"Nickname and email are required",
					err.(*meta.ErrBadRequest).Reason,
				)
			},
		},
		{
			name: "missing user ID",
			registration: UserRegistration{
				Fullname: "Tony Stark",
				Email:    "tony@starkindustries.com",
			},
			assertions: func(t *testing.T, _ User, err error) {
				require.IsType(t, &meta.ErrBadRequest{}, err)
			},
		},
		{
			name: "duplicate email",
			registration: UserRegistration{
				UserID:   "auth0|tony",
				Fullname: "Tony Stark",
				Email:    "tony@starkindustries.com",
			},
			store: &mockUsersStore{
				CreateFn: func(context.Context, User) error {
					return &meta.ErrConflict{Field: "email", Reason: "taken"}
				},
			},
			assertions: func(t *testing.T, _ User, err error) {
				require.Error(t, err)
				require.Contains(t, err.Error(), "taken")
			},
		},
		{
			name: "client",
			registration: UserRegistration{
				UserID:   "auth0|tony",
				Fullname: "Tony Stark",
				Email:    "tony@starkindustries.com",
				Profile:  Profile{Phone: strPtr("555-1234")},
			},
			store: &mockUsersStore{
				CreateFn: func(_ context.Context, user User) error {
					require.Equal(t, []string{RoleClient}, user.Roles)
					return nil
				},
			},
			assertions: func(t *testing.T, user User, err error) {
				require.NoError(t, err)
				require.False(t, user.ID.IsZero())
				require.Equal(t, []string{RoleClient}, user.Roles)
				require.NotNil(t, user.CreatedAt)
				require.Equal(t, "555-1234", *user.Phone)
				require.NotNil(t, user.Preferences)
			},
		},
		{
			name:  "admin",
			admin: true,
			registration: UserRegistration{
				UserID:   "auth0|pepper",
				Fullname: "Pepper Potts",
				Email:    "pepper@starkindustries.com",
			},
			store: &mockUsersStore{
				CreateFn: func(_ context.Context, user User) error {
					require.Equal(t, []string{RoleAdmin}, user.Roles)
					return nil
				},
			},
			assertions: func(t *testing.T, user User, err error) {
				require.NoError(t, err)
				require.Equal(t, []string{RoleAdmin}, user.Roles)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewUsersService(testCase.store, nil)
			var user User
			var err error
			if testCase.admin {
				user, err = svc.RegisterAdmin(context.Background(), testCase.registration)
			} else {
				user, err = svc.Register(context.Background(), testCase.registration)
			}
			testCase.assertions(t, user, err)
		})
	}
}

func TestUsersServiceExists(t *testing.T) {
	testCases := []struct {
		name     string
		store    UsersStore
		expected bool
	}{
		{
			name: "store error is reported as false",
			store: &mockUsersStore{
				ExistsFn: func(context.Context, string, string) (bool, error) {
					return true, errors.New("store error")
				},
			},
			expected: false,
		},
		{
			name: "exists",
			store: &mockUsersStore{
				ExistsFn: func(_ context.Context, userID, email string) (bool, error) {
					require.Equal(t, "auth0|tony", userID)
					require.Equal(t, "tony@starkindustries.com", email)
					return true, nil
				},
			},
			expected: true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewUsersService(testCase.store, nil)
			require.Equal(
				t,
				testCase.expected,
				svc.Exists(
					context.Background(),
					"auth0|tony",
					"tony@starkindustries.com",
				),
			)
		})
	}
}

func TestUsersServiceGet(t *testing.T) {
	svc := NewUsersService(
		&mockUsersStore{
			GetByUserIDFn: func(context.Context, string) (User, error) {
				return User{}, &meta.ErrNotFound{Type: "User"}
			},
		},
		nil,
	)
	_, err := svc.Get(context.Background(), "auth0|nobody")
	require.Error(t, err)
	require.IsType(t, &meta.ErrNotFound{}, errorsCause(err))
}

func TestMergePreferences(t *testing.T) {
	testCases := []struct {
		name     string
		existing []Preference
		updates  []Preference
		expected []Preference
	}{
		{
			name:     "replace, not union",
			existing: []Preference{{Name: "music", Preferences: []string{"jazz"}}},
			updates:  []Preference{{Name: "music", Preferences: []string{"rock"}}},
			expected: []Preference{{Name: "music", Preferences: []string{"rock"}}},
		},
		{
			name:     "append new category",
			existing: []Preference{{Name: "music", Preferences: []string{"jazz"}}},
			updates:  []Preference{{Name: "sports", Preferences: []string{"tennis"}}},
			expected: []Preference{
				{Name: "music", Preferences: []string{"jazz"}},
				{Name: "sports", Preferences: []string{"tennis"}},
			},
		},
		{
			name: "duplicate names in one patch collapse",
			updates: []Preference{
				{Name: "food", Preferences: []string{"pizza"}},
				{Name: "food", Preferences: []string{"sushi"}},
			},
			expected: []Preference{{Name: "food", Preferences: []string{"sushi"}}},
		},
		{
			name:     "nothing to merge",
			expected: []Preference{},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(
				t,
				testCase.expected,
				mergePreferences(testCase.existing, testCase.updates),
			)
		})
	}
}

func TestMergePreferencesDoesNotMutateExisting(t *testing.T) {
	existing := []Preference{{Name: "music", Preferences: []string{"jazz"}}}
	mergePreferences(
		existing,
		[]Preference{{Name: "music", Preferences: []string{"rock"}}},
	)
	require.Equal(t, []string{"jazz"}, existing[0].Preferences)
}

func TestUsersServiceUpdate(t *testing.T) {
	existing := User{
		ID:       primitive.NewObjectID(),
		UserID:   "auth0|tony",
		Fullname: "Tony Stark",
		Email:    "tony@starkindustries.com",
		Roles:    []string{RoleClient},
		Profile: Profile{
			City:    strPtr("Malibu"),
			Country: strPtr("USA"),
		},
		Preferences: []Preference{
			{Name: "music", Preferences: []string{"jazz"}},
		},
	}
	testCases := []struct {
		name       string
		patch      UserPatch
		store      UsersStore
		assertions func(t *testing.T, user User, err error)
	}{
		{
			name: "user not found",
			store: &mockUsersStore{
				GetByUserIDFn: func(context.Context, string) (User, error) {
					return User{}, &meta.ErrNotFound{Type: "User"}
				},
			},
			assertions: func(t *testing.T, _ User, err error) {
				require.IsType(t, &meta.ErrNotFound{}, errorsCause(err))
			},
		},
		{
			name: "store error on update",
			patch: UserPatch{
				Email: strPtr("pepper@starkindustries.com"),
			},
			store: &mockUsersStore{
				GetByUserIDFn: func(context.Context, string) (User, error) {
					return existing, nil
				},
				UpdateFn: func(context.Context, User) error {
					return &meta.ErrConflict{Field: "email", Reason: "taken"}
				},
			},
			assertions: func(t *testing.T, _ User, err error) {
				require.IsType(t, &meta.ErrConflict{}, errorsCause(err))
			},
		},
		{
			name: "explicitly nulled attributes cleared",
			patch: UserPatch{
				Cleared: []string{"ville", "notAnAttribute"},
			},
			store: &mockUsersStore{
				GetByUserIDFn: func(context.Context, string) (User, error) {
					return existing, nil
				},
				UpdateFn: func(context.Context, User) error {
					return nil
				},
			},
			assertions: func(t *testing.T, user User, err error) {
				require.NoError(t, err)
				require.Nil(t, user.City)
				require.Equal(t, "USA", *user.Country)
			},
		},
		{
			name: "fields overwritten and preferences merged",
			patch: UserPatch{
				Fullname: strPtr("Anthony Stark"),
				Profile: Profile{
					City: strPtr("New York"),
				},
				Preferences: []Preference{
					{Name: "music", Preferences: []string{"rock"}},
					{Name: "sports", Preferences: []string{"polo"}},
				},
			},
			store: &mockUsersStore{
				GetByUserIDFn: func(context.Context, string) (User, error) {
					return existing, nil
				},
				UpdateFn: func(_ context.Context, user User) error {
					require.Equal(t, existing.ID, user.ID)
					return nil
				},
			},
			assertions: func(t *testing.T, user User, err error) {
				require.NoError(t, err)
				require.Equal(t, "Anthony Stark", user.Fullname)
				require.Equal(t, "tony@starkindustries.com", user.Email)
				require.Equal(t, "New York", *user.City)
				require.Equal(t, "USA", *user.Country)
				require.Equal(t, []string{RoleClient}, user.Roles)
				require.Equal(
					t,
					[]Preference{
						{Name: "music", Preferences: []string{"rock"}},
						{Name: "sports", Preferences: []string{"polo"}},
					},
					user.Preferences,
				)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewUsersService(testCase.store, nil)
			user, err := svc.Update(context.Background(), "auth0|tony", testCase.patch)
			testCase.assertions(t, user, err)
		})
	}
}

func TestUserPatchUnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name       string
		data       string
		assertions func(t *testing.T, patch UserPatch, err error)
	}{
		{
			name: "no nulls",
			data: `{"fullname":"Anthony Stark","pays":"USA"}`,
			assertions: func(t *testing.T, patch UserPatch, err error) {
				require.NoError(t, err)
				require.Equal(t, "Anthony Stark", *patch.Fullname)
				require.Equal(t, "USA", *patch.Country)
				require.Nil(t, patch.Cleared)
			},
		},
		{
			name: "nulls recorded",
			data: `{"numeroTel":null,"Duree_de_navigation":null,"age":42}`,
			assertions: func(t *testing.T, patch UserPatch, err error) {
				require.NoError(t, err)
				require.Equal(
					t,
					[]string{"Duree_de_navigation", "numeroTel"},
					patch.Cleared,
				)
				require.Nil(t, patch.Phone)
				require.Equal(t, 42, *patch.Age)
			},
		},
		{
			name: "invalid JSON",
			data: `{"age":`,
			assertions: func(t *testing.T, _ UserPatch, err error) {
				require.Error(t, err)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			patch := UserPatch{}
			err := json.Unmarshal([]byte(testCase.data), &patch)
			testCase.assertions(t, patch, err)
		})
	}
}

func TestUsersServiceUpdateAvatar(t *testing.T) {
	svc := NewUsersService(
		&mockUsersStore{
			GetByUserIDFn: func(context.Context, string) (User, error) {
				return User{UserID: "auth0|tony"}, nil
			},
			UpdateFn: func(_ context.Context, user User) error {
				require.Equal(t, "/avatars/tony.png", *user.Avatar)
				return nil
			},
		},
		nil,
	)
	user, err := svc.UpdateAvatar(context.Background(), "auth0|tony", "/avatars/tony.png")
	require.NoError(t, err)
	require.Equal(t, "/avatars/tony.png", *user.Avatar)

	_, err = svc.UpdateAvatar(context.Background(), "auth0|tony", "")
	require.IsType(t, &meta.ErrBadRequest{}, err)
}

func TestUsersServiceUploadAvatar(t *testing.T) {
	testCases := []struct {
		name        string
		avatarStore AvatarStore
		usersStore  UsersStore
		assertions  func(t *testing.T, user User, err error)
	}{
		{
			name: "no avatar store",
			assertions: func(t *testing.T, _ User, err error) {
				require.IsType(t, &meta.ErrNotSupported{}, err)
			},
		},
		{
			name: "user not found",
			avatarStore: &mockAvatarStore{
				PutFn: func(context.Context, string, AvatarUpload) (string, error) {
					require.Fail(t, "nothing should have been stored")
					return "", nil
				},
			},
			usersStore: &mockUsersStore{
				GetByUserIDFn: func(context.Context, string) (User, error) {
					return User{}, &meta.ErrNotFound{Type: "User"}
				},
			},
			assertions: func(t *testing.T, _ User, err error) {
				require.IsType(t, &meta.ErrNotFound{}, errorsCause(err))
			},
		},
		{
			name: "success",
			avatarStore: &mockAvatarStore{
				PutFn: func(
					_ context.Context,
					userID string,
					avatar AvatarUpload,
				) (string, error) {
					require.Equal(t, "auth0|tony", userID)
					require.Equal(t, "image/png", avatar.ContentType)
					return "http://minio/avatars/tony.png", nil
				},
			},
			usersStore: &mockUsersStore{
				GetByUserIDFn: func(context.Context, string) (User, error) {
					return User{UserID: "auth0|tony"}, nil
				},
				UpdateFn: func(context.Context, User) error {
					return nil
				},
			},
			assertions: func(t *testing.T, user User, err error) {
				require.NoError(t, err)
				require.Equal(t, "http://minio/avatars/tony.png", *user.Avatar)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewUsersService(testCase.usersStore, testCase.avatarStore)
			user, err := svc.UploadAvatar(
				context.Background(),
				"auth0|tony",
				AvatarUpload{
					Filename:    "tony.png",
					ContentType: "image/png",
					Size:        4,
					Content:     bytes.NewReader([]byte("png!")),
				},
			)
			testCase.assertions(t, user, err)
		})
	}
}

func TestUsersServiceDelete(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "malformed ID",
			err:      &meta.ErrNotFound{Type: "User"},
			expected: false,
		},
		{
			name:     "store error",
			err:      errors.New("store error"),
			expected: false,
		},
		{
			name:     "success",
			expected: true,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			svc := NewUsersService(
				&mockUsersStore{
					DeleteFn: func(context.Context, string) error {
						return testCase.err
					},
				},
				nil,
			)
			require.Equal(
				t,
				testCase.expected,
				svc.Delete(context.Background(), "5f1e9b7c2a3d4e5f6a7b8c9d"),
			)
		})
	}
}
