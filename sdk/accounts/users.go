package accounts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"time"

	"github.com/krancour/accounts/sdk/internal/restmachinery"
	"github.com/pkg/errors"
)

// Preference is a named category of preference tags.
type Preference struct {
	Name        string   `json:"name"`
	Preferences []string `json:"preferences"`
}

// Profile holds the optional attributes of a User. Unset attributes are nil.
type Profile struct {
	Phone            *string  `json:"numeroTel,omitempty"`
	Address          *string  `json:"adresse,omitempty"`
	PostalCode       *int     `json:"codePostal,omitempty"`
	City             *string  `json:"ville,omitempty"`
	Country          *string  `json:"pays,omitempty"`
	Age              *int     `json:"age,omitempty"`
	EducationLevel   *string  `json:"niveauEducation,omitempty"`
	Profession       *string  `json:"profession,omitempty"`
	CookiesConsent   *bool    `json:"consentementCookies,omitempty"`
	AnalyticsConsent *bool    `json:"consentementAnalytics,omitempty"`
	Gender           *string  `json:"gender,omitempty"`
	Avatar           *string  `json:"avatar,omitempty"`
	BrowsingDuration *float64 `json:"Duree_de_navigation,omitempty"`
}

// User represents a user account.
type User struct {
	// ID is assigned by the API server. It identifies the User for deletion.
	ID string `json:"id,omitempty"`
	// UserID is the identity provider's subject identifier for the User.
	UserID    string     `json:"userId"`
	Fullname  string     `json:"fullname"`
	Email     string     `json:"email"`
	Roles     []string   `json:"roles,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	Profile
	Preferences []Preference `json:"preferences,omitempty"`
}

// UserRegistration is the set of fields that may be supplied when registering
// a new User.
type UserRegistration struct {
	UserID   string `json:"userId"`
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Profile
	Preferences []Preference `json:"preferences,omitempty"`
}

// UserPatch is the set of fields that may be changed on an existing User. Nil
// fields are left untouched. Preferences are merged by name.
type UserPatch struct {
	Fullname *string `json:"fullname,omitempty"`
	Email    *string `json:"email,omitempty"`
	Profile
	Preferences []Preference `json:"preferences,omitempty"`
}

type userResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}

// UsersClient is the specialized client for managing Users with the Accounts
// API.
type UsersClient interface {
	// Register registers a new User with the "client" role.
	Register(context.Context, UserRegistration) (User, error)
	// RegisterAdmin registers a new User with the "admin" role.
	RegisterAdmin(context.Context, UserRegistration) (User, error)
	// Exists returns true if a User having both the specified user ID and
	// email exists.
	Exists(ctx context.Context, userID string, email string) (bool, error)
	// Get retrieves a single User by user ID. It returns nil if no such User
	// exists.
	Get(ctx context.Context, userID string) (*User, error)
	// List returns every User.
	List(context.Context) ([]User, error)
	// Update applies the provided patch to the specified User.
	Update(ctx context.Context, userID string, patch UserPatch) (User, error)
	// UpdateAvatar sets the avatar path of the specified User and returns the
	// new value.
	UpdateAvatar(ctx context.Context, userID string, avatarPath string) (string, error)
	// UploadAvatar uploads an image as the avatar of the specified User and
	// returns the avatar's URL.
	UploadAvatar(
		ctx context.Context,
		userID string,
		filename string,
		contentType string,
		content io.Reader,
	) (string, error)
	// Delete deletes a User by its ID.
	Delete(ctx context.Context, id string) error
}

type usersClient struct {
	*restmachinery.BaseClient
}

// NewUsersClient returns a specialized client for managing Users.
func NewUsersClient(
	apiAddress string,
	apiToken string,
	allowInsecure bool,
) UsersClient {
	return &usersClient{
		BaseClient: restmachinery.NewBaseClient(apiAddress, apiToken, allowInsecure),
	}
}

func (u *usersClient) Register(
	ctx context.Context,
	registration UserRegistration,
) (User, error) {
	return u.register(ctx, "api/public/register", registration)
}

func (u *usersClient) RegisterAdmin(
	ctx context.Context,
	registration UserRegistration,
) (User, error) {
	return u.register(ctx, "api/public/registerAdmin", registration)
}

func (u *usersClient) register(
	ctx context.Context,
	path string,
	registration UserRegistration,
) (User, error) {
	resp := userResponse{}
	if err := u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPost,
			Path:        path,
			AuthHeaders: u.BearerTokenAuthHeaders(),
			ReqBodyObj:  registration,
			SuccessCode: http.StatusCreated,
			RespObj:     &resp,
		},
	); err != nil {
		return User{}, err
	}
	if resp.User == nil {
		return User{}, errors.New("API server response did not include a user")
	}
	return *resp.User, nil
}

func (u *usersClient) Exists(
	ctx context.Context,
	userID string,
	email string,
) (bool, error) {
	resp := struct {
		UserExists bool `json:"userExists"`
	}{}
	if err := u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodGet,
			Path: fmt.Sprintf(
				"api/public/checkUser/%s/%s",
				url.PathEscape(userID),
				url.PathEscape(email),
			),
			AuthHeaders: u.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	); err != nil {
		return false, err
	}
	return resp.UserExists, nil
}

func (u *usersClient) Get(ctx context.Context, userID string) (*User, error) {
	resp := userResponse{}
	if err := u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        fmt.Sprintf("api/public/getUser/%s", url.PathEscape(userID)),
			AuthHeaders: u.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (u *usersClient) List(ctx context.Context) ([]User, error) {
	resp := struct {
		Users []User `json:"user"`
	}{}
	if err := u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "api/public/getAll",
			AuthHeaders: u.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (u *usersClient) Update(
	ctx context.Context,
	userID string,
	patch UserPatch,
) (User, error) {
	resp := userResponse{}
	if err := u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPut,
			Path:        fmt.Sprintf("api/public/updateUser/%s", url.PathEscape(userID)),
			AuthHeaders: u.BearerTokenAuthHeaders(),
			ReqBodyObj:  patch,
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	); err != nil {
		return User{}, err
	}
	if resp.User == nil {
		return User{}, errors.New("API server response did not include a user")
	}
	return *resp.User, nil
}

type avatarResponse struct {
	User struct {
		Avatar string `json:"avatar"`
	} `json:"user"`
}

func (u *usersClient) UpdateAvatar(
	ctx context.Context,
	userID string,
	avatarPath string,
) (string, error) {
	resp := avatarResponse{}
	if err := u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPut,
			Path: fmt.Sprintf(
				"api/public/updateUserAvatar/%s",
				url.PathEscape(userID),
			),
			AuthHeaders: u.BearerTokenAuthHeaders(),
			ReqBodyObj: struct {
				AvatarPath string `json:"avatarPath"`
			}{
				AvatarPath: avatarPath,
			},
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	); err != nil {
		return "", err
	}
	return resp.User.Avatar, nil
}

func (u *usersClient) UploadAvatar(
	ctx context.Context,
	userID string,
	filename string,
	contentType string,
	content io.Reader,
) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set(
		"Content-Disposition",
		fmt.Sprintf(
			`form-data; name="avatar"; filename=%q`,
			filepath.Base(filename),
		),
	)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", errors.Wrap(err, "error creating multipart request body")
	}
	if _, err = io.Copy(part, content); err != nil {
		return "", errors.Wrap(err, "error writing avatar to request body")
	}
	if err = writer.Close(); err != nil {
		return "", errors.Wrap(err, "error closing multipart request body")
	}
	resp := avatarResponse{}
	if err := u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method: http.MethodPut,
			Path: fmt.Sprintf(
				"api/public/uploadUserAvatar/%s",
				url.PathEscape(userID),
			),
			AuthHeaders: u.BearerTokenAuthHeaders(),
			Headers: map[string]string{
				"Content-Type": writer.FormDataContentType(),
			},
			ReqBodyObj:  body.Bytes(),
			SuccessCode: http.StatusOK,
			RespObj:     &resp,
		},
	); err != nil {
		return "", err
	}
	return resp.User.Avatar, nil
}

func (u *usersClient) Delete(ctx context.Context, id string) error {
	return u.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodDelete,
			Path:        fmt.Sprintf("api/public/deleteUser/%s", url.PathEscape(id)),
			AuthHeaders: u.BearerTokenAuthHeaders(),
			SuccessCode: http.StatusOK,
		},
	)
}
