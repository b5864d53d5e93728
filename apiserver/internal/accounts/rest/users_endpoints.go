package rest

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/krancour/accounts/apiserver/internal/accounts"
	"github.com/krancour/accounts/apiserver/internal/lib/restmachinery"
	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

// maxAvatarBytes bounds the size of an uploaded avatar image.
const maxAvatarBytes = 5 << 20

type messageResponse struct {
	Message string `json:"message"`
}

type userResponse struct {
	Message string         `json:"message,omitempty"`
	User    *accounts.User `json:"user"`
}

type avatarResponse struct {
	Message string `json:"message"`
	User    struct {
		Avatar *string `json:"avatar"`
	} `json:"user"`
}

type usersEndpoints struct {
	*restmachinery.BaseEndpoints
	registrationSchemaLoader gojsonschema.JSONLoader
	patchSchemaLoader        gojsonschema.JSONLoader
	avatarSchemaLoader       gojsonschema.JSONLoader
	service                  accounts.UsersService
}

// NewUsersEndpoints returns the public user management endpoints.
func NewUsersEndpoints(
	baseEndpoints *restmachinery.BaseEndpoints,
	service accounts.UsersService,
) restmachinery.Endpoints {
	return &usersEndpoints{
		BaseEndpoints:            baseEndpoints,
		registrationSchemaLoader: mustLoadSchema("user-registration"),
		patchSchemaLoader:        mustLoadSchema("user-patch"),
		avatarSchemaLoader:       mustLoadSchema("avatar-update"),
		service:                  service,
	}
}

func (u *usersEndpoints) Register(router *mux.Router) {
	// Hello
	router.HandleFunc(
		"/api/public/",
		u.hello,
	).Methods(http.MethodGet)

	// Register user
	router.HandleFunc(
		"/api/public/register",
		u.register,
	).Methods(http.MethodPost)

	// Register admin
	router.HandleFunc(
		"/api/public/registerAdmin",
		u.registerAdmin,
	).Methods(http.MethodPost)

	// Check user exists
	router.HandleFunc(
		"/api/public/checkUser/{userId}/{email}",
		u.exists,
	).Methods(http.MethodGet)

	// Get user
	router.HandleFunc(
		"/api/public/getUser/{userId}",
		u.get,
	).Methods(http.MethodGet)

	// List users
	router.HandleFunc(
		"/api/public/getAll",
		u.list,
	).Methods(http.MethodGet)

	// Update user
	router.HandleFunc(
		"/api/public/updateUser/{userId}",
		u.update,
	).Methods(http.MethodPut)

	// Update avatar path
	router.HandleFunc(
		"/api/public/updateUserAvatar/{userId}",
		u.updateAvatar,
	).Methods(http.MethodPut)

	// Upload avatar image
	router.HandleFunc(
		"/api/public/uploadUserAvatar/{userId}",
		u.uploadAvatar,
	).Methods(http.MethodPut)

	// Delete user
	router.HandleFunc(
		"/api/public/deleteUser/{id}",
		u.delete,
	).Methods(http.MethodDelete)
}

func (u *usersEndpoints) CheckHealth(ctx context.Context) error {
	return u.service.CheckHealth(ctx)
}

func (u *usersEndpoints) hello(w http.ResponseWriter, r *http.Request) {
	u.WriteAPIResponse(
		w,
		http.StatusOK,
		messageResponse{
			Message: "Hello from a public endpoint! You don't need to be " +
				"authenticated to see this.",
		},
	)
}

func (u *usersEndpoints) register(w http.ResponseWriter, r *http.Request) {
	registration := accounts.UserRegistration{}
	u.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: u.registrationSchemaLoader,
			ReqBodyObj:          &registration,
			EndpointLogic: func() (interface{}, error) {
				user, err := u.service.Register(r.Context(), registration)
				if err != nil {
					return nil, err
				}
				return userResponse{
					Message: "User registered successfully",
					User:    &user,
				}, nil
			},
			SuccessCode: http.StatusCreated,
			FailureCode: http.StatusBadRequest,
		},
	)
}

func (u *usersEndpoints) registerAdmin(w http.ResponseWriter, r *http.Request) {
	registration := accounts.UserRegistration{}
	u.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: u.registrationSchemaLoader,
			ReqBodyObj:          &registration,
			EndpointLogic: func() (interface{}, error) {
				user, err := u.service.RegisterAdmin(r.Context(), registration)
				if err != nil {
					return nil, err
				}
				return userResponse{
					Message: "Admin registered successfully",
					User:    &user,
				}, nil
			},
			SuccessCode: http.StatusCreated,
			FailureCode: http.StatusBadRequest,
		},
	)
}

func (u *usersEndpoints) exists(w http.ResponseWriter, r *http.Request) {
	u.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				vars := mux.Vars(r)
				return struct {
					UserExists bool `json:"userExists"`
				}{
					UserExists: u.service.Exists(r.Context(), vars["userId"], vars["email"]),
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (u *usersEndpoints) get(w http.ResponseWriter, r *http.Request) {
	u.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				user, err := u.service.Get(r.Context(), mux.Vars(r)["userId"])
				if err != nil {
					if _, ok := errors.Cause(err).(*meta.ErrNotFound); !ok {
						log.Println(err)
					}
					return userResponse{}, nil
				}
				return userResponse{User: &user}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (u *usersEndpoints) list(w http.ResponseWriter, r *http.Request) {
	u.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				users, err := u.service.List(r.Context())
				if err != nil {
					return nil, err
				}
				return struct {
					Users []accounts.User `json:"user"`
				}{
					Users: users,
				}, nil
			},
			SuccessCode: http.StatusOK,
		},
	)
}

func (u *usersEndpoints) update(w http.ResponseWriter, r *http.Request) {
	patch := accounts.UserPatch{}
	u.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: u.patchSchemaLoader,
			ReqBodyObj:          &patch,
			EndpointLogic: func() (interface{}, error) {
				user, err :=
					u.service.Update(r.Context(), mux.Vars(r)["userId"], patch)
				if err != nil {
					return nil, err
				}
				return userResponse{
					Message: "User updated successfully",
					User:    &user,
				}, nil
			},
			SuccessCode: http.StatusOK,
			FailureCode: http.StatusBadRequest,
		},
	)
}

func (u *usersEndpoints) updateAvatar(w http.ResponseWriter, r *http.Request) {
	avatarUpdate := struct {
		AvatarPath string `json:"avatarPath"`
	}{}
	u.ServeRequest(
		restmachinery.InboundRequest{
			W:                   w,
			R:                   r,
			ReqBodySchemaLoader: u.avatarSchemaLoader,
			ReqBodyObj:          &avatarUpdate,
			EndpointLogic: func() (interface{}, error) {
				user, err := u.service.UpdateAvatar(
					r.Context(),
					mux.Vars(r)["userId"],
					avatarUpdate.AvatarPath,
				)
				if err != nil {
					return nil, err
				}
				return newAvatarResponse(user), nil
			},
			SuccessCode: http.StatusOK,
			FailureCode: http.StatusBadRequest,
		},
	)
}

func (u *usersEndpoints) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	u.ServeRequest(
		restmachinery.InboundRequest{
			W: w,
			R: r,
			EndpointLogic: func() (interface{}, error) {
				r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
				file, header, err := r.FormFile("avatar")
				if err != nil {
					return nil, &meta.ErrBadRequest{
						Reason: fmt.Sprintf(
							`The request did not include a valid "avatar" file: %s`,
							err,
						),
					}
				}
				defer file.Close()
				contentType := header.Header.Get("Content-Type")
				if !strings.HasPrefix(contentType, "image/") {
					return nil, &meta.ErrBadRequest{
						Reason: "Avatar must be an image.",
					}
				}
				user, err := u.service.UploadAvatar(
					r.Context(),
					mux.Vars(r)["userId"],
					accounts.AvatarUpload{
						Filename:    header.Filename,
						ContentType: contentType,
						Size:        header.Size,
						Content:     file,
					},
				)
				if err != nil {
					return nil, err
				}
				return newAvatarResponse(user), nil
			},
			SuccessCode: http.StatusOK,
			FailureCode: http.StatusBadRequest,
		},
	)
}

func newAvatarResponse(user accounts.User) avatarResponse {
	resp := avatarResponse{
		Message: "Avatar updated successfully",
	}
	resp.User.Avatar = user.Avatar
	return resp
}

func (u *usersEndpoints) delete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if !u.service.Delete(r.Context(), id) {
		u.WriteAPIResponse(
			w,
			http.StatusNotFound,
			messageResponse{
				Message: fmt.Sprintf("User with userId %s not found.", id),
			},
		)
		return
	}
	u.WriteAPIResponse(
		w,
		http.StatusOK,
		messageResponse{
			Message: fmt.Sprintf(
				"User with userId %s and associated data deleted successfully.",
				id,
			),
		},
	)
}
