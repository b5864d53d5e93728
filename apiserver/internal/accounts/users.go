package accounts

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sort"
	"time"

	"github.com/krancour/accounts/apiserver/internal/meta"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// RoleClient is the role assigned to self-registered users.
	RoleClient = "client"
	// RoleAdmin is the role assigned to users registered as administrators.
	RoleAdmin = "admin"
)

// Preference is a named category of preference tags.
type Preference struct {
	Name        string   `json:"name" bson:"name"`
	Preferences []string `json:"preferences" bson:"preferences"`
}

// Profile holds the optional, user-editable attributes of a User. Unset
// attributes are nil.
type Profile struct {
	Phone            *string  `json:"numeroTel,omitempty" bson:"numeroTel,omitempty"`
	Address          *string  `json:"adresse,omitempty" bson:"adresse,omitempty"`
	PostalCode       *int     `json:"codePostal,omitempty" bson:"codePostal,omitempty"`
	City             *string  `json:"ville,omitempty" bson:"ville,omitempty"`
	Country          *string  `json:"pays,omitempty" bson:"pays,omitempty"`
	Age              *int     `json:"age,omitempty" bson:"age,omitempty"`
	EducationLevel   *string  `json:"niveauEducation,omitempty" bson:"niveauEducation,omitempty"`
	Profession       *string  `json:"profession,omitempty" bson:"profession,omitempty"`
	CookiesConsent   *bool    `json:"consentementCookies,omitempty" bson:"consentementCookies,omitempty"`
	AnalyticsConsent *bool    `json:"consentementAnalytics,omitempty" bson:"consentementAnalytics,omitempty"`
	Gender           *string  `json:"gender,omitempty" bson:"gender,omitempty"`
	Avatar           *string  `json:"avatar,omitempty" bson:"avatar,omitempty"`
	BrowsingDuration *float64 `json:"Duree_de_navigation,omitempty" bson:"Duree_de_navigation,omitempty"`
}

// apply overwrites every attribute of p that is set in patch.
func (p *Profile) apply(patch Profile) {
	if patch.Phone != nil {
		p.Phone = patch.Phone
	}
	if patch.Address != nil {
		p.Address = patch.Address
	}
	if patch.PostalCode != nil {
		p.PostalCode = patch.PostalCode
	}
	if patch.City != nil {
		p.City = patch.City
	}
	if patch.Country != nil {
		p.Country = patch.Country
	}
	if patch.Age != nil {
		p.Age = patch.Age
	}
	if patch.EducationLevel != nil {
		p.EducationLevel = patch.EducationLevel
	}
	if patch.Profession != nil {
		p.Profession = patch.Profession
	}
	if patch.CookiesConsent != nil {
		p.CookiesConsent = patch.CookiesConsent
	}
	if patch.AnalyticsConsent != nil {
		p.AnalyticsConsent = patch.AnalyticsConsent
	}
	if patch.Gender != nil {
		p.Gender = patch.Gender
	}
	if patch.Avatar != nil {
		p.Avatar = patch.Avatar
	}
	if patch.BrowsingDuration != nil {
		p.BrowsingDuration = patch.BrowsingDuration
	}
}

// clear unsets the attributes named by the provided wire keys. Unknown keys
// are ignored.
func (p *Profile) clear(keys ...string) {
	for _, key := range keys {
		switch key {
		case "numeroTel":
			p.Phone = nil
		case "adresse":
			p.Address = nil
		case "codePostal":
			p.PostalCode = nil
		case "ville":
			p.City = nil
		case "pays":
			p.Country = nil
		case "age":
			p.Age = nil
		case "niveauEducation":
			p.EducationLevel = nil
		case "profession":
			p.Profession = nil
		case "consentementCookies":
			p.CookiesConsent = nil
		case "consentementAnalytics":
			p.AnalyticsConsent = nil
		case "gender":
			p.Gender = nil
		case "avatar":
			p.Avatar = nil
		case "Duree_de_navigation":
			p.BrowsingDuration = nil
		}
	}
}

// User represents a locally stored user account.
type User struct {
	// ID is assigned when the User is first stored.
	ID primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	// UserID is the identity provider's subject identifier for the User.
	UserID    string     `json:"userId" bson:"userId"`
	Fullname  string     `json:"fullname" bson:"fullname"`
	Email     string     `json:"email" bson:"email"`
	Roles     []string   `json:"roles" bson:"roles"`
	CreatedAt *time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	Profile   `bson:",inline"`
	// Preferences are unique by name.
	Preferences []Preference `json:"preferences" bson:"preferences"`
}

// MarshalJSON amends User instances with the string form of their ID.
func (u User) MarshalJSON() ([]byte, error) {
	type Alias User
	return json.Marshal(
		struct {
			HexID string `json:"id,omitempty"`
			Alias
		}{
			HexID: hexID(u.ID),
			Alias: (Alias)(u),
		},
	)
}

func hexID(id primitive.ObjectID) string {
	if id.IsZero() {
		return ""
	}
	return id.Hex()
}

// UserRegistration is the set of fields a caller may supply when registering
// a new User. Roles and identifiers are assigned by the server.
type UserRegistration struct {
	UserID      string       `json:"userId"`
	Fullname    string       `json:"fullname"`
	Email       string       `json:"email"`
	Profile                  // Optional attributes
	Preferences []Preference `json:"preferences,omitempty"`
}

// UserPatch is the set of fields a caller may change on an existing User. Nil
// fields are left untouched. Preferences are merged by name.
type UserPatch struct {
	Fullname    *string      `json:"fullname,omitempty"`
	Email       *string      `json:"email,omitempty"`
	Profile                  // Optional attributes
	Preferences []Preference `json:"preferences,omitempty"`
	// Cleared holds the wire keys of Profile attributes that were explicitly
	// set to null and are to be unset.
	Cleared []string `json:"-"`
}

// UnmarshalJSON records which attributes the document explicitly sets to null
// in addition to decoding the patch.
func (u *UserPatch) UnmarshalJSON(data []byte) error {
	type userPatch UserPatch
	patch := userPatch{}
	if err := json.Unmarshal(data, &patch); err != nil {
		return err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key, value := range fields {
		if string(value) == "null" {
			patch.Cleared = append(patch.Cleared, key)
		}
	}
	sort.Strings(patch.Cleared)
	*u = UserPatch(patch)
	return nil
}

// AvatarUpload is an image to be stored as a User's avatar.
type AvatarUpload struct {
	Filename    string
	ContentType string
	// Size is the length of Content in bytes, or -1 if unknown.
	Size    int64
	Content io.Reader
}

// UsersService is the specialized interface for managing Users.
type UsersService interface {
	// Register stores a new User with the "client" role.
	Register(context.Context, UserRegistration) (User, error)
	// RegisterAdmin stores a new User with the "admin" role.
	RegisterAdmin(context.Context, UserRegistration) (User, error)
	// Exists returns true if a User having both the specified user ID and
	// email exists. Lookup failures are logged and reported as false.
	Exists(ctx context.Context, userID string, email string) bool
	// Get retrieves a single User by user ID.
	Get(ctx context.Context, userID string) (User, error)
	// List retrieves every User.
	List(context.Context) ([]User, error)
	// Update applies the provided patch to the specified User.
	Update(ctx context.Context, userID string, patch UserPatch) (User, error)
	// UpdateAvatar sets the avatar of the specified User.
	UpdateAvatar(ctx context.Context, userID string, avatarPath string) (User, error)
	// UploadAvatar stores the provided image and makes it the avatar of the
	// specified User.
	UploadAvatar(ctx context.Context, userID string, avatar AvatarUpload) (User, error)
	// Delete deletes a User by its ID. It reports false if the ID is malformed
	// or the deletion failed.
	Delete(ctx context.Context, id string) bool
	// CheckHealth reports whether the underlying store is reachable.
	CheckHealth(context.Context) error
}

type usersService struct {
	usersStore  UsersStore
	avatarStore AvatarStore
}

// NewUsersService returns a specialized interface for managing Users. The
// avatarStore may be nil, in which case avatar uploads are not supported.
func NewUsersService(usersStore UsersStore, avatarStore AvatarStore) UsersService {
	return &usersService{
		usersStore:  usersStore,
		avatarStore: avatarStore,
	}
}

func (u *usersService) Register(
	ctx context.Context,
	registration UserRegistration,
) (User, error) {
	if registration.Fullname == "" || registration.Email == "" {
		return User{}, &meta.ErrBadRequest{
			Reason: "Name and email are required",
		}
	}
	return u.register(ctx, registration, RoleClient)
}

func (u *usersService) RegisterAdmin(
	ctx context.Context,
	registration UserRegistration,
) (User, error) {
	if registration.Fullname == "" || registration.Email == "" {
		return User{}, &meta.ErrBadRequest{
			Reason: "Nickname and email are required",
		}
	}
	return u.register(ctx, registration, RoleAdmin)
}

func (u *usersService) register(
	ctx context.Context,
	registration UserRegistration,
	role string,
) (User, error) {
	if registration.UserID == "" {
		return User{}, &meta.ErrBadRequest{
			Reason: "User ID is required",
		}
	}
	now := time.Now().UTC()
	user := User{
		ID:          primitive.NewObjectID(),
		UserID:      registration.UserID,
		Fullname:    registration.Fullname,
		Email:       registration.Email,
		Roles:       []string{role},
		CreatedAt:   &now,
		Profile:     registration.Profile,
		Preferences: mergePreferences(nil, registration.Preferences),
	}
	if err := u.usersStore.Create(ctx, user); err != nil {
		return user, errors.Wrapf(err, "error storing new user %q", user.UserID)
	}
	return user, nil
}

func (u *usersService) Exists(
	ctx context.Context,
	userID string,
	email string,
) bool {
	exists, err := u.usersStore.Exists(ctx, userID, email)
	if err != nil {
		log.Println(errors.Wrap(err, "error checking user existence"))
		return false
	}
	return exists
}

func (u *usersService) Get(ctx context.Context, userID string) (User, error) {
	user, err := u.usersStore.GetByUserID(ctx, userID)
	if err != nil {
		return user, errors.Wrapf(err, "error retrieving user %q from store", userID)
	}
	return user, nil
}

func (u *usersService) List(ctx context.Context) ([]User, error) {
	users, err := u.usersStore.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving users from store")
	}
	return users, nil
}

func (u *usersService) Update(
	ctx context.Context,
	userID string,
	patch UserPatch,
) (User, error) {
	user, err := u.usersStore.GetByUserID(ctx, userID)
	if err != nil {
		return user, errors.Wrapf(err, "error retrieving user %q from store", userID)
	}
	if patch.Fullname != nil {
		user.Fullname = *patch.Fullname
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	user.Profile.apply(patch.Profile)
	user.Profile.clear(patch.Cleared...)
	if patch.Preferences != nil {
		user.Preferences = mergePreferences(user.Preferences, patch.Preferences)
	}
	if err = u.usersStore.Update(ctx, user); err != nil {
		return user, errors.Wrapf(err, "error updating user %q in store", userID)
	}
	return user, nil
}

// mergePreferences merges updates into existing by name. A matching category
// has its tags replaced. Any other category is appended.
func mergePreferences(existing []Preference, updates []Preference) []Preference {
	merged := make([]Preference, len(existing), len(existing)+len(updates))
	copy(merged, existing)
updates:
	for _, update := range updates {
		if update.Preferences == nil {
			update.Preferences = []string{}
		}
		for i := range merged {
			if merged[i].Name == update.Name {
				merged[i].Preferences = update.Preferences
				continue updates
			}
		}
		merged = append(merged, update)
	}
	return merged
}

func (u *usersService) UpdateAvatar(
	ctx context.Context,
	userID string,
	avatarPath string,
) (User, error) {
	if avatarPath == "" {
		return User{}, &meta.ErrBadRequest{
			Reason: "User ID and avatar path are required",
		}
	}
	user, err := u.usersStore.GetByUserID(ctx, userID)
	if err != nil {
		return user, errors.Wrapf(err, "error retrieving user %q from store", userID)
	}
	user.Avatar = &avatarPath
	if err = u.usersStore.Update(ctx, user); err != nil {
		return user, errors.Wrapf(err, "error updating user %q in store", userID)
	}
	return user, nil
}

func (u *usersService) UploadAvatar(
	ctx context.Context,
	userID string,
	avatar AvatarUpload,
) (User, error) {
	if u.avatarStore == nil {
		return User{}, &meta.ErrNotSupported{
			Details: "Avatar uploads are not supported by this server.",
		}
	}
	// Don't store anything for a user who doesn't exist
	if _, err := u.usersStore.GetByUserID(ctx, userID); err != nil {
		return User{},
			errors.Wrapf(err, "error retrieving user %q from store", userID)
	}
	avatarPath, err := u.avatarStore.Put(ctx, userID, avatar)
	if err != nil {
		return User{}, errors.Wrapf(err, "error storing avatar for user %q", userID)
	}
	return u.UpdateAvatar(ctx, userID, avatarPath)
}

func (u *usersService) Delete(ctx context.Context, id string) bool {
	if err := u.usersStore.Delete(ctx, id); err != nil {
		log.Println(errors.Wrapf(err, "error deleting user %q", id))
		return false
	}
	log.Printf("User with userId %s and associated data deleted successfully.", id)
	return true
}

func (u *usersService) CheckHealth(ctx context.Context) error {
	return u.usersStore.CheckHealth(ctx)
}

// UsersStore is an interface for components that implement User persistence
// concerns.
type UsersStore interface {
	// Create stores the provided User. Implementations MUST return a
	// *meta.ErrConflict error if a User having the same email or user ID
	// already exists, with the Field naming the conflicting field.
	Create(context.Context, User) error
	// Exists returns true if a User having both the specified user ID and email
	// exists.
	Exists(ctx context.Context, userID string, email string) (bool, error)
	// GetByUserID retrieves a User by user ID. Implementations MUST return a
	// *meta.ErrNotFound error if no such User exists.
	GetByUserID(ctx context.Context, userID string) (User, error)
	// List retrieves every User.
	List(context.Context) ([]User, error)
	// Update replaces the stored User having the same ID as the provided User.
	// Implementations MUST return a *meta.ErrNotFound error if no such User
	// exists.
	Update(context.Context, User) error
	// Delete deletes a User by ID. Deleting a User that does not exist is not
	// an error, but a malformed ID is.
	Delete(ctx context.Context, id string) error
	// CheckHealth reports whether the store is reachable.
	CheckHealth(context.Context) error
}

// AvatarStore is an interface for components that store avatar images.
type AvatarStore interface {
	// Put stores the provided avatar and returns the path or URL at which it
	// can be retrieved.
	Put(ctx context.Context, userID string, avatar AvatarUpload) (string, error)
}
