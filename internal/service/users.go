package service

import (
	"context" // Request scoped cancellation
	"strings" // Input normalization

	"github.com/sirupsen/logrus" // Structured logging

	"store_rating/internal/domain"     // Domain models and error kinds
	"store_rating/internal/policy"     // Access policy
	"store_rating/internal/repository" // Entity store
)

// userSortColumns maps sortable user keys to stored columns.
var userSortColumns = map[string]string{
	"name":      "name",
	"email":     "email",
	"role":      "role",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// RegisterInput is a self-service sign up. The account is always a USER.
type RegisterInput struct {
	Name     string  `json:"name" validate:"required,min=20,max=60"`
	Email    string  `json:"email" validate:"required,email,max=120"`
	Password string  `json:"password" validate:"required,password"` // 8-16 chars, one upper-case, one special
	Address  *string `json:"address" validate:"omitempty,max=400"`
}

// CreateUserInput is an account created by an administrator.
type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,min=20,max=60"`
	Email    string      `json:"email" validate:"required,email,max=120"`
	Password string      `json:"password" validate:"required,password"`
	Address  *string     `json:"address" validate:"omitempty,max=400"`
	Role     domain.Role `json:"role" validate:"omitempty,role"` // Defaults to USER
}

// UpdateUserInput changes the given user fields. Role changes need ADMIN.
type UpdateUserInput struct {
	Name    *string      `json:"name" validate:"omitempty,min=20,max=60"`
	Email   *string      `json:"email" validate:"omitempty,email,max=120"`
	Address *string      `json:"address" validate:"omitempty,max=400"`
	Role    *domain.Role `json:"role" validate:"omitempty,role"` // ADMIN only
}

// UpdatePasswordInput replaces the actor's password.
type UpdatePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"` // Must match the stored hash
	NewPassword     string `json:"newPassword" validate:"required,password"`
}

// UserListQuery selects a page of users. FilterBy restricts to one role.
type UserListQuery struct {
	Page      int    // 1-based page
	Limit     int    // Page size, capped at domain.MaxLimit
	Search    string // Substring of name, email or address
	SortBy    string // name, email, role, createdAt or updatedAt
	SortOrder string // ASC or DESC
	FilterBy  string // Role, case-insensitive
}

// UserCounts is the number of users in total and per role.
type UserCounts struct {
	Total  int64                 `json:"total"`
	ByRole map[domain.Role]int64 `json:"byRole"` // Every role present, zero when empty
}

// UserService manages accounts.
type UserService struct {
	repo      *repository.Repository // User rows
	policy    *policy.Policy         // Access rules
	passwords Passwords              // bcrypt hashing
}

// NewUserService wires a UserService.
func NewUserService(repo *repository.Repository, p *policy.Policy, passwords Passwords) *UserService {
	return &UserService{repo: repo, policy: p, passwords: passwords}
}

// Register creates a USER account for an unauthenticated caller.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (UserView, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := check(in); err != nil {
		return UserView{}, err
	}
	u, err := s.create(ctx, in.Name, in.Email, in.Password, optional(in.Address), domain.RoleUser)
	if err != nil {
		return UserView{}, err
	}
	logrus.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("User registered")
	return newUserView(u), nil
}

// Create adds an account of any role. Role defaults to USER.
func (s *UserService) Create(ctx context.Context, actor *domain.Actor, in CreateUserInput) (UserView, error) {
	if err := s.policy.Authorize(actor, policy.CreateUser, policy.Resource{}); err != nil {
		return UserView{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Role == "" {
		in.Role = domain.RoleUser // Default role
	}
	if err := check(in); err != nil {
		return UserView{}, err
	}
	u, err := s.create(ctx, in.Name, in.Email, in.Password, optional(in.Address), in.Role)
	if err != nil {
		return UserView{}, err
	}
	logrus.WithFields(logrus.Fields{
		"user_id":  u.ID,
		"role":     u.Role,
		"actor_id": actor.ID,
	}).Info("User created")
	return newUserView(u), nil
}

// CreateAdmin adds an ADMIN account.
func (s *UserService) CreateAdmin(ctx context.Context, actor *domain.Actor, in RegisterInput) (UserView, error) {
	return s.Create(ctx, actor, CreateUserInput{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Address:  in.Address,
		Role:     domain.RoleAdmin,
	})
}

// create hashes password and inserts the account, rejecting taken emails
func (s *UserService) create(ctx context.Context, name, email, password string, address *string, role domain.Role) (*domain.User, error) {
	taken, err := s.repo.EmailTaken(ctx, email, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.Conflict("user with this email already exists") // Checked before hashing
	}
	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Name: name, Email: email, Password: hash, Address: address, Role: role}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// List returns a page of users.
func (s *UserService) List(ctx context.Context, actor *domain.Actor, q UserListQuery) (domain.Page[UserView], error) {
	if err := s.policy.Authorize(actor, policy.ListUsers, policy.Resource{}); err != nil {
		return domain.Page[UserView]{}, err
	}
	key, desc, err := sortSpec(q.SortBy, q.SortOrder, userSortColumns)
	if err != nil {
		return domain.Page[UserView]{}, err
	}
	filter := repository.UserFilter{Search: q.Search}
	if f := strings.TrimSpace(q.FilterBy); f != "" {
		role := domain.Role(strings.ToUpper(f)) // filterBy is case-insensitive
		if !role.Valid() {
			return domain.Page[UserView]{}, domain.InvalidInput("filterBy must be one of ADMIN, STORE_OWNER, USER")
		}
		filter.Role = &role
	}
	page := domain.PageQuery{Page: q.Page, Limit: q.Limit}.Normalize()

	users, total, err := s.repo.ListUsers(ctx, filter, repository.Sort{Column: userSortColumns[key], Desc: desc}, page)
	if err != nil {
		return domain.Page[UserView]{}, err
	}
	views := make([]UserView, len(users))
	for i := range users {
		views[i] = newUserView(&users[i])
	}
	return domain.Page[UserView]{Data: views, Meta: domain.NewMeta(page, total)}, nil
}

// Get returns one user.
func (s *UserService) Get(ctx context.Context, actor *domain.Actor, id string) (UserView, error) {
	if err := s.policy.Authorize(actor, policy.ReadUser, policy.Resource{TargetUserID: id}); err != nil {
		return UserView{}, err
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	return newUserView(u), nil
}

// Me returns the actor's own account.
func (s *UserService) Me(ctx context.Context, actor *domain.Actor) (UserView, error) {
	if actor == nil {
		return UserView{}, domain.Unauthenticated("authentication required") // Anonymous callers have no profile
	}
	u, err := s.repo.GetUser(ctx, actor.ID)
	if err != nil {
		return UserView{}, err
	}
	return newUserView(u), nil
}

// Update changes a user's profile. Users may update themselves; only
// administrators may change a role.
func (s *UserService) Update(ctx context.Context, actor *domain.Actor, id string, in UpdateUserInput) (UserView, error) {
	if err := s.policy.Authorize(actor, policy.UpdateUser, policy.Resource{TargetUserID: id}); err != nil {
		return UserView{}, err
	}
	if in.Role != nil { // Role changes need ADMIN
		if err := s.policy.Authorize(actor, policy.ChangeUserRole, policy.Resource{TargetUserID: id}); err != nil {
			return UserView{}, err
		}
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		in.Email = &email
	}
	if err := check(in); err != nil {
		return UserView{}, err
	}
	current, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return UserView{}, err
	}

	fields := map[string]any{} // Only provided fields are written
	if in.Name != nil {
		fields["name"] = *in.Name
	}
	if in.Email != nil && *in.Email != current.Email {
		taken, err := s.repo.EmailTaken(ctx, *in.Email, id)
		if err != nil {
			return UserView{}, err
		}
		if taken {
			return UserView{}, domain.Conflict("user with this email already exists")
		}
		fields["email"] = *in.Email
	}
	if in.Address != nil {
		fields["address"] = optional(in.Address)
	}
	if in.Role != nil && *in.Role != current.Role {
		if current.Role == domain.RoleStoreOwner {
			if _, err := s.repo.GetStoreByOwner(ctx, id); err == nil {
				return UserView{}, domain.Conflict("user owns a store and must stay a store owner") // Owners with a store keep their role
			} else if !isNotFound(err) {
				return UserView{}, err
			}
		}
		fields["role"] = *in.Role
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateUser(ctx, id, fields); err != nil {
			return UserView{}, err
		}
		logrus.WithFields(logrus.Fields{"user_id": id, "actor_id": actor.ID}).Info("User updated")
	}
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return UserView{}, err
	}
	return newUserView(u), nil
}

// UpdatePassword replaces the actor's password after verifying the current one.
func (s *UserService) UpdatePassword(ctx context.Context, actor *domain.Actor, in UpdatePasswordInput) error {
	if actor == nil {
		return s.policy.Authorize(nil, policy.UpdatePassword, policy.Resource{}) // Unauthenticated
	}
	if err := check(in); err != nil {
		return err
	}
	u, err := s.repo.GetUser(ctx, actor.ID)
	if err != nil {
		return err
	}
	verified := s.passwords.Compare(u.Password, in.CurrentPassword) // Policy denies when false
	if err := s.policy.Authorize(actor, policy.UpdatePassword, policy.Resource{
		TargetUserID:     u.ID,
		PasswordVerified: verified,
	}); err != nil {
		return err
	}
	hash, err := s.passwords.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateUser(ctx, u.ID, map[string]any{"password": hash}); err != nil {
		return err
	}
	logrus.WithField("user_id", u.ID).Info("Password updated")
	return nil
}

// Delete removes a user with its ratings. A store it owned becomes ownerless.
func (s *UserService) Delete(ctx context.Context, actor *domain.Actor, id string) error {
	if err := s.policy.Authorize(actor, policy.DeleteUser, policy.Resource{TargetUserID: id}); err != nil {
		return err
	}
	if actor.ID == id {
		return domain.InvalidInput("administrators cannot delete their own account") // Self deletion is refused
	}
	if err := s.repo.DeleteUser(ctx, id); err != nil { // Ratings deleted, owned store kept ownerless
		return err
	}
	logrus.WithFields(logrus.Fields{"user_id": id, "actor_id": actor.ID}).Info("User deleted")
	return nil
}

// Counts returns the number of users in total and per role.
func (s *UserService) Counts(ctx context.Context, actor *domain.Actor) (UserCounts, error) {
	if err := s.policy.Authorize(actor, policy.ListUsers, policy.Resource{}); err != nil {
		return UserCounts{}, err
	}
	byRole, err := s.repo.CountUsersByRole(ctx)
	if err != nil {
		return UserCounts{}, err
	}
	var total int64
	for _, n := range byRole {
		total += n
	}
	return UserCounts{Total: total, ByRole: byRole}, nil
}
