package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go-repair-pos/internal/auth"
	"go-repair-pos/internal/ledger"
	"go-repair-pos/internal/models"
)

type UserInput struct {
	Username string      `json:"username" validate:"required,min=3,max=50"`
	Password string      `json:"password" validate:"omitempty,min=6"`
	Role     models.Role `json:"role" validate:"required,oneof=admin staff"`
}

type Users struct {
	deps Deps
}

func NewUsers(d Deps) *Users {
	return &Users{deps: d.withDefaults()}
}

func findUser(all []models.User, id string) int {
	for i, u := range all {
		if u.ID == id {
			return i
		}
	}
	return -1
}

// EnsureDefaults seeds the stock admin and staff accounts on a fresh store.
func (s *Users) EnsureDefaults(ctx context.Context) error {
	has, err := s.deps.Ledger.HasUsers(ctx)
	if err != nil || has {
		return err
	}
	seed := []struct {
		id, name, pass string
		role           models.Role
	}{
		{"1", "admin", "admin123", models.RoleAdmin},
		{"2", "staff", "staff123", models.RoleStaff},
	}
	users := make([]models.User, 0, len(seed))
	for _, u := range seed {
		hashed, err := auth.HashPassword(u.pass)
		if err != nil {
			return err
		}
		users = append(users, models.User{ID: u.id, Username: u.name, Password: hashed, Role: u.role, CreatedAt: s.deps.Now()})
	}
	err = s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		return tx.PutUsers(users)
	})
	if err == nil {
		s.deps.Log.Warn("seeded default accounts admin/staff; change their passwords")
	}
	return err
}

// Authenticate checks credentials, stamps the login time and upgrades legacy
// plaintext passwords to bcrypt.
func (s *Users) Authenticate(ctx context.Context, username, password string) (models.User, error) {
	var out models.User
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		for i := range users {
			u := &users[i]
			if u.Username != username || !auth.CheckPassword(u.Password, password) {
				continue
			}
			if !auth.IsHashed(u.Password) {
				hashed, err := auth.HashPassword(password)
				if err != nil {
					return err
				}
				u.Password = hashed
			}
			now := s.deps.Now()
			u.LastLogin = &now
			out = *u
			return tx.PutUsers(users)
		}
		return ErrInvalidCredentials
	})
	if err != nil {
		return models.User{}, err
	}
	s.deps.Log.Info("user logged in", slog.String("username", out.Username))
	return out, nil
}

func (s *Users) List(ctx context.Context, search string) ([]models.User, error) {
	all, err := s.deps.Ledger.Users(ctx)
	if err != nil {
		return nil, err
	}
	m := newMatcher(search)
	out := make([]models.User, 0, len(all))
	for _, u := range all {
		if m.match(u.Username, string(u.Role)) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *Users) Get(ctx context.Context, id string) (models.User, error) {
	all, err := s.deps.Ledger.Users(ctx)
	if err != nil {
		return models.User{}, err
	}
	i := findUser(all, id)
	if i < 0 {
		return models.User{}, ErrNotFound
	}
	return all[i], nil
}

func (s *Users) Create(ctx context.Context, in UserInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}
	if in.Password == "" {
		return models.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}
	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	user := models.User{ID: s.deps.NewID(), Username: in.Username, Password: hashed, Role: in.Role, CreatedAt: s.deps.Now()}

	err = s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			if u.Username == user.Username {
				return ErrConflict
			}
		}
		return tx.PutUsers(append(users, user))
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Update changes username and role; an empty password keeps the old one.
func (s *Users) Update(ctx context.Context, id string, in UserInput) (models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validateInput(in); err != nil {
		return models.User{}, err
	}
	var hashed string
	if in.Password != "" {
		var err error
		if hashed, err = auth.HashPassword(in.Password); err != nil {
			return models.User{}, err
		}
	}

	var out models.User
	err := s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		i := findUser(users, id)
		if i < 0 {
			return ErrNotFound
		}
		for _, u := range users {
			if u.Username == in.Username && u.ID != id {
				return ErrConflict
			}
		}
		users[i].Username = in.Username
		users[i].Role = in.Role
		if hashed != "" {
			users[i].Password = hashed
		}
		out = users[i]
		return tx.PutUsers(users)
	})
	return out, err
}

// Delete removes a user. Nobody can delete their own account.
func (s *Users) Delete(ctx context.Context, sess models.Session, id string) error {
	if sess.UserID == id {
		return ErrForbidden
	}
	return s.deps.Ledger.Update(ctx, func(tx *ledger.Tx) error {
		users, err := tx.Users(ctx)
		if err != nil {
			return err
		}
		i := findUser(users, id)
		if i < 0 {
			return ErrNotFound
		}
		return tx.PutUsers(append(users[:i], users[i+1:]...))
	})
}
