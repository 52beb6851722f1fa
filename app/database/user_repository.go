package database

import (
	"database/sql"
	"fmt"
	"time"
)

type userRepository struct {
	db *DB
}

func NewUserRepository(db *DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByLogin(login string) (*User, error) {
	var user User
	err := r.db.QueryRow(`
		SELECT id, login, email, display_name, created_at
		FROM users
		WHERE login = ?
	`, login).Scan(&user.ID, &user.Login, &user.Email, &user.DisplayName, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}
	return &user, nil
}

// GetOrCreate returns the user with the given login, creating it on first
// use. The boolean reports whether a row was created. An existing user's
// email and display name are left untouched.
func (r *userRepository) GetOrCreate(login, email, displayName string) (*User, bool, error) {
	existing, err := r.GetByLogin(login)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	now := time.Now().UTC()
	var id int64
	err = r.db.QueryRow(`
		INSERT INTO users (login, email, display_name, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`, login, email, displayName, now).Scan(&id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user %s: %w", login, err)
	}

	return &User{ID: id, Login: login, Email: email, DisplayName: displayName, CreatedAt: now}, true, nil
}
