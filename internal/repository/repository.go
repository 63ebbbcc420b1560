package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/errutils"
)

// User represents a single user in the database.
type User struct {
	ID          int    `json:"id"`
	Provider    string `json:"provider"`
	Subject     string `json:"subject"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PictureURL  string `json:"picture_url"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Repository encapsulates all operations available on the database.
type Repository interface {
	// UpsertUser inserts or updates the user identified by (provider, subject).
	//
	// A stored non-empty display name is never overwritten with an empty one. Apple
	// sends the name only on the very first authorization of a subject, so this is
	// what keeps it across later logins.
	UpsertUser(ctx context.Context, user User) error

	// GetUserByEmail fetches a user record by email.
	GetUserByEmail(ctx context.Context, email string) (User, error)
}

// repository implements Repository.
type repository struct {
	database *sql.DB
}

// NewRepository returns a new implementation of Repository.
func NewRepository(database *sql.DB) Repository {
	return &repository{database: database}
}

func (r *repository) UpsertUser(ctx context.Context, user User) error {
	// Form and execute query.
	query, args := upsertUserQuery(user)
	result, err := r.database.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("error in query execution: %w", err)
	}

	// Parameter for logging.
	af, _ := result.RowsAffected()

	slog.InfoContext(ctx, "user upserted successfully",
		"provider", user.Provider, "subject", user.Subject, "rows-affected", af)
	return nil
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query, args := getUserByEmailQuery(email)

	var user User
	err := r.database.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Provider, &user.Subject, &user.Email,
		&user.DisplayName, &user.PictureURL, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		// Handle 404.
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, errutils.NotFound()
		}
		// Unexpected error.
		return User{}, fmt.Errorf("error in query execution: %w", err)
	}

	return user, nil
}
