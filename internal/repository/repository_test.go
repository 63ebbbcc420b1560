package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/JohnDaWalka/Poker-Therapist-sub000/internal/utils/errutils"
)

func TestNewRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")
	// Close upon return.
	defer func() { _ = db.Close() }()

	// Test repo creation.
	repo := NewRepository(db)
	require.NotNil(t, repo, "Repository is nil")
}

func TestUpsertUser(t *testing.T) {
	// Common mock params for testing.
	mUser := User{
		Provider:    "google",
		Subject:     "u-1",
		Email:       "test@hey.com",
		DisplayName: "John Doe",
		PictureURL:  "https://hey.com/pic.jpg",
	}
	mQuery, mArgs := upsertUserQuery(mUser)
	mQuery = regexp.QuoteMeta(mQuery)

	for _, tc := range []struct {
		name        string
		mockFunc    func(mock sqlmock.Sqlmock)
		errExpected bool
	}{
		{
			name: "Successful insert, no errors.",
			mockFunc: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(mQuery).
					WithArgs(mArgs[0], mArgs[1], mArgs[2], mArgs[3], mArgs[4]).
					WillReturnResult(sqlmock.NewResult(1, 1))
			},
			errExpected: false,
		},
		{
			name: "Successful update, no errors.",
			mockFunc: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(mQuery).
					WithArgs(mArgs[0], mArgs[1], mArgs[2], mArgs[3], mArgs[4]).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			errExpected: false,
		},
		{
			name: "Database returns error, error expected.",
			mockFunc: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(mQuery).
					WithArgs(mArgs[0], mArgs[1], mArgs[2], mArgs[3], mArgs[4]).
					WillReturnError(sql.ErrConnDone)
			},
			errExpected: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Create a new mock database for each test.
			db, mock, err := sqlmock.New()
			require.NoError(t, err, "Failed to create mock DB")
			// Close upon return.
			defer func() { _ = db.Close() }()

			// Set up the mock expectations.
			tc.mockFunc(mock)
			// Create a new repository with the mock DB.
			repo := NewRepository(db)

			// Execute the test.
			err = repo.UpsertUser(context.Background(), mUser)

			// Check the results.
			if tc.errExpected {
				require.Error(t, err, "UpsertUser should have returned an error")
			} else {
				require.NoError(t, err, "UpsertUser should not have returned an error")
			}

			// Ensure all expectations were met.
			err = mock.ExpectationsWereMet()
			require.NoError(t, err, "Expectations were not met")
		})
	}
}

func TestGetUserByEmail(t *testing.T) {
	// Common mock params for testing.
	mUser := User{
		ID:          1,
		Provider:    "google",
		Subject:     "u-1",
		Email:       "test@hey.com",
		DisplayName: "John Doe",
		PictureURL:  "https://hey.com/pic.jpg",
		CreatedAt:   "2026-01-01T00:00:00Z",
		UpdatedAt:   "2026-01-01T00:00:00Z",
	}
	mQuery, mArgs := getUserByEmailQuery(mUser.Email)
	mQuery = regexp.QuoteMeta(mQuery)

	mColumns := []string{
		"id", "provider", "subject", "email", "display_name", "picture_url", "created_at", "updated_at",
	}

	for _, tc := range []struct {
		name         string
		mockFunc     func(mock sqlmock.Sqlmock)
		expectedUser User
		errExpected  bool
		errNotFound  bool
	}{
		{
			name: "User exists, no errors.",
			mockFunc: func(mock sqlmock.Sqlmock) {
				rows := sqlmock.NewRows(mColumns).AddRow(
					mUser.ID, mUser.Provider, mUser.Subject, mUser.Email,
					mUser.DisplayName, mUser.PictureURL, mUser.CreatedAt, mUser.UpdatedAt,
				)
				mock.ExpectQuery(mQuery).WithArgs(mArgs[0]).WillReturnRows(rows)
			},
			expectedUser: mUser,
			errExpected:  false,
		},
		{
			name: "User does not exist, not-found error expected.",
			mockFunc: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(mQuery).WithArgs(mArgs[0]).WillReturnError(sql.ErrNoRows)
			},
			errExpected: true,
			errNotFound: true,
		},
		{
			name: "Database returns error, error expected.",
			mockFunc: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(mQuery).WithArgs(mArgs[0]).WillReturnError(sql.ErrConnDone)
			},
			errExpected: true,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Create a new mock database for each test.
			db, mock, err := sqlmock.New()
			require.NoError(t, err, "Failed to create mock DB")
			// Close upon return.
			defer func() { _ = db.Close() }()

			// Set up the mock expectations.
			tc.mockFunc(mock)
			// Create a new repository with the mock DB.
			repo := NewRepository(db)

			// Execute the test.
			user, err := repo.GetUserByEmail(context.Background(), mUser.Email)

			// Check the results.
			if tc.errExpected {
				require.Error(t, err, "GetUserByEmail should have returned an error")
				if tc.errNotFound {
					var httpErr errutils.HTTPError
					require.True(t, errors.As(err, &httpErr), "Expected an HTTPError")
					require.Equal(t, errutils.NotFound().Status, httpErr.Status, "Expected 404 status")
				}
			} else {
				require.NoError(t, err, "GetUserByEmail should not have returned an error")
				require.Equal(t, tc.expectedUser, user, "User does not match")
			}

			// Ensure all expectations were met.
			err = mock.ExpectationsWereMet()
			require.NoError(t, err, "Expectations were not met")
		})
	}
}
