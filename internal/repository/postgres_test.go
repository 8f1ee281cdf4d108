package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userauth/userauth-go/internal/model"
)

func TestPostgresUserRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
		errMsg    string
	}{
		{
			name: "inserted",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "a@b.com", "hash", pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "unique violation",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "a@b.com", "hash", pgxmock.AnyArg()).
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "uq_users_email"})
			},
			wantErr: ErrDuplicateEmail,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO users`).
					WithArgs(pgxmock.AnyArg(), "a@b.com", "hash", pgxmock.AnyArg()).
					WillReturnError(errors.New("connection refused"))
			},
			errMsg: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			user := &model.User{Email: "a@b.com", PasswordHash: "hash"}
			err = NewPostgresUserRepository(mock).Create(context.Background(), user)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.NotErrorIs(t, err, ErrDuplicateEmail)
			default:
				require.NoError(t, err)
				assert.NotEmpty(t, user.ID)
				assert.False(t, user.CreatedAt.IsZero())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresUserRepository_GetByEmail(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      *model.User
		wantErr   error
		errMsg    string
	}{
		{
			name: "found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
					AddRow("0b7d5a6e-9a49-4d0e-8f55-2f8c1c9d2c11", "a@b.com", "hash", created)
				mock.ExpectQuery(`SELECT id::text, email, password_hash, created_at`).
					WithArgs("a@b.com").
					WillReturnRows(rows)
			},
			want: &model.User{
				ID:           "0b7d5a6e-9a49-4d0e-8f55-2f8c1c9d2c11",
				Email:        "a@b.com",
				PasswordHash: "hash",
				CreatedAt:    created,
			},
		},
		{
			name: "not found",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id::text, email, password_hash, created_at`).
					WithArgs("a@b.com").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id::text, email, password_hash, created_at`).
					WithArgs("a@b.com").
					WillReturnError(errors.New("connection reset"))
			},
			errMsg: "connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			got, err := NewPostgresUserRepository(mock).GetByEmail(context.Background(), "a@b.com")

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			case tt.errMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
