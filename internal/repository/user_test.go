package repository

import (
	"context"
	"regexp"
	"testing"

	"fritter/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	tests := []struct {
		name         string
		userID       uint
		mockBehavior func()
		expectedName string
		expectedCode string
	}{
		{
			name:   "Success",
			userID: 1,
			mockBehavior: func() {
				rows := sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "alice")
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(1, 1).
					WillReturnRows(rows)
			},
			expectedName: "alice",
		},
		{
			name:   "Not Found",
			userID: 99,
			mockBehavior: func() {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
					WithArgs(99, 1).
					WillReturnError(gorm.ErrRecordNotFound)
			},
			expectedCode: models.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockBehavior()
			user, err := repo.GetByID(ctx, tt.userID)

			if tt.expectedCode != "" {
				assert.True(t, models.HasCode(err, tt.expectedCode))
			} else if assert.NoError(t, err) {
				assert.Equal(t, tt.expectedName, user.Username)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_GetByUsernameNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE username = $1`)).
		WithArgs("ghost", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	_, err := repo.GetByUsername(context.Background(), "ghost")
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SQLiteDuplicateUsernameConflicts(t *testing.T) {
	db := setupSQLite(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{Username: "alice", Password: "x"}))
	err := repo.Create(ctx, &models.User{Username: "alice", Password: "y"})
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestUserRepository_SQLiteDeleteCascades(t *testing.T) {
	db := setupSQLite(t)
	users := NewUserRepository(db)
	freets := NewFreetRepository(db, 0)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	aliceProfile := seedProfile(t, db, alice)
	seedProfile(t, db, bob)

	sold := newMerchantFreet(alice, aliceProfile)
	require.NoError(t, freets.Create(ctx, sold))
	require.NoError(t, freets.Create(ctx, models.NewFreet(alice.ID, "hello", models.DefaultFreet{}, testNow)))
	bobsPost := models.NewFreet(bob.ID, "hi", models.DefaultFreet{}, testNow)
	require.NoError(t, freets.Create(ctx, bobsPost))

	require.NoError(t, users.Delete(ctx, alice.ID))

	var count int64
	require.NoError(t, db.Model(&models.Freet{}).Where("author_id = ?", alice.ID).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Listing{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.PaymentProfile{}).Where("user_id = ?", alice.ID).Count(&count).Error)
	assert.Zero(t, count)

	_, err := freets.GetByID(ctx, bobsPost.ID)
	assert.NoError(t, err)
	require.NoError(t, db.Model(&models.PaymentProfile{}).Where("user_id = ?", bob.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	err = users.Delete(ctx, alice.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
