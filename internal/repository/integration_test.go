//go:build integration
// +build integration

package repository_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bluehaven/rentals/internal/config"
	"github.com/bluehaven/rentals/internal/db"
	"github.com/bluehaven/rentals/internal/domain"
	"github.com/bluehaven/rentals/internal/repository"
	"github.com/bluehaven/rentals/pkg/otp"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mysql"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	container, err := mysql.Run(ctx,
		"mysql:8.0.36",
		mysql.WithDatabase("bluehaven"),
		mysql.WithUsername("root"),
		mysql.WithPassword("password"),
	)
	require.NoError(t, err, "start mysql container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	conn, err := db.New(config.Database{
		Net:                "tcp",
		Server:             host + ":" + port.Port(),
		DBName:             "bluehaven",
		User:               "root",
		Password:           "password",
		TimeZone:           "UTC",
		Timeout:            10 * time.Second,
		MaxIdleConnections: 5,
		MaxOpenConnections: 10,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(ctx, conn, "../../migrations"))

	return conn
}

func TestIntegration_Repositories(t *testing.T) {
	conn := setupTestDB(t)
	repos := repository.NewRepositories(conn)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("email verification single use", func(t *testing.T) {
		v := &domain.EmailVerification{
			ID:        uuid.Must(uuid.NewV7()),
			Email:     "a@b.com",
			Code:      "123456",
			UserName:  "Alice",
			CreatedAt: now,
			ExpiresAt: now.Add(10 * time.Minute),
		}
		require.NoError(t, repos.EmailVerifications.Create(ctx, v))

		unused, err := repos.EmailVerifications.GetUnusedByEmail(ctx, "a@b.com")
		require.NoError(t, err)
		require.Len(t, unused, 1)
		assert.Equal(t, v.ID, unused[0].ID)

		// concurrent redeems, exactly one wins
		var wins int32
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if repos.EmailVerifications.MarkUsed(ctx, v.ID, now) == nil {
					atomic.AddInt32(&wins, 1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins)

		verified, err := repos.EmailVerifications.ExistsUsed(ctx, "a@b.com")
		require.NoError(t, err)
		assert.True(t, verified)

		deleted, err := repos.EmailVerifications.DeleteExpired(ctx, now.Add(11*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
	})

	t.Run("codes retired by resend do not verify", func(t *testing.T) {
		v := &domain.EmailVerification{
			ID:        uuid.Must(uuid.NewV7()),
			Email:     "retired@b.com",
			Code:      "654321",
			UserName:  "Bob",
			CreatedAt: now,
			ExpiresAt: now.Add(10 * time.Minute),
		}
		require.NoError(t, repos.EmailVerifications.Create(ctx, v))

		retired, err := repos.EmailVerifications.InvalidateUnused(ctx, "retired@b.com")
		require.NoError(t, err)
		assert.Equal(t, int64(1), retired)

		unused, err := repos.EmailVerifications.GetUnusedByEmail(ctx, "retired@b.com")
		require.NoError(t, err)
		assert.Empty(t, unused)

		verified, err := repos.EmailVerifications.ExistsUsed(ctx, "retired@b.com")
		require.NoError(t, err)
		assert.False(t, verified)
	})

	t.Run("password reset token round trip", func(t *testing.T) {
		// same size the reset flow draws
		token := otp.NewGOTPGenerator().RandomSecret(40)
		reset := &domain.PasswordReset{
			ID:         uuid.Must(uuid.NewV7()),
			IdentityID: uuid.Must(uuid.NewV7()),
			Token:      token,
			ExpiresAt:  now.Add(30 * time.Minute),
			CreatedAt:  now,
		}
		require.NoError(t, repos.PasswordResets.Create(ctx, reset))

		got, err := repos.PasswordResets.GetByToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, reset.ID, got.ID)
		assert.Equal(t, reset.IdentityID, got.IdentityID)
		assert.Equal(t, token, got.Token)
		assert.True(t, got.Usable(now))

		err = repos.Transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
			return repos.PasswordResets.MarkUsedWithTx(ctx, tx, reset.ID, now)
		})
		require.NoError(t, err)

		got, err = repos.PasswordResets.GetByToken(ctx, token)
		require.NoError(t, err)
		assert.False(t, got.Usable(now))

		_, err = repos.PasswordResets.GetByToken(ctx, otp.NewGOTPGenerator().RandomSecret(40))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("post moderation round trip", func(t *testing.T) {
		owner := domain.Session{UserID: uuid.Must(uuid.NewV7()), Role: domain.RoleBoardingOwner, Name: "Nimal"}
		post := domain.NewPost(uuid.Must(uuid.NewV7()), owner, domain.PostContent{
			Title:       "Cozy room near campus",
			Category:    domain.CategoryBoardingHouses,
			ForWhom:     domain.ForWhomStudents,
			Location:    "Kandy",
			Description: "Quiet room with attached bathroom and wifi.",
			Rent:        25000,
			Email:       "owner@example.com",
			Mobile:      "771234567",
		}, now)
		require.NoError(t, repos.Posts.Create(ctx, post))

		err := repos.Transactor.WithTx(ctx, func(tx *sqlx.Tx) error {
			p, err := repos.Posts.GetByIDForUpdateWithTx(ctx, tx, post.ID)
			if err != nil {
				return err
			}
			if err := p.Decline("Photos unclear", now); err != nil {
				return err
			}
			return repos.Posts.UpdateWithTx(ctx, tx, p)
		})
		require.NoError(t, err)

		got, err := repos.Posts.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PostStatusDeclined, got.Status)
		require.NotNil(t, got.DeclineReason)
		assert.Equal(t, "Photos unclear", *got.DeclineReason)
		assert.Equal(t, 25000.0, got.Rent)

		approved := domain.PostStatusApproved
		count, err := repos.Posts.Count(ctx, &repository.PostFilters{Status: &approved})
		require.NoError(t, err)
		assert.Zero(t, count)

		byStatus, err := repos.Posts.CountByStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), byStatus[domain.PostStatusDeclined])

		require.NoError(t, repos.Posts.Delete(ctx, post.ID))
		_, err = repos.Posts.GetByID(ctx, post.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("user role normalization", func(t *testing.T) {
		id := uuid.Must(uuid.NewV7())
		_, err := conn.ExecContext(ctx,
			`INSERT INTO user (id, email, role, user_type, id_documents) VALUES (uuid_to_bin(?), ?, '', 'boarding_owner', '[]')`,
			id, "legacy@b.com")
		require.NoError(t, err)

		u, err := repos.Users.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleBoardingOwner, u.Role)

		byRole, err := repos.Users.CountByRole(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), byRole[domain.RoleBoardingOwner])
	})
}
