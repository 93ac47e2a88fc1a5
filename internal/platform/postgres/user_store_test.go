package postgres_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvil8/go-test-tools/factory"
	"github.com/anvil8/go-test-tools/fake"
	"github.com/anvil8/go-test-tools/guard"
	"github.com/anvil8/go-test-tools/internal/domain"
	"github.com/anvil8/go-test-tools/internal/platform/postgres"
	"github.com/anvil8/go-test-tools/objdiff"
	"github.com/anvil8/go-test-tools/store"
	"github.com/anvil8/go-test-tools/testdb"
)

func TestSaveBlockedByGuard(t *testing.T) {
	users := postgres.NewUserStore(guard.NoDB())

	user, err := domain.NewUser("john", fake.Email())
	require.NoError(t, err)

	err = users.Save(context.Background(), user)
	assert.ErrorIs(t, err, guard.ErrDatabaseAccess)
}

func TestSaveAndGetByID(t *testing.T) {
	testdb.SkipUnlessIntegration(t)

	db := testdb.Prepare(t, testdb.Config{URL: testdb.URLFromEnv()})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewUserStore(tx)

		saved, err := factory.CreateOne[domain.User](ctx, users, factory.Fields{
			"Username": "john",
			"LastName": "Smith",
			"Email":    fake.UniqueEmail(),
		})
		require.NoError(t, err)
		require.NotEqual(t, uuid.Nil, saved.ID, "Save should assign an ID")

		loaded, err := users.GetByID(ctx, saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.Username, loaded.Username)
		assert.Equal(t, saved.Email, loaded.Email)
	})
}

func TestGetByIDNotFound(t *testing.T) {
	testdb.SkipUnlessIntegration(t)

	db := testdb.Prepare(t, testdb.Config{URL: testdb.URLFromEnv()})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		users := postgres.NewUserStore(tx)

		_, err := users.GetByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, store.ErrUserNotFound)
	})
}

func TestSaveDuplicateEmail(t *testing.T) {
	testdb.SkipUnlessIntegration(t)

	db := testdb.Prepare(t, testdb.Config{URL: testdb.URLFromEnv()})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewUserStore(tx)
		email := fake.UniqueEmail()

		_, err := factory.CreateOne[domain.User](ctx, users, factory.Fields{
			"Username": "john", "Email": email,
		})
		require.NoError(t, err)

		_, err = factory.CreateOne[domain.User](ctx, users, factory.Fields{
			"Username": "tom", "Email": email,
		})
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})
}

func TestBulkCreateRoundTrip(t *testing.T) {
	testdb.SkipUnlessIntegration(t)

	db := testdb.Prepare(t, testdb.Config{URL: testdb.URLFromEnv()})

	testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
		ctx := context.Background()
		users := postgres.NewUserStore(tx)

		expected, err := factory.Create[domain.User](ctx, users, factory.Fields{
			"Username": []string{"john", "tom"},
			"LastName": []string{"Smith", "Green"},
			"Email":    fake.Emails(2),
		})
		require.NoError(t, err)

		count, err := users.Count(ctx, "email = ANY($1)", []string{"email_0@example.com", "email_1@example.com"})
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		loaded := make([]*domain.User, 0, len(expected))
		for _, user := range expected {
			got, err := users.GetByID(ctx, user.ID)
			require.NoError(t, err)
			loaded = append(loaded, got)
		}

		list := objdiff.NewList([]string{"Username", "LastName", "Email"}, expected...)
		if list.HasDiff(loaded, true) {
			t.Fatal(list.Diff(loaded, true))
		}
	})
}
