package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE recipes (id TEXT PRIMARY KEY, name TEXT NOT NULL);`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE favorites (user_id TEXT NOT NULL, recipe_id TEXT NOT NULL);`)
	require.NoError(t, err)
	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func seed(t *testing.T, db *sql.DB) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO recipes(id, name) VALUES ('r1', 'Tomato Soup')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO favorites(user_id, recipe_id) VALUES ('u1', 'r1'), ('u2', 'r1')`)
	require.NoError(t, err)
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := setupDB(t)
	seed(t, db)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE recipe_id = 'r1'`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM recipes WHERE id = 'r1'`)
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 0, countRows(t, db, "favorites"))
	require.Equal(t, 0, countRows(t, db, "recipes"))
}

func TestWithTx_RollbackOnFnError(t *testing.T) {
	db := setupDB(t)
	seed(t, db)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `DELETE FROM favorites WHERE recipe_id = 'r1'`)
		require.NoError(t, e)
		return errors.New("boom")
	})
	require.Error(t, err)

	require.Equal(t, 2, countRows(t, db, "favorites"), "favorites must survive a failed cascade")
	require.Equal(t, 1, countRows(t, db, "recipes"))
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := setupDB(t)
	seed(t, db)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic to propagate")
		}
		require.Equal(t, 2, countRows(t, db, "favorites"), "must rollback on panic")
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		_, e := tx.ExecContext(ctx, `DELETE FROM favorites`)
		require.NoError(t, e)
		panic("kaput")
	})
}

func TestWithTx_BeginError(t *testing.T) {
	db := setupDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err, "begin should fail when DB is closed")
}
