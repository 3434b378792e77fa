package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestTransactionManager_StatementsShareTheTx(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	tm := NewTransactionManager(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO app_state_history`)).
		WithArgs("users").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM app_state_history`)).
		WithArgs("users", 10).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := tm.WithinReadWrite(context.Background(), func(ctx context.Context) error {
		exec := QueryerFromContext(ctx, nil)
		if exec == nil {
			t.Fatal("expected the transaction to be used as queryer")
		}
		if _, err := exec.Exec(ctx, `INSERT INTO app_state_history (key, value) SELECT key, value FROM app_state WHERE key = $1`, "users"); err != nil {
			return err
		}
		_, err := exec.Exec(ctx, `DELETE FROM app_state_history WHERE key = $1 LIMIT $2`, "users", 10)
		return err
	})
	if err != nil {
		t.Fatalf("WithinReadWrite returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestQueryerFromContext_FallsBackWithoutTx(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	if got := QueryerFromContext(context.Background(), mock); got != Queryer(mock) {
		t.Fatalf("expected fallback queryer, got %v", got)
	}
}

func TestTransactionManager_ReadOnlyLoadFailureRollsBack(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	tm := NewTransactionManager(mock)

	loadErr := errors.New("relation \"app_state\" does not exist")
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadOnly})
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value::text FROM app_state`)).
		WithArgs("scanLog").
		WillReturnError(loadErr)
	mock.ExpectRollback()

	err := tm.WithinReadOnly(context.Background(), func(ctx context.Context) error {
		var value string
		return QueryerFromContext(ctx, mock).QueryRow(ctx, `SELECT value::text FROM app_state WHERE key = $1`, "scanLog").Scan(&value)
	})
	if !errors.Is(err, loadErr) {
		t.Fatalf("expected %v, got %v", loadErr, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManager_BeginFailure(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	tm := NewTransactionManager(mock)

	beginErr := errors.New("too many connections")
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite}).WillReturnError(beginErr)

	called := false
	err := tm.WithinReadWrite(context.Background(), func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected %v, got %v", beginErr, err)
	}
	if called {
		t.Fatal("fn must not run when the transaction cannot start")
	}
}

func TestTransactionManager_CommitFailure(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	tm := NewTransactionManager(mock)

	commitErr := errors.New("could not serialize access")
	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit().WillReturnError(commitErr)
	mock.ExpectRollback()

	err := tm.WithinReadWrite(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, commitErr) {
		t.Fatalf("expected %v, got %v", commitErr, err)
	}
}

func TestTransactionManager_ReadInsideWriteJoinsOuterTx(t *testing.T) {
	t.Parallel()

	mock := newMockPool(t)
	tm := NewTransactionManager(mock)

	mock.ExpectBeginTx(pgx.TxOptions{AccessMode: pgx.ReadWrite})
	mock.ExpectCommit()

	err := tm.WithinReadWrite(context.Background(), func(outer context.Context) error {
		outerTx, _ := txFromContext(outer)
		return tm.WithinReadOnly(outer, func(inner context.Context) error {
			innerTx, ok := txFromContext(inner)
			if !ok || innerTx != outerTx {
				t.Fatal("expected the read to join the outer transaction")
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("nested transaction returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransactionManager_NilManagerRunsDirectly(t *testing.T) {
	t.Parallel()

	var tm *TransactionManager
	if NewTransactionManager(nil) != nil {
		t.Fatal("expected nil manager for nil pool")
	}

	calls := 0
	fn := func(ctx context.Context) error {
		if _, ok := txFromContext(ctx); ok {
			t.Fatal("no transaction expected without a manager")
		}
		calls++
		return nil
	}
	if err := tm.WithinReadOnly(context.Background(), fn); err != nil {
		t.Fatalf("WithinReadOnly returned error: %v", err)
	}
	if err := tm.WithinReadWrite(context.Background(), fn); err != nil {
		t.Fatalf("WithinReadWrite returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected fn to run twice, got %d", calls)
	}

	mock := newMockPool(t)
	if err := NewTransactionManager(mock).WithinReadWrite(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil fn")
	}
}
