package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestPrepare_RetriesPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectPing().WillReturnError(errors.New("starting up"))
	mock.ExpectPing()

	opts := DefaultOptions
	opts.RetryBackoff = 0
	if err := prepare(context.Background(), sqlx.NewDb(db, "mysql"), opts); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPrepare_GivesUp(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	down := errors.New("down")
	mock.ExpectPing().WillReturnError(down)
	mock.ExpectPing().WillReturnError(down)

	opts := Options{Retries: 1}
	if err := prepare(context.Background(), sqlx.NewDb(db, "mysql"), opts); !errors.Is(err, down) {
		t.Fatalf("err = %v, want %v", err, down)
	}
}
