package mysql

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSession_ListDatabases_AggregatesSchemaSizes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"table_schema", "size_mb"}).
		AddRow("shop", 1320.75)
	mock.ExpectQuery(regexp.QuoteMeta(catalogQuery)).WillReturnRows(rows)

	s := &session{catalog: db}

	records, err := s.ListDatabases(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 1 || records[0].Name != "shop" || records[0].CurrentSizeMB != 1320.75 {
		t.Errorf("unexpected records: %+v", records)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatabase_ClearTable_BackticksIdentifier(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE TABLE `sessions`")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	d := &database{db: db}

	if err := d.ClearTable(context.Background(), "sessions"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
