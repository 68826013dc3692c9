package snowflake

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestSession_ListDatabases_LatestSamplePerDatabase(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"database_name", "size_mb"}).
		AddRow("ANALYTICS", 2048.0).
		AddRow("RAW", 512.5)
	mock.ExpectQuery(regexp.QuoteMeta(catalogQuery)).WillReturnRows(rows)

	s := &session{catalog: db}

	records, err := s.ListDatabases(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Name != "ANALYTICS" || records[0].CurrentSizeMB != 2048.0 {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestDatabase_ClearTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`TRUNCATE TABLE "EVENTS"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	d := &database{db: db}

	if err := d.ClearTable(context.Background(), "EVENTS"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}
