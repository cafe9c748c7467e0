package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"racksum-backend/internal/apperr"
	"racksum-backend/internal/model"
)

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestGormStore_GetSite(t *testing.T) {
	testCases := []struct {
		name             string
		mockExpectations func(mock sqlmock.Sqlmock)
		expectedName     string
		expectedErr      error
	}{
		{
			name: "Site exists",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sites" WHERE "sites"."id" = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "name"}).
						AddRow(7, "5f1c0a5e-3b0a-4a8e-9d59-5a0d1b1f2c3d", "Main DC"))
			},
			expectedName: "Main DC",
		},
		{
			name: "Site missing, should be NotFound",
			mockExpectations: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "sites" WHERE "sites"."id" = $1`)).
					WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "name"}))
			},
			expectedErr: apperr.ErrNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB)

			tc.mockExpectations(mock)

			site, err := store.GetSite(context.Background(), 7)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedName, site.Name)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_CreateSite_TranslatesErrors(t *testing.T) {
	testCases := []struct {
		name         string
		pgCode       string
		expectedKind apperr.Kind
	}{
		{name: "Unique violation becomes Conflict", pgCode: "23505", expectedKind: apperr.KindConflict},
		{name: "Check violation becomes ValidationError", pgCode: "23514", expectedKind: apperr.KindValidation},
		{name: "Other driver errors stay internal", pgCode: "57014", expectedKind: apperr.KindInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB)

			mock.ExpectBegin()
			mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "sites"`)).
				WillReturnError(&pgconn.PgError{Code: tc.pgCode, Message: "boom"})
			mock.ExpectRollback()

			err := store.CreateSite(context.Background(), &model.Site{Name: "Main DC"})

			require.Error(t, err)
			assert.Equal(t, tc.expectedKind, apperr.KindOf(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_PlaceDevice_LostRaceIsConflict(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "racks" WHERE "racks"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "name", "ru_height"}).AddRow(3, 1, "R1", 42))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "rack_devices" WHERE rack_id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "rack_id", "device_id", "position"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "providers" WHERE rack_id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "site_id", "rack_id", "position", "ru_size"}))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "devices" WHERE "devices"."id" = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id", "name", "ru_size"}).AddRow(5, "srv-2u", "Server", 2))
	// Another writer took position 1 between the validation and the insert.
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "rack_devices"`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"idx_rack_devices_rack_position\""})
	mock.ExpectRollback()

	_, err := store.PlaceDevice(context.Background(), 3, PlacementRequest{DeviceID: 5, Position: 1})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_DeleteProvider(t *testing.T) {
	testCases := []struct {
		name         string
		rowsAffected int64
		expectedErr  error
	}{
		{name: "Provider deleted", rowsAffected: 1},
		{name: "Provider missing, should be NotFound", rowsAffected: 0, expectedErr: apperr.ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gormDB, mock := newTestDB(t)
			store := NewGormStore(gormDB)

			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "providers" WHERE "providers"."id" = $1`)).
				WithArgs(9).
				WillReturnResult(sqlmock.NewResult(0, tc.rowsAffected))
			mock.ExpectCommit()

			err := store.DeleteProvider(context.Background(), 9)

			if tc.expectedErr != nil {
				assert.ErrorIs(t, err, tc.expectedErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStore_RackValidationNeedsNoDatabase(t *testing.T) {
	gormDB, mock := newTestDB(t)
	store := NewGormStore(gormDB)

	err := store.CreateRack(context.Background(), &model.Rack{SiteID: 1, Name: "R1", RUHeight: 0})

	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}
