// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Oxide Plugins Contributors

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Trux13/oxide-plugins/pkg/errutil"
)

type testObject struct {
	Gods []string `json:"Gods"`
}

func TestPostgresStore_ReadObject(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		want      testObject
		wantErr   error
		wantCode  string
	}{
		{
			name: "existing object",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"data"}).AddRow([]byte(`{"Gods":["1","2"]}`))
				mock.ExpectQuery(`SELECT data FROM plugin_data WHERE name = \$1`).
					WithArgs("Godmode").
					WillReturnRows(rows)
			},
			want: testObject{Gods: []string{"1", "2"}},
		},
		{
			name: "missing row",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT data FROM plugin_data`).
					WithArgs("Godmode").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "missing table",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT data FROM plugin_data`).
					WithArgs("Godmode").
					WillReturnError(&pgconn.PgError{Code: pgerrcode.UndefinedTable})
			},
			wantErr: ErrNotFound,
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT data FROM plugin_data`).
					WithArgs("Godmode").
					WillReturnError(errors.New("connection refused"))
			},
			wantCode: "READ_FAILED",
		},
		{
			name: "corrupt payload",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"data"}).AddRow([]byte(`{"Gods":`))
				mock.ExpectQuery(`SELECT data FROM plugin_data`).
					WithArgs("Godmode").
					WillReturnRows(rows)
			},
			wantCode: "DECODE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			s := NewPostgresStore(mock)
			var got testObject
			err = s.ReadObject(context.Background(), "Godmode", &got)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.wantCode != "":
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_WriteObject(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantCode  string
	}{
		{
			name: "upsert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO plugin_data`).
					WithArgs("Godmode", pgxmock.AnyArg()).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "database error",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO plugin_data`).
					WithArgs("Godmode", pgxmock.AnyArg()).
					WillReturnError(errors.New("disk full"))
			},
			wantCode: "WRITE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			s := NewPostgresStore(mock)
			err = s.WriteObject(context.Background(), "Godmode", testObject{Gods: []string{"1"}})

			if tt.wantCode != "" {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, tt.wantCode)
				errutil.AssertErrorContext(t, err, "name", "Godmode")
			} else {
				require.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_RejectsInvalidName(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	s := NewPostgresStore(mock)
	err = s.WriteObject(context.Background(), "../etc", testObject{})
	errutil.AssertErrorCode(t, err, "INVALID_OBJECT_NAME")
	assert.NoError(t, mock.ExpectationsWereMet())
}
