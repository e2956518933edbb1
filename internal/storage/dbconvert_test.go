package storage

import (
	"database/sql"
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestPgTextConversion(t *testing.T) {
	assert.Equal(t, pgtype.Text{Valid: false}, stringToPgText(""))
	assert.Equal(t, pgtype.Text{String: "hi", Valid: true}, stringToPgText("hi"))

	assert.Equal(t, "", pgTextToString(pgtype.Text{Valid: false}))
	assert.Equal(t, "hi", pgTextToString(pgtype.Text{String: "hi", Valid: true}))
}

func TestPgInt4Conversion(t *testing.T) {
	assert.Equal(t, pgtype.Int4{Valid: false}, intPtrToPgInt4(nil))

	v := 0xFFFFFF
	converted := intPtrToPgInt4(&v)
	assert.True(t, converted.Valid)
	assert.Equal(t, int32(0xFFFFFF), converted.Int32)

	back := pgInt4ToIntPtr(converted)
	assert.NotNil(t, back)
	assert.Equal(t, v, *back)

	assert.Nil(t, pgInt4ToIntPtr(pgtype.Int4{Valid: false}))
}

func TestNullStringConversion(t *testing.T) {
	assert.Equal(t, sql.NullString{}, stringToNullString(""))
	assert.Equal(t, sql.NullString{String: "hi", Valid: true}, stringToNullString("hi"))

	assert.Equal(t, "", nullStringToString(sql.NullString{}))
	assert.Equal(t, "hi", nullStringToString(sql.NullString{String: "hi", Valid: true}))
}

func TestNullInt64Conversion(t *testing.T) {
	assert.Equal(t, sql.NullInt64{}, intPtrToNullInt64(nil))

	v := 42
	assert.Equal(t, sql.NullInt64{Int64: 42, Valid: true}, intPtrToNullInt64(&v))

	back := nullInt64ToIntPtr(sql.NullInt64{Int64: 42, Valid: true})
	assert.NotNil(t, back)
	assert.Equal(t, 42, *back)
	assert.Nil(t, nullInt64ToIntPtr(sql.NullInt64{}))
}
