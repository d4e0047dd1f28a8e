package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractOperationAndTable(t *testing.T) {
	tests := []struct {
		sql       string
		operation string
		table     string
	}{
		{`SELECT * FROM "lessons" WHERE "lessons"."id" = $1`, "SELECT", "lessons"},
		{`INSERT INTO "views" ("id","user_id") VALUES ($1,$2) ON CONFLICT DO NOTHING`, "INSERT", "views"},
		{`UPDATE "views" SET "viewing_time"=$1`, "UPDATE", "views"},
		{`delete from accesses where product_id = ?`, "DELETE", "accesses"},
		{`SELECT count(*) FROM (SELECT 1) x`, "SELECT", "unknown"},
		{``, "UNKNOWN", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.operation, extractOperation(tt.sql), tt.sql)
		assert.Equal(t, tt.table, extractTableName(tt.sql), tt.sql)
	}
}
