package postgres

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// database/sql rejects uint64 parameters with the high bit set, so unsigned
// quantities travel as decimal text in both directions.
func numeric(v uint64) string {
	return strconv.FormatUint(v, 10)
}

func parseNumeric(field, raw string) (uint64, error) {
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return v, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func timeOrZero(t sql.NullTime) time.Time {
	if !t.Valid {
		return time.Time{}
	}
	return t.Time.UTC()
}
