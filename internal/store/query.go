package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByFetchedAt = "fetched_at"
	orderByQuality   = "quality"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByFetchedAt: "fetched_at DESC",
	orderByQuality:   "quality DESC",
}

const defaultOrderBy = "fetched_at DESC"

const baseSnapshotsSelect = `SELECT id, watch_id, barcode, name,
	category_id, category_name, issuing_country,
	quality, quality_breakdown, changed_fields, fetched_at
FROM snapshots`

const countSnapshotsSelect = "SELECT COUNT(*) FROM snapshots"

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for a snapshot query.
// It returns two SQL strings (one for the data query, one for the count query)
// and the positional parameters.
func (q *SnapshotQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	if q.WatchID != nil {
		conditions = append(conditions, fmt.Sprintf("watch_id = $%d", paramIdx))
		args = append(args, *q.WatchID)
		paramIdx++
	}

	if q.Barcode != nil {
		conditions = append(conditions, fmt.Sprintf("barcode = $%d", paramIdx))
		args = append(args, *q.Barcode)
		paramIdx++
	}

	if q.MinQuality != nil {
		conditions = append(conditions, fmt.Sprintf("quality >= $%d", paramIdx))
		args = append(args, *q.MinQuality)
		paramIdx++
	}

	if q.MaxQuality != nil {
		conditions = append(conditions, fmt.Sprintf("quality <= $%d", paramIdx))
		args = append(args, *q.MaxQuality)
		paramIdx++
	}

	if q.ChangedOnly {
		conditions = append(conditions, "jsonb_array_length(changed_fields) > 0")
	}

	if q.Since != nil {
		conditions = append(conditions, fmt.Sprintf("fetched_at >= $%d", paramIdx))
		args = append(args, *q.Since)
		paramIdx++
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	// Order by
	orderClause := defaultOrderBy
	if q.OrderBy != "" {
		if col, ok := validOrderBy[q.OrderBy]; ok {
			orderClause = col
		}
	}

	// Limit
	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseSnapshotsSelect, whereClause, orderClause, limit, offset,
	)

	countSQL = countSnapshotsSelect + whereClause

	return dataSQL, countSQL, args
}
