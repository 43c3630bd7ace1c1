package sqldb

import (
	"fmt"
	"time"
)

// SQLite hands TIMESTAMP columns back as text when it cannot parse them,
// PostgreSQL always as time.Time.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

type timestamp struct {
	time.Time
}

func (ts *timestamp) Scan(value any) error {
	switch v := value.(type) {
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("in internal/db/sqldb/timestamp.go/Scan(): unsupported type %T", value)
	}
}

func (ts *timestamp) parse(value string) error {
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			ts.Time = parsed.UTC()
			return nil
		}
	}

	return fmt.Errorf("in internal/db/sqldb/timestamp.go/parse(): unrecognized timestamp %q", value)
}
