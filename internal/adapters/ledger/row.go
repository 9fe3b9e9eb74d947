package ledger

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/okian/raspa/internal/domain/model"
)

// Spreadsheet cells are loosely typed: a prize may arrive as a number or a
// string, booleans may be missing or spelled out, timestamps may be RFC3339
// or unix epochs. The flex* types default safely instead of failing the
// whole fetch over one bad cell.

// row mirrors one ledger row on the wire.
type row struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Agent       string   `json:"agent"`
	Prize       flexInt  `json:"prize"`
	Date        string   `json:"date"`
	Timestamp   flexTime `json:"timestamp"`
	IsScratched flexBool `json:"is_scratched"`
	IsClaimed   flexBool `json:"is_claimed"`
	IP          string   `json:"ip"`
}

// upsertRequest is the write shape accepted by the store.
type upsertRequest struct {
	KeyUsername string `json:"key_username"`
	KeyDate     string `json:"key_date"`
	Record      row    `json:"record"`
}

func (r row) record() model.PlayRecord {
	return model.PlayRecord{
		ID:          r.ID,
		Username:    r.Username,
		Agent:       r.Agent,
		Prize:       int(r.Prize),
		Date:        r.Date,
		Timestamp:   time.Time(r.Timestamp),
		IsScratched: bool(r.IsScratched),
		IsClaimed:   bool(r.IsClaimed),
		IP:          r.IP,
	}
}

func rowFromRecord(rec model.PlayRecord) row {
	return row{
		ID:          rec.ID,
		Username:    rec.Username,
		Agent:       rec.Agent,
		Prize:       flexInt(rec.Prize),
		Date:        rec.Date,
		Timestamp:   flexTime(rec.Timestamp),
		IsScratched: flexBool(rec.IsScratched),
		IsClaimed:   flexBool(rec.IsClaimed),
		IP:          rec.IP,
	}
}

// flexInt decodes a number or numeric string; anything else becomes 0.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			*f = flexInt(n)
			return nil
		}
	}
	*f = 0
	return nil
}

func (f flexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(int(f))
}

// flexBool decodes a bool, a "true"/"1" style string, or a nonzero number;
// anything else (including absence) becomes false.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "true", "1", "yes":
			*f = true
		default:
			*f = false
		}
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = n != 0
		return nil
	}
	*f = false
	return nil
}

func (f flexBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// flexTime decodes an RFC3339 string or a unix epoch (seconds or
// milliseconds); anything else becomes the zero time.
type flexTime time.Time

const millisEpochCutover = 1e12 // epochs past this are milliseconds

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			*f = flexTime(t)
			return nil
		}
		*f = flexTime(time.Time{})
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		if n > millisEpochCutover {
			*f = flexTime(time.UnixMilli(int64(n)))
		} else {
			*f = flexTime(time.Unix(int64(n), 0))
		}
		return nil
	}
	*f = flexTime(time.Time{})
	return nil
}

func (f flexTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(f).Format(time.RFC3339))
}
