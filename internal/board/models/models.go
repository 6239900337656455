// Package models holds the task board types.
package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"supaboard/pkg/platform/validation"
)

// Table is the task table name.
const Table = "Task"

// Task is one row of the task table. Test carries the task text; the column
// name is part of the existing schema.
type Task struct {
	ID        int64      `json:"id"`
	CreatedAt *time.Time `json:"created_at"`
	Test      *string    `json:"test"`
	UserID    string     `json:"user_id"`
}

// NewTask is the insert payload.
type NewTask struct {
	Test   string `json:"test"`
	UserID string `json:"user_id"`
}

type CreateTaskRequest struct {
	Text *string `json:"text"`
}

func (r *CreateTaskRequest) Normalize() {}

func (r *CreateTaskRequest) Validate() error {
	fields := validation.FieldErrors{}
	if r.Text == nil {
		fields.Add("text", "Required")
	}
	return fields.Err()
}

type DeleteTaskRequest struct {
	ID TaskID `json:"id"`
}

func (r *DeleteTaskRequest) Normalize() {}

func (r *DeleteTaskRequest) Validate() error {
	fields := validation.FieldErrors{}
	if !r.ID.Valid {
		fields.Add("id", "Expected number")
	}
	return fields.Err()
}

// TaskID accepts a JSON number or a numeric string, since HTML forms post
// every value as text. Blank strings coerce to zero. Anything else leaves
// Valid false instead of failing the whole body.
type TaskID struct {
	Value int64
	Valid bool
}

func (id *TaskID) UnmarshalJSON(data []byte) error {
	*id = TaskID{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			id.Valid = true
			return nil
		}
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		id.Value, id.Valid = v, true
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	// float64 holds 2^63 exactly; anything at or past it would wrap.
	if f >= maxTaskID || f < -maxTaskID {
		return nil
	}
	id.Value = int64(f)
	id.Valid = true
	return nil
}

const maxTaskID = float64(1 << 63)

func (id TaskID) MarshalJSON() ([]byte, error) {
	if !id.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(id.Value, 10)), nil
}
