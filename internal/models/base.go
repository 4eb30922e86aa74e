// internal/models/base.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringSlice is a JSONB column holding a list of strings.
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

// Scan unmarshals a JSONB column into the slice.
func (s *StringSlice) Scan(src interface{}) error {
	b, err := jsonBytes("StringSlice", src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, s)
}

func (StringSlice) GormDataType() string { return "jsonb" }

// JSON stores any JSON-encodable value in a JSONB column.
type JSON[T any] struct {
	Data T
}

func NewJSON[T any](v T) JSON[T] { return JSON[T]{Data: v} }

func (j JSON[T]) Value() (driver.Value, error) {
	return json.Marshal(j.Data)
}

// Scan unmarshals JSONB bytes into Data.
func (j *JSON[T]) Scan(src interface{}) error {
	b, err := jsonBytes("JSON", src)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, &j.Data)
}

func (JSON[T]) GormDataType() string { return "jsonb" }

func (j JSON[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Data)
}

func (j *JSON[T]) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &j.Data)
}

func jsonBytes(name string, src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("%s: expected []byte, got %T", name, src)
	}
}
