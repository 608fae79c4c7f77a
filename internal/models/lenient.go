// internal/models/lenient.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Ответы API нетипизированы: одно и то же поле приходит то строкой, то числом.
// Нераспознанное значение становится нулевым и не ломает всю коллекцию.

type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = ""
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*s = ""
			return nil
		}
		*s = looseString(v)
	case data[0] == '{' || data[0] == '[':
		*s = ""
	default:
		// числа и true/false как есть
		*s = looseString(data)
	}
	return nil
}

type looseInt int64

func (n *looseInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*n = 0
			return nil
		}
		raw = strings.TrimSpace(v)
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		*n = 0
		return nil
	}
	*n = looseInt(d.IntPart())
	return nil
}

type looseBool bool

func (b *looseBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			*b = false
			return nil
		}
		raw = strings.TrimSpace(v)
	}
	if v, err := strconv.ParseBool(raw); err == nil {
		*b = looseBool(v)
		return nil
	}
	if d, err := decimal.NewFromString(raw); err == nil {
		*b = looseBool(!d.IsZero())
		return nil
	}
	*b = false
	return nil
}

// looseID хранит признак присутствия, чтобы отсутствующий id остался nil.
type looseID struct {
	set bool
	n   looseInt
}

func (id *looseID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*id = looseID{}
		return nil
	}
	id.set = true
	return id.n.UnmarshalJSON(data)
}

func (id looseID) ptr() *int64 {
	if !id.set {
		return nil
	}
	v := int64(id.n)
	return &v
}
