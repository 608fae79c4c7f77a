// internal/models/staff.go
package models

import "encoding/json"

type Staff struct {
	ID     *int64 `json:"id,omitempty"`
	Name   string `json:"name"`
	Status bool   `json:"status"` // true = на смене
}

type staffWire struct {
	ID     looseID     `json:"id"`
	Name   looseString `json:"name"`
	Status looseBool   `json:"status"`
}

func (s *Staff) UnmarshalJSON(data []byte) error {
	var w staffWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*s = Staff{ID: w.ID.ptr(), Name: string(w.Name), Status: bool(w.Status)}
	return nil
}

type StaffForm struct {
	Name string `form:"name" validate:"notblank,max=100"`
}

type Feedback struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

type feedbackWire struct {
	ID      looseInt    `json:"id"`
	Message looseString `json:"message"`
}

func (f *Feedback) UnmarshalJSON(data []byte) error {
	var w feedbackWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = Feedback{ID: int64(w.ID), Message: string(w.Message)}
	return nil
}

type LoginForm struct {
	Password string `form:"password" validate:"required"`
}
