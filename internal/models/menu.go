// internal/models/menu.go
package models

import "encoding/json"

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 5
)

// MenuItem в API заказов идентифицируется по Title.
type MenuItem struct {
	ID     *int64 `json:"id,omitempty"`
	Title  string `json:"title"`
	Desc   string `json:"desc"`
	Price  string `json:"price"`
	Image  string `json:"image"`
	Rating int    `json:"rating"`
}

type menuItemWire struct {
	ID     looseID     `json:"id"`
	Title  looseString `json:"title"`
	Desc   looseString `json:"desc"`
	Price  looseString `json:"price"`
	Image  looseString `json:"image"`
	Rating looseInt    `json:"rating"`
}

func (m *MenuItem) UnmarshalJSON(data []byte) error {
	var w menuItemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*m = MenuItem{
		ID:     w.ID.ptr(),
		Title:  string(w.Title),
		Desc:   string(w.Desc),
		Price:  string(w.Price),
		Image:  string(w.Image),
		Rating: int(w.Rating),
	}
	return nil
}

type MenuForm struct {
	Title  string `form:"title" validate:"notblank"`
	Desc   string `form:"desc" validate:"notblank"`
	Price  string `form:"price" validate:"notblank"`
	Image  string `form:"image" validate:"notblank"`
	Rating int    `form:"rating" validate:"omitempty,min=1,max=5"`
}

// Item переводит форму в тело запроса; пустой рейтинг становится DefaultRating.
func (f MenuForm) Item() MenuItem {
	rating := f.Rating
	if rating == 0 {
		rating = DefaultRating
	}
	return MenuItem{
		Title:  f.Title,
		Desc:   f.Desc,
		Price:  f.Price,
		Image:  f.Image,
		Rating: rating,
	}
}
