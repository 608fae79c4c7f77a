// internal/dashboard/pagination.go
package dashboard

const DefaultPageSize = 5

// Page описывает одну страницу списка. Start и End — полуоткрытые границы.
type Page struct {
	Number int `json:"number"`
	Total  int `json:"total"`
	Size   int `json:"size"`
	Start  int `json:"start"`
	End    int `json:"end"`
}

// Paginate делит n элементов на страницы по size и зажимает requested в диапазон.
// У пустого списка всё равно одна (пустая) страница.
func Paginate(n, size, requested int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n < 0 {
		n = 0
	}
	total := (n + size - 1) / size
	if total < 1 {
		total = 1
	}
	number := requested
	if number < 1 {
		number = 1
	}
	if number > total {
		number = total
	}
	start := (number - 1) * size
	if start > n {
		start = n
	}
	end := start + size
	if end > n {
		end = n
	}
	return Page{Number: number, Total: total, Size: size, Start: start, End: end}
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.Total }
func (p Page) Prev() int     { return p.Number - 1 }
func (p Page) Next() int     { return p.Number + 1 }

// Numbers перечисляет 1..Total для ссылок на страницы.
func (p Page) Numbers() []int {
	out := make([]int, p.Total)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func PageOf[T any](items []T, p Page) []T {
	if p.Start >= len(items) {
		return nil
	}
	end := p.End
	if end > len(items) {
		end = len(items)
	}
	return items[p.Start:end]
}
