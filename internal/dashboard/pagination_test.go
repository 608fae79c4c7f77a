package dashboard

import "testing"

func TestPaginate(t *testing.T) {
	tests := []struct {
		n, requested         int
		number, total, start int
		end                  int
	}{
		{0, 1, 1, 1, 0, 0},
		{0, 3, 1, 1, 0, 0},
		{5, 1, 1, 1, 0, 5},
		{6, 2, 2, 2, 5, 6},
		{12, 3, 3, 3, 10, 12},
		{12, 0, 1, 3, 0, 5},
		{12, -4, 1, 3, 0, 5},
		{12, 99, 3, 3, 10, 12},
		{25, 5, 5, 5, 20, 25},
	}
	for _, tt := range tests {
		p := Paginate(tt.n, 5, tt.requested)
		if p.Number != tt.number || p.Total != tt.total || p.Start != tt.start || p.End != tt.end {
			t.Errorf("Paginate(%d, 5, %d) = %+v", tt.n, tt.requested, p)
		}
	}
}

func TestPaginateBoundsNeverLeaveListing(t *testing.T) {
	for n := 0; n <= 40; n++ {
		p := Paginate(n, 5, 1)
		want := (n + 4) / 5
		if want == 0 {
			want = 1
		}
		if p.Total != want {
			t.Fatalf("n=%d: total %d, want %d", n, p.Total, want)
		}
		for page := 1; page <= p.Total; page++ {
			q := Paginate(n, 5, page)
			if q.Start < 0 || q.End > n || q.Start > q.End {
				t.Fatalf("n=%d page=%d: bounds [%d,%d)", n, page, q.Start, q.End)
			}
		}
	}
}

func TestPageOf(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	p := Paginate(len(items), 5, 2)
	got := PageOf(items, p)
	if len(got) != 2 || got[0] != 6 || got[1] != 7 {
		t.Fatalf("PageOf = %v", got)
	}
	if !p.HasPrev() || p.HasNext() || p.Prev() != 1 {
		t.Fatalf("navigation wrong for %+v", p)
	}
	if len(PageOf([]int{}, Paginate(0, 5, 1))) != 0 {
		t.Fatal("expected an empty page")
	}
}
