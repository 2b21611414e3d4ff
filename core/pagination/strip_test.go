package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func pages(items []Item) []int {
	out := make([]int, 0, len(items))
	for _, it := range items {
		if it.IsEllipsis() {
			out = append(out, -1)
			continue
		}
		out = append(out, it.Page)
	}
	return out
}

func TestStrip_Summary(t *testing.T) {
	tests := []struct {
		name  string
		strip Strip
		want  string
	}{
		{name: "middle page", strip: Strip{CurrentPage: 2, TotalPages: 5, ItemsPerPage: 10, TotalItems: 47}, want: "Showing 11 to 20 of 47 results"},
		{name: "last page clamps end", strip: Strip{CurrentPage: 5, TotalPages: 5, ItemsPerPage: 10, TotalItems: 47}, want: "Showing 41 to 47 of 47 results"},
		{name: "second of three", strip: Strip{CurrentPage: 2, TotalPages: 3, ItemsPerPage: 10, TotalItems: 25}, want: "Showing 11 to 20 of 25 results"},
		{name: "partial last page", strip: Strip{CurrentPage: 3, TotalPages: 3, ItemsPerPage: 10, TotalItems: 25}, want: "Showing 21 to 25 of 25 results"},
		{name: "no items", strip: Strip{CurrentPage: 1, TotalPages: 1, ItemsPerPage: 10, TotalItems: 0}, want: "Showing 1 to 0 of 0 results"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.strip.Summary())
		})
	}
}

func TestStrip_Items(t *testing.T) {
	tests := []struct {
		name  string
		strip Strip
		want  []int // -1 stands for an ellipsis
	}{
		{name: "single page", strip: Strip{CurrentPage: 1, TotalPages: 1}, want: []int{1}},
		{name: "zero pages treated as one", strip: Strip{CurrentPage: 1, TotalPages: 0}, want: []int{1}},
		{name: "first of ten", strip: Strip{CurrentPage: 1, TotalPages: 10}, want: []int{1, 2, -1, 10}},
		{name: "fifth of ten", strip: Strip{CurrentPage: 5, TotalPages: 10}, want: []int{1, -1, 4, 5, 6, -1, 10}},
		{name: "third of ten", strip: Strip{CurrentPage: 3, TotalPages: 10}, want: []int{1, 2, 3, 4, -1, 10}},
		{name: "last of ten", strip: Strip{CurrentPage: 10, TotalPages: 10}, want: []int{1, -1, 9, 10}},
		{name: "three pages", strip: Strip{CurrentPage: 2, TotalPages: 3}, want: []int{1, 2, 3}},
		{name: "tenth of twenty", strip: Strip{CurrentPage: 10, TotalPages: 20}, want: []int{1, -1, 9, 10, 11, -1, 20}},
		{name: "fourth of seven", strip: Strip{CurrentPage: 4, TotalPages: 7}, want: []int{1, -1, 3, 4, 5, -1, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := tt.strip.Items()
			assert.Equal(t, tt.want, pages(items))

			seen := make(map[int]bool)
			for _, it := range items {
				if it.IsEllipsis() {
					continue
				}
				assert.False(t, seen[it.Page], "page %d listed twice", it.Page)
				seen[it.Page] = true
				assert.Equal(t, it.Page == tt.strip.CurrentPage, it.Current)
			}
		})
	}
}

func TestStrip_Controls(t *testing.T) {
	var got []int
	onChange := func(p int) { got = append(got, p) }

	t.Run("first page", func(t *testing.T) {
		got = nil
		s := Strip{CurrentPage: 1, TotalPages: 3, OnPageChange: onChange}
		assert.True(t, s.PrevDisabled())
		assert.False(t, s.NextDisabled())
		s.ClickPrev()
		s.ClickNext()
		assert.Equal(t, []int{2}, got)
	})

	t.Run("last page", func(t *testing.T) {
		got = nil
		s := Strip{CurrentPage: 3, TotalPages: 3, OnPageChange: onChange}
		assert.False(t, s.PrevDisabled())
		assert.True(t, s.NextDisabled())
		s.ClickNext()
		s.ClickPrev()
		assert.Equal(t, []int{2}, got)
	})

	t.Run("single page disables both", func(t *testing.T) {
		s := Strip{CurrentPage: 1, TotalPages: 1}
		assert.True(t, s.PrevDisabled())
		assert.True(t, s.NextDisabled())
	})

	t.Run("page click is not validated", func(t *testing.T) {
		got = nil
		s := Strip{CurrentPage: 1, TotalPages: 3, OnPageChange: onChange}
		s.ClickPage(3)
		s.ClickPage(42)
		assert.Equal(t, []int{3, 42}, got)
	})

	t.Run("no callback", func(t *testing.T) {
		s := Strip{CurrentPage: 2, TotalPages: 3}
		assert.NotPanics(t, func() {
			s.ClickPage(1)
			s.ClickNext()
		})
	})
}

func TestStrip_Render(t *testing.T) {
	v := Strip{CurrentPage: 2, TotalPages: 5, ItemsPerPage: 10, TotalItems: 47}.Render()
	assert.Equal(t, "Showing 11 to 20 of 47 results", v.Summary)
	assert.Equal(t, 11, v.Start)
	assert.Equal(t, 20, v.End)
	assert.Equal(t, 1, v.PrevPage)
	assert.Equal(t, 3, v.NextPage)
	assert.False(t, v.PrevDisabled)
	assert.False(t, v.NextDisabled)
	assert.Equal(t, []int{1, 2, 3, -1, 5}, pages(v.Items))
}
