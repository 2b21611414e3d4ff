package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		pr   PageRequest
		want PageRequest
	}{
		{name: "zero", pr: PageRequest{}, want: PageRequest{Page: 1, PerPage: 10}},
		{name: "negative", pr: PageRequest{Page: -2, PerPage: -1}, want: PageRequest{Page: 1, PerPage: 10}},
		{name: "kept", pr: PageRequest{Page: 3, PerPage: 25}, want: PageRequest{Page: 3, PerPage: 25}},
		{name: "capped", pr: PageRequest{Page: 1, PerPage: 1000}, want: PageRequest{Page: 1, PerPage: MaxPerPage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pr.Normalize(10))
		})
	}
}

func TestPageRequest_Slice(t *testing.T) {
	tests := []struct {
		name      string
		pr        PageRequest
		total     int
		wantStart int
		wantEnd   int
	}{
		{name: "first page", pr: PageRequest{Page: 1, PerPage: 10}, total: 25, wantStart: 0, wantEnd: 10},
		{name: "last partial page", pr: PageRequest{Page: 3, PerPage: 10}, total: 25, wantStart: 20, wantEnd: 25},
		{name: "past the end", pr: PageRequest{Page: 5, PerPage: 10}, total: 25, wantStart: 25, wantEnd: 25},
		{name: "unpaged", pr: PageRequest{}, total: 25, wantStart: 0, wantEnd: 25},
		{name: "empty", pr: PageRequest{Page: 1, PerPage: 10}, total: 0, wantStart: 0, wantEnd: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := tt.pr.Slice(tt.total)
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 3, TotalPages(25, 10))
	assert.Equal(t, 1, TotalPages(25, 0))
}
