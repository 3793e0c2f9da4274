package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name    string
		query   url.Values
		opts    Options
		want    Params
		wantErr error
	}{
		{
			name:  "defaults",
			query: url.Values{},
			want:  Params{Limit: DefaultLimit},
		},
		{
			name:  "explicit window",
			query: url.Values{"limit": {"5"}, "offset": {"10"}},
			want:  Params{Limit: 5, Offset: 10},
		},
		{
			name:  "limit capped",
			query: url.Values{"limit": {"500"}},
			want:  Params{Limit: MaxLimit},
		},
		{
			name:  "custom default",
			query: url.Values{},
			opts:  Options{DefaultLimit: 8},
			want:  Params{Limit: 8},
		},
		{
			name:    "non numeric limit",
			query:   url.Values{"limit": {"abc"}},
			wantErr: ErrInvalidLimit,
		},
		{
			name:    "zero limit",
			query:   url.Values{"limit": {"0"}},
			wantErr: ErrInvalidLimit,
		},
		{
			name:    "negative offset",
			query:   url.Values{"offset": {"-1"}},
			wantErr: ErrInvalidOffset,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.query, tc.opts)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		name      string
		params    Params
		total     int
		wantStart int
		wantEnd   int
	}{
		{name: "full page", params: Params{Limit: 10}, total: 25, wantStart: 0, wantEnd: 10},
		{name: "second page", params: Params{Limit: 10, Offset: 10}, total: 25, wantStart: 10, wantEnd: 20},
		{name: "partial tail", params: Params{Limit: 10, Offset: 20}, total: 25, wantStart: 20, wantEnd: 25},
		{name: "offset beyond total", params: Params{Limit: 10, Offset: 40}, total: 25, wantStart: 25, wantEnd: 25},
		{name: "empty input", params: Params{Limit: 10}, total: 0, wantStart: 0, wantEnd: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := tc.params.Window(tc.total)
			assert.Equal(t, tc.wantStart, start)
			assert.Equal(t, tc.wantEnd, end)
		})
	}
}
