package dividends

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/qwlai/reit-tracker/internal/provider"
)

type fakeSource struct {
	h   provider.DividendHistory
	err error
}

func (f fakeSource) Dividends(context.Context, string) (provider.DividendHistory, error) {
	return f.h, f.err
}

func TestYieldTTM(t *testing.T) {
	now := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name    string
		src     fakeSource
		want    float64
		wantErr error
	}{
		{
			name: "sums last twelve months",
			src: fakeSource{h: provider.DividendHistory{Price: 2.5, Dividends: []provider.Dividend{
				{Date: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), Amount: 1.00}, // outside window
				{Date: time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC), Amount: 0.07},
				{Date: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), Amount: 0.08},
			}}},
			want: 6,
		},
		{
			name: "no dividends",
			src:  fakeSource{h: provider.DividendHistory{Price: 1.2}},
			want: 0,
		},
		{
			name:    "no price",
			src:     fakeSource{h: provider.DividendHistory{}},
			wantErr: ErrNoPrice,
		},
		{
			name:    "provider error",
			src:     fakeSource{err: errBoom},
			wantErr: errBoom,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			y := NewYielder(tc.src)
			y.now = func() time.Time { return now }
			got, err := y.YieldTTM(context.Background(), "A17U.SI")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("YieldTTM=(%v,%v), want %v", got, err, tc.want)
			}
		})
	}
}

var errBoom = errors.New("boom")
