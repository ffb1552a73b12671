package storage

import (
	"time"

	"github.com/qwlai/reit-tracker/internal/domain/models"
)

func f64(v float64) *float64 { return &v }

func sampleDocument() models.ReitDocument {
	return models.ReitDocument{
		Timestamp: time.Date(2024, 3, 8, 9, 30, 0, 0, time.UTC),
		Records: map[string]models.Record{
			"C38U.SI": {
				Snapshot: models.Snapshot{Industry: "Retail", Name: "CapitaLand Integrated", MarketCap: "13120 M", Price: 1.95, PriceToBook: 0.92},
				Metrics:  models.Metrics{DayChange: f64(-0.51), DividendYield: 5.54},
			},
			"A17U.SI": {
				Snapshot: models.Snapshot{Industry: "Industrial", Name: "CapitaLand Ascendas", MarketCap: "11500 M", Price: 2.62, PriceToBook: 1.13},
				Metrics:  models.Metrics{TTMFFO: f64(74.1)},
			},
		},
	}
}
