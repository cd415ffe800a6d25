package visit

import "time"

// DefaultVisits returns the sample collection used when nothing usable is
// stored. All visits fall on the day of now.
func DefaultVisits(now time.Time) []Visit {
	day := now.Format(DateLayout)
	return []Visit{
		{
			ID:           "1",
			Date:         day,
			Status:       StatusPending,
			FormCount:    3,
			ProductCount: 5,
			Address: Address{
				PostalCode:   "01310-100",
				State:        "SP",
				City:         "São Paulo",
				Street:       "Avenida Paulista",
				Neighborhood: "Bela Vista",
				Number:       "1578",
			},
		},
		{
			ID:           "2",
			Date:         day,
			Status:       StatusCompleted,
			FormCount:    2,
			ProductCount: 3,
			Address: Address{
				PostalCode:   "01310-200",
				State:        "SP",
				City:         "São Paulo",
				Street:       "Rua Augusta",
				Neighborhood: "Consolação",
				Number:       "2000",
				Complement:   "Apto 101",
			},
		},
		{
			ID:           "3",
			Date:         day,
			Status:       StatusPending,
			FormCount:    1,
			ProductCount: 2,
			Address: Address{
				PostalCode:   "01310-300",
				State:        "SP",
				City:         "São Paulo",
				Street:       "Rua da Consolação",
				Neighborhood: "Consolação",
				Number:       "100",
			},
		},
	}
}
