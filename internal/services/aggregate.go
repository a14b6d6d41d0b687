package services

import (
	"slices"
	"time"

	"food-dashboard/internal/models"
)

// AgeDistribution counts the age column onto the fixed Adult, Teenager,
// Senior axis. Labels outside that axis are ignored and absent labels are
// reported with a zero count.
func AgeDistribution(t *Table, column string) ([]models.AgeGroupCount, error) {
	values, missing, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(models.AgeGroups))
	for i, v := range values {
		if missing[i] {
			continue
		}
		counts[v]++
	}

	result := make([]models.AgeGroupCount, 0, len(models.AgeGroups))
	for _, label := range models.AgeGroups {
		result = append(result, models.AgeGroupCount{AgeGroup: label, Count: counts[label]})
	}
	return result, nil
}

// OrdersOverTime counts orders per parsed order timestamp, ascending.
// Rows whose date does not parse are left out of the view.
func OrdersOverTime(t *Table, column string) ([]models.DailyOrders, error) {
	values, missing, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	counts := make(map[time.Time]int)
	for i, v := range values {
		if missing[i] {
			continue
		}
		date, ok := ParseOrderDate(v)
		if !ok {
			continue
		}
		counts[date]++
	}

	result := make([]models.DailyOrders, 0, len(counts))
	for date, count := range counts {
		result = append(result, models.DailyOrders{Date: date, Count: count})
	}
	slices.SortFunc(result, func(a, b models.DailyOrders) int {
		return a.Date.Compare(b.Date)
	})
	return result, nil
}

// TopCities counts orders per city, most frequent first. Cities with equal
// counts keep the order in which they first appear. City text is not
// normalised.
func TopCities(t *Table, column string) ([]models.CityOrders, error) {
	values, missing, err := t.Column(column)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	var seen []string
	for i, v := range values {
		if missing[i] {
			continue
		}
		if _, ok := counts[v]; !ok {
			seen = append(seen, v)
		}
		counts[v]++
	}

	result := make([]models.CityOrders, 0, len(seen))
	for _, city := range seen {
		result = append(result, models.CityOrders{City: city, Count: counts[city]})
	}
	slices.SortStableFunc(result, func(a, b models.CityOrders) int {
		return b.Count - a.Count
	})
	return result, nil
}

// MaxCount is the upper bound of the order-count progress bars.
func MaxCount(cities []models.CityOrders) int {
	maxCount := 0
	for _, c := range cities {
		maxCount = max(maxCount, c.Count)
	}
	return maxCount
}
