package reports

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"pet-adoption/internal/domain/pets"
)

const (
	maxSamples = 5

	DefaultTimelineMonths = 6
	MaxTimelineMonths     = 60
)

// AgeInYears interpreta la edad libre de una mascota por su entero inicial:
// "3 years" => 3, "8 months" => 0.666... Solo el sufijo "years" cuenta como
// años, así que "1 year" se lee como meses. ok=false si no empieza con un número.
func AgeInYears(age string) (float64, bool) {
	age = strings.ToLower(strings.TrimSpace(age))

	end := 0
	for end < len(age) && age[end] >= '0' && age[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(age[:end])
	if err != nil {
		return 0, false
	}

	unit := strings.TrimSpace(age[end:])
	if strings.HasSuffix(unit, "years") {
		return float64(n), true
	}
	return float64(n) / 12, true
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// GroupByCategory arma las estadísticas por categoría. Grupos vacíos no
// aparecen; orden: count desc, category asc.
func GroupByCategory(items []pets.Pet) []CategoryStat {
	byCat := map[pets.Category][]pets.Pet{}
	for _, p := range items {
		byCat[p.Category] = append(byCat[p.Category], p)
	}

	out := make([]CategoryStat, 0, len(byCat))
	for cat, group := range byCat {
		sort.SliceStable(group, func(i, j int) bool {
			if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
				return group[i].CreatedAt.Before(group[j].CreatedAt)
			}
			return group[i].ID < group[j].ID
		})

		var (
			sum float64
			n   int
		)
		for _, p := range group {
			if y, ok := AgeInYears(p.Age); ok {
				sum += y
				n++
			}
		}

		st := CategoryStat{Category: cat, Count: len(group), Pets: make([]PetSample, 0, maxSamples)}
		if n > 0 {
			avg := round1(sum / float64(n))
			st.AverageAge = &avg
		}
		for i := 0; i < len(group) && i < maxSamples; i++ {
			st.Pets = append(st.Pets, PetSample{Name: group[i].Name, Breed: group[i].Breed, Status: group[i].AdoptionStatus})
		}
		out = append(out, st)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// ClampMonths: <= 0 => default 6; máximo 60.
func ClampMonths(months int) int {
	if months <= 0 {
		return DefaultTimelineMonths
	}
	if months > MaxTimelineMonths {
		return MaxTimelineMonths
	}
	return months
}

// Timeline se queda con los últimos `months` buckets con datos y los devuelve
// en orden cronológico.
func Timeline(counts []MonthCount, months int) []TimelinePoint {
	months = ClampMonths(months)

	sorted := make([]MonthCount, 0, len(counts))
	for _, c := range counts {
		if c.Count > 0 && c.Month >= 1 && c.Month <= 12 {
			sorted = append(sorted, c)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Year != sorted[j].Year {
			return sorted[i].Year > sorted[j].Year
		}
		return sorted[i].Month > sorted[j].Month
	})
	if len(sorted) > months {
		sorted = sorted[:months]
	}

	out := make([]TimelinePoint, len(sorted))
	for i, c := range sorted {
		out[len(sorted)-1-i] = TimelinePoint{
			Year:      c.Year,
			Month:     c.Month,
			Count:     c.Count,
			MonthName: time.Month(c.Month).String(),
			DateLabel: strconv.Itoa(c.Month) + "/" + strconv.Itoa(c.Year),
		}
	}
	return out
}

// SortShelters: total desc, luego nombre asc para que el orden sea estable.
func SortShelters(items []ShelterStat) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].TotalPets != items[j].TotalPets {
			return items[i].TotalPets > items[j].TotalPets
		}
		return items[i].Name < items[j].Name
	})
}
