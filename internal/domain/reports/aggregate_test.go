package reports

import (
	"testing"
	"time"

	"pet-adoption/internal/domain/pets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeInYears(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3 years", 3, true},
		{"1 year", 1.0 / 12, true},
		{"1 years", 1, true},
		{"6 months", 0.5, true},
		{"18 Months", 1.5, true},
		{" 2 YEARS ", 2, true},
		{"12", 1, true},
		{"puppy", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := AgeInYears(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.InDelta(t, tc.want, got, 0.0001, tc.in)
	}
}

func TestGroupByCategory(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	pet := func(id string, cat pets.Category, age string, i int) pets.Pet {
		return pets.Pet{ID: id, Name: "pet-" + id, Category: cat, Age: age, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
	}

	items := []pets.Pet{
		pet("c1", pets.CategoryCat, "6 months", 0),
		pet("d1", pets.CategoryDog, "2 years", 1),
		pet("d2", pets.CategoryDog, "3 years", 2),
		pet("d3", pets.CategoryDog, "unknown", 3),
	}

	got := GroupByCategory(items)
	require.Len(t, got, 2)

	assert.Equal(t, pets.CategoryDog, got[0].Category)
	assert.Equal(t, 3, got[0].Count)
	require.NotNil(t, got[0].AverageAge)
	assert.Equal(t, 2.5, *got[0].AverageAge)
	assert.Equal(t, "pet-d1", got[0].Pets[0].Name)

	assert.Equal(t, pets.CategoryCat, got[1].Category)
	require.NotNil(t, got[1].AverageAge)
	assert.Equal(t, 0.5, *got[1].AverageAge)
}

func TestGroupByCategory_SamplesAndTies(t *testing.T) {
	var items []pets.Pet
	for i := 0; i < 7; i++ {
		items = append(items, pets.Pet{ID: string(rune('a' + i)), Category: pets.CategoryOther, Age: "?"})
	}
	items = append(items,
		pets.Pet{ID: "x", Category: pets.CategoryCat},
		pets.Pet{ID: "y", Category: pets.CategoryDog},
	)

	got := GroupByCategory(items)
	require.Len(t, got, 3)

	assert.Equal(t, pets.CategoryOther, got[0].Category)
	assert.Len(t, got[0].Pets, 5)
	assert.Nil(t, got[0].AverageAge)

	// empate en count: categoría asc
	assert.Equal(t, pets.CategoryCat, got[1].Category)
	assert.Equal(t, pets.CategoryDog, got[2].Category)

	assert.Empty(t, GroupByCategory(nil))
}

func TestTimeline(t *testing.T) {
	counts := []MonthCount{
		{Year: 2024, Month: 11, Count: 1},
		{Year: 2025, Month: 2, Count: 4},
		{Year: 2024, Month: 12, Count: 2},
		{Year: 2025, Month: 1, Count: 3},
	}

	got := Timeline(counts, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "12/2024", got[0].DateLabel)
	assert.Equal(t, "December", got[0].MonthName)
	assert.Equal(t, "1/2025", got[1].DateLabel)
	assert.Equal(t, 4, got[2].Count)

	assert.Len(t, Timeline(counts, 0), 4)
	assert.Empty(t, Timeline(nil, 6))
}

func TestClampMonths(t *testing.T) {
	assert.Equal(t, 6, ClampMonths(0))
	assert.Equal(t, 6, ClampMonths(-3))
	assert.Equal(t, 1, ClampMonths(1))
	assert.Equal(t, 60, ClampMonths(600))
}

func TestSortShelters(t *testing.T) {
	items := []ShelterStat{
		{Name: "B", TotalPets: 2},
		{Name: "C", TotalPets: 5},
		{Name: "A", TotalPets: 2},
	}
	SortShelters(items)
	assert.Equal(t, []string{"C", "A", "B"}, []string{items[0].Name, items[1].Name, items[2].Name})
}
