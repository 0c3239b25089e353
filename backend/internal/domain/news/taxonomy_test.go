package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCategory(t *testing.T) {
	for _, c := range Categories() {
		assert.NoError(t, ValidateCategory(c), c)
	}
	assert.ErrorIs(t, ValidateCategory("sports"), ErrInvalidCategory)
	assert.ErrorIs(t, ValidateCategory(""), ErrInvalidCategory)
	assert.ErrorIs(t, ValidateCategory("CS"), ErrInvalidCategory)
}

func TestValidateClub(t *testing.T) {
	cases := []struct {
		name     string
		category string
		club     string
		want     error
	}{
		{name: "club news with known club", category: CategoryClub, club: "disha-club", want: nil},
		{name: "club news without club", category: CategoryClub, club: "", want: ErrMissingClub},
		{name: "club news with unknown club", category: CategoryClub, club: "coding-club", want: ErrInvalidClub},
		{name: "non club news with club", category: CategoryCS, club: "disha-club", want: ErrUnexpectedClub},
		{name: "non club news without club", category: CategoryEvents, club: "", want: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateClub(tc.category, tc.club)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewSectionNormalises(t *testing.T) {
	assert.Equal(t, Section{Category: CategoryCS}, NewSection("", ""))
	assert.Equal(t, Section{Category: CategoryAlumni}, NewSection(" alumni ", "disha-club"))
	assert.Equal(t, Section{Category: CategoryClub, ClubName: "seva-club"}, NewSection("club", " seva-club "))
	assert.True(t, NewSection("club", "seva-club").IsClub())
	assert.False(t, NewSection("campus", "").IsClub())
}

func TestSectionValidateReportsField(t *testing.T) {
	field, err := NewSection("weather", "").Validate()
	assert.Equal(t, "category", field)
	assert.ErrorIs(t, err, ErrInvalidCategory)

	field, err = NewSection(CategoryClub, "").Validate()
	assert.Equal(t, "clubName", field)
	assert.ErrorIs(t, err, ErrMissingClub)

	field, err = NewSection(CategoryClub, "rakshak-club").Validate()
	assert.Empty(t, field)
	assert.NoError(t, err)
}

func TestTaxonomyListsAreCopies(t *testing.T) {
	clubsCopy := Clubs()
	clubsCopy[0] = "mutated"
	assert.NotEqual(t, "mutated", Clubs()[0])
	assert.Len(t, Clubs(), 11)
	assert.Equal(t, []string{"cs", "alumni", "club", "campus", "events"}, Categories())
}
