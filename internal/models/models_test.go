package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReading_Validation(t *testing.T) {
	r, err := NewReading(72, 1700000000000)
	require.NoError(t, err)
	assert.Equal(t, 72, r.BPM)
	assert.Equal(t, int64(1700000000000), r.Timestamp)

	for _, bpm := range []int{0, -1, MaxBPM + 1} {
		_, err := NewReading(bpm, 1)
		assert.True(t, errors.Is(err, ErrInvalidReading), "bpm=%d", bpm)
	}

	_, err = NewReading(MaxBPM, 1)
	assert.NoError(t, err)
}

func TestReading_DerivedStrings(t *testing.T) {
	ts := time.Date(2026, 1, 5, 7, 9, 0, 0, time.UTC).UnixMilli()
	r := Reading{BPM: 70, Timestamp: ts}

	assert.Equal(t, "Jan 05", r.Date(time.UTC))
	assert.Equal(t, "07:09", r.Time(time.UTC))
	assert.Equal(t, "Jan 05, 07:09", r.Label(time.UTC))

	tokyo := time.FixedZone("JST", 9*3600)
	assert.Equal(t, "Jan 05, 16:09", r.Label(tokyo))
}

func TestCategory_Metadata(t *testing.T) {
	lo, hi := CategoryVigorous.Range()
	assert.Equal(t, 121, lo)
	assert.Equal(t, 160, hi)
	assert.Equal(t, "Maximum", CategoryMaximum.Label())
	assert.Equal(t, "#4CAF50", CategoryResting.Color())
	assert.Equal(t, "Unknown", Category(42).Label())

	b, err := json.Marshal(map[string]Category{"category": CategoryModerate})
	require.NoError(t, err)
	assert.JSONEq(t, `{"category":"Moderate"}`, string(b))
}

func TestProfilePatch_Apply(t *testing.T) {
	age := 30
	name := "Ada"
	u := UserData{UID: "u1", FullName: "User", Email: "a@b.c"}

	p := ProfilePatch{FullName: &name, Age: &age}
	assert.False(t, p.Empty())
	p.Apply(&u)

	assert.Equal(t, "Ada", u.FullName)
	assert.Equal(t, "a@b.c", u.Email)
	require.NotNil(t, u.Age)
	assert.Equal(t, 30, *u.Age)
	assert.Nil(t, u.Gender)

	assert.True(t, ProfilePatch{}.Empty())
}

func TestStatistics_CategoryCount(t *testing.T) {
	s := Statistics{RestingCount: 1, ModerateCount: 2, VigorousCount: 3, MaximumCount: 4}
	total := 0
	for _, c := range Categories() {
		total += s.CategoryCount(c)
	}
	assert.Equal(t, 10, total)
}
