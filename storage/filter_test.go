package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	id    string
	flag  bool
	when  time.Time
	a     float64
	b     int
	label string
}

func (i item) Key() string { return i.id }

func (i item) Field(name string) (any, bool) {
	switch name {
	case "id":
		return i.id, true
	case "flag":
		return i.flag, true
	case "when":
		return i.when, true
	case "a":
		return i.a, true
	case "b":
		return i.b, true
	case "label":
		return i.label, true
	}
	return nil, false
}

func day(d int) time.Time {
	return time.Date(2022, time.January, d, 0, 0, 0, 0, time.UTC)
}

func TestFilterMatch(t *testing.T) {
	it := item{id: "x", flag: true, when: day(10), a: 2.5, b: 3, label: "k"}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "empty filter", filter: Filter{}, want: true},
		{name: "eq string", filter: Where(Eq("label", "k")), want: true},
		{name: "eq string mismatch", filter: Where(Eq("label", "K")), want: false},
		{name: "flag", filter: Where(Flag("flag", true)), want: true},
		{name: "flag mismatch", filter: Where(Flag("flag", false)), want: false},
		{name: "range inside", filter: Where(Between("when", day(1), day(31))), want: true},
		{name: "range inclusive low", filter: Where(Between("when", day(10), day(31))), want: true},
		{name: "range inclusive high", filter: Where(Between("when", day(1), day(10))), want: true},
		{name: "range outside", filter: Where(Between("when", day(11), day(31))), want: false},
		{name: "numeric across types", filter: Where(Eq("b", 3.0)), want: true},
		{name: "conjunction", filter: Where(Flag("flag", true), Eq("label", "nope")), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.filter.Match(it)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFilterMatch_Invalid(t *testing.T) {
	it := item{id: "x"}

	_, err := Where(Eq("missing", 1)).Match(it)
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = Where(Eq("label", 1)).Match(it)
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestApplyPreservesOrder(t *testing.T) {
	items := []item{{id: "c", flag: true}, {id: "a"}, {id: "b", flag: true}}

	got, err := Apply(Where(Flag("flag", true)), items)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].id)
	assert.Equal(t, "b", got[1].id)
}

func TestTopN(t *testing.T) {
	items := []item{
		{id: "d", a: 1, b: 1},
		{id: "c", a: 5, b: 2},
		{id: "b", a: 2, b: 5},
		{id: "a", a: 4, b: 4},
	}

	got, err := TopN(Product("a", "b"), items, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].id)
	// c and b both score 10; id ascending breaks the tie
	assert.Equal(t, "b", got[1].id)
	assert.Equal(t, "c", got[2].id)

	all, err := TopN(Product("a", "b"), items, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	none, err := TopN(Product("a", "b"), items, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestScoreEval_Invalid(t *testing.T) {
	_, err := Score{}.Eval(item{})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = Product("label").Eval(item{})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}
