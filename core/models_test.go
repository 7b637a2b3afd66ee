package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{name: "calendar date", input: "2022-03-01", want: NewDate(2022, time.March, 1)},
		{name: "timestamp reduced to UTC date", input: "2023-01-01T23:30:00-02:00", want: NewDate(2023, time.January, 2)},
		{name: "garbage", input: "yesterday", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateJSON(t *testing.T) {
	d := NewDate(2022, time.March, 1)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2022-03-01"`, string(data))

	var back Date
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, 0, d.Compare(back))

	zero, err := json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(zero))
}

func TestDateBSON(t *testing.T) {
	type doc struct {
		D Date `bson:"d"`
	}

	t.Run("stored as datetime", func(t *testing.T) {
		raw, err := bson.Marshal(doc{D: NewDate(2022, time.March, 1)})
		require.NoError(t, err)

		val := bson.Raw(raw).Lookup("d")
		tm, ok := val.TimeOK()
		require.True(t, ok, "expected BSON datetime, got %s", val.Type)
		assert.True(t, tm.Equal(time.Date(2022, time.March, 1, 0, 0, 0, 0, time.UTC)))

		var back doc
		require.NoError(t, bson.Unmarshal(raw, &back))
		assert.Equal(t, "2022-03-01", back.D.String())
	})

	t.Run("string accepted", func(t *testing.T) {
		raw, err := bson.Marshal(bson.M{"d": "2021-07-15"})
		require.NoError(t, err)

		var back doc
		require.NoError(t, bson.Unmarshal(raw, &back))
		assert.Equal(t, "2021-07-15", back.D.String())
	})
}

func TestRatingUnmarshal(t *testing.T) {
	tests := []struct {
		input   string
		want    Rating
		wantErr bool
	}{
		{input: `4`, want: 4},
		{input: `"5"`, want: 5},
		{input: `3.0`, want: 3},
		{input: `4.5`, wantErr: true},
		{input: `"five"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var r Rating
			err := json.Unmarshal([]byte(tt.input), &r)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRating)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, r)
		})
	}
}

func TestBookUnmarshalLoose(t *testing.T) {
	var b Book
	err := json.Unmarshal([]byte(`{"id":"1","price":"14.99","pages":" 387 ","rating":"4.5","reviewCount":"1200","datePublished":"1974-05-01"}`), &b)
	require.NoError(t, err)
	assert.Equal(t, 14.99, b.Price)
	assert.Equal(t, 387, b.Pages)
	assert.Equal(t, 4.5, b.Rating)
	assert.Equal(t, 1200, b.ReviewCount)
	assert.Equal(t, NewDate(1974, time.May, 1), b.DatePublished)

	var n Book
	require.NoError(t, json.Unmarshal([]byte(`{"id":"2","price":11.5,"pages":null}`), &n))
	assert.Equal(t, 11.5, n.Price)
	assert.Zero(t, n.Pages)

	for _, input := range []string{`{"price":"cheap"}`, `{"pages":"12.5"}`, `{"reviewCount":true}`} {
		var bad Book
		assert.ErrorIs(t, json.Unmarshal([]byte(input), &bad), ErrInvalidNumber, input)
	}
}

func TestReviewUnmarshalLoose(t *testing.T) {
	var r Review
	require.NoError(t, json.Unmarshal([]byte(`{"id":"r","rating":"4","timestamp":"2023-05-01"}`), &r))
	assert.Equal(t, Rating(4), r.Rating)
	assert.True(t, r.Timestamp.Equal(time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC)))

	ts := time.Date(2023, time.June, 20, 18, 0, 0, 500_000_000, time.UTC)
	data, err := json.Marshal(Review{ID: "r", Rating: 4, Timestamp: ts})
	require.NoError(t, err)
	var back Review
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Timestamp.Equal(ts))

	var bad Review
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"timestamp":"yesterday"}`), &bad), ErrInvalidDate)
}

func TestBookScoreAndFields(t *testing.T) {
	b := Book{ID: "b1", Rating: 4.5, ReviewCount: 10, Featured: true, DatePublished: NewDate(2020, time.May, 5)}

	assert.Equal(t, 45.0, b.Score())
	assert.Equal(t, "b1", b.Key())

	v, ok := b.Field("featured")
	require.True(t, ok)
	assert.Equal(t, true, v)

	v, ok = b.Field("datePublished")
	require.True(t, ok)
	assert.Equal(t, b.DatePublished.Time(), v)

	_, ok = b.Field("nope")
	assert.False(t, ok)
}

func TestUUIDGenerator(t *testing.T) {
	gen := UUIDGenerator{}
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := gen.NewID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
