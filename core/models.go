// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// DateLayout is the wire format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar date, held as midnight UTC.
type Date time.Time

// NewDate returns the Date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the UTC calendar date of t.
func DateOf(t time.Time) Date {
	t = t.UTC()
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate reads a YYYY-MM-DD date. Full RFC 3339 timestamps are accepted
// and reduced to their UTC date.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date(t), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DateOf(t), nil
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Time returns the date as midnight UTC.
func (d Date) Time() time.Time {
	return time.Time(d)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool {
	return d.Time().IsZero()
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	return d.Time().Compare(o.Time())
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MarshalBSONValue stores the date as a native BSON datetime so range
// queries compare chronologically.
func (d Date) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.Time())
}

// UnmarshalBSONValue accepts a BSON datetime or a date string, so documents
// inserted without seeding conversion still load.
func (d *Date) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}
	if tm, ok := raw.TimeOK(); ok {
		*d = DateOf(tm)
		return nil
	}
	if s, ok := raw.StringValueOK(); ok {
		parsed, err := ParseDate(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}
	if t == bsontype.Null {
		*d = Date{}
		return nil
	}
	return fmt.Errorf("%w: unexpected BSON type %s", ErrInvalidDate, t)
}

// Rating is a whole-number review score. It decodes from a JSON number or
// from a numeric string.
type Rating int

func (r *Rating) UnmarshalJSON(data []byte) error {
	s := string(bytes.Trim(data, `"`))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRating, data)
	}
	if f != float64(int(f)) {
		return fmt.Errorf("%w: %s is not a whole number", ErrInvalidRating, data)
	}
	*r = Rating(f)
	return nil
}

// Book is a purchasable catalog title.
// Rating and ReviewCount are managed externally and are never derived from Reviews.
type Book struct {
	ID            string   `json:"id" bson:"id"`
	Title         string   `json:"title" bson:"title"`
	Author        string   `json:"author" bson:"author"`
	Description   string   `json:"description" bson:"description"`
	Price         float64  `json:"price" bson:"price"`
	Image         string   `json:"image,omitempty" bson:"image,omitempty"`
	ISBN          string   `json:"isbn" bson:"isbn"`
	Genre         []string `json:"genre" bson:"genre"`
	Tags          []string `json:"tags" bson:"tags"`
	DatePublished Date     `json:"datePublished" bson:"datePublished"`
	Pages         int      `json:"pages" bson:"pages"`
	Language      string   `json:"language" bson:"language"`
	Publisher     string   `json:"publisher" bson:"publisher"`
	Rating        float64  `json:"rating" bson:"rating"`
	ReviewCount   int      `json:"reviewCount" bson:"reviewCount"`
	InStock       bool     `json:"inStock" bson:"inStock"`
	Featured      bool     `json:"featured" bson:"featured"`
}

// Score is the ranking value used by top-rated listings.
func (b Book) Score() float64 {
	return b.Rating * float64(b.ReviewCount)
}

// Key returns the business id.
func (b Book) Key() string {
	return b.ID
}

// Field returns the value of the named field, using its wire name.
func (b Book) Field(name string) (any, bool) {
	switch name {
	case "id":
		return b.ID, true
	case "title":
		return b.Title, true
	case "author":
		return b.Author, true
	case "isbn":
		return b.ISBN, true
	case "price":
		return b.Price, true
	case "datePublished":
		return b.DatePublished.Time(), true
	case "pages":
		return b.Pages, true
	case "language":
		return b.Language, true
	case "publisher":
		return b.Publisher, true
	case "rating":
		return b.Rating, true
	case "reviewCount":
		return b.ReviewCount, true
	case "inStock":
		return b.InStock, true
	case "featured":
		return b.Featured, true
	}
	return nil, false
}

// Review is a user-submitted rating of one Book, linked by BookID.
type Review struct {
	ID        string    `json:"id" bson:"id"`
	BookID    string    `json:"bookId" bson:"bookId"`
	Author    string    `json:"author" bson:"author"`
	Rating    Rating    `json:"rating" bson:"rating"`
	Title     string    `json:"title" bson:"title"`
	Comment   string    `json:"comment" bson:"comment"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Verified  bool      `json:"verified" bson:"verified"`
}

// Key returns the business id.
func (r Review) Key() string {
	return r.ID
}

// Field returns the value of the named field, using its wire name.
func (r Review) Field(name string) (any, bool) {
	switch name {
	case "id":
		return r.ID, true
	case "bookId":
		return r.BookID, true
	case "author":
		return r.Author, true
	case "rating":
		return int(r.Rating), true
	case "timestamp":
		return r.Timestamp, true
	case "verified":
		return r.Verified, true
	}
	return nil, false
}

// BookDraft carries the caller-supplied fields of a new Book.
type BookDraft struct {
	Title       string   `json:"title" validate:"required"`
	Author      string   `json:"author" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
	ISBN        string   `json:"isbn" validate:"required"`
	Image       string   `json:"image,omitempty"`
	Genre       []string `json:"genre,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Pages       *int     `json:"pages,omitempty" validate:"omitempty,gte=0"`
	Language    string   `json:"language,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	InStock     *bool    `json:"inStock,omitempty"`
	Featured    *bool    `json:"featured,omitempty"`
}

// ReviewDraft carries the caller-supplied fields of a new Review.
type ReviewDraft struct {
	BookID   string  `json:"bookId" validate:"required"`
	Author   string  `json:"author" validate:"required"`
	Rating   *Rating `json:"rating" validate:"required,min=1,max=5"`
	Title    string  `json:"title" validate:"required"`
	Comment  string  `json:"comment" validate:"required"`
	Verified *bool   `json:"verified,omitempty"`
}
