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
	"math"
	"strconv"
	"strings"
	"time"
)

// Stored record sets may hold numbers as numeric strings and review
// timestamps as bare dates. Book and Review decode both forms.

type looseFloat float64

func (f *looseFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	n, err := parseLooseNumber(data)
	if err != nil {
		return err
	}
	*f = looseFloat(n)
	return nil
}

type looseInt int

func (i *looseInt) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	n, err := parseLooseNumber(data)
	if err != nil {
		return err
	}
	if n != math.Trunc(n) {
		return fmt.Errorf("%w: %s is not a whole number", ErrInvalidNumber, data)
	}
	*i = looseInt(n)
	return nil
}

type looseTime time.Time

func (t *looseTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = looseTime(parsed.UTC())
		return nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	*t = looseTime(d)
	return nil
}

func parseLooseNumber(data []byte) (float64, error) {
	s := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, fmt.Errorf("%w: %s", ErrInvalidNumber, data)
		}
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidNumber, data)
	}
	return n, nil
}

func (b *Book) UnmarshalJSON(data []byte) error {
	type plain Book
	aux := struct {
		*plain
		Price       looseFloat `json:"price"`
		Pages       looseInt   `json:"pages"`
		Rating      looseFloat `json:"rating"`
		ReviewCount looseInt   `json:"reviewCount"`
	}{
		plain:       (*plain)(b),
		Price:       looseFloat(b.Price),
		Pages:       looseInt(b.Pages),
		Rating:      looseFloat(b.Rating),
		ReviewCount: looseInt(b.ReviewCount),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	b.Price = float64(aux.Price)
	b.Pages = int(aux.Pages)
	b.Rating = float64(aux.Rating)
	b.ReviewCount = int(aux.ReviewCount)
	return nil
}

func (r *Review) UnmarshalJSON(data []byte) error {
	type plain Review
	aux := struct {
		*plain
		Timestamp looseTime `json:"timestamp"`
	}{
		plain:     (*plain)(r),
		Timestamp: looseTime(r.Timestamp),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Timestamp = time.Time(aux.Timestamp)
	return nil
}
