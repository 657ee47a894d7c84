package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestNormalizeSafeDefaults(t *testing.T) {
	got := Normalize(RawRecord{"amount": "abc", "category": 123, "impulse": nil, "date": 42})
	want := Expense{Amount: 0, Category: Uncategorized, Impulse: "", Date: ""}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestNormalizeFields(t *testing.T) {
	cases := []struct {
		name string
		in   RawRecord
		want Expense
	}{
		{
			name: "well formed",
			in:   RawRecord{"amount": 50.0, "category": "food", "impulse": "no", "date": "01/06/2024", "label": "groceries"},
			want: Expense{Amount: 50, Category: "food", Impulse: "no", Date: "01/06/2024", Label: "groceries"},
		},
		{
			name: "string amount and messy category",
			in:   RawRecord{"amount": "12.5", "category": "  Eating Out ", "impulse": "YES"},
			want: Expense{Amount: 12.5, Category: "eating out", Impulse: "yes"},
		},
		{
			name: "boolean impulse true",
			in:   RawRecord{"impulse": true},
			want: Expense{Category: Uncategorized, Impulse: "yes"},
		},
		{
			name: "boolean impulse false",
			in:   RawRecord{"impulse": false},
			want: Expense{Category: Uncategorized, Impulse: "no"},
		},
		{
			name: "unknown impulse string is kept",
			in:   RawRecord{"impulse": "Maybe"},
			want: Expense{Category: Uncategorized, Impulse: "maybe"},
		},
		{
			name: "blank category",
			in:   RawRecord{"category": "   "},
			want: Expense{Category: Uncategorized},
		},
		{
			name: "malformed date is preserved",
			in:   RawRecord{"date": "31/02/2024"},
			want: Expense{Category: Uncategorized, Date: "31/02/2024"},
		},
		{
			name: "non finite amount",
			in:   RawRecord{"amount": math.Inf(1)},
			want: Expense{Category: Uncategorized},
		},
		{
			name: "json number amount",
			in:   RawRecord{"amount": json.Number("9.75")},
			want: Expense{Amount: 9.75, Category: Uncategorized},
		},
		{
			name: "boolean amount",
			in:   RawRecord{"amount": true},
			want: Expense{Category: Uncategorized},
		},
		{
			name: "extra fields ignored",
			in:   RawRecord{"amount": 1.0, "id": 7, "ts": "x"},
			want: Expense{Amount: 1, Category: Uncategorized},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecodeRecords(t *testing.T) {
	recs, err := DecodeRecords([]byte(`[{"amount": 5, "category": "food"}, 3, "x", null, {"amount": "2"}]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	exps := NormalizeAll(recs)
	if exps[0].Amount != 5 || exps[1].Amount != 2 {
		t.Fatalf("unexpected amounts: %+v", exps)
	}

	for _, in := range []string{`{"amount": 1}`, `"text"`, `not json`} {
		if _, err := DecodeRecords([]byte(in)); !errors.Is(err, ErrMalformedCollection) {
			t.Fatalf("%s: expected ErrMalformedCollection, got %v", in, err)
		}
	}

	for _, in := range []string{"", "  ", "null"} {
		recs, err := DecodeRecords([]byte(in))
		if err != nil || len(recs) != 0 {
			t.Fatalf("%q: expected empty collection, got %v %v", in, recs, err)
		}
	}
}

func TestEncodeExpenses(t *testing.T) {
	data, err := EncodeExpenses(nil)
	if err != nil || string(data) != "[]" {
		t.Fatalf("nil collection should encode as [], got %s %v", data, err)
	}
	in := []Expense{{Amount: 3, Category: "fun", Impulse: "yes", Date: "02/06/2024"}}
	data, err = EncodeExpenses(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	recs, err := DecodeRecords(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := NormalizeAll(recs); len(got) != 1 || got[0] != in[0] {
		t.Fatalf("got %+v", got)
	}
}
