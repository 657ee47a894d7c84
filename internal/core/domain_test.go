package core

import "testing"

func TestExpenseParsedDate(t *testing.T) {
	if _, ok := (Expense{Date: "01/06/2024"}).ParsedDate(); !ok {
		t.Fatalf("expected valid date")
	}
	if _, ok := (Expense{Date: "31/02/2024"}).ParsedDate(); ok {
		t.Fatalf("expected invalid date")
	}
	if _, ok := (Expense{}).ParsedDate(); ok {
		t.Fatalf("expected empty date to be invalid")
	}
}

func TestExpenseIsImpulse(t *testing.T) {
	cases := map[string]bool{
		"yes": true,
		"YES": true,
		"no":  false,
		"":    false,
		"y":   false,
	}
	for in, want := range cases {
		if got := (Expense{Impulse: in}).IsImpulse(); got != want {
			t.Fatalf("IsImpulse(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestExpenseRecordRoundTrip(t *testing.T) {
	e := Expense{Amount: 12.5, Category: "food", Impulse: "no", Date: "01/06/2024", Label: "lunch"}
	if got := Normalize(e.Record()); got != e {
		t.Fatalf("got %+v, want %+v", got, e)
	}
	if _, ok := (Expense{}).Record()["label"]; ok {
		t.Fatalf("empty label should be omitted")
	}
}
