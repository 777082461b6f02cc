package core

import (
	"errors"
	"testing"
)

// Sorted so that the creation order of test items
// equals their identifier order
var testIds string = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

func ItemSlice(num int) ([]Item, error) {
	if num > len(testIds) {
		return nil, errors.New("Max number of test items exceeded")
	}
	items := make([]Item, 0, num)
	for i := range num {
		items = append(items, Item(testIds[i:i+1]))
	}
	return items, nil
}

func TestPair(t *testing.T) {
	p := NewPair("b", "a")
	if p.A != "a" || p.B != "b" {
		t.Fatal("The pair is not in canonical order")
	}

	if p.Other("a") != "b" || p.Other("b") != "a" {
		t.Fatal("Other did not return the opponent")
	}

	d := p.Won("b")
	if d.Winner != "b" || d.Loser != "a" {
		t.Fatal("Won did not create the correct decision")
	}

	if d.Invert() != (Decision{Winner: "a", Loser: "b"}) {
		t.Fatal("Invert did not swap winner and loser")
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Other did not panic for an item outside of the pair")
		}
	}()
	p.Other("c")
}
