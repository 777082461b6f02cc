package core

import (
	"errors"
	"math/rand"
	"slices"
	"testing"
)

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry(rand.New(rand.NewSource(1)), nil)

	expected := []string{
		"random",
		"minimum-degree",
		"max-new-edges",
		"ranking-top-down",
		"bisection",
		"chronologic-ko",
		"date-distance",
		"same-win-lose-ratio",
		"winner-oriented",
	}
	if !slices.Equal(registry.Names(), expected) {
		t.Fatalf("The registry does not list the built-in strategies, got %v", registry.Names())
	}
	if registry.Active().Name() != "winner-oriented" {
		t.Fatal("The winner oriented strategy is not active by default")
	}

	names := registry.Names()
	names[0] = "changed"
	if registry.Names()[0] != "random" {
		t.Fatal("The names of the registry can be modified from outside")
	}
}

func TestRegistryUse(t *testing.T) {
	registry := DefaultRegistry(rand.New(rand.NewSource(1)), nil)

	if err := registry.Use("bisection"); err != nil {
		t.Fatal(err)
	}
	if registry.Active().Name() != "bisection" {
		t.Fatal("The strategy was not activated")
	}

	err := registry.Use("does-not-exist")
	if !errors.Is(err, ErrUnknownStrategy) {
		t.Fatal("An unknown strategy did not return ErrUnknownStrategy")
	}
	if registry.Active().Name() != "bisection" {
		t.Fatal("An unknown strategy changed the active strategy")
	}

	if _, err := registry.Get("does-not-exist"); !errors.Is(err, ErrUnknownStrategy) {
		t.Fatal("Get did not return ErrUnknownStrategy")
	}
}

func TestRegistryRegister(t *testing.T) {
	registry := NewRegistry()
	if registry.Active() != nil {
		t.Fatal("An empty registry has an active strategy")
	}

	first := NewChronologicKOStrategy(nil)
	registry.Register(first)
	if registry.Active() != first {
		t.Fatal("The first strategy did not become active")
	}

	registry.Register(NewBiSectionStrategy())
	replacement := NewChronologicKOStrategy(nil)
	registry.Register(replacement)

	if len(registry.Names()) != 2 {
		t.Fatal("Registering the same name twice added a new entry")
	}
	if registry.Active() != replacement {
		t.Fatal("The active strategy was not replaced")
	}
}
