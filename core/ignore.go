package core

import "fmt"

// Takes the item out of the battle. All of its decisions
// are discarded and returned. The item is remembered as
// ignored so a rescan does not add it back.
func (b *Battle) Ignore(item Item) ([]Decision, error) {
	removed, err := b.graph.RemoveItem(item)
	if err != nil {
		return nil, err
	}

	b.ignored[item] = struct{}{}

	b.log.Debug().
		Str("item", string(item)).
		Int("discarded", len(removed)).
		Msg("item ignored")

	b.observer.Removed(item)
	b.observer.Progressed(b.graph.Progress())

	return removed, nil
}

// Lists the decisions that would be discarded
// if Ignore was called
func (b *Battle) ListIgnoreDecisions(item Item) []Decision {
	if !b.graph.HasItem(item) {
		return []Decision{}
	}
	return b.graph.IncidentDecisions(item)
}

// Puts an ignored item back into the battle.
// It starts without any decisions.
func (b *Battle) Unignore(item Item) error {
	if !b.IsIgnored(item) {
		return fmt.Errorf("%w: %s", ErrNotIgnored, item)
	}

	delete(b.ignored, item)
	b.graph.AddItem(item)

	b.observer.Progressed(b.graph.Progress())

	return nil
}

// Discards all decisions of the item while it stays
// in the battle. The discarded decisions are returned.
func (b *Battle) Reset(item Item) ([]Decision, error) {
	removed, err := b.graph.ClearItem(item)
	if err != nil {
		return nil, err
	}

	b.log.Debug().
		Str("item", string(item)).
		Int("discarded", len(removed)).
		Msg("item reset")

	b.observer.Progressed(b.graph.Progress())

	return removed, nil
}
