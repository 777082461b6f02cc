package core

import (
	"maps"

	"github.com/goccy/go-json"
)

func marshalGraph(g *TournamentGraph) map[string]any {
	result := map[string]any{
		"items":     g.Items(),
		"decisions": g.Decisions(),
		"progress":  g.Progress(),
		"finished":  g.IsFinished(),
	}
	return result
}

func marshalBattle(b *Battle) map[string]any {
	result := map[string]any{
		"strategy": b.ActiveStrategy(),
		"ignored":  b.Ignored(),
		"results":  b.Results(),
	}

	maps.Copy(result, marshalGraph(b.graph))

	return result
}

func (g *TournamentGraph) MarshalJSON() ([]byte, error) {
	anymap := marshalGraph(g)
	return json.Marshal(anymap)
}

func (b *Battle) MarshalJSON() ([]byte, error) {
	anymap := marshalBattle(b)
	return json.Marshal(anymap)
}
