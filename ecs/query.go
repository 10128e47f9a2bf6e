package ecs

import "github.com/milk9111/arena/ecs/component"

// Without filters out entities carrying any of the given kinds.
func (w *World) Without(entities []Entity, kinds ...component.Kind) []Entity {
	if w == nil || len(kinds) == 0 {
		return entities
	}
	out := entities[:0:0]
	for _, e := range entities {
		skip := false
		for _, k := range kinds {
			if w.HasComponent(e, k) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, e)
		}
	}
	return out
}
