package api

import (
	"github.com/cardforge/card-arena/internal/arena"
	"github.com/cardforge/card-arena/internal/registry"
)

// ArenaHandler groups all HTTP handlers over the arena service and the
// character registry.
type ArenaHandler struct {
	svc *arena.Service
	reg registry.Registry
}

// NewArenaHandler creates a handler set over the given collaborators.
func NewArenaHandler(svc *arena.Service, reg registry.Registry) *ArenaHandler {
	return &ArenaHandler{svc: svc, reg: reg}
}
