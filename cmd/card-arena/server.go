package main

import (
	"errors"
	"time"

	"github.com/cardforge/card-arena/internal/arena"
	"github.com/cardforge/card-arena/internal/constants"
	"github.com/cardforge/card-arena/internal/game"
	"github.com/cardforge/card-arena/internal/logging"
	"github.com/cardforge/card-arena/internal/storage"
)

// startTimeoutScanner claims stale in-progress battles and enacts timeouts
// through the arena service. Battles that turn out not to be timed out (a
// move landed between the claim and the check) are simply left alone.
func startTimeoutScanner(repo storage.Repository, svc *arena.Service, workerID string) {
	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			cutoff := now.Add(-svc.TurnTimeout())
			ids, err := repo.ClaimStaleBattles(cutoff, 20, 2*time.Minute, workerID)
			if err != nil {
				logging.Error("timeout scanner failed to claim battles", err, nil)
				continue
			}
			// process each id sequentially (keeps DB safe under SQLite)
			for _, id := range ids {
				enacted, err := svc.CheckBattleTimeout(id)
				if err != nil {
					// a move may land between the claim and the check; a battle
					// no longer in progress is not a scanner failure
					if !errors.Is(err, game.ErrState) {
						logging.Error("battle timeout check failed", err, logging.Fields{constants.LogFieldBattleID: id})
					}
					continue
				}
				if enacted {
					continue
				}
				if _, err := svc.CheckTurnTimeout(id); err != nil && !errors.Is(err, game.ErrState) {
					logging.Error("turn timeout check failed", err, logging.Fields{constants.LogFieldBattleID: id})
				}
			}
		}
	}()
}
