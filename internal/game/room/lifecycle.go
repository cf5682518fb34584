package room

import (
	"math/rand/v2"
	"time"

	"github.com/palemoky/piramiden/internal/game/engine"
	"github.com/palemoky/piramiden/internal/game/pyramid"
)

// startGame deals and enters review. Caller holds r.mu.
func (r *Room) startGame() {
	layout, err := pyramid.Build(r.players, r.dir.opts.NewRand())
	if err != nil {
		r.log.Error().Err(err).Int("players", len(r.players)).Msg("cannot deal")
		return
	}

	r.started = true
	r.voters = nil
	r.game = engine.New(r.players, layout, r.dir.opts.Game, engine.Deps{
		Clock:    r.dir.opts.Clock,
		Timers:   roomTimers{r},
		Recorder: roomRecorder{r},
		Logger:   &r.log,
	})
	r.game.Start()

	r.log.Info().Strs("players", r.players).Int("rows", layout.Rows).Msgf("🎮 Game started in room %s", r.Code)
	r.publish()
	r.saveAsync()
}

// close stops the timers and marks the room dead. Caller holds r.mu.
func (r *Room) close() {
	r.closed = true
	r.stopReview()
	r.stopRound()
}

func (r *Room) stopReview() {
	if r.reviewTimer != nil {
		r.reviewTimer.Stop()
		r.reviewTimer = nil
	}
}

func (r *Room) stopRound() {
	if r.roundTimer != nil {
		r.roundTimer.Stop()
		r.roundTimer = nil
	}
}

// onTimer runs a timeout under the room lock. The engine drops stale epochs.
func (r *Room) onTimer(fire func(g *engine.Game) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || r.game == nil {
		return
	}
	if fire(r.game) {
		r.publishState()
		r.saveAsync()
	}
}

// roomTimers implements engine.Timers on the directory scheduler. Its
// methods run with r.mu held, from inside engine calls.
type roomTimers struct {
	r *Room
}

func (t roomTimers) ArmReview(epoch int, d time.Duration) {
	r := t.r
	r.stopReview()
	r.reviewTimer = r.dir.opts.Scheduler.AfterFunc(d, func() {
		r.onTimer(func(g *engine.Game) bool { return g.ReviewTimeout(epoch) })
	})
}

func (t roomTimers) ArmRound(epoch int, d time.Duration) {
	r := t.r
	r.stopRound()
	r.roundTimer = r.dir.opts.Scheduler.AfterFunc(d, func() {
		r.onTimer(func(g *engine.Game) bool { return g.RoundTimeout(epoch) })
	})
}

func (t roomTimers) CancelReview() { t.r.stopReview() }
func (t roomTimers) CancelRound()  { t.r.stopRound() }

// generateRoomCode returns a code not in use. Caller holds d.mu.
func (d *Directory) generateRoomCode() string {
	for {
		code := make([]byte, roomCodeLength)
		for i := range code {
			code[i] = roomCodeChars[rand.IntN(len(roomCodeChars))]
		}
		codeStr := string(code)
		if _, exists := d.rooms[codeStr]; !exists {
			return codeStr
		}
	}
}
