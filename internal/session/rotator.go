package session

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/dreveal/backoffice/internal/util"
)

// Rotator maintains the process-wide rotation secret: a random value
// regenerated on a fixed interval or on manual trigger. It is owned by the
// composition root and has an explicit Start/Stop lifecycle.
//
// Session validity is governed solely by the expiry signed into each token;
// the rotation secret is intentionally not consulted during validation.
// This preserves the system's documented behavior, where rotation is
// reported but never enforced against outstanding tokens.
type Rotator struct {
	mu          sync.RWMutex
	secret      string
	lastRotated time.Time
	interval    time.Duration
	done        chan struct{}
	stopOnce    sync.Once
}

// RotationInfo is the operator-facing view of the rotation state.
type RotationInfo struct {
	LastRotated             time.Time `json:"lastRotated"`
	NextRotationIn          string    `json:"nextRotationIn"`
	RotationIntervalMinutes int       `json:"rotationIntervalMinutes"`
}

func NewRotator(interval time.Duration) (*Rotator, error) {
	secret, err := util.GenerateSecret()
	if err != nil {
		return nil, err
	}
	return &Rotator{
		secret:      secret,
		lastRotated: time.Now(),
		interval:    interval,
		done:        make(chan struct{}),
	}, nil
}

func (r *Rotator) Start() {
	go r.run()
	log.Info().Dur("interval", r.interval).Msg("session secret rotation started")
}

func (r *Rotator) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		log.Info().Msg("session secret rotation stopped")
	})
}

func (r *Rotator) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.rotate()
		}
	}
}

func (r *Rotator) rotate() {
	secret, err := util.GenerateSecret()
	if err != nil {
		log.Error().Err(err).Msg("failed to rotate session secret")
		return
	}

	r.mu.Lock()
	r.secret = secret
	r.lastRotated = time.Now()
	r.mu.Unlock()

	log.Info().Msg("session secret rotated")
}

// CurrentSecret returns the active rotation secret.
func (r *Rotator) CurrentSecret() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.secret
}

// RotateNow regenerates the secret immediately.
func (r *Rotator) RotateNow() {
	log.Info().Msg("manual session secret rotation triggered")
	r.rotate()
}

// Info reports when the secret last rotated and how long until the next
// scheduled rotation.
func (r *Rotator) Info() RotationInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	remaining := r.interval - time.Since(r.lastRotated)
	if remaining < 0 {
		remaining = 0
	}

	return RotationInfo{
		LastRotated:             r.lastRotated,
		NextRotationIn:          remaining.Round(time.Second).String(),
		RotationIntervalMinutes: int(r.interval.Minutes()),
	}
}
