package tone

import (
	"fmt"
	"time"

	"github.com/sweeney/rotary-dial/internal/logic"
)

// Command is a tone request sent to a remote tone generator.
type Command struct {
	Code     logic.Code
	Duration time.Duration
	Pair     Pair
}

// Sender delivers tone commands to a remote generator.
type Sender interface {
	SendTone(cmd Command) error
}

// RemoteSynthesizer forwards tones to a Sender and blocks for their duration
// so callers observe the same timing as a local generator.
type RemoteSynthesizer struct {
	sender Sender
	start  time.Time
	now    func() time.Time
	sleep  func(time.Duration)
}

// NewRemoteSynthesizer creates a synthesizer that sends through sender.
func NewRemoteSynthesizer(sender Sender) *RemoteSynthesizer {
	return &RemoteSynthesizer{
		sender: sender,
		start:  time.Now(),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// GenerateTone sends the command and waits for it to finish.
// Silence is not sent; it only waits.
func (r *RemoteSynthesizer) GenerateTone(code logic.Code, d time.Duration) error {
	if code != logic.CodeOff {
		pair, ok := Frequencies(code)
		if !ok {
			return fmt.Errorf("unknown tone code %d", code)
		}
		if err := r.sender.SendTone(Command{Code: code, Duration: d, Pair: pair}); err != nil {
			// Keep the timing even if the generator is unreachable.
			r.sleep(d)
			return fmt.Errorf("send tone %s: %w", code, err)
		}
	}
	r.sleep(d)
	return nil
}

// Elapsed returns the time since the synthesizer was created.
func (r *RemoteSynthesizer) Elapsed() time.Duration {
	return r.now().Sub(r.start)
}
