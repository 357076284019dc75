package timemap

import "time"

type stepper struct {
	stop chan struct{}
	done chan struct{}
}

// SetAutoStep starts or stops the background stepper, which advances the
// window once per time resolution. Repeating the current state is a no-op.
// Stopping returns only after the stepper goroutine has exited.
func (ix *Index[E]) SetAutoStep(on bool) {
	if !ix.setAutoStep(on) {
		return
	}
	if on {
		ix.log.Info("auto step started", "interval", ix.timeRes)
	} else {
		ix.log.Info("auto step stopped")
	}
}

// setAutoStep reports whether the state changed.
func (ix *Index[E]) setAutoStep(on bool) bool {
	ix.stepMu.Lock()
	defer ix.stepMu.Unlock()

	if ix.autoStep == on {
		return false
	}
	ix.autoStep = on

	if on {
		s := &stepper{
			stop: make(chan struct{}),
			done: make(chan struct{}),
		}
		ix.stepper = s
		go ix.runStepper(s)
		return true
	}

	close(ix.stepper.stop)
	<-ix.stepper.done
	ix.stepper = nil
	return true
}

// IsAutoStepOn reports whether the background stepper is running.
func (ix *Index[E]) IsAutoStepOn() bool {
	ix.stepMu.Lock()
	defer ix.stepMu.Unlock()
	return ix.autoStep
}

func (ix *Index[E]) runStepper(s *stepper) {
	defer close(s.done)

	ticker := time.NewTicker(ix.timeRes)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ix.Advance()
		}
	}
}
