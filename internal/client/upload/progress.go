package upload

import "sync"

// progressTracker turns byte counts into whole percentages and forwards only
// increases. Once sealed it drops everything, so late callbacks from the
// transport cannot follow the final outcome.
type progressTracker struct {
	notify func(int)

	mu     sync.Mutex
	last   int
	sent   bool
	sealed bool
}

func (t *progressTracker) onBytes(sent, total int64) {
	if total <= 0 {
		return
	}
	pct := int(sent * 100 / total)
	// 100 is reserved for a successful response.
	t.report(min(max(pct, 0), 99))
}

func (t *progressTracker) report(pct int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.sealed || (t.sent && pct <= t.last) {
		return
	}
	t.last = pct
	t.sent = true
	t.notify(pct)
}

func (t *progressTracker) finish() {
	t.report(100)
	t.seal()
}

func (t *progressTracker) seal() {
	t.mu.Lock()
	t.sealed = true
	t.mu.Unlock()
}
