package sched

import "miniker/thread"

// Sleep blocks the calling thread for the given number of timer ticks,
// waking it via the normal ready-queue path once Tick has advanced far
// enough. Equivalent to timer_sleep built on thread_block rather than a
// busy loop.
func Sleep(ticks int64) {
	if ticks <= 0 {
		return
	}
	s := global
	cur := CurrentThread()
	s.mu.Lock()
	wakeAt := s.ticks + ticks
	s.sleeping.PushBack(&sleeper{t: cur, wakeAt: wakeAt})
	cur.Status = thread.Blocked
	s.schedule(cur)
	s.mu.Unlock()
}

// wakeSleepers moves any thread whose wake time has arrived back onto the
// ready queue. Assumes mu is held.
func (s *Scheduler) wakeSleepers(now int64) {
	for e := s.sleeping.Front(); e != nil; {
		next := e.Next()
		sl := e.Value.(*sleeper)
		if sl.wakeAt <= now {
			s.sleeping.Remove(e)
			s.enqueueReady(sl.t)
		}
		e = next
	}
}

// Ticks returns the number of timer ticks elapsed since boot.
func Ticks() int64 {
	s := global
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}
