package sched

import "miniker/thread"

// ThreadSnapshot is a point-in-time, read-only view of one thread, for
// introspection commands (ps). It is not persisted: Section 6 keeps no
// state across a kernel restart, and this is produced fresh from live
// scheduler state on every call.
type ThreadSnapshot struct {
	Tid               int
	Name              string
	Status            string
	BasePriority      int
	EffectivePriority int
	Nice              int
	RecentCpu         string
	NumDonors         int
}

// Snapshot returns a ThreadSnapshot for every live thread, ordered by tid.
func Snapshot() []ThreadSnapshot {
	all := AllThreads()
	out := make([]ThreadSnapshot, 0, len(all))
	for _, t := range all {
		out = append(out, ThreadSnapshot{
			Tid:               t.Tid,
			Name:              t.Name,
			Status:            t.Status.String(),
			BasePriority:      t.BasePriority,
			EffectivePriority: t.EffectivePriority,
			Nice:              t.Nice,
			RecentCpu:         t.RecentCpu.String(),
			NumDonors:         donorCount(t),
		})
	}
	return out
}

func donorCount(t *thread.Thread) int {
	if t.Donors == nil {
		return 0
	}
	return t.Donors.Len()
}
