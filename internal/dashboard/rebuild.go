package dashboard

import (
	"sync"

	"teo-dashboard/internal/metrics"
)

// rebuilder объединяет запросы на перестроение графиков: пока одно
// перестроение запланировано или выполняется, новые запросы отбрасываются.
type rebuilder struct {
	mu      sync.Mutex
	pending bool
	run     func()
	wg      *sync.WaitGroup
}

func newRebuilder(wg *sync.WaitGroup, run func()) *rebuilder {
	return &rebuilder{run: run, wg: wg}
}

// schedule возвращает false, если перестроение уже ожидает выполнения
func (r *rebuilder) schedule() bool {
	r.mu.Lock()
	if r.pending {
		r.mu.Unlock()
		return false
	}
	r.pending = true
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			r.mu.Lock()
			r.pending = false
			r.mu.Unlock()
		}()
		metrics.ChartRebuilds.Inc()
		r.run()
	}()
	return true
}

// isPending сообщает, ожидается ли перестроение
func (r *rebuilder) isPending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}
