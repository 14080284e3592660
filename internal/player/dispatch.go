package player

import "sync"

// dispatcher delivers events to subscribers in order from a single goroutine.
// emit never blocks: events are queued until the delivery goroutine picks them up.
type dispatcher struct {
	mu        sync.Mutex
	listeners map[int]func(Event)
	nextID    int
	pending   []Event
	wake      chan struct{}
	done      chan struct{}
	stopOnce  sync.Once
}

func newDispatcher() *dispatcher {
	d := &dispatcher{
		listeners: make(map[int]func(Event)),
		wake:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *dispatcher) subscribe(fn func(Event)) func() {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.listeners[id] = fn
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			delete(d.listeners, id)
			d.mu.Unlock()
		})
	}
}

func (d *dispatcher) emit(e Event) {
	d.mu.Lock()
	d.pending = append(d.pending, e)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *dispatcher) loop() {
	for {
		select {
		case <-d.done:
			return
		case <-d.wake:
		}

		for {
			d.mu.Lock()
			if len(d.pending) == 0 {
				d.mu.Unlock()
				break
			}
			e := d.pending[0]
			d.pending = d.pending[1:]
			fns := make([]func(Event), 0, len(d.listeners))
			for _, fn := range d.listeners {
				fns = append(fns, fn)
			}
			d.mu.Unlock()

			for _, fn := range fns {
				fn(e)
			}
		}
	}
}

func (d *dispatcher) stop() {
	d.stopOnce.Do(func() { close(d.done) })
}
