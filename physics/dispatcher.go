package physics

import "sync"

// workChunk is a range of snapshots for a worker to integrate.
type workChunk struct {
	start, end int
	dt         float64
}

// dispatcher is a fixed-size pool of persistent integration workers.
type dispatcher struct {
	numWorkers int
	fn         func(start, end int, dt float64)

	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newDispatcher(numWorkers int, fn func(start, end int, dt float64)) *dispatcher {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &dispatcher{numWorkers: numWorkers, fn: fn}
}

// start launches the workers. Workers are started lazily on the first run.
func (d *dispatcher) start() {
	if d.running {
		return
	}

	d.workChan = make(chan workChunk, d.numWorkers)
	d.doneChan = make(chan struct{}, d.numWorkers)
	d.stopChan = make(chan struct{})
	d.running = true

	for i := 0; i < d.numWorkers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (d *dispatcher) stop() {
	if !d.running {
		return
	}

	close(d.stopChan)
	d.wg.Wait()
	close(d.workChan)
	close(d.doneChan)
	d.running = false
}

func (d *dispatcher) worker() {
	defer d.wg.Done()

	for {
		select {
		case <-d.stopChan:
			return
		case chunk, ok := <-d.workChan:
			if !ok {
				return
			}
			d.fn(chunk.start, chunk.end, chunk.dt)
			d.doneChan <- struct{}{}
		}
	}
}

// run splits [0, n) across the workers and blocks until every chunk is done.
func (d *dispatcher) run(n int, dt float64) {
	if !d.running {
		d.start()
	}

	chunkSize := (n + d.numWorkers - 1) / d.numWorkers
	dispatched := 0
	for w := 0; w < d.numWorkers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		d.workChan <- workChunk{start: start, end: end, dt: dt}
		dispatched++
	}

	for i := 0; i < dispatched; i++ {
		<-d.doneChan
	}
}
