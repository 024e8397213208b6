package workerpool

import (
	"sync"

	"go.uber.org/zap"
)

// Worker controls all work.
type Worker struct {
	ID       int
	taskChan chan *Task
	quit     chan bool
	log      Log
}

// NewWorker returns a new worker instance.
func NewWorker(channel chan *Task, ID int, log Log) *Worker {
	return &Worker{
		ID:       ID,
		taskChan: channel,
		quit:     make(chan bool),
		log:      log,
	}
}

// Start starts a worker.
func (wr *Worker) Start(wg *sync.WaitGroup) {
	wr.log.Info("starting worker: ", zap.Int("worker", wr.ID))

	wg.Add(1)
	go func() {
		defer wg.Done()
		for task := range wr.taskChan {
			process(wr.ID, task)
		}
	}()
}

// StartBackground starts a worker in the background.
func (wr *Worker) StartBackground() {
	wr.log.Info("starting worker: ", zap.Int("worker", wr.ID))

	for {
		select {
		case task := <-wr.taskChan:
			process(wr.ID, task)
		case <-wr.quit:
			return
		}
	}
}

// Stop quits for worker.
func (wr *Worker) Stop() {
	wr.log.Info("closing worker: ", zap.Int("worker", wr.ID))
	go func() {
		wr.quit <- true
	}()
}
