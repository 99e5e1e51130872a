package worker

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/akolanti/ChatbotAPI/internal/config"
	"github.com/akolanti/ChatbotAPI/internal/job"
	"github.com/akolanti/ChatbotAPI/internal/metrics"
	"github.com/akolanti/ChatbotAPI/pkg/logger_i"
)

// Pool grows on dispatcher signals up to config.MaxWorkerCount and shrinks back to
// minWorkerCount as workers sit idle.
type Pool struct {
	jobService         *job.Service
	stopWorkerChannel  chan bool
	workerWaitGroup    *sync.WaitGroup
	currentWorkerCount int64
	minWorkerCount     int64
	maxWorkerCount     int64
	idleTimeout        time.Duration
	jobTimeout         time.Duration
	logger             *logger_i.Logger
}

type PoolConfig struct {
	JobService *job.Service
	// StopWorkerChannel is closed to stop every worker and the dispatcher.
	StopWorkerChannel chan bool
	WaitGroup         *sync.WaitGroup
	MinWorkers        int64
	MaxWorkers        int64
	IdleTimeout       time.Duration
	JobTimeout        time.Duration
}

func NewPool(cfg PoolConfig) *Pool {
	p := &Pool{
		jobService:        cfg.JobService,
		stopWorkerChannel: cfg.StopWorkerChannel,
		workerWaitGroup:   cfg.WaitGroup,
		minWorkerCount:    cfg.MinWorkers,
		maxWorkerCount:    cfg.MaxWorkers,
		idleTimeout:       cfg.IdleTimeout,
		jobTimeout:        cfg.JobTimeout,
		logger:            logger_i.NewLogger("WorkerPool"),
	}
	if p.minWorkerCount <= 0 {
		p.minWorkerCount = config.MinWorkerCount
	}
	if p.maxWorkerCount <= 0 {
		p.maxWorkerCount = config.MaxWorkerCount
	}
	if p.idleTimeout <= 0 {
		p.idleTimeout = config.IdleWorkerTimeout
	}
	if p.jobTimeout <= 0 {
		p.jobTimeout = config.JobTimeout
	}
	return p
}

func (p *Pool) Start() {
	p.logger.Info("Initializing worker pool")
	p.createWorker()
	go p.dispatcher()
}

func (p *Pool) WorkerCount() int64 {
	return atomic.LoadInt64(&p.currentWorkerCount)
}

func (p *Pool) dispatcher() {
	p.logger.Info("Dispatcher started")
	for {
		select {
		case <-p.jobService.DispatcherChannel:
			if atomic.LoadInt64(&p.currentWorkerCount) < p.maxWorkerCount {
				p.logger.Debug("Creating new worker", "workerCount", p.WorkerCount())
				p.createWorker()
			}
		case <-p.stopWorkerChannel:
			p.logger.Info("Dispatcher stopped")
			return
		}
	}
}

func (p *Pool) createWorker() {
	p.workerWaitGroup.Add(1)
	atomic.AddInt64(&p.currentWorkerCount, 1)
	metrics.IncrementActiveWorkerCount()
	go p.worker()
}

func (p *Pool) worker() {
	idle := time.NewTimer(p.idleTimeout)
	defer idle.Stop()
	for {
		select {
		case currentJob := <-p.jobService.JobChannel:
			metrics.DecrementJobsInQueue()
			p.executeJob(currentJob)
			idle.Reset(p.idleTimeout)

		case <-p.stopWorkerChannel:
			p.removeWorker("Stop worker signal received")
			return

		case <-idle.C:
			// idle for too long, retire unless we are at the floor
			if p.tryRetire() {
				p.workerWaitGroup.Done()
				metrics.DecrementActiveWorkerCount()
				p.logger.Debug("Idle worker timeout - Removed worker", "workerCount", p.WorkerCount())
				return
			}
			idle.Reset(p.idleTimeout)
		}
	}
}

func (p *Pool) tryRetire() bool {
	for {
		current := atomic.LoadInt64(&p.currentWorkerCount)
		if current <= p.minWorkerCount {
			return false
		}
		if atomic.CompareAndSwapInt64(&p.currentWorkerCount, current, current-1) {
			return true
		}
	}
}

func (p *Pool) removeWorker(reason string) {
	atomic.AddInt64(&p.currentWorkerCount, -1)
	metrics.DecrementActiveWorkerCount()
	p.workerWaitGroup.Done()
	p.logger.Debug("Removed worker", "reason", reason, "workerCount", p.WorkerCount())
}
