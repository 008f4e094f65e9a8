package gdalservice

import (
	"fmt"
	"log"

	"golang.org/x/net/context"
)

var LibexecDir = "."

const DefaultQueueSizePerProcess = 50

type ProcessPool struct {
	Pool       []*Process
	TaskQueue  chan *Task
	ErrorMsg   chan *ErrorMsg
	executable string
	debug      bool
}

func (p *ProcessPool) AddQueue(task *Task) {
	if len(p.TaskQueue) > cap(p.TaskQueue)-10 {
		task.Error <- fmt.Errorf("Pool TaskQueue is full")
		return
	}
	p.TaskQueue <- task
}

// Submit queues req and waits for its result or for ctx to be done.
func (p *ProcessPool) Submit(ctx context.Context, req *ExtractRequest) (*Result, error) {
	// buffered so a late answer never blocks the process loop
	task := &Task{Payload: req, Resp: make(chan *Result, 1), Error: make(chan error, 1)}
	go p.AddQueue(task)

	select {
	case out := <-task.Resp:
		return out, nil
	case err := <-task.Error:
		return nil, fmt.Errorf("Error in ops: %v", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *ProcessPool) CreateProcess() (*Process, error) {
	proc, err := NewProcess(p.TaskQueue, p.executable, p.ErrorMsg, p.debug)
	if err != nil {
		return nil, err
	}
	return proc, proc.Start()
}

// DeleteProcessPool removes the sockets of every process.
func (p *ProcessPool) DeleteProcessPool() {
	for _, proc := range p.Pool {
		if proc != nil {
			proc.RemoveTempFiles()
		}
	}
}

func CreateProcessPool(n int, executable string, debug bool) (*ProcessPool, error) {
	if len(executable) == 0 {
		executable = LibexecDir + "/gcube-gdal-process"
	}
	p := &ProcessPool{
		TaskQueue:  make(chan *Task, DefaultQueueSizePerProcess*n),
		ErrorMsg:   make(chan *ErrorMsg, 16),
		executable: executable,
		debug:      debug,
	}

	go func() {
		for err := range p.ErrorMsg {
			if !err.Replace {
				log.Printf("Process: %v, %v", err.Address, err.Error)
				continue
			}
			log.Printf("Process: %v, %v, restarting...", err.Address, err.Error)
			for ip, proc := range p.Pool {
				if proc != nil && err.Address == proc.Address {
					p.Pool[ip] = nil
					proc, err := p.CreateProcess()
					if err == nil {
						p.Pool[ip] = proc
					}
					break
				}
			}
		}
	}()

	for i := 0; i < n; i++ {
		proc, err := p.CreateProcess()
		if err != nil {
			return nil, err
		}
		p.Pool = append(p.Pool, proc)
	}

	return p, nil
}
