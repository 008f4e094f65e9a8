package gdalservice

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"log"
	"net"
	"os"
	"os/exec"
	"syscall"

	"github.com/golang/protobuf/proto"
)

type ErrorMsg struct {
	Address string
	Replace bool
	Error   error
}

// Task is one extraction request queued for a subprocess.
type Task struct {
	Payload *ExtractRequest
	Resp    chan *Result
	Error   chan error
}

// Process is a gdal-process child serving requests on a unix socket,
// one request per connection.
type Process struct {
	TaskQueue      chan *Task
	TempFile       string
	Address        string
	Cmd            *exec.Cmd
	CombinedOutput io.ReadCloser
	ErrorMsg       chan *ErrorMsg
}

func NewProcess(tQueue chan *Task, binary string, errChan chan *ErrorMsg, debug bool) (*Process, error) {
	// the temp file is kept while the process lives so that no other
	// process picks the same socket name
	tmpFile, err := ioutil.TempFile("", "gcube_rpc_")
	if err != nil {
		return nil, err
	}
	tmpFile.Close()
	tmpFileName := tmpFile.Name()
	addr := tmpFileName + "_socket"

	args := []string{"-sock", addr}
	if debug {
		args = append(args, "-debug")
	}
	cmd := exec.Command(binary, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Pdeathsig: syscall.SIGKILL}
	combinedOutput, err := cmd.StderrPipe()
	if err != nil {
		combinedOutput = nil
		log.Printf("Failed to obtain subprocess stderr pipe: %v\n", err)
	} else {
		cmd.Stdout = cmd.Stderr
	}

	return &Process{tQueue, tmpFileName, addr, cmd, combinedOutput, errChan}, nil
}

// Exchange sends one request over the unix socket at addr and reads
// the result.
func Exchange(addr string, req *ExtractRequest) (*Result, error) {
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: addr, Net: "unix"})
	if err != nil {
		return nil, &dialError{err}
	}
	defer conn.Close()

	inb, err := proto.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode failed: %v", err)
	}
	n, err := conn.Write(inb)
	if err != nil {
		return nil, fmt.Errorf("error writing %d bytes of data: %v", n, err)
	}
	conn.CloseWrite()

	var buf bytes.Buffer
	nr, err := io.Copy(&buf, conn)
	if err != nil {
		return nil, fmt.Errorf("error reading %d bytes of data: %v", nr, err)
	}

	out := new(Result)
	if err := proto.Unmarshal(buf.Bytes(), out); err != nil {
		return nil, fmt.Errorf("error decoding data: %v", err)
	}
	return out, nil
}

type dialError struct{ err error }

func (e *dialError) Error() string { return fmt.Sprintf("dial failed: %v", e.err) }

func (p *Process) Start() error {
	err := p.Cmd.Start()
	if err != nil {
		p.RemoveTempFiles()
		p.ErrorMsg <- &ErrorMsg{p.Address, false, fmt.Errorf("Failed to start process: %v", err)}
		return err
	}

	log.Println("Process running with PID", p.Cmd.Process.Pid)

	go func() {
		defer p.RemoveTempFiles()

		for task := range p.TaskQueue {
			out, err := Exchange(p.Address, task.Payload)
			if err != nil {
				task.Error <- err
				if de, ok := err.(*dialError); ok {
					p.ErrorMsg <- &ErrorMsg{p.Address, true, de.err}
					break
				}
				continue
			}
			task.Resp <- out
		}
	}()

	go func() {
		defer p.RemoveTempFiles()

		// relay subprocess stderr and stdout to our stdout, with pid
		if p.CombinedOutput != nil {
			reader := bufio.NewReader(p.CombinedOutput)
			for {
				line, err := reader.ReadString('\n')
				if err != nil {
					break
				}

				log.Println(p.Cmd.Process.Pid, line)
			}
		}

		err := p.Cmd.Wait()
		if err != nil {
			p.ErrorMsg <- &ErrorMsg{p.Address, true, fmt.Errorf("Process exited: %v", err)}
		}
	}()

	return nil
}

func (p *Process) RemoveTempFiles() {
	os.Remove(p.TempFile)
	os.Remove(p.Address)
}
