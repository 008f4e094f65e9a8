package metrics

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/natefinch/lumberjack"
)

type Logger interface {
	Log(info *ExtractionInfo)
}

type StdoutLogger struct{}

func NewStdoutLogger() *StdoutLogger {
	return &StdoutLogger{}
}

func (l *StdoutLogger) Log(info *ExtractionInfo) {
	infoStr, err := info.ToJSON()
	if err == nil {
		log.Print(infoStr)
	} else {
		log.Printf("StdoutLogger: error: %v", err)
	}
}

const defaultQueueSize = 2000
const defaultLogWriters = 2

// in megabytes, as lumberjack counts
const defaultMaxLogFileSize = 1024
const defaultMaxLogFiles = 10

// FileLogger writes records as JSON lines from a pool of writers, each
// to its own file rotated by size.
type FileLogger struct {
	MetricsQueue   chan *ExtractionInfo
	LogDir         string
	MaxLogFileSize int
	MaxLogFiles    int
	Verbose        bool

	wg sync.WaitGroup
}

func NewFileLogger(logDir string, maxLogFileSize int, maxLogFiles int, verbose bool) *FileLogger {
	if maxLogFileSize <= 0 {
		maxLogFileSize = defaultMaxLogFileSize
	}
	if maxLogFiles <= 0 {
		maxLogFiles = defaultMaxLogFiles
	}
	logger := &FileLogger{
		MetricsQueue:   make(chan *ExtractionInfo, defaultQueueSize),
		LogDir:         logDir,
		MaxLogFileSize: maxLogFileSize,
		MaxLogFiles:    maxLogFiles,
		Verbose:        verbose,
	}

	for i := 0; i < defaultLogWriters; i++ {
		logger.wg.Add(1)
		go logger.startLogWriter(i)
	}

	return logger
}

func (l *FileLogger) Log(info *ExtractionInfo) {
	l.MetricsQueue <- info
}

// Close drains the queue and closes the log files.
func (l *FileLogger) Close() {
	close(l.MetricsQueue)
	l.wg.Wait()
}

func (l *FileLogger) startLogWriter(idx int) {
	defer l.wg.Done()
	w := &lumberjack.Logger{
		Filename:   filepath.Join(l.LogDir, fmt.Sprintf("log%d", idx)),
		MaxSize:    l.MaxLogFileSize,
		MaxBackups: l.MaxLogFiles,
	}
	defer w.Close()

	for info := range l.MetricsQueue {
		infoStr, err := info.ToJSON()
		if err != nil {
			log.Printf("FileLogger%d: info.ToJSON() error: %v", idx, err)
			continue
		}
		if _, err := w.Write([]byte(infoStr)); err != nil {
			log.Printf("FileLogger%d: write error: %v", idx, err)
		}
	}
	if l.Verbose {
		log.Printf("FileLogger%d: closed", idx)
	}
}
