package recorder

import (
	"encoding/csv"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/lukehollenback/binanceapi/exchange/binance"
	"github.com/lukehollenback/binanceapi/service"
)

const (
	TimestampKey = "Timestamp"
	MethodKey    = "Method"
	KindKey      = "Kind"
	NonceKey     = "Nonce"
	TookKey      = "TookMillis"
	OutcomeKey   = "Outcome"

	bufferSize = 64
)

//
// ErrNotRunning is returned when records are handed to a recorder that has not been started.
//
var ErrNotRunning = errors.New("the recorder is not running")

//
// Recorder appends call records to a CSV file. Rows are written by a single goroutine, so Record may
// be called concurrently.
//
type Recorder struct {
	mu        *sync.Mutex
	path      string
	l         *zap.SugaredLogger
	chRecords chan binance.Record
	chStopped chan bool
	chDone    chan struct{}
	file      *os.File
	writer    *csv.Writer
}

//
// New creates a recorder that writes to the file at path. Nothing is opened until Start is called.
//
func New(path string, l *zap.SugaredLogger) *Recorder {
	if l == nil {
		l = zap.S()
	}

	return &Recorder{
		mu:   &sync.Mutex{},
		path: path,
		l:    l.Named("recorder"),
	}
}

//
// Start opens (or creates) the output file and fires up the writer goroutine. The header row is only
// written to files that are empty, so the same file can collect records across runs. If a previous
// run is still flushing, Start waits for it to finish first.
//
func (o *Recorder) Start() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.chRecords != nil {
		return nil, errors.New("the recorder is already running")
	}

	if o.chDone != nil {
		<-o.chDone
		o.chDone = nil
	}

	//
	// Open the output file and work out whether it needs a header row.
	//
	var err error

	o.file, err = os.OpenFile(o.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", o.path)
	}

	info, err := o.file.Stat()
	if err != nil {
		_ = o.file.Close()
		return nil, errors.Wrapf(err, "failed to stat %s", o.path)
	}

	o.writer = csv.NewWriter(o.file)

	if info.Size() == 0 {
		if err := o.writer.Write([]string{TimestampKey, MethodKey, KindKey, NonceKey, TookKey, OutcomeKey}); err != nil {
			_ = o.file.Close()
			return nil, errors.Wrap(err, "failed to write header row")
		}
	}

	//
	// (Re)initialize the channels and fire off the writer.
	//
	o.chRecords = make(chan binance.Record, bufferSize)
	o.chStopped = make(chan bool, 1)
	o.chDone = make(chan struct{})

	go o.service(o.chRecords, o.chStopped, o.chDone, o.file, o.writer)

	chStarted := make(chan bool, 1)
	chStarted <- true

	o.l.Debugw("recording calls", "path", o.path)

	return chStarted, nil
}

//
// Stop flushes any queued records and closes the output file.
//
func (o *Recorder) Stop() (<-chan bool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.chRecords == nil {
		return nil, ErrNotRunning
	}

	close(o.chRecords)
	chStopped := o.chStopped

	o.chRecords = nil
	o.chStopped = nil

	return chStopped, nil
}

//
// Record queues a single call record to be written.
//
func (o *Recorder) Record(rec binance.Record) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.chRecords == nil {
		return ErrNotRunning
	}

	o.chRecords <- rec

	return nil
}

//
// service drains the record channel until it is closed. It is intended to be spun off into its own
// goroutine when the recorder is started.
//
func (o *Recorder) service(
	chRecords <-chan binance.Record,
	chStopped chan<- bool,
	chDone chan<- struct{},
	file *os.File,
	writer *csv.Writer,
) {
	defer close(chDone)

	for rec := range chRecords {
		if err := writer.Write(row(rec)); err != nil {
			o.l.Warnw("failed to write record", "method", rec.Method, "err", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		o.l.Warnw("failed to flush records", "path", o.path, "err", err)
	}

	if err := file.Close(); err != nil {
		o.l.Warnw("failed to close output file", "path", o.path, "err", err)
	}

	chStopped <- true
}

func row(rec binance.Record) []string {
	nonce := ""
	if rec.Nonce != 0 {
		nonce = strconv.FormatInt(rec.Nonce, 10)
	}

	return []string{
		rec.At.UTC().Format(time.RFC3339Nano),
		rec.Method,
		rec.Kind.String(),
		nonce,
		strconv.FormatInt(int64(rec.Took/time.Millisecond), 10),
		rec.Outcome,
	}
}

var _ service.Service = (*Recorder)(nil)
