package game

import (
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/klauspost/compress/gzip"
	"golang.org/x/time/rate"
)

const (
	journalBufferSize   = 1024
	journalMaxPerSec    = 10000 // global rate limit
	journalMaxPerPlayer = 100   // per-player rate limit per second
	journalBatchSize    = 64
	journalFlushEvery   = 100 * time.Millisecond
	limiterCleanupEvery = 5 * time.Minute
)

// Journal is a bounded, rate-limited match event log. Producers (the tick
// goroutine, the connection layer) emit without blocking; a writer goroutine
// drains the ring into a gzip-compressed NDJSON file. Under overload the
// oldest entries are dropped rather than stalling the tick.
type Journal struct {
	buffer    [journalBufferSize]Event
	writeHead uint64 // atomic
	readHead  uint64 // atomic

	globalLimiter  *rate.Limiter
	playerLimiters sync.Map // map[string]*limiterEntry

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	fileMu sync.Mutex
	file   *os.File
	gz     *gzip.Writer

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// NewJournal creates a journal that is not yet writing to disk.
func NewJournal() *Journal {
	return &Journal{
		globalLimiter: rate.NewLimiter(journalMaxPerSec, journalMaxPerSec/10),
		stopChan:      make(chan struct{}),
	}
}

// Start opens the output file and launches the writer. An empty path keeps
// the journal in memory-only mode where entries are counted but never
// persisted.
func (j *Journal) Start(path string) error {
	if j.running.Load() {
		return nil
	}

	if path != "" {
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return err
		}
		j.file = file
		j.gz = gzip.NewWriter(file)
	}

	j.running.Store(true)
	j.writerWg.Add(2)
	go j.writerLoop()
	go j.cleanupLoop()
	return nil
}

// Stop flushes and closes the journal. Safe to call more than once.
func (j *Journal) Stop() {
	j.stopOnce.Do(func() {
		j.running.Store(false)
		close(j.stopChan)
		j.writerWg.Wait()

		j.fileMu.Lock()
		if j.gz != nil {
			j.gz.Close()
		}
		if j.file != nil {
			j.file.Close()
		}
		j.fileMu.Unlock()
	})
}

// Emit records an event, subject to the global and per-player rate limits.
// Returns false when the entry was dropped.
func (j *Journal) Emit(event Event) bool {
	if !j.running.Load() {
		return false
	}

	if !j.globalLimiter.Allow() {
		atomic.AddUint64(&j.droppedCount, 1)
		return false
	}

	if event.PlayerID != "" {
		if !j.playerLimiter(event.PlayerID).Allow() {
			atomic.AddUint64(&j.droppedCount, 1)
			return false
		}
	}

	// Slots are zero-based: the reservation for the Nth event is index N-1,
	// matching the [readHead, writeHead) window the writer drains.
	seq := atomic.AddUint64(&j.writeHead, 1) - 1
	tail := atomic.LoadUint64(&j.readHead)

	// Ring full: advance the tail, sacrificing the oldest entry.
	if seq-tail >= journalBufferSize {
		atomic.AddUint64(&j.readHead, 1)
		atomic.AddUint64(&j.droppedCount, 1)
	}

	event.Sequence = seq
	j.buffer[seq%journalBufferSize] = event

	atomic.AddUint64(&j.totalCount, 1)
	return true
}

// Record builds and emits an event in one call.
func (j *Journal) Record(eventType EventType, tick uint64, playerID string, payload interface{}) bool {
	return j.Emit(NewEvent(eventType, tick, playerID, payload))
}

func (j *Journal) playerLimiter(playerID string) *rate.Limiter {
	if entry, ok := j.playerLimiters.Load(playerID); ok {
		e := entry.(*limiterEntry)
		e.lastUsed = time.Now()
		return e.limiter
	}

	entry := &limiterEntry{
		limiter:  rate.NewLimiter(journalMaxPerPlayer, journalMaxPerPlayer/10),
		lastUsed: time.Now(),
	}
	actual, _ := j.playerLimiters.LoadOrStore(playerID, entry)
	return actual.(*limiterEntry).limiter
}

func (j *Journal) writerLoop() {
	defer j.writerWg.Done()

	ticker := time.NewTicker(journalFlushEvery)
	defer ticker.Stop()

	batch := make([]Event, 0, journalBatchSize)

	for {
		select {
		case <-j.stopChan:
			for {
				batch = j.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				j.flushBatch(batch)
			}
		case <-ticker.C:
			batch = j.collectBatch(batch[:0])
			if len(batch) > 0 {
				j.flushBatch(batch)
			}
		}
	}
}

func (j *Journal) cleanupLoop() {
	defer j.writerWg.Done()

	ticker := time.NewTicker(limiterCleanupEvery)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-limiterCleanupEvery)
			j.playerLimiters.Range(func(key, value interface{}) bool {
				if value.(*limiterEntry).lastUsed.Before(cutoff) {
					j.playerLimiters.Delete(key)
				}
				return true
			})
		}
	}
}

func (j *Journal) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&j.writeHead)
	tail := atomic.LoadUint64(&j.readHead)

	for i := tail; i < head && len(batch) < journalBatchSize; i++ {
		batch = append(batch, j.buffer[i%journalBufferSize])
	}
	if len(batch) > 0 {
		atomic.AddUint64(&j.readHead, uint64(len(batch)))
	}
	return batch
}

func (j *Journal) flushBatch(batch []Event) {
	j.fileMu.Lock()
	defer j.fileMu.Unlock()

	if j.gz == nil {
		return
	}

	for _, event := range batch {
		data, err := json.Marshal(event)
		if err != nil {
			continue
		}
		j.gz.Write(data)
		j.gz.Write([]byte("\n"))
	}
	j.gz.Flush()
}

// Stats reports journal counters for the debug endpoints.
func (j *Journal) Stats() map[string]interface{} {
	head := atomic.LoadUint64(&j.writeHead)
	tail := atomic.LoadUint64(&j.readHead)
	return map[string]interface{}{
		"total":   atomic.LoadUint64(&j.totalCount),
		"dropped": atomic.LoadUint64(&j.droppedCount),
		"pending": head - tail,
		"running": j.running.Load(),
	}
}

// DroppedCount returns how many entries rate limiting or overflow discarded.
func (j *Journal) DroppedCount() uint64 {
	return atomic.LoadUint64(&j.droppedCount)
}
