package pulse

import (
	"encoding/json"
	"sync"
	"time"
)

// Failure records the repeated occurrence of one suppressed error code.
type Failure struct {
	Err          error
	Count        int
	LastOccurred time.Time
}

func (f Failure) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Error        string    `json:"error"`
		Count        int       `json:"count"`
		LastOccurred time.Time `json:"lastOccur"`
	}{f.Err.Error(), f.Count, f.LastOccurred})
}

// Failures counts suppressed pipeline errors by code. Safe for concurrent use.
type Failures struct {
	mx   sync.Mutex
	data map[string]Failure
}

func NewFailures() *Failures {
	return &Failures{data: make(map[string]Failure)}
}

func (f *Failures) Collect(code string, err error) {
	f.mx.Lock()
	defer f.mx.Unlock()
	existing, ok := f.data[code]
	if !ok {
		f.data[code] = Failure{Err: err, Count: 1, LastOccurred: time.Now()}
		return
	}
	existing.Count++
	existing.LastOccurred = time.Now()
	existing.Err = err // keep the latest occurrence under a shared code
	f.data[code] = existing
}

func (f *Failures) Snapshot() map[string]Failure {
	f.mx.Lock()
	defer f.mx.Unlock()
	res := make(map[string]Failure, len(f.data))
	for code, failure := range f.data {
		res[code] = failure
	}
	return res
}
