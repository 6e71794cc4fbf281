package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

// TestAPI implements API by writing every report to the test log, it also
// keeps the ids that were reported so tests can assert on them.
type TestAPI struct {
	t testing.TB

	lock     *sync.Mutex
	broken   *[]string
	warnings *[]string
}

func NewTestAPI(t testing.TB) TestAPI {
	return TestAPI{
		t:        t,
		lock:     &sync.Mutex{},
		broken:   &[]string{},
		warnings: &[]string{},
	}
}

func (a TestAPI) format(params []any) string {
	out := make([]string, len(params))
	for i, p := range params {
		out[i] = fmt.Sprint(p)
	}
	return strings.Join(out, " ")
}

func (a TestAPI) ReportBroken(id string, params ...any) {
	a.lock.Lock()
	*a.broken = append(*a.broken, id)
	a.lock.Unlock()
	a.t.Logf("BROKEN %s %s", id, a.format(params))
}

func (a TestAPI) ReportWarning(id string, params ...any) {
	a.lock.Lock()
	*a.warnings = append(*a.warnings, id)
	a.lock.Unlock()
	a.t.Logf("WARN %s %s", id, a.format(params))
}

func (a TestAPI) ReportDebug(msg string, params ...any) {
	a.t.Logf("DEBUG %s %s", msg, a.format(params))
}

func (a TestAPI) ReportCount(id string, count int64) {
	a.t.Logf("COUNT %s %d", id, count)
}

// Broken returns the ids passed to ReportBroken so far.
func (a TestAPI) Broken() []string {
	a.lock.Lock()
	defer a.lock.Unlock()
	return append([]string(nil), *a.broken...)
}

// Warnings returns the ids passed to ReportWarning so far.
func (a TestAPI) Warnings() []string {
	a.lock.Lock()
	defer a.lock.Unlock()
	return append([]string(nil), *a.warnings...)
}
