package liveview

import (
	"html/template"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/dashboard"
	"github.com/bopopescu/openlava-web/internal/logger"
)

const (
	PatchCounter     = "counter"
	PatchBanner      = "banner"
	PatchBannerClear = "banner-clear"
	PatchStatusClear = "status-clear"
	PatchBody        = "body"
	PatchTimes       = "times"
)

// RowTimes carries the three formatted time cells of one table row.
type RowTimes struct {
	Submit string `json:"submit"`
	Start  string `json:"start"`
	End    string `json:"end"`
}

// Patch is one DOM update pushed over the live websocket.
type Patch struct {
	Kind   string    `json:"kind"`
	Target string    `json:"target,omitempty"`
	HTML   string    `json:"html,omitempty"`
	Rows   []string  `json:"rows,omitempty"`
	Times  *RowTimes `json:"times,omitempty"`
}

// Surface renders dashboard updates into patches and queues them for
// the websocket writer. A browser that cannot keep up loses patches
// rather than stalling the refresh loop; the next body patch repaints
// the whole table anyway.
type Surface struct {
	mu     sync.Mutex
	out    chan Patch
	closed bool
}

func NewSurface(buffer int) *Surface {
	if buffer <= 0 {
		buffer = 64
	}
	return &Surface{out: make(chan Patch, buffer)}
}

// Patches is the stream consumed by the websocket writer. It is
// closed by Close.
func (s *Surface) Patches() <-chan Patch {
	return s.out
}

func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
}

func (s *Surface) send(p Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	select {
	case s.out <- p:
	default:
		logger.Log.Debug("liveview patch dropped",
			zap.String("kind", p.Kind),
			zap.String("target", p.Target))
	}
}

func (s *Surface) SetCounter(slot dashboard.Slot, value int64) {
	s.send(Patch{
		Kind:   PatchCounter,
		Target: string(slot),
		HTML:   strconv.FormatInt(value, 10),
	})
}

func (s *Surface) ShowBanner(message string) {
	s.send(Patch{Kind: PatchBanner, HTML: template.HTMLEscapeString(message)})
}

func (s *Surface) HideBanner() {
	s.send(Patch{Kind: PatchBannerClear})
}

func (s *Surface) ClearStatus() {
	s.send(Patch{Kind: PatchStatusClear})
}

func (s *Surface) RenderRow(job cluster.JobSummary) string {
	return RenderRow(job)
}

func (s *Surface) NoJobsRow() string {
	return NoJobsRow()
}

func (s *Surface) ReplaceBody(rows []string) {
	s.send(Patch{Kind: PatchBody, Rows: rows})
}

func (s *Surface) FillTimes(key cluster.JobKey, times cluster.JobTimes) {
	s.send(Patch{
		Kind:   PatchTimes,
		Target: key.String(),
		Times: &RowTimes{
			Submit: cluster.FormatTime(times.SubmitTime),
			Start:  cluster.FormatTime(times.StartTime),
			End:    cluster.FormatTime(times.EndTime),
		},
	})
}
