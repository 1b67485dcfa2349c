package console

import (
	"context"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"

	"github.com/bopopescu/openlava-web/internal/cluster"
	"github.com/bopopescu/openlava-web/internal/cluster/upstream"
)

func (s *Server) handleIndex(c echo.Context) error {
	ctx := c.Request().Context()

	info, err := s.cluster.ClusterInfo(ctx)
	if err != nil {
		return s.fail(c, err)
	}

	if wantsJSON(c) {
		return jsonOK(c, info, "")
	}

	hosts, err := s.hostOverview(ctx)
	if err != nil {
		return s.fail(c, err)
	}
	jobs, slots, err := s.jobOverviews(ctx)
	if err != nil {
		return s.fail(c, err)
	}

	return c.Render(http.StatusOK, "cluster", map[string]any{
		"Title":   "Cluster " + info.Name,
		"User":    currentUser(c),
		"Message": c.QueryParam("message"),
		"Info":    info,
		"Hosts":   hosts,
		"Jobs":    jobs,
		"Slots":   slots,
	})
}

// hostOverview buckets the batch servers by what they are doing right
// now. Client-only machines stay out of the picture.
func (s *Server) hostOverview(ctx context.Context) ([]cluster.OverviewPoint, error) {
	hosts, err := s.cluster.HostList(ctx)
	if err != nil {
		return nil, err
	}

	var down, full, inUse, empty, closed int64
	for _, host := range hosts {
		if !host.IsServer {
			continue
		}
		switch {
		case host.IsDown:
			down++
		case host.IsClosed:
			closed++
		case host.IsBusy || (host.MaxSlots > 0 && host.TotalSlots >= host.MaxSlots):
			full++
		case host.TotalJobs > 0:
			inUse++
		default:
			empty++
		}
	}

	return []cluster.OverviewPoint{
		{Label: "Down", Value: down},
		{Label: "Full", Value: full},
		{Label: "In Use", Value: inUse},
		{Label: "Empty", Value: empty},
		{Label: "Closed", Value: closed},
	}, nil
}

// jobOverviews groups every job on the cluster by its friendly state,
// once counting jobs and once weighting by requested slots.
func (s *Server) jobOverviews(ctx context.Context) (jobs, slots []cluster.OverviewPoint, err error) {
	list, err := s.cluster.JobList(ctx, upstream.JobFilter{State: cluster.StateAll})
	if err != nil {
		return nil, nil, err
	}

	jobCounts := make(map[string]int64)
	slotCounts := make(map[string]int64)
	for _, job := range list {
		jobCounts[job.Status.Friendly]++
		slotCounts[job.Status.Friendly] += job.RequestedSlots
	}

	return points(jobCounts), points(slotCounts), nil
}

func points(counts map[string]int64) []cluster.OverviewPoint {
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	out := make([]cluster.OverviewPoint, 0, len(labels))
	for _, label := range labels {
		out = append(out, cluster.OverviewPoint{Label: label, Value: counts[label]})
	}

	return out
}

func (s *Server) handleOverviewHosts(c echo.Context) error {
	hosts, err := s.hostOverview(c.Request().Context())
	if err != nil {
		return jsonFail(c, err)
	}

	return jsonOK(c, hosts, "")
}

func (s *Server) handleOverviewJobs(c echo.Context) error {
	jobs, _, err := s.jobOverviews(c.Request().Context())
	if err != nil {
		return jsonFail(c, err)
	}

	return jsonOK(c, jobs, "")
}

func (s *Server) handleOverviewSlots(c echo.Context) error {
	_, slots, err := s.jobOverviews(c.Request().Context())
	if err != nil {
		return jsonFail(c, err)
	}

	return jsonOK(c, slots, "")
}
