package console

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/bopopescu/openlava-web/internal/cluster"
)

// renderer holds one parsed template set per page, each sharing the
// base layout.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() *renderer {
	funcs := template.FuncMap{
		"epoch": cluster.FormatTime,
		"join":  strings.Join,
		"limit": func(clusterType, field string, value any) string {
			switch v := value.(type) {
			case int64:
				return cluster.Sentinels.Format(clusterType, field, float64(v))
			case float64:
				return cluster.Sentinels.Format(clusterType, field, v)
			}
			return fmt.Sprint(value)
		},
	}

	pages := make(map[string]*template.Template, len(pageTmpls))
	for name, src := range pageTmpls {
		t := template.New("base").Funcs(funcs)
		t = template.Must(t.Parse(baseTmpl))
		t = template.Must(t.Parse(src))
		pages[name] = t
	}

	return &renderer{pages: pages}
}

func (r *renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("no such page: %s", name)
	}

	return t.ExecuteTemplate(w, "base", data)
}

const baseTmpl = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}} - openlava web</title>
<style>
body { font-family: sans-serif; margin: 0; background: #f4f4f4; color: #222; }
#nav { background: #2c3e50; color: #fff; padding: 8px 16px; }
#nav a { color: #ecf0f1; text-decoration: none; margin-right: 12px; }
#nav .nav-right { float: right; }
#nav .nav-right a { margin-left: 12px; margin-right: 0; }
#content { padding: 16px; }
#error-banner { display: none; background: #c0392b; color: #fff; padding: 8px 16px; }
#status-area .message { background: #27ae60; color: #fff; padding: 8px 16px; margin: 0; }
table.listing { border-collapse: collapse; background: #fff; margin-top: 8px; }
table.listing th, table.listing td { border: 1px solid #ddd; padding: 4px 10px; text-align: left; }
table.listing th { background: #34495e; color: #fff; }
table.counters td { min-width: 60px; text-align: right; }
tr.no-jobs td { text-align: center; color: #888; }
form.filter input, form.filter select { margin-right: 8px; }
.pager { margin-top: 8px; }
button.action { margin-right: 6px; }
</style>
</head>
<body>
<div id="nav">
<a href="/">Cluster</a><a href="/users/">Users</a><a href="/jobs/">Jobs</a><a href="/queues/">Queues</a><a href="/hosts/">Hosts</a>
<span class="nav-right">{{if .User}}<b>{{.User}}</b><a href="/jobs/submit">Submit</a><a href="#" onclick="olweb.logout();return false">Log out</a>{{else}}<a href="/accounts/login">Log in</a>{{end}}</span>
</div>
<div id="error-banner"></div>
<div id="status-area">{{if .Message}}<p class="message">{{.Message}}</p>{{end}}</div>
<div id="content">
{{template "content" .}}
</div>
<script>
var olweb = {
  action: function (url) {
    var req = new XMLHttpRequest();
    req.open("POST", url);
    req.setRequestHeader("X-Requested-With", "XMLHttpRequest");
    req.onload = function () {
      var msg = "";
      try { msg = JSON.parse(req.responseText).message; } catch (e) {}
      window.location = window.location.pathname + "?message=" + encodeURIComponent(msg || "Done");
    };
    req.send();
  },
  logout: function () {
    var req = new XMLHttpRequest();
    req.open("POST", "/accounts/logout");
    req.setRequestHeader("X-Requested-With", "XMLHttpRequest");
    req.onload = function () { window.location = "/"; };
    req.send();
  }
};
</script>
{{template "scripts" .}}
</body>
</html>
{{define "content"}}{{end}}
{{define "scripts"}}{{end}}`

var pageTmpls = map[string]string{
	"cluster": `{{define "content"}}
<h1>{{.Info.Name}}</h1>
<table class="listing">
<tr><th>Master</th><td>{{.Info.MasterName}}</td></tr>
<tr><th>Type</th><td>{{.Info.ClusterType}}</td></tr>
<tr><th>Hosts</th><td>{{.Info.TotalHosts}}</td></tr>
<tr><th>Queues</th><td>{{.Info.TotalQueues}}</td></tr>
<tr><th>Users</th><td>{{.Info.TotalUsers}}</td></tr>
<tr><th>Jobs</th><td>{{.Info.TotalJobs}}</td></tr>
</table>
<h2>Hosts</h2>
<table class="listing">{{range .Hosts}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>{{end}}</table>
<h2>Jobs</h2>
<table class="listing">{{range .Jobs}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>{{end}}</table>
<h2>Slots</h2>
<table class="listing">{{range .Slots}}<tr><th>{{.Label}}</th><td>{{.Value}}</td></tr>{{end}}</table>
{{end}}`,

	"users": `{{define "content"}}
<h1>Users</h1>
<table class="listing">
<tr><th>Name</th><th>Total Jobs</th><th>Pending</th><th>Running</th><th>Suspended</th><th>Max Jobs</th><th>Max Slots</th></tr>
{{range .Users}}
<tr>
<td><a href="/users/{{.Name}}">{{.Name}}</a></td>
<td>{{.TotalJobs}}</td>
<td>{{.NumPendingJobs}}</td>
<td>{{.NumRunningJobs}}</td>
<td>{{.NumSuspendedJobs}}</td>
<td>{{limit .ClusterType "max_jobs" .MaxJobs}}</td>
<td>{{limit .ClusterType "max_slots" .MaxSlots}}</td>
</tr>
{{end}}
</table>
{{end}}`,

	"user_detail": `{{define "content"}}
<h1>{{.Target.Name}}</h1>
<p>
Max jobs: {{limit .Target.ClusterType "max_jobs" .Target.MaxJobs}} |
Max slots: {{limit .Target.ClusterType "max_slots" .Target.MaxSlots}} |
Max jobs per processor: {{limit .Target.ClusterType "max_jobs_per_processor" .Target.MaxJobsPerProcessor}} |
<a href="/users/{{.Target.Name}}/history">History</a>
</p>
<table class="listing counters">
<tr><th></th><th>Jobs</th><th>Slots</th></tr>
<tr><th>Total</th><td id="total-jobs">{{.Target.TotalJobs}}</td><td id="total-slots">{{.Target.TotalSlots}}</td></tr>
<tr><th>Pending</th><td id="pending-jobs">{{.Target.NumPendingJobs}}</td><td id="pending-slots">{{.Target.NumPendingSlots}}</td></tr>
<tr><th>Running</th><td id="running-jobs">{{.Target.NumRunningJobs}}</td><td id="running-slots">{{.Target.NumRunningSlots}}</td></tr>
<tr><th>Suspended</th><td id="suspended-jobs">{{.Target.NumSuspendedJobs}}</td><td id="suspended-slots">{{.Target.NumSuspendedSlots}}</td></tr>
{{if .OpenLava}}
<tr><th>Suspended by user</th><td id="user-suspended-jobs">{{.Target.NumUserSuspendedJobs}}</td><td id="user-suspended-slots">{{.Target.NumUserSuspendedSlots}}</td></tr>
<tr><th>Suspended by system</th><td id="system-suspended-jobs">{{.Target.NumSystemSuspendedJobs}}</td><td id="system-suspended-slots">{{.Target.NumSystemSuspendedSlots}}</td></tr>
{{end}}
</table>
<h2>Jobs</h2>
<table class="listing">
<tr><th>Job</th><th>User</th><th>Status</th><th>Queue</th><th>Submitted</th><th>Started</th><th>Ended</th></tr>
<tbody id="job-table-body">{{range .Rows}}{{.}}{{end}}</tbody>
</table>
{{end}}
{{define "scripts"}}
<script>
(function () {
  var body = document.getElementById("job-table-body");
  if (!body || !window.WebSocket) { return; }
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var sock = new WebSocket(proto + location.host + location.pathname + "/live");
  sock.onmessage = function (ev) {
    var p = JSON.parse(ev.data);
    if (p.kind === "counter") {
      var el = document.getElementById(p.target);
      if (el) { el.innerHTML = p.html; }
    } else if (p.kind === "banner") {
      var banner = document.getElementById("error-banner");
      banner.innerHTML = p.html;
      banner.style.display = "block";
    } else if (p.kind === "banner-clear") {
      document.getElementById("error-banner").style.display = "none";
    } else if (p.kind === "status-clear") {
      document.getElementById("status-area").innerHTML = "";
    } else if (p.kind === "body") {
      body.innerHTML = p.rows.join("");
    } else if (p.kind === "times") {
      var row = document.getElementById("job-" + p.target);
      if (!row) { return; }
      row.querySelector(".submit-time").innerHTML = p.times.submit;
      row.querySelector(".start-time").innerHTML = p.times.start;
      row.querySelector(".end-time").innerHTML = p.times.end;
    }
  };
})();
</script>
{{end}}`,

	"user_history": `{{define "content"}}
<h1>History for {{.Name}}</h1>
<table class="listing">
<tr><th>Observed</th><th>Job</th><th>From</th><th>To</th></tr>
{{range .Events}}
<tr>
<td>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</td>
<td><a href="/jobs/{{.JobID}}/{{.ArrayIndex}}">{{.JobID}}{{if .ArrayIndex}}[{{.ArrayIndex}}]{{end}}</a></td>
<td>{{.FromState}}</td>
<td>{{.ToState}}</td>
</tr>
{{else}}
<tr class="no-jobs"><td colspan="4">No recorded transitions</td></tr>
{{end}}
</table>
<div class="pager">
{{if .Page.HasPrev}}<a href="?page={{.Page.Prev}}">&laquo; Prev</a>{{end}}
Page {{.Page.Number}} of {{.Page.Pages}}
{{if .Page.HasNext}}<a href="?page={{.Page.Next}}">Next &raquo;</a>{{end}}
</div>
{{end}}`,

	"jobs": `{{define "content"}}
<h1>Jobs</h1>
<form class="filter" method="get" action="/jobs/">
<input type="text" name="user_name" placeholder="User">
<input type="text" name="queue_name" placeholder="Queue">
<input type="text" name="host_name" placeholder="Host">
<input type="text" name="job_name" placeholder="Job name">
<select name="job_state">
<option value="ACT"{{if eq .State "ACT"}} selected{{end}}>Active</option>
<option value="ALL"{{if eq .State "ALL"}} selected{{end}}>All</option>
<option value="PEND"{{if eq .State "PEND"}} selected{{end}}>Pending</option>
<option value="RUN"{{if eq .State "RUN"}} selected{{end}}>Running</option>
<option value="SUSP"{{if eq .State "SUSP"}} selected{{end}}>Suspended</option>
<option value="EXIT"{{if eq .State "EXIT"}} selected{{end}}>Exited</option>
</select>
<input type="submit" value="Filter">
</form>
<table class="listing">
<tr><th>Job</th><th>User</th><th>Status</th><th>Queue</th><th>Submitted</th><th>Started</th><th>Ended</th></tr>
<tbody>{{range .Rows}}{{.}}{{end}}</tbody>
</table>
<div class="pager">
{{if .Page.HasPrev}}<a href="?page={{.Page.Prev}}">&laquo; Prev</a>{{end}}
Page {{.Page.Number}} of {{.Page.Pages}} ({{.Page.Total}} jobs)
{{if .Page.HasNext}}<a href="?page={{.Page.Next}}">Next &raquo;</a>{{end}}
</div>
{{end}}`,

	"job_array": `{{define "content"}}
<h1>Job {{.JobID}}</h1>
<table class="listing">
<tr><th>Job</th><th>User</th><th>Status</th><th>Queue</th><th>Submitted</th><th>Started</th><th>Ended</th></tr>
<tbody>{{range .Rows}}{{.}}{{end}}</tbody>
</table>
{{end}}`,

	"job_detail": `{{define "content"}}
<h1>Job {{.Job.DisplayID}}</h1>
{{if .User}}
<p>
<button class="action" onclick="olweb.action('/jobs/{{.Job.JobID}}/{{.Job.ArrayIndex}}/kill')">Kill</button>
<button class="action" onclick="olweb.action('/jobs/{{.Job.JobID}}/{{.Job.ArrayIndex}}/suspend')">Suspend</button>
<button class="action" onclick="olweb.action('/jobs/{{.Job.JobID}}/{{.Job.ArrayIndex}}/resume')">Resume</button>
<button class="action" onclick="olweb.action('/jobs/{{.Job.JobID}}/{{.Job.ArrayIndex}}/requeue')">Requeue</button>
</p>
{{end}}
<table class="listing">
<tr><th>Name</th><td>{{.Job.Name}}</td></tr>
<tr><th>User</th><td><a href="/users/{{.Job.UserName}}">{{.Job.UserName}}</a></td></tr>
<tr><th>Status</th><td>{{.Job.Status.Friendly}} ({{.Job.Status.Description}})</td></tr>
<tr><th>Queue</th><td><a href="/queues/{{.Job.Queue}}">{{.Job.Queue}}</a></td></tr>
<tr><th>Command</th><td><code>{{.Job.Command}}</code></td></tr>
<tr><th>Submitted</th><td>{{epoch .Job.SubmitTime}}</td></tr>
<tr><th>Started</th><td>{{epoch .Job.StartTime}}</td></tr>
<tr><th>Ended</th><td>{{epoch .Job.EndTime}}</td></tr>
<tr><th>Submission host</th><td>{{.Job.SubmissionHost}}</td></tr>
<tr><th>Execution hosts</th><td>{{join .Job.ExecutionHosts ", "}}</td></tr>
<tr><th>Requested slots</th><td>{{.Job.RequestedSlots}}</td></tr>
<tr><th>CPU time</th><td>{{.Job.CPUTime}}</td></tr>
{{if .Job.PendingReasons}}<tr><th>Pending reasons</th><td>{{.Job.PendingReasons}}</td></tr>{{end}}
{{if .Job.SuspensionReasons}}<tr><th>Suspension reasons</th><td>{{.Job.SuspensionReasons}}</td></tr>{{end}}
{{if .Job.RequestedResources}}<tr><th>Requested resources</th><td>{{.Job.RequestedResources}}</td></tr>{{end}}
{{if .Job.DependencyCondition}}<tr><th>Depends on</th><td>{{.Job.DependencyCondition}}</td></tr>{{end}}
{{if .Job.ProjectNames}}<tr><th>Projects</th><td>{{join .Job.ProjectNames ", "}}</td></tr>{{end}}
{{if .Job.WasKilled}}<tr><th>Killed</th><td>yes</td></tr>{{end}}
<tr><th>Output</th><td><a href="/jobs/{{.Job.JobID}}/{{.Job.ArrayIndex}}/output">view</a></td></tr>
<tr><th>Error</th><td><a href="/jobs/{{.Job.JobID}}/{{.Job.ArrayIndex}}/error">view</a></td></tr>
</table>
{{end}}`,

	"queues": `{{define "content"}}
<h1>Queues</h1>
<table class="listing">
<tr><th>Name</th><th>Priority</th><th>Status</th><th>Total Jobs</th><th>Pending</th><th>Running</th><th>Suspended</th></tr>
{{range .Queues}}
<tr>
<td><a href="/queues/{{.Name}}">{{.Name}}</a></td>
<td>{{.Priority}}</td>
<td>{{join .Statuses ", "}}</td>
<td>{{.TotalJobs}}</td>
<td>{{.NumPendingJobs}}</td>
<td>{{.NumRunningJobs}}</td>
<td>{{.NumSuspendedJobs}}</td>
</tr>
{{end}}
</table>
{{end}}`,

	"queue_detail": `{{define "content"}}
<h1>Queue {{.Queue.Name}}</h1>
{{if .User}}
<p>
<button class="action" onclick="olweb.action('/queues/{{.Queue.Name}}/open')">Open</button>
<button class="action" onclick="olweb.action('/queues/{{.Queue.Name}}/close')">Close</button>
<button class="action" onclick="olweb.action('/queues/{{.Queue.Name}}/activate')">Activate</button>
<button class="action" onclick="olweb.action('/queues/{{.Queue.Name}}/inactivate')">Inactivate</button>
</p>
{{end}}
<table class="listing">
<tr><th>Description</th><td>{{.Queue.Description}}</td></tr>
<tr><th>Priority</th><td>{{.Queue.Priority}}</td></tr>
<tr><th>Status</th><td>{{join .Queue.Statuses ", "}}</td></tr>
<tr><th>Accepting jobs</th><td>{{if .Queue.IsAcceptingJobs}}yes{{else}}no{{end}}</td></tr>
<tr><th>Max jobs</th><td>{{limit "openlava" "max_jobs" .Queue.MaxJobs}}</td></tr>
<tr><th>Max slots</th><td>{{limit "openlava" "max_slots" .Queue.MaxSlots}}</td></tr>
<tr><th>Max jobs per user</th><td>{{limit "openlava" "max_jobs_per_user" .Queue.MaxJobsPerUser}}</td></tr>
<tr><th>Max slots per user</th><td>{{limit "openlava" "max_slots_per_user" .Queue.MaxSlotsPerUser}}</td></tr>
<tr><th>Max jobs per processor</th><td>{{limit "openlava" "max_jobs_per_processor" .Queue.MaxJobsPerProcessor}}</td></tr>
<tr><th>Total jobs</th><td>{{.Queue.TotalJobs}}</td></tr>
<tr><th>Pending</th><td>{{.Queue.NumPendingJobs}}</td></tr>
<tr><th>Running</th><td>{{.Queue.NumRunningJobs}}</td></tr>
<tr><th>Suspended</th><td>{{.Queue.NumSuspendedJobs}}</td></tr>
</table>
<p><a href="/jobs/?queue_name={{.Queue.Name}}">Jobs in this queue</a></p>
{{end}}`,

	"hosts": `{{define "content"}}
<h1>Hosts</h1>
<table class="listing">
<tr><th>Name</th><th>Status</th><th>Server</th><th>Max Slots</th><th>Total Jobs</th><th>Running</th><th>Suspended</th></tr>
{{range .Hosts}}
<tr>
<td><a href="/hosts/{{.HostName}}">{{.HostName}}</a></td>
<td>{{join .Statuses ", "}}</td>
<td>{{if .IsServer}}yes{{else}}no{{end}}</td>
<td>{{.MaxSlots}}</td>
<td>{{.TotalJobs}}</td>
<td>{{.NumRunningJobs}}</td>
<td>{{.NumSuspendedJobs}}</td>
</tr>
{{end}}
</table>
{{end}}`,

	"host_detail": `{{define "content"}}
<h1>Host {{.Host.HostName}}</h1>
{{if .User}}
<p>
<button class="action" onclick="olweb.action('/hosts/{{.Host.HostName}}/open')">Open</button>
<button class="action" onclick="olweb.action('/hosts/{{.Host.HostName}}/close')">Close</button>
</p>
{{end}}
<table class="listing">
<tr><th>Status</th><td>{{join .Host.Statuses ", "}}</td></tr>
<tr><th>Batch server</th><td>{{if .Host.IsServer}}yes{{else}}no{{end}}</td></tr>
<tr><th>Processors</th><td>{{.Host.MaxProcessors}}</td></tr>
<tr><th>Max jobs</th><td>{{limit "openlava" "max_jobs" .Host.MaxJobs}}</td></tr>
<tr><th>Max slots</th><td>{{limit "openlava" "max_slots" .Host.MaxSlots}}</td></tr>
<tr><th>Total jobs</th><td>{{.Host.TotalJobs}}</td></tr>
<tr><th>Running</th><td>{{.Host.NumRunningJobs}}</td></tr>
<tr><th>Suspended</th><td>{{.Host.NumSuspendedJobs}}</td></tr>
<tr><th>Reserved slots</th><td>{{.Host.NumReservedSlots}}</td></tr>
</table>
<p><a href="/jobs/?host_name={{.Host.HostName}}">Jobs on this host</a></p>
{{end}}`,

	"login": `{{define "content"}}
<h1>Log in</h1>
<p id="login-error" style="color:#c0392b"></p>
<form id="login-form">
<p><input type="text" id="login-username" placeholder="Username" autofocus></p>
<p><input type="password" id="login-password" placeholder="Password"></p>
<p><input type="submit" value="Log in"></p>
</form>
{{if .OAuth}}<p><a href="/accounts/oauth/login">Log in with your identity provider</a></p>{{end}}
{{end}}
{{define "scripts"}}
<script>
document.getElementById("login-form").onsubmit = function () {
  var req = new XMLHttpRequest();
  req.open("POST", "/accounts/ajax-login");
  req.setRequestHeader("X-Requested-With", "XMLHttpRequest");
  req.setRequestHeader("Content-Type", "application/x-www-form-urlencoded");
  req.onload = function () {
    var resp = {};
    try { resp = JSON.parse(req.responseText); } catch (e) {}
    if (resp.status === "OK") {
      window.location = {{if .Next}}{{.Next}}{{else}}"/"{{end}};
    } else {
      document.getElementById("login-error").textContent = resp.message || "Login failed";
    }
  };
  req.send("username=" + encodeURIComponent(document.getElementById("login-username").value) +
    "&password=" + encodeURIComponent(document.getElementById("login-password").value));
  return false;
};
</script>
{{end}}`,

	"submit": `{{define "content"}}
<h1>Submit Job</h1>
<form method="post" action="/jobs/submit">
<table class="listing">
<tr><th>Command</th><td><input type="text" name="command" size="60" required></td></tr>
<tr><th>Queue</th><td><select name="queue"><option value="">(default)</option>{{range .Queues}}<option value="{{.Name}}">{{.Name}}</option>{{end}}</select></td></tr>
<tr><th>Name</th><td><input type="text" name="name"></td></tr>
<tr><th>Slots</th><td><input type="number" name="requested_slots" min="0" value="0"></td></tr>
<tr><th>Output file</th><td><input type="text" name="output_file_name"></td></tr>
<tr><th>Error file</th><td><input type="text" name="error_file_name"></td></tr>
<tr><th>Project</th><td><input type="text" name="project"></td></tr>
</table>
<p><input type="submit" value="Submit"></p>
</form>
{{end}}`,

	"error": `{{define "content"}}
<h1>{{.Class}}</h1>
<p>{{.Message}}</p>
<p><a href="/">Back to the cluster view</a></p>
{{end}}`,
}
