package dashboard

const indexPage = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>BMasterAI Dashboard</title>
<style>
  body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; background: #f7f7f8; color: #1d1d1f; }
  h1 { font-size: 1.4rem; }
  .cards { display: flex; gap: 1rem; flex-wrap: wrap; margin-bottom: 1.5rem; }
  .card { background: #fff; border-radius: 8px; padding: 1rem 1.5rem; box-shadow: 0 1px 3px rgba(0,0,0,.1); min-width: 9rem; }
  .card .value { font-size: 1.8rem; font-weight: 600; }
  .card .label { color: #6e6e73; font-size: .8rem; text-transform: uppercase; }
  table { border-collapse: collapse; width: 100%; background: #fff; border-radius: 8px; overflow: hidden; }
  th, td { text-align: left; padding: .5rem .75rem; border-bottom: 1px solid #eee; font-size: .9rem; }
  th { background: #fafafa; color: #6e6e73; font-weight: 500; }
  #events { background: #fff; border-radius: 8px; padding: 1rem; max-height: 22rem; overflow-y: auto; font-family: ui-monospace, monospace; font-size: .8rem; }
  .ev-error, .ev-critical { color: #c62828; }
  .ev-warning { color: #ef6c00; }
</style>
</head>
<body>
<h1>BMasterAI Monitoring</h1>
<div class="cards" id="invocations"></div>
<h2>Agents</h2>
<table>
  <thead><tr><th>Agent</th><th>Tasks</th><th>Errors</th><th>Avg duration (ms)</th></tr></thead>
  <tbody id="agents"></tbody>
</table>
<h2>Live events</h2>
<div id="events"></div>
<script>
async function refreshStats() {
  const res = await fetch('/api/stats');
  if (!res.ok) return;
  const stats = await res.json();
  const cards = Object.entries(stats.invocations || {}).map(([mode, count]) =>
    '<div class="card"><div class="value">' + count + '</div><div class="label">' + mode + '</div></div>');
  document.getElementById('invocations').innerHTML = cards.join('') ||
    '<div class="card"><div class="value">0</div><div class="label">no invocations yet</div></div>';
  document.getElementById('agents').innerHTML = (stats.agents || []).map(a =>
    '<tr><td>' + a.agent_id + '</td><td>' + a.task_count + '</td><td>' + a.error_count +
    '</td><td>' + a.avg_duration_ms.toFixed(1) + '</td></tr>').join('');
}

function appendEvent(ev) {
  const box = document.getElementById('events');
  const line = document.createElement('div');
  line.className = 'ev-' + (ev.level || 'info');
  line.textContent = new Date(ev.timestamp).toLocaleTimeString() + ' [' + ev.agent_id + '] ' +
    ev.type + ': ' + ev.message;
  box.prepend(line);
  while (box.childElementCount > 200) box.removeChild(box.lastChild);
}

const source = new EventSource('/events');
for (const type of ['agent_start', 'agent_stop', 'task_start', 'task_complete',
                    'task_error', 'tool_use', 'llm_call', 'alert']) {
  source.addEventListener(type, e => { appendEvent(JSON.parse(e.data)); refreshStats(); });
}

refreshStats();
setInterval(refreshStats, 10000);
</script>
</body>
</html>
`
