package controllers

const indexPage = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Photo Review</title>
<style>
body { font-family: sans-serif; margin: 16px; }
#photos { display: grid; grid-template-columns: repeat(3, auto); gap: 8px; justify-content: start; }
#buckets button { margin-right: 6px; padding: 6px 14px; }
</style>
</head>
<body>
<h2 id="progress">Photo Review</h2>
<div id="photos"></div>
<p id="buckets"></p>
<p><button id="export">Export results</button> <span id="status"></span></p>
<script>
async function getJSON(url, opts) {
  const r = await fetch(url, opts);
  const body = await r.json();
  if (!r.ok) throw new Error(body.error || r.statusText);
  return body;
}
async function load() {
  const s = await getJSON('/session');
  const b = document.getElementById('buckets');
  b.innerHTML = '';
  s.buckets.forEach(name => {
    const btn = document.createElement('button');
    btn.textContent = name;
    btn.onclick = () => classify(name);
    b.appendChild(btn);
  });
  await showVisit();
}
async function showVisit() {
  const box = document.getElementById('photos');
  box.innerHTML = '';
  try {
    const v = await getJSON('/visit');
    document.getElementById('progress').textContent = 'Photo Review ' + v.position + '/' + v.total;
    v.photos.forEach(src => {
      const img = document.createElement('img');
      img.src = src + '&t=' + Date.now();
      box.appendChild(img);
    });
  } catch (e) {
    document.getElementById('progress').textContent = e.message;
  }
}
async function classify(bucket) {
  try {
    const res = await getJSON('/classify', {method: 'POST', body: JSON.stringify({bucket})});
    if (res.complete) await exportResults();
    await showVisit();
  } catch (e) {
    document.getElementById('status').textContent = e.message;
  }
}
async function exportResults() {
  try {
    const res = await getJSON('/export', {method: 'POST'});
    document.getElementById('status').textContent = 'Saved ' + res.rows + ' rows to ' + res.path;
  } catch (e) {
    document.getElementById('status').textContent = e.message;
  }
}
document.getElementById('export').onclick = exportResults;
load();
</script>
</body>
</html>
`
