package web

// Single page game UI: candle chart, order panel and transaction history.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <title>Papertrader</title>
  <link href="https://fonts.googleapis.com/css2?family=Space+Mono:wght@400;700&display=swap" rel="stylesheet">
  <style>
    :root { --bg:#ffffff; --ink:#111111; --ink-mid:#4d4d4d; --panel:#f6f6f6; --up:#1b9aaa; --down:#d7263d; }
    * { box-sizing:border-box; }
    body { margin:0; padding:2rem; background:var(--bg); color:var(--ink); font-family:'Space Mono',monospace; }
    #app {
      width:min(1200px, 96vw); margin:0 auto; background:var(--panel); border:3px solid var(--ink);
      padding:2rem; box-shadow:12px 12px 0 rgba(0,0,0,.15); display:grid; grid-template-columns:1fr 340px; gap:2rem;
    }
    header { display:flex; justify-content:space-between; align-items:center; grid-column:1 / -1; }
    .status { font-size:.65rem; text-transform:uppercase; border:2px solid var(--ink); padding:.4rem .9rem; background:#fff; }
    canvas { width:100%; border:2px solid var(--ink); background:#fff; }
    .stats { display:grid; grid-template-columns:repeat(3, 1fr); gap:1rem; margin-top:1rem; }
    .stat { border:2px solid var(--ink); background:#fff; padding:.8rem; }
    .stat .label { font-size:.6rem; text-transform:uppercase; color:var(--ink-mid); }
    .stat .value { font-size:1.1rem; font-weight:700; margin-top:.4rem; }
    .orders { display:flex; flex-direction:column; gap:.8rem; }
    .orders input { font:inherit; padding:.5rem; border:2px solid var(--ink); }
    .orders button { font:inherit; padding:.6rem; border:2px solid var(--ink); background:#fff; cursor:pointer; text-transform:uppercase; }
    .orders button.buy { color:var(--up); }
    .orders button.sell { color:var(--down); }
    #log { font-size:.7rem; min-height:2.5rem; color:var(--ink-mid); }
    table { width:100%; border-collapse:collapse; font-size:.65rem; }
    th, td { border-bottom:1px dashed var(--ink-mid); padding:.3rem; text-align:left; }
    .buy-row { color:var(--up); }
    .sell-row { color:var(--down); }
    @media (max-width:800px) { #app { grid-template-columns:1fr; } }
  </style>
</head>
<body>
  <div id="app">
    <header>
      <strong>papertrader</strong>
      <div id="sse-status" class="status">Connecting…</div>
    </header>
    <section>
      <canvas id="chart" width="800" height="360"></canvas>
      <div class="stats">
        <div class="stat"><div class="label">Price</div><div id="price" class="value">-</div></div>
        <div class="stat"><div class="label">Cash</div><div id="cash" class="value">-</div></div>
        <div class="stat"><div class="label">Shares</div><div id="shares" class="value">0</div></div>
      </div>
      <div class="stats">
        <div class="stat"><div class="label">Portfolio</div><div id="portfolio" class="value">-</div></div>
      </div>
    </section>
    <aside class="orders">
      <input id="lots" type="number" min="1" value="1" />
      <button class="buy" id="buy">Buy</button>
      <button class="sell" id="sell">Sell</button>
      <button id="reset">Reset</button>
      <div id="log"></div>
      <table>
        <thead><tr><th>Side</th><th>Lots</th><th>Price</th><th>Total</th></tr></thead>
        <tbody id="ledger"></tbody>
      </table>
    </aside>
  </div>
<script>
const statusEl = document.getElementById('sse-status');
const canvas = document.getElementById('chart');
const ctx = canvas.getContext('2d');
const logEl = document.getElementById('log');
let candles = [];

const num = (v) => { const n = parseFloat(v); return Number.isFinite(n) ? n : 0; };

function drawChart(){
  ctx.clearRect(0, 0, canvas.width, canvas.height);
  if(candles.length === 0){ return; }
  const highs = candles.map(c => num(c.high));
  const lows = candles.map(c => num(c.low));
  const max = Math.max(...highs), min = Math.min(...lows);
  const span = (max - min) || 1;
  const pad = 10;
  const y = (v) => pad + (max - v) / span * (canvas.height - pad * 2);
  const step = canvas.width / Math.max(candles.length, 1);
  candles.forEach((c, i) => {
    const open = num(c.open), close = num(c.close);
    const x = i * step + step / 2;
    ctx.strokeStyle = ctx.fillStyle = close >= open ? '#1b9aaa' : '#d7263d';
    ctx.beginPath();
    ctx.moveTo(x, y(num(c.high)));
    ctx.lineTo(x, y(num(c.low)));
    ctx.stroke();
    const top = y(Math.max(open, close));
    ctx.fillRect(x - step * 0.3, top, step * 0.6, Math.max(1, y(Math.min(open, close)) - top));
  });
}

function renderState(state){
  document.getElementById('price').textContent = state.price_display;
  document.getElementById('cash').textContent = state.cash_display;
  document.getElementById('shares').textContent = state.shares;
  document.getElementById('portfolio').textContent = state.portfolio_value_display;
}

function renderLedger(ledger){
  const body = document.getElementById('ledger');
  body.innerHTML = '';
  ledger.forEach((tx) => {
    const row = document.createElement('tr');
    row.className = tx.side + '-row';
    [tx.side, tx.lots, num(tx.unit_price).toFixed(2), num(tx.total).toFixed(2)].forEach((v) => {
      const cell = document.createElement('td');
      cell.textContent = v;
      row.appendChild(cell);
    });
    body.appendChild(row);
  });
}

async function refresh(){
  candles = await (await fetch('/api/candles')).json();
  renderLedger(await (await fetch('/api/ledger')).json());
  renderState(await (await fetch('/api/state')).json());
  drawChart();
}

async function order(side){
  const res = await fetch('/api/' + side, {
    method:'POST',
    headers:{ 'Content-Type':'application/json' },
    body: JSON.stringify({ lots: document.getElementById('lots').value })
  });
  const payload = await res.json();
  if(!res.ok){
    logEl.textContent = payload.message;
    return;
  }
  logEl.textContent = side + ' ' + payload.transaction.lots + ' @ ' + num(payload.transaction.unit_price).toFixed(2);
}

document.getElementById('buy').addEventListener('click', () => order('buy'));
document.getElementById('sell').addEventListener('click', () => order('sell'));
document.getElementById('reset').addEventListener('click', () => fetch('/api/reset', { method:'POST' }));

function connectSSE(){
  const source = new EventSource('/api/stream');
  source.addEventListener('open', () => { statusEl.textContent = 'Live'; });
  source.addEventListener('state', (e) => renderState(JSON.parse(e.data)));
  source.addEventListener('tick', (e) => {
    const payload = JSON.parse(e.data);
    candles.push(payload.tick.candle);
    while(candles.length > payload.state.candles){ candles.shift(); }
    renderState(payload.state);
    drawChart();
  });
  source.addEventListener('trade', () => refresh());
  source.addEventListener('reset', () => { logEl.textContent = ''; refresh(); });
  source.addEventListener('error', () => {
    statusEl.textContent = 'Reconnecting…';
    source.close();
    setTimeout(connectSSE, 2000);
  });
}

refresh();
connectSSE();
</script>
</body>
</html>`
