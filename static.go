package main

// Embedded web interface assets. The UI is a thin WebSocket client over the
// command surface; all game logic lives server-side.

const faviconSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32"><rect width="32" height="32" rx="6" fill="#1d1f2b"/><path d="M10 22V10h4.5a4.5 4.5 0 0 1 0 9H13l5 3h-3.2l-4.8-3z" fill="#f5b642"/><circle cx="22" cy="12" r="2" fill="#f5b642"/><circle cx="24" cy="18" r="1.5" fill="#f5b642" opacity="0.7"/></svg>`

const loginHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.GameTitle}} - Login</title>
<link rel="icon" href="/favicon.svg" type="image/svg+xml">
<link rel="stylesheet" href="/style.css">
</head>
<body class="login-body">
<main class="login-card">
  <h1>{{.GameTitle}}</h1>
  {{if .Error}}<p class="error">Invalid username or password</p>{{end}}
  <form method="post" action="/login">
    <input type="hidden" name="csrf_token" value="{{.CSRFToken}}">
    <label>Username <input type="text" name="username" autocomplete="username" required autofocus></label>
    <label>Password <input type="password" name="password" autocomplete="current-password" required></label>
    <button type="submit">Sign in</button>
  </form>
  <footer>v{{.Version}} &middot; {{.Year}}</footer>
</main>
</body>
</html>`

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.GameTitle}}</title>
<link rel="icon" href="/favicon.svg" type="image/svg+xml">
<link rel="stylesheet" href="/style.css">
</head>
<body>
<header class="topbar">
  <h1>{{.GameTitle}}</h1>
  <nav>
    <span id="conn-state" class="badge">connecting</span>
    <a href="/logout">Logout</a>
  </nav>
</header>
<main class="game">
  <section class="panel" id="tower">
    <div class="stat"><span>Floor</span><strong id="floor">-</strong></div>
    <div class="stat"><span>Score</span><strong id="score">-</strong></div>
    <div class="hp">
      <label>Player</label>
      <div class="hp-bar"><div id="player-hp" class="hp-fill player"></div></div>
    </div>
    <div class="hp">
      <label>Enemy</label>
      <div class="hp-bar"><div id="enemy-hp" class="hp-fill enemy"></div></div>
    </div>
  </section>
  <section class="panel" id="round">
    <div id="word" class="word">&nbsp;</div>
    <div id="round-state" class="round-state">menu</div>
    <div class="timer-bar"><div id="timer" class="timer-fill"></div></div>
    <div class="meter"><div id="mic-level" class="meter-fill"></div></div>
    <div class="controls">
      <button id="btn-start">Start Game</button>
      <button id="btn-round" disabled>Start Round</button>
      <button id="btn-stop" disabled>Stop</button>
      <button id="btn-reset">Reset</button>
    </div>
  </section>
  <section class="panel" id="outcome" hidden>
    <div id="outcome-label" class="outcome"></div>
    <div id="outcome-detail"></div>
  </section>
</main>
<footer class="footer">v{{.Version}} &middot; {{.Year}}</footer>
<script src="/app.js"></script>
</body>
</html>`

const styleCSS = `:root {
  --bg: #15161e;
  --panel: #1d1f2b;
  --fg: #e8e6df;
  --accent: #f5b642;
  --ok: #4caf7d;
  --bad: #d85555;
  --muted: #8a8d9c;
}
* { box-sizing: border-box; }
body {
  margin: 0;
  background: var(--bg);
  color: var(--fg);
  font-family: "Segoe UI", system-ui, sans-serif;
}
.topbar {
  display: flex;
  justify-content: space-between;
  align-items: center;
  padding: 0.6rem 1.2rem;
  background: var(--panel);
}
.topbar h1 { font-size: 1.1rem; margin: 0; letter-spacing: 0.12em; }
.topbar a { color: var(--muted); text-decoration: none; margin-left: 1rem; }
.badge { font-size: 0.75rem; color: var(--muted); }
.badge.live { color: var(--ok); }
.game {
  max-width: 640px;
  margin: 1.5rem auto;
  display: grid;
  gap: 1rem;
  padding: 0 1rem;
}
.panel { background: var(--panel); border-radius: 10px; padding: 1rem 1.2rem; }
.stat { display: inline-block; margin-right: 2rem; }
.stat span { color: var(--muted); font-size: 0.8rem; display: block; }
.stat strong { font-size: 1.4rem; }
.hp { margin-top: 0.8rem; }
.hp label { font-size: 0.8rem; color: var(--muted); }
.hp-bar, .timer-bar, .meter {
  background: #10111a;
  border-radius: 4px;
  height: 12px;
  overflow: hidden;
  margin-top: 0.2rem;
}
.hp-fill, .timer-fill, .meter-fill { height: 100%; transition: width 0.2s; }
.hp-fill.player { background: var(--ok); }
.hp-fill.enemy { background: var(--bad); }
.timer-fill { background: var(--accent); }
.meter { height: 6px; }
.meter-fill { background: var(--accent); transition: width 0.1s; }
.word {
  font-size: 2.2rem;
  text-align: center;
  letter-spacing: 0.2em;
  min-height: 2.6rem;
}
.round-state { text-align: center; color: var(--muted); margin: 0.4rem 0 0.8rem; }
.controls { display: flex; gap: 0.6rem; margin-top: 1rem; justify-content: center; }
button {
  background: var(--accent);
  color: #1a1a1a;
  border: none;
  border-radius: 6px;
  padding: 0.5rem 1.1rem;
  font-weight: 600;
  cursor: pointer;
}
button:disabled { background: #3a3c4a; color: var(--muted); cursor: default; }
.outcome { font-size: 1.6rem; text-align: center; }
.outcome.perfect { color: var(--accent); }
.outcome.success { color: var(--ok); }
.outcome.fail { color: var(--bad); }
#outcome-detail { text-align: center; color: var(--muted); margin-top: 0.4rem; }
.footer { text-align: center; color: var(--muted); font-size: 0.75rem; margin: 2rem 0 1rem; }
.login-body { display: flex; min-height: 100vh; align-items: center; justify-content: center; }
.login-card { background: var(--panel); border-radius: 10px; padding: 2rem; width: 320px; }
.login-card h1 { text-align: center; letter-spacing: 0.12em; font-size: 1.2rem; }
.login-card label { display: block; margin-bottom: 0.8rem; font-size: 0.85rem; color: var(--muted); }
.login-card input {
  display: block;
  width: 100%;
  margin-top: 0.2rem;
  padding: 0.5rem;
  border-radius: 6px;
  border: 1px solid #3a3c4a;
  background: #10111a;
  color: var(--fg);
}
.login-card button { width: 100%; margin-top: 0.4rem; }
.login-card footer { text-align: center; color: var(--muted); font-size: 0.75rem; margin-top: 1.2rem; }
.error { color: var(--bad); text-align: center; font-size: 0.85rem; }
`

const appJS = `(function () {
  "use strict";

  var maxPlayerHP = 6;
  var el = function (id) { return document.getElementById(id); };
  var ws = null;
  var lastStatus = null;

  function connect() {
    var proto = location.protocol === "https:" ? "wss:" : "ws:";
    ws = new WebSocket(proto + "//" + location.host + "/ws");
    ws.onopen = function () {
      el("conn-state").textContent = "live";
      el("conn-state").classList.add("live");
    };
    ws.onclose = function () {
      el("conn-state").textContent = "reconnecting";
      el("conn-state").classList.remove("live");
      setTimeout(connect, 2000);
    };
    ws.onmessage = function (msg) {
      var data = JSON.parse(msg.data);
      if (data.type === "status") renderStatus(data);
      else if (data.type === "levels") renderLevels(data.levels);
      else if (data.type === "game_event") handleEvent(data);
    };
  }

  function send(type, payload) {
    if (ws && ws.readyState === WebSocket.OPEN) {
      ws.send(JSON.stringify({ type: type, data: payload || {} }));
    }
  }

  function pct(value, max) {
    if (max <= 0) return 0;
    return Math.max(0, Math.min(100, (value / max) * 100));
  }

  function renderStatus(st) {
    lastStatus = st;
    var g = st.game;
    el("floor").textContent = g.floor || "-";
    el("score").textContent = g.score != null ? g.score : "-";
    el("player-hp").style.width = pct(g.player_hp, maxPlayerHP) + "%";
    el("enemy-hp").style.width = pct(g.enemy_hp, enemyMaxHP(g.floor)) + "%";
    el("word").textContent = g.word ? g.word.word : " ";
    el("round-state").textContent = g.phase === "ingame" ? g.round_state : g.phase;
    el("timer").style.width = pct(g.time_left_ms, st.round_time_ms) + "%";

    var inGame = g.phase === "ingame";
    el("btn-round").disabled = !inGame || g.round_state !== "waiting";
    el("btn-stop").disabled = !inGame || g.round_state !== "listening";
    el("btn-start").disabled = inGame;
  }

  function enemyMaxHP(floor) {
    return Math.min(6, 3 + Math.floor((floor || 1) / 5));
  }

  function renderLevels(levels) {
    // Map -60..0 dB onto the meter width.
    var db = Math.max(-60, Math.min(0, levels.rms));
    el("mic-level").style.width = ((db + 60) / 60) * 100 + "%";
  }

  function handleEvent(ev) {
    var panel = el("outcome");
    var label = el("outcome-label");
    if (ev.event === "round_resolved" && ev.payload && ev.payload.effect) {
      var out = ev.payload.effect.outcome;
      label.textContent = out.toUpperCase();
      label.className = "outcome " + out;
      el("outcome-detail").textContent =
        "accuracy " + Math.round(ev.payload.effect.accuracy) + "% / +" +
        (ev.payload.effect.score_gained + (ev.payload.effect.victory_bonus || 0)) + " pts";
      panel.hidden = false;
    } else if (ev.event === "round_discarded") {
      label.textContent = "TRY AGAIN";
      label.className = "outcome fail";
      el("outcome-detail").textContent = "heard: " + (ev.payload ? ev.payload.received : "");
      panel.hidden = false;
    } else if (ev.event === "panel_cleared" || ev.event === "round_started") {
      panel.hidden = true;
    } else if (ev.event === "game_over") {
      label.textContent = "GAME OVER";
      label.className = "outcome fail";
      el("outcome-detail").textContent = ev.payload
        ? "final score " + ev.payload.final_score + ", floor " + ev.payload.floor_reached
        : "";
      panel.hidden = false;
    }
  }

  el("btn-start").addEventListener("click", function () { send("game/start"); });
  el("btn-round").addEventListener("click", function () { send("round/start"); });
  el("btn-stop").addEventListener("click", function () { send("round/stop"); });
  el("btn-reset").addEventListener("click", function () { send("game/reset"); });

  connect();
})();
`
