package handlers

import (
	"html/template"
	"log/slog"
	"net/http"
)

// PagesHandler renders the browser-facing pages. The markup is deliberately
// minimal: the contractual behavior lives in the small scripts that drive the
// /api endpoints (signup branching, two-step login, pending license poll).
type PagesHandler struct {
	Logger *slog.Logger
}

func (h *PagesHandler) Landing(w http.ResponseWriter, r *http.Request) {
	// pat treats "/" as a prefix; anything unknown lands here.
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	h.render(w, landingTmpl, nil)
}

func (h *PagesHandler) Signup(w http.ResponseWriter, r *http.Request) {
	h.render(w, signupTmpl, nil)
}

func (h *PagesHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.render(w, loginTmpl, nil)
}

func (h *PagesHandler) Account(w http.ResponseWriter, r *http.Request) {
	h.render(w, accountTmpl, map[string]any{
		"Pending": r.URL.Query().Get("pending") == "true",
	})
}

// Thanks distinguishes the paid flow (payment received, license on its way,
// auto-continue to the account page) from contact-sales (we reach out).
func (h *PagesHandler) Thanks(w http.ResponseWriter, r *http.Request) {
	tier := r.URL.Query().Get("tier")
	if tier == "" {
		tier = "contact"
	}
	h.render(w, thanksTmpl, map[string]any{
		"Paid": tier == "pro",
	})
}

func (h *PagesHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.render(w, downloadTmpl, nil)
}

func (h *PagesHandler) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("render page failed", "template", tmpl.Name(), "err", err)
	}
}

var landingTmpl = template.Must(template.New("landing").Parse(`<!doctype html>
<html><head><title>Tell</title></head>
<body>
<h1>Tell</h1>
<p>Event and log pipeline for teams that outgrew grep.</p>
<p><a href="/signup">Get started</a> · <a href="/login">Sign in</a> · <a href="/download">Download</a></p>
<p><code>curl -sL tell.rs | sh</code></p>
</body></html>
`))

var signupTmpl = template.Must(template.New("signup").Parse(`<!doctype html>
<html><head><title>Get Started — Tell</title></head>
<body>
<h1>Get Started with Tell</h1>
<form id="signup">
  <label>Work Email <input type="email" name="email" required></label>
  <label>Company Name <input type="text" name="company_name" required></label>
  <label>Your Role
    <select name="role">
      <option value="founder">Founder / CEO</option>
      <option value="engineering">Engineering</option>
      <option value="data">Data / Analytics</option>
      <option value="ops">Operations</option>
      <option value="other">Other</option>
    </select>
  </label>
  <label>Organization Type
    <select name="company_type">
      <option value="business">Business</option>
      <option value="government">Government</option>
      <option value="education">Education</option>
      <option value="nonprofit">Non-profit</option>
    </select>
  </label>
  <label>Annual Revenue
    <select name="revenue_band">
      <option value="under_1m">Under $1M (Free)</option>
      <option value="1m_to_10m">$1M - $10M ($299/mo)</option>
      <option value="over_10m">Over $10M (Enterprise)</option>
    </select>
  </label>
  <button type="submit">Get Started</button>
  <p id="error" hidden></p>
</form>
<script>
document.getElementById("signup").addEventListener("submit", async (e) => {
  e.preventDefault();
  const form = Object.fromEntries(new FormData(e.target));
  try {
    const res = await fetch("/api/signup", {
      method: "POST",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(form),
    });
    const result = await res.json();
    if (!res.ok) throw new Error(result.error || "Signup failed");
    if (result.next_step === "free") {
      window.location.href = "/download";
    } else if (result.next_step && result.next_step.monthly_price) {
      const params = new URLSearchParams({
        products: result.next_step.product_id,
        customerEmail: form.email,
        customerName: form.company_name,
        metadata: JSON.stringify({customer_id: result.customer_id}),
      });
      window.location.href = "/api/checkout?" + params.toString();
    } else {
      window.location.href = "/thanks?tier=contact";
    }
  } catch (err) {
    const el = document.getElementById("error");
    el.textContent = err.message;
    el.hidden = false;
  }
});
</script>
</body></html>
`))

var loginTmpl = template.Must(template.New("login").Parse(`<!doctype html>
<html><head><title>Sign in — Tell</title></head>
<body>
<h1>Sign in to Tell</h1>
<form id="email-step">
  <label>Email <input type="email" name="email" required></label>
  <button type="submit">Send Login Code</button>
</form>
<form id="code-step" hidden>
  <label>Enter the 6-digit code <input type="text" name="code" maxlength="6" required></label>
  <button type="submit">Sign In</button>
</form>
<p id="error" hidden></p>
<p>Don't have an account? <a href="/signup">Sign up</a></p>
<script>
const fail = (msg) => {
  const el = document.getElementById("error");
  el.textContent = msg;
  el.hidden = false;
};
let email = "";
document.getElementById("email-step").addEventListener("submit", async (e) => {
  e.preventDefault();
  email = new FormData(e.target).get("email");
  const res = await fetch("/api/auth/magic-link", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({email}),
  });
  if (!res.ok) { fail("Failed to send login code"); return; }
  e.target.hidden = true;
  document.getElementById("code-step").hidden = false;
});
document.getElementById("code-step").addEventListener("submit", async (e) => {
  e.preventDefault();
  const code = new FormData(e.target).get("code");
  const res = await fetch("/api/auth/verify", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({email, code}),
  });
  if (!res.ok) { fail("Invalid code"); return; }
  window.location.href = "/account";
});
</script>
</body></html>
`))

var accountTmpl = template.Must(template.New("account").Parse(`<!doctype html>
<html><head><title>Account — Tell</title></head>
<body>
<h1>Account</h1>
<div id="pending" {{if not .Pending}}hidden{{end}}>Setting up your license…</div>
<div id="profile">Loading…</div>
<button id="logout">Sign Out</button>
<script>
const load = async () => {
  const res = await fetch("/api/me");
  if (res.status === 401) { window.location.href = "/login"; return null; }
  if (!res.ok) { document.getElementById("profile").textContent = "Failed to load profile"; return null; }
  return res.json();
};
const show = (profile) => {
  const active = (profile.licenses || []).find((l) => !l.revoked);
  document.getElementById("profile").innerHTML =
    "<p>" + profile.email + "</p>" +
    (active
      ? "<p>License: " + active.tier + " (expires " + new Date(active.expires).toLocaleDateString() + ")</p>" +
        (active.license_key ? "<p><code>" + active.license_key + "</code></p>" : "")
      : '<p>No active license. <a href="/signup">Get a License</a></p>');
};
load().then(async (profile) => {
  if (!profile) return;
  show(profile);
  if (!{{.Pending}}) return;
  // Redirect-back beats the webhook; the server polls the platform for us.
  const res = await fetch("/api/license/wait");
  if (res.status === 401) { window.location.href = "/login"; return; }
  if (res.ok) {
    const result = await res.json();
    document.getElementById("pending").hidden = true;
    if (result.status === "ready") load().then((p) => p && show(p));
  }
});
document.getElementById("logout").addEventListener("click", async () => {
  await fetch("/api/auth/logout", {method: "POST"});
  window.location.href = "/";
});
</script>
</body></html>
`))

var thanksTmpl = template.Must(template.New("thanks").Parse(`<!doctype html>
<html><head><title>Thanks — Tell</title></head>
<body>
{{if .Paid}}
<h1>Payment received!</h1>
<p>Your license key will appear in your account momentarily. Redirecting…</p>
<p><a href="/account?pending=true">Go to Account</a></p>
<script>
setTimeout(() => { window.location.href = "/account?pending=true"; }, 3000);
</script>
{{else}}
<h1>We'll be in touch!</h1>
<p>Our team will reach out within 1 business day to discuss your needs and provide custom pricing.</p>
{{end}}
<p><a href="/">Back to Home</a></p>
</body></html>
`))

var downloadTmpl = template.Must(template.New("download").Parse(`<!doctype html>
<html><head><title>Download — Tell</title></head>
<body>
<h1>Download Tell</h1>
<p><code>curl -sL tell.rs | sh</code></p>
<p>Or grab a binary from the releases page.</p>
<p><a href="/account">Your account</a> · <a href="/">Home</a></p>
</body></html>
`))
