package report

// ReportTemplate wraps the converted Markdown body in a standalone page.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 900px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2, h3 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  h3 { font-size: 1rem; margin: 16px 0 8px; }
  p, li { margin: 6px 0; }
  ul { padding-left: 20px; }
  em { color: var(--muted); }
  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.9rem; }
  th, td { padding: 6px 10px; border-bottom: 1px solid var(--border); }
  th { background: var(--section-bg); text-align: left; }
  td:last-child { text-align: right; font-variant-numeric: tabular-nums; }
  hr { border: none; border-top: 1px solid var(--border); margin: 24px 0 12px; }
  a { color: var(--accent); }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`
