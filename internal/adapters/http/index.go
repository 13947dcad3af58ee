package http

import "github.com/gofiber/fiber/v2"

// indexHTML is the map page: a click posts the coordinate to /api/metadata
// and lists what comes back.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>FormHunt</title>
  <link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
  <style>
    body { margin: 0; font-family: sans-serif; display: flex; height: 100vh; }
    #map { flex: 2; }
    #panel { flex: 1; padding: 1em; overflow-y: auto; }
    h3 { margin-bottom: 0.2em; }
  </style>
</head>
<body>
  <div id="map"></div>
  <div id="panel">
    <p id="engine">Checking engine...</p>
    <p id="coords">Click the map to capture a coordinate.</p>
    <div id="features"></div>
  </div>
  <script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
  <script>
    const map = L.map('map').setView([20, 0], 2);
    L.tileLayer('https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png', {
      attribution: '&copy; OpenStreetMap contributors'
    }).addTo(map);
    let marker = null;

    fetch('/api/engine-status').then(r => r.json()).then(s => {
      document.getElementById('engine').textContent =
        s.available ? 'Engine available' : 'Engine not found (metadata disabled)';
    });

    map.on('click', async (e) => {
      const lat = e.latlng.lat, lon = e.latlng.wrap().lng;
      if (marker) marker.remove();
      marker = L.marker([lat, lon]).addTo(map);
      document.getElementById('coords').textContent = lat.toFixed(5) + ', ' + lon.toFixed(5);
      const out = document.getElementById('features');
      out.textContent = 'Looking up nearby features...';
      const res = await fetch('/api/metadata', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ lat, lon })
      });
      const data = await res.json();
      out.textContent = '';
      const keys = Object.keys(data);
      if (!res.ok) { out.textContent = data.error; return; }
      if (keys.length === 0) { out.textContent = 'No metadata.'; return; }
      for (const k of keys) {
        const h = document.createElement('h3');
        h.textContent = k;
        const ul = document.createElement('ul');
        for (const name of data[k]) {
          const li = document.createElement('li');
          li.textContent = name;
          ul.appendChild(li);
        }
        out.append(h, ul);
      }
    });
  </script>
</body>
</html>`

// IndexHandler serves the front-end page.
func IndexHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Type("html", "utf-8")
		return c.SendString(indexHTML)
	}
}
