// Package panel serves the browser preview page.
//
// The page is embedded in the binary. It opens the API's WebSocket stream,
// subscribes to light.preview and session.changed, and draws one swatch per
// light as the running show computes colours. Unknown paths fall back to
// index.html.
package panel
