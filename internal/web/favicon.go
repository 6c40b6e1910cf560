// internal/web/favicon.go
package web

import (
    "net/http"

    "github.com/gin-gonic/gin"
)

// Embedded favicon - a heartbeat trace over a database cylinder, SVG.
const faviconSVG = `
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 32 32" width="32" height="32">
  <defs>
    <linearGradient id="bg" x1="0%" y1="0%" x2="100%" y2="100%">
      <stop offset="0%" style="stop-color:#10b981;stop-opacity:1" />
      <stop offset="100%" style="stop-color:#047857;stop-opacity:1" />
    </linearGradient>
  </defs>

  <!-- Background circle -->
  <circle cx="16" cy="16" r="16" fill="url(#bg)"/>

  <!-- Database cylinder -->
  <g fill="#ffffff" opacity="0.9">
    <ellipse cx="16" cy="10" rx="8" ry="3"/>
    <path d="M 8,10 L 8,22 A 8,3 0 0 0 24,22 L 24,10 A 8,3 0 0 1 8,10 Z" opacity="0.6"/>
  </g>

  <!-- Heartbeat trace -->
  <polyline points="6,17 12,17 14,12 17,22 19,17 26,17"
            fill="none" stroke="#ffffff" stroke-width="1.8"
            stroke-linecap="round" stroke-linejoin="round"/>
</svg>`

func (s *Server) serveFavicon(c *gin.Context) {
    c.Header("Content-Type", "image/svg+xml")
    c.Header("Cache-Control", "public, max-age=31536000")
    c.String(http.StatusOK, faviconSVG)
}
