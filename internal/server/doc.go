// Package server exposes stored audits over a read-only JSON API.
//
//	GET /api/health
//	GET /api/sites
//	GET /api/audits?site=&since=YYYY-MM-DD
//	GET /api/audits/latest?site=
//	GET /api/audits/:id            database ID or run ID
//	GET /api/compare?site=&with=&since=
package server
