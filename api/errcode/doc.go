// Package errcode provides a registry of error codes shared by the DMS
// HTTP API. Error codes carry a stable string identifier, a human-readable
// message template and the HTTP status code to respond with, so that
// handlers can map internal errors to consistent wire-level errors.
package errcode
