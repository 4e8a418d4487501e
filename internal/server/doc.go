// Package server implements the MCP (Model Context Protocol) server for the
// vision tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - prompts/list, prompts/get: The vision-tool-system prompt
//   - ping: Health check
//
// Notifications (notifications/*) are accepted and never answered.
//
// # Available Tools
//
// Each tool forwards one image to a Gradio inference backend and saves the
// files it returns under the configured output directory:
//   - detect: Grounding DINO boxes and labels, saved to output/det
//   - segment: DINO boxes refined to SAM masks, saved to output/segmentation
//   - inpaint: SAM masks repainted by Stable Diffusion, saved to output/inpainting
//
// # Error Handling
//
// A failed tool call (bad arguments, unreadable image, backend or download
// failure) is still a successful JSON-RPC response: the result carries the
// message as text with isError set. JSON-RPC errors are reserved for
// malformed requests, unknown tools and unknown methods.
//
// # Usage
//
//	cfg, _ := config.FromEnv()
//	srv := server.New(cfg, logger, version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
