// Package model defines the chat provider abstraction the agent loop drives:
// a normalized Request (ordered messages + tool catalog) and Response
// (assistant content and/or tool call requests), unified across vendors so
// downstream logic needs no per-provider branching. Concrete adapters live in
// the openai and anthropic subpackages; MockModel supports tests.
package model
