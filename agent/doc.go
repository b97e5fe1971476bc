// Package agent implements the research agent run contract: a Runner that
// streams typed events for one run of a model against a query, and the
// ReAct-style implementation backed by an OpenAI-compatible API with tool
// calling.
package agent
