// Package answer turns retrieved chunks into a grounded answer.
//
// The assembler numbers each chunk as a source, builds a prompt that
// restricts the model to that context, and pairs the generated text
// with one link per source so callers can verify claims. With no
// chunks at all it returns a fixed fallback and never calls the
// model.
package answer
