// Package ember implements the buffer substrate of a terminal text editor:
// a lazy-loading line store over a memory-mapped file, per-cell annotation
// layers, a background worker pipeline, and a renderer that projects cells
// to the terminal with soft wrap, overlays, and truecolor themes.
//
// # Architecture
//
// The package is organized around these core types:
//
//   - [Buffer]: an ordered sequence of lines with optional mmap backing
//   - [Line]: a cell sequence with an atomic temperature (cold, warm, hot)
//   - [Cell]: one codepoint plus syntax, neighbor, flag, and pair fields
//     packed into 12 bytes
//   - [Worker]: one background goroutine executing warm, search,
//     replace-all, and autosave tasks through bounded queues
//   - [Editor]: cursors, selections, modal state, and scroll offsets
//   - [Theme]: per-token styles with WCAG contrast enforcement
//
// # Temperatures
//
// Lines load cold: a byte range into the buffer's memory map, no cells.
// First read warms them, decoding UTF-8 into cells; edits promote them to
// hot, after which the mapped bytes are stale. The transition is one-way
// within a session. Warming is safe from the main thread and the worker
// concurrently: a compare-exchange claim picks a single decoder and other
// callers spin on the temperature, which flips exactly once.
//
//	buf, _ := ember.Load("main.c")
//	buf.WarmLine(40)              // explicit warm
//	s := buf.LineString(40)       // warms implicitly
//
// # Annotation layers
//
// Every cell carries three derived annotations. The neighbor layer stores
// a character class and intra-word position, making word motion a lookup.
// The pair layer assigns ids to matched brackets and block comments in one
// buffer-wide scan. The syntax layer writes token classes per line,
// dispatched by file extension (C/C++ and Markdown passes are built in).
//
// # Worker
//
// Long operations run on a single background goroutine fed by a bounded
// task ring. Cancellation is advisory and checked at row boundaries;
// results return through a second ring the main thread drains without
// blocking. Search matches stream into a mutex-guarded set so in-progress
// results can be rendered.
package ember
